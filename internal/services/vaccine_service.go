package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/health-records/internal/domain"
	apperrors "github.com/vladimiradmaev/health-records/internal/errors"
	"github.com/vladimiradmaev/health-records/internal/export"
	"github.com/vladimiradmaev/health-records/internal/fuzzydate"
	"github.com/vladimiradmaev/health-records/internal/logger"
	"github.com/vladimiradmaev/health-records/internal/state"
)

const quickAddLimit = 5

// CommonVaccines are offered for quick add when not already recorded
var CommonVaccines = []string{
	"Flu Shot (Influenza)",
	"Tetanus (Tdap/DTaP)",
	"MMR (Measles, Mumps, Rubella)",
	"Hepatitis B",
	"Polio (IPV)",
	"Varicella (Chickenpox)",
	"Pneumococcal (PCV)",
	"Hepatitis A",
	"HPV (Gardasil)",
	"COVID-19",
}

// VaccineService handles user operations on vaccine records
type VaccineService struct {
	store          domain.Store
	guard          state.Guard
	upcomingMonths int
	now            func() time.Time
}

func NewVaccineService(store domain.Store, guard state.Guard, upcomingMonths int) *VaccineService {
	if upcomingMonths <= 0 {
		upcomingMonths = 6
	}
	return &VaccineService{store: store, guard: guard, upcomingMonths: upcomingMonths, now: time.Now}
}

// storeError converts repository errors into application errors
func storeError(err error) error {
	switch {
	case errors.Is(err, domain.ErrVaccineNotFound):
		return apperrors.Wrap(err, apperrors.ErrorTypeNotFound, "VACCINE_NOT_FOUND", "Vaccine not found")
	case errors.Is(err, domain.ErrSuggestionNotFound):
		return apperrors.Wrap(err, apperrors.ErrorTypeNotFound, "SUGGESTION_NOT_FOUND", "Suggestion not found")
	case errors.Is(err, domain.ErrDietEntryNotFound):
		return apperrors.Wrap(err, apperrors.ErrorTypeNotFound, "DIET_ENTRY_NOT_FOUND", "Diet entry not found")
	case errors.Is(err, domain.ErrActionInFlight):
		return apperrors.NewConflictError(err, "This action is already in progress")
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.NewDatabaseError(err)
}

// guarded runs fn unless the same action on the same record is already running
func guarded(ctx context.Context, guard state.Guard, key string, fn func() error) error {
	if guard == nil {
		return fn()
	}
	release, err := guard.Begin(ctx, key)
	if err != nil {
		return storeError(err)
	}
	defer release()
	return fn()
}

func parseDate(field, raw string) (fuzzydate.Date, error) {
	d, err := fuzzydate.ParseValid(strings.TrimSpace(raw))
	if err != nil {
		return fuzzydate.Date{}, apperrors.NewValidationError(field + " is not a valid date").WithContext("field", field)
	}
	return d, nil
}

func parseHistory(raw []string) ([]fuzzydate.Date, error) {
	history := make([]fuzzydate.Date, 0, len(raw))
	for _, r := range raw {
		d, err := parseDate("history", r)
		if err != nil {
			return nil, err
		}
		if !d.IsZero() {
			history = append(history, d)
		}
	}
	return history, nil
}

// List returns the vaccines in display order
func (s *VaccineService) List(ctx context.Context, accountID string) ([]domain.Vaccine, error) {
	vaccines, err := s.store.ListVaccines(ctx, accountID)
	if err != nil {
		return nil, storeError(err)
	}
	domain.SortVaccines(vaccines)
	return vaccines, nil
}

func (s *VaccineService) Get(ctx context.Context, accountID, id string) (domain.Vaccine, error) {
	v, err := s.store.GetVaccine(ctx, accountID, id)
	if err != nil {
		return domain.Vaccine{}, storeError(err)
	}
	return v, nil
}

// Add creates a vaccine record. Adding from a suggestion removes that suggestion.
func (s *VaccineService) Add(ctx context.Context, accountID string, req domain.AddVaccineRequest) (domain.Vaccine, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Vaccine{}, apperrors.NewValidationError("name is required")
	}
	dateTaken, err := parseDate("dateTaken", req.DateTaken)
	if err != nil {
		return domain.Vaccine{}, err
	}
	nextDue, err := parseDate("nextDueDate", req.NextDueDate)
	if err != nil {
		return domain.Vaccine{}, err
	}
	history, err := parseHistory(req.History)
	if err != nil {
		return domain.Vaccine{}, err
	}

	vaccine := domain.Vaccine{
		ID:          uuid.NewString(),
		Name:        name,
		DateTaken:   dateTaken,
		History:     history,
		NextDueDate: nextDue,
		Notes:       strings.TrimSpace(req.Notes),
		CreatedAt:   s.now().UTC(),
		Analysis:    domain.NoAnalysis(),
	}

	key := state.ActionKey(accountID, "add_vaccine", strings.ToLower(name))
	err = guarded(ctx, s.guard, key, func() error {
		if err := s.store.SaveVaccine(ctx, accountID, vaccine); err != nil {
			return storeError(err)
		}
		if req.SuggestionID == "" {
			return nil
		}
		if err := s.store.DeleteSuggestion(ctx, accountID, req.SuggestionID); err != nil && !errors.Is(err, domain.ErrSuggestionNotFound) {
			logger.Warn("Failed to remove suggestion", "account_id", accountID, "suggestion_id", req.SuggestionID, "error", err)
		}
		return nil
	})
	if err != nil {
		return domain.Vaccine{}, err
	}

	logger.Info("Vaccine added", "account_id", accountID, "vaccine_id", vaccine.ID)
	return vaccine, nil
}

// Edit rewrites every field but the name. The analysis starts over.
func (s *VaccineService) Edit(ctx context.Context, accountID, id string, req domain.EditVaccineRequest) (domain.Vaccine, error) {
	dateTaken, err := parseDate("dateTaken", req.DateTaken)
	if err != nil {
		return domain.Vaccine{}, err
	}
	nextDue, err := parseDate("nextDueDate", req.NextDueDate)
	if err != nil {
		return domain.Vaccine{}, err
	}
	history, err := parseHistory(req.History)
	if err != nil {
		return domain.Vaccine{}, err
	}

	var updated domain.Vaccine
	err = guarded(ctx, s.guard, state.ActionKey(accountID, "edit_vaccine", id), func() error {
		existing, err := s.store.GetVaccine(ctx, accountID, id)
		if err != nil {
			return storeError(err)
		}
		updated = domain.Vaccine{
			ID:          existing.ID,
			Name:        existing.Name,
			DateTaken:   dateTaken,
			History:     history,
			NextDueDate: nextDue,
			Notes:       strings.TrimSpace(req.Notes),
			CreatedAt:   existing.CreatedAt,
			Analysis:    domain.NoAnalysis(),
		}
		if err := s.store.SaveVaccine(ctx, accountID, updated); err != nil {
			return storeError(err)
		}
		return nil
	})
	if err != nil {
		return domain.Vaccine{}, err
	}
	return updated, nil
}

func (s *VaccineService) Delete(ctx context.Context, accountID, id string) error {
	return guarded(ctx, s.guard, state.ActionKey(accountID, "delete_vaccine", id), func() error {
		if err := s.store.DeleteVaccine(ctx, accountID, id); err != nil {
			return storeError(err)
		}
		logger.Info("Vaccine deleted", "account_id", accountID, "vaccine_id", id)
		return nil
	})
}

// update loads a record, applies change and writes the whole record back
func (s *VaccineService) update(ctx context.Context, accountID, id, action string, change func(*domain.Vaccine) error) (domain.Vaccine, error) {
	var result domain.Vaccine
	err := guarded(ctx, s.guard, state.ActionKey(accountID, action, id), func() error {
		v, err := s.store.GetVaccine(ctx, accountID, id)
		if err != nil {
			return storeError(err)
		}
		if err := change(&v); err != nil {
			return apperrors.NewConflictError(err, err.Error())
		}
		if err := s.store.SaveVaccine(ctx, accountID, v); err != nil {
			return storeError(err)
		}
		result = v
		return nil
	})
	return result, err
}

// ConfirmDose marks the due dose as taken
func (s *VaccineService) ConfirmDose(ctx context.Context, accountID, id string) (domain.Vaccine, error) {
	return s.update(ctx, accountID, id, "confirm_dose", (*domain.Vaccine).ConfirmDose)
}

// AcceptAnalysis applies the pending AI proposal
func (s *VaccineService) AcceptAnalysis(ctx context.Context, accountID, id string) (domain.Vaccine, error) {
	return s.update(ctx, accountID, id, "accept_analysis", (*domain.Vaccine).AcceptAnalysis)
}

// DismissAnalysis drops the pending AI proposal
func (s *VaccineService) DismissAnalysis(ctx context.Context, accountID, id string) (domain.Vaccine, error) {
	return s.update(ctx, accountID, id, "dismiss_analysis", (*domain.Vaccine).DismissAnalysis)
}

func (s *VaccineService) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

type dueVaccine struct {
	vaccine domain.Vaccine
	due     time.Time
}

func (s *VaccineService) due(ctx context.Context, accountID string, keep func(due time.Time) bool) ([]domain.Vaccine, error) {
	vaccines, err := s.store.ListVaccines(ctx, accountID)
	if err != nil {
		return nil, storeError(err)
	}
	loc := s.now().Location()
	matched := make([]dueVaccine, 0, len(vaccines))
	for _, v := range vaccines {
		due, ok := v.NextDueDate.Time(loc)
		if ok && keep(due) {
			matched = append(matched, dueVaccine{vaccine: v, due: due})
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].due.Before(matched[j].due) })

	out := make([]domain.Vaccine, 0, len(matched))
	for _, m := range matched {
		out = append(out, m.vaccine)
	}
	return out, nil
}

// Upcoming returns vaccines due between today and the horizon, soonest first
func (s *VaccineService) Upcoming(ctx context.Context, accountID string) ([]domain.Vaccine, error) {
	today := s.today()
	limit := today.AddDate(0, s.upcomingMonths, 1)
	return s.due(ctx, accountID, func(due time.Time) bool {
		return !due.Before(today) && due.Before(limit)
	})
}

// Overdue returns vaccines whose due date has passed, oldest first
func (s *VaccineService) Overdue(ctx context.Context, accountID string) ([]domain.Vaccine, error) {
	today := s.today()
	return s.due(ctx, accountID, func(due time.Time) bool { return due.Before(today) })
}

// QuickAddOptions lists names offered as one-tap adds
func (s *VaccineService) QuickAddOptions(ctx context.Context, accountID string) ([]string, error) {
	vaccines, err := s.store.ListVaccines(ctx, accountID)
	if err != nil {
		return nil, storeError(err)
	}
	suggestions, err := s.store.ListSuggestions(ctx, accountID)
	if err != nil {
		return nil, storeError(err)
	}
	return QuickAddOptions(vaccines, suggestions), nil
}

// QuickAddOptions prefers unresolved suggestions, then common vaccines whose
// first word appears in no recorded name.
func QuickAddOptions(vaccines []domain.Vaccine, suggestions []domain.Suggestion) []string {
	existing := make([]string, 0, len(vaccines))
	for _, v := range vaccines {
		existing = append(existing, strings.ToLower(v.Name))
	}
	recorded := func(name string) bool {
		name = strings.ToLower(name)
		for _, e := range existing {
			if e == name {
				return true
			}
		}
		return false
	}

	options := make([]string, 0, quickAddLimit)
	for _, sg := range suggestions {
		if !recorded(sg.Name) {
			options = append(options, sg.Name)
		}
	}
	for _, common := range CommonVaccines {
		root := strings.ToLower(strings.Fields(common)[0])
		taken := false
		for _, e := range existing {
			if strings.Contains(e, root) {
				taken = true
				break
			}
		}
		if !taken {
			options = append(options, common)
		}
	}
	if len(options) > quickAddLimit {
		options = options[:quickAddLimit]
	}
	return options
}

// Export renders the account's vaccines as a spreadsheet and its file name
func (s *VaccineService) Export(ctx context.Context, accountID string) ([]byte, string, error) {
	vaccines, err := s.List(ctx, accountID)
	if err != nil {
		return nil, "", err
	}
	data, err := export.Vaccines(vaccines)
	if errors.Is(err, domain.ErrNoVaccines) {
		return nil, "", apperrors.Wrap(err, apperrors.ErrorTypeValidation, "NO_VACCINES", "There are no vaccines to export")
	}
	if err != nil {
		return nil, "", apperrors.NewInternalError(err)
	}
	return data, export.FileName(s.now()), nil
}
