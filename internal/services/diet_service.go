package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/health-records/internal/domain"
	apperrors "github.com/vladimiradmaev/health-records/internal/errors"
	"github.com/vladimiradmaev/health-records/internal/logger"
	"github.com/vladimiradmaev/health-records/internal/state"
)

const defaultIntensity = 3

// DietService handles the food, medicine and symptom log
type DietService struct {
	store   domain.Store
	advisor domain.HealthAdvisor
	guard   state.Guard
	timeout time.Duration
	now     func() time.Time
}

func NewDietService(store domain.Store, advisor domain.HealthAdvisor, guard state.Guard, timeout time.Duration) *DietService {
	return &DietService{store: store, advisor: advisor, guard: guard, timeout: timeout, now: time.Now}
}

// List returns entries most recent first
func (s *DietService) List(ctx context.Context, accountID string) ([]domain.DietEntry, error) {
	entries, err := s.store.ListDietEntries(ctx, accountID)
	if err != nil {
		return nil, storeError(err)
	}
	domain.SortDietEntries(entries)
	return entries, nil
}

// EntryFromDraft builds the entry a draft describes. ok is false for a draft
// without a name, which is skipped on submit.
func EntryFromDraft(draft domain.DietEntryDraft, now time.Time) (domain.DietEntry, bool) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return domain.DietEntry{}, false
	}
	entry := domain.DietEntry{
		ID:        uuid.NewString(),
		Type:      draft.Type,
		Name:      name,
		Timestamp: now,
		Notes:     strings.TrimSpace(draft.Notes),
	}
	if draft.Timestamp != nil && !draft.Timestamp.IsZero() {
		entry.Timestamp = *draft.Timestamp
	}
	if draft.Type == domain.DietSymptom {
		entry.Intensity = draft.Intensity
		if entry.Intensity == 0 {
			entry.Intensity = defaultIntensity
		}
		entry.AfterFoodDelay = draft.AfterFoodDelay
	}
	return entry, true
}

// AddEntries saves every named draft of a multi-tab submission
func (s *DietService) AddEntries(ctx context.Context, accountID string, req domain.AddDietEntriesRequest) ([]domain.DietEntry, error) {
	now := s.now()
	entries := make([]domain.DietEntry, 0, len(req.Drafts))
	for _, draft := range req.Drafts {
		if !draft.Type.Valid() {
			return nil, apperrors.NewValidationError("unknown entry type").WithContext("type", string(draft.Type))
		}
		if entry, ok := EntryFromDraft(draft, now); ok {
			entries = append(entries, entry)
		}
	}
	if len(entries) == 0 {
		return nil, apperrors.Wrap(domain.ErrNothingToSave, apperrors.ErrorTypeValidation, "NOTHING_TO_SAVE", "Enter a name for at least one entry")
	}

	err := guarded(ctx, s.guard, state.ActionKey(accountID, "add_diet", ""), func() error {
		if err := s.store.CreateDietEntries(ctx, accountID, entries); err != nil {
			return storeError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Diet entries saved", "account_id", accountID, "count", len(entries))
	return entries, nil
}

func (s *DietService) Delete(ctx context.Context, accountID, id string) error {
	return guarded(ctx, s.guard, state.ActionKey(accountID, "delete_diet", id), func() error {
		if err := s.store.DeleteDietEntry(ctx, accountID, id); err != nil {
			return storeError(err)
		}
		return nil
	})
}

// Suggest returns quick-pick names; it falls back to fixed lists on any failure
func (s *DietService) Suggest(ctx context.Context, accountID string) domain.DietSuggestions {
	history, err := s.List(ctx, accountID)
	if err != nil {
		logger.Warn("Failed to load diet history", "account_id", accountID, "error", err)
		history = nil
	}
	aiCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.advisor.SuggestDiet(aiCtx, history, s.now())
}
