package services

import (
	"context"
	"sync"
	"time"

	"github.com/vladimiradmaev/health-records/internal/domain"
	"github.com/vladimiradmaev/health-records/internal/logger"
	"github.com/vladimiradmaev/health-records/internal/state"
)

// SuggestionService manages AI suggestions of vaccines the account has not recorded
type SuggestionService struct {
	store   domain.Store
	advisor domain.HealthAdvisor
	guard   state.Guard
	settle  time.Duration
	timeout time.Duration
}

func NewSuggestionService(store domain.Store, advisor domain.HealthAdvisor, guard state.Guard, settle, timeout time.Duration) *SuggestionService {
	return &SuggestionService{store: store, advisor: advisor, guard: guard, settle: settle, timeout: timeout}
}

func (s *SuggestionService) List(ctx context.Context, accountID string) ([]domain.Suggestion, error) {
	suggestions, err := s.store.ListSuggestions(ctx, accountID)
	if err != nil {
		return nil, storeError(err)
	}
	return suggestions, nil
}

// Dismiss removes a suggestion and remembers its name so it is not suggested again
func (s *SuggestionService) Dismiss(ctx context.Context, accountID, id string) error {
	return guarded(ctx, s.guard, state.ActionKey(accountID, "dismiss_suggestion", id), func() error {
		suggestions, err := s.store.ListSuggestions(ctx, accountID)
		if err != nil {
			return storeError(err)
		}
		var found *domain.Suggestion
		for i := range suggestions {
			if suggestions[i].ID == id {
				found = &suggestions[i]
				break
			}
		}
		if found == nil {
			return storeError(domain.ErrSuggestionNotFound)
		}

		if err := s.store.DeleteSuggestion(ctx, accountID, id); err != nil {
			return storeError(err)
		}
		if err := s.store.AppendDismissedName(ctx, accountID, found.Name); err != nil {
			return storeError(err)
		}
		logger.Info("Suggestion dismissed", "account_id", accountID, "name", found.Name)
		return nil
	})
}

// Generate asks the advisor for missing vaccines. Failures are logged and
// an empty answer leaves the stored set untouched.
func (s *SuggestionService) Generate(ctx context.Context, accountID string, vaccines []domain.Vaccine) {
	log := logger.WithContext(ctx)
	dismissed, err := s.store.ListDismissedNames(ctx, accountID)
	if err != nil {
		log.Warn("Failed to load dismissed names", "error", err)
		return
	}
	names := make([]string, 0, len(vaccines))
	for _, v := range vaccines {
		names = append(names, v.Name)
	}

	aiCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	suggestions, err := s.advisor.SuggestMissingVaccines(aiCtx, names, dismissed)
	if err != nil {
		log.Warn("Failed to suggest vaccines", "error", err)
		return
	}
	if len(suggestions) == 0 {
		return
	}
	if err := s.store.ReplaceSuggestions(ctx, accountID, suggestions); err != nil {
		log.Warn("Failed to save suggestions", "error", err)
		return
	}
	log.Info("Suggestions generated", "count", len(suggestions))
}

// SuggestionReconciler decides, once per session, whether to ask for suggestions
type SuggestionReconciler struct {
	svc       *SuggestionService
	ctx       context.Context
	accountID string

	mu          sync.Mutex
	vaccines    []domain.Vaccine
	suggestions []domain.Suggestion
	haveV       bool
	haveS       bool
	checked     bool
	timer       *time.Timer
	wg          sync.WaitGroup
}

// NewReconciler returns the reconciler of one session; ctx ends with the session
func (s *SuggestionService) NewReconciler(ctx context.Context, accountID string) *SuggestionReconciler {
	return &SuggestionReconciler{svc: s, ctx: ctx, accountID: accountID}
}

func (r *SuggestionReconciler) OnVaccines(vaccines []domain.Vaccine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vaccines = vaccines
	r.haveV = true
	r.schedule()
}

func (r *SuggestionReconciler) OnSuggestions(suggestions []domain.Suggestion) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suggestions = suggestions
	r.haveS = true
	r.schedule()
}

// Checked reports whether the session already made its one attempt
func (r *SuggestionReconciler) Checked() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.checked
}

// Wait blocks until a running generation finishes
func (r *SuggestionReconciler) Wait() {
	r.wg.Wait()
}

// Stop cancels a pending check
func (r *SuggestionReconciler) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
}

// schedule restarts the settle timer; callers hold r.mu
func (r *SuggestionReconciler) schedule() {
	if r.checked || !r.haveV || !r.haveS {
		return
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.svc.settle, r.fire)
}

func (r *SuggestionReconciler) fire() {
	r.mu.Lock()
	if r.checked || r.ctx.Err() != nil || len(r.vaccines) == 0 {
		r.mu.Unlock()
		return
	}
	r.checked = true
	if len(r.suggestions) > 0 {
		r.mu.Unlock()
		return
	}
	vaccines := append([]domain.Vaccine(nil), r.vaccines...)
	r.wg.Add(1)
	r.mu.Unlock()

	defer r.wg.Done()
	r.svc.Generate(r.ctx, r.accountID, vaccines)
}
