package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vladimiradmaev/health-records/internal/domain"
	apperrors "github.com/vladimiradmaev/health-records/internal/errors"
	"github.com/vladimiradmaev/health-records/internal/logger"
	"github.com/vladimiradmaev/health-records/internal/state"
)

// AnalysisCoordinator runs automatic vaccine analyses. Each account has a
// single slot, so at most one of its records is loading at any time. The
// local map is the fast path; the slot guard extends the claim to every
// instance sharing the guard's backend.
type AnalysisCoordinator struct {
	store   domain.VaccineStore
	advisor domain.HealthAdvisor
	slots   state.Guard
	delay   time.Duration
	timeout time.Duration

	mu       sync.Mutex
	inFlight map[string]string
	wg       sync.WaitGroup
}

// CoordinatorOption configures an AnalysisCoordinator
type CoordinatorOption func(*AnalysisCoordinator)

// WithSlotGuard claims each account's slot through guard as well as locally.
// The guard's claim lifetime must outlast delay plus timeout.
func WithSlotGuard(guard state.Guard) CoordinatorOption {
	return func(c *AnalysisCoordinator) {
		c.slots = guard
	}
}

func NewAnalysisCoordinator(store domain.VaccineStore, advisor domain.HealthAdvisor, delay, timeout time.Duration, opts ...CoordinatorOption) *AnalysisCoordinator {
	c := &AnalysisCoordinator{
		store:    store,
		advisor:  advisor,
		delay:    delay,
		timeout:  timeout,
		inFlight: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// InFlight returns the vaccine currently held in the account's slot
func (c *AnalysisCoordinator) InFlight(accountID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.inFlight[accountID]
	return id, ok
}

// Reconcile is called with every vaccines snapshot. It claims the slot for
// the first candidate in display order when the slot is free.
func (c *AnalysisCoordinator) Reconcile(ctx context.Context, accountID string, vaccines []domain.Vaccine) {
	if ctx.Err() != nil {
		return
	}
	candidate, ok := domain.FirstAnalysisCandidate(vaccines)
	if !ok {
		return
	}

	c.mu.Lock()
	if _, busy := c.inFlight[accountID]; busy {
		c.mu.Unlock()
		return
	}
	c.inFlight[accountID] = candidate.ID
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		release, err := c.claimSlot(ctx, accountID)
		if err != nil {
			c.release(accountID)
			if !errors.Is(err, domain.ErrActionInFlight) {
				logger.WithContext(ctx).Warn("Failed to claim analysis slot", "error", err)
			}
			return
		}
		c.run(ctx, accountID, candidate.ID)
		release()
		c.release(accountID)
		c.next(ctx, accountID)
	}()
}

// Wait blocks until every started analysis has finished
func (c *AnalysisCoordinator) Wait() {
	c.wg.Wait()
}

// claimSlot takes the account's shared slot. Another instance holding it
// yields domain.ErrActionInFlight; its writes reach this instance as snapshots
// and trigger the next Reconcile.
func (c *AnalysisCoordinator) claimSlot(ctx context.Context, accountID string) (func(), error) {
	if c.slots == nil {
		return func() {}, nil
	}
	return c.slots.Begin(ctx, state.ActionKey(accountID, "analysis", ""))
}

func (c *AnalysisCoordinator) release(accountID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, accountID)
}

// next picks up records that became candidates while the slot was held
func (c *AnalysisCoordinator) next(ctx context.Context, accountID string) {
	if ctx.Err() != nil {
		return
	}
	vaccines, err := c.store.ListVaccines(ctx, accountID)
	if err != nil {
		logger.WithContext(ctx).Warn("Failed to list vaccines for analysis", "error", err)
		return
	}
	c.Reconcile(ctx, accountID, vaccines)
}

func (c *AnalysisCoordinator) run(ctx context.Context, accountID, vaccineID string) {
	log := logger.WithContext(ctx).With("vaccine_id", vaccineID)

	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	v, err := c.store.GetVaccine(ctx, accountID, vaccineID)
	if err != nil {
		if !errors.Is(err, domain.ErrVaccineNotFound) {
			log.Warn("Failed to load vaccine for analysis", "error", err)
		}
		return
	}
	if !v.NeedsAnalysis() {
		return
	}

	v.Analysis = domain.LoadingAnalysis()
	if err := c.store.SaveVaccine(ctx, accountID, v); err != nil {
		log.Warn("Failed to mark analysis loading", "error", err)
		return
	}

	// Once loading, the call outlives the session and only the timeout ends
	// it, so a logout never turns a pending analysis into a dismissal.
	detached := context.WithoutCancel(ctx)
	aiCtx, cancel := context.WithTimeout(detached, c.timeout)
	advice, aiErr := c.advisor.AnalyzeVaccine(aiCtx, domain.AnalyzeVaccineInput{
		VaccineName: v.Name,
		DateTaken:   v.DateTaken,
		History:     v.History,
	})
	cancel()

	current, err := c.store.GetVaccine(detached, accountID, vaccineID)
	if err != nil {
		if !errors.Is(err, domain.ErrVaccineNotFound) {
			log.Warn("Failed to reload vaccine after analysis", "error", err)
		}
		return
	}
	if current.Analysis.Status() != domain.AnalysisLoading {
		log.Info("Vaccine changed during analysis, result dropped")
		return
	}

	if aiErr != nil {
		if errors.Is(aiErr, context.DeadlineExceeded) {
			aiErr = apperrors.NewTimeoutError("analyze_vaccine")
		}
		log.Warn("Vaccine analysis failed", "error", aiErr)
		current.Analysis = domain.DismissedAnalysis()
	} else {
		current.Analysis = domain.ProposedAnalysis(domain.Proposal{
			NextDueDate: advice.NextDueDate,
			Notes:       advice.Notes,
		})
	}
	if err := c.store.SaveVaccine(detached, accountID, current); err != nil {
		log.Warn("Failed to save analysis result", "error", err)
		return
	}
	log.Info("Vaccine analysis finished", "status", current.Analysis.Status())
}
