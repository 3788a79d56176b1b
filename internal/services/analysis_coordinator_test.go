package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/health-records/internal/domain"
	"github.com/vladimiradmaev/health-records/internal/fuzzydate"
	"github.com/vladimiradmaev/health-records/internal/logger"
	"github.com/vladimiradmaev/health-records/internal/repository"
	"github.com/vladimiradmaev/health-records/internal/state"
)

func listVaccines(t *testing.T, store domain.VaccineStore) []domain.Vaccine {
	t.Helper()
	vaccines, err := store.ListVaccines(context.Background(), "acc")
	require.NoError(t, err)
	return vaccines
}

func statusOf(t *testing.T, store domain.VaccineStore, id string) domain.AnalysisStatus {
	t.Helper()
	v, err := store.GetVaccine(context.Background(), "acc", id)
	require.NoError(t, err)
	return v.Analysis.Status()
}

func TestCoordinatorCompletesAnalysis(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	require.NoError(t, store.SaveVaccine(ctx, "acc", domain.Vaccine{ID: "v1", Name: "Tetanus", DateTaken: fuzzydate.MustParse("2015")}))
	advisor := &fakeAdvisor{advice: domain.VaccineAdvice{NextDueDate: fuzzydate.MustParse("2025-01-01"), Notes: "Booster every 10 years."}}
	c := NewAnalysisCoordinator(store, advisor, 0, time.Second)

	c.Reconcile(ctx, "acc", listVaccines(t, store))
	c.Wait()

	v, err := store.GetVaccine(ctx, "acc", "v1")
	require.NoError(t, err)
	assert.Equal(t, domain.AnalysisCompleted, v.Analysis.Status())
	proposal, ok := v.Analysis.Proposal()
	require.True(t, ok)
	assert.Equal(t, "2025-01-01", proposal.NextDueDate.String())
	assert.True(t, v.NextDueDate.IsZero(), "authoritative fields stay untouched")
	assert.Empty(t, v.Notes)
	_, busy := c.InFlight("acc")
	assert.False(t, busy)
}

func TestCoordinatorFailureDismisses(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	require.NoError(t, store.SaveVaccine(ctx, "acc", domain.Vaccine{ID: "v1", Name: "Flu"}))
	c := NewAnalysisCoordinator(store, &fakeAdvisor{analyzeErr: errors.New("quota")}, 0, time.Second)

	c.Reconcile(ctx, "acc", listVaccines(t, store))
	c.Wait()

	assert.Equal(t, domain.AnalysisDismissed, statusOf(t, store, "v1"))
}

func TestCoordinatorTimeoutDismisses(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	require.NoError(t, store.SaveVaccine(ctx, "acc", domain.Vaccine{ID: "v1", Name: "Flu"}))
	advisor := &fakeAdvisor{block: make(chan struct{})}
	c := NewAnalysisCoordinator(store, advisor, 0, 20*time.Millisecond)

	c.Reconcile(ctx, "acc", listVaccines(t, store))
	c.Wait()

	assert.Equal(t, domain.AnalysisDismissed, statusOf(t, store, "v1"))
}

func TestCoordinatorSingleLoadingPerAccount(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	require.NoError(t, store.SaveVaccine(ctx, "acc", domain.Vaccine{ID: "a", Name: "A", DateTaken: fuzzydate.MustParse("2020")}))
	require.NoError(t, store.SaveVaccine(ctx, "acc", domain.Vaccine{ID: "b", Name: "B"}))
	advisor := &fakeAdvisor{block: make(chan struct{}), advice: domain.VaccineAdvice{Notes: "ok"}}
	c := NewAnalysisCoordinator(store, advisor, 0, time.Minute)

	c.Reconcile(ctx, "acc", listVaccines(t, store))
	require.Eventually(t, func() bool { return statusOf(t, store, "b") == domain.AnalysisLoading }, time.Second, 5*time.Millisecond)

	// Repeated snapshots while busy must not start a second analysis.
	for i := 0; i < 5; i++ {
		c.Reconcile(ctx, "acc", listVaccines(t, store))
	}
	id, busy := c.InFlight("acc")
	assert.True(t, busy)
	assert.Equal(t, "b", id, "undated records are analysed first")
	assert.Equal(t, domain.AnalysisNone, statusOf(t, store, "a"))

	close(advisor.block)
	require.Eventually(t, func() bool {
		return statusOf(t, store, "a") == domain.AnalysisCompleted && statusOf(t, store, "b") == domain.AnalysisCompleted
	}, time.Second, 5*time.Millisecond)
	c.Wait()
	assert.Equal(t, []string{"B", "A"}, advisor.analyzedNames())
}

func TestCoordinatorDropsResultWhenRecordEdited(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	require.NoError(t, store.SaveVaccine(ctx, "acc", domain.Vaccine{ID: "v1", Name: "Flu"}))
	advisor := &fakeAdvisor{block: make(chan struct{}), advice: domain.VaccineAdvice{Notes: "stale"}}
	c := NewAnalysisCoordinator(store, advisor, 0, time.Minute)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.Reconcile(runCtx, "acc", listVaccines(t, store))
	require.Eventually(t, func() bool { return statusOf(t, store, "v1") == domain.AnalysisLoading }, time.Second, 5*time.Millisecond)

	// The user sets a due date while the analysis is running.
	v, err := store.GetVaccine(ctx, "acc", "v1")
	require.NoError(t, err)
	v.NextDueDate = fuzzydate.MustParse("2030")
	v.Analysis = domain.NoAnalysis()
	require.NoError(t, store.SaveVaccine(ctx, "acc", v))

	close(advisor.block)
	c.Wait()

	got, err := store.GetVaccine(ctx, "acc", "v1")
	require.NoError(t, err)
	assert.Equal(t, domain.AnalysisNone, got.Analysis.Status())
	assert.Equal(t, "2030", got.NextDueDate.String())
}

func TestCoordinatorCancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := repository.NewMemoryStore()
	require.NoError(t, store.SaveVaccine(ctx, "acc", domain.Vaccine{ID: "v1", Name: "Flu"}))
	advisor := &fakeAdvisor{}
	c := NewAnalysisCoordinator(store, advisor, time.Hour, time.Second)

	c.Reconcile(ctx, "acc", listVaccines(t, store))
	cancel()
	c.Wait()

	assert.Empty(t, advisor.analyzedNames())
	assert.Equal(t, domain.AnalysisNone, statusOf(t, store, "v1"))
}

func TestCoordinatorIgnoresRecordsWithDueDate(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	require.NoError(t, store.SaveVaccine(ctx, "acc", domain.Vaccine{ID: "v1", Name: "Flu", NextDueDate: fuzzydate.MustParse("2030")}))
	require.NoError(t, store.SaveVaccine(ctx, "acc", domain.Vaccine{ID: "v2", Name: "HPV", Analysis: domain.DismissedAnalysis()}))
	advisor := &fakeAdvisor{}
	c := NewAnalysisCoordinator(store, advisor, 0, time.Second)

	c.Reconcile(ctx, "acc", listVaccines(t, store))
	c.Wait()
	assert.Empty(t, advisor.analyzedNames())
}

func TestCoordinatorOutlivesCancelledSession(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	require.NoError(t, store.SaveVaccine(ctx, "acc", domain.Vaccine{ID: "v1", Name: "Flu"}))
	advisor := &fakeAdvisor{block: make(chan struct{}), advice: domain.VaccineAdvice{Notes: "Yearly."}}
	c := NewAnalysisCoordinator(store, advisor, 0, time.Minute)

	sessionCtx, endSession := context.WithCancel(ctx)
	c.Reconcile(sessionCtx, "acc", listVaccines(t, store))
	require.Eventually(t, func() bool { return statusOf(t, store, "v1") == domain.AnalysisLoading }, time.Second, 5*time.Millisecond)

	endSession()
	close(advisor.block)
	c.Wait()

	v, err := store.GetVaccine(ctx, "acc", "v1")
	require.NoError(t, err)
	assert.Equal(t, domain.AnalysisCompleted, v.Analysis.Status())
	proposal, ok := v.Analysis.Proposal()
	require.True(t, ok)
	assert.Equal(t, "Yearly.", proposal.Notes)
}

func TestCoordinatorsShareSlotThroughGuard(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	require.NoError(t, store.SaveVaccine(ctx, "acc", domain.Vaccine{ID: "a", Name: "A"}))
	require.NoError(t, store.SaveVaccine(ctx, "acc", domain.Vaccine{ID: "b", Name: "B"}))
	advisor := &fakeAdvisor{block: make(chan struct{}), advice: domain.VaccineAdvice{Notes: "ok"}}
	guard := state.NewManager(time.Minute)
	first := NewAnalysisCoordinator(store, advisor, 0, time.Minute, WithSlotGuard(guard))
	second := NewAnalysisCoordinator(store, advisor, 0, time.Minute, WithSlotGuard(guard))

	first.Reconcile(ctx, "acc", listVaccines(t, store))
	require.Eventually(t, func() bool { return len(advisor.analyzedNames()) == 1 }, time.Second, 5*time.Millisecond)

	second.Reconcile(ctx, "acc", listVaccines(t, store))
	second.Wait()
	_, busy := second.InFlight("acc")
	assert.False(t, busy, "the losing instance frees its local slot")

	loading := 0
	for _, v := range listVaccines(t, store) {
		if v.Analysis.Status() == domain.AnalysisLoading {
			loading++
		}
	}
	assert.Equal(t, 1, loading)
	assert.Len(t, advisor.analyzedNames(), 1)

	close(advisor.block)
	first.Wait()
	assert.Equal(t, domain.AnalysisCompleted, statusOf(t, store, "a"))
	assert.Equal(t, domain.AnalysisCompleted, statusOf(t, store, "b"))
	assert.Len(t, advisor.analyzedNames(), 2)

	release, err := guard.Begin(ctx, state.ActionKey("acc", "analysis", ""))
	require.NoError(t, err, "the slot is released after the run")
	release()
}

func TestCoordinatorLogsCarrySessionFields(t *testing.T) {
	logs := captureLogs(t)
	ctx := logger.ContextWithFields(context.Background(), "account_id", "acc")
	store := repository.NewMemoryStore()
	require.NoError(t, store.SaveVaccine(ctx, "acc", domain.Vaccine{ID: "v1", Name: "Flu"}))
	c := NewAnalysisCoordinator(store, &fakeAdvisor{analyzeErr: errors.New("quota")}, 0, time.Second)

	c.Reconcile(ctx, "acc", listVaccines(t, store))
	c.Wait()

	out := logs.String()
	assert.Contains(t, out, "Vaccine analysis failed")
	assert.Contains(t, out, "account_id=acc")
	assert.Contains(t, out, "vaccine_id=v1")
}
