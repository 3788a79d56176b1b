package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/health-records/internal/domain"
	"github.com/vladimiradmaev/health-records/internal/realtime"
	"github.com/vladimiradmaev/health-records/internal/repository"
)

type sessionFixture struct {
	hub         *realtime.Hub
	store       *repository.LiveStore
	advisor     *fakeAdvisor
	coordinator *AnalysisCoordinator
	sessions    *SessionManager
}

func newSessionFixture(idle time.Duration) *sessionFixture {
	hub := realtime.NewHub()
	store := repository.NewLiveStore(repository.NewMemoryStore(), hub, nil)
	advisor := &fakeAdvisor{
		advice:      domain.VaccineAdvice{Notes: "Booster."},
		suggestions: []domain.Suggestion{{ID: "n1", Name: "HPV", Reason: "Cancer prevention"}},
	}
	coordinator := NewAnalysisCoordinator(store, advisor, 0, time.Second)
	suggestions := NewSuggestionService(store, advisor, nil, 0, time.Second)
	return &sessionFixture{
		hub:         hub,
		store:       store,
		advisor:     advisor,
		coordinator: coordinator,
		sessions:    NewSessionManager(store, coordinator, suggestions, idle),
	}
}

func TestSessionDrivesAnalysisAndSuggestions(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(time.Hour)
	defer f.sessions.Close("acc")

	f.sessions.Touch("acc")
	require.NoError(t, f.store.SaveVaccine(ctx, "acc", domain.Vaccine{ID: "v1", Name: "Flu"}))

	require.Eventually(t, func() bool {
		v, err := f.store.GetVaccine(ctx, "acc", "v1")
		return err == nil && v.Analysis.Status() == domain.AnalysisCompleted
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		list, err := f.store.ListSuggestions(ctx, "acc")
		return err == nil && len(list) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, f.advisor.suggestCalls())
}

func TestLogoutDuringAnalysisKeepsResult(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(time.Hour)
	f.advisor.block = make(chan struct{})

	f.sessions.Touch("acc")
	require.NoError(t, f.store.SaveVaccine(ctx, "acc", domain.Vaccine{ID: "v1", Name: "Flu"}))
	require.Eventually(t, func() bool {
		v, err := f.store.GetVaccine(ctx, "acc", "v1")
		return err == nil && v.Analysis.Status() == domain.AnalysisLoading
	}, time.Second, 5*time.Millisecond)

	f.sessions.Close("acc")
	close(f.advisor.block)
	f.coordinator.Wait()

	v, err := f.store.GetVaccine(ctx, "acc", "v1")
	require.NoError(t, err)
	assert.Equal(t, domain.AnalysisCompleted, v.Analysis.Status())
}

func TestSessionCloseUnsubscribes(t *testing.T) {
	f := newSessionFixture(time.Hour)

	f.sessions.Touch("acc")
	f.sessions.Touch("acc")
	assert.True(t, f.sessions.Active("acc"))
	assert.Equal(t, 1, f.hub.Subscribers("acc", realtime.TopicVaccines))

	f.sessions.Close("acc")
	assert.False(t, f.sessions.Active("acc"))
	require.Eventually(t, func() bool {
		return f.hub.Subscribers("acc", realtime.TopicVaccines) == 0 &&
			f.hub.Subscribers("acc", realtime.TopicSuggestions) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestSessionIdleTimeout(t *testing.T) {
	f := newSessionFixture(time.Minute)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	f.sessions.now = func() time.Time { return now }

	f.sessions.Touch("idle")
	f.sessions.Touch("busy")
	now = now.Add(50 * time.Second)
	f.sessions.Touch("busy")
	now = now.Add(30 * time.Second)

	f.sessions.CloseIdle()
	assert.False(t, f.sessions.Active("idle"))
	assert.True(t, f.sessions.Active("busy"))
	f.sessions.Close("busy")
}

func TestSessionRunClosesAllOnShutdown(t *testing.T) {
	f := newSessionFixture(time.Hour)
	f.sessions.Touch("a")
	f.sessions.Touch("b")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.sessions.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	assert.False(t, f.sessions.Active("a"))
	assert.False(t, f.sessions.Active("b"))
}
