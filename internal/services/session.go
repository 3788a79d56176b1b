package services

import (
	"context"
	"sync"
	"time"

	"github.com/vladimiradmaev/health-records/internal/domain"
	"github.com/vladimiradmaev/health-records/internal/logger"
)

// Subscriber delivers full collection snapshots of one account
type Subscriber interface {
	SubscribeVaccines(ctx context.Context, accountID string, fn func([]domain.Vaccine)) func()
	SubscribeSuggestions(ctx context.Context, accountID string, fn func([]domain.Suggestion)) func()
}

type session struct {
	cancel      context.CancelFunc
	unsubscribe []func()
	reconciler  *SuggestionReconciler
	lastSeen    time.Time
}

func (s *session) close() {
	for _, unsubscribe := range s.unsubscribe {
		unsubscribe()
	}
	s.reconciler.Stop()
	s.cancel()
}

// SessionManager keeps one live session per active account. A session feeds
// the account's snapshots to the analysis coordinator and the suggestion reconciler.
type SessionManager struct {
	subs        Subscriber
	coordinator *AnalysisCoordinator
	suggestions *SuggestionService
	idle        time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func NewSessionManager(subs Subscriber, coordinator *AnalysisCoordinator, suggestions *SuggestionService, idle time.Duration) *SessionManager {
	return &SessionManager{
		subs:        subs,
		coordinator: coordinator,
		suggestions: suggestions,
		idle:        idle,
		now:         time.Now,
		sessions:    make(map[string]*session),
	}
}

// Touch records activity, opening the session on first use
func (m *SessionManager) Touch(accountID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[accountID]; ok {
		s.lastSeen = m.now()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	ctx = logger.ContextWithFields(ctx, "account_id", accountID)
	reconciler := m.suggestions.NewReconciler(ctx, accountID)
	s := &session{cancel: cancel, reconciler: reconciler, lastSeen: m.now()}
	s.unsubscribe = append(s.unsubscribe,
		m.subs.SubscribeVaccines(ctx, accountID, func(vaccines []domain.Vaccine) {
			m.coordinator.Reconcile(ctx, accountID, vaccines)
			reconciler.OnVaccines(vaccines)
		}),
		m.subs.SubscribeSuggestions(ctx, accountID, reconciler.OnSuggestions),
	)
	m.sessions[accountID] = s
	logger.Info("Session opened", "account_id", accountID)
}

// Close tears down the account's session, if any
func (m *SessionManager) Close(accountID string) {
	m.mu.Lock()
	s, ok := m.sessions[accountID]
	delete(m.sessions, accountID)
	m.mu.Unlock()

	if ok {
		s.close()
		logger.Info("Session closed", "account_id", accountID)
	}
}

// Active reports whether the account has a live session
func (m *SessionManager) Active(accountID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[accountID]
	return ok
}

// CloseIdle closes sessions without activity for longer than the idle timeout
func (m *SessionManager) CloseIdle() {
	cutoff := m.now().Add(-m.idle)
	m.mu.Lock()
	var idle []string
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			idle = append(idle, id)
		}
	}
	m.mu.Unlock()

	for _, id := range idle {
		m.Close(id)
	}
}

// Run closes idle sessions until ctx is done, then closes all of them
func (m *SessionManager) Run(ctx context.Context) {
	interval := m.idle / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return
		case <-ticker.C:
			m.CloseIdle()
		}
	}
}

func (m *SessionManager) closeAll() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.Close(id)
	}
}
