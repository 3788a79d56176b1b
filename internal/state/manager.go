package state

import (
	"context"
	"sync"
	"time"

	"github.com/vladimiradmaev/health-records/internal/domain"
)

// Conversation states constants
const (
	None                  = "none"
	WaitingForVaccineName = "waiting_for_vaccine_name"
	WaitingForVaccineDate = "waiting_for_vaccine_date"
	WaitingForEditDate    = "waiting_for_edit_date"
	WaitingForDietName    = "waiting_for_diet_name"
	WaitingForIntensity   = "waiting_for_intensity"
)

// Temp data keys
const (
	KeyVaccineName  = "vaccine_name"
	KeySuggestionID = "suggestion_id"
	KeyVaccineID    = "vaccine_id"
	KeyDietType     = "diet_type"
	KeyDietName     = "diet_name"
)

// StateManager keeps per-chat conversation state between messages
type StateManager interface {
	SetUserState(userID int64, state string)
	GetUserState(userID int64) string
	ClearUserState(userID int64)
	SetTempData(userID int64, key string, value interface{})
	GetTempData(userID int64, key string) (interface{}, bool)
	ClearTempData(userID int64)
}

// Guard rejects a user action while an identical one is still running
type Guard interface {
	// Begin claims the key and returns the release function, or
	// domain.ErrActionInFlight when the key is already claimed.
	Begin(ctx context.Context, key string) (func(), error)
}

// Manager manages user states and temporary data in memory
type Manager struct {
	userStates map[int64]string
	tempData   map[int64]map[string]interface{}
	inFlight   map[string]time.Time
	ttl        time.Duration
	mu         sync.RWMutex
}

// NewManager creates a new state manager; in-flight claims expire after ttl
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		userStates: make(map[int64]string),
		tempData:   make(map[int64]map[string]interface{}),
		inFlight:   make(map[string]time.Time),
		ttl:        ttl,
	}
}

// SetUserState sets the state for a user
func (m *Manager) SetUserState(userID int64, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userStates[userID] = state
}

// GetUserState gets the state for a user
func (m *Manager) GetUserState(userID int64) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, exists := m.userStates[userID]
	if !exists {
		return None
	}
	return state
}

// ClearUserState clears the state for a user
func (m *Manager) ClearUserState(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.userStates, userID)
}

// SetTempData sets temporary data for a user
func (m *Manager) SetTempData(userID int64, key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tempData[userID] == nil {
		m.tempData[userID] = make(map[string]interface{})
	}
	m.tempData[userID][key] = value
}

// GetTempData gets temporary data for a user
func (m *Manager) GetTempData(userID int64, key string) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	userData, exists := m.tempData[userID]
	if !exists {
		return nil, false
	}
	value, exists := userData[key]
	return value, exists
}

// ClearTempData clears all temporary data for a user
func (m *Manager) ClearTempData(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tempData, userID)
}

func (m *Manager) Begin(_ context.Context, key string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if expires, ok := m.inFlight[key]; ok && now.Before(expires) {
		return nil, domain.ErrActionInFlight
	}
	claimed := now.Add(m.ttl)
	m.inFlight[key] = claimed

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.inFlight[key].Equal(claimed) {
				delete(m.inFlight, key)
			}
		})
	}, nil
}

// TempString reads a string temp value
func TempString(m StateManager, userID int64, key string) string {
	v, ok := m.GetTempData(userID, key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// ActionKey builds the guard key of one user action on one record
func ActionKey(accountID, action, recordKey string) string {
	return "inflight:" + accountID + ":" + action + ":" + recordKey
}
