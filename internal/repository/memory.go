package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/vladimiradmaev/health-records/internal/domain"
	"github.com/vladimiradmaev/health-records/internal/fuzzydate"
)

type memAccount struct {
	account domain.Account
	hash    string
}

type memTenant struct {
	vaccines    map[string]domain.Vaccine
	order       []string
	suggestions []domain.Suggestion
	dismissed   []string
	diet        []domain.DietEntry
}

// MemoryStore is an in-process domain.Store used by tests and local runs without postgres
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]memAccount
	tenants  map[string]*memTenant
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]memAccount),
		tenants:  make(map[string]*memTenant),
	}
}

func (m *MemoryStore) tenant(accountID string) *memTenant {
	t, ok := m.tenants[accountID]
	if !ok {
		t = &memTenant{vaccines: make(map[string]domain.Vaccine)}
		m.tenants[accountID] = t
	}
	return t
}

func copyVaccine(v domain.Vaccine) domain.Vaccine {
	v.History = append([]fuzzydate.Date(nil), v.History...)
	return v
}

func (m *MemoryStore) CreateAccount(_ context.Context, account domain.Account, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account.Email = strings.ToLower(account.Email)
	for _, a := range m.accounts {
		if account.Email != "" && a.account.Email == account.Email {
			return domain.ErrEmailTaken
		}
	}
	m.accounts[account.ID] = memAccount{account: account, hash: passwordHash}
	return nil
}

func (m *MemoryStore) FindAccountByEmail(_ context.Context, email string) (domain.Account, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	email = strings.ToLower(email)
	for _, a := range m.accounts {
		if a.account.Email == email {
			return a.account, a.hash, nil
		}
	}
	return domain.Account{}, "", domain.ErrAccountNotFound
}

func (m *MemoryStore) GetAccount(_ context.Context, id string) (domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return a.account, nil
}

func (m *MemoryStore) EnsureAccount(_ context.Context, account domain.Account) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account.Email = strings.ToLower(account.Email)
	existing := m.accounts[account.ID]
	existing.account = account
	m.accounts[account.ID] = existing
	return account, nil
}

func (m *MemoryStore) ListVaccines(_ context.Context, accountID string) ([]domain.Vaccine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tenants[accountID]
	if !ok {
		return []domain.Vaccine{}, nil
	}
	out := make([]domain.Vaccine, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, copyVaccine(t.vaccines[id]))
	}
	return out, nil
}

func (m *MemoryStore) GetVaccine(_ context.Context, accountID, id string) (domain.Vaccine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tenants[accountID]
	if !ok {
		return domain.Vaccine{}, domain.ErrVaccineNotFound
	}
	v, ok := t.vaccines[id]
	if !ok {
		return domain.Vaccine{}, domain.ErrVaccineNotFound
	}
	return copyVaccine(v), nil
}

func (m *MemoryStore) SaveVaccine(_ context.Context, accountID string, vaccine domain.Vaccine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for owner, t := range m.tenants {
		if _, ok := t.vaccines[vaccine.ID]; ok && owner != accountID {
			return domain.ErrVaccineNotFound
		}
	}
	t := m.tenant(accountID)
	if _, ok := t.vaccines[vaccine.ID]; !ok {
		t.order = append(t.order, vaccine.ID)
	}
	t.vaccines[vaccine.ID] = copyVaccine(vaccine)
	return nil
}

func (m *MemoryStore) DeleteVaccine(_ context.Context, accountID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenants[accountID]
	if !ok {
		return domain.ErrVaccineNotFound
	}
	if _, ok := t.vaccines[id]; !ok {
		return domain.ErrVaccineNotFound
	}
	delete(t.vaccines, id)
	for i, existing := range t.order {
		if existing == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryStore) ListSuggestions(_ context.Context, accountID string) ([]domain.Suggestion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tenants[accountID]
	if !ok {
		return []domain.Suggestion{}, nil
	}
	return append([]domain.Suggestion{}, t.suggestions...), nil
}

func (m *MemoryStore) ReplaceSuggestions(_ context.Context, accountID string, suggestions []domain.Suggestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tenant(accountID).suggestions = append([]domain.Suggestion{}, suggestions...)
	return nil
}

func (m *MemoryStore) DeleteSuggestion(_ context.Context, accountID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.tenant(accountID)
	for i, s := range t.suggestions {
		if s.ID == id {
			t.suggestions = append(t.suggestions[:i], t.suggestions[i+1:]...)
			return nil
		}
	}
	return domain.ErrSuggestionNotFound
}

func (m *MemoryStore) ListDismissedNames(_ context.Context, accountID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tenants[accountID]
	if !ok {
		return []string{}, nil
	}
	return append([]string{}, t.dismissed...), nil
}

func (m *MemoryStore) AppendDismissedName(_ context.Context, accountID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.tenant(accountID)
	t.dismissed = append(t.dismissed, name)
	return nil
}

func (m *MemoryStore) ListDietEntries(_ context.Context, accountID string) ([]domain.DietEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tenants[accountID]
	if !ok {
		return []domain.DietEntry{}, nil
	}
	out := append([]domain.DietEntry{}, t.diet...)
	domain.SortDietEntries(out)
	return out, nil
}

func (m *MemoryStore) CreateDietEntries(_ context.Context, accountID string, entries []domain.DietEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.tenant(accountID)
	t.diet = append(t.diet, entries...)
	return nil
}

func (m *MemoryStore) DeleteDietEntry(_ context.Context, accountID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.tenant(accountID)
	for i, e := range t.diet {
		if e.ID == id {
			t.diet = append(t.diet[:i], t.diet[i+1:]...)
			return nil
		}
	}
	return domain.ErrDietEntryNotFound
}
