package domain

import (
	"context"
	"time"

	"github.com/vladimiradmaev/health-records/internal/fuzzydate"
)

// AccountStore persists accounts and their credentials
type AccountStore interface {
	CreateAccount(ctx context.Context, account Account, passwordHash string) error
	FindAccountByEmail(ctx context.Context, email string) (Account, string, error)
	GetAccount(ctx context.Context, id string) (Account, error)
	EnsureAccount(ctx context.Context, account Account) (Account, error)
}

// VaccineStore persists vaccine records; writes replace the whole record
type VaccineStore interface {
	ListVaccines(ctx context.Context, accountID string) ([]Vaccine, error)
	GetVaccine(ctx context.Context, accountID, id string) (Vaccine, error)
	SaveVaccine(ctx context.Context, accountID string, vaccine Vaccine) error
	DeleteVaccine(ctx context.Context, accountID, id string) error
}

// SuggestionStore persists suggestions and the dismissed-names log
type SuggestionStore interface {
	ListSuggestions(ctx context.Context, accountID string) ([]Suggestion, error)
	ReplaceSuggestions(ctx context.Context, accountID string, suggestions []Suggestion) error
	DeleteSuggestion(ctx context.Context, accountID, id string) error
	ListDismissedNames(ctx context.Context, accountID string) ([]string, error)
	AppendDismissedName(ctx context.Context, accountID, name string) error
}

// DietStore persists diet entries
type DietStore interface {
	ListDietEntries(ctx context.Context, accountID string) ([]DietEntry, error)
	CreateDietEntries(ctx context.Context, accountID string, entries []DietEntry) error
	DeleteDietEntry(ctx context.Context, accountID, id string) error
}

// Store is the full record store
type Store interface {
	AccountStore
	VaccineStore
	SuggestionStore
	DietStore
}

// AnalyzeVaccineInput is what the advisor sees of one record
type AnalyzeVaccineInput struct {
	VaccineName string
	DateTaken   fuzzydate.Date
	History     []fuzzydate.Date
}

// HealthAdvisor is the generative-AI boundary
type HealthAdvisor interface {
	AnalyzeVaccine(ctx context.Context, in AnalyzeVaccineInput) (VaccineAdvice, error)
	SuggestMissingVaccines(ctx context.Context, currentNames, dismissedNames []string) ([]Suggestion, error)
	SuggestDiet(ctx context.Context, history []DietEntry, now time.Time) DietSuggestions
}
