package interfaces

import (
	"context"

	"github.com/vladimiradmaev/health-records/internal/domain"
)

// AuthServiceInterface defines the contract for identity operations
type AuthServiceInterface interface {
	Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error)
	Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error)
	Authenticate(ctx context.Context, token string) (domain.Account, error)
	Account(ctx context.Context, accountID string) (domain.Account, error)
	Logout(accountID string)
	GoogleAuthURL(host string) (string, error)
	GoogleCallback(ctx context.Context, req domain.GoogleCallbackRequest) (domain.AuthResponse, error)
}

// VaccineServiceInterface defines the contract for vaccine record operations
type VaccineServiceInterface interface {
	List(ctx context.Context, accountID string) ([]domain.Vaccine, error)
	Get(ctx context.Context, accountID, id string) (domain.Vaccine, error)
	Add(ctx context.Context, accountID string, req domain.AddVaccineRequest) (domain.Vaccine, error)
	Edit(ctx context.Context, accountID, id string, req domain.EditVaccineRequest) (domain.Vaccine, error)
	Delete(ctx context.Context, accountID, id string) error
	ConfirmDose(ctx context.Context, accountID, id string) (domain.Vaccine, error)
	AcceptAnalysis(ctx context.Context, accountID, id string) (domain.Vaccine, error)
	DismissAnalysis(ctx context.Context, accountID, id string) (domain.Vaccine, error)
	Upcoming(ctx context.Context, accountID string) ([]domain.Vaccine, error)
	Overdue(ctx context.Context, accountID string) ([]domain.Vaccine, error)
	QuickAddOptions(ctx context.Context, accountID string) ([]string, error)
	Export(ctx context.Context, accountID string) ([]byte, string, error)
}

// SuggestionServiceInterface defines the contract for suggestion operations
type SuggestionServiceInterface interface {
	List(ctx context.Context, accountID string) ([]domain.Suggestion, error)
	Dismiss(ctx context.Context, accountID, id string) error
}

// DietServiceInterface defines the contract for diet log operations
type DietServiceInterface interface {
	List(ctx context.Context, accountID string) ([]domain.DietEntry, error)
	AddEntries(ctx context.Context, accountID string, req domain.AddDietEntriesRequest) ([]domain.DietEntry, error)
	Delete(ctx context.Context, accountID, id string) error
	Suggest(ctx context.Context, accountID string) domain.DietSuggestions
}

// SessionToucher keeps an account's live session open
type SessionToucher interface {
	Touch(accountID string)
}

// SnapshotSubscriber streams full collection snapshots for one account
type SnapshotSubscriber interface {
	SubscribeVaccines(ctx context.Context, accountID string, fn func([]domain.Vaccine)) func()
	SubscribeSuggestions(ctx context.Context, accountID string, fn func([]domain.Suggestion)) func()
	SubscribeDietEntries(ctx context.Context, accountID string, fn func([]domain.DietEntry)) func()
}
