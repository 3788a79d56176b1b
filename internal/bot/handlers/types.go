package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/vladimiradmaev/health-records/internal/domain"
	"github.com/vladimiradmaev/health-records/internal/interfaces"
)

// AccountLinker creates or loads the account bound to a Telegram user
type AccountLinker interface {
	EnsureAccount(ctx context.Context, account domain.Account) (domain.Account, error)
}

// Dependencies holds all service dependencies for handlers
type Dependencies struct {
	Accounts    AccountLinker
	Vaccines    interfaces.VaccineServiceInterface
	Suggestions interfaces.SuggestionServiceInterface
	Diet        interfaces.DietServiceInterface
	Sessions    interfaces.SessionToucher
	Location    *time.Location
}

func (d Dependencies) location() *time.Location {
	if d.Location == nil {
		return time.Local
	}
	return d.Location
}

// User is the Telegram sender resolved to its account
type User struct {
	TelegramID int64
	AccountID  string
}

// TelegramAccountID is the account id of a Telegram user
func TelegramAccountID(telegramID int64) string {
	return "telegram_" + strconv.FormatInt(telegramID, 10)
}
