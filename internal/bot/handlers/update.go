package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/health-records/internal/bot/menus"
	"github.com/vladimiradmaev/health-records/internal/domain"
	"github.com/vladimiradmaev/health-records/internal/logger"
	"github.com/vladimiradmaev/health-records/internal/state"
)

// UpdateHandler handles telegram updates and coordinates other handlers
type UpdateHandler struct {
	deps            Dependencies
	callbackHandler *CallbackHandler
	commandHandler  *CommandHandler
	textHandler     *TextHandler
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(api menus.Sender, deps Dependencies, stateManager state.StateManager) *UpdateHandler {
	return &UpdateHandler{
		deps:            deps,
		callbackHandler: NewCallbackHandler(api, deps, stateManager),
		commandHandler:  NewCommandHandler(api, deps, stateManager),
		textHandler:     NewTextHandler(api, deps, stateManager),
	}
}

// Handle processes a telegram update
func (h *UpdateHandler) Handle(ctx context.Context, update tgbotapi.Update) error {
	if update.Message == nil && update.CallbackQuery == nil {
		return nil
	}

	var from *tgbotapi.User
	if update.Message != nil {
		from = update.Message.From
	} else {
		from = update.CallbackQuery.From
	}
	if from == nil {
		return nil
	}

	user, err := h.resolve(ctx, from)
	if err != nil {
		logger.Error("Error getting/creating account", "telegram_id", from.ID, "error", err)
		return fmt.Errorf("failed to get/create account: %w", err)
	}
	if h.deps.Sessions != nil {
		h.deps.Sessions.Touch(user.AccountID)
	}

	if update.CallbackQuery != nil {
		return h.callbackHandler.Handle(ctx, update.CallbackQuery, user)
	}

	if update.Message.IsCommand() {
		return h.commandHandler.Handle(ctx, update.Message, user)
	}

	if update.Message.Text != "" {
		return h.textHandler.Handle(ctx, update.Message, user)
	}

	return nil
}

func (h *UpdateHandler) resolve(ctx context.Context, from *tgbotapi.User) (User, error) {
	name := strings.TrimSpace(from.FirstName + " " + from.LastName)
	if name == "" {
		name = from.UserName
	}
	account, err := h.deps.Accounts.EnsureAccount(ctx, domain.Account{
		ID:   TelegramAccountID(from.ID),
		Name: name,
	})
	if err != nil {
		return User{}, err
	}
	return User{TelegramID: from.ID, AccountID: account.ID}, nil
}
