package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/health-records/internal/bot/menus"
	"github.com/vladimiradmaev/health-records/internal/logger"
	"github.com/vladimiradmaev/health-records/internal/state"
)

// CommandHandler handles bot commands
type CommandHandler struct {
	api          menus.Sender
	views        *views
	stateManager state.StateManager
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(api menus.Sender, deps Dependencies, stateManager state.StateManager) *CommandHandler {
	return &CommandHandler{
		api:          api,
		views:        newViews(api, deps, stateManager),
		stateManager: stateManager,
	}
}

// Handle processes a command message
func (h *CommandHandler) Handle(ctx context.Context, message *tgbotapi.Message, user User) error {
	logger.Debug("Handling command", "command", message.Command(), "account_id", user.AccountID)

	chatID := message.Chat.ID
	h.views.reset(user)

	switch message.Command() {
	case "start":
		return menus.SendMainMenu(h.api, chatID)
	case "help":
		return menus.SendText(h.api, chatID, menus.HelpText, nil)
	case "vaccines":
		return h.views.vaccines(ctx, chatID, user)
	case "diet":
		return h.views.diet(chatID)
	case "export":
		return h.views.export(ctx, chatID, user)
	default:
		return menus.SendText(h.api, chatID, "Unknown command. Use /help to see the available commands.", nil)
	}
}
