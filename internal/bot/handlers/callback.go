package handlers

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/health-records/internal/analytics"
	"github.com/vladimiradmaev/health-records/internal/bot/keyboards"
	"github.com/vladimiradmaev/health-records/internal/bot/menus"
	"github.com/vladimiradmaev/health-records/internal/domain"
	"github.com/vladimiradmaev/health-records/internal/logger"
	"github.com/vladimiradmaev/health-records/internal/state"
)

// CallbackHandler handles callback query messages
type CallbackHandler struct {
	api          menus.Sender
	views        *views
	stateManager state.StateManager
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(api menus.Sender, deps Dependencies, stateManager state.StateManager) *CallbackHandler {
	return &CallbackHandler{
		api:          api,
		views:        newViews(api, deps, stateManager),
		stateManager: stateManager,
	}
}

// Handle processes a callback query
func (h *CallbackHandler) Handle(ctx context.Context, query *tgbotapi.CallbackQuery, user User) error {
	// Answer the callback query first to remove the loading state
	if _, err := h.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		logger.Warn("Failed to answer callback query", "error", err)
	}

	chatID := user.TelegramID
	if query.Message != nil {
		chatID = query.Message.Chat.ID
	}

	switch query.Data {
	case keyboards.DataMainMenu:
		h.views.reset(user)
		return menus.SendMainMenu(h.api, chatID)
	case keyboards.DataHelp:
		return menus.SendText(h.api, chatID, menus.HelpText, nil)
	case keyboards.DataVaccines:
		h.views.reset(user)
		return h.views.vaccines(ctx, chatID, user)
	case keyboards.DataAddVaccine:
		return h.handleAddVaccine(ctx, chatID, user)
	case keyboards.DataUpcoming:
		return h.views.due(ctx, chatID, user)
	case keyboards.DataSuggestions:
		return h.views.suggestions(ctx, chatID, user)
	case keyboards.DataExport:
		return h.views.export(ctx, chatID, user)
	case keyboards.DataSkipDate:
		if h.stateManager.GetUserState(user.TelegramID) != state.WaitingForVaccineDate {
			return h.views.vaccines(ctx, chatID, user)
		}
		return h.views.saveVaccine(ctx, chatID, user, "")
	case keyboards.DataDiet:
		h.views.reset(user)
		return h.views.diet(chatID)
	case keyboards.DataDietRecent:
		return h.views.recentDiet(ctx, chatID, user)
	case keyboards.DataDietSuggest:
		return h.handleDietIdeas(ctx, chatID, user)
	}

	prefix, arg, ok := strings.Cut(query.Data, ":")
	if !ok || arg == "" {
		return h.handleUnknownCallback(chatID)
	}

	switch prefix {
	case keyboards.PrefixQuickAdd:
		return h.views.askVaccineDate(chatID, user, arg, "")
	case keyboards.PrefixAddSuggested:
		return h.handleAddSuggested(ctx, chatID, user, arg)
	case keyboards.PrefixHideSuggest:
		if err := h.views.deps.Suggestions.Dismiss(ctx, user.AccountID, arg); err != nil {
			return h.views.fail(chatID, user, "dismiss_suggestion", err)
		}
		return h.views.suggestions(ctx, chatID, user)
	case keyboards.PrefixAccept:
		return h.handleRecordAction(ctx, chatID, user, "accept_analysis", arg, h.views.deps.Vaccines.AcceptAnalysis)
	case keyboards.PrefixDismiss:
		return h.handleRecordAction(ctx, chatID, user, "dismiss_analysis", arg, h.views.deps.Vaccines.DismissAnalysis)
	case keyboards.PrefixConfirm:
		return h.handleRecordAction(ctx, chatID, user, "confirm_dose", arg, h.views.deps.Vaccines.ConfirmDose)
	case keyboards.PrefixDelete:
		if err := h.views.deps.Vaccines.Delete(ctx, user.AccountID, arg); err != nil {
			return h.views.fail(chatID, user, "delete_vaccine", err)
		}
		return h.views.vaccines(ctx, chatID, user)
	case keyboards.PrefixEditDue:
		return h.handleEditDue(chatID, user, arg)
	case keyboards.PrefixDietLog:
		return h.handleDietLog(ctx, chatID, user, domain.DietEntryType(arg))
	case keyboards.PrefixIntensity:
		return h.handleIntensity(ctx, chatID, user, arg)
	case keyboards.PrefixTimeline:
		window, err := analytics.ParseWindow(arg)
		if err != nil {
			window = analytics.DefaultWindow
		}
		return h.views.timeline(ctx, chatID, user, window)
	default:
		return h.handleUnknownCallback(chatID)
	}
}

// handleAddVaccine starts the add flow with the quick-add names
func (h *CallbackHandler) handleAddVaccine(ctx context.Context, chatID int64, user User) error {
	h.views.reset(user)
	h.stateManager.SetUserState(user.TelegramID, state.WaitingForVaccineName)

	options, err := h.views.deps.Vaccines.QuickAddOptions(ctx, user.AccountID)
	if err != nil {
		logger.Warn("Failed to load quick add options", "account_id", user.AccountID, "error", err)
	}
	markup := keyboards.QuickAddMenu(options)
	return menus.SendText(h.api, chatID, "💉 Send the vaccine name or pick one:", &markup)
}

func (h *CallbackHandler) handleAddSuggested(ctx context.Context, chatID int64, user User, id string) error {
	suggestions, err := h.views.deps.Suggestions.List(ctx, user.AccountID)
	if err != nil {
		return h.views.fail(chatID, user, "list_suggestions", err)
	}
	for _, s := range suggestions {
		if s.ID == id {
			return h.views.askVaccineDate(chatID, user, s.Name, s.ID)
		}
	}
	return h.views.suggestions(ctx, chatID, user)
}

func (h *CallbackHandler) handleRecordAction(
	ctx context.Context,
	chatID int64,
	user User,
	action, id string,
	apply func(ctx context.Context, accountID, id string) (domain.Vaccine, error),
) error {
	if _, err := apply(ctx, user.AccountID, id); err != nil {
		return h.views.fail(chatID, user, action, err)
	}
	return h.views.vaccines(ctx, chatID, user)
}

func (h *CallbackHandler) handleEditDue(chatID int64, user User, id string) error {
	h.views.reset(user)
	h.stateManager.SetUserState(user.TelegramID, state.WaitingForEditDate)
	h.stateManager.SetTempData(user.TelegramID, state.KeyVaccineID, id)

	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Cancel", keyboards.DataVaccines),
	))
	return menus.SendText(h.api, chatID, "📅 Send the next due date (2026, 2026-05 or 2026-05-14), or 'none' to clear it.", &markup)
}

func (h *CallbackHandler) handleDietLog(ctx context.Context, chatID int64, user User, entryType domain.DietEntryType) error {
	if !entryType.Valid() {
		return h.handleUnknownCallback(chatID)
	}
	h.views.reset(user)
	h.stateManager.SetUserState(user.TelegramID, state.WaitingForDietName)
	h.stateManager.SetTempData(user.TelegramID, state.KeyDietType, string(entryType))

	ideas := menus.DietIdeas(h.views.deps.Diet.Suggest(ctx, user.AccountID), entryType)
	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Cancel", keyboards.DataDiet),
	))
	return menus.SendText(h.api, chatID, menus.DietPrompt(entryType, ideas), &markup)
}

func (h *CallbackHandler) handleIntensity(ctx context.Context, chatID int64, user User, arg string) error {
	intensity, err := strconv.Atoi(arg)
	if err != nil || intensity < 1 || intensity > 5 || h.stateManager.GetUserState(user.TelegramID) != state.WaitingForIntensity {
		return h.views.diet(chatID)
	}
	name := state.TempString(h.stateManager, user.TelegramID, state.KeyDietName)
	return h.views.saveDiet(ctx, chatID, user, name, intensity)
}

func (h *CallbackHandler) handleDietIdeas(ctx context.Context, chatID int64, user User) error {
	s := h.views.deps.Diet.Suggest(ctx, user.AccountID)
	text := "💡 Ideas for your log\n\n🍎 " + strings.Join(s.Food, ", ") +
		"\n🤒 " + strings.Join(s.Symptoms, ", ") +
		"\n💊 " + strings.Join(s.Medicines, ", ")
	markup := keyboards.DietMenu()
	return menus.SendText(h.api, chatID, text, &markup)
}

// handleUnknownCallback handles unknown callback data
func (h *CallbackHandler) handleUnknownCallback(chatID int64) error {
	markup := keyboards.BackToMain()
	return menus.SendText(h.api, chatID, "Unknown action. Please use the menu.", &markup)
}
