package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/health-records/internal/bot/keyboards"
	"github.com/vladimiradmaev/health-records/internal/bot/menus"
	"github.com/vladimiradmaev/health-records/internal/domain"
	"github.com/vladimiradmaev/health-records/internal/fuzzydate"
	"github.com/vladimiradmaev/health-records/internal/state"
)

const maxNameLength = 200

// TextHandler handles text messages
type TextHandler struct {
	api          menus.Sender
	views        *views
	stateManager state.StateManager
}

// NewTextHandler creates a new text handler
func NewTextHandler(api menus.Sender, deps Dependencies, stateManager state.StateManager) *TextHandler {
	return &TextHandler{
		api:          api,
		views:        newViews(api, deps, stateManager),
		stateManager: stateManager,
	}
}

// Handle processes a text message
func (h *TextHandler) Handle(ctx context.Context, message *tgbotapi.Message, user User) error {
	text := strings.TrimSpace(message.Text)
	chatID := message.Chat.ID

	switch h.stateManager.GetUserState(user.TelegramID) {
	case state.WaitingForVaccineName:
		return h.handleVaccineName(chatID, user, text)
	case state.WaitingForVaccineDate:
		return h.handleVaccineDate(ctx, chatID, user, text)
	case state.WaitingForEditDate:
		return h.handleEditDate(ctx, chatID, user, text)
	case state.WaitingForDietName:
		return h.handleDietName(ctx, chatID, user, text)
	case state.WaitingForIntensity:
		markup := keyboards.IntensityMenu()
		return menus.SendText(h.api, chatID, "Please rate the symptom with the buttons (1 mild, 5 severe).", &markup)
	default:
		return h.handleDefaultText(chatID)
	}
}

func (h *TextHandler) handleVaccineName(chatID int64, user User, name string) error {
	if name == "" || len(name) > maxNameLength {
		return menus.SendText(h.api, chatID, "Please send a vaccine name.", nil)
	}
	return h.views.askVaccineDate(chatID, user, name, "")
}

func parseDateReply(text string) (fuzzydate.Date, bool) {
	d, err := fuzzydate.ParseValid(text)
	if err != nil || d.IsZero() {
		return fuzzydate.Date{}, false
	}
	return d, true
}

func (h *TextHandler) handleVaccineDate(ctx context.Context, chatID int64, user User, text string) error {
	d, ok := parseDateReply(text)
	if !ok {
		markup := keyboards.SkipDateMenu()
		return menus.SendText(h.api, chatID, "I couldn't read that date. Try 2019, 2019-05 or 2019-05-14.", &markup)
	}
	return h.views.saveVaccine(ctx, chatID, user, d.String())
}

// handleEditDate sets or clears the next due date and keeps every other field
func (h *TextHandler) handleEditDate(ctx context.Context, chatID int64, user User, text string) error {
	nextDue := ""
	if !strings.EqualFold(text, "none") {
		d, ok := parseDateReply(text)
		if !ok {
			return menus.SendText(h.api, chatID, "I couldn't read that date. Try 2026, 2026-05 or 2026-05-14, or 'none'.", nil)
		}
		nextDue = d.String()
	}

	id := state.TempString(h.stateManager, user.TelegramID, state.KeyVaccineID)
	h.views.reset(user)

	v, err := h.views.deps.Vaccines.Get(ctx, user.AccountID, id)
	if err != nil {
		return h.views.fail(chatID, user, "edit_vaccine", err)
	}
	history := make([]string, 0, len(v.History))
	for _, d := range v.History {
		history = append(history, d.String())
	}
	_, err = h.views.deps.Vaccines.Edit(ctx, user.AccountID, id, domain.EditVaccineRequest{
		DateTaken:   v.DateTaken.String(),
		NextDueDate: nextDue,
		History:     history,
		Notes:       v.Notes,
	})
	if err != nil {
		return h.views.fail(chatID, user, "edit_vaccine", err)
	}
	return h.views.vaccines(ctx, chatID, user)
}

func (h *TextHandler) handleDietName(ctx context.Context, chatID int64, user User, name string) error {
	if name == "" || len(name) > maxNameLength {
		return menus.SendText(h.api, chatID, "Please send a name.", nil)
	}

	entryType := domain.DietEntryType(state.TempString(h.stateManager, user.TelegramID, state.KeyDietType))
	if entryType != domain.DietSymptom {
		return h.views.saveDiet(ctx, chatID, user, name, 0)
	}

	h.stateManager.SetTempData(user.TelegramID, state.KeyDietName, name)
	h.stateManager.SetUserState(user.TelegramID, state.WaitingForIntensity)
	markup := keyboards.IntensityMenu()
	return menus.SendText(h.api, chatID, "🤒 How strong is it? 1 is mild, 5 is severe.", &markup)
}

// handleDefaultText handles text outside any conversation
func (h *TextHandler) handleDefaultText(chatID int64) error {
	markup := keyboards.MainMenu()
	return menus.SendText(h.api, chatID, "Please use the menu to choose an action.", &markup)
}
