package handlers

import (
	"context"
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/health-records/internal/analytics"
	"github.com/vladimiradmaev/health-records/internal/bot/keyboards"
	"github.com/vladimiradmaev/health-records/internal/bot/menus"
	"github.com/vladimiradmaev/health-records/internal/domain"
	apperrors "github.com/vladimiradmaev/health-records/internal/errors"
	"github.com/vladimiradmaev/health-records/internal/logger"
	"github.com/vladimiradmaev/health-records/internal/state"
)

// views renders the screens shared by commands, callbacks and text replies
type views struct {
	api          menus.Sender
	deps         Dependencies
	stateManager state.StateManager
	now          func() time.Time
}

func newViews(api menus.Sender, deps Dependencies, stateManager state.StateManager) *views {
	return &views{api: api, deps: deps, stateManager: stateManager, now: time.Now}
}

func (v *views) reset(user User) {
	v.stateManager.ClearUserState(user.TelegramID)
	v.stateManager.ClearTempData(user.TelegramID)
}

// fail tells the user what went wrong; the error is logged, not returned,
// so one failed action does not stop the update loop
func (v *views) fail(chatID int64, user User, action string, err error) error {
	logger.Warn("Bot action failed", "action", action, "account_id", user.AccountID, "error", err)

	text := "Something went wrong. Please try again."
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, domain.ErrActionInFlight):
		text = "⏳ Still working on your previous request."
	case errors.As(err, &appErr) && appErr.Type != apperrors.ErrorTypeInternal && appErr.Type != apperrors.ErrorTypeDatabase:
		text = "⚠️ " + appErr.Message
	}
	return menus.SendText(v.api, chatID, text, nil)
}

func (v *views) vaccines(ctx context.Context, chatID int64, user User) error {
	list, err := v.deps.Vaccines.List(ctx, user.AccountID)
	if err != nil {
		return v.fail(chatID, user, "list_vaccines", err)
	}
	markup := keyboards.VaccineMenu(list)
	return menus.SendText(v.api, chatID, menus.VaccineList(list), &markup)
}

func (v *views) due(ctx context.Context, chatID int64, user User) error {
	upcoming, err := v.deps.Vaccines.Upcoming(ctx, user.AccountID)
	if err != nil {
		return v.fail(chatID, user, "upcoming", err)
	}
	overdue, err := v.deps.Vaccines.Overdue(ctx, user.AccountID)
	if err != nil {
		return v.fail(chatID, user, "overdue", err)
	}
	markup := keyboards.VaccineMenu(nil)
	return menus.SendText(v.api, chatID, menus.DueList(upcoming, overdue), &markup)
}

func (v *views) suggestions(ctx context.Context, chatID int64, user User) error {
	list, err := v.deps.Suggestions.List(ctx, user.AccountID)
	if err != nil {
		return v.fail(chatID, user, "list_suggestions", err)
	}
	markup := keyboards.SuggestionMenu(list)
	return menus.SendText(v.api, chatID, menus.SuggestionList(list), &markup)
}

func (v *views) diet(chatID int64) error {
	markup := keyboards.DietMenu()
	return menus.SendText(v.api, chatID, "🍽️ Log what you ate, took or felt.", &markup)
}

func (v *views) recentDiet(ctx context.Context, chatID int64, user User) error {
	entries, err := v.deps.Diet.List(ctx, user.AccountID)
	if err != nil {
		return v.fail(chatID, user, "list_diet", err)
	}
	markup := keyboards.DietMenu()
	return menus.SendText(v.api, chatID, menus.RecentDiet(entries, v.deps.location()), &markup)
}

func (v *views) timeline(ctx context.Context, chatID int64, user User, window int) error {
	entries, err := v.deps.Diet.List(ctx, user.AccountID)
	if err != nil {
		return v.fail(chatID, user, "timeline", err)
	}
	tl := analytics.Build(entries, v.now().In(v.deps.location()), window)
	markup := keyboards.TimelineMenu(tl.Window)
	return menus.SendText(v.api, chatID, menus.Timeline(tl), &markup)
}

// export sends the spreadsheet as a document
func (v *views) export(ctx context.Context, chatID int64, user User) error {
	data, filename, err := v.deps.Vaccines.Export(ctx, user.AccountID)
	if err != nil {
		return v.fail(chatID, user, "export", err)
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: data})
	doc.Caption = "📄 Your vaccine history"
	_, err = v.api.Send(doc)
	return err
}

// askVaccineDate moves the add flow to the date step
func (v *views) askVaccineDate(chatID int64, user User, name, suggestionID string) error {
	v.stateManager.SetTempData(user.TelegramID, state.KeyVaccineName, name)
	v.stateManager.SetTempData(user.TelegramID, state.KeySuggestionID, suggestionID)
	v.stateManager.SetUserState(user.TelegramID, state.WaitingForVaccineDate)
	markup := keyboards.SkipDateMenu()
	return menus.SendText(v.api, chatID, "📅 When did you get "+name+"? Send a year, a month (2019-05) or a day (2019-05-14).", &markup)
}

// saveVaccine finishes the add flow
func (v *views) saveVaccine(ctx context.Context, chatID int64, user User, dateTaken string) error {
	req := domain.AddVaccineRequest{
		Name:         state.TempString(v.stateManager, user.TelegramID, state.KeyVaccineName),
		DateTaken:    dateTaken,
		SuggestionID: state.TempString(v.stateManager, user.TelegramID, state.KeySuggestionID),
	}
	v.reset(user)

	if _, err := v.deps.Vaccines.Add(ctx, user.AccountID, req); err != nil {
		return v.fail(chatID, user, "add_vaccine", err)
	}
	if err := menus.SendText(v.api, chatID, "✅ "+req.Name+" saved.", nil); err != nil {
		return err
	}
	return v.vaccines(ctx, chatID, user)
}

// saveDiet logs one entry from the conversation state
func (v *views) saveDiet(ctx context.Context, chatID int64, user User, name string, intensity int) error {
	entryType := domain.DietEntryType(state.TempString(v.stateManager, user.TelegramID, state.KeyDietType))
	v.reset(user)

	saved, err := v.deps.Diet.AddEntries(ctx, user.AccountID, domain.AddDietEntriesRequest{
		Drafts: []domain.DietEntryDraft{{Type: entryType, Name: name, Intensity: intensity}},
	})
	if err != nil {
		return v.fail(chatID, user, "add_diet", err)
	}
	markup := keyboards.DietMenu()
	return menus.SendText(v.api, chatID, "✅ Logged "+saved[0].Name+".", &markup)
}
