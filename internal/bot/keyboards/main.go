package keyboards

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/health-records/internal/analytics"
	"github.com/vladimiradmaev/health-records/internal/domain"
)

// Callback data. Parameterised actions are "<prefix>:<arg>".
const (
	DataMainMenu       = "main_menu"
	DataVaccines       = "vaccines"
	DataAddVaccine     = "add_vaccine"
	DataUpcoming       = "upcoming"
	DataSuggestions    = "suggestions"
	DataExport         = "export"
	DataDiet           = "diet"
	DataDietRecent     = "diet_recent"
	DataDietSuggest    = "diet_suggest"
	DataSkipDate       = "skip_date"
	DataHelp           = "help"
	PrefixQuickAdd     = "qa"
	PrefixAccept       = "va"
	PrefixDismiss      = "vd"
	PrefixConfirm      = "vc"
	PrefixEditDue      = "ve"
	PrefixDelete       = "vx"
	PrefixAddSuggested = "sa"
	PrefixHideSuggest  = "sd"
	PrefixDietLog      = "dl"
	PrefixIntensity    = "di"
	PrefixTimeline     = "tl"
)

// maxCallbackData is Telegram's limit on callback data
const maxCallbackData = 64

// Data joins a prefix and its argument
func Data(prefix, arg string) string {
	return prefix + ":" + arg
}

func fits(data string) bool {
	return len(data) <= maxCallbackData
}

func backRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Main menu", DataMainMenu),
	)
}

// MainMenu creates the main menu keyboard
func MainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💉 Vaccines", DataVaccines),
			tgbotapi.NewInlineKeyboardButtonData("🍽️ Diet", DataDiet),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❓ Help", DataHelp),
		),
	)
}

// VaccineMenu lists the actions available on each record plus the tab actions
func VaccineMenu(vaccines []domain.Vaccine) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, v := range vaccines {
		switch {
		case v.Analysis.Status() == domain.AnalysisCompleted:
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Accept "+v.Name, Data(PrefixAccept, v.ID)),
				tgbotapi.NewInlineKeyboardButtonData("✖️ Dismiss", Data(PrefixDismiss, v.ID)),
			))
		case !v.NextDueDate.IsZero():
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("💉 Took "+v.Name, Data(PrefixConfirm, v.ID)),
				tgbotapi.NewInlineKeyboardButtonData("✏️ Due date", Data(PrefixEditDue, v.ID)),
			))
		default:
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✏️ Due date for "+v.Name, Data(PrefixEditDue, v.ID)),
				tgbotapi.NewInlineKeyboardButtonData("🗑️", Data(PrefixDelete, v.ID)),
			))
		}
	}

	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Add", DataAddVaccine),
			tgbotapi.NewInlineKeyboardButtonData("📅 Upcoming", DataUpcoming),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💡 Suggestions", DataSuggestions),
			tgbotapi.NewInlineKeyboardButtonData("📄 Export", DataExport),
		),
		backRow(),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// QuickAddMenu offers one-tap names; names too long for callback data are left out
func QuickAddMenu(options []string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, name := range options {
		data := Data(PrefixQuickAdd, name)
		if !fits(data) {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(name, data),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Back", DataVaccines),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// SkipDateMenu lets the user save without a date
func SkipDateMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏭️ Skip", DataSkipDate),
			tgbotapi.NewInlineKeyboardButtonData("◀️ Cancel", DataVaccines),
		),
	)
}

// SuggestionMenu adds or hides each suggestion
func SuggestionMenu(suggestions []domain.Suggestion) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, s := range suggestions {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ "+s.Name, Data(PrefixAddSuggested, s.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🙈 Hide", Data(PrefixHideSuggest, s.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Back", DataVaccines),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// DietMenu creates the diet tab keyboard
func DietMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🍎 Food", Data(PrefixDietLog, string(domain.DietFood))),
			tgbotapi.NewInlineKeyboardButtonData("💊 Medicine", Data(PrefixDietLog, string(domain.DietMedicine))),
			tgbotapi.NewInlineKeyboardButtonData("🤒 Symptom", Data(PrefixDietLog, string(domain.DietSymptom))),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🕘 Recent", DataDietRecent),
			tgbotapi.NewInlineKeyboardButtonData("📊 Timeline", Data(PrefixTimeline, strconv.Itoa(analytics.DefaultWindow))),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💡 Ideas", DataDietSuggest),
		),
		backRow(),
	)
}

// IntensityMenu rates a symptom from 1 to 5
func IntensityMenu() tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, 5)
	for i := 1; i <= 5; i++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(strconv.Itoa(i), Data(PrefixIntensity, strconv.Itoa(i))))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Cancel", DataDiet),
	))
}

// TimelineMenu switches between the supported windows
func TimelineMenu(current int) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(analytics.Windows))
	for _, w := range analytics.Windows {
		label := fmt.Sprintf("%dd", w)
		if w == current {
			label = "• " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, Data(PrefixTimeline, strconv.Itoa(w))))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Back", DataDiet),
	))
}

// BackToMain is a single main-menu button
func BackToMain() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(backRow())
}
