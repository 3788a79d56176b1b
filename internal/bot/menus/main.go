package menus

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/health-records/internal/analytics"
	"github.com/vladimiradmaev/health-records/internal/bot/keyboards"
	"github.com/vladimiradmaev/health-records/internal/domain"
)

// Sender is the part of the Telegram API the bot writes through
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// maxMessageLength keeps texts under Telegram's 4096 character limit
const maxMessageLength = 4000

// recentDietEntries is how many entries the Recent view shows
const recentDietEntries = 10

const mainMenuText = `🩺 *Health Records* keeps your vaccines and diet log in one place

💉 Record vaccines and get AI reminders for the next dose
💡 See vaccines you may be missing
🍽️ Log food, medicine and symptoms and spot patterns

⚠️ *Important:* suggestions are informational, always check with your doctor!

Choose an action:`

const HelpText = `Commands:
/start - Show the main menu
/vaccines - Your vaccine records
/diet - Diet and symptom log
/export - Download your vaccine history
/help - Show this message

Dates can be a year (2019), a month (2019-05) or a day (2019-05-14).`

// SendMainMenu sends the main menu to a chat
func SendMainMenu(api Sender, chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, mainMenuText)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = keyboards.MainMenu()
	_, err := api.Send(msg)
	return err
}

// SendText sends a plain message with an optional keyboard
func SendText(api Sender, chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, Truncate(text))
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	_, err := api.Send(msg)
	return err
}

// Truncate cuts text to the message limit on a rune boundary
func Truncate(text string) string {
	if len(text) <= maxMessageLength {
		return text
	}
	cut := maxMessageLength - 3
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

func dateOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// VaccineList renders the vaccines tab
func VaccineList(vaccines []domain.Vaccine) string {
	if len(vaccines) == 0 {
		return "💉 No vaccines recorded yet. Tap ➕ Add to record one."
	}

	var b strings.Builder
	b.WriteString("💉 Your vaccines\n")
	for _, v := range vaccines {
		fmt.Fprintf(&b, "\n• %s\n  Taken: %s", v.Name, dateOrDash(v.DateTaken.String()))
		if len(v.History) > 0 {
			prev := make([]string, 0, len(v.History))
			for _, d := range v.History {
				prev = append(prev, d.String())
			}
			fmt.Fprintf(&b, " (earlier: %s)", strings.Join(prev, ", "))
		}
		if !v.NextDueDate.IsZero() {
			fmt.Fprintf(&b, "\n  Next due: %s", v.NextDueDate)
		}
		if v.Notes != "" {
			fmt.Fprintf(&b, "\n  📝 %s", v.Notes)
		}

		switch v.Analysis.Status() {
		case domain.AnalysisLoading:
			b.WriteString("\n  ⏳ Checking when the next dose is due...")
		case domain.AnalysisCompleted:
			p, _ := v.Analysis.Proposal()
			if p.NextDueDate.IsZero() {
				b.WriteString("\n  🤖 No further dose suggested")
			} else {
				fmt.Fprintf(&b, "\n  🤖 Suggested next dose: %s", p.NextDueDate)
			}
			if p.Notes != "" {
				fmt.Fprintf(&b, "\n  🤖 %s", p.Notes)
			}
		}
	}
	return b.String()
}

// DueList renders the upcoming and overdue doses
func DueList(upcoming, overdue []domain.Vaccine) string {
	if len(upcoming) == 0 && len(overdue) == 0 {
		return "📅 Nothing due in the coming months."
	}

	var b strings.Builder
	if len(overdue) > 0 {
		b.WriteString("⚠️ Overdue\n")
		for _, v := range overdue {
			fmt.Fprintf(&b, "• %s: %s\n", v.Name, v.NextDueDate)
		}
		b.WriteString("\n")
	}
	if len(upcoming) > 0 {
		b.WriteString("📅 Upcoming\n")
		for _, v := range upcoming {
			fmt.Fprintf(&b, "• %s: %s\n", v.Name, v.NextDueDate)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// SuggestionList renders the suggested vaccines
func SuggestionList(suggestions []domain.Suggestion) string {
	if len(suggestions) == 0 {
		return "💡 No suggestions right now."
	}
	var b strings.Builder
	b.WriteString("💡 Vaccines you may be missing\n")
	for _, s := range suggestions {
		fmt.Fprintf(&b, "\n• %s", s.Name)
		if s.Reason != "" {
			fmt.Fprintf(&b, "\n  %s", s.Reason)
		}
	}
	return b.String()
}

func typeIcon(t domain.DietEntryType) string {
	switch t {
	case domain.DietFood:
		return "🍎"
	case domain.DietMedicine:
		return "💊"
	default:
		return "🤒"
	}
}

// RecentDiet renders the latest diet entries in loc
func RecentDiet(entries []domain.DietEntry, loc *time.Location) string {
	if len(entries) == 0 {
		return "🍽️ Nothing logged yet."
	}
	if len(entries) > recentDietEntries {
		entries = entries[:recentDietEntries]
	}

	var b strings.Builder
	b.WriteString("🕘 Recent entries\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "\n%s %s %s", e.Timestamp.In(loc).Format("Jan 2 15:04"), typeIcon(e.Type), e.Name)
		if e.Type == domain.DietSymptom && e.Intensity > 0 {
			fmt.Fprintf(&b, " (%d/5)", e.Intensity)
		}
		if e.AfterFoodDelay != "" {
			fmt.Fprintf(&b, ", %s after food", e.AfterFoodDelay)
		}
	}
	return b.String()
}

// Timeline renders the correlation map as one block per day
func Timeline(tl analytics.Timeline) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Last %d days\n", tl.Window)
	for _, day := range tl.Days {
		fmt.Fprintf(&b, "\n%s: 🍎 %d 💊 %d 🤒 %d", day.Key,
			day.Count(domain.DietFood), day.Count(domain.DietMedicine), day.Count(domain.DietSymptom))
		for _, m := range day.Markers {
			fmt.Fprintf(&b, "\n  %s %s %s", m.Clock, typeIcon(m.Type), m.Name)
		}
	}
	return b.String()
}

// DietIdeas lists the quick-pick names for one entry type
func DietIdeas(s domain.DietSuggestions, t domain.DietEntryType) []string {
	switch t {
	case domain.DietFood:
		return s.Food
	case domain.DietMedicine:
		return s.Medicines
	default:
		return s.Symptoms
	}
}

// DietPrompt asks for an entry name and shows the ideas for its type
func DietPrompt(t domain.DietEntryType, ideas []string) string {
	text := fmt.Sprintf("%s What did you log? Send the %s name.", typeIcon(t), t)
	if len(ideas) > 0 {
		text += "\n\nIdeas: " + strings.Join(ideas, ", ")
	}
	return text
}
