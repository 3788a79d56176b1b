package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/health-records/internal/domain"
	"github.com/vladimiradmaev/health-records/internal/fuzzydate"
)

type fakeGenerator struct {
	name    string
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) Name() string { return f.name }

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func fixedNow() time.Time {
	return time.Date(2024, time.March, 10, 18, 0, 0, 0, time.UTC)
}

func newTestAIService(gen TextGenerator) *AIService {
	s := NewAIService(gen)
	s.now = fixedNow
	return s
}

func TestAnalyzeVaccine(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		wantDate  string
		wantNotes string
	}{
		{
			name:      "future date kept",
			reply:     "```json\n{\"nextDueDate\": \"2030-05-01\", \"notes\": \"Protects against tetanus.\", \"isRecommended\": true}\n```",
			wantDate:  "2030-05-01",
			wantNotes: "Protects against tetanus.",
		},
		{
			name:      "past date moved to tomorrow",
			reply:     `{"nextDueDate": "2020-01-01", "notes": "Booster due.", "isRecommended": true}`,
			wantDate:  "2024-03-11",
			wantNotes: "Booster due." + overdueNote,
		},
		{
			name:      "today is not overdue",
			reply:     `{"nextDueDate": "2024-03-10", "notes": "Today.", "isRecommended": true}`,
			wantDate:  "2024-03-10",
			wantNotes: "Today.",
		},
		{
			name:      "null date",
			reply:     `{"nextDueDate": null, "notes": "One-time vaccine.", "isRecommended": false}`,
			wantDate:  "",
			wantNotes: "One-time vaccine.",
		},
		{
			name:      "unparseable date dropped with a note",
			reply:     `{"nextDueDate": "soon", "notes": "n", "isRecommended": true}`,
			wantDate:  "",
			wantNotes: "n" + invalidDateNote,
		},
		{
			name:      "calendar-invalid date dropped with a note",
			reply:     `{"nextDueDate": "2025-02-30", "notes": "Booster.", "isRecommended": true}`,
			wantDate:  "",
			wantNotes: "Booster." + invalidDateNote,
		},
		{
			name:      "empty date is null",
			reply:     `{"nextDueDate": "", "notes": "n", "isRecommended": false}`,
			wantDate:  "",
			wantNotes: "n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestAIService(&fakeGenerator{reply: tt.reply})
			advice, err := svc.AnalyzeVaccine(context.Background(), domain.AnalyzeVaccineInput{VaccineName: "Tetanus"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, advice.NextDueDate.String())
			assert.Equal(t, tt.wantNotes, advice.Notes)
		})
	}
}

func TestAnalyzeVaccinePromptMentionsDates(t *testing.T) {
	gen := &fakeGenerator{reply: `{"nextDueDate": null, "notes": "", "isRecommended": true}`}
	svc := newTestAIService(gen)

	_, err := svc.AnalyzeVaccine(context.Background(), domain.AnalyzeVaccineInput{
		VaccineName: "Flu Shot",
		DateTaken:   fuzzydate.MustParse("2023-10"),
		History:     []fuzzydate.Date{fuzzydate.MustParse("2022")},
	})
	require.NoError(t, err)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Flu Shot vaccine on 2023-10.")
	assert.Contains(t, gen.prompts[0], "Previous doses: 2022.")

	_, err = svc.AnalyzeVaccine(context.Background(), domain.AnalyzeVaccineInput{VaccineName: "HPV"})
	require.NoError(t, err)
	assert.Contains(t, gen.prompts[1], "I have not taken it yet")
}

func TestAnalyzeVaccineErrors(t *testing.T) {
	svc := newTestAIService(&fakeGenerator{err: errors.New("quota")})
	_, err := svc.AnalyzeVaccine(context.Background(), domain.AnalyzeVaccineInput{VaccineName: "x"})
	assert.Error(t, err)

	svc = newTestAIService(&fakeGenerator{reply: "I cannot help"})
	_, err = svc.AnalyzeVaccine(context.Background(), domain.AnalyzeVaccineInput{VaccineName: "x"})
	assert.Error(t, err)
}

func TestSuggestMissingVaccinesAssignsIDs(t *testing.T) {
	gen := &fakeGenerator{reply: `Here you go: [{"name": "HPV", "reason": "Cancer prevention"}, {"name": " ", "reason": "x"}, {"name": "Hepatitis B", "reason": "Liver"}]`}
	svc := newTestAIService(gen)

	got, err := svc.SuggestMissingVaccines(context.Background(), []string{"Flu"}, []string{"COVID-19"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "HPV", got[0].Name)
	assert.NotEmpty(t, got[0].ID)
	assert.NotEqual(t, got[0].ID, got[1].ID)
	assert.Contains(t, gen.prompts[0], "[Flu]")
	assert.Contains(t, gen.prompts[0], "[COVID-19]")
}

func TestSuggestMissingVaccinesEmptyReply(t *testing.T) {
	svc := newTestAIService(&fakeGenerator{reply: "  "})
	got, err := svc.SuggestMissingVaccines(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSuggestDiet(t *testing.T) {
	now := fixedNow()
	history := make([]domain.DietEntry, 25)
	for i := range history {
		history[i] = domain.DietEntry{Type: domain.DietFood, Name: "Eggs", Timestamp: now.Add(-time.Duration(i) * time.Hour)}
	}

	gen := &fakeGenerator{reply: `{"food": ["Eggs"], "symptoms": ["Bloating"]}`}
	got := newTestAIService(gen).SuggestDiet(context.Background(), history, now)

	assert.Equal(t, []string{"Eggs"}, got.Food)
	assert.Equal(t, []string{"Bloating"}, got.Symptoms)
	assert.Equal(t, []string{}, got.Medicines)
	assert.Contains(t, gen.prompts[0], "Current hour: 18")
	assert.Equal(t, dietHistoryLimit, strings.Count(gen.prompts[0], `"name":"Eggs"`))
}

func TestSuggestDietFallback(t *testing.T) {
	got := newTestAIService(&fakeGenerator{err: errors.New("down")}).SuggestDiet(context.Background(), nil, fixedNow())
	assert.Equal(t, FallbackDietSuggestions(), got)

	got = newTestAIService(&fakeGenerator{reply: "nope"}).SuggestDiet(context.Background(), nil, fixedNow())
	assert.Equal(t, FallbackDietSuggestions(), got)
}

func TestFallbackGenerator(t *testing.T) {
	primary := &fakeGenerator{name: "gemini", err: errors.New("down")}
	secondary := &fakeGenerator{name: "openai", reply: "ok"}

	text, err := FallbackGenerator{primary, secondary}.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Len(t, primary.prompts, 1)

	_, err = FallbackGenerator{primary}.Generate(context.Background(), "p")
	assert.ErrorContains(t, err, "gemini")

	_, err = FallbackGenerator{}.Generate(context.Background(), "p")
	assert.Error(t, err)
	assert.Equal(t, "gemini+openai", FallbackGenerator{primary, secondary}.Name())
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON("```json\n{\"a\":1}\n```", '{', '}'))
	assert.Equal(t, `[1,2]`, extractJSON("x [1,2] y", '[', ']'))
	assert.Equal(t, "", extractJSON("}{", '{', '}'))
	assert.Equal(t, "", extractJSON("none", '{', '}'))
}
