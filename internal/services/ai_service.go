package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"github.com/vladimiradmaev/health-records/internal/domain"
	"github.com/vladimiradmaev/health-records/internal/fuzzydate"
	"github.com/vladimiradmaev/health-records/internal/logger"
	"google.golang.org/api/option"
)

const (
	overdueNote        = " (Date adjusted to near future as it appeared overdue)."
	invalidDateNote    = " (Suggested date was not a valid calendar date and was left out.)"
	dietHistoryLimit   = 20
	defaultGeminiModel = "gemini-1.5-flash"
	defaultOpenAIModel = "gpt-4o-mini"
)

// TextGenerator produces a completion for a single prompt
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// GeminiGenerator calls Google's generative language API
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Name() string { return "gemini" }

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty response from Gemini")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", errors.New("unexpected response part from Gemini")
	}
	return string(text), nil
}

func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// OpenAIGenerator calls the OpenAI chat completion API
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIGenerator{client: openai.NewClient(apiKey), model: model}
}

func (g *OpenAIGenerator) Name() string { return "openai" }

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: g.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

// FallbackGenerator tries each generator in order until one answers
type FallbackGenerator []TextGenerator

func (f FallbackGenerator) Name() string {
	names := make([]string, 0, len(f))
	for _, g := range f {
		names = append(names, g.Name())
	}
	return strings.Join(names, "+")
}

func (f FallbackGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if len(f) == 0 {
		return "", errors.New("no AI provider configured")
	}
	var errs []error
	for _, g := range f {
		text, err := g.Generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		logger.WithContext(ctx).Warn("AI provider failed", "provider", g.Name(), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", g.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	return "", errors.Join(errs...)
}

// AIService implements domain.HealthAdvisor on top of a text generator
type AIService struct {
	gen TextGenerator
	now func() time.Time
}

func NewAIService(gen TextGenerator) *AIService {
	return &AIService{gen: gen, now: time.Now}
}

type vaccineAdviceResponse struct {
	NextDueDate   *string `json:"nextDueDate"`
	Notes         string  `json:"notes"`
	IsRecommended bool    `json:"isRecommended"`
}

func analyzeVaccinePrompt(in domain.AnalyzeVaccineInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I received the %s vaccine", in.VaccineName)
	if !in.DateTaken.IsZero() {
		fmt.Fprintf(&b, " on %s.", in.DateTaken)
	} else {
		b.WriteString(". I have not taken it yet, but I am planning to.")
	}
	if len(in.History) > 0 {
		previous := make([]string, 0, len(in.History))
		for _, d := range in.History {
			previous = append(previous, d.String())
		}
		fmt.Fprintf(&b, " Previous doses: %s.", strings.Join(previous, ", "))
	}
	b.WriteString(`
Based on general medical guidelines for adults, when is the next dose typically due?
If it's a one-time vaccine, indicate that.
Provide a very brief note (max 2 sentences) about what this vaccine protects against.

Return ONLY a JSON object with keys: "nextDueDate" (YYYY-MM-DD or null), "notes" (string), "isRecommended" (boolean).
Do not include any text before or after the JSON.`)
	return b.String()
}

// AnalyzeVaccine asks for the next due date of one vaccine. A proposed date
// before today is moved to tomorrow; one that is not on the calendar is left out.
func (s *AIService) AnalyzeVaccine(ctx context.Context, in domain.AnalyzeVaccineInput) (domain.VaccineAdvice, error) {
	text, err := s.gen.Generate(ctx, analyzeVaccinePrompt(in))
	if err != nil {
		return domain.VaccineAdvice{}, fmt.Errorf("failed to analyze vaccine: %w", err)
	}

	jsonStr := extractJSON(text, '{', '}')
	if jsonStr == "" {
		return domain.VaccineAdvice{}, errors.New("no valid JSON found in response")
	}
	var raw vaccineAdviceResponse
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return domain.VaccineAdvice{}, fmt.Errorf("failed to parse response: %w", err)
	}

	advice := domain.VaccineAdvice{Notes: strings.TrimSpace(raw.Notes), IsRecommended: raw.IsRecommended}
	if raw.NextDueDate != nil && strings.TrimSpace(*raw.NextDueDate) != "" {
		d, err := fuzzydate.ParseValid(*raw.NextDueDate)
		if err != nil {
			logger.WithContext(ctx).Warn("AI proposed an invalid date", "date", *raw.NextDueDate)
			advice.Notes = strings.TrimSpace(advice.Notes + invalidDateNote)
		} else {
			advice.NextDueDate = d
		}
	}
	return normalizeAdvice(advice, s.now()), nil
}

func normalizeAdvice(advice domain.VaccineAdvice, now time.Time) domain.VaccineAdvice {
	due, ok := advice.NextDueDate.Time(now.Location())
	if !ok {
		return advice
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if due.Before(today) {
		advice.NextDueDate = fuzzydate.FromTime(today.AddDate(0, 0, 1))
		advice.Notes += overdueNote
	}
	return advice
}

type suggestionResponse struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

func suggestVaccinesPrompt(currentNames, dismissedNames []string) string {
	return fmt.Sprintf(`User has these vaccines: [%s].
User has explicitly dismissed/ignored these suggestions: [%s].

Identify 2 or 3 important vaccines for a general adult that are missing from the list.
Do NOT suggest vaccines that are already in the "User has" list or the "dismissed" list.
Focus on common ones like Tetanus, Flu, HPV, Hepatitis, COVID-19, etc.

Return ONLY a JSON array of objects. Each object must have:
- "name": Standard name of the vaccine.
- "reason": Very short reason (max 10 words) why it might be needed.`,
		strings.Join(currentNames, ", "), strings.Join(dismissedNames, ", "))
}

// SuggestMissingVaccines proposes vaccines the account has not recorded
func (s *AIService) SuggestMissingVaccines(ctx context.Context, currentNames, dismissedNames []string) ([]domain.Suggestion, error) {
	text, err := s.gen.Generate(ctx, suggestVaccinesPrompt(currentNames, dismissedNames))
	if err != nil {
		return nil, fmt.Errorf("failed to generate suggestions: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return []domain.Suggestion{}, nil
	}

	jsonStr := extractJSON(text, '[', ']')
	if jsonStr == "" {
		return nil, errors.New("no valid JSON found in response")
	}
	var raw []suggestionResponse
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	suggestions := make([]domain.Suggestion, 0, len(raw))
	for _, item := range raw {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		suggestions = append(suggestions, domain.Suggestion{
			ID:     uuid.NewString(),
			Name:   name,
			Reason: strings.TrimSpace(item.Reason),
		})
	}
	return suggestions, nil
}

type dietLog struct {
	Type domain.DietEntryType `json:"type"`
	Name string               `json:"name"`
	Hour int                  `json:"hour"`
}

// FallbackDietSuggestions is returned whenever the AI call fails
func FallbackDietSuggestions() domain.DietSuggestions {
	return domain.DietSuggestions{
		Food:      []string{"Oatmeal", "Salad", "Coffee", "Apple"},
		Symptoms:  []string{"Bloating", "Nausea", "Cramps"},
		Medicines: []string{"Multivitamin", "Probiotic", "Ibuprofen"},
	}
}

func suggestDietPrompt(history []domain.DietEntry, now time.Time) (string, error) {
	if len(history) > dietHistoryLimit {
		history = history[:dietHistoryLimit]
	}
	logs := make([]dietLog, 0, len(history))
	for _, e := range history {
		logs = append(logs, dietLog{Type: e.Type, Name: e.Name, Hour: e.Timestamp.In(now.Location()).Hour()})
	}
	encoded, err := json.Marshal(logs)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`Current hour: %d (0-23). User History: %s.

Based on the current time and user history, suggest:
1. 4-5 Food items they are likely to eat now.
2. 3-4 GI symptoms they might be feeling based on what they recently ate.
3. 2-3 Medicines or supplements they usually take around this time (vitamins, antacids, melatonin).

Guidelines:
- If the user often eats "Eggs" in the morning and it's morning, suggest "Eggs".
- If they ate something heavy or spicy recently, suggest relevant symptoms like "Bloating" or "Heartburn".
- Keep names short (1-2 words).

Return ONLY a JSON object with keys "food", "symptoms" and "medicines", each an array of strings.`,
		now.Hour(), encoded), nil
}

// SuggestDiet proposes quick-pick names. It never fails: any error yields the fallback lists.
func (s *AIService) SuggestDiet(ctx context.Context, history []domain.DietEntry, now time.Time) domain.DietSuggestions {
	prompt, err := suggestDietPrompt(history, now)
	if err != nil {
		logger.WithContext(ctx).Warn("Failed to build diet prompt", "error", err)
		return FallbackDietSuggestions()
	}

	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		logger.WithContext(ctx).Warn("Diet suggestion failed", "error", err)
		return FallbackDietSuggestions()
	}

	jsonStr := extractJSON(text, '{', '}')
	var result domain.DietSuggestions
	if jsonStr == "" || json.Unmarshal([]byte(jsonStr), &result) != nil {
		logger.WithContext(ctx).Warn("Diet suggestion returned invalid JSON", "response", text)
		return FallbackDietSuggestions()
	}
	if result.Food == nil {
		result.Food = []string{}
	}
	if result.Symptoms == nil {
		result.Symptoms = []string{}
	}
	if result.Medicines == nil {
		result.Medicines = []string{}
	}
	return result
}

// extractJSON returns the outermost opening...closing span of s, which handles
// answers wrapped in code blocks (```json ... ```) or other text.
func extractJSON(s string, opening, closing byte) string {
	start := strings.IndexByte(s, opening)
	if start == -1 {
		return ""
	}
	end := strings.LastIndexByte(s, closing)
	if end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}
