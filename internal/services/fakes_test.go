package services

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/health-records/internal/domain"
	"github.com/vladimiradmaev/health-records/internal/logger"
)

type fakeAdvisor struct {
	mu          sync.Mutex
	advice      domain.VaccineAdvice
	analyzeErr  error
	block       chan struct{}
	analyzed    []string
	suggestions []domain.Suggestion
	suggestErr  error
	suggestArgs [][2][]string
	diet        domain.DietSuggestions
}

func (f *fakeAdvisor) AnalyzeVaccine(ctx context.Context, in domain.AnalyzeVaccineInput) (domain.VaccineAdvice, error) {
	f.mu.Lock()
	f.analyzed = append(f.analyzed, in.VaccineName)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return domain.VaccineAdvice{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.advice, f.analyzeErr
}

func (f *fakeAdvisor) SuggestMissingVaccines(_ context.Context, currentNames, dismissedNames []string) ([]domain.Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suggestArgs = append(f.suggestArgs, [2][]string{currentNames, dismissedNames})
	return f.suggestions, f.suggestErr
}

func (f *fakeAdvisor) SuggestDiet(context.Context, []domain.DietEntry, time.Time) domain.DietSuggestions {
	return f.diet
}

func (f *fakeAdvisor) analyzedNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.analyzed...)
}

func (f *fakeAdvisor) suggestCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.suggestArgs)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// captureLogs sends the global logger to a buffer for the rest of the test
func captureLogs(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	require.NoError(t, logger.InitWithConfig(logger.Config{Level: logger.LevelInfo, Format: "text", Writer: buf}))
	t.Cleanup(func() {
		_ = logger.InitWithConfig(logger.Config{Level: logger.LevelInfo, OutputPath: "stderr", Format: "text"})
	})
	return buf
}
