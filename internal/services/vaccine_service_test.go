package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/health-records/internal/domain"
	apperrors "github.com/vladimiradmaev/health-records/internal/errors"
	"github.com/vladimiradmaev/health-records/internal/fuzzydate"
	"github.com/vladimiradmaev/health-records/internal/repository"
	"github.com/vladimiradmaev/health-records/internal/state"
)

func newTestVaccineService(store domain.Store) *VaccineService {
	svc := NewVaccineService(store, state.NewManager(time.Minute), 6)
	svc.now = fixedNow
	return svc
}

func TestAddVaccineFromSuggestion(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	require.NoError(t, store.ReplaceSuggestions(ctx, "acc", []domain.Suggestion{{ID: "s1", Name: "HPV"}, {ID: "s2", Name: "Flu"}}))
	svc := newTestVaccineService(store)

	v, err := svc.Add(ctx, "acc", domain.AddVaccineRequest{Name: " HPV ", DateTaken: "2023-05", Notes: " first ", SuggestionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "HPV", v.Name)
	assert.Equal(t, "first", v.Notes)
	assert.Equal(t, "2023-05", v.DateTaken.String())
	assert.Equal(t, domain.AnalysisNone, v.Analysis.Status())

	suggestions, err := store.ListSuggestions(ctx, "acc")
	require.NoError(t, err)
	assert.Equal(t, []domain.Suggestion{{ID: "s2", Name: "Flu"}}, suggestions)
}

func TestAddVaccineRejectsBadDate(t *testing.T) {
	tests := []struct {
		name string
		req  domain.AddVaccineRequest
	}{
		{"garbage", domain.AddVaccineRequest{Name: "Flu", DateTaken: "2023-xx"}},
		{"no leap day", domain.AddVaccineRequest{Name: "Flu", DateTaken: "2023-02-29"}},
		{"month 13", domain.AddVaccineRequest{Name: "Flu", NextDueDate: "2024-13"}},
		{"april 31", domain.AddVaccineRequest{Name: "Flu", NextDueDate: "2024-04-31"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := repository.NewMemoryStore()
			svc := newTestVaccineService(store)

			_, err := svc.Add(context.Background(), "acc", tt.req)
			assert.Equal(t, 400, apperrors.HTTPStatus(err))

			list, err := store.ListVaccines(context.Background(), "acc")
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestEditResetsAnalysisAndKeepsName(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	created := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveVaccine(ctx, "acc", domain.Vaccine{
		ID: "v1", Name: "Tetanus", CreatedAt: created,
		Analysis: domain.ProposedAnalysis(domain.Proposal{NextDueDate: fuzzydate.MustParse("2030"), Notes: "x"}),
	}))
	svc := newTestVaccineService(store)

	v, err := svc.Edit(ctx, "acc", "v1", domain.EditVaccineRequest{DateTaken: "2019", History: []string{"2009", ""}, Notes: " n "})
	require.NoError(t, err)
	assert.Equal(t, "Tetanus", v.Name)
	assert.Equal(t, created, v.CreatedAt)
	assert.Equal(t, "n", v.Notes)
	assert.Len(t, v.History, 1)
	assert.Equal(t, domain.AnalysisNone, v.Analysis.Status())
	assert.True(t, v.NeedsAnalysis())

	_, err = svc.Edit(ctx, "acc", "missing", domain.EditVaccineRequest{})
	assert.Equal(t, 404, apperrors.HTTPStatus(err))
}

func TestConfirmDoseEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	require.NoError(t, store.SaveVaccine(ctx, "acc", domain.Vaccine{
		ID: "v1", Name: "Flu",
		DateTaken:   fuzzydate.MustParse("2023-10-01"),
		History:     []fuzzydate.Date{fuzzydate.MustParse("2022-10-01")},
		NextDueDate: fuzzydate.MustParse("2024-10-01"),
		Analysis:    domain.AcceptedAnalysis(),
	}))
	svc := newTestVaccineService(store)

	v, err := svc.ConfirmDose(ctx, "acc", "v1")
	require.NoError(t, err)
	assert.Equal(t, "2024-10-01", v.DateTaken.String())
	assert.True(t, v.NextDueDate.IsZero())
	assert.Equal(t, []fuzzydate.Date{fuzzydate.MustParse("2022-10-01"), fuzzydate.MustParse("2023-10-01")}, v.History)
	assert.Equal(t, domain.AnalysisNone, v.Analysis.Status())

	stored, err := store.GetVaccine(ctx, "acc", "v1")
	require.NoError(t, err)
	assert.Equal(t, v, stored)

	_, err = svc.ConfirmDose(ctx, "acc", "v1")
	assert.Equal(t, 409, apperrors.HTTPStatus(err))
}

func TestAcceptAndDismissAnalysis(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	proposal := domain.ProposedAnalysis(domain.Proposal{NextDueDate: fuzzydate.MustParse("2030-01-01"), Notes: "Booster."})
	require.NoError(t, store.SaveVaccine(ctx, "acc", domain.Vaccine{ID: "v1", Name: "Tetanus", Notes: "Left arm", Analysis: proposal}))
	require.NoError(t, store.SaveVaccine(ctx, "acc", domain.Vaccine{ID: "v2", Name: "HPV", Analysis: proposal}))
	svc := newTestVaccineService(store)

	accepted, err := svc.AcceptAnalysis(ctx, "acc", "v1")
	require.NoError(t, err)
	assert.Equal(t, "Left arm\n\nAI Note: Booster.", accepted.Notes)
	assert.Equal(t, "2030-01-01", accepted.NextDueDate.String())
	assert.Equal(t, domain.AnalysisAccepted, accepted.Analysis.Status())

	_, err = svc.AcceptAnalysis(ctx, "acc", "v1")
	assert.Equal(t, 409, apperrors.HTTPStatus(err))

	dismissed, err := svc.DismissAnalysis(ctx, "acc", "v2")
	require.NoError(t, err)
	assert.True(t, dismissed.NextDueDate.IsZero())
	assert.Empty(t, dismissed.Notes)
	assert.Equal(t, domain.AnalysisDismissed, dismissed.Analysis.Status())
}

func TestGuardRejectsConcurrentAction(t *testing.T) {
	ctx := context.Background()
	guard := state.NewManager(time.Minute)
	store := repository.NewMemoryStore()
	require.NoError(t, store.SaveVaccine(ctx, "acc", domain.Vaccine{ID: "v1", Name: "Flu", NextDueDate: fuzzydate.MustParse("2025")}))
	svc := NewVaccineService(store, guard, 6)

	release, err := guard.Begin(ctx, state.ActionKey("acc", "confirm_dose", "v1"))
	require.NoError(t, err)
	_, err = svc.ConfirmDose(ctx, "acc", "v1")
	assert.Equal(t, 409, apperrors.HTTPStatus(err))
	assert.ErrorIs(t, err, domain.ErrActionInFlight)

	release()
	_, err = svc.ConfirmDose(ctx, "acc", "v1")
	assert.NoError(t, err)
}

func TestUpcomingAndOverdue(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	for id, due := range map[string]string{
		"today":    "2024-03-10",
		"june":     "2024-06",
		"edge":     "2024-09-10",
		"far":      "2024-09-11",
		"past":     "2024-03-09",
		"old":      "2019",
		"invalid":  "2024-13",
		"nodue":    "",
		"nextweek": "2024-03-17",
	} {
		require.NoError(t, store.SaveVaccine(ctx, "acc", domain.Vaccine{ID: id, Name: id, NextDueDate: fuzzydate.MustParse(due)}))
	}
	svc := newTestVaccineService(store)

	upcoming, err := svc.Upcoming(ctx, "acc")
	require.NoError(t, err)
	assert.Equal(t, []string{"today", "nextweek", "june", "edge"}, ids(upcoming))

	overdue, err := svc.Overdue(ctx, "acc")
	require.NoError(t, err)
	assert.Equal(t, []string{"old", "past"}, ids(overdue))
}

func ids(vaccines []domain.Vaccine) []string {
	out := make([]string, 0, len(vaccines))
	for _, v := range vaccines {
		out = append(out, v.ID)
	}
	return out
}

func TestQuickAddOptions(t *testing.T) {
	vaccines := []domain.Vaccine{{Name: "Flu shot 2023"}, {Name: "hepatitis b"}, {Name: "HPV"}}
	suggestions := []domain.Suggestion{{Name: "HPV"}, {Name: "Shingles"}}

	got := QuickAddOptions(vaccines, suggestions)
	assert.Equal(t, []string{
		"Shingles",
		"Tetanus (Tdap/DTaP)",
		"MMR (Measles, Mumps, Rubella)",
		"Polio (IPV)",
		"Varicella (Chickenpox)",
	}, got)

	assert.Len(t, QuickAddOptions(nil, nil), quickAddLimit)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newTestVaccineService(store)

	_, _, err := svc.Export(ctx, "acc")
	assert.Equal(t, 400, apperrors.HTTPStatus(err))

	require.NoError(t, store.SaveVaccine(ctx, "acc", domain.Vaccine{ID: "v1", Name: "Flu"}))
	data, name, err := svc.Export(ctx, "acc")
	require.NoError(t, err)
	assert.Equal(t, "vaccines_history_2024-03-10.xls", name)
	assert.Contains(t, string(data), "Flu")
}
