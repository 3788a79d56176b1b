package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/health-records/internal/fuzzydate"
)

func TestSortVaccines(t *testing.T) {
	vaccines := []Vaccine{
		{ID: "old", DateTaken: fuzzydate.MustParse("2019-01"), NextDueDate: fuzzydate.MustParse("2029")},
		{ID: "new", DateTaken: fuzzydate.MustParse("2023-05-01"), NextDueDate: fuzzydate.MustParse("2033")},
		{ID: "pending", DateTaken: fuzzydate.MustParse("2010")},
		{ID: "undated", NextDueDate: fuzzydate.MustParse("2030")},
	}

	SortVaccines(vaccines)

	ids := make([]string, len(vaccines))
	for i, v := range vaccines {
		ids[i] = v.ID
	}
	assert.Equal(t, []string{"undated", "pending", "new", "old"}, ids)
}

func TestFirstAnalysisCandidateIsStable(t *testing.T) {
	vaccines := []Vaccine{
		{ID: "a", DateTaken: fuzzydate.MustParse("2020"), Analysis: DismissedAnalysis()},
		{ID: "b", DateTaken: fuzzydate.MustParse("2021")},
		{ID: "c", DateTaken: fuzzydate.MustParse("2022")},
	}

	first, ok := FirstAnalysisCandidate(vaccines)
	require.True(t, ok)
	again, ok := FirstAnalysisCandidate(vaccines)
	require.True(t, ok)
	assert.Equal(t, "c", first.ID)
	assert.Equal(t, first.ID, again.ID)

	vaccines[1].Analysis = LoadingAnalysis()
	vaccines[2].Analysis = LoadingAnalysis()
	_, ok = FirstAnalysisCandidate(vaccines)
	assert.False(t, ok)
}

func TestAcceptAnalysisWithDate(t *testing.T) {
	v := Vaccine{
		Notes:    "Left arm",
		Analysis: ProposedAnalysis(Proposal{NextDueDate: fuzzydate.MustParse("2026-01"), Notes: "Booster every 10 years."}),
	}

	require.NoError(t, v.AcceptAnalysis())

	assert.Equal(t, "2026-01", v.NextDueDate.String())
	assert.Equal(t, "Left arm\n\nAI Note: Booster every 10 years.", v.Notes)
	assert.Equal(t, AnalysisAccepted, v.Analysis.Status())
	_, ok := v.Analysis.Proposal()
	assert.False(t, ok)
}

func TestAcceptAnalysisWithoutDate(t *testing.T) {
	v := Vaccine{Analysis: ProposedAnalysis(Proposal{Notes: "  One-time vaccine. "})}

	require.NoError(t, v.AcceptAnalysis())

	assert.True(t, v.NextDueDate.IsZero())
	assert.Equal(t, "One-time vaccine.", v.Notes)
	assert.Equal(t, AnalysisAccepted, v.Analysis.Status())
}

func TestAcceptAndDismissRequireProposal(t *testing.T) {
	for _, a := range []Analysis{NoAnalysis(), LoadingAnalysis(), DismissedAnalysis(), AcceptedAnalysis()} {
		v := Vaccine{Analysis: a}
		assert.ErrorIs(t, v.AcceptAnalysis(), ErrNoPendingProposal)
		assert.ErrorIs(t, v.DismissAnalysis(), ErrNoPendingProposal)
	}
}

func TestDismissAnalysisKeepsAuthoritativeFields(t *testing.T) {
	v := Vaccine{
		Notes:    "mine",
		Analysis: ProposedAnalysis(Proposal{NextDueDate: fuzzydate.MustParse("2030"), Notes: "theirs"}),
	}

	require.NoError(t, v.DismissAnalysis())

	assert.Equal(t, "mine", v.Notes)
	assert.True(t, v.NextDueDate.IsZero())
	assert.Equal(t, AnalysisDismissed, v.Analysis.Status())
}

func TestConfirmDose(t *testing.T) {
	v := Vaccine{
		DateTaken:   fuzzydate.MustParse("2020-01"),
		History:     []fuzzydate.Date{fuzzydate.MustParse("2015")},
		NextDueDate: fuzzydate.MustParse("2025-01"),
		Analysis:    AcceptedAnalysis(),
	}

	require.NoError(t, v.ConfirmDose())

	assert.Equal(t, "2025-01", v.DateTaken.String())
	assert.Equal(t, []fuzzydate.Date{fuzzydate.MustParse("2015"), fuzzydate.MustParse("2020-01")}, v.History)
	assert.True(t, v.NextDueDate.IsZero())
	assert.Equal(t, AnalysisNone, v.Analysis.Status())
	assert.True(t, v.NeedsAnalysis())
}

func TestConfirmDoseRequiresDueDate(t *testing.T) {
	v := Vaccine{DateTaken: fuzzydate.MustParse("2020")}
	assert.ErrorIs(t, v.ConfirmDose(), ErrNoNextDueDate)
}

func TestAnalysisJSON(t *testing.T) {
	a := ProposedAnalysis(Proposal{NextDueDate: fuzzydate.MustParse("2027-04"), Notes: "note"})
	raw, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"completed","suggestedNextDueDate":"2027-04","suggestedNotes":"note"}`, string(raw))

	var back Analysis
	require.NoError(t, json.Unmarshal(raw, &back))
	p, ok := back.Proposal()
	require.True(t, ok)
	assert.Equal(t, "2027-04", p.NextDueDate.String())

	raw, err = json.Marshal(NoAnalysis())
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))

	assert.Error(t, json.Unmarshal([]byte(`{"status":"bogus"}`), &back))
}
