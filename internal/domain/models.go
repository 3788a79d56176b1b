package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/vladimiradmaev/health-records/internal/fuzzydate"
)

// Account represents the authenticated owner of all records
type Account struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Vaccine represents one vaccine with its dose history
type Vaccine struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	DateTaken   fuzzydate.Date   `json:"dateTaken"`
	History     []fuzzydate.Date `json:"history"`
	NextDueDate fuzzydate.Date   `json:"nextDueDate"`
	Notes       string           `json:"notes"`
	CreatedAt   time.Time        `json:"createdAt"`
	Analysis    Analysis         `json:"analysis"`
}

// NeedsAnalysis reports whether the record is waiting for an automatic analysis
func (v Vaccine) NeedsAnalysis() bool {
	return v.NextDueDate.IsZero() && v.Analysis.Status() == AnalysisNone
}

// AcceptAnalysis merges the proposal into the authoritative fields
func (v *Vaccine) AcceptAnalysis() error {
	proposal, ok := v.Analysis.Proposal()
	if !ok {
		return ErrNoPendingProposal
	}
	v.Notes = MergeNotes(v.Notes, proposal.Notes)
	if !proposal.NextDueDate.IsZero() {
		v.NextDueDate = proposal.NextDueDate
	}
	v.Analysis = AcceptedAnalysis()
	return nil
}

// DismissAnalysis drops the proposal, leaving authoritative fields untouched
func (v *Vaccine) DismissAnalysis() error {
	if _, ok := v.Analysis.Proposal(); !ok {
		return ErrNoPendingProposal
	}
	v.Analysis = DismissedAnalysis()
	return nil
}

// ConfirmDose records the due dose as taken
func (v *Vaccine) ConfirmDose() error {
	if v.NextDueDate.IsZero() {
		return ErrNoNextDueDate
	}
	history := make([]fuzzydate.Date, 0, len(v.History)+1)
	history = append(history, v.History...)
	if !v.DateTaken.IsZero() {
		history = append(history, v.DateTaken)
	}
	v.History = history
	v.DateTaken = v.NextDueDate
	v.NextDueDate = fuzzydate.Date{}
	v.Analysis = NoAnalysis()
	return nil
}

// MergeNotes appends AI notes to the user's notes
func MergeNotes(notes, suggested string) string {
	if notes == "" {
		return strings.TrimSpace(suggested)
	}
	return strings.TrimSpace(notes + "\n\nAI Note: " + suggested)
}

// SortVaccines orders records for display: undated first, then records
// awaiting analysis, then most recently taken.
func SortVaccines(vaccines []Vaccine) {
	sort.SliceStable(vaccines, func(i, j int) bool {
		a, b := vaccines[i], vaccines[j]
		if a.DateTaken.IsZero() != b.DateTaken.IsZero() {
			return a.DateTaken.IsZero()
		}
		if a.NeedsAnalysis() != b.NeedsAnalysis() {
			return a.NeedsAnalysis()
		}
		return fuzzydate.Compare(a.DateTaken, b.DateTaken) > 0
	})
}

// FirstAnalysisCandidate returns the first record in display order that needs analysis
func FirstAnalysisCandidate(vaccines []Vaccine) (Vaccine, bool) {
	sorted := append([]Vaccine(nil), vaccines...)
	SortVaccines(sorted)
	for _, v := range sorted {
		if v.NeedsAnalysis() {
			return v, true
		}
	}
	return Vaccine{}, false
}

// Suggestion is an AI-proposed vaccine the account has not recorded
type Suggestion struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// DietEntryType distinguishes the three diet log lanes
type DietEntryType string

const (
	DietFood     DietEntryType = "food"
	DietMedicine DietEntryType = "medicine"
	DietSymptom  DietEntryType = "symptom"
)

// Valid reports whether t is a known entry type
func (t DietEntryType) Valid() bool {
	switch t {
	case DietFood, DietMedicine, DietSymptom:
		return true
	}
	return false
}

// OnsetDelay is how long after eating a symptom appeared
type OnsetDelay string

const (
	OnsetImmediately OnsetDelay = "Immediately"
	Onset15m         OnsetDelay = "15m"
	Onset1h          OnsetDelay = "1h"
	Onset2h          OnsetDelay = "2h"
	Onset4h          OnsetDelay = "4h"
	Onset8h          OnsetDelay = "8h"
)

// OnsetDelays lists the selectable delays in display order
var OnsetDelays = []OnsetDelay{OnsetImmediately, Onset15m, Onset1h, Onset2h, Onset4h, Onset8h}

// DietEntry is an immutable food, medicine or symptom log entry
type DietEntry struct {
	ID             string        `json:"id"`
	Type           DietEntryType `json:"type"`
	Name           string        `json:"name"`
	Timestamp      time.Time     `json:"timestamp"`
	Notes          string        `json:"notes,omitempty"`
	Intensity      int           `json:"intensity,omitempty"`
	AfterFoodDelay OnsetDelay    `json:"afterFoodDelay,omitempty"`
}

// SortDietEntries orders entries most recent first
func SortDietEntries(entries []DietEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}

// DietSuggestions are quick-pick names per entry type
type DietSuggestions struct {
	Food      []string `json:"food"`
	Symptoms  []string `json:"symptoms"`
	Medicines []string `json:"medicines"`
}

// VaccineAdvice is the result of analysing a single vaccine
type VaccineAdvice struct {
	NextDueDate   fuzzydate.Date `json:"nextDueDate"`
	Notes         string         `json:"notes"`
	IsRecommended bool           `json:"isRecommended"`
}
