package domain

import (
	"encoding/json"
	"fmt"

	"github.com/vladimiradmaev/health-records/internal/fuzzydate"
)

// AnalysisStatus is the persisted state of the AI assist for one vaccine
type AnalysisStatus string

const (
	AnalysisNone      AnalysisStatus = ""
	AnalysisLoading   AnalysisStatus = "loading"
	AnalysisCompleted AnalysisStatus = "completed"
	AnalysisDismissed AnalysisStatus = "dismissed"
	AnalysisAccepted  AnalysisStatus = "accepted"
)

// Proposal holds AI-suggested values awaiting the user's decision.
// A zero NextDueDate means the AI proposed no date.
type Proposal struct {
	NextDueDate fuzzydate.Date
	Notes       string
}

// Analysis is a closed variant: a proposal exists only in the completed state.
type Analysis struct {
	status   AnalysisStatus
	proposal *Proposal
}

func NoAnalysis() Analysis        { return Analysis{} }
func LoadingAnalysis() Analysis   { return Analysis{status: AnalysisLoading} }
func DismissedAnalysis() Analysis { return Analysis{status: AnalysisDismissed} }
func AcceptedAnalysis() Analysis  { return Analysis{status: AnalysisAccepted} }

// ProposedAnalysis moves the record to completed with the given proposal
func ProposedAnalysis(p Proposal) Analysis {
	return Analysis{status: AnalysisCompleted, proposal: &p}
}

// RestoreAnalysis rebuilds an Analysis from its stored columns
func RestoreAnalysis(status AnalysisStatus, nextDueDate fuzzydate.Date, notes string) (Analysis, error) {
	switch status {
	case AnalysisNone:
		return NoAnalysis(), nil
	case AnalysisLoading:
		return LoadingAnalysis(), nil
	case AnalysisDismissed:
		return DismissedAnalysis(), nil
	case AnalysisAccepted:
		return AcceptedAnalysis(), nil
	case AnalysisCompleted:
		return ProposedAnalysis(Proposal{NextDueDate: nextDueDate, Notes: notes}), nil
	default:
		return NoAnalysis(), fmt.Errorf("unknown analysis status %q", status)
	}
}

// Status returns the state
func (a Analysis) Status() AnalysisStatus {
	return a.status
}

// Proposal returns the pending proposal, if the analysis is completed
func (a Analysis) Proposal() (Proposal, bool) {
	if a.status != AnalysisCompleted || a.proposal == nil {
		return Proposal{}, false
	}
	return *a.proposal, true
}

type analysisJSON struct {
	Status               AnalysisStatus  `json:"status,omitempty"`
	SuggestedNextDueDate *fuzzydate.Date `json:"suggestedNextDueDate,omitempty"`
	SuggestedNotes       *string         `json:"suggestedNotes,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (a Analysis) MarshalJSON() ([]byte, error) {
	out := analysisJSON{Status: a.status}
	if p, ok := a.Proposal(); ok {
		out.SuggestedNotes = &p.Notes
		if !p.NextDueDate.IsZero() {
			out.SuggestedNextDueDate = &p.NextDueDate
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Analysis) UnmarshalJSON(data []byte) error {
	var in analysisJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	var date fuzzydate.Date
	if in.SuggestedNextDueDate != nil {
		date = *in.SuggestedNextDueDate
	}
	var notes string
	if in.SuggestedNotes != nil {
		notes = *in.SuggestedNotes
	}
	restored, err := RestoreAnalysis(in.Status, date, notes)
	if err != nil {
		return err
	}
	*a = restored
	return nil
}
