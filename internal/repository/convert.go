package repository

import (
	"fmt"

	"github.com/lib/pq"
	"github.com/vladimiradmaev/health-records/internal/database"
	"github.com/vladimiradmaev/health-records/internal/domain"
	"github.com/vladimiradmaev/health-records/internal/fuzzydate"
)

func vaccineToRow(accountID string, v domain.Vaccine) database.Vaccine {
	row := database.Vaccine{
		ID:          v.ID,
		AccountID:   accountID,
		Name:        v.Name,
		DateTaken:   v.DateTaken,
		History:     make(pq.StringArray, 0, len(v.History)),
		NextDueDate: v.NextDueDate,
		Notes:       v.Notes,
		CreatedAt:   v.CreatedAt,
	}
	for _, d := range v.History {
		row.History = append(row.History, d.String())
	}
	if status := v.Analysis.Status(); status != domain.AnalysisNone {
		s := string(status)
		row.AnalysisStatus = &s
	}
	if p, ok := v.Analysis.Proposal(); ok {
		row.SuggestedNextDueDate = p.NextDueDate
		notes := p.Notes
		row.SuggestedNotes = &notes
	}
	return row
}

func vaccineFromRow(row database.Vaccine) (domain.Vaccine, error) {
	history := make([]fuzzydate.Date, 0, len(row.History))
	for _, raw := range row.History {
		d, err := fuzzydate.Parse(raw)
		if err != nil {
			return domain.Vaccine{}, fmt.Errorf("vaccine %s history: %w", row.ID, err)
		}
		history = append(history, d)
	}

	var status domain.AnalysisStatus
	if row.AnalysisStatus != nil {
		status = domain.AnalysisStatus(*row.AnalysisStatus)
	}
	var notes string
	if row.SuggestedNotes != nil {
		notes = *row.SuggestedNotes
	}
	analysis, err := domain.RestoreAnalysis(status, row.SuggestedNextDueDate, notes)
	if err != nil {
		return domain.Vaccine{}, fmt.Errorf("vaccine %s: %w", row.ID, err)
	}

	return domain.Vaccine{
		ID:          row.ID,
		Name:        row.Name,
		DateTaken:   row.DateTaken,
		History:     history,
		NextDueDate: row.NextDueDate,
		Notes:       row.Notes,
		CreatedAt:   row.CreatedAt,
		Analysis:    analysis,
	}, nil
}

func dietToRow(accountID string, e domain.DietEntry) database.DietEntry {
	row := database.DietEntry{
		ID:        e.ID,
		AccountID: accountID,
		Type:      string(e.Type),
		Name:      e.Name,
		Timestamp: e.Timestamp,
		Notes:     e.Notes,
	}
	if e.Intensity > 0 {
		i := int16(e.Intensity)
		row.Intensity = &i
	}
	if e.AfterFoodDelay != "" {
		d := string(e.AfterFoodDelay)
		row.AfterFoodDelay = &d
	}
	return row
}

func dietFromRow(row database.DietEntry) domain.DietEntry {
	e := domain.DietEntry{
		ID:        row.ID,
		Type:      domain.DietEntryType(row.Type),
		Name:      row.Name,
		Timestamp: row.Timestamp,
		Notes:     row.Notes,
	}
	if row.Intensity != nil {
		e.Intensity = int(*row.Intensity)
	}
	if row.AfterFoodDelay != nil {
		e.AfterFoodDelay = domain.OnsetDelay(*row.AfterFoodDelay)
	}
	return e
}
