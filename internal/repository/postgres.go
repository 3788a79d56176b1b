package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/vladimiradmaev/health-records/internal/database"
	"github.com/vladimiradmaev/health-records/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresStore implements domain.Store on top of gorm
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore creates a store over an opened, migrated database
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

var vaccineColumns = []string{
	"name", "date_taken", "history", "next_due_date", "notes",
	"analysis_status", "suggested_next_due_date", "suggested_notes", "updated_at",
}

func (s *PostgresStore) ListVaccines(ctx context.Context, accountID string) ([]domain.Vaccine, error) {
	var rows []database.Vaccine
	if err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list vaccines: %w", err)
	}

	vaccines := make([]domain.Vaccine, 0, len(rows))
	for _, row := range rows {
		v, err := vaccineFromRow(row)
		if err != nil {
			return nil, err
		}
		vaccines = append(vaccines, v)
	}
	return vaccines, nil
}

func (s *PostgresStore) GetVaccine(ctx context.Context, accountID, id string) (domain.Vaccine, error) {
	var row database.Vaccine
	err := s.db.WithContext(ctx).
		Where("account_id = ? AND id = ?", accountID, id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Vaccine{}, domain.ErrVaccineNotFound
	}
	if err != nil {
		return domain.Vaccine{}, fmt.Errorf("failed to get vaccine: %w", err)
	}
	return vaccineFromRow(row)
}

// SaveVaccine writes the whole record; an existing row owned by another account is left alone
func (s *PostgresStore) SaveVaccine(ctx context.Context, accountID string, vaccine domain.Vaccine) error {
	row := vaccineToRow(accountID, vaccine)
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(vaccineColumns),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Eq{Column: clause.Column{Table: "vaccines", Name: "account_id"}, Value: accountID},
		}},
	}).Create(&row)
	if result.Error != nil {
		return fmt.Errorf("failed to save vaccine: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrVaccineNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteVaccine(ctx context.Context, accountID, id string) error {
	result := s.db.WithContext(ctx).
		Where("account_id = ? AND id = ?", accountID, id).
		Delete(&database.Vaccine{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete vaccine: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrVaccineNotFound
	}
	return nil
}

func (s *PostgresStore) ListSuggestions(ctx context.Context, accountID string) ([]domain.Suggestion, error) {
	var rows []database.Suggestion
	if err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("position").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	out := make([]domain.Suggestion, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Suggestion{ID: row.ID, Name: row.Name, Reason: row.Reason})
	}
	return out, nil
}

func (s *PostgresStore) ReplaceSuggestions(ctx context.Context, accountID string, suggestions []domain.Suggestion) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", accountID).Delete(&database.Suggestion{}).Error; err != nil {
			return fmt.Errorf("failed to clear suggestions: %w", err)
		}
		if len(suggestions) == 0 {
			return nil
		}
		rows := make([]database.Suggestion, 0, len(suggestions))
		for i, sg := range suggestions {
			rows = append(rows, database.Suggestion{
				ID:        sg.ID,
				AccountID: accountID,
				Name:      sg.Name,
				Reason:    sg.Reason,
				Position:  i,
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to store suggestions: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) DeleteSuggestion(ctx context.Context, accountID, id string) error {
	result := s.db.WithContext(ctx).
		Where("account_id = ? AND id = ?", accountID, id).
		Delete(&database.Suggestion{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete suggestion: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrSuggestionNotFound
	}
	return nil
}

func (s *PostgresStore) ListDismissedNames(ctx context.Context, accountID string) ([]string, error) {
	var names []string
	if err := s.db.WithContext(ctx).
		Model(&database.DismissedName{}).
		Where("account_id = ?", accountID).
		Order("id").
		Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to list dismissed names: %w", err)
	}
	return names, nil
}

func (s *PostgresStore) AppendDismissedName(ctx context.Context, accountID, name string) error {
	if err := s.db.WithContext(ctx).Create(&database.DismissedName{AccountID: accountID, Name: name}).Error; err != nil {
		return fmt.Errorf("failed to append dismissed name: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListDietEntries(ctx context.Context, accountID string) ([]domain.DietEntry, error) {
	var rows []database.DietEntry
	if err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("timestamp DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list diet entries: %w", err)
	}
	out := make([]domain.DietEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, dietFromRow(row))
	}
	return out, nil
}

func (s *PostgresStore) CreateDietEntries(ctx context.Context, accountID string, entries []domain.DietEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]database.DietEntry, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, dietToRow(accountID, e))
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to create diet entries: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteDietEntry(ctx context.Context, accountID, id string) error {
	result := s.db.WithContext(ctx).
		Where("account_id = ? AND id = ?", accountID, id).
		Delete(&database.DietEntry{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete diet entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrDietEntryNotFound
	}
	return nil
}
