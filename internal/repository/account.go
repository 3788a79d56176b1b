package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vladimiradmaev/health-records/internal/database"
	"github.com/vladimiradmaev/health-records/internal/domain"
	"gorm.io/gorm"
)

func accountFromRow(row database.Account) domain.Account {
	return domain.Account{ID: row.ID, Email: row.Email, Name: row.Name}
}

// CreateAccount stores a password account; a taken email yields domain.ErrEmailTaken
func (s *PostgresStore) CreateAccount(ctx context.Context, account domain.Account, passwordHash string) error {
	row := database.Account{
		ID:           account.ID,
		Email:        strings.ToLower(account.Email),
		Name:         account.Name,
		PasswordHash: &passwordHash,
	}
	err := s.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// FindAccountByEmail returns the account and its password hash
func (s *PostgresStore) FindAccountByEmail(ctx context.Context, email string) (domain.Account, string, error) {
	var row database.Account
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Account{}, "", domain.ErrAccountNotFound
	}
	if err != nil {
		return domain.Account{}, "", fmt.Errorf("failed to find account: %w", err)
	}
	var hash string
	if row.PasswordHash != nil {
		hash = *row.PasswordHash
	}
	return accountFromRow(row), hash, nil
}

func (s *PostgresStore) GetAccount(ctx context.Context, id string) (domain.Account, error) {
	var row database.Account
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("failed to get account: %w", err)
	}
	return accountFromRow(row), nil
}

// EnsureAccount gets an existing account or creates a new one, refreshing its profile
func (s *PostgresStore) EnsureAccount(ctx context.Context, account domain.Account) (domain.Account, error) {
	row := database.Account{}
	result := s.db.WithContext(ctx).
		Where(database.Account{ID: account.ID}).
		Assign(database.Account{Email: strings.ToLower(account.Email), Name: account.Name}).
		FirstOrCreate(&row)
	if result.Error != nil {
		return domain.Account{}, fmt.Errorf("failed to register account: %w", result.Error)
	}
	return accountFromRow(row), nil
}
