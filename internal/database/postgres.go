package database

import (
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/vladimiradmaev/health-records/internal/config"
	"github.com/vladimiradmaev/health-records/internal/database/migrations"
	"github.com/vladimiradmaev/health-records/internal/fuzzydate"
	"github.com/vladimiradmaev/health-records/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Account struct {
	ID           string `gorm:"primaryKey;size:64"`
	Email        string `gorm:"size:320"`
	Name         string `gorm:"size:200"`
	PasswordHash *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Vaccine struct {
	ID                   string `gorm:"primaryKey;size:64"`
	AccountID            string `gorm:"size:64;index"`
	Name                 string `gorm:"size:200"`
	DateTaken            fuzzydate.Date
	History              pq.StringArray `gorm:"type:text[]"`
	NextDueDate          fuzzydate.Date
	Notes                string
	AnalysisStatus       *string `gorm:"size:16"`
	SuggestedNextDueDate fuzzydate.Date
	SuggestedNotes       *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type Suggestion struct {
	ID        string `gorm:"primaryKey;size:64"`
	AccountID string `gorm:"size:64;index"`
	Name      string `gorm:"size:200"`
	Reason    string
	Position  int
}

type DismissedName struct {
	ID        uint   `gorm:"primaryKey"`
	AccountID string `gorm:"size:64;index"`
	Name      string `gorm:"size:200"`
	CreatedAt time.Time
}

type DietEntry struct {
	ID             string `gorm:"primaryKey;size:64"`
	AccountID      string `gorm:"size:64;index"`
	Type           string `gorm:"size:16"`
	Name           string `gorm:"size:200"`
	Timestamp      time.Time
	Notes          string
	Intensity      *int16
	AfterFoodDelay *string `gorm:"size:16"`
}

func NewPostgresDB(cfg config.DBConfig) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	if _, err := Migrate(db); err != nil {
		Close(db)
		return nil, err
	}

	logger.Info("Database connection established and migrations completed", "host", cfg.Host, "db", cfg.DBName)
	return db, nil
}

// Open connects without touching the schema
func Open(cfg config.DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// Close releases the connection pool
func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("Failed to close database", "error", err)
	}
}

// Migrate applies the bundled schema migrations and returns the ids it ran
func Migrate(db *gorm.DB) ([]string, error) {
	registry, err := migrations.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	applied, err := registry.Run(db)
	if err != nil {
		return applied, fmt.Errorf("failed to run migrations: %w", err)
	}
	return applied, nil
}
