package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/vladimiradmaev/health-records/internal/logger"
	"gorm.io/gorm"
)

//go:embed sql/*.sql
var embedded embed.FS

// Migration represents a database migration
type Migration struct {
	ID   string
	Up   func(*gorm.DB) error
	Down func(*gorm.DB) error
}

// Registry holds migrations by id
type Registry struct {
	mu         sync.Mutex
	migrations map[string]Migration
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{migrations: make(map[string]Migration)}
}

// Register adds a new migration to the registry
func (r *Registry) Register(id string, up, down func(*gorm.DB) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.migrations[id] = Migration{
		ID:   id,
		Up:   up,
		Down: down,
	}
}

// IDs returns registered migration ids in execution order
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.migrations))
	for id := range r.migrations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MigrationRecord represents a record of executed migrations
type MigrationRecord struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt int64  `gorm:"autoCreateTime"`
}

// Run executes all pending migrations and returns the ids it applied
func (r *Registry) Run(db *gorm.DB) ([]string, error) {
	if err := db.AutoMigrate(&MigrationRecord{}); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	var executed []MigrationRecord
	if err := db.Find(&executed).Error; err != nil {
		return nil, fmt.Errorf("failed to get executed migrations: %w", err)
	}
	done := make(map[string]bool, len(executed))
	for _, m := range executed {
		done[m.ID] = true
	}

	var applied []string
	for _, id := range r.IDs() {
		if done[id] {
			continue
		}
		r.mu.Lock()
		migration := r.migrations[id]
		r.mu.Unlock()

		logger.Info("Running migration", "id", id)
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return err
			}
			return tx.Create(&MigrationRecord{ID: id}).Error
		})
		if err != nil {
			return applied, fmt.Errorf("failed to run migration %s: %w", id, err)
		}
		applied = append(applied, id)
	}

	return applied, nil
}

// LoadSQL registers every .sql file under dir of fsys, keyed by file name
func (r *Registry) LoadSQL(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		content, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}
		statement := string(content)
		r.Register(strings.TrimSuffix(entry.Name(), ".sql"), func(db *gorm.DB) error {
			return db.Exec(statement).Error
		}, nil)
	}

	return nil
}

// Default returns a registry loaded with the bundled schema migrations
func Default() (*Registry, error) {
	r := NewRegistry()
	if err := r.LoadSQL(embedded, "sql"); err != nil {
		return nil, err
	}
	return r, nil
}
