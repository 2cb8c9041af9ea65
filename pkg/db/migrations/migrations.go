// Package migrations versions the rule store schema. Every migration runs in
// its own transaction together with its history record.
package migrations

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/mwantia/codingrules/pkg/db/models"
	"github.com/mwantia/codingrules/pkg/query"
	"gorm.io/gorm"
)

type Migration struct {
	Version     int
	Description string
	Up          func(*gorm.DB) error
	Down        func(*gorm.DB) error
}

// migrationHistory records one applied migration
type migrationHistory struct {
	ID          uint   `gorm:"primaryKey"`
	Version     int    `gorm:"uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	AppliedAt   int64  `gorm:"autoCreateTime"`
}

type MigrationStatus struct {
	Version     int       `json:"version"`
	Description string    `json:"description"`
	Applied     bool      `json:"applied"`
	AppliedAt   time.Time `json:"appliedAt,omitzero"`
}

type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

func NewMigrator(db *gorm.DB) *Migrator {
	return &Migrator{
		db:         db,
		migrations: allMigrations(),
	}
}

// history returns applied migrations by version, creating the history table
// on first use.
func (m *Migrator) history(ctx context.Context) (map[int]migrationHistory, error) {
	if err := m.db.WithContext(ctx).AutoMigrate(&migrationHistory{}); err != nil {
		return nil, fmt.Errorf("failed to create migration history table: %w", err)
	}

	var applied []migrationHistory
	if err := m.db.WithContext(ctx).Find(&applied).Error; err != nil {
		return nil, fmt.Errorf("failed to query migration history: %w", err)
	}

	byVersion := make(map[int]migrationHistory, len(applied))
	for _, a := range applied {
		byVersion[a.Version] = a
	}
	return byVersion, nil
}

// Migrate applies all pending migrations in version order.
func (m *Migrator) Migrate(ctx context.Context) error {
	applied, err := m.history(ctx)
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if _, ok := applied[migration.Version]; ok {
			continue
		}

		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return err
			}
			return tx.Create(&migrationHistory{
				Version:     migration.Version,
				Description: migration.Description,
			}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Description, err)
		}
	}

	return nil
}

// Rollback reverts the most recently applied migration and returns its version.
func (m *Migrator) Rollback(ctx context.Context) (int, error) {
	var last migrationHistory
	if err := m.db.WithContext(ctx).Order("version DESC").First(&last).Error; err != nil {
		return 0, fmt.Errorf("no migrations to rollback: %w", err)
	}

	var migration *Migration
	for i := range m.migrations {
		if m.migrations[i].Version == last.Version {
			migration = &m.migrations[i]
			break
		}
	}
	if migration == nil {
		return 0, fmt.Errorf("migration %d not found", last.Version)
	}

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := migration.Down(tx); err != nil {
			return err
		}
		return tx.Delete(&last).Error
	})
	if err != nil {
		return 0, fmt.Errorf("rollback of migration %d failed: %w", last.Version, err)
	}

	return last.Version, nil
}

func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	applied, err := m.history(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, 0, len(m.migrations))
	for _, migration := range m.migrations {
		status := MigrationStatus{
			Version:     migration.Version,
			Description: migration.Description,
		}
		if record, ok := applied[migration.Version]; ok {
			status.Applied = true
			status.AppliedAt = time.Unix(record.AppliedAt, 0).UTC()
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}

func allMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Rule catalog and quality profiles",
			Up: func(db *gorm.DB) error {
				return db.AutoMigrate(
					&models.Rule{},
					&models.RuleTag{},
					&models.QualityProfile{},
					&models.ActiveRule{},
				)
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(
					&models.ActiveRule{},
					&models.QualityProfile{},
					&models.RuleTag{},
					&models.Rule{},
				)
			},
		},
		{
			Version:     2,
			Description: "Saved rule filters",
			Up: func(db *gorm.DB) error {
				return db.AutoMigrate(&models.Filter{})
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(&models.Filter{})
			},
		},
		{
			Version:     3,
			Description: "Unique canonical query per saved filter",
			Up:          addFilterCanonical,
			// The column stays, it is ignored without the index.
			Down: func(db *gorm.DB) error {
				if !db.Migrator().HasIndex(&models.Filter{}, filterCanonicalIndex) {
					return nil
				}
				return db.Migrator().DropIndex(&models.Filter{}, filterCanonicalIndex)
			},
		},
	}
}

const filterCanonicalIndex = "idx_filters_canonical"

// addFilterCanonical backfills the canonical query of saved filters before
// the unique index goes in. Of several live filters with an equal query only
// the oldest survives.
func addFilterCanonical(db *gorm.DB) error {
	migrator := db.Migrator()
	if !migrator.HasColumn(&models.Filter{}, "Canonical") {
		if err := migrator.AddColumn(&models.Filter{}, "Canonical"); err != nil {
			return err
		}
	}

	var filters []models.Filter
	if err := db.Unscoped().Order("id").Find(&filters).Error; err != nil {
		return err
	}

	seen := make(map[string]bool, len(filters))
	for _, f := range filters {
		raw, err := url.ParseQuery(f.Query)
		if err != nil {
			return fmt.Errorf("filter %d has an invalid query: %w", f.ID, err)
		}
		canonical := query.Canonical(raw)

		updates := map[string]any{"canonical": canonical}
		if !f.DeletedAt.Valid {
			if seen[canonical] {
				updates["deleted_at"] = time.Now().UTC()
			}
			seen[canonical] = true
		}
		if err := db.Unscoped().Model(&models.Filter{}).Where("id = ?", f.ID).Updates(updates).Error; err != nil {
			return err
		}
	}

	if migrator.HasIndex(&models.Filter{}, filterCanonicalIndex) {
		return nil
	}
	return migrator.CreateIndex(&models.Filter{}, filterCanonicalIndex)
}
