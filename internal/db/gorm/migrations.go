// Package gorm provides GORM-based database operations for catwalk.
package gorm

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// runMigrations runs all database migrations using gormigrate.
func runMigrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		// Migration 001: cats and walks
		{
			ID: "001_cats_walks",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&Cat{}); err != nil {
					return err
				}
				return tx.AutoMigrate(&Walk{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("walks", "cats")
			},
		},

		// Migration 002: at most one open walk per cat
		{
			ID: "002_walks_open_unique",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_walks_open_cat
					ON walks(cat_id) WHERE ended_at_epoch IS NULL`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec("DROP INDEX IF EXISTS idx_walks_open_cat").Error
			},
		},
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("run gormigrate migrations: %w", err)
	}

	return nil
}
