// Package gorm provides GORM-based database operations for catwalk.
package gorm

import (
	"database/sql"
	"time"

	"gorm.io/gorm"

	"github.com/thebtf/catwalk/pkg/models"
)

// Cat represents a registered cat.
type Cat struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	Name           string `gorm:"uniqueIndex:idx_cats_name;not null"`
	CreatedAt      string `gorm:"not null"`
	CreatedAtEpoch int64  `gorm:"not null"`
}

func (Cat) TableName() string { return "cats" }

// BeforeCreate hook to ensure timestamps are set.
func (c *Cat) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if c.CreatedAtEpoch == 0 {
		c.CreatedAtEpoch = now.UnixMilli()
	}
	if c.CreatedAt == "" {
		c.CreatedAt = now.Format(time.RFC3339)
	}
	return nil
}

// Walk represents one walk interval. EndedAt stays NULL while the walk is open.
type Walk struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	CatID          int64  `gorm:"index:idx_walks_cat;not null"`
	Cat            *Cat   `gorm:"foreignKey:CatID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	StartedAt      string `gorm:"not null"`
	StartedAtEpoch int64  `gorm:"index:idx_walks_started,sort:desc;not null"`
	EndedAt        sql.NullString
	EndedAtEpoch   sql.NullInt64
}

func (Walk) TableName() string { return "walks" }

func toModelCat(c *Cat) *models.Cat {
	return &models.Cat{ID: c.ID, Name: c.Name}
}

func toModelWalk(w *Walk) *models.Walk {
	walk := &models.Walk{
		ID:        w.ID,
		CatID:     w.CatID,
		StartedAt: fromMillis(w.StartedAtEpoch),
	}
	if w.EndedAtEpoch.Valid {
		ended := fromMillis(w.EndedAtEpoch.Int64)
		walk.EndedAt = &ended
	}
	return walk
}
