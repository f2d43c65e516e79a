// Package gorm provides GORM-based database operations for catwalk.
package gorm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/thebtf/catwalk/pkg/models"
)

// HasOpenWalk reports whether the cat has a walk without an end time.
func (s *Store) HasOpenWalk(ctx context.Context, catID int64) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).
		Model(&Walk{}).
		Where("cat_id = ? AND ended_at_epoch IS NULL", catID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check open walk: %w", err)
	}
	return count > 0, nil
}

// OpenWalks returns the set of cat ids that currently have an open walk.
func (s *Store) OpenWalks(ctx context.Context) (map[int64]bool, error) {
	var ids []int64
	err := s.DB.WithContext(ctx).
		Model(&Walk{}).
		Where("ended_at_epoch IS NULL").
		Distinct().
		Pluck("cat_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list open walks: %w", err)
	}

	open := make(map[int64]bool, len(ids))
	for _, id := range ids {
		open[id] = true
	}
	return open, nil
}

// OpenWalk inserts a new open walk for the cat starting at the given time.
// The partial unique index on open walks turns a second open row into
// models.ErrWalkInProgress; an unknown cat yields models.ErrCatNotFound.
func (s *Store) OpenWalk(ctx context.Context, catID int64, at time.Time) (int64, error) {
	walk := &Walk{
		CatID:          catID,
		StartedAt:      at.Format(time.RFC3339),
		StartedAtEpoch: at.UnixMilli(),
	}
	if err := s.DB.WithContext(ctx).Create(walk).Error; err != nil {
		switch {
		case isForeignKeyViolation(err):
			return 0, fmt.Errorf("open walk for cat %d: %w", catID, models.ErrCatNotFound)
		case isUniqueViolation(err):
			return 0, fmt.Errorf("open walk for cat %d: %w", catID, models.ErrWalkInProgress)
		}
		return 0, fmt.Errorf("open walk: %w", err)
	}
	return walk.ID, nil
}

// CloseWalk sets the end time on the cat's open walk.
// An end time before the walk's start is clamped to the start.
// Returns false without error when no walk is open.
func (s *Store) CloseWalk(ctx context.Context, catID int64, at time.Time) (bool, error) {
	closed := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open Walk
		err := tx.Where("cat_id = ? AND ended_at_epoch IS NULL", catID).Take(&open).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		end := at
		if started := fromMillis(open.StartedAtEpoch); end.Before(started) {
			end = started
		}

		result := tx.Model(&Walk{}).
			Where("id = ? AND ended_at_epoch IS NULL", open.ID).
			Updates(map[string]interface{}{
				"ended_at":       sqlNullString(end.Format(time.RFC3339)),
				"ended_at_epoch": sql.NullInt64{Int64: end.UnixMilli(), Valid: true},
			})
		closed = result.RowsAffected > 0
		return result.Error
	})
	if err != nil {
		return false, fmt.Errorf("close walk: %w", err)
	}
	return closed, nil
}

// ListWalksForCat returns the walks of one cat, most recent first.
func (s *Store) ListWalksForCat(ctx context.Context, catID int64) ([]models.Walk, error) {
	var rows []Walk
	err := s.DB.WithContext(ctx).
		Where("cat_id = ?", catID).
		Order("started_at_epoch DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list walks for cat %d: %w", catID, err)
	}

	walks := make([]models.Walk, 0, len(rows))
	for i := range rows {
		walks = append(walks, *toModelWalk(&rows[i]))
	}
	return walks, nil
}

type historyRow struct {
	Name           string
	StartedAtEpoch int64
	EndedAtEpoch   sql.NullInt64
}

// ListWalks returns the full walk log joined with cat names, most recent start first.
func (s *Store) ListWalks(ctx context.Context) ([]models.HistoryEntry, error) {
	var rows []historyRow
	err := s.DB.WithContext(ctx).
		Table("walks").
		Select("cats.name AS name, walks.started_at_epoch AS started_at_epoch, walks.ended_at_epoch AS ended_at_epoch").
		Joins("JOIN cats ON cats.id = walks.cat_id").
		Order("walks.started_at_epoch DESC, walks.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list walks: %w", err)
	}

	entries := make([]models.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entry := models.HistoryEntry{
			Name:      row.Name,
			StartedAt: fromMillis(row.StartedAtEpoch),
		}
		if row.EndedAtEpoch.Valid {
			ended := fromMillis(row.EndedAtEpoch.Int64)
			entry.EndedAt = &ended
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
