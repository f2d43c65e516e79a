// Package gorm provides GORM-based database operations for catwalk.
package gorm

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/thebtf/catwalk/pkg/models"
)

// InsertCat stores a new cat and returns its id.
// A name that already exists yields models.ErrDuplicateName and leaves the table untouched.
func (s *Store) InsertCat(ctx context.Context, name string) (int64, error) {
	cat := &Cat{Name: name}
	if err := s.DB.WithContext(ctx).Create(cat).Error; err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert cat %q: %w", name, models.ErrDuplicateName)
		}
		return 0, fmt.Errorf("insert cat: %w", err)
	}
	return cat.ID, nil
}

// ListCats returns all cats in insertion order.
func (s *Store) ListCats(ctx context.Context) ([]models.Cat, error) {
	var rows []Cat
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list cats: %w", err)
	}

	cats := make([]models.Cat, 0, len(rows))
	for i := range rows {
		cats = append(cats, *toModelCat(&rows[i]))
	}
	return cats, nil
}

// GetCat retrieves a cat by id. Returns nil, nil when no such cat exists.
func (s *Store) GetCat(ctx context.Context, id int64) (*models.Cat, error) {
	var cat Cat
	err := s.DB.WithContext(ctx).First(&cat, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cat %d: %w", id, err)
	}
	return toModelCat(&cat), nil
}

// FindCatByName retrieves a cat by exact name. Returns nil, nil when not found.
func (s *Store) FindCatByName(ctx context.Context, name string) (*models.Cat, error) {
	var cat Cat
	err := s.DB.WithContext(ctx).Where("name = ?", name).First(&cat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find cat %q: %w", name, err)
	}
	return toModelCat(&cat), nil
}
