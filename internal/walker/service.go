// Package walker implements the cat walk bookkeeping operations on top of a store.
package walker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thebtf/catwalk/pkg/models"
)

// Store is the persistence contract the service needs.
type Store interface {
	InsertCat(ctx context.Context, name string) (int64, error)
	ListCats(ctx context.Context) ([]models.Cat, error)
	GetCat(ctx context.Context, id int64) (*models.Cat, error)
	FindCatByName(ctx context.Context, name string) (*models.Cat, error)
	HasOpenWalk(ctx context.Context, catID int64) (bool, error)
	OpenWalks(ctx context.Context) (map[int64]bool, error)
	OpenWalk(ctx context.Context, catID int64, at time.Time) (int64, error)
	CloseWalk(ctx context.Context, catID int64, at time.Time) (bool, error)
	ListWalks(ctx context.Context) ([]models.HistoryEntry, error)
	ClearAll(ctx context.Context) error
}

// Service orchestrates cat registration and walk toggling. It holds no state
// of its own; every read goes back to the store.
type Service struct {
	store Store
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used to stamp walks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new walk service.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterCat validates and stores a new cat.
// A duplicate name returns models.ErrDuplicateName, which callers treat as a warning.
func (s *Service) RegisterCat(ctx context.Context, name string) (*models.Cat, error) {
	name, err := models.NormalizeName(name)
	if err != nil {
		return nil, err
	}

	id, err := s.store.InsertCat(ctx, name)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateName) {
			log.Warn().Str("name", name).Msg("Cat already registered")
		}
		return nil, err
	}

	log.Info().Int64("cat_id", id).Str("name", name).Msg("Cat registered")
	return &models.Cat{ID: id, Name: name}, nil
}

// ToggleWalk moves the cat to the requested state. Requests that match the
// current state are no-ops and report TransitionNone.
func (s *Service) ToggleWalk(ctx context.Context, catID int64, walking bool) (models.Transition, error) {
	cat, err := s.store.GetCat(ctx, catID)
	if err != nil {
		return models.TransitionNone, err
	}
	if cat == nil {
		return models.TransitionNone, fmt.Errorf("cat %d: %w", catID, models.ErrCatNotFound)
	}

	open, err := s.store.HasOpenWalk(ctx, catID)
	if err != nil {
		return models.TransitionNone, err
	}

	switch {
	case walking && !open:
		if _, err := s.store.OpenWalk(ctx, catID, s.now()); err != nil {
			if errors.Is(err, models.ErrWalkInProgress) {
				return models.TransitionNone, nil
			}
			return models.TransitionNone, err
		}
		log.Info().Int64("cat_id", catID).Str("name", cat.Name).Msg("Walk started")
		return models.TransitionStarted, nil

	case !walking && open:
		closed, err := s.store.CloseWalk(ctx, catID, s.now())
		if err != nil {
			return models.TransitionNone, err
		}
		if !closed {
			return models.TransitionNone, nil
		}
		log.Info().Int64("cat_id", catID).Str("name", cat.Name).Msg("Walk ended")
		return models.TransitionEnded, nil
	}

	log.Debug().Int64("cat_id", catID).Bool("walking", walking).Msg("Walk state unchanged")
	return models.TransitionNone, nil
}

// Snapshot returns every cat with its derived walking state.
func (s *Service) Snapshot(ctx context.Context) ([]models.CatState, error) {
	cats, err := s.store.ListCats(ctx)
	if err != nil {
		return nil, err
	}
	open, err := s.store.OpenWalks(ctx)
	if err != nil {
		return nil, err
	}

	states := make([]models.CatState, 0, len(cats))
	for _, cat := range cats {
		states = append(states, models.CatState{
			ID:      cat.ID,
			Name:    cat.Name,
			Walking: open[cat.ID],
		})
	}
	return states, nil
}

// History returns the walk log, most recent start first.
func (s *Service) History(ctx context.Context) ([]models.HistoryEntry, error) {
	return s.store.ListWalks(ctx)
}

// Reset deletes all walks and cats.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.store.ClearAll(ctx); err != nil {
		return err
	}
	log.Info().Msg("All data reset")
	return nil
}

// Lookup resolves a cat by name first, then by numeric id.
func (s *Service) Lookup(ctx context.Context, ref string) (*models.Cat, error) {
	name, err := models.NormalizeName(ref)
	if err != nil {
		return nil, err
	}

	cat, err := s.store.FindCatByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if cat != nil {
		return cat, nil
	}

	if id, parseErr := strconv.ParseInt(name, 10, 64); parseErr == nil && id > 0 {
		cat, err = s.store.GetCat(ctx, id)
		if err != nil {
			return nil, err
		}
		if cat != nil {
			return cat, nil
		}
	}
	return nil, fmt.Errorf("cat %q: %w", ref, models.ErrCatNotFound)
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}
