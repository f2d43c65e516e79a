// Package gorm provides GORM-based database operations for catwalk.
package gorm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/thebtf/catwalk/pkg/models"
)

// WalkStoreSuite is a test suite for cat and walk operations.
type WalkStoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
	t0    time.Time
}

func (s *WalkStoreSuite) SetupTest() {
	s.store = testStore(s.T())
	s.ctx = context.Background()
	s.t0 = time.Date(2024, 3, 10, 9, 30, 0, 0, time.Local)
}

func TestWalkStoreSuite(t *testing.T) {
	suite.Run(t, new(WalkStoreSuite))
}

func (s *WalkStoreSuite) insertCat(name string) int64 {
	id, err := s.store.InsertCat(s.ctx, name)
	s.Require().NoError(err)
	return id
}

func (s *WalkStoreSuite) TestInsertCat_TableDriven() {
	tests := []struct {
		name    string
		catName string
	}{
		{name: "simple", catName: "Mimi"},
		{name: "with spaces", catName: "Don Gato"},
		{name: "unicode", catName: "Michú 🐈"},
		{name: "quotes", catName: `Sir "Paws" O'Malley`},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			id, err := s.store.InsertCat(s.ctx, tt.catName)
			s.NoError(err)
			s.Greater(id, int64(0))

			cat, err := s.store.GetCat(s.ctx, id)
			s.NoError(err)
			s.Require().NotNil(cat)
			s.Equal(tt.catName, cat.Name)
		})
	}
}

func (s *WalkStoreSuite) TestInsertCat_Duplicate() {
	s.insertCat("Mimi")

	_, err := s.store.InsertCat(s.ctx, "Mimi")
	s.ErrorIs(err, models.ErrDuplicateName)

	cats, err := s.store.ListCats(s.ctx)
	s.NoError(err)
	s.Len(cats, 1)
}

func (s *WalkStoreSuite) TestListCats_InsertionOrder() {
	s.insertCat("Zorro")
	s.insertCat("Ana")
	s.insertCat("Mimi")

	cats, err := s.store.ListCats(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(cats, 3)
	s.Equal("Zorro", cats[0].Name)
	s.Equal("Ana", cats[1].Name)
	s.Equal("Mimi", cats[2].Name)
}

func (s *WalkStoreSuite) TestGetCat_NotFound() {
	cat, err := s.store.GetCat(s.ctx, 999)
	s.NoError(err)
	s.Nil(cat)

	cat, err = s.store.FindCatByName(s.ctx, "nobody")
	s.NoError(err)
	s.Nil(cat)
}

func (s *WalkStoreSuite) TestFindCatByName() {
	id := s.insertCat("Mimi")

	cat, err := s.store.FindCatByName(s.ctx, "Mimi")
	s.Require().NoError(err)
	s.Require().NotNil(cat)
	s.Equal(id, cat.ID)
}

func (s *WalkStoreSuite) TestHasOpenWalk_FalseAfterRegistration() {
	id := s.insertCat("Mimi")

	open, err := s.store.HasOpenWalk(s.ctx, id)
	s.NoError(err)
	s.False(open)
}

func (s *WalkStoreSuite) TestOpenAndCloseWalk() {
	id := s.insertCat("Mimi")

	walkID, err := s.store.OpenWalk(s.ctx, id, s.t0)
	s.Require().NoError(err)
	s.Greater(walkID, int64(0))

	open, err := s.store.HasOpenWalk(s.ctx, id)
	s.NoError(err)
	s.True(open)

	closed, err := s.store.CloseWalk(s.ctx, id, s.t0.Add(20*time.Minute))
	s.NoError(err)
	s.True(closed)

	open, err = s.store.HasOpenWalk(s.ctx, id)
	s.NoError(err)
	s.False(open)

	walks, err := s.store.ListWalksForCat(s.ctx, id)
	s.Require().NoError(err)
	s.Require().Len(walks, 1)
	s.False(walks[0].Active())
	s.True(walks[0].StartedAt.Equal(s.t0))
	s.True(walks[0].EndedAt.Equal(s.t0.Add(20 * time.Minute)))
}

func (s *WalkStoreSuite) TestCloseWalk_NoneOpenIsNoop() {
	id := s.insertCat("Mimi")

	closed, err := s.store.CloseWalk(s.ctx, id, s.t0)
	s.NoError(err)
	s.False(closed)

	_, walks, err := s.store.Counts(s.ctx)
	s.NoError(err)
	s.Zero(walks)
}

func (s *WalkStoreSuite) TestCloseWalk_OnlyTouchesOpenRow() {
	id := s.insertCat("Mimi")

	_, err := s.store.OpenWalk(s.ctx, id, s.t0)
	s.Require().NoError(err)
	_, err = s.store.CloseWalk(s.ctx, id, s.t0.Add(time.Minute))
	s.Require().NoError(err)

	_, err = s.store.OpenWalk(s.ctx, id, s.t0.Add(time.Hour))
	s.Require().NoError(err)
	_, err = s.store.CloseWalk(s.ctx, id, s.t0.Add(2*time.Hour))
	s.Require().NoError(err)

	walks, err := s.store.ListWalksForCat(s.ctx, id)
	s.Require().NoError(err)
	s.Require().Len(walks, 2)
	// Most recent first; the earlier walk keeps its original end time.
	s.True(walks[0].EndedAt.Equal(s.t0.Add(2 * time.Hour)))
	s.True(walks[1].EndedAt.Equal(s.t0.Add(time.Minute)))
}

func (s *WalkStoreSuite) TestCloseWalk_EndBeforeStartClamped() {
	id := s.insertCat("Mimi")

	_, err := s.store.OpenWalk(s.ctx, id, s.t0)
	s.Require().NoError(err)
	closed, err := s.store.CloseWalk(s.ctx, id, s.t0.Add(-time.Minute))
	s.Require().NoError(err)
	s.True(closed)

	walks, err := s.store.ListWalksForCat(s.ctx, id)
	s.Require().NoError(err)
	s.Require().Len(walks, 1)
	s.Require().NotNil(walks[0].EndedAt)
	s.False(walks[0].EndedAt.Before(walks[0].StartedAt))
	s.True(walks[0].EndedAt.Equal(s.t0))
}

func (s *WalkStoreSuite) TestOpenWalk_SecondOpenRejected() {
	id := s.insertCat("Mimi")

	_, err := s.store.OpenWalk(s.ctx, id, s.t0)
	s.Require().NoError(err)

	_, err = s.store.OpenWalk(s.ctx, id, s.t0.Add(time.Second))
	s.ErrorIs(err, models.ErrWalkInProgress)

	_, walks, err := s.store.Counts(s.ctx)
	s.NoError(err)
	s.Equal(int64(1), walks)
}

func (s *WalkStoreSuite) TestOpenWalk_UnknownCat() {
	_, err := s.store.OpenWalk(s.ctx, 42, s.t0)
	s.ErrorIs(err, models.ErrCatNotFound)
}

func (s *WalkStoreSuite) TestOpenWalks() {
	mimi := s.insertCat("Mimi")
	tom := s.insertCat("Tom")
	s.insertCat("Luna")

	_, err := s.store.OpenWalk(s.ctx, mimi, s.t0)
	s.Require().NoError(err)
	_, err = s.store.OpenWalk(s.ctx, tom, s.t0)
	s.Require().NoError(err)
	_, err = s.store.CloseWalk(s.ctx, tom, s.t0.Add(time.Minute))
	s.Require().NoError(err)

	open, err := s.store.OpenWalks(s.ctx)
	s.Require().NoError(err)
	s.Equal(map[int64]bool{mimi: true}, open)
}

func (s *WalkStoreSuite) TestListWalks_DescendingByStart() {
	a := s.insertCat("A")
	_, err := s.store.OpenWalk(s.ctx, a, s.t0)
	s.Require().NoError(err)
	_, err = s.store.CloseWalk(s.ctx, a, s.t0.Add(time.Minute))
	s.Require().NoError(err)

	b := s.insertCat("B")
	_, err = s.store.OpenWalk(s.ctx, b, s.t0.Add(2*time.Minute))
	s.Require().NoError(err)

	history, err := s.store.ListWalks(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(history, 2)

	s.Equal("B", history[0].Name)
	s.True(history[0].Active())
	s.True(history[0].StartedAt.Equal(s.t0.Add(2 * time.Minute)))

	s.Equal("A", history[1].Name)
	s.False(history[1].Active())
	s.True(history[1].EndedAt.Equal(s.t0.Add(time.Minute)))
}

func (s *WalkStoreSuite) TestListWalks_Empty() {
	history, err := s.store.ListWalks(s.ctx)
	s.NoError(err)
	s.Empty(history)
}

func (s *WalkStoreSuite) TestClearAll() {
	mimi := s.insertCat("Mimi")
	s.insertCat("Tom")
	_, err := s.store.OpenWalk(s.ctx, mimi, s.t0)
	s.Require().NoError(err)

	s.Require().NoError(s.store.ClearAll(s.ctx))

	cats, err := s.store.ListCats(s.ctx)
	s.NoError(err)
	s.Empty(cats)

	history, err := s.store.ListWalks(s.ctx)
	s.NoError(err)
	s.Empty(history)

	// Names are free again after a reset.
	_, err = s.store.InsertCat(s.ctx, "Mimi")
	s.NoError(err)
}

func (s *WalkStoreSuite) TestDeleteCatWithWalksRestricted() {
	mimi := s.insertCat("Mimi")
	_, err := s.store.OpenWalk(s.ctx, mimi, s.t0)
	s.Require().NoError(err)

	err = s.store.DB.Exec("DELETE FROM cats WHERE id = ?", mimi).Error
	s.Error(err)
	s.True(isForeignKeyViolation(err))
}

func (s *WalkStoreSuite) TestCounts() {
	mimi := s.insertCat("Mimi")
	s.insertCat("Tom")
	_, err := s.store.OpenWalk(s.ctx, mimi, s.t0)
	s.Require().NoError(err)

	cats, walks, err := s.store.Counts(s.ctx)
	s.NoError(err)
	s.Equal(int64(2), cats)
	s.Equal(int64(1), walks)
}
