// Package models contains domain models for catwalk.
package models

import "time"

// WalkState represents where a cat sits in the walk state machine.
type WalkState int

const (
	StateIdle WalkState = iota
	StateWalking
)

func (s WalkState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWalking:
		return "walking"
	default:
		return "unknown"
	}
}

// Transition is the outcome of a walk toggle request.
type Transition string

const (
	TransitionNone    Transition = "none"
	TransitionStarted Transition = "started"
	TransitionEnded   Transition = "ended"
)

// Walk is a time interval associated with one cat. EndedAt is nil while the walk is open.
type Walk struct {
	ID        int64      `db:"id" json:"id"`
	CatID     int64      `db:"cat_id" json:"cat_id"`
	StartedAt time.Time  `db:"started_at" json:"started_at"`
	EndedAt   *time.Time `db:"ended_at" json:"ended_at,omitempty"`
}

// Active reports whether the walk has not ended yet.
func (w Walk) Active() bool {
	return w.EndedAt == nil
}

// HistoryEntry is one line of the walk log, joined with the cat's name.
type HistoryEntry struct {
	Name      string     `json:"name"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
}

// Active reports whether the walk is still in progress.
func (h HistoryEntry) Active() bool {
	return h.EndedAt == nil
}

// Duration returns the walk length, measured up to now for open walks.
func (h HistoryEntry) Duration(now time.Time) time.Duration {
	if h.EndedAt != nil {
		return h.EndedAt.Sub(h.StartedAt)
	}
	return now.Sub(h.StartedAt)
}
