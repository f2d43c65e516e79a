// Package models contains domain models for catwalk.
package models

import (
	"strings"
	"unicode/utf8"
)

// MaxNameLength is the longest cat name accepted, in runes.
const MaxNameLength = 64

// Cat is a uniquely named tracked subject.
type Cat struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// CatState is one row of the current snapshot: a cat and whether it is out walking.
type CatState struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Walking bool   `json:"walking"`
}

// State returns the walk state machine position for the cat.
func (c CatState) State() WalkState {
	if c.Walking {
		return StateWalking
	}
	return StateIdle
}

// NormalizeName trims surrounding whitespace and validates the result.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}
