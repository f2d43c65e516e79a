package models

import "errors"

var (
	// ErrDuplicateName is returned when a cat with the same name already exists.
	// It is recoverable: no state changes.
	ErrDuplicateName = errors.New("cat is already registered")

	ErrEmptyName   = errors.New("cat name is empty")
	ErrNameTooLong = errors.New("cat name is too long")

	// ErrCatNotFound is returned for operations on an unknown cat id.
	ErrCatNotFound = errors.New("cat not found")

	// ErrWalkInProgress is returned by the store when a second open walk is
	// inserted for the same cat.
	ErrWalkInProgress = errors.New("walk already in progress")
)
