package repository

import "errors"

var (
	// ErrNotFound indicates the record id is absent from the collection.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateID indicates an insert with an id already present.
	ErrDuplicateID = errors.New("duplicate record id")
)
