package database

import "errors"

var (
	// ErrBookingNotFound marks lookups and writes referencing an id absent
	// from the store.
	ErrBookingNotFound = errors.New("booking not found")
)
