package booking

import (
	"errors"
	"strings"
)

// ErrRoomConflict rejects a candidate whose period overlaps an existing
// booking for the same room.
var ErrRoomConflict = errors.New("Room is already booked for this period.")

// ValidationError carries every rule violation for a rejected candidate.
// Callers surface all messages together, not just the first.
type ValidationError struct {
	Violations Violations
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations.Messages(), "; ")
}

// Messages returns the flattened violation messages in stable order.
func (e *ValidationError) Messages() []string { return e.Violations.Messages() }
