package models

import "fmt"

// BookingConflictError is returned when a candidate booking overlaps existing
// appointments and the caller has not acknowledged the conflict.
type BookingConflictError struct {
	Conflicts []ConflictSummary
}

// Error implements the error interface.
func (e *BookingConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("booking overlaps %d existing appointment(s)", len(e.Conflicts))
}
