package schedule

import (
	"time"

	"github.com/receptia/scheduling-api/internal/models"
)

// Interval is a half-open time span [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval builds the interval covered by a booking starting at start.
func NewInterval(start time.Time, durationMinutes int) Interval {
	return Interval{Start: start, End: start.Add(time.Duration(durationMinutes) * time.Minute)}
}

// FromAppointment returns the interval occupied by an appointment.
func FromAppointment(a models.Appointment) Interval {
	return NewInterval(a.ScheduledAt, a.DurationMinutes)
}

// Overlaps reports whether two half-open intervals share at least one instant.
// Back-to-back spans (a.End == b.Start) do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// OverlapMinutes returns the whole minutes the two intervals share.
func (iv Interval) OverlapMinutes(other Interval) int {
	start := iv.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := iv.End
	if other.End.Before(end) {
		end = other.End
	}
	if !end.After(start) {
		return 0
	}
	return int(end.Sub(start) / time.Minute)
}
