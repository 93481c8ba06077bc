package schedule

import (
	"fmt"
	"time"

	"github.com/receptia/scheduling-api/internal/models"
)

// MaxOccurrences caps series expansion so a malformed or far-future end date
// cannot materialize an unbounded number of rows.
const MaxOccurrences = 365

// Expand produces the ordered occurrence dates for a recurrence series.
// A date equal to end is included. The boolean is true when the cap cut the
// series short of its end date; callers should surface that as a warning.
func Expand(start time.Time, pattern models.RecurrencePattern, end time.Time) ([]time.Time, bool, error) {
	if pattern == models.RecurrenceNone {
		return []time.Time{start}, false, nil
	}
	if !pattern.Valid() {
		return nil, false, fmt.Errorf("unknown recurrence pattern %q", pattern)
	}
	if end.Before(start) {
		return nil, false, fmt.Errorf("recurrence end date %s precedes start %s", end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	var dates []time.Time
	truncated := false
	for cur := start; !cur.After(end); cur = next(cur, pattern) {
		if len(dates) == MaxOccurrences {
			truncated = true
			break
		}
		dates = append(dates, cur)
	}
	return dates, truncated, nil
}

// next advances by the pattern's step. Monthly uses AddDate, so end-of-month
// starts normalize the way the standard library does (Jan 31 + 1 month = Mar 3).
func next(cur time.Time, pattern models.RecurrencePattern) time.Time {
	switch pattern {
	case models.RecurrenceDaily:
		return cur.AddDate(0, 0, 1)
	case models.RecurrenceWeekly:
		return cur.AddDate(0, 0, 7)
	case models.RecurrenceMonthly:
		return cur.AddDate(0, 1, 0)
	}
	return cur
}
