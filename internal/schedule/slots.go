package schedule

import (
	"time"

	"github.com/receptia/scheduling-api/internal/models"
)

// WorkingWindow bounds the slot grid within a business day.
type WorkingWindow struct {
	StartHour int
	EndHour   int
}

// BuildDayGrid classifies every fixed-size slot of the working window against
// the day's appointments. Cancelled appointments never block a slot.
//
// A slot is available when nothing overlaps its candidate interval, busy when
// the overlapping minutes fully consume the candidate duration, and partial
// otherwise. Partial means the booking may still fit depending on exact
// placement, so it is a caution rather than a block.
func BuildDayGrid(day time.Time, durationMinutes int, appts []models.Appointment, window WorkingWindow, slotSizeMinutes int) models.DayGrid {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), window.StartHour, 0, 0, 0, day.Location())
	dayEnd := time.Date(day.Year(), day.Month(), day.Day(), window.EndHour, 0, 0, 0, day.Location())

	busy := activeIntervals(appts, "")

	grid := models.DayGrid{Day: dayStart, DurationMinutes: durationMinutes}
	step := time.Duration(slotSizeMinutes) * time.Minute
	for t := dayStart; t.Before(dayEnd); t = t.Add(step) {
		candidate := NewInterval(t, durationMinutes)
		overlapMin := 0
		overlapping := 0
		for _, b := range busy {
			if candidate.Overlaps(b) {
				overlapping++
				overlapMin += candidate.OverlapMinutes(b)
			}
		}

		status := models.SlotAvailable
		switch {
		case overlapping == 0:
			status = models.SlotAvailable
		case overlapMin >= durationMinutes:
			status = models.SlotBusy
		default:
			status = models.SlotPartial
		}
		grid.Slots = append(grid.Slots, models.Slot{Start: t, Status: status})
	}
	return grid
}

// activeIntervals converts non-cancelled appointments to intervals, skipping
// the excluded id when set.
func activeIntervals(appts []models.Appointment, excludeID string) []Interval {
	intervals := make([]Interval, 0, len(appts))
	for _, a := range appts {
		if a.Status == models.StatusCancelled {
			continue
		}
		if excludeID != "" && a.ID == excludeID {
			continue
		}
		intervals = append(intervals, FromAppointment(a))
	}
	return intervals
}
