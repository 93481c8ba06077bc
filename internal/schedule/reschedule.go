package schedule

import (
	"time"

	"github.com/receptia/scheduling-api/internal/models"
)

// RescheduleInput carries everything needed to classify a multi-day
// quick-reschedule window for one appointment.
type RescheduleInput struct {
	// AppointmentID is excluded from overlap checks so the appointment
	// never conflicts with itself.
	AppointmentID   string
	CurrentStart    time.Time
	DurationMinutes int
	From            time.Time
	Days            int
	Window          WorkingWindow
	SlotSizeMinutes int
	Now             time.Time
	Appointments    []models.Appointment
}

// BuildRescheduleWindow classifies every (day, slot) pair in the window into
// exactly one state and counts open slots per day so the picker can bias the
// user toward lighter days.
func BuildRescheduleWindow(in RescheduleInput) []models.RescheduleDay {
	if in.Days <= 0 {
		return nil
	}

	busy := activeIntervals(in.Appointments, in.AppointmentID)
	step := time.Duration(in.SlotSizeMinutes) * time.Minute

	days := make([]models.RescheduleDay, 0, in.Days)
	for d := 0; d < in.Days; d++ {
		day := in.From.AddDate(0, 0, d)
		dayStart := time.Date(day.Year(), day.Month(), day.Day(), in.Window.StartHour, 0, 0, 0, day.Location())
		dayEnd := time.Date(day.Year(), day.Month(), day.Day(), in.Window.EndHour, 0, 0, 0, day.Location())

		entry := models.RescheduleDay{Day: dayStart}
		for t := dayStart; t.Before(dayEnd); t = t.Add(step) {
			state := classifySlot(t, in, busy)
			if state == models.RescheduleSlotOpen {
				entry.OpenCount++
			}
			entry.Slots = append(entry.Slots, models.RescheduleSlot{Start: t, State: state})
		}
		days = append(days, entry)
	}
	return days
}

func classifySlot(start time.Time, in RescheduleInput, busy []Interval) models.RescheduleSlotState {
	// The appointment's own slot anchors the picker even when it is in the past.
	if start.Equal(in.CurrentStart) {
		return models.RescheduleSlotCurrent
	}
	if start.Before(in.Now) {
		return models.RescheduleSlotPast
	}
	candidate := NewInterval(start, in.DurationMinutes)
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return models.RescheduleSlotBusy
		}
	}
	return models.RescheduleSlotOpen
}
