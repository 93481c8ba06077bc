package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/receptia/scheduling-api/internal/models"
)

func rescheduleInput(now time.Time, appts []models.Appointment) RescheduleInput {
	return RescheduleInput{
		AppointmentID:   "target",
		CurrentStart:    at(10, 0),
		DurationMinutes: 60,
		From:            time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		Days:            2,
		Window:          testWindow,
		SlotSizeMinutes: 30,
		Now:             now,
		Appointments:    appts,
	}
}

func rescheduleSlot(t *testing.T, days []models.RescheduleDay, start time.Time) models.RescheduleSlot {
	t.Helper()
	for _, d := range days {
		for _, s := range d.Slots {
			if s.Start.Equal(start) {
				return s
			}
		}
	}
	t.Fatalf("no slot at %s", start)
	return models.RescheduleSlot{}
}

func TestRescheduleWindowStates(t *testing.T) {
	now := at(8, 15)
	appts := []models.Appointment{
		appt("other", at(14, 0), 60, models.StatusConfirmed),
		appt("target", at(10, 0), 60, models.StatusConfirmed),
	}
	days := BuildRescheduleWindow(rescheduleInput(now, appts))
	require.Len(t, days, 2)

	assert.Equal(t, models.RescheduleSlotPast, rescheduleSlot(t, days, at(7, 0)).State)
	assert.Equal(t, models.RescheduleSlotPast, rescheduleSlot(t, days, at(8, 0)).State)
	assert.Equal(t, models.RescheduleSlotOpen, rescheduleSlot(t, days, at(8, 30)).State)
	assert.Equal(t, models.RescheduleSlotCurrent, rescheduleSlot(t, days, at(10, 0)).State)
	assert.Equal(t, models.RescheduleSlotBusy, rescheduleSlot(t, days, at(14, 0)).State)
	assert.Equal(t, models.RescheduleSlotBusy, rescheduleSlot(t, days, at(13, 30)).State)
	assert.Equal(t, models.RescheduleSlotOpen, rescheduleSlot(t, days, at(15, 0)).State)
}

func TestRescheduleExcludesOwnBooking(t *testing.T) {
	// Only the target's own row occupies 10:30; it must not block neighbours.
	now := at(7, 0)
	appts := []models.Appointment{appt("target", at(10, 0), 60, models.StatusConfirmed)}
	days := BuildRescheduleWindow(rescheduleInput(now, appts))

	assert.Equal(t, models.RescheduleSlotOpen, rescheduleSlot(t, days, at(10, 30)).State)
	assert.Equal(t, models.RescheduleSlotOpen, rescheduleSlot(t, days, at(9, 30)).State)
}

func TestRescheduleCancelledDoesNotBlock(t *testing.T) {
	now := at(7, 0)
	appts := []models.Appointment{appt("other", at(12, 0), 120, models.StatusCancelled)}
	days := BuildRescheduleWindow(rescheduleInput(now, appts))
	assert.Equal(t, models.RescheduleSlotOpen, rescheduleSlot(t, days, at(12, 0)).State)
}

func TestRescheduleOpenCount(t *testing.T) {
	// All of day two is in the future and empty: every slot minus none = 28 open.
	now := at(8, 15)
	days := BuildRescheduleWindow(rescheduleInput(now, nil))
	require.Len(t, days, 2)
	assert.Equal(t, 28, days[1].OpenCount)

	// Day one: 3 past slots (07:00, 07:30, 08:00) and the current anchor.
	assert.Equal(t, 28-3-1, days[0].OpenCount)
}

func TestRescheduleZeroDays(t *testing.T) {
	in := rescheduleInput(at(7, 0), nil)
	in.Days = 0
	assert.Nil(t, BuildRescheduleWindow(in))
}
