package models

import "time"

// SlotStatus classifies a grid slot relative to a candidate duration.
type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotPartial   SlotStatus = "partial"
	SlotBusy      SlotStatus = "busy"
)

// Slot is one fixed-size window within the working day.
type Slot struct {
	Start  time.Time  `json:"start"`
	Status SlotStatus `json:"status"`
}

// DayGrid is the classified slot list for a single day.
type DayGrid struct {
	Day             time.Time `json:"day"`
	DurationMinutes int       `json:"duration_minutes"`
	Slots           []Slot    `json:"slots"`
}

// RescheduleSlotState classifies a (day, slot) pair in the quick-reschedule picker.
type RescheduleSlotState string

const (
	RescheduleSlotBusy    RescheduleSlotState = "busy"
	RescheduleSlotPast    RescheduleSlotState = "past"
	RescheduleSlotCurrent RescheduleSlotState = "current"
	RescheduleSlotOpen    RescheduleSlotState = "open"
)

// RescheduleSlot is one candidate slot in the quick-reschedule window.
type RescheduleSlot struct {
	Start time.Time           `json:"start"`
	State RescheduleSlotState `json:"state"`
}

// RescheduleDay groups slots for one day with its openness count.
type RescheduleDay struct {
	Day       time.Time        `json:"day"`
	OpenCount int              `json:"open_count"`
	Slots     []RescheduleSlot `json:"slots"`
}
