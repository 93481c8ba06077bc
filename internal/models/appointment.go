package models

import "time"

// AppointmentStatus enumerates the lifecycle states of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Valid reports whether the status is one of the known values.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// RecurrencePattern enumerates supported repeat intervals.
type RecurrencePattern string

const (
	RecurrenceNone    RecurrencePattern = "none"
	RecurrenceDaily   RecurrencePattern = "daily"
	RecurrenceWeekly  RecurrencePattern = "weekly"
	RecurrenceMonthly RecurrencePattern = "monthly"
)

// Valid reports whether the pattern is one of the known values.
func (p RecurrencePattern) Valid() bool {
	switch p {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

// Appointment represents one scheduled occurrence, business-local time.
type Appointment struct {
	ID                 string            `db:"id" json:"id"`
	BusinessID         string            `db:"business_id" json:"business_id"`
	ContactID          *string           `db:"contact_id" json:"contact_id,omitempty"`
	ScheduledAt        time.Time         `db:"scheduled_at" json:"scheduled_at"`
	DurationMinutes    int               `db:"duration_minutes" json:"duration_minutes"`
	ServiceType        *string           `db:"service_type" json:"service_type,omitempty"`
	Status             AppointmentStatus `db:"status" json:"status"`
	Notes              *string           `db:"notes" json:"notes,omitempty"`
	RecurrencePattern  RecurrencePattern `db:"recurrence_pattern" json:"recurrence_pattern"`
	RecurrenceEndDate  *time.Time        `db:"recurrence_end_date" json:"recurrence_end_date,omitempty"`
	RecurrenceParentID *string           `db:"recurrence_parent_id" json:"recurrence_parent_id,omitempty"`
	CreatedAt          time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time         `db:"updated_at" json:"updated_at"`
}

// End returns the exclusive end instant of the appointment's interval.
func (a Appointment) End() time.Time {
	return a.ScheduledAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// AppointmentDetail is an Appointment joined with contact display data.
type AppointmentDetail struct {
	Appointment
	ContactName  *string `db:"contact_name" json:"contact_name,omitempty"`
	ContactPhone *string `db:"contact_phone" json:"contact_phone,omitempty"`
}

// AppointmentFilter describes query params for listing appointments.
type AppointmentFilter struct {
	BusinessID string
	From       *time.Time
	To         *time.Time
	Status     []AppointmentStatus
	ContactID  string
	Page       int
	PageSize   int
	SortOrder  string
}

// ConflictSummary carries enough of an overlapping appointment to render a warning.
type ConflictSummary struct {
	AppointmentID   string    `json:"appointment_id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	ServiceType     *string   `json:"service_type,omitempty"`
	ContactName     *string   `json:"contact_name,omitempty"`
	ContactPhone    *string   `json:"contact_phone,omitempty"`
}

// Pagination captures list paging metadata.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
