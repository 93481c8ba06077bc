package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/receptia/scheduling-api/internal/models"
	"github.com/receptia/scheduling-api/internal/schedule"
	appErrors "github.com/receptia/scheduling-api/pkg/errors"
)

type appointmentRepository interface {
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.AppointmentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	Create(ctx context.Context, appt *models.Appointment) error
	CreateSeries(ctx context.Context, parent *models.Appointment, children []models.Appointment) error
	Update(ctx context.Context, appt *models.Appointment) error
	Delete(ctx context.Context, id string) error
}

type conflictChecker interface {
	CheckConflicts(ctx context.Context, businessID string, start time.Time, durationMinutes int, excludeID string) []models.ConflictSummary
}

type calendarNotifier interface {
	Notify(ctx context.Context, appointmentID string)
}

// AppointmentService coordinates booking creation, editing, duplication and
// recurrence-series materialization.
type AppointmentService struct {
	repo            appointmentRepository
	conflicts       conflictChecker
	calendar        calendarNotifier
	cache           *CacheService
	metrics         *MetricsService
	validator       *validator.Validate
	logger          *zap.Logger
	defaultDuration int
}

// NewAppointmentService instantiates AppointmentService.
func NewAppointmentService(repo appointmentRepository, conflicts conflictChecker, calendar calendarNotifier, cache *CacheService, metrics *MetricsService, defaultDurationMinutes int, validate *validator.Validate, logger *zap.Logger) *AppointmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultDurationMinutes <= 0 {
		defaultDurationMinutes = 60
	}
	return &AppointmentService{
		repo:            repo,
		conflicts:       conflicts,
		calendar:        calendar,
		cache:           cache,
		metrics:         metrics,
		validator:       validate,
		logger:          logger,
		defaultDuration: defaultDurationMinutes,
	}
}

// CreateAppointmentRequest describes the payload for booking an appointment.
type CreateAppointmentRequest struct {
	ContactID            *string    `json:"contact_id"`
	ScheduledAt          time.Time  `json:"scheduled_at" validate:"required"`
	DurationMinutes      int        `json:"duration_minutes" validate:"omitempty,gt=0"`
	ServiceType          *string    `json:"service_type"`
	Status               string     `json:"status" validate:"omitempty,oneof=pending confirmed"`
	Notes                *string    `json:"notes"`
	RecurrencePattern    string     `json:"recurrence_pattern" validate:"omitempty,oneof=none daily weekly monthly"`
	RecurrenceEndDate    *time.Time `json:"recurrence_end_date"`
	ConflictAcknowledged bool       `json:"conflict_acknowledged"`
}

// CreateAppointmentResult reports what the booking produced.
type CreateAppointmentResult struct {
	Appointment     *models.Appointment  `json:"appointment"`
	Children        []models.Appointment `json:"children,omitempty"`
	SeriesTruncated bool                 `json:"series_truncated,omitempty"`
}

// UpdateAppointmentRequest describes an edit of an existing appointment.
type UpdateAppointmentRequest struct {
	ContactID            *string   `json:"contact_id"`
	ScheduledAt          time.Time `json:"scheduled_at" validate:"required"`
	DurationMinutes      int       `json:"duration_minutes" validate:"required,gt=0"`
	ServiceType          *string   `json:"service_type"`
	Status               string    `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
	Notes                *string   `json:"notes"`
	ConflictAcknowledged bool      `json:"conflict_acknowledged"`
}

// DuplicateAppointmentRequest books a copy of an appointment at a new start.
type DuplicateAppointmentRequest struct {
	ScheduledAt          time.Time `json:"scheduled_at" validate:"required"`
	ConflictAcknowledged bool      `json:"conflict_acknowledged"`
}

// ListAppointmentsRequest filters the appointment listing.
type ListAppointmentsRequest struct {
	From      *time.Time
	To        *time.Time
	Status    []string
	ContactID string
	Page      int
	PageSize  int
	SortOrder string
}

// Create books an appointment, materializing the full series when a
// recurrence pattern is set.
func (s *AppointmentService) Create(ctx context.Context, businessID string, req CreateAppointmentRequest) (*CreateAppointmentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid appointment payload")
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = s.defaultDuration
	}
	status := models.AppointmentStatus(req.Status)
	if req.Status == "" {
		status = models.StatusPending
	}
	pattern := models.RecurrencePattern(req.RecurrencePattern)
	if req.RecurrencePattern == "" {
		pattern = models.RecurrenceNone
	}

	if pattern != models.RecurrenceNone {
		if req.RecurrenceEndDate == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "recurrence end date is required for a repeating appointment")
		}
		if req.RecurrenceEndDate.Before(req.ScheduledAt) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "recurrence end date must be on or after the scheduled date")
		}
	}

	if err := s.conflictGate(ctx, businessID, req.ScheduledAt, duration, "", req.ConflictAcknowledged); err != nil {
		return nil, err
	}

	parent := &models.Appointment{
		BusinessID:        businessID,
		ContactID:         req.ContactID,
		ScheduledAt:       req.ScheduledAt,
		DurationMinutes:   duration,
		ServiceType:       req.ServiceType,
		Status:            status,
		Notes:             req.Notes,
		RecurrencePattern: pattern,
	}

	result := &CreateAppointmentResult{Appointment: parent}

	if pattern == models.RecurrenceNone {
		if err := s.repo.Create(ctx, parent); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create appointment")
		}
		if s.metrics != nil {
			s.metrics.RecordBookingsCreated(1)
		}
	} else {
		parent.RecurrenceEndDate = req.RecurrenceEndDate

		dates, truncated, err := schedule.Expand(req.ScheduledAt, pattern, *req.RecurrenceEndDate)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recurrence")
		}
		if truncated {
			s.logger.Warn("recurrence series capped",
				zap.String("business_id", businessID),
				zap.Int("occurrences", len(dates)),
				zap.Timep("end_date", req.RecurrenceEndDate))
		}
		result.SeriesTruncated = truncated

		children := make([]models.Appointment, 0, len(dates)-1)
		for _, d := range dates[1:] {
			children = append(children, models.Appointment{
				BusinessID:        businessID,
				ContactID:         req.ContactID,
				ScheduledAt:       d,
				DurationMinutes:   duration,
				ServiceType:       req.ServiceType,
				Status:            status,
				Notes:             req.Notes,
				RecurrencePattern: models.RecurrenceNone,
			})
		}

		if err := s.repo.CreateSeries(ctx, parent, children); err != nil {
			s.logger.Error("recurrence series creation failed",
				zap.String("parent_id", parent.ID),
				zap.Int("children", len(children)),
				zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create recurring appointments")
		}
		result.Children = children
		if s.metrics != nil {
			s.metrics.RecordBookingsCreated(len(dates))
		}
	}

	s.invalidateGrids(ctx, businessID)
	if s.calendar != nil {
		s.calendar.Notify(ctx, parent.ID)
	}
	return result, nil
}

// Get returns one appointment.
func (s *AppointmentService) Get(ctx context.Context, businessID, id string) (*models.Appointment, error) {
	appt, err := s.findOwned(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// List returns appointments with pagination metadata.
func (s *AppointmentService) List(ctx context.Context, businessID string, req ListAppointmentsRequest) ([]models.AppointmentDetail, *models.Pagination, error) {
	filter := models.AppointmentFilter{
		BusinessID: businessID,
		From:       req.From,
		To:         req.To,
		ContactID:  req.ContactID,
		Page:       req.Page,
		PageSize:   req.PageSize,
		SortOrder:  req.SortOrder,
	}
	for _, raw := range req.Status {
		status := models.AppointmentStatus(raw)
		if !status.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", raw))
		}
		filter.Status = append(filter.Status, status)
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}

	appts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list appointments")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return appts, pagination, nil
}

// Update edits an appointment's schedule, contact, status and notes. Moving
// or resizing it re-runs the conflict gate, with the appointment itself
// excluded from the comparison.
func (s *AppointmentService) Update(ctx context.Context, businessID, id string, req UpdateAppointmentRequest) (*models.Appointment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid appointment payload")
	}

	appt, err := s.findOwned(ctx, businessID, id)
	if err != nil {
		return nil, err
	}

	status := models.AppointmentStatus(req.Status)
	if status != models.StatusCancelled {
		if err := s.conflictGate(ctx, businessID, req.ScheduledAt, req.DurationMinutes, id, req.ConflictAcknowledged); err != nil {
			return nil, err
		}
	}

	appt.ContactID = req.ContactID
	appt.ScheduledAt = req.ScheduledAt
	appt.DurationMinutes = req.DurationMinutes
	appt.ServiceType = req.ServiceType
	appt.Status = status
	appt.Notes = req.Notes

	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update appointment")
	}

	s.invalidateGrids(ctx, businessID)
	return appt, nil
}

// Duplicate books a copy of an existing appointment at a new start. The copy
// is standalone: recurrence metadata is not inherited.
func (s *AppointmentService) Duplicate(ctx context.Context, businessID, id string, req DuplicateAppointmentRequest) (*models.Appointment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid duplicate payload")
	}

	source, err := s.findOwned(ctx, businessID, id)
	if err != nil {
		return nil, err
	}

	if err := s.conflictGate(ctx, businessID, req.ScheduledAt, source.DurationMinutes, "", req.ConflictAcknowledged); err != nil {
		return nil, err
	}

	copyAppt := &models.Appointment{
		BusinessID:        businessID,
		ContactID:         source.ContactID,
		ScheduledAt:       req.ScheduledAt,
		DurationMinutes:   source.DurationMinutes,
		ServiceType:       source.ServiceType,
		Status:            models.StatusPending,
		Notes:             source.Notes,
		RecurrencePattern: models.RecurrenceNone,
	}

	if err := s.repo.Create(ctx, copyAppt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to duplicate appointment")
	}

	if s.metrics != nil {
		s.metrics.RecordBookingsCreated(1)
	}
	s.invalidateGrids(ctx, businessID)
	if s.calendar != nil {
		s.calendar.Notify(ctx, copyAppt.ID)
	}
	return copyAppt, nil
}

// Delete removes an appointment.
func (s *AppointmentService) Delete(ctx context.Context, businessID, id string) error {
	if _, err := s.findOwned(ctx, businessID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete appointment")
	}
	s.invalidateGrids(ctx, businessID)
	return nil
}

// conflictGate runs the advisory conflict check and blocks the save when
// overlaps exist that the caller has not acknowledged. Acknowledgment must be
// re-sent whenever the candidate start or duration changes.
func (s *AppointmentService) conflictGate(ctx context.Context, businessID string, start time.Time, durationMinutes int, excludeID string, acknowledged bool) error {
	if s.conflicts == nil {
		return nil
	}
	conflicts := s.conflicts.CheckConflicts(ctx, businessID, start, durationMinutes, excludeID)
	if len(conflicts) == 0 || acknowledged {
		return nil
	}
	return appErrors.Wrap(&models.BookingConflictError{Conflicts: conflicts}, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "appointment overlaps existing bookings")
}

func (s *AppointmentService) findOwned(ctx context.Context, businessID, id string) (*models.Appointment, error) {
	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
	}
	if appt.BusinessID != businessID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
	}
	return appt, nil
}

func (s *AppointmentService) invalidateGrids(ctx context.Context, businessID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, fmt.Sprintf("grid:%s:*", businessID))
}
