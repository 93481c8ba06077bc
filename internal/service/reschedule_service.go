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
	"github.com/receptia/scheduling-api/pkg/config"
	appErrors "github.com/receptia/scheduling-api/pkg/errors"
)

type rescheduleRepository interface {
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	ListRange(ctx context.Context, businessID string, from, to time.Time) ([]models.Appointment, error)
	UpdateScheduledAt(ctx context.Context, id string, scheduledAt time.Time) error
}

// RescheduleService backs the quick-reschedule picker: a short multi-day slot
// window scoped to one appointment, plus the single-field move that applies
// the chosen slot.
type RescheduleService struct {
	repo      rescheduleRepository
	conflicts conflictChecker
	calendar  calendarNotifier
	cache     *CacheService
	cfg       config.SchedulingConfig
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewRescheduleService constructs the service.
func NewRescheduleService(repo rescheduleRepository, conflicts conflictChecker, calendar calendarNotifier, cache *CacheService, cfg config.SchedulingConfig, validate *validator.Validate, logger *zap.Logger) *RescheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RescheduleService{
		repo:      repo,
		conflicts: conflicts,
		calendar:  calendar,
		cache:     cache,
		cfg:       cfg,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// RescheduleOptions is the classified picker window for one appointment.
type RescheduleOptions struct {
	AppointmentID   string                 `json:"appointment_id"`
	DurationMinutes int                    `json:"duration_minutes"`
	Days            []models.RescheduleDay `json:"days"`
}

// ApplyRescheduleRequest moves an appointment to the chosen slot.
type ApplyRescheduleRequest struct {
	ScheduledAt          time.Time `json:"scheduled_at" validate:"required"`
	ConflictAcknowledged bool      `json:"conflict_acknowledged"`
}

// Options builds the picker window starting at from (the appointment's own
// day when from is zero). The appointment keeps its duration; only the start
// moves.
func (s *RescheduleService) Options(ctx context.Context, businessID, id string, from time.Time) (*RescheduleOptions, error) {
	appt, err := s.findOwned(ctx, businessID, id)
	if err != nil {
		return nil, err
	}

	if from.IsZero() {
		from = appt.ScheduledAt
	}
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	days := s.cfg.RescheduleWindowDays

	appts, err := s.repo.ListRange(ctx, businessID, from, from.AddDate(0, 0, days))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reschedule window")
	}

	window := schedule.BuildRescheduleWindow(schedule.RescheduleInput{
		AppointmentID:   appt.ID,
		CurrentStart:    appt.ScheduledAt,
		DurationMinutes: appt.DurationMinutes,
		From:            from,
		Days:            days,
		Window:          schedule.WorkingWindow{StartHour: s.cfg.DayStartHour, EndHour: s.cfg.DayEndHour},
		SlotSizeMinutes: s.cfg.SlotSizeMinutes,
		Now:             s.now(),
		Appointments:    appts,
	})

	return &RescheduleOptions{
		AppointmentID:   appt.ID,
		DurationMinutes: appt.DurationMinutes,
		Days:            window,
	}, nil
}

// Apply moves the appointment to the requested start. Everything else about
// the appointment is preserved; the conflict gate runs with the appointment
// itself excluded.
func (s *RescheduleService) Apply(ctx context.Context, businessID, id string, req ApplyRescheduleRequest) (*models.Appointment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reschedule payload")
	}

	appt, err := s.findOwned(ctx, businessID, id)
	if err != nil {
		return nil, err
	}

	if s.conflicts != nil {
		conflicts := s.conflicts.CheckConflicts(ctx, businessID, req.ScheduledAt, appt.DurationMinutes, appt.ID)
		if len(conflicts) > 0 && !req.ConflictAcknowledged {
			return nil, appErrors.Wrap(&models.BookingConflictError{Conflicts: conflicts}, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "target slot overlaps existing bookings")
		}
	}

	if err := s.repo.UpdateScheduledAt(ctx, appt.ID, req.ScheduledAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to move appointment")
	}
	appt.ScheduledAt = req.ScheduledAt

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, fmt.Sprintf("grid:%s:*", businessID))
	}
	if s.calendar != nil {
		s.calendar.Notify(ctx, appt.ID)
	}
	return appt, nil
}

func (s *RescheduleService) findOwned(ctx context.Context, businessID, id string) (*models.Appointment, error) {
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
