package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/receptia/scheduling-api/internal/models"
	"github.com/receptia/scheduling-api/internal/schedule"
)

type conflictRepository interface {
	ListDayDetails(ctx context.Context, businessID string, day time.Time) ([]models.AppointmentDetail, error)
}

// ConflictService detects overlaps between a candidate booking and a
// business's existing appointments.
type ConflictService struct {
	repo    conflictRepository
	metrics *MetricsService
	logger  *zap.Logger
}

// NewConflictService constructs the service.
func NewConflictService(repo conflictRepository, metrics *MetricsService, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{repo: repo, metrics: metrics, logger: logger}
}

// CheckConflicts returns the non-cancelled same-day appointments whose
// intervals overlap the candidate, excluding excludeID so an appointment
// being edited never conflicts with itself.
//
// The check is advisory. A read failure yields an empty set rather than
// blocking the save: the caller's write still goes through and the failure is
// logged. It is a UX safety net, not a transactional guarantee.
func (s *ConflictService) CheckConflicts(ctx context.Context, businessID string, start time.Time, durationMinutes int, excludeID string) []models.ConflictSummary {
	if durationMinutes <= 0 {
		return nil
	}

	appts, err := s.repo.ListDayDetails(ctx, businessID, start)
	if err != nil {
		s.logger.Warn("conflict check read failed, failing open",
			zap.String("business_id", businessID),
			zap.Time("candidate_start", start),
			zap.Error(err))
		if s.metrics != nil {
			s.metrics.RecordConflictCheck("error")
		}
		return nil
	}

	candidate := schedule.NewInterval(start, durationMinutes)
	var conflicts []models.ConflictSummary
	for _, a := range appts {
		if a.ID == excludeID || a.Status == models.StatusCancelled {
			continue
		}
		if candidate.Overlaps(schedule.FromAppointment(a.Appointment)) {
			conflicts = append(conflicts, models.ConflictSummary{
				AppointmentID:   a.ID,
				ScheduledAt:     a.ScheduledAt,
				DurationMinutes: a.DurationMinutes,
				ServiceType:     a.ServiceType,
				ContactName:     a.ContactName,
				ContactPhone:    a.ContactPhone,
			})
		}
	}

	if s.metrics != nil {
		outcome := "clean"
		if len(conflicts) > 0 {
			outcome = "conflict"
		}
		s.metrics.RecordConflictCheck(outcome)
	}
	return conflicts
}
