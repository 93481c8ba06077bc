package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/receptia/scheduling-api/internal/models"
	"github.com/receptia/scheduling-api/internal/schedule"
	"github.com/receptia/scheduling-api/pkg/config"
	appErrors "github.com/receptia/scheduling-api/pkg/errors"
)

type availabilityRepository interface {
	ListDay(ctx context.Context, businessID string, day time.Time) ([]models.Appointment, error)
}

// AvailabilityService renders the per-day slot grid used by the booking
// calendar.
type AvailabilityService struct {
	repo   availabilityRepository
	cache  *CacheService
	cfg    config.SchedulingConfig
	logger *zap.Logger
}

// NewAvailabilityService constructs the service.
func NewAvailabilityService(repo availabilityRepository, cache *CacheService, cfg config.SchedulingConfig, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{repo: repo, cache: cache, cfg: cfg, logger: logger}
}

// DayGrid classifies the working-day slots of day against the business's
// bookings for a candidate of durationMinutes. Grids are cached briefly per
// (business, day, duration) and invalidated on every appointment write, so a
// stale grid never outlives the next mutation.
func (s *AvailabilityService) DayGrid(ctx context.Context, businessID string, day time.Time, durationMinutes int) (*models.DayGrid, error) {
	if durationMinutes <= 0 {
		durationMinutes = s.cfg.DefaultDurationMinutes
	}

	key := fmt.Sprintf("grid:%s:%s:%d", businessID, day.Format("2006-01-02"), durationMinutes)
	var cached models.DayGrid
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	appts, err := s.repo.ListDay(ctx, businessID, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load day appointments")
	}

	grid := schedule.BuildDayGrid(day, durationMinutes, appts, schedule.WorkingWindow{
		StartHour: s.cfg.DayStartHour,
		EndHour:   s.cfg.DayEndHour,
	}, s.cfg.SlotSizeMinutes)

	if err := s.cache.Set(ctx, key, grid, s.cfg.GridCacheTTL); err != nil {
		s.logger.Debug("grid cache store skipped", zap.String("key", key), zap.Error(err))
	}
	return &grid, nil
}
