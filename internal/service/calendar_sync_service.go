package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/receptia/scheduling-api/pkg/config"
	"github.com/receptia/scheduling-api/pkg/jobs"
)

// CalendarSyncService pushes fire-and-forget notifications to an external
// calendar provider after a booking is created or moved. Delivery failures
// are retried by the queue and then logged; they never fail the booking.
type CalendarSyncService struct {
	queue   *jobs.Queue
	url     string
	client  *http.Client
	logger  *zap.Logger
	enabled bool
}

// NewCalendarSyncService constructs the service. A missing webhook URL
// disables it entirely.
func NewCalendarSyncService(cfg config.CalendarSyncConfig, logger *zap.Logger) *CalendarSyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &CalendarSyncService{
		url:     cfg.WebhookURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		enabled: cfg.WebhookURL != "",
	}
	s.queue = jobs.NewQueue("calendar-sync", s.deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the delivery workers.
func (s *CalendarSyncService) Start(ctx context.Context) {
	if s.enabled {
		s.queue.Start(ctx)
	}
}

// Stop drains the workers.
func (s *CalendarSyncService) Stop() {
	if s.enabled {
		s.queue.Stop()
	}
}

// Notify enqueues a sync notification for the appointment. Enqueue errors are
// logged only.
func (s *CalendarSyncService) Notify(ctx context.Context, appointmentID string) {
	if !s.enabled {
		return
	}
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    "calendar.sync",
		Payload: appointmentID,
	})
	if err != nil {
		s.logger.Warn("calendar sync enqueue failed", zap.String("appointment_id", appointmentID), zap.Error(err))
	}
}

func (s *CalendarSyncService) deliver(ctx context.Context, job jobs.Job) error {
	appointmentID, _ := job.Payload.(string)
	if appointmentID == "" {
		return nil
	}

	body, err := json.Marshal(map[string]string{"appointment_id": appointmentID})
	if err != nil {
		return fmt.Errorf("marshal calendar sync payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build calendar sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver calendar sync for %s: %w", appointmentID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("calendar sync for %s returned status %d", appointmentID, resp.StatusCode)
	}
	return nil
}
