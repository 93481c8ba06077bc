package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/receptia/scheduling-api/internal/models"
	"github.com/receptia/scheduling-api/pkg/config"
	appErrors "github.com/receptia/scheduling-api/pkg/errors"
)

type mockRescheduleRepo struct {
	appt      *models.Appointment
	findErr   error
	ranged    []models.Appointment
	movedID   string
	movedTo   time.Time
	moveErr   error
	rangeFrom time.Time
	rangeTo   time.Time
}

func (m *mockRescheduleRepo) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	return m.appt, m.findErr
}

func (m *mockRescheduleRepo) ListRange(ctx context.Context, businessID string, from, to time.Time) ([]models.Appointment, error) {
	m.rangeFrom = from
	m.rangeTo = to
	return m.ranged, nil
}

func (m *mockRescheduleRepo) UpdateScheduledAt(ctx context.Context, id string, scheduledAt time.Time) error {
	if m.moveErr != nil {
		return m.moveErr
	}
	m.movedID = id
	m.movedTo = scheduledAt
	return nil
}

func testSchedulingConfig() config.SchedulingConfig {
	return config.SchedulingConfig{
		DayStartHour:           7,
		DayEndHour:             21,
		SlotSizeMinutes:        30,
		DefaultDurationMinutes: 60,
		RescheduleWindowDays:   5,
	}
}

func newRescheduleService(repo *mockRescheduleRepo, conflicts *stubConflicts, notifier *stubNotifier) *RescheduleService {
	return NewRescheduleService(repo, conflicts, notifier, nil, testSchedulingConfig(), nil, nil)
}

func TestRescheduleOptionsWindow(t *testing.T) {
	current := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	repo := &mockRescheduleRepo{
		appt: &models.Appointment{
			ID: "appt-1", BusinessID: "biz-1",
			ScheduledAt: current, DurationMinutes: 60, Status: models.StatusConfirmed,
		},
		ranged: []models.Appointment{
			{ID: "appt-1", BusinessID: "biz-1", ScheduledAt: current, DurationMinutes: 60, Status: models.StatusConfirmed},
			{ID: "appt-2", BusinessID: "biz-1", ScheduledAt: current.Add(4 * time.Hour), DurationMinutes: 60, Status: models.StatusConfirmed},
		},
	}
	svc := newRescheduleService(repo, &stubConflicts{}, &stubNotifier{})
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }

	opts, err := svc.Options(context.Background(), "biz-1", "appt-1", time.Time{})

	require.NoError(t, err)
	assert.Equal(t, "appt-1", opts.AppointmentID)
	assert.Equal(t, 60, opts.DurationMinutes)
	require.Len(t, opts.Days, 5)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), repo.rangeFrom)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), repo.rangeTo)

	day0 := opts.Days[0]
	states := map[time.Time]models.RescheduleSlotState{}
	for _, slot := range day0.Slots {
		states[slot.Start] = slot.State
	}
	// The appointment's own slot is current even though it would otherwise
	// overlap itself.
	assert.Equal(t, models.RescheduleSlotCurrent, states[current])
	assert.Equal(t, models.RescheduleSlotPast, states[time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)])
	assert.Equal(t, models.RescheduleSlotBusy, states[time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)])
	assert.Equal(t, models.RescheduleSlotOpen, states[time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)])
}

func TestRescheduleOptionsForeignBusiness(t *testing.T) {
	repo := &mockRescheduleRepo{appt: &models.Appointment{ID: "appt-1", BusinessID: "biz-2"}}
	svc := newRescheduleService(repo, &stubConflicts{}, &stubNotifier{})

	_, err := svc.Options(context.Background(), "biz-1", "appt-1", time.Time{})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRescheduleApplyMovesStartOnly(t *testing.T) {
	repo := &mockRescheduleRepo{appt: &models.Appointment{
		ID: "appt-1", BusinessID: "biz-1",
		ScheduledAt:     time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
	}}
	conflicts := &stubConflicts{}
	notifier := &stubNotifier{}
	svc := newRescheduleService(repo, conflicts, notifier)

	target := time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC)
	appt, err := svc.Apply(context.Background(), "biz-1", "appt-1", ApplyRescheduleRequest{ScheduledAt: target})

	require.NoError(t, err)
	assert.Equal(t, "appt-1", repo.movedID)
	assert.Equal(t, target, repo.movedTo)
	assert.Equal(t, target, appt.ScheduledAt)
	assert.Equal(t, "appt-1", conflicts.lastExcl)
	assert.Equal(t, []string{"appt-1"}, notifier.notified)
}

func TestRescheduleApplyBlockedByConflict(t *testing.T) {
	repo := &mockRescheduleRepo{appt: &models.Appointment{
		ID: "appt-1", BusinessID: "biz-1", DurationMinutes: 60,
		ScheduledAt: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
	}}
	conflicts := &stubConflicts{conflicts: []models.ConflictSummary{{AppointmentID: "other"}}}
	svc := newRescheduleService(repo, conflicts, &stubNotifier{})

	_, err := svc.Apply(context.Background(), "biz-1", "appt-1", ApplyRescheduleRequest{
		ScheduledAt: time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC),
	})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.movedID)
}

func TestRescheduleApplyAcknowledgedConflict(t *testing.T) {
	repo := &mockRescheduleRepo{appt: &models.Appointment{
		ID: "appt-1", BusinessID: "biz-1", DurationMinutes: 60,
		ScheduledAt: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
	}}
	conflicts := &stubConflicts{conflicts: []models.ConflictSummary{{AppointmentID: "other"}}}
	svc := newRescheduleService(repo, conflicts, &stubNotifier{})

	_, err := svc.Apply(context.Background(), "biz-1", "appt-1", ApplyRescheduleRequest{
		ScheduledAt:          time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC),
		ConflictAcknowledged: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "appt-1", repo.movedID)
}
