package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/receptia/scheduling-api/internal/models"
)

type mockConflictRepo struct {
	appts []models.AppointmentDetail
	err   error
}

func (m *mockConflictRepo) ListDayDetails(ctx context.Context, businessID string, day time.Time) ([]models.AppointmentDetail, error) {
	return m.appts, m.err
}

func dayAppt(id string, start time.Time, duration int, status models.AppointmentStatus) models.AppointmentDetail {
	return models.AppointmentDetail{Appointment: models.Appointment{
		ID:              id,
		BusinessID:      "biz-1",
		ScheduledAt:     start,
		DurationMinutes: duration,
		Status:          status,
	}}
}

func TestCheckConflictsOverlap(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	repo := &mockConflictRepo{appts: []models.AppointmentDetail{
		dayAppt("a1", day.Add(10*time.Hour), 60, models.StatusConfirmed),
		dayAppt("a2", day.Add(14*time.Hour), 30, models.StatusPending),
	}}
	svc := NewConflictService(repo, nil, nil)

	conflicts := svc.CheckConflicts(context.Background(), "biz-1", day.Add(10*time.Hour+30*time.Minute), 30, "")

	require.Len(t, conflicts, 1)
	assert.Equal(t, "a1", conflicts[0].AppointmentID)
	assert.Equal(t, 60, conflicts[0].DurationMinutes)
}

func TestCheckConflictsBackToBackIsClean(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	repo := &mockConflictRepo{appts: []models.AppointmentDetail{
		dayAppt("a1", day.Add(10*time.Hour), 60, models.StatusConfirmed),
	}}
	svc := NewConflictService(repo, nil, nil)

	conflicts := svc.CheckConflicts(context.Background(), "biz-1", day.Add(11*time.Hour), 60, "")

	assert.Empty(t, conflicts)
}

func TestCheckConflictsSkipsCancelled(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	repo := &mockConflictRepo{appts: []models.AppointmentDetail{
		dayAppt("a1", day.Add(10*time.Hour), 60, models.StatusCancelled),
	}}
	svc := NewConflictService(repo, nil, nil)

	conflicts := svc.CheckConflicts(context.Background(), "biz-1", day.Add(10*time.Hour), 60, "")

	assert.Empty(t, conflicts)
}

func TestCheckConflictsExcludesSelf(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	repo := &mockConflictRepo{appts: []models.AppointmentDetail{
		dayAppt("a1", day.Add(10*time.Hour), 60, models.StatusConfirmed),
	}}
	svc := NewConflictService(repo, nil, nil)

	conflicts := svc.CheckConflicts(context.Background(), "biz-1", day.Add(10*time.Hour), 60, "a1")

	assert.Empty(t, conflicts)
}

func TestCheckConflictsFailsOpenOnReadError(t *testing.T) {
	repo := &mockConflictRepo{err: errors.New("db down")}
	svc := NewConflictService(repo, nil, nil)

	conflicts := svc.CheckConflicts(context.Background(), "biz-1", time.Now(), 60, "")

	assert.Empty(t, conflicts)
}

func TestCheckConflictsZeroDuration(t *testing.T) {
	repo := &mockConflictRepo{}
	svc := NewConflictService(repo, nil, nil)

	assert.Empty(t, svc.CheckConflicts(context.Background(), "biz-1", time.Now(), 0, ""))
}
