package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/receptia/scheduling-api/internal/models"
	appErrors "github.com/receptia/scheduling-api/pkg/errors"
)

type mockAppointmentRepo struct {
	created       []*models.Appointment
	seriesParent  *models.Appointment
	seriesKids    []models.Appointment
	updated       *models.Appointment
	deletedID     string
	findResult    *models.Appointment
	findErr       error
	createErr     error
	seriesErr     error
	listResult    []models.AppointmentDetail
	listTotal     int
	listFilter    models.AppointmentFilter
}

func (m *mockAppointmentRepo) List(ctx context.Context, filter models.AppointmentFilter) ([]models.AppointmentDetail, int, error) {
	m.listFilter = filter
	return m.listResult, m.listTotal, nil
}

func (m *mockAppointmentRepo) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	return m.findResult, m.findErr
}

func (m *mockAppointmentRepo) Create(ctx context.Context, appt *models.Appointment) error {
	if m.createErr != nil {
		return m.createErr
	}
	appt.ID = "generated-id"
	m.created = append(m.created, appt)
	return nil
}

func (m *mockAppointmentRepo) CreateSeries(ctx context.Context, parent *models.Appointment, children []models.Appointment) error {
	if m.seriesErr != nil {
		return m.seriesErr
	}
	parent.ID = "parent-id"
	m.seriesParent = parent
	m.seriesKids = children
	return nil
}

func (m *mockAppointmentRepo) Update(ctx context.Context, appt *models.Appointment) error {
	m.updated = appt
	return nil
}

func (m *mockAppointmentRepo) Delete(ctx context.Context, id string) error {
	m.deletedID = id
	return nil
}

type stubConflicts struct {
	conflicts []models.ConflictSummary
	lastStart time.Time
	lastExcl  string
}

func (s *stubConflicts) CheckConflicts(ctx context.Context, businessID string, start time.Time, durationMinutes int, excludeID string) []models.ConflictSummary {
	s.lastStart = start
	s.lastExcl = excludeID
	return s.conflicts
}

type stubNotifier struct {
	notified []string
}

func (s *stubNotifier) Notify(ctx context.Context, appointmentID string) {
	s.notified = append(s.notified, appointmentID)
}

func newAppointmentService(repo *mockAppointmentRepo, conflicts *stubConflicts, notifier *stubNotifier) *AppointmentService {
	return NewAppointmentService(repo, conflicts, notifier, nil, nil, 60, nil, nil)
}

func TestCreateAppointmentDefaults(t *testing.T) {
	repo := &mockAppointmentRepo{}
	conflicts := &stubConflicts{}
	notifier := &stubNotifier{}
	svc := newAppointmentService(repo, conflicts, notifier)

	result, err := svc.Create(context.Background(), "biz-1", CreateAppointmentRequest{
		ScheduledAt: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	appt := repo.created[0]
	assert.Equal(t, "biz-1", appt.BusinessID)
	assert.Equal(t, 60, appt.DurationMinutes)
	assert.Equal(t, models.StatusPending, appt.Status)
	assert.Equal(t, models.RecurrenceNone, appt.RecurrencePattern)
	assert.False(t, result.SeriesTruncated)
	assert.Equal(t, []string{"generated-id"}, notifier.notified)
}

func TestCreateAppointmentBlockedByConflict(t *testing.T) {
	repo := &mockAppointmentRepo{}
	conflicts := &stubConflicts{conflicts: []models.ConflictSummary{{AppointmentID: "other"}}}
	svc := newAppointmentService(repo, conflicts, &stubNotifier{})

	_, err := svc.Create(context.Background(), "biz-1", CreateAppointmentRequest{
		ScheduledAt: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
	})

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)

	var conflictErr *models.BookingConflictError
	require.True(t, errors.As(err, &conflictErr))
	assert.Equal(t, "other", conflictErr.Conflicts[0].AppointmentID)
	assert.Empty(t, repo.created)
}

func TestCreateAppointmentAcknowledgedConflictProceeds(t *testing.T) {
	repo := &mockAppointmentRepo{}
	conflicts := &stubConflicts{conflicts: []models.ConflictSummary{{AppointmentID: "other"}}}
	svc := newAppointmentService(repo, conflicts, &stubNotifier{})

	_, err := svc.Create(context.Background(), "biz-1", CreateAppointmentRequest{
		ScheduledAt:          time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		ConflictAcknowledged: true,
	})

	require.NoError(t, err)
	assert.Len(t, repo.created, 1)
}

func TestCreateRecurringRequiresEndDate(t *testing.T) {
	svc := newAppointmentService(&mockAppointmentRepo{}, &stubConflicts{}, &stubNotifier{})

	_, err := svc.Create(context.Background(), "biz-1", CreateAppointmentRequest{
		ScheduledAt:       time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		RecurrencePattern: "weekly",
	})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateMonthlySeries(t *testing.T) {
	repo := &mockAppointmentRepo{}
	svc := newAppointmentService(repo, &stubConflicts{}, &stubNotifier{})

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	result, err := svc.Create(context.Background(), "biz-1", CreateAppointmentRequest{
		ScheduledAt:       start,
		DurationMinutes:   45,
		RecurrencePattern: "monthly",
		RecurrenceEndDate: &end,
	})

	require.NoError(t, err)
	require.NotNil(t, repo.seriesParent)
	assert.Equal(t, models.RecurrenceMonthly, repo.seriesParent.RecurrencePattern)
	require.Len(t, repo.seriesKids, 2)
	assert.Equal(t, time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC), repo.seriesKids[0].ScheduledAt)
	assert.Equal(t, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC), repo.seriesKids[1].ScheduledAt)
	assert.Equal(t, models.RecurrenceNone, repo.seriesKids[0].RecurrencePattern)
	assert.False(t, result.SeriesTruncated)
}

func TestUpdateAppointmentExcludesSelfFromConflicts(t *testing.T) {
	repo := &mockAppointmentRepo{findResult: &models.Appointment{
		ID:              "appt-1",
		BusinessID:      "biz-1",
		ScheduledAt:     time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		Status:          models.StatusConfirmed,
	}}
	conflicts := &stubConflicts{}
	svc := newAppointmentService(repo, conflicts, &stubNotifier{})

	_, err := svc.Update(context.Background(), "biz-1", "appt-1", UpdateAppointmentRequest{
		ScheduledAt:     time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		Status:          "confirmed",
	})

	require.NoError(t, err)
	assert.Equal(t, "appt-1", conflicts.lastExcl)
	require.NotNil(t, repo.updated)
	assert.Equal(t, time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC), repo.updated.ScheduledAt)
}

func TestUpdateToCancelledSkipsConflictGate(t *testing.T) {
	repo := &mockAppointmentRepo{findResult: &models.Appointment{
		ID: "appt-1", BusinessID: "biz-1", DurationMinutes: 60, Status: models.StatusConfirmed,
		ScheduledAt: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
	}}
	conflicts := &stubConflicts{conflicts: []models.ConflictSummary{{AppointmentID: "other"}}}
	svc := newAppointmentService(repo, conflicts, &stubNotifier{})

	_, err := svc.Update(context.Background(), "biz-1", "appt-1", UpdateAppointmentRequest{
		ScheduledAt:     time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		Status:          "cancelled",
	})

	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, repo.updated.Status)
}

func TestGetRejectsForeignBusiness(t *testing.T) {
	repo := &mockAppointmentRepo{findResult: &models.Appointment{ID: "appt-1", BusinessID: "biz-2"}}
	svc := newAppointmentService(repo, &stubConflicts{}, &stubNotifier{})

	_, err := svc.Get(context.Background(), "biz-1", "appt-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestGetNotFound(t *testing.T) {
	repo := &mockAppointmentRepo{findErr: sql.ErrNoRows}
	svc := newAppointmentService(repo, &stubConflicts{}, &stubNotifier{})

	_, err := svc.Get(context.Background(), "biz-1", "missing")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDuplicateAppointment(t *testing.T) {
	notes := "bring paperwork"
	repo := &mockAppointmentRepo{findResult: &models.Appointment{
		ID:              "appt-1",
		BusinessID:      "biz-1",
		ScheduledAt:     time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 45,
		Status:          models.StatusCompleted,
		Notes:           &notes,
	}}
	conflicts := &stubConflicts{}
	svc := newAppointmentService(repo, conflicts, &stubNotifier{})

	newStart := time.Date(2026, 3, 17, 10, 0, 0, 0, time.UTC)
	copyAppt, err := svc.Duplicate(context.Background(), "biz-1", "appt-1", DuplicateAppointmentRequest{ScheduledAt: newStart})

	require.NoError(t, err)
	assert.Equal(t, newStart, copyAppt.ScheduledAt)
	assert.Equal(t, 45, copyAppt.DurationMinutes)
	assert.Equal(t, models.StatusPending, copyAppt.Status)
	assert.Equal(t, &notes, copyAppt.Notes)
	assert.Empty(t, conflicts.lastExcl)
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc := newAppointmentService(&mockAppointmentRepo{}, &stubConflicts{}, &stubNotifier{})

	_, _, err := svc.List(context.Background(), "biz-1", ListAppointmentsRequest{Status: []string{"archived"}})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestListAppliesPaginationDefaults(t *testing.T) {
	repo := &mockAppointmentRepo{listTotal: 3}
	svc := newAppointmentService(repo, &stubConflicts{}, &stubNotifier{})

	_, pagination, err := svc.List(context.Background(), "biz-1", ListAppointmentsRequest{})

	require.NoError(t, err)
	assert.Equal(t, 1, repo.listFilter.Page)
	assert.Equal(t, 50, repo.listFilter.PageSize)
	assert.Equal(t, 3, pagination.TotalCount)
}

func TestDeleteAppointment(t *testing.T) {
	repo := &mockAppointmentRepo{findResult: &models.Appointment{ID: "appt-1", BusinessID: "biz-1"}}
	svc := newAppointmentService(repo, &stubConflicts{}, &stubNotifier{})

	require.NoError(t, svc.Delete(context.Background(), "biz-1", "appt-1"))
	assert.Equal(t, "appt-1", repo.deletedID)
}
