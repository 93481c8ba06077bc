package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/receptia/scheduling-api/internal/models"
)

const appointmentColumns = "id, business_id, contact_id, scheduled_at, duration_minutes, service_type, status, notes, recurrence_pattern, recurrence_end_date, recurrence_parent_id, created_at, updated_at"

// AppointmentRepository provides persistence for appointments.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository creates a new appointment repository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// ListDay returns a business's non-cancelled appointments whose start falls
// within the calendar day containing day. Appointments cannot span midnight,
// so the day window is a sufficient pre-filter for overlap checks.
func (r *AppointmentRepository) ListDay(ctx context.Context, businessID string, day time.Time) ([]models.Appointment, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return r.ListRange(ctx, businessID, start, start.AddDate(0, 0, 1))
}

// ListRange returns non-cancelled appointments with scheduled_at in [from, to).
func (r *AppointmentRepository) ListRange(ctx context.Context, businessID string, from, to time.Time) ([]models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE business_id = $1 AND scheduled_at >= $2 AND scheduled_at < $3 AND status <> $4 ORDER BY scheduled_at ASC", appointmentColumns)
	var appts []models.Appointment
	if err := r.db.SelectContext(ctx, &appts, query, businessID, from, to, models.StatusCancelled); err != nil {
		return nil, fmt.Errorf("list appointments in range: %w", err)
	}
	return appts, nil
}

// ListDayDetails returns the same day window as ListDay joined with contact
// display data, for rendering conflict warnings.
func (r *AppointmentRepository) ListDayDetails(ctx context.Context, businessID string, day time.Time) ([]models.AppointmentDetail, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	const query = `SELECT a.id, a.business_id, a.contact_id, a.scheduled_at, a.duration_minutes, a.service_type, a.status, a.notes, a.recurrence_pattern, a.recurrence_end_date, a.recurrence_parent_id, a.created_at, a.updated_at, c.name AS contact_name, c.phone AS contact_phone FROM appointments a LEFT JOIN contacts c ON c.id = a.contact_id WHERE a.business_id = $1 AND a.scheduled_at >= $2 AND a.scheduled_at < $3 AND a.status <> $4 ORDER BY a.scheduled_at ASC`
	var appts []models.AppointmentDetail
	if err := r.db.SelectContext(ctx, &appts, query, businessID, start, start.AddDate(0, 0, 1), models.StatusCancelled); err != nil {
		return nil, fmt.Errorf("list day appointment details: %w", err)
	}
	return appts, nil
}

// List returns appointments for a business with optional filtering and pagination.
func (r *AppointmentRepository) List(ctx context.Context, filter models.AppointmentFilter) ([]models.AppointmentDetail, int, error) {
	base := "FROM appointments a LEFT JOIN contacts c ON c.id = a.contact_id WHERE a.business_id = $1"
	args := []interface{}{filter.BusinessID}

	if filter.From != nil {
		args = append(args, *filter.From)
		base += fmt.Sprintf(" AND a.scheduled_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		base += fmt.Sprintf(" AND a.scheduled_at < $%d", len(args))
	}
	if len(filter.Status) > 0 {
		statuses := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		base += fmt.Sprintf(" AND a.status = ANY($%d)", len(args))
	}
	if filter.ContactID != "" {
		args = append(args, filter.ContactID)
		base += fmt.Sprintf(" AND a.contact_id = $%d", len(args))
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT a.id, a.business_id, a.contact_id, a.scheduled_at, a.duration_minutes, a.service_type, a.status, a.notes, a.recurrence_pattern, a.recurrence_end_date, a.recurrence_parent_id, a.created_at, a.updated_at, c.name AS contact_name, c.phone AS contact_phone %s ORDER BY a.scheduled_at %s LIMIT %d OFFSET %d", base, order, size, offset)
	var appts []models.AppointmentDetail
	if err := r.db.SelectContext(ctx, &appts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	return appts, total, nil
}

// FindByID loads an appointment by id.
func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE id = $1", appointmentColumns)
	var appt models.Appointment
	if err := r.db.GetContext(ctx, &appt, query, id); err != nil {
		return nil, err
	}
	return &appt, nil
}

const insertAppointmentQuery = `INSERT INTO appointments (id, business_id, contact_id, scheduled_at, duration_minutes, service_type, status, notes, recurrence_pattern, recurrence_end_date, recurrence_parent_id, created_at, updated_at) VALUES (:id, :business_id, :contact_id, :scheduled_at, :duration_minutes, :service_type, :status, :notes, :recurrence_pattern, :recurrence_end_date, :recurrence_parent_id, :created_at, :updated_at)`

// Create stores a new appointment record.
func (r *AppointmentRepository) Create(ctx context.Context, appt *models.Appointment) error {
	prepareForInsert(appt)
	if _, err := r.db.NamedExecContext(ctx, insertAppointmentQuery, appt); err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

// CreateSeries inserts a recurrence parent and its children in one
// transaction so a failed child insert never leaves a partial series behind.
func (r *AppointmentRepository) CreateSeries(ctx context.Context, parent *models.Appointment, children []models.Appointment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create series: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	prepareForInsert(parent)
	if _, err = sqlx.NamedExecContext(ctx, tx, insertAppointmentQuery, parent); err != nil {
		return fmt.Errorf("insert series parent: %w", err)
	}

	for i := range children {
		child := children[i]
		child.RecurrenceParentID = &parent.ID
		prepareForInsert(&child)
		if _, err = sqlx.NamedExecContext(ctx, tx, insertAppointmentQuery, &child); err != nil {
			return fmt.Errorf("insert series child %d of %d (parent %s): %w", i+1, len(children), parent.ID, err)
		}
		children[i] = child
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create series: %w", err)
	}
	return nil
}

// Update modifies the mutable fields of an appointment.
func (r *AppointmentRepository) Update(ctx context.Context, appt *models.Appointment) error {
	appt.UpdatedAt = time.Now().UTC()
	const query = `UPDATE appointments SET contact_id = :contact_id, scheduled_at = :scheduled_at, duration_minutes = :duration_minutes, service_type = :service_type, status = :status, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, appt); err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	return nil
}

// UpdateScheduledAt moves an appointment to a new start, leaving every other
// field untouched.
func (r *AppointmentRepository) UpdateScheduledAt(ctx context.Context, id string, scheduledAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE appointments SET scheduled_at = $1, updated_at = $2 WHERE id = $3`, scheduledAt, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update appointment start: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("appointment %s not found", id)
	}
	return nil
}

// UpdateStatusMany applies one status to every listed appointment of the
// business in a single statement and returns the affected-row count.
func (r *AppointmentRepository) UpdateStatusMany(ctx context.Context, businessID string, ids []string, status models.AppointmentStatus) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE appointments SET status = $1, updated_at = $2 WHERE business_id = $3 AND id = ANY($4)`, status, time.Now().UTC(), businessID, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("batch update appointment status: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("batch update affected rows: %w", err)
	}
	return count, nil
}

// DeleteMany removes every listed appointment of the business and returns the
// affected-row count.
func (r *AppointmentRepository) DeleteMany(ctx context.Context, businessID string, ids []string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE business_id = $1 AND id = ANY($2)`, businessID, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("batch delete appointments: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("batch delete affected rows: %w", err)
	}
	return count, nil
}

// Delete removes an appointment by id.
func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

func prepareForInsert(appt *models.Appointment) {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = now
	}
	appt.UpdatedAt = now
}
