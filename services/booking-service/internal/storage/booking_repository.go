package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/d-okonkwo/slotly/libs/db"
	"github.com/d-okonkwo/slotly/services/booking-service/internal/model"
)

type BookingRepository struct {
	pool *db.Pool
}

type IdempotencyRecord struct {
	TenantID        string
	IdempotencyKey  string
	BookingID       string
	StatusCode      int
	ResponsePayload []byte
}

func NewBookingRepository(pool *db.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// AcquireSlotLock serializes writers on one (tenant, service) pair for the
// rest of the transaction. Held across the overlap re-check and the insert so
// two concurrent requests for the same slot cannot both pass the check.
func (r *BookingRepository) AcquireSlotLock(ctx context.Context, tx pgx.Tx, tenantID, serviceID string) error {
	_, err := tx.Exec(ctx, `
		SELECT pg_advisory_xact_lock(hashtextextended($1, 0))
	`, tenantID+":"+serviceID)
	return err
}

func (r *BookingRepository) LockIdempotencyKey(ctx context.Context, tx pgx.Tx, tenantID, key string) (IdempotencyRecord, bool, error) {
	rec, err := r.selectIdempotencyForUpdate(ctx, tx, tenantID, key)
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return IdempotencyRecord{}, false, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO booking_idempotency_keys (tenant_id, idempotency_key)
		VALUES ($1, $2)
		ON CONFLICT (tenant_id, idempotency_key) DO NOTHING
	`, tenantID, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}

	rec, err = r.selectIdempotencyForUpdate(ctx, tx, tenantID, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}
	return rec, false, nil
}

func (r *BookingRepository) FinalizeIdempotency(ctx context.Context, tx pgx.Tx, tenantID, key, bookingID string, statusCode int, response []byte) error {
	_, err := tx.Exec(ctx, `
		UPDATE booking_idempotency_keys
		SET booking_id = NULLIF($3, '')::uuid,
			status_code = $4,
			response_payload = $5,
			updated_at = now()
		WHERE tenant_id = $1 AND idempotency_key = $2
	`, tenantID, key, bookingID, statusCode, response)
	return err
}

// CountOverlapping re-checks for occupying bookings that intersect
// [start, end) under the advisory lock, before inserting. When the booking
// names a professional the check spans every service that professional takes
// bookings for, plus unassigned bookings of the requested service. When it
// does not, the whole service is treated as the shared resource.
func (r *BookingRepository) CountOverlapping(ctx context.Context, tx pgx.Tx, tenantID, serviceID, professionalID string, start, end time.Time) (int, error) {
	var n int
	var err error
	if professionalID != "" {
		err = tx.QueryRow(ctx, `
			SELECT count(*)
			FROM bookings
			WHERE tenant_id = $1
				AND status IN ('pending', 'confirmed')
				AND start_time < $5
				AND end_time > $4
				AND (professional_id = $3
					OR (service_id = $2 AND professional_id IS NULL))
		`, tenantID, serviceID, professionalID, start, end).Scan(&n)
	} else {
		err = tx.QueryRow(ctx, `
			SELECT count(*)
			FROM bookings
			WHERE tenant_id = $1
				AND service_id = $2
				AND status IN ('pending', 'confirmed')
				AND start_time < $4
				AND end_time > $3
		`, tenantID, serviceID, start, end).Scan(&n)
	}
	return n, err
}

func (r *BookingRepository) Create(ctx context.Context, tx pgx.Tx, b *model.Booking) (string, error) {
	var professional *string
	if b.ProfessionalID != "" {
		professional = &b.ProfessionalID
	}
	var id string
	err := tx.QueryRow(ctx, `
		INSERT INTO bookings
			(tenant_id, service_id, professional_id, client_name, client_email, client_phone, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, b.TenantID, b.ServiceID, professional, b.ClientName, b.ClientEmail, b.ClientPhone,
		b.StartTime, b.EndTime, b.Status).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23P01" {
			return "", fmt.Errorf("overlapping booking: %w", model.ErrScheduleConflict)
		}
		return "", err
	}
	return id, nil
}

func (r *BookingRepository) GetBookingForUpdate(ctx context.Context, tx pgx.Tx, tenantID, bookingID string) (model.Booking, error) {
	row := tx.QueryRow(ctx, bookingSelect+`
		WHERE id = $1 AND tenant_id = $2
		FOR UPDATE
	`, bookingID, tenantID)
	return scanBooking(row)
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, tenantID, bookingID string, status model.Status) error {
	tag, err := tx.Exec(ctx, `
		UPDATE bookings
		SET status = $3
		WHERE id = $1 AND tenant_id = $2
	`, bookingID, tenantID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *BookingRepository) CancelBooking(ctx context.Context, tx pgx.Tx, tenantID, bookingID, reason string) (time.Time, error) {
	var cancelledAt time.Time
	err := tx.QueryRow(ctx, `
		UPDATE bookings
		SET status = 'cancelled',
			cancelled_at = now(),
			cancellation_reason = $3
		WHERE id = $1 AND tenant_id = $2
		RETURNING cancelled_at
	`, bookingID, tenantID, reason).Scan(&cancelledAt)
	return cancelledAt, err
}

func (r *BookingRepository) DeleteBooking(ctx context.Context, tenantID, bookingID string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM bookings
		WHERE id = $1 AND tenant_id = $2
	`, bookingID, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// ListOccupying returns occupying bookings intersecting [start, end) that the
// availability resolver must treat as busy: every booking of the service plus
// every booking held elsewhere by the listed professionals.
func (r *BookingRepository) ListOccupying(ctx context.Context, tenantID, serviceID string, professionalIDs []string, start, end time.Time) ([]model.Booking, error) {
	rows, err := r.pool.Query(ctx, bookingSelect+`
		WHERE tenant_id = $1
			AND status IN ('pending', 'confirmed')
			AND start_time < $5
			AND end_time > $4
			AND (service_id = $2 OR professional_id = ANY($3::uuid[]))
		ORDER BY start_time ASC
	`, tenantID, serviceID, professionalIDs, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

// ListFilter narrows a tenant listing. Zero values mean no filter.
type ListFilter struct {
	ServiceID      string
	ProfessionalID string
	From           time.Time
	To             time.Time
	Limit          int
}

func (r *BookingRepository) ListByTenant(ctx context.Context, tenantID string, f ListFilter) ([]model.Booking, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	var from, to *time.Time
	if !f.From.IsZero() {
		from = &f.From
	}
	if !f.To.IsZero() {
		to = &f.To
	}
	rows, err := r.pool.Query(ctx, bookingSelect+`
		WHERE tenant_id = $1
			AND ($2 = '' OR service_id::text = $2)
			AND ($3 = '' OR professional_id::text = $3)
			AND ($4::timestamptz IS NULL OR end_time > $4)
			AND ($5::timestamptz IS NULL OR start_time < $5)
		ORDER BY start_time DESC
		LIMIT $6
	`, tenantID, f.ServiceID, f.ProfessionalID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

// IsConflict recognizes the typed schedule conflict in both forms: the
// sentinel and an exclusion-constraint violation surfacing from Postgres.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.Is(err, model.ErrScheduleConflict) ||
		(errors.As(err, &pgErr) && pgErr.Code == "23P01")
}

func IsNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound) || errors.Is(err, pgx.ErrNoRows)
}

const bookingSelect = `
	SELECT id, tenant_id, service_id, COALESCE(professional_id::text, ''), client_name, client_email, client_phone,
		start_time, end_time, status, cancelled_at, COALESCE(cancellation_reason, ''), created_at
	FROM bookings`

func scanBooking(row pgx.Row) (model.Booking, error) {
	var b model.Booking
	var cancelledAt *time.Time
	err := row.Scan(
		&b.ID,
		&b.TenantID,
		&b.ServiceID,
		&b.ProfessionalID,
		&b.ClientName,
		&b.ClientEmail,
		&b.ClientPhone,
		&b.StartTime,
		&b.EndTime,
		&b.Status,
		&cancelledAt,
		&b.CancelReason,
		&b.CreatedAt,
	)
	if err != nil {
		return model.Booking{}, err
	}
	b.CancelledAt = cancelledAt
	return b, nil
}

func scanBookings(rows pgx.Rows) ([]model.Booking, error) {
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *BookingRepository) selectIdempotencyForUpdate(ctx context.Context, tx pgx.Tx, tenantID, key string) (IdempotencyRecord, error) {
	var rec IdempotencyRecord
	var responseText string
	err := tx.QueryRow(ctx, `
		SELECT tenant_id::text,
			idempotency_key,
			COALESCE(booking_id::text, ''),
			COALESCE(status_code, 0),
			COALESCE(response_payload::text, '')
		FROM booking_idempotency_keys
		WHERE tenant_id = $1 AND idempotency_key = $2
		FOR UPDATE
	`, tenantID, key).Scan(
		&rec.TenantID,
		&rec.IdempotencyKey,
		&rec.BookingID,
		&rec.StatusCode,
		&responseText,
	)
	if err != nil {
		return IdempotencyRecord{}, err
	}
	if responseText != "" {
		rec.ResponsePayload = []byte(responseText)
	}
	return rec, nil
}
