package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/d-okonkwo/slotly/libs/db"
)

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

type Tenant struct {
	ID         string
	Name       string
	APIKeyHash string
	CreatedAt  time.Time
}

func (r *Repository) CreateTenant(ctx context.Context, name, apiKeyHash string) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tenants (id, name, api_key_hash)
		VALUES ($1, $2, $3)
	`, id, name, apiKeyHash)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) GetTenant(ctx context.Context, tenantID string) (Tenant, error) {
	var t Tenant
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, name, api_key_hash, created_at
		FROM tenants
		WHERE id = $1
	`, tenantID).Scan(&t.ID, &t.Name, &t.APIKeyHash, &t.CreatedAt)
	return t, err
}

type Service struct {
	ID           string
	TenantID     string
	Name         string
	DurationMins int
	StepMins     int
	Price        string
	Description  string
	Active       bool
	Unrestricted bool
	CreatedAt    time.Time
}

func (r *Repository) CreateService(ctx context.Context, s Service) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO services (id, tenant_id, name, duration_minutes, slot_step_minutes, price, description, unrestricted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, id, s.TenantID, s.Name, s.DurationMins, s.StepMins, s.Price, s.Description, s.Unrestricted)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) GetService(ctx context.Context, tenantID, serviceID string) (Service, error) {
	var s Service
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, tenant_id::text, name, duration_minutes, slot_step_minutes, price::text, description, active, unrestricted, created_at
		FROM services
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, serviceID).Scan(&s.ID, &s.TenantID, &s.Name, &s.DurationMins, &s.StepMins, &s.Price, &s.Description, &s.Active, &s.Unrestricted, &s.CreatedAt)
	return s, err
}

func (r *Repository) ListServices(ctx context.Context, tenantID string, limit int) ([]Service, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, tenant_id::text, name, duration_minutes, slot_step_minutes, price::text, description, active, unrestricted, created_at
		FROM services
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.TenantID, &s.Name, &s.DurationMins, &s.StepMins, &s.Price, &s.Description, &s.Active, &s.Unrestricted, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// DeactivateService is the deletion rule: services with booking history are
// never removed, only hidden from new availability queries.
func (r *Repository) DeactivateService(ctx context.Context, tenantID, serviceID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE services
		SET active = false, updated_at = now()
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, serviceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ScheduleWindow is one windowed span of a weekly schedule, minutes from UTC
// midnight. Weekday 0 is Sunday, matching time.Weekday.
type ScheduleWindow struct {
	Weekday     int
	StartMinute int
	EndMinute   int
}

// ReplaceServiceHours swaps a service's whole weekly schedule in one
// transaction. An empty set plus the unrestricted flag means open around the
// clock; an empty set without it means no bookable time.
func (r *Repository) ReplaceServiceHours(ctx context.Context, tenantID, serviceID string, windows []ScheduleWindow) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM services WHERE id = $1 AND tenant_id = $2)
	`, serviceID, tenantID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return pgx.ErrNoRows
	}

	if _, err := tx.Exec(ctx, `DELETE FROM service_hours WHERE service_id = $1`, serviceID); err != nil {
		return err
	}
	for _, w := range windows {
		if _, err := tx.Exec(ctx, `
			INSERT INTO service_hours (service_id, weekday, start_minute, end_minute)
			VALUES ($1, $2, $3, $4)
		`, serviceID, w.Weekday, w.StartMinute, w.EndMinute); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *Repository) ServiceHoursFor(ctx context.Context, serviceID string, weekday int) ([]ScheduleWindow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT weekday, start_minute, end_minute
		FROM service_hours
		WHERE service_id = $1 AND weekday = $2
		ORDER BY start_minute ASC
	`, serviceID, weekday)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWindows(rows)
}

type Professional struct {
	ID        string
	TenantID  string
	Name      string
	Available bool
	CreatedAt time.Time
}

// CreateProfessional seeds a default Mon-Fri 09:00-17:00 UTC schedule so a
// fresh professional is bookable without extra setup.
func (r *Repository) CreateProfessional(ctx context.Context, tenantID, name string, available bool) (string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id string
	err = tx.QueryRow(ctx, `
		INSERT INTO professionals (tenant_id, name, available)
		VALUES ($1, $2, $3)
		RETURNING id::text
	`, tenantID, name, available).Scan(&id)
	if err != nil {
		return "", err
	}

	for wd := 1; wd <= 5; wd++ {
		if _, err := tx.Exec(ctx, `
			INSERT INTO professional_hours (professional_id, weekday, start_minute, end_minute)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT DO NOTHING
		`, id, wd, 540, 1020); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) ListProfessionals(ctx context.Context, tenantID string, limit int) ([]Professional, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, tenant_id::text, name, available, created_at
		FROM professionals
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Professional
	for rows.Next() {
		var p Professional
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Name, &p.Available, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) SetProfessionalAvailable(ctx context.Context, tenantID, professionalID string, available bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE professionals
		SET available = $3, updated_at = now()
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, professionalID, available)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ReplaceProfessionalHours swaps one professional's weekly schedule. A
// weekday with no rows is a day off.
func (r *Repository) ReplaceProfessionalHours(ctx context.Context, tenantID, professionalID string, windows []ScheduleWindow) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM professionals WHERE id = $1 AND tenant_id = $2)
	`, professionalID, tenantID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return pgx.ErrNoRows
	}

	if _, err := tx.Exec(ctx, `DELETE FROM professional_hours WHERE professional_id = $1`, professionalID); err != nil {
		return err
	}
	for _, w := range windows {
		if _, err := tx.Exec(ctx, `
			INSERT INTO professional_hours (professional_id, weekday, start_minute, end_minute)
			VALUES ($1, $2, $3, $4)
		`, professionalID, w.Weekday, w.StartMinute, w.EndMinute); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *Repository) ProfessionalHoursFor(ctx context.Context, professionalID string, weekday int) ([]ScheduleWindow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT weekday, start_minute, end_minute
		FROM professional_hours
		WHERE professional_id = $1 AND weekday = $2
		ORDER BY start_minute ASC
	`, professionalID, weekday)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWindows(rows)
}

func (r *Repository) Qualify(ctx context.Context, tenantID, serviceID, professionalID string) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO qualifications (service_id, professional_id)
		SELECT s.id, p.id
		FROM services s, professionals p
		WHERE s.id = $2 AND s.tenant_id = $1
			AND p.id = $3 AND p.tenant_id = $1
		ON CONFLICT DO NOTHING
	`, tenantID, serviceID, professionalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either already qualified or the pair does not belong to the tenant;
		// verify so unknown ids surface as not found.
		var exists bool
		if err := r.pool.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM qualifications q
				JOIN services s ON s.id = q.service_id
				WHERE q.service_id = $2 AND q.professional_id = $3 AND s.tenant_id = $1
			)
		`, tenantID, serviceID, professionalID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return pgx.ErrNoRows
		}
	}
	return nil
}

func (r *Repository) Unqualify(ctx context.Context, tenantID, serviceID, professionalID string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM qualifications q
		USING services s
		WHERE q.service_id = s.id
			AND s.tenant_id = $1
			AND q.service_id = $2
			AND q.professional_id = $3
	`, tenantID, serviceID, professionalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repository) ListQualified(ctx context.Context, tenantID, serviceID string) ([]Professional, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id::text, p.tenant_id::text, p.name, p.available, p.created_at
		FROM professionals p
		JOIN qualifications q ON q.professional_id = p.id
		JOIN services s ON s.id = q.service_id
		WHERE s.tenant_id = $1 AND q.service_id = $2
		ORDER BY p.created_at ASC
	`, tenantID, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Professional
	for rows.Next() {
		var p Professional
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Name, &p.Available, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

type TimeOff struct {
	ID             string
	ProfessionalID string
	StartTime      time.Time
	EndTime        time.Time
	Reason         string
	CreatedAt      time.Time
}

func (r *Repository) CreateTimeOff(ctx context.Context, tenantID, professionalID string, startTime, endTime time.Time, reason string) (string, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM professionals WHERE id = $1 AND tenant_id = $2)
	`, professionalID, tenantID).Scan(&exists); err != nil {
		return "", err
	}
	if !exists {
		return "", pgx.ErrNoRows
	}

	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO professional_time_off (id, professional_id, start_time, end_time, reason)
		VALUES ($1, $2, $3, $4, $5)
	`, id, professionalID, startTime, endTime, reason)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) ListTimeOff(ctx context.Context, tenantID, professionalID string, from, to time.Time, limit int) ([]TimeOff, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT t.id::text, t.professional_id::text, t.start_time, t.end_time, t.reason, t.created_at
		FROM professional_time_off t
		JOIN professionals p ON p.id = t.professional_id
		WHERE p.tenant_id = $1
			AND t.professional_id = $2
			AND t.end_time > $3
			AND t.start_time < $4
		ORDER BY t.start_time ASC
		LIMIT $5
	`, tenantID, professionalID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TimeOff
	for rows.Next() {
		var t TimeOff
		if err := rows.Scan(&t.ID, &t.ProfessionalID, &t.StartTime, &t.EndTime, &t.Reason, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) DeleteTimeOff(ctx context.Context, tenantID, timeOffID string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM professional_time_off t
		USING professionals p
		WHERE t.professional_id = p.id
		  AND p.tenant_id = $1
		  AND t.id = $2
	`, tenantID, timeOffID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanWindows(rows pgx.Rows) ([]ScheduleWindow, error) {
	var out []ScheduleWindow
	for rows.Next() {
		var w ScheduleWindow
		if err := rows.Scan(&w.Weekday, &w.StartMinute, &w.EndMinute); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
