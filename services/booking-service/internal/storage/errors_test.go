package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/d-okonkwo/slotly/services/booking-service/internal/model"
)

func TestIsConflict(t *testing.T) {
	exclusion := &pgconn.PgError{Code: "23P01", ConstraintName: "bookings_no_professional_overlap"}

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"exclusion violation", exclusion, true},
		{"wrapped exclusion violation", fmt.Errorf("insert booking: %w", exclusion), true},
		{"conflict sentinel", model.ErrScheduleConflict, true},
		{"wrapped sentinel", fmt.Errorf("overlapping booking: %w", model.ErrScheduleConflict), true},
		{"other pg error", &pgconn.PgError{Code: "23505"}, false},
		{"unrelated error", errors.New("connection reset"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsConflict(tc.err); got != tc.want {
				t.Fatalf("IsConflict(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"no rows", pgx.ErrNoRows, true},
		{"wrapped no rows", fmt.Errorf("get booking: %w", pgx.ErrNoRows), true},
		{"not found sentinel", model.ErrNotFound, true},
		{"conflict is not not-found", model.ErrScheduleConflict, false},
		{"unrelated error", errors.New("db down"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsNotFound(tc.err); got != tc.want {
				t.Fatalf("IsNotFound(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
