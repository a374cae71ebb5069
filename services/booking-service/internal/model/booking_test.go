package model

import (
	"errors"
	"testing"
	"time"
)

func TestOccupying(t *testing.T) {
	occupying := []Status{StatusPending, StatusConfirmed}
	for _, s := range occupying {
		if !s.Occupying() {
			t.Fatalf("%s must occupy its interval", s)
		}
	}
	free := []Status{StatusCompleted, StatusCancelled, StatusNoShow}
	for _, s := range free {
		if s.Occupying() {
			t.Fatalf("%s must not occupy its interval", s)
		}
	}
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]Status{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusPending, StatusNoShow},
		{StatusConfirmed, StatusCompleted},
		{StatusConfirmed, StatusCancelled},
		{StatusConfirmed, StatusNoShow},
	}
	for _, pair := range allowed {
		if !CanTransition(pair[0], pair[1]) {
			t.Fatalf("%s -> %s must be allowed", pair[0], pair[1])
		}
	}

	denied := [][2]Status{
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusCancelled},
		{StatusCompleted, StatusConfirmed},
		{StatusNoShow, StatusConfirmed},
		{StatusPending, StatusCompleted}, // must confirm first
	}
	for _, pair := range denied {
		if CanTransition(pair[0], pair[1]) {
			t.Fatalf("%s -> %s must be denied", pair[0], pair[1])
		}
	}
}

func TestParseStatus(t *testing.T) {
	if _, ok := ParseStatus("confirmed"); !ok {
		t.Fatal("confirmed must parse")
	}
	if _, ok := ParseStatus("booked"); ok {
		t.Fatal("unknown status must not parse")
	}
}

func TestValidate(t *testing.T) {
	start := time.Date(2026, 4, 6, 9, 0, 0, 0, time.UTC)
	b := Booking{
		TenantID:   "t1",
		ServiceID:  "s1",
		ClientName: "Ada",
		StartTime:  start,
		EndTime:    start.Add(30 * time.Minute),
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("valid booking rejected: %v", err)
	}

	missing := b
	missing.ClientName = ""
	if err := missing.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing client name: got %v, want ErrValidation", err)
	}

	inverted := b
	inverted.EndTime = b.StartTime
	if err := inverted.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero-length interval: got %v, want ErrValidation", err)
	}
}
