package model

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return Status(raw), true
	}
	return "", false
}

// Occupying reports whether a booking in this status holds its time interval.
// Cancelled, no-show, and completed bookings never block new bookings.
func (s Status) Occupying() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanTransition encodes the booking lifecycle:
// pending → confirmed | cancelled | no_show
// confirmed → completed | cancelled | no_show
// completed, cancelled, no_show are terminal.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled || to == StatusNoShow
	case StatusConfirmed:
		return to == StatusCompleted || to == StatusCancelled || to == StatusNoShow
	default:
		return false
	}
}

type Booking struct {
	ID             string
	TenantID       string
	ServiceID      string
	ProfessionalID string // empty when the client booked without choosing one
	ClientName     string
	ClientEmail    string
	ClientPhone    string
	StartTime      time.Time
	EndTime        time.Time
	Status         Status
	CancelledAt    *time.Time
	CancelReason   string
	CreatedAt      time.Time
}

// Validate checks the fields a booking must carry before it reaches storage.
func (b *Booking) Validate() error {
	if b.TenantID == "" || b.ServiceID == "" || b.ClientName == "" {
		return fmt.Errorf("%w: tenant_id, service_id and client.name are required", ErrValidation)
	}
	if !b.EndTime.After(b.StartTime) {
		return fmt.Errorf("%w: end_time must be after start_time", ErrValidation)
	}
	return nil
}
