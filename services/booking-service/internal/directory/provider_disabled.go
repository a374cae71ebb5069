//go:build !protogen

package directory

import (
	"context"
	"time"
)

// BookingContext carries everything the availability resolver and the commit
// guard need to know about a service on one date.
type BookingContext struct {
	ServiceActive     bool
	DurationMinutes   int
	SlotStepMinutes   int
	Unrestricted      bool
	ServiceWindowsUTC []TimeWindow
	Professionals     []ProfessionalContext
}

type TimeWindow struct {
	StartUTC time.Time
	EndUTC   time.Time
}

type ProfessionalContext struct {
	ID         string
	Name       string
	Available  bool
	Working    bool
	WindowsUTC []TimeWindow
}

type Provider interface {
	GetBookingContext(ctx context.Context, tenantID, serviceID, date, professionalID string) (BookingContext, error)
}

func NewProvider(_ string) (Provider, error) {
	return nil, nil
}
