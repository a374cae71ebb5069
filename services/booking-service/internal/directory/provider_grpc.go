//go:build protogen

package directory

import (
	"context"
	"time"

	"github.com/d-okonkwo/slotly/libs/grpcx"
	directoryv1 "github.com/d-okonkwo/slotly/protos/gen/directory/v1"
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

type grpcProvider struct {
	client directoryv1.DirectoryServiceClient
}

func NewProvider(addr string) (Provider, error) {
	if addr == "" {
		return nil, nil
	}
	conn, err := grpcx.Dial(context.Background(), addr, 3*time.Second)
	if err != nil {
		return nil, err
	}
	return &grpcProvider{client: directoryv1.NewDirectoryServiceClient(conn)}, nil
}

func (p *grpcProvider) GetBookingContext(ctx context.Context, tenantID, serviceID, date, professionalID string) (BookingContext, error) {
	resp, err := p.client.GetBookingContext(ctx, &directoryv1.BookingContextRequest{
		TenantId:       tenantID,
		ServiceId:      serviceID,
		Date:           date,
		ProfessionalId: professionalID,
	})
	if err != nil {
		return BookingContext{}, err
	}
	bc := BookingContext{
		ServiceActive:     resp.GetServiceActive(),
		DurationMinutes:   int(resp.GetDurationMinutes()),
		SlotStepMinutes:   int(resp.GetSlotStepMinutes()),
		Unrestricted:      resp.GetUnrestricted(),
		ServiceWindowsUTC: fromProtoWindows(resp.GetServiceWindowsUtc()),
	}
	for _, pro := range resp.GetProfessionals() {
		bc.Professionals = append(bc.Professionals, ProfessionalContext{
			ID:         pro.GetProfessionalId(),
			Name:       pro.GetName(),
			Available:  pro.GetAvailable(),
			Working:    pro.GetWorking(),
			WindowsUTC: fromProtoWindows(pro.GetWindowsUtc()),
		})
	}
	return bc, nil
}

func fromProtoWindows(in []*directoryv1.TimeWindow) []TimeWindow {
	var out []TimeWindow
	for _, w := range in {
		if w.GetStartUtc() == nil || w.GetEndUtc() == nil {
			continue
		}
		start := w.GetStartUtc().AsTime()
		end := w.GetEndUtc().AsTime()
		if end.After(start) {
			out = append(out, TimeWindow{StartUTC: start, EndUTC: end})
		}
	}
	return out
}
