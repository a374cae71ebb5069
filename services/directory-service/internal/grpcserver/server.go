//go:build protogen

package grpcserver

import (
	"context"
	"time"

	"github.com/d-okonkwo/slotly/libs/db"
	directoryv1 "github.com/d-okonkwo/slotly/protos/gen/directory/v1"
	"github.com/d-okonkwo/slotly/services/directory-service/internal/storage"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/timestamppb"
)

type server struct {
	directoryv1.UnimplementedDirectoryServiceServer
	pool *db.Pool
	repo *storage.Repository
}

func Register(grpcServer *grpc.Server, pool *db.Pool, repo *storage.Repository) {
	directoryv1.RegisterDirectoryServiceServer(grpcServer, &server{pool: pool, repo: repo})
}

// GetBookingContext assembles everything the booking engine needs for one
// (tenant, service, date): the service schedule and slot grid plus the
// qualified professionals with their day windows, time off already
// subtracted. Unknown or inactive services come back with service_active
// false rather than a gRPC error.
func (s *server) GetBookingContext(ctx context.Context, req *directoryv1.BookingContextRequest) (*directoryv1.BookingContextResponse, error) {
	resp := &directoryv1.BookingContextResponse{
		TenantId:  req.GetTenantId(),
		ServiceId: req.GetServiceId(),
	}
	if req.GetTenantId() == "" || req.GetServiceId() == "" || req.GetDate() == "" || s.repo == nil {
		return resp, nil
	}

	date, err := time.ParseInLocation("2006-01-02", req.GetDate(), time.UTC)
	if err != nil {
		return resp, nil
	}
	weekday := int(date.Weekday())

	svc, err := s.repo.GetService(ctx, req.GetTenantId(), req.GetServiceId())
	if err != nil || !svc.Active {
		return resp, nil
	}

	resp.ServiceActive = true
	resp.DurationMinutes = int32(svc.DurationMins)
	resp.SlotStepMinutes = int32(svc.StepMins)
	resp.Unrestricted = svc.Unrestricted

	if !svc.Unrestricted {
		hours, err := s.repo.ServiceHoursFor(ctx, svc.ID, weekday)
		if err != nil {
			return nil, err
		}
		for _, w := range materialize(date, hours) {
			resp.ServiceWindowsUtc = append(resp.ServiceWindowsUtc, toProtoWindow(w))
		}
	}

	pros, err := s.repo.ListQualified(ctx, req.GetTenantId(), req.GetServiceId())
	if err != nil {
		return nil, err
	}

	dayStart := date
	dayEnd := date.AddDate(0, 0, 1)
	for _, p := range pros {
		if req.GetProfessionalId() != "" && p.ID != req.GetProfessionalId() {
			continue
		}
		pc := &directoryv1.ProfessionalContext{
			ProfessionalId: p.ID,
			Name:           p.Name,
			Available:      p.Available,
		}

		hours, err := s.repo.ProfessionalHoursFor(ctx, p.ID, weekday)
		if err != nil {
			return nil, err
		}
		windows := materialize(date, hours)
		if len(windows) > 0 {
			blocks, err := s.repo.ListTimeOff(ctx, req.GetTenantId(), p.ID, dayStart, dayEnd, 500)
			if err != nil {
				return nil, err
			}
			windows = subtractAll(windows, blocks)
		}
		pc.Working = len(windows) > 0
		for _, w := range windows {
			pc.WindowsUtc = append(pc.WindowsUtc, toProtoWindow(w))
		}
		resp.Professionals = append(resp.Professionals, pc)
	}
	return resp, nil
}

func toProtoWindow(w interval) *directoryv1.TimeWindow {
	return &directoryv1.TimeWindow{
		StartUtc: timestamppb.New(w.Start),
		EndUtc:   timestamppb.New(w.End),
	}
}
