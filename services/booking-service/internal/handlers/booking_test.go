package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/d-okonkwo/slotly/services/booking-service/internal/directory"
	"github.com/d-okonkwo/slotly/services/booking-service/internal/model"
)

type fakeDirectory struct {
	ctx directory.BookingContext
	err error
}

func (f *fakeDirectory) GetBookingContext(_ context.Context, _, _, _, _ string) (directory.BookingContext, error) {
	return f.ctx, f.err
}

func TestValidateWithinSchedule(t *testing.T) {
	day := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
	window := directory.TimeWindow{StartUTC: day.Add(9 * time.Hour), EndUTC: day.Add(17 * time.Hour)}

	booking := func(startHour, endHour int) *model.Booking {
		return &model.Booking{
			TenantID:  "t1",
			ServiceID: "s1",
			StartTime: day.Add(time.Duration(startHour) * time.Hour),
			EndTime:   day.Add(time.Duration(endHour) * time.Hour),
		}
	}

	cases := []struct {
		name    string
		ctx     directory.BookingContext
		b       *model.Booking
		want    bool
		wantErr bool
	}{
		{
			name: "inside window",
			ctx:  directory.BookingContext{ServiceActive: true, ServiceWindowsUTC: []directory.TimeWindow{window}},
			b:    booking(10, 11),
			want: true,
		},
		{
			name: "outside window",
			ctx:  directory.BookingContext{ServiceActive: true, ServiceWindowsUTC: []directory.TimeWindow{window}},
			b:    booking(18, 19),
			want: false,
		},
		{
			name: "spills past window end",
			ctx:  directory.BookingContext{ServiceActive: true, ServiceWindowsUTC: []directory.TimeWindow{window}},
			b:    booking(16, 18),
			want: false,
		},
		{
			name: "inactive service",
			ctx:  directory.BookingContext{ServiceActive: false, ServiceWindowsUTC: []directory.TimeWindow{window}},
			b:    booking(10, 11),
			want: false,
		},
		{
			name: "unrestricted service accepts any time",
			ctx:  directory.BookingContext{ServiceActive: true, Unrestricted: true},
			b:    booking(3, 4),
			want: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := &BookingHandler{directory: &fakeDirectory{ctx: tc.ctx}}
			got, err := h.validateWithinSchedule(context.Background(), tc.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestValidateWithinScheduleDirectoryDown(t *testing.T) {
	h := &BookingHandler{directory: &fakeDirectory{err: errors.New("dial failed")}}
	_, err := h.validateWithinSchedule(context.Background(), &model.Booking{
		StartTime: time.Now(),
		EndTime:   time.Now().Add(time.Hour),
	})
	if err == nil {
		t.Fatal("expected error when the directory is unreachable")
	}
}

func TestValidateWithinScheduleNoProvider(t *testing.T) {
	h := &BookingHandler{}
	ok, err := h.validateWithinSchedule(context.Background(), &model.Booking{})
	if err != nil || !ok {
		t.Fatalf("without a provider the db constraints are the guard; got ok=%v err=%v", ok, err)
	}
}

func TestToBookingResponse(t *testing.T) {
	cancelledAt := time.Date(2026, 4, 6, 12, 0, 0, 0, time.UTC)
	b := model.Booking{
		ID:          "b1",
		TenantID:    "t1",
		ServiceID:   "s1",
		StartTime:   time.Date(2026, 4, 6, 9, 0, 0, 0, time.UTC),
		EndTime:     time.Date(2026, 4, 6, 9, 30, 0, 0, time.UTC),
		Status:      model.StatusCancelled,
		CancelledAt: &cancelledAt,
	}
	resp := toBookingResponse(b)
	if resp.CancelledAt != "2026-04-06T12:00:00Z" {
		t.Fatalf("unexpected cancelled_at: %q", resp.CancelledAt)
	}
	if resp.ProfessionalID != "" {
		t.Fatalf("professional_id should be empty, got %q", resp.ProfessionalID)
	}
	if resp.StartTime != "2026-04-06T09:00:00Z" {
		t.Fatalf("unexpected start_time: %q", resp.StartTime)
	}
}

func TestStatusNoop(t *testing.T) {
	cases := []struct {
		name    string
		current model.Status
		target  model.Status
		want    bool
	}{
		{"cancel a cancelled booking", model.StatusCancelled, model.StatusCancelled, true},
		{"cancel a confirmed booking", model.StatusConfirmed, model.StatusCancelled, false},
		{"confirm a cancelled booking", model.StatusCancelled, model.StatusConfirmed, false},
		{"complete a completed booking", model.StatusCompleted, model.StatusCompleted, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := statusNoop(tc.current, tc.target); got != tc.want {
				t.Fatalf("statusNoop(%s, %s) = %v, want %v", tc.current, tc.target, got, tc.want)
			}
		})
	}

	// Everything statusNoop does not absorb must be refused by the
	// transition table, not silently repeated.
	if model.CanTransition(model.StatusCompleted, model.StatusCompleted) {
		t.Fatalf("completed to completed must not be a legal transition")
	}
}
