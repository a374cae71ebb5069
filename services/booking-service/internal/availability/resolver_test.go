package availability

import (
	"testing"
	"time"

	"github.com/d-okonkwo/slotly/services/booking-service/internal/schedule"
)

func monday(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
}

func at(d time.Time, h, m int) time.Time {
	return d.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

// The hand-verified aggregation scenario: service open [09:00,12:00),
// professional A works [09:00,10:30) with no bookings, professional B works
// [09:00,12:00) with a booking [09:30,10:00). 30-minute service on a
// 30-minute grid.
func TestResolveAggregation(t *testing.T) {
	d := monday(t)
	in := Input{
		ServiceWindows: []schedule.Interval{{Start: at(d, 9, 0), End: at(d, 12, 0)}},
		Duration:       30 * time.Minute,
		Step:           30 * time.Minute,
		Professionals: []Professional{
			{ID: "a", Name: "A", Available: true, Working: true,
				Windows: []schedule.Interval{{Start: at(d, 9, 0), End: at(d, 10, 30)}}},
			{ID: "b", Name: "B", Available: true, Working: true,
				Windows: []schedule.Interval{{Start: at(d, 9, 0), End: at(d, 12, 0)}}},
		},
		Busy: map[string][]schedule.Interval{
			"b": {{Start: at(d, 9, 30), End: at(d, 10, 0)}},
		},
	}

	slots := Resolve(in)
	if len(slots) != 6 {
		t.Fatalf("expected 6 slots 09:00..11:30, got %d", len(slots))
	}

	wantPros := map[int][]string{
		0: {"a", "b"}, // 09:00: both work and are free
		1: {"a"},      // 09:30: B booked
		2: {"a", "b"}, // 10:00: A's window [09:00,10:30) still fits a 30m slot; B free again
		3: {"b"},      // 10:30: A's window ends
		4: {"b"},
		5: {"b"},
	}
	for i, want := range wantPros {
		got := slots[i]
		if len(got.Professionals) != len(want) {
			t.Fatalf("slot %s: expected professionals %v, got %+v", got.Start.Format("15:04"), want, got.Professionals)
		}
		for j, id := range want {
			if got.Professionals[j].ID != id {
				t.Fatalf("slot %s: expected professionals %v, got %+v", got.Start.Format("15:04"), want, got.Professionals)
			}
		}
		if !got.Available {
			t.Fatalf("slot %s: expected available", got.Start.Format("15:04"))
		}
	}
}

func TestResolveNoQualifiedProfessionals(t *testing.T) {
	d := monday(t)
	in := Input{
		ServiceWindows: []schedule.Interval{{Start: at(d, 9, 0), End: at(d, 10, 0)}},
		Duration:       30 * time.Minute,
		Step:           30 * time.Minute,
	}

	slots := Resolve(in)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	for _, s := range slots {
		if s.Available {
			t.Fatalf("slot %s must be unavailable without professionals", s.Start.Format("15:04"))
		}
		if s.Reason != ReasonNoProfessional {
			t.Fatalf("expected reason %q, got %q", ReasonNoProfessional, s.Reason)
		}
	}
}

func TestResolveUnavailableProfessionalExcluded(t *testing.T) {
	d := monday(t)
	in := Input{
		ServiceWindows: []schedule.Interval{{Start: at(d, 9, 0), End: at(d, 10, 0)}},
		Duration:       30 * time.Minute,
		Step:           30 * time.Minute,
		Professionals: []Professional{
			{ID: "a", Name: "A", Available: false, Working: true,
				Windows: []schedule.Interval{{Start: at(d, 9, 0), End: at(d, 17, 0)}}},
		},
	}

	for _, s := range Resolve(in) {
		if s.Available {
			t.Fatalf("slot %s must be unavailable: only professional is flagged unavailable", s.Start.Format("15:04"))
		}
	}
}

func TestResolveServiceWideBookingBlocksEveryProfessional(t *testing.T) {
	d := monday(t)
	in := Input{
		ServiceWindows: []schedule.Interval{{Start: at(d, 9, 0), End: at(d, 10, 0)}},
		Duration:       30 * time.Minute,
		Step:           30 * time.Minute,
		Professionals: []Professional{
			{ID: "a", Name: "A", Available: true, Working: true,
				Windows: []schedule.Interval{{Start: at(d, 9, 0), End: at(d, 17, 0)}}},
		},
		Busy: map[string][]schedule.Interval{
			"": {{Start: at(d, 9, 0), End: at(d, 9, 30)}},
		},
	}

	slots := Resolve(in)
	if slots[0].Available {
		t.Fatal("09:00 must be blocked by the service-wide booking")
	}
	if !slots[1].Available {
		t.Fatal("09:30 must be free")
	}
}

func TestResolveForProfessionalEmptyDay(t *testing.T) {
	d := monday(t)
	in := Input{
		ServiceWindows: []schedule.Interval{{Start: at(d, 9, 0), End: at(d, 10, 0)}},
		Duration:       30 * time.Minute,
		Step:           30 * time.Minute,
		Professionals: []Professional{
			{ID: "a", Name: "A", Available: true, Working: false},
		},
	}

	slots := ResolveForProfessional(in, "a")
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	for _, s := range slots {
		if s.Available {
			t.Fatalf("slot %s must be unavailable on the professional's day off", s.Start.Format("15:04"))
		}
	}
}

func TestResolveForProfessionalBookedSlot(t *testing.T) {
	d := monday(t)
	in := Input{
		ServiceWindows: []schedule.Interval{{Start: at(d, 9, 0), End: at(d, 10, 0)}},
		Duration:       30 * time.Minute,
		Step:           30 * time.Minute,
		Professionals: []Professional{
			{ID: "a", Name: "A", Available: true, Working: true,
				Windows: []schedule.Interval{{Start: at(d, 9, 0), End: at(d, 17, 0)}}},
		},
		Busy: map[string][]schedule.Interval{
			"a": {{Start: at(d, 9, 0), End: at(d, 9, 30)}},
		},
	}

	slots := ResolveForProfessional(in, "a")
	if slots[0].Available {
		t.Fatal("09:00 must be unavailable")
	}
	if slots[0].Reason != "already booked" {
		t.Fatalf("expected reason %q, got %q", "already booked", slots[0].Reason)
	}
	if !slots[1].Available {
		t.Fatal("09:30 must be available: the booking ends exactly at 09:30")
	}
}

func TestResolveTouchingWindowsCoverContinuousSlot(t *testing.T) {
	d := monday(t)
	in := Input{
		ServiceWindows: []schedule.Interval{{Start: at(d, 9, 0), End: at(d, 9, 30)}},
		Duration:       30 * time.Minute,
		Step:           30 * time.Minute,
		Professionals: []Professional{
			// Entered as two touching windows; the professional works
			// 09:00-09:30 without a break.
			{ID: "a", Name: "A", Available: true, Working: true,
				Windows: []schedule.Interval{
					{Start: at(d, 9, 0), End: at(d, 9, 15)},
					{Start: at(d, 9, 15), End: at(d, 9, 30)},
				}},
		},
	}

	slots := Resolve(in)
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if !slots[0].Available {
		t.Fatalf("09:00 slot must be available across touching windows, got %+v", slots[0])
	}

	single := ResolveForProfessional(in, "a")
	if len(single) != 1 || !single[0].Available {
		t.Fatalf("09:00 slot must be available for the professional, got %+v", single)
	}
}

func TestResolveTouchingServiceWindowsGenerateSeamSlot(t *testing.T) {
	d := monday(t)
	in := Input{
		// The service day is stored as two touching windows; a 30-minute slot
		// starting at 09:00 spans the seam.
		ServiceWindows: []schedule.Interval{
			{Start: at(d, 9, 0), End: at(d, 9, 15)},
			{Start: at(d, 9, 15), End: at(d, 9, 30)},
		},
		Duration: 30 * time.Minute,
		Step:     30 * time.Minute,
		Professionals: []Professional{
			{ID: "a", Name: "A", Available: true, Working: true,
				Windows: []schedule.Interval{{Start: at(d, 9, 0), End: at(d, 17, 0)}}},
		},
	}

	slots := Resolve(in)
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if !slots[0].Start.Equal(at(d, 9, 0)) || !slots[0].Available {
		t.Fatalf("expected an available 09:00 slot, got %+v", slots[0])
	}
}
