package availability

import (
	"testing"
	"time"

	"github.com/d-okonkwo/slotly/services/booking-service/internal/schedule"
)

func TestOverlapsHalfOpen(t *testing.T) {
	d := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return d.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	cases := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"identical", at(9, 0), at(9, 30), at(9, 0), at(9, 30), true},
		{"partial", at(9, 0), at(9, 30), at(9, 15), at(9, 45), true},
		{"contained", at(9, 0), at(10, 0), at(9, 15), at(9, 30), true},
		{"touching end-to-start", at(9, 0), at(9, 30), at(9, 30), at(10, 0), false},
		{"touching start-to-end", at(9, 30), at(10, 0), at(9, 0), at(9, 30), false},
		{"disjoint", at(9, 0), at(9, 30), at(11, 0), at(11, 30), false},
	}
	for _, tc := range cases {
		if got := Overlaps(tc.s1, tc.e1, tc.s2, tc.e2); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestIsFreeAdjacentBookingsAllowed(t *testing.T) {
	d := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
	busy := []schedule.Interval{
		{Start: d.Add(9 * time.Hour), End: d.Add(9*time.Hour + 30*time.Minute)},
	}

	// A slot starting exactly where the booking ends is free.
	if !IsFree(d.Add(9*time.Hour+30*time.Minute), d.Add(10*time.Hour), busy) {
		t.Fatal("boundary-touching slot must be free")
	}
	// A slot ending exactly where the booking starts is free.
	if !IsFree(d.Add(8*time.Hour+30*time.Minute), d.Add(9*time.Hour), busy) {
		t.Fatal("boundary-touching slot must be free")
	}
	// Any real overlap blocks.
	if IsFree(d.Add(9*time.Hour+15*time.Minute), d.Add(9*time.Hour+45*time.Minute), busy) {
		t.Fatal("overlapping slot must not be free")
	}
}
