package schedule

import (
	"testing"
	"time"
)

func day(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC) // a Monday
}

func TestCandidateStartsGrid(t *testing.T) {
	d := day(t)
	windows := []Interval{{Start: d.Add(9 * time.Hour), End: d.Add(11 * time.Hour)}}

	got := CandidateStarts(windows, 30*time.Minute, 30*time.Minute)
	want := []time.Time{
		d.Add(9 * time.Hour),
		d.Add(9*time.Hour + 30*time.Minute),
		d.Add(10 * time.Hour),
		d.Add(10*time.Hour + 30*time.Minute),
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d starts, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("start %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestCandidateStartsDurationLongerThanStep(t *testing.T) {
	// A 45-minute service still starts on the 30-minute grid; the last start
	// that fits inside [09:00,10:30) with 45 minutes is 09:30.
	d := day(t)
	windows := []Interval{{Start: d.Add(9 * time.Hour), End: d.Add(10*time.Hour + 30*time.Minute)}}

	got := CandidateStarts(windows, 45*time.Minute, 30*time.Minute)
	if len(got) != 2 {
		t.Fatalf("expected starts 09:00 and 09:30, got %v", got)
	}
	if !got[1].Equal(d.Add(9*time.Hour + 30*time.Minute)) {
		t.Fatalf("expected last start 09:30, got %s", got[1])
	}
}

func TestCandidateStartsWindowShorterThanDuration(t *testing.T) {
	d := day(t)
	windows := []Interval{{Start: d.Add(9 * time.Hour), End: d.Add(9*time.Hour + 20*time.Minute)}}
	if got := CandidateStarts(windows, 30*time.Minute, 30*time.Minute); got != nil {
		t.Fatalf("window shorter than duration must yield no starts, got %v", got)
	}
}

func TestCandidateStartsEmptyWindowDoesNotLoop(t *testing.T) {
	d := day(t)
	windows := []Interval{{Start: d.Add(9 * time.Hour), End: d.Add(9 * time.Hour)}}
	if got := CandidateStarts(windows, 30*time.Minute, 30*time.Minute); got != nil {
		t.Fatalf("empty window must yield no starts, got %v", got)
	}
}

func TestCandidateStartsDedupeAndOrderAcrossWindows(t *testing.T) {
	d := day(t)
	windows := []Interval{
		{Start: d.Add(10 * time.Hour), End: d.Add(12 * time.Hour)},
		{Start: d.Add(9 * time.Hour), End: d.Add(11 * time.Hour)}, // overlaps the first
	}

	got := CandidateStarts(windows, 30*time.Minute, 30*time.Minute)
	if len(got) != 6 {
		t.Fatalf("expected 6 de-duplicated starts 09:00..11:30, got %v", got)
	}
	for i := 1; i < len(got); i++ {
		if !got[i].After(got[i-1]) {
			t.Fatalf("starts must be strictly increasing, got %v", got)
		}
	}
	if !got[0].Equal(d.Add(9 * time.Hour)) {
		t.Fatalf("expected first start 09:00, got %s", got[0])
	}
}

func TestCandidateStartsInvalidStep(t *testing.T) {
	d := day(t)
	windows := []Interval{{Start: d.Add(9 * time.Hour), End: d.Add(17 * time.Hour)}}
	if got := CandidateStarts(windows, 30*time.Minute, 0); got != nil {
		t.Fatalf("zero step must yield nothing, got %v", got)
	}
	if got := CandidateStarts(windows, 0, 30*time.Minute); got != nil {
		t.Fatalf("zero duration must yield nothing, got %v", got)
	}
}
