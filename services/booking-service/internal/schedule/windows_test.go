package schedule

import (
	"testing"
	"time"
)

func TestWindowsForMissingDayMeansNotWorking(t *testing.T) {
	s := WeeklySchedule{
		Days: map[time.Weekday]DayEntry{
			time.Monday: {Working: true, Windows: []Range{{Start: 540, End: 1020}}},
		},
	}
	if got := s.WindowsFor(time.Tuesday); got != nil {
		t.Fatalf("expected no windows for Tuesday, got %v", got)
	}
	if got := s.WindowsFor(time.Monday); len(got) != 1 {
		t.Fatalf("expected 1 window for Monday, got %v", got)
	}
}

func TestWindowsForNotWorkingEntry(t *testing.T) {
	s := WeeklySchedule{
		Days: map[time.Weekday]DayEntry{
			time.Sunday: {Working: false, Windows: []Range{{Start: 540, End: 1020}}},
		},
	}
	if got := s.WindowsFor(time.Sunday); got != nil {
		t.Fatalf("non-working day must yield no windows, got %v", got)
	}
}

func TestWindowsForUnrestricted(t *testing.T) {
	s := WeeklySchedule{Unrestricted: true}
	for d := time.Sunday; d <= time.Saturday; d++ {
		got := s.WindowsFor(d)
		if len(got) != 1 || got[0].Start != 0 || got[0].End != 1440 {
			t.Fatalf("unrestricted schedule must be one full-day window on %s, got %v", d, got)
		}
	}
}

func TestWindowsForDropsInvalid(t *testing.T) {
	s := WeeklySchedule{
		Days: map[time.Weekday]DayEntry{
			time.Monday: {Working: true, Windows: []Range{
				{Start: 600, End: 600}, // empty
				{Start: 700, End: 660}, // inverted
				{Start: 540, End: 720},
			}},
		},
	}
	got := s.WindowsFor(time.Monday)
	if len(got) != 1 || got[0] != (Range{Start: 540, End: 720}) {
		t.Fatalf("expected only the valid window to survive, got %v", got)
	}
}

func TestIntersectPairwise(t *testing.T) {
	d := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return d.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	service := []Interval{
		{Start: at(9, 0), End: at(12, 0)},
		{Start: at(13, 0), End: at(17, 0)},
	}
	professional := []Interval{{Start: at(10, 0), End: at(14, 0)}}

	got := Intersect(service, professional)
	want := []Interval{
		{Start: at(10, 0), End: at(12, 0)},
		{Start: at(13, 0), End: at(14, 0)},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestIntersectTouchingIsEmpty(t *testing.T) {
	d := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
	a := []Interval{{Start: d.Add(9 * time.Hour), End: d.Add(10 * time.Hour)}}
	b := []Interval{{Start: d.Add(10 * time.Hour), End: d.Add(11 * time.Hour)}}
	if got := Intersect(a, b); got != nil {
		t.Fatalf("touching windows must not intersect, got %v", got)
	}
}

func TestIntersectWithEmptySet(t *testing.T) {
	d := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
	a := []Interval{{Start: d.Add(9 * time.Hour), End: d.Add(17 * time.Hour)}}
	if got := Intersect(a, nil); got != nil {
		t.Fatalf("intersection with empty set must be empty, got %v", got)
	}
}

func TestMergeCollapsesTouchingAndOverlapping(t *testing.T) {
	d := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return d.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	in := []Interval{
		{Start: at(13, 0), End: at(14, 0)},
		{Start: at(9, 0), End: at(9, 15)},
		{Start: at(9, 15), End: at(9, 30)}, // touches the previous one
		{Start: at(13, 30), End: at(15, 0)},
	}
	got := Merge(in)
	want := []Interval{
		{Start: at(9, 0), End: at(9, 30)},
		{Start: at(13, 0), End: at(15, 0)},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestMergeContainedInterval(t *testing.T) {
	d := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
	in := []Interval{
		{Start: d.Add(9 * time.Hour), End: d.Add(17 * time.Hour)},
		{Start: d.Add(10 * time.Hour), End: d.Add(11 * time.Hour)},
	}
	got := Merge(in)
	if len(got) != 1 || !got[0].Start.Equal(in[0].Start) || !got[0].End.Equal(in[0].End) {
		t.Fatalf("contained interval must disappear, got %v", got)
	}
	if got := Merge(nil); got != nil {
		t.Fatalf("merging nothing must yield nothing, got %v", got)
	}
}

func TestMaterializeUsesUTCDate(t *testing.T) {
	// 2026-03-02 22:30 in UTC-5 is already 2026-03-03 in UTC; the UTC date
	// must win so weekday lookup and instants agree.
	loc := time.FixedZone("UTC-5", -5*3600)
	date := time.Date(2026, 3, 2, 22, 30, 0, 0, loc)

	got := Materialize(date, []Range{{Start: 540, End: 600}})
	if len(got) != 1 {
		t.Fatalf("expected one interval, got %v", got)
	}
	want := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	if !got[0].Start.Equal(want) {
		t.Fatalf("expected start %s, got %s", want, got[0].Start)
	}
}
