package schedule

import (
	"sort"
	"time"
)

const minutesPerDay = 24 * 60

// Range is a half-open [Start,End) window expressed in minutes since midnight.
type Range struct {
	Start int
	End   int
}

func (r Range) valid() bool {
	return r.Start >= 0 && r.End <= minutesPerDay && r.Start < r.End
}

// Interval is a half-open [Start,End) window anchored to concrete UTC instants.
type Interval struct {
	Start time.Time
	End   time.Time
}

// DayEntry is one weekday of a recurring weekly pattern.
type DayEntry struct {
	Working bool
	Windows []Range
}

// WeeklySchedule is a recurring weekly availability pattern. A weekday with no
// entry means "not working" for professionals. Services with no windows at all
// set Unrestricted instead: the sentinel keeps an intentionally 24/7 service
// distinguishable from a misconfigured empty one.
type WeeklySchedule struct {
	Unrestricted bool
	Days         map[time.Weekday]DayEntry
}

// WindowsFor returns the active windows for one weekday. Invalid windows
// (start >= end, out of day bounds) are dropped here so downstream slot
// generation never sees them.
func (s WeeklySchedule) WindowsFor(day time.Weekday) []Range {
	if s.Unrestricted {
		return []Range{{Start: 0, End: minutesPerDay}}
	}
	entry, ok := s.Days[day]
	if !ok || !entry.Working {
		return nil
	}
	var out []Range
	for _, w := range entry.Windows {
		if w.valid() {
			out = append(out, w)
		}
	}
	return out
}

// Intersect computes the pairwise intersection of two window sets:
// for every (a, b) pair, emit [max(starts), min(ends)) when non-empty.
// The effective bookable windows for a (service, professional) pair are the
// intersection of the service's windows with the professional's; either side
// empty makes the result empty.
func Intersect(a, b []Interval) []Interval {
	var out []Interval
	for _, x := range a {
		for _, y := range b {
			start := x.Start
			if y.Start.After(start) {
				start = y.Start
			}
			end := x.End
			if y.End.Before(end) {
				end = y.End
			}
			if start.Before(end) {
				out = append(out, Interval{Start: start, End: end})
			}
		}
	}
	return out
}

// Merge collapses overlapping and touching intervals into a minimal sorted
// set. Touching windows ([09:00,09:15) + [09:15,09:30)) describe continuous
// working time; a slot spanning the seam must count as covered.
func Merge(in []Interval) []Interval {
	if len(in) == 0 {
		return nil
	}
	sorted := append([]Interval(nil), in...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	out := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &out[len(out)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// Materialize anchors minute-of-day windows to a calendar date. The date's
// UTC year/month/day is used; the same UTC timestamp therefore drives both
// the weekday lookup and the resulting instants.
func Materialize(date time.Time, windows []Range) []Interval {
	date = date.UTC()
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]Interval, 0, len(windows))
	for _, w := range windows {
		if !w.valid() {
			continue
		}
		out = append(out, Interval{
			Start: midnight.Add(time.Duration(w.Start) * time.Minute),
			End:   midnight.Add(time.Duration(w.End) * time.Minute),
		})
	}
	return out
}
