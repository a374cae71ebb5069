package grpcserver

import (
	"time"

	"github.com/d-okonkwo/slotly/services/directory-service/internal/storage"
)

type interval struct {
	Start time.Time
	End   time.Time
}

// materialize anchors minute-of-day windows to a UTC calendar date.
func materialize(date time.Time, windows []storage.ScheduleWindow) []interval {
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	var out []interval
	for _, w := range windows {
		if w.EndMinute <= w.StartMinute {
			continue
		}
		out = append(out, interval{
			Start: midnight.Add(time.Duration(w.StartMinute) * time.Minute),
			End:   midnight.Add(time.Duration(w.EndMinute) * time.Minute),
		})
	}
	return out
}

// subtractBlocks removes time-off blocks from one working window, yielding
// 0..N remaining open spans.
func subtractBlocks(baseStart, baseEnd time.Time, blocks []storage.TimeOff) []interval {
	if !baseEnd.After(baseStart) {
		return nil
	}
	var b []interval
	for _, t := range blocks {
		// Clip to base interval.
		s := t.StartTime.UTC()
		e := t.EndTime.UTC()
		if e.Before(baseStart) || !s.Before(baseEnd) {
			continue
		}
		if s.Before(baseStart) {
			s = baseStart
		}
		if e.After(baseEnd) {
			e = baseEnd
		}
		if e.After(s) {
			b = append(b, interval{Start: s, End: e})
		}
	}
	if len(b) == 0 {
		return []interval{{Start: baseStart, End: baseEnd}}
	}

	sortIntervals(b)
	merged := make([]interval, 0, len(b))
	for _, cur := range b {
		if len(merged) == 0 {
			merged = append(merged, cur)
			continue
		}
		last := &merged[len(merged)-1]
		if cur.Start.After(last.End) {
			merged = append(merged, cur)
			continue
		}
		if cur.End.After(last.End) {
			last.End = cur.End
		}
	}

	var out []interval
	cursor := baseStart
	for _, m := range merged {
		if m.Start.After(cursor) {
			out = append(out, interval{Start: cursor, End: m.Start})
		}
		if m.End.After(cursor) {
			cursor = m.End
		}
	}
	if baseEnd.After(cursor) {
		out = append(out, interval{Start: cursor, End: baseEnd})
	}
	return out
}

// subtractAll applies the same time-off blocks to every working window.
func subtractAll(windows []interval, blocks []storage.TimeOff) []interval {
	var out []interval
	for _, w := range windows {
		out = append(out, subtractBlocks(w.Start, w.End, blocks)...)
	}
	return out
}

func sortIntervals(in []interval) {
	// Small n; simple insertion sort keeps deps minimal.
	for i := 1; i < len(in); i++ {
		j := i
		for j > 0 && (in[j].Start.Before(in[j-1].Start) || (in[j].Start.Equal(in[j-1].Start) && in[j].End.Before(in[j-1].End))) {
			in[j], in[j-1] = in[j-1], in[j]
			j--
		}
	}
}
