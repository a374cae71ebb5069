package schedule

import (
	"sort"
	"time"
)

// DefaultStep is the slot grid used when the tenant configures nothing. The
// grid is deliberately independent of the service duration: a 45-minute
// service still starts on the 30-minute grid. Simplicity over maximal
// packing density.
const DefaultStep = 30 * time.Minute

// CandidateStarts emits candidate slot start instants across the given
// windows: per window, one start every step while start+duration still fits
// inside the window. Results are ordered 00:00→23:59 and de-duplicated so
// overlapping windows do not produce the same start twice. Degenerate input
// (non-positive duration or step, empty or inverted windows) yields nothing.
func CandidateStarts(windows []Interval, duration, step time.Duration) []time.Time {
	if duration <= 0 || step <= 0 {
		return nil
	}

	var starts []time.Time
	seen := make(map[int64]struct{})
	for _, w := range windows {
		if !w.End.After(w.Start) {
			continue
		}
		for t := w.Start; !t.Add(duration).After(w.End); t = t.Add(step) {
			key := t.Unix()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			starts = append(starts, t)
		}
	}

	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	return starts
}
