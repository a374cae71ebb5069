package availability

import (
	"time"

	"github.com/d-okonkwo/slotly/services/booking-service/internal/schedule"
)

// Overlaps is the half-open interval test the whole engine hangs on:
// [s1,e1) and [s2,e2) overlap iff s1 < e2 && s2 < e1. A booking ending at T
// and another starting at exactly T do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// IsFree reports whether [start,end) avoids every busy interval.
func IsFree(start, end time.Time, busy []schedule.Interval) bool {
	for _, b := range busy {
		if Overlaps(start, end, b.Start, b.End) {
			return false
		}
	}
	return true
}
