package availability

import (
	"time"

	"github.com/d-okonkwo/slotly/services/booking-service/internal/schedule"
)

const ReasonNoProfessional = "no professional assigned"

// ProfessionalRef identifies a professional free at a given slot.
type ProfessionalRef struct {
	ID   string
	Name string
}

// Slot is a transient availability answer for one candidate start. Slots are
// computed fresh on every query and never cached: bookings change underneath
// concurrent requests and the commit guard re-validates anyway.
type Slot struct {
	Start         time.Time
	End           time.Time
	Available     bool
	Reason        string
	Professionals []ProfessionalRef
}

// Professional carries the directory's answer for one professional on the
// requested date: whether they are bookable at all, and their working windows
// (UTC, time off already subtracted).
type Professional struct {
	ID        string
	Name      string
	Available bool
	Working   bool
	Windows   []schedule.Interval
}

// Input is everything a slot computation needs. Busy maps professional id to
// that professional's occupying booking intervals; the empty key holds
// service-scoped bookings made without a professional.
type Input struct {
	ServiceWindows []schedule.Interval
	Duration       time.Duration
	Step           time.Duration
	Professionals  []Professional
	Busy           map[string][]schedule.Interval
}

// Resolve is the aggregation core: a pure function from the directory context
// and current bookings to an ordered, immutable slot list. Candidate starts
// come from the service-level windows; each qualified professional is then
// tested per slot for (a) working that window per the schedule intersection
// already applied by the directory and (b) being free of conflicting
// bookings.
func Resolve(in Input) []Slot {
	step := in.Step
	if step <= 0 {
		step = schedule.DefaultStep
	}

	// Merged first: touching windows describe continuous time, and both the
	// candidate grid and the coverage check reason about whole windows.
	serviceWindows := schedule.Merge(in.ServiceWindows)

	starts := schedule.CandidateStarts(serviceWindows, in.Duration, step)
	if len(starts) == 0 {
		return nil
	}

	serviceBusy := in.Busy[""]

	// Effective windows per professional: the service windows intersected
	// with the professional's working windows for the date.
	effective := make(map[string][]schedule.Interval, len(in.Professionals))
	for _, p := range in.Professionals {
		if p.Available && p.Working {
			effective[p.ID] = schedule.Merge(schedule.Intersect(serviceWindows, p.Windows))
		}
	}

	slots := make([]Slot, 0, len(starts))
	for _, start := range starts {
		end := start.Add(in.Duration)
		slot := Slot{Start: start, End: end}

		if len(in.Professionals) == 0 {
			slot.Reason = ReasonNoProfessional
			slots = append(slots, slot)
			continue
		}

		for _, p := range in.Professionals {
			if !p.Available || !p.Working {
				continue
			}
			if !coveredByWindows(start, end, effective[p.ID]) {
				continue
			}
			if !IsFree(start, end, in.Busy[p.ID]) {
				continue
			}
			// A service-wide booking without a professional occupies the
			// service itself; no professional can take an overlapping slot.
			if !IsFree(start, end, serviceBusy) {
				continue
			}
			slot.Professionals = append(slot.Professionals, ProfessionalRef{ID: p.ID, Name: p.Name})
		}

		slot.Available = len(slot.Professionals) > 0
		slots = append(slots, slot)
	}
	return slots
}

// ResolveForProfessional answers the single-professional query: the slot list
// for exactly one professional, with per-slot availability rather than a
// professional list.
func ResolveForProfessional(in Input, professionalID string) []Slot {
	var chosen *Professional
	for i := range in.Professionals {
		if in.Professionals[i].ID == professionalID {
			chosen = &in.Professionals[i]
			break
		}
	}

	step := in.Step
	if step <= 0 {
		step = schedule.DefaultStep
	}

	serviceWindows := schedule.Merge(in.ServiceWindows)

	starts := schedule.CandidateStarts(serviceWindows, in.Duration, step)
	if len(starts) == 0 {
		return nil
	}

	var effective []schedule.Interval
	if chosen != nil && chosen.Available && chosen.Working {
		effective = schedule.Merge(schedule.Intersect(serviceWindows, chosen.Windows))
	}

	slots := make([]Slot, 0, len(starts))
	for _, start := range starts {
		end := start.Add(in.Duration)
		slot := Slot{Start: start, End: end}

		switch {
		case chosen == nil || !chosen.Available:
			slot.Reason = ReasonNoProfessional
		case !chosen.Working || !coveredByWindows(start, end, effective):
			slot.Reason = "professional not scheduled"
		case !IsFree(start, end, in.Busy[chosen.ID]) || !IsFree(start, end, in.Busy[""]):
			slot.Reason = "already booked"
		default:
			slot.Available = true
			slot.Professionals = []ProfessionalRef{{ID: chosen.ID, Name: chosen.Name}}
		}
		slots = append(slots, slot)
	}
	return slots
}

func coveredByWindows(start, end time.Time, windows []schedule.Interval) bool {
	for _, w := range windows {
		if !start.Before(w.Start) && !end.After(w.End) {
			return true
		}
	}
	return false
}
