package services

import (
	"time"
	"truck-presence-service/internal/domain"

	"github.com/teambition/rrule-go"
)

// OpenStatus is the result of evaluating a weekly schedule at an instant.
type OpenStatus struct {
	Open bool
}

// IsOpenNow evaluates the schedule at now, using now's location for the
// weekday and wall-clock time.
//
// Windows are half-open [open, close). A close time at or before the open
// time means the window runs past midnight; open == close is closed.
// Only the current weekday's entry is consulted, so an overnight entry
// also covers the early morning of its own day.
func IsOpenNow(s domain.WeeklySchedule, now time.Time) OpenStatus {
	hours, ok := s.Hours(domain.WeekdayKey(now.Weekday()))
	if !ok || hours.Closed {
		return OpenStatus{Open: false}
	}

	openMin := hours.Open.Minutes()
	closeMin := hours.Close.Minutes()
	if openMin == closeMin {
		return OpenStatus{Open: false}
	}

	current := now.Hour()*60 + now.Minute()

	if closeMin > openMin {
		return OpenStatus{Open: openMin <= current && current < closeMin}
	}
	return OpenStatus{Open: current >= openMin || current < closeMin}
}

var rruleWeekdays = map[string]rrule.Weekday{
	domain.Sunday:    rrule.SU,
	domain.Monday:    rrule.MO,
	domain.Tuesday:   rrule.TU,
	domain.Wednesday: rrule.WE,
	domain.Thursday:  rrule.TH,
	domain.Friday:    rrule.FR,
	domain.Saturday:  rrule.SA,
}

// NextOpening returns the next instant strictly after now at which one of
// the schedule's open days starts its window. ok is false when the schedule
// never opens.
func NextOpening(s domain.WeeklySchedule, now time.Time) (time.Time, bool) {
	var next time.Time
	for _, r := range openingRules(s, now) {
		t := r.After(now, false)
		if t.IsZero() {
			continue
		}
		if next.IsZero() || t.Before(next) {
			next = t
		}
	}
	return next, !next.IsZero()
}

// openingRules builds one weekly recurrence per open day, anchored at the
// start of the previous day in now's location. An rrule.Set holds a single
// RRULE, so the rules are kept separate.
func openingRules(s domain.WeeklySchedule, now time.Time) []*rrule.RRule {
	anchor := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -1)

	var rules []*rrule.RRule
	for _, day := range domain.Weekdays {
		h, ok := s.Hours(day)
		if !ok || h.Closed || h.Open == h.Close {
			continue
		}

		r, err := rrule.NewRRule(rrule.ROption{
			Freq:      rrule.WEEKLY,
			Dtstart:   anchor,
			Byweekday: []rrule.Weekday{rruleWeekdays[day]},
			Byhour:    []int{h.Open.Hour},
			Byminute:  []int{h.Open.Minute},
			Bysecond:  []int{0},
		})
		if err != nil {
			continue
		}
		rules = append(rules, r)
	}

	return rules
}
