package domain

import (
	"slices"
	"strings"
	"time"
)

// Weekday keys used by vendor profile documents.
const (
	Sunday    = "sunday"
	Monday    = "monday"
	Tuesday   = "tuesday"
	Wednesday = "wednesday"
	Thursday  = "thursday"
	Friday    = "friday"
	Saturday  = "saturday"
)

// Weekdays lists the seven keys in time.Weekday order.
var Weekdays = [7]string{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// WeekdayKey returns the schedule key for a time.Weekday.
func WeekdayKey(d time.Weekday) string { return Weekdays[d] }

// Opening hours for one weekday.
type DayHours struct {
	Open   TimeOfDay
	Close  TimeOfDay
	Closed bool
}

// WeeklySchedule maps weekday keys to opening hours. Days without an entry
// are closed.
type WeeklySchedule struct {
	Days map[string]DayHours
}

// Hours returns the entry for a weekday key.
func (s WeeklySchedule) Hours(day string) (DayHours, bool) {
	h, ok := s.Days[day]
	return h, ok
}

// RawDayHours is the boundary form of DayHours as stored in profile
// documents and config files: times are strings in either 12- or 24-hour form.
type RawDayHours struct {
	Open   string `json:"open" yaml:"open"`
	Close  string `json:"close" yaml:"close"`
	Closed bool   `json:"closed" yaml:"closed"`
}

// RawWeeklySchedule is the boundary form of WeeklySchedule.
type RawWeeklySchedule map[string]RawDayHours

// ParseWeeklySchedule converts the boundary form into a WeeklySchedule.
// Keys are matched case-insensitively; unknown keys are dropped. Malformed
// times are replaced by DefaultOpenTime and reported in the returned list
// of "day.field" names. When several keys name the same day, the exact
// lower-case key wins (otherwise the first in sorted order) and the day is
// reported as "day.duplicate".
func ParseWeeklySchedule(raw RawWeeklySchedule) (WeeklySchedule, []string) {
	s := WeeklySchedule{Days: make(map[string]DayHours, len(Weekdays))}
	var defaulted []string

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b string) int {
		// Canonical keys first, then byte order.
		ca, cb := isWeekdayKey(a), isWeekdayKey(b)
		if ca != cb {
			if ca {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	})

	seen := make(map[string]bool, len(Weekdays))
	for _, key := range keys {
		day := strings.ToLower(strings.TrimSpace(key))
		if !isWeekdayKey(day) {
			continue
		}
		if seen[day] {
			if !slices.Contains(defaulted, day+".duplicate") {
				defaulted = append(defaulted, day+".duplicate")
			}
			continue
		}
		seen[day] = true

		rh := raw[key]
		h := DayHours{Closed: rh.Closed}
		var ok bool
		if h.Open, ok = ParseTimeOfDay(rh.Open); !ok && !rh.Closed {
			defaulted = append(defaulted, day+".open")
		}
		if h.Close, ok = ParseTimeOfDay(rh.Close); !ok && !rh.Closed {
			defaulted = append(defaulted, day+".close")
		}
		s.Days[day] = h
	}

	slices.Sort(defaulted)
	return s, defaulted
}

// Raw renders the schedule back to its boundary form using 12-hour times.
func (s WeeklySchedule) Raw() RawWeeklySchedule {
	out := make(RawWeeklySchedule, len(s.Days))
	for day, h := range s.Days {
		out[day] = RawDayHours{
			Open:   h.Open.Format12(),
			Close:  h.Close.Format12(),
			Closed: h.Closed,
		}
	}
	return out
}

func isWeekdayKey(s string) bool {
	return slices.Contains(Weekdays[:], s)
}
