package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// TimeOfDay is an unambiguous wall-clock time (24-hour hour, minute).
// Values are only built through ParseTimeOfDay or NewTimeOfDay.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// DefaultOpenTime replaces any time-of-day string that cannot be parsed.
var DefaultOpenTime = TimeOfDay{Hour: 9, Minute: 0}

var (
	twelveHourRe     = regexp.MustCompile(`^(\d{1,2}):(\d{2}) ([AaPp][Mm])$`)
	twentyFourHourRe = regexp.MustCompile(`^(\d{2}):(\d{2})$`)
)

// NewTimeOfDay validates a 24-hour hour/minute pair.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("time of day: hour %d out of range 0-23", hour)
	}
	if minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("time of day: minute %d out of range 0-59", minute)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// ParseTimeOfDay accepts exactly two forms: "H:MM AM|PM" (hour 1-12, one
// space before the case-insensitive suffix) and "HH:MM" (hour 00-23).
// Surrounding whitespace is trimmed. Anything else, including out-of-range
// fields, yields DefaultOpenTime and ok=false.
func ParseTimeOfDay(s string) (TimeOfDay, bool) {
	s = strings.TrimSpace(s)

	if m := twelveHourRe.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour < 1 || hour > 12 || minute > 59 {
			return DefaultOpenTime, false
		}
		hour %= 12
		if strings.EqualFold(m[3], "PM") {
			hour += 12
		}
		return TimeOfDay{Hour: hour, Minute: minute}, true
	}

	if m := twentyFourHourRe.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		tod, err := NewTimeOfDay(hour, minute)
		if err != nil {
			return DefaultOpenTime, false
		}
		return tod, true
	}

	return DefaultOpenTime, false
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int { return t.Hour*60 + t.Minute }

// String renders the 24-hour form, e.g. "22:00".
func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

// Format12 renders the 12-hour form stored by vendor profiles, e.g. "10:00 PM".
func (t TimeOfDay) Format12() string {
	meridiem := "AM"
	if t.Hour >= 12 {
		meridiem = "PM"
	}
	h := t.Hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, t.Minute, meridiem)
}
