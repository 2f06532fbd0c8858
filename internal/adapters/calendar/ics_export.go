package calendar

import (
	"fmt"
	"time"
	"truck-presence-service/internal/domain"

	ical "github.com/arran4/golang-ical"
)

const productID = "-//truck-presence-service//vendor hours//EN"

// ExportSchedule renders a weekly schedule as an iCalendar feed with one
// weekly recurring event per open day. Recurrences are anchored in the week
// containing from, interpreted in from's location, and written in UTC.
func ExportSchedule(vendorID, vendorName string, s domain.WeeklySchedule, from time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	summary := vendorName
	if summary == "" {
		summary = vendorID
	}
	summary += " open"

	weekStart := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location()).
		AddDate(0, 0, -int(from.Weekday()))

	for i, day := range domain.Weekdays {
		h, ok := s.Hours(day)
		if !ok || h.Closed || h.Open == h.Close {
			continue
		}

		date := weekStart.AddDate(0, 0, i)
		start := at(date, h.Open)
		end := at(date, h.Close)
		if !end.After(start) {
			end = end.AddDate(0, 0, 1)
		}

		ev := cal.AddEvent(fmt.Sprintf("%s-%s@truck-presence-service", vendorID, day))
		ev.SetDtStampTime(from.UTC())
		ev.SetStartAt(start.UTC())
		ev.SetEndAt(end.UTC())
		ev.SetSummary(summary)
		ev.SetDescription(fmt.Sprintf("%s %s-%s", day, h.Open.Format12(), h.Close.Format12()))
		ev.AddProperty(ical.ComponentPropertyRrule, "FREQ=WEEKLY")
	}

	return cal.Serialize()
}

func at(date time.Time, t domain.TimeOfDay) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, date.Location())
}
