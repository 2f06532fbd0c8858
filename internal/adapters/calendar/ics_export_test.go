package calendar

import (
	"strings"
	"testing"
	"time"
	"truck-presence-service/internal/domain"

	ical "github.com/arran4/golang-ical"
)

func TestExportSchedule(t *testing.T) {
	s, _ := domain.ParseWeeklySchedule(domain.RawWeeklySchedule{
		"friday":   {Open: "10:00 PM", Close: "2:00 AM"},
		"saturday": {Open: "11:00", Close: "15:00"},
		"sunday":   {Open: "11:00", Close: "15:00", Closed: true},
	})

	// Wednesday.
	from := time.Date(2026, 4, 29, 12, 0, 0, 0, time.UTC)
	out := ExportSchedule("v1", "Taco Loco", s, from)

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("parse exported calendar: %v", err)
	}

	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}

	fri := events[0]
	if p := fri.GetProperty(ical.ComponentPropertySummary); p == nil || p.Value != "Taco Loco open" {
		t.Fatalf("summary = %+v", p)
	}
	if p := fri.GetProperty(ical.ComponentPropertyRrule); p == nil || p.Value != "FREQ=WEEKLY" {
		t.Fatalf("rrule = %+v", p)
	}

	start, err := fri.GetStartAt()
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	end, err := fri.GetEndAt()
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if !start.Equal(time.Date(2026, 5, 1, 22, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", start)
	}
	if !end.Equal(time.Date(2026, 5, 2, 2, 0, 0, 0, time.UTC)) {
		t.Fatalf("overnight end = %v", end)
	}
}
