package services

import (
	"testing"
	"time"
	"truck-presence-service/internal/domain"
)

func mustSchedule(t *testing.T, raw domain.RawWeeklySchedule) domain.WeeklySchedule {
	t.Helper()
	s, defaulted := domain.ParseWeeklySchedule(raw)
	if len(defaulted) != 0 {
		t.Fatalf("unexpected defaulted fields: %v", defaulted)
	}
	return s
}

// 2026-05-01 is a Friday.
func friday(hour, minute int) time.Time {
	return time.Date(2026, 5, 1, hour, minute, 0, 0, time.UTC)
}

func TestIsOpenNowSameDayWindow(t *testing.T) {
	s := mustSchedule(t, domain.RawWeeklySchedule{
		"friday": {Open: "09:00", Close: "17:00"},
	})

	cases := []struct {
		at   time.Time
		want bool
	}{
		{friday(8, 59), false},
		{friday(9, 0), true},
		{friday(12, 30), true},
		{friday(16, 59), true},
		{friday(17, 0), false},
	}
	for _, c := range cases {
		if got := IsOpenNow(s, c.at).Open; got != c.want {
			t.Fatalf("IsOpenNow at %s = %v, want %v", c.at.Format("15:04"), got, c.want)
		}
	}
}

func TestIsOpenNowOvernightWindow(t *testing.T) {
	s := mustSchedule(t, domain.RawWeeklySchedule{
		"friday": {Open: "10:00 PM", Close: "2:00 AM"},
	})

	if !IsOpenNow(s, friday(1, 0)).Open {
		t.Fatalf("expected open at 01:00")
	}
	if !IsOpenNow(s, friday(23, 0)).Open {
		t.Fatalf("expected open at 23:00")
	}
	if IsOpenNow(s, friday(3, 0)).Open {
		t.Fatalf("expected closed at 03:00")
	}
	if IsOpenNow(s, friday(2, 0)).Open {
		t.Fatalf("expected closed at 02:00")
	}
}

func TestIsOpenNowClosedCases(t *testing.T) {
	tests := []struct {
		name string
		raw  domain.RawWeeklySchedule
	}{
		{"missing day", domain.RawWeeklySchedule{"monday": {Open: "09:00", Close: "17:00"}}},
		{"closed flag", domain.RawWeeklySchedule{"friday": {Open: "09:00", Close: "17:00", Closed: true}}},
		{"zero-length window", domain.RawWeeklySchedule{"friday": {Open: "12:00", Close: "12:00"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := domain.ParseWeeklySchedule(tt.raw)
			if IsOpenNow(s, friday(12, 0)).Open {
				t.Fatalf("expected closed")
			}
		})
	}
}

func TestIsOpenNowMixedFormatsAgree(t *testing.T) {
	twelve := mustSchedule(t, domain.RawWeeklySchedule{"friday": {Open: "9:30 AM", Close: "5:15 PM"}})
	twentyFour := mustSchedule(t, domain.RawWeeklySchedule{"friday": {Open: "09:30", Close: "17:15"}})

	for h := 0; h < 24; h++ {
		for _, m := range []int{0, 15, 30, 45} {
			at := friday(h, m)
			if IsOpenNow(twelve, at) != IsOpenNow(twentyFour, at) {
				t.Fatalf("formats disagree at %s", at.Format("15:04"))
			}
		}
	}
}

func TestNextOpening(t *testing.T) {
	s := mustSchedule(t, domain.RawWeeklySchedule{
		"friday":   {Open: "09:00", Close: "17:00"},
		"saturday": {Open: "11:30", Close: "15:00"},
	})

	next, ok := NextOpening(s, friday(18, 0))
	if !ok {
		t.Fatalf("expected a next opening")
	}
	want := time.Date(2026, 5, 2, 11, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("next opening = %v, want %v", next, want)
	}

	next, ok = NextOpening(s, friday(7, 0))
	if !ok || !next.Equal(friday(9, 0)) {
		t.Fatalf("next opening = %v (ok=%v), want %v", next, ok, friday(9, 0))
	}

	// Sunday after the Saturday window wraps to the following Friday.
	sunday := time.Date(2026, 5, 3, 10, 0, 0, 0, time.UTC)
	next, ok = NextOpening(s, sunday)
	want = time.Date(2026, 5, 8, 9, 0, 0, 0, time.UTC)
	if !ok || !next.Equal(want) {
		t.Fatalf("next opening = %v (ok=%v), want %v", next, ok, want)
	}
}

func TestNextOpeningPicksEarliestDay(t *testing.T) {
	s := mustSchedule(t, domain.RawWeeklySchedule{
		"monday":    {Open: "08:00", Close: "12:00"},
		"wednesday": {Open: "7:15 AM", Close: "1:00 PM"},
		"friday":    {Open: "09:00", Close: "17:00"},
		"saturday":  {Open: "11:30", Close: "15:00"},
	})

	tests := []struct {
		name string
		at   time.Time
		want time.Time
	}{
		{"friday before open", friday(7, 0), friday(9, 0)},
		{"friday after close", friday(18, 0), time.Date(2026, 5, 2, 11, 30, 0, 0, time.UTC)},
		{"sunday", time.Date(2026, 5, 3, 10, 0, 0, 0, time.UTC), time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)},
		{"tuesday", time.Date(2026, 5, 5, 10, 0, 0, 0, time.UTC), time.Date(2026, 5, 6, 7, 15, 0, 0, time.UTC)},
		{"exactly at open", time.Date(2026, 5, 6, 7, 15, 0, 0, time.UTC), friday(9, 0).AddDate(0, 0, 7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := NextOpening(s, tt.at)
			if !ok || !next.Equal(tt.want) {
				t.Fatalf("next opening = %v (ok=%v), want %v", next, ok, tt.want)
			}
		})
	}
}

func TestNextOpeningNeverOpen(t *testing.T) {
	s, _ := domain.ParseWeeklySchedule(domain.RawWeeklySchedule{
		"friday": {Open: "09:00", Close: "17:00", Closed: true},
	})
	if _, ok := NextOpening(s, friday(12, 0)); ok {
		t.Fatalf("expected no opening for an always-closed schedule")
	}
}
