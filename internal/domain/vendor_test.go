package domain

import (
	"testing"
	"time"
)

func TestKitchenTypeMarker(t *testing.T) {
	cases := map[KitchenType]string{
		"food_truck": "truck",
		"Food Truck": "truck",
		"pop-up":     "tent",
		" CART ":     "cart",
		"trailer":    "trailer",
		"spaceship":  "truck",
		"":           "truck",
	}
	for in, want := range cases {
		if got := in.Marker().Icon; got != want {
			t.Fatalf("Marker(%q).Icon = %q, want %q", in, got, want)
		}
	}
}

func TestSessionStartFallsBackToLastActive(t *testing.T) {
	last := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	v := VendorPresence{LastActiveAt: &last}
	if got := v.SessionStart(); got == nil || !got.Equal(last) {
		t.Fatalf("SessionStart = %v, want %v", got, last)
	}

	start := last.Add(-time.Hour)
	v.SessionStartedAt = &start
	if got := v.SessionStart(); !got.Equal(start) {
		t.Fatalf("SessionStart = %v, want %v", got, start)
	}
}
