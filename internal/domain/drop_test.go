package domain

import (
	"testing"
	"time"
)

func TestDropRemaining(t *testing.T) {
	d := &Drop{Quantity: 2}
	if got := d.Remaining(); got != 2 {
		t.Fatalf("remaining = %d, want 2", got)
	}

	d.ClaimedBy = []string{"u1", "u2", "u3"}
	if got := d.Remaining(); got != 0 {
		t.Fatalf("over-claimed remaining = %d, want 0", got)
	}
	if !d.HasClaimed("u2") || d.HasClaimed("u9") {
		t.Fatalf("HasClaimed mismatch for %v", d.ClaimedBy)
	}
}

func TestDropIsExpired(t *testing.T) {
	exp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d := &Drop{ExpiresAt: exp}

	if d.IsExpired(exp.Add(-time.Second)) {
		t.Fatal("drop expired before ExpiresAt")
	}
	if !d.IsExpired(exp) {
		t.Fatal("drop not expired at ExpiresAt")
	}
}

func TestRedemptionCode(t *testing.T) {
	if got := RedemptionCode("user-abcd", "drop-42"); got != "ABCD42" {
		t.Fatalf("code = %q, want ABCD42", got)
	}
	if got := RedemptionCode("ab", "x"); got != "ABx" {
		t.Fatalf("short ids code = %q, want ABx", got)
	}
}

func TestLatestPerDrop(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	claims := []Claim{
		{ID: "1", DropID: "a", ClaimedAt: t0},
		{ID: "2", DropID: "b", ClaimedAt: t0.Add(time.Minute)},
		{ID: "3", DropID: "a", ClaimedAt: t0.Add(2 * time.Minute)},
	}

	got := LatestPerDrop(claims)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "3" || got[1].ID != "2" {
		t.Fatalf("got ids %s,%s; want 3,2", got[0].ID, got[1].ID)
	}
}
