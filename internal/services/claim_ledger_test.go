package services

import (
	"context"
	"errors"
	"testing"
	"time"
	"truck-presence-service/internal/adapters/drops"
	"truck-presence-service/internal/domain"
)

var t0 = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestLedger(ds []domain.Drop) (*ClaimLedger, *memClaims, *fakeClock, *drops.MemoryDropStore) {
	store := drops.NewMemoryDropStore(ds)
	history := &memClaims{}
	clock := &fakeClock{now: t0}
	return NewClaimLedger(store, history, clock), history, clock, store
}

func claimKind(t *testing.T, err error) ClaimErrorKind {
	t.Helper()
	var ce *ClaimError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ClaimError, got %v", err)
	}
	return ce.Kind
}

func TestAttemptClaimSuccess(t *testing.T) {
	ctx := context.Background()
	ledger, history, _, store := newTestLedger([]domain.Drop{
		{ID: "drop-42", VendorID: "v1", Title: "Free taco", Quantity: 5, ExpiresAt: t0.Add(time.Hour)},
	})

	c, err := ledger.AttemptClaim(ctx, "user-abcd", "drop-42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Code != "ABCD42" {
		t.Fatalf("code = %q, want ABCD42", c.Code)
	}
	if c.Status != domain.ClaimActive || c.VendorID != "v1" || c.DropTitle != "Free taco" {
		t.Fatalf("unexpected claim: %+v", c)
	}
	if !c.ExpiresAt.Equal(t0.Add(time.Hour)) || !c.ClaimedAt.Equal(t0) {
		t.Fatalf("unexpected claim times: %+v", c)
	}

	d, _ := store.GetDrop(ctx, "drop-42")
	if d.Remaining() != 4 || !d.HasClaimed("user-abcd") {
		t.Fatalf("drop not updated: %+v", d)
	}
	if len(history.claims) != 1 {
		t.Fatalf("history length = %d, want 1", len(history.claims))
	}
}

func TestAttemptClaimNotifiesClaimedDrop(t *testing.T) {
	ctx := context.Background()
	ledger, _, _, _ := newTestLedger([]domain.Drop{
		{ID: "d1", VendorID: "v1", Quantity: 3, ExpiresAt: t0.Add(time.Hour)},
	})
	var got []domain.Drop
	ledger.OnClaim = func(d domain.Drop) { got = append(got, d) }

	if _, err := ledger.AttemptClaim(ctx, "u1", "d1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ledger.AttemptClaim(ctx, "u1", "d1"); err == nil {
		t.Fatalf("expected a rejection on the second claim")
	}
	if len(got) != 1 || got[0].ID != "d1" || got[0].Remaining() != 2 {
		t.Fatalf("OnClaim calls = %+v", got)
	}
}

func TestAttemptClaimFullyClaimed(t *testing.T) {
	ctx := context.Background()
	ledger, _, _, _ := newTestLedger([]domain.Drop{
		{ID: "d1", VendorID: "v1", Title: "Last one", Quantity: 1, ExpiresAt: t0.Add(time.Hour)},
	})

	if _, err := ledger.AttemptClaim(ctx, "u1", "d1"); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	_, err := ledger.AttemptClaim(ctx, "u2", "d1")
	if k := claimKind(t, err); k != ClaimFullyClaimed {
		t.Fatalf("kind = %s, want %s", k, ClaimFullyClaimed)
	}
}

func TestAttemptClaimAlreadyClaimed(t *testing.T) {
	ctx := context.Background()
	ledger, _, _, _ := newTestLedger([]domain.Drop{
		{ID: "d1", VendorID: "v1", Quantity: 5, ClaimedBy: []string{"u1"}, ExpiresAt: t0.Add(time.Hour)},
	})

	_, err := ledger.AttemptClaim(ctx, "u1", "d1")
	if k := claimKind(t, err); k != ClaimAlreadyClaimed {
		t.Fatalf("kind = %s, want %s", k, ClaimAlreadyClaimed)
	}
}

func TestAttemptClaimNotFound(t *testing.T) {
	ctx := context.Background()
	ledger, _, _, _ := newTestLedger([]domain.Drop{
		{ID: "old", VendorID: "v1", Quantity: 5, ExpiresAt: t0},
	})

	_, err := ledger.AttemptClaim(ctx, "u1", "missing")
	if k := claimKind(t, err); k != ClaimNotFound {
		t.Fatalf("kind = %s, want %s", k, ClaimNotFound)
	}

	_, err = ledger.AttemptClaim(ctx, "u1", "old")
	if k := claimKind(t, err); k != ClaimNotFound {
		t.Fatalf("expired drop: kind = %s, want %s", k, ClaimNotFound)
	}
}

func TestAttemptClaimOneActiveClaimOnly(t *testing.T) {
	ctx := context.Background()
	ledger, _, clock, _ := newTestLedger([]domain.Drop{
		{ID: "a", VendorID: "v1", Title: "Churro", Quantity: 5, ExpiresAt: t0.Add(time.Hour)},
		{ID: "b", VendorID: "v1", Title: "Horchata", Quantity: 5, ExpiresAt: t0.Add(time.Hour)},
	})

	if _, err := ledger.AttemptClaim(ctx, "u1", "a"); err != nil {
		t.Fatalf("first claim: %v", err)
	}

	clock.Set(t0.Add(5 * time.Minute))
	_, err := ledger.AttemptClaim(ctx, "u1", "b")
	var ce *ClaimError
	if !errors.As(err, &ce) || ce.Kind != ClaimOneActiveClaimOnly {
		t.Fatalf("expected one_active_claim_only, got %v", err)
	}
	if ce.ConflictingTitle != "Churro" {
		t.Fatalf("conflicting title = %q, want Churro", ce.ConflictingTitle)
	}
}

func TestAttemptClaimCooldownAcrossVendors(t *testing.T) {
	ctx := context.Background()
	ledger, history, clock, _ := newTestLedger([]domain.Drop{
		{ID: "a", VendorID: "vendor-a", Title: "Quick bite", Quantity: 5, ExpiresAt: t0.Add(10 * time.Minute)},
		{ID: "a2", VendorID: "vendor-a", Title: "Second bite", Quantity: 5, ExpiresAt: t0.Add(3 * time.Hour)},
		{ID: "b", VendorID: "vendor-b", Title: "Other truck", Quantity: 5, ExpiresAt: t0.Add(3 * time.Hour)},
	})

	first, err := ledger.AttemptClaim(ctx, "u1", "a")
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}

	clock.Set(t0.Add(20 * time.Minute))
	_, err = ledger.AttemptClaim(ctx, "u1", "b")
	var ce *ClaimError
	if !errors.As(err, &ce) || ce.Kind != ClaimCooldownActive {
		t.Fatalf("expected cooldown_active, got %v", err)
	}
	if ce.WaitMinutes != 40 {
		t.Fatalf("wait = %d, want 40", ce.WaitMinutes)
	}
	if ce.Error() != "You can claim a drop from another vendor in 40 minutes." {
		t.Fatalf("message = %q", ce.Error())
	}
	if got := history.status(first.ID); got != domain.ClaimExpired {
		t.Fatalf("first claim status = %s, want expired", got)
	}

	// Same vendor is exempt from the cooldown.
	if _, err := ledger.AttemptClaim(ctx, "u1", "a2"); err != nil {
		t.Fatalf("same-vendor claim during cooldown: %v", err)
	}
}

func TestAttemptClaimAfterCooldown(t *testing.T) {
	ctx := context.Background()
	ledger, _, clock, _ := newTestLedger([]domain.Drop{
		{ID: "a", VendorID: "vendor-a", Quantity: 5, ExpiresAt: t0.Add(10 * time.Minute)},
		{ID: "b", VendorID: "vendor-b", Quantity: 5, ExpiresAt: t0.Add(3 * time.Hour)},
	})

	if _, err := ledger.AttemptClaim(ctx, "u1", "a"); err != nil {
		t.Fatalf("first claim: %v", err)
	}

	clock.Set(t0.Add(61 * time.Minute))
	if _, err := ledger.AttemptClaim(ctx, "u1", "b"); err != nil {
		t.Fatalf("claim after cooldown: %v", err)
	}
}

func TestCooldownWaitRoundsUp(t *testing.T) {
	l := &ClaimLedger{Cooldown: time.Hour}
	history := []domain.Claim{{VendorID: "a", ClaimedAt: t0}}

	if got := l.cooldownWait(history, "b", t0.Add(59*time.Minute+30*time.Second)); got != 1 {
		t.Fatalf("wait = %d, want 1", got)
	}
	if got := l.cooldownWait(history, "b", t0.Add(time.Hour)); got != 0 {
		t.Fatalf("wait at cooldown end = %d, want 0", got)
	}
	if got := l.cooldownWait(history, "b", t0.Add(-time.Minute)); got != 60 {
		t.Fatalf("wait with clock skew = %d, want 60", got)
	}
}

func TestHistoryKeepsNewestPerDrop(t *testing.T) {
	ctx := context.Background()
	ledger, history, _, _ := newTestLedger(nil)

	history.claims = []domain.Claim{
		{ID: "c1", UserID: "u1", DropID: "d1", ClaimedAt: t0.Add(-3 * time.Hour), ExpiresAt: t0.Add(-2 * time.Hour), Status: domain.ClaimActive},
		{ID: "c2", UserID: "u1", DropID: "d1", ClaimedAt: t0.Add(-time.Hour), ExpiresAt: t0.Add(time.Hour), Status: domain.ClaimActive},
		{ID: "c3", UserID: "u2", DropID: "d1", ClaimedAt: t0, ExpiresAt: t0.Add(time.Hour), Status: domain.ClaimActive},
	}

	got, err := ledger.History(ctx, "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c2" {
		t.Fatalf("history = %+v, want only c2", got)
	}
}

func TestResumeWatchesActiveAndExpiresStale(t *testing.T) {
	ctx := context.Background()
	ledger, history, clock, store := newTestLedger([]domain.Drop{
		{ID: "live", VendorID: "v1", Quantity: 5, ExpiresAt: t0.Add(time.Hour)},
	})
	watcher := NewExpiryWatcher(store, history, clock)
	watcher.Interval = time.Hour
	defer watcher.Close()
	ledger.Watcher = watcher

	history.claims = []domain.Claim{
		{ID: "c1", UserID: "u1", DropID: "live", ExpiresAt: t0.Add(time.Hour), Status: domain.ClaimActive},
		{ID: "c2", UserID: "u2", DropID: "gone", ExpiresAt: t0.Add(-time.Minute), Status: domain.ClaimActive},
	}

	n, err := ledger.Resume(ctx)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if n != 1 {
		t.Fatalf("resumed = %d, want 1", n)
	}
	if _, ok := watcher.Current("u1"); !ok {
		t.Fatalf("expected u1 to be watched")
	}
	if got := history.status("c2"); got != domain.ClaimExpired {
		t.Fatalf("c2 status = %s, want expired", got)
	}
}

func TestResumeKeepsEveryUserOnSharedDrop(t *testing.T) {
	ctx := context.Background()
	ledger, history, clock, store := newTestLedger([]domain.Drop{
		{ID: "d1", VendorID: "v1", Quantity: 5, ClaimedBy: []string{"u1", "u2"}, ExpiresAt: t0.Add(time.Hour)},
	})
	watcher := NewExpiryWatcher(store, history, clock)
	watcher.Interval = time.Hour
	defer watcher.Close()
	ledger.Watcher = watcher

	history.claims = []domain.Claim{
		{ID: "c1", UserID: "u1", DropID: "d1", ClaimedAt: t0.Add(-10 * time.Minute), ExpiresAt: t0.Add(time.Hour), Status: domain.ClaimActive},
		{ID: "c2", UserID: "u2", DropID: "d1", ClaimedAt: t0.Add(-5 * time.Minute), ExpiresAt: t0.Add(time.Hour), Status: domain.ClaimActive},
	}

	n, err := ledger.Resume(ctx)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if n != 2 {
		t.Fatalf("resumed = %d, want 2", n)
	}
	for _, user := range []string{"u1", "u2"} {
		if _, ok := watcher.Current(user); !ok {
			t.Fatalf("expected %s to be watched", user)
		}
	}
}
