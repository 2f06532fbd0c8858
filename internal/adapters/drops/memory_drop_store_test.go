package drops

import (
	"context"
	"errors"
	"testing"
	"time"
	"truck-presence-service/internal/domain"
	"truck-presence-service/internal/ports"
)

func TestMemoryDropStoreClaimUnit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDropStore([]domain.Drop{
		{ID: "d1", VendorID: "v1", Quantity: 2, ExpiresAt: time.Now().Add(time.Hour)},
	})

	if _, err := s.ClaimUnit(ctx, "d1", "u1"); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if _, err := s.ClaimUnit(ctx, "d1", "u1"); !errors.Is(err, ports.ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}
	d, err := s.ClaimUnit(ctx, "d1", "u2")
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if d.Remaining() != 0 {
		t.Fatalf("remaining = %d, want 0", d.Remaining())
	}
	if _, err := s.ClaimUnit(ctx, "d1", "u3"); !errors.Is(err, ports.ErrFullyClaimed) {
		t.Fatalf("expected ErrFullyClaimed, got %v", err)
	}
}

func TestMemoryDropStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDropStore([]domain.Drop{{ID: "d1", Quantity: 2, ClaimedBy: []string{"u1"}}})

	d, err := s.GetDrop(ctx, "d1")
	if err != nil {
		t.Fatalf("get drop: %v", err)
	}
	d.ClaimedBy[0] = "mutated"

	again, _ := s.GetDrop(ctx, "d1")
	if again.ClaimedBy[0] != "u1" {
		t.Fatalf("store was mutated through a returned drop: %v", again.ClaimedBy)
	}

	if err := s.DeleteDrop(ctx, "d1"); err != nil {
		t.Fatalf("delete drop: %v", err)
	}
	if _, err := s.GetDrop(ctx, "d1"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
