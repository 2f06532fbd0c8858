package ports

import (
	"context"
	"errors"
	"truck-presence-service/internal/domain"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyClaimed = errors.New("drop already claimed by user")
	ErrFullyClaimed   = errors.New("drop fully claimed")
)

// Port: read access to the shared drop records.
type DropSource interface {
	// Return the current drop record, or ErrNotFound.
	GetDrop(ctx context.Context, dropID string) (*domain.Drop, error)
}

// Port: atomic compare-and-increment on a drop's claimedBy list.
//
// Implementations must append userID only if the user is not already in
// claimedBy and the remaining quantity is positive, in a single atomic step.
// They return ErrNotFound, ErrAlreadyClaimed or ErrFullyClaimed otherwise.
type DropClaimer interface {
	ClaimUnit(ctx context.Context, dropID, userID string) (*domain.Drop, error)
}

// Port: upserts drop records received from the live data feed.
type DropWriter interface {
	PutDrop(ctx context.Context, d *domain.Drop) error
	DeleteDrop(ctx context.Context, dropID string) error
}

// DropStore is the full set of drop operations the claim ledger needs.
type DropStore interface {
	DropSource
	DropClaimer
}
