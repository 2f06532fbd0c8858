package ports

import (
	"context"
	"time"
	"truck-presence-service/internal/domain"
)

// Port: durable claim history on the claiming device.
type ClaimRepository interface {
	// Return every claim the user has made, oldest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Claim, error)
	// Return all claims still marked active, across users.
	ListActive(ctx context.Context) ([]domain.Claim, error)
	// Persist a new claim.
	Save(ctx context.Context, c domain.Claim) error
	// Transition a claim to expired. Expiring an expired claim is a no-op.
	MarkExpired(ctx context.Context, claimID string, at time.Time) error
}
