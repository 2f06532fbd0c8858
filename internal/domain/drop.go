package domain

import (
	"slices"
	"time"
)

// Represents a vendor-created, quantity-limited, time-boxed promotion.
// ClaimedBy is append-only and ordered by claim time.
type Drop struct {
	ID        string
	VendorID  string
	Title     string
	Quantity  int
	ClaimedBy []string
	ExpiresAt time.Time
}

// Remaining returns the number of unclaimed units, never negative.
func (d *Drop) Remaining() int {
	return max(d.Quantity-len(d.ClaimedBy), 0)
}

// HasClaimed reports whether userID already holds a unit of this drop.
func (d *Drop) HasClaimed(userID string) bool {
	return slices.Contains(d.ClaimedBy, userID)
}

// IsExpired reports whether the drop is logically dead at now.
func (d *Drop) IsExpired(now time.Time) bool {
	return !now.Before(d.ExpiresAt)
}
