package domain

import (
	"strings"
	"time"
)

type ClaimStatus string

const (
	ClaimActive  ClaimStatus = "active"
	ClaimExpired ClaimStatus = "expired"
)

// Represents a user's reservation against one unit of a Drop.
// Claims are kept as history and never deleted; ACTIVE -> EXPIRED is the
// only transition.
type Claim struct {
	ID        string
	UserID    string
	DropID    string
	VendorID  string
	DropTitle string
	Code      string
	ClaimedAt time.Time
	ExpiresAt time.Time
	Status    ClaimStatus
	ExpiredAt *time.Time
}

// IsActiveAt reports whether the claim still counts as active at now.
func (c Claim) IsActiveAt(now time.Time) bool {
	return c.Status == ClaimActive && now.Before(c.ExpiresAt)
}

// Expire marks the claim expired at the given instant.
func (c *Claim) Expire(at time.Time) {
	c.Status = ClaimExpired
	c.ExpiredAt = &at
}

// RedemptionCode builds the short code shown at the truck window: the last
// four characters of the user id, upper-cased, followed by the last two
// characters of the drop id.
func RedemptionCode(userID, dropID string) string {
	return strings.ToUpper(lastN(userID, 4)) + lastN(dropID, 2)
}

func lastN(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return string(r)
	}
	return string(r[len(r)-n:])
}

// LatestPerDrop keeps only the newest claim for every drop id, preserving the
// order in which drops first appear.
func LatestPerDrop(claims []Claim) []Claim {
	idx := make(map[string]int, len(claims))
	out := make([]Claim, 0, len(claims))
	for _, c := range claims {
		i, ok := idx[c.DropID]
		if !ok {
			idx[c.DropID] = len(out)
			out = append(out, c)
			continue
		}
		if c.ClaimedAt.After(out[i].ClaimedAt) {
			out[i] = c
		}
	}
	return out
}
