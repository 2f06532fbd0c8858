package services

import (
	"time"
	"truck-presence-service/internal/domain"
)

const (
	DefaultPresenceGrace      = 15 * time.Minute
	DefaultPresenceSessionTTL = 8 * time.Hour
)

// PresencePolicy bounds how long a vendor stays live without fresh broadcasts.
type PresencePolicy struct {
	// Grace keeps a vendor live after its last activity to absorb brief
	// connectivity gaps.
	Grace time.Duration
	// SessionTTL is the ceiling on how long a session may render as live
	// without a recent activity signal.
	SessionTTL time.Duration
}

func DefaultPresencePolicy() PresencePolicy {
	return PresencePolicy{Grace: DefaultPresenceGrace, SessionTTL: DefaultPresenceSessionTTL}
}

// IsLive decides whether a vendor's last broadcast should render as live.
//
// The explicit visibility flag is a hard override. Otherwise the vendor is
// live while it was active within the grace period or its session is younger
// than the session TTL. Missing timestamps count as never active.
func IsLive(rec domain.VendorPresence, now time.Time, policy PresencePolicy) bool {
	if !rec.ExplicitlyVisible {
		return false
	}

	recentlyActive := false
	if rec.LastActiveAt != nil {
		recentlyActive = now.Sub(*rec.LastActiveAt) <= policy.Grace
	}

	withinSession := false
	if start := rec.SessionStart(); start != nil {
		withinSession = now.Sub(*start) < policy.SessionTTL
	}

	return recentlyActive || withinSession
}
