package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
	"truck-presence-service/internal/domain"
	"truck-presence-service/internal/ports"

	"github.com/google/uuid"
)

const DefaultClaimCooldown = 60 * time.Minute

// ClaimLedger owns the claim lifecycle for users of this service: it checks
// the drop and the user's claim history, reserves a unit on the shared drop
// record and keeps the local history and expiry watchers current.
type ClaimLedger struct {
	Drops  ports.DropStore
	Claims ports.ClaimRepository
	Clock  ports.Clock
	// Cooldown blocks claims on a different vendor for this long after any
	// claim.
	Cooldown time.Duration
	// Watcher is optional; when set every successful claim (re)starts the
	// user's expiry watch.
	Watcher *ExpiryWatcher
	// OnClaim, if set, receives the drop record returned by a successful
	// claim.
	OnClaim func(domain.Drop)
}

func NewClaimLedger(drops ports.DropStore, history ports.ClaimRepository, clock ports.Clock) *ClaimLedger {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &ClaimLedger{
		Drops:    drops,
		Claims:   history,
		Clock:    clock,
		Cooldown: DefaultClaimCooldown,
	}
}

// AttemptClaim reserves one unit of dropID for userID.
//
// Rejections are returned as *ClaimError; any other error is an
// infrastructure failure from the drop store or claim repository.
func (l *ClaimLedger) AttemptClaim(ctx context.Context, userID, dropID string) (domain.Claim, error) {
	now := l.Clock.Now()

	drop, err := l.Drops.GetDrop(ctx, dropID)
	if errors.Is(err, ports.ErrNotFound) {
		return domain.Claim{}, &ClaimError{Kind: ClaimNotFound, DropID: dropID}
	}
	if err != nil {
		return domain.Claim{}, fmt.Errorf("attempt claim: get drop %q: %w", dropID, err)
	}
	if drop.IsExpired(now) {
		return domain.Claim{}, &ClaimError{Kind: ClaimNotFound, DropID: dropID}
	}

	if drop.HasClaimed(userID) {
		return domain.Claim{}, &ClaimError{Kind: ClaimAlreadyClaimed, DropID: dropID}
	}
	if drop.Remaining() <= 0 {
		return domain.Claim{}, &ClaimError{Kind: ClaimFullyClaimed, DropID: dropID}
	}

	history, err := l.currentHistory(ctx, userID, now)
	if err != nil {
		return domain.Claim{}, fmt.Errorf("attempt claim: %w", err)
	}

	for _, c := range history {
		if c.Status == domain.ClaimActive {
			return domain.Claim{}, &ClaimError{
				Kind:             ClaimOneActiveClaimOnly,
				DropID:           dropID,
				ConflictingTitle: c.DropTitle,
			}
		}
	}

	if wait := l.cooldownWait(history, drop.VendorID, now); wait > 0 {
		return domain.Claim{}, &ClaimError{Kind: ClaimCooldownActive, DropID: dropID, WaitMinutes: wait}
	}

	// The shared record re-checks uniqueness and quantity atomically, so a
	// concurrent claim that won the race surfaces here.
	claimed, err := l.Drops.ClaimUnit(ctx, dropID, userID)
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return domain.Claim{}, &ClaimError{Kind: ClaimNotFound, DropID: dropID}
	case errors.Is(err, ports.ErrAlreadyClaimed):
		return domain.Claim{}, &ClaimError{Kind: ClaimAlreadyClaimed, DropID: dropID}
	case errors.Is(err, ports.ErrFullyClaimed):
		return domain.Claim{}, &ClaimError{Kind: ClaimFullyClaimed, DropID: dropID}
	case err != nil:
		return domain.Claim{}, fmt.Errorf("attempt claim: claim unit of %q: %w", dropID, err)
	}

	claim := domain.Claim{
		ID:        uuid.NewString(),
		UserID:    userID,
		DropID:    claimed.ID,
		VendorID:  claimed.VendorID,
		DropTitle: claimed.Title,
		Code:      domain.RedemptionCode(userID, claimed.ID),
		ClaimedAt: now,
		ExpiresAt: claimed.ExpiresAt,
		Status:    domain.ClaimActive,
	}
	if err := l.Claims.Save(ctx, claim); err != nil {
		return domain.Claim{}, fmt.Errorf("attempt claim: save claim: %w", err)
	}

	log.Printf("claim accepted: user=%s drop=%s vendor=%s remaining=%d", userID, claim.DropID, claim.VendorID, claimed.Remaining())

	if l.Watcher != nil {
		l.Watcher.Watch(claim)
	}
	if l.OnClaim != nil {
		l.OnClaim(*claimed)
	}

	return claim, nil
}

// History returns the newest claim per drop for userID, with claims past
// their expiry marked expired.
func (l *ClaimLedger) History(ctx context.Context, userID string) ([]domain.Claim, error) {
	history, err := l.currentHistory(ctx, userID, l.Clock.Now())
	if err != nil {
		return nil, fmt.Errorf("claim history: %w", err)
	}
	return history, nil
}

// Resume restarts expiry watches for claims still active in durable storage,
// expiring the ones whose time has already passed.
func (l *ClaimLedger) Resume(ctx context.Context) (int, error) {
	active, err := l.Claims.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("resume claims: list active: %w", err)
	}

	// Newest-per-drop applies within one user's history, never across users.
	byUser := make(map[string][]domain.Claim)
	var users []string
	for _, c := range active {
		if _, ok := byUser[c.UserID]; !ok {
			users = append(users, c.UserID)
		}
		byUser[c.UserID] = append(byUser[c.UserID], c)
	}

	now := l.Clock.Now()
	resumed := 0
	for _, userID := range users {
		for _, c := range domain.LatestPerDrop(byUser[userID]) {
			if !c.IsActiveAt(now) {
				if err := l.Claims.MarkExpired(ctx, c.ID, now); err != nil {
					return resumed, fmt.Errorf("resume claims: expire %s: %w", c.ID, err)
				}
				continue
			}
			if l.Watcher != nil {
				l.Watcher.Watch(c)
			}
			resumed++
		}
	}

	return resumed, nil
}

// currentHistory loads the user's claims, keeps the newest per drop and
// lazily persists the expiry of claims whose time has passed.
func (l *ClaimLedger) currentHistory(ctx context.Context, userID string, now time.Time) ([]domain.Claim, error) {
	all, err := l.Claims.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list claims for %q: %w", userID, err)
	}

	history := domain.LatestPerDrop(all)
	for i := range history {
		c := &history[i]
		if c.Status != domain.ClaimActive || c.IsActiveAt(now) {
			continue
		}
		if err := l.Claims.MarkExpired(ctx, c.ID, now); err != nil {
			return nil, fmt.Errorf("expire claim %s: %w", c.ID, err)
		}
		c.Expire(now)
	}

	return history, nil
}

// cooldownWait returns the whole minutes left before vendorID may be claimed
// from, or 0 when no recent claim targets a different vendor.
// For a whole-minute cooldown this is cooldown minus the whole minutes
// elapsed since the claim.
func (l *ClaimLedger) cooldownWait(history []domain.Claim, vendorID string, now time.Time) int {
	wait := 0
	for _, c := range history {
		if c.VendorID == vendorID {
			continue
		}
		elapsed := max(now.Sub(c.ClaimedAt), 0)
		if elapsed >= l.Cooldown {
			continue
		}
		left := l.Cooldown - elapsed
		wait = max(wait, int((left+time.Minute-1)/time.Minute))
	}

	return wait
}
