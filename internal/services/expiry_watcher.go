package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
	"truck-presence-service/internal/domain"
	"truck-presence-service/internal/ports"
)

const DefaultExpiryPollInterval = 10 * time.Second

// ExpiryWatcher polls the source drop of each user's current claim and
// expires the claim locally once the drop has expired or disappeared.
// It never writes back to the shared drop record.
//
// Each user has at most one watch; watching a new claim replaces it.
type ExpiryWatcher struct {
	Drops    ports.DropSource
	History  ports.ClaimRepository
	Clock    ports.Clock
	Interval time.Duration
	// OnExpire, if set, is called after a claim has been expired.
	OnExpire func(domain.Claim)

	mu      sync.Mutex
	watches map[string]*watch
	current map[string]domain.Claim
	wg      sync.WaitGroup

	base   context.Context
	cancel context.CancelFunc
}

type watch struct {
	claimID string
	cancel  context.CancelFunc
}

func NewExpiryWatcher(drops ports.DropSource, history ports.ClaimRepository, clock ports.Clock) *ExpiryWatcher {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	base, cancel := context.WithCancel(context.Background())
	return &ExpiryWatcher{
		Drops:    drops,
		History:  history,
		Clock:    clock,
		Interval: DefaultExpiryPollInterval,
		watches:  make(map[string]*watch),
		current:  make(map[string]domain.Claim),
		base:     base,
		cancel:   cancel,
	}
}

// Watch records c as the user's current claim and (re)starts its poll loop.
func (w *ExpiryWatcher) Watch(c domain.Claim) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.base.Err() != nil {
		return
	}
	if prev, ok := w.watches[c.UserID]; ok {
		prev.cancel()
	}

	ctx, cancel := context.WithCancel(w.base)
	w.watches[c.UserID] = &watch{claimID: c.ID, cancel: cancel}
	w.current[c.UserID] = c

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx, c.UserID)
	}()
}

// Current returns the user's in-memory current claim projection.
func (w *ExpiryWatcher) Current(userID string) (domain.Claim, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.current[userID]
	return c, ok
}

// Stop cancels the user's watch and clears the projection without expiring
// the claim.
func (w *ExpiryWatcher) Stop(userID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if wt, ok := w.watches[userID]; ok {
		wt.cancel()
		delete(w.watches, userID)
	}
	delete(w.current, userID)
}

// Close tears down every watch and waits for the poll loops to exit.
func (w *ExpiryWatcher) Close() {
	w.mu.Lock()
	w.cancel()
	w.watches = make(map[string]*watch)
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *ExpiryWatcher) run(ctx context.Context, userID string) {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultExpiryPollInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			expired, err := w.Check(ctx, userID)
			if err != nil {
				log.Printf("expiry watcher: user=%s err=%v", userID, err)
				continue
			}
			if expired {
				return
			}
		}
	}
}

// Check performs one poll for the user's current claim. It reports whether
// the claim was expired by this call. A failed read of the drop leaves the
// claim untouched.
func (w *ExpiryWatcher) Check(ctx context.Context, userID string) (bool, error) {
	c, ok := w.Current(userID)
	if !ok {
		return false, nil
	}

	now := w.Clock.Now()
	drop, err := w.Drops.GetDrop(ctx, c.DropID)
	switch {
	case errors.Is(err, ports.ErrNotFound):
	case err != nil:
		return false, fmt.Errorf("check claim %s: get drop %q: %w", c.ID, c.DropID, err)
	case !drop.IsExpired(now):
		return false, nil
	}

	if err := w.History.MarkExpired(ctx, c.ID, now); err != nil {
		return false, fmt.Errorf("check claim %s: mark expired: %w", c.ID, err)
	}

	w.mu.Lock()
	if cur, ok := w.current[userID]; ok && cur.ID == c.ID {
		delete(w.current, userID)
		if wt, ok := w.watches[userID]; ok && wt.claimID == c.ID {
			wt.cancel()
			delete(w.watches, userID)
		}
	}
	w.mu.Unlock()

	c.Expire(now)
	log.Printf("claim expired: user=%s drop=%s claim=%s", userID, c.DropID, c.ID)
	if w.OnExpire != nil {
		w.OnExpire(c)
	}

	return true, nil
}
