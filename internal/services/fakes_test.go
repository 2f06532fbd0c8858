package services

import (
	"context"
	"sync"
	"time"
	"truck-presence-service/internal/domain"
	"truck-presence-service/internal/ports"
)

type memClaims struct {
	mu     sync.Mutex
	claims []domain.Claim
}

func (m *memClaims) ListByUser(ctx context.Context, userID string) ([]domain.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Claim
	for _, c := range m.claims {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memClaims) ListActive(ctx context.Context) ([]domain.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Claim
	for _, c := range m.claims {
		if c.Status == domain.ClaimActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memClaims) Save(ctx context.Context, c domain.Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claims = append(m.claims, c)
	return nil
}

func (m *memClaims) MarkExpired(ctx context.Context, claimID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.claims {
		if m.claims[i].ID == claimID && m.claims[i].Status == domain.ClaimActive {
			m.claims[i].Expire(at)
		}
	}
	return nil
}

func (m *memClaims) status(claimID string) domain.ClaimStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.claims {
		if c.ID == claimID {
			return c.Status
		}
	}
	return ""
}

// fakeClock is a settable ports.Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

var _ ports.ClaimRepository = (*memClaims)(nil)
var _ ports.Clock = (*fakeClock)(nil)
