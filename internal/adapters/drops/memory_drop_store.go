package drops

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"truck-presence-service/internal/domain"
	"truck-presence-service/internal/ports"
)

// MemoryDropStore keeps drop records in process. A single mutex makes
// ClaimUnit atomic, so it is a faithful stand-in for the shared stores in
// tests and single-instance deployments.
type MemoryDropStore struct {
	mu sync.Mutex
	m  map[string]domain.Drop
}

func NewMemoryDropStore(drops []domain.Drop) *MemoryDropStore {
	m := make(map[string]domain.Drop, len(drops))
	for _, d := range drops {
		d.ClaimedBy = slices.Clone(d.ClaimedBy)
		m[d.ID] = d
	}
	return &MemoryDropStore{m: m}
}

func (s *MemoryDropStore) GetDrop(ctx context.Context, dropID string) (*domain.Drop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.m[dropID]
	if !ok {
		return nil, fmt.Errorf("get drop %q: %w", dropID, ports.ErrNotFound)
	}
	d.ClaimedBy = slices.Clone(d.ClaimedBy)
	return &d, nil
}

func (s *MemoryDropStore) ClaimUnit(ctx context.Context, dropID, userID string) (*domain.Drop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.m[dropID]
	if !ok {
		return nil, fmt.Errorf("claim unit %q: %w", dropID, ports.ErrNotFound)
	}
	if d.HasClaimed(userID) {
		return nil, fmt.Errorf("claim unit %q: %w", dropID, ports.ErrAlreadyClaimed)
	}
	if d.Remaining() <= 0 {
		return nil, fmt.Errorf("claim unit %q: %w", dropID, ports.ErrFullyClaimed)
	}

	d.ClaimedBy = append(slices.Clone(d.ClaimedBy), userID)
	s.m[dropID] = d

	out := d
	out.ClaimedBy = slices.Clone(d.ClaimedBy)
	return &out, nil
}

func (s *MemoryDropStore) PutDrop(ctx context.Context, d *domain.Drop) error {
	if d == nil || strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("put drop: id must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *d
	cp.ClaimedBy = slices.Clone(d.ClaimedBy)
	s.m[cp.ID] = cp
	return nil
}

func (s *MemoryDropStore) DeleteDrop(ctx context.Context, dropID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, dropID)
	return nil
}
