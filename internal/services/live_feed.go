package services

import (
	"slices"
	"strings"
	"sync"
	"time"
	"truck-presence-service/internal/domain"
)

// ChangeOp is the kind of change carried by a pushed record.
type ChangeOp string

const (
	OpUpsert ChangeOp = "upsert"
	OpRemove ChangeOp = "remove"
)

type VendorChange struct {
	Op     ChangeOp
	Vendor domain.VendorPresence
}

type DropChange struct {
	Op   ChangeOp
	Drop domain.Drop
}

type EventChange struct {
	Op    ChangeOp
	Event domain.Event
}

// VendorView is the per-vendor output consumed by map clients.
type VendorView struct {
	ID             string
	Position       domain.Coordinates
	Marker         domain.Marker
	ExplicitlyLive bool
}

// DropView carries the remaining count of a live drop.
type DropView struct {
	ID        string
	VendorID  string
	Title     string
	Remaining int
	ExpiresAt time.Time
}

// EventView carries an event's display category.
type EventView struct {
	ID          string
	OrganizerID string
	Position    domain.Coordinates
	Category    domain.EventCategory
}

// LiveFeed holds the latest pushed records from the live data collaborator.
// It stores raw records only; every view is recomputed on read so that no
// derived state can go stale.
type LiveFeed struct {
	Policy PresencePolicy

	mu      sync.RWMutex
	vendors map[string]domain.VendorPresence
	drops   map[string]domain.Drop
	events  map[string]domain.Event
}

func NewLiveFeed(policy PresencePolicy) *LiveFeed {
	return &LiveFeed{
		Policy:  policy,
		vendors: make(map[string]domain.VendorPresence),
		drops:   make(map[string]domain.Drop),
		events:  make(map[string]domain.Event),
	}
}

func (f *LiveFeed) ApplyVendors(changes []VendorChange) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range changes {
		if strings.TrimSpace(c.Vendor.ID) == "" {
			continue
		}
		if c.Op == OpRemove {
			delete(f.vendors, c.Vendor.ID)
			continue
		}
		f.vendors[c.Vendor.ID] = c.Vendor
	}
}

func (f *LiveFeed) ApplyDrops(changes []DropChange) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range changes {
		if strings.TrimSpace(c.Drop.ID) == "" {
			continue
		}
		if c.Op == OpRemove {
			delete(f.drops, c.Drop.ID)
			continue
		}
		f.drops[c.Drop.ID] = c.Drop
	}
}

func (f *LiveFeed) ApplyEvents(changes []EventChange) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range changes {
		if strings.TrimSpace(c.Event.ID) == "" {
			continue
		}
		if c.Op == OpRemove {
			delete(f.events, c.Event.ID)
			continue
		}
		f.events[c.Event.ID] = c.Event
	}
}

// VendorViews returns the vendors that render as live at now, ordered by id.
func (f *LiveFeed) VendorViews(now time.Time) []VendorView {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]VendorView, 0, len(f.vendors))
	for _, v := range f.vendors {
		if !IsLive(v, now, f.Policy) {
			continue
		}
		out = append(out, VendorView{
			ID:             v.ID,
			Position:       v.Position,
			Marker:         v.KitchenType.Marker(),
			ExplicitlyLive: v.ExplicitlyLive,
		})
	}
	slices.SortFunc(out, func(a, b VendorView) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// DropViews returns drops that have not expired at now, ordered by expiry.
func (f *LiveFeed) DropViews(now time.Time) []DropView {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]DropView, 0, len(f.drops))
	for _, d := range f.drops {
		if d.IsExpired(now) {
			continue
		}
		out = append(out, DropView{
			ID:        d.ID,
			VendorID:  d.VendorID,
			Title:     d.Title,
			Remaining: d.Remaining(),
			ExpiresAt: d.ExpiresAt,
		})
	}
	slices.SortFunc(out, func(a, b DropView) int {
		if c := a.ExpiresAt.Compare(b.ExpiresAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// EventViews returns every event with its display category, ordered by id.
func (f *LiveFeed) EventViews() []EventView {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]EventView, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, EventView{
			ID:          e.ID,
			OrganizerID: e.OrganizerID,
			Position:    e.Position,
			Category:    ClassifyEventStatus(e.Status),
		})
	}
	slices.SortFunc(out, func(a, b EventView) int { return strings.Compare(a.ID, b.ID) })
	return out
}
