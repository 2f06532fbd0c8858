package services

import (
	"fmt"
	"log"
	"sync"
	"time"
	"truck-presence-service/internal/domain"
	"truck-presence-service/internal/ports"

	"github.com/robfig/cron/v3"
)

const DefaultScheduleRecheck = "@every 60s"

// VendorOpenStatus is the cached schedule evaluation for one vendor.
type VendorOpenStatus struct {
	VendorID   string
	Open       bool
	NextOpenAt *time.Time
	CheckedAt  time.Time
}

// ScheduleWatcher keeps the open/closed status of tracked vendor schedules
// current by re-evaluating them on a cron spec, and reports flips through
// OnChange. Schedules are evaluated in Location.
type ScheduleWatcher struct {
	Clock    ports.Clock
	Location *time.Location
	OnChange func(VendorOpenStatus)

	mu        sync.RWMutex
	schedules map[string]domain.WeeklySchedule
	status    map[string]VendorOpenStatus

	cron *cron.Cron
}

func NewScheduleWatcher(clock ports.Clock, loc *time.Location) *ScheduleWatcher {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &ScheduleWatcher{
		Clock:     clock,
		Location:  loc,
		schedules: make(map[string]domain.WeeklySchedule),
		status:    make(map[string]VendorOpenStatus),
	}
}

// Track registers or replaces a vendor's schedule and evaluates it at once.
func (w *ScheduleWatcher) Track(vendorID string, s domain.WeeklySchedule) VendorOpenStatus {
	w.mu.Lock()
	w.schedules[vendorID] = s
	delete(w.status, vendorID)
	w.mu.Unlock()

	return w.evaluate(vendorID, s, w.Clock.Now())
}

// Untrack forgets a vendor.
func (w *ScheduleWatcher) Untrack(vendorID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.schedules, vendorID)
	delete(w.status, vendorID)
}

// Schedule returns the tracked schedule for a vendor.
func (w *ScheduleWatcher) Schedule(vendorID string) (domain.WeeklySchedule, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s, ok := w.schedules[vendorID]
	return s, ok
}

// Status returns the last evaluation for a vendor.
func (w *ScheduleWatcher) Status(vendorID string) (VendorOpenStatus, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	st, ok := w.status[vendorID]
	return st, ok
}

// Recheck evaluates every tracked schedule once.
func (w *ScheduleWatcher) Recheck() {
	now := w.Clock.Now()

	w.mu.RLock()
	snapshot := make(map[string]domain.WeeklySchedule, len(w.schedules))
	for id, s := range w.schedules {
		snapshot[id] = s
	}
	w.mu.RUnlock()

	for id, s := range snapshot {
		w.evaluate(id, s, now)
	}
}

func (w *ScheduleWatcher) evaluate(vendorID string, s domain.WeeklySchedule, now time.Time) VendorOpenStatus {
	local := now.In(w.Location)
	st := VendorOpenStatus{
		VendorID:  vendorID,
		Open:      IsOpenNow(s, local).Open,
		CheckedAt: now,
	}
	if !st.Open {
		if next, ok := NextOpening(s, local); ok {
			st.NextOpenAt = &next
		}
	}

	w.mu.Lock()
	prev, seen := w.status[vendorID]
	_, tracked := w.schedules[vendorID]
	if tracked {
		w.status[vendorID] = st
	}
	w.mu.Unlock()

	if tracked && seen && prev.Open != st.Open {
		log.Printf("schedule flip: vendor=%s open=%t", vendorID, st.Open)
		if w.OnChange != nil {
			w.OnChange(st)
		}
	}

	return st
}

// Start begins periodic re-checks on spec (robfig/cron syntax, e.g.
// "@every 60s").
func (w *ScheduleWatcher) Start(spec string) error {
	if spec == "" {
		spec = DefaultScheduleRecheck
	}

	c := cron.New(cron.WithLocation(w.Location))
	if _, err := c.AddFunc(spec, w.Recheck); err != nil {
		return fmt.Errorf("schedule watcher: parse recheck spec %q: %w", spec, err)
	}

	w.mu.Lock()
	if w.cron != nil {
		w.mu.Unlock()
		return fmt.Errorf("schedule watcher: already started")
	}
	w.cron = c
	w.mu.Unlock()

	c.Start()
	return nil
}

// Stop halts the cron and waits for a running re-check to finish.
func (w *ScheduleWatcher) Stop() {
	w.mu.Lock()
	c := w.cron
	w.cron = nil
	w.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}
