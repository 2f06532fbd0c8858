package api

import (
	"net/http"
	"truck-presence-service/internal/api/handlers"
	"truck-presence-service/internal/domain"
	"truck-presence-service/internal/ports"
	"truck-presence-service/internal/services"
)

// Deps are the services and ports the HTTP layer is wired against.
type Deps struct {
	Feed      *services.LiveFeed
	Drops     ports.DropSource
	DropSink  ports.DropWriter
	Ledger    *services.ClaimLedger
	Expiry    *services.ExpiryWatcher
	Schedules *services.ScheduleWatcher
	Clock     ports.Clock
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	// Claims change remaining counts; push the claimed record into the feed
	// so the drop list matches GET /drops/{id}.
	if d.Ledger != nil && d.Feed != nil && d.Ledger.OnClaim == nil {
		feed := d.Feed
		d.Ledger.OnClaim = func(drop domain.Drop) {
			feed.ApplyDrops([]services.DropChange{{Op: services.OpUpsert, Drop: drop}})
		}
	}

	feedHandler := &handlers.FeedHandler{Feed: d.Feed, Sink: d.DropSink}
	vendorHandler := &handlers.VendorHandler{Feed: d.Feed, Schedules: d.Schedules, Clock: d.Clock}
	dropHandler := &handlers.DropHandler{Feed: d.Feed, Drops: d.Drops, Ledger: d.Ledger, Clock: d.Clock}
	claimHandler := &handlers.ClaimHandler{Ledger: d.Ledger, Watcher: d.Expiry}
	eventHandler := &handlers.EventHandler{Feed: d.Feed}

	mux.HandleFunc("/health", handlers.Health)

	mux.HandleFunc("/feed/vendors", feedHandler.Vendors)
	mux.HandleFunc("/feed/drops", feedHandler.Drops)
	mux.HandleFunc("/feed/events", feedHandler.Events)

	mux.HandleFunc("/vendors/live", vendorHandler.Live)
	mux.HandleFunc("/vendors/{id}/schedule", vendorHandler.PutSchedule)
	mux.HandleFunc("/vendors/{id}/schedule.ics", vendorHandler.Calendar)
	mux.HandleFunc("/vendors/{id}/open", vendorHandler.Open)
	mux.HandleFunc("/schedule/evaluate", vendorHandler.Evaluate)

	mux.HandleFunc("/drops", dropHandler.List)
	mux.HandleFunc("/drops/{id}", dropHandler.Get)
	mux.HandleFunc("/drops/{id}/claims", dropHandler.Claim)

	mux.HandleFunc("/claims/current", claimHandler.Current)
	mux.HandleFunc("/claims/history", claimHandler.History)

	mux.HandleFunc("/events", eventHandler.List)

	return requestIDMiddleware(loggingMiddleware(mux))
}
