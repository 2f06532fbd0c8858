package handlers

import (
	"log"
	"net/http"
	"strings"
	"truck-presence-service/internal/api/dto"
	"truck-presence-service/internal/domain"
	"truck-presence-service/internal/ports"
	"truck-presence-service/internal/services"
)

// FeedHandler accepts change sets pushed by the live data collaborator.
type FeedHandler struct {
	Feed *services.LiveFeed
	// Sink, if set, receives drop changes so the claim ledger sees them.
	Sink ports.DropWriter
}

func parseOp(raw string) (services.ChangeOp, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "upsert":
		return services.OpUpsert, true
	case "remove", "delete":
		return services.OpRemove, true
	default:
		return "", false
	}
}

func (h *FeedHandler) Vendors(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.FeedVendorsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	changes := make([]services.VendorChange, 0, len(req.Changes))
	skipped := 0
	for _, c := range req.Changes {
		op, ok := parseOp(c.Op)
		if !ok || strings.TrimSpace(c.ID) == "" {
			skipped++
			continue
		}
		changes = append(changes, services.VendorChange{
			Op: op,
			Vendor: domain.VendorPresence{
				ID:                c.ID,
				Position:          domain.Coordinates{Lat: c.Position.Lat, Lng: c.Position.Lng},
				KitchenType:       domain.KitchenType(c.KitchenType),
				LastActiveAt:      parseTimestamp(c.LastActiveAt),
				SessionStartedAt:  parseTimestamp(c.SessionStartedAt),
				ExplicitlyVisible: c.ExplicitlyVisible,
				ExplicitlyLive:    c.ExplicitlyLive,
			},
		})
	}

	h.Feed.ApplyVendors(changes)
	writeJSON(w, r, http.StatusOK, dto.FeedResponse{Applied: len(changes), Skipped: skipped})
}

func (h *FeedHandler) Drops(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.FeedDropsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	changes := make([]services.DropChange, 0, len(req.Changes))
	skipped := 0
	for _, c := range req.Changes {
		op, ok := parseOp(c.Op)
		if !ok || strings.TrimSpace(c.ID) == "" {
			skipped++
			continue
		}

		d := domain.Drop{
			ID:        c.ID,
			VendorID:  c.VendorID,
			Title:     c.Title,
			Quantity:  max(c.Quantity, 0),
			ClaimedBy: c.ClaimedBy,
		}
		if op == services.OpUpsert {
			// A drop without a valid expiry cannot be claimed safely.
			exp := parseTimestamp(c.ExpiresAt)
			if exp == nil {
				skipped++
				continue
			}
			d.ExpiresAt = *exp
		}

		if h.Sink != nil {
			var err error
			if op == services.OpRemove {
				err = h.Sink.DeleteDrop(r.Context(), d.ID)
			} else {
				err = h.Sink.PutDrop(r.Context(), &d)
			}
			if err != nil {
				log.Printf("feed drops: store drop=%s failed: %v", d.ID, err)
				writeError(w, r, http.StatusInternalServerError, "internal server error")
				return
			}
		}
		changes = append(changes, services.DropChange{Op: op, Drop: d})
	}

	h.Feed.ApplyDrops(changes)
	writeJSON(w, r, http.StatusOK, dto.FeedResponse{Applied: len(changes), Skipped: skipped})
}

func (h *FeedHandler) Events(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.FeedEventsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	changes := make([]services.EventChange, 0, len(req.Changes))
	skipped := 0
	for _, c := range req.Changes {
		op, ok := parseOp(c.Op)
		if !ok || strings.TrimSpace(c.ID) == "" {
			skipped++
			continue
		}
		changes = append(changes, services.EventChange{
			Op: op,
			Event: domain.Event{
				ID:          c.ID,
				Status:      c.Status,
				OrganizerID: c.OrganizerID,
				Position:    domain.Coordinates{Lat: c.Position.Lat, Lng: c.Position.Lng},
			},
		})
	}

	h.Feed.ApplyEvents(changes)
	writeJSON(w, r, http.StatusOK, dto.FeedResponse{Applied: len(changes), Skipped: skipped})
}
