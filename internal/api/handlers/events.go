package handlers

import (
	"net/http"
	"truck-presence-service/internal/api/dto"
	"truck-presence-service/internal/services"
)

type EventHandler struct {
	Feed *services.LiveFeed
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	views := h.Feed.EventViews()
	res := dto.ListEventsResponse{Events: make([]dto.EventResponse, 0, len(views))}
	for _, e := range views {
		res.Events = append(res.Events, dto.EventResponse{
			ID:          e.ID,
			OrganizerID: e.OrganizerID,
			Position:    dto.CoordinatesDTO{Lat: e.Position.Lat, Lng: e.Position.Lng},
			Category:    string(e.Category),
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
