package handlers

import (
	"net/http"
	"strings"
	"time"
	"truck-presence-service/internal/adapters/calendar"
	"truck-presence-service/internal/api/dto"
	"truck-presence-service/internal/domain"
	"truck-presence-service/internal/ports"
	"truck-presence-service/internal/services"
)

// VendorHandler serves live vendors and vendor opening hours.
type VendorHandler struct {
	Feed      *services.LiveFeed
	Schedules *services.ScheduleWatcher
	Clock     ports.Clock
}

func (h *VendorHandler) Live(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	views := h.Feed.VendorViews(h.Clock.Now())
	res := dto.ListVendorsResponse{Vendors: make([]dto.VendorResponse, 0, len(views))}
	for _, v := range views {
		res.Vendors = append(res.Vendors, dto.VendorResponse{
			ID:             v.ID,
			Position:       dto.CoordinatesDTO{Lat: v.Position.Lat, Lng: v.Position.Lng},
			Marker:         dto.MarkerResponse{Icon: v.Marker.Icon, Label: v.Marker.Label},
			ExplicitlyLive: v.ExplicitlyLive,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// PutSchedule replaces a vendor's weekly hours and starts tracking them.
func (h *VendorHandler) PutSchedule(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPut) {
		return
	}

	vendorID := strings.TrimSpace(r.PathValue("id"))
	if vendorID == "" {
		writeError(w, r, http.StatusBadRequest, "vendor id is required")
		return
	}

	var req dto.ScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	schedule, defaulted := domain.ParseWeeklySchedule(toRawSchedule(req.Days))
	st := h.Schedules.Track(vendorID, schedule)

	res := toOpenStatusResponse(st)
	res.Defaulted = defaulted
	writeJSON(w, r, http.StatusOK, res)
}

func (h *VendorHandler) Open(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	st, ok := h.Schedules.Status(r.PathValue("id"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "schedule not found")
		return
	}

	writeJSON(w, r, http.StatusOK, toOpenStatusResponse(st))
}

// Calendar exports a vendor's tracked hours as an iCalendar feed.
func (h *VendorHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	vendorID := r.PathValue("id")
	schedule, ok := h.Schedules.Schedule(vendorID)
	if !ok {
		writeError(w, r, http.StatusNotFound, "schedule not found")
		return
	}

	body := calendar.ExportSchedule(vendorID, r.URL.Query().Get("name"), schedule, h.Clock.Now().In(h.Schedules.Location))

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// Evaluate checks a schedule supplied in the request without tracking it.
func (h *VendorHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.EvaluateScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	at := h.Clock.Now()
	if req.At != nil {
		at = *req.At
	}
	at = at.In(h.Schedules.Location)

	schedule, defaulted := domain.ParseWeeklySchedule(toRawSchedule(req.Days))
	res := dto.OpenStatusResponse{
		Open:      services.IsOpenNow(schedule, at).Open,
		CheckedAt: at,
		Defaulted: defaulted,
	}
	if !res.Open {
		if next, ok := services.NextOpening(schedule, at); ok {
			res.NextOpenAt = &next
		}
	}

	writeJSON(w, r, http.StatusOK, res)
}

func toRawSchedule(days map[string]dto.DayHoursRequest) domain.RawWeeklySchedule {
	raw := make(domain.RawWeeklySchedule, len(days))
	for day, h := range days {
		raw[day] = domain.RawDayHours{Open: h.Open, Close: h.Close, Closed: h.Closed}
	}
	return raw
}

func toOpenStatusResponse(st services.VendorOpenStatus) dto.OpenStatusResponse {
	var next *time.Time
	if st.NextOpenAt != nil {
		n := *st.NextOpenAt
		next = &n
	}
	return dto.OpenStatusResponse{
		VendorID:   st.VendorID,
		Open:       st.Open,
		NextOpenAt: next,
		CheckedAt:  st.CheckedAt,
	}
}
