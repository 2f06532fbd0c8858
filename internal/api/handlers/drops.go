package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"truck-presence-service/internal/api/dto"
	"truck-presence-service/internal/domain"
	"truck-presence-service/internal/ports"
	"truck-presence-service/internal/services"
)

// DropHandler serves drop remaining counts and claim attempts.
type DropHandler struct {
	Feed   *services.LiveFeed
	Drops  ports.DropSource
	Ledger *services.ClaimLedger
	Clock  ports.Clock
}

func (h *DropHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	views := h.Feed.DropViews(h.Clock.Now())
	res := dto.ListDropsResponse{Drops: make([]dto.DropResponse, 0, len(views))}
	for _, d := range views {
		res.Drops = append(res.Drops, dto.DropResponse{
			ID:        d.ID,
			VendorID:  d.VendorID,
			Title:     d.Title,
			Remaining: d.Remaining,
			ExpiresAt: d.ExpiresAt,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Get reads the drop from the shared store so the remaining count reflects
// claims made by every instance.
func (h *DropHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	dropID := r.PathValue("id")
	d, err := h.Drops.GetDrop(r.Context(), dropID)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "drop not found")
		return
	}
	if err != nil {
		log.Printf("get drop failed: drop=%s err=%v", dropID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if d.IsExpired(h.Clock.Now()) {
		writeError(w, r, http.StatusNotFound, "drop not found")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.DropResponse{
		ID:        d.ID,
		VendorID:  d.VendorID,
		Title:     d.Title,
		Remaining: d.Remaining(),
		ExpiresAt: d.ExpiresAt,
	})
}

func (h *DropHandler) Claim(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.ClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		writeError(w, r, http.StatusBadRequest, "user_id is required")
		return
	}

	claim, err := h.Ledger.AttemptClaim(r.Context(), userID, r.PathValue("id"))
	var ce *services.ClaimError
	if errors.As(err, &ce) {
		writeClaimError(w, r, ce)
		return
	}
	if err != nil {
		log.Printf("attempt claim failed: user=%s drop=%s err=%v", userID, r.PathValue("id"), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusCreated, toClaimResponse(claim))
}

func claimErrorStatus(kind services.ClaimErrorKind) int {
	switch kind {
	case services.ClaimNotFound:
		return http.StatusNotFound
	case services.ClaimCooldownActive:
		return http.StatusTooManyRequests
	default:
		return http.StatusConflict
	}
}

func writeClaimError(w http.ResponseWriter, r *http.Request, ce *services.ClaimError) {
	if ce.Kind == services.ClaimCooldownActive {
		w.Header().Set("Retry-After", strconv.Itoa(ce.WaitMinutes*60))
	}
	writeJSON(w, r, claimErrorStatus(ce.Kind), dto.ClaimErrorResponse{
		Error:            ce.Error(),
		Kind:             string(ce.Kind),
		ConflictingTitle: ce.ConflictingTitle,
		WaitMinutes:      ce.WaitMinutes,
	})
}

func toClaimResponse(c domain.Claim) dto.ClaimResponse {
	return dto.ClaimResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		DropID:    c.DropID,
		VendorID:  c.VendorID,
		DropTitle: c.DropTitle,
		Code:      c.Code,
		ClaimedAt: c.ClaimedAt,
		ExpiresAt: c.ExpiresAt,
		Status:    string(c.Status),
		ExpiredAt: c.ExpiredAt,
	}
}
