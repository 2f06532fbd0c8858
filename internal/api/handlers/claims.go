package handlers

import (
	"log"
	"net/http"
	"strings"
	"truck-presence-service/internal/api/dto"
	"truck-presence-service/internal/services"
)

// ClaimHandler exposes a user's current claim and claim history.
type ClaimHandler struct {
	Ledger  *services.ClaimLedger
	Watcher *services.ExpiryWatcher
}

func userParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, r, http.StatusBadRequest, "user_id is required")
		return "", false
	}
	return userID, true
}

func (h *ClaimHandler) Current(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := userParam(w, r)
	if !ok {
		return
	}

	res := dto.CurrentClaimResponse{}
	if c, ok := h.Watcher.Current(userID); ok {
		cr := toClaimResponse(c)
		res.Claim = &cr
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *ClaimHandler) History(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := userParam(w, r)
	if !ok {
		return
	}

	claims, err := h.Ledger.History(r.Context(), userID)
	if err != nil {
		log.Printf("claim history failed: user=%s err=%v", userID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListClaimsResponse{Claims: make([]dto.ClaimResponse, 0, len(claims))}
	for _, c := range claims {
		res.Claims = append(res.Claims, toClaimResponse(c))
	}

	writeJSON(w, r, http.StatusOK, res)
}
