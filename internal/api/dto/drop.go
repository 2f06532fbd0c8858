package dto

import "time"

type DropResponse struct {
	ID        string    `json:"id"`
	VendorID  string    `json:"vendor_id"`
	Title     string    `json:"title"`
	Remaining int       `json:"remaining"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ListDropsResponse struct {
	Drops []DropResponse `json:"drops"`
}

type ClaimRequest struct {
	UserID string `json:"user_id"`
}

type ClaimResponse struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	DropID    string     `json:"drop_id"`
	VendorID  string     `json:"vendor_id"`
	DropTitle string     `json:"drop_title"`
	Code      string     `json:"code"`
	ClaimedAt time.Time  `json:"claimed_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	Status    string     `json:"status"`
	ExpiredAt *time.Time `json:"expired_at"`
}

type ListClaimsResponse struct {
	Claims []ClaimResponse `json:"claims"`
}

type CurrentClaimResponse struct {
	Claim *ClaimResponse `json:"claim"`
}

type ClaimErrorResponse struct {
	Error            string `json:"error"`
	Kind             string `json:"kind"`
	ConflictingTitle string `json:"conflicting_title,omitempty"`
	WaitMinutes      int    `json:"wait_minutes,omitempty"`
}
