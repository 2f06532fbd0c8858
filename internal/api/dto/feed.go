package dto

// Timestamps in feed payloads are RFC 3339 strings. A malformed value is
// treated as missing rather than rejecting the whole change set.

type CoordinatesDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type VendorChangeRequest struct {
	Op                string         `json:"op"`
	ID                string         `json:"id"`
	Position          CoordinatesDTO `json:"position"`
	KitchenType       string         `json:"kitchen_type"`
	LastActiveAt      *string        `json:"last_active_at"`
	SessionStartedAt  *string        `json:"session_started_at"`
	ExplicitlyVisible bool           `json:"is_visible"`
	ExplicitlyLive    bool           `json:"is_live"`
}

type FeedVendorsRequest struct {
	Changes []VendorChangeRequest `json:"changes"`
}

type DropChangeRequest struct {
	Op        string   `json:"op"`
	ID        string   `json:"id"`
	VendorID  string   `json:"vendor_id"`
	Title     string   `json:"title"`
	Quantity  int      `json:"quantity"`
	ClaimedBy []string `json:"claimed_by"`
	ExpiresAt *string  `json:"expires_at"`
}

type FeedDropsRequest struct {
	Changes []DropChangeRequest `json:"changes"`
}

type EventChangeRequest struct {
	Op          string         `json:"op"`
	ID          string         `json:"id"`
	Status      string         `json:"status"`
	OrganizerID string         `json:"organizer_id"`
	Position    CoordinatesDTO `json:"position"`
}

type FeedEventsRequest struct {
	Changes []EventChangeRequest `json:"changes"`
}

type FeedResponse struct {
	Applied int `json:"applied"`
	Skipped int `json:"skipped"`
}
