package dto

import "time"

type MarkerResponse struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

type VendorResponse struct {
	ID             string         `json:"id"`
	Position       CoordinatesDTO `json:"position"`
	Marker         MarkerResponse `json:"marker"`
	ExplicitlyLive bool           `json:"is_live"`
}

type ListVendorsResponse struct {
	Vendors []VendorResponse `json:"vendors"`
}

type DayHoursRequest struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

type ScheduleRequest struct {
	Days map[string]DayHoursRequest `json:"days"`
}

type OpenStatusResponse struct {
	VendorID   string     `json:"vendor_id,omitempty"`
	Open       bool       `json:"open"`
	NextOpenAt *time.Time `json:"next_open_at"`
	CheckedAt  time.Time  `json:"checked_at"`
	// Defaulted lists "day.field" entries that could not be parsed and
	// were replaced by the default opening time, plus "day.duplicate" for
	// days given under more than one key.
	Defaulted []string `json:"defaulted,omitempty"`
}

type EvaluateScheduleRequest struct {
	Days map[string]DayHoursRequest `json:"days"`
	At   *time.Time                 `json:"at"`
}
