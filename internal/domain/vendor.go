package domain

import (
	"strings"
	"time"
)

// KitchenType is the free-form kind of mobile kitchen a vendor broadcasts.
type KitchenType string

const (
	KitchenFoodTruck KitchenType = "food_truck"
	KitchenTrailer   KitchenType = "trailer"
	KitchenCart      KitchenType = "cart"
	KitchenPopUp     KitchenType = "pop_up"
)

// Marker is the icon/label variant a map client renders for a live vendor.
type Marker struct {
	Icon  string
	Label string
}

var markers = map[KitchenType]Marker{
	KitchenFoodTruck: {Icon: "truck", Label: "Food Truck"},
	KitchenTrailer:   {Icon: "trailer", Label: "Food Trailer"},
	KitchenCart:      {Icon: "cart", Label: "Food Cart"},
	KitchenPopUp:     {Icon: "tent", Label: "Pop-Up"},
}

// Marker returns the render variant implied by the kitchen type.
// Unknown or empty kinds fall back to the food truck marker.
func (k KitchenType) Marker() Marker {
	norm := KitchenType(strings.ToLower(strings.TrimSpace(string(k))))
	norm = KitchenType(strings.NewReplacer("-", "_", " ", "_").Replace(string(norm)))
	if m, ok := markers[norm]; ok {
		return m
	}
	return markers[KitchenFoodTruck]
}

// Represents the last-known location broadcast of a mobile vendor.
// Records are produced by the vendor's own client and are read-only here.
// A nil timestamp means the value was missing or could not be parsed.
type VendorPresence struct {
	ID                string
	Position          Coordinates
	KitchenType       KitchenType
	LastActiveAt      *time.Time
	SessionStartedAt  *time.Time
	ExplicitlyVisible bool
	ExplicitlyLive    bool
}

// SessionStart returns the session start, falling back to the last activity.
func (v VendorPresence) SessionStart() *time.Time {
	if v.SessionStartedAt != nil {
		return v.SessionStartedAt
	}
	return v.LastActiveAt
}
