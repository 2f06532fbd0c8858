package domain

// EventCategory is the closed set of display categories for an event.
type EventCategory string

const (
	EventDraft     EventCategory = "draft"
	EventUpcoming  EventCategory = "upcoming"
	EventActive    EventCategory = "active"
	EventCompleted EventCategory = "completed"
)

// Represents an organizer-owned event as pushed from upstream.
// Status is free-form; only a display category is derived from it.
type Event struct {
	ID          string
	Status      string
	OrganizerID string
	Position    Coordinates
}
