package dto

type EventResponse struct {
	ID          string         `json:"id"`
	OrganizerID string         `json:"organizer_id"`
	Position    CoordinatesDTO `json:"position"`
	Category    string         `json:"category"`
}

type ListEventsResponse struct {
	Events []EventResponse `json:"events"`
}
