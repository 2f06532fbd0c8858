package services

import (
	"strings"
	"truck-presence-service/internal/domain"
)

var eventStatusAliases = map[string]domain.EventCategory{
	"draft":     domain.EventDraft,
	"upcoming":  domain.EventUpcoming,
	"published": domain.EventUpcoming,
	"active":    domain.EventActive,
	"live":      domain.EventActive,
	"completed": domain.EventCompleted,
	"finished":  domain.EventCompleted,
}

// ClassifyEventStatus maps a raw upstream status to a display category.
// Unrecognized values are upcoming so that present events stay discoverable.
func ClassifyEventStatus(raw string) domain.EventCategory {
	if c, ok := eventStatusAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return c
	}
	return domain.EventUpcoming
}
