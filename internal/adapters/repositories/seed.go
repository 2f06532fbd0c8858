package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
	"truck-presence-service/internal/domain"
	"truck-presence-service/internal/ports"
)

type DropSeed struct {
	ID        string    `json:"id"`
	VendorID  string    `json:"vendor_id"`
	Title     string    `json:"title"`
	Quantity  int       `json:"quantity"`
	ClaimedBy []string  `json:"claimed_by"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Populate a drop store with drop data from a JSON file.
func SeedDropsFromJSON(ctx context.Context, w ports.DropWriter, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed drops: read %q: %w", jsonPath, err)
	}

	var data []DropSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed drops: parse json: %w", err)
	}

	rows := make([]domain.Drop, 0, len(data))
	for i, item := range data {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return fmt.Errorf("seed drops: item at index %d: id cannot be empty", i+1)
		}
		if item.Quantity < 0 {
			return fmt.Errorf("seed drops: invalid quantity at index %d: %d", i+1, item.Quantity)
		}
		if item.ExpiresAt.IsZero() {
			return fmt.Errorf("seed drops: item %q: expires_at is required", id)
		}
		rows = append(rows, domain.Drop{
			ID:        id,
			VendorID:  strings.TrimSpace(item.VendorID),
			Title:     item.Title,
			Quantity:  item.Quantity,
			ClaimedBy: item.ClaimedBy,
			ExpiresAt: item.ExpiresAt,
		})
	}

	for i := range rows {
		if err := w.PutDrop(ctx, &rows[i]); err != nil {
			return fmt.Errorf("seed drops: put %q: %w", rows[i].ID, err)
		}
	}

	return nil
}
