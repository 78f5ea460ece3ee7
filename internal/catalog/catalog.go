// Package catalog provides read-only access to the menu. The catalog is
// queried but not owned by this core; menu management lives elsewhere.
package catalog

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an item lookup by id misses.
var ErrNotFound = errors.New("catalog item not found")

// TagRandom asks Recommended for a chef's-choice sample instead of a tag
// match.
const TagRandom = "random"

// Item is one menu entry.
type Item struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"imageUrl,omitempty"`
}

// Gateway is the read-only menu contract consumed by the orchestrator.
type Gateway interface {
	// Categories lists the distinct categories of available items.
	Categories(ctx context.Context) ([]string, error)
	// Items lists available items in a category.
	Items(ctx context.Context, category string) ([]Item, error)
	// ByID fetches one item; ErrNotFound when missing or unavailable.
	ByID(ctx context.Context, id int) (Item, error)
	// ByName fuzzy-matches items by name; the result may be empty.
	ByName(ctx context.Context, name string) ([]Item, error)
	// Recommended returns items matching a taste tag, or a random sample
	// for TagRandom.
	Recommended(ctx context.Context, tag string) ([]Item, error)
}
