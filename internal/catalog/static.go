package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// StaticGateway serves a fixed menu from memory. It backs the local chat
// harness and tests when no database is configured.
type StaticGateway struct {
	mu    sync.RWMutex
	items []Item
}

// NewStaticGateway creates a gateway over the given items.
func NewStaticGateway(items []Item) *StaticGateway {
	return &StaticGateway{items: append([]Item(nil), items...)}
}

// NewStockMenu creates a gateway seeded with the stock restaurant menu.
func NewStockMenu() *StaticGateway {
	return NewStaticGateway([]Item{
		{ID: 1, Name: "Steamed Veg Momo", Description: "Fresh vegetables & herbs wrapped in soft dough, steamed to perfection", Price: 180, Category: "momos"},
		{ID: 2, Name: "Steamed Chicken Momo", Description: "Juicy chicken filling in soft steamed dumplings", Price: 220, Category: "momos"},
		{ID: 3, Name: "Fried Veg Momo", Description: "Crispy fried vegetable momos with crunchy exterior", Price: 200, Category: "momos"},
		{ID: 4, Name: "Fried Chicken Momo", Description: "Golden fried chicken momos, crispy and delicious", Price: 240, Category: "momos"},
		{ID: 5, Name: "Tandoori Momo", Description: "Momos grilled in tandoor with special spices", Price: 260, Category: "momos"},
		{ID: 6, Name: "Jhol Momo", Description: "Steamed momos served in spicy soup gravy", Price: 250, Category: "momos"},
		{ID: 7, Name: "Veg Thukpa", Description: "Traditional Tibetan noodle soup with vegetables", Price: 200, Category: "noodles"},
		{ID: 8, Name: "Chicken Thukpa", Description: "Hearty noodle soup with tender chicken pieces", Price: 250, Category: "noodles"},
		{ID: 9, Name: "Veg Chowmein", Description: "Stir-fried noodles with fresh vegetables", Price: 180, Category: "noodles"},
		{ID: 10, Name: "Chicken Chowmein", Description: "Stir-fried noodles with chicken and vegetables", Price: 220, Category: "noodles"},
		{ID: 11, Name: "Veg Fried Rice", Description: "Wok-tossed rice with mixed vegetables", Price: 180, Category: "rice"},
		{ID: 12, Name: "Chicken Fried Rice", Description: "Delicious fried rice with chicken pieces", Price: 220, Category: "rice"},
		{ID: 13, Name: "Chicken Biryani", Description: "Aromatic basmati rice with spiced chicken", Price: 300, Category: "rice"},
		{ID: 14, Name: "Masala Tea", Description: "Traditional spiced tea", Price: 40, Category: "beverages"},
		{ID: 15, Name: "Coffee", Description: "Hot brewed coffee", Price: 60, Category: "beverages"},
		{ID: 16, Name: "Fresh Lime Soda", Description: "Refreshing lime soda (sweet/salty)", Price: 80, Category: "beverages"},
		{ID: 17, Name: "Mango Lassi", Description: "Creamy mango yogurt drink", Price: 100, Category: "beverages"},
	})
}

func (g *StaticGateway) Categories(_ context.Context) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	seen := make(map[string]bool)
	var categories []string
	for _, it := range g.items {
		if !seen[it.Category] {
			seen[it.Category] = true
			categories = append(categories, it.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (g *StaticGateway) Items(_ context.Context, category string) ([]Item, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var items []Item
	for _, it := range g.items {
		if it.Category == category {
			items = append(items, it)
		}
	}
	return items, nil
}

func (g *StaticGateway) ByID(_ context.Context, id int) (Item, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, it := range g.items {
		if it.ID == id {
			return it, nil
		}
	}
	return Item{}, ErrNotFound
}

func (g *StaticGateway) ByName(_ context.Context, name string) ([]Item, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, nil
	}
	var items []Item
	for _, it := range g.items {
		if strings.Contains(strings.ToLower(it.Name), needle) {
			items = append(items, it)
		}
	}
	return items, nil
}

func (g *StaticGateway) Recommended(_ context.Context, tag string) ([]Item, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	const limit = 5
	if tag == "" || tag == TagRandom {
		n := len(g.items)
		if n > limit {
			n = limit
		}
		return append([]Item(nil), g.items[:n]...), nil
	}

	needle := strings.ToLower(tag)
	var items []Item
	for _, it := range g.items {
		if it.Category == tag ||
			strings.Contains(strings.ToLower(it.Name), needle) ||
			strings.Contains(strings.ToLower(it.Description), needle) {
			items = append(items, it)
			if len(items) == limit {
				break
			}
		}
	}
	return items, nil
}
