package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresGateway reads the menu from the shared restaurant database
// (foods table).
type PostgresGateway struct {
	db *sql.DB
}

// NewPostgresGateway wraps an open database handle.
func NewPostgresGateway(db *sql.DB) *PostgresGateway {
	return &PostgresGateway{db: db}
}

func (g *PostgresGateway) Categories(ctx context.Context) ([]string, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM foods WHERE available = true ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

const itemColumns = `id, name, COALESCE(description, ''), price, category, COALESCE(image_url, '')`

func (g *PostgresGateway) Items(ctx context.Context, category string) ([]Item, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM foods WHERE available = true AND category = $1 ORDER BY id`,
		category)
	if err != nil {
		return nil, fmt.Errorf("query items for %q: %w", category, err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func (g *PostgresGateway) ByID(ctx context.Context, id int) (Item, error) {
	var it Item
	err := g.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM foods WHERE available = true AND id = $1`, id,
	).Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Category, &it.ImageURL)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("query item %d: %w", id, err)
	}
	return it, nil
}

func (g *PostgresGateway) ByName(ctx context.Context, name string) ([]Item, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM foods WHERE available = true AND name ILIKE '%' || $1 || '%' ORDER BY id`,
		name)
	if err != nil {
		return nil, fmt.Errorf("search items %q: %w", name, err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func (g *PostgresGateway) Recommended(ctx context.Context, tag string) ([]Item, error) {
	if tag == "" || tag == TagRandom {
		rows, err := g.db.QueryContext(ctx,
			`SELECT `+itemColumns+` FROM foods WHERE available = true ORDER BY random() LIMIT 5`)
		if err != nil {
			return nil, fmt.Errorf("query random recommendations: %w", err)
		}
		defer rows.Close()
		return scanItems(rows)
	}

	rows, err := g.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM foods
		WHERE available = true
		  AND (category = $1 OR name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
		ORDER BY id LIMIT 5`, tag)
	if err != nil {
		return nil, fmt.Errorf("query recommendations %q: %w", tag, err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func scanItems(rows *sql.Rows) ([]Item, error) {
	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Category, &it.ImageURL); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
