package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockMenuCategories(t *testing.T) {
	g := NewStockMenu()
	categories, err := g.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"beverages", "momos", "noodles", "rice"}, categories)
}

func TestStaticItemsByCategory(t *testing.T) {
	g := NewStockMenu()
	items, err := g.Items(context.Background(), "momos")
	require.NoError(t, err)
	require.NotEmpty(t, items)
	for _, it := range items {
		assert.Equal(t, "momos", it.Category)
	}
}

func TestStaticByID(t *testing.T) {
	g := NewStockMenu()

	it, err := g.ByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Steamed Veg Momo", it.Name)
	assert.InDelta(t, 180, it.Price, 0.001)

	_, err = g.ByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStaticByNameIsFuzzy(t *testing.T) {
	g := NewStockMenu()

	items, err := g.ByName(context.Background(), "momo")
	require.NoError(t, err)
	assert.Greater(t, len(items), 1)

	items, err = g.ByName(context.Background(), "TANDOORI")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Tandoori Momo", items[0].Name)

	items, err = g.ByName(context.Background(), "pizza")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStaticRecommended(t *testing.T) {
	g := NewStockMenu()

	random, err := g.Recommended(context.Background(), TagRandom)
	require.NoError(t, err)
	assert.Len(t, random, 5)

	byTag, err := g.Recommended(context.Background(), "beverages")
	require.NoError(t, err)
	require.NotEmpty(t, byTag)
	for _, it := range byTag {
		assert.Equal(t, "beverages", it.Category)
	}
}
