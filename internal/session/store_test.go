package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAutoCreatesDefault(t *testing.T) {
	store := NewMemoryStore()

	sc, err := store.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, StageInitial, sc.Stage)
	assert.Empty(t, sc.Cart)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sc := NewContext("whatsapp")
	sc.Stage = StageCartOptions
	sc.Cart = Cart{{FoodID: 1, Name: "Steamed Veg Momo", Price: 180, Quantity: 2}}
	require.NoError(t, store.Put(ctx, "u1", sc))

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, sc.Stage, got.Stage)
	assert.Equal(t, sc.Cart, got.Cart)
	assert.False(t, got.UpdatedAt.IsZero(), "store stamps UpdatedAt")
}

func TestMemoryStorePutRejectsInvalidContext(t *testing.T) {
	store := NewMemoryStore()

	sc := NewContext("whatsapp")
	sc.ServiceType = ServiceDineIn // no party size
	assert.ErrorIs(t, store.Put(context.Background(), "u1", sc), ErrInvalidContext)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sc := NewContext("whatsapp")
	sc.Cart = Cart{{FoodID: 1, Name: "Steamed Veg Momo", Price: 180, Quantity: 1}}
	require.NoError(t, store.Put(ctx, "u1", sc))
	require.NoError(t, store.Delete(ctx, "u1"))

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got.Cart, "deleted user starts fresh")

	// Deleting an absent row is not an error.
	assert.NoError(t, store.Delete(ctx, "nobody"))
}

func TestMemoryStoreGetReturnsIndependentCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sc := NewContext("whatsapp")
	sc.Cart = Cart{{FoodID: 1, Name: "Steamed Veg Momo", Price: 180, Quantity: 1}}
	require.NoError(t, store.Put(ctx, "u1", sc))

	first, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	first.Cart[0].Quantity = 99

	second, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, second.Cart[0].Quantity)
}
