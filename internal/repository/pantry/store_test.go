package pantry

import (
	"context"
	"testing"

	"pantry-chef/internal/infrastructure/config"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := NewDB(context.Background(), config.DatabaseConfig{Driver: "sqlite3", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestStore_CreateAndList(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	first, err := store.Create(ctx, NewItem{Name: " eggs ", Quantity: "1"})
	require.NoError(t, err)
	assert.Equal(t, "eggs", first.Name)
	assert.NotZero(t, first.ID)

	expiry := "2024-12-01"
	second, err := store.Create(ctx, NewItem{Name: "milk", Quantity: "2", Expiry: &expiry})
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	items, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "eggs", items[0].Name)
	assert.Nil(t, items[0].Expiry)
	require.NotNil(t, items[1].Expiry)
	assert.Equal(t, "2024-12-01", *items[1].Expiry)
}

func TestStore_DuplicateNamesCreateNewRows(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Create(ctx, NewItem{Name: "rice", Quantity: "1"})
		require.NoError(t, err)
	}

	items, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestStore_RejectsEmptyName(t *testing.T) {
	store := NewStore(newTestDB(t))
	_, err := store.Create(context.Background(), NewItem{Name: "  ", Quantity: "1"})
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestStore_Ping(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	require.NoError(t, store.Ping(context.Background()))

	require.NoError(t, db.Close())
	assert.Error(t, store.Ping(context.Background()))
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	store := NewStore(db)
	_, err := store.Create(ctx, NewItem{Name: "milk", Quantity: "1"})
	require.NoError(t, err)

	// NewDB already created the table
	require.NoError(t, EnsureSchema(ctx, db))

	items, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
