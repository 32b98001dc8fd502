package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agromarket/internal/config"
	"agromarket/internal/domain/outbox"
	"agromarket/pkg/logger"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...logger.Field) {}
func (nopLogger) Info(string, ...logger.Field) {}
func (nopLogger) Warn(string, ...logger.Field) {}
func (nopLogger) Error(string, ...logger.Field) {}
func (nopLogger) Fatal(string, ...logger.Field) {}
func (n nopLogger) WithFields(...logger.Field) logger.Logger {
	return n
}
func (nopLogger) Sync() error {
	return nil
}

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := Open(config.StoreConfig{Path: path, PoolSize: 2}, nopLogger{})
	require.NoError(t, err)
	return store
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := openTestStore(t, filepath.Join(t.TempDir(), "agromarket.db"))
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_OpenAppliesMigrations(t *testing.T) {
	store := newTestStore(t)

	conn, err := store.Take(context.Background())
	require.NoError(t, err)
	defer store.Put(conn)

	version, err := schemaVersion(conn)
	require.NoError(t, err)
	assert.Equal(t, int64(len(migrations)), version)
}

func TestStore_ReopenIsNoOpUpgrade(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agromarket.db")

	store := openTestStore(t, path)
	require.NoError(t, store.Close())

	store = openTestStore(t, path)
	defer store.Close()

	conn, err := store.Take(context.Background())
	require.NoError(t, err)
	defer store.Put(conn)

	version, err := schemaVersion(conn)
	require.NoError(t, err)
	assert.Equal(t, int64(len(migrations)), version)
}

func TestStore_OpenEmptyPath(t *testing.T) {
	_, err := Open(config.StoreConfig{}, nopLogger{})
	require.Error(t, err)
}

// A queued order survives a full close/reopen cycle with every field
// intact and the synced flag still down.
func TestOutbox_DurabilityAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agromarket.db")
	ctx := context.Background()

	store := openTestStore(t, path)
	repo := NewOutboxRepository(store)

	lat, lng := 12.3714, -1.5197
	original := &outbox.QueuedOrder{
		Items: []outbox.Item{
			{ProductID: "p1", Quantity: 2, Price: 1500},
			{ProductID: "p1", Quantity: 1, Price: 2000}, // duplicates stay unmerged
		},
		TotalAmount:         5000,
		CustomerName:        "Awa",
		CustomerPhone:       "70000000",
		City:                "Ouagadougou",
		DeliveryLat:         &lat,
		DeliveryLng:         &lng,
		DeliveryDescription: "blue door, second compound",
		VoiceNote:           &outbox.VoiceNote{Data: []byte("fake-audio-bytes"), MIME: "audio/webm"},
		CreatedAt:           time.UnixMilli(1700000000000).UTC(),
	}

	localID, err := repo.Insert(ctx, original)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Simulated process restart.
	store = openTestStore(t, path)
	defer store.Close()
	repo = NewOutboxRepository(store)

	restored, err := repo.FindByID(ctx, localID)
	require.NoError(t, err)

	assert.Equal(t, original.Items, restored.Items)
	assert.Equal(t, original.TotalAmount, restored.TotalAmount)
	assert.Equal(t, original.CustomerName, restored.CustomerName)
	assert.Equal(t, original.CustomerPhone, restored.CustomerPhone)
	assert.Equal(t, original.City, restored.City)
	require.NotNil(t, restored.DeliveryLat)
	require.NotNil(t, restored.DeliveryLng)
	assert.InDelta(t, lat, *restored.DeliveryLat, 1e-9)
	assert.InDelta(t, lng, *restored.DeliveryLng, 1e-9)
	assert.Equal(t, original.DeliveryDescription, restored.DeliveryDescription)
	require.NotNil(t, restored.VoiceNote)
	assert.Equal(t, original.VoiceNote.Data, restored.VoiceNote.Data)
	assert.Equal(t, "audio/webm", restored.VoiceNote.MIME)
	assert.Equal(t, original.CreatedAt, restored.CreatedAt)
	assert.False(t, restored.Synced)
}
