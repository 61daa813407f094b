package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/GSDV/solomo/internal/core/domain"
)

// setupInMemoryStore creates a SQLiteStore used for testing
func setupInMemoryStore(t *testing.T) *SQLiteStore {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&RegionModel{}, &EventModel{})
	require.NoError(t, err)

	return &SQLiteStore{db: db}
}

func testRegions() []domain.Region {
	return []domain.Region{
		{ID: "home", Label: "Home", Latitude: 40.4168, Longitude: -3.7038, RadiusM: 100, Message: "welcome"},
		{ID: "office", Label: "Office", Latitude: 40.45, Longitude: -3.69, RadiusM: 250},
	}
}

func TestSaveAndLoadRegions(t *testing.T) {
	store := setupInMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRegions(ctx, testRegions()))

	loaded, err := store.LoadRegions(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "home", loaded[0].ID)
	assert.Equal(t, 100.0, loaded[0].RadiusM)
	assert.Equal(t, "welcome", loaded[0].Message)
}

func TestSaveRegionsReplacesWholesale(t *testing.T) {
	store := setupInMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRegions(ctx, testRegions()))
	require.NoError(t, store.SaveRegions(ctx, []domain.Region{
		{ID: "gym", Latitude: 40.41, Longitude: -3.71, RadiusM: 50},
	}))

	loaded, err := store.LoadRegions(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "gym", loaded[0].ID)
}

func TestSaveRegionsEmptyClears(t *testing.T) {
	store := setupInMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRegions(ctx, testRegions()))
	require.NoError(t, store.SaveRegions(ctx, nil))

	loaded, err := store.LoadRegions(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func makeEvent(id string, kind domain.EventKind, ts time.Time) domain.Event {
	return domain.Event{
		ID:       id,
		RegionID: "home",
		Kind:     kind,
		Position: domain.Position{
			Latitude:  40.4168,
			Longitude: -3.7038,
			Accuracy:  10,
			Timestamp: ts,
		},
		Timestamp: ts,
	}
}

func TestAppendAndListEvents(t *testing.T) {
	store := setupInMemoryStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	events := []domain.Event{
		makeEvent("e1", domain.EventEnter, base),
		makeEvent("e2", domain.EventExit, base.Add(time.Minute)),
		makeEvent("e3", domain.EventEnter, base.Add(2*time.Minute)),
	}
	require.NoError(t, store.AppendEvents(ctx, events))

	listed, err := store.ListEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	// Newest first.
	assert.Equal(t, "e3", listed[0].ID)
	assert.Equal(t, domain.EventEnter, listed[0].Kind)
	assert.Equal(t, 40.4168, listed[0].Position.Latitude)

	limited, err := store.ListEvents(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestAppendEventsIgnoresDuplicates(t *testing.T) {
	store := setupInMemoryStore(t)
	ctx := context.Background()
	ev := makeEvent("dup", domain.EventEnter, time.Now().UTC())

	require.NoError(t, store.AppendEvents(ctx, []domain.Event{ev}))
	require.NoError(t, store.AppendEvents(ctx, []domain.Event{ev}))

	listed, err := store.ListEvents(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestPruneEvents(t *testing.T) {
	store := setupInMemoryStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		ev := makeEvent(string(rune('a'+i)), domain.EventEnter, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.AppendEvents(ctx, []domain.Event{ev}))
	}

	require.NoError(t, store.PruneEvents(ctx, 2))

	listed, err := store.ListEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	// The newest two survive.
	assert.Equal(t, "e", listed[0].ID)
	assert.Equal(t, "d", listed[1].ID)
}

func TestEventWriterFlushes(t *testing.T) {
	store := setupInMemoryStore(t)

	w := NewEventWriter(store, 100)
	w.interval = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	w.Enqueue(makeEvent("w1", domain.EventEnter, time.Now().UTC()))
	w.Enqueue(makeEvent("w2", domain.EventExit, time.Now().UTC()))

	require.Eventually(t, func() bool {
		listed, err := store.ListEvents(context.Background(), 10)
		return err == nil && len(listed) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestEventWriterDisabled(t *testing.T) {
	store := setupInMemoryStore(t)

	w := NewEventWriter(store, 100)
	w.interval = 20 * time.Millisecond
	w.SetEnabled(false)
	assert.False(t, w.IsEnabled())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	w.Enqueue(makeEvent("skip", domain.EventEnter, time.Now().UTC()))
	time.Sleep(60 * time.Millisecond)

	listed, err := store.ListEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestEventWriterFinalFlushOnCancel(t *testing.T) {
	store := setupInMemoryStore(t)

	w := NewEventWriter(store, 100)
	w.interval = time.Hour // only the cancellation path may flush

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	w.Enqueue(makeEvent("f1", domain.EventEnter, time.Now().UTC()))
	time.Sleep(10 * time.Millisecond)
	cancel()

	require.Eventually(t, func() bool {
		listed, err := store.ListEvents(context.Background(), 10)
		return err == nil && len(listed) == 1
	}, time.Second, 10*time.Millisecond)
}
