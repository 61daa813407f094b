package storage

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/GSDV/solomo/internal/core/domain"
	"github.com/GSDV/solomo/internal/core/ports"
)

// EventWriter batches geofence events and appends them to the store in
// the background, so the evaluator callback never blocks on disk.
type EventWriter struct {
	store     ports.RegionStore
	queue     chan domain.Event
	batchSize int
	interval  time.Duration

	mu      sync.RWMutex
	enabled bool
}

// NewEventWriter creates a writer with the given queue capacity.
func NewEventWriter(store ports.RegionStore, bufferSize int) *EventWriter {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	return &EventWriter{
		store:     store,
		queue:     make(chan domain.Event, bufferSize),
		batchSize: 50,
		interval:  5 * time.Second,
		enabled:   true,
	}
}

// Enqueue queues one event for persistence. Drops when the queue is
// full rather than blocking the delivery callback.
func (w *EventWriter) Enqueue(e domain.Event) {
	w.mu.RLock()
	enabled := w.enabled
	w.mu.RUnlock()
	if !enabled {
		return
	}

	select {
	case w.queue <- e:
	default:
		slog.Warn("Event persistence queue full, dropping event", "region", e.RegionID, "kind", e.Kind)
	}
}

// SetEnabled toggles persistence at runtime.
func (w *EventWriter) SetEnabled(enabled bool) {
	w.mu.Lock()
	w.enabled = enabled
	w.mu.Unlock()
}

// IsEnabled returns the current persistence toggle.
func (w *EventWriter) IsEnabled() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.enabled
}

// Start launches the background flush loop. It drains and flushes the
// queue one final time when ctx is cancelled.
func (w *EventWriter) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *EventWriter) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	batch := make([]domain.Event, 0, w.batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := w.store.AppendEvents(context.Background(), batch); err != nil {
			slog.Error("Failed to persist event batch", "count", len(batch), "error", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case e := <-w.queue:
					batch = append(batch, e)
				default:
					flush()
					return
				}
			}
		case e := <-w.queue:
			batch = append(batch, e)
			if len(batch) >= w.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
