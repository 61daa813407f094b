package ports

import (
	"context"

	"github.com/GSDV/solomo/internal/core/domain"
)

// WatchOptions carries the hints handed to the platform when opening a
// continuous subscription.
type WatchOptions struct {
	Accuracy       domain.AccuracyLevel
	UpdateInterval int64   // milliseconds between updates the platform should aim for
	DistanceFilter float64 // minimum movement in meters before a new sample
	Background     bool    // keep delivering while the app is backgrounded
}

// Subscription is a handle to one live continuous watch. Stop is
// idempotent and releases the underlying platform resources.
type Subscription interface {
	Stop()
}

// Provider abstracts the platform location backend (the mobile OS API,
// a simulator, or a broker-fed feed). Implementations convert their
// native failures into *domain.LocationError where a kind is known.
type Provider interface {
	// RequestPermission asks the platform for location access.
	// It returns whether access is granted; an error means the
	// request itself failed, not that it was denied.
	RequestPermission(ctx context.Context) (bool, error)

	// Current performs one blocking position fetch. It respects ctx
	// cancellation and deadline.
	Current(ctx context.Context, accuracy domain.AccuracyLevel) (domain.Position, error)

	// Watch opens a continuous subscription. onUpdate is invoked for
	// every delivered sample, onError for subscription failures. The
	// provider stops delivering once the returned Subscription is
	// stopped.
	Watch(opts WatchOptions, onUpdate func(domain.Position), onError func(error)) (Subscription, error)

	// OpenSettings asks the platform to show its location settings UI.
	OpenSettings() error
}

// Geocoder resolves coordinates into a human-readable address.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (domain.Address, error)
}

// RegionStore persists geofence regions and events across restarts.
// The tracker works without one; persistence is optional wiring.
type RegionStore interface {
	SaveRegions(ctx context.Context, regions []domain.Region) error
	LoadRegions(ctx context.Context) ([]domain.Region, error)
	AppendEvents(ctx context.Context, events []domain.Event) error
	ListEvents(ctx context.Context, limit int) ([]domain.Event, error)
	PruneEvents(ctx context.Context, keep int) error
	Close() error
}

// EventNotifier receives tracker output for fan-out to observers
// (the WebSocket manager in the bundled daemon).
type EventNotifier interface {
	NotifyPosition(p domain.Position)
	NotifyEvent(e domain.Event)
	NotifyState(s domain.Snapshot)
}

// LocationService is the full surface the tracker exposes to consumers.
// The web adapter and any embedding application program against this,
// never against the concrete tracker.
type LocationService interface {
	RequestPermission(ctx context.Context) (domain.PermissionStatus, error)
	Current(ctx context.Context) domain.FetchResult
	StartWatch() error
	StopWatch()
	SetAppState(state domain.AppState)
	Config() domain.TrackerConfig
	UpdateConfig(cfg domain.TrackerConfig) error
	RegisterRegions(regions []domain.Region) error
	UnregisterRegions()
	Regions() []domain.Region
	Events() []domain.Event
	ClearEvents()
	OpenSettings() error
	Snapshot() domain.Snapshot
	Close()
}
