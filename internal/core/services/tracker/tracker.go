package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/GSDV/solomo/internal/core/domain"
	"github.com/GSDV/solomo/internal/core/ports"
	"github.com/GSDV/solomo/internal/core/services/capability"
	"github.com/GSDV/solomo/internal/core/services/geofence"
	"github.com/GSDV/solomo/internal/telemetry"
)

// Tracker is the location state container. It owns permission state,
// the single-slot position cache, the continuous-watch lifecycle and
// the geofence evaluator, and hands read-only snapshots to consumers.
//
// All mutation serializes through one mutex: provider callbacks, fetch
// results, app-state transitions and dwell-timer firings never touch
// state concurrently. Blocking provider calls happen outside the lock;
// a generation counter discards results that land after Close.
type Tracker struct {
	mu sync.Mutex

	cfg       domain.TrackerConfig
	provider  ports.Provider
	evaluator *geofence.Evaluator
	notifier  ports.EventNotifier

	permission domain.PermissionStatus
	appState   domain.AppState

	position  *domain.Position
	fetchedAt time.Time
	lastErr   *domain.LocationError

	watchState domain.WatchState
	watchWant  bool // caller intent: a watch should run when possible
	pausedByBG bool // the background transition released the subscription
	sub        ports.Subscription

	sandbox capability.Sandbox

	generation uint64
	closed     bool
}

// New creates a tracker around the given provider. cfg is normalized;
// notifier may be nil.
func New(provider ports.Provider, cfg domain.TrackerConfig, notifier ports.EventNotifier) *Tracker {
	cfg = cfg.Normalize()

	t := &Tracker{
		cfg:        cfg,
		provider:   provider,
		notifier:   notifier,
		permission: domain.PermissionUnknown,
		appState:   domain.AppForeground,
		watchState: domain.WatchStopped,
	}
	t.evaluator = geofence.New(geofence.Config{
		DwellDelay:  cfg.DwellDelay,
		EventLogCap: cfg.EventLogCap,
	}, t.onGeofenceEvent)

	return t
}

// onGeofenceEvent runs for every emitted geofence event, including
// timer-fired dwells.
func (t *Tracker) onGeofenceEvent(e domain.Event) {
	slog.Info("Geofence event", "region", e.RegionID, "kind", e.Kind)
	if t.notifier != nil {
		t.notifier.NotifyEvent(e)
	}
}

// RequestPermission asks the platform for location access. It is
// idempotent when permission is already granted and has no side
// effects on failure beyond recording the error.
func (t *Tracker) RequestPermission(ctx context.Context) (domain.PermissionStatus, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return domain.PermissionUnknown, domain.NewLocationError(domain.ErrUnknown, "tracker is closed")
	}
	if t.permission == domain.PermissionGranted {
		t.mu.Unlock()
		return domain.PermissionGranted, nil
	}
	gen := t.generation
	t.mu.Unlock()

	granted, err := t.provider.RequestPermission(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.generation != gen {
		return domain.PermissionUnknown, nil
	}

	if err != nil {
		le := domain.AsLocationError(err, domain.ErrUnknown)
		t.lastErr = le
		return t.permission, le
	}

	if granted {
		t.permission = domain.PermissionGranted
		t.lastErr = nil
	} else {
		t.permission = domain.PermissionDenied
		t.lastErr = domain.NewLocationError(domain.ErrPermissionDenied, "location permission denied")
	}
	return t.permission, nil
}

// Current returns the cached position when it is younger than
// MaxCacheAge, otherwise performs one blocking provider fetch. Failures
// are recorded in the error slot and returned inside the result; the
// previous cache entry survives them. Never retried automatically.
func (t *Tracker) Current(ctx context.Context) domain.FetchResult {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return domain.FetchResult{Err: domain.NewLocationError(domain.ErrUnknown, "tracker is closed")}
	}

	// Cache hit: return a copy, never an alias into tracker state.
	if t.position != nil && time.Since(t.fetchedAt) < t.cfg.MaxCacheAge {
		pos := *t.position
		t.mu.Unlock()
		telemetry.Fetches.WithLabelValues("cache").Inc()
		return domain.FetchResult{Granted: true, Position: &pos, FromCache: true}
	}
	t.mu.Unlock()

	if st, _ := t.RequestPermission(ctx); st == domain.PermissionDenied {
		telemetry.Fetches.WithLabelValues("denied").Inc()
		return domain.FetchResult{
			Granted: false,
			Err:     domain.NewLocationError(domain.ErrPermissionDenied, "location permission denied"),
		}
	}

	t.mu.Lock()
	gen := t.generation
	timeout := t.cfg.FetchTimeout
	accuracy := t.cfg.Accuracy
	t.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pos, err := t.provider.Current(fetchCtx, accuracy)

	t.mu.Lock()
	defer t.mu.Unlock()

	// The caller may have torn the tracker down while the fetch was in
	// flight; the result must not be applied to stale state.
	if t.closed || t.generation != gen {
		return domain.FetchResult{Granted: true}
	}

	if err != nil {
		le := domain.AsLocationError(err, domain.ErrPositionUnavailable)
		t.lastErr = le
		telemetry.Fetches.WithLabelValues("error").Inc()
		return domain.FetchResult{Granted: true, Err: le}
	}

	t.applyLocked(pos)
	telemetry.Fetches.WithLabelValues("fresh").Inc()

	out := pos
	return domain.FetchResult{Granted: true, Position: &out}
}

// applyLocked installs a new position sample: cache replacement, error
// slot clear, geofence evaluation, observer notification.
func (t *Tracker) applyLocked(pos domain.Position) {
	if pos.Timestamp.IsZero() {
		pos.Timestamp = time.Now()
	}
	t.position = &pos
	t.fetchedAt = time.Now()
	t.lastErr = nil

	// The evaluator has its own lock; appendLocked never calls back
	// into the tracker, so this nesting is safe.
	t.evaluator.Evaluate(pos)

	if t.notifier != nil {
		t.notifier.NotifyPosition(pos)
	}
}

// StartWatch opens the continuous subscription and sets the caller
// intent flag. Starting while starting or watching is a no-op, so at
// most one subscription ever exists.
func (t *Tracker) StartWatch() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return domain.NewLocationError(domain.ErrUnknown, "tracker is closed")
	}

	t.watchWant = true
	t.pausedByBG = false

	if t.watchState != domain.WatchStopped {
		t.mu.Unlock()
		return nil
	}
	t.watchState = domain.WatchStarting
	gen := t.generation
	opts := ports.WatchOptions{
		Accuracy:       t.cfg.Accuracy,
		UpdateInterval: t.cfg.UpdateInterval.Milliseconds(),
		DistanceFilter: t.cfg.DistanceFilter,
		Background:     t.cfg.BackgroundMode,
	}
	t.mu.Unlock()

	sub, err := t.provider.Watch(opts, func(p domain.Position) {
		t.onWatchUpdate(gen, p)
	}, func(err error) {
		t.onWatchError(gen, err)
	})

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.generation != gen || !t.watchWant {
		// Torn down or stopped while the provider was opening the
		// subscription. Release it instead of leaking.
		if sub != nil {
			sub.Stop()
		}
		t.watchState = domain.WatchStopped
		return nil
	}

	if err != nil {
		t.watchState = domain.WatchStopped
		le := domain.AsLocationError(err, domain.ErrPositionUnavailable)
		t.lastErr = le
		return le
	}

	t.sub = sub
	t.watchState = domain.WatchWatching
	telemetry.WatchActive.Set(1)
	slog.Info("Continuous watch started")
	return nil
}

// StopWatch releases the subscription and clears the caller intent
// flag. Always safe to call.
func (t *Tracker) StopWatch() {
	t.mu.Lock()
	t.watchWant = false
	t.pausedByBG = false
	t.releaseSubLocked()
	t.mu.Unlock()
}

// releaseSubLocked tears down the live subscription, if any.
func (t *Tracker) releaseSubLocked() {
	if t.sub != nil {
		t.sub.Stop()
		t.sub = nil
	}
	if t.watchState != domain.WatchStopped {
		t.watchState = domain.WatchStopped
		telemetry.WatchActive.Set(0)
		slog.Info("Continuous watch stopped")
	}
}

// onWatchUpdate is the delivery callback for the live subscription.
// Cache, error slot and geofence evaluation run synchronously here.
func (t *Tracker) onWatchUpdate(gen uint64, p domain.Position) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.generation != gen || t.watchState != domain.WatchWatching {
		return
	}
	telemetry.WatchUpdates.Inc()
	t.applyLocked(p)
}

// onWatchError handles subscription failures: record the error and
// return the machine to stopped. The intent flag survives so a
// ResumeMode of "always" can bring the watch back on foreground.
func (t *Tracker) onWatchError(gen uint64, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.generation != gen {
		return
	}
	le := domain.AsLocationError(err, domain.ErrPositionUnavailable)
	t.lastErr = le
	slog.Error("Watch subscription failed", "error", le)
	t.releaseSubLocked()
}

// SetAppState applies a host foreground/background transition.
// Backgrounding releases the subscription unless BackgroundMode is
// set. Foregrounding resumes per ResumeMode: auto resumes only a watch
// the background transition itself paused; always resumes whenever the
// intent flag is still set.
func (t *Tracker) SetAppState(state domain.AppState) {
	t.mu.Lock()
	if t.closed || state == t.appState {
		t.mu.Unlock()
		return
	}
	t.appState = state

	switch state {
	case domain.AppBackground:
		if t.watchState != domain.WatchStopped && !t.cfg.BackgroundMode {
			slog.Info("App backgrounded, pausing watch")
			t.releaseSubLocked()
			t.pausedByBG = true
		}
		t.mu.Unlock()

	case domain.AppForeground:
		resume := t.watchWant && t.watchState == domain.WatchStopped &&
			(t.cfg.ResumeMode == domain.ResumeAlways || t.pausedByBG)
		t.pausedByBG = false
		t.mu.Unlock()

		if resume {
			slog.Info("App foregrounded, resuming watch")
			if err := t.StartWatch(); err != nil {
				slog.Error("Watch resume failed", "error", err)
			}
		}

	default:
		t.mu.Unlock()
	}
}

// Config returns the current tracker configuration.
func (t *Tracker) Config() domain.TrackerConfig {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cfg
}

// UpdateConfig replaces the runtime configuration. A running watch
// keeps its current subscription; new values apply on the next fetch
// or watch (re)start, except the dwell delay which takes effect for
// timers armed from now on.
func (t *Tracker) UpdateConfig(cfg domain.TrackerConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg = cfg.Normalize()

	t.mu.Lock()
	t.cfg = cfg
	t.mu.Unlock()

	t.evaluator.SetDwellDelay(cfg.DwellDelay)
	return nil
}

// RegisterRegions replaces the geofence set wholesale. Containment
// state resets and pending dwell timers are cancelled.
func (t *Tracker) RegisterRegions(regions []domain.Region) error {
	if err := domain.ValidateRegions(regions); err != nil {
		return err
	}
	t.evaluator.SetRegions(regions)

	// Evaluate the current position against the new set immediately so
	// a registration inside an occupied region emits its enter now.
	t.mu.Lock()
	pos := t.position
	t.mu.Unlock()
	if pos != nil {
		t.evaluator.Evaluate(*pos)
	}
	return nil
}

// UnregisterRegions clears the geofence set, its containment state and
// all pending dwell timers.
func (t *Tracker) UnregisterRegions() {
	t.evaluator.Clear()
}

// Regions returns the registered geofence set.
func (t *Tracker) Regions() []domain.Region {
	return t.evaluator.Regions()
}

// Events returns the ordered geofence event log.
func (t *Tracker) Events() []domain.Event {
	return t.evaluator.Events()
}

// ClearEvents empties the event log.
func (t *Tracker) ClearEvents() {
	t.evaluator.ClearEvents()
}

// OpenSettings asks the platform to show its location settings UI.
func (t *Tracker) OpenSettings() error {
	if err := t.provider.OpenSettings(); err != nil {
		le := domain.AsLocationError(err, domain.ErrSettings)
		t.mu.Lock()
		t.lastErr = le
		t.mu.Unlock()
		return le
	}
	return nil
}

// Close tears the tracker down: the subscription is released, dwell
// timers are cancelled, and any in-flight fetch result is discarded
// via the generation check. Idempotent.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.generation++
	t.watchWant = false
	t.releaseSubLocked()
	t.mu.Unlock()

	t.evaluator.Close()
	slog.Info("Tracker closed")
}
