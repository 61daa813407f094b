package geofence

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GSDV/solomo/internal/core/domain"
	"github.com/GSDV/solomo/internal/geo"
	"github.com/GSDV/solomo/internal/telemetry"
)

// Config tunes the evaluator. Zero values fall back to the tracker
// defaults.
type Config struct {
	DwellDelay  time.Duration
	EventLogCap int
}

// Evaluator diffs position samples against a set of circular regions
// and emits enter/exit/dwell events. Containment is tracked per region
// ID and reset whenever the region set is replaced.
//
// Dwell detection uses one explicit timer handle per region, stored in
// a map so region removal and re-entry can cancel it. A new enter
// replaces any pending timer for the same ID.
type Evaluator struct {
	mu sync.Mutex

	regions     []domain.Region
	inside      map[string]bool
	lastInside  map[string]domain.Position
	dwellTimers map[string]*time.Timer

	events      []domain.Event
	dwellDelay  time.Duration
	eventLogCap int

	// onEvent is invoked (without the lock held) for every emitted
	// event, including timer-fired dwells.
	onEvent func(domain.Event)

	closed bool
}

// New creates an evaluator. onEvent may be nil.
func New(cfg Config, onEvent func(domain.Event)) *Evaluator {
	if cfg.DwellDelay <= 0 {
		cfg.DwellDelay = domain.DefaultDwellDelay
	}
	if cfg.EventLogCap <= 0 {
		cfg.EventLogCap = domain.DefaultEventLogCap
	}
	return &Evaluator{
		inside:      make(map[string]bool),
		lastInside:  make(map[string]domain.Position),
		dwellTimers: make(map[string]*time.Timer),
		dwellDelay:  cfg.DwellDelay,
		eventLogCap: cfg.EventLogCap,
		onEvent:     onEvent,
	}
}

// SetDwellDelay updates the dwell delay for timers scheduled from now on.
func (e *Evaluator) SetDwellDelay(d time.Duration) {
	if d <= 0 {
		return
	}
	e.mu.Lock()
	e.dwellDelay = d
	e.mu.Unlock()
}

// SetRegions replaces the registered region set wholesale. Containment
// state is reset and every pending dwell timer is cancelled.
func (e *Evaluator) SetRegions(regions []domain.Region) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelTimersLocked()
	e.regions = make([]domain.Region, len(regions))
	copy(e.regions, regions)
	e.inside = make(map[string]bool, len(regions))
	e.lastInside = make(map[string]domain.Position)
}

// Clear unregisters all regions. Containment state is dropped and no
// pending dwell fires afterwards.
func (e *Evaluator) Clear() {
	e.SetRegions(nil)
}

// Regions returns a copy of the registered set.
func (e *Evaluator) Regions() []domain.Region {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Region, len(e.regions))
	copy(out, e.regions)
	return out
}

// Evaluate runs the containment diff for one position sample and
// returns the enter/exit events it produced. Dwell events fire later
// from their timers and are appended to the log when they do.
func (e *Evaluator) Evaluate(p domain.Position) []domain.Event {
	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()
		return nil
	}

	var emitted []domain.Event
	for _, r := range e.regions {
		dist := geo.Distance(p.Latitude, p.Longitude, r.Latitude, r.Longitude)
		nowInside := dist <= r.RadiusM
		wasInside := e.inside[r.ID]

		if nowInside {
			e.lastInside[r.ID] = p
		}

		switch {
		case nowInside && !wasInside:
			e.inside[r.ID] = true
			emitted = append(emitted, e.appendLocked(r, domain.EventEnter, p))
			e.scheduleDwellLocked(r)
		case !nowInside && wasInside:
			e.inside[r.ID] = false
			emitted = append(emitted, e.appendLocked(r, domain.EventExit, p))
			e.cancelDwellLocked(r.ID)
		}
	}
	e.mu.Unlock()

	e.dispatch(emitted)
	return emitted
}

// Events returns a copy of the ordered event log.
func (e *Evaluator) Events() []domain.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Event, len(e.events))
	copy(out, e.events)
	return out
}

// ClearEvents empties the event log. Containment state is untouched.
func (e *Evaluator) ClearEvents() {
	e.mu.Lock()
	e.events = nil
	e.mu.Unlock()
}

// Close cancels all pending dwell timers and stops the evaluator.
// Evaluate becomes a no-op afterwards.
func (e *Evaluator) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.cancelTimersLocked()
}

// scheduleDwellLocked arms the dwell timer for a region, replacing any
// pending one (re-entry must not stack timers).
func (e *Evaluator) scheduleDwellLocked(r domain.Region) {
	e.cancelDwellLocked(r.ID)

	id := r.ID
	e.dwellTimers[id] = time.AfterFunc(e.dwellDelay, func() {
		e.fireDwell(r)
	})
}

func (e *Evaluator) cancelDwellLocked(id string) {
	if t, ok := e.dwellTimers[id]; ok {
		t.Stop()
		delete(e.dwellTimers, id)
	}
}

func (e *Evaluator) cancelTimersLocked() {
	for id, t := range e.dwellTimers {
		t.Stop()
		delete(e.dwellTimers, id)
	}
}

// fireDwell runs on the timer goroutine once DwellDelay elapses.
func (e *Evaluator) fireDwell(r domain.Region) {
	e.mu.Lock()

	// The timer may race with an exit, a region replacement or Close;
	// containment is the source of truth at fire time.
	if e.closed || !e.inside[r.ID] {
		e.mu.Unlock()
		return
	}
	if _, pending := e.dwellTimers[r.ID]; !pending {
		e.mu.Unlock()
		return
	}
	delete(e.dwellTimers, r.ID)

	pos := e.lastInside[r.ID]
	ev := e.appendLocked(r, domain.EventDwell, pos)
	e.mu.Unlock()

	slog.Debug("Geofence dwell fired", "region", r.ID)
	e.dispatch([]domain.Event{ev})
}

// appendLocked records an event in the ordered log, dropping the
// oldest entries beyond the cap.
func (e *Evaluator) appendLocked(r domain.Region, kind domain.EventKind, p domain.Position) domain.Event {
	ev := domain.Event{
		ID:        uuid.NewString(),
		RegionID:  r.ID,
		Kind:      kind,
		Position:  p,
		Timestamp: time.Now(),
		Message:   r.Message,
	}
	e.events = append(e.events, ev)
	if over := len(e.events) - e.eventLogCap; over > 0 {
		e.events = e.events[over:]
	}
	telemetry.GeofenceEvents.WithLabelValues(string(kind)).Inc()
	return ev
}

func (e *Evaluator) dispatch(events []domain.Event) {
	if e.onEvent == nil {
		return
	}
	for _, ev := range events {
		e.onEvent(ev)
	}
}
