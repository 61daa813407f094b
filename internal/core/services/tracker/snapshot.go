package tracker

import (
	"time"

	"github.com/GSDV/solomo/internal/core/domain"
	"github.com/GSDV/solomo/internal/core/services/capability"
)

// Sandbox the tracker reports capabilities against. Overridable for
// preview builds via SetSandbox.
var defaultSandbox = capability.SandboxFull

// SetSandbox switches the sandbox used for snapshot warnings.
func (t *Tracker) SetSandbox(s capability.Sandbox) {
	t.mu.Lock()
	t.sandbox = s
	t.mu.Unlock()
}

// Snapshot returns a read-only copy of the full tracker state plus
// derived warnings and suggestions. Nothing in it aliases tracker
// internals.
func (t *Tracker) Snapshot() domain.Snapshot {
	t.mu.Lock()

	s := domain.Snapshot{
		FetchedAt:   t.fetchedAt,
		Permission:  t.permission,
		WatchState:  t.watchState,
		WatchWanted: t.watchWant,
		AppState:    t.appState,
	}
	if t.position != nil {
		pos := *t.position
		s.Position = &pos
		s.FromCache = time.Since(t.fetchedAt) < t.cfg.MaxCacheAge
	}
	if t.lastErr != nil {
		le := *t.lastErr
		s.Error = &le
	}

	cfg := t.cfg
	pausedByBG := t.pausedByBG
	sandbox := t.sandbox
	if sandbox == "" {
		sandbox = defaultSandbox
	}
	t.mu.Unlock()

	s.Regions = t.evaluator.Regions()
	s.Events = t.evaluator.Events()
	s.Warnings, s.Suggestions = advise(s, cfg, pausedByBG, sandbox)
	return s
}

// advise derives the warning and suggestion lists shown to the UI.
// The rules are deterministic over the snapshot.
func advise(s domain.Snapshot, cfg domain.TrackerConfig, pausedByBG bool, sandbox capability.Sandbox) (warnings, suggestions []string) {
	if s.Permission == domain.PermissionDenied {
		warnings = append(warnings, "location permission is denied")
		suggestions = append(suggestions, "open system settings to grant location access")
	}

	if cfg.BackgroundMode && !capability.Available(capability.FeatureBackgroundLocation, sandbox) {
		warnings = append(warnings, "background mode is configured but unavailable in this environment")
	}

	if s.Position != nil && !s.FromCache && s.WatchState == domain.WatchStopped {
		suggestions = append(suggestions, "cached position is stale; start a watch for continuous updates")
	}

	if pausedByBG && s.WatchWanted {
		suggestions = append(suggestions, "watch is paused while backgrounded and resumes on foreground")
	}

	return warnings, suggestions
}
