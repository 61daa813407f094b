package domain

import "time"

// PermissionStatus tracks the platform location permission.
type PermissionStatus string

const (
	PermissionUnknown PermissionStatus = "unknown"
	PermissionGranted PermissionStatus = "granted"
	PermissionDenied  PermissionStatus = "denied"
)

// WatchState is the continuous-watch lifecycle.
// Transitions: stopped -> starting -> watching -> stopped.
type WatchState string

const (
	WatchStopped  WatchState = "stopped"
	WatchStarting WatchState = "starting"
	WatchWatching WatchState = "watching"
)

// AppState mirrors the host application's foreground/background state.
type AppState string

const (
	AppForeground AppState = "foreground"
	AppBackground AppState = "background"
)

// Snapshot is a read-only copy of the tracker state handed to callers.
// Nothing in it aliases tracker internals; mutating a snapshot has no
// effect on the tracker.
type Snapshot struct {
	Position    *Position        `json:"position"`
	FetchedAt   time.Time        `json:"fetched_at"`
	FromCache   bool             `json:"from_cache"`
	Error       *LocationError   `json:"error,omitempty"`
	Permission  PermissionStatus `json:"permission"`
	WatchState  WatchState       `json:"watch_state"`
	WatchWanted bool             `json:"watch_wanted"`
	AppState    AppState         `json:"app_state"`
	Regions     []Region         `json:"regions"`
	Events      []Event          `json:"events"`
	Warnings    []string         `json:"warnings"`
	Suggestions []string         `json:"suggestions"`
}
