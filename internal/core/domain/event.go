package domain

import "time"

// EventKind classifies a geofence transition.
type EventKind string

const (
	EventEnter EventKind = "enter"
	EventExit  EventKind = "exit"
	EventDwell EventKind = "dwell"
)

// Event records a geofence transition for one region. Events are
// appended to an ordered log and cleared explicitly by the caller.
type Event struct {
	ID        string    `json:"id"`
	RegionID  string    `json:"region_id"`
	Kind      EventKind `json:"kind"`
	Position  Position  `json:"position"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
}
