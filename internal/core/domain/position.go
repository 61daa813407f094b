package domain

import "time"

// Position is a single location sample delivered by a provider.
// Samples are immutable: the tracker replaces its current position
// wholesale on every update and never merges fields.
type Position struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"` // horizontal accuracy radius in meters
	Altitude  float64   `json:"altitude"`
	Speed     float64   `json:"speed"`   // meters per second
	Heading   float64   `json:"heading"` // degrees clockwise from north
	Timestamp time.Time `json:"timestamp"`
}

// Age returns the elapsed time since the sample was taken.
func (p Position) Age(now time.Time) time.Duration {
	return now.Sub(p.Timestamp)
}

// FetchResult is the outcome of a single current-location request.
// Position is nil when the fetch failed; Err carries the reason.
type FetchResult struct {
	Granted   bool           `json:"granted"`
	Position  *Position      `json:"position"`
	FromCache bool           `json:"from_cache"`
	Err       *LocationError `json:"error,omitempty"`
}
