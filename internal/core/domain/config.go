package domain

import (
	"fmt"
	"time"
)

// AccuracyLevel is the accuracy hint passed to the provider.
type AccuracyLevel string

const (
	AccuracyLow      AccuracyLevel = "low"
	AccuracyBalanced AccuracyLevel = "balanced"
	AccuracyHigh     AccuracyLevel = "high"
)

// ResumeMode decides what happens when the app returns to the
// foreground while a watch intent is still set.
//
//	auto:   resume only a watch that the background transition itself paused
//	always: resume whenever the caller intent flag is still set
type ResumeMode string

const (
	ResumeAuto   ResumeMode = "auto"
	ResumeAlways ResumeMode = "always"
)

// Tracker configuration defaults.
const (
	DefaultMaxCacheAge    = 30 * time.Second
	DefaultFetchTimeout   = 15 * time.Second
	DefaultUpdateInterval = 5 * time.Second
	DefaultDistanceFilter = 10.0 // meters
	DefaultDwellDelay     = 10 * time.Second
	DefaultEventLogCap    = 1000
)

// TrackerConfig is the runtime configuration of the location tracker.
// It can be replaced while the tracker is running; the new values take
// effect on the next fetch or watch (re)start.
type TrackerConfig struct {
	Accuracy       AccuracyLevel `json:"accuracy"`
	MaxCacheAge    time.Duration `json:"max_cache_age"`
	FetchTimeout   time.Duration `json:"fetch_timeout"`
	UpdateInterval time.Duration `json:"update_interval"`
	DistanceFilter float64       `json:"distance_filter_m"`
	BackgroundMode bool          `json:"background_mode"`
	ResumeMode     ResumeMode    `json:"resume_mode"`
	DwellDelay     time.Duration `json:"dwell_delay"`
	EventLogCap    int           `json:"event_log_cap"`
}

// DefaultTrackerConfig returns the config used when the caller supplies
// nothing.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		Accuracy:       AccuracyBalanced,
		MaxCacheAge:    DefaultMaxCacheAge,
		FetchTimeout:   DefaultFetchTimeout,
		UpdateInterval: DefaultUpdateInterval,
		DistanceFilter: DefaultDistanceFilter,
		ResumeMode:     ResumeAuto,
		DwellDelay:     DefaultDwellDelay,
		EventLogCap:    DefaultEventLogCap,
	}
}

// Normalize fills zero values with defaults so a partially populated
// config is always usable.
func (c TrackerConfig) Normalize() TrackerConfig {
	def := DefaultTrackerConfig()
	if c.Accuracy == "" {
		c.Accuracy = def.Accuracy
	}
	if c.MaxCacheAge <= 0 {
		c.MaxCacheAge = def.MaxCacheAge
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = def.FetchTimeout
	}
	if c.UpdateInterval <= 0 {
		c.UpdateInterval = def.UpdateInterval
	}
	if c.DistanceFilter <= 0 {
		c.DistanceFilter = def.DistanceFilter
	}
	if c.ResumeMode == "" {
		c.ResumeMode = def.ResumeMode
	}
	if c.DwellDelay <= 0 {
		c.DwellDelay = def.DwellDelay
	}
	if c.EventLogCap <= 0 {
		c.EventLogCap = def.EventLogCap
	}
	return c
}

// Validate rejects values Normalize cannot repair.
func (c TrackerConfig) Validate() error {
	switch c.Accuracy {
	case "", AccuracyLow, AccuracyBalanced, AccuracyHigh:
	default:
		return fmt.Errorf("invalid accuracy level: %q", c.Accuracy)
	}
	switch c.ResumeMode {
	case "", ResumeAuto, ResumeAlways:
	default:
		return fmt.Errorf("invalid resume mode: %q", c.ResumeMode)
	}
	return nil
}
