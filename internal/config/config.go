package config

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/GSDV/solomo/internal/core/domain"
)

// Config holds all application configuration.
type Config struct {
	Addr     string
	DBPath   string
	Provider string // "sim" or "mqtt"
	Sandbox  string // "full" or "preview"
	Debug    bool

	// MQTT provider settings (ignored for the simulator)
	MQTTBroker   string
	MQTTTopic    string
	MQTTClientID string

	// Reverse geocoding; empty disables the endpoint
	GeocodeURL string

	// bcrypt hash of the API key for mutating endpoints; empty disables auth
	APIKeyHash string

	Tracker domain.TrackerConfig
}

// Load parses command line flags and environment variables to populate Config.
// Flags take precedence over environment variables.
func Load() *Config {
	cfg := &Config{Tracker: domain.DefaultTrackerConfig()}

	// Defaults and Environment Variables
	cfg.Addr = getEnv("SOLOMO_ADDR", ":8080")
	cfg.DBPath = getEnv("SOLOMO_DB", getDefaultDBPath())
	cfg.Provider = getEnv("SOLOMO_PROVIDER", "sim")
	cfg.Sandbox = getEnv("SOLOMO_SANDBOX", "full")
	cfg.MQTTBroker = getEnv("SOLOMO_MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTTTopic = getEnv("SOLOMO_MQTT_TOPIC", "solomo/position")
	cfg.MQTTClientID = getEnv("SOLOMO_MQTT_CLIENT_ID", "solomo-server")
	cfg.GeocodeURL = getEnv("SOLOMO_GEOCODE_URL", "https://nominatim.openstreetmap.org")
	cfg.APIKeyHash = getEnv("SOLOMO_API_KEY_HASH", "")

	cacheAge := getEnvDuration("SOLOMO_CACHE_MAX_AGE", cfg.Tracker.MaxCacheAge)
	fetchTimeout := getEnvDuration("SOLOMO_FETCH_TIMEOUT", cfg.Tracker.FetchTimeout)
	updateInterval := getEnvDuration("SOLOMO_UPDATE_INTERVAL", cfg.Tracker.UpdateInterval)
	dwellDelay := getEnvDuration("SOLOMO_DWELL_DELAY", cfg.Tracker.DwellDelay)
	distanceFilter := getEnvFloat("SOLOMO_DISTANCE_FILTER", cfg.Tracker.DistanceFilter)
	accuracy := getEnv("SOLOMO_ACCURACY", string(cfg.Tracker.Accuracy))
	resume := getEnv("SOLOMO_RESUME_MODE", string(cfg.Tracker.ResumeMode))
	background := getEnvBool("SOLOMO_BACKGROUND", cfg.Tracker.BackgroundMode)
	eventCap := int(getEnvFloat("SOLOMO_EVENT_LOG_CAP", float64(cfg.Tracker.EventLogCap)))

	// Command Line Flags (Override Env)
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite database (empty to disable persistence)")
	flag.StringVar(&cfg.Provider, "provider", cfg.Provider, "Location provider: sim or mqtt")
	flag.StringVar(&cfg.Sandbox, "sandbox", cfg.Sandbox, "Capability sandbox: full or preview")
	flag.StringVar(&cfg.MQTTBroker, "mqtt-broker", cfg.MQTTBroker, "MQTT broker URL")
	flag.StringVar(&cfg.MQTTTopic, "mqtt-topic", cfg.MQTTTopic, "MQTT position topic")
	flag.StringVar(&cfg.GeocodeURL, "geocode-url", cfg.GeocodeURL, "Reverse geocoding base URL (empty to disable)")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable verbose debug logging")
	flag.DurationVar(&cacheAge, "cache-max-age", cacheAge, "Maximum age before a cached position is stale")
	flag.DurationVar(&fetchTimeout, "fetch-timeout", fetchTimeout, "Timeout for a single position fetch")
	flag.DurationVar(&updateInterval, "update-interval", updateInterval, "Target interval between watch updates")
	flag.DurationVar(&dwellDelay, "dwell-delay", dwellDelay, "Time inside a region before a dwell event fires")
	flag.Float64Var(&distanceFilter, "distance-filter", distanceFilter, "Minimum movement in meters between watch updates")
	flag.StringVar(&accuracy, "accuracy", accuracy, "Position accuracy: low, balanced or high")
	flag.StringVar(&resume, "resume-mode", resume, "Watch resume on foreground: auto or always")
	flag.BoolVar(&background, "background", background, "Keep the watch alive while backgrounded")

	flag.Parse()

	cfg.Tracker.MaxCacheAge = cacheAge
	cfg.Tracker.FetchTimeout = fetchTimeout
	cfg.Tracker.UpdateInterval = updateInterval
	cfg.Tracker.DwellDelay = dwellDelay
	cfg.Tracker.DistanceFilter = distanceFilter
	cfg.Tracker.Accuracy = domain.AccuracyLevel(accuracy)
	cfg.Tracker.ResumeMode = domain.ResumeMode(resume)
	cfg.Tracker.BackgroundMode = background
	cfg.Tracker.EventLogCap = eventCap
	cfg.Tracker.Normalize()

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getDefaultDBPath returns the default database path in user's home directory.
// Creates the directory if it doesn't exist.
func getDefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Warning: Could not get user home directory, using current dir: %v", err)
		return "solomo.db"
	}

	dir := filepath.Join(home, ".solomo")

	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("Warning: Could not create .solomo directory, using current dir: %v", err)
		return "solomo.db"
	}

	return filepath.Join(dir, "solomo.db")
}
