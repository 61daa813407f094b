package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GSDV/solomo/internal/adapters/web/middleware"
	"github.com/GSDV/solomo/internal/core/services/capability"
)

func sandboxFrom(name string) capability.Sandbox {
	if name == string(capability.SandboxPreview) {
		return capability.SandboxPreview
	}
	return capability.SandboxFull
}

func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()

	// Rate limiters. Fetch and permission prompts hit the platform API
	// directly, so they get tighter budgets than the read-only routes.
	fetchLimiter := middleware.NewRateLimiter(30, 1*time.Minute)
	permLimiter := middleware.NewRateLimiter(5, 1*time.Minute)

	limitFetch := middleware.RateLimitMiddleware(fetchLimiter)
	limitPerm := middleware.RateLimitMiddleware(permLimiter)
	auth := middleware.APIKeyMiddleware(s.apiKeyHash)

	// Tracker state and lifecycle
	r.HandleFunc("/api/state", s.LocationHandler.HandleState).Methods(http.MethodGet)
	r.Handle("/api/permission/request", auth(limitPerm(http.HandlerFunc(s.LocationHandler.HandleRequestPermission)))).Methods(http.MethodPost)
	r.Handle("/api/location/fetch", limitFetch(http.HandlerFunc(s.LocationHandler.HandleFetch))).Methods(http.MethodPost)
	r.Handle("/api/watch/start", auth(http.HandlerFunc(s.LocationHandler.HandleStartWatch))).Methods(http.MethodPost)
	r.Handle("/api/watch/stop", auth(http.HandlerFunc(s.LocationHandler.HandleStopWatch))).Methods(http.MethodPost)
	r.Handle("/api/app-state", auth(http.HandlerFunc(s.LocationHandler.HandleAppState))).Methods(http.MethodPost)
	r.Handle("/api/settings/open", auth(http.HandlerFunc(s.LocationHandler.HandleOpenSettings))).Methods(http.MethodPost)

	// Configuration
	r.HandleFunc("/api/config", s.ConfigHandler.HandleGetConfig).Methods(http.MethodGet)
	r.Handle("/api/config", auth(http.HandlerFunc(s.ConfigHandler.HandleUpdateConfig))).Methods(http.MethodPut)
	r.Handle("/api/config/persistence", auth(http.HandlerFunc(s.ConfigHandler.HandleTogglePersistence))).Methods(http.MethodPost)

	// Geofence regions and events
	r.HandleFunc("/api/regions", s.RegionHandler.HandleList).Methods(http.MethodGet)
	r.Handle("/api/regions", auth(http.HandlerFunc(s.RegionHandler.HandleRegister))).Methods(http.MethodPost)
	r.Handle("/api/regions", auth(http.HandlerFunc(s.RegionHandler.HandleUnregister))).Methods(http.MethodDelete)
	r.HandleFunc("/api/events", s.RegionHandler.HandleEvents).Methods(http.MethodGet)
	r.Handle("/api/events", auth(http.HandlerFunc(s.RegionHandler.HandleClearEvents))).Methods(http.MethodDelete)

	// Exports
	r.HandleFunc("/api/export", s.ExportHandler.HandleExport).Methods(http.MethodGet)

	// Reverse geocoding (optional)
	if s.GeocodeHandler != nil {
		r.HandleFunc("/api/geocode/reverse", s.GeocodeHandler.HandleReverse).Methods(http.MethodGet)
	}

	// Capability tables
	r.HandleFunc("/api/capabilities/{feature}", s.CapabilityHandler.HandleLookup).Methods(http.MethodGet)

	// WebSocket endpoint
	r.HandleFunc("/ws", s.WSManager.HandleWebSocket)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	return r
}
