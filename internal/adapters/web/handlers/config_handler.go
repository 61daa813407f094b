package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/GSDV/solomo/internal/core/domain"
	"github.com/GSDV/solomo/internal/core/ports"
)

// persistenceToggler is the slice of the event writer the handler needs.
type persistenceToggler interface {
	SetEnabled(enabled bool)
	IsEnabled() bool
}

// ConfigHandler exposes the tracker configuration surface.
type ConfigHandler struct {
	Service     ports.LocationService
	Persistence persistenceToggler // nil when no store is configured
}

// NewConfigHandler creates a new ConfigHandler
func NewConfigHandler(service ports.LocationService, persistence persistenceToggler) *ConfigHandler {
	return &ConfigHandler{Service: service, Persistence: persistence}
}

// HandleGetConfig returns the current tracker configuration
func (h *ConfigHandler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"tracker": h.Service.Config(),
	}
	if h.Persistence != nil {
		resp["persistenceEnabled"] = h.Persistence.IsEnabled()
	}
	writeJSON(w, resp)
}

// HandleUpdateConfig replaces the tracker configuration
func (h *ConfigHandler) HandleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg domain.TrackerConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.UpdateConfig(cfg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, h.Service.Config())
}

// HandleTogglePersistence toggles event persistence
func (h *ConfigHandler) HandleTogglePersistence(w http.ResponseWriter, r *http.Request) {
	if h.Persistence == nil {
		http.Error(w, "Persistence is not configured", http.StatusConflict)
		return
	}

	enabledStr := r.URL.Query().Get("enabled")
	enabled := enabledStr == "true"
	h.Persistence.SetEnabled(enabled)

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"persistence_updated","enabled":%v}`, enabled)
}
