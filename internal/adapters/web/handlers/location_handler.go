package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/GSDV/solomo/internal/core/domain"
	"github.com/GSDV/solomo/internal/core/ports"
)

// LocationHandler exposes the tracker's imperative operations.
type LocationHandler struct {
	Service ports.LocationService
}

// NewLocationHandler creates a new LocationHandler
func NewLocationHandler(service ports.LocationService) *LocationHandler {
	return &LocationHandler{Service: service}
}

// HandleState returns the full tracker snapshot
func (h *LocationHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Service.Snapshot())
}

// HandleRequestPermission triggers a platform permission request
func (h *LocationHandler) HandleRequestPermission(w http.ResponseWriter, r *http.Request) {
	status, err := h.Service.RequestPermission(r.Context())

	resp := map[string]interface{}{"permission": status}
	if err != nil {
		resp["error"] = domain.AsLocationError(err, domain.ErrUnknown)
	}
	writeJSON(w, resp)
}

// HandleFetch performs one current-location fetch
func (h *LocationHandler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Service.Current(r.Context()))
}

// HandleStartWatch starts the continuous watch
func (h *LocationHandler) HandleStartWatch(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.StartWatch(); err != nil {
		writeJSONStatus(w, http.StatusBadGateway, map[string]interface{}{
			"error": domain.AsLocationError(err, domain.ErrUnknown),
		})
		return
	}
	writeJSON(w, map[string]string{"status": "watching"})
}

// HandleStopWatch stops the continuous watch
func (h *LocationHandler) HandleStopWatch(w http.ResponseWriter, r *http.Request) {
	h.Service.StopWatch()
	writeJSON(w, map[string]string{"status": "stopped"})
}

// HandleAppState applies a foreground/background transition
func (h *LocationHandler) HandleAppState(w http.ResponseWriter, r *http.Request) {
	var req struct {
		State domain.AppState `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	switch req.State {
	case domain.AppForeground, domain.AppBackground:
	default:
		http.Error(w, "state must be foreground or background", http.StatusBadRequest)
		return
	}

	h.Service.SetAppState(req.State)
	writeJSON(w, map[string]interface{}{"app_state": req.State})
}

// HandleOpenSettings asks the platform to show its location settings
func (h *LocationHandler) HandleOpenSettings(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.OpenSettings(); err != nil {
		writeJSONStatus(w, http.StatusBadGateway, map[string]interface{}{
			"error": domain.AsLocationError(err, domain.ErrSettings),
		})
		return
	}
	writeJSON(w, map[string]string{"status": "opened"})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
