package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/GSDV/solomo/internal/core/domain"
	"github.com/GSDV/solomo/internal/core/ports"
)

// RegionHandler manages the geofence set and the event log.
type RegionHandler struct {
	Service ports.LocationService
	Store   ports.RegionStore // nil when persistence is disabled
}

// NewRegionHandler creates a new RegionHandler
func NewRegionHandler(service ports.LocationService, store ports.RegionStore) *RegionHandler {
	return &RegionHandler{Service: service, Store: store}
}

// HandleList returns the registered regions
func (h *RegionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Service.Regions())
}

// HandleRegister replaces the geofence set wholesale
func (h *RegionHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var regions []domain.Region
	if err := json.NewDecoder(r.Body).Decode(&regions); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.RegisterRegions(regions); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if h.Store != nil {
		if err := h.Store.SaveRegions(r.Context(), regions); err != nil {
			// Registration already took effect in memory; persistence
			// failure is reported but not rolled back.
			writeJSONStatus(w, http.StatusOK, map[string]interface{}{
				"registered": len(regions),
				"warning":    "regions active but not persisted: " + err.Error(),
			})
			return
		}
	}

	writeJSON(w, map[string]interface{}{"registered": len(regions)})
}

// HandleUnregister clears the geofence set
func (h *RegionHandler) HandleUnregister(w http.ResponseWriter, r *http.Request) {
	h.Service.UnregisterRegions()

	if h.Store != nil {
		if err := h.Store.SaveRegions(r.Context(), nil); err != nil {
			writeJSONStatus(w, http.StatusOK, map[string]string{
				"status":  "unregistered",
				"warning": "in-memory only: " + err.Error(),
			})
			return
		}
	}

	writeJSON(w, map[string]string{"status": "unregistered"})
}

// HandleEvents returns the in-memory event log
func (h *RegionHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Service.Events())
}

// HandleClearEvents empties the in-memory event log
func (h *RegionHandler) HandleClearEvents(w http.ResponseWriter, r *http.Request) {
	h.Service.ClearEvents()
	writeJSON(w, map[string]string{"status": "cleared"})
}
