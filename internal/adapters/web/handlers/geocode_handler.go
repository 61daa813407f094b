package handlers

import (
	"net/http"
	"strconv"

	"github.com/GSDV/solomo/internal/core/domain"
	"github.com/GSDV/solomo/internal/core/ports"
)

// GeocodeHandler proxies reverse-geocode lookups through the cached
// geocoder.
type GeocodeHandler struct {
	Geocoder ports.Geocoder
}

// NewGeocodeHandler creates a new GeocodeHandler
func NewGeocodeHandler(geocoder ports.Geocoder) *GeocodeHandler {
	return &GeocodeHandler{Geocoder: geocoder}
}

// HandleReverse resolves ?lat=..&lng=.. into an address
func (h *GeocodeHandler) HandleReverse(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		http.Error(w, "lat is required and must be a number", http.StatusBadRequest)
		return
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil {
		http.Error(w, "lng is required and must be a number", http.StatusBadRequest)
		return
	}

	addr, err := h.Geocoder.Reverse(r.Context(), lat, lng)
	if err != nil {
		le := domain.AsLocationError(err, domain.ErrNetwork)
		writeJSONStatus(w, http.StatusBadGateway, map[string]interface{}{"error": le})
		return
	}

	writeJSON(w, addr)
}
