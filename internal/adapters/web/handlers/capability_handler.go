package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/GSDV/solomo/internal/core/services/capability"
)

// CapabilityHandler serves the feature-capability lookup tables.
type CapabilityHandler struct {
	Sandbox capability.Sandbox
}

// NewCapabilityHandler creates a new CapabilityHandler
func NewCapabilityHandler(sandbox capability.Sandbox) *CapabilityHandler {
	return &CapabilityHandler{Sandbox: sandbox}
}

// HandleLookup returns the capability info for one feature
func (h *CapabilityHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	feature := mux.Vars(r)["feature"]

	info := capability.Lookup(feature, h.Sandbox)
	if !info.Known {
		writeJSONStatus(w, http.StatusNotFound, info)
		return
	}
	writeJSON(w, info)
}
