package handlers

import (
	"log"
	"net/http"

	"github.com/GSDV/solomo/internal/adapters/reporting"
	"github.com/GSDV/solomo/internal/core/ports"
	"github.com/GSDV/solomo/internal/core/services/export"
)

// ExportHandler streams the event log and region set as downloads.
type ExportHandler struct {
	Service ports.LocationService
	PDF     *reporting.PDFExporter
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(service ports.LocationService) *ExportHandler {
	return &ExportHandler{
		Service: service,
		PDF:     reporting.NewPDFExporter(),
	}
}

// HandleExport exports events or regions in the requested format
// (?format=json|csv|geojson|pdf&type=events|regions)
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	dataType := r.URL.Query().Get("type")
	if dataType == "" {
		dataType = "events"
	}

	regions := h.Service.Regions()
	events := h.Service.Events()

	switch format {
	case "geojson":
		w.Header().Set("Content-Type", "application/geo+json")
		w.Header().Set("Content-Disposition", "attachment; filename=solomo.geojson")
		if err := export.ExportGeoJSON(w, regions, events); err != nil {
			log.Printf("GeoJSON export error: %v", err)
		}

	case "pdf":
		data, err := h.PDF.ExportActivityReport(regions, events)
		if err != nil {
			http.Error(w, "PDF generation failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", "attachment; filename=solomo_report.pdf")
		w.Write(data)

	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		if dataType == "regions" {
			w.Header().Set("Content-Disposition", "attachment; filename=solomo_regions.csv")
			if err := export.ExportRegionsCSV(w, regions); err != nil {
				log.Printf("CSV export error: %v", err)
			}
			return
		}
		w.Header().Set("Content-Disposition", "attachment; filename=solomo_events.csv")
		if err := export.ExportEventsCSV(w, events); err != nil {
			log.Printf("CSV export error: %v", err)
		}

	default:
		w.Header().Set("Content-Type", "application/json")
		if dataType == "regions" {
			w.Header().Set("Content-Disposition", "attachment; filename=solomo_regions.json")
			if err := export.ExportRegionsJSON(w, regions); err != nil {
				log.Printf("JSON export error: %v", err)
			}
			return
		}
		w.Header().Set("Content-Disposition", "attachment; filename=solomo_events.json")
		if err := export.ExportEventsJSON(w, events); err != nil {
			log.Printf("JSON export error: %v", err)
		}
	}
}
