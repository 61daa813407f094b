package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/GSDV/solomo/internal/core/domain"
)

// ExportEventsJSON writes the event log as a JSON array
func ExportEventsJSON(w io.Writer, events []domain.Event) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(events)
}

// ExportEventsCSV writes the event log as CSV with headers
func ExportEventsCSV(w io.Writer, events []domain.Event) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	headers := []string{
		"ID", "RegionID", "Kind", "Timestamp",
		"Latitude", "Longitude", "Accuracy", "Message",
	}
	if err := writer.Write(headers); err != nil {
		return err
	}

	for _, e := range events {
		row := []string{
			e.ID,
			e.RegionID,
			string(e.Kind),
			e.Timestamp.Format(time.RFC3339),
			fmt.Sprintf("%.6f", e.Position.Latitude),
			fmt.Sprintf("%.6f", e.Position.Longitude),
			fmt.Sprintf("%.1f", e.Position.Accuracy),
			e.Message,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}

// ExportRegionsJSON writes the region set as a JSON array
func ExportRegionsJSON(w io.Writer, regions []domain.Region) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(regions)
}

// ExportRegionsCSV writes the region set as CSV
func ExportRegionsCSV(w io.Writer, regions []domain.Region) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	headers := []string{"ID", "Label", "Latitude", "Longitude", "RadiusM", "Message"}
	if err := writer.Write(headers); err != nil {
		return err
	}

	for _, r := range regions {
		row := []string{
			r.ID,
			r.Label,
			fmt.Sprintf("%.6f", r.Latitude),
			fmt.Sprintf("%.6f", r.Longitude),
			fmt.Sprintf("%.1f", r.RadiusM),
			r.Message,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}

// geojson shapes, kept local: nothing else in the codebase speaks GeoJSON.
type geoJSONFeature struct {
	Type       string                 `json:"type"`
	Geometry   geoJSONGeometry        `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type geoJSONGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [lng, lat]
}

type geoJSONCollection struct {
	Type     string           `json:"type"`
	Features []geoJSONFeature `json:"features"`
}

// ExportGeoJSON writes events as Point features and regions as
// center-point features carrying their radius, in one FeatureCollection.
func ExportGeoJSON(w io.Writer, regions []domain.Region, events []domain.Event) error {
	fc := geoJSONCollection{
		Type:     "FeatureCollection",
		Features: make([]geoJSONFeature, 0, len(regions)+len(events)),
	}

	for _, r := range regions {
		fc.Features = append(fc.Features, geoJSONFeature{
			Type: "Feature",
			Geometry: geoJSONGeometry{
				Type:        "Point",
				Coordinates: []float64{r.Longitude, r.Latitude},
			},
			Properties: map[string]interface{}{
				"feature_type": "region",
				"id":           r.ID,
				"label":        r.Label,
				"radius_m":     r.RadiusM,
			},
		})
	}

	for _, e := range events {
		fc.Features = append(fc.Features, geoJSONFeature{
			Type: "Feature",
			Geometry: geoJSONGeometry{
				Type:        "Point",
				Coordinates: []float64{e.Position.Longitude, e.Position.Latitude},
			},
			Properties: map[string]interface{}{
				"feature_type": "event",
				"id":           e.ID,
				"region_id":    e.RegionID,
				"kind":         string(e.Kind),
				"timestamp":    e.Timestamp.Format(time.RFC3339),
			},
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(fc)
}
