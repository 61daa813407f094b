package domain

import "fmt"

// Region is a circular geofence: a center coordinate plus a radius in
// meters. The registered set is owned by the tracker and replaced
// wholesale on registration.
type Region struct {
	ID        string  `json:"id"`
	Label     string  `json:"label,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusM   float64 `json:"radius_m"`
	Message   string  `json:"message,omitempty"`
}

// Validate checks that a region is usable by the evaluator.
func (r Region) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("region id is required")
	}
	if err := ValidateCoordinates(r.Latitude, r.Longitude); err != nil {
		return fmt.Errorf("region %s: %w", r.ID, err)
	}
	if r.RadiusM <= 0 {
		return fmt.Errorf("region %s: radius must be positive, got %f", r.ID, r.RadiusM)
	}
	return nil
}
