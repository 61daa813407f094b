package domain

import "fmt"

// Validation Helpers

// ValidateCoordinates checks that a lat/lng pair is on the globe.
func ValidateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got %f", lat)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got %f", lng)
	}
	return nil
}

// ValidateRegions validates a whole registration set and rejects
// duplicate identifiers, since containment state is keyed by ID.
func ValidateRegions(regions []Region) error {
	seen := make(map[string]struct{}, len(regions))
	for _, r := range regions {
		if err := r.Validate(); err != nil {
			return err
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("duplicate region id: %s", r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}
