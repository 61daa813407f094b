package domain

import "testing"

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		lat   float64
		lng   float64
		valid bool
	}{
		{0, 0, true},
		{40.4168, -3.7038, true},
		{-90, 180, true},
		{90, -180, true},
		{90.1, 0, false},
		{-90.1, 0, false},
		{0, 180.1, false},
		{0, -180.1, false},
	}

	for _, tt := range tests {
		err := ValidateCoordinates(tt.lat, tt.lng)
		if (err == nil) != tt.valid {
			t.Errorf("ValidateCoordinates(%f, %f) = %v; want valid=%v", tt.lat, tt.lng, err, tt.valid)
		}
	}
}

func TestValidateRegions(t *testing.T) {
	ok := []Region{
		{ID: "home", Latitude: 40.4, Longitude: -3.7, RadiusM: 100},
		{ID: "office", Latitude: 40.5, Longitude: -3.6, RadiusM: 50},
	}
	if err := ValidateRegions(ok); err != nil {
		t.Fatalf("expected valid set, got %v", err)
	}

	dup := []Region{
		{ID: "home", Latitude: 40.4, Longitude: -3.7, RadiusM: 100},
		{ID: "home", Latitude: 40.5, Longitude: -3.6, RadiusM: 50},
	}
	if err := ValidateRegions(dup); err == nil {
		t.Error("expected duplicate id to be rejected")
	}

	bad := []Region{{ID: "x", Latitude: 91, Longitude: 0, RadiusM: 100}}
	if err := ValidateRegions(bad); err == nil {
		t.Error("expected out-of-range latitude to be rejected")
	}

	zero := []Region{{ID: "x", Latitude: 0, Longitude: 0, RadiusM: 0}}
	if err := ValidateRegions(zero); err == nil {
		t.Error("expected zero radius to be rejected")
	}
}
