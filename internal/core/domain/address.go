package domain

import "strings"

// Address is the result of a reverse-geocode lookup.
type Address struct {
	DisplayName string `json:"display_name"`
	Road        string `json:"road,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Country     string `json:"country,omitempty"`
	Postcode    string `json:"postcode,omitempty"`
}

// Short returns a compact one-line rendering, falling back to the
// provider's display name when the structured fields are empty.
func (a Address) Short() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Road, a.City, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return a.DisplayName
	}
	return strings.Join(parts, ", ")
}
