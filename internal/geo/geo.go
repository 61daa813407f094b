package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for all distance math.
const EarthRadiusMeters = 6371000.0

// Location represents a geographic coordinate.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Distance returns the great-circle distance in meters between two
// coordinates, using the spherical law of cosines. At geofence scale
// (tens of meters to a few kilometers) the error versus haversine is
// well below GPS accuracy.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	if lat1 == lat2 && lng1 == lng2 {
		return 0
	}

	rlat1 := toRad(lat1)
	rlat2 := toRad(lat2)
	dlng := toRad(lng2 - lng1)

	cosine := math.Sin(rlat1)*math.Sin(rlat2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Cos(dlng)

	// Floating point drift can push the value just outside [-1, 1],
	// which would make Acos return NaN.
	if cosine > 1 {
		cosine = 1
	} else if cosine < -1 {
		cosine = -1
	}

	return EarthRadiusMeters * math.Acos(cosine)
}

// DistanceBetween is Distance over Location values.
func DistanceBetween(a, b Location) float64 {
	return Distance(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
