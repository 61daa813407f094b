package capability

// Feature names understood by the lookup tables.
const (
	FeatureForegroundLocation = "foreground_location"
	FeatureBackgroundLocation = "background_location"
	FeatureGeofencing         = "geofencing"
	FeatureReverseGeocoding   = "reverse_geocoding"
	FeatureSettingsRedirect   = "settings_redirect"
)

// Sandbox is the runtime environment the host app executes in. Preview
// builds run in a limited-capability sandbox without background
// execution or native region monitoring.
type Sandbox string

const (
	SandboxFull    Sandbox = "full"
	SandboxPreview Sandbox = "preview"
)

// requiredCapabilities maps a feature to the abstract capability
// strings it needs from the platform.
var requiredCapabilities = map[string][]string{
	FeatureForegroundLocation: {"location"},
	FeatureBackgroundLocation: {"location", "background-execution"},
	FeatureGeofencing:         {"location", "region-monitoring"},
	FeatureReverseGeocoding:   {"network"},
	FeatureSettingsRedirect:   {"system-settings"},
}

// platformRequirements maps a feature to the per-platform manifest
// entries an embedding app must declare.
var platformRequirements = map[string]map[string][]string{
	FeatureForegroundLocation: {
		"android": {"android.permission.ACCESS_FINE_LOCATION", "android.permission.ACCESS_COARSE_LOCATION"},
		"ios":     {"NSLocationWhenInUseUsageDescription"},
	},
	FeatureBackgroundLocation: {
		"android": {"android.permission.ACCESS_BACKGROUND_LOCATION", "android.permission.FOREGROUND_SERVICE"},
		"ios":     {"NSLocationAlwaysAndWhenInUseUsageDescription", "UIBackgroundModes:location"},
	},
	FeatureGeofencing: {
		"android": {"android.permission.ACCESS_FINE_LOCATION"},
		"ios":     {"NSLocationAlwaysAndWhenInUseUsageDescription"},
	},
	FeatureReverseGeocoding: {
		"android": {"android.permission.INTERNET"},
		"ios":     {},
	},
	FeatureSettingsRedirect: {
		"android": {},
		"ios":     {},
	},
}

// previewUnavailable lists features the preview sandbox cannot provide.
// Background execution and native region monitoring need a full build,
// which is why geofence evaluation happens in-process here.
var previewUnavailable = map[string]bool{
	FeatureBackgroundLocation: true,
	FeatureGeofencing:         true,
}

// Known reports whether the feature name exists in the tables.
func Known(feature string) bool {
	_, ok := requiredCapabilities[feature]
	return ok
}

// Required returns the capability strings a feature needs.
func Required(feature string) []string {
	caps := requiredCapabilities[feature]
	out := make([]string, len(caps))
	copy(out, caps)
	return out
}

// PlatformRequirements returns per-platform manifest requirements for a
// feature, keyed by platform name.
func PlatformRequirements(feature string) map[string][]string {
	reqs, ok := platformRequirements[feature]
	if !ok {
		return nil
	}
	out := make(map[string][]string, len(reqs))
	for platform, entries := range reqs {
		c := make([]string, len(entries))
		copy(c, entries)
		out[platform] = c
	}
	return out
}

// Available reports whether a feature works in the given sandbox.
// Unknown features are never available.
func Available(feature string, sandbox Sandbox) bool {
	if !Known(feature) {
		return false
	}
	if sandbox == SandboxPreview && previewUnavailable[feature] {
		return false
	}
	return true
}

// Info is the full lookup result for one feature.
type Info struct {
	Feature   string              `json:"feature"`
	Known     bool                `json:"known"`
	Required  []string            `json:"required_capabilities"`
	Platform  map[string][]string `json:"platform_requirements"`
	Available bool                `json:"available"`
	Sandbox   Sandbox             `json:"sandbox"`
}

// Lookup bundles all tables into one response.
func Lookup(feature string, sandbox Sandbox) Info {
	return Info{
		Feature:   feature,
		Known:     Known(feature),
		Required:  Required(feature),
		Platform:  PlatformRequirements(feature),
		Available: Available(feature, sandbox),
		Sandbox:   sandbox,
	}
}
