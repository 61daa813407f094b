package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreviewSandboxDeniesBackgroundFeatures(t *testing.T) {
	assert.False(t, Available(FeatureBackgroundLocation, SandboxPreview))
	assert.False(t, Available(FeatureGeofencing, SandboxPreview))

	// Foreground features work everywhere.
	assert.True(t, Available(FeatureForegroundLocation, SandboxPreview))
	assert.True(t, Available(FeatureReverseGeocoding, SandboxPreview))
}

func TestFullSandboxAllowsEverything(t *testing.T) {
	for _, f := range []string{
		FeatureForegroundLocation,
		FeatureBackgroundLocation,
		FeatureGeofencing,
		FeatureReverseGeocoding,
		FeatureSettingsRedirect,
	} {
		assert.True(t, Available(f, SandboxFull), "feature %s", f)
	}
}

func TestUnknownFeature(t *testing.T) {
	assert.False(t, Known("teleportation"))
	assert.False(t, Available("teleportation", SandboxFull))
	assert.Empty(t, Required("teleportation"))
	assert.Nil(t, PlatformRequirements("teleportation"))
}

func TestRequiredReturnsCopies(t *testing.T) {
	a := Required(FeatureBackgroundLocation)
	a[0] = "mutated"
	b := Required(FeatureBackgroundLocation)
	assert.Equal(t, "location", b[0])
}

func TestPlatformRequirements(t *testing.T) {
	reqs := PlatformRequirements(FeatureBackgroundLocation)
	assert.Contains(t, reqs["android"], "android.permission.ACCESS_BACKGROUND_LOCATION")
	assert.Contains(t, reqs["ios"], "UIBackgroundModes:location")
}

func TestLookup(t *testing.T) {
	info := Lookup(FeatureGeofencing, SandboxPreview)
	assert.True(t, info.Known)
	assert.False(t, info.Available)
	assert.Equal(t, SandboxPreview, info.Sandbox)
	assert.Contains(t, info.Required, "region-monitoring")
}
