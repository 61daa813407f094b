package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GSDV/solomo/internal/adapters/web/server"
	"github.com/GSDV/solomo/internal/core/domain"
	"github.com/GSDV/solomo/internal/telemetry"
)

// stubService is a canned LocationService good enough to exercise
// routing, decoding and status codes.
type stubService struct {
	permission domain.PermissionStatus
	fetch      domain.FetchResult
	regions    []domain.Region
	events     []domain.Event
	config     domain.TrackerConfig

	startWatchErr error
	appState      domain.AppState
	registerErr   error
}

func (s *stubService) RequestPermission(ctx context.Context) (domain.PermissionStatus, error) {
	return s.permission, nil
}
func (s *stubService) Current(ctx context.Context) domain.FetchResult { return s.fetch }
func (s *stubService) StartWatch() error                              { return s.startWatchErr }
func (s *stubService) StopWatch()                                     {}
func (s *stubService) SetAppState(state domain.AppState)              { s.appState = state }
func (s *stubService) Config() domain.TrackerConfig                   { return s.config }
func (s *stubService) UpdateConfig(cfg domain.TrackerConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.config = cfg
	return nil
}
func (s *stubService) RegisterRegions(regions []domain.Region) error {
	if s.registerErr != nil {
		return s.registerErr
	}
	s.regions = regions
	return nil
}
func (s *stubService) UnregisterRegions()       { s.regions = nil }
func (s *stubService) Regions() []domain.Region { return s.regions }
func (s *stubService) Events() []domain.Event   { return s.events }
func (s *stubService) ClearEvents()             { s.events = nil }
func (s *stubService) OpenSettings() error      { return nil }
func (s *stubService) Snapshot() domain.Snapshot {
	return domain.Snapshot{Permission: s.permission, AppState: domain.AppForeground}
}
func (s *stubService) Close() {}

func setupServer(t *testing.T, svc *stubService) *httptest.Server {
	t.Helper()
	telemetry.InitMetrics()

	if svc.config.MaxCacheAge == 0 {
		svc.config = domain.DefaultTrackerConfig()
	}

	srv := server.NewServer(":0", svc, nil, server.Options{})
	ts := httptest.NewServer(server.SetupRoutes(srv))
	t.Cleanup(ts.Close)
	return ts
}

func TestServer_HandleState(t *testing.T) {
	svc := &stubService{permission: domain.PermissionGranted}
	ts := setupServer(t, svc)

	resp, err := http.Get(ts.URL + "/api/state")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var snap domain.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, domain.PermissionGranted, snap.Permission)
}

func TestServer_RegisterRegions(t *testing.T) {
	svc := &stubService{}
	ts := setupServer(t, svc)

	regions := []domain.Region{
		{ID: "office", Latitude: 40.4168, Longitude: -3.7038, RadiusM: 100},
	}
	body, _ := json.Marshal(regions)

	resp, err := http.Post(ts.URL+"/api/regions", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, svc.regions, 1)
}

func TestServer_RegisterRegionsInvalidBody(t *testing.T) {
	ts := setupServer(t, &stubService{})

	resp, err := http.Post(ts.URL+"/api/regions", "application/json", bytes.NewReader([]byte("not json")))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_AppStateValidation(t *testing.T) {
	tests := []struct {
		name           string
		payload        string
		expectedStatus int
	}{
		{"foreground", `{"state":"foreground"}`, http.StatusOK},
		{"background", `{"state":"background"}`, http.StatusOK},
		{"unknown state", `{"state":"hibernating"}`, http.StatusBadRequest},
		{"garbage", `nope`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupServer(t, &stubService{})

			resp, err := http.Post(ts.URL+"/api/app-state", "application/json", bytes.NewReader([]byte(tt.payload)))
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	ts := setupServer(t, &stubService{})

	resp, err := http.Get(ts.URL + "/api/watch/start")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServer_CapabilityLookup(t *testing.T) {
	ts := setupServer(t, &stubService{})

	resp, err := http.Get(ts.URL + "/api/capabilities/geofencing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(ts.URL + "/api/capabilities/teleportation")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestServer_UpdateConfigRejectsInvalid(t *testing.T) {
	ts := setupServer(t, &stubService{})

	body := []byte(`{"maxCacheAge":-5}`)
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/config", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_ExportEventsJSON(t *testing.T) {
	svc := &stubService{
		events: []domain.Event{{ID: "e1", RegionID: "office", Kind: domain.EventEnter}},
	}
	ts := setupServer(t, svc)

	resp, err := http.Get(ts.URL + "/api/export?format=json&type=events")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "solomo_events.json")

	var events []domain.Event
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&events))
	assert.Len(t, events, 1)
}

func TestServer_PermissionRateLimit(t *testing.T) {
	ts := setupServer(t, &stubService{permission: domain.PermissionGranted})

	var last *http.Response
	for i := 0; i < 6; i++ {
		resp, err := http.Post(ts.URL+"/api/permission/request", "application/json", nil)
		require.NoError(t, err)
		resp.Body.Close()
		last = resp
	}

	assert.Equal(t, http.StatusTooManyRequests, last.StatusCode)
	assert.NotEmpty(t, last.Header.Get("Retry-After"))
}
