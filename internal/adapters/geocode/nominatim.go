// Package geocode adapts an HTTP reverse-geocoding service (Nominatim
// wire format) to the core Geocoder port.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/GSDV/solomo/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// Client is a Nominatim-style reverse geocoder.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// nominatimResponse is the subset of the reverse endpoint we consume.
type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Road     string `json:"road"`
		City     string `json:"city"`
		Town     string `json:"town"`
		Village  string `json:"village"`
		State    string `json:"state"`
		Country  string `json:"country"`
		Postcode string `json:"postcode"`
	} `json:"address"`
	Error string `json:"error"`
}

// New creates a client for the given base URL (e.g.
// https://nominatim.openstreetmap.org).
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  "solomo/1.0",
	}
}

// Reverse resolves a coordinate into an address. Failures map to
// network_error so the tracker's error slot stays within its kinds.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (domain.Address, error) {
	if err := domain.ValidateCoordinates(lat, lng); err != nil {
		return domain.Address{}, err
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", fmt.Sprintf("%.7f", lat))
	q.Set("lon", fmt.Sprintf("%.7f", lng))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return domain.Address{}, domain.NewLocationError(domain.ErrNetwork, "build geocode request: %v", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Address{}, domain.NewLocationError(domain.ErrNetwork, "geocode request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Address{}, domain.NewLocationError(domain.ErrNetwork, "geocoder returned status %d", resp.StatusCode)
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Address{}, domain.NewLocationError(domain.ErrNetwork, "decode geocode response: %v", err)
	}
	if body.Error != "" {
		return domain.Address{}, domain.NewLocationError(domain.ErrNetwork, "geocoder error: %s", body.Error)
	}

	// Nominatim reports the locality under different keys by place type.
	city := body.Address.City
	if city == "" {
		city = body.Address.Town
	}
	if city == "" {
		city = body.Address.Village
	}

	return domain.Address{
		DisplayName: body.DisplayName,
		Road:        body.Address.Road,
		City:        city,
		State:       body.Address.State,
		Country:     body.Address.Country,
		Postcode:    body.Address.Postcode,
	}, nil
}
