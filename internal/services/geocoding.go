package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/limbahku/backend/internal/models"
)

// GeocodeResult pairs a formatted address with its coordinate, in either
// direction of lookup.
type GeocodeResult struct {
	FormattedAddress string             `json:"formatted_address"`
	Geo              models.GeoLocation `json:"geo_location"`
}

// GoogleGeocodingClient calls the Google Geocoding API, forward and reverse.
// It backs map-based address entry during registration and profile edits.
type GoogleGeocodingClient struct {
	APIKey     string
	Endpoint   string
	HTTPClient *http.Client
}

func NewGoogleGeocodingClient(apiKey string) *GoogleGeocodingClient {
	return &GoogleGeocodingClient{
		APIKey:   strings.TrimSpace(apiKey),
		Endpoint: "https://maps.googleapis.com/maps/api/geocode/json",
		HTTPClient: &http.Client{
			Timeout: 8 * time.Second,
		},
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	ErrorMessage string `json:"error_message"`
}

// Forward geocodes a free-form address string.
func (c *GoogleGeocodingClient) Forward(ctx context.Context, address string) (*GeocodeResult, error) {
	params := url.Values{}
	params.Set("address", address)
	return c.lookup(ctx, params)
}

// Reverse resolves a coordinate to a formatted address.
func (c *GoogleGeocodingClient) Reverse(ctx context.Context, geo models.GeoLocation) (*GeocodeResult, error) {
	params := url.Values{}
	params.Set("latlng", formatLatLng(geo))
	return c.lookup(ctx, params)
}

func (c *GoogleGeocodingClient) lookup(ctx context.Context, params url.Values) (*GeocodeResult, error) {
	if c == nil || c.APIKey == "" {
		return nil, fmt.Errorf("geocoding client not configured")
	}
	params.Set("key", c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 8 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode http %d", resp.StatusCode)
	}

	var out geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Status == "ZERO_RESULTS" || len(out.Results) == 0 {
		return nil, nil
	}
	if out.Status != "OK" {
		return nil, fmt.Errorf("geocode status %s: %s", out.Status, out.ErrorMessage)
	}

	top := out.Results[0]
	return &GeocodeResult{
		FormattedAddress: top.FormattedAddress,
		Geo: models.GeoLocation{
			Lat: top.Geometry.Location.Lat,
			Lng: top.Geometry.Location.Lng,
		},
	}, nil
}
