package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/limbahku/backend/internal/models"
)

// DistanceService is a batched one-to-many driving-distance query. Elements
// come back in destination order; each carries its own status.
type DistanceService interface {
	DrivingDistances(ctx context.Context, origin models.GeoLocation, destinations []models.GeoLocation) ([]DistanceElement, error)
}

type DistanceElement struct {
	Status string
	Meters int
}

// DistanceElementOK is the per-element status of a resolvable route.
const DistanceElementOK = "OK"

// GoogleDistanceClient calls the Google Distance Matrix API.
type GoogleDistanceClient struct {
	APIKey     string
	Endpoint   string
	HTTPClient *http.Client
}

func NewGoogleDistanceClient(apiKey string) *GoogleDistanceClient {
	return &GoogleDistanceClient{
		APIKey:   strings.TrimSpace(apiKey),
		Endpoint: "https://maps.googleapis.com/maps/api/distancematrix/json",
		HTTPClient: &http.Client{
			Timeout: 8 * time.Second,
		},
	}
}

type distanceMatrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value int `json:"value"` // meters
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
	ErrorMessage string `json:"error_message"`
}

func (c *GoogleDistanceClient) DrivingDistances(ctx context.Context, origin models.GeoLocation, destinations []models.GeoLocation) ([]DistanceElement, error) {
	if c == nil || c.APIKey == "" {
		return nil, fmt.Errorf("distance client not configured")
	}
	if len(destinations) == 0 {
		return []DistanceElement{}, nil
	}

	dests := make([]string, 0, len(destinations))
	for _, d := range destinations {
		dests = append(dests, formatLatLng(d))
	}

	params := url.Values{}
	params.Set("origins", formatLatLng(origin))
	params.Set("destinations", strings.Join(dests, "|"))
	params.Set("mode", "driving")
	params.Set("avoid", "tolls|highways")
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
		return nil, fmt.Errorf("distance matrix http %d", resp.StatusCode)
	}

	var out distanceMatrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Status != "OK" {
		return nil, fmt.Errorf("distance matrix status %s: %s", out.Status, out.ErrorMessage)
	}
	if len(out.Rows) == 0 {
		return nil, fmt.Errorf("distance matrix returned no rows")
	}

	elements := make([]DistanceElement, 0, len(out.Rows[0].Elements))
	for _, el := range out.Rows[0].Elements {
		elements = append(elements, DistanceElement{
			Status: el.Status,
			Meters: el.Distance.Value,
		})
	}
	return elements, nil
}

func formatLatLng(g models.GeoLocation) string {
	return strconv.FormatFloat(g.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(g.Lng, 'f', -1, 64)
}
