package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/limbahku/backend/internal/models"
	"github.com/limbahku/backend/internal/services"
)

type GeocodeHandler struct {
	geocoder *services.GoogleGeocodingClient
}

func NewGeocodeHandler(geocoder *services.GoogleGeocodingClient) *GeocodeHandler {
	return &GeocodeHandler{geocoder: geocoder}
}

// Forward resolves ?address= to a coordinate for map-based address entry.
func (h *GeocodeHandler) Forward(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Missing required parameter: address"))
		return
	}

	result, err := h.geocoder.Forward(r.Context(), address)
	if err != nil {
		log.Printf("[Geocode] Forward error: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, models.NewErrorResponse("Geocoding is temporarily unavailable"))
		return
	}
	if result == nil {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Address not found"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(result))
}

// Reverse resolves ?lat=&lng= to a formatted address after a map pin drop.
func (h *GeocodeHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	lat, err1 := strconv.ParseFloat(query.Get("lat"), 64)
	lng, err2 := strconv.ParseFloat(query.Get("lng"), 64)
	if err1 != nil || err2 != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Missing or invalid parameters: lat, lng"))
		return
	}

	result, err := h.geocoder.Reverse(r.Context(), models.GeoLocation{Lat: lat, Lng: lng})
	if err != nil {
		log.Printf("[Geocode] Reverse error: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, models.NewErrorResponse("Geocoding is temporarily unavailable"))
		return
	}
	if result == nil {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("No address at this location"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(result))
}
