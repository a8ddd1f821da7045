package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/limbahku/backend/internal/middleware"
	"github.com/limbahku/backend/internal/models"
	"github.com/limbahku/backend/internal/services"
)

type ProfileHandler struct {
	profiles services.ProfileService
}

func NewProfileHandler(profiles services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	user, err := h.profiles.GetByUID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Profile not found"))
			return
		}
		log.Printf("[GetProfile] Service error: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, models.NewErrorResponse("Profiles are temporarily unavailable"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(user))
}

// ListCollectors returns all buyer accounts, the directory sellers browse
// before picking who to sell to. Password hashes never serialize to JSON.
func (h *ProfileHandler) ListCollectors(w http.ResponseWriter, r *http.Request) {
	buyers, err := h.profiles.ListByRole(r.Context(), models.RoleBuyer)
	if err != nil {
		log.Printf("[ListCollectors] Service error: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, models.NewErrorResponse("Profiles are temporarily unavailable"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(buyers))
}

// UpdateAddresses replaces the caller's address list. The first entry is the
// primary address used for pickup and matching. Existing transactions keep
// their snapshotted pickup address.
func (h *ProfileHandler) UpdateAddresses(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	var req models.UpdateAddressesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	for i := range req.Addresses {
		if req.Addresses[i].AddressID == "" {
			req.Addresses[i].AddressID = uuid.New().String()
		}
	}

	if err := h.profiles.UpdateAddresses(r.Context(), userID, req.Addresses); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Profile not found"))
			return
		}
		log.Printf("[UpdateAddresses] Service error: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, models.NewErrorResponse("Profiles are temporarily unavailable"))
		return
	}

	user, err := h.profiles.GetByUID(r.Context(), userID)
	if err != nil {
		log.Printf("[UpdateAddresses] Re-read error: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, models.NewErrorResponse("Profiles are temporarily unavailable"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(user))
}
