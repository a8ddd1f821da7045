package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/limbahku/backend/internal/middleware"
	"github.com/limbahku/backend/internal/models"
	"github.com/limbahku/backend/internal/services"
)

type QuoteHandler struct {
	matching *services.MatchingService
	profiles services.ProfileService
}

func NewQuoteHandler(matching *services.MatchingService, profiles services.ProfileService) *QuoteHandler {
	return &QuoteHandler{matching: matching, profiles: profiles}
}

// GetQuote finds the nearest buyer accepting the item and the price the
// calling seller would get. A null quote means no active buyers nearby; the
// UI shows that, not an error.
func (h *QuoteHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}
	if middleware.GetUserRole(r.Context()) != models.RoleSeller {
		writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Only sellers can request quotes"))
		return
	}

	itemID := chi.URLParam(r, "itemId")

	seller, err := h.profiles.GetByUID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Profile not found"))
			return
		}
		log.Printf("[GetQuote] Profile error: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, models.NewErrorResponse("Profiles are temporarily unavailable"))
		return
	}

	match, err := h.matching.FindNearestBuyer(r.Context(), seller, itemID)
	if err != nil {
		log.Printf("[GetQuote] Matching error: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, models.NewErrorResponse("Matching is temporarily unavailable"))
		return
	}

	// match is nil when nothing qualifies; the envelope carries data: null.
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(match))
}
