package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/limbahku/backend/internal/middleware"
	"github.com/limbahku/backend/internal/models"
	"github.com/limbahku/backend/internal/services"
)

type CatalogHandler struct {
	catalog services.CatalogService
}

func NewCatalogHandler(catalog services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListCatalog(r.Context())
	if err != nil {
		log.Printf("[ListItems] Service error: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, models.NewErrorResponse("Catalog is temporarily unavailable"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(items))
}

// ListCategories returns the fixed waste-type categories used by the
// marketplace filter.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.WasteCategories))
}

func (h *CatalogHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")

	item, err := h.catalog.GetItem(r.Context(), itemID)
	if err != nil {
		log.Printf("[GetItem] Service error: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, models.NewErrorResponse("Catalog is temporarily unavailable"))
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Item not found"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(item))
}

// GetListing returns the calling buyer's listing for an item, provisioning
// the default inactive listing on first read.
func (h *CatalogHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}
	if middleware.GetUserRole(r.Context()) != models.RoleBuyer {
		writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Only buyers have item listings"))
		return
	}

	itemID := chi.URLParam(r, "itemId")

	listing, err := h.catalog.GetBuyerListing(r.Context(), itemID, userID)
	if err != nil {
		log.Printf("[GetListing] Service error: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, models.NewErrorResponse("Listings are temporarily unavailable"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(listing))
}

func (h *CatalogHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}
	if middleware.GetUserRole(r.Context()) != models.RoleBuyer {
		writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Only buyers can update listings"))
		return
	}

	itemID := chi.URLParam(r, "itemId")

	var req models.UpdateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	if err := h.catalog.SetBuyerListing(r.Context(), itemID, userID, req.Price, req.Active); err != nil {
		log.Printf("[UpdateListing] Service error: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, models.NewErrorResponse("Listings are temporarily unavailable"))
		return
	}

	listing, err := h.catalog.GetBuyerListing(r.Context(), itemID, userID)
	if err != nil {
		log.Printf("[UpdateListing] Re-read error: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, models.NewErrorResponse("Listings are temporarily unavailable"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(listing))
}
