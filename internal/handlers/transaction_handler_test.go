package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/limbahku/backend/internal/middleware"
	"github.com/limbahku/backend/internal/models"
	"github.com/limbahku/backend/internal/services"
)

func newTestRouter(t *testing.T) (*chi.Mux, *services.MemoryCatalogService, *services.MemoryProfileService) {
	t.Helper()

	catalog := services.NewMemoryCatalogService()
	catalog.SeedItems(models.Item{ID: "cardboard", Name: "Cardboard"})
	profiles := services.NewMemoryProfileService()
	store := services.NewMemoryTransactionStore()
	svc := services.NewTransactionService(store, catalog, profiles)
	h := NewTransactionHandler(svc)

	r := chi.NewRouter()
	r.Post("/api/transactions", h.CreateTransaction)
	r.Get("/api/transactions", h.ListTransactions)
	r.Patch("/api/transactions/{transactionId}/status", h.AdvanceStatus)
	return r, catalog, profiles
}

func asUser(req *http.Request, userID, role string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	ctx = context.WithValue(ctx, middleware.UserRoleKey, role)
	return req.WithContext(ctx)
}

func seedSeller(t *testing.T, profiles *services.MemoryProfileService) {
	t.Helper()
	err := profiles.Create(context.Background(), &models.User{
		UID:   "seller-1",
		Email: "seller@example.com",
		Role:  models.RoleSeller,
		Addresses: []models.Address{
			{AddressID: "a1", Address: "Jl. Merdeka 1", Geo: models.GeoLocation{Lat: -6.2, Lng: 106.8}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestCreateTransaction_Created(t *testing.T) {
	router, catalog, profiles := newTestRouter(t)
	seedSeller(t, profiles)
	if err := catalog.SetBuyerListing(context.Background(), "cardboard", "buyer-1", 2000, true); err != nil {
		t.Fatal(err)
	}

	body := `{"buyer_id": "buyer-1", "item_id": "cardboard", "quantity": 5}`
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(body))
	req = asUser(req, "seller-1", models.RoleSeller)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool               `json:"success"`
		Data    models.Transaction `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success {
		t.Error("expected success envelope")
	}
	if resp.Data.CurrBuyerPrice != 1600 {
		t.Errorf("expected frozen price 1600, got %v", resp.Data.CurrBuyerPrice)
	}
	if resp.Data.Status != models.StatusPendingConfirmation {
		t.Errorf("expected pending_confirmation, got %s", resp.Data.Status)
	}
}

func TestCreateTransaction_BuyerForbidden(t *testing.T) {
	router, _, _ := newTestRouter(t)

	body := `{"buyer_id": "buyer-1", "item_id": "cardboard", "quantity": 5}`
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(body))
	req = asUser(req, "buyer-1", models.RoleBuyer)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestCreateTransaction_Unauthenticated(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestCreateTransaction_InactiveListingUnprocessable(t *testing.T) {
	router, catalog, profiles := newTestRouter(t)
	seedSeller(t, profiles)
	if err := catalog.SetBuyerListing(context.Background(), "cardboard", "buyer-1", 2000, false); err != nil {
		t.Fatal(err)
	}

	body := `{"buyer_id": "buyer-1", "item_id": "cardboard", "quantity": 5}`
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(body))
	req = asUser(req, "seller-1", models.RoleSeller)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Success {
		t.Error("expected error envelope")
	}
}

func TestAdvanceStatus_RequiresAdmin(t *testing.T) {
	router, _, _ := newTestRouter(t)

	body := `{"status": "pending_pickup"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/transactions/t1/status", strings.NewReader(body))
	req = asUser(req, "seller-1", models.RoleSeller)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestAdvanceStatus_InvalidTransitionConflicts(t *testing.T) {
	router, catalog, profiles := newTestRouter(t)
	seedSeller(t, profiles)
	if err := catalog.SetBuyerListing(context.Background(), "cardboard", "buyer-1", 2000, true); err != nil {
		t.Fatal(err)
	}

	createBody := `{"buyer_id": "buyer-1", "item_id": "cardboard", "quantity": 5}`
	createReq := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(createBody))
	createReq = asUser(createReq, "seller-1", models.RoleSeller)
	createRec := httptest.NewRecorder()
	router.ServeHTTP(createRec, createReq)
	if createRec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", createRec.Code)
	}
	var created struct {
		Data models.Transaction `json:"data"`
	}
	if err := json.Unmarshal(createRec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	// Jumping straight to completed must conflict.
	body := `{"status": "completed"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/transactions/"+created.Data.ID+"/status", strings.NewReader(body))
	req = asUser(req, "ops-1", models.RoleAdmin)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestListTransactions_RoleScoped(t *testing.T) {
	router, catalog, profiles := newTestRouter(t)
	seedSeller(t, profiles)
	if err := catalog.SetBuyerListing(context.Background(), "cardboard", "buyer-1", 2000, true); err != nil {
		t.Fatal(err)
	}

	createBody := `{"buyer_id": "buyer-1", "item_id": "cardboard", "quantity": 5}`
	createReq := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(createBody))
	createReq = asUser(createReq, "seller-1", models.RoleSeller)
	createRec := httptest.NewRecorder()
	router.ServeHTTP(createRec, createReq)
	if createRec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", createRec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	req = asUser(req, "buyer-1", models.RoleBuyer)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Data []models.Transaction `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data) != 1 || resp.Data[0].ReceiverID != "buyer-1" {
		t.Errorf("buyer view wrong: %+v", resp.Data)
	}

	otherReq := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	otherReq = asUser(otherReq, "buyer-2", models.RoleBuyer)
	otherRec := httptest.NewRecorder()
	router.ServeHTTP(otherRec, otherReq)
	if err := json.Unmarshal(otherRec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data) != 0 {
		t.Errorf("other buyer must not see the record: %+v", resp.Data)
	}
}
