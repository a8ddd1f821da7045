package services

import (
	"context"
	"errors"
	"testing"

	"github.com/limbahku/backend/internal/models"
)

func transactionFixture(t *testing.T) (*TransactionService, *MemoryCatalogService, *MemoryProfileService, *MemoryTransactionStore) {
	t.Helper()
	catalog := NewMemoryCatalogService()
	catalog.SeedItems(models.Item{ID: "cardboard", Name: "Cardboard"})

	profiles := NewMemoryProfileService()
	store := NewMemoryTransactionStore()
	svc := NewTransactionService(store, catalog, profiles)
	return svc, catalog, profiles, store
}

func createSeller(t *testing.T, profiles *MemoryProfileService) {
	t.Helper()
	err := profiles.Create(context.Background(), &models.User{
		UID:   "seller-1",
		Email: "seller@example.com",
		Role:  models.RoleSeller,
		Addresses: []models.Address{
			{AddressID: "a1", Address: "Jl. Merdeka 1", City: "Jakarta", Geo: models.GeoLocation{Lat: -6.2, Lng: 106.8}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestCreate_Success(t *testing.T) {
	ctx := context.Background()
	svc, catalog, profiles, store := transactionFixture(t)
	createSeller(t, profiles)

	if err := catalog.SetBuyerListing(ctx, "cardboard", "buyer-1", 2000, true); err != nil {
		t.Fatal(err)
	}

	result := svc.Create(ctx, "seller-1", &models.CreateTransactionRequest{
		BuyerID:  "buyer-1",
		ItemID:   "cardboard",
		Quantity: 7.5,
	})
	if !result.Success {
		t.Fatalf("expected success, got message: %s", result.Message)
	}

	tx := result.Transaction
	if tx.Status != models.StatusPendingConfirmation {
		t.Errorf("expected pending_confirmation, got %s", tx.Status)
	}
	if tx.CurrBuyerPrice != 1600 {
		t.Errorf("expected frozen price 1600, got %v", tx.CurrBuyerPrice)
	}
	if tx.ItemName != "Cardboard" {
		t.Errorf("expected item name snapshot, got %q", tx.ItemName)
	}
	if tx.Weight != 7.5 {
		t.Errorf("expected weight 7.5, got %v", tx.Weight)
	}
	if tx.PickUpLocation.City != "Jakarta" {
		t.Errorf("expected pickup snapshot, got %+v", tx.PickUpLocation)
	}

	stored, err := store.GetByID(ctx, tx.ID)
	if err != nil {
		t.Fatalf("transaction not persisted: %v", err)
	}
	if stored.SellerID != "seller-1" || stored.ReceiverID != "buyer-1" {
		t.Errorf("stored parties wrong: %+v", stored)
	}
}

func TestCreate_InactiveListing(t *testing.T) {
	ctx := context.Background()
	svc, catalog, profiles, store := transactionFixture(t)
	createSeller(t, profiles)

	if err := catalog.SetBuyerListing(ctx, "cardboard", "buyer-1", 2000, false); err != nil {
		t.Fatal(err)
	}

	result := svc.Create(ctx, "seller-1", &models.CreateTransactionRequest{
		BuyerID: "buyer-1", ItemID: "cardboard", Quantity: 5,
	})
	if result.Success {
		t.Fatal("expected failure for inactive listing")
	}
	if result.Message != msgCannotSell {
		t.Errorf("unexpected message: %q", result.Message)
	}

	txs, err := store.ListByUser(ctx, "seller-1", models.RoleSeller)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 0 {
		t.Errorf("nothing should be persisted, got %d records", len(txs))
	}
}

func TestCreate_ZeroPriceListing(t *testing.T) {
	ctx := context.Background()
	svc, catalog, profiles, _ := transactionFixture(t)
	createSeller(t, profiles)

	// Active but never priced, e.g. a lazily provisioned row toggled on.
	if err := catalog.SetBuyerListing(ctx, "cardboard", "buyer-1", 0, true); err != nil {
		t.Fatal(err)
	}

	result := svc.Create(ctx, "seller-1", &models.CreateTransactionRequest{
		BuyerID: "buyer-1", ItemID: "cardboard", Quantity: 5,
	})
	if result.Success || result.Message != msgCannotSell {
		t.Errorf("expected cannot-sell failure, got %+v", result)
	}
}

func TestCreate_SellerWithoutAddress(t *testing.T) {
	ctx := context.Background()
	svc, catalog, profiles, _ := transactionFixture(t)

	err := profiles.Create(ctx, &models.User{
		UID: "seller-1", Email: "seller@example.com", Role: models.RoleSeller,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := catalog.SetBuyerListing(ctx, "cardboard", "buyer-1", 2000, true); err != nil {
		t.Fatal(err)
	}

	result := svc.Create(ctx, "seller-1", &models.CreateTransactionRequest{
		BuyerID: "buyer-1", ItemID: "cardboard", Quantity: 5,
	})
	if result.Success || result.Message != msgNoSellerAddress {
		t.Errorf("expected no-address failure, got %+v", result)
	}
}

func TestCreate_PriceFrozenAgainstLaterListingEdits(t *testing.T) {
	ctx := context.Background()
	svc, catalog, profiles, store := transactionFixture(t)
	createSeller(t, profiles)

	if err := catalog.SetBuyerListing(ctx, "cardboard", "buyer-1", 2000, true); err != nil {
		t.Fatal(err)
	}

	result := svc.Create(ctx, "seller-1", &models.CreateTransactionRequest{
		BuyerID: "buyer-1", ItemID: "cardboard", Quantity: 5,
	})
	if !result.Success {
		t.Fatalf("create failed: %s", result.Message)
	}

	// The buyer re-prices after the sale; the record must not move.
	if err := catalog.SetBuyerListing(ctx, "cardboard", "buyer-1", 9000, true); err != nil {
		t.Fatal(err)
	}

	stored, err := store.GetByID(ctx, result.Transaction.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.CurrBuyerPrice != 1600 {
		t.Errorf("price snapshot changed: %v", stored.CurrBuyerPrice)
	}
}

func TestCreate_PickupFrozenAgainstLaterAddressEdits(t *testing.T) {
	ctx := context.Background()
	svc, catalog, profiles, store := transactionFixture(t)
	createSeller(t, profiles)

	if err := catalog.SetBuyerListing(ctx, "cardboard", "buyer-1", 2000, true); err != nil {
		t.Fatal(err)
	}

	result := svc.Create(ctx, "seller-1", &models.CreateTransactionRequest{
		BuyerID: "buyer-1", ItemID: "cardboard", Quantity: 5,
	})
	if !result.Success {
		t.Fatalf("create failed: %s", result.Message)
	}

	err := profiles.UpdateAddresses(ctx, "seller-1", []models.Address{
		{AddressID: "a2", Address: "Jl. Baru 99", City: "Bandung", Geo: models.GeoLocation{Lat: -6.9, Lng: 107.6}},
	})
	if err != nil {
		t.Fatal(err)
	}

	stored, err := store.GetByID(ctx, result.Transaction.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.PickUpLocation.City != "Jakarta" {
		t.Errorf("pickup snapshot changed: %+v", stored.PickUpLocation)
	}
}

func TestAdvanceStatus_FullLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, catalog, profiles, _ := transactionFixture(t)
	createSeller(t, profiles)

	if err := catalog.SetBuyerListing(ctx, "cardboard", "buyer-1", 2000, true); err != nil {
		t.Fatal(err)
	}
	result := svc.Create(ctx, "seller-1", &models.CreateTransactionRequest{
		BuyerID: "buyer-1", ItemID: "cardboard", Quantity: 5,
	})
	if !result.Success {
		t.Fatalf("create failed: %s", result.Message)
	}
	id := result.Transaction.ID

	steps := []models.TransactionStatus{
		models.StatusPendingPickup,
		models.StatusAssignedPickup,
		models.StatusPickedUp,
		models.StatusCompleted,
	}
	var tx *models.Transaction
	var err error
	for _, next := range steps {
		tx, err = svc.AdvanceStatus(ctx, id, next, "")
		if err != nil {
			t.Fatalf("advance to %s: %v", next, err)
		}
	}

	if tx.Status != models.StatusCompleted {
		t.Errorf("expected completed, got %s", tx.Status)
	}
	if tx.AssignedAt == nil || tx.PickedUpAt == nil || tx.CompletedAt == nil {
		t.Errorf("expected all lifecycle timestamps stamped: %+v", tx)
	}
}

func TestAdvanceStatus_RejectsSkipsAndTerminalMoves(t *testing.T) {
	ctx := context.Background()
	svc, catalog, profiles, _ := transactionFixture(t)
	createSeller(t, profiles)

	if err := catalog.SetBuyerListing(ctx, "cardboard", "buyer-1", 2000, true); err != nil {
		t.Fatal(err)
	}
	result := svc.Create(ctx, "seller-1", &models.CreateTransactionRequest{
		BuyerID: "buyer-1", ItemID: "cardboard", Quantity: 5,
	})
	if !result.Success {
		t.Fatalf("create failed: %s", result.Message)
	}
	id := result.Transaction.ID

	// Skipping pending_pickup is not allowed.
	if _, err := svc.AdvanceStatus(ctx, id, models.StatusPickedUp, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition for skip, got %v", err)
	}

	if _, err := svc.AdvanceStatus(ctx, id, models.StatusRejected, "buyer declined"); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	// Terminal states permit nothing.
	if _, err := svc.AdvanceStatus(ctx, id, models.StatusPendingPickup, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition out of terminal, got %v", err)
	}
}

func TestAdvanceStatus_UnknownTransaction(t *testing.T) {
	svc, _, _, _ := transactionFixture(t)

	_, err := svc.AdvanceStatus(context.Background(), "missing", models.StatusPendingPickup, "")
	if !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("expected ErrTransactionNotFound, got %v", err)
	}
}
