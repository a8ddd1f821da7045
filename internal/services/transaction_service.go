package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/limbahku/backend/internal/models"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
)

const (
	msgCannotSell      = "This item cannot be sold at this moment. Please try again."
	msgNoSellerAddress = "Seller does not have a valid address."
	msgCreateFailed    = "Failed to create transaction. Please try again."
)

// TransactionStore persists sale records and serves live snapshots of them.
// Records are never deleted.
type TransactionStore interface {
	Insert(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	// ListByUser filters by receiver_id for buyers and seller_id for sellers.
	ListByUser(ctx context.Context, userID, role string) ([]models.Transaction, error)
	// UpdateStatus persists a status change plus its timestamp stamp.
	UpdateStatus(ctx context.Context, id string, status models.TransactionStatus, notes string, at time.Time) (*models.Transaction, error)
	// WatchByUser pushes the full filtered snapshot on every change until the
	// returned unsubscribe func is called. Callers must always unsubscribe.
	WatchByUser(ctx context.Context, userID, role string) (<-chan []models.Transaction, func(), error)
}

// TransactionService owns the transaction lifecycle: creation with frozen
// price/address snapshots, and status advancement on behalf of fulfillment.
type TransactionService struct {
	store    TransactionStore
	catalog  CatalogService
	profiles ProfileService
}

func NewTransactionService(store TransactionStore, catalog CatalogService, profiles ProfileService) *TransactionService {
	return &TransactionService{
		store:    store,
		catalog:  catalog,
		profiles: profiles,
	}
}

// Create attempts to open a sale from seller to buyer. It never returns an
// error: every failure, business-rule or internal, becomes a CreateResult
// with a user-facing message and nothing persisted.
func (s *TransactionService) Create(ctx context.Context, sellerID string, req *models.CreateTransactionRequest) models.CreateResult {
	listing, err := s.catalog.GetBuyerListing(ctx, req.ItemID, req.BuyerID)
	if err != nil {
		log.Printf("[transactions] create: listing lookup failed: %v", err)
		return models.CreateResult{Message: msgCreateFailed}
	}
	if listing == nil || !listing.Active || listing.Price <= 0 {
		return models.CreateResult{Message: msgCannotSell}
	}

	seller, err := s.profiles.GetByUID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return models.CreateResult{Message: msgCannotSell}
		}
		log.Printf("[transactions] create: seller lookup failed: %v", err)
		return models.CreateResult{Message: msgCreateFailed}
	}
	pickup := seller.PrimaryAddress()
	if pickup == nil {
		return models.CreateResult{Message: msgNoSellerAddress}
	}

	itemName := ""
	if item, err := s.catalog.GetItem(ctx, req.ItemID); err == nil && item != nil {
		itemName = item.Name
	}

	// Price and pickup address are frozen here; later listing or profile
	// edits must not reach back into this record.
	tx := &models.Transaction{
		ID:             uuid.New().String(),
		SellerID:       sellerID,
		ReceiverID:     req.BuyerID,
		IsDonation:     false,
		ItemID:         req.ItemID,
		ItemName:       itemName,
		Status:         models.StatusPendingConfirmation,
		PickUpLocation: *pickup,
		SubmittedAt:    time.Now().UTC(),
		Weight:         req.Quantity,
		CurrBuyerPrice: listing.Price * platformMarginFactor,
	}

	if err := s.store.Insert(ctx, tx); err != nil {
		log.Printf("[transactions] create: insert failed: %v", err)
		return models.CreateResult{Message: msgCreateFailed}
	}

	return models.CreateResult{
		Success:     true,
		Message:     "Transaction created successfully.",
		Transaction: tx,
	}
}

// AdvanceStatus moves a transaction along the lifecycle on behalf of an
// external fulfillment actor. Transitions that skip steps, move backwards, or
// leave a terminal state are rejected with ErrInvalidTransition.
func (s *TransactionService) AdvanceStatus(ctx context.Context, id string, status models.TransactionStatus, notes string) (*models.Transaction, error) {
	tx, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(tx.Status, status) {
		return nil, ErrInvalidTransition
	}
	return s.store.UpdateStatus(ctx, id, status, notes, time.Now().UTC())
}

func (s *TransactionService) ListByUser(ctx context.Context, userID, role string) ([]models.Transaction, error) {
	return s.store.ListByUser(ctx, userID, role)
}

func (s *TransactionService) WatchByUser(ctx context.Context, userID, role string) (<-chan []models.Transaction, func(), error) {
	return s.store.WatchByUser(ctx, userID, role)
}

// applyStatusStamp mutates tx for the given transition; shared by the store
// implementations so both stamp the same timestamp field per status.
func applyStatusStamp(tx *models.Transaction, status models.TransactionStatus, notes string, at time.Time) {
	tx.Status = status
	if notes != "" {
		tx.StatusNotes = notes
	}
	switch status {
	case models.StatusAssignedPickup:
		tx.AssignedAt = &at
	case models.StatusPickedUp:
		tx.PickedUpAt = &at
	case models.StatusCompleted:
		tx.CompletedAt = &at
	}
}
