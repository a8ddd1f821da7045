package models

import (
	"time"
)

// Transaction statuses. The lifecycle is linear with one alternate terminal:
//
//	pending_confirmation -> pending_pickup -> assigned_pickup -> picked_up -> completed
//	pending_confirmation -> rejected
type TransactionStatus string

const (
	StatusPendingConfirmation TransactionStatus = "pending_confirmation"
	StatusPendingPickup       TransactionStatus = "pending_pickup"
	StatusAssignedPickup      TransactionStatus = "assigned_pickup"
	StatusPickedUp            TransactionStatus = "picked_up"
	StatusCompleted           TransactionStatus = "completed"
	StatusRejected            TransactionStatus = "rejected"
)

var nextStatuses = map[TransactionStatus][]TransactionStatus{
	StatusPendingConfirmation: {StatusPendingPickup, StatusRejected},
	StatusPendingPickup:       {StatusAssignedPickup},
	StatusAssignedPickup:      {StatusPickedUp},
	StatusPickedUp:            {StatusCompleted},
}

// CanTransition reports whether the lifecycle permits moving from one status
// to the next. Terminal statuses permit nothing.
func CanTransition(from, to TransactionStatus) bool {
	for _, s := range nextStatuses[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s TransactionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// Transaction is one seller-to-buyer sale record. CurrBuyerPrice and
// PickUpLocation are snapshots taken at creation; later edits to the buyer's
// listing or the seller's profile never change them. Records are never
// deleted.
type Transaction struct {
	ID          string            `json:"id" bson:"_id"`
	SellerID    string            `json:"seller_id" bson:"seller_id"`
	ReceiverID  string            `json:"receiver_id" bson:"receiver_id"`
	IsDonation  bool              `json:"is_donation" bson:"is_donation"`
	ItemID      string            `json:"item_id" bson:"item_id"`
	ItemName    string            `json:"item_name" bson:"item_name"`
	Status      TransactionStatus `json:"status" bson:"status"`
	StatusNotes string            `json:"status_notes,omitempty" bson:"status_notes,omitempty"`

	PickUpLocation Address `json:"pick_up_location" bson:"pick_up_location"`

	SubmittedAt time.Time  `json:"submitted_at" bson:"submitted_at"`
	AssignedAt  *time.Time `json:"assigned_at,omitempty" bson:"assigned_at,omitempty"`
	PickedUpAt  *time.Time `json:"picked_up_at,omitempty" bson:"picked_up_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`

	// Weight in kg, as submitted by the seller.
	Weight float64 `json:"weight" bson:"weight"`
	// CurrBuyerPrice is the seller-facing price per kg agreed at creation:
	// the buyer's listed price after the platform margin.
	CurrBuyerPrice float64 `json:"curr_buyer_price" bson:"curr_buyer_price"`
}

type CreateTransactionRequest struct {
	BuyerID  string  `json:"buyer_id"`
	ItemID   string  `json:"item_id"`
	Quantity float64 `json:"quantity"`
}

func (r *CreateTransactionRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.BuyerID == "" {
		errors["buyer_id"] = "Buyer is required"
	}
	if r.ItemID == "" {
		errors["item_id"] = "Item is required"
	}
	if r.Quantity <= 0 {
		errors["quantity"] = "Quantity must be greater than zero"
	}

	return errors
}

// CreateResult is the outcome of a transaction creation attempt. The create
// path never surfaces raw internal errors; failures carry a user-facing
// message instead.
type CreateResult struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message"`
	Transaction *Transaction `json:"transaction,omitempty"`
}
