package models

import (
	"time"
)

// Item is a catalog entry for a sellable waste type. Catalog items are
// reference data maintained by an admin process; this service reads them only.
type Item struct {
	ID                string   `json:"id" bson:"_id"`
	Name              string   `json:"name" bson:"name"`
	Description       string   `json:"description" bson:"description"`
	ConditionAccepted []string `json:"condition_accepted" bson:"condition_accepted"`
	ConditionRejected []string `json:"condition_rejected" bson:"condition_rejected"`
	// Min is the minimum sellable quantity with its unit, e.g. "5 kg".
	Min       string    `json:"min" bson:"min"`
	ImageURL  string    `json:"image_url" bson:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// BuyerItem is one buyer's listing for a catalog item: the price they pay per
// kg and whether they are currently accepting it. A missing listing is lazily
// created with price 0 / inactive on first read.
type BuyerItem struct {
	ItemID    string    `json:"item_id" bson:"item_id"`
	BuyerID   string    `json:"buyer_id" bson:"buyer_id"`
	Price     float64   `json:"price" bson:"price"`
	Active    bool      `json:"active" bson:"active"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

type UpdateListingRequest struct {
	Price  float64 `json:"price"`
	Active bool    `json:"active"`
}

func (r *UpdateListingRequest) Validate() map[string]string {
	errors := make(map[string]string)

	// No upper bound is enforced; a zero-price listing is storable but never
	// matchable or sellable.
	if r.Price < 0 {
		errors["price"] = "Price cannot be negative"
	}

	return errors
}

// Match is the outcome of nearest-buyer selection for a seller and an item.
// OfferedPrice is the seller-facing price after the platform margin.
type Match struct {
	BuyerID      string  `json:"buyer_id"`
	ItemID       string  `json:"item_id"`
	ListedPrice  float64 `json:"listed_price"`
	OfferedPrice float64 `json:"offered_price"`
	DistanceKm   float64 `json:"distance_km"`
}

// Waste types traded on the platform.
var WasteCategories = []string{
	"Paper",
	"Plastic",
	"Metal",
	"E-waste",
	"Organic",
	"Textile",
	"Rubber",
	"Glass",
	"Cooking Oil",
}

// DefaultItems returns the starter catalog used when the database is empty
// or the service runs with in-memory storage.
func DefaultItems() []Item {
	now := time.Now().UTC()
	return []Item{
		{
			ID:                "cardboard",
			Name:              "Cardboard",
			Description:       "Corrugated cardboard boxes and packaging.",
			ConditionAccepted: []string{"Dry", "Flattened", "Free of tape residue"},
			ConditionRejected: []string{"Wet or greasy", "Wax-coated"},
			Min:               "5 kg",
			CreatedAt:         now,
		},
		{
			ID:                "pet-bottles",
			Name:              "PET Bottles",
			Description:       "Clear plastic beverage bottles.",
			ConditionAccepted: []string{"Rinsed", "Caps removed", "Labels may stay"},
			ConditionRejected: []string{"Contains liquid", "Oil containers"},
			Min:               "3 kg",
			CreatedAt:         now,
		},
		{
			ID:                "aluminum-cans",
			Name:              "Aluminum Cans",
			Description:       "Beverage cans and thin aluminum scrap.",
			ConditionAccepted: []string{"Emptied", "Crushed or whole"},
			ConditionRejected: []string{"Mixed with steel cans", "Aerosol cans"},
			Min:               "2 kg",
			CreatedAt:         now,
		},
		{
			ID:                "used-cooking-oil",
			Name:              "Used Cooking Oil",
			Description:       "Household frying oil collected in sealed containers.",
			ConditionAccepted: []string{"Strained of food solids", "Sealed container"},
			ConditionRejected: []string{"Mixed with water", "Motor oil"},
			Min:               "2 L",
			CreatedAt:         now,
		},
		{
			ID:                "office-paper",
			Name:              "Office Paper",
			Description:       "White and mixed office paper, newspapers, magazines.",
			ConditionAccepted: []string{"Dry", "Staples allowed"},
			ConditionRejected: []string{"Laminated sheets", "Tissue paper"},
			Min:               "5 kg",
			CreatedAt:         now,
		},
		{
			ID:                "e-waste-small",
			Name:              "Small Electronics",
			Description:       "Phones, chargers, cables, keyboards and similar devices.",
			ConditionAccepted: []string{"Whole units", "Batteries removed where possible"},
			ConditionRejected: []string{"Leaking batteries", "CRT monitors"},
			Min:               "1 kg",
			CreatedAt:         now,
		},
		{
			ID:                "glass-bottles",
			Name:              "Glass Bottles",
			Description:       "Clear and colored glass bottles and jars.",
			ConditionAccepted: []string{"Rinsed", "Lids removed"},
			ConditionRejected: []string{"Broken shards", "Window glass", "Mirrors"},
			Min:               "5 kg",
			CreatedAt:         now,
		},
	}
}
