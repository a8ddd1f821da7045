package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/limbahku/backend/internal/models"
)

var (
	// ErrDataUnavailable means the backing store could not be reached. Callers
	// surface a loading/empty state rather than a crash.
	ErrDataUnavailable = errors.New("data store unavailable")
)

// CatalogService exposes the waste-type catalog and per-buyer listings.
//
// GetBuyerListing is NOT read-only: a missing listing is created with price 0
// and inactive before being returned, so a first read causes a write.
type CatalogService interface {
	ListCatalog(ctx context.Context) ([]models.Item, error)
	// GetItem returns (nil, nil) when the id does not exist; absence is not an
	// error.
	GetItem(ctx context.Context, itemID string) (*models.Item, error)
	GetBuyerListing(ctx context.Context, itemID, buyerID string) (*models.BuyerItem, error)
	SetBuyerListing(ctx context.Context, itemID, buyerID string, price float64, active bool) error
	// ListActiveListings is a read-only indexed lookup of every buyer currently
	// accepting the item. It never provisions default listings.
	ListActiveListings(ctx context.Context, itemID string) ([]models.BuyerItem, error)
}

// MemoryCatalogService is an in-memory CatalogService for local development
// and tests.
type MemoryCatalogService struct {
	mu       sync.RWMutex
	items    map[string]*models.Item
	listings map[string]*models.BuyerItem // buyerID + "/" + itemID
}

func NewMemoryCatalogService() *MemoryCatalogService {
	return &MemoryCatalogService{
		items:    make(map[string]*models.Item),
		listings: make(map[string]*models.BuyerItem),
	}
}

// SeedItems loads catalog entries. Catalog data is otherwise read-only.
func (s *MemoryCatalogService) SeedItems(items ...models.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range items {
		item := items[i]
		s.items[item.ID] = &item
	}
}

func (s *MemoryCatalogService) ListCatalog(ctx context.Context) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Item, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, *item)
	}
	return out, nil
}

func (s *MemoryCatalogService) GetItem(ctx context.Context, itemID string) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[itemID]
	if !exists {
		return nil, nil
	}
	itemCopy := *item
	return &itemCopy, nil
}

func (s *MemoryCatalogService) GetBuyerListing(ctx context.Context, itemID, buyerID string) (*models.BuyerItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := listingKey(buyerID, itemID)
	if listing, exists := s.listings[key]; exists {
		listingCopy := *listing
		return &listingCopy, nil
	}

	// Lazily provision the default listing so the buyer's dashboard always has
	// a row to toggle.
	listing := &models.BuyerItem{
		ItemID:    itemID,
		BuyerID:   buyerID,
		Price:     0,
		Active:    false,
		UpdatedAt: time.Now().UTC(),
	}
	s.listings[key] = listing

	listingCopy := *listing
	return &listingCopy, nil
}

func (s *MemoryCatalogService) SetBuyerListing(ctx context.Context, itemID, buyerID string, price float64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := listingKey(buyerID, itemID)
	listing, exists := s.listings[key]
	if !exists {
		listing = &models.BuyerItem{
			ItemID:  itemID,
			BuyerID: buyerID,
		}
		s.listings[key] = listing
	}

	listing.Price = price
	listing.Active = active
	listing.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryCatalogService) ListActiveListings(ctx context.Context, itemID string) ([]models.BuyerItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.BuyerItem, 0)
	for _, listing := range s.listings {
		if listing.ItemID == itemID && listing.Active {
			out = append(out, *listing)
		}
	}
	// Stable candidate order keeps tie-breaking deterministic.
	sort.Slice(out, func(i, j int) bool { return out[i].BuyerID < out[j].BuyerID })
	return out, nil
}

func listingKey(buyerID, itemID string) string {
	return buyerID + "/" + itemID
}
