package services

import (
	"context"
	"log"

	"github.com/limbahku/backend/internal/models"
)

// platformMarginFactor is the share of the buyer's listed price offered to the
// seller; the remaining 20% covers the platform and logistics. Fixed, not
// configurable.
const platformMarginFactor = 0.8

// MatchingService selects the nearest buyer currently accepting an item and
// computes the seller-facing price.
type MatchingService struct {
	catalog  CatalogService
	profiles ProfileService
	distance DistanceService
}

func NewMatchingService(catalog CatalogService, profiles ProfileService, distance DistanceService) *MatchingService {
	return &MatchingService{
		catalog:  catalog,
		profiles: profiles,
		distance: distance,
	}
}

// FindNearestBuyer returns (nil, nil) when no buyer qualifies: no active
// listing, no geocoded buyer address, or the distance service failed. Store
// failures while enumerating candidates propagate as ErrDataUnavailable.
func (s *MatchingService) FindNearestBuyer(ctx context.Context, seller *models.User, itemID string) (*models.Match, error) {
	origin := seller.PrimaryAddress()
	if origin == nil {
		return nil, nil
	}

	listings, err := s.catalog.ListActiveListings(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, nil
	}

	// Resolve candidate coordinates; buyers without a geocoded primary address
	// cannot be routed to and are skipped.
	type candidate struct {
		buyerID string
		geo     models.GeoLocation
	}
	candidates := make([]candidate, 0, len(listings))
	for _, listing := range listings {
		buyer, err := s.profiles.GetByUID(ctx, listing.BuyerID)
		if err != nil {
			if err == ErrUserNotFound {
				continue
			}
			return nil, err
		}
		addr := buyer.PrimaryAddress()
		if addr == nil || (addr.Geo.Lat == 0 && addr.Geo.Lng == 0) {
			continue
		}
		candidates = append(candidates, candidate{buyerID: buyer.UID, geo: addr.Geo})
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	destinations := make([]models.GeoLocation, 0, len(candidates))
	for _, c := range candidates {
		destinations = append(destinations, c.geo)
	}

	elements, err := s.distance.DrivingDistances(ctx, origin.Geo, destinations)
	if err != nil {
		// Degraded distance service reads as "no active buyers nearby", never
		// a hard failure.
		log.Printf("[matching] distance request failed for item %s: %v", itemID, err)
		return nil, nil
	}

	closest := -1
	shortest := 0
	for i, el := range elements {
		if i >= len(candidates) {
			break
		}
		if el.Status != DistanceElementOK {
			continue
		}
		if closest == -1 || el.Meters < shortest {
			closest = i
			shortest = el.Meters
		}
	}
	if closest == -1 {
		return nil, nil
	}

	winner := candidates[closest]
	listing, err := s.catalog.GetBuyerListing(ctx, itemID, winner.buyerID)
	if err != nil {
		return nil, err
	}

	return &models.Match{
		BuyerID:      winner.buyerID,
		ItemID:       itemID,
		ListedPrice:  listing.Price,
		OfferedPrice: listing.Price * platformMarginFactor,
		DistanceKm:   float64(shortest) / 1000,
	}, nil
}
