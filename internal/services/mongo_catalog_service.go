package services

import (
	"context"
	"crypto/tls"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/limbahku/backend/internal/models"
)

type MongoCatalogService struct {
	client       *mongo.Client
	db           *mongo.Database
	itemsColl    *mongo.Collection
	listingsColl *mongo.Collection
}

type mongoListingDoc struct {
	ItemID    string    `bson:"item_id"`
	BuyerID   string    `bson:"buyer_id"`
	Price     float64   `bson:"price"`
	Active    bool      `bson:"active"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func NewMongoCatalogService(ctx context.Context, mongoURI, dbName string) (*MongoCatalogService, error) {
	// Atlas occasionally fails TLS negotiation in some environments unless we force TLS 1.2.
	tlsCfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		MaxVersion: tls.VersionTLS12,
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI).SetTLSConfig(tlsCfg))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(dbName)
	items := db.Collection("base_items")
	listings := db.Collection("buyer_items")

	svc := &MongoCatalogService{
		client:       client,
		db:           db,
		itemsColl:    items,
		listingsColl: listings,
	}

	// Best-effort indexes. The compound unique index doubles as the
	// item+active secondary index matching scans on.
	_, _ = listings.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "buyer_id", Value: 1}, {Key: "item_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "item_id", Value: 1}, {Key: "active", Value: 1}}},
	})
	_, _ = items.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
	})

	log.Printf("MongoDB connected (catalog): db=%s", dbName)
	return svc, nil
}

func (s *MongoCatalogService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// SeedItems inserts catalog entries that are not already present. Existing
// entries are left untouched so admin edits survive restarts.
func (s *MongoCatalogService) SeedItems(ctx context.Context, items ...models.Item) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for _, item := range items {
		filter := bson.M{"_id": item.ID}
		update := bson.M{"$setOnInsert": item}
		if _, err := s.itemsColl.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
			return err
		}
	}
	return nil
}

func listingDocToModel(d mongoListingDoc) *models.BuyerItem {
	return &models.BuyerItem{
		ItemID:    d.ItemID,
		BuyerID:   d.BuyerID,
		Price:     d.Price,
		Active:    d.Active,
		UpdatedAt: d.UpdatedAt,
	}
}

func (s *MongoCatalogService) ListCatalog(ctx context.Context) ([]models.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cur, err := s.itemsColl.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		log.Printf("[catalog] list failed: %v", err)
		return nil, ErrDataUnavailable
	}
	defer cur.Close(ctx)

	out := make([]models.Item, 0)
	for cur.Next(ctx) {
		var item models.Item
		if err := cur.Decode(&item); err != nil {
			return nil, ErrDataUnavailable
		}
		out = append(out, item)
	}
	if err := cur.Err(); err != nil {
		return nil, ErrDataUnavailable
	}
	return out, nil
}

func (s *MongoCatalogService) GetItem(ctx context.Context, itemID string) (*models.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var item models.Item
	if err := s.itemsColl.FindOne(ctx, bson.M{"_id": itemID}).Decode(&item); err != nil {
		if err == mongo.ErrNoDocuments {
			// Absence is not an error.
			return nil, nil
		}
		log.Printf("[catalog] get item %s failed: %v", itemID, err)
		return nil, ErrDataUnavailable
	}
	return &item, nil
}

func (s *MongoCatalogService) GetBuyerListing(ctx context.Context, itemID, buyerID string) (*models.BuyerItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"buyer_id": buyerID, "item_id": itemID}

	var doc mongoListingDoc
	err := s.listingsColl.FindOne(ctx, filter).Decode(&doc)
	if err == nil {
		return listingDocToModel(doc), nil
	}
	if err != mongo.ErrNoDocuments {
		log.Printf("[catalog] get listing %s/%s failed: %v", buyerID, itemID, err)
		return nil, ErrDataUnavailable
	}

	// Lazily provision the default listing. $setOnInsert plus the unique
	// buyer_id+item_id index keeps a read/read race from persisting two rows.
	now := time.Now().UTC()
	update := bson.M{
		"$setOnInsert": bson.M{
			"buyer_id":   buyerID,
			"item_id":    itemID,
			"price":      float64(0),
			"active":     false,
			"updated_at": now,
		},
	}
	if _, err := s.listingsColl.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			log.Printf("[catalog] provision listing %s/%s failed: %v", buyerID, itemID, err)
			return nil, ErrDataUnavailable
		}
	}

	if err := s.listingsColl.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, ErrDataUnavailable
	}
	return listingDocToModel(doc), nil
}

func (s *MongoCatalogService) ListActiveListings(ctx context.Context, itemID string) ([]models.BuyerItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cur, err := s.listingsColl.Find(
		ctx,
		bson.M{"item_id": itemID, "active": true},
		options.Find().SetSort(bson.D{{Key: "buyer_id", Value: 1}}),
	)
	if err != nil {
		log.Printf("[catalog] list active listings for %s failed: %v", itemID, err)
		return nil, ErrDataUnavailable
	}
	defer cur.Close(ctx)

	out := make([]models.BuyerItem, 0)
	for cur.Next(ctx) {
		var doc mongoListingDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, ErrDataUnavailable
		}
		out = append(out, *listingDocToModel(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, ErrDataUnavailable
	}
	return out, nil
}

func (s *MongoCatalogService) SetBuyerListing(ctx context.Context, itemID, buyerID string, price float64, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Merge upsert: unspecified fields on an existing doc are left untouched.
	update := bson.M{
		"$set": bson.M{
			"price":      price,
			"active":     active,
			"updated_at": time.Now().UTC(),
		},
		"$setOnInsert": bson.M{
			"buyer_id": buyerID,
			"item_id":  itemID,
		},
	}

	_, err := s.listingsColl.UpdateOne(
		ctx,
		bson.M{"buyer_id": buyerID, "item_id": itemID},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		log.Printf("[catalog] set listing %s/%s failed: %v", buyerID, itemID, err)
		return ErrDataUnavailable
	}
	return nil
}
