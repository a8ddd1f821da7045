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

type MongoTransactionStore struct {
	client *mongo.Client
	db     *mongo.Database
	txColl *mongo.Collection
}

func NewMongoTransactionStore(ctx context.Context, mongoURI, dbName string) (*MongoTransactionStore, error) {
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
	txs := db.Collection("transactions")

	// Best-effort indexes.
	_, _ = txs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "seller_id", Value: 1}, {Key: "submitted_at", Value: -1}}},
		{Keys: bson.D{{Key: "receiver_id", Value: 1}, {Key: "submitted_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})

	log.Printf("MongoDB connected (transactions): db=%s", dbName)
	return &MongoTransactionStore{
		client: client,
		db:     db,
		txColl: txs,
	}, nil
}

func (s *MongoTransactionStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoTransactionStore) Insert(ctx context.Context, tx *models.Transaction) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := s.txColl.InsertOne(ctx, tx); err != nil {
		log.Printf("[transactions] insert %s failed: %v", tx.ID, err)
		return ErrDataUnavailable
	}
	return nil
}

func (s *MongoTransactionStore) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var tx models.Transaction
	if err := s.txColl.FindOne(ctx, bson.M{"_id": id}).Decode(&tx); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrTransactionNotFound
		}
		log.Printf("[transactions] get %s failed: %v", id, err)
		return nil, ErrDataUnavailable
	}
	return &tx, nil
}

func userFilter(userID, role string) bson.M {
	if role == models.RoleBuyer {
		return bson.M{"receiver_id": userID}
	}
	return bson.M{"seller_id": userID}
}

func (s *MongoTransactionStore) ListByUser(ctx context.Context, userID, role string) ([]models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cur, err := s.txColl.Find(
		ctx,
		userFilter(userID, role),
		options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}}),
	)
	if err != nil {
		log.Printf("[transactions] list for %s failed: %v", userID, err)
		return nil, ErrDataUnavailable
	}
	defer cur.Close(ctx)

	out := make([]models.Transaction, 0)
	for cur.Next(ctx) {
		var tx models.Transaction
		if err := cur.Decode(&tx); err != nil {
			return nil, ErrDataUnavailable
		}
		out = append(out, tx)
	}
	if err := cur.Err(); err != nil {
		return nil, ErrDataUnavailable
	}
	return out, nil
}

func (s *MongoTransactionStore) UpdateStatus(ctx context.Context, id string, status models.TransactionStatus, notes string, at time.Time) (*models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	set := bson.M{"status": status}
	if notes != "" {
		set["status_notes"] = notes
	}
	switch status {
	case models.StatusAssignedPickup:
		set["assigned_at"] = at
	case models.StatusPickedUp:
		set["picked_up_at"] = at
	case models.StatusCompleted:
		set["completed_at"] = at
	}

	res := s.txColl.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated models.Transaction
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrTransactionNotFound
		}
		log.Printf("[transactions] update %s failed: %v", id, err)
		return nil, ErrDataUnavailable
	}
	return &updated, nil
}

// WatchByUser opens a change stream scoped to the user's transactions and
// re-reads the full filtered set after every event, mirroring the
// full-snapshot semantics of the in-memory store. The unsubscribe func stops
// the stream and releases the goroutine.
func (s *MongoTransactionStore) WatchByUser(ctx context.Context, userID, role string) (<-chan []models.Transaction, func(), error) {
	filterField := "seller_id"
	if role == models.RoleBuyer {
		filterField = "receiver_id"
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"fullDocument." + filterField: userID,
		}}},
	}

	streamCtx, cancel := context.WithCancel(context.Background())
	stream, err := s.txColl.Watch(
		streamCtx,
		pipeline,
		options.ChangeStream().SetFullDocument(options.UpdateLookup),
	)
	if err != nil {
		cancel()
		log.Printf("[transactions] change stream for %s failed: %v", userID, err)
		return nil, nil, ErrDataUnavailable
	}

	ch := make(chan []models.Transaction, 1)

	push := func(snap []models.Transaction) {
		select {
		case ch <- snap:
		default:
			// Replace a stale pending snapshot instead of queueing behind it.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}

	go func() {
		defer close(ch)
		defer stream.Close(context.Background())

		if snap, err := s.ListByUser(streamCtx, userID, role); err == nil {
			push(snap)
		}

		for stream.Next(streamCtx) {
			snap, err := s.ListByUser(streamCtx, userID, role)
			if err != nil {
				log.Printf("[transactions] snapshot refresh for %s failed: %v", userID, err)
				continue
			}
			push(snap)
		}
		if err := stream.Err(); err != nil && streamCtx.Err() == nil {
			log.Printf("[transactions] change stream for %s ended: %v", userID, err)
		}
	}()

	return ch, cancel, nil
}
