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

type MongoProfileService struct {
	client   *mongo.Client
	db       *mongo.Database
	usersCol *mongo.Collection
}

func NewMongoProfileService(ctx context.Context, mongoURI, dbName string) (*MongoProfileService, error) {
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
	col := db.Collection("users")

	// Best-effort indexes.
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	})

	log.Printf("MongoDB connected (profiles): db=%s", dbName)
	return &MongoProfileService{
		client:   client,
		db:       db,
		usersCol: col,
	}, nil
}

func (s *MongoProfileService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoProfileService) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var user models.User
	if err := s.usersCol.FindOne(ctx, bson.M{"_id": uid}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		log.Printf("[profiles] get %s failed: %v", uid, err)
		return nil, ErrDataUnavailable
	}
	return &user, nil
}

func (s *MongoProfileService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var user models.User
	if err := s.usersCol.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		log.Printf("[profiles] get by email failed: %v", err)
		return nil, ErrDataUnavailable
	}
	return &user, nil
}

func (s *MongoProfileService) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cur, err := s.usersCol.Find(
		ctx,
		bson.M{"role": role},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		log.Printf("[profiles] list role=%s failed: %v", role, err)
		return nil, ErrDataUnavailable
	}
	defer cur.Close(ctx)

	out := make([]models.User, 0)
	for cur.Next(ctx) {
		var user models.User
		if err := cur.Decode(&user); err != nil {
			return nil, ErrDataUnavailable
		}
		out = append(out, user)
	}
	if err := cur.Err(); err != nil {
		return nil, ErrDataUnavailable
	}
	return out, nil
}

func (s *MongoProfileService) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := s.usersCol.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailExists
		}
		log.Printf("[profiles] create %s failed: %v", user.UID, err)
		return ErrDataUnavailable
	}
	return nil
}

func (s *MongoProfileService) UpdateAddresses(ctx context.Context, uid string, addresses []models.Address) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := s.usersCol.UpdateOne(
		ctx,
		bson.M{"_id": uid},
		bson.M{"$set": bson.M{"addresses": addresses}},
	)
	if err != nil {
		log.Printf("[profiles] update addresses %s failed: %v", uid, err)
		return ErrDataUnavailable
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
