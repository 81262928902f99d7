package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	OrdersCollection      *mongo.Collection
	ProductsCollection    *mongo.Collection
	UserCollection        *mongo.Collection
	IdempotencyCollection *mongo.Collection
	Client                *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	var err error
	Client, err = mongo.Connect(context.TODO(), options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	OrdersCollection = Client.Database("arcane").Collection("orders")
	ProductsCollection = Client.Database("arcane").Collection("products")
	UserCollection = Client.Database("arcane").Collection("users")
	IdempotencyCollection = Client.Database("arcane").Collection("idempotency")
}

// EnsureIndexes creates the indexes the order flow depends on. The partial
// unique index on paymentResult.externalId is what actually enforces
// at-most-once order creation for card payments; COD orders carry no
// externalId and are excluded by the partial filter.
func EnsureIndexes(ctx context.Context) error {
	orderIdxs := []mongo.IndexModel{
		{
			Keys: bson.M{"paymentResult.externalId": 1},
			Options: options.Index().
				SetUnique(true).
				SetName("unique_external_id").
				SetPartialFilterExpression(bson.M{
					"paymentResult.externalId": bson.M{"$type": "string"},
				}),
		},
		{
			Keys:    bson.M{"userId": 1, "createdAt": -1},
			Options: options.Index().SetName("owner_created"),
		},
	}
	if _, err := OrdersCollection.Indexes().CreateMany(ctx, orderIdxs); err != nil {
		return err
	}

	idemIdxs := []mongo.IndexModel{
		{
			Keys:    bson.M{"key": 1},
			Options: options.Index().SetUnique(true).SetName("unique_key"),
		},
		{
			Keys:    bson.M{"expires_at": 1},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expires_at"),
		},
	}
	_, err := IdempotencyCollection.Indexes().CreateMany(ctx, idemIdxs)
	return err
}

// IsDuplicateKeyError reports whether a Mongo insert failed on a unique index.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if we, ok := err.(mongo.WriteException); ok {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	return false
}
