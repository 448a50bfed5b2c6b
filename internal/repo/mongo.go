package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	productsCollection = "products"
	usersCollection    = "users"
	ordersCollection   = "orders"
)

// MongoRepo stores the same models as GormRepo in three collections.
type MongoRepo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

func ConnectMongo(ctx context.Context, uri, database string) (*MongoRepo, error) {
	if uri == "" {
		return nil, fmt.Errorf("MONGO_URI is empty")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	r := &MongoRepo{Client: client, DB: client.Database(database)}
	if err := r.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return r, nil
}

func (r *MongoRepo) Close(ctx context.Context) error {
	return r.Client.Disconnect(ctx)
}

func (r *MongoRepo) ensureIndexes(ctx context.Context) error {
	if _, err := r.users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("users email index: %w", err)
	}
	if _, err := r.products().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("products indexes: %w", err)
	}
	if _, err := r.orders().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}},
	}); err != nil {
		return fmt.Errorf("orders index: %w", err)
	}
	return nil
}

func (r *MongoRepo) products() *mongo.Collection { return r.DB.Collection(productsCollection) }
func (r *MongoRepo) users() *mongo.Collection    { return r.DB.Collection(usersCollection) }
func (r *MongoRepo) orders() *mongo.Collection   { return r.DB.Collection(ordersCollection) }

func mongoErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return errors.Join(ErrDuplicate, err)
	}
	return err
}
