package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var newestOrdersFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func (r *MongoRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = models.NewID()
	}
	now := time.Now().UTC()
	order.CreatedAt, order.UpdatedAt = now, now
	_, err := r.orders().InsertOne(ctx, order)
	return mongoErr(err)
}

func (r *MongoRepo) ListOrders(ctx context.Context) ([]models.Order, error) {
	return r.findOrders(ctx, bson.M{})
}

func (r *MongoRepo) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.findOrders(ctx, bson.M{"user": userID})
}

func (r *MongoRepo) findOrders(ctx context.Context, filter bson.M) ([]models.Order, error) {
	cur, err := r.orders().Find(ctx, filter, options.Find().SetSort(newestOrdersFirst))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *MongoRepo) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.orders().FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return nil, mongoErr(err)
	}
	return &order, nil
}

func (r *MongoRepo) SetTracking(ctx context.Context, id, tracking string) error {
	res, err := r.orders().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"trackingNumber": tracking,
		"updatedAt":      time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
