package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	cur, err := r.users().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *MongoRepo) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.users().FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, mongoErr(err)
	}
	return &user, nil
}

func (r *MongoRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.users().FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, mongoErr(err)
	}
	return &user, nil
}

func (r *MongoRepo) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = models.NewID()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	_, err := r.users().InsertOne(ctx, u)
	return mongoErr(err)
}

func (r *MongoRepo) UpdateProfile(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now().UTC()
	res, err := r.users().UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": bson.M{
		"name":      u.Name,
		"email":     u.Email,
		"password":  u.Password,
		"updatedAt": u.UpdatedAt,
	}})
	if err != nil {
		return mongoErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) SetAdmin(ctx context.Context, id string, admin bool) (bool, error) {
	res, err := r.users().UpdateOne(ctx,
		bson.M{"_id": id, "isOwner": bson.M{"$ne": true}, "isAdmin": !admin},
		bson.M{"$set": bson.M{"isAdmin": admin, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoRepo) DeleteUser(ctx context.Context, id string, guard DeleteGuard) (bool, error) {
	res, err := r.users().DeleteOne(ctx, mongoDeleteFilter(id, guard))
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}

func mongoDeleteFilter(id string, guard DeleteGuard) bson.M {
	filter := bson.M{"_id": id}
	if guard.RejectAdmin {
		filter["isAdmin"] = bson.M{"$ne": true}
	}
	if guard.RejectOwner {
		filter["isOwner"] = bson.M{"$ne": true}
	}
	return filter
}
