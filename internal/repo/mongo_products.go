package repo

import (
	"context"
	"regexp"
	"sort"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/search"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var mongoKeys = map[search.Field]string{
	search.FieldID:        "_id",
	search.FieldFeatured:  "featured",
	search.FieldPrice:     "price",
	search.FieldRating:    "rating",
	search.FieldCreatedAt: "createdAt",
}

func (r *MongoRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	cur, err := r.products().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := []models.Product{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoRepo) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.products().FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, mongoErr(err)
	}
	return &product, nil
}

func (r *MongoRepo) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.products().FindOne(ctx, bson.M{"slug": slug}).Decode(&product); err != nil {
		return nil, mongoErr(err)
	}
	return &product, nil
}

func (r *MongoRepo) Categories(ctx context.Context) ([]string, error) {
	values, err := r.products().Distinct(ctx, "category", bson.D{})
	if err != nil {
		return nil, err
	}
	categories := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			categories = append(categories, s)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (r *MongoRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	if prod.ID == "" {
		prod.ID = models.NewID()
	}
	now := time.Now().UTC()
	prod.CreatedAt, prod.UpdatedAt = now, now
	_, err := r.products().InsertOne(ctx, prod)
	return mongoErr(err)
}

func (r *MongoRepo) SaveProduct(ctx context.Context, prod *models.Product) error {
	prod.UpdatedAt = time.Now().UTC()
	res, err := r.products().ReplaceOne(ctx, bson.M{"_id": prod.ID}, prod)
	if err != nil {
		return mongoErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) DeleteProduct(ctx context.Context, id string) error {
	res, err := r.products().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) SearchProducts(ctx context.Context, q search.Query) (int64, []models.Product, error) {
	filter := mongoProductFilter(q)

	total, err := r.products().CountDocuments(ctx, filter)
	if err != nil {
		return 0, nil, err
	}

	opts := options.Find().
		SetSort(mongoSort(q)).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.Limit()))

	cur, err := r.products().Find(ctx, filter, opts)
	if err != nil {
		return 0, nil, err
	}
	defer cur.Close(ctx)

	items := make([]models.Product, 0, q.Limit())
	if err := cur.All(ctx, &items); err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func mongoProductFilter(q search.Query) bson.M {
	filter := bson.M{}
	if q.Text != nil {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(*q.Text), "$options": "i"}
	}
	if q.Category != nil {
		filter["category"] = *q.Category
	}
	if q.Price != nil {
		filter["price"] = bson.M{"$gte": q.Price.Low, "$lte": q.Price.High}
	}
	if q.MinRating != nil {
		filter["rating"] = bson.M{"$gte": *q.MinRating}
	}
	return filter
}

func mongoSort(q search.Query) bson.D {
	orders := q.Orders()
	sortDoc := make(bson.D, 0, len(orders))
	for _, o := range orders {
		dir := 1
		if o.Desc {
			dir = -1
		}
		sortDoc = append(sortDoc, bson.E{Key: mongoKeys[o.Field], Value: dir})
	}
	return sortDoc
}
