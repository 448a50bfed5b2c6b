package service

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
)

// ProductSearcher answers a parsed search query. Both repositories and the
// Elasticsearch index implement it.
type ProductSearcher interface {
	SearchProducts(ctx context.Context, q search.Query) (int64, []models.Product, error)
}

type ProductStore interface {
	ProductSearcher
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	Categories(ctx context.Context) ([]string, error)
	CreateProduct(ctx context.Context, prod *models.Product) error
	SaveProduct(ctx context.Context, prod *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// ProductIndexer mirrors product writes into a search index.
type ProductIndexer interface {
	IndexProduct(ctx context.Context, prod *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

type ImageUploader interface {
	Upload(ctx context.Context, file string) (string, error)
}

type UserStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateProfile(ctx context.Context, u *models.User) error
	SetAdmin(ctx context.Context, id string, admin bool) (bool, error)
	DeleteUser(ctx context.Context, id string, guard repo.DeleteGuard) (bool, error)
}

type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	ListOrders(ctx context.Context) ([]models.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	SetTracking(ctx context.Context, id, tracking string) error
}

type TokenIssuer interface {
	Issue(u models.User) (string, error)
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

var (
	_ ProductStore = (*repo.GormRepo)(nil)
	_ ProductStore = (*repo.MongoRepo)(nil)
	_ UserStore    = (*repo.GormRepo)(nil)
	_ UserStore    = (*repo.MongoRepo)(nil)
	_ OrderStore   = (*repo.GormRepo)(nil)
	_ OrderStore   = (*repo.MongoRepo)(nil)
)
