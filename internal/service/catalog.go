package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
)

type CatalogService struct {
	Products ProductStore
	// Searcher overrides Products for search queries when set.
	Searcher ProductSearcher
	Index    ProductIndexer
	Images   ImageUploader
	Events   EventPublisher
}

type SearchResult struct {
	Products      []models.Product `json:"products"`
	CountProducts int64            `json:"countProducts"`
	Page          int              `json:"page"`
	Pages         int              `json:"pages"`
}

// ProductInput carries the editable product fields. ImageBase64, when set,
// is uploaded and replaces Image.
type ProductInput struct {
	Name         string
	Image        string
	ImageBase64  string
	Brand        string
	Category     string
	Description  string
	Price        float64
	CountInStock int
	Rating       float64
	NumReviews   int
	Featured     bool
}

// validate checks the fields Edit writes.
func (in ProductInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fail(ErrValidation, "name is required")
	case in.Price < 0:
		return fail(ErrValidation, "price cannot be negative")
	case in.CountInStock < 0:
		return fail(ErrValidation, "countInStock cannot be negative")
	}
	return nil
}

// validateNew also checks the review fields, which only Create sets.
func (in ProductInput) validateNew() error {
	if err := in.validate(); err != nil {
		return err
	}
	switch {
	case in.Rating < 0 || in.Rating > 5:
		return fail(ErrValidation, "rating must be between 0 and 5")
	case in.NumReviews < 0:
		return fail(ErrValidation, "numReviews cannot be negative")
	}
	return nil
}

func (s *CatalogService) Search(ctx context.Context, raw search.RawParams) (*SearchResult, error) {
	q, err := search.ParseParams(raw)
	if err != nil {
		return nil, fail(ErrBadRequest, err.Error())
	}

	searcher := s.Searcher
	if searcher == nil {
		searcher = s.Products
	}

	total, items, err := searcher.SearchProducts(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	return &SearchResult{
		Products:      items,
		CountProducts: total,
		Page:          q.Page,
		Pages:         q.Pages(total),
	}, nil
}

func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	return s.Products.ListProducts(ctx)
}

func (s *CatalogService) Get(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.Products.GetProduct(ctx, id)
	return p, productErr(err)
}

func (s *CatalogService) BySlug(ctx context.Context, slug string) (*models.Product, error) {
	p, err := s.Products.GetProductBySlug(ctx, slug)
	return p, productErr(err)
}

func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	return s.Products.Categories(ctx)
}

func (s *CatalogService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.validateNew(); err != nil {
		return nil, err
	}
	image, err := s.resolveImage(ctx, in)
	if err != nil {
		return nil, err
	}

	prod := &models.Product{
		Name:         in.Name,
		Slug:         models.Slugify(in.Name),
		Image:        image,
		Brand:        in.Brand,
		Category:     in.Category,
		Description:  in.Description,
		Price:        in.Price,
		CountInStock: in.CountInStock,
		Rating:       in.Rating,
		NumReviews:   in.NumReviews,
		Featured:     in.Featured,
	}
	if err := s.Products.CreateProduct(ctx, prod); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.indexProduct(ctx, prod)
	publish(ctx, s.Events, mykafka.TopicProductEvents, prod.ID, map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
	})
	return prod, nil
}

// Edit overwrites the editable fields of product id. The slug and the
// review fields (rating, numReviews) are kept.
func (s *CatalogService) Edit(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	prod, err := s.Products.GetProduct(ctx, id)
	if err != nil {
		return nil, productErr(err)
	}

	image, err := s.resolveImage(ctx, in)
	if err != nil {
		return nil, err
	}

	prod.Name = in.Name
	prod.Image = image
	prod.Category = in.Category
	prod.Price = in.Price
	prod.Brand = in.Brand
	prod.CountInStock = in.CountInStock
	prod.Description = in.Description
	prod.Featured = in.Featured
	prod.UpdatedAt = time.Now().UTC()

	if err := s.Products.SaveProduct(ctx, prod); err != nil {
		return nil, productErr(err)
	}

	s.indexProduct(ctx, prod)
	publish(ctx, s.Events, mykafka.TopicProductEvents, prod.ID, map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"name":      prod.Name,
	})
	return prod, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if err := s.Products.DeleteProduct(ctx, id); err != nil {
		return productErr(err)
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("index_delete_failed", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, mykafka.TopicProductEvents, id, map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	return nil
}

func (s *CatalogService) resolveImage(ctx context.Context, in ProductInput) (string, error) {
	if in.ImageBase64 == "" || s.Images == nil {
		return in.Image, nil
	}
	url, err := s.Images.Upload(ctx, in.ImageBase64)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return url, nil
}

// indexProduct keeps the search mirror in step. The database stays the source
// of truth, so failures are only logged.
func (s *CatalogService) indexProduct(ctx context.Context, prod *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, prod); err != nil {
		logging.FromContext(ctx).Warn("index_product_failed", "product_id", prod.ID, "error", err)
	}
}

func productErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return fail(ErrNotFound, "Product not found")
	}
	return err
}
