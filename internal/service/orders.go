package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
)

const (
	freeShippingFrom = 100.0
	flatShipping     = 10.0
)

type OrderService struct {
	Orders   OrderStore
	Products ProductStore
	Events   EventPublisher
}

type OrderLine struct {
	ProductID string
	Quantity  int
}

// Place prices each line from the catalog and stores a new unpaid order.
func (s *OrderService) Place(ctx context.Context, p auth.Principal, lines []OrderLine) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, fail(ErrValidation, "order has no items")
	}

	order := &models.Order{UserID: p.UserID, Items: make([]models.OrderItem, 0, len(lines))}
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, failf(ErrValidation, "quantity for %s must be positive", line.ProductID)
		}
		prod, err := s.Products.GetProduct(ctx, line.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, failf(ErrBadRequest, "product %s does not exist", line.ProductID)
		}
		if err != nil {
			return nil, fmt.Errorf("load product: %w", err)
		}
		if prod.CountInStock < line.Quantity {
			return nil, failf(ErrConflict, "%s has only %d in stock", prod.Name, prod.CountInStock)
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductID: prod.ID,
			Name:      prod.Name,
			Slug:      prod.Slug,
			Image:     prod.Image,
			Quantity:  line.Quantity,
			Price:     prod.Price,
		})
		order.ItemsPrice += prod.Price * float64(line.Quantity)
	}

	order.ItemsPrice = roundCents(order.ItemsPrice)
	if order.ItemsPrice < freeShippingFrom {
		order.ShippingPrice = flatShipping
	}
	order.TotalPrice = roundCents(order.ItemsPrice + order.ShippingPrice)

	if err := s.Orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	publish(ctx, s.Events, mykafka.TopicOrderEvents, order.ID, map[string]any{
		"type":       "order_created",
		"orderID":    order.ID,
		"userID":     order.UserID,
		"totalPrice": order.TotalPrice,
	})
	return order, nil
}

func (s *OrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.Orders.ListOrders(ctx)
}

func (s *OrderService) ListMine(ctx context.Context, p auth.Principal) ([]models.Order, error) {
	return s.Orders.ListOrdersByUser(ctx, p.UserID)
}

// Get returns the order to its owner or to an admin.
func (s *OrderService) Get(ctx context.Context, p auth.Principal, id string) (*models.Order, error) {
	order, err := s.Orders.GetOrder(ctx, id)
	if err != nil {
		return nil, orderErr(err)
	}
	if order.UserID != p.UserID && !p.IsAdmin {
		return nil, fail(ErrForbidden, "Order belongs to another user")
	}
	return order, nil
}

func (s *OrderService) SetTracking(ctx context.Context, id, tracking string) error {
	tracking = strings.TrimSpace(tracking)
	if tracking == "" {
		return fail(ErrValidation, "trackingNumber is required")
	}
	if err := s.Orders.SetTracking(ctx, id, tracking); err != nil {
		return orderErr(err)
	}

	publish(ctx, s.Events, mykafka.TopicOrderEvents, id, map[string]any{
		"type":           "order_tracking_set",
		"orderID":        id,
		"trackingNumber": tracking,
	})
	return nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func orderErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return fail(ErrNotFound, "Order not found")
	}
	return err
}
