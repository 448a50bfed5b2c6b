package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/storefront/internal/middleware/auth"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type OrdersHTTP struct {
	Svc *service.OrderService
}

func (h *OrdersHTTP) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.place")

	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return fail(l, "place_order", service.ErrUnauthorized, "")
	}

	var req transport.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "place_order", err)
	}

	order, err := h.Svc.Place(ctx, p, req.Lines())
	if err != nil {
		return fail(l, "place_order", err, "cannot create order")
	}

	l.Info("place_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrdersHTTP) ListAll(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_all")

	orders, err := h.Svc.ListAll(ctx)
	if err != nil {
		return fail(l, "list_orders", err, "cannot list orders")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrdersHTTP) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_mine")

	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return fail(l, "list_my_orders", service.ErrUnauthorized, "")
	}

	orders, err := h.Svc.ListMine(ctx, p)
	if err != nil {
		return fail(l, "list_my_orders", err, "cannot list orders")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrdersHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return fail(l, "get_order", service.ErrUnauthorized, "")
	}

	order, err := h.Svc.Get(ctx, p, c.Param("id"))
	if err != nil {
		return fail(l, "get_order", err, "cannot get order")
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrdersHTTP) SetTracking(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.tracking")

	var req transport.TrackingRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "set_tracking", err)
	}

	id := c.Param("id")
	if err := h.Svc.SetTracking(ctx, id, req.TrackingNumber); err != nil {
		return fail(l, "set_tracking", err, "cannot update order")
	}

	l.Info("set_tracking_success", "order_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Order tracking updated"})
}
