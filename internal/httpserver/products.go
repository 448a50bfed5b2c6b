package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	items, err := h.Svc.List(ctx)
	if err != nil {
		return fail(l, "list_products", err, "cannot list products")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	res, err := h.Svc.Search(ctx, search.RawParams{
		Query:    c.QueryParam("query"),
		Category: c.QueryParam("category"),
		Price:    c.QueryParam("price"),
		Rating:   c.QueryParam("rating"),
		Order:    c.QueryParam("order"),
		Page:     c.QueryParam("page"),
		PageSize: c.QueryParam("pageSize"),
	})
	if err != nil {
		return fail(l, "search_products", err, "cannot search products")
	}

	l.Debug("search_products_success", "count", res.CountProducts, "page", res.Page)
	return c.JSON(http.StatusOK, res)
}

func (h *CatalogHTTP) Categories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.categories")

	cats, err := h.Svc.Categories(ctx)
	if err != nil {
		return fail(l, "categories", err, "cannot list categories")
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CatalogHTTP) GetBySlug(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_by_slug")

	prod, err := h.Svc.BySlug(ctx, c.Param("slug"))
	if err != nil {
		return fail(l, "get_product", err, "cannot get product")
	}
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	prod, err := h.Svc.Get(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "get_product", err, "cannot get product")
	}
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "product_create", err)
	}

	prod, err := h.Svc.Create(ctx, req.Input())
	if err != nil {
		return fail(l, "product_create", err, "cannot add product to db")
	}

	l.Info("create_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusCreated, prod)
}

func (h *CatalogHTTP) EditProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.edit")

	var req transport.EditProductRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "product_edit", err)
	}
	if strings.TrimSpace(req.ID) == "" {
		l.Warn("product_edit_failed", "status", 400, "reason", "missing _id")
		return echo.NewHTTPError(http.StatusBadRequest, "_id is required")
	}

	prod, err := h.Svc.Edit(ctx, req.ID, req.Input())
	if err != nil {
		return fail(l, "product_edit", err, "cannot update product")
	}

	l.Info("edit_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id := c.Param("id")
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(l, "product_delete", err, "cannot delete product from db")
	}

	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Product successfully deleted"})
}
