package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/storefront/internal/middleware/auth"
	ratelimitmw "github.com/Skotchmaster/storefront/internal/middleware/ratelimit"
	"github.com/Skotchmaster/storefront/internal/ratelimit"
)

// ReadyFunc reports whether a backing store is reachable.
type ReadyFunc func(ctx context.Context) error

type Deps struct {
	Catalog       *CatalogHTTP
	Users         *UsersHTTP
	Orders        *OrdersHTTP
	Gate          *middleware.Gate
	SigninLimiter ratelimit.Limiter
	Ready         ReadyFunc
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	api := e.Group("/api")
	authed := d.Gate.RequireAuth
	admin := d.Gate.RequireAdmin

	products := api.Group("/products")
	products.GET("", d.Catalog.ListProducts)
	products.GET("/search", d.Catalog.SearchProducts)
	products.GET("/categories", d.Catalog.Categories)
	products.GET("/slug/:slug", d.Catalog.GetBySlug)
	products.GET("/:id", d.Catalog.GetProduct)
	products.PUT("/edit", d.Catalog.EditProduct, authed, admin)
	products.POST("/create", d.Catalog.CreateProduct, authed, admin)
	products.DELETE("/delete/:id", d.Catalog.DeleteProduct, authed, admin)

	users := api.Group("/users")
	users.GET("", d.Users.ListUsers, authed, admin)
	users.GET("/userEmail/:id", d.Users.UserEmail, authed)
	users.POST("/signin", d.Users.Signin, ratelimitmw.PerIP(d.SigninLimiter))
	users.POST("/signup", d.Users.Signup)
	users.PUT("/profile", d.Users.UpdateProfile, authed)
	users.PUT("/addAdmin/:id", d.Users.AddAdmin, authed, admin)
	users.PUT("/removeAdmin/:id", d.Users.RemoveAdmin, authed, admin)
	users.DELETE("/delete/:id", d.Users.DeleteSelf, authed)
	users.DELETE("/admindelete/:id", d.Users.AdminDelete, authed, admin)

	orders := api.Group("/orders", authed)
	orders.POST("", d.Orders.PlaceOrder)
	orders.GET("/mine", d.Orders.ListMine)
	orders.GET("/all", d.Orders.ListAll, admin)
	orders.PUT("/tracking/:id", d.Orders.SetTracking, admin)
	orders.GET("/:id", d.Orders.GetOrder)
}
