package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/storefront/internal/middleware/auth"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type UsersHTTP struct {
	Svc *service.UserService
}

func (h *UsersHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list")

	users, err := h.Svc.List(ctx)
	if err != nil {
		return fail(l, "list_users", err, "cannot list users")
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UsersHTTP) UserEmail(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.email")

	email, err := h.Svc.Email(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "user_email", err, "cannot get user email")
	}
	return c.JSON(http.StatusOK, transport.EmailResponse{Email: email})
}

func (h *UsersHTTP) Signin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.signin")

	var req transport.SigninRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "signin", err)
	}

	info, err := h.Svc.Signin(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "signin", err, "cannot sign in")
	}

	l.Info("signin_success", "user_id", info.ID)
	return c.JSON(http.StatusOK, info)
}

func (h *UsersHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.signup")

	var req transport.SignupRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "signup", err)
	}

	info, err := h.Svc.Signup(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return fail(l, "signup", err, "cannot create user")
	}

	l.Info("signup_success", "user_id", info.ID)
	return c.JSON(http.StatusCreated, info)
}

func (h *UsersHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.profile")

	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return fail(l, "profile", service.ErrUnauthorized, "")
	}

	var req transport.ProfileRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "profile", err)
	}

	info, err := h.Svc.UpdateProfile(ctx, p, service.ProfileInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return fail(l, "profile", err, "cannot update profile")
	}
	return c.JSON(http.StatusOK, info)
}

func (h *UsersHTTP) AddAdmin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.add_admin")

	info, err := h.Svc.GrantAdmin(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "add_admin", err, "cannot update user")
	}

	l.Info("add_admin_success", "target_id", info.ID)
	return c.JSON(http.StatusOK, info)
}

func (h *UsersHTTP) RemoveAdmin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.remove_admin")

	info, err := h.Svc.RevokeAdmin(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "remove_admin", err, "cannot update user")
	}

	l.Info("remove_admin_success", "target_id", info.ID)
	return c.JSON(http.StatusOK, info)
}

// DeleteSelf deletes the caller's account. The :id segment is kept for
// route compatibility and ignored.
func (h *UsersHTTP) DeleteSelf(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete_self")

	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return fail(l, "delete_self", service.ErrUnauthorized, "")
	}

	if err := h.Svc.DeleteSelf(ctx, p); err != nil {
		return fail(l, "delete_self", err, "Unable to delete user")
	}

	l.Info("delete_self_success")
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "User successfully deleted"})
}

func (h *UsersHTTP) AdminDelete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.admin_delete")

	id := c.Param("id")
	if err := h.Svc.AdminDelete(ctx, id); err != nil {
		return fail(l, "admin_delete", err, "There was an issue deleting this user")
	}

	l.Info("admin_delete_success", "target_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "User successfully deleted"})
}
