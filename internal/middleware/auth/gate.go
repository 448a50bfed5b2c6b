package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

const principalKey = "principal"

type Verifier interface {
	Verify(token string) (*tokens.Claims, error)
}

// Accounts loads the current state of a user.
type Accounts interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// Gate admits a request only with a valid bearer token in the
// Authorization header. When Accounts is set, RequireAdmin checks the stored
// admin flag instead of trusting the token's claim.
type Gate struct {
	Tokens   Verifier
	Accounts Accounts
}

func NewGate(v Verifier) *Gate {
	return &Gate{Tokens: v}
}

func (g *Gate) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", "auth.gate")

		raw, ok := ParseBearer(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			l.Warn("auth_failed", "status", 401, "reason", "missing or malformed bearer token")
			return echo.NewHTTPError(http.StatusUnauthorized, "No token")
		}

		claims, err := g.Tokens.Verify(raw)
		if err != nil {
			l.Warn("auth_failed", "status", 401, "reason", "token verification failed", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}

		p := claims.Principal()
		ctx := auth.WithPrincipal(c.Request().Context(), p)
		ctx = logging.IntoContext(ctx, logging.FromContext(ctx).With("user_id", p.UserID))
		c.SetRequest(c.Request().WithContext(ctx))
		c.Set(principalKey, p)
		return next(c)
	}
}

// RequireAdmin must run after RequireAuth.
func (g *Gate) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "No token")
		}
		l := logging.FromContext(c.Request().Context())

		if g.Accounts != nil {
			u, err := g.Accounts.GetUser(c.Request().Context(), p.UserID)
			switch {
			case errors.Is(err, repo.ErrNotFound):
				l.Warn("auth_failed", "status", 401, "reason", "token subject no longer exists", "user_id", p.UserID)
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			case err != nil:
				l.Error("auth_failed", "status", 500, "reason", "cannot load user", "user_id", p.UserID, "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "cannot check permissions")
			}
			p.IsAdmin, p.IsOwner = u.IsAdmin, u.IsOwner
			ctx := auth.WithPrincipal(c.Request().Context(), p)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set(principalKey, p)
		}

		if !p.IsAdmin {
			l.Warn("auth_failed", "status", 403, "reason", "admin access required", "user_id", p.UserID)
			return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
		}
		return next(c)
	}
}

func ParseBearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

func PrincipalFrom(c echo.Context) (auth.Principal, bool) {
	if p, ok := c.Get(principalKey).(auth.Principal); ok {
		return p, true
	}
	return auth.PrincipalFrom(c.Request().Context())
}
