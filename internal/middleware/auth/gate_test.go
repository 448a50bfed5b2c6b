package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

func TestParseBearer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"  Bearer   abc  ", "abc", true},
		{"", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"abc", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, ok := ParseBearer(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

func runGate(t *testing.T, g *Gate, header string, chain func(echo.HandlerFunc) echo.HandlerFunc) (*httptest.ResponseRecorder, error, *auth.Principal) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *auth.Principal
	h := chain(func(c echo.Context) error {
		p, ok := auth.PrincipalFrom(c.Request().Context())
		require.True(t, ok)
		seen = &p
		return c.NoContent(http.StatusOK)
	})
	return rec, h(c), seen
}

func TestGate_RequireAuth(t *testing.T) {
	t.Parallel()

	iss := tokens.NewIssuer([]byte("test-jwt-secret"), time.Hour)
	g := NewGate(iss)
	user := models.User{ID: models.NewID(), Name: "u", Email: "u@example.com"}
	token, err := iss.Issue(user)
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		_, err, seen := runGate(t, g, "", g.RequireAuth)
		assertHTTPError(t, err, http.StatusUnauthorized, "No token")
		assert.Nil(t, seen)
	})

	t.Run("malformed header", func(t *testing.T) {
		_, err, _ := runGate(t, g, "Token "+token, g.RequireAuth)
		assertHTTPError(t, err, http.StatusUnauthorized, "No token")
	})

	t.Run("bad token", func(t *testing.T) {
		_, err, _ := runGate(t, g, "Bearer "+token+"x", g.RequireAuth)
		assertHTTPError(t, err, http.StatusUnauthorized, "Invalid token")
	})

	t.Run("valid token", func(t *testing.T) {
		rec, err, seen := runGate(t, g, "Bearer "+token, g.RequireAuth)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, user.ID, seen.UserID)
		assert.False(t, seen.IsAdmin)
	})
}

func TestGate_RequireAdmin(t *testing.T) {
	t.Parallel()

	iss := tokens.NewIssuer([]byte("test-jwt-secret"), time.Hour)
	g := NewGate(iss)
	both := func(next echo.HandlerFunc) echo.HandlerFunc { return g.RequireAuth(g.RequireAdmin(next)) }

	plainToken, err := iss.Issue(models.User{ID: models.NewID(), Name: "u"})
	require.NoError(t, err)
	adminToken, err := iss.Issue(models.User{ID: models.NewID(), Name: "a", IsAdmin: true})
	require.NoError(t, err)

	_, err, seen := runGate(t, g, "Bearer "+plainToken, both)
	assertHTTPError(t, err, http.StatusForbidden, "Admin access required")
	assert.Nil(t, seen)

	rec, err, seen := runGate(t, g, "Bearer "+adminToken, both)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.True(t, seen.IsAdmin)

	_, err, _ = runGate(t, g, "", g.RequireAdmin)
	assertHTTPError(t, err, http.StatusUnauthorized, "No token")
}

type accountsMap map[string]models.User

func (m accountsMap) GetUser(_ context.Context, id string) (*models.User, error) {
	if id == "broken" {
		return nil, errors.New("connection reset")
	}
	u, ok := m[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func TestGate_RequireAdmin_UsesStoredFlag(t *testing.T) {
	t.Parallel()

	iss := tokens.NewIssuer([]byte("test-jwt-secret"), time.Hour)
	revoked := models.User{ID: models.NewID(), Name: "r", IsAdmin: true}
	promoted := models.User{ID: models.NewID(), Name: "p"}
	gone := models.User{ID: models.NewID(), Name: "g", IsAdmin: true}

	accounts := accountsMap{
		revoked.ID:  models.User{ID: revoked.ID, Name: "r"},
		promoted.ID: models.User{ID: promoted.ID, Name: "p", IsAdmin: true},
	}
	g := &Gate{Tokens: iss, Accounts: accounts}
	both := func(next echo.HandlerFunc) echo.HandlerFunc { return g.RequireAuth(g.RequireAdmin(next)) }

	issue := func(u models.User) string {
		token, err := iss.Issue(u)
		require.NoError(t, err)
		return "Bearer " + token
	}

	_, err, seen := runGate(t, g, issue(revoked), both)
	assertHTTPError(t, err, http.StatusForbidden, "Admin access required")
	assert.Nil(t, seen)

	rec, err, seen := runGate(t, g, issue(promoted), both)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.True(t, seen.IsAdmin)

	_, err, _ = runGate(t, g, issue(gone), both)
	assertHTTPError(t, err, http.StatusUnauthorized, "Invalid token")

	_, err, _ = runGate(t, g, issue(models.User{ID: "broken", IsAdmin: true}), both)
	assertHTTPError(t, err, http.StatusInternalServerError, "cannot check permissions")
}

func assertHTTPError(t *testing.T, err error, code int, msg string) {
	t.Helper()

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, code, he.Code)
	assert.Equal(t, msg, he.Message)
}
