package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

func TestIssuer_IssueVerify(t *testing.T) {
	t.Parallel()

	iss := NewIssuer([]byte("test-jwt-secret"), time.Hour)
	u := models.User{ID: models.NewID(), Name: "admin", Email: "admin@example.com", IsAdmin: true}

	token, err := iss.Issue(u)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := iss.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)
	assert.Equal(t, u.Email, claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.False(t, claims.IsOwner)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 2*time.Second)

	p := claims.Principal()
	assert.Equal(t, u.ID, p.UserID)
	assert.True(t, p.IsAdmin)
}

func TestIssuer_Verify_Rejects(t *testing.T) {
	t.Parallel()

	iss := NewIssuer([]byte("test-jwt-secret"), time.Hour)
	u := models.User{ID: models.NewID(), Name: "u", Email: "u@example.com"}

	other := NewIssuer([]byte("other-secret"), time.Hour)
	foreign, err := other.Issue(u)
	require.NoError(t, err)

	expiredIss := NewIssuer([]byte("test-jwt-secret"), time.Hour)
	expiredIss.Now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredIss.Issue(u)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: u.ID},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: u.ID},
	}).SignedString([]byte("test-jwt-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"empty", ""},
		{"wrong secret", foreign},
		{"expired", expired},
		{"alg none", none},
		{"other alg", hs512},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := iss.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
