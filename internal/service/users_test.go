package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/auth"
)

func TestUserService_GrantAdmin(t *testing.T) {
	env := newTestEnv(t)
	svc := env.users()
	ctx := context.Background()

	plain := env.createUser(t, "plain", false, false)
	admin := env.createUser(t, "admin", true, false)
	owner := env.createUser(t, "owner", true, true)

	t.Run("owner is forbidden", func(t *testing.T) {
		_, err := svc.GrantAdmin(ctx, owner.ID)
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Equal(t, "Cannot modify owner permissions", Message(err))
	})

	t.Run("already admin is a no-op", func(t *testing.T) {
		_, err := svc.GrantAdmin(ctx, admin.ID)
		assert.ErrorIs(t, err, ErrNoOp)
		assert.Equal(t, "User is already admin", Message(err))
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.GrantAdmin(ctx, "000000000000000000000000")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("plain user becomes admin", func(t *testing.T) {
		info, err := svc.GrantAdmin(ctx, plain.ID)
		require.NoError(t, err)
		assert.Equal(t, plain.ID, info.ID)
		assert.True(t, info.IsAdmin)
		assert.False(t, info.IsOwner)
		assert.NotEmpty(t, info.Token)

		claims, err := env.Tokens.Verify(info.Token)
		require.NoError(t, err)
		assert.True(t, claims.IsAdmin)

		got, err := env.Repo.GetUser(ctx, plain.ID)
		require.NoError(t, err)
		assert.True(t, got.IsAdmin)
	})

	assert.Equal(t, []string{"user_role_changed"}, env.Events.types())
}

func TestUserService_RevokeAdmin(t *testing.T) {
	env := newTestEnv(t)
	svc := env.users()
	ctx := context.Background()

	plain := env.createUser(t, "plain", false, false)
	admin := env.createUser(t, "admin", true, false)
	owner := env.createUser(t, "owner", true, true)

	_, err := svc.RevokeAdmin(ctx, owner.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.RevokeAdmin(ctx, plain.ID)
	assert.ErrorIs(t, err, ErrNoOp)
	assert.Equal(t, "User is already not admin", Message(err))

	info, err := svc.RevokeAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.False(t, info.IsAdmin)

	got, err := env.Repo.GetUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin, "owner must stay untouched")
}

func TestUserService_GrantAdmin_Concurrent(t *testing.T) {
	env := newTestEnv(t)
	svc := env.users()
	plain := env.createUser(t, "plain", false, false)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.GrantAdmin(context.Background(), plain.ID)
		}(i)
	}
	wg.Wait()

	ok, noop := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		default:
			assert.ErrorIs(t, err, ErrNoOp)
			noop++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, noop)
}

func TestUserService_DeleteSelf(t *testing.T) {
	env := newTestEnv(t)
	svc := env.users()
	ctx := context.Background()

	admin := env.createUser(t, "admin", true, false)
	plain := env.createUser(t, "plain", false, false)

	err := svc.DeleteSelf(ctx, auth.Principal{UserID: admin.ID, IsAdmin: true})
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.DeleteSelf(ctx, auth.Principal{UserID: plain.ID}))
	_, err = svc.Email(ctx, plain.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.DeleteSelf(ctx, auth.Principal{UserID: plain.ID})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{"user_deleted"}, env.Events.types())
}

func TestUserService_AdminDelete(t *testing.T) {
	env := newTestEnv(t)
	svc := env.users()
	ctx := context.Background()

	admin := env.createUser(t, "admin", true, false)
	owner := env.createUser(t, "owner", false, true)
	plain := env.createUser(t, "plain", false, false)

	assert.ErrorIs(t, svc.AdminDelete(ctx, admin.ID), ErrForbidden)
	assert.ErrorIs(t, svc.AdminDelete(ctx, owner.ID), ErrForbidden)
	assert.ErrorIs(t, svc.AdminDelete(ctx, "000000000000000000000000"), ErrNotFound)

	require.NoError(t, svc.AdminDelete(ctx, plain.ID))
	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUserService_SignupSignin(t *testing.T) {
	env := newTestEnv(t)
	svc := env.users()
	ctx := context.Background()

	info, err := svc.Signup(ctx, "Jane", "jane@example.com", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, info.ID)
	assert.False(t, info.IsAdmin)
	assert.NotEmpty(t, info.Token)

	_, err = svc.Signup(ctx, "Jane2", "jane@example.com", "secret")
	assert.ErrorIs(t, err, ErrConflict)

	got, err := svc.Signin(ctx, "jane@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, info.ID, got.ID)

	_, err = svc.Signin(ctx, "jane@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Signin(ctx, "nobody@example.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.Equal(t, []string{"user_registered"}, env.Events.types())
}

func TestUserService_Signup_Validation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.users()

	tests := []struct {
		name, user, email, password string
	}{
		{"empty name", "", "a@example.com", "x"},
		{"bad email", "a", "not-an-email", "x"},
		{"empty password", "a", "a@example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(context.Background(), tt.user, tt.email, tt.password)
			assert.ErrorIs(t, err, ErrBadRequest)
		})
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	svc := env.users()
	ctx := context.Background()

	u := env.createUser(t, "jane", false, false)
	other := env.createUser(t, "john", false, false)
	p := auth.Principal{UserID: u.ID}

	_, err := svc.UpdateProfile(ctx, p, ProfileInput{Email: other.Email})
	assert.ErrorIs(t, err, ErrConflict)

	info, err := svc.UpdateProfile(ctx, p, ProfileInput{Name: "Jane Doe", Password: "newpass"})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", info.Name)
	assert.Equal(t, u.Email, info.Email)
	assert.NotEmpty(t, info.Token)

	_, err = svc.Signin(ctx, u.Email, "newpass")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, auth.Principal{UserID: "000000000000000000000000"}, ProfileInput{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}
