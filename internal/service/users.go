package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type UserService struct {
	Users  UserStore
	Tokens TokenIssuer
	Events EventPublisher
}

// UserInfo is the public projection of a user returned with a fresh token.
type UserInfo struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	IsOwner bool   `json:"isOwner"`
	Token   string `json:"token"`
}

// ProfileInput fields left empty keep their current value.
type ProfileInput struct {
	Name     string
	Email    string
	Password string
}

func (s *UserService) info(u *models.User) (*UserInfo, error) {
	token, err := s.Tokens.Issue(*u)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &UserInfo{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		IsAdmin: u.IsAdmin,
		IsOwner: u.IsOwner,
		Token:   token,
	}, nil
}

func (s *UserService) Signin(ctx context.Context, email, password string) (*UserInfo, error) {
	l := logging.FromContext(ctx).With("svc", "users.signin")

	u, err := s.Users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fail(ErrInvalidCredentials, "Invalid email or password")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !hash.CheckPassword(u.Password, password) {
		l.Info("signin_rejected", "user_id", u.ID, "reason", "password mismatch")
		return nil, fail(ErrInvalidCredentials, "Invalid email or password")
	}
	return s.info(u)
}

func (s *UserService) Signup(ctx context.Context, name, email, password string) (*UserInfo, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	switch {
	case name == "":
		return nil, fail(ErrValidation, "name is required")
	case !strings.Contains(email, "@"):
		return nil, fail(ErrValidation, "a valid email is required")
	case password == "":
		return nil, fail(ErrValidation, "password is required")
	}

	if _, err := s.Users.GetUserByEmail(ctx, email); err == nil {
		return nil, fail(ErrConflict, "Email is already registered")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{Name: name, Email: email, Password: pwHash}
	if err := s.Users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fail(ErrConflict, "Email is already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	publish(ctx, s.Events, mykafka.TopicUserEvents, u.ID, map[string]any{
		"type":   "user_registered",
		"userID": u.ID,
		"email":  u.Email,
	})
	return s.info(u)
}

func (s *UserService) UpdateProfile(ctx context.Context, p auth.Principal, in ProfileInput) (*UserInfo, error) {
	u, err := s.Users.GetUser(ctx, p.UserID)
	if err != nil {
		return nil, userErr(err)
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		u.Name = name
	}
	if email := strings.TrimSpace(in.Email); email != "" && email != u.Email {
		if !strings.Contains(email, "@") {
			return nil, fail(ErrValidation, "a valid email is required")
		}
		other, err := s.Users.GetUserByEmail(ctx, email)
		switch {
		case err == nil && other.ID != u.ID:
			return nil, fail(ErrConflict, "Email is already registered")
		case err != nil && !errors.Is(err, repo.ErrNotFound):
			return nil, fmt.Errorf("find user: %w", err)
		}
		u.Email = email
	}
	if in.Password != "" {
		pwHash, err := hash.HashPassword(in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.Password = pwHash
	}

	if err := s.Users.UpdateProfile(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fail(ErrConflict, "Email is already registered")
		}
		return nil, userErr(err)
	}
	return s.info(u)
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.Users.ListUsers(ctx)
}

func (s *UserService) Email(ctx context.Context, id string) (string, error) {
	u, err := s.Users.GetUser(ctx, id)
	if err != nil {
		return "", userErr(err)
	}
	return u.Email, nil
}

func (s *UserService) GrantAdmin(ctx context.Context, id string) (*UserInfo, error) {
	return s.setAdmin(ctx, id, true)
}

func (s *UserService) RevokeAdmin(ctx context.Context, id string) (*UserInfo, error) {
	return s.setAdmin(ctx, id, false)
}

func (s *UserService) setAdmin(ctx context.Context, id string, admin bool) (*UserInfo, error) {
	u, err := s.Users.GetUser(ctx, id)
	if err != nil {
		return nil, userErr(err)
	}
	if err := roleCheck(u, admin); err != nil {
		return nil, err
	}

	changed, err := s.Users.SetAdmin(ctx, id, admin)
	if err != nil {
		return nil, fmt.Errorf("set admin: %w", err)
	}
	if !changed {
		// lost a race: classify against the current record
		cur, err := s.Users.GetUser(ctx, id)
		if err != nil {
			return nil, userErr(err)
		}
		if err := roleCheck(cur, admin); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("set admin %s: conditional update matched nothing", id)
	}

	u.IsAdmin = admin
	publish(ctx, s.Events, mykafka.TopicUserEvents, u.ID, map[string]any{
		"type":    "user_role_changed",
		"userID":  u.ID,
		"isAdmin": admin,
	})
	return s.info(u)
}

func roleCheck(u *models.User, admin bool) error {
	switch {
	case u.IsOwner:
		return fail(ErrForbidden, "Cannot modify owner permissions")
	case admin && u.IsAdmin:
		return fail(ErrNoOp, "User is already admin")
	case !admin && !u.IsAdmin:
		return fail(ErrNoOp, "User is already not admin")
	}
	return nil
}

// DeleteSelf removes the caller's own account. Admin accounts are refused.
func (s *UserService) DeleteSelf(ctx context.Context, p auth.Principal) error {
	u, err := s.Users.GetUser(ctx, p.UserID)
	if err != nil {
		return userErr(err)
	}
	if u.IsAdmin {
		return fail(ErrForbidden, "Cannot delete an admin")
	}
	return s.deleteUser(ctx, u.ID, repo.DeleteGuard{RejectAdmin: true}, "Cannot delete an admin")
}

// AdminDelete removes another account. Admins and the owner are refused.
func (s *UserService) AdminDelete(ctx context.Context, id string) error {
	u, err := s.Users.GetUser(ctx, id)
	if err != nil {
		return userErr(err)
	}
	if u.IsAdmin || u.IsOwner {
		return fail(ErrForbidden, "You cannot delete a user who is admin")
	}
	return s.deleteUser(ctx, u.ID, repo.DeleteGuard{RejectAdmin: true, RejectOwner: true}, "You cannot delete a user who is admin")
}

func (s *UserService) deleteUser(ctx context.Context, id string, guard repo.DeleteGuard, forbidden string) error {
	deleted, err := s.Users.DeleteUser(ctx, id, guard)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if !deleted {
		if _, err := s.Users.GetUser(ctx, id); err != nil {
			return userErr(err)
		}
		return fail(ErrForbidden, forbidden)
	}

	publish(ctx, s.Events, mykafka.TopicUserEvents, id, map[string]any{
		"type":   "user_deleted",
		"userID": id,
	})
	return nil
}

func userErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return fail(ErrNotFound, "User not found")
	}
	return err
}
