package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stagebook/internal/auth"
	"stagebook/internal/models"
)

// ErrInvalidPasscode indicates an admin login with the wrong passcode.
var ErrInvalidPasscode = errors.New("invalid passcode")

// defaultAdminOpenID identifies the passcode admin when no owner open id is configured.
const defaultAdminOpenID = "admin"

// Store describes the persistence operations required by the user service.
type Store interface {
	UpsertUser(ctx context.Context, user models.UserUpsert) (models.User, error)
	UserByOpenID(ctx context.Context, openID string) (*models.User, error)
}

// Sessions issues and verifies session tokens.
type Sessions interface {
	Issue(openID, name string) (string, time.Time, error)
	Verify(token string) (auth.SessionClaims, error)
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

// Service exposes sign-in and session resolution.
type Service interface {
	AdminLogin(ctx context.Context, passcode string) (Session, error)
	SignIn(ctx context.Context, user models.UserUpsert) (models.User, error)
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// Config carries the admin identity settings.
type Config struct {
	OwnerOpenID   string
	AdminPasscode string
}

type service struct {
	store    Store
	sessions Sessions
	cfg      Config
}

// New wires a Service backed by the provided Store and session issuer.
func New(store Store, sessions Sessions, cfg Config) Service {
	return &service{store: store, sessions: sessions, cfg: cfg}
}

// AdminLogin checks the shared passcode, records the admin user and issues a session.
func (s *service) AdminLogin(ctx context.Context, passcode string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	if !auth.CheckPasscode(s.cfg.AdminPasscode, passcode) {
		return Session{}, ErrInvalidPasscode
	}

	openID := s.cfg.OwnerOpenID
	if openID == "" {
		openID = defaultAdminOpenID
	}

	user, err := s.SignIn(ctx, models.UserUpsert{
		OpenID:      openID,
		Name:        "Admin",
		LoginMethod: "passcode",
		Role:        models.RoleAdmin,
	})
	if err != nil {
		return Session{}, err
	}

	name := user.Name
	if name == "" {
		name = "Admin"
	}
	token, expiresAt, err := s.sessions.Issue(user.OpenID, name)
	if err != nil {
		return Session{}, fmt.Errorf("issue session: %w", err)
	}

	return Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// SignIn upserts a user, promoting the configured owner to admin.
func (s *service) SignIn(ctx context.Context, user models.UserUpsert) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	if s.cfg.OwnerOpenID != "" && user.OpenID == s.cfg.OwnerOpenID {
		user.Role = models.RoleAdmin
	}
	return s.store.UpsertUser(ctx, user)
}

// Resolve maps a session token to the stored user. Anonymous callers, invalid tokens and
// tokens without a backing user all resolve to nil; only store failures are errors.
func (s *service) Resolve(ctx context.Context, token string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}

	claims, err := s.sessions.Verify(token)
	if err != nil {
		return nil, nil
	}

	user, err := s.store.UserByOpenID(ctx, claims.OpenID)
	if err != nil {
		return nil, fmt.Errorf("resolve session user: %w", err)
	}
	return user, nil
}
