package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is how long an issued session stays valid.
const SessionTTL = 365 * 24 * time.Hour

// ErrInvalidSession covers malformed, expired, forged or foreign session tokens.
var ErrInvalidSession = errors.New("invalid session")

// SessionClaims is the payload of a session token.
type SessionClaims struct {
	OpenID string `json:"openId"`
	AppID  string `json:"appId"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies HS256 session tokens bound to one application id.
type Sessions struct {
	secret []byte
	appID  string
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions builds a token issuer for the given signing secret and application id.
func NewSessions(secret, appID string) *Sessions {
	return &Sessions{
		secret: []byte(secret),
		appID:  appID,
		ttl:    SessionTTL,
		now:    time.Now,
	}
}

// Issue signs a session for the subject and returns the token with its expiry.
func (s *Sessions) Issue(openID, name string) (string, time.Time, error) {
	if openID == "" {
		return "", time.Time{}, fmt.Errorf("%w: subject is required", ErrInvalidSession)
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl)
	claims := SessionClaims{
		OpenID: openID,
		AppID:  s.appID,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   openID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return token, expiresAt, nil
}

// Verify checks signature, expiry and application id, and returns the claims.
func (s *Sessions) Verify(token string) (SessionClaims, error) {
	if token == "" {
		return SessionClaims{}, ErrInvalidSession
	}

	var claims SessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return SessionClaims{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	if claims.OpenID == "" || claims.AppID == "" || claims.Name == "" {
		return SessionClaims{}, fmt.Errorf("%w: missing session fields", ErrInvalidSession)
	}
	if claims.AppID != s.appID {
		return SessionClaims{}, fmt.Errorf("%w: application mismatch", ErrInvalidSession)
	}
	return claims, nil
}
