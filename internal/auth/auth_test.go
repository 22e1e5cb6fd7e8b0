package auth

import (
	"crypto/tls"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestIssueAndVerify(t *testing.T) {
	sessions := NewSessions("0123456789abcdef", "stagebook")

	token, expiresAt, err := sessions.Issue("owner", "Admin")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(SessionTTL), expiresAt, time.Minute)

	claims, err := sessions.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "owner", claims.OpenID)
	require.Equal(t, "stagebook", claims.AppID)
	require.Equal(t, "Admin", claims.Name)
}

func TestVerifyRejectsForeignApp(t *testing.T) {
	issuer := NewSessions("0123456789abcdef", "other-app")
	token, _, err := issuer.Issue("owner", "Admin")
	require.NoError(t, err)

	_, err = NewSessions("0123456789abcdef", "stagebook").Verify(token)
	require.True(t, errors.Is(err, ErrInvalidSession))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, _, err := NewSessions("secret-one-secret-one", "stagebook").Issue("owner", "Admin")
	require.NoError(t, err)

	_, err = NewSessions("secret-two-secret-two", "stagebook").Verify(token)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestVerifyRejectsExpired(t *testing.T) {
	sessions := NewSessions("0123456789abcdef", "stagebook")
	sessions.now = func() time.Time { return time.Now().Add(-2 * SessionTTL) }
	token, _, err := sessions.Issue("owner", "Admin")
	require.NoError(t, err)

	sessions.now = time.Now
	_, err = sessions.Verify(token)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	claims := SessionClaims{
		OpenID: "owner", AppID: "stagebook", Name: "Admin",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewSessions("0123456789abcdef", "stagebook").Verify(token)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestVerifyRequiresName(t *testing.T) {
	sessions := NewSessions("0123456789abcdef", "stagebook")
	token, _, err := sessions.Issue("owner", "")
	require.NoError(t, err)

	_, err = sessions.Verify(token)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestCheckPasscode(t *testing.T) {
	require.True(t, CheckPasscode("letmein", "letmein"))
	require.False(t, CheckPasscode("letmein", "letmeout"))
	require.False(t, CheckPasscode("", ""))

	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	require.NoError(t, err)
	require.True(t, CheckPasscode(string(hash), "letmein"))
	require.False(t, CheckPasscode(string(hash), "nope"))
}

func TestCookies(t *testing.T) {
	cookie := SessionCookie("tok", time.Now().Add(time.Hour), true)
	require.Equal(t, CookieName, cookie.Name)
	require.True(t, cookie.HttpOnly)
	require.True(t, cookie.Secure)
	require.Equal(t, "/", cookie.Path)
	require.Equal(t, http.SameSiteNoneMode, cookie.SameSite)

	cleared := ClearedCookie(false)
	require.Equal(t, -1, cleared.MaxAge)
	require.False(t, cleared.Secure)
}

func TestIsSecureRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.False(t, IsSecureRequest(req))

	req.Header.Set("X-Forwarded-Proto", "http, https")
	require.True(t, IsSecureRequest(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	require.True(t, IsSecureRequest(req))
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Empty(t, TokenFromRequest(req))

	req.AddCookie(&http.Cookie{Name: CookieName, Value: "tok"})
	require.Equal(t, "tok", TokenFromRequest(req))
}
