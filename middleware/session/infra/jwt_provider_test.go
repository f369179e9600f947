package infra

import (
	"context"
	"testing"
	"time"

	"marketplace-gateway/middleware/session/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

type cookieJar map[string]string

func (c cookieJar) Get(name string) (string, bool) {
	v, ok := c[name]
	return v, ok
}

type manualClock struct{ t time.Time }

func (c *manualClock) Now() time.Time { return c.t }

func newProvider(t *testing.T, clk *manualClock, opts ...JWTOption) *JWTProvider {
	t.Helper()
	opts = append([]JWTOption{WithClock(clk.Now), WithTTL(time.Hour), WithRefreshWithin(5 * time.Minute)}, opts...)
	p, err := NewJWTProvider("test-secret", opts...)
	require.NoError(t, err)
	return p
}

func TestNewJWTProvider_RequiresSecret(t *testing.T) {
	_, err := NewJWTProvider("")
	require.Error(t, err)
}

func TestJWTProvider_ResolvesValidToken(t *testing.T) {
	clk := &manualClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	p := newProvider(t, clk)

	token, _, err := p.Issue("user-1")
	require.NoError(t, err)

	id, refreshed, err := p.Resolve(context.Background(), cookieJar{DefaultCookieName: token})
	require.NoError(t, err)
	require.Equal(t, "user-1", id.UserID)
	require.Empty(t, refreshed)
}

func TestJWTProvider_MissingCookie(t *testing.T) {
	p := newProvider(t, &manualClock{t: time.Now()})

	_, _, err := p.Resolve(context.Background(), cookieJar{})
	require.ErrorIs(t, err, domain.ErrNoSession)
}

func TestJWTProvider_GarbageToken(t *testing.T) {
	p := newProvider(t, &manualClock{t: time.Now()})

	_, _, err := p.Resolve(context.Background(), cookieJar{DefaultCookieName: "not-a-jwt"})
	require.ErrorIs(t, err, domain.ErrNoSession)
}

func TestJWTProvider_ExpiredToken(t *testing.T) {
	clk := &manualClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	p := newProvider(t, clk)

	token, _, err := p.Issue("user-1")
	require.NoError(t, err)

	clk.t = clk.t.Add(2 * time.Hour)
	_, _, err = p.Resolve(context.Background(), cookieJar{DefaultCookieName: token})
	require.ErrorIs(t, err, domain.ErrNoSession)
}

func TestJWTProvider_WrongSecret(t *testing.T) {
	clk := &manualClock{t: time.Now()}
	other, err := NewJWTProvider("other-secret", WithClock(clk.Now))
	require.NoError(t, err)
	token, _, err := other.Issue("user-1")
	require.NoError(t, err)

	p := newProvider(t, clk)
	_, _, err = p.Resolve(context.Background(), cookieJar{DefaultCookieName: token})
	require.ErrorIs(t, err, domain.ErrNoSession)
}

func TestJWTProvider_RejectsOtherAlgorithms(t *testing.T) {
	clk := &manualClock{t: time.Now()}
	p := newProvider(t, clk)

	claims := jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(clk.t.Add(time.Hour))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, _, err = p.Resolve(context.Background(), cookieJar{DefaultCookieName: token})
	require.ErrorIs(t, err, domain.ErrNoSession)
}

func TestJWTProvider_RejectsOtherIssuer(t *testing.T) {
	clk := &manualClock{t: time.Now()}
	p := newProvider(t, clk)

	// mesmo segredo, emitido por outro serviço
	other := newProvider(t, clk, WithIssuer("billing-service"))
	token, _, err := other.Issue("user-1")
	require.NoError(t, err)

	_, _, err = p.Resolve(context.Background(), cookieJar{DefaultCookieName: token})
	require.ErrorIs(t, err, domain.ErrNoSession)

	claims := jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(clk.t.Add(time.Hour))}
	noIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, _, err = p.Resolve(context.Background(), cookieJar{DefaultCookieName: noIssuer})
	require.ErrorIs(t, err, domain.ErrNoSession)
}

func TestJWTProvider_RotatesNearExpiry(t *testing.T) {
	clk := &manualClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	p := newProvider(t, clk, WithSecureCookie(true))

	token, _, err := p.Issue("user-1")
	require.NoError(t, err)

	clk.t = clk.t.Add(57 * time.Minute)
	id, refreshed, err := p.Resolve(context.Background(), cookieJar{DefaultCookieName: token})
	require.NoError(t, err)
	require.Equal(t, "user-1", id.UserID)
	require.Len(t, refreshed, 1)

	c := refreshed[0]
	require.Equal(t, DefaultCookieName, c.Name)
	require.NotEqual(t, token, c.Value)
	require.True(t, c.HTTPOnly)
	require.True(t, c.Secure)
	require.Equal(t, "/", c.Path)
	require.Equal(t, time.Hour, c.MaxAge)
	require.Equal(t, clk.t.Add(time.Hour), c.Expires)

	// o token rotacionado também resolve
	id, _, err = p.Resolve(context.Background(), cookieJar{DefaultCookieName: c.Value})
	require.NoError(t, err)
	require.Equal(t, "user-1", id.UserID)
}

func TestJWTProvider_CustomCookieName(t *testing.T) {
	clk := &manualClock{t: time.Now()}
	p := newProvider(t, clk, WithCookieName("session"))
	require.Equal(t, "session", p.CookieName())

	token, _, err := p.Issue("user-1")
	require.NoError(t, err)

	_, _, err = p.Resolve(context.Background(), cookieJar{DefaultCookieName: token})
	require.ErrorIs(t, err, domain.ErrNoSession)

	id, _, err := p.Resolve(context.Background(), cookieJar{"session": token})
	require.NoError(t, err)
	require.Equal(t, "user-1", id.UserID)
}
