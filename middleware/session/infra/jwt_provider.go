package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-gateway/middleware/session/domain"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultCookieName = "sb-access-token"

// JWTProvider valida o token de acesso guardado no cookie de sessão.
//
// O claim `sub` é o user id. Quando faltam menos de RefreshWithin para expirar,
// um novo token é emitido e devolvido como credencial a gravar na resposta.
type JWTProvider struct {
	secret        []byte
	cookieName    string
	ttl           time.Duration
	refreshWithin time.Duration
	secureCookie  bool
	issuer        string
	now           func() time.Time
}

var _ domain.IdentityProvider = (*JWTProvider)(nil)

type JWTOption func(*JWTProvider)

func WithCookieName(name string) JWTOption {
	return func(p *JWTProvider) { p.cookieName = name }
}

func WithTTL(d time.Duration) JWTOption {
	return func(p *JWTProvider) { p.ttl = d }
}

// WithRefreshWithin define a antecedência da rotação. 0 desabilita.
func WithRefreshWithin(d time.Duration) JWTOption {
	return func(p *JWTProvider) { p.refreshWithin = d }
}

func WithSecureCookie(secure bool) JWTOption {
	return func(p *JWTProvider) { p.secureCookie = secure }
}

func WithIssuer(iss string) JWTOption {
	return func(p *JWTProvider) { p.issuer = iss }
}

func WithClock(now func() time.Time) JWTOption {
	return func(p *JWTProvider) { p.now = now }
}

func NewJWTProvider(secret string, opts ...JWTOption) (*JWTProvider, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	p := &JWTProvider{
		secret:        []byte(secret),
		cookieName:    DefaultCookieName,
		ttl:           time.Hour,
		refreshWithin: 5 * time.Minute,
		issuer:        "marketplace-gateway",
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.ttl <= 0 {
		return nil, errors.New("jwt ttl must be > 0")
	}
	return p, nil
}

func (p *JWTProvider) CookieName() string { return p.cookieName }

// Issue assina um token novo para o usuário.
func (p *JWTProvider) Issue(userID string) (string, time.Time, error) {
	now := p.now()
	exp := now.Add(p.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    p.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, exp, nil
}

// Resolve implementa domain.IdentityProvider.
func (p *JWTProvider) Resolve(_ context.Context, creds domain.Credentials) (domain.Identity, []domain.Credential, error) {
	raw, ok := creds.Get(p.cookieName)
	if !ok || raw == "" {
		return domain.Identity{}, nil, domain.ErrNoSession
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5*time.Second),
		jwt.WithIssuer(p.issuer),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return domain.Identity{}, nil, domain.ErrNoSession
	}

	id := domain.Identity{UserID: claims.Subject}

	if p.refreshWithin <= 0 || claims.ExpiresAt.Time.Sub(p.now()) >= p.refreshWithin {
		return id, nil, nil
	}

	signed, exp, err := p.Issue(claims.Subject)
	if err != nil {
		// token atual ainda é válido; segue sem rotacionar
		return id, nil, nil
	}
	return id, []domain.Credential{{
		Name:     p.cookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   p.ttl,
		Expires:  exp,
		HTTPOnly: true,
		Secure:   p.secureCookie,
	}}, nil
}
