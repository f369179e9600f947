package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-gateway/middleware/session/domain"
)

// DefaultLookupTimeout limita identidade+perfil juntos.
const DefaultLookupTimeout = 3 * time.Second

// Resolver encadeia IdentityProvider e ProfileStore sob um único timeout.
type Resolver struct {
	Identity domain.IdentityProvider
	Profiles domain.ProfileStore
	// Timeout <= 0 usa DefaultLookupTimeout.
	Timeout time.Duration
}

type Resolution struct {
	Session   domain.Session
	Refreshed []domain.Credential
}

// Resolve devolve a sessão do chamador.
//
// Erros:
//   - domain.ErrNoSession: sem usuário válido nas credenciais
//   - domain.ErrProfileUnavailable: falha/timeout no provedor ou no perfil, ou perfil inexistente
//
// Refreshed é preenchido sempre que o provedor rotacionou credenciais, mesmo
// que a busca do perfil falhe depois.
func (r Resolver) Resolve(ctx context.Context, creds domain.Credentials) (Resolution, error) {
	if r.Identity == nil || r.Profiles == nil {
		return Resolution{}, fmt.Errorf("%w: resolver not configured", domain.ErrProfileUnavailable)
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}

	lookupCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type identityResult struct {
		id        domain.Identity
		refreshed []domain.Credential
	}
	idRes, err := bounded(lookupCtx, func(ctx context.Context) (identityResult, error) {
		id, refreshed, err := r.Identity.Resolve(ctx, creds)
		return identityResult{id: id, refreshed: refreshed}, err
	})
	switch {
	case errors.Is(err, domain.ErrNoSession):
		return Resolution{Refreshed: idRes.refreshed}, err
	case err != nil:
		return Resolution{}, fmt.Errorf("%w: identity: %w", domain.ErrProfileUnavailable, err)
	case idRes.id.UserID == "":
		return Resolution{Refreshed: idRes.refreshed}, domain.ErrNoSession
	}

	out := Resolution{Refreshed: idRes.refreshed}

	profile, err := bounded(lookupCtx, func(ctx context.Context) (domain.Profile, error) {
		return r.Profiles.Profile(ctx, idRes.id.UserID)
	})
	if err != nil {
		return out, fmt.Errorf("%w: %w", domain.ErrProfileUnavailable, err)
	}
	if profile.ID == "" {
		profile.ID = idRes.id.UserID
	}

	out.Session = domain.Session{
		UserID:         profile.ID,
		Role:           profile.Role,
		ApprovalStatus: profile.ApprovalStatus,
	}
	return out, nil
}

// bounded executa fn e desiste quando ctx encerra, mesmo que fn ignore o ctx.
// A goroutine termina sozinha quando fn retornar (canal com buffer).
func bounded[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		ch <- result{v: v, err: err}
	}()

	select {
	case res := <-ch:
		return res.v, res.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
