package application

import (
	"context"
	"time"

	"marketplace-gateway/middleware/ratelimit/domain"
)

// Service concentra a regra de aplicação do rate limit de janela fixa.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type Service struct {
	Store  domain.CounterStore
	Limit  int
	Window time.Duration
	Now    func() time.Time
}

// Decide conta a requisição da chave e decide se ela pode seguir.
//
// Erro do store é devolvido junto com uma decisão permissiva e não rastreada:
// o limiter é uma proteção best-effort e não deve derrubar tráfego legítimo.
func (s Service) Decide(ctx context.Context, key domain.Key) (domain.Decision, error) {
	if s.Store == nil {
		return domain.Decision{Allowed: true}, nil
	}
	if s.Limit <= 0 {
		s.Limit = domain.Capacity
	}
	if s.Window <= 0 {
		s.Window = domain.Window
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	ent, err := s.Store.Hit(ctx, key, now, s.Window)
	if err != nil {
		return domain.Decision{Allowed: true}, err
	}

	dec := domain.Decision{
		Allowed:   ent.Count <= int64(s.Limit),
		Tracked:   true,
		Limit:     s.Limit,
		Remaining: remaining(s.Limit, ent.Count),
		ResetAt:   ent.ResetAt,
	}
	if !dec.Allowed {
		dec.Remaining = 0
		dec.RetryAfter = retryAfter(ent.ResetAt.Sub(now))
	}
	return dec, nil
}

func remaining(limit int, count int64) int {
	r := int64(limit) - count
	if r < 0 {
		return 0
	}
	return int(r)
}

// retryAfter arredonda para cima em segundos inteiros: ceil(ms/1000).
func retryAfter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	secs := (d.Milliseconds() + 999) / 1000
	return time.Duration(secs) * time.Second
}
