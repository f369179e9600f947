package ratelimit

import (
	"net/http"
	"strings"
	"time"

	"marketplace-gateway/internal/logger"
	"marketplace-gateway/middleware/ratelimit/application"
	"marketplace-gateway/middleware/ratelimit/domain"

	"golang.org/x/time/rate"
)

const (
	HeaderLimit     = "X-RateLimit-Limit"
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderReset     = "X-RateLimit-Reset"
	HeaderRetry     = "Retry-After"
)

// DefaultClientHeaders é a ordem de headers de origem consultados para a chave.
var DefaultClientHeaders = []string{"X-Forwarded-For", "X-Real-IP"}

type KeyFunc func(r *http.Request) domain.Key

type Options struct {
	Store domain.CounterStore
	Stats domain.StatsStore
	KeyFn KeyFunc
	// ClientHeaders substitui DefaultClientHeaders quando KeyFn é nil.
	ClientHeaders []string
	// Now permite fixar o relógio em testes.
	Now func() time.Time
}

// DefaultKeyFunc usa o primeiro header presente e não vazio; de valores como
// "1.2.3.4, 5.6.7.8" pega o primeiro item. Sem nenhum header, devolve "unknown".
func DefaultKeyFunc(headers ...string) KeyFunc {
	if len(headers) == 0 {
		headers = DefaultClientHeaders
	}
	return func(r *http.Request) domain.Key {
		for _, h := range headers {
			v := r.Header.Get(h)
			if v == "" {
				continue
			}
			first, _, _ := strings.Cut(v, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return domain.Key(ip)
			}
		}
		return domain.UnknownKey
	}
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.ClientHeaders...)
	}

	svc := application.Service{
		Store:  opts.Store,
		Limit:  domain.Capacity,
		Window: domain.Window,
		Now:    opts.Now,
	}

	// evita inundar o log quando um cliente martela o endpoint
	throttleLog := &rate.Sometimes{Interval: time.Second}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			dec, err := svc.Decide(r.Context(), key)
			if err != nil {
				logger.Warn("rate limit store failed", "module", "ratelimit", "action", "decide", "result", "failed", "key", string(key), "error", err)
			}
			if opts.Stats != nil {
				if err := opts.Stats.Record(r.Context(), domain.StatsEvent{
					Key:     key,
					Allowed: dec.Allowed,
					Tracked: dec.Tracked,
					Method:  r.Method,
					Path:    r.URL.Path,
					At:      time.Now(),
				}); err != nil {
					logger.Debug("rate limit stats failed", "module", "ratelimit", "action", "record", "result", "failed", "error", err)
				}
			}

			if dec.Tracked {
				writeRateHeaders(w.Header(), dec)
			}

			if !dec.Allowed {
				throttleLog.Do(func() {
					logger.Warn("request throttled", "module", "ratelimit", "action", "decide", "result", "throttled", "key", string(key), "path", r.URL.Path)
				})
				w.Header().Set(HeaderRetry, formatInt(int(dec.RetryAfter/time.Second)))
				writeTooManyRequests(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeRateHeaders é chamado antes do próximo handler, então os headers seguem
// junto com qualquer resposta produzida adiante (redirect do gate, API, proxy).
func writeRateHeaders(h http.Header, dec domain.Decision) {
	h.Set(HeaderLimit, formatInt(dec.Limit))
	h.Set(HeaderRemaining, formatInt(dec.Remaining))
	h.Set(HeaderReset, formatInt64(dec.ResetAt.UnixMilli()))
}

func writeTooManyRequests(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"Too many requests"}`))
}
