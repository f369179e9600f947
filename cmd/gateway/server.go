package main

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"marketplace-gateway/internal/api"
	"marketplace-gateway/internal/logger"
	"marketplace-gateway/internal/store"
	"marketplace-gateway/middleware/ratelimit"
	"marketplace-gateway/middleware/ratelimit/domain"
	"marketplace-gateway/middleware/session"
	"marketplace-gateway/middleware/session/application"
	"marketplace-gateway/middleware/session/infra"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// deps são as dependências já abertas por main (ou pelos testes).
type deps struct {
	db       *sql.DB
	counters domain.CounterStore
	stats    domain.StatsStore
	// registry nil: /metrics não é montado.
	registry *prometheus.Registry
}

// newHandler monta a cadeia ratelimit -> session -> rotas.
func newHandler(cfg config, d deps) (http.Handler, error) {
	provider, err := infra.NewJWTProvider(cfg.sessionSecret,
		infra.WithCookieName(cfg.sessionCookie),
		infra.WithTTL(cfg.sessionTTL),
		infra.WithRefreshWithin(cfg.sessionRefreshWithin),
		infra.WithSecureCookie(cfg.sessionSecureCookie),
	)
	if err != nil {
		return nil, err
	}

	resolver := application.Resolver{
		Identity: provider,
		Profiles: infra.ProfileStore{Repo: store.NewProfileRepository(d.db)},
		Timeout:  cfg.sessionLookupTimeout,
	}
	policy := application.DefaultPolicy()
	policy.RequireApproved = cfg.sessionRequireApproved

	fallback, err := upstreamHandler(cfg.upstreamURL)
	if err != nil {
		return nil, err
	}

	apiHandler := api.NewSQLHandler(d.db, resolver, cfg.defaultCurrency, cfg.studentCurrency)

	r := chi.NewRouter()
	r.Get("/healthz", healthz(d.db))
	if d.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	}
	r.Route("/api", func(r chi.Router) {
		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Not found"}` + "\n"))
		})
		apiHandler.Routes(r)
	})
	r.NotFound(fallback.ServeHTTP)

	h := http.Handler(r)
	h = session.Middleware(session.Options{
		Gate: application.Gate{Policy: policy, Resolver: resolver},
	})(h)
	if cfg.rateEnabled {
		h = ratelimit.Middleware(ratelimit.Options{
			Store:         d.counters,
			Stats:         d.stats,
			ClientHeaders: cfg.rateClientHeaders,
		})(h)
	}
	return h, nil
}

// upstreamHandler encaminha as páginas para UPSTREAM_URL; sem upstream, 404.
func upstreamHandler(raw string) (http.Handler, error) {
	if raw == "" {
		return http.NotFoundHandler(), nil
	}
	target, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Warn("proxy error", "module", "gateway", "action", "proxy", "result", "failed", "path", r.URL.Path, "error", err)
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}
	return proxy, nil
}

func healthz(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(ctx); err != nil {
			logger.Warn("health check", "module", "gateway", "action", "ping", "resource", "db", "result", "failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}` + "\n"))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
	}
}
