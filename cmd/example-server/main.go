package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace-gateway/internal/logger"
	"marketplace-gateway/internal/store"
	"marketplace-gateway/middleware/ratelimit"
	rldomain "marketplace-gateway/middleware/ratelimit/domain"
	rlinfra "marketplace-gateway/middleware/ratelimit/infra"
	"marketplace-gateway/middleware/session"
	"marketplace-gateway/middleware/session/application"
	sessioninfra "marketplace-gateway/middleware/session/infra"
)

// Exemplo: os middlewares injetados direto no seu webserver (sem proxy),
// com um banco em memória e um login de desenvolvimento.
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := store.Open(ctx, "file:example?mode=memory&cache=shared")
	if err != nil {
		logger.Error("open db", "module", "example", "action", "start", "result", "failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	profiles := store.NewProfileRepository(db)
	for _, p := range []store.Profile{
		{ID: "demo-student", Email: "student@example.com", DisplayName: "Demo Student", Role: "student", ApprovalStatus: "approved"},
		{ID: "demo-writer", Email: "writer@example.com", DisplayName: "Demo Writer", Role: "writer", ApprovalStatus: "pending"},
		{ID: "demo-admin", Email: "admin@example.com", DisplayName: "Demo Admin", Role: "admin", ApprovalStatus: "approved"},
	} {
		if _, err := profiles.Create(ctx, p); err != nil {
			logger.Error("seed profile", "module", "example", "action", "start", "result", "failed", "error", err)
			os.Exit(1)
		}
	}

	provider, err := sessioninfra.NewJWTProvider("example-secret")
	if err != nil {
		logger.Error("jwt provider", "module", "example", "action", "start", "result", "failed", "error", err)
		os.Exit(1)
	}
	resolver := application.Resolver{
		Identity: provider,
		Profiles: sessioninfra.ProfileStore{Repo: profiles},
	}

	counters := rlinfra.NewMemoryStore(rlinfra.WithCleanupEvery(rldomain.Window))
	counters.StartJanitor(ctx)
	stats := rlinfra.NewMemoryStatsStore()

	mux := http.NewServeMux()
	// /dev/login?user=demo-student grava o cookie de sessão
	mux.HandleFunc("/dev/login", func(w http.ResponseWriter, r *http.Request) {
		user := r.URL.Query().Get("user")
		if user == "" {
			http.Error(w, "user required", http.StatusBadRequest)
			return
		}
		token, exp, err := provider.Issue(user)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: provider.CookieName(), Value: token, Path: "/", Expires: exp, HttpOnly: true, SameSite: http.SameSiteLaxMode})
		_, _ = fmt.Fprintf(w, "logged in until %s\n", exp.Format(time.RFC3339))
	})
	mux.HandleFunc("/dev/stats", func(w http.ResponseWriter, _ *http.Request) {
		c := stats.Total()
		_, _ = fmt.Fprintf(w, "allowed=%d throttled=%d untracked=%d\n", c.Allowed, c.Throttled, c.Untracked)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if s, ok := session.FromContext(r.Context()); ok {
			_, _ = fmt.Fprintf(w, "ok %s as %s\n", r.URL.Path, s.Role)
			return
		}
		_, _ = fmt.Fprintf(w, "ok %s\n", r.URL.Path)
	})

	h := http.Handler(mux)
	h = session.Middleware(session.Options{
		Gate: application.Gate{Policy: application.DefaultPolicy(), Resolver: resolver},
	})(h)
	h = ratelimit.Middleware(ratelimit.Options{
		Store: counters,
		Stats: stats,
	})(h)

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("example server listening", "module", "example", "action", "start", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "module", "example", "action", "serve", "result", "failed", "error", err)
		os.Exit(1)
	}
}
