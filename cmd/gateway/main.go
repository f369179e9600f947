package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace-gateway/internal/logger"
	"marketplace-gateway/internal/store"
	"marketplace-gateway/middleware/ratelimit/domain"
	"marketplace-gateway/middleware/ratelimit/infra"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

func main() {
	// .env é opcional; variáveis já exportadas têm precedência
	_ = godotenv.Load()

	cfg, err := readConfig()
	if err != nil {
		logger.Error("config error", "module", "gateway", "action", "start", "result", "failed", "error", err)
		os.Exit(1)
	}
	logger.Init(logger.ParseLevel(cfg.logLevel))

	if err := run(cfg); err != nil {
		logger.Error("gateway stopped", "module", "gateway", "action", "serve", "result", "failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := store.Open(ctx, cfg.dbDSN)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	clients := redisClients{}
	defer clients.Close()

	var d deps
	d.db = db

	d.counters, err = newCounterStore(ctx, cfg, clients)
	if err != nil {
		return err
	}

	if cfg.metricsEnabled {
		d.registry = prometheus.NewRegistry()
		d.registry.MustRegister(collectors.NewGoCollector())
		d.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	d.stats, err = newStatsStore(ctx, cfg, clients, d.registry)
	if err != nil {
		return err
	}

	h, err := newHandler(cfg, d)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("gateway listening", "module", "gateway", "action", "start", "addr", cfg.listenAddr, "upstream", cfg.upstreamURL, "metrics", cfg.metricsEnabled)
	logger.Info("rate limit", "module", "gateway", "action", "start", "enabled", cfg.rateEnabled, "store", cfg.rateStore, "stats", cfg.rateStats, "cleanup_every", cfg.rateCleanupEvery, "client_headers", cfg.rateClientHeaders)
	logger.Info("session gate", "module", "gateway", "action", "start", "cookie", cfg.sessionCookie, "lookup_timeout", cfg.sessionLookupTimeout, "require_approved", cfg.sessionRequireApproved)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newCounterStore escolhe o contador da janela. O janitor do store em memória
// vive até ctx ser cancelado.
func newCounterStore(ctx context.Context, cfg config, clients redisClients) (domain.CounterStore, error) {
	if cfg.rateStore == "redis" {
		rdb, err := clients.get(ctx, cfg.rateRedisAddr, cfg.rateRedisPassword, cfg.rateRedisDB)
		if err != nil {
			return nil, err
		}
		return infra.NewRedisStore(rdb, infra.WithRedisPrefix(cfg.rateRedisPrefix)), nil
	}
	mem := infra.NewMemoryStore(infra.WithCleanupEvery(cfg.rateCleanupEvery))
	mem.StartJanitor(ctx)
	return mem, nil
}

func newStatsStore(ctx context.Context, cfg config, clients redisClients, reg prometheus.Registerer) (domain.StatsStore, error) {
	switch cfg.rateStats {
	case "memory":
		return infra.NewMemoryStatsStore(infra.WithTrackKeys(cfg.rateStatsTrackKeys)), nil
	case "redis":
		rdb, err := clients.get(ctx, cfg.rateStatsRedisAddr, cfg.rateStatsRedisPassword, cfg.rateStatsRedisDB)
		if err != nil {
			return nil, err
		}
		return infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.rateStatsPrefix),
			infra.WithStatsTTL(cfg.rateStatsTTL),
			infra.WithStatsBucket(cfg.rateStatsBucket),
			infra.WithStatsTrackKeys(cfg.rateStatsTrackKeys),
		), nil
	case "prometheus":
		return infra.NewPrometheusStatsStore(reg), nil
	}
	return nil, nil
}

type redisTarget struct {
	addr string
	db   int
}

// redisClients reaproveita o cliente quando contador e stats apontam para o mesmo Redis.
type redisClients map[redisTarget]*redis.Client

func (c redisClients) get(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	key := redisTarget{addr: addr, db: db}
	if rdb, ok := c[key]; ok {
		return rdb, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	_, err := rdb.Ping(pingCtx).Result()
	cancel()
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}
	c[key] = rdb
	return rdb, nil
}

func (c redisClients) Close() {
	for _, rdb := range c {
		_ = rdb.Close()
	}
}
