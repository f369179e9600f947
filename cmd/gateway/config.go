package main

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"marketplace-gateway/middleware/ratelimit"
	"marketplace-gateway/middleware/ratelimit/domain"
	"marketplace-gateway/middleware/session/application"
	"marketplace-gateway/middleware/session/infra"
)

type config struct {
	listenAddr      string
	upstreamURL     string
	logLevel        string
	dbDSN           string
	defaultCurrency string
	studentCurrency string
	metricsEnabled  bool

	rateEnabled       bool
	rateStore         string
	rateRedisAddr     string
	rateRedisPassword string
	rateRedisDB       int
	rateRedisPrefix   string
	rateClientHeaders []string
	rateCleanupEvery  time.Duration

	rateStats              string
	rateStatsRedisAddr     string
	rateStatsRedisPassword string
	rateStatsRedisDB       int
	rateStatsPrefix        string
	rateStatsTTL           time.Duration
	rateStatsBucket        string
	rateStatsTrackKeys     bool

	sessionSecret          string
	sessionCookie          string
	sessionTTL             time.Duration
	sessionRefreshWithin   time.Duration
	sessionLookupTimeout   time.Duration
	sessionRequireApproved bool
	sessionSecureCookie    bool
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.upstreamURL = strings.TrimSpace(os.Getenv("UPSTREAM_URL"))
	cfg.logLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.dbDSN = getenvDefault("DB_DSN", "file:marketplace.db")
	cfg.defaultCurrency = strings.ToUpper(getenvDefault("DEFAULT_CURRENCY", "USD"))
	cfg.studentCurrency = strings.ToUpper(getenvDefault("STUDENT_WALLET_CURRENCY", "KES"))
	cfg.metricsEnabled = getenvBoolDefault("METRICS_ENABLED", false)

	cfg.rateEnabled = getenvBoolDefault("RATE_ENABLED", true)
	cfg.rateStore = strings.ToLower(getenvDefault("RATE_STORE", "memory"))
	cfg.rateRedisAddr = os.Getenv("RATE_REDIS_ADDR")
	cfg.rateRedisPassword = os.Getenv("RATE_REDIS_PASSWORD")
	cfg.rateRedisDB = getenvIntDefault("RATE_REDIS_DB", 0)
	cfg.rateRedisPrefix = getenvDefault("RATE_REDIS_PREFIX", "ratelimit:window")
	cfg.rateClientHeaders = getenvListDefault("RATE_CLIENT_HEADERS", ratelimit.DefaultClientHeaders)
	cfg.rateCleanupEvery = getenvDurationDefault("RATE_CLEANUP_EVERY", domain.Window)

	cfg.rateStats = strings.ToLower(getenvDefault("RATE_STATS", "none"))
	// sem endereço próprio, as stats usam o mesmo Redis do contador
	cfg.rateStatsRedisAddr = getenvDefault("RATE_STATS_REDIS_ADDR", cfg.rateRedisAddr)
	cfg.rateStatsRedisPassword = getenvDefault("RATE_STATS_REDIS_PASSWORD", cfg.rateRedisPassword)
	cfg.rateStatsRedisDB = getenvIntDefault("RATE_STATS_REDIS_DB", cfg.rateRedisDB)
	cfg.rateStatsPrefix = getenvDefault("RATE_STATS_PREFIX", "ratelimit:stats")
	cfg.rateStatsTTL = getenvDurationDefault("RATE_STATS_TTL", 24*time.Hour)
	cfg.rateStatsBucket = getenvDefault("RATE_STATS_BUCKET", "minute")
	cfg.rateStatsTrackKeys = getenvBoolDefault("RATE_STATS_TRACK_KEYS", false)

	cfg.sessionSecret = os.Getenv("SESSION_SECRET")
	cfg.sessionCookie = getenvDefault("SESSION_COOKIE", infra.DefaultCookieName)
	cfg.sessionTTL = getenvDurationDefault("SESSION_TTL", time.Hour)
	cfg.sessionRefreshWithin = getenvDurationDefault("SESSION_REFRESH_WITHIN", 5*time.Minute)
	cfg.sessionLookupTimeout = getenvDurationDefault("SESSION_LOOKUP_TIMEOUT", application.DefaultLookupTimeout)
	cfg.sessionRequireApproved = getenvBoolDefault("SESSION_REQUIRE_APPROVED", false)
	cfg.sessionSecureCookie = getenvBoolDefault("SESSION_SECURE_COOKIE", false)

	// stats em prometheus só fazem sentido com /metrics exposto
	if cfg.rateStats == "prometheus" {
		cfg.metricsEnabled = true
	}

	if cfg.sessionSecret == "" {
		return config{}, errors.New("SESSION_SECRET is required")
	}
	switch cfg.rateStore {
	case "memory":
	case "redis":
		if strings.TrimSpace(cfg.rateRedisAddr) == "" {
			return config{}, errors.New("RATE_REDIS_ADDR is required when RATE_STORE=redis")
		}
	default:
		return config{}, errors.New("RATE_STORE must be memory or redis")
	}
	switch cfg.rateStats {
	case "none", "memory", "prometheus":
	case "redis":
		if strings.TrimSpace(cfg.rateStatsRedisAddr) == "" {
			return config{}, errors.New("RATE_STATS_REDIS_ADDR is required when RATE_STATS=redis")
		}
	default:
		return config{}, errors.New("RATE_STATS must be none, memory, redis or prometheus")
	}
	if cfg.rateCleanupEvery <= 0 {
		return config{}, errors.New("RATE_CLEANUP_EVERY must be > 0")
	}
	if cfg.sessionTTL <= 0 {
		return config{}, errors.New("SESSION_TTL must be > 0")
	}
	if cfg.sessionRefreshWithin < 0 || cfg.sessionRefreshWithin >= cfg.sessionTTL {
		return config{}, errors.New("SESSION_REFRESH_WITHIN must be >= 0 and < SESSION_TTL")
	}
	if cfg.sessionLookupTimeout <= 0 {
		return config{}, errors.New("SESSION_LOOKUP_TIMEOUT must be > 0")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getenvListDefault lê uma lista separada por vírgula, ignorando itens vazios.
func getenvListDefault(k string, def []string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(k), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
