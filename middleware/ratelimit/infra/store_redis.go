package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"marketplace-gateway/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript incrementa o contador e abre a janela na primeira
// requisição. Tudo num único round-trip atômico.
//
// KEYS[1] = chave do contador, ARGV[1] = janela em ms.
// Retorna {count, pttl}.
var fixedWindowScript = redis.NewScript(`
local c = redis.call('INCR', KEYS[1])
local ttl = redis.call('PTTL', KEYS[1])
if c == 1 or ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {c, ttl}
`)

// RedisStore é um CounterStore compartilhado entre réplicas do gateway.
//
// A expiração da janela é delegada ao TTL do Redis, então não há poda manual.
type RedisStore struct {
	rdb    redis.Scripter
	prefix string
}

var _ domain.CounterStore = (*RedisStore)(nil)

type RedisStoreOption func(*RedisStore)

func WithRedisPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func NewRedisStore(rdb redis.Scripter, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		rdb:    rdb,
		prefix: "ratelimit:window",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hit implementa domain.CounterStore.
func (s *RedisStore) Hit(ctx context.Context, key domain.Key, now time.Time, window time.Duration) (domain.Entry, error) {
	res, err := fixedWindowScript.Run(ctx, s.rdb, []string{s.keyFor(key)}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return domain.Entry{}, fmt.Errorf("redis fixed window: %w", err)
	}
	if len(res) != 2 {
		return domain.Entry{}, fmt.Errorf("redis fixed window: unexpected reply %v", res)
	}
	return domain.Entry{
		Count:   res[0],
		ResetAt: now.Add(time.Duration(res[1]) * time.Millisecond),
	}, nil
}

func (s *RedisStore) keyFor(key domain.Key) string {
	return s.prefix + ":" + string(key)
}
