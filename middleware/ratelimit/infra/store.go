package infra

import (
	"context"
	"sync"
	"time"

	"marketplace-gateway/middleware/ratelimit/domain"
)

// MemoryStore é um contador de janela fixa por chave, em memória do processo.
//
// Deve ser criado uma vez no start e injetado no middleware. Não persiste
// entre restarts.
type MemoryStore struct {
	mu             sync.Mutex
	entries        map[domain.Key]domain.Entry
	pruneThreshold int
	cleanupEvery   time.Duration
}

var _ domain.CounterStore = (*MemoryStore)(nil)

type StoreOption func(*MemoryStore)

// WithPruneThreshold altera o tamanho a partir do qual Hit remove entradas expiradas.
func WithPruneThreshold(n int) StoreOption {
	return func(s *MemoryStore) { s.pruneThreshold = n }
}

// WithCleanupEvery habilita limpeza periódica via StartJanitor. 0 desabilita.
func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *MemoryStore) { s.cleanupEvery = d }
}

func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	s := &MemoryStore{
		entries:        make(map[domain.Key]domain.Entry),
		pruneThreshold: domain.PruneThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hit implementa domain.CounterStore.
func (s *MemoryStore) Hit(_ context.Context, key domain.Key, now time.Time, window time.Duration) (domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// limite "soft": só poda o que já expirou, entradas vivas nunca saem.
	if len(s.entries) > s.pruneThreshold {
		s.pruneLocked(now)
	}

	ent, ok := s.entries[key]
	if !ok || ent.Expired(now) {
		ent = domain.Entry{Count: 1, ResetAt: now.Add(window)}
	} else {
		ent.Count++
	}
	s.entries[key] = ent
	return ent, nil
}

// Peek devolve a entrada atual da chave sem contar uma requisição.
func (s *MemoryStore) Peek(key domain.Key) (domain.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ent, ok := s.entries[key]
	return ent, ok
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Prune remove todas as entradas com ResetAt <= now.
func (s *MemoryStore) Prune(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneLocked(now)
}

func (s *MemoryStore) pruneLocked(now time.Time) int {
	removed := 0
	for k, ent := range s.entries {
		if ent.Expired(now) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// StartJanitor inicia uma goroutine que poda janelas expiradas periodicamente.
// Pare cancelando o contexto.
func (s *MemoryStore) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				s.Prune(now)
			}
		}
	}()
}
