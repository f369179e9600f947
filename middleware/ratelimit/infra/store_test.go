package infra

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"marketplace-gateway/middleware/ratelimit/domain"
)

func at(ms int64) time.Time { return time.UnixMilli(ms) }

func TestMemoryStore_FirstHitOpensWindow(t *testing.T) {
	s := NewMemoryStore()

	ent, err := s.Hit(context.Background(), "1.2.3.4", at(0), domain.Window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ent.Count != 1 {
		t.Fatalf("expected count=1, got %d", ent.Count)
	}
	if !ent.ResetAt.Equal(at(60_000)) {
		t.Fatalf("expected reset at 60000ms, got %d", ent.ResetAt.UnixMilli())
	}
}

func TestMemoryStore_IncrementsWithinWindow(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var ent domain.Entry
	for i := 0; i < 61; i++ {
		ent, _ = s.Hit(ctx, "1.2.3.4", at(0), domain.Window)
	}
	if ent.Count != 61 {
		t.Fatalf("expected count=61, got %d", ent.Count)
	}
	if !ent.ResetAt.Equal(at(60_000)) {
		t.Fatalf("expected window reset to stay at 60000ms, got %d", ent.ResetAt.UnixMilli())
	}
}

func TestMemoryStore_ExpiredWindowResetsCount(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 61; i++ {
		_, _ = s.Hit(ctx, "1.2.3.4", at(0), domain.Window)
	}

	ent, _ := s.Hit(ctx, "1.2.3.4", at(60_001), domain.Window)
	if ent.Count != 1 {
		t.Fatalf("expected count reset to 1, got %d", ent.Count)
	}
	if !ent.ResetAt.Equal(at(120_001)) {
		t.Fatalf("expected new reset at 120001ms, got %d", ent.ResetAt.UnixMilli())
	}
}

func TestMemoryStore_ResetInstantStartsNewWindow(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, _ = s.Hit(ctx, "k", at(0), domain.Window)
	_, _ = s.Hit(ctx, "k", at(1), domain.Window)

	// windowResetAt <= now => janela expirada
	ent, _ := s.Hit(ctx, "k", at(60_000), domain.Window)
	if ent.Count != 1 {
		t.Fatalf("expected count=1 at reset instant, got %d", ent.Count)
	}
}

func TestMemoryStore_KeysAreIndependent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, _ = s.Hit(ctx, "a", at(0), domain.Window)
	_, _ = s.Hit(ctx, "a", at(0), domain.Window)
	ent, _ := s.Hit(ctx, "b", at(0), domain.Window)
	if ent.Count != 1 {
		t.Fatalf("expected independent count for key b, got %d", ent.Count)
	}
}

func TestMemoryStore_PruneOnlyAboveThresholdAndOnlyExpired(t *testing.T) {
	s := NewMemoryStore(WithPruneThreshold(3))
	ctx := context.Background()

	// duas expiram em 1000ms, duas vivem até 60000ms
	_, _ = s.Hit(ctx, "old-1", at(0), time.Second)
	_, _ = s.Hit(ctx, "old-2", at(0), time.Second)
	_, _ = s.Hit(ctx, "live-1", at(0), domain.Window)
	_, _ = s.Hit(ctx, "live-2", at(0), domain.Window)
	if s.Len() != 4 {
		t.Fatalf("expected 4 entries, got %d", s.Len())
	}

	_, _ = s.Hit(ctx, "new", at(2_000), domain.Window)

	if _, ok := s.Peek("old-1"); ok {
		t.Fatalf("expected expired entry old-1 to be pruned")
	}
	if _, ok := s.Peek("old-2"); ok {
		t.Fatalf("expected expired entry old-2 to be pruned")
	}
	for _, k := range []domain.Key{"live-1", "live-2", "new"} {
		if _, ok := s.Peek(k); !ok {
			t.Fatalf("expected live entry %q to survive pruning", k)
		}
	}
}

func TestMemoryStore_NoPruneAtOrBelowThreshold(t *testing.T) {
	s := NewMemoryStore(WithPruneThreshold(2))
	ctx := context.Background()

	_, _ = s.Hit(ctx, "old-1", at(0), time.Second)
	_, _ = s.Hit(ctx, "old-2", at(0), time.Second)
	_, _ = s.Hit(ctx, "new", at(5_000), domain.Window)

	// tamanho era 2 (não excede o limite) => nada é podado
	if _, ok := s.Peek("old-1"); !ok {
		t.Fatalf("expected no pruning while size <= threshold")
	}
}

func TestMemoryStore_PruneNeverRemovesLiveEntries(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		_, _ = s.Hit(ctx, domain.Key(fmt.Sprintf("k-%d", i)), at(int64(i)*1_000), domain.Window)
	}

	// em t=80s as chaves abertas antes de t=20s expiraram (reset <= 80s)
	removed := s.Prune(at(80_000))
	if removed != 21 {
		t.Fatalf("expected 21 expired entries pruned, got %d", removed)
	}
	if s.Len() != 79 {
		t.Fatalf("expected 79 live entries, got %d", s.Len())
	}
}

func TestMemoryStore_ConcurrentHitsAreNotLost(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Hit(ctx, "k", at(0), domain.Window)
		}()
	}
	wg.Wait()

	ent, _ := s.Peek("k")
	if ent.Count != 50 {
		t.Fatalf("expected count=50, got %d", ent.Count)
	}
}

func TestMemoryStore_JanitorPrunesExpired(t *testing.T) {
	s := NewMemoryStore(WithCleanupEvery(5 * time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, _ = s.Hit(ctx, "k", time.Now(), time.Millisecond)
	s.StartJanitor(ctx)

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if s.Len() == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected janitor to prune expired entry")
}
