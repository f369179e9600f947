package ratelimit

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"marketplace-gateway/middleware/ratelimit/domain"
	"marketplace-gateway/middleware/ratelimit/infra"
)

// clock é um relógio manual para os testes de janela.
type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newRequest(ip string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "http://example/api/testimonials", nil)
	if ip != "" {
		r.Header.Set("X-Forwarded-For", ip)
	}
	return r
}

func okHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})
}

func TestMiddleware_SixtyAdmittedThenThrottled(t *testing.T) {
	clk := &clock{now: time.UnixMilli(0)}
	calls := 0
	h := Middleware(Options{Store: infra.NewMemoryStore(), Now: clk.Now})(okHandler(&calls))

	for i := 1; i <= 60; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, newRequest("1.2.3.4"))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
		if got := w.Header().Get(HeaderRemaining); got != strconv.Itoa(60-i) {
			t.Fatalf("request %d: expected remaining %d, got %q", i, 60-i, got)
		}
		if got := w.Header().Get(HeaderLimit); got != "60" {
			t.Fatalf("expected limit 60, got %q", got)
		}
		if got := w.Header().Get(HeaderReset); got != "60000" {
			t.Fatalf("expected reset 60000, got %q", got)
		}
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, newRequest("1.2.3.4"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on request 61, got %d", w.Code)
	}
	if got := w.Header().Get(HeaderRetry); got != "60" {
		t.Fatalf("expected Retry-After=60, got %q", got)
	}
	if got := w.Header().Get(HeaderRemaining); got != "0" {
		t.Fatalf("expected remaining 0, got %q", got)
	}
	if got := w.Header().Get(HeaderReset); got != "60000" {
		t.Fatalf("expected reset 60000, got %q", got)
	}
	if got := w.Body.String(); got != `{"error":"Too many requests"}` {
		t.Fatalf("unexpected body %q", got)
	}
	if calls != 60 {
		t.Fatalf("expected next handler to be called 60 times, got %d", calls)
	}
}

func TestMiddleware_NewWindowAfterExpiry(t *testing.T) {
	clk := &clock{now: time.UnixMilli(0)}
	store := infra.NewMemoryStore()
	calls := 0
	h := Middleware(Options{Store: store, Now: clk.Now})(okHandler(&calls))

	for i := 0; i < 61; i++ {
		h.ServeHTTP(httptest.NewRecorder(), newRequest("1.2.3.4"))
	}

	clk.now = time.UnixMilli(60_001)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, newRequest("1.2.3.4"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 after window expiry, got %d", w.Code)
	}
	if got := w.Header().Get(HeaderRemaining); got != "59" {
		t.Fatalf("expected remaining 59 in the new window, got %q", got)
	}
	ent, _ := store.Peek("1.2.3.4")
	if ent.Count != 1 {
		t.Fatalf("expected count reset to 1, got %d", ent.Count)
	}
}

func TestMiddleware_RetryAfterRoundsUp(t *testing.T) {
	clk := &clock{now: time.UnixMilli(0)}
	calls := 0
	h := Middleware(Options{Store: infra.NewMemoryStore(), Now: clk.Now})(okHandler(&calls))

	for i := 0; i < 60; i++ {
		h.ServeHTTP(httptest.NewRecorder(), newRequest("1.2.3.4"))
	}

	clk.now = time.UnixMilli(30_500)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, newRequest("1.2.3.4"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	// 29.5s restantes => 30
	if got := w.Header().Get(HeaderRetry); got != "30" {
		t.Fatalf("expected Retry-After=30, got %q", got)
	}
}

func TestMiddleware_KeysAreIndependent(t *testing.T) {
	clk := &clock{now: time.UnixMilli(0)}
	calls := 0
	h := Middleware(Options{Store: infra.NewMemoryStore(), Now: clk.Now})(okHandler(&calls))

	for i := 0; i < 61; i++ {
		h.ServeHTTP(httptest.NewRecorder(), newRequest("1.2.3.4"))
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, newRequest("5.6.7.8"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected other client to pass, got %d", w.Code)
	}
}

func TestMiddleware_UnknownClientsShareOneBucket(t *testing.T) {
	clk := &clock{now: time.UnixMilli(0)}
	store := infra.NewMemoryStore()
	calls := 0
	h := Middleware(Options{Store: store, Now: clk.Now})(okHandler(&calls))

	h.ServeHTTP(httptest.NewRecorder(), newRequest(""))
	h.ServeHTTP(httptest.NewRecorder(), newRequest(""))

	ent, ok := store.Peek(domain.UnknownKey)
	if !ok || ent.Count != 2 {
		t.Fatalf("expected unknown bucket with count 2, got %+v (ok=%v)", ent, ok)
	}
}

type failingStore struct{}

func (failingStore) Hit(context.Context, domain.Key, time.Time, time.Duration) (domain.Entry, error) {
	return domain.Entry{}, errors.New("redis down")
}

func TestMiddleware_StoreFailureFailsOpenWithoutHeaders(t *testing.T) {
	calls := 0
	stats := infra.NewMemoryStatsStore()
	h := Middleware(Options{Store: failingStore{}, Stats: stats})(okHandler(&calls))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, newRequest("1.2.3.4"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 when store fails, got %d", w.Code)
	}
	if got := w.Header().Get(HeaderLimit); got != "" {
		t.Fatalf("expected no rate limit headers on untracked request, got %q", got)
	}
	if got := stats.Total().Untracked; got != 1 {
		t.Fatalf("expected 1 untracked stat, got %d", got)
	}
}

func TestMiddleware_RecordsStats(t *testing.T) {
	clk := &clock{now: time.UnixMilli(0)}
	stats := infra.NewMemoryStatsStore()
	calls := 0
	h := Middleware(Options{Store: infra.NewMemoryStore(), Stats: stats, Now: clk.Now})(okHandler(&calls))

	for i := 0; i < 62; i++ {
		h.ServeHTTP(httptest.NewRecorder(), newRequest("1.2.3.4"))
	}

	total := stats.Total()
	if total.Allowed != 60 || total.Throttled != 2 {
		t.Fatalf("unexpected totals %+v", total)
	}
	if got := stats.ByRoute()["GET /api/testimonials"].Throttled; got != 2 {
		t.Fatalf("expected 2 throttled on route, got %d", got)
	}
}

func TestMiddleware_HeadersVisibleToNextHandler(t *testing.T) {
	clk := &clock{now: time.UnixMilli(0)}
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = w.Header().Get(HeaderRemaining)
		http.Redirect(w, r, "/login", http.StatusTemporaryRedirect)
	})
	h := Middleware(Options{Store: infra.NewMemoryStore(), Now: clk.Now})(next)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, newRequest("1.2.3.4"))
	if seen != "59" {
		t.Fatalf("expected next handler to see remaining=59, got %q", seen)
	}
	if got := w.Header().Get(HeaderRemaining); got != "59" {
		t.Fatalf("expected headers propagated on redirect, got %q", got)
	}
}
