package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finsmart/internal/cache"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestAllowWithinWindow(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewLimiter(Config{RequestsPerMinute: 3}, WithClock(clock.Now))

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("fourth request within the window should be refused")
	}
	if !rl.Allow("5.6.7.8") {
		t.Fatal("other clients have their own budget")
	}

	clock.Advance(time.Minute)
	if !rl.Allow("1.2.3.4") {
		t.Fatal("a new window should reset the budget")
	}

	if got := rl.GetMetrics(); got.TotalHits != 1 || got.ClientCount != 2 {
		t.Fatalf("unexpected metrics %+v", got)
	}
}

func TestCleanExpiredDropsIdleClients(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewLimiter(Config{RequestsPerMinute: 10, StaleAfter: 5 * time.Minute}, WithClock(clock.Now))

	rl.Allow("idle")
	clock.Advance(4 * time.Minute)
	rl.Allow("busy")
	clock.Advance(2 * time.Minute)

	if n := rl.CleanExpired(); n != 1 {
		t.Fatalf("expected 1 removed, got %d", n)
	}
	if rl.ActiveClients() != 1 {
		t.Fatalf("expected 1 active client, got %d", rl.ActiveClients())
	}
}

func TestLimiterIsSweptByCacheManager(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewLimiter(Config{StaleAfter: time.Minute}, WithClock(clock.Now))
	rl.Allow("a")
	clock.Advance(2 * time.Minute)

	m := cache.NewManager(nil)
	m.Register("login_limiter", rl)
	if n := m.CleanNow(); n != 1 {
		t.Fatalf("expected manager to drop 1 client, got %d", n)
	}
}

func TestMiddleware(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1})
	extract := func(*http.Request) string { return "9.9.9.9" }
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	h := rl.Middleware(extract, nil)(next)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("first request status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", nil))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Fatal("Retry-After header missing")
	}

	called := false
	custom := rl.Middleware(extract, func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})(next)
	rr = httptest.NewRecorder()
	custom.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", nil))
	if !called || rr.Code != http.StatusTeapot {
		t.Fatalf("custom onLimit not used: called=%v code=%d", called, rr.Code)
	}
}
