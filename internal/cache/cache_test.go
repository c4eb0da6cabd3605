package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestLRUEvictsOldest(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a is now most recent
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected a to survive")
	}
	if c.Size() != 2 {
		t.Fatalf("unexpected size %d", c.Size())
	}
}

func TestTTLExpiry(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	c := NewLRUCache[string](10, time.Minute, WithClock(clk.Now))
	c.Set("k", "v")

	clk.Advance(30 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatalf("entry expired too early")
	}
	clk.Advance(31 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("entry should have expired")
	}
	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Size != 0 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestSlidingExpiry(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	c := NewLRUCache[string](10, time.Minute, WithClock(clk.Now), WithSlidingExpiry())
	c.Set("k", "v")
	for i := 0; i < 5; i++ {
		clk.Advance(50 * time.Second)
		if _, ok := c.Get("k"); !ok {
			t.Fatalf("sliding entry expired at step %d", i)
		}
	}
	clk.Advance(61 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("idle entry should expire")
	}
}

func TestManagerCleanNow(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	a := NewLRUCache[int](10, time.Second, WithClock(clk.Now))
	b := NewLRUCache[int](10, time.Hour, WithClock(clk.Now))
	a.Set("x", 1)
	a.Set("y", 2)
	b.Set("z", 3)

	m := NewManager(nil)
	m.Register("a", a)
	m.Register("b", b)
	clk.Advance(2 * time.Second)

	if n := m.CleanNow(); n != 2 {
		t.Fatalf("expected 2 removed, got %d", n)
	}
	if b.Size() != 1 {
		t.Fatalf("long-lived cache must keep its entry")
	}

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}
