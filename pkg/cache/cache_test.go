package cache

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New()
	c.Set("elasticity:85123A", 42, time.Minute)

	got, ok := c.Get("elasticity:85123A")
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if got.(int) != 42 {
		t.Fatalf("unexpected cached value %v", got)
	}

	if _, ok := c.Get("elasticity:missing"); ok {
		t.Fatal("expected a cache miss")
	}
}

func TestLazyExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New(WithClock(func() time.Time { return now }))

	c.Set("rfm:segments", "payload", time.Hour)
	if _, ok := c.Get("rfm:segments"); !ok {
		t.Fatal("expected entry to be live before TTL")
	}

	now = now.Add(time.Hour + time.Second)
	if _, ok := c.Get("rfm:segments"); ok {
		t.Fatal("expected entry to expire after TTL")
	}
	if got := c.Stats().Entries; got != 0 {
		t.Fatalf("expected expired entry to be deleted on read, have %d entries", got)
	}
}

func TestStatsAndClear(t *testing.T) {
	c := New()
	c.Set("kpi:all", 1, time.Minute)

	c.Get("kpi:all")
	c.Get("kpi:all")
	c.Get("kpi:nope")

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 {
		t.Fatalf("unexpected counters hits=%d misses=%d", s.Hits, s.Misses)
	}
	if s.HitRate != 66.67 {
		t.Fatalf("expected hit rate 66.67, got %v", s.HitRate)
	}

	c.Clear()
	s = c.Stats()
	if s.Hits != 0 || s.Misses != 0 || s.Entries != 0 {
		t.Fatalf("expected Clear to reset everything, got %+v", s)
	}
}

func TestClearPrefix(t *testing.T) {
	c := New()
	c.Set("elasticity:a", 1, time.Minute)
	c.Set("elasticity:b", 2, time.Minute)
	c.Set("rfm:segments", 3, time.Minute)

	if removed := c.ClearPrefix("elasticity:"); removed != 2 {
		t.Fatalf("expected 2 removals, got %d", removed)
	}
	if _, ok := c.Get("rfm:segments"); !ok {
		t.Fatal("expected unrelated prefix to survive")
	}
}

func TestKey_SortsSliceParts(t *testing.T) {
	a := Key("elasticity", []string{"b", "a", "c"}, 200)
	b := Key("elasticity", []string{"c", "a", "b"}, 200)
	if a != b {
		t.Fatalf("expected order-independent keys, got %q vs %q", a, b)
	}
	if a != "elasticity:a,b,c:200" {
		t.Fatalf("unexpected key %q", a)
	}
}

func TestKey_HashesLongKeys(t *testing.T) {
	long := strings.Repeat("x", 300)
	key := Key("trends", long)
	if !strings.HasPrefix(key, "trends:") {
		t.Fatalf("hashed key should keep its prefix, got %q", key)
	}
	if len(key) != len("trends:")+32 {
		t.Fatalf("expected md5 hex suffix, got %q", key)
	}
}

func TestDo_CachesComputation(t *testing.T) {
	c := New()
	calls := 0
	compute := func() (string, error) {
		calls++
		return "result", nil
	}

	for i := 0; i < 3; i++ {
		got, err := Do(c, "dashboard:kpis", time.Minute, compute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "result" {
			t.Fatalf("unexpected value %q", got)
		}
	}
	if calls != 1 {
		t.Fatalf("expected a single computation, got %d", calls)
	}
}

func TestDo_ErrorNotCached(t *testing.T) {
	c := New()
	calls := 0
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		if _, err := Do(c, "dashboard:kpis", time.Minute, func() (int, error) {
			calls++
			return 0, boom
		}); !errors.Is(err, boom) {
			t.Fatalf("expected compute error, got %v", err)
		}
	}
	if calls != 2 {
		t.Fatalf("expected failures to bypass the cache, got %d calls", calls)
	}
}
