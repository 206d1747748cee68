package profile

import (
	"context"
	"sync"
	"testing"
	"time"

	"expensely/internal/kvstore"
	"expensely/internal/logger"
	"expensely/internal/testutil"
	"expensely/internal/theme"
	"expensely/internal/transactions"
)

func init() {
	logger.Init("test")
}

func testConfig() Config {
	return Config{Latency: transactions.NoLatency(), NotificationTTL: time.Minute}
}

func TestRegistry_GetReturnsSameProfile(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(kvstore.NewMemoryBackend(), testConfig())
	defer r.Close()

	var wg sync.WaitGroup
	got := make([]*Profile, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := r.Get(ctx, "user-1")
			if err != nil {
				t.Errorf("Get: %v", err)
				return
			}
			got[i] = p
		}(i)
	}
	wg.Wait()

	for _, p := range got[1:] {
		if p != got[0] {
			t.Fatal("expected a single shared profile")
		}
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d", r.Len())
	}
}

func TestRegistry_ConcurrentFirstUseSeedsOnce(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.SeedDemoData = true
	r := NewRegistry(kvstore.NewMemoryBackend(), cfg)
	defer r.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Get(ctx, "busy"); err != nil {
				t.Errorf("Get: %v", err)
			}
		}()
	}
	wg.Wait()

	p, err := r.Get(ctx, "busy")
	testutil.AssertNoError(t, err)
	list, err := p.Transactions.FetchAll(ctx)
	testutil.AssertNoError(t, err)
	if len(list) != 4 {
		t.Errorf("expected one demo seed, got %d records", len(list))
	}
}

func TestRegistry_SweepClosesIdleProfiles(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.IdleTimeout = 10 * time.Minute
	r := NewRegistry(kvstore.NewMemoryBackend(), cfg)
	defer r.Close()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	idle, err := r.Get(ctx, "idle")
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, idle.Theme.SetTheme(ctx, theme.Dark))
	_, err = r.Get(ctx, "active")
	testutil.AssertNoError(t, err)

	now = now.Add(6 * time.Minute)
	_, err = r.Get(ctx, "active")
	testutil.AssertNoError(t, err)

	now = now.Add(6 * time.Minute)
	if n := r.Sweep(); n != 1 {
		t.Fatalf("Sweep closed %d profiles, want 1", n)
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
	if idle.Signal.Subscribers() != 0 {
		t.Error("evicted profile should be closed")
	}

	reopened, err := r.Get(ctx, "idle")
	testutil.AssertNoError(t, err)
	if reopened == idle {
		t.Fatal("expected a fresh profile after eviction")
	}
	if reopened.Theme.Preference() != theme.Dark {
		t.Errorf("reopened theme = %s, want dark", reopened.Theme.Preference())
	}
}

func TestRegistry_SweepDisabledWithoutTimeout(t *testing.T) {
	r := NewRegistry(kvstore.NewMemoryBackend(), testConfig())
	defer r.Close()
	r.now = func() time.Time { return time.Now().Add(-24 * time.Hour) }

	_, err := r.Get(context.Background(), "u")
	testutil.AssertNoError(t, err)
	r.now = time.Now
	if n := r.Sweep(); n != 0 || r.Len() != 1 {
		t.Errorf("Sweep closed %d, Len = %d", n, r.Len())
	}
}

func TestRegistry_ProfilesAreIsolated(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(kvstore.NewMemoryBackend(), testConfig())
	defer r.Close()

	alice, err := r.Get(ctx, "alice")
	testutil.AssertNoError(t, err)
	bob, err := r.Get(ctx, "bob")
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, alice.Theme.SetTheme(ctx, theme.Dark))
	if bob.Theme.Preference() != theme.Light {
		t.Errorf("bob theme = %s", bob.Theme.Preference())
	}

	_, err = alice.Transactions.Create(ctx, transactions.Fields{Category: "Food"})
	testutil.AssertNoError(t, err)
	list, err := bob.Transactions.FetchAll(ctx)
	testutil.AssertNoError(t, err)
	if len(list) != 0 {
		t.Errorf("bob sees %d transactions", len(list))
	}
}

func TestOpen_SeedsWhenConfigured(t *testing.T) {
	ctx := context.Background()
	backend := kvstore.NewMemoryBackend()
	cfg := testConfig()
	cfg.SeedDemoData = true

	p, err := Open(ctx, backend, "seeded", cfg)
	testutil.AssertNoError(t, err)
	defer p.Close()

	list, err := p.Transactions.FetchAll(ctx)
	testutil.AssertNoError(t, err)
	if len(list) != 4 {
		t.Errorf("expected demo data, got %d records", len(list))
	}
}

func TestOpen_AppliesStoredThemeAndSignal(t *testing.T) {
	ctx := context.Background()
	backend := kvstore.NewMemoryBackend()
	testutil.AssertNoError(t, backend.Set(ctx, "u", kvstore.KeyTheme, `"system"`))

	cfg := testConfig()
	cfg.SystemDark = true
	p, err := Open(ctx, backend, "u", cfg)
	testutil.AssertNoError(t, err)
	defer p.Close()

	if !p.Document.Has(theme.DarkClass) {
		t.Error("expected dark marker for system preference under a dark OS")
	}
	p.Signal.Set(false)
	if p.Document.Has(theme.DarkClass) {
		t.Error("expected the marker to follow the OS signal")
	}
}

func TestRegistry_Close(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(kvstore.NewMemoryBackend(), testConfig())

	p, err := r.Get(ctx, "u")
	testutil.AssertNoError(t, err)
	p.Notifications.Show("hello")

	r.Close()
	if r.Len() != 0 {
		t.Errorf("Len after close = %d", r.Len())
	}
	if len(p.Notifications.Active()) != 0 {
		t.Error("close should drop notifications")
	}
	if p.Signal.Subscribers() != 0 {
		t.Error("close should unsubscribe the theme store")
	}
}
