package kvstore_test

import (
	"context"
	"testing"

	"expensely/internal/kvstore"
	"expensely/internal/logger"
	"expensely/internal/testutil"
)

func init() {
	logger.Init("test")
}

// backends runs fn against the memory backend and a sqlite-backed gorm backend.
func backends(t *testing.T, fn func(t *testing.T, b kvstore.Backend)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, kvstore.NewMemoryBackend())
	})
	t.Run("gorm", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		fn(t, kvstore.NewGormBackend(db))
	})
}

func TestBackend_GetSetDelete(t *testing.T) {
	backends(t, func(t *testing.T, b kvstore.Backend) {
		ctx := context.Background()

		_, ok, err := b.Get(ctx, "p1", "k")
		testutil.AssertNoError(t, err)
		if ok {
			t.Fatal("expected absent key")
		}

		testutil.AssertNoError(t, b.Set(ctx, "p1", "k", "v1"))
		testutil.AssertNoError(t, b.Set(ctx, "p1", "k", "v2"))

		got, ok, err := b.Get(ctx, "p1", "k")
		testutil.AssertNoError(t, err)
		if !ok || got != "v2" {
			t.Errorf("Get = %q, %v; want v2, true", got, ok)
		}

		testutil.AssertNoError(t, b.Delete(ctx, "p1", "k"))
		testutil.AssertNoError(t, b.Delete(ctx, "p1", "k"))

		if _, ok, _ := b.Get(ctx, "p1", "k"); ok {
			t.Error("expected key to be gone after delete")
		}
	})
}

func TestBackend_NamespacesAreIsolated(t *testing.T) {
	backends(t, func(t *testing.T, b kvstore.Backend) {
		ctx := context.Background()
		alice := kvstore.New(b, "alice")
		bob := kvstore.New(b, "bob")

		testutil.AssertNoError(t, alice.Set(ctx, kvstore.KeyTheme, `"dark"`))

		if _, ok, _ := bob.Get(ctx, kvstore.KeyTheme); ok {
			t.Error("bob should not see alice's theme")
		}
		if got, _, _ := alice.Get(ctx, kvstore.KeyTheme); got != `"dark"` {
			t.Errorf("alice theme = %q", got)
		}
	})
}

func TestStore_JSON(t *testing.T) {
	type prefs struct {
		Currency string `json:"currency"`
		Count    int    `json:"count"`
	}

	t.Run("round_trip", func(t *testing.T) {
		s := testutil.NewMemoryStore(t)
		ctx := context.Background()

		testutil.AssertNoError(t, s.SetJSON(ctx, "prefs", prefs{Currency: "EUR", Count: 3}))

		var got prefs
		ok, err := s.GetJSON(ctx, "prefs", &got)
		testutil.AssertNoError(t, err)
		if !ok || got.Currency != "EUR" || got.Count != 3 {
			t.Errorf("GetJSON = %+v, %v", got, ok)
		}
	})

	t.Run("corrupt_value_fails_soft", func(t *testing.T) {
		s := testutil.NewMemoryStore(t)
		testutil.SetRaw(t, s, "prefs", "{not json")

		got, err := kvstore.Load(context.Background(), s, "prefs", prefs{Currency: "USD"})
		testutil.AssertNoError(t, err)
		if got.Currency != "USD" {
			t.Errorf("expected default on corrupt value, got %+v", got)
		}
	})

	t.Run("absent_returns_default", func(t *testing.T) {
		s := testutil.NewMemoryStore(t)

		got, err := kvstore.Load(context.Background(), s, "missing", []string{"seed"})
		testutil.AssertNoError(t, err)
		if len(got) != 1 || got[0] != "seed" {
			t.Errorf("expected default, got %v", got)
		}
	})

	t.Run("wrong_shape_fails_soft", func(t *testing.T) {
		s := testutil.NewMemoryStore(t)
		testutil.SetRaw(t, s, "list", `{"a":1}`)

		got, err := kvstore.Load[[]string](context.Background(), s, "list", nil)
		testutil.AssertNoError(t, err)
		if got != nil {
			t.Errorf("expected nil default, got %v", got)
		}
	})
}
