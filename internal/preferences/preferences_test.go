package preferences

import (
	"context"
	"testing"

	"expensely/internal/kvstore"
	"expensely/internal/logger"
	"expensely/internal/testutil"
	"expensely/internal/theme"
)

func init() {
	logger.Init("test")
}

type mockThemes struct {
	pref    theme.Preference
	setCall int
}

func (m *mockThemes) Preference() theme.Preference { return m.pref }

func (m *mockThemes) SetTheme(_ context.Context, p theme.Preference) error {
	m.setCall++
	m.pref = p
	return nil
}

func TestStore_LoadDefaults(t *testing.T) {
	themes := &mockThemes{pref: theme.Dark}
	s := NewStore(testutil.NewMemoryStore(t), themes)

	p, err := s.Load(context.Background())
	testutil.AssertNoError(t, err)

	want := Defaults()
	want.Theme = theme.Dark
	if p != want {
		t.Errorf("Load = %+v, want %+v", p, want)
	}
}

func TestStore_LoadCorruptFallsBack(t *testing.T) {
	kv := testutil.NewMemoryStore(t)
	testutil.SetRaw(t, kv, kvstore.KeyPreferences, "{oops")
	s := NewStore(kv, &mockThemes{pref: theme.Light})

	p, err := s.Load(context.Background())
	testutil.AssertNoError(t, err)
	if p.Currency != "USD" || !p.Notifications || !p.AutoBackup || p.EmailReports {
		t.Errorf("expected defaults, got %+v", p)
	}
}

func TestStore_SaveMirrorsTheme(t *testing.T) {
	ctx := context.Background()
	themes := &mockThemes{pref: theme.Light}
	s := NewStore(testutil.NewMemoryStore(t), themes)

	in := Defaults()
	in.Name = "Priya"
	in.Email = "priya@example.com"
	in.Currency = "INR"
	in.Theme = theme.System

	_, err := s.Save(ctx, in)
	testutil.AssertNoError(t, err)
	if themes.pref != theme.System || themes.setCall != 1 {
		t.Errorf("theme store = %s after %d calls", themes.pref, themes.setCall)
	}

	_, err = s.Save(ctx, in)
	testutil.AssertNoError(t, err)
	if themes.setCall != 1 {
		t.Error("unchanged theme must not be re-applied")
	}

	got, err := s.Load(ctx)
	testutil.AssertNoError(t, err)
	if got != in {
		t.Errorf("Load = %+v, want %+v", got, in)
	}
}

func TestStore_LoadReportsThemeStore(t *testing.T) {
	ctx := context.Background()
	themes := &mockThemes{pref: theme.Light}
	s := NewStore(testutil.NewMemoryStore(t), themes)

	_, err := s.Save(ctx, Defaults())
	testutil.AssertNoError(t, err)

	themes.pref = theme.Dark
	got, err := s.Load(ctx)
	testutil.AssertNoError(t, err)
	if got.Theme != theme.Dark {
		t.Errorf("theme = %s, want dark", got.Theme)
	}
}

func TestStore_SaveValidates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Preferences)
	}{
		{"short_name", func(p *Preferences) { p.Name = "A" }},
		{"bad_email", func(p *Preferences) { p.Email = "not-an-email" }},
		{"bad_currency", func(p *Preferences) { p.Currency = "ABC" }},
		{"bad_theme", func(p *Preferences) { p.Theme = "blue" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := testutil.NewMemoryStore(t)
			themes := &mockThemes{pref: theme.Light}
			s := NewStore(kv, themes)

			p := Defaults()
			tt.mutate(&p)
			_, err := s.Save(context.Background(), p)
			testutil.AssertAppError(t, err, "INVALID_INPUT")

			if _, ok, _ := kv.Get(context.Background(), kvstore.KeyPreferences); ok {
				t.Error("invalid preferences must not be persisted")
			}
			if themes.setCall != 0 {
				t.Error("invalid preferences must not touch the theme")
			}
		})
	}
}

func TestStore_WithRealThemeStore(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewMemoryStore(t)
	doc := theme.NewClassList()
	themes, err := theme.NewStore(ctx, kv, theme.NewManualSignal(true), doc)
	testutil.AssertNoError(t, err)
	defer themes.Close()

	s := NewStore(kv, themes)
	p := Defaults()
	p.Theme = theme.System
	_, err = s.Save(ctx, p)
	testutil.AssertNoError(t, err)

	if themes.EffectiveTheme() != theme.EffectiveDark || !doc.Has(theme.DarkClass) {
		t.Error("saving system preference under a dark OS should apply the dark marker")
	}
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	s := NewStore(testutil.NewMemoryStore(t), &mockThemes{pref: theme.Light})

	p := Defaults()
	p.Currency = "EUR"
	_, err := s.Save(ctx, p)
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, s.Reset(ctx))

	got, err := s.Load(ctx)
	testutil.AssertNoError(t, err)
	if got.Currency != "USD" {
		t.Errorf("currency after reset = %s", got.Currency)
	}
}
