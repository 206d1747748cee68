package theme

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

func newTestStore(t *testing.T, kv *kvstore.Store, systemDark bool) (*Store, *ManualSignal, *ClassList) {
	t.Helper()
	signal := NewManualSignal(systemDark)
	doc := NewClassList()
	s, err := NewStore(context.Background(), kv, signal, doc)
	testutil.AssertNoError(t, err)
	t.Cleanup(s.Close)
	return s, signal, doc
}

func TestResolve_AllCombinations(t *testing.T) {
	tests := []struct {
		pref       Preference
		systemDark bool
		want       Effective
	}{
		{Light, false, EffectiveLight},
		{Light, true, EffectiveLight},
		{Dark, false, EffectiveDark},
		{Dark, true, EffectiveDark},
		{System, false, EffectiveLight},
		{System, true, EffectiveDark},
	}

	for _, tt := range tests {
		t.Run(string(tt.pref), func(t *testing.T) {
			if got := Resolve(tt.pref, tt.systemDark); got != tt.want {
				t.Errorf("Resolve(%s, %v) = %s, want %s", tt.pref, tt.systemDark, got, tt.want)
			}
		})
	}
}

// The OS signal itself reports light or dark; the third "OS value" is a
// change notification flipping it after construction.
func TestStore_EffectiveThemeMatrix(t *testing.T) {
	for _, pref := range Preferences {
		for _, osDark := range []bool{false, true} {
			for _, flip := range []bool{false, true} {
				kv := testutil.NewMemoryStore(t)
				s, signal, doc := newTestStore(t, kv, osDark)
				testutil.AssertNoError(t, s.SetTheme(context.Background(), pref))

				observed := osDark
				if flip {
					observed = !osDark
					signal.Set(observed)
				}

				want := Effective(pref)
				if pref == System {
					want = EffectiveLight
					if observed {
						want = EffectiveDark
					}
				}
				if got := s.EffectiveTheme(); got != want {
					t.Errorf("pref=%s os=%v flip=%v: effective = %s, want %s", pref, osDark, flip, got, want)
				}
				if doc.Has(DarkClass) != (want == EffectiveDark) {
					t.Errorf("pref=%s os=%v flip=%v: dark marker = %v", pref, osDark, flip, doc.Has(DarkClass))
				}
			}
		}
	}
}

func TestStore_DefaultsToLight(t *testing.T) {
	t.Run("empty_storage", func(t *testing.T) {
		s, _, doc := newTestStore(t, testutil.NewMemoryStore(t), true)
		if s.Preference() != Light {
			t.Errorf("preference = %s, want light", s.Preference())
		}
		if doc.Has(DarkClass) {
			t.Error("light preference must not carry the dark marker")
		}
	})

	t.Run("corrupt_value", func(t *testing.T) {
		kv := testutil.NewMemoryStore(t)
		testutil.SetRaw(t, kv, kvstore.KeyTheme, "dark")
		s, _, _ := newTestStore(t, kv, false)
		if s.Preference() != Light {
			t.Errorf("preference = %s, want light", s.Preference())
		}
	})

	t.Run("unknown_value", func(t *testing.T) {
		kv := testutil.NewMemoryStore(t)
		testutil.SetRaw(t, kv, kvstore.KeyTheme, `"sepia"`)
		s, _, _ := newTestStore(t, kv, false)
		if s.Preference() != Light {
			t.Errorf("preference = %s, want light", s.Preference())
		}
	})
}

func TestStore_SetThemePersists(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewMemoryStore(t)
	s, _, _ := newTestStore(t, kv, false)

	testutil.AssertNoError(t, s.SetTheme(ctx, System))

	raw, ok, err := kv.Get(ctx, kvstore.KeyTheme)
	testutil.AssertNoError(t, err)
	if !ok || raw != `"system"` {
		t.Errorf("stored theme = %q, want \"system\"", raw)
	}

	reopened, _, _ := newTestStore(t, kv, true)
	if reopened.Preference() != System {
		t.Errorf("reopened preference = %s, want system", reopened.Preference())
	}
	if reopened.EffectiveTheme() != EffectiveDark {
		t.Errorf("reopened effective = %s, want dark", reopened.EffectiveTheme())
	}
}

func TestStore_SetThemeRejectsUnknown(t *testing.T) {
	kv := testutil.NewMemoryStore(t)
	s, _, _ := newTestStore(t, kv, false)

	err := s.SetTheme(context.Background(), Preference("blue"))
	testutil.AssertAppError(t, err, "INVALID_THEME")

	if _, ok, _ := kv.Get(context.Background(), kvstore.KeyTheme); ok {
		t.Error("invalid theme must not be persisted")
	}
}

func TestStore_ToggleCycle(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t, testutil.NewMemoryStore(t), false)

	want := []Preference{Dark, System, Light, Dark}
	for i, w := range want {
		got, err := s.ToggleTheme(ctx)
		testutil.AssertNoError(t, err)
		if got != w {
			t.Fatalf("toggle #%d = %s, want %s", i+1, got, w)
		}
	}
}

type recordingDocument struct {
	ClassList
	adds    int
	removes int
}

func (r *recordingDocument) AddClass(name string) {
	r.adds++
	r.ClassList.AddClass(name)
}

func (r *recordingDocument) RemoveClass(name string) {
	r.removes++
	r.ClassList.RemoveClass(name)
}

func TestStore_ReconcileIsIdempotent(t *testing.T) {
	ctx := context.Background()
	doc := &recordingDocument{ClassList: ClassList{classes: make(map[string]struct{})}}
	s, err := NewStore(ctx, testutil.NewMemoryStore(t), NewManualSignal(false), doc)
	testutil.AssertNoError(t, err)
	defer s.Close()

	for i := 0; i < 3; i++ {
		testutil.AssertNoError(t, s.SetTheme(ctx, Dark))
	}
	if got := doc.Classes(); len(got) != 1 || got[0] != DarkClass {
		t.Errorf("classes = %v, want [dark]", got)
	}
	if doc.removes != 4 || doc.adds != 3 {
		t.Errorf("removes=%d adds=%d, want remove-then-add on every reconcile", doc.removes, doc.adds)
	}
}

func TestStore_CloseUnsubscribes(t *testing.T) {
	kv := testutil.NewMemoryStore(t)
	signal := NewManualSignal(false)
	doc := NewClassList()
	s, err := NewStore(context.Background(), kv, signal, doc)
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, s.SetTheme(context.Background(), System))

	if signal.Subscribers() != 1 {
		t.Fatalf("subscribers = %d, want 1", signal.Subscribers())
	}
	s.Close()
	s.Close()
	if signal.Subscribers() != 0 {
		t.Fatalf("subscribers after close = %d, want 0", signal.Subscribers())
	}

	signal.Set(true)
	if doc.Has(DarkClass) {
		t.Error("closed store must not react to the OS signal")
	}
}

func TestParsePreference(t *testing.T) {
	for _, p := range Preferences {
		got, err := ParsePreference(string(p))
		testutil.AssertNoError(t, err)
		if got != p {
			t.Errorf("ParsePreference(%s) = %s", p, got)
		}
	}
	_, err := ParsePreference("Dark")
	testutil.AssertAppError(t, err, "INVALID_THEME")
}

func TestParseClientHint(t *testing.T) {
	tests := []struct {
		in       string
		wantDark bool
		wantOK   bool
	}{
		{"dark", true, true},
		{`"dark"`, true, true},
		{"light", false, true},
		{"", false, false},
		{"no-preference", false, false},
	}
	for _, tt := range tests {
		dark, ok := ParseClientHint(tt.in)
		if dark != tt.wantDark || ok != tt.wantOK {
			t.Errorf("ParseClientHint(%q) = %v, %v", tt.in, dark, ok)
		}
	}
}

func TestParseColorFGBG(t *testing.T) {
	tests := []struct {
		in       string
		wantDark bool
		wantOK   bool
	}{
		{"15;0", true, true},
		{"0;15", false, true},
		{"15;default;0", true, true},
		{"0;7", false, true},
		{"7;8", true, true},
		{"", false, false},
		{"15;default", false, false},
	}
	for _, tt := range tests {
		dark, ok := ParseColorFGBG(tt.in)
		if dark != tt.wantDark || ok != tt.wantOK {
			t.Errorf("ParseColorFGBG(%q) = %v, %v", tt.in, dark, ok)
		}
	}
}
