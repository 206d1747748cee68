package ids

import "testing"

func TestNew(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New()
		if !IsValid(id) {
			t.Fatalf("generated id %q is not a valid uuid", id)
		}
		if id[14] != '7' {
			t.Errorf("expected version 7 uuid, got %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestParse(t *testing.T) {
	t.Run("normalises_case", func(t *testing.T) {
		got, err := Parse("0190A5B2-3C4D-7E8F-9A0B-1C2D3E4F5A6B")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "0190a5b2-3c4d-7e8f-9a0b-1c2d3e4f5a6b" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("rejects_garbage", func(t *testing.T) {
		if _, err := Parse("not-an-id"); err == nil {
			t.Fatal("expected error")
		}
		if IsValid("") {
			t.Error("empty string should not be valid")
		}
	})
}
