package memory

import (
	"context"
	"testing"
)

func TestStoreLoadSave(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, found, err := s.Load(ctx, "budget"); err != nil || found {
		t.Fatalf("expected missing key, found=%v err=%v", found, err)
	}

	if err := s.Save(ctx, "budget", []byte("500")); err != nil {
		t.Fatalf("save: %v", err)
	}
	v, found, err := s.Load(ctx, "budget")
	if err != nil || !found || string(v) != "500" {
		t.Fatalf("unexpected load: v=%q found=%v err=%v", v, found, err)
	}

	// Overwrite wins.
	_ = s.Save(ctx, "budget", []byte("750"))
	v, _, _ = s.Load(ctx, "budget")
	if string(v) != "750" {
		t.Fatalf("expected overwrite, got %q", v)
	}
}

func TestStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	buf := []byte("abc")
	s := NewWith(map[string][]byte{"k": buf})
	buf[0] = 'x'

	v, _, _ := s.Load(ctx, "k")
	if string(v) != "abc" {
		t.Fatalf("seed should be copied, got %q", v)
	}
	v[0] = 'y'
	v2, _, _ := s.Load(ctx, "k")
	if string(v2) != "abc" {
		t.Fatalf("load should return a copy, got %q", v2)
	}

	_ = s.Save(ctx, "a", []byte("1"))
	if keys := s.Keys(); len(keys) != 2 || keys[0] != "a" || keys[1] != "k" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}
