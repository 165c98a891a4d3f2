package id

import (
	"strings"
	"testing"
)

func TestRandomGenerator_NewID(t *testing.T) {
	t.Parallel()

	gen := NewRandomGenerator("ws")
	first, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	second, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}

	if !strings.HasPrefix(first, "ws_") || len(first) != len("ws_")+2*defaultByteLen {
		t.Fatalf("unexpected id shape: %q", first)
	}
	if first == second {
		t.Fatalf("expected distinct ids, got %q twice", first)
	}

	bare, err := NewRandomGenerator("").NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if strings.Contains(bare, "_") {
		t.Fatalf("expected unprefixed id, got %q", bare)
	}
}
