package id

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	id, err := Generate("view")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(id, "view-") {
		t.Errorf("expected view- prefix, got %q", id)
	}
	// prefix + "-" + 21-char nanoid
	if len(id) != len("view-")+21 {
		t.Errorf("unexpected length %d for %q", len(id), id)
	}
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		id, err := Generate("t")
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate ID generated: %q", id)
		}
		seen[id] = true
	}
}
