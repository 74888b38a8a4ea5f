package ident

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10000; i++ {
		id := New()
		if len(id) != length {
			t.Fatalf("Expected length %d, got %q", length, id)
		}
		for _, r := range id {
			if !strings.ContainsRune(alphabet, r) {
				t.Fatalf("Unexpected rune %q in %q", r, id)
			}
		}
		if seen[id] {
			t.Fatalf("Duplicate id %q after %d draws", id, i)
		}
		seen[id] = true
	}
}

func TestSequence(t *testing.T) {
	next := Sequence("f")
	for _, want := range []string{"f1", "f2", "f3"} {
		if got := next(); got != want {
			t.Errorf("Expected %s, got %s", want, got)
		}
	}
}

func TestNewIsUniform(t *testing.T) {
	counts := make(map[rune]int)
	for i := 0; i < 20000; i++ {
		for _, r := range New() {
			counts[r]++
		}
	}

	var low, rest int
	for i, r := range alphabet {
		if i < 4 {
			low += counts[r]
		} else {
			rest += counts[r]
		}
	}
	ratio := (float64(low) / 4) / (float64(rest) / float64(len(alphabet)-4))
	t.Logf("First four symbols drawn %.3fx as often as the others", ratio)
	if ratio > 1.07 || ratio < 0.93 {
		t.Errorf("Skewed symbol distribution: ratio %.3f", ratio)
	}
}
