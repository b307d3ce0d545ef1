// Author: Sachindu Nethmin
// GitHub: https://github.com/Sachindu-Nethmin
// Created: 2026-08-14
// Last Modified: 2026-08-14

package qdrant

import (
	"testing"
)

func TestPublicOnly(t *testing.T) {
	f := PublicOnly()

	if len(f.Must) != 0 || len(f.Should) != 0 {
		t.Errorf("Expected only must_not conditions, got must=%d should=%d", len(f.Must), len(f.Should))
	}
	if len(f.MustNot) != 1 {
		t.Fatalf("Expected 1 must_not condition, got %d", len(f.MustNot))
	}

	field := f.MustNot[0].GetField()
	if field == nil {
		t.Fatal("Expected a field condition")
	}
	if field.Key != "private" {
		t.Errorf("Expected key 'private', got %q", field.Key)
	}
	if !field.Match.GetBoolean() {
		t.Error("Expected match on private=true")
	}
}

func TestVisibleTo(t *testing.T) {
	f := VisibleTo("alice")

	if len(f.Should) != 2 {
		t.Fatalf("Expected 2 should conditions, got %d", len(f.Should))
	}

	// First branch: nested not-private filter
	nested := f.Should[0].GetFilter()
	if nested == nil {
		t.Fatal("Expected first branch to be a nested filter")
	}
	if len(nested.MustNot) != 1 {
		t.Fatalf("Expected 1 must_not in nested filter, got %d", len(nested.MustNot))
	}
	if key := nested.MustNot[0].GetField().Key; key != "private" {
		t.Errorf("Expected nested key 'private', got %q", key)
	}

	// Second branch: author membership
	field := f.Should[1].GetField()
	if field == nil {
		t.Fatal("Expected second branch to be a field condition")
	}
	if field.Key != "authors" {
		t.Errorf("Expected key 'authors', got %q", field.Key)
	}
	if got := field.Match.GetKeyword(); got != "alice" {
		t.Errorf("Expected keyword 'alice', got %q", got)
	}
}
