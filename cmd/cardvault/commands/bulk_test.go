// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-08-15
// Last Modified: 2026-08-15

package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/similigh/cardvault/internal/core/config"
	"github.com/similigh/cardvault/internal/core/pipeline"
	"github.com/similigh/cardvault/internal/vault"
)

func TestLoadCards(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantErr   bool
		wantCount int
	}{
		{
			name: "valid cards array",
			content: `[
				{
					"title": "Fusion budget memo",
					"body": "The budget rose 40 percent in 2025.",
					"source": "gov-report-2025",
					"visibility": "public"
				},
				{
					"title": "Draft rebuttal",
					"body": "Counter evidence for the energy case.",
					"visibility": "private",
					"author": "alice"
				}
			]`,
			wantErr:   false,
			wantCount: 2,
		},
		{
			name:      "empty array",
			content:   `[]`,
			wantErr:   true,
			wantCount: 0,
		},
		{
			name:      "invalid JSON",
			content:   `[{invalid json`,
			wantErr:   true,
			wantCount: 0,
		},
		{
			name: "missing content",
			content: `[
				{
					"visibility": "public",
					"author": "alice"
				}
			]`,
			wantErr:   true,
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create temporary file
			tmpDir := t.TempDir()
			tmpFile := filepath.Join(tmpDir, "test_cards.json")
			if err := os.WriteFile(tmpFile, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write test file: %v", err)
			}

			// Test loadCards
			cards, err := loadCards(tmpFile)
			if (err != nil) != tt.wantErr {
				t.Errorf("loadCards() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && len(cards) != tt.wantCount {
				t.Errorf("loadCards() got %d cards, want %d", len(cards), tt.wantCount)
			}
		})
	}
}

func TestLoadCards_FileNotFound(t *testing.T) {
	_, err := loadCards("/nonexistent/path/file.json")
	if err == nil {
		t.Error("loadCards() expected error for nonexistent file, got nil")
	}
}

func TestApplyConfigOverrides(t *testing.T) {
	tests := []struct {
		name           string
		collection     string
		wantCollection string
	}{
		{
			name:           "collection override",
			collection:     "custom-cards",
			wantCollection: "custom-cards",
		},
		{
			name:           "no overrides",
			collection:     "",
			wantCollection: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Set global flag
			bulkCollection = tt.collection

			cfg := &config.Config{}
			applyConfigOverrides(cfg)

			if cfg.Qdrant.Collection != tt.wantCollection {
				t.Errorf("collection = %v, want %v", cfg.Qdrant.Collection, tt.wantCollection)
			}
		})
	}
}

func TestFormatJSON(t *testing.T) {
	cardID := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	results := []BulkResult{
		{
			Index: 0,
			Card: pipeline.Card{
				ID:         cardID,
				Title:      "Test Card",
				Body:       "Some body",
				Visibility: vault.Private,
				Author:     "alice",
			},
			Result: &pipeline.Result{
				CardID:     cardID,
				Embedded:   true,
				Dimensions: 768,
				Indexed:    true,
			},
			Error: nil,
		},
		{
			Index: 1,
			Card: pipeline.Card{
				Title: "Failed Card",
				Body:  "Another body",
			},
			Result: nil,
			Error:  &testError{msg: "pipeline failed"},
		},
	}

	data, err := formatJSON(results)
	if err != nil {
		t.Fatalf("formatJSON() error = %v", err)
	}

	// Parse the JSON to validate structure
	var output JSONOutput
	if err := json.Unmarshal(data, &output); err != nil {
		t.Fatalf("Failed to parse JSON output: %v", err)
	}

	// Validate metadata
	if output.TotalCards != 2 {
		t.Errorf("TotalCards = %d, want 2", output.TotalCards)
	}
	if output.Successful != 1 {
		t.Errorf("Successful = %d, want 1", output.Successful)
	}
	if output.Failed != 1 {
		t.Errorf("Failed = %d, want 1", output.Failed)
	}

	// Validate first result
	if len(output.Results) != 2 {
		t.Fatalf("Results length = %d, want 2", len(output.Results))
	}

	first := output.Results[0]
	if first.Card.Title != "Test Card" {
		t.Errorf("First card title = %s, want Test Card", first.Card.Title)
	}
	if first.Result == nil {
		t.Error("First result is nil")
	} else {
		if !first.Result.Indexed {
			t.Error("First result should be indexed")
		}
		if first.Result.Dimensions != 768 {
			t.Errorf("Dimensions = %d, want 768", first.Result.Dimensions)
		}
	}
	if first.Error != "" {
		t.Errorf("First error should be empty, got %s", first.Error)
	}

	// Validate second result (error case)
	second := output.Results[1]
	if second.Card.Title != "Failed Card" {
		t.Errorf("Second card title = %s, want Failed Card", second.Card.Title)
	}
	if second.Result != nil {
		t.Error("Second result should be nil")
	}
	if second.Error == "" {
		t.Error("Second error should not be empty")
	}
}

func TestFormatCSV(t *testing.T) {
	cardID := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	results := []BulkResult{
		{
			Index: 0,
			Card: pipeline.Card{
				ID:         cardID,
				Title:      "Test Card",
				Visibility: vault.Public,
			},
			Result: &pipeline.Result{
				CardID:     cardID,
				Embedded:   true,
				Dimensions: 768,
				Indexed:    true,
			},
			Error: nil,
		},
		{
			Index: 1,
			Card: pipeline.Card{
				Title:      "Failed Card",
				Visibility: vault.Private,
				Author:     "alice",
			},
			Result: nil,
			Error:  &testError{msg: "pipeline error"},
		},
	}

	data, err := formatCSV(results)
	if err != nil {
		t.Fatalf("formatCSV() error = %v", err)
	}

	csvStr := string(data)
	lines := strings.Split(strings.TrimSpace(csvStr), "\n")

	// Check header
	if len(lines) < 1 {
		t.Fatal("CSV output has no lines")
	}

	header := lines[0]
	expectedHeaders := []string{
		"card_id",
		"title",
		"visibility",
		"author",
		"skipped",
		"skip_reason",
		"embedded",
		"dimensions",
		"indexed",
		"error",
	}

	for _, h := range expectedHeaders {
		if !strings.Contains(header, h) {
			t.Errorf("CSV header missing column: %s", h)
		}
	}

	// Check row count (header + 2 data rows)
	if len(lines) != 3 {
		t.Errorf("CSV has %d lines, want 3 (header + 2 rows)", len(lines))
	}

	// Validate first data row contains expected values
	firstRow := lines[1]
	if !strings.Contains(firstRow, cardID.String()) {
		t.Error("First row missing card id")
	}
	if !strings.Contains(firstRow, "Test Card") {
		t.Error("First row missing title")
	}
	if !strings.Contains(firstRow, "768") {
		t.Error("First row missing dimensions")
	}

	// Validate second data row has error
	secondRow := lines[2]
	if !strings.Contains(secondRow, "Failed Card") {
		t.Error("Second row missing title")
	}
	if !strings.Contains(secondRow, "pipeline error") {
		t.Error("Second row missing error message")
	}
}

func TestFormatCSV_EmptyResults(t *testing.T) {
	results := []BulkResult{}
	data, err := formatCSV(results)
	if err != nil {
		t.Fatalf("formatCSV() error = %v", err)
	}

	// Should still have header
	csvStr := string(data)
	lines := strings.Split(strings.TrimSpace(csvStr), "\n")
	if len(lines) != 1 {
		t.Errorf("Empty CSV should have 1 line (header), got %d", len(lines))
	}
}

func TestFormatCSV_FieldEscaping(t *testing.T) {
	results := []BulkResult{
		{
			Index: 0,
			Card: pipeline.Card{
				Title:      "Card with, comma and \"quotes\"",
				Visibility: vault.Public,
			},
			Result: &pipeline.Result{},
			Error:  nil,
		},
	}

	data, err := formatCSV(results)
	if err != nil {
		t.Fatalf("formatCSV() error = %v", err)
	}

	// The CSV library should properly escape the title
	csvStr := string(data)
	if !strings.Contains(csvStr, "comma") {
		t.Error("CSV missing escaped title")
	}
}

// testError is a simple error type for testing
type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}
