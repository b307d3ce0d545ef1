// Author: Sachindu Nethmin
// GitHub: https://github.com/Sachindu-Nethmin
// Created: 2026-08-12
// Last Modified: 2026-08-12

package gemini

import "testing"

func TestInferEmbeddingDimensions(t *testing.T) {
	tests := []struct {
		name     string
		provider Provider
		model    string
		expected int
	}{
		{"openai large", ProviderOpenAI, "text-embedding-3-large", 3072},
		{"openai small", ProviderOpenAI, "text-embedding-3-small", 1536},
		{"openai ada", ProviderOpenAI, "text-embedding-ada-002", 1536},
		{"openai unknown", ProviderOpenAI, "future-model", 1536},
		{"gemini embedding 001", ProviderGemini, "gemini-embedding-001", 3072},
		{"gemini 004", ProviderGemini, "text-embedding-004", 768},
		{"gemini unknown", ProviderGemini, "future-model", 768},
		{"unknown provider", Provider("other"), "anything", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inferEmbeddingDimensions(tt.provider, tt.model)
			if got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestModelProviderHints(t *testing.T) {
	if !isLikelyGeminiEmbeddingModel("text-embedding-004") {
		t.Error("text-embedding-004 should look like a Gemini model")
	}
	if !isLikelyOpenAIEmbeddingModel("text-embedding-3-small") {
		t.Error("text-embedding-3-small should look like an OpenAI model")
	}
	if isLikelyGeminiEmbeddingModel("text-embedding-3-small") {
		t.Error("text-embedding-3-small should not look like a Gemini model")
	}
	if isLikelyOpenAIEmbeddingModel("gemini-embedding-001") {
		t.Error("gemini-embedding-001 should not look like an OpenAI model")
	}
}
