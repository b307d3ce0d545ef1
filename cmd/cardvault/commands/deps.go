// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-08-14
// Last Modified: 2026-08-19

package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/similigh/cardvault/internal/core/config"
	"github.com/similigh/cardvault/internal/core/pipeline"
	"github.com/similigh/cardvault/internal/integrations/gemini"
	"github.com/similigh/cardvault/internal/integrations/qdrant"
	"github.com/similigh/cardvault/internal/vault"
)

// initializeDependencies initializes the clients required for pipeline execution.
// needEmbedder controls whether a missing embedding API key is fatal; the
// visibility command works against the store alone.
//
// Environment variables override config values only when the config carries
// the default, so an explicit config file always wins.
func initializeDependencies(cfg *config.Config, needEmbedder bool) (*pipeline.Dependencies, error) {
	deps := &pipeline.Dependencies{}

	// Initialize embedder
	if needEmbedder {
		embedder, err := gemini.NewEmbedder(cfg.Embedding.APIKey, cfg.Embedding.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize embedder: %w", err)
		}
		deps.Embedder = embedder
		if verbose {
			fmt.Printf("✓ Initialized %s embedder with model: %s\n", embedder.Provider(), embedder.Model())
		}
	}

	// Initialize Qdrant client
	qURL := cfg.Qdrant.URL
	if val := os.Getenv("QDRANT_URL"); val != "" && (qURL == "" || qURL == "localhost:6334") {
		qURL = val
	}
	if qURL == "" {
		qURL = "localhost:6334"
	}

	qKey := cfg.Qdrant.APIKey
	if val := os.Getenv("QDRANT_API_KEY"); val != "" && qKey == "" {
		qKey = val
	}

	if verbose {
		fmt.Printf("✓ Connecting to Qdrant at %s\n", qURL)
	}

	store, err := qdrant.NewClient(qURL, qKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Qdrant client: %w", err)
	}
	deps.Store = store

	// Resolve the collection and bind the vault over it. The resolved name is
	// written back so pipeline steps see the same collection.
	collection := cfg.Qdrant.Collection
	if val := os.Getenv("QDRANT_COLLECTION"); val != "" && (collection == "" || collection == config.DefaultCollection) {
		collection = val
	}
	if collection == "" {
		collection = config.DefaultCollection
	}
	cfg.Qdrant.Collection = collection
	deps.Vault = vault.NewIndex(store, collection)

	return deps, nil
}

// ensureCollection creates the card collection when it does not exist yet.
// The vector size comes from the embedder unless the config overrides it.
func ensureCollection(ctx context.Context, deps *pipeline.Dependencies, cfg *config.Config) error {
	dimensions := cfg.Embedding.Dimensions
	if dimensions == 0 && deps.Embedder != nil {
		dimensions = deps.Embedder.Dimensions()
	}
	if dimensions == 0 {
		return fmt.Errorf("cannot determine embedding dimensions for collection %s", cfg.Qdrant.Collection)
	}

	if err := deps.Store.CreateCollection(ctx, cfg.Qdrant.Collection, dimensions); err != nil {
		return fmt.Errorf("failed to ensure collection %s: %w", cfg.Qdrant.Collection, err)
	}

	if verbose {
		fmt.Printf("✓ Collection %s ready (%d dimensions)\n", cfg.Qdrant.Collection, dimensions)
	}
	return nil
}
