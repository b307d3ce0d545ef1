// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-08-12
// Last Modified: 2026-08-19

// Package steps provides the indexer step for writing cards into the vector index.
package steps

import (
	"fmt"
	"log"

	"github.com/similigh/cardvault/internal/core/pipeline"
	"github.com/similigh/cardvault/internal/vault"
)

// Indexer writes the embedded card into the visibility-tagged index.
type Indexer struct {
	vault  *vault.Index
	dryRun bool
}

// NewIndexer creates a new indexer step.
func NewIndexer(deps *pipeline.Dependencies) *Indexer {
	return &Indexer{
		vault:  deps.Vault,
		dryRun: deps.DryRun,
	}
}

// Name returns the step name.
func (s *Indexer) Name() string {
	return "indexer"
}

// Run inserts the card's point.
func (s *Indexer) Run(ctx *pipeline.Context) error {
	collectionName := ctx.Config.Qdrant.Collection

	if s.dryRun {
		log.Printf("[indexer] DRY RUN: Would index card %s into %s", ctx.Card.ID, collectionName)
		return nil
	}

	if s.vault == nil {
		log.Printf("[indexer] WARNING: Missing index, skipping")
		return nil
	}

	if len(ctx.Vector) == 0 {
		log.Printf("[indexer] WARNING: No vector on context, skipping")
		return nil
	}

	err := s.vault.Insert(ctx.Ctx, ctx.Card.ID, ctx.Vector, ctx.Card.Visibility, ctx.Card.Author)
	if err != nil {
		return fmt.Errorf("failed to index card: %w", err)
	}

	ctx.Result.Indexed = true
	log.Printf("[indexer] Indexed card %s to %s", ctx.Card.ID, collectionName)

	return nil
}
