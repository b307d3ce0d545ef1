// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-08-12
// Last Modified: 2026-08-19

// Package steps provides the embedder step for turning cards into vectors.
package steps

import (
	"fmt"
	"log"

	"github.com/similigh/cardvault/internal/core/pipeline"
	"github.com/similigh/cardvault/internal/integrations/gemini"
	"github.com/similigh/cardvault/internal/utils/text"
)

// Embedder produces the card's embedding vector and stores it on the context.
type Embedder struct {
	embedder *gemini.Embedder
	dryRun   bool
}

// NewEmbedder creates a new embedder step.
func NewEmbedder(deps *pipeline.Dependencies) *Embedder {
	return &Embedder{
		embedder: deps.Embedder,
		dryRun:   deps.DryRun,
	}
}

// Name returns the step name.
func (s *Embedder) Name() string {
	return "embedder"
}

// Run embeds the card content.
func (s *Embedder) Run(ctx *pipeline.Context) error {
	if s.dryRun {
		log.Printf("[embedder] DRY RUN: Would embed card %s", ctx.Card.ID)
		return nil
	}

	if s.embedder == nil {
		log.Printf("[embedder] WARNING: Missing embedder, skipping")
		return nil
	}

	content := text.BuildEmbeddingContent(ctx.Card.Title, ctx.Card.Body, ctx.Card.Source)

	vector, err := s.embedder.Embed(ctx.Ctx, content)
	if err != nil {
		return fmt.Errorf("failed to generate embedding: %w", err)
	}

	ctx.Vector = vector
	ctx.Result.Embedded = true
	ctx.Result.Dimensions = len(vector)

	log.Printf("[embedder] Embedded card %s (%d dimensions)", ctx.Card.ID, len(vector))
	return nil
}
