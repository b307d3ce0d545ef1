// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-08-12
// Last Modified: 2026-08-19

// Package steps contains the modular "Lego block" pipeline steps.
// Each step implements the pipeline.Step interface.
package steps

import (
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/similigh/cardvault/internal/core/pipeline"
	"github.com/similigh/cardvault/internal/utils/text"
	"github.com/similigh/cardvault/internal/vault"
)

// Validator checks and normalizes a card before any network work happens.
type Validator struct{}

// NewValidator creates a new validator step.
func NewValidator(deps *pipeline.Dependencies) *Validator {
	return &Validator{}
}

// Name returns the step name.
func (s *Validator) Name() string {
	return "validator"
}

// Run validates the card's fields and assigns its identity.
func (s *Validator) Run(ctx *pipeline.Context) error {
	card := ctx.Card

	// Empty cards in bulk files are skipped, not failed.
	if strings.TrimSpace(card.Title) == "" && strings.TrimSpace(card.Body) == "" {
		log.Printf("[validator] Card has no content, skipping")
		ctx.Result.Skipped = true
		ctx.Result.SkipReason = "card has no content"
		return pipeline.ErrSkipPipeline
	}

	// Normalize visibility; an unset field means public.
	if card.Visibility == "" {
		card.Visibility = vault.Public
	}
	vis, err := vault.ParseVisibility(string(card.Visibility))
	if err != nil {
		return err
	}
	card.Visibility = vis

	card.Author = strings.TrimSpace(card.Author)
	if vis == vault.Private && card.Author == "" {
		return fmt.Errorf("%w: private card must have an author", vault.ErrValidation)
	}

	// Assign a deterministic identity when the card has none, so
	// re-ingesting the same file upserts instead of duplicating points.
	if card.ID == uuid.Nil {
		content := text.BuildEmbeddingContent(card.Title, card.Body, card.Source)
		card.ID = uuid.NewMD5(uuid.NameSpaceURL, []byte(content))
	}
	ctx.Result.CardID = card.ID

	log.Printf("[validator] Card %s ok (visibility=%s)", card.ID, card.Visibility)
	return nil
}
