// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-08-11
// Last Modified: 2026-08-19

// Package pipeline provides the core ingest pipeline engine for CardVault.
// It defines the Step interface and Context structure used by all pipeline steps.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/similigh/cardvault/internal/core/config"
	"github.com/similigh/cardvault/internal/vault"
)

// ErrSkipPipeline indicates that the pipeline should stop gracefully.
// This is not an error condition, just an early exit (e.g., empty card in a
// bulk file, dry-run short circuit).
var ErrSkipPipeline = errors.New("skip remaining pipeline steps")

// Step defines the interface that all pipeline steps must implement.
type Step interface {
	// Name returns the unique identifier for this step.
	Name() string

	// Run executes the step's logic.
	// It should return ErrSkipPipeline to stop the pipeline gracefully,
	// or any other error to indicate failure.
	Run(ctx *Context) error
}

// Card represents one evidence card being ingested. The card's content is
// only used to produce the embedding; the index never stores it.
type Card struct {
	ID         uuid.UUID        `json:"id,omitempty"`
	Title      string           `json:"title"`
	Body       string           `json:"body"`
	Source     string           `json:"source,omitempty"`
	Visibility vault.Visibility `json:"visibility,omitempty"`
	Author     string           `json:"author,omitempty"`
}

// Result holds the accumulated results from pipeline execution.
type Result struct {
	CardID     uuid.UUID
	Skipped    bool
	SkipReason string
	Embedded   bool
	Dimensions int
	Indexed    bool
	Errors     []error
}

// Context carries data through the pipeline steps.
type Context struct {
	// Ctx is the Go context for cancellation and timeouts.
	Ctx context.Context

	// Card is the card being ingested.
	Card *Card

	// Config is the loaded configuration.
	Config *config.Config

	// Vector is the embedding produced by the embedder step.
	Vector []float32

	// Result accumulates the processing results.
	Result *Result

	// Metadata allows steps to pass arbitrary data to subsequent steps.
	Metadata map[string]interface{}
}

// NewContext creates a new pipeline context for a card.
func NewContext(ctx context.Context, card *Card, cfg *config.Config) *Context {
	return &Context{
		Ctx:      ctx,
		Card:     card,
		Config:   cfg,
		Result:   &Result{CardID: card.ID},
		Metadata: make(map[string]interface{}),
	}
}

// Pipeline executes a sequence of steps.
type Pipeline struct {
	steps []Step
}

// New creates a new pipeline with the given steps.
func New(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Run executes all steps in order.
// Stops on the first error (unless it's ErrSkipPipeline, which is graceful).
func (p *Pipeline) Run(ctx *Context) error {
	for _, step := range p.steps {
		if err := step.Run(ctx); err != nil {
			if errors.Is(err, ErrSkipPipeline) {
				// Graceful early exit
				return nil
			}
			return fmt.Errorf("step '%s' failed: %w", step.Name(), err)
		}
	}
	return nil
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// Steps returns the list of steps (for introspection).
func (p *Pipeline) Steps() []Step {
	return p.steps
}
