// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-08-12
// Last Modified: 2026-08-12

package steps

import (
	"github.com/similigh/cardvault/internal/core/pipeline"
)

// RegisterAll registers all built-in steps with the registry.
func RegisterAll(r *pipeline.Registry) {
	r.Register("validator", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewValidator(deps), nil
	})

	r.Register("embedder", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewEmbedder(deps), nil
	})

	r.Register("indexer", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewIndexer(deps), nil
	})
}
