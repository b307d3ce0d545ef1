// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-08-10
// Last Modified: 2026-08-20

// Package vault implements the visibility-tagged index adapter: it maps card
// identities onto vector store points and owns the visibility/author payload
// schema those points carry.
package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/similigh/cardvault/internal/integrations/qdrant"
)

// The four error kinds surfaced by the adapter. Engine failures of any cause
// collapse into these; callers match with errors.Is and must not expect a
// transient/permanent distinction.
var (
	ErrValidation = errors.New("validation failed")
	ErrIndexRead  = errors.New("index read failed")
	ErrIndexWrite = errors.New("index write failed")
	ErrSearch     = errors.New("search failed")
)

// PageSize is the fixed number of results per search page.
const PageSize = 10

// Visibility controls who may see a point in search results.
type Visibility string

const (
	Public  Visibility = "public"
	Private Visibility = "private"
)

// ParseVisibility parses a user-supplied visibility string (case-insensitive).
func ParseVisibility(s string) (Visibility, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public":
		return Public, nil
	case "private":
		return Private, nil
	default:
		return "", fmt.Errorf("%w: unknown visibility %q", ErrValidation, s)
	}
}

// SearchResult is one ranked hit: the point's identity and the engine's
// similarity score. The adapter does not interpret the score's sign or scale.
type SearchResult struct {
	PointID uuid.UUID
	Score   float32
}

// Index adapts card visibility semantics onto one vector store collection.
// It holds no state of its own; the collection is the source of truth and
// every method is a single read and/or write against it.
type Index struct {
	store      qdrant.VectorStore
	collection string
}

// NewIndex creates an adapter over the given store and collection.
func NewIndex(store qdrant.VectorStore, collection string) *Index {
	return &Index{
		store:      store,
		collection: collection,
	}
}

// Collection returns the collection name this index writes to.
func (idx *Index) Collection() string {
	return idx.collection
}

// Insert writes a point with its embedding and visibility payload. The upsert
// blocks until the engine acknowledges the write. Inserting the same id twice
// overwrites the first write (upsert semantics); callers that need
// create-only behavior must check existence themselves.
func (idx *Index) Insert(ctx context.Context, id uuid.UUID, vector []float32, visibility Visibility, author string) error {
	if visibility != Public && visibility != Private {
		return fmt.Errorf("%w: unknown visibility %q", ErrValidation, visibility)
	}
	if visibility == Private && author == "" {
		return fmt.Errorf("%w: private point must have an author", ErrValidation)
	}

	// Public points carry an empty payload. Private points carry exactly
	// {private: true, authors: [author]}.
	payload := map[string]interface{}{}
	if visibility == Private {
		payload["private"] = true
		payload["authors"] = []string{author}
	}

	point := &qdrant.Point{
		ID:      id.String(),
		Vector:  vector,
		Payload: payload,
	}

	if err := idx.store.Upsert(ctx, idx.collection, []*qdrant.Point{point}); err != nil {
		return fmt.Errorf("%w: %v", ErrIndexWrite, err)
	}

	return nil
}

// SetVisibility updates a point's visibility payload. The update is
// asymmetric on purpose: a point that is currently public stays public no
// matter what is requested (privacy is granted at insert time only), while a
// private point can gain authors or be opened up to public. The write
// replaces the payload wholesale for that one id.
//
// Concurrent calls on the same id can race: last writer wins on the whole
// payload. Accepted here, not mitigated.
func (idx *Index) SetVisibility(ctx context.Context, id uuid.UUID, newVisibility Visibility, author string) error {
	if newVisibility != Public && newVisibility != Private {
		return fmt.Errorf("%w: unknown visibility %q", ErrValidation, newVisibility)
	}
	if newVisibility == Private && author == "" {
		return fmt.Errorf("%w: private point must have an author", ErrValidation)
	}

	// 1. Fetch the current payload. An empty result and a failed read are
	// the same condition to callers.
	points, err := idx.store.GetPoints(ctx, idx.collection, []string{id.String()}, false, true)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexRead, err)
	}
	if len(points) == 0 {
		return fmt.Errorf("%w: point %s not found", ErrIndexRead, id)
	}
	current := points[0]

	// 2. Read the current flag. Missing or non-boolean counts as public so
	// legacy points written before visibility tagging never hard-fail here.
	currentPrivate := false
	if v, ok := current.Payload["private"]; ok {
		if b, ok := v.(bool); ok {
			currentPrivate = b
		}
	}

	// 3. Already public: nothing to do.
	if !currentPrivate {
		return nil
	}

	// 4. Build the replacement payload.
	var payload map[string]interface{}
	if newVisibility == Private {
		payload = map[string]interface{}{
			"private": true,
			"authors": mergeAuthors(current.Payload["authors"], author),
		}
	} else {
		payload = map[string]interface{}{}
	}

	// 5. Replace wholesale, targeting exactly this id.
	if err := idx.store.OverwritePayload(ctx, idx.collection, []string{id.String()}, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrIndexWrite, err)
	}

	return nil
}

// Search runs a filtered nearest-neighbor query and returns one page of
// results in the engine's own ranking order. Pages are 1-indexed and 10
// results wide; page values below 1 are treated as page 1. A nil filter
// means no payload restriction.
func (idx *Index) Search(ctx context.Context, page int, filter *qdrant.Filter, vector []float32) ([]SearchResult, error) {
	if page < 1 {
		page = 1
	}
	offset := uint64(page-1) * PageSize

	hits, err := idx.store.Search(ctx, idx.collection, vector, PageSize, offset, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearch, err)
	}

	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		pointID, err := uuid.Parse(hit.ID)
		if err != nil {
			// Numeric and otherwise malformed ids belong to point kinds
			// outside this adapter; skip them rather than fail the page.
			continue
		}
		results = append(results, SearchResult{
			PointID: pointID,
			Score:   hit.Score,
		})
	}

	return results, nil
}

// mergeAuthors folds author into the stored authors list, keeping stored
// order, dropping duplicates, empty strings, and non-string entries.
func mergeAuthors(stored interface{}, author string) []string {
	seen := make(map[string]bool)
	merged := make([]string, 0, 4)

	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		merged = append(merged, s)
	}

	if list, ok := stored.([]interface{}); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	}
	add(author)

	return merged
}
