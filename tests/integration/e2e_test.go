// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-08-16
// Last Modified: 2026-08-20

package integration

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"

	"github.com/similigh/cardvault/internal/core/config"
	"github.com/similigh/cardvault/internal/core/pipeline"
	"github.com/similigh/cardvault/internal/integrations/qdrant"
	"github.com/similigh/cardvault/internal/steps"
	"github.com/similigh/cardvault/internal/vault"
)

// MockStep mocks the pipeline.Step interface. The lifecycle test uses it to
// stand in for the embedder so no provider credentials are needed.
type MockStep struct {
	NameFunc func() string
	RunFunc  func(ctx *pipeline.Context) error
}

func (m *MockStep) Name() string {
	if m.NameFunc != nil {
		return m.NameFunc()
	}
	return "mock_step"
}

func (m *MockStep) Run(ctx *pipeline.Context) error {
	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	return nil
}

// memoryStore is an in-memory VectorStore with cosine ranking and filter
// evaluation, close enough to the engine to run the full card lifecycle.
type memoryStore struct {
	mu     sync.Mutex
	points map[string]*qdrant.Point
}

func newMemoryStore() *memoryStore {
	return &memoryStore{points: make(map[string]*qdrant.Point)}
}

func (m *memoryStore) CreateCollection(ctx context.Context, name string, dimension int) error {
	return nil
}

func (m *memoryStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	return true, nil
}

func (m *memoryStore) Upsert(ctx context.Context, collectionName string, points []*qdrant.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range points {
		copied := &qdrant.Point{
			ID:      p.ID,
			Vector:  append([]float32(nil), p.Vector...),
			Payload: normalizePayload(p.Payload),
		}
		m.points[p.ID] = copied
	}
	return nil
}

func (m *memoryStore) GetPoints(ctx context.Context, collectionName string, ids []string, withVectors, withPayload bool) ([]*qdrant.Point, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*qdrant.Point
	for _, id := range ids {
		if p, ok := m.points[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryStore) OverwritePayload(ctx context.Context, collectionName string, ids []string, payload map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if p, ok := m.points[id]; ok {
			p.Payload = normalizePayload(payload)
		}
	}
	return nil
}

func (m *memoryStore) Search(ctx context.Context, collectionName string, vector []float32, limit, offset uint64, filter *qdrant.Filter) ([]*qdrant.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matches []*qdrant.SearchResult
	for _, p := range m.points {
		if !matchesFilter(p, filter) {
			continue
		}
		matches = append(matches, &qdrant.SearchResult{
			ID:      p.ID,
			Score:   cosine(vector, p.Vector),
			Payload: p.Payload,
		})
	}

	// Deterministic ranking: score first, id breaks ties
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})

	if int(offset) >= len(matches) {
		return nil, nil
	}
	matches = matches[offset:]
	if uint64(len(matches)) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (m *memoryStore) Delete(ctx context.Context, collectionName string, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.points, id)
	return nil
}

func (m *memoryStore) Close() error {
	return nil
}

// normalizePayload models the engine round trip: typed lists come back as
// []interface{}.
func normalizePayload(payload map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		if list, ok := v.([]string); ok {
			converted := make([]interface{}, len(list))
			for i, s := range list {
				converted[i] = s
			}
			out[k] = converted
			continue
		}
		out[k] = v
	}
	return out
}

func matchesFilter(p *qdrant.Point, filter *qdrant.Filter) bool {
	if filter == nil {
		return true
	}
	for _, cond := range filter.MustNot {
		if matchesCondition(p, cond) {
			return false
		}
	}
	if len(filter.Should) > 0 {
		any := false
		for _, cond := range filter.Should {
			if matchesCondition(p, cond) {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}
	return true
}

func matchesCondition(p *qdrant.Point, cond *pb.Condition) bool {
	switch c := cond.ConditionOneOf.(type) {
	case *pb.Condition_Field:
		return matchesField(p, c.Field)
	case *pb.Condition_Filter:
		return matchesFilter(p, c.Filter)
	}
	return false
}

func matchesField(p *qdrant.Point, f *pb.FieldCondition) bool {
	val, ok := p.Payload[f.Key]
	if !ok || f.Match == nil {
		return false
	}
	switch m := f.Match.MatchValue.(type) {
	case *pb.Match_Boolean:
		b, ok := val.(bool)
		return ok && b == m.Boolean
	case *pb.Match_Keyword:
		switch v := val.(type) {
		case string:
			return v == m.Keyword
		case []interface{}:
			for _, item := range v {
				if s, ok := item.(string); ok && s == m.Keyword {
					return true
				}
			}
		}
	}
	return false
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

func TestEndToEndPipelineDryRun(t *testing.T) {
	// 1. Setup minimal config and card
	cfg := &config.Config{}
	cfg.Qdrant.Collection = "cards-test"

	card := &pipeline.Card{
		Title:      "Integration Test Card",
		Body:       "This card verifies the ingest plumbing end to end.",
		Visibility: vault.Public,
	}

	ctx := context.Background()
	pCtx := pipeline.NewContext(ctx, card, cfg)

	// 2. Setup mock dependencies (DryRun keeps every step offline)
	deps := &pipeline.Dependencies{
		DryRun: true,
	}

	// 3. Create pipeline using Registry
	registry := pipeline.NewRegistry()
	steps.RegisterAll(registry)

	stepNames := pipeline.ResolveSteps(nil, "card-ingest")

	p, err := registry.BuildFromNames(stepNames, deps)
	if err != nil {
		t.Fatalf("Failed to build pipeline: %v", err)
	}

	// 4. Run Pipeline
	startTime := time.Now()
	err = p.Run(pCtx)
	duration := time.Since(startTime)

	// 5. Verify Results
	if err != nil {
		t.Fatalf("Pipeline execution failed: %v", err)
	}

	t.Logf("Pipeline passed in %v", duration)
	t.Logf("Result: %+v", pCtx.Result)

	if pCtx.Result.Skipped {
		t.Fatalf("Pipeline skipped unexpectedly: %s", pCtx.Result.SkipReason)
	}
	if pCtx.Result.CardID == uuid.Nil {
		t.Error("Expected the validator to assign a card id")
	}
	if pCtx.Result.Indexed {
		t.Error("Dry run must not report an index write")
	}
}

func TestCardLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	deps := &pipeline.Dependencies{
		Store: store,
		Vault: vault.NewIndex(store, "cards-test"),
	}

	cfg := &config.Config{}
	cfg.Qdrant.Collection = "cards-test"

	// Per-card vectors, picked so the query ranks them public-a, shared-b,
	// private-c.
	vectors := map[string][]float32{
		"public-a":  {1, 0, 0, 0},
		"shared-b":  {0.9, 0.1, 0, 0},
		"private-c": {0, 1, 0, 0},
	}
	query := []float32{1, 0, 0, 0}

	embedStep := &MockStep{
		NameFunc: func() string { return "embedder" },
		RunFunc: func(pCtx *pipeline.Context) error {
			vec, ok := vectors[pCtx.Card.Title]
			if !ok {
				return fmt.Errorf("no test vector for card %q", pCtx.Card.Title)
			}
			pCtx.Vector = vec
			pCtx.Result.Embedded = true
			pCtx.Result.Dimensions = len(vec)
			return nil
		},
	}

	ingest := pipeline.New(steps.NewValidator(deps), embedStep, steps.NewIndexer(deps))

	cards := []*pipeline.Card{
		{Title: "public-a", Body: "public card"},
		{Title: "shared-b", Body: "private card with a growing author list", Visibility: vault.Private, Author: "bob"},
		{Title: "private-c", Body: "private card", Visibility: vault.Private, Author: "carol"},
	}

	ids := make(map[string]uuid.UUID)
	for _, card := range cards {
		pCtx := pipeline.NewContext(ctx, card, cfg)
		if err := ingest.Run(pCtx); err != nil {
			t.Fatalf("Ingest of %s failed: %v", card.Title, err)
		}
		if !pCtx.Result.Indexed {
			t.Fatalf("Expected %s to be indexed", card.Title)
		}
		ids[card.Title] = pCtx.Result.CardID
	}

	idx := deps.Vault

	// Unfiltered search sees everything in ranking order
	results, err := idx.Search(ctx, 1, nil, query)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	wantOrder := []uuid.UUID{ids["public-a"], ids["shared-b"], ids["private-c"]}
	for i, want := range wantOrder {
		if results[i].PointID != want {
			t.Errorf("Result %d = %s, want %s", i, results[i].PointID, want)
		}
	}

	// Public-only search hides both private cards
	results, err = idx.Search(ctx, 1, qdrant.PublicOnly(), query)
	if err != nil {
		t.Fatalf("Public-only search failed: %v", err)
	}
	if len(results) != 1 || results[0].PointID != ids["public-a"] {
		t.Fatalf("Expected only public-a in public results, got %v", results)
	}

	// Authors see public cards plus their own private ones
	results, err = idx.Search(ctx, 1, qdrant.VisibleTo("carol"), query)
	if err != nil {
		t.Fatalf("Author search failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Expected carol to see 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.PointID == ids["shared-b"] {
			t.Error("Carol should not see bob's private card")
		}
	}

	results, err = idx.Search(ctx, 1, qdrant.VisibleTo("mallory"), query)
	if err != nil {
		t.Fatalf("Stranger search failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Expected mallory to see 1 result, got %d", len(results))
	}

	// A second author accumulates on the already-private point
	if err := idx.SetVisibility(ctx, ids["shared-b"], vault.Private, "beth"); err != nil {
		t.Fatalf("SetVisibility with second author failed: %v", err)
	}

	results, err = idx.Search(ctx, 1, qdrant.VisibleTo("beth"), query)
	if err != nil {
		t.Fatalf("Second author search failed: %v", err)
	}
	found := false
	for _, r := range results {
		if r.PointID == ids["shared-b"] {
			found = true
		}
	}
	if !found {
		t.Error("Expected beth to see the shared private card")
	}

	// Repeating an author is idempotent
	if err := idx.SetVisibility(ctx, ids["shared-b"], vault.Private, "bob"); err != nil {
		t.Fatalf("Repeated SetVisibility failed: %v", err)
	}
	points, err := store.GetPoints(ctx, "cards-test", []string{ids["shared-b"].String()}, false, true)
	if err != nil || len(points) != 1 {
		t.Fatalf("GetPoints failed: %v (%d points)", err, len(points))
	}
	authors, _ := points[0].Payload["authors"].([]interface{})
	if len(authors) != 2 {
		t.Errorf("Expected 2 authors after repeat, got %v", authors)
	}

	// Publishing clears the payload and the card joins public results
	if err := idx.SetVisibility(ctx, ids["shared-b"], vault.Public, ""); err != nil {
		t.Fatalf("SetVisibility to public failed: %v", err)
	}

	points, err = store.GetPoints(ctx, "cards-test", []string{ids["shared-b"].String()}, false, true)
	if err != nil || len(points) != 1 {
		t.Fatalf("GetPoints failed: %v (%d points)", err, len(points))
	}
	if len(points[0].Payload) != 0 {
		t.Errorf("Expected empty payload after publishing, got %v", points[0].Payload)
	}

	results, err = idx.Search(ctx, 1, qdrant.PublicOnly(), query)
	if err != nil {
		t.Fatalf("Public-only search failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Expected 2 public results after publishing, got %d", len(results))
	}

	// Once public, a privatize request is a silent no-op
	if err := idx.SetVisibility(ctx, ids["shared-b"], vault.Private, "bob"); err != nil {
		t.Fatalf("SetVisibility on public card failed: %v", err)
	}
	points, err = store.GetPoints(ctx, "cards-test", []string{ids["shared-b"].String()}, false, true)
	if err != nil || len(points) != 1 {
		t.Fatalf("GetPoints failed: %v (%d points)", err, len(points))
	}
	if len(points[0].Payload) != 0 {
		t.Errorf("Expected shared-b to stay public, got payload %v", points[0].Payload)
	}
}
