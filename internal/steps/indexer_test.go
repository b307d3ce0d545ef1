// Author: Sachindu Nethmin
// GitHub: https://github.com/Sachindu-Nethmin
// Created: 2026-08-13
// Last Modified: 2026-08-19

package steps

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/similigh/cardvault/internal/core/config"
	"github.com/similigh/cardvault/internal/core/pipeline"
	"github.com/similigh/cardvault/internal/integrations/qdrant"
	"github.com/similigh/cardvault/internal/vault"
)

// recordingStore captures upserted points and fakes the rest of the
// VectorStore interface.
type recordingStore struct {
	upserted []*qdrant.Point
}

func (f *recordingStore) CreateCollection(ctx context.Context, name string, dimension int) error {
	return nil
}

func (f *recordingStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	return true, nil
}

func (f *recordingStore) Upsert(ctx context.Context, collectionName string, points []*qdrant.Point) error {
	f.upserted = append(f.upserted, points...)
	return nil
}

func (f *recordingStore) GetPoints(ctx context.Context, collectionName string, ids []string, withVectors, withPayload bool) ([]*qdrant.Point, error) {
	return nil, nil
}

func (f *recordingStore) OverwritePayload(ctx context.Context, collectionName string, ids []string, payload map[string]interface{}) error {
	return nil
}

func (f *recordingStore) Search(ctx context.Context, collectionName string, vector []float32, limit, offset uint64, filter *qdrant.Filter) ([]*qdrant.SearchResult, error) {
	return nil, nil
}

func (f *recordingStore) Delete(ctx context.Context, collectionName string, id string) error {
	return nil
}

func (f *recordingStore) Close() error {
	return nil
}

func TestIndexerWritesPoint(t *testing.T) {
	store := &recordingStore{}
	deps := &pipeline.Dependencies{Vault: vault.NewIndex(store, "cards")}

	card := &pipeline.Card{
		ID:         uuid.New(),
		Title:      "A card",
		Body:       "Body",
		Visibility: vault.Private,
		Author:     "alice",
	}
	ctx := pipeline.NewContext(context.Background(), card, &config.Config{})
	ctx.Vector = []float32{0.1, 0.2, 0.3}

	idx := NewIndexer(deps)
	if err := idx.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(store.upserted) != 1 {
		t.Fatalf("Expected 1 upserted point, got %d", len(store.upserted))
	}
	p := store.upserted[0]
	if p.ID != card.ID.String() {
		t.Errorf("Expected point ID %s, got %s", card.ID, p.ID)
	}
	if p.Payload["private"] != true {
		t.Errorf("Expected private payload, got %v", p.Payload)
	}
	if !ctx.Result.Indexed {
		t.Error("Expected Result.Indexed to be set")
	}
}

func TestIndexerDryRun(t *testing.T) {
	store := &recordingStore{}
	deps := &pipeline.Dependencies{Vault: vault.NewIndex(store, "cards"), DryRun: true}

	card := &pipeline.Card{ID: uuid.New(), Title: "A card", Visibility: vault.Public}
	ctx := pipeline.NewContext(context.Background(), card, &config.Config{})
	ctx.Vector = []float32{0.1}

	idx := NewIndexer(deps)
	if err := idx.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(store.upserted) != 0 {
		t.Errorf("Expected no writes in dry run, got %d", len(store.upserted))
	}
}

func TestIndexerMissingVault(t *testing.T) {
	card := &pipeline.Card{ID: uuid.New(), Title: "A card", Visibility: vault.Public}
	ctx := pipeline.NewContext(context.Background(), card, &config.Config{})
	ctx.Vector = []float32{0.1}

	idx := NewIndexer(&pipeline.Dependencies{})
	if err := idx.Run(ctx); err != nil {
		t.Errorf("Expected graceful skip without vault, got %v", err)
	}
}

func TestIndexerMissingVector(t *testing.T) {
	store := &recordingStore{}
	deps := &pipeline.Dependencies{Vault: vault.NewIndex(store, "cards")}

	card := &pipeline.Card{ID: uuid.New(), Title: "A card", Visibility: vault.Public}
	ctx := pipeline.NewContext(context.Background(), card, &config.Config{})

	idx := NewIndexer(deps)
	if err := idx.Run(ctx); err != nil {
		t.Errorf("Expected graceful skip without vector, got %v", err)
	}
	if len(store.upserted) != 0 {
		t.Errorf("Expected no writes without a vector, got %d", len(store.upserted))
	}
}
