// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-08-10
// Last Modified: 2026-08-10

// Package qdrant provides the vector database integration.
package qdrant

import (
	"context"

	pb "github.com/qdrant/go-client/qdrant"
)

// Filter is the engine-native payload predicate. Callers build one (or use the
// helpers in filters.go) and pass it through Search unmodified.
type Filter = pb.Filter

// Point represents a data point in the vector database.
type Point struct {
	ID      string                 `json:"id"`
	Vector  []float32              `json:"vector"`
	Payload map[string]interface{} `json:"payload"`
}

// SearchResult represents a single result from a similarity search.
type SearchResult struct {
	ID      string                 `json:"id"`
	Score   float32                `json:"score"`
	Payload map[string]interface{} `json:"payload"`
}

// VectorStore defines the interface for vector database operations.
type VectorStore interface {
	// CreateCollection creates a new collection if it doesn't exist.
	CreateCollection(ctx context.Context, name string, dimension int) error

	// CollectionExists checks if a collection exists.
	CollectionExists(ctx context.Context, name string) (bool, error)

	// Upsert inserts or updates points in the collection. The call blocks
	// until the write is acknowledged by the engine.
	Upsert(ctx context.Context, collectionName string, points []*Point) error

	// GetPoints fetches points by ID. Missing IDs are simply absent from the
	// returned slice; the call itself only fails on transport/engine errors.
	GetPoints(ctx context.Context, collectionName string, ids []string, withVectors, withPayload bool) ([]*Point, error)

	// OverwritePayload replaces the whole payload of the selected points with
	// the given one. An empty payload clears every key. Blocks until
	// acknowledged.
	OverwritePayload(ctx context.Context, collectionName string, ids []string, payload map[string]interface{}) error

	// Search finds the nearest neighbors for a given vector, optionally
	// restricted by a payload filter, skipping offset results.
	Search(ctx context.Context, collectionName string, vector []float32, limit, offset uint64, filter *Filter) ([]*SearchResult, error)

	// Delete removes a point by ID.
	Delete(ctx context.Context, collectionName string, id string) error

	// Close closes the connection to the database.
	Close() error
}
