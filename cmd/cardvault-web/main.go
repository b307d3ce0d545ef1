// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-08-15
// Last Modified: 2026-08-20

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/similigh/cardvault/internal/core/config"
	"github.com/similigh/cardvault/internal/core/pipeline"
	"github.com/similigh/cardvault/internal/integrations/gemini"
	"github.com/similigh/cardvault/internal/integrations/qdrant"
	"github.com/similigh/cardvault/internal/steps"
	"github.com/similigh/cardvault/internal/vault"
)

// CardRequest represents an incoming card from the API
type CardRequest struct {
	ID         string `json:"id,omitempty"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	Source     string `json:"source,omitempty"`
	Visibility string `json:"visibility,omitempty"`
	Author     string `json:"author,omitempty"`
}

// CardResponse is returned after an ingest
type CardResponse struct {
	ID         string `json:"id"`
	Indexed    bool   `json:"indexed"`
	Dimensions int    `json:"dimensions,omitempty"`
}

// VisibilityRequest asks for a visibility change on an existing point
type VisibilityRequest struct {
	Visibility string `json:"visibility"`
	Author     string `json:"author,omitempty"`
}

// SearchRequest represents a search query
type SearchRequest struct {
	Query      string    `json:"query,omitempty"`
	Vector     []float32 `json:"vector,omitempty"`
	Page       int       `json:"page,omitempty"`
	PublicOnly bool      `json:"public_only,omitempty"`
	Author     string    `json:"author,omitempty"`
}

// SearchResponse carries one page of results in the engine's ranking order
type SearchResponse struct {
	Page    int                `json:"page"`
	Results []SearchResultItem `json:"results"`
}

// SearchResultItem is one scored point
type SearchResultItem struct {
	ID    string  `json:"id"`
	Score float32 `json:"score"`
}

var (
	deps     *pipeline.Dependencies
	cfg      *config.Config
	stepList []string
)

func main() {
	// Load configuration
	cfgPath := config.FindConfigPath("")
	var err error
	if cfgPath != "" {
		cfg, err = config.Load(cfgPath)
		if err != nil {
			log.Printf("Warning: Failed to load config: %v", err)
			cfg = config.Defaults()
		}
	} else {
		cfg = config.Defaults()
	}

	// Override collection from env if set
	if col := os.Getenv("QDRANT_COLLECTION"); col != "" {
		cfg.Qdrant.Collection = col
	}

	// Initialize dependencies
	deps, err = initDependencies(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}
	defer deps.Close()

	stepList = pipeline.ResolveSteps(cfg.Steps, cfg.Workflow)

	// Make sure the collection exists before accepting writes
	dimensions := cfg.Embedding.Dimensions
	if dimensions == 0 {
		dimensions = deps.Embedder.Dimensions()
	}
	if err := deps.Store.CreateCollection(context.Background(), cfg.Qdrant.Collection, dimensions); err != nil {
		log.Fatalf("Failed to ensure collection %s: %v", cfg.Qdrant.Collection, err)
	}

	// Setup routes
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/api/cards", handleInsertCard)
	r.Patch("/api/cards/{id}/visibility", handleSetVisibility)
	r.Post("/api/search", handleSearch)
	r.Get("/api/health", handleHealth)

	port := os.Getenv("PORT")
	if port == "" {
		port = strconv.Itoa(cfg.Server.Port)
	}

	fmt.Printf("\n🚀 CardVault API running at http://localhost:%s\n", port)
	fmt.Printf("   Collection: %s\n", cfg.Qdrant.Collection)
	fmt.Println("   Press Ctrl+C to stop")

	log.Fatal(http.ListenAndServe(":"+port, r))
}

func initDependencies(cfg *config.Config) (*pipeline.Dependencies, error) {
	deps := &pipeline.Dependencies{}

	// Embedder (Gemini/OpenAI auto-selected by available keys)
	embedder, err := gemini.NewEmbedder(cfg.Embedding.APIKey, cfg.Embedding.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to init embedder: %w", err)
	}
	deps.Embedder = embedder

	// Qdrant
	qURL := os.Getenv("QDRANT_URL")
	if qURL == "" {
		qURL = cfg.Qdrant.URL
	}
	qKey := os.Getenv("QDRANT_API_KEY")
	if qKey == "" {
		qKey = cfg.Qdrant.APIKey
	}

	store, err := qdrant.NewClient(qURL, qKey)
	if err != nil {
		return nil, fmt.Errorf("failed to init qdrant: %w", err)
	}
	deps.Store = store
	deps.Vault = vault.NewIndex(store, cfg.Qdrant.Collection)

	return deps, nil
}

func handleInsertCard(w http.ResponseWriter, r *http.Request) {
	var req CardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if req.Title == "" && req.Body == "" {
		respondError(w, http.StatusBadRequest, "card must have a title or body")
		return
	}

	card := &pipeline.Card{
		Title:      req.Title,
		Body:       req.Body,
		Source:     req.Source,
		Visibility: vault.Visibility(req.Visibility),
		Author:     req.Author,
	}

	if req.ID != "" {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid card id: "+err.Error())
			return
		}
		card.ID = id
	}

	result, err := runIngest(r.Context(), card)
	if err != nil {
		respondPipelineError(w, err)
		return
	}

	// A skipped card never reached the index; treat it as a bad request.
	if result.Skipped {
		respondError(w, http.StatusBadRequest, result.SkipReason)
		return
	}

	respondJSON(w, http.StatusCreated, CardResponse{
		ID:         result.CardID.String(),
		Indexed:    result.Indexed,
		Dimensions: result.Dimensions,
	})
}

func handleSetVisibility(w http.ResponseWriter, r *http.Request) {
	pointID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid point id: "+err.Error())
		return
	}

	var req VisibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	visibility, err := vault.ParseVisibility(req.Visibility)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := deps.Vault.SetVisibility(r.Context(), pointID, visibility, req.Author); err != nil {
		respondPipelineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"id":         pointID.String(),
		"visibility": string(visibility),
	})
}

func handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if req.Query == "" && len(req.Vector) == 0 {
		respondError(w, http.StatusBadRequest, "query or vector is required")
		return
	}

	vector := req.Vector
	if len(vector) == 0 {
		var err error
		vector, err = deps.Embedder.Embed(r.Context(), req.Query)
		if err != nil {
			log.Printf("Failed to embed query: %v", err)
			respondError(w, http.StatusBadGateway, "embedding failed")
			return
		}
	}

	// Optional visibility filter. public_only wins over author.
	var filter *qdrant.Filter
	switch {
	case req.PublicOnly:
		filter = qdrant.PublicOnly()
	case req.Author != "":
		filter = qdrant.VisibleTo(req.Author)
	}

	results, err := deps.Vault.Search(r.Context(), req.Page, filter, vector)
	if err != nil {
		respondPipelineError(w, err)
		return
	}

	page := req.Page
	if page < 1 {
		page = 1
	}

	items := make([]SearchResultItem, len(results))
	for i, res := range results {
		items[i] = SearchResultItem{ID: res.PointID.String(), Score: res.Score}
	}

	respondJSON(w, http.StatusOK, SearchResponse{Page: page, Results: items})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// runIngest runs the configured ingest steps against a single card.
func runIngest(ctx context.Context, card *pipeline.Card) (*pipeline.Result, error) {
	pCtx := pipeline.NewContext(ctx, card, cfg)

	registry := pipeline.NewRegistry()
	steps.RegisterAll(registry)

	builtPipeline, err := registry.BuildFromNames(stepList, deps)
	if err != nil {
		return nil, err
	}

	if err := builtPipeline.Run(pCtx); err != nil {
		return nil, err
	}

	return pCtx.Result, nil
}

// respondPipelineError maps vault errors onto HTTP status codes. Invalid
// requests are the caller's fault; everything else is the index's.
func respondPipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, vault.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, vault.ErrIndexRead),
		errors.Is(err, vault.ErrIndexWrite),
		errors.Is(err, vault.ErrSearch):
		log.Printf("Index error: %v", err)
		respondError(w, http.StatusBadGateway, err.Error())
	default:
		log.Printf("Pipeline error: %v", err)
		respondError(w, http.StatusBadGateway, err.Error())
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
