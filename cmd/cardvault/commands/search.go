// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-08-14
// Last Modified: 2026-08-20

package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/similigh/cardvault/internal/integrations/qdrant"
	"github.com/similigh/cardvault/internal/vault"
)

var (
	searchQuery      string
	searchVectorFile string
	searchAuthor     string
	searchPublicOnly bool
	searchPage       int
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run a filtered nearest-neighbor search over the index",
	Long: `Search the card index for the nearest neighbors of a query.

The query is embedded with the configured provider, or read pre-embedded
from a JSON vector file. Results come back ten per page in the engine's
ranking order. Use --public-only to hide private points, or --author to
see public points plus that author's private ones.`,
	Run: func(cmd *cobra.Command, args []string) {
		runSearch()
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchQuery, "query", "", "Query text to embed and search for")
	searchCmd.Flags().StringVar(&searchVectorFile, "vector-file", "", "Path to a JSON array of floats to search with")
	searchCmd.Flags().StringVar(&searchAuthor, "author", "", "Include private points visible to this author")
	searchCmd.Flags().BoolVar(&searchPublicOnly, "public-only", false, "Restrict results to public points")
	searchCmd.Flags().IntVar(&searchPage, "page", 1, "Result page (ten results per page)")
}

func runSearch() {
	ctx := context.Background()

	// 1. Validate inputs
	if searchQuery == "" && searchVectorFile == "" {
		fmt.Println("Please provide --query or --vector-file")
		os.Exit(1)
	}

	// 2. Load Configuration
	cfg := loadCLIConfig()

	// 3. Initialize dependencies. A pre-embedded vector skips the embedder.
	needEmbedder := searchVectorFile == ""
	deps, err := initializeDependencies(cfg, needEmbedder)
	if err != nil {
		fmt.Printf("❌ Error initializing dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	// 4. Resolve the query vector
	var vector []float32
	if searchVectorFile != "" {
		vector, err = loadVector(searchVectorFile)
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
		if verbose {
			log.Printf("Loaded %d-dimension vector from %s", len(vector), searchVectorFile)
		}
	} else {
		if verbose {
			log.Printf("Embedding query (%d characters)...", len(searchQuery))
		}
		vector, err = deps.Embedder.Embed(ctx, searchQuery)
		if err != nil {
			fmt.Printf("❌ Failed to embed query: %v\n", err)
			os.Exit(1)
		}
	}

	// 5. Build the visibility filter. --public-only wins over --author.
	var filter *qdrant.Filter
	switch {
	case searchPublicOnly:
		filter = qdrant.PublicOnly()
	case searchAuthor != "":
		filter = qdrant.VisibleTo(searchAuthor)
	}

	// 6. Search
	results, err := deps.Vault.Search(ctx, searchPage, filter, vector)
	if err != nil {
		if errors.Is(err, vault.ErrSearch) {
			fmt.Printf("❌ Search failed: %v\n", err)
		} else {
			fmt.Printf("❌ %v\n", err)
		}
		os.Exit(1)
	}

	// 7. Report in ranking order
	page := searchPage
	if page < 1 {
		page = 1
	}

	fmt.Printf("🔍 Search results (page %d, collection %s)\n\n", page, cfg.Qdrant.Collection)
	if len(results) == 0 {
		fmt.Println("No results on this page.")
		return
	}

	for i, r := range results {
		rank := (page-1)*vault.PageSize + i + 1
		fmt.Printf("%3d. %s  score=%.4f\n", rank, r.PointID, r.Score)
	}
}

// loadVector reads a pre-embedded query vector from a JSON file.
func loadVector(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vector file: %w", err)
	}

	var vector []float32
	if err := json.Unmarshal(data, &vector); err != nil {
		return nil, fmt.Errorf("failed to parse vector JSON: %w", err)
	}

	if len(vector) == 0 {
		return nil, fmt.Errorf("vector file is empty")
	}

	return vector, nil
}
