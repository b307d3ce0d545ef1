// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-08-14
// Last Modified: 2026-08-20

package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/similigh/cardvault/internal/vault"
)

var (
	visibilityID     string
	visibilityTo     string
	visibilityAuthor string
)

// visibilityCmd represents the visibility command
var visibilityCmd = &cobra.Command{
	Use:   "visibility",
	Short: "Change the visibility of an indexed point",
	Long: `Change the visibility of an existing point in the index.

Setting a point to private adds the author to its author list; repeating
the call with another author extends the list. Setting a private point to
public clears the visibility payload entirely. A point that is already
public is left unchanged, whatever the requested target.`,
	Run: func(cmd *cobra.Command, args []string) {
		runVisibility()
	},
}

func init() {
	rootCmd.AddCommand(visibilityCmd)

	visibilityCmd.Flags().StringVar(&visibilityID, "id", "", "Point id (UUID)")
	visibilityCmd.Flags().StringVar(&visibilityTo, "to", "", "Target visibility: public or private")
	visibilityCmd.Flags().StringVar(&visibilityAuthor, "author", "", "Author to add (required for private)")

	if err := visibilityCmd.MarkFlagRequired("id"); err != nil {
		fmt.Printf("Warning: Failed to mark id flag as required: %v\n", err)
	}
	if err := visibilityCmd.MarkFlagRequired("to"); err != nil {
		fmt.Printf("Warning: Failed to mark to flag as required: %v\n", err)
	}
}

func runVisibility() {
	ctx := context.Background()

	// 1. Parse inputs before touching the network
	pointID, err := uuid.Parse(visibilityID)
	if err != nil {
		fmt.Printf("❌ Invalid point id %q: %v\n", visibilityID, err)
		os.Exit(1)
	}

	visibility, err := vault.ParseVisibility(visibilityTo)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	// 2. Load Configuration
	cfg := loadCLIConfig()

	// 3. Initialize the store (no embedder needed for a payload write)
	deps, err := initializeDependencies(cfg, false)
	if err != nil {
		fmt.Printf("❌ Error initializing dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	// 4. Apply the change
	if verbose {
		log.Printf("Setting %s to %s in collection '%s'...", pointID, visibility, cfg.Qdrant.Collection)
	}

	if err := deps.Vault.SetVisibility(ctx, pointID, visibility, visibilityAuthor); err != nil {
		switch {
		case errors.Is(err, vault.ErrValidation):
			fmt.Printf("❌ Invalid request: %v\n", err)
		case errors.Is(err, vault.ErrIndexRead):
			fmt.Printf("❌ Could not read point %s: %v\n", pointID, err)
		case errors.Is(err, vault.ErrIndexWrite):
			fmt.Printf("❌ Could not update point %s: %v\n", pointID, err)
		default:
			fmt.Printf("❌ %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("✅ Point %s visibility set to %s\n", pointID, visibility)
	fmt.Printf("📊 Collection: %s\n", cfg.Qdrant.Collection)
}
