// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-08-14
// Last Modified: 2026-08-19

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/similigh/cardvault/internal/core/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cardvault",
	Short: "CardVault indexes evidence cards with visibility tags",
	Long: `CardVault ingests evidence cards into a Qdrant vector collection.
Each point carries a visibility tag: public cards are visible to everyone,
private cards only to their listed authors. Use the subcommands to insert
cards, flip visibility on existing points, and run filtered searches.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file (default is .cardvault.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

// loadCLIConfig resolves the config path from the --config flag and loads it.
// Missing config files are not fatal; env vars and defaults cover the gaps.
func loadCLIConfig() *config.Config {
	cfgPath := config.FindConfigPath(cfgFile)

	if cfgPath == "" {
		if verbose {
			fmt.Println("No configuration file found. Using defaults and environment variables.")
		}
		return config.Defaults()
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("Warning: Failed to load config from %s: %v. Using defaults.\n", cfgPath, err)
		return config.Defaults()
	}
	if verbose {
		fmt.Printf("Loaded config from %s\n", cfgPath)
	}
	return cfg
}
