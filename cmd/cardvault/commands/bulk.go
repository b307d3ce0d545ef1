// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-08-15
// Last Modified: 2026-08-20

package commands

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/similigh/cardvault/internal/core/config"
	"github.com/similigh/cardvault/internal/core/pipeline"
)

var (
	bulkFile       string
	bulkOutFile    string
	bulkFormat     string
	bulkWorkers    int
	bulkWorkflow   string
	bulkCollection string
	bulkDryRun     bool
)

// BulkJob represents a job to process in the worker pool
type BulkJob struct {
	Index int
	Card  pipeline.Card
}

// BulkResult represents the result of ingesting a single card
type BulkResult struct {
	Index  int
	Card   pipeline.Card
	Result *pipeline.Result
	Error  error
}

// JSONOutput represents the JSON output structure
type JSONOutput struct {
	ProcessedAt time.Time     `json:"processed_at"`
	TotalCards  int           `json:"total_cards"`
	Successful  int           `json:"successful"`
	Failed      int           `json:"failed"`
	Results     []ResultEntry `json:"results"`
}

// ResultEntry represents a single result entry in JSON output
type ResultEntry struct {
	Card   pipeline.Card    `json:"card"`
	Result *pipeline.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// bulkCmd represents the bulk command
var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Ingest multiple cards from a JSON file",
	Long: `Ingest multiple cards through the pipeline in bulk.
This command reads cards from a JSON file, runs each through the ingest
pipeline with a configurable worker pool, and outputs the results in JSON
or CSV format. Cards carry distinct ids, so workers index concurrently
without coordinating.

Use cases:
- Seed a fresh collection from an exported card dump
- Re-ingest edited cards (same content hashes to the same point id)
- Dry-run a card file to catch validation problems before indexing`,
	Run: runBulk,
}

func init() {
	rootCmd.AddCommand(bulkCmd)

	bulkCmd.Flags().StringVar(&bulkFile, "file", "", "Path to JSON file containing array of cards (required)")
	bulkCmd.Flags().StringVar(&bulkOutFile, "out-file", "", "Output file path (stdout if not specified)")
	bulkCmd.Flags().StringVar(&bulkFormat, "format", "json", "Output format: json or csv")
	bulkCmd.Flags().IntVar(&bulkWorkers, "workers", 4, "Number of concurrent workers")
	bulkCmd.Flags().StringVar(&bulkWorkflow, "workflow", "card-ingest", "Workflow preset to run")
	bulkCmd.Flags().StringVar(&bulkCollection, "collection", "", "Override Qdrant collection name")
	bulkCmd.Flags().BoolVar(&bulkDryRun, "dry-run", false, "Run in dry-run mode (no index writes)")

	if err := bulkCmd.MarkFlagRequired("file"); err != nil {
		fmt.Printf("Warning: Failed to mark file flag as required: %v\n", err)
	}
}

func runBulk(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	// 1. Load cards from JSON file
	if verbose {
		fmt.Printf("Loading cards from %s...\n", bulkFile)
	}
	cards, err := loadCards(bulkFile)
	if err != nil {
		fmt.Printf("❌ Error loading cards: %v\n", err)
		os.Exit(1)
	}
	if verbose {
		fmt.Printf("Loaded %d cards\n", len(cards))
	}

	// 2. Load Configuration
	cfg := loadCLIConfig()

	// 3. Apply configuration overrides from flags
	applyConfigOverrides(cfg)

	// 4. Determine steps
	stepNames := pipeline.ResolveSteps(cfg.Steps, bulkWorkflow)
	if verbose {
		fmt.Printf("Pipeline steps: %v\n", stepNames)
	}

	// 5. Initialize dependencies
	deps, err := initializeDependencies(cfg, true)
	if err != nil {
		fmt.Printf("❌ Error initializing dependencies: %v\n", err)
		os.Exit(1)
	}
	deps.DryRun = bulkDryRun
	defer deps.Close()

	if bulkDryRun && verbose {
		fmt.Println("✓ Dry-run mode enabled (no index writes will be performed)")
	}

	// 6. Ensure the collection exists before the workers start
	if !bulkDryRun {
		if err := ensureCollection(ctx, deps, cfg); err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
	}

	// 7. Process cards
	fmt.Printf("Ingesting %d cards with %d workers...\n", len(cards), bulkWorkers)
	results := processBulk(ctx, cards, cfg, deps, stepNames)

	// 8. Output results
	if err := outputResults(results); err != nil {
		fmt.Printf("❌ Error outputting results: %v\n", err)
		os.Exit(1)
	}

	// 9. Print summary
	successful := 0
	skipped := 0
	failed := 0
	for _, r := range results {
		switch {
		case r.Error != nil:
			failed++
		case r.Result != nil && r.Result.Skipped:
			skipped++
		default:
			successful++
		}
	}
	fmt.Printf("\n✓ Bulk ingest completed: %d successful, %d skipped, %d failed\n", successful, skipped, failed)
}

// loadCards reads and parses a JSON file containing an array of cards
func loadCards(filePath string) ([]pipeline.Card, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var cards []pipeline.Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	if len(cards) == 0 {
		return nil, fmt.Errorf("no cards found in file")
	}

	// Validate required fields
	for i, card := range cards {
		if card.Title == "" && card.Body == "" {
			return nil, fmt.Errorf("card at index %d has neither title nor body", i)
		}
	}

	return cards, nil
}

// applyConfigOverrides applies command-line flag overrides to the configuration
func applyConfigOverrides(cfg *config.Config) {
	if bulkCollection != "" {
		cfg.Qdrant.Collection = bulkCollection
		if verbose {
			fmt.Printf("Override: collection = %s\n", bulkCollection)
		}
	}
}

// processBulk ingests all cards using a worker pool pattern
func processBulk(ctx context.Context, cards []pipeline.Card, cfg *config.Config, deps *pipeline.Dependencies, stepNames []string) []BulkResult {
	jobs := make(chan BulkJob, bulkWorkers)
	results := make(chan BulkResult, bulkWorkers)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < bulkWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for job := range jobs {
				if verbose {
					fmt.Printf("[Worker %d] Ingesting card %q\n", workerID, job.Card.Title)
				}

				result, err := ExecutePipeline(ctx, &job.Card, cfg, deps, stepNames)

				results <- BulkResult{
					Index:  job.Index,
					Card:   job.Card,
					Result: result,
					Error:  err,
				}

				if verbose {
					if err != nil {
						fmt.Printf("[Worker %d] ❌ Card %q failed: %v\n", workerID, job.Card.Title, err)
					} else {
						fmt.Printf("[Worker %d] ✓ Card %q completed\n", workerID, job.Card.Title)
					}
				}
			}
		}(i)
	}

	// Send jobs
	go func() {
		for i, card := range cards {
			jobs <- BulkJob{Index: i, Card: card}
		}
		close(jobs)
	}()

	// Collect results
	go func() {
		wg.Wait()
		close(results)
	}()

	// Gather results in order
	resultMap := make(map[int]BulkResult)
	for result := range results {
		resultMap[result.Index] = result
	}

	orderedResults := make([]BulkResult, len(cards))
	for i := range cards {
		orderedResults[i] = resultMap[i]
	}

	return orderedResults
}

// outputResults formats and writes results to the specified output
func outputResults(results []BulkResult) error {
	var data []byte
	var err error

	// Determine format
	format := bulkFormat
	if format == "" && bulkOutFile != "" {
		// Infer from file extension
		ext := strings.ToLower(filepath.Ext(bulkOutFile))
		if ext == ".csv" {
			format = "csv"
		} else {
			format = "json"
		}
	}
	if format == "" {
		format = "json"
	}

	// Format output
	switch format {
	case "csv":
		data, err = formatCSV(results)
	case "json":
		data, err = formatJSON(results)
	default:
		return fmt.Errorf("unsupported format: %s (use json or csv)", format)
	}

	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	// Write output
	if bulkOutFile != "" {
		if err := os.WriteFile(bulkOutFile, data, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Printf("✓ Results written to %s\n", bulkOutFile)
	} else {
		fmt.Println("\n=== Bulk Results ===")
		fmt.Println(string(data))
	}

	return nil
}

// formatJSON formats results as JSON
func formatJSON(results []BulkResult) ([]byte, error) {
	successful := 0
	failed := 0
	entries := make([]ResultEntry, len(results))

	for i, r := range results {
		entry := ResultEntry{
			Card:   r.Card,
			Result: r.Result,
		}
		if r.Error != nil {
			entry.Error = r.Error.Error()
			failed++
		} else {
			successful++
		}
		entries[i] = entry
	}

	output := JSONOutput{
		ProcessedAt: time.Now(),
		TotalCards:  len(results),
		Successful:  successful,
		Failed:      failed,
		Results:     entries,
	}

	return json.MarshalIndent(output, "", "  ")
}

// formatCSV formats results as CSV
func formatCSV(results []BulkResult) ([]byte, error) {
	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	// Write header
	header := []string{
		"card_id",
		"title",
		"visibility",
		"author",
		"skipped",
		"skip_reason",
		"embedded",
		"dimensions",
		"indexed",
		"error",
	}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	// Write rows
	for _, r := range results {
		row := make([]string, len(header))
		row[0] = r.Card.ID.String()
		row[1] = r.Card.Title
		row[2] = string(r.Card.Visibility)
		row[3] = r.Card.Author

		if r.Error != nil {
			row[9] = r.Error.Error()
		} else if r.Result != nil {
			row[0] = r.Result.CardID.String()
			row[4] = strconv.FormatBool(r.Result.Skipped)
			row[5] = r.Result.SkipReason
			row[6] = strconv.FormatBool(r.Result.Embedded)
			row[7] = strconv.Itoa(r.Result.Dimensions)
			row[8] = strconv.FormatBool(r.Result.Indexed)
		}

		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return []byte(buf.String()), nil
}
