package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/deposition/depo/interrogation"
)

var batchConcurrency int

// batchCmd runs many interrogations from a request file
var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Run interrogations from a JSON request file",
	Long: `Reads a JSON array of requests and runs them concurrently.

Each entry mirrors the interrogate flags:
  [
    {"userQuery": "Is the penalty clause capped?", "maxTurns": 3},
    {"userQuery": "Who owns derivative work?", "userContext": "..."}
  ]`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "parallel runs (0 uses the configured default)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read request file: %w", err)
	}

	var requests []interrogation.Request
	if err := json.Unmarshal(data, &requests); err != nil {
		return fmt.Errorf("failed to parse request file: %w", err)
	}
	if len(requests) == 0 {
		return fmt.Errorf("request file contains no requests")
	}

	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	concurrency := batchConcurrency
	if concurrency < 1 {
		concurrency = cfg.Batch.Concurrency
	}

	results := rt.engine.Batch(ctx, requests, concurrency)

	invalid := 0
	for i, result := range results {
		fmt.Println(strings.Repeat("─", 60))
		fmt.Printf("%2d. %s\n", i+1, truncateStr(result.Request.UserQuery, 70))
		if result.Err != nil {
			invalid++
			fmt.Printf("    invalid request: %v\n", result.Err)
			continue
		}
		fmt.Printf("    %s after %d turns\n", result.Report.Status, result.Report.TurnsUsed)
		if result.Report.Conclusion != "" {
			fmt.Printf("    %s\n", truncateStr(result.Report.Conclusion, 200))
		}
	}
	fmt.Println(strings.Repeat("─", 60))

	if invalid > 0 {
		return fmt.Errorf("%d of %d requests were invalid", invalid, len(results))
	}
	return nil
}
