package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ZanzyTHEbar/deposition/depo/interrogation"
	"github.com/spf13/cobra"
)

var (
	interrogateContext      string
	interrogateInstructions string
	interrogateMaxTurns     int
	interrogateJSON         bool
)

// interrogateCmd runs a single interrogation
var interrogateCmd = &cobra.Command{
	Use:   "interrogate [query]",
	Short: "Run one interrogation and print the final report",
	Long: `Runs a full interrogation loop for the given query.

The engine probes the document research service with generated questions,
refines a working report after every answer, and prints the synthesized
report with its conclusion. Interrupting with Ctrl-C ends the run after
the in-flight turn and salvages a partial report.

Example:
  deposition interrogate "Is the termination clause enforceable?" \
    --context "$(cat lease.md)" --max-turns 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInterrogate,
}

func init() {
	interrogateCmd.Flags().StringVarP(&interrogateContext, "context", "c", "", "background context, e.g. the contract text")
	interrogateCmd.Flags().StringVarP(&interrogateInstructions, "instructions", "i", "", "extra guidance passed to the researcher")
	interrogateCmd.Flags().IntVarP(&interrogateMaxTurns, "max-turns", "n", 0, "turn ceiling (0 uses the configured default)")
	interrogateCmd.Flags().BoolVar(&interrogateJSON, "json", false, "print the report as JSON")
}

func runInterrogate(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req := interrogation.Request{
		UserQuery:        strings.Join(args, " "),
		UserContext:      interrogateContext,
		UserInstructions: interrogateInstructions,
		MaxTurns:         interrogateMaxTurns,
	}

	report, err := rt.engine.Interrogate(ctx, req)
	if err != nil {
		return err
	}

	if interrogateJSON {
		payload, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		fmt.Println(string(payload))
		return nil
	}

	printReport(report)
	return nil
}

func printReport(report interrogation.FinalReport) {
	fmt.Printf("Status: %s (%d turns)\n", report.Status, report.TurnsUsed)
	fmt.Println(strings.Repeat("─", 60))
	fmt.Println(report.Narrative)
	if report.Conclusion != "" {
		fmt.Println(strings.Repeat("─", 60))
		fmt.Println("Conclusion:")
		fmt.Println(report.Conclusion)
	}
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
