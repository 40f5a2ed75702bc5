package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/deposition/depo/db"
	"github.com/ZanzyTHEbar/deposition/depo/interrogation/adapters"
	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd inspects stored interrogation runs
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect stored interrogation runs",
	Long: `Inspect runs recorded in the checkpoint database.

Subcommands:
  list  - List recent runs
  show  - Print the turns of one run`,
	RunE: runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Print the turns of one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.PersistentFlags().IntVar(&historyLimit, "limit", 20, "maximum runs to list")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
}

func openCheckpointStore() (*sql.DB, *adapters.LibSQLCheckpointStore, error) {
	dbConn, err := db.ConnectFromDSN(cfg.Depo.Database.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open checkpoint database: %w", err)
	}
	if err := db.Migrate(dbConn); err != nil {
		dbConn.Close()
		return nil, nil, err
	}
	return dbConn, adapters.NewLibSQLCheckpointStore(dbConn), nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	dbConn, store, err := openCheckpointStore()
	if err != nil {
		return err
	}
	defer dbConn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	runs, err := store.ListRuns(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Println(strings.Repeat("─", 100))
	fmt.Printf("%-36s  %-8s  %5s  %-16s  %s\n", "RUN", "STATUS", "TURNS", "CREATED", "QUERY")
	fmt.Println(strings.Repeat("─", 100))
	for _, run := range runs {
		fmt.Printf("%-36s  %-8s  %5d  %-16s  %s\n",
			run.RunID,
			run.Status,
			run.TurnsUsed,
			run.CreatedAt.Format("2006-01-02 15:04"),
			truncateStr(run.UserQuery, 40),
		)
	}
	fmt.Println(strings.Repeat("─", 100))

	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	dbConn, store, err := openCheckpointStore()
	if err != nil {
		return err
	}
	defer dbConn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	turns, err := store.LoadTurns(ctx, args[0])
	if err != nil {
		return err
	}
	if len(turns) == 0 {
		fmt.Println("No turns recorded for this run.")
		return nil
	}

	for _, turn := range turns {
		marker := ""
		if turn.IsFinal {
			marker = " (closing)"
		}
		fmt.Println(strings.Repeat("─", 60))
		fmt.Printf("Turn %d%s\n", turn.Index, marker)
		fmt.Printf("Q: %s\n", turn.Question)
		fmt.Printf("A: %s\n", truncateStr(turn.RawAnswer, 500))
		for _, item := range turn.Evidence {
			fmt.Printf("   - %s: %s\n", item.SourceID, truncateStr(item.Excerpt, 80))
		}
	}
	fmt.Println(strings.Repeat("─", 60))

	return nil
}
