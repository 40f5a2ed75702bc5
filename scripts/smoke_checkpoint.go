//go:build integration
// +build integration

package scripts

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ZanzyTHEbar/deposition/depo/db"
	"github.com/ZanzyTHEbar/deposition/depo/interrogation/adapters"
	ports "github.com/ZanzyTHEbar/deposition/depo/interrogation/ports"
)

func must(err error, msg string) {
	if err != nil {
		log.Fatalf("%s: %v", msg, err)
	}
}

// RunSmokeCheckpoint exercises the embedded checkpoint database end to
// end: connect, migrate, write a run with turns, read it back.
func RunSmokeCheckpoint() {
	fmt.Println("Smoke test: LibSQL checkpoint store")
	tmp := "./smoke.db"
	defer os.Remove(tmp)

	dbconn, err := db.ConnectToDB(tmp)
	must(err, "connect")
	defer dbconn.Close()

	// Basic
	var v int
	err = dbconn.QueryRow("SELECT 1").Scan(&v)
	must(err, "basic SELECT")
	if v != 1 {
		log.Fatalf("basic SELECT returned %v", v)
	}
	fmt.Println("OK: basic SQL")

	must(db.Migrate(dbconn), "migrate")
	fmt.Println("OK: migrations")

	ctx := context.Background()
	store := adapters.NewLibSQLCheckpointStore(dbconn)

	must(store.BeginRun(ctx, "smoke-run", "Does the contract comply?"), "begin run")

	turn := ports.Turn{
		Index:                1,
		Question:             "What does clause 4 provide?",
		RawAnswer:            "Clause 4 assigns liability to the supplier.",
		RefinedUnderstanding: "The supplier carries liability under clause 4.",
		CreatedAt:            time.Now(),
	}
	must(store.SaveTurn(ctx, "smoke-run", turn), "save turn 1")

	turn.Index = 2
	turn.Question = "Are there carve-outs?"
	turn.IsFinal = true
	must(store.SaveTurn(ctx, "smoke-run", turn), "save turn 2")

	// Replaying a turn must overwrite, not duplicate.
	must(store.SaveTurn(ctx, "smoke-run", turn), "replay turn 2")
	fmt.Println("OK: turn writes")

	must(store.CompleteRun(ctx, "smoke-run", "SUCCESS", 2, []byte("final report")), "complete run")

	turns, err := store.LoadTurns(ctx, "smoke-run")
	must(err, "load turns")
	if len(turns) != 2 {
		log.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Index != 1 || turns[1].Index != 2 {
		log.Fatalf("turns out of order: %d, %d", turns[0].Index, turns[1].Index)
	}
	if !turns[1].IsFinal {
		log.Fatal("closing turn lost its final flag")
	}
	fmt.Println("OK: turn round-trip")

	runs, err := store.ListRuns(ctx, 10)
	must(err, "list runs")
	if len(runs) != 1 {
		log.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Status != "SUCCESS" || runs[0].TurnsUsed != 2 {
		log.Fatalf("run summary wrong: %+v", runs[0])
	}
	fmt.Println("OK: run listing")

	fmt.Println("Smoke test passed")
}
