package main

import (
	"database/sql"
	"fmt"

	"github.com/ZanzyTHEbar/deposition/depo/db"
	"github.com/ZanzyTHEbar/deposition/depo/interrogation"
	"github.com/ZanzyTHEbar/deposition/depo/interrogation/adapters"
	"github.com/ZanzyTHEbar/deposition/depo/llm"
	"github.com/ZanzyTHEbar/deposition/depo/research"
	"github.com/nats-io/nats.go"
)

// runtime bundles a wired engine with the resources it owns.
type runtime struct {
	engine  *interrogation.Engine
	prompts *interrogation.Library
	db      *sql.DB
	nc      *nats.Conn
}

// buildRuntime wires an engine from the loaded configuration. Optional
// concerns (checkpoint database, event bus) degrade to no-ops with a
// warning instead of failing the command.
func buildRuntime() (*runtime, error) {
	prompts, err := interrogation.NewLibrary(cfg.Depo.PromptDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}
	if err := prompts.Watch(); err != nil {
		logger.Warn().Err(err).Msg("prompt hot reload disabled")
	}

	registry, err := llm.NewRegistry(cfg.Models)
	if err != nil {
		prompts.Close()
		return nil, fmt.Errorf("failed to build model registry: %w", err)
	}

	var dbConn *sql.DB
	if cfg.Interrogation.CheckpointEnabled {
		dbConn, err = db.ConnectFromDSN(cfg.Depo.Database.DSN)
		if err != nil {
			logger.Warn().Err(err).Msg("checkpointing disabled: database unavailable")
			dbConn = nil
		} else if err := db.Migrate(dbConn); err != nil {
			logger.Warn().Err(err).Msg("checkpointing disabled: migration failed")
			dbConn.Close()
			dbConn = nil
		}
	}

	var nc *nats.Conn
	if cfg.Events.Enabled {
		nc, err = adapters.ConnectNATS(cfg.Events.URL)
		if err != nil {
			logger.Warn().Err(err).Msg("event publishing disabled: NATS unavailable")
			nc = nil
		}
	}

	researcher := research.NewClient(cfg.Researcher)

	factory := interrogation.NewFactory(cfg, dbConn, nc, logger)
	engine := factory.CreateEngine(prompts, interrogation.StageModels{
		Question: registry.ForStage(llm.StageQuestion),
		Refine:   registry.ForStage(llm.StageRefine),
		Report:   registry.ForStage(llm.StageReport),
		Conclude: registry.ForStage(llm.StageConclude),
	}, researcher)

	return &runtime{
		engine:  engine,
		prompts: prompts,
		db:      dbConn,
		nc:      nc,
	}, nil
}

// Close releases everything the runtime owns.
func (r *runtime) Close() {
	r.prompts.Close()
	if r.db != nil {
		r.db.Close()
	}
	if r.nc != nil {
		r.nc.Close()
	}
}
