package interrogation

import (
	"context"
	"database/sql"

	"github.com/ZanzyTHEbar/deposition/depo/config"
	"github.com/ZanzyTHEbar/deposition/depo/interrogation/adapters"
	ports "github.com/ZanzyTHEbar/deposition/depo/interrogation/ports"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Factory creates and wires engine components from configuration.
type Factory struct {
	cfg    *config.Config
	db     *sql.DB    // Optional, for checkpointing
	nc     *nats.Conn // Optional, for event publishing
	logger zerolog.Logger
}

// NewFactory creates a new engine factory. db and nc may be nil; the
// corresponding concerns degrade to no-ops.
func NewFactory(cfg *config.Config, db *sql.DB, nc *nats.Conn, logger zerolog.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		db:     db,
		nc:     nc,
		logger: logger,
	}
}

// StageModels carries the generator backing each pipeline stage.
type StageModels struct {
	Question ports.Generator
	Refine   ports.Generator
	Report   ports.Generator
	Conclude ports.Generator
}

// CreateEngine creates a fully wired Engine from config. The prompt
// library, stage models, and researcher are inference-specific and must
// be injected by the caller.
func (f *Factory) CreateEngine(prompts *Library, models StageModels, researcher ports.Researcher) *Engine {
	// Create adapters from config
	cache := f.createCache()
	limiter := f.createRateLimiter()
	tracer := f.createTracer()
	store := f.createStore()
	events := f.createEvents()

	cfg := f.CreateEngineConfig()

	// Create core stages
	questions := NewQuestionGenerator(prompts, models.Question, models.Question, cfg.ConfidenceThreshold)
	retrieval := NewRetrievalStep(researcher, cfg.RetrievalTimeout)
	refiner := NewRefiner(prompts, models.Report, models.Refine, cfg.SufficiencyThreshold)
	synthesizer := NewSynthesizer(prompts, models.Conclude)

	return NewEngine(
		cfg,
		questions,
		retrieval,
		refiner,
		synthesizer,
		store,
		events,
		cache,
		limiter,
		tracer,
		NewMetricsCollector(),
	)
}

// CreateEngineConfig maps the loaded configuration onto loop settings
// with validation.
func (f *Factory) CreateEngineConfig() Config {
	ic := f.cfg.Interrogation
	cfg := Config{
		DefaultMaxTurns:      ic.DefaultMaxTurns,
		RetrievalTimeout:     ic.RetrievalTimeout,
		StageTimeout:         ic.StageTimeout,
		ConfidenceThreshold:  ic.SimilarityThreshold,
		SufficiencyThreshold: ic.DedupThreshold,
		DedupThreshold:       ic.DedupThreshold,
		CacheTTLSeconds:      ic.CacheTTLSeconds,
	}

	// Validate and clamp loop values
	if cfg.DefaultMaxTurns < 1 {
		cfg.DefaultMaxTurns = 1
		f.logger.Warn().Int("default_max_turns", ic.DefaultMaxTurns).Msg("DefaultMaxTurns clamped to minimum of 1")
	}
	if cfg.DefaultMaxTurns > 50 {
		cfg.DefaultMaxTurns = 50
		f.logger.Warn().Int("default_max_turns", ic.DefaultMaxTurns).Msg("DefaultMaxTurns clamped to maximum of 50")
	}

	if ic.SimilarityThreshold <= 0 || ic.SimilarityThreshold > 1 {
		cfg.ConfidenceThreshold = DefaultConfig().ConfidenceThreshold
		f.logger.Warn().Float64("similarity_threshold", ic.SimilarityThreshold).Msg("SimilarityThreshold out of (0, 1], using default")
	}
	if ic.DedupThreshold <= 0 || ic.DedupThreshold > 1 {
		cfg.SufficiencyThreshold = DefaultConfig().SufficiencyThreshold
		cfg.DedupThreshold = DefaultConfig().DedupThreshold
		f.logger.Warn().Float64("dedup_threshold", ic.DedupThreshold).Msg("DedupThreshold out of (0, 1], using default")
	}

	return cfg
}

// createCache creates a cache adapter from config.
func (f *Factory) createCache() ports.Cache {
	if !f.cfg.Interrogation.CacheEnabled {
		return &noOpCache{}
	}

	return adapters.NewLRUCache(f.cfg.Interrogation.CacheCapacity)
}

// createRateLimiter creates a rate limiter adapter from config.
func (f *Factory) createRateLimiter() ports.RateLimiter {
	if !f.cfg.Interrogation.RateLimitEnabled {
		return &noOpRateLimiter{}
	}

	// Use the configured refill rate (already a time.Duration)
	refillRate := f.cfg.Interrogation.RateLimitRefillRate

	return adapters.NewTokenBucket(f.cfg.Interrogation.RateLimitCapacity, refillRate)
}

// createTracer creates a tracer adapter from config.
func (f *Factory) createTracer() ports.Tracer {
	if !f.cfg.Interrogation.EnableTracing {
		return &noOpTracer{}
	}

	return adapters.NewZerologTracer(f.logger)
}

// createStore creates a checkpoint store adapter from config.
func (f *Factory) createStore() ports.CheckpointStore {
	if f.db == nil || !f.cfg.Interrogation.CheckpointEnabled {
		return &noOpStore{}
	}

	return adapters.NewLibSQLCheckpointStore(f.db)
}

// createEvents creates an event sink adapter from config.
func (f *Factory) createEvents() ports.EventSink {
	if f.nc == nil || !f.cfg.Events.Enabled {
		return &noOpEvents{}
	}

	return adapters.NewNATSPublisher(f.nc, f.cfg.Events.SubjectPrefix)
}

// noOpCache implements Cache interface with no-op behavior for testing/disabled cache.
type noOpCache struct{}

func (c *noOpCache) Get(ctx context.Context, key string) ([]byte, bool) { return nil, false }
func (c *noOpCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	return nil
}
func (c *noOpCache) Delete(ctx context.Context, key string) error { return nil }

// noOpRateLimiter implements RateLimiter interface with no-op behavior.
type noOpRateLimiter struct{}

func (r *noOpRateLimiter) Acquire(ctx context.Context, key string) (release func(), err error) {
	return func() {}, nil
}

// noOpTracer implements Tracer interface with no-op behavior.
type noOpTracer struct{}

func (t *noOpTracer) StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, func(err error)) {
	return ctx, func(err error) {}
}

func (t *noOpTracer) Event(ctx context.Context, name string, attrs map[string]any) {}

// noOpStore implements CheckpointStore interface with no-op behavior.
type noOpStore struct{}

func (s *noOpStore) BeginRun(ctx context.Context, runID, userQuery string) error { return nil }

func (s *noOpStore) SaveTurn(ctx context.Context, runID string, turn ports.Turn) error { return nil }

func (s *noOpStore) CompleteRun(ctx context.Context, runID, status string, turnsUsed int, report []byte) error {
	return nil
}

func (s *noOpStore) LoadTurns(ctx context.Context, runID string) ([]ports.Turn, error) {
	return nil, nil
}

func (s *noOpStore) ListRuns(ctx context.Context, limit int) ([]ports.RunSummary, error) {
	return nil, nil
}

// noOpEvents implements EventSink interface with no-op behavior.
type noOpEvents struct{}

func (e *noOpEvents) TurnCompleted(ctx context.Context, runID string, turn ports.Turn) error {
	return nil
}

func (e *noOpEvents) RunCompleted(ctx context.Context, runID, status string, turnsUsed int) error {
	return nil
}

// Ensure all no-op types implement their interfaces.
var (
	_ ports.Cache           = (*noOpCache)(nil)
	_ ports.RateLimiter     = (*noOpRateLimiter)(nil)
	_ ports.Tracer          = (*noOpTracer)(nil)
	_ ports.CheckpointStore = (*noOpStore)(nil)
	_ ports.EventSink       = (*noOpEvents)(nil)
)
