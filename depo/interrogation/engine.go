package interrogation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	ports "github.com/ZanzyTHEbar/deposition/depo/interrogation/ports"
)

// Config carries the loop knobs, resolved once at engine construction.
// Runs never consult ambient configuration.
type Config struct {
	DefaultMaxTurns      int           // applied when a request leaves MaxTurns unset
	RetrievalTimeout     time.Duration // per researcher call
	StageTimeout         time.Duration // per generation call
	ConfidenceThreshold  float64       // phrase similarity that ends probing
	SufficiencyThreshold float64       // refined-report similarity that signals sufficiency
	DedupThreshold       float64       // question similarity that counts as a repeat
	CacheTTLSeconds      int           // answer cache TTL
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		DefaultMaxTurns:      5,
		RetrievalTimeout:     90 * time.Second,
		StageTimeout:         60 * time.Second,
		ConfidenceThreshold:  0.9,
		SufficiencyThreshold: 0.85,
		DedupThreshold:       0.85,
		CacheTTLSeconds:      3600,
	}
}

// Engine drives interrogation runs: a bounded generate → retrieve →
// refine loop followed by report synthesis. Engines are safe for
// concurrent use; each run owns its Conversation exclusively.
type Engine struct {
	cfg         Config
	questions   *QuestionGenerator
	retrieval   *RetrievalStep
	refiner     *Refiner
	synthesizer *Synthesizer
	store       ports.CheckpointStore
	events      ports.EventSink
	cache       ports.Cache
	limiter     ports.RateLimiter
	tracer      ports.Tracer
	metrics     *MetricsCollector
}

// NewEngine creates an engine with its dependencies. Callers normally go
// through the Factory, which substitutes no-op implementations for any
// disabled concern.
func NewEngine(
	cfg Config,
	questions *QuestionGenerator,
	retrieval *RetrievalStep,
	refiner *Refiner,
	synthesizer *Synthesizer,
	store ports.CheckpointStore,
	events ports.EventSink,
	cache ports.Cache,
	limiter ports.RateLimiter,
	tracer ports.Tracer,
	metrics *MetricsCollector,
) *Engine {
	return &Engine{
		cfg:         cfg,
		questions:   questions,
		retrieval:   retrieval,
		refiner:     refiner,
		synthesizer: synthesizer,
		store:       store,
		events:      events,
		cache:       cache,
		limiter:     limiter,
		tracer:      tracer,
		metrics:     metrics,
	}
}

// Interrogate runs one conversation to completion and always returns a
// FinalReport for a valid request; internal failures surface through the
// report status. The only error returned is InvalidRequestError.
func (e *Engine) Interrogate(ctx context.Context, req Request) (FinalReport, error) {
	if req.MaxTurns == 0 {
		req.MaxTurns = e.cfg.DefaultMaxTurns
	}
	if err := req.Validate(); err != nil {
		return FinalReport{}, err
	}

	conv := NewConversation(req)

	ctx, finish := e.tracer.StartSpan(ctx, "interrogate", map[string]any{
		"run_id":    conv.ID,
		"max_turns": req.MaxTurns,
	})
	defer finish(nil)

	if err := e.store.BeginRun(ctx, conv.ID, req.UserQuery); err != nil {
		// Log but don't fail
		e.tracer.Event(ctx, "store_error", map[string]any{"op": "begin_run", "error": err.Error()})
	}

	router := NewRouter(req.MaxTurns)
	index := NewQuestionIndex(e.cfg.DedupThreshold)
	ledger := NewEvidenceLedger()

	status, note := e.runLoop(ctx, conv, router, index, ledger)

	e.tracer.Event(ctx, "phase", map[string]any{"phase": PhaseSynthesizing.String(), "turns": conv.TurnCount()})
	stageCtx, cancel := e.stageContext(ctx)
	report, synthErr := e.synthesizer.Synthesize(stageCtx, conv, ledger, status, note)
	cancel()
	e.metrics.RecordSynthesis(synthErr)
	if synthErr != nil {
		e.tracer.Event(ctx, "synthesis_error", map[string]any{"error": synthErr.Error()})
	}

	e.tracer.Event(ctx, "phase", map[string]any{"phase": PhaseDone.String(), "status": string(report.Status)})
	e.metrics.RecordRun(report.Status)
	e.completeRun(ctx, conv, report)
	return report, nil
}

// runLoop executes turns until the router stops, a stage degrades the
// run, or the caller cancels. It reports the terminal status and, for
// degraded endings, a diagnostic note.
func (e *Engine) runLoop(ctx context.Context, conv *Conversation, router *Router, index *QuestionIndex, ledger *EvidenceLedger) (Status, string) {
	for {
		// Cancellation is cooperative: honored here and at DECIDING,
		// never mid-turn.
		if ctx.Err() != nil {
			return StatusPartial, "run canceled before the next turn started"
		}

		turnIndex := conv.TurnCount() + 1
		kind := router.NextKind(conv.TurnCount())
		e.tracer.Event(ctx, "phase", map[string]any{"phase": PhaseAwaitingQuestion.String(), "turn": turnIndex, "kind": kind.String()})

		stageCtx, cancel := e.stageContext(ctx)
		start := time.Now()
		question, err := e.questions.Generate(stageCtx, conv, index, kind)
		cancel()
		e.metrics.RecordQuestion(time.Since(start), err)
		if err != nil {
			e.tracer.Event(ctx, "generation_error", map[string]any{"turn": turnIndex, "error": err.Error()})
			return StatusPartial, fmt.Sprintf("question generation failed on turn %d: %v", turnIndex, err)
		}
		if question.RetriedDuplicate {
			e.metrics.RecordDuplicateRetry()
			e.tracer.Event(ctx, "duplicate_question", map[string]any{"turn": turnIndex})
		}

		e.tracer.Event(ctx, "phase", map[string]any{"phase": PhaseAwaitingAnswer.String(), "turn": turnIndex})
		answer, err := e.retrieveWithRetry(ctx, question.Text, conv.Request)
		if err != nil {
			e.tracer.Event(ctx, "retrieval_failed", map[string]any{"turn": turnIndex, "error": err.Error()})
			return StatusPartial, fmt.Sprintf("retrieval failed after one retry on turn %d: %v", turnIndex, err)
		}

		e.tracer.Event(ctx, "phase", map[string]any{"phase": PhaseAwaitingRefinement.String(), "turn": turnIndex})
		turn := ports.Turn{
			Index:     turnIndex,
			Question:  question.Text,
			RawAnswer: answer.Text,
			Evidence:  answer.Evidence,
			IsFinal:   question.IsFinal,
			CreatedAt: time.Now(),
		}

		stageCtx, cancel = e.stageContext(ctx)
		start = time.Now()
		result := e.refiner.Refine(stageCtx, conv, turn)
		cancel()
		if result.Fallback {
			e.metrics.RecordRefine(time.Since(start), fmt.Errorf("%s", result.Warning))
			e.tracer.Event(ctx, "refinement_fallback", map[string]any{"turn": turnIndex, "warning": result.Warning})
		} else {
			e.metrics.RecordRefine(time.Since(start), nil)
		}

		turn.RefinedUnderstanding = result.Refined
		conv.Report = result.Refined
		if err := conv.AppendTurn(turn); err != nil {
			e.tracer.Event(ctx, "state_error", map[string]any{"turn": turnIndex, "error": err.Error()})
			return StatusError, fmt.Sprintf("conversation state corrupted on turn %d: %v", turnIndex, err)
		}
		index.Add(turn.Question)
		ledger.Record(turn.Index, turn.Evidence)

		e.checkpointTurn(ctx, conv, turn)

		e.tracer.Event(ctx, "phase", map[string]any{"phase": PhaseDeciding.String(), "turn": turnIndex, "sufficiency": result.Sufficiency})
		if ctx.Err() != nil {
			return StatusPartial, fmt.Sprintf("run canceled after turn %d", turnIndex)
		}
		decision := router.Decide(turn, result.Sufficiency, conv.TurnCount())
		e.tracer.Event(ctx, "decision", map[string]any{"turn": turnIndex, "decision": decision.String()})
		if decision == DecisionSynthesize {
			return StatusSuccess, ""
		}
	}
}

// retrieveWithRetry consults the answer cache, then calls the researcher
// with at most one retry on failure.
func (e *Engine) retrieveWithRetry(ctx context.Context, question string, req Request) (ports.Answer, error) {
	key := answerCacheKey(question, req)
	if cached, ok := e.cache.Get(ctx, key); ok {
		var answer ports.Answer
		if err := json.Unmarshal(cached, &answer); err == nil {
			e.metrics.RecordCacheHit()
			e.tracer.Event(ctx, "cache_hit", map[string]any{"key": key})
			return answer, nil
		}
		e.cache.Delete(ctx, key)
	}

	answer, err := e.retrieveOnce(ctx, question, req)
	if err != nil {
		e.metrics.RecordRetry()
		e.tracer.Event(ctx, "retrieval_retry", map[string]any{"error": err.Error()})
		answer, err = e.retrieveOnce(ctx, question, req)
		if err != nil {
			return ports.Answer{}, err
		}
	}

	if payload, merr := json.Marshal(answer); merr == nil {
		e.cache.Set(ctx, key, payload, e.cfg.CacheTTLSeconds)
	}
	return answer, nil
}

func (e *Engine) retrieveOnce(ctx context.Context, question string, req Request) (ports.Answer, error) {
	release, err := e.limiter.Acquire(ctx, "retrieve")
	if err != nil {
		return ports.Answer{}, &ports.RetrievalError{Message: "retrieval rate limited", Err: err}
	}
	defer release()

	// The call itself survives caller cancellation; the step's own
	// timeout bounds it. Cancellation takes effect at phase boundaries.
	callCtx := context.WithoutCancel(ctx)
	start := time.Now()
	answer, err := e.retrieval.Retrieve(callCtx, question, req)
	e.metrics.RecordRetrieval(time.Since(start), err)
	return answer, err
}

// stageContext detaches a generation call from caller cancellation while
// keeping it bounded by the stage timeout, so an in-flight turn always
// runs to completion or failure.
func (e *Engine) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if e.cfg.StageTimeout > 0 {
		return context.WithTimeout(base, e.cfg.StageTimeout)
	}
	return base, func() {}
}

// checkpointTurn persists the turn and emits its completion event. Both
// are at-least-once side effects; failures are logged, never fatal.
func (e *Engine) checkpointTurn(ctx context.Context, conv *Conversation, turn ports.Turn) {
	if err := e.store.SaveTurn(ctx, conv.ID, turn); err != nil {
		e.tracer.Event(ctx, "store_error", map[string]any{"op": "save_turn", "turn": turn.Index, "error": err.Error()})
	}
	if err := e.events.TurnCompleted(ctx, conv.ID, turn); err != nil {
		e.tracer.Event(ctx, "events_error", map[string]any{"op": "turn_completed", "turn": turn.Index, "error": err.Error()})
	}
}

func (e *Engine) completeRun(ctx context.Context, conv *Conversation, report FinalReport) {
	payload, err := json.Marshal(report)
	if err != nil {
		payload = nil
	}
	if err := e.store.CompleteRun(ctx, conv.ID, string(report.Status), report.TurnsUsed, payload); err != nil {
		e.tracer.Event(ctx, "store_error", map[string]any{"op": "complete_run", "error": err.Error()})
	}
	if err := e.events.RunCompleted(ctx, conv.ID, string(report.Status), report.TurnsUsed); err != nil {
		e.tracer.Event(ctx, "events_error", map[string]any{"op": "run_completed", "error": err.Error()})
	}
}

// answerCacheKey builds a deterministic key over the question and the
// grounding fields that shape the researcher's answer.
func answerCacheKey(question string, req Request) string {
	return fmt.Sprintf("answer:%s|%s", hashString(question), hashString(req.UserContext+"|"+req.UserInstructions))
}

// hashString is djb2, kept for deterministic but short cache keys.
func hashString(s string) string {
	hash := uint32(5381)
	for _, r := range s {
		hash = ((hash << 5) + hash) + uint32(r)
	}
	return fmt.Sprintf("%x", hash)
}
