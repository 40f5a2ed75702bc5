package interrogation

import (
	ports "github.com/ZanzyTHEbar/deposition/depo/interrogation/ports"
)

// Phase enumerates the loop states of one interrogation run. A run walks
// AWAITING_QUESTION → AWAITING_ANSWER → AWAITING_REFINEMENT → DECIDING
// each turn, then either loops back or moves to SYNTHESIZING → DONE.
type Phase int

const (
	PhaseAwaitingQuestion Phase = iota
	PhaseAwaitingAnswer
	PhaseAwaitingRefinement
	PhaseDeciding
	PhaseSynthesizing
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingQuestion:
		return "AWAITING_QUESTION"
	case PhaseAwaitingAnswer:
		return "AWAITING_ANSWER"
	case PhaseAwaitingRefinement:
		return "AWAITING_REFINEMENT"
	case PhaseDeciding:
		return "DECIDING"
	case PhaseSynthesizing:
		return "SYNTHESIZING"
	case PhaseDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// Decision is the router's verdict at the DECIDING boundary.
type Decision int

const (
	// DecisionContinue keeps probing with an ordinary follow-up.
	DecisionContinue Decision = iota
	// DecisionClose forces the next turn to ask the closing question.
	DecisionClose
	// DecisionSynthesize ends the loop and moves to report synthesis.
	DecisionSynthesize
)

func (d Decision) String() string {
	switch d {
	case DecisionContinue:
		return "continue"
	case DecisionClose:
		return "close"
	case DecisionSynthesize:
		return "synthesize"
	default:
		return "unknown"
	}
}

// Router owns the turn-to-turn control flow: when to probe, when to ask
// the closing question, and when to stop. maxTurns is a hard ceiling
// enforced independently of the sufficiency signal.
type Router struct {
	maxTurns     int
	forceClosing bool
}

// NewRouter creates the router for a run allowing at most maxTurns turns.
func NewRouter(maxTurns int) *Router {
	return &Router{maxTurns: maxTurns}
}

// NextKind reports which question the generator must produce for the
// upcoming turn, given how many turns have completed.
func (r *Router) NextKind(turnsCompleted int) QuestionKind {
	if r.forceClosing || turnsCompleted+1 >= r.maxTurns {
		return QuestionClosing
	}
	if turnsCompleted == 0 {
		return QuestionFirst
	}
	return QuestionFollowUp
}

// Decide inspects a just-completed turn and chooses the next transition.
func (r *Router) Decide(turn ports.Turn, sufficiency bool, turnsCompleted int) Decision {
	if turn.IsFinal {
		return DecisionSynthesize
	}
	if turnsCompleted >= r.maxTurns {
		// Ceiling reached without a closing turn; stop regardless.
		return DecisionSynthesize
	}
	if sufficiency || turnsCompleted >= r.maxTurns-1 {
		r.forceClosing = true
		return DecisionClose
	}
	return DecisionContinue
}
