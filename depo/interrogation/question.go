package interrogation

import (
	"context"
	"strings"

	ports "github.com/ZanzyTHEbar/deposition/depo/interrogation/ports"
)

// QuestionKind selects the prompt strategy for a turn.
type QuestionKind int

const (
	QuestionFirst QuestionKind = iota
	QuestionFollowUp
	QuestionClosing
)

func (k QuestionKind) String() string {
	switch k {
	case QuestionFirst:
		return "first"
	case QuestionFollowUp:
		return "follow_up"
	case QuestionClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Question is the generator's output for one turn.
type Question struct {
	Text    string
	Kind    QuestionKind
	IsFinal bool
	// RetriedDuplicate is set when the first candidate repeated an
	// earlier question and a regeneration was attempted.
	RetriedDuplicate bool
}

// QuestionGenerator produces the next interrogation question from the
// conversation so far. A follow-up that repeats an earlier question is
// regenerated once with explicit guidance; a follow-up that declares the
// confidence phrase is converted into the closing question on the spot.
type QuestionGenerator struct {
	prompts             *Library
	model               ports.Generator
	closingModel        ports.Generator
	confidenceThreshold float64
}

// NewQuestionGenerator wires the question stage. closingModel serves the
// closing turn and may equal model.
func NewQuestionGenerator(prompts *Library, model, closingModel ports.Generator, confidenceThreshold float64) *QuestionGenerator {
	return &QuestionGenerator{
		prompts:             prompts,
		model:               model,
		closingModel:        closingModel,
		confidenceThreshold: confidenceThreshold,
	}
}

// Generate produces the question for the upcoming turn of kind.
func (g *QuestionGenerator) Generate(ctx context.Context, conv *Conversation, index *QuestionIndex, kind QuestionKind) (Question, error) {
	text, err := g.generateOnce(ctx, conv, kind, "")
	if err != nil {
		return Question{}, err
	}

	// A follow-up that states the confidence phrase means the
	// interrogator has nothing left to probe: close now instead of
	// wasting the turn on a non-question.
	if kind == QuestionFollowUp && SignalsConfidence(text, g.confidenceThreshold) {
		kind = QuestionClosing
		text, err = g.generateOnce(ctx, conv, kind, "")
		if err != nil {
			return Question{}, err
		}
	}

	retried := false
	if kind == QuestionFollowUp && index != nil {
		if dup, prior := index.IsDuplicate(text); dup {
			retried = true
			guidance := "You already asked: " + prior + "\nAsk a different question that targets an unresolved gap from the report."
			regenerated, regenErr := g.generateOnce(ctx, conv, kind, guidance)
			if regenErr == nil {
				text = regenerated
			}
		}
	}

	return Question{Text: text, Kind: kind, IsFinal: kind == QuestionClosing, RetriedDuplicate: retried}, nil
}

// generateOnce renders the stage prompts and runs the model. guidance,
// when present, is appended to the user prompt.
func (g *QuestionGenerator) generateOnce(ctx context.Context, conv *Conversation, kind QuestionKind, guidance string) (string, error) {
	data := PromptData{
		UserQuery:        conv.Request.UserQuery,
		UserContext:      conv.Request.UserContext,
		UserInstructions: conv.Request.UserInstructions,
		RemainingTurns:   conv.RemainingTurns(),
		Report:           conv.Report,
		Questions:        strings.Join(conv.Questions(), "\n"),
	}

	var systemName, userName string
	model := g.model
	switch kind {
	case QuestionFirst:
		systemName, userName = PromptFirstQuestionSystem, PromptFirstQuestionUser
	case QuestionClosing:
		systemName, userName = PromptClosingQuestionSystem, PromptClosingQuestionUser
		model = g.closingModel
	default:
		systemName, userName = PromptFollowUpSystem, PromptFollowUpUser
	}

	system, user, err := g.prompts.RenderPair(systemName, userName, data)
	if err != nil {
		return "", &GenerationError{Stage: "question", Err: err}
	}
	if guidance != "" {
		user = user + "\n\n" + guidance
	}

	text, err := model.Generate(ctx, system, user)
	if err != nil {
		return "", &GenerationError{Stage: "question", Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &GenerationError{Stage: "question"}
	}
	return text, nil
}
