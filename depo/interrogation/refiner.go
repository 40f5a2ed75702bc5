package interrogation

import (
	"context"
	"errors"
	"strings"

	ports "github.com/ZanzyTHEbar/deposition/depo/interrogation/ports"
)

// RefineResult is the refiner's verdict for one turn.
type RefineResult struct {
	Refined     string
	Sufficiency bool
	// Fallback marks that the generation call failed and the raw answer
	// was adopted as the understanding; Warning carries the cause.
	Fallback bool
	Warning  string
}

// Refiner merges each raw answer into the evolving report. The first
// turn writes the report from scratch; later turns rewrite it against
// the newest exchange only. Sufficiency is signaled when a turn adds
// only marginal information over the previous understanding.
type Refiner struct {
	prompts              *Library
	reportModel          ports.Generator // writes the initial report
	refineModel          ports.Generator // merges later exchanges
	sufficiencyThreshold float64
}

// NewRefiner wires the refinement stage.
func NewRefiner(prompts *Library, reportModel, refineModel ports.Generator, sufficiencyThreshold float64) *Refiner {
	return &Refiner{
		prompts:              prompts,
		reportModel:          reportModel,
		refineModel:          refineModel,
		sufficiencyThreshold: sufficiencyThreshold,
	}
}

// Refine reconciles turn's answer with conv.Report. conv still holds
// only the previously completed turns; the caller appends turn after
// refinement succeeds.
func (r *Refiner) Refine(ctx context.Context, conv *Conversation, turn ports.Turn) RefineResult {
	// Nothing retrieved means nothing to merge: keep the current
	// understanding and signal that probing further down this line is
	// not adding information.
	if strings.TrimSpace(turn.RawAnswer) == "" && len(turn.Evidence) == 0 {
		return RefineResult{Refined: conv.Report, Sufficiency: true}
	}

	data := PromptData{
		UserQuery:   conv.Request.UserQuery,
		UserContext: conv.Request.UserContext,
	}

	var systemName, userName string
	model := r.refineModel
	if conv.Report == "" {
		systemName, userName = PromptReportSystem, PromptReportUser
		data.Conversation = FormatTranscript(append(append([]ports.Turn{}, conv.Turns...), turn))
		model = r.reportModel
	} else {
		systemName, userName = PromptRefineSystem, PromptRefineUser
		data.Conversation = FormatExchange(turn)
		data.ExistingReport = conv.Report
	}

	refined, err := r.render(ctx, model, systemName, userName, data)
	if err != nil {
		werr := &RefinementError{Err: err}
		return RefineResult{
			Refined:     fallbackUnderstanding(conv.Report, turn.RawAnswer),
			Sufficiency: false,
			Fallback:    true,
			Warning:     werr.Error(),
		}
	}

	return RefineResult{
		Refined:     refined,
		Sufficiency: r.isMarginal(conv.Report, refined),
	}
}

func (r *Refiner) render(ctx context.Context, model ports.Generator, systemName, userName string, data PromptData) (string, error) {
	system, user, err := r.prompts.RenderPair(systemName, userName, data)
	if err != nil {
		return "", err
	}
	text, err := model.Generate(ctx, system, user)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errEmptyRefinement
	}
	return text, nil
}

// isMarginal reports whether the rewritten report is a near-duplicate of
// the previous one, meaning the turn contributed nothing substantive.
// The first report never counts as marginal.
func (r *Refiner) isMarginal(previous, refined string) bool {
	if previous == "" {
		return false
	}
	return CosineSimilarity(previous, refined) >= r.sufficiencyThreshold
}

// fallbackUnderstanding appends the raw answer to whatever understanding
// already exists so a refinement failure never loses retrieved content.
func fallbackUnderstanding(report, rawAnswer string) string {
	if report == "" {
		return rawAnswer
	}
	if strings.TrimSpace(rawAnswer) == "" {
		return report
	}
	return report + "\n\n" + rawAnswer
}

var errEmptyRefinement = errors.New("model returned an empty refinement")
