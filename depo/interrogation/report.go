package interrogation

import (
	"context"
	"errors"
	"strings"

	ports "github.com/ZanzyTHEbar/deposition/depo/interrogation/ports"
)

// Synthesizer turns a finished conversation into the FinalReport: the
// narrative is the refined report plus the evidence appendix, and the
// conclusion is distilled by one dedicated generation call.
type Synthesizer struct {
	prompts *Library
	model   ports.Generator
}

// NewSynthesizer wires the synthesis stage.
func NewSynthesizer(prompts *Library, model ports.Generator) *Synthesizer {
	return &Synthesizer{prompts: prompts, model: model}
}

// Synthesize builds the final report for a run that ended with the given
// status. note explains a degraded ending and is woven into diagnostic
// narratives. Synthesis failures downgrade the result to ERROR; nothing
// is ever raised past this boundary.
func (s *Synthesizer) Synthesize(ctx context.Context, conv *Conversation, ledger *EvidenceLedger, status Status, note string) (FinalReport, error) {
	turnsUsed := conv.TurnCount()

	if turnsUsed == 0 {
		narrative := "No turns completed."
		if note != "" {
			narrative += " " + note
		}
		return FinalReport{Conclusion: "", Narrative: narrative, TurnsUsed: 0, Status: status}, nil
	}

	narrative := composeNarrative(conv.Report, ledger, note)

	closing := ""
	if last, ok := conv.LastTurn(); ok {
		closing = last.RawAnswer
	}

	data := PromptData{
		UserQuery:        conv.Request.UserQuery,
		UserContext:      conv.Request.UserContext,
		Report:           conv.Report,
		ClosingStatement: closing,
	}
	system, user, err := s.prompts.RenderPair(PromptConclusionSystem, PromptConclusionUser, data)
	if err != nil {
		serr := &SynthesisError{Err: err}
		return errorReport(serr, conv.Report, turnsUsed), serr
	}

	conclusion, err := s.model.Generate(ctx, system, user)
	if err != nil {
		serr := &SynthesisError{Err: err}
		return errorReport(serr, conv.Report, turnsUsed), serr
	}
	conclusion = strings.TrimSpace(conclusion)
	if conclusion == "" {
		serr := &SynthesisError{Err: errEmptyConclusion}
		return errorReport(serr, conv.Report, turnsUsed), serr
	}

	return FinalReport{
		Conclusion: conclusion,
		Narrative:  narrative,
		TurnsUsed:  turnsUsed,
		Status:     status,
	}, nil
}

// composeNarrative joins the refined report, any degradation note, and
// the evidence appendix.
func composeNarrative(report string, ledger *EvidenceLedger, note string) string {
	parts := make([]string, 0, 3)
	if report != "" {
		parts = append(parts, report)
	}
	if note != "" {
		parts = append(parts, "_Note: "+note+"_")
	}
	if appendix := ledger.Appendix(); appendix != "" {
		parts = append(parts, appendix)
	}
	return strings.Join(parts, "\n\n")
}

// errorReport explains a synthesis failure while keeping whatever report
// text had been built, so the caller still sees the salvaged findings.
func errorReport(serr *SynthesisError, report string, turnsUsed int) FinalReport {
	narrative := serr.Error()
	if report != "" {
		narrative += "\n\nPartial findings before the failure:\n\n" + report
	}
	return FinalReport{
		Conclusion: "",
		Narrative:  narrative,
		TurnsUsed:  turnsUsed,
		Status:     StatusError,
	}
}

var errEmptyConclusion = errors.New("model returned an empty conclusion")
