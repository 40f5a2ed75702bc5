package interrogation

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ports "github.com/ZanzyTHEbar/deposition/depo/interrogation/ports"
)

func newTestSynthesizer(t *testing.T, model *stubGenerator) *Synthesizer {
	t.Helper()
	lib, err := NewLibrary("", zerolog.New(zerolog.Nop()))
	require.NoError(t, err)
	return NewSynthesizer(lib, model)
}

func TestSynthesizeZeroTurnsSkipsGeneration(t *testing.T) {
	model := &stubGenerator{}
	s := newTestSynthesizer(t, model)

	conv := NewConversation(Request{UserQuery: "q", MaxTurns: 3})
	report, err := s.Synthesize(context.Background(), conv, NewEvidenceLedger(), StatusPartial, "retrieval failed after one retry on turn 1")
	require.NoError(t, err)

	assert.Equal(t, StatusPartial, report.Status)
	assert.Equal(t, 0, report.TurnsUsed)
	assert.Empty(t, report.Conclusion)
	assert.Equal(t, "No turns completed. retrieval failed after one retry on turn 1", report.Narrative)
	assert.Equal(t, 0, model.callCount())
}

func TestSynthesizeZeroTurnsWithoutNote(t *testing.T) {
	s := newTestSynthesizer(t, &stubGenerator{})

	conv := NewConversation(Request{UserQuery: "q", MaxTurns: 3})
	report, err := s.Synthesize(context.Background(), conv, NewEvidenceLedger(), StatusPartial, "")
	require.NoError(t, err)

	assert.Equal(t, "No turns completed.", report.Narrative)
}

func TestSynthesizeComposesNarrative(t *testing.T) {
	model := &stubGenerator{}
	model.generateFunc = func(int, string, string) (string, error) {
		return "The processing is lawful under Article 6(1)(f).", nil
	}
	s := newTestSynthesizer(t, model)

	conv := NewConversation(Request{UserQuery: "Is the processing lawful?", MaxTurns: 3})
	require.NoError(t, conv.AppendTurn(ports.Turn{
		Index:     1,
		Question:  "Which basis applies?",
		RawAnswer: "Legitimate interest, per the closing statement.",
		IsFinal:   true,
	}))
	conv.Report = "The controller relies on legitimate interest."

	ledger := NewEvidenceLedger()
	ledger.Record(1, []ports.Evidence{{SourceID: "gdpr/art-6", Excerpt: "legitimate interests"}})

	report, err := s.Synthesize(context.Background(), conv, ledger, StatusSuccess, "")
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, report.Status)
	assert.Equal(t, 1, report.TurnsUsed)
	assert.Equal(t, "The processing is lawful under Article 6(1)(f).", report.Conclusion)
	assert.Contains(t, report.Narrative, "The controller relies on legitimate interest.")
	assert.Contains(t, report.Narrative, "### Evidence by Source")
	assert.NotContains(t, report.Narrative, "_Note:")

	// The conclusion prompt sees the report and the closing statement.
	require.Equal(t, 1, model.callCount())
	assert.Contains(t, model.users[0], "The controller relies on legitimate interest.")
	assert.Contains(t, model.users[0], "Legitimate interest, per the closing statement.")
}

func TestSynthesizeWeavesDegradationNote(t *testing.T) {
	model := &stubGenerator{}
	s := newTestSynthesizer(t, model)

	conv := NewConversation(Request{UserQuery: "q", MaxTurns: 3})
	require.NoError(t, conv.AppendTurn(ports.Turn{Index: 1, Question: "Q?", RawAnswer: "A."}))
	conv.Report = "Partial findings."

	report, err := s.Synthesize(context.Background(), conv, NewEvidenceLedger(), StatusPartial, "question generation failed on turn 2")
	require.NoError(t, err)

	assert.Equal(t, StatusPartial, report.Status)
	assert.Contains(t, report.Narrative, "_Note: question generation failed on turn 2_")
}

func TestSynthesizeFailureReturnsErrorReport(t *testing.T) {
	model := &stubGenerator{}
	model.generateFunc = func(int, string, string) (string, error) {
		return "", errors.New("backend down")
	}
	s := newTestSynthesizer(t, model)

	conv := NewConversation(Request{UserQuery: "q", MaxTurns: 3})
	require.NoError(t, conv.AppendTurn(ports.Turn{Index: 1, Question: "Q?", RawAnswer: "A."}))
	conv.Report = "Salvaged findings."

	report, err := s.Synthesize(context.Background(), conv, NewEvidenceLedger(), StatusSuccess, "")

	var serr *SynthesisError
	require.ErrorAs(t, err, &serr)

	// The report is still usable: diagnostic narrative, salvaged text,
	// empty conclusion, ERROR status.
	assert.Equal(t, StatusError, report.Status)
	assert.Empty(t, report.Conclusion)
	assert.Equal(t, 1, report.TurnsUsed)
	assert.Contains(t, report.Narrative, "report synthesis failed")
	assert.Contains(t, report.Narrative, "Partial findings before the failure:")
	assert.Contains(t, report.Narrative, "Salvaged findings.")
}

func TestSynthesizeBlankConclusionIsFailure(t *testing.T) {
	model := &stubGenerator{}
	model.generateFunc = func(int, string, string) (string, error) {
		return "  \n\t", nil
	}
	s := newTestSynthesizer(t, model)

	conv := NewConversation(Request{UserQuery: "q", MaxTurns: 3})
	require.NoError(t, conv.AppendTurn(ports.Turn{Index: 1, Question: "Q?", RawAnswer: "A."}))

	report, err := s.Synthesize(context.Background(), conv, NewEvidenceLedger(), StatusSuccess, "")

	var serr *SynthesisError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, StatusError, report.Status)
	assert.Contains(t, report.Narrative, "empty conclusion")
}
