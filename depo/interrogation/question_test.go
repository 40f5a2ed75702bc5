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

func newTestQuestionGenerator(t *testing.T, model *stubGenerator) *QuestionGenerator {
	t.Helper()
	lib, err := NewLibrary("", zerolog.New(zerolog.Nop()))
	require.NoError(t, err)
	return NewQuestionGenerator(lib, model, model, 0.9)
}

func TestGenerateFirstQuestionUsesOpeningPrompts(t *testing.T) {
	model := &stubGenerator{}
	model.generateFunc = func(int, string, string) (string, error) {
		return "  What lawful bases does the controller claim?  ", nil
	}
	g := newTestQuestionGenerator(t, model)

	conv := NewConversation(Request{UserQuery: "Is the processing lawful?", MaxTurns: 5})
	q, err := g.Generate(context.Background(), conv, NewQuestionIndex(0.85), QuestionFirst)
	require.NoError(t, err)

	assert.Equal(t, "What lawful bases does the controller claim?", q.Text, "output is trimmed")
	assert.Equal(t, QuestionFirst, q.Kind)
	assert.False(t, q.IsFinal)
	assert.False(t, q.RetriedDuplicate)

	require.Equal(t, 1, model.callCount())
	assert.Contains(t, model.users[0], "first round of interrogation")
	assert.Contains(t, model.systems[0], "Is the processing lawful?")
}

func TestGenerateFollowUpSeesReportAndPriorQuestions(t *testing.T) {
	model := &stubGenerator{}
	model.generateFunc = func(int, string, string) (string, error) {
		return "Which safeguards cover the transfer?", nil
	}
	g := newTestQuestionGenerator(t, model)

	conv := NewConversation(Request{UserQuery: "Is the transfer lawful?", MaxTurns: 5})
	require.NoError(t, conv.AppendTurn(ports.Turn{Index: 1, Question: "What does Chapter V require?"}))
	conv.Report = "Chapter V requires an adequacy decision or safeguards."

	q, err := g.Generate(context.Background(), conv, NewQuestionIndex(0.85), QuestionFollowUp)
	require.NoError(t, err)

	assert.Equal(t, QuestionFollowUp, q.Kind)
	assert.False(t, q.IsFinal)
	assert.Contains(t, model.users[0], "Chapter V requires an adequacy decision or safeguards.")
	assert.Contains(t, model.users[0], "What does Chapter V require?")
}

func TestGenerateClosingQuestionIsFinal(t *testing.T) {
	model := &stubGenerator{}
	model.generateFunc = func(int, string, string) (string, error) {
		return "Considering everything, what is the answer?", nil
	}
	g := newTestQuestionGenerator(t, model)

	conv := NewConversation(Request{UserQuery: "q", MaxTurns: 3})
	q, err := g.Generate(context.Background(), conv, NewQuestionIndex(0.85), QuestionClosing)
	require.NoError(t, err)

	assert.Equal(t, QuestionClosing, q.Kind)
	assert.True(t, q.IsFinal)
	assert.Contains(t, model.systems[0], "concluding")
}

func TestGenerateConfidencePhraseEscalatesToClosing(t *testing.T) {
	model := &stubGenerator{}
	model.generateFunc = func(call int, system, user string) (string, error) {
		if call == 1 {
			return "Everything is clear now. " + ConfidencePhrase, nil
		}
		return "Summing up, how should the question be answered?", nil
	}
	g := newTestQuestionGenerator(t, model)

	conv := NewConversation(Request{UserQuery: "q", MaxTurns: 5})
	q, err := g.Generate(context.Background(), conv, NewQuestionIndex(0.85), QuestionFollowUp)
	require.NoError(t, err)

	// The follow-up declared confidence, so the generator swapped to the
	// closing prompts for the real question.
	assert.Equal(t, QuestionClosing, q.Kind)
	assert.True(t, q.IsFinal)
	assert.Equal(t, "Summing up, how should the question be answered?", q.Text)
	require.Equal(t, 2, model.callCount())
	assert.Contains(t, model.systems[1], "concluding")
}

func TestGenerateDuplicateFollowUpRetriedWithGuidance(t *testing.T) {
	model := &stubGenerator{}
	model.generateFunc = func(call int, system, user string) (string, error) {
		if call == 1 {
			return "What does Article 6 require?", nil
		}
		return "What safeguards apply to transfers?", nil
	}
	g := newTestQuestionGenerator(t, model)

	index := NewQuestionIndex(0.85)
	index.Add("What does Article 6 require?")

	conv := NewConversation(Request{UserQuery: "q", MaxTurns: 5})
	q, err := g.Generate(context.Background(), conv, index, QuestionFollowUp)
	require.NoError(t, err)

	assert.True(t, q.RetriedDuplicate)
	assert.Equal(t, "What safeguards apply to transfers?", q.Text)
	require.Equal(t, 2, model.callCount())
	assert.Contains(t, model.users[1], "You already asked:")
	assert.Contains(t, model.users[1], "what does article 6 require?")
}

func TestGenerateDuplicateRetryFailureKeepsCandidate(t *testing.T) {
	model := &stubGenerator{}
	model.generateFunc = func(call int, system, user string) (string, error) {
		if call == 1 {
			return "What does Article 6 require?", nil
		}
		return "", errors.New("model offline")
	}
	g := newTestQuestionGenerator(t, model)

	index := NewQuestionIndex(0.85)
	index.Add("What does Article 6 require?")

	conv := NewConversation(Request{UserQuery: "q", MaxTurns: 5})
	q, err := g.Generate(context.Background(), conv, index, QuestionFollowUp)
	require.NoError(t, err, "a failed regeneration falls back to the duplicate candidate")

	assert.True(t, q.RetriedDuplicate)
	assert.Equal(t, "What does Article 6 require?", q.Text)
}

func TestGenerateClosingSkipsDuplicateCheck(t *testing.T) {
	model := &stubGenerator{}
	model.generateFunc = func(int, string, string) (string, error) {
		return "What does Article 6 require?", nil
	}
	g := newTestQuestionGenerator(t, model)

	index := NewQuestionIndex(0.85)
	index.Add("What does Article 6 require?")

	conv := NewConversation(Request{UserQuery: "q", MaxTurns: 3})
	q, err := g.Generate(context.Background(), conv, index, QuestionClosing)
	require.NoError(t, err)

	// The closing question may legitimately restate earlier ground.
	assert.False(t, q.RetriedDuplicate)
	assert.Equal(t, 1, model.callCount())
}

func TestGenerateModelFailureIsGenerationError(t *testing.T) {
	model := &stubGenerator{}
	model.generateFunc = func(int, string, string) (string, error) {
		return "", errors.New("model offline")
	}
	g := newTestQuestionGenerator(t, model)

	conv := NewConversation(Request{UserQuery: "q", MaxTurns: 3})
	_, err := g.Generate(context.Background(), conv, NewQuestionIndex(0.85), QuestionFirst)

	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "question", gerr.Stage)
}

func TestGenerateBlankOutputIsGenerationError(t *testing.T) {
	model := &stubGenerator{}
	model.generateFunc = func(int, string, string) (string, error) {
		return "   \n\t", nil
	}
	g := newTestQuestionGenerator(t, model)

	conv := NewConversation(Request{UserQuery: "q", MaxTurns: 3})
	_, err := g.Generate(context.Background(), conv, NewQuestionIndex(0.85), QuestionFirst)

	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Contains(t, gerr.Error(), "no usable output")
}

func TestQuestionKindString(t *testing.T) {
	assert.Equal(t, "first", QuestionFirst.String())
	assert.Equal(t, "follow_up", QuestionFollowUp.String())
	assert.Equal(t, "closing", QuestionClosing.String())
}
