package interrogation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	ports "github.com/ZanzyTHEbar/deposition/depo/interrogation/ports"
)

func TestFormatTranscript(t *testing.T) {
	turns := []ports.Turn{
		{Index: 1, Question: "What does Article 6 require?", RawAnswer: "Six lawful bases."},
		{Index: 2, Question: "Which basis fits fraud prevention?", RawAnswer: "Legitimate interest."},
	}

	got := FormatTranscript(turns)

	assert.Contains(t, got, "**Legal Interrogator:**\nWhat does Article 6 require?")
	assert.Contains(t, got, "**Legal Researcher:**\nSix lawful bases.")
	assert.Contains(t, got, "**Legal Interrogator:**\nWhich basis fits fraud prevention?")
	// Messages are separated by horizontal rules.
	assert.Contains(t, got, "\n\n---\n\n")
}

func TestFormatTranscriptEmpty(t *testing.T) {
	assert.Empty(t, FormatTranscript(nil))
}

func TestFormatExchangeIncludesEvidence(t *testing.T) {
	turn := ports.Turn{
		Index:     2,
		Question:  "What must the breach notification contain?",
		RawAnswer: "The nature of the breach and likely consequences.",
		Evidence: []ports.Evidence{
			{SourceID: "gdpr/art-33", Excerpt: "describe the nature of the personal data breach", Locator: "Article 33(3)"},
			{SourceID: "edpb/guidelines-9-2022"},
		},
	}

	got := FormatExchange(turn)

	assert.Contains(t, got, "**Legal Interrogator:**\nWhat must the breach notification contain?")
	assert.Contains(t, got, "**Legal Researcher:**\nThe nature of the breach and likely consequences.")
	assert.Contains(t, got, "Evidence:")
	assert.Contains(t, got, "- gdpr/art-33 (Article 33(3)): \"describe the nature of the personal data breach\"")
	assert.Contains(t, got, "- edpb/guidelines-9-2022")
}

func TestFormatExchangeWithoutEvidence(t *testing.T) {
	turn := ports.Turn{Index: 1, Question: "Q?", RawAnswer: "A."}
	got := FormatExchange(turn)

	assert.NotContains(t, got, "Evidence:")
}
