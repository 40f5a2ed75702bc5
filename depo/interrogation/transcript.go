package interrogation

import (
	"fmt"
	"strings"

	ports "github.com/ZanzyTHEbar/deposition/depo/interrogation/ports"
)

// Transcript roles, kept stable because downstream prompts and stored
// checkpoints both reference them.
const (
	RoleInterrogator = "Legal Interrogator"
	RoleResearcher   = "Legal Researcher"
)

const transcriptSeparator = "\n\n---\n\n"

// FormatTranscript renders completed turns as a structured conversation
// for prompt consumption: each message is "**Role:**" followed by its
// content, separated by horizontal rules.
func FormatTranscript(turns []ports.Turn) string {
	parts := make([]string, 0, len(turns)*2)
	for _, t := range turns {
		parts = append(parts, formatQuestion(t), formatAnswer(t))
	}
	return strings.Join(parts, transcriptSeparator)
}

// FormatExchange renders a single turn's question/answer pair, used when
// refining against only the latest exchange.
func FormatExchange(t ports.Turn) string {
	return formatQuestion(t) + transcriptSeparator + formatAnswer(t)
}

func formatQuestion(t ports.Turn) string {
	return fmt.Sprintf("**%s:**\n%s", RoleInterrogator, t.Question)
}

// formatAnswer appends structured evidence beneath the answer text so the
// refiner can quote and locate sources.
func formatAnswer(t ports.Turn) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s:**\n%s", RoleResearcher, t.RawAnswer)
	if len(t.Evidence) > 0 {
		sb.WriteString("\n\nEvidence:")
		for _, ev := range t.Evidence {
			sb.WriteString("\n- ")
			sb.WriteString(formatEvidence(ev))
		}
	}
	return sb.String()
}

func formatEvidence(ev ports.Evidence) string {
	var sb strings.Builder
	sb.WriteString(ev.SourceID)
	if ev.Locator != "" {
		fmt.Fprintf(&sb, " (%s)", ev.Locator)
	}
	if ev.Excerpt != "" {
		fmt.Fprintf(&sb, ": %q", ev.Excerpt)
	}
	return sb.String()
}
