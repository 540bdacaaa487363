package debate

import (
	"fmt"
	"strings"

	"github.com/openverdict/courtroom/internal/hearing"
	"github.com/openverdict/courtroom/internal/retrieval"
)

// #region role-titles

func roleTitle(r hearing.Role) string {
	switch r {
	case hearing.RoleProponent:
		return "Prosecutor"
	case hearing.RoleRespondent:
		return "Defense Lawyer"
	default:
		return "Participant"
	}
}

// #endregion

// #region format-evidence

// FormatEvidence renders an evidence snapshot for prompt injection, one
// numbered line per item with text truncated to 200 chars.
func FormatEvidence(items []retrieval.EvidenceItem) string {
	if len(items) == 0 {
		return "No external evidence provided."
	}

	var lines []string
	for i, e := range items {
		text := e.Text
		if len(text) > 200 {
			text = text[:200]
		}
		lines = append(lines, fmt.Sprintf("[E%d] %s (confidence=%.2f)", i+1, text, e.Score))
	}
	return strings.Join(lines, "\n")
}

// #endregion

// #region argument-prompt

func buildArgumentPrompt(role hearing.Role, caseFacts string, evidence []retrieval.EvidenceItem, memoryText string) string {
	return fmt.Sprintf(`You are a %s in a traffic violation court.

RULES:
- Max 120 words
- No repetition
- Be precise and legal
- Use bullet points only

CASE:
%s

EVIDENCE:
%s

PREVIOUS CONTEXT:
%s

Produce your argument now.`,
		roleTitle(role), caseFacts, FormatEvidence(evidence), memoryText)
}

// #endregion

// #region utility-prompts

func classifyPrompt(argument string) string {
	return "Classify the legal strength of this argument as STRONG, MODERATE, or WEAK:\n" + argument
}

func summarizePrompt(argument string) string {
	return "Summarize this argument in 2 bullet points:\n" + argument
}

// #endregion
