package debate

import (
	"context"
	"fmt"

	"github.com/openverdict/courtroom/internal/hearing"
	"github.com/openverdict/courtroom/internal/retrieval"
)

// #region advocate

// Advocate is one arguing role. It produces arguments via the completion
// capability and can additionally classify or condense an argument.
type Advocate struct {
	role      hearing.Role
	completer Completer
}

// NewAdvocate creates an advocate for the given role.
func NewAdvocate(role hearing.Role, completer Completer) *Advocate {
	return &Advocate{role: role, completer: completer}
}

// Role returns the advocate's role.
func (a *Advocate) Role() hearing.Role {
	return a.role
}

// #endregion

// #region argue

// Argue produces one argument from the case facts, an evidence snapshot
// and the rendered debate memory.
func (a *Advocate) Argue(ctx context.Context, caseFacts string, evidence []retrieval.EvidenceItem, memoryText string) (string, error) {
	prompt := buildArgumentPrompt(a.role, caseFacts, evidence, memoryText)
	out, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s argument: %w", a.role, err)
	}
	return out, nil
}

// #endregion

// #region utilities

// Classify rates an argument as STRONG, MODERATE or WEAK.
func (a *Advocate) Classify(ctx context.Context, argument string) (string, error) {
	out, err := a.completer.Complete(ctx, classifyPrompt(argument))
	if err != nil {
		return "", fmt.Errorf("classify argument: %w", err)
	}
	return out, nil
}

// Summarize condenses an argument into two bullet points.
func (a *Advocate) Summarize(ctx context.Context, argument string) (string, error) {
	out, err := a.completer.Complete(ctx, summarizePrompt(argument))
	if err != nil {
		return "", fmt.Errorf("summarize argument: %w", err)
	}
	return out, nil
}

// #endregion
