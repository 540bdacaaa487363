package debate

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/openverdict/courtroom/internal/auditlog"
	"github.com/openverdict/courtroom/internal/hearing"
	"github.com/openverdict/courtroom/internal/retrieval"
	"github.com/openverdict/courtroom/internal/verdict"
)

// #region orchestrator-struct

// Orchestrator drives one debate: a fixed number of proponent/respondent
// rounds over shared bounded memory, then delegation to the verdict
// engine. Single-use; a second Run is an InvalidState error.
//
// One instance is sequential by design: every turn's prompt depends on
// the rendered memory left by the previous turn.
type Orchestrator struct {
	debateID   string
	state      State
	ledger     *hearing.Ledger
	proponent  *Advocate
	respondent *Advocate
	engine     *verdict.Engine
	audit      *auditlog.Logger // nil skips audit writes
	evidence   []retrieval.EvidenceItem
	transcript []hearing.Turn
}

// #endregion

// #region constructor

// NewOrchestrator wires a debate with a fresh ledger and empty evidence
// list. audit may be nil.
func NewOrchestrator(completer Completer, engine *verdict.Engine, audit *auditlog.Logger, cfg Config) *Orchestrator {
	if cfg.LedgerCapacity < 1 {
		cfg.LedgerCapacity = DefaultConfig().LedgerCapacity
	}
	return &Orchestrator{
		debateID:   "debate_" + uuid.New().String()[:8],
		state:      StateCreated,
		ledger:     hearing.NewLedger(cfg.LedgerCapacity),
		proponent:  NewAdvocate(hearing.RoleProponent, completer),
		respondent: NewAdvocate(hearing.RoleRespondent, completer),
		engine:     engine,
		audit:      audit,
	}
}

// #endregion

// #region accessors

// DebateID returns the generated debate identifier.
func (o *Orchestrator) DebateID() string {
	return o.debateID
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	return o.state
}

// Transcript returns a copy of the full hearing log so far.
func (o *Orchestrator) Transcript() []hearing.Turn {
	out := make([]hearing.Turn, len(o.transcript))
	copy(out, o.transcript)
	return out
}

// #endregion

// #region submit-evidence

// SubmitEvidence appends an item to the debate's evidence list. Allowed
// only before or during Running; no scoring side effects.
func (o *Orchestrator) SubmitEvidence(item retrieval.EvidenceItem) error {
	if o.state != StateCreated && o.state != StateRunning {
		return fmt.Errorf("%w: cannot submit evidence while %s", ErrInvalidState, o.state)
	}
	o.evidence = append(o.evidence, item)
	return nil
}

// #endregion

// #region run

// Run executes the debate and returns the Judgement. A failed turn aborts
// the whole run rather than skipping a speaker; the debate stays marked
// started but never finished.
func (o *Orchestrator) Run(ctx context.Context, caseFacts, offence, caseID string, rounds int) (*verdict.Judgement, error) {
	if o.state != StateCreated {
		return nil, fmt.Errorf("%w: run on a %s orchestrator", ErrInvalidState, o.state)
	}
	if rounds < 1 {
		return nil, fmt.Errorf("rounds must be >= 1, got %d", rounds)
	}

	o.state = StateRunning
	if o.audit != nil {
		if err := o.audit.StartDebate(o.debateID, caseID); err != nil {
			return nil, err
		}
	}
	o.ledger.SetCase(caseFacts)

	var lastProponent, lastRespondent string
	for round := 1; round <= rounds; round++ {
		text, err := o.takeTurn(ctx, o.proponent, caseFacts, round)
		if err != nil {
			return nil, err
		}
		lastProponent = text

		text, err = o.takeTurn(ctx, o.respondent, caseFacts, round)
		if err != nil {
			return nil, err
		}
		lastRespondent = text
	}

	judgement, err := o.engine.Evaluate(ctx, verdict.EvaluateInput{
		DebateID:           o.debateID,
		CaseID:             caseID,
		Offence:            offence,
		CaseFacts:          caseFacts,
		ProsecutorArgument: lastProponent,
		DefenseArgument:    lastRespondent,
		Evidence:           o.snapshotEvidence(),
		HearingLog:         o.Transcript(),
	})
	if err != nil {
		return nil, fmt.Errorf("evaluate debate: %w", err)
	}
	o.state = StateEvaluated

	if o.audit != nil {
		if err := o.audit.EndDebate(o.debateID); err != nil {
			return nil, err
		}
	}
	o.state = StateClosed

	log.Printf("[HEARING] debate=%s rounds=%d verdict=%q", o.debateID, rounds, judgement.Verdict)
	return judgement, nil
}

// #endregion

// #region take-turn

// takeTurn runs one advocate turn: snapshot evidence, render memory,
// generate, then commit to ledger, transcript and audit log.
func (o *Orchestrator) takeTurn(ctx context.Context, adv *Advocate, caseFacts string, round int) (string, error) {
	snapshot := o.snapshotEvidence()
	memoryText := o.ledger.Render()

	text, err := adv.Argue(ctx, caseFacts, snapshot, memoryText)
	if err != nil {
		return "", fmt.Errorf("round %d: %w", round, err)
	}

	role := adv.Role()
	o.ledger.AddTurn(role, text)
	o.transcript = append(o.transcript, hearing.Turn{Speaker: role, Text: text})

	if o.audit != nil {
		if err := o.audit.LogTurn(o.debateID, string(role), text); err != nil {
			return "", err
		}
		if err := o.audit.LogMemory(o.debateID, string(role), text); err != nil {
			return "", err
		}
	}

	log.Printf("[HEARING] debate=%s round=%d speaker=%s chars=%d", o.debateID, round, role, len(text))
	return text, nil
}

// snapshotEvidence hands each reader an immutable view of the evidence
// list as of this moment.
func (o *Orchestrator) snapshotEvidence() []retrieval.EvidenceItem {
	out := make([]retrieval.EvidenceItem, len(o.evidence))
	copy(out, o.evidence)
	return out
}

// #endregion
