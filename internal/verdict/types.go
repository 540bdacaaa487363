package verdict

import (
	"errors"
	"fmt"
	"time"

	"github.com/openverdict/courtroom/internal/hearing"
	"github.com/openverdict/courtroom/internal/retrieval"
)

// ErrValidation marks a malformed judgement rejected before persisting.
var ErrValidation = errors.New("verdict: validation failed")

// #region verdict-enum

// Verdict is the closed set of final decisions.
type Verdict string

const (
	ViolationConfirmed    Verdict = "Violation Confirmed"
	ViolationNotConfirmed Verdict = "Violation Not Confirmed"
	BenefitOfDoubt        Verdict = "Benefit of Doubt Granted"
)

// #endregion

// #region rubric-keys

// Rubric score keys. The criterion set is fixed per policy version.
const (
	ScoreEvidenceStrength     = "evidence_strength"
	ScoreLegalApplication     = "legal_application"
	ScoreDefenseEffectiveness = "defense_effectiveness"
	ScoreConsistency          = "consistency"
	ScoreFinal                = "final_score"
)

// #endregion

// #region judgement

// Judgement is the sole externally returned artifact of one debate.
// Created exactly once per run, immutable thereafter.
type Judgement struct {
	JudgementID        string
	CaseID             string
	Verdict            Verdict
	ProsecutionScore   float64
	DefenseScore       float64
	RubricScores       map[string]float64
	Reasoning          string
	CaseFacts          string
	EvidenceConsidered []retrieval.EvidenceItem
	HearingLog         []hearing.Turn
	Timestamp          time.Time
}

// Validate rejects malformed judgements before they are persisted.
func (j *Judgement) Validate() error {
	if j.JudgementID == "" || j.CaseID == "" {
		return fmt.Errorf("%w: missing identifiers", ErrValidation)
	}
	switch j.Verdict {
	case ViolationConfirmed, ViolationNotConfirmed, BenefitOfDoubt:
	default:
		return fmt.Errorf("%w: unknown verdict %q", ErrValidation, j.Verdict)
	}
	if j.ProsecutionScore < 0 || j.ProsecutionScore > 100 {
		return fmt.Errorf("%w: prosecution score %.2f outside [0,100]", ErrValidation, j.ProsecutionScore)
	}
	if j.DefenseScore < 0 || j.DefenseScore > 100 {
		return fmt.Errorf("%w: defense score %.2f outside [0,100]", ErrValidation, j.DefenseScore)
	}
	if j.CaseFacts == "" {
		return fmt.Errorf("%w: empty case facts", ErrValidation)
	}
	if j.Reasoning == "" {
		return fmt.Errorf("%w: empty reasoning", ErrValidation)
	}
	return nil
}

// #endregion

// #region evaluate-input

// EvaluateInput carries everything the engine reads. The engine never
// mutates any of it.
type EvaluateInput struct {
	DebateID           string
	CaseID             string
	Offence            string
	CaseFacts          string
	ProsecutorArgument string
	DefenseArgument    string
	Evidence           []retrieval.EvidenceItem
	HearingLog         []hearing.Turn
}

// #endregion
