package verdict

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openverdict/courtroom/internal/retrieval"
)

// #region interfaces

// Completer abstracts the external text-completion capability. The engine
// only uses it for the justification text; the verdict itself is decided
// before the call and must never be altered by it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// AuditSink receives the scores and verdict before the judgement returns.
type AuditSink interface {
	LogJudgement(debateID string, scores map[string]float64, verdict string, confidence float64) error
}

// #endregion

// #region engine

// Engine converts final arguments, evidence and case facts into a
// deterministic, explainable Judgement. Scoring is a pure function of its
// inputs; only the justification text touches the completion capability.
type Engine struct {
	policy    ScoringPolicy
	completer Completer // nil degrades to the deterministic fallback
	audit     AuditSink // nil skips judgement audit rows
}

// NewEngine creates an Engine with the given scoring policy.
func NewEngine(policy ScoringPolicy, completer Completer, audit AuditSink) *Engine {
	return &Engine{policy: policy, completer: completer, audit: audit}
}

// #endregion

// #region evaluate

// Evaluate computes the rubric, applies the verdict thresholds in fixed
// order, obtains the justification and returns the validated Judgement.
func (e *Engine) Evaluate(ctx context.Context, in EvaluateInput) (*Judgement, error) {
	evidenceScore := e.evidenceStrength(in.Evidence)
	legalScore := e.legalApplication(in.ProsecutorArgument, in.Evidence)
	defenseEff := e.defenseEffectiveness(in.DefenseArgument)
	consistency := e.consistency(in.CaseFacts, in.ProsecutorArgument, in.DefenseArgument)

	p := e.policy
	prosecution := round2(evidenceScore*p.ProsecutionEvidenceWeight + legalScore*p.ProsecutionLegalWeight)
	defense := round2(defenseEff)
	final := round2(evidenceScore*p.FinalEvidenceWeight +
		legalScore*p.FinalLegalWeight +
		consistency*p.FinalConsistencyWeight -
		defenseEff*p.FinalDefenseWeight)

	// First match wins. Acquittal additionally requires an above-base
	// defense showing: a walkover against a weak prosecution earns the
	// benefit of doubt, not a confirmed non-violation.
	var v Verdict
	switch {
	case final >= p.ConfirmThreshold && prosecution > defense:
		v = ViolationConfirmed
	case final <= p.NotConfirmThreshold && defense > prosecution && defenseEff > p.DefenseBase:
		v = ViolationNotConfirmed
	default:
		v = BenefitOfDoubt
	}

	reasoning := e.deliberate(ctx, v, in)

	rubric := map[string]float64{
		ScoreEvidenceStrength:     evidenceScore,
		ScoreLegalApplication:     legalScore,
		ScoreDefenseEffectiveness: defenseEff,
		ScoreConsistency:          consistency,
		ScoreFinal:                final,
	}

	j := &Judgement{
		JudgementID:        uuid.New().String(),
		CaseID:             in.CaseID,
		Verdict:            v,
		ProsecutionScore:   prosecution,
		DefenseScore:       defense,
		RubricScores:       rubric,
		Reasoning:          reasoning,
		CaseFacts:          in.CaseFacts,
		EvidenceConsidered: in.Evidence,
		HearingLog:         in.HearingLog,
		Timestamp:          time.Now().UTC(),
	}
	if err := j.Validate(); err != nil {
		return nil, err
	}

	if e.audit != nil {
		confidence := clamp(final, 0, 100)
		if err := e.audit.LogJudgement(in.DebateID, rubric, string(v), confidence); err != nil {
			return nil, fmt.Errorf("audit judgement: %w", err)
		}
	}

	log.Printf("[VERDICT] debate=%s verdict=%q prosecution=%.2f defense=%.2f final=%.2f",
		in.DebateID, v, prosecution, defense, final)
	return j, nil
}

// #endregion

// #region evidence-strength

// evidenceStrength grows with the summed credibility and relevance weights
// plus a small count bonus, capped at 100. Empty evidence scores 0.
func (e *Engine) evidenceStrength(evidence []retrieval.EvidenceItem) float64 {
	if len(evidence) == 0 {
		return 0.0
	}
	p := e.policy

	var credibility, relevance float64
	for _, item := range evidence {
		credibility += weightOr(item.Credibility, p.EvidenceWeightDefault)
		relevance += weightOr(item.Relevance, p.EvidenceWeightDefault)
	}
	countBonus := math.Min(float64(len(evidence))*p.EvidencePerItemBonus, p.EvidenceCountBonusCap)
	score := (credibility+relevance)*p.EvidenceScale + countBonus
	return round2(math.Min(score, 100))
}

// #endregion

// #region legal-application

// legalApplication scores the proponent's text across four additive
// keyword bands: law citation, rule-to-fact reasoning, penalty alignment
// (higher when backed by a "penalty"-typed evidence item) and procedural
// correctness.
func (e *Engine) legalApplication(prosecutorText string, evidence []retrieval.EvidenceItem) float64 {
	p := e.policy
	text := strings.ToLower(prosecutorText)

	lawScore := p.LawBase
	if containsAny(text, p.LawKeywords) {
		lawScore = p.LawScore
	}

	reasoningScore := p.ReasoningBase
	if containsAny(text, p.ReasoningKeywords) {
		reasoningScore = p.ReasoningScore
	}

	var penaltyScore float64
	if containsAny(text, p.PenaltyKeywords) {
		penaltyScore = p.PenaltyScore
		for _, item := range evidence {
			if item.Type == "penalty" {
				penaltyScore = p.PenaltyTypedScore
				break
			}
		}
	}

	procedureScore := p.ProcedureBase
	if containsAny(text, p.ProcedureKeywords) {
		procedureScore = p.ProcedureScore
	}

	total := lawScore + reasoningScore + penaltyScore + procedureScore
	return round2(math.Min(total, 100))
}

// #endregion

// #region defense-effectiveness

// defenseEffectiveness starts from a base and adds fixed increments for
// doubt-raising and mitigation phrasing. Independent of the proponent.
func (e *Engine) defenseEffectiveness(defenseText string) float64 {
	p := e.policy
	text := strings.ToLower(defenseText)

	score := p.DefenseBase
	if containsAny(text, p.DoubtKeywords) {
		score += p.DoubtBonus
	}
	if containsAny(text, p.MitigationKeywords) {
		score += p.MitigationBonus
	}
	return round2(math.Min(score, 100))
}

// #endregion

// #region consistency

// consistency measures token overlap between the case facts and each
// side's text, with a numeric-literal bonus for shared digit tokens and a
// penalty for contradiction-signaling phrasing in the defense.
func (e *Engine) consistency(caseText, prosecutorText, defenseText string) float64 {
	p := e.policy

	caseTokens := tokenize(caseText, p.MinTokenLen)
	prosTokens := tokenize(prosecutorText, p.MinTokenLen)
	defTokens := tokenize(defenseText, p.MinTokenLen)

	overlap := math.Min(float64(intersectCount(caseTokens, prosTokens))*p.ProsecutionOverlapScale, p.ProsecutionOverlapCap)
	defOverlap := math.Min(float64(intersectCount(caseTokens, defTokens))*p.DefenseOverlapScale, p.DefenseOverlapCap)

	var numeric float64
	caseDigits := digitTokens(caseText)
	argDigits := digitTokens(prosecutorText + " " + defenseText)
	if intersectCount(caseDigits, argDigits) > 0 {
		numeric = p.NumericOverlapBonus
	}

	var penalty float64
	if containsAny(strings.ToLower(defenseText), p.ContradictionKeywords) {
		penalty = p.ContradictionPenalty
	}

	return round2(clamp(overlap+defOverlap+numeric-penalty, 0, 100))
}

// #endregion

// #region deliberate

// deliberate obtains the justification text. The verdict is already fixed
// in the prompt; an unavailable or failing capability degrades to a
// deterministic sentence restating the verdict and rubric summary.
func (e *Engine) deliberate(ctx context.Context, v Verdict, in EvaluateInput) string {
	if e.completer != nil {
		prompt := fmt.Sprintf(`You are the presiding judge in a traffic violation court.

Rules:
- The verdict is FINAL and must not be altered
- Formal judicial tone
- Max 150 words

Verdict: %s
Offence: %s
Case: %s
Prosecutor: %s
Defense: %s

Provide legal reasoning for the verdict and the lawful consequence.`,
			v, in.Offence, in.CaseFacts,
			head(in.ProsecutorArgument, 300), head(in.DefenseArgument, 300))

		out, err := e.completer.Complete(ctx, prompt)
		if err == nil && strings.TrimSpace(out) != "" {
			return out
		}
		if err != nil {
			log.Printf("[VERDICT] deliberation fell back: %v", err)
		}
	}

	return fmt.Sprintf(
		"The court, after examining the record, upholds the verdict: %s. "+
			"Rubric: evidence strength %.2f, legal application %.2f, "+
			"defense effectiveness %.2f, consistency %.2f.",
		v,
		e.evidenceStrength(in.Evidence),
		e.legalApplication(in.ProsecutorArgument, in.Evidence),
		e.defenseEffectiveness(in.DefenseArgument),
		e.consistency(in.CaseFacts, in.ProsecutorArgument, in.DefenseArgument),
	)
}

// #endregion

// #region helpers

// tokenize keeps raw whitespace words longer than minLen, case-folded with
// leading/trailing '.' and ',' trimmed.
func tokenize(text string, minLen int) map[string]bool {
	tokens := make(map[string]bool)
	for _, w := range strings.Fields(text) {
		if len(w) <= minLen {
			continue
		}
		tokens[strings.Trim(strings.ToLower(w), ".,")] = true
	}
	return tokens
}

// digitTokens collects raw tokens made solely of digits.
func digitTokens(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, w := range strings.Fields(text) {
		if w == "" || !isDigits(w) {
			continue
		}
		tokens[w] = true
	}
	return tokens
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func intersectCount(a, b map[string]bool) int {
	n := 0
	for t := range a {
		if b[t] {
			n++
		}
	}
	return n
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func weightOr(w *float64, def float64) float64 {
	if w == nil {
		return def
	}
	return *w
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// #endregion
