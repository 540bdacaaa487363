package verdict

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// #region policy
// ScoringPolicy is the complete, versioned rubric configuration. Every
// constant the engine uses lives here so scoring is swappable and testable
// independently of orchestration.
type ScoringPolicy struct {
	Version string `yaml:"version"`

	// Evidence strength
	EvidenceWeightDefault float64 `yaml:"evidence_weight_default"` // credibility/relevance when absent
	EvidenceScale         float64 `yaml:"evidence_scale"`
	EvidencePerItemBonus  float64 `yaml:"evidence_per_item_bonus"`
	EvidenceCountBonusCap float64 `yaml:"evidence_count_bonus_cap"`

	// Legal application keyword bands
	LawKeywords        []string `yaml:"law_keywords"`
	LawScore           float64  `yaml:"law_score"`
	LawBase            float64  `yaml:"law_base"`
	ReasoningKeywords  []string `yaml:"reasoning_keywords"`
	ReasoningScore     float64  `yaml:"reasoning_score"`
	ReasoningBase      float64  `yaml:"reasoning_base"`
	PenaltyKeywords    []string `yaml:"penalty_keywords"`
	PenaltyScore       float64  `yaml:"penalty_score"`
	PenaltyTypedScore  float64  `yaml:"penalty_typed_score"` // when a "penalty"-typed evidence item backs the mention
	ProcedureKeywords  []string `yaml:"procedure_keywords"`
	ProcedureScore     float64  `yaml:"procedure_score"`
	ProcedureBase      float64  `yaml:"procedure_base"`

	// Defense effectiveness
	DefenseBase        float64  `yaml:"defense_base"`
	DoubtKeywords      []string `yaml:"doubt_keywords"`
	DoubtBonus         float64  `yaml:"doubt_bonus"`
	MitigationKeywords []string `yaml:"mitigation_keywords"`
	MitigationBonus    float64  `yaml:"mitigation_bonus"`

	// Consistency
	MinTokenLen             int      `yaml:"min_token_len"`
	ProsecutionOverlapScale float64  `yaml:"prosecution_overlap_scale"`
	ProsecutionOverlapCap   float64  `yaml:"prosecution_overlap_cap"`
	DefenseOverlapScale     float64  `yaml:"defense_overlap_scale"`
	DefenseOverlapCap       float64  `yaml:"defense_overlap_cap"`
	NumericOverlapBonus     float64  `yaml:"numeric_overlap_bonus"`
	ContradictionKeywords   []string `yaml:"contradiction_keywords"`
	ContradictionPenalty    float64  `yaml:"contradiction_penalty"`

	// Aggregation
	ProsecutionEvidenceWeight float64 `yaml:"prosecution_evidence_weight"`
	ProsecutionLegalWeight    float64 `yaml:"prosecution_legal_weight"`
	FinalEvidenceWeight       float64 `yaml:"final_evidence_weight"`
	FinalLegalWeight          float64 `yaml:"final_legal_weight"`
	FinalConsistencyWeight    float64 `yaml:"final_consistency_weight"`
	FinalDefenseWeight        float64 `yaml:"final_defense_weight"` // subtractive

	// Verdict thresholds, evaluated in fixed order
	ConfirmThreshold    float64 `yaml:"confirm_threshold"`
	NotConfirmThreshold float64 `yaml:"not_confirm_threshold"`
}
// #endregion policy

// #region default-policy
// DefaultPolicy returns the v1 rubric.
func DefaultPolicy() ScoringPolicy {
	return ScoringPolicy{
		Version: "v1",

		EvidenceWeightDefault: 0.5,
		EvidenceScale:         10,
		EvidencePerItemBonus:  5,
		EvidenceCountBonusCap: 20,

		LawKeywords: []string{
			"section", "act", "ordinance", "rule",
			"motor vehicle", "traffic law",
		},
		LawScore: 30,
		LawBase:  10,
		ReasoningKeywords: []string{
			"therefore", "hence", "thus",
			"as per", "violated", "liable",
		},
		ReasoningScore:    30,
		ReasoningBase:     15,
		PenaltyKeywords:   []string{"fine", "penalty", "punishment"},
		PenaltyScore:      15,
		PenaltyTypedScore: 25,
		ProcedureKeywords: []string{
			"challan", "traffic warden",
			"notice issued", "court summons",
		},
		ProcedureScore: 15,
		ProcedureBase:  5,

		DefenseBase: 40,
		DoubtKeywords: []string{
			"reasonable doubt", "no evidence",
			"procedural error", "lack of proof",
			"unreliable witness",
		},
		DoubtBonus: 20,
		MitigationKeywords: []string{
			"first offense", "emergency",
			"medical", "leniency",
		},
		MitigationBonus: 10,

		MinTokenLen:             3,
		ProsecutionOverlapScale: 4,
		ProsecutionOverlapCap:   50,
		DefenseOverlapScale:     2,
		DefenseOverlapCap:       20,
		NumericOverlapBonus:     20,
		ContradictionKeywords: []string{
			"wrong location", "different time",
			"incorrect facts",
		},
		ContradictionPenalty: 15,

		ProsecutionEvidenceWeight: 0.6,
		ProsecutionLegalWeight:    0.4,
		FinalEvidenceWeight:       0.35,
		FinalLegalWeight:          0.30,
		FinalConsistencyWeight:    0.20,
		FinalDefenseWeight:        0.25,

		ConfirmThreshold:    65,
		NotConfirmThreshold: 45,
	}
}
// #endregion default-policy

// #region load-policy
// LoadPolicy reads a ScoringPolicy from a YAML file. Fields left out of
// the file keep their default values.
func LoadPolicy(path string) (ScoringPolicy, error) {
	p := DefaultPolicy()
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy: %w", err)
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("parse policy: %w", err)
	}
	return p, nil
}
// #endregion load-policy
