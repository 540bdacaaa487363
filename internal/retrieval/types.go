package retrieval

// #region config
// Config holds limits for evidence retrieval.
type Config struct {
	TopK           int // max unique evidence items returned
	MaxEvidenceLen int // max chars per evidence string, 0 = unlimited
}

// DefaultConfig returns sensible defaults for retrieval.
func DefaultConfig() Config {
	return Config{
		TopK:           5,
		MaxEvidenceLen: 2000,
	}
}

// #endregion config

// #region evidence-item
// EvidenceItem is a fragment surfaced by retrieval (or entered manually)
// and attached to one debate. Never mutated after creation.
//
// Credibility and Relevance are optional weights; the verdict engine
// substitutes a default when nil.
type EvidenceItem struct {
	FragmentID  int64
	Source      string
	Text        string
	Score       float64
	Credibility *float64
	Relevance   *float64
	Type        string // e.g. "penalty", empty when untyped
}

// #endregion evidence-item
