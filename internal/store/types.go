package store

// #region fragment

// Fragment is one stored unit of reference text with its embedding.
// Identity is (Source, Text); duplicate inserts are suppressed.
type Fragment struct {
	ID        int64
	Source    string
	Text      string
	Embedding []float32
}

// #endregion fragment
