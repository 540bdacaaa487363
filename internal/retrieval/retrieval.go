package retrieval

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/openverdict/courtroom/internal/store"
)

// #region embedder
// Embedder abstracts the external embedding capability.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// #endregion

// #region retriever
// Retriever scores every stored fragment against a query embedding and
// returns the deduplicated top-k as evidence.
type Retriever struct {
	store    *store.Store
	embedder Embedder
	config   Config
}

// NewRetriever creates a Retriever over the given store and embedder.
func NewRetriever(st *store.Store, embedder Embedder, config Config) *Retriever {
	return &Retriever{store: st, embedder: embedder, config: config}
}

// #endregion

// #region retrieve
// Retrieve embeds the query, ranks all fragments by cosine similarity,
// deduplicates by exact text (keeping the highest-scored occurrence) and
// returns at most topK items. An empty corpus returns an empty list, not
// an error; an embedding failure is fatal to the call.
//
// The query and every returned item are recorded for audit.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]EvidenceItem, error) {
	if topK <= 0 {
		topK = r.config.TopK
	}

	frags, err := r.store.AllFragments()
	if err != nil {
		return nil, fmt.Errorf("load fragments: %w", err)
	}
	if len(frags) == 0 {
		return nil, nil
	}

	qEmb, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	scored := make([]EvidenceItem, len(frags))
	for i, f := range frags {
		scored[i] = EvidenceItem{
			FragmentID: f.ID,
			Source:     f.Source,
			Text:       f.Text,
			Score:      Cosine(qEmb, f.Embedding),
		}
	}

	// Stable sort keeps storage order among ties.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	seen := make(map[string]bool)
	var unique []EvidenceItem
	for _, item := range scored {
		if seen[item.Text] {
			continue
		}
		if r.config.MaxEvidenceLen > 0 && len(item.Text) > r.config.MaxEvidenceLen {
			continue
		}
		seen[item.Text] = true
		unique = append(unique, item)
		if len(unique) >= topK {
			break
		}
	}

	queryID, err := r.store.RecordQuery(query)
	if err != nil {
		return nil, fmt.Errorf("audit query: %w", err)
	}
	for _, item := range unique {
		if err := r.store.LogEvidence(queryID, item.FragmentID, item.Score); err != nil {
			return nil, fmt.Errorf("audit evidence: %w", err)
		}
	}

	log.Printf("[RETRIEVE] query_id=%d candidates=%d returned=%d", queryID, len(frags), len(unique))
	return unique, nil
}

// #endregion

// #region cosine
// Cosine returns dot(a,b)/(‖a‖·‖b‖), or 0.0 when either vector has zero
// norm. Vectors of unequal length are compared over the shared prefix.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, x := range a {
		normA += float64(x) * float64(x)
	}
	for _, x := range b {
		normB += float64(x) * float64(x)
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// #endregion
