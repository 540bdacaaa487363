package ingest

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/openverdict/courtroom/internal/retrieval"
	"github.com/openverdict/courtroom/internal/store"
)

// #region document

// Document is one knowledge-base file before chunking.
type Document struct {
	Name string
	Text string
}

// LoadKB reads every .txt file in dir.
func LoadKB(dir string) ([]Document, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("glob kb: %w", err)
	}

	var docs []Document
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		docs = append(docs, Document{Name: filepath.Base(p), Text: string(raw)})
	}
	return docs, nil
}

// #endregion

// #region chunking

// ChunkText splits text into word windows of at most maxWords words.
func ChunkText(text string, maxWords int) []string {
	if maxWords < 1 {
		maxWords = 1
	}
	words := strings.Fields(text)

	var chunks []string
	for i := 0; i < len(words); i += maxWords {
		end := i + maxWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}

// #endregion

// #region ingestor

// Ingestor embeds knowledge-base chunks and stores them as fragments.
// Re-ingesting the same corpus is a no-op thanks to fragment dedupe.
type Ingestor struct {
	store    *store.Store
	embedder retrieval.Embedder
	maxWords int
}

// NewIngestor creates an Ingestor chunking at maxWords words per fragment.
func NewIngestor(st *store.Store, embedder retrieval.Embedder, maxWords int) *Ingestor {
	if maxWords < 1 {
		maxWords = 180
	}
	return &Ingestor{store: st, embedder: embedder, maxWords: maxWords}
}

// IngestDir loads, chunks, embeds and stores every .txt file in dir.
// Returns the number of newly stored fragments.
func (in *Ingestor) IngestDir(ctx context.Context, dir string) (int, error) {
	docs, err := LoadKB(dir)
	if err != nil {
		return 0, err
	}

	stored := 0
	for _, doc := range docs {
		for _, chunk := range ChunkText(doc.Text, in.maxWords) {
			emb, err := in.embedder.Embed(ctx, chunk)
			if err != nil {
				return stored, fmt.Errorf("embed chunk of %s: %w", doc.Name, err)
			}
			_, created, err := in.store.InsertFragment(doc.Name, chunk, emb)
			if err != nil {
				return stored, err
			}
			if created {
				stored++
			}
		}
	}

	log.Printf("[INGEST] dir=%s docs=%d new_fragments=%d", dir, len(docs), stored)
	return stored, nil
}

// #endregion
