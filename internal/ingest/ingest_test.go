package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openverdict/courtroom/internal/store"
)

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)), 1}, nil
}

func TestChunkTextWindows(t *testing.T) {
	words := make([]string, 10)
	for i := range words {
		words[i] = "w"
	}
	text := strings.Join(words, " ")

	chunks := ChunkText(text, 4)
	if len(chunks) != 3 {
		t.Fatalf("10 words at window 4 should give 3 chunks, got %d", len(chunks))
	}
	if got := len(strings.Fields(chunks[0])); got != 4 {
		t.Fatalf("first chunk words: %d", got)
	}
	if got := len(strings.Fields(chunks[2])); got != 2 {
		t.Fatalf("tail chunk words: %d", got)
	}
}

func TestChunkTextEmpty(t *testing.T) {
	if got := ChunkText("   ", 5); len(got) != 0 {
		t.Fatalf("whitespace-only text should yield no chunks, got %v", got)
	}
}

func TestIngestDirIsIdempotent(t *testing.T) {
	kb := t.TempDir()
	if err := os.WriteFile(filepath.Join(kb, "law.txt"), []byte("one two three four five six"), 0o644); err != nil {
		t.Fatalf("write kb: %v", err)
	}

	s, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer s.Close()

	ing := NewIngestor(s, fakeEmbedder{}, 3)

	n, err := ing.IngestDir(context.Background(), kb)
	if err != nil {
		t.Fatalf("IngestDir: %v", err)
	}
	if n != 2 {
		t.Fatalf("6 words at window 3 should store 2 fragments, got %d", n)
	}

	// Second pass stores nothing new.
	n, err = ing.IngestDir(context.Background(), kb)
	if err != nil {
		t.Fatalf("IngestDir repeat: %v", err)
	}
	if n != 0 {
		t.Fatalf("re-ingest should be a no-op, stored %d", n)
	}

	frags, _ := s.AllFragments()
	if len(frags) != 2 {
		t.Fatalf("expected 2 fragments total, got %d", len(frags))
	}
}
