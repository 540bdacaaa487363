package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.DBPath != "courtroom.db" || c.Debate.LedgerCapacity != 5 {
		t.Fatalf("defaults not applied: %+v", c)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "db_path: other.db\ndebate:\n  rounds: 3\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.DBPath != "other.db" {
		t.Fatalf("db_path not overridden: %q", c.DBPath)
	}
	if c.Debate.Rounds != 3 {
		t.Fatalf("rounds not overridden: %d", c.Debate.Rounds)
	}
	// Untouched fields keep defaults.
	if c.Retrieval.TopK != 5 {
		t.Fatalf("top_k default lost: %d", c.Retrieval.TopK)
	}
}
