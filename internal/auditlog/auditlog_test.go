package auditlog

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/openverdict/courtroom/internal/store"
)

func tempLogger(t *testing.T) *Logger {
	t.Helper()
	s, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewLogger(s.DB())
}

func TestDebateLifecycle(t *testing.T) {
	l := tempLogger(t)

	if err := l.StartDebate("debate_1", "case-7"); err != nil {
		t.Fatalf("StartDebate: %v", err)
	}
	// Idempotent on the same ID.
	if err := l.StartDebate("debate_1", "case-7"); err != nil {
		t.Fatalf("StartDebate repeat: %v", err)
	}

	var started, finished interface{}
	if err := l.db.QueryRow(
		`SELECT started_at, finished_at FROM debates WHERE id = 'debate_1'`,
	).Scan(&started, &finished); err != nil {
		t.Fatalf("scan debate: %v", err)
	}
	if started == nil {
		t.Fatal("started_at should be set")
	}
	if finished != nil {
		t.Fatal("finished_at should be empty for an unfinished debate")
	}

	if err := l.EndDebate("debate_1"); err != nil {
		t.Fatalf("EndDebate: %v", err)
	}
	if err := l.db.QueryRow(
		`SELECT finished_at FROM debates WHERE id = 'debate_1'`,
	).Scan(&finished); err != nil {
		t.Fatalf("scan finished: %v", err)
	}
	if finished == nil {
		t.Fatal("finished_at should be set after EndDebate")
	}
}

func TestLogTurnAndMemory(t *testing.T) {
	l := tempLogger(t)
	if err := l.StartDebate("debate_2", "case-8"); err != nil {
		t.Fatalf("StartDebate: %v", err)
	}

	if err := l.LogTurn("debate_2", "prosecutor", "the record shows"); err != nil {
		t.Fatalf("LogTurn: %v", err)
	}
	if err := l.LogMemory("debate_2", "prosecutor", "the record shows"); err != nil {
		t.Fatalf("LogMemory: %v", err)
	}

	var turns, mem int
	l.db.QueryRow(`SELECT COUNT(*) FROM turns WHERE debate_id = 'debate_2'`).Scan(&turns)
	l.db.QueryRow(`SELECT COUNT(*) FROM memory WHERE debate_id = 'debate_2'`).Scan(&mem)
	if turns != 1 || mem != 1 {
		t.Fatalf("expected one turn and one memory row, got %d/%d", turns, mem)
	}
}

func TestJudgementScoresRoundTrip(t *testing.T) {
	l := tempLogger(t)
	if err := l.StartDebate("debate_3", "case-9"); err != nil {
		t.Fatalf("StartDebate: %v", err)
	}

	scores := map[string]float64{
		"evidence_strength":     75.71,
		"legal_application":     60,
		"defense_effectiveness": 70,
		"consistency":           90,
		"final_score":           45,
	}
	if err := l.LogJudgement("debate_3", scores, "Violation Not Confirmed", 45); err != nil {
		t.Fatalf("LogJudgement: %v", err)
	}

	recs, err := l.RecentJudgements(10)
	if err != nil {
		t.Fatalf("RecentJudgements: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected one judgement, got %d", len(recs))
	}
	got := recs[0]
	if got.Verdict != "Violation Not Confirmed" || got.Confidence != 45 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if !reflect.DeepEqual(got.Scores, scores) {
		t.Fatalf("persisted scores drifted:\nwant %v\ngot  %v", scores, got.Scores)
	}
}
