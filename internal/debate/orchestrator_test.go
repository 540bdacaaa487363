package debate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openverdict/courtroom/internal/auditlog"
	"github.com/openverdict/courtroom/internal/hearing"
	"github.com/openverdict/courtroom/internal/retrieval"
	"github.com/openverdict/courtroom/internal/store"
	"github.com/openverdict/courtroom/internal/verdict"
)

// seqCompleter returns numbered responses and remembers every prompt.
type seqCompleter struct {
	n       int
	prompts []string
	failAt  int // 1-based call index to fail at, 0 = never
}

func (s *seqCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.n++
	s.prompts = append(s.prompts, prompt)
	if s.failAt > 0 && s.n == s.failAt {
		return "", errors.New("capability failure")
	}
	return fmt.Sprintf("argument %d", s.n), nil
}

func newOrchestrator(c Completer) *Orchestrator {
	engine := verdict.NewEngine(verdict.DefaultPolicy(), nil, nil)
	return NewOrchestrator(c, engine, nil, DefaultConfig())
}

func TestRunProducesAlternatingTranscript(t *testing.T) {
	c := &seqCompleter{}
	o := newOrchestrator(c)

	j, err := o.Run(context.Background(), "driver ran a red light", "signal violation", "case-1", 3)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	transcript := o.Transcript()
	if len(transcript) != 6 {
		t.Fatalf("3 rounds should yield 6 turns, got %d", len(transcript))
	}
	for i, turn := range transcript {
		want := hearing.RoleProponent
		if i%2 == 1 {
			want = hearing.RoleRespondent
		}
		if turn.Speaker != want {
			t.Fatalf("turn %d speaker = %s, want %s", i, turn.Speaker, want)
		}
	}

	if len(j.HearingLog) != 6 {
		t.Fatalf("judgement hearing log should carry the transcript, got %d", len(j.HearingLog))
	}
	if o.State() != StateClosed {
		t.Fatalf("state after run = %s, want closed", o.State())
	}
}

func TestRunIsSingleUse(t *testing.T) {
	o := newOrchestrator(&seqCompleter{})

	if _, err := o.Run(context.Background(), "facts", "offence", "case-1", 1); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	_, err := o.Run(context.Background(), "facts", "offence", "case-1", 1)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second Run: got %v, want ErrInvalidState", err)
	}
}

func TestRunRejectsZeroRounds(t *testing.T) {
	o := newOrchestrator(&seqCompleter{})
	if _, err := o.Run(context.Background(), "facts", "offence", "case-1", 0); err == nil {
		t.Fatal("rounds=0 must be rejected")
	}
}

func TestFailedTurnAbortsRun(t *testing.T) {
	// The respondent's first turn fails; the run must abort rather than
	// skip a speaker.
	c := &seqCompleter{failAt: 2}
	o := newOrchestrator(c)

	_, err := o.Run(context.Background(), "facts", "offence", "case-1", 2)
	if err == nil {
		t.Fatal("expected turn failure to abort the run")
	}
	if got := len(o.Transcript()); got != 1 {
		t.Fatalf("committed turns before the failure should stand, got %d", got)
	}
	if o.State() != StateRunning {
		t.Fatalf("aborted run should stay in running state, got %s", o.State())
	}
}

func TestSubmitEvidenceLifecycle(t *testing.T) {
	o := newOrchestrator(&seqCompleter{})

	cred := 0.9
	item := retrieval.EvidenceItem{Text: "camera capture", Score: 0.91, Credibility: &cred}
	if err := o.SubmitEvidence(item); err != nil {
		t.Fatalf("SubmitEvidence before run: %v", err)
	}

	j, err := o.Run(context.Background(), "facts", "offence", "case-1", 1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(j.EvidenceConsidered) != 1 {
		t.Fatalf("judgement should carry submitted evidence, got %d items", len(j.EvidenceConsidered))
	}

	if err := o.SubmitEvidence(item); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("SubmitEvidence after close: got %v, want ErrInvalidState", err)
	}
}

func TestLaterRoundsSeeEarlierArguments(t *testing.T) {
	c := &seqCompleter{}
	o := newOrchestrator(c)

	if _, err := o.Run(context.Background(), "facts", "offence", "case-1", 2); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Call 3 is the proponent's second-round turn; its prompt must carry
	// the first round's arguments from memory.
	third := c.prompts[2]
	if !strings.Contains(third, "prosecutor: argument 1") || !strings.Contains(third, "defense: argument 2") {
		t.Fatalf("round 2 prompt should include round 1 memory:\n%s", third)
	}

	// The very first prompt sees the case but no turns yet.
	if strings.Contains(c.prompts[0], "argument 1") {
		t.Fatalf("first prompt should have empty memory:\n%s", c.prompts[0])
	}
}

func TestPromptCarriesCaseAndEvidence(t *testing.T) {
	c := &seqCompleter{}
	o := newOrchestrator(c)
	o.SubmitEvidence(retrieval.EvidenceItem{Text: "speed camera shows 90 in a 40 zone", Score: 0.88})

	if _, err := o.Run(context.Background(), "driver was doing 90", "overspeeding", "case-2", 1); err != nil {
		t.Fatalf("Run: %v", err)
	}

	first := c.prompts[0]
	if !strings.Contains(first, "driver was doing 90") {
		t.Fatalf("prompt missing case facts:\n%s", first)
	}
	if !strings.Contains(first, "[E1] speed camera shows 90 in a 40 zone (confidence=0.88)") {
		t.Fatalf("prompt missing formatted evidence:\n%s", first)
	}
}

func TestRunWritesAuditTrail(t *testing.T) {
	s, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer s.Close()

	audit := auditlog.NewLogger(s.DB())
	engine := verdict.NewEngine(verdict.DefaultPolicy(), nil, audit)
	o := NewOrchestrator(&seqCompleter{}, engine, audit, DefaultConfig())

	if _, err := o.Run(context.Background(), "facts", "offence", "case-3", 2); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var turns, mem, judgements int
	s.DB().QueryRow(`SELECT COUNT(*) FROM turns WHERE debate_id = ?`, o.DebateID()).Scan(&turns)
	s.DB().QueryRow(`SELECT COUNT(*) FROM memory WHERE debate_id = ?`, o.DebateID()).Scan(&mem)
	s.DB().QueryRow(`SELECT COUNT(*) FROM judgements WHERE debate_id = ?`, o.DebateID()).Scan(&judgements)
	if turns != 4 || mem != 4 || judgements != 1 {
		t.Fatalf("audit rows: turns=%d memory=%d judgements=%d", turns, mem, judgements)
	}

	var finished interface{}
	s.DB().QueryRow(`SELECT finished_at FROM debates WHERE id = ?`, o.DebateID()).Scan(&finished)
	if finished == nil {
		t.Fatal("completed debate should have finished_at")
	}
}

func TestAbortedRunLeavesStartedMarker(t *testing.T) {
	s, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer s.Close()

	audit := auditlog.NewLogger(s.DB())
	engine := verdict.NewEngine(verdict.DefaultPolicy(), nil, audit)
	o := NewOrchestrator(&seqCompleter{failAt: 1}, engine, audit, DefaultConfig())

	if _, err := o.Run(context.Background(), "facts", "offence", "case-4", 1); err == nil {
		t.Fatal("expected aborted run")
	}

	var started, finished interface{}
	if err := s.DB().QueryRow(
		`SELECT started_at, finished_at FROM debates WHERE id = ?`, o.DebateID(),
	).Scan(&started, &finished); err != nil {
		t.Fatalf("aborted debate should still be recorded: %v", err)
	}
	if started == nil || finished != nil {
		t.Fatalf("stuck-debate signal broken: started=%v finished=%v", started, finished)
	}
}
