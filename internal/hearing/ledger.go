package hearing

import (
	"strings"
	"sync"
)

// #region ledger-struct

// Ledger is a fixed-capacity FIFO buffer of recent turns plus a case
// summary slot. Append-and-evict happens under one lock so a reader never
// observes the buffer above capacity.
type Ledger struct {
	mu          sync.Mutex
	caseSummary string
	turns       []Turn
	maxTurns    int
}

// NewLedger creates a Ledger holding at most maxTurns turns.
func NewLedger(maxTurns int) *Ledger {
	if maxTurns < 1 {
		maxTurns = 1
	}
	return &Ledger{maxTurns: maxTurns}
}

// #endregion

// #region set-case

// SetCase replaces the case summary. Last write wins.
func (l *Ledger) SetCase(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.caseSummary = text
}

// #endregion

// #region add-turn

// AddTurn appends a turn, evicting the oldest when capacity is exceeded.
func (l *Ledger) AddTurn(speaker Role, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.turns = append(l.turns, Turn{Speaker: speaker, Text: text})
	if len(l.turns) > l.maxTurns {
		l.turns = l.turns[1:]
	}
}

// #endregion

// #region accessors

// Len returns the number of buffered turns.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.turns)
}

// Turns returns a copy of the buffered turns, oldest first.
func (l *Ledger) Turns() []Turn {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// #endregion

// #region render

// Render produces the prompt-ready memory block: the case summary followed
// by the remaining turns oldest to newest, one "speaker: text" per line.
func (l *Ledger) Render() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var b strings.Builder
	b.WriteString("CASE SUMMARY:\n")
	b.WriteString(l.caseSummary)
	b.WriteString("\n\nRECENT DEBATE MEMORY:\n")
	for i, t := range l.turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(string(t.Speaker))
		b.WriteString(": ")
		b.WriteString(t.Text)
	}
	b.WriteString("\n")
	return b.String()
}

// #endregion
