package debate

import (
	"context"
	"errors"
)

// #region errors

var (
	// ErrInvalidState marks an operation against an orchestrator that has
	// moved past the state allowing it (e.g. re-running a closed debate).
	ErrInvalidState = errors.New("debate: invalid state")
)

// #endregion

// #region state

// State is the lifecycle of one debate orchestrator.
type State int

const (
	StateCreated State = iota
	StateRunning
	StateEvaluated
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateEvaluated:
		return "evaluated"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// #endregion

// #region interfaces

// Completer abstracts the external text-completion capability.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// #endregion

// #region config

// Config tunes one debate instance.
type Config struct {
	LedgerCapacity int // recent turns kept in memory, default 5
}

// DefaultConfig returns the default debate configuration.
func DefaultConfig() Config {
	return Config{LedgerCapacity: 5}
}

// #endregion
