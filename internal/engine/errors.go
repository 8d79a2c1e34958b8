package engine

import (
	"fmt"

	"github.com/talgya/gift-economy/internal/agents"
)

// InvariantViolationError reports a runtime defect: a conservation breach or
// a balance driven negative mid-step. It always aborts the run; silent
// clamping is reserved for the documented offer clamps, never for these.
type InvariantViolationError struct {
	Step     uint64
	Agent    agents.AgentID
	Quantity float64
	Reason   string
	Err      error
}

func (e *InvariantViolationError) Error() string {
	msg := fmt.Sprintf("invariant violation at step %d: %s (agent %d, quantity %v)",
		e.Step, e.Reason, e.Agent, e.Quantity)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvariantViolationError) Unwrap() error {
	return e.Err
}
