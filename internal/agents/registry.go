package agents

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrInsufficientBalance is returned when a delta would drive an agent's
	// balance negative. A correctly clamped allocation never triggers it; if
	// it surfaces mid-run it means a strategy/executor contract violation.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrUnknownAgent is returned for operations on an agent ID that was
	// never registered.
	ErrUnknownAgent = errors.New("unknown agent")

	// ErrDuplicateAgent is returned when a registry is built with two agents
	// sharing an ID.
	ErrDuplicateAgent = errors.New("duplicate agent id")
)

// Registry holds the fixed agent population for one run. Balances change only
// through ApplyDelta; everything else reads detached snapshots. Agents are
// never added or removed after construction.
type Registry struct {
	agents []*Agent
	index  map[AgentID]*Agent
}

// NewRegistry builds a registry from the initial population. The slice is
// kept sorted by ID so iteration order is deterministic.
func NewRegistry(population []*Agent) (*Registry, error) {
	index := make(map[AgentID]*Agent, len(population))
	ordered := make([]*Agent, len(population))
	copy(ordered, population)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	for _, a := range ordered {
		if a.Balance < 0 {
			return nil, fmt.Errorf("agent %d: negative initial balance %v", a.ID, a.Balance)
		}
		if _, exists := index[a.ID]; exists {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateAgent, a.ID)
		}
		index[a.ID] = a
	}

	return &Registry{agents: ordered, index: index}, nil
}

// Size returns the number of registered agents.
func (r *Registry) Size() int {
	return len(r.agents)
}

// Balance returns the current balance of one agent.
func (r *Registry) Balance(id AgentID) (float64, error) {
	a, ok := r.index[id]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownAgent, id)
	}
	return a.Balance, nil
}

// ApplyDelta adjusts one agent's balance. Fails with ErrInsufficientBalance
// if the delta would drive the balance negative, leaving state untouched.
func (r *Registry) ApplyDelta(id AgentID, delta float64) error {
	a, ok := r.index[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownAgent, id)
	}
	next := a.Balance + delta
	if next < 0 {
		return fmt.Errorf("%w: agent %d balance %v delta %v", ErrInsufficientBalance, id, a.Balance, delta)
	}
	a.Balance = next
	return nil
}

// Snapshot returns a detached copy of all balances.
func (r *Registry) Snapshot() Balances {
	b := make(Balances, len(r.agents))
	for _, a := range r.agents {
		b[a.ID] = a.Balance
	}
	return b
}

// Donors returns the IDs of agents allowed to donate, in ascending ID order.
func (r *Registry) Donors() []AgentID {
	var ids []AgentID
	for _, a := range r.agents {
		if a.CanDonate {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// Requesters returns the IDs of agents allowed to request, in ascending ID order.
func (r *Registry) Requesters() []AgentID {
	var ids []AgentID
	for _, a := range r.agents {
		if a.CanRequest {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// IDs returns all agent IDs in ascending order.
func (r *Registry) IDs() []AgentID {
	ids := make([]AgentID, len(r.agents))
	for i, a := range r.agents {
		ids[i] = a.ID
	}
	return ids
}
