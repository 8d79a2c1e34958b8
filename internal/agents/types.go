// Package agents provides the agent data model and the balance registry.
package agents

import "sort"

// AgentID is a unique identifier for an agent. IDs are assigned densely from
// zero at population creation and are stable for the life of a run.
type AgentID uint64

// Agent is a participant in the gift economy. An agent may be allowed to
// donate, to request, both, or neither (a pure observer holding stock).
type Agent struct {
	ID         AgentID `json:"id"`
	Balance    float64 `json:"balance"`
	CanDonate  bool    `json:"can_donate"`
	CanRequest bool    `json:"can_request"`
}

// Balances is a detached agent_id -> balance mapping. Snapshots returned by
// the registry are copies; mutating one never touches live state.
type Balances map[AgentID]float64

// SortedIDs returns the agent IDs in ascending order.
func (b Balances) SortedIDs() []AgentID {
	ids := make([]AgentID, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Total returns the sum of all balances. Summation runs in ascending ID
// order: float accumulation is order-sensitive in the last ULP, and ranging
// over the map directly would let Go's randomized iteration order leak into
// the result, breaking trajectory determinism.
func (b Balances) Total() float64 {
	total := 0.0
	for _, id := range b.SortedIDs() {
		total += b[id]
	}
	return total
}

// Clone returns an independent copy.
func (b Balances) Clone() Balances {
	c := make(Balances, len(b))
	for id, v := range b {
		c[id] = v
	}
	return c
}
