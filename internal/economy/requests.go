package economy

import (
	"sort"

	"github.com/talgya/gift-economy/internal/agents"
	"github.com/talgya/gift-economy/internal/config"
	"github.com/talgya/gift-economy/internal/entropy"
)

// Generator emits each step's requests from the previous snapshot and the
// request policy. All randomness comes from the source passed at
// construction, so a seed fully determines the request stream.
type Generator struct {
	policy config.Requests
	src    *entropy.Source

	// Unmet residue fed back by the driver when carry-over is enabled.
	carried []Request
}

// NewGenerator creates a request generator with its own randomness fork.
func NewGenerator(policy config.Requests, src *entropy.Source) *Generator {
	return &Generator{policy: policy, src: src}
}

// Generate produces the ordered requests for one step. Eligible agents are
// visited in ascending ID order; each submits up to the configured per-agent
// cap of requests with probability rate per slot. Carried-over residue from
// the previous step, if any, is emitted first.
func (g *Generator) Generate(step uint64, balances agents.Balances, requesters []agents.AgentID) []Request {
	var out []Request

	if len(g.carried) > 0 {
		for _, r := range g.carried {
			out = append(out, Request{Requestor: r.Requestor, Quantity: r.Quantity, Step: step})
		}
		g.carried = nil
	}

	ordered := make([]agents.AgentID, len(requesters))
	copy(ordered, requesters)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	for _, id := range ordered {
		for n := 0; n < g.policy.MaxRequestsPerAgent(); n++ {
			if g.src.Float() >= g.policy.Rate {
				continue
			}
			qty := g.quantity(balances[id])
			if qty <= 0 {
				continue
			}
			out = append(out, Request{Requestor: id, Quantity: qty, Step: step})
		}
	}

	return out
}

// CarryOver feeds a step's unmet residue back for re-submission. No-op when
// the policy has carry-over disabled.
func (g *Generator) CarryOver(residue []Request) {
	if !g.policy.CarryOver || len(residue) == 0 {
		return
	}
	g.carried = append(g.carried, residue...)
}

// ConsumeOnFulfill reports whether fully satisfied requests are consumed.
func (g *Generator) ConsumeOnFulfill() bool {
	return g.policy.ConsumeOnFulfill
}

func (g *Generator) quantity(balance float64) float64 {
	q := g.policy.Quantity
	switch q.Kind {
	case config.DistFixed:
		return q.Value
	case config.DistUniform:
		return g.src.Uniform(q.Min, q.Max)
	case config.DistNeed:
		// Request only what is missing toward the target balance.
		need := q.Value - balance
		if need < 0 {
			return 0
		}
		return need
	}
	return 0
}
