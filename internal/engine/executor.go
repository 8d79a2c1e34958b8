// Allocation execution: turning ordered offers into clamped transfers.
package engine

import (
	"sort"

	"github.com/talgya/gift-economy/internal/agents"
	"github.com/talgya/gift-economy/internal/economy"
)

// fulfilledEpsilon is the residual below which a request counts as fully met.
const fulfilledEpsilon = 1e-9

// executionResult summarizes one step's executed allocation.
type executionResult struct {
	Transfers []economy.Transfer

	// Residue holds each request's unmet quantity, indexed like the
	// request slice.
	Residue []float64

	TotalDonated  float64
	TotalUnmet    float64
	TotalConsumed float64
}

// executeOffers applies a step's offers strictly in Seq order, one at a
// time. Each executed quantity is clamped to the donor's remaining
// start-of-step balance and the request's remaining unmet need, both
// recomputed after every transfer; the executor is the final authority on
// no-overdonation and no-overdraw regardless of what a strategy proposed.
//
// consume removes each fully satisfied request's quantity from its
// recipient afterwards, counting it as consumed.
func executeOffers(reg *agents.Registry, step uint64, requests []economy.Request, offers []economy.Offer, consume bool) (executionResult, error) {
	res := executionResult{Residue: make([]float64, len(requests))}
	for i, r := range requests {
		res.Residue[i] = r.Quantity
	}

	// Honor the strategy's generation tags even if the slice arrives
	// shuffled; execution order decides who gets clipped.
	ordered := make([]economy.Offer, len(offers))
	copy(ordered, offers)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Seq < ordered[j].Seq })

	// Donor spending this step is capped by the start-of-step balance, not
	// by anything received mid-step.
	remaining := make(map[agents.AgentID]float64)
	for _, o := range ordered {
		if _, ok := remaining[o.Donor]; ok {
			continue
		}
		bal, err := reg.Balance(o.Donor)
		if err != nil {
			return res, &InvariantViolationError{Step: step, Agent: o.Donor, Quantity: o.Quantity, Reason: "offer from unregistered donor", Err: err}
		}
		remaining[o.Donor] = bal
	}

	for _, o := range ordered {
		if o.Request < 0 || o.Request >= len(requests) {
			return res, &InvariantViolationError{Step: step, Agent: o.Donor, Quantity: o.Quantity, Reason: "offer targets unknown request"}
		}
		req := requests[o.Request]

		qty := min(o.Quantity, remaining[o.Donor], res.Residue[o.Request])
		if qty <= 0 {
			continue
		}

		if err := reg.ApplyDelta(o.Donor, -qty); err != nil {
			return res, &InvariantViolationError{Step: step, Agent: o.Donor, Quantity: qty, Reason: "donor overdraw", Err: err}
		}
		if err := reg.ApplyDelta(req.Requestor, qty); err != nil {
			return res, &InvariantViolationError{Step: step, Agent: req.Requestor, Quantity: qty, Reason: "credit failed", Err: err}
		}

		remaining[o.Donor] -= qty
		res.Residue[o.Request] -= qty
		res.TotalDonated += qty
		res.Transfers = append(res.Transfers, economy.Transfer{
			Donor:     o.Donor,
			Recipient: req.Requestor,
			Quantity:  qty,
		})
	}

	for i, r := range requests {
		if res.Residue[i] <= fulfilledEpsilon {
			// Consume what was actually delivered, not the nominal request:
			// accumulated float error can leave the credited balance a few
			// ULPs short of the requested quantity, and the debit must never
			// manufacture an overdraw out of rounding noise.
			delivered := r.Quantity - res.Residue[i]
			res.Residue[i] = 0
			if consume && delivered > 0 {
				bal, err := reg.Balance(r.Requestor)
				if err != nil {
					return res, &InvariantViolationError{Step: step, Agent: r.Requestor, Quantity: delivered, Reason: "consumption lookup failed", Err: err}
				}
				if delivered > bal {
					if delivered-bal > fulfilledEpsilon {
						return res, &InvariantViolationError{Step: step, Agent: r.Requestor, Quantity: delivered, Reason: "consumption overdraw"}
					}
					delivered = bal
				}
				if err := reg.ApplyDelta(r.Requestor, -delivered); err != nil {
					return res, &InvariantViolationError{Step: step, Agent: r.Requestor, Quantity: delivered, Reason: "consumption overdraw", Err: err}
				}
				res.TotalConsumed += delivered
			}
			continue
		}
		res.TotalUnmet += res.Residue[i]
	}

	return res, nil
}
