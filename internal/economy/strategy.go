package economy

import (
	"fmt"
	"sort"

	"github.com/talgya/gift-economy/internal/agents"
	"github.com/talgya/gift-economy/internal/config"
)

// Strategy is the closed set of donation strategies. All variants share one
// contract: given donor capacities and the step's requests, produce ordered
// offers. Strategies never mutate balances; they only propose.
type Strategy uint8

const (
	// SingleDonor matches each request to at most one donor whose remaining
	// capacity covers the full quantity. Donors are tried largest capacity
	// first, agent ID ascending on ties. Requests no single donor can cover
	// get no offer and surface as unmet.
	SingleDonor Strategy = iota

	// MultiSequential splits a request across donors in capacity order,
	// each donor offering min(remaining capacity, remaining need).
	MultiSequential

	// MultiProportional splits a request across donors in proportion to
	// their remaining capacity.
	MultiProportional
)

// ParseStrategy maps a configuration name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case config.StrategySingleDonor:
		return SingleDonor, nil
	case config.StrategyMultiSequential:
		return MultiSequential, nil
	case config.StrategyMultiProportional:
		return MultiProportional, nil
	}
	return 0, fmt.Errorf("%w: unknown strategy %q", config.ErrInvalidConfiguration, name)
}

func (s Strategy) String() string {
	switch s {
	case SingleDonor:
		return config.StrategySingleDonor
	case MultiSequential:
		return config.StrategyMultiSequential
	case MultiProportional:
		return config.StrategyMultiProportional
	}
	return fmt.Sprintf("strategy(%d)", uint8(s))
}

// donorState tracks one donor's remaining offerable capacity within a step.
type donorState struct {
	id       agents.AgentID
	capacity float64
}

// donorOrder builds the deterministic donor iteration order: largest
// start-of-step capacity first, agent ID ascending on ties. Zero-capacity
// donors are excluded up front.
func donorOrder(donors agents.Balances) []*donorState {
	states := make([]*donorState, 0, len(donors))
	for id, capacity := range donors {
		if capacity <= 0 {
			continue
		}
		states = append(states, &donorState{id: id, capacity: capacity})
	}
	sort.Slice(states, func(i, j int) bool {
		if states[i].capacity != states[j].capacity {
			return states[i].capacity > states[j].capacity
		}
		return states[i].id < states[j].id
	})
	return states
}

// Offers produces the step's donation offers. A requestor never donates to
// its own request. Every offer, including the last donor's, is clamped to
// the request's remaining need recomputed after each prior offer; the
// remaining-capacity bookkeeping spans requests, so one donor's gifts to an
// earlier request shrink what it can offer a later one.
//
// With no donors (or none with capacity) the result is empty and the
// requests surface as unmet; that is an expected outcome, not a failure.
func (s Strategy) Offers(donors agents.Balances, requests []Request) []Offer {
	states := donorOrder(donors)
	if len(states) == 0 || len(requests) == 0 {
		return nil
	}

	var offers []Offer
	seq := 0
	emit := func(donor *donorState, req int, qty float64) {
		offers = append(offers, Offer{Seq: seq, Donor: donor.id, Request: req, Quantity: qty})
		seq++
	}

	for ri := range requests {
		req := &requests[ri]
		if req.Quantity <= 0 {
			continue
		}
		switch s {
		case SingleDonor:
			singleDonorOffers(states, ri, req, emit)
		case MultiSequential:
			sequentialOffers(states, ri, req, emit)
		case MultiProportional:
			proportionalOffers(states, ri, req, emit)
		}
	}

	return offers
}

func singleDonorOffers(states []*donorState, ri int, req *Request, emit func(*donorState, int, float64)) {
	for _, d := range states {
		if d.id == req.Requestor {
			continue
		}
		if d.capacity >= req.Quantity {
			emit(d, ri, req.Quantity)
			d.capacity -= req.Quantity
			return
		}
	}
}

func sequentialOffers(states []*donorState, ri int, req *Request, emit func(*donorState, int, float64)) {
	remaining := req.Quantity
	for _, d := range states {
		if remaining <= 0 {
			break
		}
		if d.id == req.Requestor || d.capacity <= 0 {
			continue
		}
		qty := min(d.capacity, remaining)
		emit(d, ri, qty)
		d.capacity -= qty
		remaining -= qty
	}
}

func proportionalOffers(states []*donorState, ri int, req *Request, emit func(*donorState, int, float64)) {
	// Pool capacity across eligible donors, then walk them in order giving
	// each a share of the still-unmet need proportional to its slice of the
	// still-unallocated pool. The running remaining-need clamp applies to
	// every offer including the final donor's, so shares can never sum past
	// the requested quantity.
	pool := 0.0
	for _, d := range states {
		if d.id != req.Requestor {
			pool += d.capacity
		}
	}
	if pool <= 0 {
		return
	}

	remaining := req.Quantity
	for _, d := range states {
		if remaining <= 0 || pool <= 0 {
			break
		}
		if d.id == req.Requestor || d.capacity <= 0 {
			continue
		}
		share := remaining * (d.capacity / pool)
		qty := min(share, d.capacity, remaining)
		pool -= d.capacity
		if qty <= 0 {
			continue
		}
		emit(d, ri, qty)
		d.capacity -= qty
		remaining -= qty
	}
}
