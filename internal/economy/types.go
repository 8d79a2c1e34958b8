// Package economy provides the gift-economy flow model: requests, donation
// offers, executed transfers, and the donation strategies that connect them.
package economy

import (
	"github.com/talgya/gift-economy/internal/agents"
)

// Request is one agent's demand for a quantity of resource in one step.
// It lives only within the step that created it; whatever remains unmet is
// recorded into the step metrics and, under carry-over, re-submitted fresh.
type Request struct {
	Requestor agents.AgentID
	Quantity  float64
	Step      uint64
}

// Offer is a proposed transfer from a donor toward one request, produced by
// a donation strategy before execution clamping. Seq records generation
// order: the executor applies offers strictly in Seq order, which determines
// who gets clipped when donor capacity runs out.
type Offer struct {
	Seq      int
	Donor    agents.AgentID
	Request  int // index into the step's request slice
	Quantity float64
}

// Transfer is an executed, clamped resource movement. Transfers are the only
// events that mutate balances.
type Transfer struct {
	Donor     agents.AgentID
	Recipient agents.AgentID
	Quantity  float64
}
