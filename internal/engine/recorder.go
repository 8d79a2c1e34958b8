// State recording: per-step snapshots, aggregate metrics, and the trajectory.
package engine

import (
	"fmt"
	"iter"
	"sort"

	"github.com/talgya/gift-economy/internal/agents"
	"github.com/talgya/gift-economy/internal/economy"
)

// Snapshot is the immutable record of the economy after one step.
type Snapshot struct {
	Step     uint64          `json:"step"`
	Balances agents.Balances `json:"balances"`

	TotalRequested float64 `json:"total_requested"`
	TotalDonated   float64 `json:"total_donated"`
	TotalUnmet     float64 `json:"total_unmet"`
	TotalProduced  float64 `json:"total_produced"`
	TotalConsumed  float64 `json:"total_consumed"`

	// Waste is donor capacity that sat idle this step: donatable stock
	// neither given away nor claimed. Provisional metric; resource
	// co-ownership accounting may fold into it later.
	Waste float64 `json:"waste"`

	// Stock distribution indices, per step.
	ConcentrationIndex    float64 `json:"concentration_index"`
	DistributionIndex     float64 `json:"distribution_index"`
	DecentralizationIndex float64 `json:"decentralization_index"`
}

// Trajectory is the append-only ordered sequence of snapshots for one run.
type Trajectory struct {
	snaps []Snapshot
}

// Len returns the number of recorded snapshots (including the initial state).
func (t *Trajectory) Len() int {
	return len(t.snaps)
}

// At returns the snapshot at position i (position 0 is the initial state).
func (t *Trajectory) At(i int) Snapshot {
	return t.snaps[i]
}

// Last returns the most recent snapshot.
func (t *Trajectory) Last() Snapshot {
	return t.snaps[len(t.snaps)-1]
}

// All yields snapshots in step order without copying the backing slice.
func (t *Trajectory) All() iter.Seq[Snapshot] {
	return func(yield func(Snapshot) bool) {
		for _, s := range t.snaps {
			if !yield(s) {
				return
			}
		}
	}
}

func (t *Trajectory) append(s Snapshot) {
	t.snaps = append(t.snaps, s)
}

// Table is the tabular form of a trajectory: one row per step, one column
// per agent balance plus the step totals.
type Table struct {
	Columns []string
	Rows    [][]float64
}

// Table converts the trajectory for the plotting/analysis layer.
func (t *Trajectory) Table() Table {
	if len(t.snaps) == 0 {
		return Table{}
	}

	ids := make([]agents.AgentID, 0, len(t.snaps[0].Balances))
	for id := range t.snaps[0].Balances {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	cols := []string{"step"}
	for _, id := range ids {
		cols = append(cols, fmt.Sprintf("agent_%d", id))
	}
	cols = append(cols,
		"total_requested", "total_donated", "total_unmet",
		"total_produced", "total_consumed", "waste",
		"concentration_index", "distribution_index", "decentralization_index",
	)

	rows := make([][]float64, 0, len(t.snaps))
	for _, s := range t.snaps {
		row := make([]float64, 0, len(cols))
		row = append(row, float64(s.Step))
		for _, id := range ids {
			row = append(row, s.Balances[id])
		}
		row = append(row,
			s.TotalRequested, s.TotalDonated, s.TotalUnmet,
			s.TotalProduced, s.TotalConsumed, s.Waste,
			s.ConcentrationIndex, s.DistributionIndex, s.DecentralizationIndex,
		)
		rows = append(rows, row)
	}

	return Table{Columns: cols, Rows: rows}
}

// recordStep computes the step's aggregates and appends the snapshot.
func (t *Trajectory) recordStep(step uint64, balances agents.Balances, requests []economy.Request, res executionResult, produced, donorCapacity float64) Snapshot {
	totalRequested := 0.0
	for _, r := range requests {
		totalRequested += r.Quantity
	}

	waste := donorCapacity - res.TotalDonated
	if waste < 0 {
		waste = 0
	}

	snap := Snapshot{
		Step:           step,
		Balances:       balances,
		TotalRequested: totalRequested,
		TotalDonated:   res.TotalDonated,
		TotalUnmet:     res.TotalUnmet,
		TotalProduced:  produced,
		TotalConsumed:  res.TotalConsumed,
		Waste:          waste,
	}
	snap.ConcentrationIndex = concentrationIndex(balances)
	snap.DistributionIndex = distributionIndex(balances)
	snap.DecentralizationIndex = (snap.ConcentrationIndex + snap.DistributionIndex) / 2

	t.append(snap)
	return snap
}

// concentrationIndex measures how evenly stock is spread: 1 minus the gap
// between the largest and smallest holder share. 1 is perfectly even, values
// near 0 mean one agent holds nearly everything. Invariant to total stock.
func concentrationIndex(balances agents.Balances) float64 {
	total := balances.Total()
	if total == 0 || len(balances) == 0 {
		return 0
	}
	minShare, maxShare := 1.0, 0.0
	for _, id := range balances.SortedIDs() {
		share := balances[id] / total
		if share < minShare {
			minShare = share
		}
		if share > maxShare {
			maxShare = share
		}
	}
	return 1 - (maxShare - minShare)
}

// distributionIndex is the fraction of agents holding any stock at all.
func distributionIndex(balances agents.Balances) float64 {
	if len(balances) == 0 {
		return 0
	}
	holders := 0
	for _, b := range balances {
		if b > 0 {
			holders++
		}
	}
	return float64(holders) / float64(len(balances))
}
