package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/gift-economy/internal/agents"
	"github.com/talgya/gift-economy/internal/economy"
)

func TestConcentrationIndex(t *testing.T) {
	// Perfectly even: every share identical.
	assert.InDelta(t, 1.0, concentrationIndex(agents.Balances{0: 5, 1: 5, 2: 5}), 1e-9)

	// One agent holds everything.
	assert.InDelta(t, 0.0, concentrationIndex(agents.Balances{0: 10, 1: 0}), 1e-9)

	// Empty economy.
	assert.Equal(t, 0.0, concentrationIndex(agents.Balances{0: 0, 1: 0}))
	assert.Equal(t, 0.0, concentrationIndex(nil))
}

func TestDistributionIndex(t *testing.T) {
	assert.Equal(t, 0.5, distributionIndex(agents.Balances{0: 10, 1: 0}))
	assert.Equal(t, 1.0, distributionIndex(agents.Balances{0: 1, 1: 2}))
	assert.Equal(t, 0.0, distributionIndex(nil))
}

func TestRecordStepAggregates(t *testing.T) {
	traj := &Trajectory{}
	balances := agents.Balances{0: 3, 1: 7}
	requests := []economy.Request{
		{Requestor: 1, Quantity: 4},
		{Requestor: 1, Quantity: 2},
	}
	res := executionResult{
		TotalDonated:  5,
		TotalUnmet:    1,
		TotalConsumed: 4,
	}

	snap := traj.recordStep(3, balances, requests, res, 2.5, 8)

	assert.Equal(t, uint64(3), snap.Step)
	assert.Equal(t, 6.0, snap.TotalRequested)
	assert.Equal(t, 5.0, snap.TotalDonated)
	assert.Equal(t, 1.0, snap.TotalUnmet)
	assert.Equal(t, 2.5, snap.TotalProduced)
	assert.Equal(t, 4.0, snap.TotalConsumed)
	assert.Equal(t, 3.0, snap.Waste) // 8 capacity - 5 donated
	assert.Equal(t, 1, traj.Len())
	assert.Equal(t, snap, traj.Last())
	assert.Equal(t, (snap.ConcentrationIndex+snap.DistributionIndex)/2, snap.DecentralizationIndex)
}

func TestTrajectoryIteration(t *testing.T) {
	traj := &Trajectory{}
	for i := 0; i < 5; i++ {
		traj.append(Snapshot{Step: uint64(i)})
	}

	var steps []uint64
	for s := range traj.All() {
		steps = append(steps, s.Step)
	}
	assert.Equal(t, []uint64{0, 1, 2, 3, 4}, steps)
	assert.Equal(t, uint64(2), traj.At(2).Step)

	// Early break must not panic or keep yielding.
	count := 0
	for range traj.All() {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestTableConversion(t *testing.T) {
	traj := &Trajectory{}
	traj.append(Snapshot{
		Step:     0,
		Balances: agents.Balances{0: 1, 2: 3},
	})
	traj.append(Snapshot{
		Step:           1,
		Balances:       agents.Balances{0: 2, 2: 2},
		TotalRequested: 4,
		TotalDonated:   1,
	})

	table := traj.Table()
	require.Len(t, table.Rows, 2)

	assert.Equal(t, "step", table.Columns[0])
	assert.Equal(t, "agent_0", table.Columns[1])
	assert.Equal(t, "agent_2", table.Columns[2])
	assert.Contains(t, table.Columns, "total_unmet")
	assert.Contains(t, table.Columns, "waste")

	assert.Equal(t, 0.0, table.Rows[0][0])
	assert.Equal(t, 1.0, table.Rows[1][0])
	assert.Equal(t, 2.0, table.Rows[1][1]) // agent 0 balance at step 1
	assert.Equal(t, 2.0, table.Rows[1][2]) // agent 2 balance at step 1

	for _, row := range table.Rows {
		assert.Len(t, row, len(table.Columns))
	}
}

func TestTableEmptyTrajectory(t *testing.T) {
	traj := &Trajectory{}
	table := traj.Table()
	assert.Empty(t, table.Columns)
	assert.Empty(t, table.Rows)
}
