package agents

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPopulation() []*Agent {
	return []*Agent{
		{ID: 2, Balance: 5, CanRequest: true},
		{ID: 0, Balance: 10, CanDonate: true},
		{ID: 1, Balance: 0, CanDonate: true, CanRequest: true},
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry([]*Agent{{ID: 1}, {ID: 1}})
	require.ErrorIs(t, err, ErrDuplicateAgent)
}

func TestNewRegistryRejectsNegativeBalance(t *testing.T) {
	_, err := NewRegistry([]*Agent{{ID: 1, Balance: -1}})
	require.Error(t, err)
}

func TestBalanceAndApplyDelta(t *testing.T) {
	reg, err := NewRegistry(testPopulation())
	require.NoError(t, err)

	bal, err := reg.Balance(0)
	require.NoError(t, err)
	assert.Equal(t, 10.0, bal)

	require.NoError(t, reg.ApplyDelta(0, -4))
	bal, err = reg.Balance(0)
	require.NoError(t, err)
	assert.Equal(t, 6.0, bal)

	_, err = reg.Balance(99)
	assert.ErrorIs(t, err, ErrUnknownAgent)
	assert.ErrorIs(t, reg.ApplyDelta(99, 1), ErrUnknownAgent)
}

func TestApplyDeltaInsufficientBalance(t *testing.T) {
	reg, err := NewRegistry(testPopulation())
	require.NoError(t, err)

	err = reg.ApplyDelta(2, -6)
	require.ErrorIs(t, err, ErrInsufficientBalance)

	// Failed deltas must leave state untouched.
	bal, err := reg.Balance(2)
	require.NoError(t, err)
	assert.Equal(t, 5.0, bal)
}

func TestSnapshotIsDetached(t *testing.T) {
	reg, err := NewRegistry(testPopulation())
	require.NoError(t, err)

	snap := reg.Snapshot()
	assert.Equal(t, Balances{0: 10, 1: 0, 2: 5}, snap)

	snap[0] = 999
	bal, err := reg.Balance(0)
	require.NoError(t, err)
	assert.Equal(t, 10.0, bal)

	require.NoError(t, reg.ApplyDelta(0, -1))
	assert.Equal(t, 999.0, snap[0])
}

func TestRoleViews(t *testing.T) {
	reg, err := NewRegistry(testPopulation())
	require.NoError(t, err)

	assert.Equal(t, []AgentID{0, 1}, reg.Donors())
	assert.Equal(t, []AgentID{1, 2}, reg.Requesters())
	assert.Equal(t, []AgentID{0, 1, 2}, reg.IDs())
	assert.Equal(t, 3, reg.Size())
}

func TestBalancesTotalAndClone(t *testing.T) {
	b := Balances{0: 1.5, 1: 2.5}
	assert.Equal(t, 4.0, b.Total())

	c := b.Clone()
	c[0] = 9
	assert.Equal(t, 1.5, b[0])
}

func TestBalancesTotalIsOrderStable(t *testing.T) {
	// Mixed-magnitude values make float summation sensitive to order in
	// the last ULP. Total must always accumulate in ascending ID order,
	// bit-identical across calls, regardless of map iteration order.
	b := Balances{}
	for i := 0; i < 64; i++ {
		b[AgentID(i)] = math.Pow(1.9, float64(i%13)) / 7
	}

	want := 0.0
	for i := 0; i < 64; i++ {
		want += b[AgentID(i)]
	}

	for i := 0; i < 100; i++ {
		require.Equal(t, want, b.Total())
	}
}

func TestBalancesSortedIDs(t *testing.T) {
	b := Balances{5: 1, 0: 1, 3: 1}
	assert.Equal(t, []AgentID{0, 3, 5}, b.SortedIDs())
}
