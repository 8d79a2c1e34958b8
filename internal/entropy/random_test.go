package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameSeedSameSequence(t *testing.T) {
	a := NewSource(7)
	b := NewSource(7)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Float(), b.Float())
	}
}

func TestForkIsIndependent(t *testing.T) {
	a := NewSource(7)
	fork := a.Fork(100)

	// Draining the fork must not disturb the parent's sequence.
	b := NewSource(7)
	for i := 0; i < 50; i++ {
		fork.Float()
	}
	for i := 0; i < 20; i++ {
		require.Equal(t, b.Float(), a.Float())
	}
}

func TestUniformBounds(t *testing.T) {
	s := NewSource(1)
	for i := 0; i < 1000; i++ {
		v := s.Uniform(2, 5)
		assert.GreaterOrEqual(t, v, 2.0)
		assert.Less(t, v, 5.0)
	}
	assert.Equal(t, 3.0, s.Uniform(3, 3))
}

func TestPermDeterminism(t *testing.T) {
	assert.Equal(t, NewSource(9).Perm(10), NewSource(9).Perm(10))
	assert.Equal(t, int64(9), NewSource(9).Seed())
}
