package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNoiseRejectsNonPositiveEpsilon(t *testing.T) {
	n := NewNoiser()

	tests := []struct {
		name    string
		epsilon float64
	}{
		{name: "Zero epsilon", epsilon: 0},
		{name: "Negative epsilon", epsilon: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.AddNoise(100, tt.epsilon, 4)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestAddNoiseNonDeterministic(t *testing.T) {
	n := NewNoiser()

	seen := make(map[float64]bool)
	for i := 0; i < 8; i++ {
		v, err := n.AddNoise(42, 1, 4)
		require.NoError(t, err)
		seen[v] = true
	}

	assert.GreaterOrEqual(t, len(seen), 2, "repeated calls should not return identical noise")
}

func TestAddNoiseUnbiased(t *testing.T) {
	n := NewSeededNoiser(1)

	const trueValue = 42.0
	const samples = 6000

	sum := 0.0
	for i := 0; i < samples; i++ {
		v, err := n.AddNoise(trueValue, 1, 4)
		require.NoError(t, err)
		sum += v
	}

	mean := sum / samples
	assert.InDelta(t, trueValue, mean, 2, "sample mean should converge on the true value")
}

func TestNoisedMinutesClampsAndRounds(t *testing.T) {
	n := NewSeededNoiser(7)

	// A zero total with heavy noise goes negative roughly half the time;
	// the clamp must keep every reported value non-negative.
	for i := 0; i < 100; i++ {
		v, err := n.NoisedMinutes(0, 1, 60)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 0)
	}
}

func TestNoisedMinutesRejectsInvalidEpsilon(t *testing.T) {
	n := NewSeededNoiser(7)

	_, err := n.NoisedMinutes(480, 0, 60)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestSeededNoiserIsReproducible(t *testing.T) {
	a := NewSeededNoiser(99)
	b := NewSeededNoiser(99)

	for i := 0; i < 16; i++ {
		va, err := a.AddNoise(100, 1, 4)
		require.NoError(t, err)
		vb, err := b.AddNoise(100, 1, 4)
		require.NoError(t, err)
		assert.Equal(t, va, vb)
	}
}
