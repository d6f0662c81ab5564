// Package privacy implements the Laplace mechanism applied to minute totals
// before anything leaves the device.
package privacy

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	mrand "math/rand/v2"
)

var ErrInvalidParameter = errors.New("invalid parameter")

const (
	// DefaultEpsilon is the per-release privacy budget.
	DefaultEpsilon = 1.0
	// DefaultSensitivityMin bounds how many minutes one day's honest figure
	// can move the reported value.
	DefaultSensitivityMin = 60.0
)

// Noiser draws Laplace-distributed noise. The random source is swappable so
// tests can seed it; production use seeds from crypto/rand.
type Noiser struct {
	rng *mrand.Rand
}

func NewNoiser() *Noiser {
	var seed [16]byte
	if _, err := rand.Read(seed[:]); err != nil {
		panic(fmt.Sprintf("privacy: read random seed: %v", err))
	}
	s1 := binary.LittleEndian.Uint64(seed[:8])
	s2 := binary.LittleEndian.Uint64(seed[8:])
	return &Noiser{rng: mrand.New(mrand.NewPCG(s1, s2))}
}

// NewSeededNoiser returns a deterministic noiser for tests.
func NewSeededNoiser(seed uint64) *Noiser {
	return &Noiser{rng: mrand.New(mrand.NewPCG(seed, seed+1))}
}

// AddNoise returns value plus one sample from a zero-centered Laplace
// distribution with scale sensitivity/epsilon, via the inverse CDF:
// draw u uniform in (-0.5, 0.5), return -b * sign(u) * ln(1 - 2|u|).
func (n *Noiser) AddNoise(value, epsilon, sensitivity float64) (float64, error) {
	if epsilon <= 0 {
		return 0, fmt.Errorf("epsilon must be positive, got %v: %w", epsilon, ErrInvalidParameter)
	}

	b := sensitivity / epsilon

	u := n.rng.Float64() - 0.5
	for u == -0.5 {
		// ln(0) below; redraw the measure-zero edge
		u = n.rng.Float64() - 0.5
	}

	sign := 1.0
	if u < 0 {
		sign = -1.0
	} else if u == 0 {
		sign = 0
	}
	noise := -b * sign * math.Log(1-2*math.Abs(u))

	return value + noise, nil
}

// NoisedMinutes applies AddNoise to a minute total, clamps the result to be
// non-negative and rounds to the nearest whole minute.
func (n *Noiser) NoisedMinutes(minutes int, epsilon, sensitivity float64) (int, error) {
	noised, err := n.AddNoise(float64(minutes), epsilon, sensitivity)
	if err != nil {
		return 0, err
	}
	if noised < 0 {
		noised = 0
	}
	return int(math.Round(noised)), nil
}
