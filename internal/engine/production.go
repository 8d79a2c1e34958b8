// Per-step replenishment credited to donor agents.
package engine

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/gift-economy/internal/config"
)

// production injects new resources into the economy each step. The base rate
// is per donor per step; with a nonzero noise amplitude the rate is modulated
// by seeded simplex noise so supply drifts smoothly across a run instead of
// jumping. Everything injected is counted toward the conservation identity.
type production struct {
	rate  float64
	amp   float64
	scale float64
	noise opensimplex.Noise
}

func newProduction(cfg config.Production, seed int64) *production {
	p := &production{
		rate:  cfg.Rate,
		amp:   cfg.NoiseAmplitude,
		scale: cfg.NoiseScale,
	}
	if p.scale == 0 {
		p.scale = 0.05
	}
	if p.amp > 0 {
		p.noise = opensimplex.New(seed)
	}
	return p
}

// perAgent returns the quantity produced by one donor at the given step.
func (p *production) perAgent(step uint64) float64 {
	if p.rate <= 0 {
		return 0
	}
	amount := p.rate
	if p.noise != nil {
		// Eval2 is roughly in [-1, 1]; the amplitude maps the rate onto
		// about [1-amp, 1+amp] of its base value.
		amount *= 1 + p.amp*p.noise.Eval2(float64(step)*p.scale, 0)
	}
	if amount < 0 {
		amount = 0
	}
	return amount
}
