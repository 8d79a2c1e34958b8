// Initial population construction: role assignment and starting balances.
package engine

import (
	"math"

	"github.com/talgya/gift-economy/internal/agents"
	"github.com/talgya/gift-economy/internal/config"
	"github.com/talgya/gift-economy/internal/entropy"
)

// buildPopulation creates the agent set for a run. Role counts come from the
// configured fractions (rounded, at least one member whenever the fraction is
// positive); which agents get which role is a seeded shuffle, so the same
// seed always yields the same population. Roles may overlap.
func buildPopulation(cfg config.Population, src *entropy.Source) []*agents.Agent {
	pop := make([]*agents.Agent, cfg.Size)
	for i := range pop {
		pop[i] = &agents.Agent{
			ID:      agents.AgentID(i),
			Balance: initialBalance(cfg.InitialBalance, src),
		}
	}

	for _, i := range roleMembers(cfg.Size, cfg.DonorFraction, src) {
		pop[i].CanDonate = true
	}
	for _, i := range roleMembers(cfg.Size, cfg.RequesterFraction, src) {
		pop[i].CanRequest = true
	}

	return pop
}

// roleMembers picks which agent indices hold a role: a seeded shuffle of the
// population, truncated to the rounded role count.
func roleMembers(size int, fraction float64, src *entropy.Source) []int {
	if fraction <= 0 {
		return nil
	}
	count := int(math.Round(fraction * float64(size)))
	if count < 1 {
		count = 1
	}
	if count > size {
		count = size
	}
	return src.Perm(size)[:count]
}

func initialBalance(d config.Distribution, src *entropy.Source) float64 {
	switch d.Kind {
	case config.DistFixed:
		return d.Value
	case config.DistUniform:
		return src.Uniform(d.Min, d.Max)
	}
	return 0
}
