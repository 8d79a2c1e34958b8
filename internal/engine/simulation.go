// Simulation ties the gift-economy systems together and runs them each step.
package engine

import (
	"log/slog"
	"math"

	"github.com/talgya/gift-economy/internal/agents"
	"github.com/talgya/gift-economy/internal/config"
	"github.com/talgya/gift-economy/internal/economy"
	"github.com/talgya/gift-economy/internal/entropy"
)

// Randomness fork offsets per subsystem, so their draw sequences stay
// independent of each other.
const (
	forkPopulation = 100
	forkRequests   = 200
	forkProduction = 300
)

// conservationTolerance bounds acceptable float drift in the per-step
// conservation check.
const conservationTolerance = 1e-9

// logEvery controls periodic progress reports during Run.
const logEvery = 100

// Simulation holds one run's complete state. Each step consumes the previous
// snapshot and produces the next; runs are independent, so parameter sweeps
// can execute many Simulations in parallel without shared state.
type Simulation struct {
	cfg      config.Config
	strategy economy.Strategy

	registry   *agents.Registry
	generator  *economy.Generator
	production *production
	trajectory *Trajectory

	step uint64
}

// New validates the configuration and builds a ready-to-run simulation,
// recording the initial state as snapshot zero.
func New(cfg config.Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	strategy, err := economy.ParseStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}

	src := entropy.NewSource(cfg.Seed)
	population := buildPopulation(cfg.Population, src.Fork(forkPopulation))
	registry, err := agents.NewRegistry(population)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:        cfg,
		strategy:   strategy,
		registry:   registry,
		generator:  economy.NewGenerator(cfg.Requests, src.Fork(forkRequests)),
		production: newProduction(cfg.Production, cfg.Seed+forkProduction),
		trajectory: &Trajectory{},
	}

	initial := Snapshot{Step: 0, Balances: registry.Snapshot()}
	initial.ConcentrationIndex = concentrationIndex(initial.Balances)
	initial.DistributionIndex = distributionIndex(initial.Balances)
	initial.DecentralizationIndex = (initial.ConcentrationIndex + initial.DistributionIndex) / 2
	s.trajectory.append(initial)

	return s, nil
}

// Trajectory returns the run's snapshot sequence recorded so far.
func (s *Simulation) Trajectory() *Trajectory {
	return s.trajectory
}

// CurrentStep returns the most recently completed step.
func (s *Simulation) CurrentStep() uint64 {
	return s.step
}

// Step advances the economy by one step: produce, generate requests, compute
// offers, execute transfers, record. A step either completes and appends a
// consistent snapshot, or fails fatally with full context; there is no
// partial success.
func (s *Simulation) Step() (Snapshot, error) {
	s.step++
	before := s.registry.Snapshot()

	// Replenishment credited to donors first; production counts toward the
	// step's injected total and is donatable immediately.
	donors := s.registry.Donors()
	produced := 0.0
	perAgent := s.production.perAgent(s.step)
	if perAgent > 0 {
		for _, id := range donors {
			if err := s.registry.ApplyDelta(id, perAgent); err != nil {
				return Snapshot{}, &InvariantViolationError{Step: s.step, Agent: id, Quantity: perAgent, Reason: "production credit failed", Err: err}
			}
			produced += perAgent
		}
	}

	// Start-of-step view: post-production balances, fixed for the rest of
	// the step. Requests and offers both read this snapshot.
	start := s.registry.Snapshot()

	requests := s.generator.Generate(s.step, start, s.registry.Requesters())

	donorCapacity := 0.0
	donorBalances := make(agents.Balances, len(donors))
	for _, id := range donors {
		donorBalances[id] = start[id]
		donorCapacity += start[id]
	}

	offers := s.strategy.Offers(donorBalances, requests)

	res, err := executeOffers(s.registry, s.step, requests, offers, s.generator.ConsumeOnFulfill())
	if err != nil {
		return Snapshot{}, err
	}

	if s.cfg.Requests.CarryOver {
		var residue []economy.Request
		for i, r := range requests {
			if res.Residue[i] > 0 {
				residue = append(residue, economy.Request{Requestor: r.Requestor, Quantity: res.Residue[i]})
			}
		}
		s.generator.CarryOver(residue)
	}

	after := s.registry.Snapshot()
	drift := math.Abs((after.Total() + res.TotalConsumed) - (before.Total() + produced))
	if drift > conservationTolerance {
		return Snapshot{}, &InvariantViolationError{Step: s.step, Quantity: drift, Reason: "conservation breach"}
	}

	return s.trajectory.recordStep(s.step, after, requests, res, produced, donorCapacity), nil
}

// Run executes the configured number of steps and returns the trajectory.
func (s *Simulation) Run() (*Trajectory, error) {
	slog.Info("simulation starting",
		"strategy", s.strategy.String(),
		"agents", s.registry.Size(),
		"steps", s.cfg.Steps,
		"seed", s.cfg.Seed,
	)

	for i := 0; i < s.cfg.Steps; i++ {
		snap, err := s.Step()
		if err != nil {
			slog.Error("simulation aborted", "step", s.step, "error", err)
			return nil, err
		}

		if s.step%logEvery == 0 {
			slog.Info("progress",
				"step", snap.Step,
				"requested", snap.TotalRequested,
				"donated", snap.TotalDonated,
				"unmet", snap.TotalUnmet,
				"waste", snap.Waste,
				"decentralization", snap.DecentralizationIndex,
			)
		}
	}

	last := s.trajectory.Last()
	slog.Info("simulation finished",
		"steps", s.step,
		"total_stock", last.Balances.Total(),
		"decentralization", last.DecentralizationIndex,
	)
	return s.trajectory, nil
}
