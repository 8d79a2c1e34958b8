// Package config loads and validates simulation configuration.
// All parameter checks happen here, before the first step executes.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfiguration wraps every pre-run validation failure.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Strategy names accepted by the donation engine.
const (
	StrategySingleDonor       = "single-donor"
	StrategyMultiSequential   = "multi-donor-sequential"
	StrategyMultiProportional = "multi-donor-proportional"
)

// Distribution kinds for initial balances and request quantities.
const (
	DistFixed   = "fixed"
	DistUniform = "uniform"
	DistNeed    = "need-based" // request quantity only
)

// Config describes one simulation run.
type Config struct {
	Seed  int64 `yaml:"seed"`
	Steps int   `yaml:"steps"`

	Strategy string `yaml:"strategy"`

	Population Population `yaml:"population"`
	Requests   Requests   `yaml:"requests"`
	Production Production `yaml:"production"`
}

// Population describes the agent set created at initialization.
type Population struct {
	Size int `yaml:"size"`

	// Fraction of agents flagged can-donate / can-request. Roles may
	// overlap: an agent can hold both.
	DonorFraction     float64 `yaml:"donor_fraction"`
	RequesterFraction float64 `yaml:"requester_fraction"`

	InitialBalance Distribution `yaml:"initial_balance"`
}

// Distribution is a parameterized scalar distribution.
// fixed: always Value. uniform: drawn from [Min, Max).
// need-based (request quantity only): max(0, Value - current balance),
// with Value acting as the target balance.
type Distribution struct {
	Kind  string  `yaml:"kind"`
	Value float64 `yaml:"value"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
}

// Requests configures per-step request generation.
type Requests struct {
	// Rate is the per-step probability that an eligible agent requests.
	Rate float64 `yaml:"rate"`

	Quantity Distribution `yaml:"quantity"`

	// MaxPerAgent caps requests one agent may submit in a single step.
	// Defaults to 1 when unset.
	MaxPerAgent int `yaml:"max_per_agent"`

	// CarryOver re-submits a step's unmet residue as fresh requests on the
	// next step. Off by default: unmet demand is recorded and dropped.
	CarryOver bool `yaml:"carry_over"`

	// ConsumeOnFulfill removes a fully satisfied request's quantity from
	// the recipient's balance, modelling needs that are used up rather
	// than hoarded. Consumed amounts are tracked in the step totals.
	ConsumeOnFulfill bool `yaml:"consume_on_fulfill"`
}

// Production configures per-step replenishment credited to donors.
type Production struct {
	// Rate is the base quantity produced per donor per step.
	Rate float64 `yaml:"rate"`

	// NoiseAmplitude modulates the rate with seeded simplex noise in
	// [1-amp, 1+amp], so supply drifts smoothly over a run. Zero disables
	// modulation. NoiseScale stretches the noise over step indices.
	NoiseAmplitude float64 `yaml:"noise_amplitude"`
	NoiseScale     float64 `yaml:"noise_scale"`
}

// Default returns a small, valid configuration useful as a starting point.
func Default() Config {
	return Config{
		Seed:     42,
		Steps:    100,
		Strategy: StrategyMultiSequential,
		Population: Population{
			Size:              25,
			DonorFraction:     0.6,
			RequesterFraction: 0.8,
			InitialBalance:    Distribution{Kind: DistUniform, Min: 0, Max: 20},
		},
		Requests: Requests{
			Rate:        0.3,
			Quantity:    Distribution{Kind: DistUniform, Min: 1, Max: 5},
			MaxPerAgent: 1,
		},
		Production: Production{Rate: 0.5},
	}
}

// Load reads a yaml config file.
func Load(path string) (Config, error) {
	var c Config
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate checks all parameter ranges. Returns an error wrapping
// ErrInvalidConfiguration on the first violation found.
func (c Config) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
	}

	if c.Steps < 0 {
		return fail("steps must be >= 0, got %d", c.Steps)
	}
	if c.Population.Size < 1 {
		return fail("population size must be >= 1, got %d", c.Population.Size)
	}
	if c.Population.DonorFraction < 0 || c.Population.DonorFraction > 1 {
		return fail("donor_fraction must be in [0, 1], got %v", c.Population.DonorFraction)
	}
	if c.Population.RequesterFraction < 0 || c.Population.RequesterFraction > 1 {
		return fail("requester_fraction must be in [0, 1], got %v", c.Population.RequesterFraction)
	}

	switch c.Strategy {
	case StrategySingleDonor, StrategyMultiSequential, StrategyMultiProportional:
	default:
		return fail("unknown strategy %q", c.Strategy)
	}

	if err := validateDistribution("population.initial_balance", c.Population.InitialBalance, false); err != nil {
		return err
	}
	if err := validateDistribution("requests.quantity", c.Requests.Quantity, true); err != nil {
		return err
	}

	if c.Requests.Rate < 0 || c.Requests.Rate > 1 {
		return fail("requests.rate must be in [0, 1], got %v", c.Requests.Rate)
	}
	if c.Requests.MaxPerAgent < 0 {
		return fail("requests.max_per_agent must be >= 0, got %d", c.Requests.MaxPerAgent)
	}
	if c.Production.Rate < 0 {
		return fail("production.rate must be >= 0, got %v", c.Production.Rate)
	}
	if c.Production.NoiseAmplitude < 0 || c.Production.NoiseAmplitude > 1 {
		return fail("production.noise_amplitude must be in [0, 1], got %v", c.Production.NoiseAmplitude)
	}

	// A run that generates requests needs someone able to donate; otherwise
	// every request is structurally unmeetable and the setup is a mistake,
	// not a scenario.
	if c.Requests.Rate > 0 && c.Population.DonorFraction == 0 {
		return fail("requests.rate > 0 requires donor_fraction > 0")
	}
	if c.Requests.Rate > 0 && c.Population.RequesterFraction == 0 {
		return fail("requests.rate > 0 requires requester_fraction > 0")
	}

	return nil
}

func validateDistribution(field string, d Distribution, allowNeed bool) error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", ErrInvalidConfiguration, field, fmt.Sprintf(format, args...))
	}

	switch d.Kind {
	case DistFixed:
		if d.Value < 0 {
			return fail("value must be >= 0, got %v", d.Value)
		}
	case DistUniform:
		if d.Min < 0 {
			return fail("min must be >= 0, got %v", d.Min)
		}
		if d.Max < d.Min {
			return fail("max must be >= min, got [%v, %v]", d.Min, d.Max)
		}
	case DistNeed:
		if !allowNeed {
			return fail("need-based distribution not allowed here")
		}
		if d.Value < 0 {
			return fail("target value must be >= 0, got %v", d.Value)
		}
	default:
		return fail("unknown kind %q", d.Kind)
	}
	return nil
}

// MaxRequestsPerAgent returns the effective per-agent request cap.
func (r Requests) MaxRequestsPerAgent() int {
	if r.MaxPerAgent == 0 {
		return 1
	}
	return r.MaxPerAgent
}
