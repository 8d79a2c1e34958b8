package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative steps", func(c *Config) { c.Steps = -1 }},
		{"empty population", func(c *Config) { c.Population.Size = 0 }},
		{"donor fraction above one", func(c *Config) { c.Population.DonorFraction = 1.5 }},
		{"negative requester fraction", func(c *Config) { c.Population.RequesterFraction = -0.1 }},
		{"unknown strategy", func(c *Config) { c.Strategy = "auction" }},
		{"rate above one", func(c *Config) { c.Requests.Rate = 1.1 }},
		{"negative max per agent", func(c *Config) { c.Requests.MaxPerAgent = -2 }},
		{"negative production rate", func(c *Config) { c.Production.Rate = -1 }},
		{"noise amplitude above one", func(c *Config) { c.Production.NoiseAmplitude = 2 }},
		{"requests without donors", func(c *Config) { c.Population.DonorFraction = 0 }},
		{"requests without requesters", func(c *Config) { c.Population.RequesterFraction = 0 }},
		{"unknown balance distribution", func(c *Config) { c.Population.InitialBalance.Kind = "pareto" }},
		{"need-based initial balance", func(c *Config) { c.Population.InitialBalance = Distribution{Kind: DistNeed, Value: 5} }},
		{"negative fixed quantity", func(c *Config) { c.Requests.Quantity = Distribution{Kind: DistFixed, Value: -1} }},
		{"inverted uniform bounds", func(c *Config) { c.Requests.Quantity = Distribution{Kind: DistUniform, Min: 5, Max: 1} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfiguration)
		})
	}
}

func TestValidateAllowsZeroRateWithoutRoles(t *testing.T) {
	cfg := Default()
	cfg.Requests.Rate = 0
	cfg.Population.DonorFraction = 0
	cfg.Population.RequesterFraction = 0
	assert.NoError(t, cfg.Validate())
}

func TestNeedBasedQuantityAllowed(t *testing.T) {
	cfg := Default()
	cfg.Requests.Quantity = Distribution{Kind: DistNeed, Value: 10}
	assert.NoError(t, cfg.Validate())
}

func TestMaxRequestsPerAgentDefault(t *testing.T) {
	assert.Equal(t, 1, Requests{}.MaxRequestsPerAgent())
	assert.Equal(t, 3, Requests{MaxPerAgent: 3}.MaxRequestsPerAgent())
}

func TestLoad(t *testing.T) {
	raw := `
seed: 99
steps: 10
strategy: multi-donor-proportional
population:
  size: 8
  donor_fraction: 0.5
  requester_fraction: 0.5
  initial_balance:
    kind: uniform
    min: 1
    max: 4
requests:
  rate: 0.25
  quantity:
    kind: fixed
    value: 2
production:
  rate: 0.1
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, 10, cfg.Steps)
	assert.Equal(t, StrategyMultiProportional, cfg.Strategy)
	assert.Equal(t, 8, cfg.Population.Size)
	assert.Equal(t, DistUniform, cfg.Population.InitialBalance.Kind)
	assert.Equal(t, 2.0, cfg.Requests.Quantity.Value)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
