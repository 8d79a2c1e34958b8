// Package sweep runs independent simulation configurations in parallel.
// Runs share nothing: each owns its registry, randomness source, and
// trajectory, so the only coordination is the worker limit.
package sweep

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/talgya/gift-economy/internal/config"
	"github.com/talgya/gift-economy/internal/engine"
)

// Run is one named configuration inside a sweep.
type Run struct {
	Name   string        `yaml:"name"`
	Config config.Config `yaml:"config"`
}

// Manifest is a yaml file listing the sweep's runs.
type Manifest struct {
	Runs []Run `yaml:"runs"`
}

// LoadManifest reads and validates a sweep manifest. Every run must carry a
// valid configuration before anything executes.
func LoadManifest(path string) (Manifest, error) {
	var m Manifest
	raw, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return m, fmt.Errorf("%s: %w", path, err)
	}
	if len(m.Runs) == 0 {
		return m, fmt.Errorf("%w: manifest has no runs", config.ErrInvalidConfiguration)
	}
	for i, r := range m.Runs {
		if r.Name == "" {
			return m, fmt.Errorf("%w: run %d has no name", config.ErrInvalidConfiguration, i)
		}
		if err := r.Config.Validate(); err != nil {
			return m, fmt.Errorf("run %q: %w", r.Name, err)
		}
	}
	return m, nil
}

// Result pairs one run with its completed trajectory.
type Result struct {
	ID         uuid.UUID
	Name       string
	Config     config.Config
	Trajectory *engine.Trajectory
}

// Execute runs every configuration, at most workers at a time. The first
// failing run cancels the rest; results keep manifest order.
func Execute(ctx context.Context, runs []Run, workers int) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, len(runs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, r := range runs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sim, err := engine.New(r.Config)
			if err != nil {
				return fmt.Errorf("run %q: %w", r.Name, err)
			}
			traj, err := sim.Run()
			if err != nil {
				return fmt.Errorf("run %q: %w", r.Name, err)
			}
			results[i] = Result{
				ID:         uuid.New(),
				Name:       r.Name,
				Config:     r.Config,
				Trajectory: traj,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
