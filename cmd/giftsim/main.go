// Command giftsim runs gift-economy simulations and parameter sweeps.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/talgya/gift-economy/internal/config"
	"github.com/talgya/gift-economy/internal/engine"
	"github.com/talgya/gift-economy/internal/persistence"
	"github.com/talgya/gift-economy/internal/sweep"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	app := &cli.App{
		Name:  "giftsim",
		Usage: "Gift economy of scale resource-flow simulator",
		Commands: []*cli.Command{
			runCmd,
			sweepCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "Run a single simulation",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "yaml configuration file (defaults to a built-in config)",
		},
		&cli.Int64Flag{
			Name:  "seed",
			Usage: "override the configured random seed",
		},
		&cli.IntFlag{
			Name:  "steps",
			Usage: "override the configured step count",
		},
		&cli.StringFlag{
			Name:  "db",
			Usage: "SQLite file to store the trajectory in",
		},
	},
	Action: func(ctx *cli.Context) error {
		cfg := config.Default()
		if path := ctx.String("config"); path != "" {
			var err error
			cfg, err = config.Load(path)
			if err != nil {
				return err
			}
		}
		if ctx.IsSet("seed") {
			cfg.Seed = ctx.Int64("seed")
		}
		if ctx.IsSet("steps") {
			cfg.Steps = ctx.Int("steps")
		}

		sim, err := engine.New(cfg)
		if err != nil {
			return err
		}
		traj, err := sim.Run()
		if err != nil {
			return err
		}

		printSummary(cfg.Strategy, traj)

		if dbPath := ctx.String("db"); dbPath != "" {
			return store(dbPath, []sweep.Result{{
				ID:         uuid.New(),
				Name:       "run",
				Config:     cfg,
				Trajectory: traj,
			}})
		}
		return nil
	},
}

var sweepCmd = &cli.Command{
	Name:  "sweep",
	Usage: "Run a manifest of configurations in parallel",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "manifest",
			Required: true,
			Usage:    "yaml sweep manifest",
		},
		&cli.IntFlag{
			Name:  "workers",
			Value: 4,
			Usage: "maximum concurrent runs",
		},
		&cli.StringFlag{
			Name:  "db",
			Usage: "SQLite file to store trajectories in",
		},
	},
	Action: func(ctx *cli.Context) error {
		manifest, err := sweep.LoadManifest(ctx.String("manifest"))
		if err != nil {
			return err
		}

		slog.Info("sweep starting", "runs", len(manifest.Runs), "workers", ctx.Int("workers"))
		results, err := sweep.Execute(ctx.Context, manifest.Runs, ctx.Int("workers"))
		if err != nil {
			return err
		}

		for _, r := range results {
			fmt.Printf("\n=== %s ===\n", r.Name)
			printSummary(r.Config.Strategy, r.Trajectory)
		}

		if dbPath := ctx.String("db"); dbPath != "" {
			return store(dbPath, results)
		}
		return nil
	},
}

// printSummary reports a finished run's final state and cumulative flows.
func printSummary(strategy string, traj *engine.Trajectory) {
	requested, donated, unmet, produced, consumed := 0.0, 0.0, 0.0, 0.0, 0.0
	for snap := range traj.All() {
		requested += snap.TotalRequested
		donated += snap.TotalDonated
		unmet += snap.TotalUnmet
		produced += snap.TotalProduced
		consumed += snap.TotalConsumed
	}
	last := traj.Last()

	fmt.Printf("strategy %s: %d steps, %d agents\n", strategy, last.Step, len(last.Balances))
	fmt.Printf("  requested %.2f  donated %.2f  unmet %.2f\n", requested, donated, unmet)
	fmt.Printf("  produced %.2f  consumed %.2f  final stock %.2f\n", produced, consumed, last.Balances.Total())
	fmt.Printf("  decentralization %.2f (concentration %.2f, distribution %.2f)\n",
		last.DecentralizationIndex, last.ConcentrationIndex, last.DistributionIndex)
}

// store persists results into the given SQLite file.
func store(path string, results []sweep.Result) error {
	db, err := persistence.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, r := range results {
		cfgYAML, err := yaml.Marshal(r.Config)
		if err != nil {
			return err
		}
		if err := db.SaveRun(r.ID, r.Name, string(cfgYAML), r.Trajectory); err != nil {
			return fmt.Errorf("save %q: %w", r.Name, err)
		}
		slog.Info("trajectory stored", "run", r.Name, "id", r.ID, "snapshots", r.Trajectory.Len())
	}
	return nil
}
