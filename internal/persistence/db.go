// Package persistence provides optional SQLite storage for run trajectories.
// The simulation core never touches it; the CLI wires it in when asked to
// keep results for later analysis.
package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/gift-economy/internal/engine"
)

// DB wraps a SQLite connection for trajectory storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		config TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		run_id TEXT NOT NULL,
		step INTEGER NOT NULL,
		total_requested REAL NOT NULL,
		total_donated REAL NOT NULL,
		total_unmet REAL NOT NULL,
		total_produced REAL NOT NULL,
		total_consumed REAL NOT NULL,
		waste REAL NOT NULL,
		concentration_index REAL NOT NULL,
		distribution_index REAL NOT NULL,
		decentralization_index REAL NOT NULL,
		balances_json TEXT NOT NULL,
		PRIMARY KEY (run_id, step)
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_run ON snapshots(run_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveRun records one run's configuration and full trajectory.
func (db *DB) SaveRun(id uuid.UUID, name, configYAML string, traj *engine.Trajectory) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT INTO runs (id, name, config, created_at) VALUES (?, ?, ?, ?)",
		id.String(), name, configYAML, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO snapshots (
			run_id, step,
			total_requested, total_donated, total_unmet,
			total_produced, total_consumed, waste,
			concentration_index, distribution_index, decentralization_index,
			balances_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for snap := range traj.All() {
		balances, err := json.Marshal(snap.Balances)
		if err != nil {
			return fmt.Errorf("marshal balances: %w", err)
		}
		if _, err := stmt.Exec(
			id.String(), snap.Step,
			snap.TotalRequested, snap.TotalDonated, snap.TotalUnmet,
			snap.TotalProduced, snap.TotalConsumed, snap.Waste,
			snap.ConcentrationIndex, snap.DistributionIndex, snap.DecentralizationIndex,
			string(balances),
		); err != nil {
			return fmt.Errorf("insert snapshot %d: %w", snap.Step, err)
		}
	}

	return tx.Commit()
}

// SnapshotCount returns how many snapshots a run has stored.
func (db *DB) SnapshotCount(id uuid.UUID) (int, error) {
	var n int
	err := db.conn.Get(&n, "SELECT COUNT(*) FROM snapshots WHERE run_id = ?", id.String())
	return n, err
}

// RunNames lists stored runs, oldest first.
func (db *DB) RunNames() ([]string, error) {
	var names []string
	err := db.conn.Select(&names, "SELECT name FROM runs ORDER BY created_at, id")
	return names, err
}
