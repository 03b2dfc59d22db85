// Package store persists solve runs: every construction level of a
// knowledge hierarchy is kept as a serialized game blob, keyed by a run
// identifier, so expensive iterations can be inspected or resumed later
// without recomputation.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Run describes one recorded solve run.
type Run struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Level is one stored construction level of a run.
type Level struct {
	RunID uuid.UUID
	Level int
	Fixed bool
	Data  []byte
}

// Store is a SQLite-backed archive of solve runs.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the archive at path. Use ":memory:" for an
// ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS levels (
	run_id TEXT NOT NULL REFERENCES runs(id),
	level  INTEGER NOT NULL,
	fixed  INTEGER NOT NULL,
	data   BLOB NOT NULL,
	PRIMARY KEY (run_id, level)
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// CreateRun records a new run and returns its identifier.
func (s *Store) CreateRun(ctx context.Context, name string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, name, created_at) VALUES (?, ?, ?)`,
		id.String(), name, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// SaveLevel stores one serialized construction level of a run. fixed
// marks the level at which the iteration found its fixed point.
func (s *Store) SaveLevel(ctx context.Context, runID uuid.UUID, level int, fixed bool, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO levels (run_id, level, fixed, data) VALUES (?, ?, ?, ?)`,
		runID.String(), level, boolInt(fixed), data)
	if err != nil {
		return fmt.Errorf("insert level %d: %w", level, err)
	}
	return nil
}

// LoadLevel returns one stored level of a run.
func (s *Store) LoadLevel(ctx context.Context, runID uuid.UUID, level int) (Level, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT fixed, data FROM levels WHERE run_id = ? AND level = ?`,
		runID.String(), level)
	out := Level{RunID: runID, Level: level}
	var fixed int
	if err := row.Scan(&fixed, &out.Data); err != nil {
		return Level{}, fmt.Errorf("load level %d: %w", level, err)
	}
	out.Fixed = fixed != 0
	return out, nil
}

// Levels returns every stored level of a run in ascending order.
func (s *Store) Levels(ctx context.Context, runID uuid.UUID) ([]Level, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT level, fixed, data FROM levels WHERE run_id = ? ORDER BY level`,
		runID.String())
	if err != nil {
		return nil, fmt.Errorf("select levels: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Level
	for rows.Next() {
		l := Level{RunID: runID}
		var fixed int
		if err := rows.Scan(&l.Level, &fixed, &l.Data); err != nil {
			return nil, fmt.Errorf("scan level: %w", err)
		}
		l.Fixed = fixed != 0
		out = append(out, l)
	}
	return out, rows.Err()
}

// Runs lists recorded runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Run
	for rows.Next() {
		var r Run
		var id, created string
		if err := rows.Scan(&id, &r.Name, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse run id: %w", err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse run timestamp: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
