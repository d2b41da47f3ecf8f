// Package store archives H-k stacking runs in a SQLite database.
//
// Each run stores its parameters, the peak of the weighted surface and every
// grid cell. NaN cells are stored as NULL.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"
	_ "modernc.org/sqlite"
)

const schemaVersion = 1

var (
	ErrNotFound     = errors.New("store: run not found")
	ErrGridMismatch = errors.New("store: surface shape does not match grid")
)

// Store is an open run archive.
type Store struct {
	db   *sql.DB
	path string
}

// Run is a stacking run to archive.
type Run struct {
	CreatedAt          time.Time
	Channel            string
	Traces             int
	Vp                 float64
	VelocityMode       string
	VelocityConsistent bool
	RootOrder          float64
	Phases             []string
	Weights            []float64

	H, K    []float64
	Surface *mat.Dense // len(H) x len(K)
}

// Summary is the stored metadata of a run without its grid cells.
type Summary struct {
	ID                 int64
	CreatedAt          time.Time
	Channel            string
	Traces             int
	Vp                 float64
	VelocityMode       string
	VelocityConsistent bool
	RootOrder          float64
	Phases             []string
	Weights            []float64

	// Peak of the surface, NaN when every cell is NaN.
	PeakH, PeakK, PeakAmplitude float64
}

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("store: db path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA foreign_keys=ON;`,
		`PRAGMA busy_timeout=5000;`,
		`CREATE TABLE IF NOT EXISTS hk_meta (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);`,
		`CREATE TABLE IF NOT EXISTS hk_runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  created_at TEXT NOT NULL,
  channel TEXT NOT NULL,
  traces INTEGER NOT NULL,
  vp REAL NOT NULL,
  velocity_mode TEXT NOT NULL,
  velocity_consistent INTEGER NOT NULL,
  root_order REAL NOT NULL,
  phases_json TEXT NOT NULL,
  weights_json TEXT NOT NULL,
  rows INTEGER NOT NULL,
  cols INTEGER NOT NULL,
  peak_h REAL,
  peak_k REAL,
  peak_amplitude REAL
);`,
		`CREATE TABLE IF NOT EXISTS hk_cells (
  run_id INTEGER NOT NULL,
  row INTEGER NOT NULL,
  col INTEGER NOT NULL,
  h REAL NOT NULL,
  k REAL NOT NULL,
  amplitude REAL,
  PRIMARY KEY(run_id, row, col),
  FOREIGN KEY(run_id) REFERENCES hk_runs(id) ON DELETE CASCADE
);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: init schema: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, `
INSERT INTO hk_meta(key, value) VALUES('schema_version', ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value
`, fmt.Sprintf("%d", schemaVersion)); err != nil {
		return fmt.Errorf("store: write schema_version: %w", err)
	}
	return nil
}

func nullable(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v)}
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// SaveRun stores r in a single transaction and returns its id.
func (s *Store) SaveRun(ctx context.Context, r Run) (int64, error) {
	if r.Surface == nil {
		return 0, fmt.Errorf("%w: surface is nil", ErrGridMismatch)
	}
	rows, cols := r.Surface.Dims()
	if rows != len(r.H) || cols != len(r.K) {
		return 0, fmt.Errorf("%w: surface %dx%d, grid %dx%d", ErrGridMismatch, rows, cols, len(r.H), len(r.K))
	}

	phases, err := json.Marshal(r.Phases)
	if err != nil {
		return 0, fmt.Errorf("store: encode phases: %w", err)
	}
	weights, err := json.Marshal(r.Weights)
	if err != nil {
		return 0, fmt.Errorf("store: encode weights: %w", err)
	}

	peakH, peakK, peakAmp := math.NaN(), math.NaN(), math.NaN()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := r.Surface.At(i, j)
			if !math.IsNaN(v) && (math.IsNaN(peakAmp) || v > peakAmp) {
				peakH, peakK, peakAmp = r.H[i], r.K[j], v
			}
		}
	}

	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
INSERT INTO hk_runs(created_at, channel, traces, vp, velocity_mode, velocity_consistent, root_order,
  phases_json, weights_json, rows, cols, peak_h, peak_k, peak_amplitude)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		createdAt.UTC().Format(time.RFC3339Nano), r.Channel, r.Traces, r.Vp, r.VelocityMode, r.VelocityConsistent, r.RootOrder,
		string(phases), string(weights), rows, cols, nullable(peakH), nullable(peakK), nullable(peakAmp))
	if err != nil {
		return 0, fmt.Errorf("store: insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	insertCell, err := tx.PrepareContext(ctx, `INSERT INTO hk_cells(run_id, row, col, h, k, amplitude) VALUES(?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer insertCell.Close()

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if _, err := insertCell.ExecContext(ctx, id, i, j, r.H[i], r.K[j], nullable(r.Surface.At(i, j))); err != nil {
				return 0, fmt.Errorf("store: insert cell (%d,%d): %w", i, j, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

const summaryColumns = `id, created_at, channel, traces, vp, velocity_mode, velocity_consistent, root_order,
  phases_json, weights_json, peak_h, peak_k, peak_amplitude`

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (Summary, error) {
	var (
		s                     Summary
		createdAt             string
		phases, weights       string
		peakH, peakK, peakAmp sql.NullFloat64
	)
	if err := row.Scan(&s.ID, &createdAt, &s.Channel, &s.Traces, &s.Vp, &s.VelocityMode, &s.VelocityConsistent,
		&s.RootOrder, &phases, &weights, &peakH, &peakK, &peakAmp); err != nil {
		return Summary{}, err
	}

	var err error
	if s.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return Summary{}, fmt.Errorf("store: run %d created_at: %w", s.ID, err)
	}
	if err := json.Unmarshal([]byte(phases), &s.Phases); err != nil {
		return Summary{}, fmt.Errorf("store: run %d phases: %w", s.ID, err)
	}
	if err := json.Unmarshal([]byte(weights), &s.Weights); err != nil {
		return Summary{}, fmt.Errorf("store: run %d weights: %w", s.ID, err)
	}
	s.PeakH, s.PeakK, s.PeakAmplitude = orNaN(peakH), orNaN(peakK), orNaN(peakAmp)
	return s, nil
}

// Runs lists all stored runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+summaryColumns+` FROM hk_runs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Record is a fully loaded run.
type Record struct {
	Summary
	H, K    []float64
	Surface *mat.Dense
}

// Load returns run id with its grid and surface.
func (s *Store) Load(ctx context.Context, id int64) (*Record, error) {
	sum, err := scanSummary(s.db.QueryRowContext(ctx, `SELECT `+summaryColumns+` FROM hk_runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	var nRows, nCols int
	if err := s.db.QueryRowContext(ctx, `SELECT rows, cols FROM hk_runs WHERE id = ?`, id).Scan(&nRows, &nCols); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT row, col, h, k, amplitude FROM hk_cells WHERE run_id = ? ORDER BY row, col`, id)
	if err != nil {
		return nil, fmt.Errorf("store: load cells: %w", err)
	}
	defer rows.Close()

	h := make([]float64, nRows)
	k := make([]float64, nCols)
	surface := mat.NewDense(nRows, nCols, nil)
	for rows.Next() {
		var (
			i, j   int
			hv, kv float64
			amp    sql.NullFloat64
		)
		if err := rows.Scan(&i, &j, &hv, &kv, &amp); err != nil {
			return nil, err
		}
		h[i], k[j] = hv, kv
		surface.Set(i, j, orNaN(amp))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &Record{Summary: sum, H: h, K: k, Surface: surface}, nil
}
