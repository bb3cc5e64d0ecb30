package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/pthm-cable/petri/culture"
)

// ErrNotFound is returned when no run has the requested id.
var ErrNotFound = errors.New("run not found")

// Record is one completed run. Series is populated by Get and omitted
// by List.
type Record struct {
	ID             string         `json:"id"`
	CellLine       string         `json:"cell_line"`
	InitialCells   int            `json:"initial_cells"`
	Duration       float64        `json:"duration"`
	DT             float64        `json:"dt"`
	Seed           int64          `json:"seed"`
	StartedAt      time.Time      `json:"started_at"`
	ElapsedMS      int64          `json:"elapsed_ms"`
	Snapshots      int            `json:"snapshots"`
	FinalTotal     int            `json:"final_total"`
	FinalViable    int            `json:"final_viable"`
	FinalViability float64        `json:"final_viability"`
	Series         culture.Series `json:"series,omitempty"`
}

// Store persists run records in a SQLite database.
type Store struct {
	mu sync.RWMutex
	db *sql.DB
}

// Open creates or opens the database at path and initializes the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Save stores one completed run.
func (s *Store) Save(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		return fmt.Errorf("record ID is required")
	}

	seriesJSON, err := json.Marshal(rec.Series)
	if err != nil {
		return fmt.Errorf("failed to marshal series: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, cell_line, initial_cells, duration, dt, seed,
			started_at, elapsed_ms, snapshots,
			final_total, final_viable, final_viability, series
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.CellLine, rec.InitialCells, rec.Duration, rec.DT, rec.Seed,
		rec.StartedAt.UTC().Format(time.RFC3339Nano), rec.ElapsedMS, rec.Snapshots,
		rec.FinalTotal, rec.FinalViable, rec.FinalViability, string(seriesJSON))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by id, series included.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		rec        Record
		startedAt  string
		seriesJSON string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, cell_line, initial_cells, duration, dt, seed,
		       started_at, elapsed_ms, snapshots,
		       final_total, final_viable, final_viability, series
		FROM runs WHERE id = ?
	`, id).Scan(
		&rec.ID, &rec.CellLine, &rec.InitialCells, &rec.Duration, &rec.DT, &rec.Seed,
		&startedAt, &rec.ElapsedMS, &rec.Snapshots,
		&rec.FinalTotal, &rec.FinalViable, &rec.FinalViability, &seriesJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to get run: %w", err)
	}

	rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return Record{}, fmt.Errorf("failed to parse started_at: %w", err)
	}
	if err := json.Unmarshal([]byte(seriesJSON), &rec.Series); err != nil {
		return Record{}, fmt.Errorf("failed to unmarshal series: %w", err)
	}

	return rec, nil
}

// List returns runs newest first, series omitted. A line narrows the
// listing to one cell line; limit <= 0 lists everything.
func (s *Store) List(ctx context.Context, line string, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, cell_line, initial_cells, duration, dt, seed,
		       started_at, elapsed_ms, snapshots,
		       final_total, final_viable, final_viability
		FROM runs
	`
	var args []interface{}
	if line != "" {
		query += ` WHERE cell_line = ?`
		args = append(args, line)
	}
	query += ` ORDER BY rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec       Record
			startedAt string
		)
		if err := rows.Scan(
			&rec.ID, &rec.CellLine, &rec.InitialCells, &rec.Duration, &rec.DT, &rec.Seed,
			&startedAt, &rec.ElapsedMS, &rec.Snapshots,
			&rec.FinalTotal, &rec.FinalViable, &rec.FinalViability,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse started_at: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return records, nil
}

// Count returns the number of stored runs.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
