package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const DefaultPath = "waypoint.db"
const tableName = "runs"

// fixed width so that created_at sorts as text
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Run is the summary of one finished search. Only the outcome is kept; the
// frontier and predecessor state of a run is never persisted.
type Run struct {
	ID        string
	Cols      int
	Rows      int
	Diagonal  bool
	Seed      int64
	StartI    int
	StartJ    int
	GoalI     int
	GoalJ     int
	Found     bool
	Cost      float64
	PathLen   int
	Expanded  int
	Steps     int
	CreatedAt time.Time
}

type Store struct {
	db     *sql.DB
	logger *log.Logger
}

func Open(path string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Default()
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run history %s: %w", path, err)
	}

	store := &Store{db: db, logger: logger}
	if err := store.createTable(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// createTable creates the runs table if it does not exist.
func (store *Store) createTable() error {
	const createTableSQL = `
	CREATE TABLE IF NOT EXISTS ` + tableName + ` (
		id TEXT PRIMARY KEY,
		cols INTEGER NOT NULL,
		rows INTEGER NOT NULL,
		diagonal INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		start_i INTEGER NOT NULL,
		start_j INTEGER NOT NULL,
		goal_i INTEGER NOT NULL,
		goal_j INTEGER NOT NULL,
		found INTEGER NOT NULL,
		cost REAL NOT NULL,
		path_len INTEGER NOT NULL,
		expanded INTEGER NOT NULL,
		steps INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);`

	_, err := store.db.Exec(createTableSQL)
	if err != nil {
		return fmt.Errorf("failed to execute CREATE TABLE: %w", err)
	}
	store.logger.Debug("Run history table ensured.")
	return nil
}

// Save inserts run, assigning an ID and timestamp when they are missing.
func (store *Store) Save(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	const insertSQL = `
	INSERT INTO ` + tableName + ` (id, cols, rows, diagonal, seed, start_i, start_j, goal_i, goal_j,
		found, cost, path_len, expanded, steps, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	_, err := store.db.ExecContext(ctx, insertSQL,
		run.ID, run.Cols, run.Rows, run.Diagonal, run.Seed,
		run.StartI, run.StartJ, run.GoalI, run.GoalJ,
		run.Found, run.Cost, run.PathLen, run.Expanded, run.Steps,
		run.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return Run{}, fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}

	return run, nil
}

// List returns a page of runs, newest first.
func (store *Store) List(ctx context.Context, limit, offset int) ([]Run, error) {
	const selectSQL = `
	SELECT id, cols, rows, diagonal, seed, start_i, start_j, goal_i, goal_j,
		found, cost, path_len, expanded, steps, created_at
	FROM ` + tableName + `
	ORDER BY created_at DESC, rowid DESC
	LIMIT ? OFFSET ?;`

	rows, err := store.db.QueryContext(ctx, selectSQL, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var createdAt string
		err := rows.Scan(&run.ID, &run.Cols, &run.Rows, &run.Diagonal, &run.Seed,
			&run.StartI, &run.StartJ, &run.GoalI, &run.GoalJ,
			&run.Found, &run.Cost, &run.PathLen, &run.Expanded, &run.Steps, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		parsed, err := time.Parse(timeLayout, createdAt)
		if err == nil {
			run.CreatedAt = parsed
		} else {
			store.logger.Warn("Time parsing error for run", "id", run.ID, "raw", createdAt, "error", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}

	return runs, nil
}

func (store *Store) Count(ctx context.Context) (int, error) {
	const countSQL = `SELECT COUNT(*) FROM ` + tableName + `;`
	var count int
	err := store.db.QueryRowContext(ctx, countSQL).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get run count: %w", err)
	}
	return count, nil
}

// Stats aggregates every stored run.
type Stats struct {
	Runs        int
	Solved      int
	AvgCost     float64
	AvgExpanded float64
}

func (store *Store) Stats(ctx context.Context) (Stats, error) {
	const statsSQL = `
	SELECT COUNT(*), COALESCE(SUM(found), 0),
		COALESCE(AVG(CASE WHEN found THEN cost END), 0),
		COALESCE(AVG(expanded), 0)
	FROM ` + tableName + `;`

	var stats Stats
	err := store.db.QueryRowContext(ctx, statsSQL).Scan(&stats.Runs, &stats.Solved, &stats.AvgCost, &stats.AvgExpanded)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to aggregate runs: %w", err)
	}
	return stats, nil
}

func (store *Store) Close() error {
	return store.db.Close()
}
