package output

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/modesim/core/metrics"
)

// SQLiteStore persists iteration statistics in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS iteration_stats (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id TEXT,
        iteration INTEGER,
        ts INTEGER,
        avg_executed REAL,
        record TEXT
    );`
	index := `CREATE INDEX IF NOT EXISTS iteration_stats_run ON iteration_stats (run_id, iteration);`
	for _, stmt := range []string{schema, index} {
		if _, err := db.Exec(stmt); err != nil {
			if cerr := db.Close(); cerr != nil {
				return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
			}
			return nil, err
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Append writes the stats to the database.
func (s *SQLiteStore) Append(ctx context.Context, stats metrics.IterationStats) error {
	b, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO iteration_stats (run_id, iteration, ts, avg_executed, record) VALUES (?, ?, ?, ?, ?)`,
		stats.RunID, stats.Iteration, stats.Time.UnixNano(), stats.AvgExecuted, string(b))
	return err
}

// Query returns stats matching q ordered by insertion.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]metrics.IterationStats, error) {
	var args []any
	query := `SELECT record FROM iteration_stats WHERE iteration >= ?`
	args = append(args, q.From)
	if q.To != nil {
		query += ` AND iteration <= ?`
		args = append(args, *q.To)
	}
	if q.RunID != "" {
		query += ` AND run_id = ?`
		args = append(args, q.RunID)
	}
	query += ` ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []metrics.IterationStats
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var st metrics.IterationStats
		if err := json.Unmarshal([]byte(data), &st); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		res = append(res, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
