package telemetry

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// Store manages the telemetry analysis database. Records ingested from
// JSONL logs land in a runs table keyed by run ID, so re-ingesting the
// same log is idempotent.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// NewStore creates or opens a telemetry store at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// modernc DSN pragma syntax; plain key=value parameters are ignored
	// by this driver.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		ts INTEGER NOT NULL,
		test_id TEXT NOT NULL,
		query TEXT NOT NULL,
		target_n INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		items_returned INTEGER NOT NULL,
		elapsed_seconds REAL NOT NULL,
		total_generated INTEGER NOT NULL,
		dup_count INTEGER NOT NULL,
		dup_rate REAL NOT NULL,
		backfill_rounds INTEGER NOT NULL,
		breaker_tripped INTEGER NOT NULL,
		pass_count INTEGER NOT NULL,
		failure_reason TEXT,
		top_duplicates_json TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_test ON runs(test_id);
	CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(ts);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Ingest upserts records into the runs table and returns how many were
// written.
func (s *Store) Ingest(records []Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO runs (
			run_id, ts, test_id, query, target_n, seed,
			items_returned, elapsed_seconds, total_generated, dup_count,
			dup_rate, backfill_rounds, breaker_tripped, pass_count,
			failure_reason, top_duplicates_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, rec := range records {
		topDup, err := json.Marshal(rec.TopDuplicates)
		if err != nil {
			return written, fmt.Errorf("failed to marshal top duplicates: %w", err)
		}
		breakerTripped := 0
		if rec.CircuitBreakerTriggered {
			breakerTripped = 1
		}
		if _, err := stmt.Exec(
			rec.RunID, rec.Timestamp, rec.TestID, rec.Query, rec.TargetN, rec.Seed,
			rec.ItemsReturned, rec.ElapsedSeconds, rec.TotalGenerated, rec.DupCount,
			rec.DupRate, rec.BackfillRounds, breakerTripped, rec.PassCount,
			rec.FailureReason, string(topDup),
		); err != nil {
			return written, fmt.Errorf("failed to insert run %s: %w", rec.RunID, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return written, fmt.Errorf("failed to commit ingest: %w", err)
	}
	return written, nil
}

// TestAggregate summarizes all ingested runs for one test ID.
type TestAggregate struct {
	TestID          string
	Runs            int
	Passes          int
	PassRate        float64
	MeanDupRate     float64
	MeanElapsed     float64
	BreakerTripRate float64
}

// Aggregates returns per-test summaries over every ingested run, ordered
// by test ID.
func (s *Store) Aggregates() ([]TestAggregate, error) {
	rows, err := s.db.Query(`
		SELECT test_id,
		       COUNT(*),
		       SUM(CASE WHEN items_returned >= target_n THEN 1 ELSE 0 END),
		       AVG(dup_rate),
		       AVG(elapsed_seconds),
		       AVG(breaker_tripped)
		FROM runs
		GROUP BY test_id
		ORDER BY test_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query aggregates: %w", err)
	}
	defer rows.Close()

	var aggs []TestAggregate
	for rows.Next() {
		var a TestAggregate
		if err := rows.Scan(&a.TestID, &a.Runs, &a.Passes, &a.MeanDupRate, &a.MeanElapsed, &a.BreakerTripRate); err != nil {
			return nil, fmt.Errorf("failed to scan aggregate: %w", err)
		}
		if a.Runs > 0 {
			a.PassRate = float64(a.Passes) / float64(a.Runs)
		}
		aggs = append(aggs, a)
	}
	return aggs, rows.Err()
}

// FailureReasons returns the distinct failure reasons for a test ID with
// occurrence counts, most frequent first.
func (s *Store) FailureReasons(testID string) (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT failure_reason, COUNT(*)
		FROM runs
		WHERE test_id = ? AND failure_reason <> ''
		GROUP BY failure_reason
		ORDER BY COUNT(*) DESC`, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to query failure reasons: %w", err)
	}
	defer rows.Close()

	reasons := make(map[string]int)
	for rows.Next() {
		var reason string
		var count int
		if err := rows.Scan(&reason, &count); err != nil {
			return nil, fmt.Errorf("failed to scan failure reason: %w", err)
		}
		reasons[reason] = count
	}
	return reasons, rows.Err()
}
