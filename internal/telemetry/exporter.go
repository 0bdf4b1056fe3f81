// Package telemetry persists one diagnostic record per coordinator run to
// an append-only JSONL log, and offers a SQLite ingest store for offline
// analysis of accumulated records.
package telemetry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"listforge/internal/coordinator"
)

// Record is one run's telemetry: identity, outcome, and the flattened
// run diagnostics. Consumers tail the JSONL file, one object per line.
type Record struct {
	RunID     string `json:"runId"`
	Timestamp int64  `json:"ts"` // Unix milliseconds

	TestID         string  `json:"testId"`
	Query          string  `json:"query"`
	TargetN        int     `json:"targetN"`
	Seed           int64   `json:"seed"`
	ItemsReturned  int     `json:"itemsReturned"`
	ElapsedSeconds float64 `json:"elapsedSeconds"`

	coordinator.RunDiagnostics
}

// NewRecord builds a Record with a fresh run ID and current timestamp.
func NewRecord(testID, query string, targetN int, seed int64, itemsReturned int, elapsed time.Duration, diag coordinator.RunDiagnostics) Record {
	return Record{
		RunID:          uuid.NewString(),
		Timestamp:      time.Now().UnixMilli(),
		TestID:         testID,
		Query:          query,
		TargetN:        targetN,
		Seed:           seed,
		ItemsReturned:  itemsReturned,
		ElapsedSeconds: elapsed.Seconds(),
		RunDiagnostics: diag,
	}
}

// Exporter appends records to a JSONL file. Appends are mutex-guarded so
// concurrent seed runs can share one Exporter; each record lands as a
// single complete line.
type Exporter struct {
	mu   sync.Mutex
	file *os.File
	path string
}

// NewExporter opens (or creates) the JSONL log at path for appending.
func NewExporter(path string) (*Exporter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open telemetry log: %w", err)
	}
	return &Exporter{file: file, path: path}, nil
}

// Append writes one record as a JSON line.
func (e *Exporter) Append(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal telemetry record: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.file == nil {
		return fmt.Errorf("telemetry exporter is closed")
	}
	if _, err := e.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append telemetry record: %w", err)
	}
	return nil
}

// Path returns the log file path.
func (e *Exporter) Path() string {
	return e.path
}

// Close closes the underlying file. Append after Close returns an error.
func (e *Exporter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.file == nil {
		return nil
	}
	err := e.file.Close()
	e.file = nil
	return err
}

// ReadLog loads all records from a JSONL telemetry log. Malformed lines
// are skipped; a partially written trailing line must not poison offline
// analysis.
func ReadLog(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open telemetry log: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("failed to read telemetry log: %w", err)
	}
	return records, nil
}
