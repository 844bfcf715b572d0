package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// QuerySetSeparator joins the queries of one run into search_results.query_set.
const QuerySetSeparator = " | "

// Run summarizes one recorded invocation.
type Run struct {
	RunID            int64     `json:"run_id" yaml:"run_id"`
	Command          string    `json:"command" yaml:"command"`
	FailedQueries    int       `json:"failed_queries" yaml:"failed_queries"`
	CreatedAt        time.Time `json:"created_at" yaml:"created_at"`
	ResultCount      int       `json:"result_count" yaml:"result_count"`
	IntegrationCount int       `json:"integration_count" yaml:"integration_count"`
	DetectionCount   int       `json:"detection_count" yaml:"detection_count"`
}

// SearchRecord is one ranked result to store.
type SearchRecord struct {
	URL             string
	Score           float64
	IsDocumentation bool
}

// IntegrationRecord is one generation outcome to store.
type IntegrationRecord struct {
	ServiceName     string `json:"service_name" yaml:"service_name"`
	IntegrationType string `json:"integration_type" yaml:"integration_type"`
	Status          string `json:"status" yaml:"status"`
	OutputDir       string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	Error           string `json:"error,omitempty" yaml:"error,omitempty"`
}

// DetectionRecord is one type classification to store. SheetRow is 0 when
// the detection did not come from a spreadsheet.
type DetectionRecord struct {
	ServiceName  string
	Action       string
	DetectedType string
	SheetRow     int
	Error        string
}

// CreateRun inserts a run and returns its run_id.
func (db *DB) CreateRun(command string, failedQueries int) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO runs (command, failed_queries)
		VALUES (?, ?)
	`, command, failedQueries)
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return runID, nil
}

// InsertSearchResults stores ranked results in order in one transaction.
func (db *DB) InsertSearchResults(runID int64, queries []string, records []SearchRecord) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after Commit

	stmt, err := tx.Prepare(`
		INSERT INTO search_results (run_id, query_set, url, score, is_documentation, position)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	querySet := strings.Join(queries, QuerySetSeparator)
	for i, r := range records {
		if _, err := stmt.Exec(runID, querySet, r.URL, r.Score, r.IsDocumentation, i); err != nil {
			return fmt.Errorf("failed to insert search result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit search results: %w", err)
	}
	return nil
}

// InsertIntegration stores a generation outcome.
func (db *DB) InsertIntegration(runID int64, rec IntegrationRecord) error {
	_, err := db.Exec(`
		INSERT INTO integrations (run_id, service_name, integration_type, status, output_dir, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, rec.ServiceName, rec.IntegrationType, rec.Status, nullString(rec.OutputDir), nullString(rec.Error))
	if err != nil {
		return fmt.Errorf("failed to insert integration: %w", err)
	}
	return nil
}

// InsertTypeDetection stores a type classification.
func (db *DB) InsertTypeDetection(runID int64, rec DetectionRecord) error {
	var sheetRow sql.NullInt64
	if rec.SheetRow > 0 {
		sheetRow = sql.NullInt64{Int64: int64(rec.SheetRow), Valid: true}
	}
	_, err := db.Exec(`
		INSERT INTO type_detections (run_id, service_name, action, detected_type, sheet_row, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, rec.ServiceName, rec.Action, rec.DetectedType, sheetRow, nullString(rec.Error))
	if err != nil {
		return fmt.Errorf("failed to insert type detection: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first with per-table counts.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	rows, err := db.Query(`
		SELECT r.run_id, r.command, r.failed_queries, r.created_at,
		       (SELECT COUNT(*) FROM search_results s WHERE s.run_id = r.run_id),
		       (SELECT COUNT(*) FROM integrations i WHERE i.run_id = r.run_id),
		       (SELECT COUNT(*) FROM type_detections d WHERE d.run_id = r.run_id)
		FROM runs r
		ORDER BY r.run_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.Command, &r.FailedQueries, &r.CreatedAt,
			&r.ResultCount, &r.IntegrationCount, &r.DetectionCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListIntegrations returns the integrations recorded for runID.
func (db *DB) ListIntegrations(runID int64) ([]IntegrationRecord, error) {
	rows, err := db.Query(`
		SELECT service_name, integration_type, status, COALESCE(output_dir, ''), COALESCE(error, '')
		FROM integrations
		WHERE run_id = ?
		ORDER BY integration_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list integrations: %w", err)
	}
	defer rows.Close()

	var out []IntegrationRecord
	for rows.Next() {
		var rec IntegrationRecord
		if err := rows.Scan(&rec.ServiceName, &rec.IntegrationType, &rec.Status, &rec.OutputDir, &rec.Error); err != nil {
			return nil, fmt.Errorf("failed to scan integration: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListSearchResults returns the stored results of runID in rank order.
func (db *DB) ListSearchResults(runID int64) ([]SearchRecord, error) {
	rows, err := db.Query(`
		SELECT url, score, is_documentation
		FROM search_results
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list search results: %w", err)
	}
	defer rows.Close()

	var out []SearchRecord
	for rows.Next() {
		var rec SearchRecord
		if err := rows.Scan(&rec.URL, &rec.Score, &rec.IsDocumentation); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
