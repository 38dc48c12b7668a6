package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/feldmangn/nih-awards-tracker/internal/model"
)

var db *sql.DB

// ErrNotInitialized is returned when tracking calls arrive before InitDB.
// Untracked CLI runs with an empty run ID hit this path and ignore it.
var ErrNotInitialized = errors.New("store: database not initialized")

// InitDB opens the tracking database and creates the tables if absent.
func InitDB(dbPath string) error {
	var err error
	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}

	runTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		spec TEXT,
		status TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);
	`
	resultTable := `
	CREATE TABLE IF NOT EXISTS agency_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		label TEXT,
		slug TEXT,
		status TEXT,
		row_count INTEGER,
		recipient_count INTEGER,
		csv_path TEXT,
		json_path TEXT,
		recipients_path TEXT,
		error TEXT,
		started_at DATETIME,
		finished_at DATETIME
	);
	`
	errorTable := `
	CREATE TABLE IF NOT EXISTS run_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		label TEXT,
		error_message TEXT,
		created_at DATETIME
	);
	`

	for _, stmt := range []string{runTable, resultTable, errorTable} {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun stores a new batch run with its spec.
func SaveRun(runID string, spec model.RunSpec) error {
	if db == nil {
		return ErrNotInitialized
	}
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = db.Exec(`INSERT INTO runs (id, spec, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		runID, specJSON, "pending", now, now)
	return err
}

// UpdateRunStatus updates a run's status.
func UpdateRunStatus(runID string, status string) error {
	if db == nil || runID == "" {
		return ErrNotInitialized
	}
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`, status, now, runID)
	return err
}

// SaveRunError records a per-agency error for a run.
func SaveRunError(runID, label string, err error) error {
	if db == nil || runID == "" {
		return ErrNotInitialized
	}
	if err == nil {
		return nil
	}
	now := time.Now().UTC()
	_, e := db.Exec(`INSERT INTO run_errors (run_id, label, error_message, created_at) VALUES (?, ?, ?, ?)`,
		runID, label, err.Error(), now)
	return e
}

// SaveAgencyResult records one agency's outcome within a run.
func SaveAgencyResult(runID string, res model.AgencyResult) error {
	if db == nil || runID == "" {
		return ErrNotInitialized
	}
	_, err := db.Exec(`INSERT INTO agency_results
		(run_id, label, slug, status, row_count, recipient_count, csv_path, json_path, recipients_path, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, res.Agency.Label(), res.Slug, res.Status, res.RowCount, res.RecipientCount,
		res.CSVPath, res.JSONPath, res.RecipientsPath, res.Error, res.StartedAt, res.FinishedAt)
	return err
}

// ListRuns returns all runs with basic info.
func ListRuns() ([]map[string]interface{}, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	rows, err := db.Query(`SELECT id, status, created_at, updated_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []map[string]interface{}
	for rows.Next() {
		var id, status string
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&id, &status, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, map[string]interface{}{
			"id":        id,
			"status":    status,
			"createdAt": createdAt,
			"updatedAt": updatedAt,
		})
	}
	return runs, rows.Err()
}

// GetRun fetches one run's spec and status.
func GetRun(runID string) (map[string]interface{}, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	var specJSON string
	var status string
	var createdAt, updatedAt time.Time

	err := db.QueryRow(`SELECT spec, status, created_at, updated_at FROM runs WHERE id = ?`, runID).
		Scan(&specJSON, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	var spec model.RunSpec
	if err := json.Unmarshal([]byte(specJSON), &spec); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"id":        runID,
		"spec":      spec,
		"status":    status,
		"createdAt": createdAt,
		"updatedAt": updatedAt,
	}, nil
}

// GetRunErrors returns the recorded errors for a run.
func GetRunErrors(runID string) ([]map[string]interface{}, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	rows, err := db.Query(`SELECT label, error_message, created_at FROM run_errors WHERE run_id = ? ORDER BY created_at`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]interface{}
	for rows.Next() {
		var label, message string
		var createdAt time.Time
		if err := rows.Scan(&label, &message, &createdAt); err != nil {
			return nil, err
		}
		out = append(out, map[string]interface{}{
			"label":     label,
			"error":     message,
			"createdAt": createdAt,
		})
	}
	return out, rows.Err()
}

// GetAgencyResults returns the per-agency outcomes for a run.
func GetAgencyResults(runID string) ([]map[string]interface{}, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	rows, err := db.Query(`SELECT label, slug, status, row_count, recipient_count, csv_path, json_path, recipients_path, error, started_at, finished_at
		FROM agency_results WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]interface{}
	for rows.Next() {
		var label, slug, status, csvPath, jsonPath, recipientsPath, errMsg string
		var rowCount, recipientCount int
		var startedAt, finishedAt time.Time
		if err := rows.Scan(&label, &slug, &status, &rowCount, &recipientCount,
			&csvPath, &jsonPath, &recipientsPath, &errMsg, &startedAt, &finishedAt); err != nil {
			return nil, err
		}
		out = append(out, map[string]interface{}{
			"label":          label,
			"slug":           slug,
			"status":         status,
			"rowCount":       rowCount,
			"recipientCount": recipientCount,
			"csvPath":        csvPath,
			"jsonPath":       jsonPath,
			"recipientsPath": recipientsPath,
			"error":          errMsg,
			"startedAt":      startedAt,
			"finishedAt":     finishedAt,
		})
	}
	return out, rows.Err()
}
