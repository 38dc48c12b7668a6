package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/feldmangn/nih-awards-tracker/pkg/utils"
)

// Snapshot reports what one agency's export pass wrote.
type Snapshot struct {
	CSVPath        string `json:"csv_path"`
	JSONPath       string `json:"json_path"`
	RecipientsPath string `json:"recipients_path"`
	RowCount       int    `json:"row_count"`
	RecipientCount int    `json:"recipient_count"`
}

// WriteOutputs persists the normalized rows as CSV and JSON plus the
// top-recipients aggregate CSV. An empty row set still writes all three
// files (header-only CSVs, an empty JSON array) so downstream consumers
// observe a consistent file set after every run.
func WriteOutputs(rows []Row, totals []RecipientTotal, paths utils.SnapshotPaths) (Snapshot, error) {
	snap := Snapshot{
		CSVPath:        paths.CSV,
		JSONPath:       paths.JSON,
		RecipientsPath: paths.Recipients,
		RowCount:       len(rows),
		RecipientCount: len(totals),
	}

	if err := os.MkdirAll(filepath.Dir(paths.CSV), 0755); err != nil {
		return snap, fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := writeRowsCSV(paths.CSV, rows); err != nil {
		return snap, err
	}
	if err := writeRowsJSON(paths.JSON, rows); err != nil {
		return snap, err
	}
	if err := writeRecipientsCSV(paths.Recipients, totals); err != nil {
		return snap, err
	}
	return snap, nil
}

// writeRowsCSV writes the main table with the fixed schema header.
func writeRowsCSV(path string, rows []Row) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(Columns()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row.record()); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}

// writeRowsJSON writes the equivalent array of records keyed by the
// schema column names.
func writeRowsJSON(path string, rows []Row) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if rows == nil {
		rows = []Row{}
	}
	encoder := json.NewEncoder(file)
	if err := encoder.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeRecipientsCSV writes the aggregate table, already sorted
// descending by total.
func writeRecipientsCSV(path string, totals []RecipientTotal) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"Recipient Name", "Award Amount"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, total := range totals {
		if err := writer.Write([]string{total.RecipientName, total.AwardAmount.String()}); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}
