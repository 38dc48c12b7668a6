package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// OutputManager handles snapshot file organization and path management.
type OutputManager struct {
	BaseOutputDir string
}

// NewOutputManager creates a new output manager.
func NewOutputManager(baseOutputDir string) *OutputManager {
	return &OutputManager{
		BaseOutputDir: baseOutputDir,
	}
}

// SnapshotPaths holds the three output files written for one agency.
type SnapshotPaths struct {
	CSV        string
	JSON       string
	Recipients string
}

// SnapshotPaths generates the per-agency output paths for a lookback
// window, e.g. nih_awards_last_90d.csv.
func (om *OutputManager) SnapshotPaths(slug string, days int) SnapshotPaths {
	return SnapshotPaths{
		CSV:        filepath.Join(om.BaseOutputDir, fmt.Sprintf("%s_awards_last_%dd.csv", slug, days)),
		JSON:       filepath.Join(om.BaseOutputDir, fmt.Sprintf("%s_awards_last_%dd.json", slug, days)),
		Recipients: filepath.Join(om.BaseOutputDir, fmt.Sprintf("%s_top_recipients_last_%dd.csv", slug, days)),
	}
}

// EnrichedPath derives the careers-link enriched variant of a recipients
// CSV path.
func EnrichedPath(recipientsCSV string) string {
	ext := filepath.Ext(recipientsCSV)
	return recipientsCSV[:len(recipientsCSV)-len(ext)] + "_enriched" + ext
}

// DownloadURL generates the API download URL for a snapshot file.
func (om *OutputManager) DownloadURL(fileName string) string {
	return fmt.Sprintf("/api/v1/download/%s", filepath.Base(fileName))
}

// EnsureOutputDirExists creates the base output directory if absent.
func (om *OutputManager) EnsureOutputDirExists() error {
	return os.MkdirAll(om.BaseOutputDir, 0755)
}
