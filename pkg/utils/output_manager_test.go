package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotPaths(t *testing.T) {
	om := NewOutputManager("data")
	paths := om.SnapshotPaths("nih", 90)

	assert.Equal(t, filepath.Join("data", "nih_awards_last_90d.csv"), paths.CSV)
	assert.Equal(t, filepath.Join("data", "nih_awards_last_90d.json"), paths.JSON)
	assert.Equal(t, filepath.Join("data", "nih_top_recipients_last_90d.csv"), paths.Recipients)
}

func TestEnrichedPath(t *testing.T) {
	assert.Equal(t, "data/nih_top_recipients_last_90d_enriched.csv",
		EnrichedPath("data/nih_top_recipients_last_90d.csv"))
}

func TestDownloadURL(t *testing.T) {
	om := NewOutputManager("data")
	// Full paths collapse to the file name
	assert.Equal(t, "/api/v1/download/nih_awards_last_90d.csv",
		om.DownloadURL("data/nih_awards_last_90d.csv"))
}
