package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feldmangn/nih-awards-tracker/pkg/utils"
)

func snapshotPathsIn(t *testing.T) utils.SnapshotPaths {
	t.Helper()
	return utils.NewOutputManager(t.TempDir()).SnapshotPaths("nih", 90)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteOutputs(t *testing.T) {
	rows := []Row{
		{AwardID: "A-1", RecipientName: "LEIDOS", ActionDate: "2026-07-14", AwardAmount: 1500.25, IsSmallBusiness: true},
		{AwardID: "A-2", RecipientName: "BOOZ ALLEN", ActionDate: "2026-07-10", AwardAmount: 980},
	}
	totals := TopRecipients(rows)
	paths := snapshotPathsIn(t)

	snap, err := WriteOutputs(rows, totals, paths)
	require.NoError(t, err)

	assert.Equal(t, 2, snap.RowCount)
	assert.Equal(t, 2, snap.RecipientCount)

	records := readCSV(t, paths.CSV)
	require.Len(t, records, 3)
	assert.Equal(t, Columns(), records[0])
	assert.Equal(t, "A-1", records[1][0])
	assert.Equal(t, "1500.25", records[1][3])
	assert.Equal(t, "true", records[1][17])
	assert.Equal(t, "false", records[2][17])

	data, err := os.ReadFile(paths.JSON)
	require.NoError(t, err)
	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "LEIDOS", decoded[0]["Recipient Name"])
	assert.Equal(t, true, decoded[0]["Is Small Business"])

	recipients := readCSV(t, paths.Recipients)
	require.Len(t, recipients, 3)
	assert.Equal(t, []string{"Recipient Name", "Award Amount"}, recipients[0])
	assert.Equal(t, "LEIDOS", recipients[1][0])
	assert.Equal(t, "1500.25", recipients[1][1])
}

func TestWriteOutputsEmptyRowSet(t *testing.T) {
	paths := snapshotPathsIn(t)

	snap, err := WriteOutputs(nil, nil, paths)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.RowCount)

	// All three files exist even with nothing to write
	records := readCSV(t, paths.CSV)
	require.Len(t, records, 1)
	assert.Equal(t, Columns(), records[0])

	data, err := os.ReadFile(paths.JSON)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data), "empty array, not null")

	recipients := readCSV(t, paths.Recipients)
	require.Len(t, recipients, 1)
}

func TestWriteOutputsCreatesDirectory(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "out")
	paths := utils.NewOutputManager(base).SnapshotPaths("hhs", 30)

	_, err := WriteOutputs([]Row{{AwardID: "A-1"}}, nil, paths)
	require.NoError(t, err)

	_, err = os.Stat(paths.CSV)
	assert.NoError(t, err)
}

func TestWriteOutputsOverwritesPriorSnapshot(t *testing.T) {
	paths := snapshotPathsIn(t)

	_, err := WriteOutputs([]Row{{AwardID: "old-1"}, {AwardID: "old-2"}}, nil, paths)
	require.NoError(t, err)

	totals := []RecipientTotal{{RecipientName: "ACME", AwardAmount: decimal.NewFromInt(5)}}
	_, err = WriteOutputs([]Row{{AwardID: "new-1"}}, totals, paths)
	require.NoError(t, err)

	records := readCSV(t, paths.CSV)
	require.Len(t, records, 2, "previous rows fully replaced")
	assert.Equal(t, "new-1", records[1][0])
}
