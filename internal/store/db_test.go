package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feldmangn/nih-awards-tracker/internal/model"
)

func initTestDB(t *testing.T) {
	t.Helper()
	require.NoError(t, InitDB(filepath.Join(t.TempDir(), "tracker.db")))
	t.Cleanup(func() {
		db.Close()
		db = nil
	})
}

func TestUninitializedStore(t *testing.T) {
	assert.ErrorIs(t, SaveRun("r1", model.RunSpec{}), ErrNotInitialized)
	assert.ErrorIs(t, UpdateRunStatus("r1", "running"), ErrNotInitialized)
	_, err := ListRuns()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestRunLifecycle(t *testing.T) {
	initTestDB(t)

	spec := model.RunSpec{
		Days:     30,
		Agencies: []model.AgencyFilter{{Tier: model.TierSubtier, Name: "National Institutes of Health"}},
	}
	require.NoError(t, SaveRun("run-1", spec))
	require.NoError(t, UpdateRunStatus("run-1", "running"))
	require.NoError(t, UpdateRunStatus("run-1", "completed"))

	run, err := GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", run["id"])
	assert.Equal(t, "completed", run["status"])

	stored := run["spec"].(model.RunSpec)
	assert.Equal(t, 30, stored.Days)
	require.Len(t, stored.Agencies, 1)
	assert.Equal(t, "National Institutes of Health", stored.Agencies[0].Name)

	runs, err := ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0]["id"])
}

func TestGetRunMissing(t *testing.T) {
	initTestDB(t)

	_, err := GetRun("no-such-run")
	assert.Error(t, err)
}

func TestAgencyResults(t *testing.T) {
	initTestDB(t)
	require.NoError(t, SaveRun("run-1", model.RunSpec{}))

	now := time.Now().UTC()
	ok := model.AgencyResult{
		Agency:         model.AgencyFilter{Tier: model.TierSubtier, Name: "National Institutes of Health"},
		Slug:           "nih",
		Status:         "succeeded",
		RowCount:       120,
		RecipientCount: 34,
		CSVPath:        "data/nih_awards_last_90d.csv",
		JSONPath:       "data/nih_awards_last_90d.json",
		RecipientsPath: "data/nih_top_recipients_last_90d.csv",
		StartedAt:      now,
		FinishedAt:     now.Add(time.Minute),
	}
	bad := model.AgencyResult{
		Agency:     model.AgencyFilter{Tier: model.TierToptier, Name: "Department of Defense"},
		Slug:       "dod",
		Status:     "failed",
		Error:      "transaction search failed",
		StartedAt:  now,
		FinishedAt: now,
	}

	require.NoError(t, SaveAgencyResult("run-1", ok))
	require.NoError(t, SaveAgencyResult("run-1", bad))

	results, err := GetAgencyResults("run-1")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "nih", results[0]["slug"])
	assert.Equal(t, "succeeded", results[0]["status"])
	assert.Equal(t, 120, results[0]["rowCount"])
	assert.Equal(t, "data/nih_awards_last_90d.csv", results[0]["csvPath"])

	assert.Equal(t, "toptier/Department of Defense", results[1]["label"])
	assert.Equal(t, "failed", results[1]["status"])
	assert.Equal(t, "transaction search failed", results[1]["error"])
}

func TestRunErrors(t *testing.T) {
	initTestDB(t)
	require.NoError(t, SaveRun("run-1", model.RunSpec{}))

	require.NoError(t, SaveRunError("run-1", "subtier/National Institutes of Health", assert.AnError))
	require.NoError(t, SaveRunError("run-1", "x", nil), "nil error is a no-op")

	errs, err := GetRunErrors("run-1")
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "subtier/National Institutes of Health", errs[0]["label"])
	assert.Equal(t, assert.AnError.Error(), errs[0]["error"])
}

func TestEmptyRunIDWritesRejected(t *testing.T) {
	initTestDB(t)

	assert.ErrorIs(t, UpdateRunStatus("", "running"), ErrNotInitialized)
	assert.ErrorIs(t, SaveAgencyResult("", model.AgencyResult{}), ErrNotInitialized)
	assert.ErrorIs(t, SaveRunError("", "label", assert.AnError), ErrNotInitialized)
}
