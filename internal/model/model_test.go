package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgencyFilterValidate(t *testing.T) {
	tests := []struct {
		name   string
		filter AgencyFilter
		ok     bool
	}{
		{"subtier", AgencyFilter{Tier: "subtier", Name: "National Institutes of Health"}, true},
		{"toptier", AgencyFilter{Tier: "toptier", Name: "Department of Defense"}, true},
		{"mixed case tier", AgencyFilter{Tier: " Subtier ", Name: "X"}, true},
		{"unknown tier", AgencyFilter{Tier: "regional", Name: "X"}, false},
		{"empty tier", AgencyFilter{Name: "X"}, false},
		{"empty name", AgencyFilter{Tier: "subtier", Name: "  "}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestAgencyFilterPayloadBlock(t *testing.T) {
	block := AgencyFilter{Tier: " Subtier ", Name: "National Institutes of Health"}.PayloadBlock()

	assert.Equal(t, map[string]string{
		"type": "awarding",
		"tier": "subtier",
		"name": "National Institutes of Health",
	}, block)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://api.usaspending.gov/api/v2/search/spending_by_transaction/", cfg.TransactionURL)
	assert.Equal(t, 75, cfg.PageLimit)
	assert.Equal(t, "Action Date", cfg.SortField)
	assert.Equal(t, "desc", cfg.SortOrder)
	assert.Equal(t, []string{"A", "B", "C", "D"}, cfg.AwardTypeCodes)
	assert.Equal(t, 6, cfg.Retry.MaxAttempts)
	assert.Equal(t, 0.7, cfg.Retry.BackoffFactor)
	assert.True(t, cfg.Retry.Retryable(429))
	assert.True(t, cfg.Retry.Retryable(503))
	assert.False(t, cfg.Retry.Retryable(404))
}

func TestDefaultConfigBaseURLOverride(t *testing.T) {
	t.Setenv("USASPENDING_BASE_URL", "http://localhost:9999")

	cfg := DefaultConfig()

	assert.Equal(t, "http://localhost:9999/api/v2/search/spending_by_transaction/", cfg.TransactionURL)
	assert.Equal(t, "http://localhost:9999/api/v2/awards/%s/", cfg.AwardDetailURL)
}

func TestConfigFromSpec(t *testing.T) {
	t.Run("defaults to NIH when no agencies given", func(t *testing.T) {
		cfg := ConfigFromSpec(RunSpec{})

		require.Len(t, cfg.Agencies, 1)
		assert.Equal(t, TierSubtier, cfg.Agencies[0].Tier)
		assert.Equal(t, "National Institutes of Health", cfg.Agencies[0].Name)
		assert.Equal(t, 90, cfg.Days)
		assert.Equal(t, "data", cfg.OutDir)
	})

	t.Run("spec overrides", func(t *testing.T) {
		spec := RunSpec{
			Days:       30,
			OutDir:     "/tmp/snaps",
			MaxPages:   5,
			SkipDetail: true,
			Agencies:   []AgencyFilter{{Tier: TierToptier, Name: "Department of Defense"}},
		}

		cfg := ConfigFromSpec(spec)

		assert.Equal(t, 30, cfg.Days)
		assert.Equal(t, "/tmp/snaps", cfg.OutDir)
		assert.Equal(t, 5, cfg.MaxPages)
		assert.True(t, cfg.SkipDetail)
		require.Len(t, cfg.Agencies, 1)
		assert.Equal(t, "Department of Defense", cfg.Agencies[0].Name)
	})
}

func TestRunReport(t *testing.T) {
	ok := AgencyResult{Status: "succeeded"}
	bad := AgencyResult{Status: "failed", Error: "boom"}

	t.Run("mixed", func(t *testing.T) {
		report := RunReport{Results: []AgencyResult{ok, bad}}
		assert.Equal(t, 1, report.FailureCount())
		assert.False(t, report.AllFailed())
	})

	t.Run("all failed", func(t *testing.T) {
		report := RunReport{Results: []AgencyResult{bad, bad}}
		assert.True(t, report.AllFailed())
	})

	t.Run("no results is not all failed", func(t *testing.T) {
		assert.False(t, RunReport{}.AllFailed())
	})
}
