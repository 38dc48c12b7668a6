package model

import (
	"os"
	"time"
)

// RetryPolicy controls the HTTP client wrapper's automatic retries.
type RetryPolicy struct {
	MaxAttempts       int     `json:"maxAttempts"`
	BackoffFactor     float64 `json:"backoffFactor"` // seconds, doubled per attempt
	RetryableStatuses []int   `json:"retryableStatuses"`
}

// Retryable reports whether a status code should trigger another attempt.
func (p RetryPolicy) Retryable(status int) bool {
	for _, s := range p.RetryableStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Config carries every endpoint, field list and tuning knob for one
// invocation of the pipeline. Nothing here is shared module state; build
// one per run and pass it down.
type Config struct {
	TransactionURL string        `json:"transactionUrl"`
	AwardDetailURL string        `json:"awardDetailUrl"` // %s is the award's internal id
	Fields         []string      `json:"fields"`
	AwardTypeCodes []string      `json:"awardTypeCodes"`
	SortField      string        `json:"sortField"`
	SortOrder      string        `json:"sortOrder"`
	PageLimit      int           `json:"pageLimit"`
	PageDelay      time.Duration `json:"pageDelay"`
	Timeout        time.Duration `json:"timeout"`
	Retry          RetryPolicy   `json:"retry"`

	// Detail lookup tuning
	DetailTries      int           `json:"detailTries"`
	DetailSleepBase  time.Duration `json:"detailSleepBase"`
	DetailJitterMax  time.Duration `json:"detailJitterMax"`
	DetailPauseEvery int           `json:"detailPauseEvery"`
	DetailPause      time.Duration `json:"detailPause"`

	// Run scope
	Days       int            `json:"days"`
	OutDir     string         `json:"outDir"`
	MaxPages   int            `json:"maxPages"` // 0 = unbounded
	SkipDetail bool           `json:"skipDetail"`
	Agencies   []AgencyFilter `json:"agencies"`
}

// DefaultConfig returns the tuning the production fetcher runs with.
// USASPENDING_BASE_URL overrides the API host, which is how tests and
// mirrors point the pipeline elsewhere.
func DefaultConfig() Config {
	base := "https://api.usaspending.gov"
	if v := os.Getenv("USASPENDING_BASE_URL"); v != "" {
		base = v
	}
	return Config{
		TransactionURL: base + "/api/v2/search/spending_by_transaction/",
		AwardDetailURL: base + "/api/v2/awards/%s/",
		Fields: []string{
			"generated_internal_id", // preferred id for detail
			"internal_id",           // fallback id for detail
			"Award ID",
			"Recipient Name",
			"Action Date",
			"Transaction Amount",
			"Awarding Agency",
			"Awarding Sub Agency",
			"product_or_service_code",
			"product_or_service_description",
			"naics_code",
			"naics_description",
			"pop_state_code",
		},
		AwardTypeCodes: []string{"A", "B", "C", "D"}, // contracts & IDVs
		SortField:      "Action Date",
		SortOrder:      "desc",
		PageLimit:      75,
		PageDelay:      50 * time.Millisecond,
		Timeout:        60 * time.Second,
		Retry: RetryPolicy{
			MaxAttempts:       6,
			BackoffFactor:     0.7,
			RetryableStatuses: []int{429, 500, 502, 503, 504},
		},
		DetailTries:      4,
		DetailSleepBase:  90 * time.Millisecond,
		DetailJitterMax:  50 * time.Millisecond,
		DetailPauseEvery: 200,
		DetailPause:      350 * time.Millisecond,
		Days:             90,
		OutDir:           "data",
	}
}

// ConfigFromSpec applies a run spec on top of the defaults. An empty agency
// list falls back to NIH, matching the fetcher's historical behavior.
func ConfigFromSpec(spec RunSpec) Config {
	cfg := DefaultConfig()
	if spec.Days > 0 {
		cfg.Days = spec.Days
	}
	if spec.OutDir != "" {
		cfg.OutDir = spec.OutDir
	}
	cfg.MaxPages = spec.MaxPages
	cfg.SkipDetail = spec.SkipDetail
	cfg.Agencies = spec.Agencies
	if len(cfg.Agencies) == 0 {
		cfg.Agencies = []AgencyFilter{{Tier: TierSubtier, Name: "National Institutes of Health"}}
	}
	return cfg
}
