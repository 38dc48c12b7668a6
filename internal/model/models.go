package model

import "time"

// Record is a schema-agnostic map for one row returned by the API.
type Record map[string]interface{}

// RunSpec is the payload for POST /api/v1/runs and the CLI's run scope.
type RunSpec struct {
	Days       int            `json:"days"`
	OutDir     string         `json:"outDir"`
	MaxPages   int            `json:"maxPages"`
	SkipDetail bool           `json:"skipDetail"`
	Agencies   []AgencyFilter `json:"agencies"`
}

// AgencyResult is the outcome of one agency's pipeline pass: success with
// row counts and snapshot paths, or failure with the reason. A batch
// collects one per configured agency instead of aborting on the first
// error.
type AgencyResult struct {
	Agency         AgencyFilter `json:"agency"`
	Slug           string       `json:"slug"`
	Status         string       `json:"status"` // "succeeded" or "failed"
	RowCount       int          `json:"row_count"`
	RecipientCount int          `json:"recipient_count"`
	CSVPath        string       `json:"csv_path,omitempty"`
	JSONPath       string       `json:"json_path,omitempty"`
	RecipientsPath string       `json:"recipients_path,omitempty"`
	Error          string       `json:"error,omitempty"`
	StartedAt      time.Time    `json:"started_at"`
	FinishedAt     time.Time    `json:"finished_at"`
}

// Succeeded reports whether the agency's pass completed.
func (r AgencyResult) Succeeded() bool { return r.Status == "succeeded" }

// RunReport is the collected outcome of one batch run.
type RunReport struct {
	RunID      string         `json:"run_id"`
	Results    []AgencyResult `json:"results"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// FailureCount returns how many agencies failed in this run.
func (r RunReport) FailureCount() int {
	n := 0
	for _, res := range r.Results {
		if !res.Succeeded() {
			n++
		}
	}
	return n
}

// AllFailed reports whether not a single agency produced a snapshot.
func (r RunReport) AllFailed() bool {
	return len(r.Results) > 0 && r.FailureCount() == len(r.Results)
}
