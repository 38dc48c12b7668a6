package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/feldmangn/nih-awards-tracker/internal/model"
	"github.com/feldmangn/nih-awards-tracker/internal/store"
	"github.com/feldmangn/nih-awards-tracker/internal/usaspending"
	"github.com/feldmangn/nih-awards-tracker/pkg/utils"
)

// ------------------- Per-agency pass -------------------

// RunAgency executes the linear fetch → enrich → normalize → write pass
// for one agency filter. The returned result is failed (with the reason)
// when the fetch or the export dies; a failed detail lookup only degrades
// that row's enrichment columns.
func RunAgency(ctx context.Context, cfg model.Config, agency model.AgencyFilter) model.AgencyResult {
	result := model.AgencyResult{
		Agency:    agency,
		Slug:      utils.Slugify(agency.Name),
		StartedAt: time.Now().UTC(),
	}
	fail := func(err error) model.AgencyResult {
		result.Status = "failed"
		result.Error = err.Error()
		result.FinishedAt = time.Now().UTC()
		return result
	}

	if err := agency.Validate(); err != nil {
		return fail(err)
	}

	start, end := utils.DateWindow(cfg.Days)
	fmt.Printf("🚀 [%s] Fetching transactions %s..%s\n", agency.Label(), start, end)

	client := usaspending.NewClient(cfg)
	rows, err := client.FetchTransactions(ctx, agency, start, end)
	if err != nil {
		return fail(err)
	}

	var details []usaspending.AwardDetail
	if !cfg.SkipDetail && len(rows) > 0 {
		fmt.Printf("🔎 [%s] Enriching %d transactions with award detail\n", agency.Label(), len(rows))
		details = client.EnrichTransactions(ctx, rows)
	}

	normalized := NormalizeAll(rows, details)
	totals := TopRecipients(normalized)

	om := utils.NewOutputManager(cfg.OutDir)
	snap, err := WriteOutputs(normalized, totals, om.SnapshotPaths(result.Slug, cfg.Days))
	if err != nil {
		return fail(err)
	}

	result.Status = "succeeded"
	result.RowCount = snap.RowCount
	result.RecipientCount = snap.RecipientCount
	result.CSVPath = snap.CSVPath
	result.JSONPath = snap.JSONPath
	result.RecipientsPath = snap.RecipientsPath
	result.FinishedAt = time.Now().UTC()

	fmt.Printf("✅ [%s] Saved %d transactions across %d recipients -> %s\n",
		agency.Label(), snap.RowCount, snap.RecipientCount, snap.CSVPath)
	return result
}

// ------------------- Batch runner -------------------

// RunBatch runs the pipeline for every configured agency, one at a time.
// Per-agency failures are reported and recorded but never halt the
// remaining agencies; the caller inspects the report afterwards. runID
// may be empty for untracked runs.
func RunBatch(ctx context.Context, runID string, cfg model.Config) model.RunReport {
	report := model.RunReport{
		RunID:     runID,
		StartedAt: time.Now().UTC(),
	}

	store.UpdateRunStatus(runID, "running")

	for _, agency := range cfg.Agencies {
		result := RunAgency(ctx, cfg, agency)
		report.Results = append(report.Results, result)

		store.SaveAgencyResult(runID, result)
		if !result.Succeeded() {
			fmt.Printf("❌ [%s] ERROR: %s\n", agency.Label(), result.Error)
			store.SaveRunError(runID, agency.Label(), fmt.Errorf("%s", result.Error))
		}
	}

	report.FinishedAt = time.Now().UTC()

	status := "completed"
	if report.AllFailed() {
		status = "failed"
	}
	store.UpdateRunStatus(runID, status)

	fmt.Printf("🏁 Run finished: %d agencies, %d failed, in %v\n",
		len(report.Results), report.FailureCount(), report.FinishedAt.Sub(report.StartedAt))
	return report
}
