// Awards Tracker CLI - USAspending contract snapshots
//
// Usage:
//   fetch fetch --days 90 --outdir data [--subtier "National Institutes of Health"]
//   fetch links --recipients data/nih_top_recipients_last_90d.csv
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/feldmangn/nih-awards-tracker/internal/model"
	"github.com/feldmangn/nih-awards-tracker/internal/pipeline"
	"github.com/feldmangn/nih-awards-tracker/internal/store"
	"github.com/feldmangn/nih-awards-tracker/pkg/utils"
)

func main() {
	// .env is optional, real env vars win either way
	godotenv.Load()

	app := &cli.App{
		Name:  "fetch",
		Usage: "Fetch recent federal contract awards from USAspending and write per-agency snapshots",
		Commands: []*cli.Command{
			fetchCommand(),
			linksCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// ------------------- fetch command -------------------

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Pull the last N days of contract transactions and write CSV/JSON snapshots",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "days",
				Value:   90,
				Usage:   "Lookback window in days",
				EnvVars: []string{"TRACKER_DAYS"},
			},
			&cli.StringFlag{
				Name:    "outdir",
				Value:   "data",
				Usage:   "Directory for snapshot files",
				EnvVars: []string{"TRACKER_OUT_DIR"},
			},
			&cli.IntFlag{
				Name:  "max-pages",
				Value: 0,
				Usage: "Stop after this many pages per agency (0 = no cap)",
			},
			&cli.BoolFlag{
				Name:  "no-detail",
				Value: false,
				Usage: "Skip per-award detail lookups (faster, fewer columns filled)",
			},
			&cli.StringSliceFlag{
				Name:  "subtier",
				Usage: "Awarding subtier agency name (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "toptier",
				Usage: "Awarding toptier agency name (repeatable)",
			},
		},
		Action: runFetch,
	}
}

func runFetch(c *cli.Context) error {
	spec := model.RunSpec{
		Days:       c.Int("days"),
		OutDir:     c.String("outdir"),
		MaxPages:   c.Int("max-pages"),
		SkipDetail: c.Bool("no-detail"),
	}
	for _, name := range c.StringSlice("subtier") {
		spec.Agencies = append(spec.Agencies, model.AgencyFilter{Tier: model.TierSubtier, Name: name})
	}
	for _, name := range c.StringSlice("toptier") {
		spec.Agencies = append(spec.Agencies, model.AgencyFilter{Tier: model.TierToptier, Name: name})
	}
	for _, agency := range spec.Agencies {
		if err := agency.Validate(); err != nil {
			return err
		}
	}

	initStore()

	runID := uuid.New().String()
	store.SaveRun(runID, spec)

	cfg := model.ConfigFromSpec(spec)
	report := pipeline.RunBatch(context.Background(), runID, cfg)

	if report.AllFailed() {
		return fmt.Errorf("all %d agencies failed", len(report.Results))
	}
	if n := report.FailureCount(); n > 0 {
		fmt.Printf("⚠️  %d of %d agencies failed, see errors above\n", n, len(report.Results))
	}
	return nil
}

// ------------------- links command -------------------

func linksCommand() *cli.Command {
	return &cli.Command{
		Name:  "links",
		Usage: "Append a careers-search column to a top-recipients CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "recipients",
				Aliases:  []string{"r"},
				Usage:    "Path to a top-recipients CSV from a fetch run",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Output path (default: input with _enriched suffix)",
			},
		},
		Action: runLinks,
	}
}

func runLinks(c *cli.Context) error {
	in := c.String("recipients")
	out := c.String("out")
	if out == "" {
		out = utils.EnrichedPath(in)
	}

	if err := pipeline.AddCareersLinks(in, out); err != nil {
		return fmt.Errorf("failed to enrich %s: %w", in, err)
	}
	fmt.Printf("✅ Wrote %s\n", out)
	return nil
}

// initStore opens the run-history database. Snapshot runs still work
// without it, so a failure here only loses bookkeeping.
func initStore() {
	dbPath := os.Getenv("TRACKER_DB")
	if dbPath == "" {
		dbPath = "tracker.db"
	}
	if err := store.InitDB(dbPath); err != nil {
		fmt.Printf("⚠️  Run history disabled: %v\n", err)
	}
}
