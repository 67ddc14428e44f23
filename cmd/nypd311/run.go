package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"nypd311/internal/complaint"
	"nypd311/internal/config"
	"nypd311/internal/datasource/httpds"
	"nypd311/internal/datasource/socrata"
	"nypd311/internal/export"
	_ "nypd311/internal/export/all"
	"nypd311/internal/metrics"
	"nypd311/internal/pipeline"
	"nypd311/internal/prompt"
	"nypd311/internal/query"
	"nypd311/internal/report"
	"nypd311/internal/rundir"
	"nypd311/internal/summary"
)

var errMissingQuery = errors.New("borough, start year and end year are required (pass --borough, --start-year and --end-year)")

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch, clean, export and summarize complaints for a borough and year range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), cmd)
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func (a *app) run(ctx context.Context, cmd *cobra.Command) error {
	r, err := a.resolveRange()
	if err != nil {
		return err
	}
	if a.printIssues(config.ValidateRun(a.cfg)) {
		return errInvalidConfig
	}

	flush, err := setupMetrics(a.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := flush(); err != nil {
			a.log.Warn().Err(err).Msg("Metrics flush failed")
		}
	}()

	src, err := socrata.NewClient(socrata.Config{
		BaseURL:  a.cfg.Source.BaseURL,
		AppToken: a.cfg.Source.AppToken,
		HTTP: httpds.Config{
			Timeout:           a.cfg.Source.Timeout.Duration,
			MaxRetries:        a.cfg.Source.MaxRetries,
			RequestsPerSecond: a.cfg.Source.RequestsPerSecond,
		},
	})
	if err != nil {
		return err
	}
	defer src.Close()

	res, err := pipeline.New(src, pipeline.Config{
		Dataset:  a.cfg.Source.Dataset,
		Columns:  a.cfg.Columns(),
		Required: a.cfg.Transform.Required,
		Dedupe:   a.cfg.Transform.Dedupe,
		Job:      a.cfg.Job,
		Log:      a.log,
	}).Run(ctx, r)
	if err != nil {
		return err
	}

	dir, err := rundir.Create(a.cfg.Output.Dir, r, a.now())
	if err != nil {
		return err
	}
	a.log.Info().Str("dir", dir).Msg("Created run directory")

	m := report.NewManifest(a.now())
	m.Query = report.Query{
		Borough:   r.Borough.FilterValue(),
		StartYear: r.StartYear,
		EndYear:   r.EndYear,
		PageLimit: r.PageLimit,
	}
	m.Fingerprint = report.Fingerprint(res.Predicates)
	m.SetPerYear(res.PerYear)
	m.SetFailures(res.Failures)
	m.DroppedColumns = res.Normalize.Dropped
	m.Counts = report.Counts{
		TotalRecords: res.TotalRecords,
		Duplicates:   res.Duplicates,
		RowsBefore:   res.Validation.Before,
		RowsAfter:    res.Validation.After,
		Dropped:      res.Validation.Dropped,
	}

	out := cmd.OutOrStdout()
	if len(res.Rows) == 0 {
		if _, err := report.WriteManifest(dir, m); err != nil {
			return err
		}
		fmt.Fprintln(out, summary.ErrNoData.Error())
		a.printFailures(cmd, res)
		return nil
	}

	exported, err := a.export(ctx, dir, res.Rows)
	if err != nil {
		return err
	}
	m.Export = &exported
	m.Counts.Exported = exported.Rows

	a.preview(res.Rows)

	s, err := summary.Summarize(res.Rows, res.TotalRecords, summary.DefaultTopN)
	if err != nil {
		return err
	}

	start := time.Now()
	artifacts, err := report.Generate(ctx, dir, res.Rows, res.TotalRecords, report.Options{
		Notifier: a.reportNotifier(),
		Log:      a.log,
	})
	metrics.RecordStage(a.cfg.Job, "report", err, time.Since(start))
	if err != nil {
		return err
	}
	m.Artifacts = artifacts

	path, err := report.WriteManifest(dir, m)
	if err != nil {
		return err
	}
	a.log.Info().Str("path", path).Str("run_id", m.RunID).Msg("Wrote manifest")

	fmt.Fprintln(out, summary.Sentence(s, r))
	a.printFailures(cmd, res)
	return nil
}

// resolveRange builds the query range from config. On a terminal, anything
// missing or invalid is asked for again.
func (a *app) resolveRange() (query.Range, error) {
	q := a.cfg.Query
	if q.Borough != "" && q.StartYear != 0 && q.EndYear != 0 {
		r, err := a.cfg.Range()
		if err == nil || !a.isTTY() {
			return r, err
		}
		fmt.Fprintf(a.stderr, "Invalid query: %v\n", err)
	} else if !a.isTTY() {
		return query.Range{}, errMissingQuery
	}

	r := query.Range{StartYear: q.StartYear, EndYear: q.EndYear, PageLimit: a.cfg.Source.PageLimit}
	if q.Borough != "" {
		if b, err := query.ParseBorough(q.Borough); err == nil {
			r.Borough = b
		} else {
			r.Borough = query.Borough(q.Borough)
		}
	}
	if err := prompt.New(a.stdin, a.stderr).Fill(&r); err != nil {
		return query.Range{}, err
	}
	a.cfg.Query = config.Query{Borough: string(r.Borough), StartYear: r.StartYear, EndYear: r.EndYear}
	return r, r.Validate()
}

func (a *app) export(ctx context.Context, dir string, rows []complaint.Row) (report.Artifact, error) {
	ex, err := export.New(a.cfg.Output.Export)
	if err != nil {
		return report.Artifact{}, err
	}
	path := filepath.Join(dir, export.DefaultBaseName+ex.Ext())

	start := time.Now()
	n, err := ex.Export(a.log.WithContext(ctx), path, a.cfg.Columns().Header(), rows)
	metrics.RecordStage(a.cfg.Job, "export", err, time.Since(start))
	if err != nil {
		return report.Artifact{}, err
	}
	metrics.RecordRows(a.cfg.Job, metrics.RowsExported, int(n))
	a.log.Info().Str("kind", a.cfg.Output.Export).Str("path", path).Int64("rows", n).Msg("Exported rows")
	return report.Artifact{Name: "export", Path: path, Rows: int(n)}, nil
}

var previewColumns = []string{complaint.CreatedDate, complaint.ComplaintType, complaint.Borough}

// preview logs the key columns of the first rows.
func (a *app) preview(rows []complaint.Row) {
	n := min(a.cfg.Output.Preview, len(rows))
	for i := 0; i < n; i++ {
		ev := a.log.Info().Int("row", i)
		for _, col := range previewColumns {
			ev = ev.Interface(col, rows[i].Value(col))
		}
		ev.Msg("Preview")
	}
}

func (a *app) reportNotifier() report.Notifier {
	if a.notifier != nil {
		return a.notifier
	}
	if a.cfg.Output.Open {
		return report.OpenNotifier{Log: a.log}
	}
	return report.LogNotifier{Log: a.log}
}

func (a *app) printFailures(cmd *cobra.Command, res *pipeline.Result) {
	for _, y := range res.Failures.Years() {
		fmt.Fprintf(cmd.OutOrStdout(), "year %d failed: %s\n", y, res.Failures[y])
	}
}
