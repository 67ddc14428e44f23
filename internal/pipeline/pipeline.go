// Package pipeline runs the fetch, dedupe, normalize, validate and derive
// stages for one query range and returns the cleaned table.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"nypd311/internal/complaint"
	"nypd311/internal/datasource"
	"nypd311/internal/fetcher"
	"nypd311/internal/metrics"
	"nypd311/internal/normalize"
	"nypd311/internal/query"
	"nypd311/internal/transformer/builtin"
	"nypd311/internal/validate"
)

// DefaultDataset is the NYC 311 service requests dataset.
const DefaultDataset = "erm2-nwe9"

// Config configures a Pipeline.
type Config struct {
	Dataset  string
	Columns  complaint.Columns
	Required []string
	// Dedupe removes repeated unique_key values, keeping the first.
	Dedupe bool
	Job    string
	Log    zerolog.Logger
}

// Result is the cleaned table plus the diagnostics gathered on the way.
type Result struct {
	Range query.Range
	Rows  []complaint.Row
	// TotalRecords is the merged fetch count, before dedupe and validation.
	TotalRecords int
	PerYear      map[int]int
	Failures     fetcher.Manifest
	Predicates   []string
	Duplicates   int
	Normalize    normalize.Report
	Validation   validate.Report
}

// Pipeline wires the stages around one data source.
type Pipeline struct {
	cfg       Config
	fetcher   *fetcher.Fetcher
	normalize *normalize.Normalizer
	validate  *validate.Validator
	log       zerolog.Logger
}

// New builds a Pipeline reading from src.
func New(src datasource.Source, cfg Config) *Pipeline {
	if cfg.Dataset == "" {
		cfg.Dataset = DefaultDataset
	}
	return &Pipeline{
		cfg: cfg,
		fetcher: fetcher.New(src, fetcher.Config{
			Dataset: cfg.Dataset,
			Job:     cfg.Job,
			Log:     cfg.Log.With().Str("component", "fetcher").Logger(),
		}),
		normalize: normalize.New(cfg.Columns, cfg.Log.With().Str("component", "normalize").Logger()),
		validate:  validate.New(cfg.Required),
		log:       cfg.Log,
	}
}

// Run validates r, then fetches and cleans every year in it. Validation
// failures return before any remote call. Failed years are reported in
// Result.Failures and do not fail the run.
func (p *Pipeline) Run(ctx context.Context, r query.Range) (*Result, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	res := &Result{Range: r}

	specs := r.Specs()
	p.log.Info().
		Str("borough", string(r.Borough)).
		Int("start_year", r.StartYear).
		Int("end_year", r.EndYear).
		Int("chunks", len(specs)).
		Msg("Fetching complaints")

	start := time.Now()
	chunks, err := p.fetcher.Fetch(ctx, specs)
	metrics.RecordStage(p.cfg.Job, "fetch", err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("pipeline: fetch: %w", err)
	}
	for _, c := range chunks {
		res.Predicates = append(res.Predicates, c.Where)
	}
	res.PerYear = fetcher.PerYear(chunks)
	res.Failures = fetcher.Failures(chunks)
	merged := fetcher.Merge(chunks)
	res.TotalRecords = len(merged)
	if len(res.Failures) > 0 {
		p.log.Warn().Ints("failed_years", res.Failures.Years()).Msg("Some years could not be fetched")
	}
	p.log.Info().Int("total_records", res.TotalRecords).Msg("Fetch complete")

	if p.cfg.Dedupe {
		start = time.Now()
		before := len(merged)
		merged = builtin.DeDup{Keys: []string{complaint.UniqueKey}, Policy: builtin.KeepFirst}.Apply(merged)
		res.Duplicates = before - len(merged)
		metrics.RecordStage(p.cfg.Job, "dedupe", nil, time.Since(start))
		metrics.RecordRows(p.cfg.Job, metrics.RowsDuplicate, res.Duplicates)
		if res.Duplicates > 0 {
			p.log.Info().Int("duplicates", res.Duplicates).Msg("Removed duplicate unique_key rows")
		}
	}

	start = time.Now()
	drafts, nrep := p.normalize.Normalize(merged)
	res.Normalize = nrep
	metrics.RecordStage(p.cfg.Job, "normalize", nil, time.Since(start))

	start = time.Now()
	valid, vrep := p.validate.Validate(drafts)
	res.Validation = vrep
	metrics.RecordStage(p.cfg.Job, "validate", nil, time.Since(start))
	metrics.RecordRows(p.cfg.Job, metrics.RowsDropped, vrep.Dropped)
	p.log.Info().
		Int("rows_before", vrep.Before).
		Int("rows_after", vrep.After).
		Int("dropped", vrep.Dropped).
		Strs("required", p.validate.Required()).
		Msg("Validated rows")

	res.Rows = make([]complaint.Row, len(valid))
	for i, v := range valid {
		res.Rows[i] = v.Derive()
	}
	metrics.RecordRows(p.cfg.Job, metrics.RowsRetained, len(res.Rows))
	return res, nil
}
