// Package report writes the per-run data artifacts (monthly series, top
// complaint types, year by month heatmap) and the run manifest.
//
// Artifacts are CSV tables meant to be charted by external tools. Each one is
// written independently and announced to a Notifier once it exists.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"nypd311/internal/complaint"
	"nypd311/internal/summary"
)

// Artifact file names.
const (
	MonthlySeriesFile = "monthly_series.csv"
	TopTypesFile      = "top_complaint_types.csv"
	HeatmapFile       = "heatmap_year_month.csv"
)

// TopTypesLimit is the number of complaint types in the top-types table.
const TopTypesLimit = 10

// Artifact is one file produced by a run.
type Artifact struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Rows int    `json:"rows"`
	// TotalRecords is the fetched count the table was built from.
	TotalRecords int `json:"total_records,omitempty"`
}

// generator builds the table for one artifact.
type generator struct {
	name string
	file string
	fn   func(rows []complaint.Row) [][]string
}

var generators = []generator{
	{name: "monthly_series", file: MonthlySeriesFile, fn: MonthlySeries},
	{name: "top_complaint_types", file: TopTypesFile, fn: TopTypes},
	{name: "heatmap_year_month", file: HeatmapFile, fn: Heatmap},
}

// Options configures Generate.
type Options struct {
	Notifier Notifier
	Log      zerolog.Logger
}

// Generate writes every artifact for the cleaned rows into dir concurrently
// and returns them in a fixed order. totalRecords is the fetched count before
// cleaning and is stamped on each artifact. An empty table yields
// summary.ErrNoData and no files. A notification failure is logged and does
// not fail the artifact.
func Generate(ctx context.Context, dir string, rows []complaint.Row, totalRecords int, opts Options) ([]Artifact, error) {
	if len(rows) == 0 {
		return nil, summary.ErrNoData
	}
	opts.Log.Debug().Int("rows", len(rows)).Int("total_records", totalRecords).Msg("Generating report artifacts")
	notifier := opts.Notifier
	if notifier == nil {
		notifier = LogNotifier{Log: opts.Log}
	}

	out := make([]Artifact, len(generators))
	g, ctx := errgroup.WithContext(ctx)
	for i, gen := range generators {
		g.Go(func() error {
			table := gen.fn(rows)
			path := filepath.Join(dir, gen.file)
			if err := writeCSV(ctx, path, table); err != nil {
				return fmt.Errorf("report: %s: %w", gen.name, err)
			}
			a := Artifact{Name: gen.name, Path: path, Rows: len(table) - 1, TotalRecords: totalRecords}
			out[i] = a
			if err := notifier.Notify(ctx, a); err != nil {
				opts.Log.Warn().Err(err).Str("artifact", a.Name).Msg("Artifact notification failed")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func writeCSV(ctx context.Context, path string, table [][]string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	w := csv.NewWriter(f)
	if err := w.WriteAll(table); err != nil {
		return err
	}
	return w.Error()
}

// MonthlySeries counts complaints per calendar month, oldest first.
func MonthlySeries(rows []complaint.Row) [][]string {
	counts := map[string]int{}
	for _, r := range rows {
		counts[r.CreatedDate.Format("2006-01")]++
	}
	months := make([]string, 0, len(counts))
	for m := range counts {
		months = append(months, m)
	}
	sort.Strings(months)

	out := [][]string{{"month", "complaints"}}
	for _, m := range months {
		out = append(out, []string{m, strconv.Itoa(counts[m])})
	}
	return out
}

// TopTypes ranks the TopTypesLimit most frequent complaint types.
func TopTypes(rows []complaint.Row) [][]string {
	out := [][]string{{"rank", "complaint_type", "complaints"}}
	s, err := summary.Summarize(rows, len(rows), TopTypesLimit)
	if err != nil {
		return out
	}
	for i, c := range s.TopTypes {
		out = append(out, []string{strconv.Itoa(i + 1), c.Value, strconv.Itoa(c.Count)})
	}
	return out
}

// Heatmap counts complaints per year (rows) and month (columns 1-12).
func Heatmap(rows []complaint.Row) [][]string {
	counts := map[int]*[12]int{}
	for _, r := range rows {
		c, ok := counts[r.Year]
		if !ok {
			c = &[12]int{}
			counts[r.Year] = c
		}
		c[r.Month-1]++
	}
	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	sort.Ints(years)

	header := []string{"year"}
	for m := time.January; m <= time.December; m++ {
		header = append(header, m.String()[:3])
	}
	out := [][]string{header}
	for _, y := range years {
		line := []string{strconv.Itoa(y)}
		for _, n := range counts[y] {
			line = append(line, strconv.Itoa(n))
		}
		out = append(out, line)
	}
	return out
}
