// Package fetcher pulls one bounded request per calendar year and keeps each
// year's outcome separate, so a failed year costs only its own records.
package fetcher

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"nypd311/internal/datasource"
	"nypd311/internal/metrics"
	"nypd311/internal/query"
	"nypd311/pkg/records"
)

// Chunk is the tagged outcome of one year's request: Records on success, Err
// on failure, never both.
type Chunk struct {
	Year     int
	Where    string
	Records  []records.Record
	Err      error
	Duration time.Duration
}

// OK reports whether the chunk succeeded.
func (c Chunk) OK() bool { return c.Err == nil }

// Manifest maps a failed year to the reason it failed.
type Manifest map[int]string

// Years returns the failed years in ascending order.
func (m Manifest) Years() []int {
	out := make([]int, 0, len(m))
	for y := range m {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// Failures collects the failed chunks.
func Failures(chunks []Chunk) Manifest {
	m := Manifest{}
	for _, c := range chunks {
		if !c.OK() {
			m[c.Year] = c.Err.Error()
		}
	}
	return m
}

// Merge concatenates the records of successful chunks in chunk order.
func Merge(chunks []Chunk) []records.Record {
	n := 0
	for _, c := range chunks {
		if c.OK() {
			n += len(c.Records)
		}
	}
	out := make([]records.Record, 0, n)
	for _, c := range chunks {
		if c.OK() {
			out = append(out, c.Records...)
		}
	}
	return out
}

// PerYear returns the record count of each successful year.
func PerYear(chunks []Chunk) map[int]int {
	out := make(map[int]int, len(chunks))
	for _, c := range chunks {
		if c.OK() {
			out[c.Year] = len(c.Records)
		}
	}
	return out
}

// Config configures a Fetcher.
type Config struct {
	Dataset string
	// Job labels metrics emitted for each chunk.
	Job string
	Log zerolog.Logger
}

// Fetcher issues the per-year requests sequentially.
type Fetcher struct {
	src     datasource.Source
	dataset string
	job     string
	log     zerolog.Logger
}

// New returns a Fetcher reading from src.
func New(src datasource.Source, cfg Config) *Fetcher {
	return &Fetcher{
		src:     src,
		dataset: cfg.Dataset,
		job:     cfg.Job,
		log:     cfg.Log,
	}
}

// Fetch requests each spec once, in ascending year order, and returns one
// Chunk per spec. A failing request does not stop later years. If ctx ends
// before all years are requested, Fetch returns the chunks gathered so far
// together with ctx.Err().
func (f *Fetcher) Fetch(ctx context.Context, specs []query.Spec) ([]Chunk, error) {
	ordered := append([]query.Spec(nil), specs...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Year < ordered[j].Year })

	chunks := make([]Chunk, 0, len(ordered))
	for _, s := range ordered {
		if err := ctx.Err(); err != nil {
			return chunks, err
		}
		c := f.fetchOne(ctx, s)
		chunks = append(chunks, c)
	}
	return chunks, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, s query.Spec) Chunk {
	c := Chunk{Year: s.Year, Where: s.Where()}
	start := time.Now()
	recs, err := f.src.Get(ctx, f.dataset, s.PageLimit, c.Where)
	c.Duration = time.Since(start)
	metrics.RecordChunk(f.job, s.Year, err, c.Duration)

	if err != nil {
		c.Err = err
		f.log.Warn().Err(err).Int("year", s.Year).Dur("took", c.Duration).Msg("Chunk failed, continuing")
		return c
	}
	if recs == nil {
		recs = []records.Record{}
	}
	c.Records = recs
	metrics.RecordRows(f.job, metrics.RowsFetched, len(recs))
	f.log.Info().Int("year", s.Year).Int("count", len(recs)).Dur("took", c.Duration).Msg("Fetched chunk")
	if len(recs) >= s.PageLimit && s.PageLimit > 0 {
		f.log.Warn().Int("year", s.Year).Int("page_limit", s.PageLimit).Msg("Chunk hit the page limit; later rows of this year were not fetched")
	}
	return c
}
