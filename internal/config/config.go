// Package config defines the run configuration and how it is assembled:
// built-in defaults, then an optional JSON or TOML file, then environment
// variables, then command-line flags that were explicitly set.
//
// Example (TOML):
//
//	job = "nypd311"
//
//	[query]
//	borough = "brooklyn"
//	start_year = 2019
//	end_year = 2021
//
//	[source]
//	page_limit = 5000
//	timeout = "120s"
//
//	[output]
//	export = "sqlite"
package config

import (
	"fmt"
	"time"

	"nypd311/internal/complaint"
	"nypd311/internal/query"
)

// Config is the complete configuration of a run.
type Config struct {
	// Job labels metrics and names the Pushgateway group.
	Job       string    `json:"job" toml:"job"`
	Query     Query     `json:"query" toml:"query"`
	Source    Source    `json:"source" toml:"source"`
	Transform Transform `json:"transform" toml:"transform"`
	Output    Output    `json:"output" toml:"output"`
	Metrics   Metrics   `json:"metrics" toml:"metrics"`
	Log       Log       `json:"log" toml:"log"`
}

// Query selects the borough and the inclusive year span. Zero values mean
// "not given"; the CLI prompts for them on a terminal.
type Query struct {
	Borough   string `json:"borough" toml:"borough"`
	StartYear int    `json:"start_year" toml:"start_year"`
	EndYear   int    `json:"end_year" toml:"end_year"`
}

// Source configures the remote dataset and the HTTP client. PageLimit bounds
// the rows requested per year.
type Source struct {
	BaseURL           string   `json:"base_url" toml:"base_url"`
	Dataset           string   `json:"dataset" toml:"dataset"`
	AppToken          string   `json:"app_token" toml:"app_token"`
	PageLimit         int      `json:"page_limit" toml:"page_limit"`
	Timeout           Duration `json:"timeout" toml:"timeout"`
	MaxRetries        int      `json:"max_retries" toml:"max_retries"`
	RequestsPerSecond float64  `json:"requests_per_second" toml:"requests_per_second"`
}

// Transform configures cleaning.
type Transform struct {
	Dedupe      bool     `json:"dedupe" toml:"dedupe"`
	Required    []string `json:"required" toml:"required"`
	Coordinates bool     `json:"coordinates" toml:"coordinates"`
}

// Output configures where results go. Open launches the host viewer for
// each report artifact; Preview logs the first rows of the cleaned table.
type Output struct {
	Dir     string `json:"dir" toml:"dir"`
	Export  string `json:"export" toml:"export"`
	Open    bool   `json:"open" toml:"open"`
	Preview int    `json:"preview" toml:"preview"`
}

// Metrics selects a metrics backend: "none", "prompush" or "datadog".
type Metrics struct {
	Backend        string `json:"backend" toml:"backend"`
	PushgatewayURL string `json:"pushgateway_url" toml:"pushgateway_url"`
	DatadogAddr    string `json:"datadog_addr" toml:"datadog_addr"`
}

// Log configures the root logger.
type Log struct {
	Level  string `json:"level" toml:"level"`
	Format string `json:"format" toml:"format"`
}

// Duration is a time.Duration written as a Go duration string ("120s").
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("config: duration %q: %w", string(b), err)
	}
	d.Duration = v
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Job: "nypd311",
		Source: Source{
			BaseURL:           "https://data.cityofnewyork.us",
			Dataset:           "erm2-nwe9",
			PageLimit:         5000,
			Timeout:           Duration{120 * time.Second},
			MaxRetries:        0,
			RequestsPerSecond: 2,
		},
		Transform: Transform{
			Dedupe:   true,
			Required: append([]string(nil), complaint.DefaultRequired...),
		},
		Output: Output{
			Dir:    "output",
			Export: "csv",
		},
		Metrics: Metrics{Backend: "none"},
		Log:     Log{Level: "info", Format: "console"},
	}
}

// Range converts the query section into a validated query.Range.
func (c Config) Range() (query.Range, error) {
	b, err := query.ParseBorough(c.Query.Borough)
	if err != nil {
		return query.Range{}, err
	}
	r := query.Range{
		Borough:   b,
		StartYear: c.Query.StartYear,
		EndYear:   c.Query.EndYear,
		PageLimit: c.Source.PageLimit,
	}
	if err := r.Validate(); err != nil {
		return query.Range{}, err
	}
	return r, nil
}

// Columns returns the column groups selected by the transform section.
func (c Config) Columns() complaint.Columns {
	return complaint.Columns{Coordinates: c.Transform.Coordinates}
}
