package config

// This file holds the static checks run before any remote call. They return
// a list of issues (errors and warnings) the CLI prints; callers decide
// whether warnings are fatal.

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"nypd311/internal/complaint"
	"nypd311/internal/query"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single validation finding. Path is a dotted path into the config
// (e.g. "query.start_year", "metrics.pushgateway_url").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ExportKinds lists the export kinds a config may name.
var ExportKinds = []string{"csv", "sqlite"}

// ValidateRun performs static validation of c. Query fields left at zero
// produce warnings only, since they can still be supplied interactively.
func ValidateRun(c Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Job) == "" {
		issues = append(issues, Issue{SeverityError, "job", "job must not be empty; it labels metrics"})
	}
	issues = append(issues, validateQuery(c.Query)...)
	issues = append(issues, validateSource(c.Source)...)
	issues = append(issues, validateTransform(c.Transform)...)
	issues = append(issues, validateOutput(c.Output)...)
	issues = append(issues, validateMetrics(c.Metrics)...)
	issues = append(issues, validateLog(c.Log)...)
	return issues
}

func validateQuery(q Query) []Issue {
	var issues []Issue

	if strings.TrimSpace(q.Borough) == "" {
		issues = append(issues, Issue{SeverityWarning, "query.borough", "borough not set; it must be given interactively"})
	} else if _, err := query.ParseBorough(q.Borough); err != nil {
		issues = append(issues, Issue{SeverityError, "query.borough", err.Error()})
	}

	years := []struct {
		path string
		v    int
	}{{"query.start_year", q.StartYear}, {"query.end_year", q.EndYear}}
	for _, y := range years {
		if y.v == 0 {
			issues = append(issues, Issue{SeverityWarning, y.path, "year not set; it must be given interactively"})
			continue
		}
		if err := query.ValidateYear(y.v); err != nil {
			issues = append(issues, Issue{SeverityError, y.path, err.Error()})
		}
	}
	if q.StartYear != 0 && q.EndYear != 0 && q.EndYear < q.StartYear {
		issues = append(issues, Issue{SeverityError, "query.end_year",
			fmt.Sprintf("end_year %d is before start_year %d", q.EndYear, q.StartYear)})
	}
	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue

	u, err := url.Parse(s.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, Issue{SeverityError, "source.base_url", fmt.Sprintf("base_url %q must be an absolute URL", s.BaseURL)})
	} else if u.Scheme != "https" {
		issues = append(issues, Issue{SeverityWarning, "source.base_url", "base_url is not https"})
	}
	if strings.TrimSpace(s.Dataset) == "" {
		issues = append(issues, Issue{SeverityError, "source.dataset", "dataset must not be empty"})
	}
	if s.PageLimit < 1 {
		issues = append(issues, Issue{SeverityError, "source.page_limit", "page_limit must be >= 1"})
	}
	if s.Timeout.Duration <= 0 {
		issues = append(issues, Issue{SeverityError, "source.timeout", "timeout must be > 0"})
	}
	if s.MaxRetries < 0 {
		issues = append(issues, Issue{SeverityError, "source.max_retries", "max_retries must be >= 0"})
	}
	if s.RequestsPerSecond < 0 {
		issues = append(issues, Issue{SeverityError, "source.requests_per_second", "requests_per_second must be >= 0"})
	}
	if s.AppToken == "" {
		issues = append(issues, Issue{SeverityWarning, "source.app_token", "no app token; requests share the anonymous rate limit"})
	}
	return issues
}

func validateTransform(t Transform) []Issue {
	var issues []Issue

	keep := map[string]bool{}
	for _, f := range (complaint.Columns{Coordinates: t.Coordinates}).KeepList() {
		keep[f] = true
	}
	for i, f := range t.Required {
		path := fmt.Sprintf("transform.required[%d]", i)
		switch {
		case !complaint.Known(f):
			issues = append(issues, Issue{SeverityError, path, fmt.Sprintf("unknown column %q", f)})
		case !keep[f]:
			issues = append(issues, Issue{SeverityError, path,
				fmt.Sprintf("column %q is not retained; enable transform.coordinates or drop it", f)})
		}
	}
	return issues
}

func validateOutput(o Output) []Issue {
	var issues []Issue

	if strings.TrimSpace(o.Dir) == "" {
		issues = append(issues, Issue{SeverityError, "output.dir", "dir must not be empty"})
	}
	known := false
	for _, k := range ExportKinds {
		if o.Export == k {
			known = true
		}
	}
	if !known {
		issues = append(issues, Issue{SeverityError, "output.export",
			fmt.Sprintf("unknown export kind %q (want one of %s)", o.Export, strings.Join(ExportKinds, ", "))})
	}
	if o.Preview < 0 {
		issues = append(issues, Issue{SeverityError, "output.preview", "preview must be >= 0"})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch m.Backend {
	case "", "none":
	case "prompush":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{SeverityError, "metrics.pushgateway_url", "prompush backend requires pushgateway_url"})
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			issues = append(issues, Issue{SeverityError, "metrics.datadog_addr", "datadog backend requires datadog_addr"})
		}
	default:
		issues = append(issues, Issue{SeverityError, "metrics.backend",
			fmt.Sprintf("unknown metrics backend %q (want none, prompush or datadog)", m.Backend)})
	}
	return issues
}

func validateLog(l Log) []Issue {
	var issues []Issue

	if _, err := zerolog.ParseLevel(l.Level); err != nil || l.Level == "" {
		issues = append(issues, Issue{SeverityError, "log.level", fmt.Sprintf("unknown log level %q", l.Level)})
	}
	switch l.Format {
	case "console", "json":
	default:
		issues = append(issues, Issue{SeverityError, "log.format", fmt.Sprintf("unknown log format %q (want console or json)", l.Format)})
	}
	return issues
}
