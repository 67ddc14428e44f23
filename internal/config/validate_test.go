package config

import (
	"strings"
	"testing"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

func valid() Config {
	c := Default()
	c.Query = Query{Borough: "manhattan", StartYear: 2016, EndYear: 2017}
	c.Source.AppToken = "t"
	return c
}

/*
TestValidateRun_ValidMinimal verifies that a complete configuration produces
no issues at all.
*/
func TestValidateRun_ValidMinimal(t *testing.T) {
	if issues := ValidateRun(valid()); len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
}

/*
TestValidateRun_MissingQueryIsWarning verifies that unset query fields are only
warnings, since they can be prompted for.
*/
func TestValidateRun_MissingQueryIsWarning(t *testing.T) {
	c := valid()
	c.Query = Query{}
	issues := ValidateRun(c)

	if HasErrors(issues) {
		t.Fatalf("expected warnings only, got %+v", issues)
	}
	for _, path := range []string{"query.borough", "query.start_year", "query.end_year"} {
		if !hasIssue(t, issues, SeverityWarning, path, "interactively") {
			t.Fatalf("missing warning for %s: %+v", path, issues)
		}
	}
}

func TestValidateRun_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
		substr string
	}{
		{"empty job", func(c *Config) { c.Job = " " }, "job", "must not be empty"},
		{"bad borough", func(c *Config) { c.Query.Borough = "hoboken" }, "query.borough", "unknown borough"},
		{"start 2026", func(c *Config) { c.Query.StartYear = 2026 }, "query.start_year", "out of range"},
		{"end 2014", func(c *Config) { c.Query.EndYear = 2014 }, "query.end_year", "out of range"},
		{"end before start", func(c *Config) { c.Query.StartYear, c.Query.EndYear = 2020, 2019 }, "query.end_year", "before start_year"},
		{"relative base url", func(c *Config) { c.Source.BaseURL = "/resource" }, "source.base_url", "absolute"},
		{"empty dataset", func(c *Config) { c.Source.Dataset = "" }, "source.dataset", "must not be empty"},
		{"zero page limit", func(c *Config) { c.Source.PageLimit = 0 }, "source.page_limit", ">= 1"},
		{"zero timeout", func(c *Config) { c.Source.Timeout.Duration = 0 }, "source.timeout", "> 0"},
		{"negative retries", func(c *Config) { c.Source.MaxRetries = -1 }, "source.max_retries", ">= 0"},
		{"negative rps", func(c *Config) { c.Source.RequestsPerSecond = -1 }, "source.requests_per_second", ">= 0"},
		{"unknown required", func(c *Config) { c.Transform.Required = []string{"agency"} }, "transform.required[0]", "unknown column"},
		{"coordinate not kept", func(c *Config) { c.Transform.Required = []string{"created_date", "latitude"} }, "transform.required[1]", "not retained"},
		{"unknown export", func(c *Config) { c.Output.Export = "parquet" }, "output.export", "unknown export kind"},
		{"empty dir", func(c *Config) { c.Output.Dir = "" }, "output.dir", "must not be empty"},
		{"negative preview", func(c *Config) { c.Output.Preview = -2 }, "output.preview", ">= 0"},
		{"prompush without url", func(c *Config) { c.Metrics.Backend = "prompush" }, "metrics.pushgateway_url", "requires"},
		{"datadog without addr", func(c *Config) { c.Metrics.Backend = "datadog" }, "metrics.datadog_addr", "requires"},
		{"unknown backend", func(c *Config) { c.Metrics.Backend = "graphite" }, "metrics.backend", "unknown metrics backend"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level", "unknown log level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format", "unknown log format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			issues := ValidateRun(c)
			if !hasIssue(t, issues, SeverityError, tt.path, tt.substr) {
				t.Fatalf("expected error at %s containing %q; got %+v", tt.path, tt.substr, issues)
			}
		})
	}
}

func TestValidateRun_Warnings(t *testing.T) {
	c := valid()
	c.Source.AppToken = ""
	c.Source.BaseURL = "http://data.cityofnewyork.us"
	issues := ValidateRun(c)

	if HasErrors(issues) {
		t.Fatalf("unexpected errors: %+v", issues)
	}
	if !hasIssue(t, issues, SeverityWarning, "source.app_token", "anonymous") {
		t.Fatalf("missing app token warning: %+v", issues)
	}
	if !hasIssue(t, issues, SeverityWarning, "source.base_url", "https") {
		t.Fatalf("missing https warning: %+v", issues)
	}
}

func TestIssue_Error(t *testing.T) {
	got := Issue{Severity: SeverityError, Path: "output.export", Message: "bad"}.Error()
	if got != "error at output.export: bad" {
		t.Fatalf("unexpected Error(): %q", got)
	}
}
