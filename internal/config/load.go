package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
)

// binding ties one setting to its flag and environment variable.
type binding struct {
	flag  string
	env   string
	usage string
	set   func(c *Config, v string) error
}

func str(dst func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error { *dst(c) = v; return nil }
}

func integer(dst func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := cast.ToIntE(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*dst(c) = n
		return nil
	}
}

func boolean(dst func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := cast.ToBoolE(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*dst(c) = b
		return nil
	}
}

// list accepts "a,b" and pflag's "[a,b]" rendering.
func list(dst func(*Config) *[]string) func(*Config, string) error {
	return func(c *Config, v string) error {
		v = strings.Trim(strings.TrimSpace(v), "[]")
		var out []string
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				out = append(out, f)
			}
		}
		*dst(c) = out
		return nil
	}
}

var bindings = []binding{
	{"job", "NYPD311_JOB", "job name used for metrics", str(func(c *Config) *string { return &c.Job })},
	{"borough", "NYPD311_BOROUGH", "borough: bronx, brooklyn, manhattan, queens, staten_island", str(func(c *Config) *string { return &c.Query.Borough })},
	{"start-year", "NYPD311_START_YEAR", "first year (2015-2024)", integer(func(c *Config) *int { return &c.Query.StartYear })},
	{"end-year", "NYPD311_END_YEAR", "last year (2015-2024)", integer(func(c *Config) *int { return &c.Query.EndYear })},
	{"base-url", "NYPD311_BASE_URL", "open-data portal base URL", str(func(c *Config) *string { return &c.Source.BaseURL })},
	{"dataset", "NYPD311_DATASET", "dataset identifier", str(func(c *Config) *string { return &c.Source.Dataset })},
	{"app-token", "SOCRATA_APP_TOKEN", "Socrata app token", str(func(c *Config) *string { return &c.Source.AppToken })},
	{"page-limit", "NYPD311_PAGE_LIMIT", "maximum rows requested per year", integer(func(c *Config) *int { return &c.Source.PageLimit })},
	{"timeout", "NYPD311_TIMEOUT", "per-request timeout (Go duration)", func(c *Config, v string) error {
		d, err := cast.ToDurationE(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		c.Source.Timeout = Duration{d}
		return nil
	}},
	{"max-retries", "NYPD311_MAX_RETRIES", "retries per request after the first attempt", integer(func(c *Config) *int { return &c.Source.MaxRetries })},
	{"rps", "NYPD311_RPS", "request rate limit per second (0 = unlimited)", func(c *Config, v string) error {
		f, err := cast.ToFloat64E(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		c.Source.RequestsPerSecond = f
		return nil
	}},
	{"dedupe", "NYPD311_DEDUPE", "drop repeated unique_key rows", boolean(func(c *Config) *bool { return &c.Transform.Dedupe })},
	{"require", "NYPD311_REQUIRED", "required fields (comma separated)", list(func(c *Config) *[]string { return &c.Transform.Required })},
	{"coordinates", "NYPD311_COORDINATES", "keep latitude/longitude and state-plane columns", boolean(func(c *Config) *bool { return &c.Transform.Coordinates })},
	{"output-dir", "NYPD311_OUTPUT_DIR", "root directory for run directories", str(func(c *Config) *string { return &c.Output.Dir })},
	{"export", "NYPD311_EXPORT", "export kind: csv or sqlite", str(func(c *Config) *string { return &c.Output.Export })},
	{"open", "NYPD311_OPEN", "open report artifacts in the system viewer", boolean(func(c *Config) *bool { return &c.Output.Open })},
	{"preview", "NYPD311_PREVIEW", "log the first N cleaned rows", integer(func(c *Config) *int { return &c.Output.Preview })},
	{"metrics-backend", "METRICS_BACKEND", "metrics backend: none, prompush, datadog", str(func(c *Config) *string { return &c.Metrics.Backend })},
	{"pushgateway-url", "PUSHGATEWAY_URL", "Prometheus Pushgateway URL", str(func(c *Config) *string { return &c.Metrics.PushgatewayURL })},
	{"datadog-addr", "NYPD311_DATADOG_ADDR", "DogStatsD address", str(func(c *Config) *string { return &c.Metrics.DatadogAddr })},
	{"log-level", "NYPD311_LOG_LEVEL", "log level: debug, info, warn, error", str(func(c *Config) *string { return &c.Log.Level })},
	{"log-format", "NYPD311_LOG_FORMAT", "log format: console or json", str(func(c *Config) *string { return &c.Log.Format })},
}

// globalFlags are registered on the root command; the rest on "run".
var globalFlags = map[string]bool{"log-level": true, "log-format": true}

// RegisterFlags declares the run flags on fs. Defaults shown in help come
// from Default; only flags the user sets override the other layers.
func RegisterFlags(fs *pflag.FlagSet) {
	register(fs, func(b binding) bool { return !globalFlags[b.flag] })
}

// RegisterGlobalFlags declares the flags shared by every command.
func RegisterGlobalFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (.json or .toml)")
	register(fs, func(b binding) bool { return globalFlags[b.flag] })
}

func register(fs *pflag.FlagSet, keep func(binding) bool) {
	def := Default()
	for _, b := range bindings {
		if !keep(b) || fs.Lookup(b.flag) != nil {
			continue
		}
		switch b.flag {
		case "start-year", "end-year", "page-limit", "max-retries", "preview":
			fs.Int(b.flag, 0, b.usage)
		case "dedupe", "coordinates", "open":
			fs.Bool(b.flag, false, b.usage)
		case "require":
			fs.StringSlice(b.flag, def.Transform.Required, b.usage)
		case "rps":
			fs.Float64(b.flag, def.Source.RequestsPerSecond, b.usage)
		case "timeout":
			fs.Duration(b.flag, def.Source.Timeout.Duration, b.usage)
		default:
			fs.String(b.flag, "", b.usage)
		}
	}
}

// Load builds a Config from defaults, the file at path (skipped when path is
// empty) and the environment as seen through lookup. Pass os.LookupEnv in
// production.
func Load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if lookup != nil {
		if err := applyEnv(&cfg, lookup); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("config: decode %s: %w", path, err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("config: decode %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config: %s: unsupported extension %q (want .json or .toml)", path, ext)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for _, b := range bindings {
		v, ok := lookup(b.env)
		if !ok || v == "" {
			continue
		}
		if err := b.set(cfg, v); err != nil {
			return fmt.Errorf("config: env %s=%q: %w", b.env, v, err)
		}
	}
	return nil
}

// ApplyFlags overrides cfg with every flag in fs that was set on the command
// line. Flags left at their defaults do not override file or environment
// values.
func ApplyFlags(cfg *Config, fs *pflag.FlagSet) error {
	byFlag := make(map[string]binding, len(bindings))
	for _, b := range bindings {
		byFlag[b.flag] = b
	}
	var firstErr error
	fs.Visit(func(f *pflag.Flag) {
		b, ok := byFlag[f.Name]
		if !ok || firstErr != nil {
			return
		}
		if err := b.set(cfg, f.Value.String()); err != nil {
			firstErr = fmt.Errorf("config: flag --%s: %w", f.Name, err)
		}
	})
	return firstErr
}

// FilePath returns the --config value from fs, or NYPD311_CONFIG.
func FilePath(fs *pflag.FlagSet, lookup func(string) (string, bool)) string {
	if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
		return f.Value.String()
	}
	if lookup != nil {
		if v, ok := lookup("NYPD311_CONFIG"); ok {
			return v
		}
	}
	return ""
}
