package main

import (
	"fmt"

	"nypd311/internal/config"
	"nypd311/internal/metrics"
	"nypd311/internal/metrics/datadog"
	"nypd311/internal/metrics/prompush"
)

// setupMetrics installs the backend named in cfg. The returned flush pushes
// or drains it and is safe to call when the backend is "none".
func setupMetrics(cfg config.Config) (flush func() error, err error) {
	switch cfg.Metrics.Backend {
	case "", "none":
	case "prompush":
		b, err := prompush.NewBackend(cfg.Job, cfg.Metrics.PushgatewayURL)
		if err != nil {
			return nil, err
		}
		metrics.SetBackend(b)
	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       cfg.Metrics.DatadogAddr,
			GlobalTags: []string{"job:" + cfg.Job},
		})
		if err != nil {
			return nil, err
		}
		metrics.SetBackend(b)
	default:
		return nil, fmt.Errorf("unknown metrics backend %q", cfg.Metrics.Backend)
	}
	return metrics.Flush, nil
}
