// Package datasource defines the remote query contract consumed by the
// chunked fetcher.
package datasource

import (
	"context"

	"nypd311/pkg/records"
)

// Source answers one bounded query against a dataset: at most limit rows
// matching the where predicate. Implementations must be safe to call
// repeatedly with the same arguments.
type Source interface {
	Get(ctx context.Context, dataset string, limit int, where string) ([]records.Record, error)
}
