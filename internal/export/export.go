// Package export writes the cleaned complaint table to a single flat file in
// the run directory.
//
// Exporters register themselves by kind ("csv", "sqlite") from their init
// functions; import nypd311/internal/export/all to enable every built-in kind.
// Each export is written once into a path that must not already exist.
package export

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"nypd311/internal/complaint"
)

// DefaultBaseName is the file name, without extension, of the export.
const DefaultBaseName = "complaints"

// Exporter writes rows to path. The header fixes the column order.
type Exporter interface {
	// Ext is the file extension including the dot, e.g. ".csv".
	Ext() string
	Export(ctx context.Context, path string, header []string, rows []complaint.Row) (int64, error)
}

// Factory constructs an Exporter.
type Factory func() Exporter

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New returns the Exporter registered for kind.
func New(kind string) (Exporter, error) {
	mu.RLock()
	f, ok := factories[kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("export: unknown kind %q (registered: %v)", kind, Kinds())
	}
	return f(), nil
}

// Kinds lists the registered kinds in sorted order.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Stream feeds rows, rendered for header, into a channel that is closed when
// all rows are sent or ctx ends.
func Stream(ctx context.Context, header []string, rows []complaint.Row) <-chan []any {
	ch := make(chan []any)
	go func() {
		defer close(ch)
		for _, r := range rows {
			vals := make([]any, len(header))
			for i, col := range header {
				vals[i] = r.Value(col)
			}
			select {
			case ch <- vals:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
