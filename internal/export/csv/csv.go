// Package csv exports complaint rows as one CSV file whose header is the
// canonical column set.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/spf13/cast"

	"nypd311/internal/complaint"
	"nypd311/internal/export"
)

// Kind is the registry name of this exporter.
const Kind = "csv"

func init() {
	export.Register(Kind, func() export.Exporter { return Exporter{BatchSize: export.DefaultBatchSize} })
}

// Exporter writes CSV files.
type Exporter struct {
	BatchSize int
}

func (Exporter) Ext() string { return ".csv" }

// Export creates path, which must not exist, and writes header plus rows.
// A failed export removes the partial file.
func (e Exporter) Export(ctx context.Context, path string, header []string, rows []complaint.Row) (n int64, err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("csv: create: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("csv: close: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return 0, fmt.Errorf("csv: write header: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	batch := e.BatchSize
	if batch <= 0 {
		batch = export.DefaultBatchSize
	}
	n, err = export.LoadBatches(ctx, header, export.Stream(ctx, header, rows), batch, func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		rec := make([]string, len(header))
		for i, row := range rows {
			for j, v := range row {
				rec[j] = cast.ToString(v)
			}
			if err := w.Write(rec); err != nil {
				return int64(i), err
			}
		}
		w.Flush()
		return int64(len(rows)), w.Error()
	})
	if err != nil {
		return n, fmt.Errorf("csv: write rows: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return n, fmt.Errorf("csv: flush: %w", err)
	}
	return n, nil
}
