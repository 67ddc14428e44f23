package export

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBatchSize is the number of rows handed to a CopyFn at once.
const DefaultBatchSize = 1000

// CopyFn writes one batch of rows aligned to columns and returns the number
// of rows written.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches drains rows from in, groups them into batches of batchSize and
// calls copyFn for each non-empty batch. It returns the total reported by
// copyFn and the first error. Progress is logged to the logger in ctx.
func LoadBatches(
	ctx context.Context,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("export: batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("export: copyFn must not be nil")
	}
	log := zerolog.Ctx(ctx)

	var (
		total   int64
		batches int
		batch   = make([][]any, 0, batchSize)
		start   = time.Now()
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		total += n
		batch = batch[:0]
		if err != nil {
			return err
		}
		batches++
		log.Debug().
			Int("batch", batches).
			Int64("written", n).
			Int64("total", total).
			Dur("elapsed", time.Since(start)).
			Msg("Export batch written")
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()

		case row, ok := <-in:
			if !ok {
				if err := ctx.Err(); err != nil {
					return total, err
				}
				if err := flush(); err != nil {
					return total, err
				}
				return total, nil
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}
