package storage

import (
	"context"
	"fmt"
)

// DefaultBatchSize is used when a non-positive batch size is requested.
const DefaultBatchSize = 1000

// BatchError describes one failed batch.
type BatchError struct {
	Table string
	Index int
	Rows  int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%s batch %d (%d rows): %v", e.Table, e.Index, e.Rows, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// BatchReport is the outcome of writing one table in batches. A failed batch
// does not stop the batches after it.
type BatchReport struct {
	Table       string
	Rows        int
	Succeeded   int
	Failed      int
	RowsWritten int
	Errors      []*BatchError
}

// OK reports whether every batch was written.
func (r BatchReport) OK() bool { return r.Failed == 0 }

func (r BatchReport) String() string {
	return fmt.Sprintf("%s: %d/%d rows written, %d batch(es) ok, %d failed",
		r.Table, r.RowsWritten, r.Rows, r.Succeeded, r.Failed)
}

// Batches splits rows into consecutive slices of at most size rows.
func Batches(rows [][]any, size int) [][][]any {
	if size <= 0 {
		size = DefaultBatchSize
	}
	out := make([][][]any, 0, (len(rows)+size-1)/size)
	for i := 0; i < len(rows); i += size {
		end := i + size
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[i:end])
	}
	return out
}

// WriteBatches inserts t through ins in batches of size rows. Failed batches
// are recorded and skipped; batches are not retried. Once ctx is done the
// remaining batches are reported as failed without being attempted.
func WriteBatches(ctx context.Context, ins BatchInserter, t Table, size int) BatchReport {
	report := BatchReport{Table: t.Name, Rows: len(t.Rows)}

	for i, batch := range Batches(t.Rows, size) {
		err := ctx.Err()
		if err == nil {
			err = ins.InsertBatch(ctx, t.Name, t.Columns, batch)
		}
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, &BatchError{Table: t.Name, Index: i, Rows: len(batch), Err: err})
			continue
		}
		report.Succeeded++
		report.RowsWritten += len(batch)
	}
	return report
}
