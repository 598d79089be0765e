package storage

import (
	"context"

	"executive-analytics/models"
)

// BatchInserter inserts one batch of rows into a table in a single statement.
type BatchInserter interface {
	InsertBatch(ctx context.Context, table string, columns []string, rows [][]any) error
}

// RecordWriter is the interface any SQL storage backend must satisfy.
type RecordWriter interface {
	BatchInserter
	// Clear removes previously ingested rows from a record table.
	Clear(ctx context.Context, table string) error
	SaveSnapshot(ctx context.Context, snap *models.KpiSnapshot) error
	SaveAlert(ctx context.Context, alert Alert) error
	Close() error
}

// Alert is a row of the executive_alerts table.
type Alert struct {
	Type    string
	Message string
	Data    any
}
