package storage

import (
	"context"
	"fmt"

	_ "github.com/lib/pq"

	"executive-analytics/utils"
)

var postgresDialect = dialect{
	driver:      "postgres",
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	types: map[columnType]string{
		colText:  "TEXT",
		colTime:  "TIMESTAMPTZ",
		colInt:   "BIGINT",
		colFloat: "DOUBLE PRECISION",
		colBool:  "BOOLEAN",
	},
	idColumn:  "id BIGSERIAL PRIMARY KEY",
	createdAt: "created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()",
	jsonType:  "JSONB",
	indexes: []string{
		"CREATE INDEX IF NOT EXISTS idx_applicants_state   ON applicants(state)",
		"CREATE INDEX IF NOT EXISTS idx_volunteers_state   ON volunteers(state)",
		"CREATE INDEX IF NOT EXISTS idx_blood_drives_year  ON blood_drives(year)",
		"CREATE INDEX IF NOT EXISTS idx_donors_category    ON donors(donor_category)",
		"CREATE INDEX IF NOT EXISTS idx_kpi_snapshots_time ON kpi_snapshots(generated_at)",
	},
}

// PostgresWriter persists records, snapshots and alerts to PostgreSQL.
type PostgresWriter struct {
	*sqlStore
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(ctx context.Context, dsn string, retry utils.RetryConfig, logger *utils.Logger) (*PostgresWriter, error) {
	s, err := openStore(ctx, postgresDialect, dsn, retry, logger)
	if err != nil {
		return nil, err
	}
	return &PostgresWriter{sqlStore: s}, nil
}
