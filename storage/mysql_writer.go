package storage

import (
	"context"

	_ "github.com/go-sql-driver/mysql"

	"executive-analytics/utils"
)

var mysqlDialect = dialect{
	driver:      "mysql",
	placeholder: func(int) string { return "?" },
	types: map[columnType]string{
		colText:  "VARCHAR(255)",
		colTime:  "DATETIME",
		colInt:   "BIGINT",
		colFloat: "DOUBLE",
		colBool:  "BOOLEAN",
	},
	idColumn:  "id BIGINT AUTO_INCREMENT PRIMARY KEY",
	createdAt: "created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP",
	jsonType:  "JSON",
}

// MySQLWriter persists records, snapshots and alerts to MySQL.
type MySQLWriter struct {
	*sqlStore
}

// NewMySQLWriter opens a MySQL connection, runs schema migrations and returns
// a ready-to-use MySQLWriter.
func NewMySQLWriter(ctx context.Context, dsn string, retry utils.RetryConfig, logger *utils.Logger) (*MySQLWriter, error) {
	s, err := openStore(ctx, mysqlDialect, dsn, retry, logger)
	if err != nil {
		return nil, err
	}
	s.db.SetMaxOpenConns(10)
	s.db.SetMaxIdleConns(5)
	return &MySQLWriter{sqlStore: s}, nil
}
