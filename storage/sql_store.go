package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"executive-analytics/models"
	"executive-analytics/utils"
)

// columnType is the portable type of a record column.
type columnType int

const (
	colText columnType = iota
	colTime
	colInt
	colFloat
	colBool
)

var columnTypes = map[string]columnType{
	"application_dt": colTime, "vol_start_dt": colTime, "inactive_dt": colTime,
	"volunteer_since": colTime, "last_login": colTime,
	"days_to_vol_start": colInt, "year": colInt, "drives_count": colInt,
	"rbc_product_projection": colInt, "rbc_products_collected": colInt,
	"latitude": colFloat, "longitude": colFloat, "engagement_score": colFloat,
	"retention_risk_score": colFloat, "gift_amount": colFloat, "lifetime_value": colFloat,
	"conversion_success": colBool, "is_active": colBool, "disaster_response": colBool,
}

// recordTables maps every record table to its columns.
var recordTables = map[string][]string{
	TableApplicants:  applicantColumns,
	TableVolunteers:  volunteerColumns,
	TableBloodDrives: bloodDriveColumns,
	TableDonors:      donorColumns,
}

// dialect captures what differs between the SQL backends.
type dialect struct {
	driver      string
	placeholder func(n int) string
	types       map[columnType]string
	idColumn    string
	createdAt   string
	jsonType    string
	// extra statements run after the tables exist
	indexes []string
}

func (d dialect) createTable(table string, columns []string) string {
	defs := []string{d.idColumn}
	for _, c := range columns {
		defs = append(defs, fmt.Sprintf("%s %s", c, d.types[columnTypes[c]]))
	}
	defs = append(defs, d.createdAt)
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", table, strings.Join(defs, ",\n\t"))
}

func (d dialect) migrations() []string {
	stmts := make([]string, 0, len(recordTables)+2+len(d.indexes))
	for _, name := range []string{TableApplicants, TableVolunteers, TableBloodDrives, TableDonors} {
		stmts = append(stmts, d.createTable(name, recordTables[name]))
	}
	stmts = append(stmts,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS kpi_snapshots (
	%s,
	run_id VARCHAR(64) NOT NULL,
	generated_at %s NOT NULL,
	payload %s NOT NULL,
	%s
)`, d.idColumn, d.types[colTime], d.jsonType, d.createdAt),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS executive_alerts (
	%s,
	alert_type VARCHAR(100) NOT NULL,
	message %s NOT NULL,
	data %s,
	%s
)`, d.idColumn, d.types[colText], d.jsonType, d.createdAt),
	)
	return append(stmts, d.indexes...)
}

// insertStatement builds a multi-row INSERT for nrows rows.
func (d dialect) insertStatement(table string, columns []string, nrows int) string {
	tuples := make([]string, 0, nrows)
	n := 0
	for r := 0; r < nrows; r++ {
		ph := make([]string, len(columns))
		for c := range columns {
			n++
			ph[c] = d.placeholder(n)
		}
		tuples = append(tuples, "("+strings.Join(ph, ",")+")")
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, strings.Join(columns, ", "), strings.Join(tuples, ","))
}

// sqlStore implements RecordWriter over database/sql for one dialect.
type sqlStore struct {
	db      *sql.DB
	dialect dialect
	logger  *utils.Logger
}

// openStore opens the database, pings it with retries and runs migrations.
func openStore(ctx context.Context, d dialect, dsn string, retry utils.RetryConfig, logger *utils.Logger) (*sqlStore, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", d.driver, err)
	}

	if err := retry.Do(ctx, d.driver+" ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &sqlStore{db: db, dialect: d, logger: logger}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: migrate: %w", d.driver, err)
	}
	logger.Info("[%s] connected and migrated", d.driver)
	return s, nil
}

func (s *sqlStore) migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.migrations() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertBatch writes rows with one multi-row INSERT.
func (s *sqlStore) InsertBatch(ctx context.Context, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	args := make([]any, 0, len(rows)*len(columns))
	for _, r := range rows {
		if len(r) != len(columns) {
			return fmt.Errorf("%s: row has %d values for %d columns", table, len(r), len(columns))
		}
		args = append(args, r...)
	}
	_, err := s.db.ExecContext(ctx, s.dialect.insertStatement(table, columns, len(rows)), args...)
	return err
}

// Clear deletes all rows of a record table.
func (s *sqlStore) Clear(ctx context.Context, table string) error {
	if _, ok := recordTables[table]; !ok {
		return fmt.Errorf("%s: clear: unknown table %q", s.dialect.driver, table)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("%s: clear %s: %w", s.dialect.driver, table, err)
	}
	return nil
}

// SaveSnapshot stores the snapshot as a JSON document.
func (s *sqlStore) SaveSnapshot(ctx context.Context, snap *models.KpiSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%s: encode snapshot: %w", s.dialect.driver, err)
	}
	q := fmt.Sprintf("INSERT INTO kpi_snapshots (run_id, generated_at, payload) VALUES (%s,%s,%s)",
		s.dialect.placeholder(1), s.dialect.placeholder(2), s.dialect.placeholder(3))
	if _, err := s.db.ExecContext(ctx, q, snap.RunID, snap.GeneratedAt, string(payload)); err != nil {
		return fmt.Errorf("%s: save snapshot: %w", s.dialect.driver, err)
	}
	return nil
}

// SaveAlert appends a row to executive_alerts.
func (s *sqlStore) SaveAlert(ctx context.Context, alert Alert) error {
	var data any
	if alert.Data != nil {
		b, err := json.Marshal(alert.Data)
		if err != nil {
			return fmt.Errorf("%s: encode alert: %w", s.dialect.driver, err)
		}
		data = string(b)
	}
	q := fmt.Sprintf("INSERT INTO executive_alerts (alert_type, message, data) VALUES (%s,%s,%s)",
		s.dialect.placeholder(1), s.dialect.placeholder(2), s.dialect.placeholder(3))
	if _, err := s.db.ExecContext(ctx, q, alert.Type, alert.Message, data); err != nil {
		return fmt.Errorf("%s: save alert: %w", s.dialect.driver, err)
	}
	return nil
}

// LatestSnapshot returns the most recently stored snapshot, or nil when none
// has been stored yet.
func (s *sqlStore) LatestSnapshot(ctx context.Context) (*models.KpiSnapshot, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM kpi_snapshots ORDER BY id DESC LIMIT 1").Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: latest snapshot: %w", s.dialect.driver, err)
	}
	snap := &models.KpiSnapshot{}
	if err := json.Unmarshal(payload, snap); err != nil {
		return nil, fmt.Errorf("%s: decode snapshot: %w", s.dialect.driver, err)
	}
	return snap, nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
