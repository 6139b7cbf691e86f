package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"ept/internal/config"
	"ept/internal/domain"
)

var _ History = (*MySQLHistory)(nil)

// MySQLHistory stores one row per suite and run in a MySQL table.
type MySQLHistory struct {
	db    *sql.DB
	table string
}

// OpenMySQLHistory connects to the history database, creating the database and
// the table when they do not exist yet.
func OpenMySQLHistory(ctx context.Context, settings config.DatabaseSettings, table string) (*MySQLHistory, error) {
	if !isValidIdentifier(table) {
		return nil, fmt.Errorf("invalid history table name: %s", table)
	}
	if !isValidIdentifier(settings.Name) {
		return nil, fmt.Errorf("invalid database name: %s", settings.Name)
	}

	if err := ensureDatabase(ctx, settings); err != nil {
		return nil, err
	}

	connector, err := mysql.NewConnector(settings.MySQLConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	h := &MySQLHistory{db: db, table: table}
	if _, err := db.ExecContext(ctx, h.createTableQuery()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return h, nil
}

// ensureDatabase connects to the server without selecting a database and
// creates the configured one if it is missing.
func ensureDatabase(ctx context.Context, settings config.DatabaseSettings) error {
	cfg := settings.MySQLConfig()
	name := cfg.DBName
	cfg.DBName = ""

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database server: %w", err)
	}
	db := sql.OpenDB(connector)
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database server: %w", err)
	}

	var exists bool
	query := "SELECT EXISTS(SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?)"
	if err := db.QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check database %s: %w", name, err)
	}
	if exists {
		return nil
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", name)); err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}
	return nil
}

func (h *MySQLHistory) createTableQuery() string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` ("+
		"id BIGINT AUTO_INCREMENT PRIMARY KEY, "+
		"run_id VARCHAR(36) NOT NULL, "+
		"suite VARCHAR(255) NOT NULL, "+
		"cases_total INT NOT NULL, "+
		"cases_passed INT NOT NULL, "+
		"checks_total INT NOT NULL, "+
		"checks_passed INT NOT NULL, "+
		"seconds DOUBLE NOT NULL, "+
		"passed BOOLEAN NOT NULL, "+
		"recorded_at DATETIME NOT NULL, "+
		"INDEX idx_run_id (run_id))", h.table)
}

// Record inserts one row per suite of the report inside a single transaction.
func (h *MySQLHistory) Record(ctx context.Context, report *domain.RunReport) error {
	entries := HistoryEntries(report, time.Now())
	if len(entries) == 0 {
		return nil
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf("INSERT INTO `%s` (run_id, suite, cases_total, cases_passed, checks_total, checks_passed, seconds, passed, recorded_at) "+
		"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)", h.table)
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, query, e.RunID, e.Suite, e.CasesTotal, e.CasesPassed,
			e.ChecksTotal, e.ChecksPassed, e.Seconds, e.Passed, e.RecordedAt); err != nil {
			return fmt.Errorf("insert history row for %s: %w", e.Suite, err)
		}
	}
	return tx.Commit()
}

// Recent returns the newest rows first.
func (h *MySQLHistory) Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	query := fmt.Sprintf("SELECT run_id, suite, cases_total, cases_passed, checks_total, checks_passed, seconds, passed, recorded_at "+
		"FROM `%s` ORDER BY recorded_at DESC, id DESC LIMIT ?", h.table)
	rows, err := h.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var (
			e  domain.HistoryEntry
			at time.Time
		)
		if err := rows.Scan(&e.RunID, &e.Suite, &e.CasesTotal, &e.CasesPassed,
			&e.ChecksTotal, &e.ChecksPassed, &e.Seconds, &e.Passed, &at); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.RecordedAt = at.Format(time.RFC3339)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database handle.
func (h *MySQLHistory) Close() error {
	return h.db.Close()
}

// HistoryEntries flattens a report into one entry per suite.
func HistoryEntries(report *domain.RunReport, at time.Time) []domain.HistoryEntry {
	entries := make([]domain.HistoryEntry, 0, len(report.Suites))
	for _, rec := range report.Suites {
		entries = append(entries, domain.HistoryEntry{
			RunID:        report.Meta.RunID,
			Suite:        rec.Name,
			CasesTotal:   rec.CasesTotal,
			CasesPassed:  rec.CasesPassed,
			ChecksTotal:  rec.ChecksTotal,
			ChecksPassed: rec.ChecksPassed,
			Seconds:      rec.Elapsed.Seconds(),
			Passed:       rec.Passed,
			RecordedAt:   at.UTC().Format("2006-01-02 15:04:05"),
		})
	}
	return entries
}

// isValidIdentifier allows names that are safe to quote with backticks.
func isValidIdentifier(name string) bool {
	if len(name) == 0 || len(name) > 64 {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	upper := strings.ToUpper(name)
	for _, word := range []string{"DROP", "DELETE", "TRUNCATE"} {
		if upper == word {
			return false
		}
	}
	return true
}
