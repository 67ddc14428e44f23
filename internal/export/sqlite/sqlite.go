// Package sqlite exports complaint rows into a fresh single-table SQLite file.
// Rows are inserted in batches, each inside one transaction with a prepared
// statement.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"nypd311/internal/complaint"
	"nypd311/internal/export"
)

// Kind is the registry name of this exporter.
const Kind = "sqlite"

// DefaultTable is the table created in the export file.
const DefaultTable = "complaints"

func init() {
	export.Register(Kind, func() export.Exporter {
		return Exporter{Table: DefaultTable, BatchSize: export.DefaultBatchSize}
	})
}

// Exporter writes SQLite files.
type Exporter struct {
	Table     string
	BatchSize int
}

func (Exporter) Ext() string { return ".db" }

// columnType maps a complaint column to its SQLite storage class.
func columnType(col string) string {
	switch col {
	case complaint.Latitude, complaint.Longitude,
		complaint.XCoordinateStatePlane, complaint.YCoordinateStatePlane:
		return "REAL"
	case complaint.Year, complaint.Month:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

// CreateTableSQL returns the DDL for header.
func CreateTableSQL(table string, header []string) string {
	defs := make([]string, len(header))
	for i, col := range header {
		defs[i] = fmt.Sprintf("%q %s", col, columnType(col))
	}
	return fmt.Sprintf("CREATE TABLE %q (%s)", table, strings.Join(defs, ", "))
}

// Export creates the database file at path, which must not exist, creates one
// table and loads rows into it.
func (e Exporter) Export(ctx context.Context, path string, header []string, rows []complaint.Row) (n int64, err error) {
	if len(header) == 0 {
		return 0, errors.New("sqlite: header must not be empty")
	}
	if _, err := os.Stat(path); err == nil {
		return 0, fmt.Errorf("sqlite: %s already exists", path)
	}
	table := e.Table
	if table == "" {
		table = DefaultTable
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return 0, fmt.Errorf("sqlite: open: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("sqlite: close: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if _, err := db.ExecContext(ctx, CreateTableSQL(table, header)); err != nil {
		return 0, fmt.Errorf("sqlite: create table: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	batch := e.BatchSize
	if batch <= 0 {
		batch = export.DefaultBatchSize
	}
	n, err = export.LoadBatches(ctx, header, export.Stream(ctx, header, rows), batch, copyFn(db, table))
	if err != nil {
		return n, err
	}
	return n, nil
}

// copyFn inserts one batch inside a transaction.
func copyFn(db *sql.DB, table string) export.CopyFn {
	return func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		if len(rows) == 0 {
			return 0, nil
		}
		quoted := make([]string, len(columns))
		placeholders := make([]string, len(columns))
		for i, c := range columns {
			quoted[i] = fmt.Sprintf("%q", c)
			placeholders[i] = "?"
		}
		stmtSQL := fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)",
			table, strings.Join(quoted, ", "), strings.Join(placeholders, ", "))

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return 0, fmt.Errorf("sqlite: begin tx: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, stmtSQL)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, row := range rows {
			if len(row) != len(columns) {
				_ = tx.Rollback()
				return 0, fmt.Errorf("sqlite: row length %d != columns length %d", len(row), len(columns))
			}
			if _, err := stmt.ExecContext(ctx, row...); err != nil {
				_ = tx.Rollback()
				return 0, fmt.Errorf("sqlite: insert: %w", err)
			}
		}
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("sqlite: commit: %w", err)
		}
		return int64(len(rows)), nil
	}
}
