package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dvloznov/valueinc-sales/internal/frame"
	_ "modernc.org/sqlite"
)

// DefaultSQLiteTable is the table the SQLite sink writes when none is given.
const DefaultSQLiteTable = "sales_cleaned"

// indexedColumns get an index when present in the exported table.
var indexedColumns = []string{"TransactionId", "Date"}

// SQLiteSink writes the table into a SQLite database file, replacing any
// previous table of the same name in one transaction.
type SQLiteSink struct {
	path  string
	table string
}

// NewSQLiteSink creates a SQLiteSink for the database at path.
func NewSQLiteSink(path, table string) *SQLiteSink {
	if table == "" {
		table = DefaultSQLiteTable
	}
	return &SQLiteSink{path: path, table: table}
}

func (s *SQLiteSink) Name() string { return "sqlite" }

func (s *SQLiteSink) Write(ctx context.Context, runID string, f *frame.Frame) error {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("SQLiteSink: open %q: %w", s.path, err)
	}
	defer db.Close()

	if err := s.write(ctx, db, f); err != nil {
		return fmt.Errorf("SQLiteSink: %w", err)
	}
	return nil
}

func (s *SQLiteSink) write(ctx context.Context, db *sql.DB, f *frame.Frame) error {
	cols := f.Columns()
	colKinds, err := kinds(f)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %q`, s.table)); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(s.table, cols, colKinds)); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	for _, c := range indexedColumns {
		if !f.Has(c) {
			continue
		}
		q := fmt.Sprintf(`CREATE INDEX %q ON %q (%q)`, "idx_"+s.table+"_"+strings.ToLower(c), s.table, c)
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create index on %s: %w", c, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(s.table, cols))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	for i := 0; i < f.Len(); i++ {
		for j, name := range cols {
			v, err := typedValue(colKinds[j], f.Value(i, name))
			if err != nil {
				return fmt.Errorf("row %d column %s: %w", i, name, err)
			}
			args[j] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func sqliteType(k frame.Kind) string {
	switch k {
	case frame.KindFloat32:
		return "REAL"
	case frame.KindInt16:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

func createTableSQL(table string, cols []string, colKinds []frame.Kind) string {
	defs := make([]string, len(cols))
	for j, c := range cols {
		defs[j] = fmt.Sprintf("%q %s", c, sqliteType(colKinds[j]))
	}
	return fmt.Sprintf(`CREATE TABLE %q (%s)`, table, strings.Join(defs, ","))
}

func insertSQL(table string, cols []string) string {
	qCols := make([]string, len(cols))
	for j, c := range cols {
		qCols[j] = fmt.Sprintf("%q", c)
	}
	ph := strings.TrimRight(strings.Repeat("?,", len(cols)), ",")
	return fmt.Sprintf(`INSERT INTO %q (%s) VALUES (%s)`, table, strings.Join(qCols, ","), ph)
}
