package mirror

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gridbase/internal/domain"
	"gridbase/schema"
)

// rowIDColumn holds the backend row id in every mirrored table,
// making re-syncs and joins against the grid possible.
const rowIDColumn = "_row_id"

// sqlWriter is the shared Destination for MySQL, Postgres, and SQLite.
type sqlWriter struct {
	driverName string
	db         *sql.DB
}

func newSQLWriter(driverName, dsn string) (*sqlWriter, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	// Sensible pool settings for a sync worker
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)

	return &sqlWriter{driverName: driverName, db: db}, nil
}

func (w *sqlWriter) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return w.db.PingContext(ctx)
}

// Write recreates (replace) or ensures (append) the target table and
// inserts all rows in one transaction.
func (w *sqlWriter) Write(ctx context.Context, table string, fm *schema.FieldMap, rows []schema.Row, mode domain.SyncMode) (int, error) {
	cols := columnsFor(fm)
	tbl := w.quote(sanitizeIdent(table))

	if mode == domain.SyncModeReplace {
		if _, err := w.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+tbl); err != nil {
			return 0, fmt.Errorf("drop target table: %w", err)
		}
	}
	if err := w.createTable(ctx, tbl, cols); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, w.insertStatement(tbl, cols))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		args := make([]any, 0, len(cols)+1)
		args = append(args, row.ID())
		for _, c := range cols {
			v, err := encodeSQLValue(row[c.field.Name])
			if err != nil {
				return 0, fmt.Errorf("row %d field %q: %w", row.ID(), c.field.Name, err)
			}
			args = append(args, v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", row.ID(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(rows), nil
}

func (w *sqlWriter) Close() error {
	return w.db.Close()
}

func (w *sqlWriter) createTable(ctx context.Context, tbl string, cols []column) error {
	defs := make([]string, 0, len(cols)+1)
	defs = append(defs, w.quote(rowIDColumn)+" "+w.rowIDType())
	for _, c := range cols {
		defs = append(defs, w.quote(c.sqlName)+" "+w.columnType(c.field))
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", tbl, strings.Join(defs, ", "))
	if _, err := w.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create target table: %w", err)
	}
	return nil
}

func (w *sqlWriter) insertStatement(tbl string, cols []column) string {
	names := make([]string, 0, len(cols)+1)
	marks := make([]string, 0, len(cols)+1)
	names = append(names, w.quote(rowIDColumn))
	marks = append(marks, w.placeholder(1))
	for i, c := range cols {
		names = append(names, w.quote(c.sqlName))
		marks = append(marks, w.placeholder(i+2))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		tbl, strings.Join(names, ", "), strings.Join(marks, ", "))
}

// column pairs a grid field with its SQL identity.
type column struct {
	field   *schema.Field
	sqlName string
}

// columnsFor derives target columns from the field map, keeping the
// backend field order. Display names are sanitized into identifiers;
// collisions get a numeric suffix.
func columnsFor(fm *schema.FieldMap) []column {
	fields := fm.Fields()
	cols := make([]column, 0, len(fields))
	used := map[string]bool{rowIDColumn: true}
	for _, f := range fields {
		name := sanitizeIdent(f.Name)
		if used[name] {
			for i := 2; ; i++ {
				cand := fmt.Sprintf("%s_%d", name, i)
				if !used[cand] {
					name = cand
					break
				}
			}
		}
		used[name] = true
		cols = append(cols, column{field: f, sqlName: name})
	}
	return cols
}

// columnType maps a grid field to a column type for the active driver.
func (w *sqlWriter) columnType(f *schema.Field) string {
	if f.Kind != schema.KindPlain {
		// Selects carry labels, links and multi-selects carry JSON arrays.
		return "TEXT"
	}
	switch f.Type {
	case "number", "rating", "duration", "autonumber":
		switch w.driverName {
		case "mysql":
			return "DOUBLE"
		case "postgres":
			return "DOUBLE PRECISION"
		default:
			return "REAL"
		}
	case "boolean":
		switch w.driverName {
		case "mysql":
			return "TINYINT(1)"
		case "postgres":
			return "BOOLEAN"
		default:
			return "INTEGER"
		}
	}
	return "TEXT"
}

func (w *sqlWriter) rowIDType() string {
	if w.driverName == "sqlite" {
		return "INTEGER PRIMARY KEY"
	}
	return "BIGINT PRIMARY KEY"
}

func (w *sqlWriter) quote(ident string) string {
	if w.driverName == "mysql" {
		return "`" + ident + "`"
	}
	return `"` + ident + `"`
}

func (w *sqlWriter) placeholder(n int) string {
	if w.driverName == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// sanitizeIdent flattens a display name into a safe SQL identifier.
func sanitizeIdent(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	s := b.String()
	if s == "" {
		return "col"
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "c_" + s
	}
	return s
}

// encodeSQLValue flattens list and object values to JSON text; scalars
// pass through to the driver untouched.
func encodeSQLValue(v any) (any, error) {
	switch v.(type) {
	case nil, string, bool, int, int64, float64, json.Number:
		return v, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return string(b), nil
}
