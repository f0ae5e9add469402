package drivers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/quantfold/studio/internal/models"
)

// TypeDuckDB is the connection type served by the embedded DuckDB engine.
const TypeDuckDB = "duckdb"

// OpenDuckDB opens an embedded DuckDB database. Connections run in-memory
// unless the descriptor's extra metadata carries a "path" entry.
func OpenDuckDB(ctx context.Context, conn models.Connection) (Executor, error) {
	db, err := sql.Open("duckdb", duckdbDSN(conn))
	if err != nil {
		return nil, fmt.Errorf("duckdb: open: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("duckdb: ping: %w", err)
	}

	return &sqlExecutor{db: db}, nil
}

// duckdbDSN resolves the database location. Empty means in-memory.
func duckdbDSN(conn models.Connection) string {
	if path, ok := conn.Extra["path"].(string); ok {
		return strings.TrimSpace(path)
	}
	return ""
}

// sqlExecutor adapts a database/sql handle to the Executor interface.
type sqlExecutor struct {
	db *sql.DB
}

func (e *sqlExecutor) Execute(ctx context.Context, statement string) (*Result, error) {
	rows, err := e.db.QueryContext(ctx, statement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	columns := make([]Column, len(types))
	for i, ct := range types {
		columns[i] = Column{
			Name:     ct.Name(),
			TypeName: strings.ToUpper(ct.DatabaseTypeName()),
		}
	}

	result := &Result{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col.Name] = normaliseValue(values[i])
		}
		result.Rows = append(result.Rows, row)
	}

	return result, rows.Err()
}

func (e *sqlExecutor) Close() error {
	return e.db.Close()
}

// normaliseValue converts driver byte slices into strings so rows encode as
// JSON text rather than base64.
func normaliseValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
