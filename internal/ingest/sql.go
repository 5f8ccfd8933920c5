package ingest

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/poi-xref/internal/match"
)

// ReadSQL runs query and maps the result columns by name. Column values
// are read as nullable text, so numeric columns work on both postgres and
// sqlite.
func ReadSQL(ctx context.Context, db *sql.DB, query, source string, m Mapping, args ...any) (match.Collection, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return match.Collection{}, fmt.Errorf("query %s: %w", source, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return match.Collection{}, fmt.Errorf("columns %s: %w", source, err)
	}
	columns := normalizeHeader(cols)
	if err := requireColumns(source, columns, m.ID, m.Lon, m.Lat); err != nil {
		return match.Collection{}, err
	}

	values := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	b := newBuilder(source, m)
	for row := 1; rows.Next(); row++ {
		if err := rows.Scan(dest...); err != nil {
			return match.Collection{}, NewInputError(source, row, "", "scan: %v", err)
		}
		r := make(record, len(columns))
		for i, c := range columns {
			if values[i].Valid {
				r[c] = values[i].String
			}
		}
		if err := b.add(row, r); err != nil {
			return match.Collection{}, err
		}
	}
	if err := rows.Err(); err != nil {
		return match.Collection{}, fmt.Errorf("iterate %s: %w", source, err)
	}
	return b.collection(), nil
}
