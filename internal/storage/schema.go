package storage

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultSchema holds every table written by the collector
const DefaultSchema = "data"

// Reserved column names of the raw-row table
const (
	idColumn           = "id"
	runTimestampColumn = "run_timestamp"
)

// maxIdentifierLen is the PostgreSQL identifier limit (NAMEDATALEN - 1)
const maxIdentifierLen = 63

// ensureSchema creates the schema if missing
func ensureSchema(ctx context.Context, pool *pgxpool.Pool, schema string) error {
	if _, err := pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{schema}.Sanitize()); err != nil {
		return fmt.Errorf("create schema %s: %w", schema, err)
	}
	return nil
}

// tableName returns the quoted schema-qualified table name
func tableName(schema, table string) string {
	return pgx.Identifier{schema, table}.Sanitize()
}

// ColumnNames maps scraped headers to unique column names for a table whose
// widest row has width cells. Cells beyond the header list get col_<n>;
// empty headers become col_<n>; names colliding with id/run_timestamp or an
// earlier column get a numeric suffix.
func ColumnNames(headers []string, width int) []string {
	n := len(headers)
	if width > n {
		n = width
	}

	names := make([]string, 0, n)
	seen := map[string]bool{
		idColumn:           true,
		runTimestampColumn: true,
	}

	for i := 0; i < n; i++ {
		base := ""
		if i < len(headers) {
			base = cleanIdentifier(headers[i])
		}
		if base == "" {
			base = fmt.Sprintf("col_%d", i+1)
		}

		name := base
		for suffix := 2; seen[strings.ToLower(name)]; suffix++ {
			tail := fmt.Sprintf("_%d", suffix)
			name = truncate(base, maxIdentifierLen-len(tail)) + tail
		}
		seen[strings.ToLower(name)] = true
		names = append(names, name)
	}

	return names
}

// cleanIdentifier drops characters PostgreSQL rejects and enforces the length limit
func cleanIdentifier(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == 0 || r == utf8.RuneError {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	return truncate(s, maxIdentifierLen)
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
