package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/vixterm/internal/contracts"
)

const quoteRowsTable = "quote_rows"

// undefinedTable is the SQLSTATE for a missing relation (nothing collected yet)
const undefinedTable = "42P01"

// QuoteRepository implements contracts.QuoteRepository.
// Columns follow the scraped headers (TEXT) and grow when the page adds one.
// ⭐ SSOT: 원본 시세 행 저장소는 여기서만
type QuoteRepository struct {
	pool   *pgxpool.Pool
	schema string
}

// NewQuoteRepository creates a new raw quote row repository
func NewQuoteRepository(pool *pgxpool.Pool) *QuoteRepository {
	return &QuoteRepository{pool: pool, schema: DefaultSchema}
}

// EnsureSchema creates the raw-row table and adds any missing columns
func (r *QuoteRepository) EnsureSchema(ctx context.Context, columns []string) error {
	if err := ensureSchema(ctx, r.pool, r.schema); err != nil {
		return err
	}

	table := tableName(r.schema, quoteRowsTable)

	if _, err := r.pool.Exec(ctx, createQuoteTableSQL(table, columns)); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}

	// 페이지에 새 컬럼이 생기면 테이블도 따라감
	for _, col := range withRunTimestamp(columns) {
		colType := "TEXT"
		if col == runTimestampColumn {
			colType = "TIMESTAMPTZ"
		}
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s",
			table, pgx.Identifier{col}.Sanitize(), colType)
		if _, err := r.pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("add column %s: %w", col, err)
		}
	}

	return nil
}

// SaveRawRows inserts every scraped row stamped with runTS, in one transaction
func (r *QuoteRepository) SaveRawRows(ctx context.Context, table *contracts.QuoteTable, runTS time.Time) (int, error) {
	if table.Empty() {
		return 0, nil
	}

	columns := ColumnNames(table.Headers, widestRow(table.Rows))
	if err := r.EnsureSchema(ctx, columns); err != nil {
		return 0, err
	}

	query := insertQuoteSQL(tableName(r.schema, quoteRowsTable), columns)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, row := range table.Rows {
		batch.Queue(query, rowArgs(row, len(columns), runTS)...)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range table.Rows {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return 0, fmt.Errorf("insert quote row %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return len(table.Rows), nil
}

// CountByRun returns how many raw rows a run stored
func (r *QuoteRepository) CountByRun(ctx context.Context, runTS time.Time) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE run_timestamp = $1", tableName(r.schema, quoteRowsTable))

	var n int
	if err := r.pool.QueryRow(ctx, query, runTS).Scan(&n); err != nil {
		return 0, fmt.Errorf("count quote rows: %w", err)
	}
	return n, nil
}

func createQuoteTableSQL(table string, columns []string) string {
	defs := []string{pgx.Identifier{idColumn}.Sanitize() + " BIGSERIAL PRIMARY KEY"}
	for _, col := range columns {
		defs = append(defs, pgx.Identifier{col}.Sanitize()+" TEXT")
	}
	defs = append(defs, pgx.Identifier{runTimestampColumn}.Sanitize()+" TIMESTAMPTZ")

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", table, strings.Join(defs, ",\n\t"))
}

func insertQuoteSQL(table string, columns []string) string {
	names := make([]string, 0, len(columns)+1)
	params := make([]string, 0, len(columns)+1)
	for i, col := range withRunTimestamp(columns) {
		names = append(names, pgx.Identifier{col}.Sanitize())
		params = append(params, fmt.Sprintf("$%d", i+1))
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(names, ", "), strings.Join(params, ", "))
}

// rowArgs pads the row with NULLs up to width and appends the run timestamp
func rowArgs(row contracts.QuoteRow, width int, runTS time.Time) []any {
	args := make([]any, 0, width+1)
	for i := 0; i < width; i++ {
		if i < len(row) {
			args = append(args, row[i])
		} else {
			args = append(args, nil)
		}
	}
	return append(args, runTS)
}

func widestRow(rows []contracts.QuoteRow) int {
	w := 0
	for _, row := range rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// withRunTimestamp appends the run timestamp column without touching columns
func withRunTimestamp(columns []string) []string {
	return append(columns[:len(columns):len(columns)], runTimestampColumn)
}

// DeleteBefore removes raw rows of runs older than cutoff
func (r *QuoteRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE run_timestamp < $1", tableName(r.schema, quoteRowsTable))

	tag, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
			return 0, nil
		}
		return 0, fmt.Errorf("delete quote rows: %w", err)
	}
	return tag.RowsAffected(), nil
}
