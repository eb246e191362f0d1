package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/vixterm/internal/contracts"
)

const metricsTable = "vix_metrics"

// List bounds
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// ErrNoMetrics is returned when no metrics row exists yet
var ErrNoMetrics = errors.New("no metrics stored")

// MetricsRepository implements contracts.MetricsRepository
// ⭐ SSOT: vix_metrics 저장소는 여기서만
type MetricsRepository struct {
	pool   *pgxpool.Pool
	schema string

	mu      sync.Mutex
	ensured bool
}

// NewMetricsRepository creates a new metrics repository
func NewMetricsRepository(pool *pgxpool.Pool) *MetricsRepository {
	return &MetricsRepository{pool: pool, schema: DefaultSchema}
}

// EnsureSchema creates the fixed vix_metrics table
func (r *MetricsRepository) EnsureSchema(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ensured {
		return nil
	}

	if err := ensureSchema(ctx, r.pool, r.schema); err != nil {
		return err
	}

	table := tableName(r.schema, metricsTable)
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id            BIGSERIAL PRIMARY KEY,
			run_timestamp TIMESTAMPTZ NOT NULL,
			vix           DOUBLE PRECISION NOT NULL,
			m1            DOUBLE PRECISION NOT NULL,
			m2            DOUBLE PRECISION NOT NULL,
			m4            DOUBLE PRECISION NOT NULL,
			m7            DOUBLE PRECISION NOT NULL,
			m1m2_ratio    DOUBLE PRECISION NOT NULL,
			m1m2_avg      DOUBLE PRECISION NOT NULL,
			m4m7_avg      DOUBLE PRECISION NOT NULL,
			slope         DOUBLE PRECISION NOT NULL
		)
	`, table)
	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}

	index := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (run_timestamp DESC)",
		pgx.Identifier{"idx_" + metricsTable + "_run_timestamp"}.Sanitize(), table)
	if _, err := r.pool.Exec(ctx, index); err != nil {
		return fmt.Errorf("create index on %s: %w", table, err)
	}

	r.ensured = true
	return nil
}

// SaveMetrics inserts one metrics row
func (r *MetricsRepository) SaveMetrics(ctx context.Context, rec contracts.MetricsRecord) error {
	if err := r.EnsureSchema(ctx); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (run_timestamp, vix, m1, m2, m4, m7, m1m2_ratio, m1m2_avg, m4m7_avg, slope)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, tableName(r.schema, metricsTable))

	_, err := r.pool.Exec(ctx, query,
		rec.RunTimestamp, rec.VIX, rec.M1, rec.M2, rec.M4, rec.M7,
		rec.M1M2Ratio, rec.M1M2Avg, rec.M4M7Avg, rec.Slope,
	)
	if err != nil {
		return fmt.Errorf("insert metrics: %w", err)
	}
	return nil
}

// LatestMetrics returns the most recent row or ErrNoMetrics
func (r *MetricsRepository) LatestMetrics(ctx context.Context) (*contracts.MetricsRecord, error) {
	if err := r.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY run_timestamp DESC, id DESC
		LIMIT 1
	`, metricsColumns, tableName(r.schema, metricsTable))

	rec, err := scanMetrics(r.pool.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoMetrics
		}
		return nil, fmt.Errorf("query latest metrics: %w", err)
	}
	return rec, nil
}

// ListMetrics returns rows in [from, to], newest first.
// A zero from or to leaves that side open; limit is clamped to [1, MaxListLimit].
func (r *MetricsRepository) ListMetrics(ctx context.Context, from, to time.Time, limit int) ([]contracts.MetricsRecord, error) {
	if err := r.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	query, args := listMetricsQuery(tableName(r.schema, metricsTable), from, to, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}
	defer rows.Close()

	var out []contracts.MetricsRecord
	for rows.Next() {
		rec, err := scanMetrics(rows)
		if err != nil {
			return nil, fmt.Errorf("scan metrics: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

const metricsColumns = "run_timestamp, vix, m1, m2, m4, m7, m1m2_ratio, m1m2_avg, m4m7_avg, slope"

func scanMetrics(row pgx.Row) (*contracts.MetricsRecord, error) {
	var rec contracts.MetricsRecord
	err := row.Scan(
		&rec.RunTimestamp, &rec.VIX, &rec.M1, &rec.M2, &rec.M4, &rec.M7,
		&rec.M1M2Ratio, &rec.M1M2Avg, &rec.M4M7Avg, &rec.Slope,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func listMetricsQuery(table string, from, to time.Time, limit int) (string, []any) {
	var (
		where []string
		args  []any
	)
	if !from.IsZero() {
		args = append(args, from)
		where = append(where, fmt.Sprintf("run_timestamp >= $%d", len(args)))
	}
	if !to.IsZero() {
		args = append(args, to)
		where = append(where, fmt.Sprintf("run_timestamp <= $%d", len(args)))
	}

	args = append(args, ClampLimit(limit))

	query := fmt.Sprintf("SELECT %s FROM %s", metricsColumns, table)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY run_timestamp DESC, id DESC LIMIT $%d", len(args))

	return query, args
}

// ClampLimit applies the list defaults
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
