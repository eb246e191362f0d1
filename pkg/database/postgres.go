package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/vixterm/pkg/config"
)

// pingTimeout bounds the connect-time ping and each health probe
const pingTimeout = 5 * time.Second

// DB owns the pgx pool shared by the quote and metrics repositories
// ⭐ SSOT: DB 연결은 이 패키지에서만 생성
type DB struct {
	Pool *pgxpool.Pool
}

// New opens a pool sized from cfg.Database and pings it once
func New(ctx context.Context, cfg *config.Config) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close is safe to call more than once
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// Health is what /health and test-db report about the pool
type Health struct {
	Healthy   bool      `json:"healthy"`
	LatencyMS int64     `json:"latency_ms"`
	Error     string    `json:"error,omitempty"`
	Pool      PoolStats `json:"pool"`
}

// PoolStats is the subset of pgxpool.Stat worth watching for a once-a-day writer
type PoolStats struct {
	MaxConns      int32         `json:"max_conns"`
	TotalConns    int32         `json:"total_conns"`
	AcquiredConns int32         `json:"acquired_conns"`
	IdleConns     int32         `json:"idle_conns"`
	AcquireCount  int64         `json:"acquire_count"`
	AcquireWait   time.Duration `json:"acquire_wait"`
}

// HealthCheck pings the pool and returns its stats; the error mirrors Health.Error
func (db *DB) HealthCheck(ctx context.Context) (*Health, error) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	start := time.Now()
	err := db.Pool.Ping(ctx)
	h := &Health{
		LatencyMS: time.Since(start).Milliseconds(),
		Pool:      statsOf(db.Pool.Stat()),
	}
	if err != nil {
		h.Error = err.Error()
		return h, err
	}
	h.Healthy = true
	return h, nil
}

func statsOf(s *pgxpool.Stat) PoolStats {
	return PoolStats{
		MaxConns:      s.MaxConns(),
		TotalConns:    s.TotalConns(),
		AcquiredConns: s.AcquiredConns(),
		IdleConns:     s.IdleConns(),
		AcquireCount:  s.AcquireCount(),
		AcquireWait:   s.AcquireDuration(),
	}
}
