package contracts

import (
	"context"
	"time"
)

//go:generate mockgen -package=collector_test -destination=../collector/mock_contracts_test.go -source=interfaces.go

// QuoteSource yields the scraped futures table
// ⭐ SSOT: 시세 페이지 수집 인터페이스
type QuoteSource interface {
	FetchTable(ctx context.Context) (*QuoteTable, error)
}

// QuoteRepository stores raw scraped rows
// ⭐ SSOT: 원본 행 저장 인터페이스
type QuoteRepository interface {
	SaveRawRows(ctx context.Context, table *QuoteTable, runTS time.Time) (int, error)
}

// MetricsRepository stores and reads computed metrics
// ⭐ SSOT: 지표 저장 인터페이스
type MetricsRepository interface {
	SaveMetrics(ctx context.Context, rec MetricsRecord) error
	LatestMetrics(ctx context.Context) (*MetricsRecord, error)
	ListMetrics(ctx context.Context, from, to time.Time, limit int) ([]MetricsRecord, error)
}
