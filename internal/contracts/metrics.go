package contracts

import "time"

// MetricsRecord is the computed term-structure snapshot of one run.
// Field tags match the vix_metrics columns.
// ⭐ SSOT: Calculator → Storage 전달
type MetricsRecord struct {
	RunTimestamp time.Time `json:"run_timestamp"`
	VIX          float64   `json:"vix"`
	M1           float64   `json:"m1"`
	M2           float64   `json:"m2"`
	M4           float64   `json:"m4"`
	M7           float64   `json:"m7"`
	M1M2Ratio    float64   `json:"m1m2_ratio"`
	M1M2Avg      float64   `json:"m1m2_avg"`
	M4M7Avg      float64   `json:"m4m7_avg"`
	Slope        float64   `json:"slope"`
}

// Prices returns the price inputs the record was computed from
func (m MetricsRecord) Prices() PriceSlots {
	return PriceSlots{Spot: m.VIX, M1: m.M1, M2: m.M2, M4: m.M4, M7: m.M7}
}

// RunResult summarises one collection run for CLI, API and scheduler
type RunResult struct {
	RunTimestamp time.Time     `json:"run_timestamp"`
	Contracts    ContractSet   `json:"contracts"`
	Prices       PriceSlots    `json:"prices"`
	Metrics      MetricsRecord `json:"metrics"`
	Structure    string        `json:"structure"`
	RowCount     int           `json:"row_count"`
	RowsSaved    int           `json:"rows_saved"`
	FetchError   string        `json:"fetch_error,omitempty"`
	PersistError string        `json:"persist_error,omitempty"`
	Duration     time.Duration `json:"duration"`
}

// Degraded reports whether the run produced its record without a usable scrape
func (r *RunResult) Degraded() bool {
	return r.FetchError != "" || r.Prices.Filled() == 0
}
