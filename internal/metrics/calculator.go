package metrics

import (
	"time"

	"github.com/wonny/vixterm/internal/contracts"
)

// Term structure labels
const (
	StructureContango      = "contango"
	StructureBackwardation = "backwardation"
	StructureFlat          = "flat"
	StructureUnknown       = "unknown"
)

// Calculate derives the term-structure metrics from one run's prices.
// Missing prices are 0 and flow through the formulas unchanged; only the
// ratio guards against a zero denominator.
// ⭐ SSOT: 지표 계산은 여기서만
func Calculate(p contracts.PriceSlots, runTS time.Time) contracts.MetricsRecord {
	avg12 := (p.M1 + p.M2) / 2
	avg47 := (p.M4 + p.M7) / 2

	return contracts.MetricsRecord{
		RunTimestamp: runTS,
		VIX:          p.Spot,
		M1:           p.M1,
		M2:           p.M2,
		M4:           p.M4,
		M7:           p.M7,
		M1M2Ratio:    ratio(p.M1, p.M2, p.Spot),
		M1M2Avg:      avg12,
		M4M7Avg:      avg47,
		Slope:        (avg12 - avg47) * p.Spot,
	}
}

// ratio = (m1 - m2) * spot / m2, 0 when m2 is 0
func ratio(m1, m2, spot float64) float64 {
	if m2 == 0 {
		return 0
	}
	return (m1 - m2) * spot / m2
}

// Contango reports an upward sloping front (m2 > m1 > 0)
func Contango(rec contracts.MetricsRecord) bool {
	return rec.M1 > 0 && rec.M2 > rec.M1
}

// Structure classifies the front of the curve for logs and API output.
// Unknown when either front contract is missing.
func Structure(rec contracts.MetricsRecord) string {
	switch {
	case rec.M1 == 0 || rec.M2 == 0:
		return StructureUnknown
	case Contango(rec):
		return StructureContango
	case rec.M1 > rec.M2:
		return StructureBackwardation
	default:
		return StructureFlat
	}
}
