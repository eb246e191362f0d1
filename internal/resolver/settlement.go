package resolver

import (
	"time"

	"github.com/wonny/vixterm/internal/contracts"
)

// monthGrid lays a month out in Monday-first weeks.
// Cells outside the month hold 0, so the first and last weeks may be partial.
func monthGrid(year int, month time.Month) [][7]int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	col := (int(first.Weekday()) + 6) % 7 // Monday = 0

	var weeks [][7]int
	var week [7]int
	for day := 1; day <= days; day++ {
		week[col] = day
		col++
		if col == 7 {
			weeks = append(weeks, week)
			week = [7]int{}
			col = 0
		}
	}
	if col > 0 {
		weeks = append(weeks, week)
	}
	return weeks
}

// wednesdayColumn is the Monday-first grid's Wednesday column with empty cells dropped
func wednesdayColumn(year int, month time.Month) []int {
	var days []int
	for _, week := range monthGrid(year, month) {
		if week[2] != 0 {
			days = append(days, week[2])
		}
	}
	return days
}

// SettlementDay returns the day number of the month's third Wednesday.
// ok is false when the month has fewer than three Wednesdays in the grid.
// ⭐ SSOT: 정산일 규칙 (셋째 수요일, 휴일 미반영)
func SettlementDay(year int, month time.Month) (day int, ok bool) {
	wednesdays := wednesdayColumn(year, month)
	if len(wednesdays) < 3 {
		return 0, false
	}
	return wednesdays[2], true
}

// SettlementDate returns the settlement date of a contract month at UTC midnight
func SettlementDate(cm contracts.ContractMonth) (time.Time, bool) {
	day, ok := SettlementDay(cm.Year, cm.Month)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(cm.Year, cm.Month, day, 0, 0, 0, 0, time.UTC), true
}

// AddMonths moves k months from cm, carrying into the year.
// Floor division keeps negative k consistent with the forward rollover.
func AddMonths(cm contracts.ContractMonth, k int) contracts.ContractMonth {
	m := int(cm.Month) - 1 + k
	return contracts.ContractMonth{
		Year:  cm.Year + floorDiv(m, 12),
		Month: time.Month(floorMod(m, 12) + 1),
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
