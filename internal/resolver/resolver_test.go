package resolver

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vixterm/internal/contracts"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func cm(y int, m time.Month) contracts.ContractMonth {
	return contracts.ContractMonth{Year: y, Month: m}
}

// thirdWednesday walks the calendar directly, independent of the grid
func thirdWednesday(y int, m time.Month) int {
	seen := 0
	for d := date(y, m, 1); d.Month() == m; d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Wednesday {
			seen++
			if seen == 3 {
				return d.Day()
			}
		}
	}
	return 0
}

func TestSettlementDay_KnownMonths(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2025, time.January, 15}, // month starts on a Wednesday
		{2025, time.March, 19},
		{2024, time.February, 21}, // leap year
		{2024, time.December, 18},
		{2026, time.October, 21},
		{2021, time.February, 17}, // four full weeks
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d-%02d", tt.year, tt.month), func(t *testing.T) {
			day, ok := SettlementDay(tt.year, tt.month)
			require.True(t, ok)
			assert.Equal(t, tt.want, day)
		})
	}
}

func TestSettlementDay_IsThirdWednesdayEveryMonth(t *testing.T) {
	// 2023 and 2025 are common years, 2024 and 2028 leap years
	for _, year := range []int{2023, 2024, 2025, 2028, 2100} {
		for m := time.January; m <= time.December; m++ {
			day, ok := SettlementDay(year, m)
			require.True(t, ok, "%d-%02d", year, m)
			assert.Equal(t, thirdWednesday(year, m), day, "%d-%02d", year, m)

			settle, ok := SettlementDate(cm(year, m))
			require.True(t, ok)
			assert.Equal(t, time.Wednesday, settle.Weekday())
			assert.True(t, settle.Day() >= 15 && settle.Day() <= 21)
		}
	}
}

func TestMonthGrid(t *testing.T) {
	// February 2021 starts on a Monday and has exactly 28 days
	grid := monthGrid(2021, time.February)
	require.Len(t, grid, 4)
	assert.Equal(t, [7]int{1, 2, 3, 4, 5, 6, 7}, grid[0])

	// March 2025 starts on a Saturday: five leading blanks
	grid = monthGrid(2025, time.March)
	assert.Equal(t, [7]int{0, 0, 0, 0, 0, 1, 2}, grid[0])
	assert.Equal(t, []int{5, 12, 19, 26}, wednesdayColumn(2025, time.March))
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name string
		from contracts.ContractMonth
		k    int
		want contracts.ContractMonth
	}{
		{"december rolls into january", cm(2024, time.December), 1, cm(2025, time.January)},
		{"twelve months is next year", cm(2025, time.March), 12, cm(2026, time.March)},
		{"six from september", cm(2025, time.September), 6, cm(2026, time.March)},
		{"zero", cm(2025, time.June), 0, cm(2025, time.June)},
		{"backwards across year", cm(2025, time.January), -1, cm(2024, time.December)},
		{"backwards fifteen", cm(2025, time.March), -15, cm(2023, time.December)},
		{"two years ahead", cm(2025, time.November), 26, cm(2028, time.January)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddMonths(tt.from, tt.k))
		})
	}
}

func TestFrontMonth(t *testing.T) {
	tests := []struct {
		name  string
		today time.Time
		want  contracts.ContractMonth
	}{
		{"before settlement", date(2025, time.March, 3), cm(2025, time.March)},
		{"on settlement day is inclusive", date(2025, time.March, 19), cm(2025, time.March)},
		{"day after settlement rolls", date(2025, time.March, 20), cm(2025, time.April)},
		{"december rolls into next year", date(2024, time.December, 19), cm(2025, time.January)},
		{"first of month", date(2025, time.January, 1), cm(2025, time.January)},
		{"end of month", date(2025, time.January, 31), cm(2025, time.February)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FrontMonth(tt.today))
		})
	}
}

func TestFrontMonth_UsesLocalCalendarDate(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Skip("tzdata not available")
	}

	// 23:30 in Chicago on settlement day is already the 20th in UTC
	late := time.Date(2025, time.March, 19, 23, 30, 0, 0, chicago)
	assert.Equal(t, cm(2025, time.March), FrontMonth(late))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		today time.Time
		want  [4]contracts.Symbol
	}{
		{"on settlement", date(2025, time.March, 19), [4]contracts.Symbol{"VX/H5", "VX/J5", "VX/M5", "VX/U5"}},
		{"after settlement", date(2025, time.March, 20), [4]contracts.Symbol{"VX/J5", "VX/K5", "VX/N5", "VX/V5"}},
		{"year end", date(2024, time.December, 19), [4]contracts.Symbol{"VX/F5", "VX/G5", "VX/J5", "VX/N5"}},
		{"m7 crosses year", date(2025, time.July, 10), [4]contracts.Symbol{"VX/N5", "VX/Q5", "VX/V5", "VX/F6"}},
	}

	r := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := r.Resolve(tt.today)

			assert.Equal(t, contracts.Symbol("VIX"), set.Spot)
			assert.Equal(t, tt.today, set.Today)
			for i, c := range set.Futures() {
				assert.Equal(t, tt.want[i], c.Symbol, c.Label)
				require.True(t, c.HasSettlement(), c.Label)
				assert.Equal(t, time.Wednesday, c.Settlement.Weekday())
			}
			assert.Equal(t, []string{"m1", "m2", "m4", "m7"}, []string{set.M1.Label, set.M2.Label, set.M4.Label, set.M7.Label})
		})
	}
}

func TestResolve_IsDeterministic(t *testing.T) {
	r := New()
	today := date(2026, time.October, 18)
	assert.Equal(t, r.Resolve(today), r.Resolve(today))
}

func TestResolve_CustomRootAndSpot(t *testing.T) {
	r := New(WithRoot("VXM"), WithSpotSymbol("^VIX"))
	set := r.Resolve(date(2025, time.March, 3))

	assert.Equal(t, "VXM", r.Root())
	assert.Equal(t, contracts.Symbol("^VIX"), set.Spot)
	assert.Equal(t, contracts.Symbol("VXM/H5"), set.M1.Symbol)
}

func TestResolve_EmptyOptionsKeepDefaults(t *testing.T) {
	r := New(WithRoot(""), WithSpotSymbol(""))
	assert.Equal(t, DefaultRoot, r.Root())
	assert.Equal(t, contracts.Symbol(DefaultSpotSymbol), r.Resolve(date(2025, 3, 3)).Spot)
}

func TestFormatSymbol(t *testing.T) {
	assert.Equal(t, contracts.Symbol("VX/H5"), FormatSymbol("VX", cm(2025, time.March)))
	assert.Equal(t, contracts.Symbol("VX/Z9"), FormatSymbol("VX", cm(2029, time.December)))
	assert.Equal(t, contracts.Symbol("VX/F0"), FormatSymbol("VX", cm(2030, time.January)))
	assert.Equal(t, contracts.Symbol(""), FormatSymbol("VX", cm(2030, time.Month(0))))
}

func TestFormatSymbol_BijectionWithinDecade(t *testing.T) {
	seen := make(map[contracts.Symbol]contracts.ContractMonth)
	for year := 2020; year <= 2029; year++ {
		for m := time.January; m <= time.December; m++ {
			sym := FormatSymbol("VX", cm(year, m))
			prev, dup := seen[sym]
			require.False(t, dup, "%s produced by %v and %v", sym, prev, cm(year, m))
			seen[sym] = cm(year, m)

			month, digit, ok := ParseSymbol("VX", sym)
			require.True(t, ok, sym)
			assert.Equal(t, m, month)
			assert.Equal(t, year%10, digit)
		}
	}
	assert.Len(t, seen, 120)
}

func TestParseSymbol_Rejects(t *testing.T) {
	for _, s := range []contracts.Symbol{"", "VIX", "VX/H", "VX/A5", "VX/HH", "VXH5", "UX/H5", "VX/H55"} {
		_, _, ok := ParseSymbol("VX", s)
		assert.False(t, ok, string(s))
	}
}

func TestMonthCode(t *testing.T) {
	want := "FGHJKMNQUVXZ"
	for m := time.January; m <= time.December; m++ {
		code, ok := MonthCode(m)
		require.True(t, ok)
		assert.Equal(t, want[m-1], code)
	}
	_, ok := MonthCode(0)
	assert.False(t, ok)
}
