package extractor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vixterm/internal/contracts"
	"github.com/wonny/vixterm/internal/resolver"
)

// march3 resolves to VX/H5, VX/J5, VX/M5, VX/U5
func march3() contracts.ContractSet {
	return resolver.New().Resolve(time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC))
}

var headers = []string{"Symbol", "Expiration", "Last", "Change", "High", "Low", "Settlement", "Volume"}

func TestExtract_AllSlots(t *testing.T) {
	table := &contracts.QuoteTable{
		Headers: headers,
		Rows: []contracts.QuoteRow{
			{"VIX", "", "20.00", "+0.5"},
			{"VX/H5", "03/19/2025", "21.00", "+0.4"},
			{"VX/J5", "04/16/2025", "22.00", "+0.3"},
			{"VX/K5", "05/21/2025", "22.50", "+0.2"},
			{"VX/M5", "06/18/2025", "23.00", "+0.1"},
			{"VX/U5", "09/17/2025", "24.00", "0"},
		},
	}

	res := Extract(table, march3())

	assert.Equal(t, contracts.PriceSlots{Spot: 20, M1: 21, M2: 22, M4: 23, M7: 24}, res.Prices)
	assert.Equal(t, headers, res.Headers)
	assert.Equal(t, table.Rows, res.Rows)
	assert.Equal(t, 4, res.Matched[contracts.SlotM4])
	assert.Zero(t, res.Unparsed)
	assert.Empty(t, res.UnmatchedSymbols(march3()))
	assert.True(t, res.FuturesMatched())
}

func TestExtract_ThousandsSeparator(t *testing.T) {
	table := &contracts.QuoteTable{Rows: []contracts.QuoteRow{{"VX/H5", "ignored", "12,345.67"}}}

	res := Extract(table, march3())
	assert.Equal(t, 12345.67, res.Prices.M1)
}

func TestExtract_UnparsablePriceDegradesToZero(t *testing.T) {
	table := &contracts.QuoteTable{
		Rows: []contracts.QuoteRow{
			{"VX/H5", "", "n/a"},
			{"VX/J5", "", "22.10"},
		},
	}

	res := Extract(table, march3())

	assert.Zero(t, res.Prices.M1)
	assert.Equal(t, 22.10, res.Prices.M2)
	assert.Equal(t, 1, res.Unparsed)
	assert.Len(t, res.Rows, 2, "rows with bad prices are still forwarded")
	_, matched := res.Matched[contracts.SlotM1]
	assert.True(t, matched)
}

func TestExtract_ShortRowsAreKeptButIgnored(t *testing.T) {
	table := &contracts.QuoteTable{
		Rows: []contracts.QuoteRow{
			{"VIX", "19.5"}, // symbol present but only two cells
			{},
			{"VX/H5"},
		},
	}

	res := Extract(table, march3())

	assert.Equal(t, contracts.PriceSlots{}, res.Prices)
	assert.Len(t, res.Rows, 3)
	assert.Empty(t, res.Matched)
}

func TestExtract_LastDuplicateWins(t *testing.T) {
	table := &contracts.QuoteTable{
		Rows: []contracts.QuoteRow{
			{"VX/H5", "", "21.00"},
			{"VX/H5", "", "21.35"},
		},
	}

	res := Extract(table, march3())
	assert.Equal(t, 21.35, res.Prices.M1)
	assert.Equal(t, 1, res.Matched[contracts.SlotM1])
}

func TestExtract_ExactMatchOnly(t *testing.T) {
	table := &contracts.QuoteTable{
		Rows: []contracts.QuoteRow{
			{"VX/H5 ", "", "21.00"},
			{"vx/h5", "", "21.00"},
			{"VX H5", "", "21.00"},
			{"VX/H25", "", "21.00"},
		},
	}

	res := Extract(table, march3())
	assert.Zero(t, res.Prices.M1)
	assert.False(t, res.FuturesMatched())
	assert.Equal(t, []contracts.Symbol{"VIX", "VX/H5", "VX/J5", "VX/M5", "VX/U5"}, res.UnmatchedSymbols(march3()))
	assert.Equal(t, []string{"VX/H5 ", "vx/h5"}, res.SampleSymbols(2))
}

func TestExtract_AbsentSymbolNeverMatchesEmptyCell(t *testing.T) {
	set := march3()
	set.M7.Symbol = ""
	set.M7.Settlement = nil

	table := &contracts.QuoteTable{Rows: []contracts.QuoteRow{{"", "", "99"}}}

	res := Extract(table, set)
	assert.Zero(t, res.Prices.M7)
	assert.NotContains(t, res.UnmatchedSymbols(set), contracts.Symbol(""))
}

func TestExtract_NilTable(t *testing.T) {
	res := Extract(nil, march3())
	assert.Equal(t, contracts.PriceSlots{}, res.Prices)
	assert.Nil(t, res.Rows)
}

func TestEmpty(t *testing.T) {
	res := Empty([]string{"Symbol"})
	require.NotNil(t, res.Matched)
	assert.Equal(t, []string{"Symbol"}, res.Headers)
	assert.Zero(t, res.Prices.Filled())
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"20.15", 20.15},
		{"12,345.67", 12345.67},
		{" 1,000 ", 1000},
		{"0", 0},
		{"", 0},
		{"n/a", 0},
		{"-", 0},
		{"-1.25", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"1e2", 100},
		{"0x1p4", 0},
		{"0X10P0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePrice(tt.input))
		})
	}
}
