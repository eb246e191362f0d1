package extractor

import (
	"math"
	"strconv"
	"strings"

	"github.com/wonny/vixterm/internal/contracts"
)

// Fixed column positions of the futures table
const (
	SymbolColumn    = 0
	LastPriceColumn = 2
	minCells        = LastPriceColumn + 1
)

// Result is the extractor output: prices plus the untouched rows for storage
// ⭐ SSOT: 행 → 가격 매핑 결과
type Result struct {
	Prices  contracts.PriceSlots
	Headers []string
	Rows    []contracts.QuoteRow

	// Matched maps each filled slot to the index of the row that set it (last match)
	Matched map[contracts.PriceSlot]int
	// Unparsed counts matched rows whose price text did not parse
	Unparsed int
}

// Extract maps rows to price slots by exact symbol match on column 0,
// reading the last price from column 2. Rows are never dropped or rewritten;
// a later row for the same symbol overwrites an earlier one.
func Extract(table *contracts.QuoteTable, set contracts.ContractSet) Result {
	if table == nil {
		return Empty(nil)
	}

	res := Result{
		Headers: table.Headers,
		Rows:    table.Rows,
		Matched: make(map[contracts.PriceSlot]int),
	}

	for i, row := range table.Rows {
		symbol, priceText := "", "0"
		if len(row) >= minCells {
			symbol = row.Cell(SymbolColumn)
			priceText = row.Cell(LastPriceColumn)
		}

		slot, ok := matchSlot(contracts.Symbol(symbol), set)
		if !ok {
			continue
		}

		price, parsed := parsePrice(priceText)
		if !parsed {
			res.Unparsed++
		}
		res.Prices.Set(slot, price)
		res.Matched[slot] = i
	}

	return res
}

// Empty is the result used when no table could be obtained: every slot at 0
func Empty(headers []string) Result {
	return Result{
		Headers: headers,
		Matched: make(map[contracts.PriceSlot]int),
	}
}

// matchSlot finds the slot whose symbol equals the cell text exactly
func matchSlot(symbol contracts.Symbol, set contracts.ContractSet) (contracts.PriceSlot, bool) {
	if !symbol.Valid() {
		return 0, false
	}
	for _, slot := range contracts.AllSlots {
		if want := set.SymbolFor(slot); want.Valid() && want == symbol {
			return slot, true
		}
	}
	return 0, false
}

// ParsePrice parses a quoted price such as "12,345.67".
// Unparsable, NaN, infinite and negative values all read as 0.
func ParsePrice(text string) float64 {
	v, _ := parsePrice(text)
	return v
}

func parsePrice(text string) (float64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	if s == "" || strings.ContainsAny(s, "xX") {
		// 16진 실수 표기("0x1p4")는 가격이 아님
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v < 0 {
		return 0, true
	}
	return v, true
}

// UnmatchedSymbols lists computed symbols that no row carried, in slot order
func (r Result) UnmatchedSymbols(set contracts.ContractSet) []contracts.Symbol {
	var missing []contracts.Symbol
	for _, slot := range contracts.AllSlots {
		sym := set.SymbolFor(slot)
		if _, ok := r.Matched[slot]; sym.Valid() && !ok {
			missing = append(missing, sym)
		}
	}
	return missing
}

// FuturesMatched reports whether any futures slot (not spot) was matched
func (r Result) FuturesMatched() bool {
	for slot := range r.Matched {
		if slot != contracts.SlotSpot {
			return true
		}
	}
	return false
}

// SampleSymbols returns up to n symbol cells as scraped, for diagnostics
func (r Result) SampleSymbols(n int) []string {
	var out []string
	for _, row := range r.Rows {
		if len(out) == n {
			break
		}
		if cell := row.Cell(SymbolColumn); cell != "" {
			out = append(out, cell)
		}
	}
	return out
}
