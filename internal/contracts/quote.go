package contracts

// QuoteRow is one scraped table row, cells in page order
type QuoteRow []string

// Cell returns the i-th cell or "" when the row is too short
func (r QuoteRow) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// QuoteTable is the scraped futures table: header names plus rows
// ⭐ SSOT: Scraper → Extractor/Storage 전달
type QuoteTable struct {
	Headers []string   `json:"headers"`
	Rows    []QuoteRow `json:"rows"`
}

// Empty reports whether the table carries no rows
func (t *QuoteTable) Empty() bool {
	return t == nil || len(t.Rows) == 0
}
