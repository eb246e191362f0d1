package cboe

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/vixterm/internal/contracts"
)

// ParseTable extracts the first <table> of a page.
// Headers are every th text with spaces turned into underscores;
// rows are the td texts of each tbody row, in page order.
// Cell text is the concatenation of its trimmed text nodes, so
// "<td> 20.15 <span>USD</span></td>" reads "20.15USD".
func ParseTable(r io.Reader) (*contracts.QuoteTable, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrTableNotFound
	}

	out := &contracts.QuoteTable{}

	table.Find("th").Each(func(i int, th *goquery.Selection) {
		out.Headers = append(out.Headers, normalizeHeader(cellText(th)))
	})

	// html 파서가 tbody를 자동 삽입하므로 tbody 없는 마크업도 처리됨
	table.Find("tbody").First().Find("tr").Each(func(i int, tr *goquery.Selection) {
		row := contracts.QuoteRow{}
		tr.Find("td").Each(func(j int, td *goquery.Selection) {
			row = append(row, cellText(td))
		})
		out.Rows = append(out.Rows, row)
	})

	return out, nil
}

// ParseFile parses a saved page (e.g. rendered by a headless browser)
func ParseFile(path string) (*contracts.QuoteTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open page file: %w", err)
	}
	defer f.Close()

	return ParseTable(f)
}

func normalizeHeader(text string) string {
	return strings.ReplaceAll(text, " ", "_")
}

// cellText joins every descendant text node after trimming each one
func cellText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, node *goquery.Selection) {
			if goquery.NodeName(node) == "#text" {
				b.WriteString(strings.TrimSpace(node.Text()))
				return
			}
			walk(node)
		})
	}
	walk(sel)
	return b.String()
}

// FileSource serves a saved page as a QuoteSource
type FileSource struct {
	Path string
}

// FetchTable parses the file on every call
func (s FileSource) FetchTable(_ context.Context) (*contracts.QuoteTable, error) {
	return ParseFile(s.Path)
}
