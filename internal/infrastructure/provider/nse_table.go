package provider

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// Candidate tables, most specific first.
var quoteTableSelectors = []string{
	"#equityStockTable",
	"table.common_table",
	"table",
}

type column int

const (
	colSymbol column = iota
	colOpen
	colHigh
	colLow
	colPrevClose
	colPrice
	colChange
	colPChange
	colVolume
)

// headerColumn maps normalized header text to a column.
func headerColumn(h string) (column, bool) {
	switch {
	case h == "SYMBOL":
		return colSymbol, true
	case h == "OPEN":
		return colOpen, true
	case h == "HIGH":
		return colHigh, true
	case h == "LOW":
		return colLow, true
	case h == "PREVCLOSE":
		return colPrevClose, true
	case h == "LTP" || h == "LASTPRICE":
		return colPrice, true
	case h == "CHNG" || h == "CHANGE":
		return colChange, true
	case h == "%CHNG" || h == "%CHANGE" || h == "PCHANGE":
		return colPChange, true
	case strings.HasPrefix(h, "VOLUME"):
		return colVolume, true
	}
	return 0, false
}

func normalizeHeader(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '%' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseQuoteTable finds the first table whose headers include a symbol and a
// price column and reads its rows. Columns are located by header text.
func parseQuoteTable(html string) ([]quoteRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	for _, sel := range quoteTableSelectors {
		var rows []quoteRow
		doc.Find(sel).EachWithBreak(func(_ int, table *goquery.Selection) bool {
			rows = readQuoteTable(table)
			return len(rows) == 0
		})
		if len(rows) > 0 {
			return rows, nil
		}
	}
	return nil, errors.New("no quote table in page")
}

func readQuoteTable(table *goquery.Selection) []quoteRow {
	idx := map[column]int{}
	table.Find("thead tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
		if c, ok := headerColumn(normalizeHeader(th.Text())); ok {
			if _, dup := idx[c]; !dup {
				idx[c] = i
			}
		}
	})
	if len(idx) == 0 {
		table.Find("tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
			if c, ok := headerColumn(normalizeHeader(th.Text())); ok {
				if _, dup := idx[c]; !dup {
					idx[c] = i
				}
			}
		})
	}
	_, hasSym := idx[colSymbol]
	_, hasPrice := idx[colPrice]
	if !hasSym || !hasPrice {
		return nil
	}

	var rows []quoteRow
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() == 0 {
			return
		}
		cell := func(c column) string {
			i, ok := idx[c]
			if !ok || i >= tds.Length() {
				return ""
			}
			return strings.TrimSpace(tds.Eq(i).Text())
		}
		num := func(c column) float64 {
			v, _ := parseNumber(cell(c))
			return v
		}
		r := quoteRow{
			Symbol:    cell(colSymbol),
			Price:     num(colPrice),
			Change:    num(colChange),
			High:      num(colHigh),
			Low:       num(colLow),
			Open:      num(colOpen),
			PrevClose: num(colPrevClose),
			Volume:    num(colVolume),
		}
		if v, ok := parseNumber(cell(colPChange)); ok {
			r.PChange = &v
		}
		rows = append(rows, r)
	})
	return rows
}
