// Package statement reads bank account statements exported as CSV.
package statement

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/finco/internal/encoding"
	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

// sniffLines is how many lines are inspected to choose the field separator.
const sniffLines = 20

// Parser reads bank statement CSV exports and produces ledger transactions.
// It auto-detects the statement layout by matching column headers against known
// profiles, and the field separator by counting candidates in the leading lines.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]ledger.Transaction, error) {
	utf8r, err := enc.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffComma(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, colMap, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("no matching statement format found: expected Date, a description column and amount columns")
	}

	return parseRows(profile, colMap, rows[headerIdx+1:], headerIdx+1)
}

func sniffComma(data []byte) rune {
	lines := bytes.SplitN(data, []byte("\n"), sniffLines+1)

	var commas, semis int
	for _, l := range lines[:min(len(lines), sniffLines)] {
		commas += bytes.Count(l, []byte(","))
		semis += bytes.Count(l, []byte(";"))
	}

	if semis > commas {
		return ';'
	}

	return ','
}

// colIndex maps column names to their index in the row.
type colIndex map[string]int

// detectProfile scans rows for a header that matches a known profile.
// Returns the matched profile, column index map, and header row index.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.TrimSpace(cell)
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows extracts transactions from data rows using the matched profile.
// headerRowNum is the 0-based index of the header in the original file (for error messages).
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]ledger.Transaction, error) {
	dateIdx := cols[p.DateCol]
	descIdx := cols[p.DescCol]

	var txs []ledger.Transaction

	for i, row := range rows {
		rowNum := headerRowNum + i + 1

		date, ok := parseDate(row, dateIdx)
		if !ok {
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		amount, txType, ok := amountOf(p, cols, row)
		if !ok {
			continue
		}

		category, method := classify(desc, txType)

		txs = append(txs, ledger.Transaction{
			Date:     date,
			Merchant: desc,
			Amount:   amount,
			Category: category,
			Type:     txType,
			Method:   method,
		})
	}

	return txs, nil
}

// parseDate returns false for empty cells or unparseable values (footer rows, etc).
func parseDate(row []string, idx int) (time.Time, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func amountOf(p *Profile, cols colIndex, row []string) (decimal.Decimal, ledger.Type, bool) {
	switch p.AmountMode {
	case amountSingle:
		return singleAmount(row, cols[p.AmountCol])
	case amountSplit:
		return splitAmount(row, cols[p.DebitCol], cols[p.CreditCol])
	}

	return decimal.Zero, "", false
}

func singleAmount(row []string, idx int) (decimal.Decimal, ledger.Type, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return decimal.Zero, "", false
	}

	d, err := parseAmount(s)
	if err != nil || d.IsZero() {
		return decimal.Zero, "", false
	}

	if d.IsNegative() {
		return d.Abs(), ledger.TypeDebit, true
	}

	return d, ledger.TypeCredit, true
}

func splitAmount(row []string, debitIdx, creditIdx int) (decimal.Decimal, ledger.Type, bool) {
	if s := cellValue(row, debitIdx); s != "" {
		d, err := parseAmount(s)
		if err == nil && !d.IsZero() {
			return d.Abs(), ledger.TypeDebit, true
		}
	}

	if s := cellValue(row, creditIdx); s != "" {
		d, err := parseAmount(s)
		if err == nil && !d.IsZero() {
			return d.Abs(), ledger.TypeCredit, true
		}
	}

	return decimal.Zero, "", false
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
