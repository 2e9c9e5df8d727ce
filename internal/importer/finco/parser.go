// Package finco reads CSV files written by the FinCo export.
package finco

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/finco/internal/encoding"
	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

const (
	colDate     = "Date"
	colMerchant = "Merchant"
	colCategory = "Category"
	colAmount   = "Amount"
	colType     = "Type"
	colMethod   = "Method"
	colHash     = "TxHash"
)

var required = []string{colDate, colMerchant, colAmount, colType}

var ErrNoHeader = errors.New("no FinCo header found")

// Parser reads the export layout. Columns are located by header name, so reordered or
// trimmed files still import as long as Date, Merchant, Amount and Type are present.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]ledger.Transaction, error) {
	utf8r, err := enc.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	cols, headerIdx, ok := findHeader(rows)
	if !ok {
		return nil, ErrNoHeader
	}

	return parseRows(cols, rows[headerIdx+1:], headerIdx+1)
}

type colIndex map[string]int

func findHeader(rows [][]string) (colIndex, int, bool) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := strings.TrimSpace(cell); name != "" {
				cols[name] = i
			}
		}

		if cols.has(required...) {
			return cols, rowIdx, true
		}
	}

	return nil, 0, false
}

func (c colIndex) has(names ...string) bool {
	for _, n := range names {
		if _, ok := c[n]; !ok {
			return false
		}
	}

	return true
}

func (c colIndex) cell(row []string, name string) string {
	idx, ok := c[name]
	if !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func parseRows(cols colIndex, rows [][]string, headerRowNum int) ([]ledger.Transaction, error) {
	var txs []ledger.Transaction

	for i, row := range rows {
		rowNum := headerRowNum + i + 1

		raw := cols.cell(row, colDate)
		if raw == "" {
			continue
		}

		date, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid date %q", rowNum, raw)
		}

		merchant := cols.cell(row, colMerchant)
		if merchant == "" {
			return nil, fmt.Errorf("row %d: missing merchant", rowNum)
		}

		amount, err := decimal.NewFromString(cols.cell(row, colAmount))
		if err != nil || amount.IsNegative() {
			return nil, fmt.Errorf("row %d: invalid amount %q", rowNum, cols.cell(row, colAmount))
		}

		txType := ledger.Type(strings.ToLower(cols.cell(row, colType)))
		if !txType.Valid() {
			return nil, fmt.Errorf("row %d: invalid type %q", rowNum, cols.cell(row, colType))
		}

		category := ledger.Category(cols.cell(row, colCategory))
		if !category.Valid() {
			category = ledger.CategoryOther
		}

		method := ledger.Method(cols.cell(row, colMethod))
		if !method.Valid() {
			method = ledger.MethodBankTransfer
		}

		tx := ledger.Transaction{
			Date:     date,
			Merchant: merchant,
			Amount:   amount,
			Category: category,
			Type:     txType,
			Method:   method,
		}

		if hash := cols.cell(row, colHash); hash != "" {
			tx.TxHash = hash
			tx.BlockStatus = ledger.BlockVerified
		}

		txs = append(txs, tx)
	}

	return txs, nil
}
