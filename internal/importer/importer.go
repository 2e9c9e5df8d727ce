// Package importer turns uploaded CSV files into ledger transactions.
package importer

import (
	"io"

	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

type Format string

const (
	// FormatFinCo is the layout written by the CSV export.
	FormatFinCo Format = "finco"
	// FormatStatement is a bank account statement with narration and debit/credit columns.
	FormatStatement Format = "statement"
)

func (f Format) Valid() bool {
	switch f {
	case FormatFinCo, FormatStatement:
		return true
	}

	return false
}

type Importer interface {
	Parse(r io.Reader) ([]ledger.Transaction, error)
}
