package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/finco/internal/encoding"
	"github.com/MrJamesThe3rd/finco/internal/ledger"
	"github.com/MrJamesThe3rd/finco/internal/money"
)

// Header is the column order of exported and imported CSV files.
var Header = []string{"Date", "Merchant", "Category", "Amount", "Type", "Method", "TxHash"}

type Lister interface {
	Transactions(ctx context.Context, query string) ([]ledger.Transaction, error)
}

// Service exports the ledger as CSV.
type Service struct {
	transactions Lister
}

func NewService(l Lister) *Service {
	return &Service{transactions: l}
}

type Options struct {
	// Query filters rows like the transaction search does.
	Query string
	// BOM prefixes the file with a UTF-8 byte order mark for spreadsheet apps.
	BOM bool
}

// Export writes the matching transactions to w in ledger order and returns how many rows
// were written.
func (s *Service) Export(ctx context.Context, w io.Writer, opts Options) (int, error) {
	txs, err := s.transactions.Transactions(ctx, opts.Query)
	if err != nil {
		return 0, fmt.Errorf("listing transactions: %w", err)
	}

	if !opts.BOM {
		return len(txs), WriteCSV(w, txs)
	}

	bw := encoding.NewExcelWriter(w)
	if err := WriteCSV(bw, txs); err != nil {
		return 0, err
	}

	if err := bw.Close(); err != nil {
		return 0, fmt.Errorf("flush csv: %w", err)
	}

	return len(txs), nil
}

func WriteCSV(w io.Writer, txs []ledger.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, tx := range txs {
		record := []string{
			tx.Date.Format(time.DateOnly),
			tx.Merchant,
			string(tx.Category),
			money.Plain(tx.Amount),
			string(tx.Type),
			string(tx.Method),
			tx.TxHash,
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write transaction %s: %w", tx.ID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// FileName is the download name for an export taken on day.
func FileName(day time.Time) string {
	return fmt.Sprintf("finco_transactions_%s.csv", day.Format(time.DateOnly))
}

// Summary renders txs as a short plain-text list, one line per transaction.
func Summary(txs []ledger.Transaction) string {
	var sb strings.Builder

	for _, tx := range txs {
		sign := "-"
		if tx.Type == ledger.TypeCredit {
			sign = "+"
		}

		hash := "off-chain"
		if tx.TxHash != "" {
			hash = tx.TxHash
		}

		fmt.Fprintf(&sb, "* %s | %s | %s%s | %s\n", tx.Date.Format(time.DateOnly), tx.Merchant, sign, money.Format(tx.Amount), hash)
	}

	return sb.String()
}
