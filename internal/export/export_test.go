package export_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finco/internal/export"
	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

type listerFunc func(ctx context.Context, query string) ([]ledger.Transaction, error)

func (f listerFunc) Transactions(ctx context.Context, query string) ([]ledger.Transaction, error) {
	return f(ctx, query)
}

func fixture() []ledger.Transaction {
	return []ledger.Transaction{
		{
			ID:       "1",
			Date:     time.Date(2023, 10, 25, 0, 0, 0, 0, time.Local),
			Merchant: "Swiggy",
			Amount:   decimal.NewFromInt(450),
			Category: ledger.CategoryFood,
			Type:     ledger.TypeDebit,
			Method:   ledger.MethodUPI,
			TxHash:   "0x71c",
		},
		{
			ID:       "2",
			Date:     time.Date(2023, 10, 22, 0, 0, 0, 0, time.Local),
			Merchant: "Refund, Amazon",
			Amount:   decimal.RequireFromString("99.5"),
			Category: ledger.CategoryShopping,
			Type:     ledger.TypeCredit,
			Method:   ledger.MethodBankTransfer,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, fixture()))

	want := "Date,Merchant,Category,Amount,Type,Method,TxHash\n" +
		"2023-10-25,Swiggy,Food,450,debit,UPI,0x71c\n" +
		"2023-10-22,\"Refund, Amazon\",Shopping,99.50,credit,Bank Transfer,\n"

	assert.Equal(t, want, buf.String())
}

func TestService_Export(t *testing.T) {
	type testCase struct {
		name     string
		opts     export.Options
		lister   listerFunc
		wantRows int
		wantBOM  bool
		wantErr  bool
	}

	tests := []testCase{
		{
			name: "Plain",
			lister: func(_ context.Context, q string) ([]ledger.Transaction, error) {
				assert.Empty(t, q)
				return fixture(), nil
			},
			wantRows: 2,
		},
		{
			name: "WithBOMAndQuery",
			opts: export.Options{Query: "food", BOM: true},
			lister: func(_ context.Context, q string) ([]ledger.Transaction, error) {
				assert.Equal(t, "food", q)
				return fixture()[:1], nil
			},
			wantRows: 1,
			wantBOM:  true,
		},
		{
			name: "ListError",
			lister: func(context.Context, string) ([]ledger.Transaction, error) {
				return nil, errors.New("boom")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			n, err := export.NewService(tt.lister).Export(context.Background(), &buf, tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, n)
			assert.Equal(t, tt.wantBOM, bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}))

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			assert.Len(t, lines, tt.wantRows+1)
		})
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "finco_transactions_2023-10-26.csv", export.FileName(time.Date(2023, 10, 26, 13, 0, 0, 0, time.UTC)))
}

func TestSummary(t *testing.T) {
	got := export.Summary(fixture())

	assert.Equal(t,
		"* 2023-10-25 | Swiggy | -₹450 | 0x71c\n"+
			"* 2023-10-22 | Refund, Amazon | +₹99.50 | off-chain\n",
		got)
}
