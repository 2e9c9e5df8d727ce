package view

import (
	"context"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finco/internal/ledger"
	"github.com/MrJamesThe3rd/finco/internal/money"
)

const ledgerTimeout = 5 * time.Second

// FormatAmount renders an amount in rupees with Indian digit grouping.
func FormatAmount(d decimal.Decimal) string {
	return money.Format(d)
}

// FormatSigned prefixes debits with "-" and credits with "+".
func FormatSigned(tx ledger.Transaction) string {
	if tx.Type == ledger.TypeCredit {
		return "+" + money.Format(tx.Amount)
	}

	return "-" + money.Format(tx.Amount)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// LedgerCtx returns a context with a standard timeout for ledger operations.
func LedgerCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), ledgerTimeout)
}

// parseAmount reads a form field as a positive decimal.
func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errInvalidAmount
	}

	if !d.IsPositive() {
		return decimal.Zero, errInvalidAmount
	}

	return d, nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	faintStyle = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	panelStyle = lipgloss.NewStyle().
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63"))
)

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}
