// Package analytics derives read-only views from a ledger snapshot. Nothing here is cached;
// every function recomputes from the state it is given.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

const (
	// TrendDays is the length of the spend trend window.
	TrendDays = 7
	// SubscriptionBucket is the rounding step used to group recurring charges.
	SubscriptionBucket = 100
)

type CategoryTotal struct {
	Category ledger.Category
	Total    decimal.Decimal
}

type DayTotal struct {
	Date  time.Time
	Total decimal.Decimal
}

// Subscription is a likely recurring charge. Detection is best effort: it only looks at
// merchant names and rounded amounts.
type Subscription struct {
	Merchant string
	Amount   decimal.Decimal
	LastDate time.Time
	Count    int
}

// CategorySpend sums debit amounts per category.
func CategorySpend(txs []ledger.Transaction) map[ledger.Category]decimal.Decimal {
	out := make(map[ledger.Category]decimal.Decimal)

	for _, tx := range txs {
		if tx.Type != ledger.TypeDebit {
			continue
		}

		out[tx.Category] = out[tx.Category].Add(tx.Amount)
	}

	return out
}

// RankedCategorySpend returns CategorySpend as a slice, largest first.
func RankedCategorySpend(txs []ledger.Transaction) []CategoryTotal {
	spend := CategorySpend(txs)

	out := make([]CategoryTotal, 0, len(spend))
	for c, total := range spend {
		out = append(out, CategoryTotal{Category: c, Total: total})
	}

	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].Total.Cmp(out[j].Total); cmp != 0 {
			return cmp > 0
		}

		return out[i].Category < out[j].Category
	})

	return out
}

func TotalSpent(txs []ledger.Transaction) decimal.Decimal {
	total := decimal.Zero

	for _, tx := range txs {
		if tx.Type == ledger.TypeDebit {
			total = total.Add(tx.Amount)
		}
	}

	return total
}

// Subscriptions groups debits (transfers excluded) by merchant and amount rounded to the
// nearest SubscriptionBucket, halves rounding down, and reports every group seen at least
// twice. txs must be newest first; each group carries its most recent amount and date.
func Subscriptions(txs []ledger.Transaction) []Subscription {
	type key struct {
		merchant string
		bucket   string
	}

	index := make(map[key]int)

	var groups []Subscription

	for _, tx := range txs {
		if tx.Type != ledger.TypeDebit || tx.Category == ledger.CategoryTransfer {
			continue
		}

		k := key{merchant: tx.Merchant, bucket: bucket(tx.Amount).String()}

		i, ok := index[k]
		if !ok {
			index[k] = len(groups)
			groups = append(groups, Subscription{Merchant: tx.Merchant, Amount: tx.Amount, LastDate: tx.Date})

			i = len(groups) - 1
		}

		groups[i].Count++
	}

	var out []Subscription

	for _, g := range groups {
		if g.Count > 1 {
			out = append(out, g)
		}
	}

	return out
}

func bucket(amount decimal.Decimal) decimal.Decimal {
	step := decimal.NewFromInt(SubscriptionBucket)
	return amount.Div(step).Sub(decimal.NewFromFloat(0.5)).Ceil().Mul(step)
}

// Trend returns debit totals for the TrendDays calendar days ending today, oldest first.
// Days without spend are present with a zero total.
func Trend(txs []ledger.Transaction, today time.Time) []DayTotal {
	end := ledger.Day(today)
	out := make([]DayTotal, TrendDays)

	for i := range out {
		out[i] = DayTotal{Date: end.AddDate(0, 0, i-(TrendDays-1)), Total: decimal.Zero}
	}

	for _, tx := range txs {
		if tx.Type != ledger.TypeDebit {
			continue
		}

		day := ledger.Day(tx.Date.In(end.Location()))
		for i := range out {
			if out[i].Date.Equal(day) {
				out[i].Total = out[i].Total.Add(tx.Amount)
				break
			}
		}
	}

	return out
}
