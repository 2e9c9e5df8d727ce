package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

type Tier string

const (
	TierThriving Tier = "thriving"
	TierBalanced Tier = "balanced"
	TierAtRisk   Tier = "at-risk"
)

type Persona struct {
	Tier        Tier
	Title       string
	Description string
}

type Health struct {
	Score        int
	SavingsRatio decimal.Decimal
	Persona      Persona
}

var (
	highSavings = decimal.RequireFromString("0.2")
	lowSavings  = decimal.RequireFromString("0.1")
)

// HealthScore rates the ledger from 0 to 100.
//
// Starting at 70: savings above 20% of income add 15, above 10% add 5, negative savings
// subtract 15. An overdue unpaid bill subtracts 20; having no unpaid bills at all adds 10.
// A wallet balance below the unpaid bills total subtracts 15, otherwise 5 is added.
func HealthScore(s ledger.State, today time.Time) Health {
	score := 70

	ratio := SavingsRatio(s.MonthlyIncome, TotalSpent(s.Transactions))

	switch {
	case ratio.GreaterThan(highSavings):
		score += 15
	case ratio.GreaterThan(lowSavings):
		score += 5
	case ratio.IsNegative():
		score -= 15
	}

	unpaid := UnpaidBills(s.Bills)

	overdue := false
	billsTotal := decimal.Zero

	for _, b := range unpaid {
		if DaysUntil(b.DueDate, today) < 0 {
			overdue = true
		}

		billsTotal = billsTotal.Add(b.Amount)
	}

	switch {
	case overdue:
		score -= 20
	case len(unpaid) == 0:
		score += 10
	}

	if s.CurrentBalance.LessThan(billsTotal) {
		score -= 15
	} else {
		score += 5
	}

	score = max(0, min(100, score))

	return Health{Score: score, SavingsRatio: ratio, Persona: PersonaFor(score)}
}

// SavingsRatio is (income - spent) / income, or zero when income is not positive.
func SavingsRatio(income, spent decimal.Decimal) decimal.Decimal {
	if !income.IsPositive() {
		return decimal.Zero
	}

	return income.Sub(spent).Div(income)
}

func PersonaFor(score int) Persona {
	switch {
	case score >= 80:
		return Persona{Tier: TierThriving, Title: "Wealth Wizard", Description: "Your habits are impeccable."}
	case score >= 50:
		return Persona{Tier: TierBalanced, Title: "Balanced Builder", Description: "Good foundation, room to grow."}
	default:
		return Persona{Tier: TierAtRisk, Title: "Cashflow Cadet", Description: "Immediate attention needed."}
	}
}

// DaysUntil is the whole number of days from today to due, with both truncated to local
// midnight. Negative means overdue.
func DaysUntil(due, today time.Time) int {
	d := ledger.Day(due.In(today.Location())).Sub(ledger.Day(today))
	return int(math.Round(d.Hours() / 24))
}

// UnpaidBills returns the unpaid bills ordered by due date, earliest first.
func UnpaidBills(bills []ledger.Bill) []ledger.Bill {
	var out []ledger.Bill

	for _, b := range bills {
		if !b.IsPaid {
			out = append(out, b)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })

	return out
}

type UpcomingBill struct {
	Bill     ledger.Bill
	DaysLeft int
}

func UpcomingBills(bills []ledger.Bill, today time.Time) []UpcomingBill {
	unpaid := UnpaidBills(bills)

	out := make([]UpcomingBill, len(unpaid))
	for i, b := range unpaid {
		out[i] = UpcomingBill{Bill: b, DaysLeft: DaysUntil(b.DueDate, today)}
	}

	return out
}
