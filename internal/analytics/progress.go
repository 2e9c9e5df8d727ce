package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

type BudgetLevel string

const (
	BudgetOK       BudgetLevel = "ok"
	BudgetWarning  BudgetLevel = "warning"
	BudgetCritical BudgetLevel = "critical"
)

type BudgetStatus struct {
	Category string
	Limit    decimal.Decimal
	Spent    decimal.Decimal
	Percent  int
	Level    BudgetLevel
}

// BudgetUsage compares each budget with its category spend, ordered by category name.
func BudgetUsage(s ledger.State) []BudgetStatus {
	spend := CategorySpend(s.Transactions)

	out := make([]BudgetStatus, 0, len(s.Budgets))

	for cat, limit := range s.Budgets {
		spent := spend[ledger.Category(cat)]
		pct := percent(spent, limit)

		level := BudgetOK

		switch {
		case pct > 85:
			level = BudgetCritical
		case pct > 50:
			level = BudgetWarning
		}

		out = append(out, BudgetStatus{Category: cat, Limit: limit, Spent: spent, Percent: pct, Level: level})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })

	return out
}

type GoalStatus struct {
	Goal        ledger.Goal
	Percent     int
	Remaining   decimal.Decimal
	DaysLeft    int
	YearlyYield decimal.Decimal
}

func GoalProgress(goals []ledger.Goal, today time.Time) []GoalStatus {
	out := make([]GoalStatus, len(goals))

	for i, g := range goals {
		out[i] = GoalStatus{
			Goal:        g,
			Percent:     percent(g.CurrentAmount, g.TargetAmount),
			Remaining:   decimal.Max(decimal.Zero, g.TargetAmount.Sub(g.CurrentAmount)),
			DaysLeft:    DaysUntil(g.Deadline, today),
			YearlyYield: ProjectedYield(g.CurrentAmount, g.APY),
		}
	}

	return out
}

// ProjectedYield is the simple yearly return of amount at apy percent. A nil apy yields zero.
func ProjectedYield(amount decimal.Decimal, apy *decimal.Decimal) decimal.Decimal {
	if apy == nil {
		return decimal.Zero
	}

	return amount.Mul(*apy).Div(decimal.NewFromInt(100)).Round(2)
}

// VaultAPY is the advertised vault yield, in percent.
var VaultAPY = decimal.RequireFromString("6.5")

// VaultMonthlyYield is the vault's projected monthly earning, rounded to whole units.
func VaultMonthlyYield(vault decimal.Decimal) decimal.Decimal {
	return ProjectedYield(vault, &VaultAPY).Div(decimal.NewFromInt(12)).Round(0)
}

type Reward struct {
	Level    int64
	Progress int64
	Title    string
}

func RewardLevel(tokens int64) Reward {
	r := Reward{Level: tokens/100 + 1, Progress: tokens % 100}

	switch {
	case r.Level >= 10:
		r.Title = "Crypto King"
	case r.Level >= 5:
		r.Title = "DeFi Degen"
	case r.Level >= 3:
		r.Title = "Smart Saver"
	default:
		r.Title = "Novice"
	}

	return r
}

// percent is round(part/whole*100) capped at 100, or zero when whole is not positive.
func percent(part, whole decimal.Decimal) int {
	if !whole.IsPositive() {
		return 0
	}

	p := part.Div(whole).Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	return int(min(100, p))
}
