package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

// Dashboard bundles every derived view of a state at one instant.
type Dashboard struct {
	GeneratedAt       time.Time
	Health            Health
	TotalSpent        decimal.Decimal
	TotalLiquidity    decimal.Decimal
	VaultMonthlyYield decimal.Decimal
	Categories        []CategoryTotal
	Trend             []DayTotal
	Subscriptions     []Subscription
	Bills             []UpcomingBill
	Budgets           []BudgetStatus
	Goals             []GoalStatus
	Rewards           Reward
}

func Build(s ledger.State, now time.Time) Dashboard {
	return Dashboard{
		GeneratedAt:       now,
		Health:            HealthScore(s, now),
		TotalSpent:        TotalSpent(s.Transactions),
		TotalLiquidity:    s.CurrentBalance.Add(s.VaultBalance),
		VaultMonthlyYield: VaultMonthlyYield(s.VaultBalance),
		Categories:        RankedCategorySpend(s.Transactions),
		Trend:             Trend(s.Transactions, now),
		Subscriptions:     Subscriptions(s.Transactions),
		Bills:             UpcomingBills(s.Bills, now),
		Budgets:           BudgetUsage(s),
		Goals:             GoalProgress(s.Goals, now),
		Rewards:           RewardLevel(s.FinTokens),
	}
}
