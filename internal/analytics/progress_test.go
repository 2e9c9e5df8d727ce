package analytics_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finco/internal/analytics"
	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

func TestBudgetUsage(t *testing.T) {
	s := ledger.Seed()
	s.Budgets["Health"] = decimal.Zero

	got := analytics.BudgetUsage(s)
	require.Len(t, got, 6)

	byCat := make(map[string]analytics.BudgetStatus, len(got))
	for _, b := range got {
		byCat[b.Category] = b
	}

	// 4200 of 8000
	assert.Equal(t, 53, byCat["Food"].Percent)
	assert.Equal(t, analytics.BudgetWarning, byCat["Food"].Level)

	// 6580 of 5000 is capped
	assert.Equal(t, 100, byCat["Shopping"].Percent)
	assert.Equal(t, analytics.BudgetCritical, byCat["Shopping"].Level)

	// 405 of 3000
	assert.Equal(t, 14, byCat["Transport"].Percent)
	assert.Equal(t, analytics.BudgetOK, byCat["Transport"].Level)

	assert.Equal(t, 0, byCat["Health"].Percent)

	assert.Equal(t, "Bills", got[0].Category, "sorted by category")
}

func TestGoalProgress(t *testing.T) {
	got := analytics.GoalProgress(ledger.Seed().Goals, today)
	require.Len(t, got, 2)

	assert.Equal(t, 30, got[0].Percent)
	assert.True(t, dec(105000).Equal(got[0].Remaining))
	assert.True(t, decimal.RequireFromString("2025").Equal(got[0].YearlyYield))
	assert.Equal(t, 40, got[1].Percent)

	over := ledger.Goal{TargetAmount: dec(100), CurrentAmount: dec(250)}
	capped := analytics.GoalProgress([]ledger.Goal{over}, today)[0]
	assert.Equal(t, 100, capped.Percent)
	assert.True(t, decimal.Zero.Equal(capped.Remaining))
	assert.True(t, decimal.Zero.Equal(capped.YearlyYield))
}

func TestVaultMonthlyYield(t *testing.T) {
	// 150000 * 6.5% / 12 = 812.5
	assert.True(t, dec(813).Equal(analytics.VaultMonthlyYield(dec(150000))))
}

func TestRewardLevel(t *testing.T) {
	type testCase struct {
		tokens int64
		want   analytics.Reward
	}

	tests := []testCase{
		{tokens: 0, want: analytics.Reward{Level: 1, Progress: 0, Title: "Novice"}},
		{tokens: 250, want: analytics.Reward{Level: 3, Progress: 50, Title: "Smart Saver"}},
		{tokens: 499, want: analytics.Reward{Level: 5, Progress: 99, Title: "DeFi Degen"}},
		{tokens: 900, want: analytics.Reward{Level: 10, Progress: 0, Title: "Crypto King"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, analytics.RewardLevel(tt.tokens))
	}
}

func TestBuild(t *testing.T) {
	s := ledger.Seed()
	d := analytics.Build(s, today)

	assert.Equal(t, 70, d.Health.Score)
	assert.True(t, dec(174500).Equal(d.TotalLiquidity))
	assert.Len(t, d.Trend, analytics.TrendDays)
	assert.Len(t, d.Bills, 3)
	assert.Len(t, d.Goals, 2)
	assert.Equal(t, "Smart Saver", d.Rewards.Title)
	assert.Empty(t, d.Subscriptions)
}
