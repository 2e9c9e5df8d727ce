package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finco/internal/analytics"
	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

type billResponse struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Amount  decimal.Decimal `json:"amount"`
	DueDate string          `json:"due_date"`
	IsPaid  bool            `json:"is_paid"`
}

type goalResponse struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	TargetAmount         decimal.Decimal  `json:"target_amount"`
	CurrentAmount        decimal.Decimal  `json:"current_amount"`
	Deadline             string           `json:"deadline"`
	SmartContractAddress string           `json:"smart_contract_address,omitempty"`
	APY                  *decimal.Decimal `json:"apy,omitempty"`
}

type budgetResponse struct {
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
}

type ledgerResponse struct {
	MonthlyIncome  decimal.Decimal  `json:"monthly_income"`
	CurrentBalance decimal.Decimal  `json:"current_balance"`
	VaultBalance   decimal.Decimal  `json:"vault_balance"`
	WalletAddress  *string          `json:"wallet_address"`
	FinTokens      int64            `json:"fin_tokens"`
	Transactions   int              `json:"transactions"`
	Bills          []billResponse   `json:"bills"`
	Goals          []goalResponse   `json:"goals"`
	Budgets        []budgetResponse `json:"budgets"`
}

func toBill(b ledger.Bill) billResponse {
	return billResponse{
		ID:      b.ID,
		Name:    b.Name,
		Amount:  b.Amount,
		DueDate: b.DueDate.Format(time.DateOnly),
		IsPaid:  b.IsPaid,
	}
}

func toGoal(g ledger.Goal) goalResponse {
	return goalResponse{
		ID:                   g.ID,
		Name:                 g.Name,
		TargetAmount:         g.TargetAmount,
		CurrentAmount:        g.CurrentAmount,
		Deadline:             g.Deadline.Format(time.DateOnly),
		SmartContractAddress: g.SmartContractAddress,
		APY:                  g.APY,
	}
}

func toLedgerResponse(s ledger.State) ledgerResponse {
	resp := ledgerResponse{
		MonthlyIncome:  s.MonthlyIncome,
		CurrentBalance: s.CurrentBalance,
		VaultBalance:   s.VaultBalance,
		WalletAddress:  s.WalletAddress,
		FinTokens:      s.FinTokens,
		Transactions:   len(s.Transactions),
		Bills:          make([]billResponse, len(s.Bills)),
		Goals:          make([]goalResponse, len(s.Goals)),
		Budgets:        make([]budgetResponse, 0, len(s.Budgets)),
	}

	for i, b := range s.Bills {
		resp.Bills[i] = toBill(b)
	}

	for i, g := range s.Goals {
		resp.Goals[i] = toGoal(g)
	}

	for c, l := range s.Budgets {
		resp.Budgets = append(resp.Budgets, budgetResponse{Category: c, Limit: l})
	}

	sort.Slice(resp.Budgets, func(i, j int) bool { return resp.Budgets[i].Category < resp.Budgets[j].Category })

	return resp
}

type healthResponse struct {
	Score        int             `json:"score"`
	SavingsRatio decimal.Decimal `json:"savings_ratio"`
	Tier         analytics.Tier  `json:"tier"`
	Persona      string          `json:"persona"`
	Description  string          `json:"description"`
}

type categoryResponse struct {
	Category ledger.Category `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

type dayResponse struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

type subscriptionResponse struct {
	Merchant string          `json:"merchant"`
	Amount   decimal.Decimal `json:"amount"`
	LastDate string          `json:"last_date"`
	Count    int             `json:"count"`
}

type upcomingBillResponse struct {
	billResponse
	DaysLeft int `json:"days_left"`
}

type budgetStatusResponse struct {
	Category string                `json:"category"`
	Limit    decimal.Decimal       `json:"limit"`
	Spent    decimal.Decimal       `json:"spent"`
	Percent  int                   `json:"percent"`
	Level    analytics.BudgetLevel `json:"level"`
}

type goalStatusResponse struct {
	goalResponse
	Percent     int             `json:"percent"`
	Remaining   decimal.Decimal `json:"remaining"`
	DaysLeft    int             `json:"days_left"`
	YearlyYield decimal.Decimal `json:"yearly_yield"`
}

type rewardResponse struct {
	Level    int64  `json:"level"`
	Progress int64  `json:"progress"`
	Title    string `json:"title"`
}

type dashboardResponse struct {
	GeneratedAt       time.Time              `json:"generated_at"`
	Health            healthResponse         `json:"health"`
	TotalSpent        decimal.Decimal        `json:"total_spent"`
	TotalLiquidity    decimal.Decimal        `json:"total_liquidity"`
	VaultMonthlyYield decimal.Decimal        `json:"vault_monthly_yield"`
	Categories        []categoryResponse     `json:"categories"`
	Trend             []dayResponse          `json:"trend"`
	Subscriptions     []subscriptionResponse `json:"subscriptions"`
	Bills             []upcomingBillResponse `json:"bills"`
	Budgets           []budgetStatusResponse `json:"budgets"`
	Goals             []goalStatusResponse   `json:"goals"`
	Rewards           rewardResponse         `json:"rewards"`
}

func toDashboardResponse(d analytics.Dashboard) dashboardResponse {
	resp := dashboardResponse{
		GeneratedAt: d.GeneratedAt,
		Health: healthResponse{
			Score:        d.Health.Score,
			SavingsRatio: d.Health.SavingsRatio,
			Tier:         d.Health.Persona.Tier,
			Persona:      d.Health.Persona.Title,
			Description:  d.Health.Persona.Description,
		},
		TotalSpent:        d.TotalSpent,
		TotalLiquidity:    d.TotalLiquidity,
		VaultMonthlyYield: d.VaultMonthlyYield,
		Categories:        make([]categoryResponse, len(d.Categories)),
		Trend:             make([]dayResponse, len(d.Trend)),
		Subscriptions:     make([]subscriptionResponse, len(d.Subscriptions)),
		Bills:             make([]upcomingBillResponse, len(d.Bills)),
		Budgets:           make([]budgetStatusResponse, len(d.Budgets)),
		Goals:             make([]goalStatusResponse, len(d.Goals)),
		Rewards:           rewardResponse(d.Rewards),
	}

	for i, c := range d.Categories {
		resp.Categories[i] = categoryResponse(c)
	}

	for i, t := range d.Trend {
		resp.Trend[i] = dayResponse{Date: t.Date.Format(time.DateOnly), Total: t.Total}
	}

	for i, s := range d.Subscriptions {
		resp.Subscriptions[i] = subscriptionResponse{
			Merchant: s.Merchant,
			Amount:   s.Amount,
			LastDate: s.LastDate.Format(time.DateOnly),
			Count:    s.Count,
		}
	}

	for i, b := range d.Bills {
		resp.Bills[i] = upcomingBillResponse{billResponse: toBill(b.Bill), DaysLeft: b.DaysLeft}
	}

	for i, b := range d.Budgets {
		resp.Budgets[i] = budgetStatusResponse(b)
	}

	for i, g := range d.Goals {
		resp.Goals[i] = goalStatusResponse{
			goalResponse: toGoal(g.Goal),
			Percent:      g.Percent,
			Remaining:    g.Remaining,
			DaysLeft:     g.DaysLeft,
			YearlyYield:  g.YearlyYield,
		}
	}

	return resp
}
