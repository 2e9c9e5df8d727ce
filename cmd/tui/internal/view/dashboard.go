package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finco/internal/analytics"
	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

const barWidth = 20

type DashboardModel struct {
	CommonModel
	svc *ledger.Service

	state   ledger.State
	dash    analytics.Dashboard
	loading bool
	err     error
}

func NewDashboardModel(svc *ledger.Service) DashboardModel {
	return DashboardModel{svc: svc, loading: true}
}

func (m DashboardModel) Title() string     { return "Dashboard" }
func (m DashboardModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardMsg:
		m.loading = false
		m.err = msg.err
		m.state = msg.state
		m.dash = msg.dash

		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m DashboardModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading dashboard...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	d := m.dash

	left := lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Render(m.viewOverview()),
		panelStyle.Render(viewCategories(d.Categories, d.TotalSpent)),
		panelStyle.Render(viewTrend(d.Trend)),
	)

	right := lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Render(viewBudgets(d.Budgets)),
		panelStyle.Render(viewBills(d.Bills)),
		panelStyle.Render(viewGoals(d.Goals)),
		panelStyle.Render(viewSubscriptions(d.Subscriptions)),
	)

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
}

func (m DashboardModel) viewOverview() string {
	d := m.dash

	tierStyle := okStyle
	switch d.Health.Persona.Tier {
	case analytics.TierBalanced:
		tierStyle = warnStyle
	case analytics.TierAtRisk:
		tierStyle = errorStyle
	}

	wallet := faintStyle.Render("not connected")
	if m.state.WalletConnected() {
		wallet = *m.state.WalletAddress
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Overview") + "\n")
	fmt.Fprintf(&sb, "Health      %s %s\n", tierStyle.Render(fmt.Sprintf("%d/100", d.Health.Score)), d.Health.Persona.Title)
	fmt.Fprintf(&sb, "            %s\n", faintStyle.Render(d.Health.Persona.Description))
	fmt.Fprintf(&sb, "Balance     %s\n", FormatAmount(m.state.CurrentBalance))
	fmt.Fprintf(&sb, "Vault       %s (+%s/mo at %s%%)\n", FormatAmount(m.state.VaultBalance), FormatAmount(d.VaultMonthlyYield), analytics.VaultAPY)
	fmt.Fprintf(&sb, "Liquidity   %s\n", FormatAmount(d.TotalLiquidity))
	fmt.Fprintf(&sb, "Income      %s\n", FormatAmount(m.state.MonthlyIncome))
	fmt.Fprintf(&sb, "Spent       %s (saving %s%%)\n", FormatAmount(d.TotalSpent), d.Health.SavingsRatio.Mul(decimal.NewFromInt(100)).Round(0))
	fmt.Fprintf(&sb, "FinTokens   %d  Lv %d %s [%s]\n", m.state.FinTokens, d.Rewards.Level, d.Rewards.Title, bar(int(d.Rewards.Progress), 10))
	fmt.Fprintf(&sb, "Wallet      %s", wallet)

	return sb.String()
}

func viewCategories(cats []analytics.CategoryTotal, total decimal.Decimal) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Spending by category"))

	for _, c := range cats {
		pct := 0
		if total.IsPositive() {
			pct = int(c.Total.Div(total).Mul(decimal.NewFromInt(100)).IntPart())
		}

		fmt.Fprintf(&sb, "\n%-14s %s %s", c.Category, bar(pct, barWidth), FormatAmount(c.Total))
	}

	return sb.String()
}

func viewTrend(days []analytics.DayTotal) string {
	peak := decimal.Zero
	for _, d := range days {
		peak = decimal.Max(peak, d.Total)
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Last 7 days"))

	for _, d := range days {
		pct := 0
		if peak.IsPositive() {
			pct = int(d.Total.Div(peak).Mul(decimal.NewFromInt(100)).IntPart())
		}

		fmt.Fprintf(&sb, "\n%s %s %s", d.Date.Format("Mon 02"), bar(pct, barWidth), FormatAmount(d.Total))
	}

	return sb.String()
}

func viewBudgets(budgets []analytics.BudgetStatus) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Budgets"))

	for _, b := range budgets {
		style := okStyle
		switch b.Level {
		case analytics.BudgetWarning:
			style = warnStyle
		case analytics.BudgetCritical:
			style = errorStyle
		}

		fmt.Fprintf(&sb, "\n%-14s %s %s / %s", b.Category, style.Render(bar(b.Percent, barWidth)), FormatAmount(b.Spent), FormatAmount(b.Limit))
	}

	return sb.String()
}

func viewBills(bills []analytics.UpcomingBill) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Upcoming bills"))

	if len(bills) == 0 {
		sb.WriteString("\n" + okStyle.Render("All bills paid"))
	}

	for _, b := range bills {
		due := fmt.Sprintf("in %d days", b.DaysLeft)
		switch {
		case b.DaysLeft < 0:
			due = errorStyle.Render(fmt.Sprintf("%d days overdue", -b.DaysLeft))
		case b.DaysLeft == 0:
			due = warnStyle.Render("due today")
		}

		fmt.Fprintf(&sb, "\n%-18s %10s  %s", b.Bill.Name, FormatAmount(b.Bill.Amount), due)
	}

	return sb.String()
}

func viewGoals(goals []analytics.GoalStatus) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Goals"))

	for _, g := range goals {
		fmt.Fprintf(&sb, "\n%-16s %s %d%%  %s left, %d days", g.Goal.Name, bar(g.Percent, barWidth), g.Percent, FormatAmount(g.Remaining), g.DaysLeft)

		if g.YearlyYield.IsPositive() {
			fmt.Fprintf(&sb, "\n%16s %s", "", faintStyle.Render(fmt.Sprintf("earning ~%s/yr", FormatAmount(g.YearlyYield))))
		}
	}

	return sb.String()
}

func viewSubscriptions(subs []analytics.Subscription) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Recurring charges"))

	if len(subs) == 0 {
		sb.WriteString("\n" + faintStyle.Render("none detected"))
	}

	for _, s := range subs {
		fmt.Fprintf(&sb, "\n%-16s %s x%d, last %s", s.Merchant, FormatAmount(s.Amount), s.Count, FormatDate(s.LastDate))
	}

	return sb.String()
}

// bar renders pct (0-100) as a fixed-width block bar.
func bar(pct, width int) string {
	pct = max(0, min(100, pct))
	filled := pct * width / 100

	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

type dashboardMsg struct {
	state ledger.State
	dash  analytics.Dashboard
	err   error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := LedgerCtx()
		defer cancel()

		st, err := m.svc.Snapshot(ctx)
		if err != nil {
			return dashboardMsg{err: err}
		}

		return dashboardMsg{state: st, dash: analytics.Build(st, m.svc.Now())}
	}
}
