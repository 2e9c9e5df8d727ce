package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

// settleTimeout covers the simulated settlement delay of wallet operations.
const settleTimeout = 15 * time.Second

type action string

const (
	actionPayBill    action = "pay"
	actionStake      action = "stake"
	actionAddGoal    action = "goal"
	actionSend       action = "send"
	actionVault      action = "vault"
	actionIncome     action = "income"
	actionBudget     action = "budget"
	actionWallet     action = "wallet"
	actionDisconnect action = "disconnect"
)

type actionsState int

const (
	actionsStateLoading actionsState = iota
	actionsStateMenu
	actionsStateForm
	actionsStateRunning
	actionsStateResult
)

// ActionsModel runs the wallet operations: bills, goals, transfers, vault and settings.
type ActionsModel struct {
	CommonModel
	svc *ledger.Service

	state   actionsState
	ledger  ledger.State
	form    *huh.Form
	input   *actionsInput
	spinner spinner.Model

	status string
	err    error
}

// actionsInput holds the form bindings outside the value-copied model.
type actionsInput struct {
	action action

	billID    string
	goalID    string
	recipient string
	direction ledger.Direction
	category  string
	amount    string

	goalName    string
	goalTarget  string
	goalCurrent string
	goalDate    string
	goalAPY     string
}

func NewActionsModel(svc *ledger.Service) ActionsModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ActionsModel{
		svc:     svc,
		input:   &actionsInput{},
		spinner: s,
	}
}

func (m ActionsModel) Title() string { return "Wallet Actions" }

func (m ActionsModel) ShortHelp() string {
	switch m.state {
	case actionsStateRunning:
		return "Settling..."
	case actionsStateResult:
		return "Enter: another action | Esc: back"
	}

	return "Esc: back | Enter: select"
}

func (m ActionsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ActionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case actionsLoadedMsg:
		if msg.err != nil {
			m.state = actionsStateResult
			m.err = msg.err

			return m, nil
		}

		m.ledger = msg.state
		m.state = actionsStateMenu
		m.form = m.input.menuForm(m.ledger)

		return m, m.form.Init()

	case actionDoneMsg:
		m.state = actionsStateResult
		m.err = msg.err
		m.status = msg.status

		return m, nil

	case spinner.TickMsg:
		if m.state != actionsStateRunning {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.KeyMsg:
		switch m.state {
		case actionsStateResult:
			switch msg.Type {
			case tea.KeyEsc:
				return m, Back
			case tea.KeyEnter:
				m.err = nil
				m.status = ""
				m.state = actionsStateLoading

				return m, m.loadCmd()
			}

			return m, nil
		case actionsStateForm:
			if msg.Type == tea.KeyEsc {
				m.state = actionsStateMenu
				m.form = m.input.menuForm(m.ledger)

				return m, m.form.Init()
			}
		case actionsStateMenu:
			if msg.Type == tea.KeyEsc {
				return m, Back
			}
		}
	}

	if m.form == nil || (m.state != actionsStateMenu && m.state != actionsStateForm) {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == actionsStateMenu {
		return m.openAction()
	}

	return m.run()
}

func (m ActionsModel) openAction() (tea.Model, tea.Cmd) {
	in := m.input
	in.amount = ""

	if in.action == actionWallet || in.action == actionDisconnect {
		return m.run()
	}

	m.state = actionsStateForm
	m.form = in.actionForm(m.ledger)

	return m, m.form.Init()
}

func (m ActionsModel) run() (tea.Model, tea.Cmd) {
	m.state = actionsStateRunning
	m.form = nil

	return m, tea.Batch(m.spinner.Tick, m.runCmd(*m.input))
}

func (m ActionsModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case actionsStateLoading:
		return style.Render("Loading...")
	case actionsStateMenu, actionsStateForm:
		header := faintStyle.Render(fmt.Sprintf("Balance %s | Vault %s | %d FinTokens",
			FormatAmount(m.ledger.CurrentBalance), FormatAmount(m.ledger.VaultBalance), m.ledger.FinTokens))

		return style.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", m.form.View()))
	case actionsStateRunning:
		return style.Render(fmt.Sprintf("%s Settling on chain...", m.spinner.View()))
	case actionsStateResult:
		if m.err != nil {
			return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		}

		return style.Render(okStyle.Render(m.status))
	}

	return ""
}

func (in *actionsInput) menuForm(st ledger.State) *huh.Form {
	wallet := huh.NewOption("Connect wallet", actionWallet)
	if st.WalletConnected() {
		wallet = huh.NewOption("Disconnect wallet", actionDisconnect)
	}

	opts := []huh.Option[action]{
		huh.NewOption("Pay a bill", actionPayBill),
		huh.NewOption("Stake to a goal", actionStake),
		huh.NewOption("Create a goal", actionAddGoal),
		huh.NewOption("Send money", actionSend),
		huh.NewOption("Move funds to or from the vault", actionVault),
		huh.NewOption("Update monthly income", actionIncome),
		huh.NewOption("Set a budget", actionBudget),
		wallet,
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[action]().
				Key("action").
				Title("What do you want to do?").
				Options(opts...).
				Value(&in.action),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (in *actionsInput) amountField(title string) *huh.Input {
	return huh.NewInput().
		Key("amount").
		Title(title).
		Value(&in.amount).
		Validate(func(s string) error {
			_, err := parseAmount(s)
			return err
		})
}

func (in *actionsInput) actionForm(st ledger.State) *huh.Form {
	var fields []huh.Field

	switch in.action {
	case actionPayBill:
		in.billID = ""

		var opts []huh.Option[string]
		for _, b := range st.Bills {
			if b.IsPaid {
				continue
			}

			opts = append(opts, huh.NewOption(fmt.Sprintf("%s  %s  due %s", b.Name, FormatAmount(b.Amount), FormatDate(b.DueDate)), b.ID))
		}

		if len(opts) == 0 {
			fields = append(fields, huh.NewNote().Title("No unpaid bills"))
			break
		}

		fields = append(fields, huh.NewSelect[string]().Key("bill").Title("Bill").Options(opts...).Value(&in.billID))
	case actionStake:
		opts := make([]huh.Option[string], 0, len(st.Goals))
		for _, g := range st.Goals {
			opts = append(opts, huh.NewOption(fmt.Sprintf("%s  %s / %s", g.Name, FormatAmount(g.CurrentAmount), FormatAmount(g.TargetAmount)), g.ID))
		}

		fields = append(fields,
			huh.NewSelect[string]().Key("goal").Title("Goal").Options(opts...).Value(&in.goalID),
			in.amountField("Amount to stake"),
		)
	case actionAddGoal:
		in.goalName, in.goalTarget, in.goalCurrent, in.goalDate, in.goalAPY = "", "", "0", "", ""
		fields = append(fields,
			huh.NewInput().Key("name").Title("Name").Value(&in.goalName).Validate(notBlank),
			huh.NewInput().Key("target").Title("Target amount").Value(&in.goalTarget).Validate(func(s string) error {
				_, err := parseAmount(s)
				return err
			}),
			huh.NewInput().Key("current").Title("Already saved").Value(&in.goalCurrent).Validate(nonNegative),
			huh.NewInput().Key("deadline").Title("Deadline").Placeholder("2025-12-31").Value(&in.goalDate).Validate(func(s string) error {
				_, err := time.ParseInLocation(time.DateOnly, s, time.Local)
				return err
			}),
			huh.NewInput().Key("apy").Title("Expected APY %").Description("Optional").Value(&in.goalAPY).Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return nil
				}

				return nonNegative(s)
			}),
		)
	case actionSend:
		in.recipient = ""
		fields = append(fields,
			huh.NewInput().Key("recipient").Title("Recipient").Value(&in.recipient).Validate(notBlank),
			in.amountField("Amount"),
		)
	case actionVault:
		in.direction = ledger.DirectionDeposit
		fields = append(fields,
			huh.NewSelect[ledger.Direction]().
				Key("direction").
				Title("Direction").
				Options(
					huh.NewOption("Deposit into vault", ledger.DirectionDeposit),
					huh.NewOption("Withdraw from vault", ledger.DirectionWithdraw),
				).
				Value(&in.direction),
			in.amountField("Amount"),
		)
	case actionIncome:
		in.amount = st.MonthlyIncome.String()
		fields = append(fields, in.amountField("Monthly income"))
	case actionBudget:
		opts := make([]huh.Option[string], 0, len(ledger.Categories()))
		for _, c := range ledger.Categories() {
			label := string(c)
			if limit, ok := st.Budgets[string(c)]; ok {
				label = fmt.Sprintf("%s (now %s)", c, FormatAmount(limit))
			}

			opts = append(opts, huh.NewOption(label, string(c)))
		}

		fields = append(fields,
			huh.NewSelect[string]().Key("category").Title("Category").Options(opts...).Value(&in.category),
			in.amountField("Monthly limit"),
		)
	}

	return huh.NewForm(huh.NewGroup(fields...)).WithWidth(60).WithShowHelp(false)
}

func notBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("cannot be empty")
	}

	return nil
}

// goalParams converts the goal form fields. A blank "already saved" means nothing saved
// yet and a blank APY means none.
func (in *actionsInput) goalParams() (ledger.GoalParams, error) {
	p := ledger.GoalParams{Name: in.goalName}

	target, err := decimal.NewFromString(strings.TrimSpace(in.goalTarget))
	if err != nil {
		return p, fmt.Errorf("parse target amount: %w", err)
	}

	p.TargetAmount = target

	if cur := strings.TrimSpace(in.goalCurrent); cur != "" {
		p.CurrentAmount, err = decimal.NewFromString(cur)
		if err != nil {
			return p, fmt.Errorf("parse saved amount: %w", err)
		}
	}

	p.Deadline, err = time.ParseInLocation(time.DateOnly, strings.TrimSpace(in.goalDate), time.Local)
	if err != nil {
		return p, fmt.Errorf("parse deadline: %w", err)
	}

	if raw := strings.TrimSpace(in.goalAPY); raw != "" {
		apy, err := decimal.NewFromString(raw)
		if err != nil {
			return p, fmt.Errorf("parse APY: %w", err)
		}

		p.APY = &apy
	}

	return p, nil
}

func nonNegative(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return fmt.Errorf("enter zero or a positive number")
	}

	return nil
}

// Messages

type actionsLoadedMsg struct {
	state ledger.State
	err   error
}

type actionDoneMsg struct {
	status string
	err    error
}

func (m ActionsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := LedgerCtx()
		defer cancel()

		st, err := m.svc.Snapshot(ctx)

		return actionsLoadedMsg{state: st, err: err}
	}
}

func (m ActionsModel) runCmd(in actionsInput) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
		defer cancel()

		status, err := m.perform(ctx, in)

		return actionDoneMsg{status: status, err: err}
	}
}

func (m ActionsModel) perform(ctx context.Context, in actionsInput) (string, error) {
	amount, _ := parseAmount(in.amount)

	switch in.action {
	case actionPayBill:
		if in.billID == "" {
			return "Nothing to pay.", nil
		}

		tx, err := m.svc.PayBill(ctx, in.billID)
		if err != nil {
			return "", err
		}

		if tx == nil {
			return "Bill was already paid.", nil
		}

		return fmt.Sprintf("Paid %s %s (+%d FinTokens)", tx.Merchant, FormatAmount(tx.Amount), ledger.RewardPayBill), nil
	case actionStake:
		tx, err := m.svc.StakeToGoal(ctx, in.goalID, amount)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("Staked %s, contract tx %s", FormatAmount(tx.Amount), tx.TxHash), nil
	case actionAddGoal:
		p, err := in.goalParams()
		if err != nil {
			return "", err
		}

		g, err := m.svc.AddGoal(ctx, p)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("Created goal %s at %s", g.Name, g.SmartContractAddress), nil
	case actionSend:
		tx, err := m.svc.SendP2P(ctx, in.recipient, amount)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("Sent %s to %s (+%d FinTokens)", FormatAmount(tx.Amount), in.recipient, ledger.RewardPeerTransfer), nil
	case actionVault:
		tx, err := m.svc.MoveVault(ctx, amount, in.direction)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("%s: %s", tx.Merchant, FormatAmount(tx.Amount)), nil
	case actionIncome:
		if err := m.svc.UpdateIncome(ctx, amount); err != nil {
			return "", err
		}

		return "Monthly income set to " + FormatAmount(amount), nil
	case actionBudget:
		if err := m.svc.UpdateBudget(ctx, in.category, amount); err != nil {
			return "", err
		}

		return fmt.Sprintf("%s budget set to %s", in.category, FormatAmount(amount)), nil
	case actionWallet:
		addr, err := m.svc.ConnectWallet(ctx, "")
		if err != nil {
			return "", err
		}

		return "Wallet connected: " + addr, nil
	case actionDisconnect:
		if err := m.svc.DisconnectWallet(ctx); err != nil {
			return "", err
		}

		return "Wallet disconnected.", nil
	}

	return "", fmt.Errorf("unknown action %q", in.action)
}
