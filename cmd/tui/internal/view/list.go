package view

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finco/internal/advisor"
	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

// Parser turns a free-text description into a transaction draft.
type Parser interface {
	ParseTransaction(ctx context.Context, text string, year int) (ledger.Draft, bool, error)
}

type listState int

const (
	listStateBrowse listState = iota
	listStateSearch
	listStateDescribe
	listStateBusy
	listStateAdd
	listStateDelete
)

type ListModel struct {
	CommonModel
	svc    *ledger.Service
	parser Parser

	state listState
	table table.Model
	txs   []ledger.Transaction
	form  *huh.Form
	input *listInput

	query   string
	loading bool
	err     error
	status  string
}

// listInput holds the form bindings outside the value-copied model.
type listInput struct {
	query       string
	description string

	merchant string
	amount   string
	category ledger.Category
	txType   ledger.Type
	method   ledger.Method

	confirm bool
}

func NewListModel(svc *ledger.Service, parser Parser) ListModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Merchant", Width: 24},
		{Title: "Category", Width: 14},
		{Title: "Amount", Width: 14},
		{Title: "Method", Width: 14},
		{Title: "Hash", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ListModel{
		svc:    svc,
		parser: parser,
		table:  t,
		input:  &listInput{},
	}
}

func (m ListModel) Title() string { return "Transactions" }

func (m ListModel) ShortHelp() string {
	switch m.state {
	case listStateBrowse:
		return "Esc: back | /: search | a: add | n: describe | d: delete | r: refresh"
	case listStateBusy:
		return "Working..."
	}

	return "Navigate form | Esc: cancel"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadTxsCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.txs = msg.txs
		m.refreshTable()

		return m, nil

	case listSaveMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		return m.browse(m.loadTxsCmd())

	case parsedMsg:
		switch {
		case msg.err != nil:
			m.status = advisor.FallbackMessage(msg.err)
			return m.browse(nil)
		case !msg.ok:
			m.status = advisor.NotUnderstood
			return m.browse(nil)
		}

		m.input.fill(msg.draft)

		return m.enterForm(listStateAdd, m.input.addForm())

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateBusy:
		return m, nil
	}

	return m.updateForm(msg)
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			if m.query != "" {
				m.query = ""
				m.input.query = ""

				return m, m.loadTxsCmd()
			}

			return m, Back
		case "r":
			m.loading = true
			return m, m.loadTxsCmd()
		case "/":
			m.input.query = m.query
			return m.enterForm(listStateSearch, m.input.searchForm())
		case "a":
			m.input.fill(ledger.Draft{})
			return m.enterForm(listStateAdd, m.input.addForm())
		case "n":
			m.input.description = ""
			return m.enterForm(listStateDescribe, m.input.describeForm())
		case "d":
			tx, ok := m.selected()
			if !ok {
				return m, nil
			}

			m.input.confirm = false

			return m.enterForm(listStateDelete, m.input.deleteForm(tx))
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m.browse(nil)
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	switch m.state {
	case listStateSearch:
		m.query = strings.TrimSpace(m.input.query)
		return m.browse(m.loadTxsCmd())
	case listStateDescribe:
		m.state = listStateBusy
		m.form = nil
		m.status = "Reading description..."

		return m, m.parseCmd(m.input.description)
	case listStateAdd:
		m.state = listStateBusy
		return m, m.addCmd(m.input.draft())
	case listStateDelete:
		tx, ok := m.selected()
		if !ok || !m.input.confirm {
			return m.browse(nil)
		}

		m.state = listStateBusy

		return m, m.deleteCmd(tx)
	}

	return m, cmd
}

func (m ListModel) enterForm(state listState, form *huh.Form) (tea.Model, tea.Cmd) {
	m.state = state
	m.form = form
	m.status = ""
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) browse(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.state = listStateBrowse
	m.form = nil
	m.table.Focus()

	return m, cmd
}

func (m ListModel) selected() (ledger.Transaction, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return ledger.Transaction{}, false
	}

	return m.txs[idx], true
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, len(m.txs))

	for i, tx := range m.txs {
		hash := tx.TxHash
		if len(hash) > 12 {
			hash = hash[:8] + "..." + hash[len(hash)-3:]
		}

		rows[i] = table.Row{
			FormatDate(tx.Date),
			tx.Merchant,
			string(tx.Category),
			FormatSigned(tx),
			string(tx.Method),
			hash,
		}
	}

	m.table.SetRows(rows)
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.form != nil {
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	}

	header := titleStyle.Render(fmt.Sprintf("%d transactions", len(m.txs)))
	if m.query != "" {
		header += faintStyle.Render(fmt.Sprintf("  matching %q", m.query))
	}

	parts := []string{header, "", m.table.View()}
	if m.status != "" {
		parts = append(parts, "", m.status)
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (in *listInput) searchForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("query").
				Title("Search").
				Description("Matches merchant or category").
				Value(&in.query),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (in *listInput) describeForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("Describe the transaction").
				Placeholder("Spent 450 on pizza at Dominos with card").
				Value(&in.description).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("description cannot be empty")
					}

					return nil
				}),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (in *listInput) addForm() *huh.Form {
	categories := make([]huh.Option[ledger.Category], 0, len(ledger.Categories()))
	for _, c := range ledger.Categories() {
		categories = append(categories, huh.NewOption(string(c), c))
	}

	methods := make([]huh.Option[ledger.Method], 0, len(ledger.Methods()))
	for _, mt := range ledger.Methods() {
		methods = append(methods, huh.NewOption(string(mt), mt))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("merchant").
				Title("Merchant").
				Value(&in.merchant),
			huh.NewInput().
				Key("amount").
				Title("Amount").
				Value(&in.amount).
				Validate(func(s string) error {
					_, err := parseAmount(s)
					return err
				}),
			huh.NewSelect[ledger.Category]().
				Key("category").
				Title("Category").
				Options(categories...).
				Value(&in.category),
			huh.NewSelect[ledger.Type]().
				Key("type").
				Title("Type").
				Options(
					huh.NewOption("Debit", ledger.TypeDebit),
					huh.NewOption("Credit", ledger.TypeCredit),
				).
				Value(&in.txType),
			huh.NewSelect[ledger.Method]().
				Key("method").
				Title("Method").
				Options(methods...).
				Value(&in.method),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (in *listInput) deleteForm(tx ledger.Transaction) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(fmt.Sprintf("Delete %s %s on %s?", tx.Merchant, FormatSigned(tx), FormatDate(tx.Date))).
				Description("Balance and tokens are not restored.").
				Value(&in.confirm),
		),
	).WithWidth(60).WithShowHelp(false)
}

// fill resets the add form, prefilled from d where set.
func (in *listInput) fill(d ledger.Draft) {
	in.merchant = ""
	in.amount = ""
	in.category = ledger.DefaultCategory
	in.txType = ledger.DefaultType
	in.method = ledger.DefaultMethod

	if d.Merchant != nil {
		in.merchant = *d.Merchant
	}

	if d.Amount != nil {
		in.amount = d.Amount.String()
	}

	if d.Category != nil && d.Category.Valid() {
		in.category = *d.Category
	}

	if d.Type != nil && d.Type.Valid() {
		in.txType = *d.Type
	}

	if d.Method != nil && d.Method.Valid() {
		in.method = *d.Method
	}
}

func (in *listInput) draft() ledger.Draft {
	d := ledger.Draft{}.
		WithMerchant(in.merchant).
		WithCategory(in.category).
		WithType(in.txType).
		WithMethod(in.method)

	if amount, err := parseAmount(in.amount); err == nil {
		d = d.WithAmount(amount)
	}

	return d
}

// Messages

type loadListMsg struct {
	txs []ledger.Transaction
	err error
}

type listSaveMsg struct {
	status string
	err    error
}

type parsedMsg struct {
	draft ledger.Draft
	ok    bool
	err   error
}

func (m ListModel) loadTxsCmd() tea.Cmd {
	query := m.query

	return func() tea.Msg {
		ctx, cancel := LedgerCtx()
		defer cancel()

		txs, err := m.svc.Transactions(ctx, query)

		return loadListMsg{txs: txs, err: err}
	}
}

func (m ListModel) addCmd(d ledger.Draft) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := LedgerCtx()
		defer cancel()

		tx, err := m.svc.AddTransaction(ctx, d)
		if err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{status: okStyle.Render(fmt.Sprintf("Logged %s %s (+%d FinTokens)", tx.Merchant, FormatSigned(tx), ledger.RewardLogTransaction))}
	}
}

func (m ListModel) deleteCmd(tx ledger.Transaction) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := LedgerCtx()
		defer cancel()

		if err := m.svc.DeleteTransaction(ctx, tx.ID); err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{status: fmt.Sprintf("Deleted %s", tx.Merchant)}
	}
}

func (m ListModel) parseCmd(text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), advisorTimeout)
		defer cancel()

		d, ok, err := m.parser.ParseTransaction(ctx, text, m.svc.Now().Year())

		return parsedMsg{draft: d, ok: ok, err: err}
	}
}
