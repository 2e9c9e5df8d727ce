package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finco/internal/importer"
	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

const importTimeout = 30 * time.Second

type importStep int

const (
	importStepFormat importStep = iota
	importStepFile
	importStepReading
	importStepReview
	importStepDone
)

// ImportModel walks through choosing a file format, picking a CSV and resolving rows that
// look like transactions already in the ledger.
type ImportModel struct {
	CommonModel
	svc           *ledger.Service
	importService *importer.Service

	step    importStep
	form    *huh.Form
	format  *importer.Format
	picker  filepicker.Model
	spinner spinner.Model

	fresh     []ledger.Transaction
	conflicts []ledger.Conflict
	picks     picks
	review    list.Model

	added []ledger.Transaction
	err   error
}

// picks records which conflicting rows the user wants imported anyway.
type picks map[int]bool

func (p picks) toggle(i int) { p[i] = !p[i] }

func (p picks) setAll(n int, v bool) {
	for i := range n {
		p[i] = v
	}
}

func (p picks) count() int {
	n := 0

	for _, v := range p {
		if v {
			n++
		}
	}

	return n
}

func NewImportModel(svc *ledger.Service, impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.SetHeight(15)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	format := importer.FormatFinCo

	return ImportModel{
		svc:           svc,
		importService: impSvc,
		format:        &format,
		form:          formatForm(&format),
		picker:        fp,
		spinner:       s,
		picks:         picks{},
	}
}

func formatForm(format *importer.Format) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[importer.Format]().
				Key("format").
				Title("What kind of file is it?").
				Options(
					huh.NewOption("FinCo export", importer.FormatFinCo),
					huh.NewOption("Bank statement", importer.FormatStatement),
				).
				Value(format),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m ImportModel) Title() string { return "Import Transactions" }

func (m ImportModel) ShortHelp() string {
	switch m.step {
	case importStepReview:
		return "Space: toggle | a: all | n: none | Enter: import | Esc: cancel"
	case importStepDone:
		return "Esc: import another file"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.back()
		}

		if m.step == importStepReview {
			return m.updateReview(msg)
		}

	case spinner.TickMsg:
		if m.step != importStepReading {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case importReadMsg:
		return m.reviewResult(msg), nil

	case importDoneMsg:
		m.step = importStepDone
		m.added = msg.added
		m.err = msg.err

		return m, nil
	}

	switch m.step {
	case importStepFormat:
		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		if m.form.State != huh.StateCompleted {
			return m, cmd
		}

		m.step = importStepFile

		return m, m.picker.Init()

	case importStepFile:
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		if ok, path := m.picker.DidSelectFile(msg); ok {
			m.step = importStepReading
			return m, tea.Batch(m.spinner.Tick, m.readCmd(*m.format, path))
		}

		return m, cmd
	}

	return m, nil
}

// reviewResult finishes straight away when nothing collides with the ledger; otherwise
// it opens the duplicate review list.
func (m ImportModel) reviewResult(msg importReadMsg) ImportModel {
	if msg.err != nil || len(msg.result.Conflicts) == 0 {
		m.step = importStepDone
		m.err = msg.err

		if msg.result != nil {
			m.added = msg.result.Imported
		}

		return m
	}

	m.fresh = msg.result.New
	m.conflicts = msg.result.Conflicts
	m.picks = picks{}
	m.step = importStepReview

	items := make([]list.Item, len(m.conflicts))
	for i, c := range m.conflicts {
		items[i] = conflictItem{conflict: c, index: i}
	}

	m.review = list.New(items, conflictDelegate{picks: m.picks}, 90, 20)
	m.review.Title = fmt.Sprintf("%d new rows, %d possible duplicates", len(m.fresh), len(m.conflicts))
	m.review.SetShowStatusBar(false)
	m.review.SetFilteringEnabled(false)
	m.review.SetShowHelp(false)

	return m
}

func (m ImportModel) back() (tea.Model, tea.Cmd) {
	switch m.step {
	case importStepFormat:
		return m, Back
	case importStepReading:
		return m, nil
	}

	m.step = importStepFormat
	m.fresh, m.conflicts, m.added, m.err = nil, nil, nil, nil
	m.form = formatForm(m.format)

	return m, m.form.Init()
}

func (m ImportModel) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		m.picks.toggle(m.review.Index())
		return m, nil
	case "a":
		m.picks.setAll(len(m.conflicts), true)
		return m, nil
	case "n":
		m.picks.setAll(len(m.conflicts), false)
		return m, nil
	case "enter":
		m.step = importStepReading
		return m, tea.Batch(m.spinner.Tick, m.confirmCmd())
	}

	var cmd tea.Cmd
	m.review, cmd = m.review.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.step {
	case importStepFormat:
		return style.Render(m.form.View())
	case importStepFile:
		return style.Render(fmt.Sprintf("Pick a %s file:\n\n%s", formatHint(*m.format), m.picker.View()))
	case importStepReading:
		return style.Render(m.spinner.View() + " Reading file...")
	case importStepReview:
		footer := faintStyle.Render(fmt.Sprintf("%d of %d duplicates selected", m.picks.count(), len(m.conflicts)))
		return style.Render(lipgloss.JoinVertical(lipgloss.Left, m.review.View(), footer))
	case importStepDone:
		return style.Render(m.viewDone())
	}

	return ""
}

func (m ImportModel) viewDone() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Import failed: %v", m.err))
	}

	net := decimal.Zero
	for _, tx := range m.added {
		net = net.Add(tx.Signed())
	}

	sign := "+"
	if net.IsNegative() {
		sign = ""
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		okStyle.Render(fmt.Sprintf("Imported %d transactions.", len(m.added))),
		fmt.Sprintf("Balance change: %s%s", sign, FormatAmount(net)),
	)
}

func formatHint(f importer.Format) string {
	if f == importer.FormatStatement {
		return "bank statement CSV"
	}

	return "FinCo export"
}

// Messages

type importReadMsg struct {
	result *ledger.ImportResult
	err    error
}

type importDoneMsg struct {
	added []ledger.Transaction
	err   error
}

func (m ImportModel) readCmd(format importer.Format, path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importReadMsg{err: err}
		}
		defer f.Close()

		rows, err := m.importService.Import(format, f)
		if err != nil {
			return importReadMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.svc.Import(ctx, rows)

		return importReadMsg{result: result, err: err}
	}
}

func (m ImportModel) confirmCmd() tea.Cmd {
	rows := append([]ledger.Transaction(nil), m.fresh...)

	for i, c := range m.conflicts {
		if m.picks[i] {
			rows = append(rows, c.Incoming)
		}
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		added, err := m.svc.ImportConfirmed(ctx, rows)

		return importDoneMsg{added: added, err: err}
	}
}

// Duplicate review list

type conflictItem struct {
	conflict ledger.Conflict
	index    int
}

func (i conflictItem) FilterValue() string { return i.conflict.Incoming.Merchant }

type conflictDelegate struct {
	picks picks
}

func (d conflictDelegate) Height() int                             { return 2 }
func (d conflictDelegate) Spacing() int                            { return 1 }
func (d conflictDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d conflictDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(conflictItem)
	if !ok {
		return
	}

	box := "[ ]"
	if d.picks[item.index] {
		box = "[x]"
	}

	row := func(tx ledger.Transaction) string {
		return fmt.Sprintf("%s  %-24s %12s  %s", FormatDate(tx.Date), tx.Merchant, FormatSigned(tx), tx.Category)
	}

	line := fmt.Sprintf("%s %s", box, row(item.conflict.Incoming))
	if index == m.Index() {
		line = activeStyle("> " + line)
	} else {
		line = "  " + line
	}

	fmt.Fprintf(w, "%s\n%s", line, faintStyle.Render("      already have: "+row(item.conflict.Existing)))
}
