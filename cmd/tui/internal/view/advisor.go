package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finco/internal/advisor"
	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

// advisorTimeout bounds one round trip to the language model.
const advisorTimeout = 60 * time.Second

var (
	userStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	modelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
)

// AdvisorModel shows the AI spending report and a follow-up chat about it.
type AdvisorModel struct {
	CommonModel
	svc     *ledger.Service
	session *advisor.Session

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	busy     bool
	err      error
}

func NewAdvisorModel(svc *ledger.Service, session *advisor.Session) AdvisorModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "Ask a follow-up question"
	ti.CharLimit = 500
	ti.Width = 70

	vp := viewport.New(90, 20)

	m := AdvisorModel{
		svc:      svc,
		session:  session,
		viewport: vp,
		input:    ti,
		spinner:  s,
		busy:     session.View().ReportState == advisor.ReportIdle,
	}
	m.viewport.SetContent(m.transcript())

	return m
}

func (m AdvisorModel) Title() string { return "AI Advisor" }

func (m AdvisorModel) ShortHelp() string {
	if m.input.Focused() {
		return "Enter: send | Tab: scroll report | Esc: back"
	}

	return "g: new report | Tab: chat | ↑/↓: scroll | Esc: back"
}

func (m AdvisorModel) Init() tea.Cmd {
	if m.busy {
		return m.generate()
	}

	return nil
}

func (m AdvisorModel) generate() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.reportCmd())
}

func (m AdvisorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case advisorDoneMsg:
		m.busy = false
		m.err = msg.err

		if errors.Is(msg.err, advisor.ErrStale) {
			m.err = nil
		}
		m.viewport.SetContent(m.transcript())
		m.viewport.GotoBottom()

		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = max(5, msg.Height-12)
		m.viewport.SetContent(m.transcript())

		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc:
			return m, Back
		case tea.KeyTab:
			if m.input.Focused() {
				m.input.Blur()
				return m, nil
			}

			return m, m.input.Focus()
		case tea.KeyEnter:
			if !m.input.Focused() || m.busy {
				return m, nil
			}

			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}

			m.input.Reset()
			m.busy = true
			m.err = nil
			m.viewport.SetContent(m.transcript() + "\n\n" + userStyle.Render("You: ") + text)
			m.viewport.GotoBottom()

			return m, tea.Batch(m.spinner.Tick, m.chatCmd(text))
		}

		if m.input.Focused() {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)

			return m, cmd
		}

		if msg.String() == "g" && !m.busy {
			m.busy = true
			m.err = nil

			return m, m.generate()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)

	return m, cmd
}

func (m AdvisorModel) View() string {
	status := ""

	switch {
	case m.busy:
		status = m.spinner.View() + " Thinking..."
	case m.err != nil:
		status = errorStyle.Render(describeAdvisorErr(m.err))
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Spending analysis"),
		panelStyle.Render(m.viewport.View()),
		status,
		m.input.View(),
	))
}

func (m AdvisorModel) transcript() string {
	v := m.session.View()

	var sb strings.Builder

	switch v.ReportState {
	case advisor.ReportIdle:
		sb.WriteString(faintStyle.Render("Press g to generate a report."))
	case advisor.ReportRequesting:
		sb.WriteString(faintStyle.Render("Analyzing your spending..."))
	case advisor.ReportFailed:
		sb.WriteString(errorStyle.Render(advisor.FallbackMessage(v.ReportErr)))
	case advisor.ReportReady:
		sb.WriteString(v.Report)
	}

	for _, turn := range v.History {
		label := userStyle.Render("You: ")
		if turn.Role == advisor.RoleModel {
			label = modelStyle.Render("Advisor: ")
		}

		fmt.Fprintf(&sb, "\n\n%s%s", label, turn.Content)
	}

	return lipgloss.NewStyle().Width(max(20, m.viewport.Width-2)).Render(sb.String())
}

// describeAdvisorErr shows model failures as friendly fallbacks and session errors as-is.
func describeAdvisorErr(err error) string {
	var f *advisor.Failure
	if errors.As(err, &f) || errors.Is(err, context.DeadlineExceeded) {
		return advisor.FallbackMessage(err)
	}

	return err.Error()
}

type advisorDoneMsg struct {
	err error
}

func (m AdvisorModel) reportCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), advisorTimeout)
		defer cancel()

		st, err := m.svc.Snapshot(ctx)
		if err != nil {
			return advisorDoneMsg{err: err}
		}

		_, err = m.session.Generate(ctx, st)

		return advisorDoneMsg{err: err}
	}
}

func (m AdvisorModel) chatCmd(text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), advisorTimeout)
		defer cancel()

		st, err := m.svc.Snapshot(ctx)
		if err != nil {
			return advisorDoneMsg{err: err}
		}

		_, err = m.session.Send(ctx, st, text)

		return advisorDoneMsg{err: err}
	}
}
