package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/finco/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/finco/internal/advisor"
	"github.com/MrJamesThe3rd/finco/internal/advisor/gemini"
	"github.com/MrJamesThe3rd/finco/internal/config"
	"github.com/MrJamesThe3rd/finco/internal/events"
	"github.com/MrJamesThe3rd/finco/internal/export"
	"github.com/MrJamesThe3rd/finco/internal/importer"
	"github.com/MrJamesThe3rd/finco/internal/ledger"
	"github.com/MrJamesThe3rd/finco/internal/ledger/store"
)

type model struct {
	ledgerService *ledger.Service
	advisorClient *advisor.Client
	session       *advisor.Session
	importService *importer.Service
	exportService *export.Service

	currentView View
	width       int
	height      int

	dashboardView view.DashboardModel
	listView      view.ListModel
	actionsView   view.ActionsModel
	advisorView   view.AdvisorModel
	importView    view.ImportModel
	exportView    view.ExportModel
}

type View int

const (
	ViewMenu      View = 0
	ViewDashboard View = 1
	ViewList      View = 2
	ViewActions   View = 3
	ViewAdvisor   View = 4
	ViewImport    View = 5
	ViewExport    View = 6
)

func initialModel(cfg *config.Config, publisher events.Publisher) model {
	ledgerSvc := ledger.NewService(
		store.New(ledger.Seed()),
		ledger.WithPublisher(publisher),
		ledger.WithSettleDelay(cfg.Ledger.SettleDelay),
	)
	advisorClient := advisor.NewClient(
		newModel(cfg),
		advisor.WithTimeout(cfg.Advisor.Timeout),
		advisor.WithParseModel(cfg.Advisor.ParseModel),
	)
	session := advisor.NewSession(advisorClient)
	impSvc := importer.NewService()
	expSvc := export.NewService(ledgerSvc)

	return model{
		ledgerService: ledgerSvc,
		advisorClient: advisorClient,
		session:       session,
		importService: impSvc,
		exportService: expSvc,
		currentView:   ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			return m.updateMenu(msg)
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewActions:
		var newModel tea.Model
		newModel, cmd = m.actionsView.Update(msg)
		m.actionsView = newModel.(view.ActionsModel)
	case ViewAdvisor:
		var newModel tea.Model
		newModel, cmd = m.advisorView.Update(msg)
		m.advisorView = newModel.(view.AdvisorModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	size := func() tea.Msg { return tea.WindowSizeMsg{Width: m.width, Height: m.height} }

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1":
		m.currentView = ViewDashboard
		m.dashboardView = view.NewDashboardModel(m.ledgerService)

		return m, m.dashboardView.Init()
	case "2":
		m.currentView = ViewList
		m.listView = view.NewListModel(m.ledgerService, m.advisorClient)

		return m, tea.Batch(m.listView.Init(), size)
	case "3":
		m.currentView = ViewActions
		m.actionsView = view.NewActionsModel(m.ledgerService)

		return m, m.actionsView.Init()
	case "4":
		m.currentView = ViewAdvisor
		m.advisorView = view.NewAdvisorModel(m.ledgerService, m.session)

		return m, tea.Batch(m.advisorView.Init(), size)
	case "5":
		m.currentView = ViewImport
		m.importView = view.NewImportModel(m.ledgerService, m.importService)

		return m, m.importView.Init()
	case "6":
		m.currentView = ViewExport
		m.exportView = view.NewExportModel(m.ledgerService, m.exportService)

		return m, m.exportView.Init()
	}

	return m, nil
}

func (m model) current() view.View {
	switch m.currentView {
	case ViewDashboard:
		return m.dashboardView
	case ViewList:
		return m.listView
	case ViewActions:
		return m.actionsView
	case ViewAdvisor:
		return m.advisorView
	case ViewImport:
		return m.importView
	case ViewExport:
		return m.exportView
	}

	return nil
}

func (m model) View() string {
	v := m.current()
	if v == nil {
		return lipgloss.NewStyle().Padding(2).Render(
			"FinCo TUI\n\n" +
				"1. Dashboard\n" +
				"2. Transactions\n" +
				"3. Wallet Actions\n" +
				"4. AI Advisor\n" +
				"5. Import Transactions\n" +
				"6. Export Transactions\n\n" +
				"q. Quit",
		)
	}

	help := lipgloss.NewStyle().Faint(true).PaddingLeft(2).Render(v.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, v.View(), help)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logOut, closeLog := logOutput(cfg.TUI.LogFile)
	defer closeLog()

	slog.SetDefault(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	publisher := newPublisher(cfg)
	defer publisher.Close()

	p := tea.NewProgram(initialModel(cfg, publisher), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}

func logOutput(path string) (io.Writer, func()) {
	if path == "" {
		return io.Discard, func() {}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return io.Discard, func() {}
	}

	return f, func() { _ = f.Close() }
}

func newPublisher(cfg *config.Config) events.Publisher {
	if cfg.AMQP.URL == "" {
		return events.Nop{}
	}

	p, err := events.NewAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange)
	if err != nil {
		slog.Warn("event publishing disabled", "error", err)
		return events.Nop{}
	}

	return p
}

func newModel(cfg *config.Config) advisor.Model {
	var opts []gemini.Option
	if cfg.Advisor.Endpoint != "" {
		opts = append(opts, gemini.WithEndpoint(cfg.Advisor.Endpoint))
	}

	m, err := gemini.New(context.Background(), cfg.Advisor.APIKey, cfg.Advisor.Model, opts...)
	if err != nil {
		slog.Warn("advisor disabled", "error", err)
		return advisor.Disabled{}
	}

	return m
}
