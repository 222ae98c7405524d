package tui

import (
	"context"

	"crypto_dash/internal/domain"
	"crypto_dash/internal/infra"
	"crypto_dash/internal/service"

	tea "github.com/charmbracelet/bubbletea"
)

// Message types for Bubble Tea
type (
	// ChartUpdateMsg carries an intermediate chart state published by the controller.
	ChartUpdateMsg struct{ Session domain.ChartSession }

	dashboardLoadedMsg struct{ err error }
)

// IconLookup reports whether an asset's icon is cached locally.
type IconLookup interface {
	HasIcon(assetID string) bool
}

// Model is the Bubble Tea model for the dashboard and its chart panel.
type Model struct {
	ctx       context.Context
	dashboard *service.DashboardController
	chart     *service.ChartController
	metrics   *infra.Metrics
	icons     IconLookup // may be nil

	width, height int
	cursor        int
	searching     bool

	state     service.DashboardState
	session   domain.ChartSession
	showChart bool
	selected  domain.AssetSnapshot
}

// New creates the model. ctx bounds every fetch started from the UI.
func New(ctx context.Context, dashboard *service.DashboardController, chart *service.ChartController, metrics *infra.Metrics) *Model {
	if metrics == nil {
		metrics = infra.GlobalMetrics
	}
	return &Model{
		ctx:       ctx,
		dashboard: dashboard,
		chart:     chart,
		metrics:   metrics,
		state:     dashboard.State(),
		session:   chart.Session(),
	}
}

// SetIcons enables the cached-icon marker in the asset table.
func (m *Model) SetIcons(icons IconLookup) {
	m.icons = icons
}

// Bind forwards chart updates to p. Loads run inside commands, never
// inside Update, so Send cannot block the event loop.
func Bind(p *tea.Program, chart *service.ChartController) {
	chart.SetOnUpdate(func(s domain.ChartSession) {
		p.Send(ChartUpdateMsg{Session: s})
	})
}

func (m *Model) Init() tea.Cmd {
	return m.loadCmd()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dashboardLoadedMsg:
		m.refresh()
		return m, nil

	case ChartUpdateMsg:
		m.applySession(msg.Session)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

func (m *Model) applySession(s domain.ChartSession) {
	// Updates for a closed chart or from a superseded trigger are ignored
	if !m.showChart || s.AssetID != m.selected.ID || s.Request < m.session.Request {
		return
	}
	m.session = s
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}
	if m.showChart {
		return m.handleChartKey(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.state.Displayed)-1 {
			m.cursor++
		}
	case "/":
		m.searching = true
	case "s":
		m.dashboard.CycleSortKey()
		m.refresh()
	case "o":
		m.dashboard.ToggleSortOrder()
		m.refresh()
	case "f":
		m.dashboard.ToggleFavoritesOnly()
		m.refresh()
	case " ", "*":
		if a, ok := m.current(); ok {
			m.dashboard.ToggleFavorite(a)
			m.refresh()
		}
	case "r":
		if m.state.Status == service.StatusError {
			return m, m.loadCmd()
		}
	case "enter":
		if a, ok := m.current(); ok {
			m.selected = a
			m.showChart = true
			return m, m.start(m.chart.BeginSelect(m.ctx, a))
		}
	}
	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	query := m.state.Filter.SearchQuery
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		query = ""
	case tea.KeyBackspace:
		if r := []rune(query); len(r) > 0 {
			query = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		query += " "
	case tea.KeyRunes:
		query += string(msg.Runes)
	default:
		return m, nil
	}
	m.dashboard.SetSearchQuery(query)
	m.refresh()
	return m, nil
}

func (m *Model) handleChartKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.showChart = false
		m.session = m.chart.Clear()
	case "r":
		return m, m.start(m.chart.BeginRetry(m.ctx))
	case "1", "2", "3", "4", "5":
		tf := domain.Timeframes[msg.String()[0]-'1']
		return m, m.start(m.chart.BeginTimeframe(m.ctx, tf))
	}
	return m, nil
}

// refresh re-reads the dashboard after a synchronous change.
func (m *Model) refresh() {
	m.state = m.dashboard.State()
	if m.cursor >= len(m.state.Displayed) {
		m.cursor = len(m.state.Displayed) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) current() (domain.AssetSnapshot, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.Displayed) {
		return domain.AssetSnapshot{}, false
	}
	return m.state.Displayed[m.cursor], true
}

func (m *Model) loadCmd() tea.Cmd {
	m.state.Status = service.StatusLoading
	return func() tea.Msg {
		return dashboardLoadedMsg{err: m.dashboard.Load(m.ctx)}
	}
}

// start adopts the state a chart trigger entered and runs its load in a
// command. Progress arrives as ChartUpdateMsg.
func (m *Model) start(l *service.Load) tea.Cmd {
	if l == nil {
		return nil
	}
	m.session = l.Session()
	return func() tea.Msg {
		l.Run()
		return nil
	}
}
