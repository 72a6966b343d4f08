package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/marketrush/internal/alert"
	"github.com/zappabad/marketrush/internal/game"
	"github.com/zappabad/marketrush/internal/market"
	"github.com/zappabad/marketrush/internal/portfolio"
	"github.com/zappabad/marketrush/internal/score"
	"github.com/zappabad/marketrush/tui/panels"
	"github.com/zappabad/marketrush/tui/styles"
)

// GameService is the command and query surface the TUI drives.
type GameService interface {
	StartGame(ctx context.Context) error
	PauseGame(ctx context.Context) error
	ResumeGame(ctx context.Context) error
	EndGame(ctx context.Context) error
	NextRound(ctx context.Context) error
	ExecuteTrade(ctx context.Context, asset market.AssetID, action portfolio.Action, amount float64) (game.TradeResult, error)
	Snapshot() game.State
}

// AlertFeed supplies the toasts to display.
type AlertFeed interface {
	Active() []alert.Alert
}

// PanelFocus represents which panel is currently focused.
type PanelFocus int

const (
	FocusMarket PanelFocus = iota
	FocusPortfolio
	FocusChart
	FocusNews
	FocusTrade
	focusCount
)

type keyMap struct {
	Quit      key.Binding
	QuitAlt   key.Binding
	Start     key.Binding
	Pause     key.Binding
	NextRound key.Binding
	End       key.Binding
	Next      key.Binding
	Prev      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		QuitAlt:   key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Start:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("^S", "start")),
		Pause:     key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("^P", "pause")),
		NextRound: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("^N", "next round")),
		End:       key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("^X", "end")),
		Next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "panels")),
		Prev:      key.NewBinding(key.WithKeys("shift+tab")),
	}
}

// Model is the main TUI application model.
type Model struct {
	svc    GameService
	alerts AlertFeed
	scores score.Store

	state     game.State
	lastRound int
	lastClock time.Duration

	// Panels
	marketPanel    *panels.MarketPanel
	portfolioPanel *panels.PortfolioPanel
	chartPanel     *panels.ChartPanel
	newsPanel      *panels.NewsPanel
	tradePanel     *panels.TradeInputPanel
	alertsPanel    *panels.AlertsPanel
	health         progress.Model

	keys         keyMap
	focusedPanel PanelFocus

	// Leaderboard for the game over screen
	top       []score.Score
	topLoaded bool

	width  int
	height int

	statusMsg string
	ready     bool
}

// NewModel creates a new TUI model. scores may be nil.
func NewModel(svc GameService, alerts AlertFeed, scores score.Store) *Model {
	state := svc.Snapshot()
	assets := state.Assets
	if len(assets) == 0 {
		assets = market.DefaultAssets()
	}

	chartPanel := panels.NewChartPanel()
	chartPanel.SetAsset(assets[0])

	return &Model{
		svc:            svc,
		alerts:         alerts,
		scores:         scores,
		state:          state,
		marketPanel:    panels.NewMarketPanel(assets),
		portfolioPanel: panels.NewPortfolioPanel(),
		chartPanel:     chartPanel,
		newsPanel:      panels.NewNewsPanel(),
		tradePanel:     panels.NewTradeInputPanel(assets),
		alertsPanel:    panels.NewAlertsPanel(),
		health:         progress.New(progress.WithSolidFill(string(styles.SecondaryColor)), progress.WithWidth(12)),
		keys:           defaultKeys(),
		focusedPanel:   FocusTrade,
		statusMsg:      "press ^S to start",
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.marketPanel.Init(),
		m.portfolioPanel.Init(),
		m.newsPanel.Init(),
		m.tradePanel.Init(),
		m.chartPanel.Init(),
		m.tickRefresh(),
	)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.QuitAlt) && (!m.tradePanel.Editing() || m.state.IsGameOver):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Start):
			return m, m.command("game started", m.svc.StartGame)
		case key.Matches(msg, m.keys.Pause):
			if m.state.IsPaused {
				return m, m.command("resumed", m.svc.ResumeGame)
			}
			return m, m.command("paused", m.svc.PauseGame)
		case key.Matches(msg, m.keys.NextRound):
			return m, m.command("next round", m.svc.NextRound)
		case key.Matches(msg, m.keys.End):
			return m, m.command("game ended", m.svc.EndGame)
		case key.Matches(msg, m.keys.Next):
			m.focusedPanel = (m.focusedPanel + 1) % focusCount
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.focusedPanel = (m.focusedPanel + focusCount - 1) % focusCount
			return m, nil
		}
		switch msg.String() {
		case "f1":
			m.focusedPanel = FocusMarket
		case "f2":
			m.focusedPanel = FocusPortfolio
		case "f3":
			m.focusedPanel = FocusNews
		case "f4":
			m.focusedPanel = FocusTrade
		case "f5":
			m.focusedPanel = FocusChart
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case panels.AssetSelectedMsg:
		m.chartPanel.SetAsset(msg.Asset)
		m.tradePanel.SetAsset(msg.Asset)

	case panels.TradeSubmitMsg:
		cmds = append(cmds, m.submitTrade(msg))

	case resultMsg:
		m.statusMsg = msg.message

	case scoresMsg:
		m.top = msg.scores
		m.topLoaded = true

	case tickMsg:
		if cmd := m.refresh(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		cmds = append(cmds, m.tickRefresh())
	}

	m.updateFocusedPanel(msg, &cmds)

	return m, tea.Batch(cmds...)
}

func (m *Model) updateFocusedPanel(msg tea.Msg, cmds *[]tea.Cmd) {
	var cmd tea.Cmd

	switch m.focusedPanel {
	case FocusMarket:
		m.marketPanel, cmd = m.marketPanel.Update(msg)
	case FocusPortfolio:
		m.portfolioPanel, cmd = m.portfolioPanel.Update(msg)
	case FocusNews:
		m.newsPanel, cmd = m.newsPanel.Update(msg)
	case FocusTrade:
		m.tradePanel, cmd = m.tradePanel.Update(msg)
	case FocusChart:
		m.chartPanel, cmd = m.chartPanel.Update(msg)
	}

	if cmd != nil {
		*cmds = append(*cmds, cmd)
	}
}

// refresh pulls a fresh snapshot into every panel.
func (m *Model) refresh() tea.Cmd {
	s := m.svc.Snapshot()
	m.state = s

	if s.Clock < m.lastClock {
		// new game
		m.chartPanel.SetAsset(m.chartPanel.Asset())
		m.top, m.topLoaded = nil, false
	}
	m.lastClock = s.Clock

	if s.Round != m.lastRound {
		m.marketPanel.SetAssets(s.Assets)
		m.marketPanel.MarkRoundOpen()
		m.lastRound = s.Round
	}
	m.marketPanel.SetAssets(s.Assets)
	m.tradePanel.SetAssets(s.Assets)
	m.portfolioPanel.SetState(s)
	m.newsPanel.SetNews(s.News)

	if a, ok := s.Asset(m.chartPanel.Asset().ID); ok && s.Started {
		m.chartPanel.AddSample(time.Time{}.Add(s.Clock), a.Price)
	}

	if m.alerts != nil {
		m.alertsPanel.SetAlerts(m.alerts.Active())
	}

	if s.IsGameOver && !m.topLoaded && m.scores != nil {
		m.topLoaded = true
		return m.loadScores()
	}
	return nil
}

// View renders the UI.
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.state.IsGameOver {
		return m.renderGameOver()
	}

	m.marketPanel.SetFocus(m.focusedPanel == FocusMarket)
	m.portfolioPanel.SetFocus(m.focusedPanel == FocusPortfolio)
	m.newsPanel.SetFocus(m.focusedPanel == FocusNews)
	m.tradePanel.SetFocus(m.focusedPanel == FocusTrade)
	m.chartPanel.SetFocus(m.focusedPanel == FocusChart)

	// Layout:
	// ┌─────────────────────────────────────────────┐
	// │  Market           │  Portfolio  │   Chart   │
	// ├───────────────────┼─────────────┴───────────┤
	// │      News         │      Trade              │
	// └───────────────────┴─────────────────────────┘
	//   alerts
	//   status bar

	leftWidth := m.width / 3
	middleWidth := m.width / 3
	rightWidth := m.width - leftWidth - middleWidth

	m.alertsPanel.SetWidth(m.width)
	alerts := m.alertsPanel.View()
	alertsHeight := lipgloss.Height(alerts)
	if m.alertsPanel.Empty() {
		alertsHeight = 0
	}

	available := m.height - 1 - alertsHeight
	topHeight := available * 3 / 5
	bottomHeight := available - topHeight

	m.marketPanel.SetSize(leftWidth, topHeight)
	m.portfolioPanel.SetSize(middleWidth, topHeight)
	m.chartPanel.SetSize(rightWidth, topHeight)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.marketPanel.View(),
		m.portfolioPanel.View(),
		m.chartPanel.View(),
	)

	m.newsPanel.SetSize(m.width/2, bottomHeight)
	m.tradePanel.SetSize(m.width-m.width/2, bottomHeight)

	bottomRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.newsPanel.View(),
		m.tradePanel.View(),
	)

	rows := []string{topRow, bottomRow}
	if alertsHeight > 0 {
		rows = append(rows, alerts)
	}
	rows = append(rows, m.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderStatusBar() string {
	s := m.state

	var phase string
	switch s.Phase() {
	case game.PhaseNotStarted:
		phase = "ready"
	case game.PhasePaused:
		phase = styles.NewsImportantStyle.Render("PAUSED")
	case game.PhaseRoundOver:
		phase = styles.NewsImportantStyle.Render("ROUND OVER ^N")
	default:
		phase = styles.PriceUpStyle.Render("LIVE")
	}

	remaining := s.TimeRemaining.Round(time.Second)
	gameInfo := fmt.Sprintf("Round %d  %s  %s  health %s",
		s.Round, remaining, phase, m.health.ViewAs(s.MarketHealth/100))

	help := []string{
		styles.StatusBarKeyStyle.Render("^S/^P/^N/^X") + styles.StatusBarDescStyle.Render(" start/pause/next/end"),
		styles.StatusBarKeyStyle.Render("Tab F1-F5") + styles.StatusBarDescStyle.Render(" panels"),
		styles.StatusBarKeyStyle.Render("^C") + styles.StatusBarDescStyle.Render(" quit"),
	}

	status := ""
	if m.statusMsg != "" {
		status = " │ " + m.statusMsg
	}

	return styles.StatusBarStyle.Width(m.width).Render(gameInfo + " │ " + strings.Join(help, " │ ") + status)
}

func (m *Model) renderGameOver() string {
	s := m.state

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("GAME OVER"))
	b.WriteString("\n\n")
	b.WriteString(styles.LabelStyle.Render("Final net worth  "))
	b.WriteString(styles.PriceStyle.Bold(true).Render(styles.FormatMoney(s.NetWorth())))
	b.WriteString("\n")

	if len(s.NetWorthHistory) > 0 {
		start := s.NetWorthHistory[0].Value
		if start > 0 {
			delta := (s.NetWorth() - start) / start
			b.WriteString(styles.LabelStyle.Render("Return           "))
			b.WriteString(styles.ChangeStyle(delta).Render(styles.FormatPercent(delta)))
			b.WriteString("\n")
		}
	}
	b.WriteString(styles.LabelStyle.Render("Missions         "))
	b.WriteString(fmt.Sprintf("%d completed, %d failed", len(s.CompletedMissions), len(s.FailedMissions)))
	b.WriteString("\n\n")

	b.WriteString(styles.HeaderStyle.Render("Leaderboard"))
	b.WriteString("\n")
	switch {
	case m.scores == nil:
		b.WriteString(styles.MutedStyle.Render("scores are not being recorded"))
	case !m.topLoaded || len(m.top) == 0:
		b.WriteString(styles.MutedStyle.Render("no scores yet"))
	default:
		for i, sc := range m.top {
			b.WriteString(fmt.Sprintf("%2d. %-16s %14s  %s\n",
				i+1, sc.UserID, styles.FormatMoney(sc.PortfolioValue), styles.TimeStyle.Render(sc.AchievedAt.Format("2006-01-02"))))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(styles.StatusBarKeyStyle.Render("^S") + styles.StatusBarDescStyle.Render(" play again  "))
	b.WriteString(styles.StatusBarKeyStyle.Render("q") + styles.StatusBarDescStyle.Render(" quit"))

	box := styles.FocusedPanelStyle.Padding(1, 4).Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) command(done string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(context.Background()); err != nil {
			return resultMsg{message: "✗ " + err.Error()}
		}
		return resultMsg{message: done}
	}
}

func (m *Model) submitTrade(t panels.TradeSubmitMsg) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.ExecuteTrade(context.Background(), t.Asset, t.Action, t.Amount)
		if err != nil {
			return resultMsg{message: "✗ Trade rejected: " + err.Error()}
		}
		return resultMsg{message: "✓ " + res.String()}
	}
}

func (m *Model) loadScores() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		top, err := m.scores.Top(ctx, 10)
		if err != nil {
			return resultMsg{message: "leaderboard unavailable: " + err.Error()}
		}
		return scoresMsg{scores: top}
	}
}

// tickMsg is sent periodically to refresh data.
type tickMsg struct{}

func (m *Model) tickRefresh() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg{}
	})
}

// resultMsg carries the outcome of a command for the status bar.
type resultMsg struct {
	message string
}

type scoresMsg struct {
	scores []score.Score
}
