package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/marketrush/internal/game"
	"github.com/zappabad/marketrush/internal/mission"
	"github.com/zappabad/marketrush/tui/styles"
)

// PortfolioPanel shows cash, positions and the round's missions.
type PortfolioPanel struct {
	state        game.State
	bar          progress.Model
	scrollOffset int
	focused      bool
	width        int
	height       int
}

// NewPortfolioPanel creates a new portfolio panel.
func NewPortfolioPanel() *PortfolioPanel {
	return &PortfolioPanel{
		bar: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(16)),
	}
}

// Init initializes the panel.
func (p *PortfolioPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *PortfolioPanel) Update(msg tea.Msg) (*PortfolioPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if p.scrollOffset > 0 {
				p.scrollOffset--
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			p.scrollOffset++
		}
	}
	return p, nil
}

// View renders the panel.
func (p *PortfolioPanel) View() string {
	var lines []string

	netWorth := p.state.NetWorth()
	lines = append(lines,
		styles.LabelStyle.Render("Cash      ")+styles.PriceStyle.Render(styles.FormatMoney(p.state.Cash)),
		styles.LabelStyle.Render("Net worth ")+styles.PriceStyle.Bold(true).Render(styles.FormatMoney(netWorth)),
	)
	if p.state.RoundStartNetWorth > 0 {
		delta := (netWorth - p.state.RoundStartNetWorth) / p.state.RoundStartNetWorth
		lines = append(lines, styles.LabelStyle.Render("This round ")+styles.ChangeStyle(delta).Render(styles.FormatPercent(delta)))
	}
	lines = append(lines, "")

	lines = append(lines, styles.HeaderStyle.Render(fmt.Sprintf("%-5s %9s %10s %10s", "Tkr", "Qty", "Avg", "P/L")))
	empty := true
	for _, a := range p.state.Assets {
		h, ok := p.state.Holdings[a.ID]
		if !ok || h.Empty() {
			continue
		}
		empty = false
		if h.Quantity > 0 {
			pl := (a.Price - h.AverageBuyPrice) * h.Quantity
			row := fmt.Sprintf("%-5s %9.2f %10s ", a.Ticker, h.Quantity, styles.FormatPrice(h.AverageBuyPrice))
			lines = append(lines, styles.LongStyle.Render(row)+styles.ChangeStyle(pl).Render(fmt.Sprintf("%10s", styles.FormatPrice(pl))))
		}
		if h.ShortQuantity > 0 {
			pl := (h.AverageShortPrice - a.Price) * h.ShortQuantity
			row := fmt.Sprintf("%-5s %9.2f %10s ", a.Ticker, -h.ShortQuantity, styles.FormatPrice(h.AverageShortPrice))
			lines = append(lines, styles.ShortStyle.Render(row)+styles.ChangeStyle(pl).Render(fmt.Sprintf("%10s", styles.FormatPrice(pl))))
		}
	}
	if empty {
		lines = append(lines, styles.MutedStyle.Render("No open positions"))
	}

	lines = append(lines, "", styles.HeaderStyle.Render("Missions"))
	if len(p.state.ActiveMissions) == 0 {
		lines = append(lines, styles.MutedStyle.Render("None this round"))
	}
	for _, m := range p.state.ActiveMissions {
		lines = append(lines, p.renderMission(m))
	}
	if n := len(p.state.CompletedMissions); n > 0 {
		lines = append(lines, styles.MutedStyle.Render(fmt.Sprintf("%d completed, %d failed so far", n, len(p.state.FailedMissions))))
	}

	if p.scrollOffset > len(lines)-1 {
		p.scrollOffset = len(lines) - 1
	}
	if p.scrollOffset > 0 {
		lines = lines[p.scrollOffset:]
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("💼 Portfolio", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n"))

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func (p *PortfolioPanel) renderMission(m mission.Mission) string {
	mark := styles.MutedStyle.Render("○")
	switch m.Status {
	case mission.StatusCompleted:
		mark = styles.LongStyle.Render("✓")
	case mission.StatusFailed:
		mark = styles.ShortStyle.Render("✗")
	}
	head := fmt.Sprintf("%s %s %s", mark, styles.RowStyle.Render(m.Title), styles.MutedStyle.Render(m.Reward))
	return head + "\n  " + p.bar.ViewAs(m.Fraction()) + " " + styles.MutedStyle.Render(m.Description)
}

// SetFocus sets the focus state of the panel.
func (p *PortfolioPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *PortfolioPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetState updates the panel from a game snapshot.
func (p *PortfolioPanel) SetState(s game.State) {
	p.state = s
}
