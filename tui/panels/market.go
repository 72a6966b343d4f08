package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/marketrush/internal/market"
	"github.com/zappabad/marketrush/tui/styles"
)

// MarketPanel displays current prices for all assets.
type MarketPanel struct {
	assets        []market.Asset
	openPrices    map[market.AssetID]float64
	selectedIndex int
	focused       bool
	width         int
	height        int
}

// NewMarketPanel creates a new market panel.
func NewMarketPanel(assets []market.Asset) *MarketPanel {
	p := &MarketPanel{openPrices: make(map[market.AssetID]float64)}
	p.SetAssets(assets)
	return p
}

// Init initializes the panel.
func (p *MarketPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *MarketPanel) Update(msg tea.Msg) (*MarketPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if p.selectedIndex > 0 {
				p.selectedIndex--
				return p, p.selected()
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			if p.selectedIndex < len(p.assets)-1 {
				p.selectedIndex++
				return p, p.selected()
			}
		}
	}
	return p, nil
}

func (p *MarketPanel) selected() tea.Cmd {
	a := p.SelectedAsset()
	return func() tea.Msg { return AssetSelectedMsg{Asset: a} }
}

// View renders the panel.
func (p *MarketPanel) View() string {
	var content strings.Builder

	header := fmt.Sprintf("%-5s %-12s %10s %8s %8s", "Tkr", "Name", "Price", "Tick", "Round")
	content.WriteString(styles.HeaderStyle.Render(header))
	content.WriteString("\n")

	for i, a := range p.assets {
		roundChange := 0.0
		if open := p.openPrices[a.ID]; open > 0 {
			roundChange = (a.Price - open) / open
		}

		name := a.Name
		if len(name) > 12 {
			name = name[:12]
		}
		ticker := lipgloss.NewStyle().Foreground(lipgloss.Color(a.Color)).Bold(true).Render(fmt.Sprintf("%-5s", a.Ticker))
		row := fmt.Sprintf(" %-12s %10s ", name, styles.FormatPrice(a.Price))
		tick := styles.ChangeStyle(a.Change()).Render(fmt.Sprintf("%8s", styles.FormatPercent(a.Change())))
		rnd := styles.ChangeStyle(roundChange).Render(fmt.Sprintf(" %8s", styles.FormatPercent(roundChange)))

		line := ticker + styles.RowStyle.Render(row) + tick + rnd
		if i == p.selectedIndex && p.focused {
			line = styles.SelectedRowStyle.Render(line)
		}
		content.WriteString(line)
		if i < len(p.assets)-1 {
			content.WriteString("\n")
		}
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("📈 Market", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetFocus sets the focus state of the panel.
func (p *MarketPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *MarketPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetAssets replaces the displayed quotes.
func (p *MarketPanel) SetAssets(assets []market.Asset) {
	p.assets = assets
	for _, a := range assets {
		if _, ok := p.openPrices[a.ID]; !ok {
			p.openPrices[a.ID] = a.Price
		}
	}
	if p.selectedIndex >= len(p.assets) {
		p.selectedIndex = 0
	}
}

// MarkRoundOpen records current prices as the round's opening quotes.
func (p *MarketPanel) MarkRoundOpen() {
	for _, a := range p.assets {
		p.openPrices[a.ID] = a.Price
	}
}

// SelectedAsset returns the currently selected asset.
func (p *MarketPanel) SelectedAsset() market.Asset {
	if p.selectedIndex >= 0 && p.selectedIndex < len(p.assets) {
		return p.assets[p.selectedIndex]
	}
	return market.Asset{}
}

// AssetSelectedMsg is sent when the market selection changes.
type AssetSelectedMsg struct {
	Asset market.Asset
}
