package panels

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/marketrush/internal/market"
	"github.com/zappabad/marketrush/tui/styles"
)

// Candle aggregates price samples over one period.
type Candle struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
	Time  time.Time
}

// ChartPanel draws a candlestick chart of one asset's price.
type ChartPanel struct {
	asset   market.Asset
	candles []Candle

	current *Candle
	period  time.Duration

	focused bool
	width   int
	height  int

	maxCandles int
}

// NewChartPanel creates a chart with 5 second candles.
func NewChartPanel() *ChartPanel {
	return &ChartPanel{
		period:     5 * time.Second,
		maxCandles: 60,
	}
}

// Init initializes the panel.
func (p *ChartPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *ChartPanel) Update(msg tea.Msg) (*ChartPanel, tea.Cmd) {
	return p, nil
}

// View renders the panel.
func (p *ChartPanel) View() string {
	name := "No asset"
	if p.asset.ID != "" {
		name = p.asset.Name
	}

	var content strings.Builder

	chartWidth := p.width - 12
	chartHeight := p.height - 6
	if chartHeight < 5 {
		chartHeight = 5
	}

	all := p.Candles()
	if len(all) == 0 {
		content.WriteString(styles.MutedStyle.Render("Waiting for prices..."))
	} else {
		content.WriteString(p.renderChart(chartWidth, chartHeight, all))
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle(fmt.Sprintf("📉 %s", name), p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// Candles returns closed candles followed by the one being built.
func (p *ChartPanel) Candles() []Candle {
	out := make([]Candle, len(p.candles), len(p.candles)+1)
	copy(out, p.candles)
	if p.current != nil {
		out = append(out, *p.current)
	}
	return out
}

func (p *ChartPanel) renderChart(width, height int, candles []Candle) string {
	// 10 columns for the price axis and separator
	plotWidth := width - 10
	if plotWidth < 10 {
		plotWidth = 10
	}

	// each candle takes a glyph and a gap
	show := plotWidth / 2
	if show < 1 {
		show = 1
	}
	if show < len(candles) {
		candles = candles[len(candles)-show:]
	}

	lo, hi := candles[0].Low, candles[0].High
	for _, c := range candles {
		if c.Low < lo {
			lo = c.Low
		}
		if c.High > hi {
			hi = c.High
		}
	}

	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = hi * 0.005
	}
	if pad == 0 {
		pad = 1
	}
	lo -= pad
	hi += pad

	rows := height - 3
	if rows < 5 {
		rows = 5
	}

	var result strings.Builder

	for row := 0; row < rows; row++ {
		price := yToPrice(row, lo, hi, rows)
		result.WriteString(styles.ChartAxisStyle.Render(fmt.Sprintf("%8s │", styles.FormatPrice(price))))

		for _, c := range candles {
			style := styles.CandleUpStyle
			if c.Close < c.Open {
				style = styles.CandleDownStyle
			}
			result.WriteString(style.Render(string(candleGlyph(c, row, lo, hi, rows))))
			result.WriteString(" ")
		}
		result.WriteString("\n")
	}

	result.WriteString(styles.ChartAxisStyle.Render("─────────┴"))
	for range candles {
		result.WriteString(styles.ChartAxisStyle.Render("──"))
	}
	result.WriteString("\n")

	// Seconds of the simulated clock under every fifth candle
	result.WriteString(styles.ChartAxisStyle.Render("          "))
	for i, c := range candles {
		if i == 0 || i == len(candles)-1 || i%5 == 0 {
			result.WriteString(styles.ChartLabelStyle.Render(c.Time.Format("05")))
		} else {
			result.WriteString("  ")
		}
	}

	return result.String()
}

// candleGlyph returns the character for a candle at a given row.
func candleGlyph(c Candle, row int, lo, hi float64, rows int) rune {
	price := yToPrice(row, lo, hi, rows)

	top, bottom := c.Open, c.Close
	if c.Close > c.Open {
		top, bottom = c.Close, c.Open
	}

	// half a row either way so thin candles still show up
	tol := (hi - lo) / float64(rows*2)

	switch {
	case price <= top+tol && price >= bottom-tol:
		return '┃'
	case price <= c.High+tol && price > top:
		return '│'
	case price >= c.Low-tol && price < bottom:
		return '│'
	default:
		return ' '
	}
}

func yToPrice(y int, lo, hi float64, rows int) float64 {
	if rows <= 1 {
		return lo
	}
	return hi - float64(y)/float64(rows-1)*(hi-lo)
}

// SetFocus sets the focus state of the panel.
func (p *ChartPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *ChartPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetAsset switches the chart to another asset and clears its history.
func (p *ChartPanel) SetAsset(a market.Asset) {
	p.asset = a
	p.candles = nil
	p.current = nil
}

// Asset returns the charted asset.
func (p *ChartPanel) Asset() market.Asset {
	return p.asset
}

// AddSample folds a price observed at simulated time t into the candles.
// Samples older than the open candle are ignored.
func (p *ChartPanel) AddSample(t time.Time, price float64) {
	start := t.Truncate(p.period)

	if p.current != nil && start.Before(p.current.Time) {
		return
	}

	if p.current == nil || !start.Equal(p.current.Time) {
		if p.current != nil {
			p.candles = append(p.candles, *p.current)
			if len(p.candles) > p.maxCandles {
				p.candles = p.candles[len(p.candles)-p.maxCandles:]
			}
		}
		p.current = &Candle{Open: price, High: price, Low: price, Close: price, Time: start}
		return
	}

	if price > p.current.High {
		p.current.High = price
	}
	if price < p.current.Low {
		p.current.Low = price
	}
	p.current.Close = price
}
