package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/marketrush/internal/news"
	"github.com/zappabad/marketrush/tui/styles"
)

// NewsPanel displays the news log, newest first.
type NewsPanel struct {
	news          []news.Item
	selectedIndex int
	scrollOffset  int
	focused       bool
	width         int
	height        int
	maxItems      int
}

// NewNewsPanel creates a new news panel.
func NewNewsPanel() *NewsPanel {
	return &NewsPanel{
		maxItems: 50,
	}
}

// Init initializes the panel.
func (p *NewsPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *NewsPanel) Update(msg tea.Msg) (*NewsPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if p.selectedIndex > 0 {
				p.selectedIndex--
				if p.selectedIndex < p.scrollOffset {
					p.scrollOffset = p.selectedIndex
				}
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			if p.selectedIndex < len(p.news)-1 {
				p.selectedIndex++
				visibleItems := p.visibleItems()
				if p.selectedIndex >= p.scrollOffset+visibleItems {
					p.scrollOffset = p.selectedIndex - visibleItems + 1
				}
			}
		}
	}
	return p, nil
}

func (p *NewsPanel) visibleItems() int {
	// title, borders, detail line
	n := p.height - 5
	if n < 1 {
		n = 1
	}
	return n
}

// View renders the panel.
func (p *NewsPanel) View() string {
	var content strings.Builder

	if len(p.news) == 0 {
		content.WriteString(styles.MutedStyle.Render("No news yet"))
	} else {
		visibleItems := p.visibleItems()
		start := p.scrollOffset
		end := start + visibleItems
		if end > len(p.news) {
			end = len(p.news)
		}

		for i := start; i < end; i++ {
			item := p.news[i]

			headline := item.Title
			if limit := p.width - 20; limit > 3 && len(headline) > limit {
				headline = headline[:limit-3] + "..."
			}

			headlineStyle := styles.NewsNormalStyle
			switch {
			case !item.IsActive:
				headlineStyle = styles.NewsExpiredStyle
			case item.Magnitude > news.HighImpactMagnitude:
				headlineStyle = styles.NewsImportantStyle
			}

			line := fmt.Sprintf("%s %s %s",
				styles.TimeStyle.Render(news.DisplayTime(item.Timestamp)),
				sentimentMark(item.Sentiment),
				headlineStyle.Render(headline))

			if i == p.selectedIndex && p.focused {
				line = styles.SelectedRowStyle.Render(line)
			}

			content.WriteString(line)
			if i < end-1 {
				content.WriteString("\n")
			}
		}

		if sel := p.SelectedNews(); sel != nil && p.focused {
			content.WriteString("\n")
			content.WriteString(styles.MutedStyle.Render(sel.Content))
		} else if len(p.news) > visibleItems {
			content.WriteString("\n")
			content.WriteString(styles.MutedStyle.Render(fmt.Sprintf(" (%d/%d)", p.selectedIndex+1, len(p.news))))
		}
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("📰 News", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func sentimentMark(s news.Sentiment) string {
	switch s {
	case news.Positive:
		return styles.PriceUpStyle.Render("▲")
	case news.Negative:
		return styles.PriceDownStyle.Render("▼")
	default:
		return styles.MutedStyle.Render("•")
	}
}

// SetFocus sets the focus state of the panel.
func (p *NewsPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *NewsPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetNews replaces the log. Items arrive oldest first and are shown newest first.
func (p *NewsPanel) SetNews(items []news.Item) {
	if len(items) > p.maxItems {
		items = items[len(items)-p.maxItems:]
	}
	p.news = make([]news.Item, len(items))
	for i, it := range items {
		p.news[len(items)-1-i] = it
	}
	if p.selectedIndex >= len(p.news) {
		p.selectedIndex = len(p.news) - 1
		if p.selectedIndex < 0 {
			p.selectedIndex = 0
		}
	}
}

// SelectedNews returns the currently selected news item.
func (p *NewsPanel) SelectedNews() *news.Item {
	if p.selectedIndex >= 0 && p.selectedIndex < len(p.news) {
		return &p.news[p.selectedIndex]
	}
	return nil
}
