package panels

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/marketrush/internal/alert"
	"github.com/zappabad/marketrush/tui/styles"
)

// AlertsPanel stacks the alerts currently on display.
type AlertsPanel struct {
	alerts []alert.Alert
	width  int
	max    int
}

// NewAlertsPanel creates an alerts panel showing at most three toasts.
func NewAlertsPanel() *AlertsPanel {
	return &AlertsPanel{max: 3}
}

// SetAlerts replaces the alerts on display, oldest first.
func (p *AlertsPanel) SetAlerts(alerts []alert.Alert) {
	if len(alerts) > p.max {
		alerts = alerts[len(alerts)-p.max:]
	}
	p.alerts = alerts
}

// SetWidth sets the width of each toast.
func (p *AlertsPanel) SetWidth(width int) {
	p.width = width
}

// Empty reports whether there is nothing to show.
func (p *AlertsPanel) Empty() bool {
	return len(p.alerts) == 0
}

// View renders the toasts side by side.
func (p *AlertsPanel) View() string {
	if len(p.alerts) == 0 {
		return ""
	}

	w := p.width / p.max
	toasts := make([]string, 0, len(p.alerts))
	for i := len(p.alerts) - 1; i >= 0; i-- {
		a := p.alerts[i]
		style := styles.AlertStyle
		switch a.Severity {
		case alert.SeveritySuccess:
			style = styles.AlertSuccessStyle
		case alert.SeverityWarning:
			style = styles.AlertWarningStyle
		}

		msg := a.Message
		if limit := w - 6; limit > 3 && len(msg) > limit {
			msg = msg[:limit-3] + "..."
		}
		body := styles.TitleStyle.Render(a.Title) + "\n" + msg
		toasts = append(toasts, style.Width(w-2).Render(strings.TrimSpace(body)))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, toasts...)
}
