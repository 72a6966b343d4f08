// Package alert turns game notifications into short-lived on-screen alerts.
package alert

import (
	"time"

	"github.com/zappabad/marketrush/internal/game"
	"github.com/zappabad/marketrush/internal/trader"
)

// Severity controls how an alert is styled.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
)

// Alert is one toast-worthy moment.
type Alert struct {
	ID        int64
	Severity  Severity
	Title     string
	Message   string
	Time      time.Time
	Dismissed bool
}

// FromNotification builds an alert for a game notification.
func FromNotification(n game.Notification) Alert {
	a := Alert{Message: n.Message}
	switch n.Kind {
	case game.NotifyBreakingNews:
		a.Severity = SeverityWarning
		a.Title = "Breaking News"
		if n.News != nil {
			a.Message = n.News.Title
		}
	case game.NotifyMissionCompleted:
		a.Severity = SeveritySuccess
		a.Title = "Mission Complete"
		if n.Mission != nil {
			a.Message = n.Mission.Title + " (" + n.Mission.Reward + ")"
		}
	case game.NotifyRoundEnded:
		a.Title = "Round Over"
	case game.NotifyGameStarted:
		a.Title = "Game Started"
	case game.NotifyGameEnded:
		a.Severity = SeveritySuccess
		a.Title = "Game Over"
	default:
		a.Title = string(n.Kind)
	}
	return a
}

// FromTraderEvent builds an alert for an autoplay event.
func FromTraderEvent(ev trader.Event) Alert {
	a := Alert{Title: "Autoplay", Message: ev.Message}
	if ev.Type == trader.EventRejected || ev.Type == trader.EventError {
		a.Severity = SeverityWarning
	}
	return a
}
