package game

import (
	"fmt"
	"time"

	"github.com/zappabad/marketrush/internal/market"
	"github.com/zappabad/marketrush/internal/mission"
	"github.com/zappabad/marketrush/internal/news"
	"github.com/zappabad/marketrush/internal/portfolio"
)

// NotificationKind classifies a notification.
type NotificationKind string

const (
	NotifyGameStarted      NotificationKind = "game_started"
	NotifyBreakingNews     NotificationKind = "breaking_news"
	NotifyMissionCompleted NotificationKind = "mission_completed"
	NotifyRoundEnded       NotificationKind = "round_ended"
	NotifyGameEnded        NotificationKind = "game_ended"
)

// Notification is a presentation event. Dropping one never affects the simulation.
type Notification struct {
	Kind     NotificationKind
	Round    int
	Message  string
	NetWorth float64
	Time     time.Time

	News    *news.Item
	Mission *mission.Mission
}

// TradeResult describes an executed trade.
type TradeResult struct {
	Asset     market.AssetID
	Action    portfolio.Action
	Amount    float64
	Price     float64
	CashDelta float64
	Cash      float64
	Holding   portfolio.Holding
	NetWorth  float64
}

func (r TradeResult) String() string {
	return fmt.Sprintf("%s %.4g %s @ %.2f", r.Action, r.Amount, r.Asset, r.Price)
}

// Outcome collects what a dispatched action produced.
type Outcome struct {
	Trade         *TradeResult
	Notifications []Notification
	// News holds items emitted while handling the action.
	News []news.Item
}

func (o *Outcome) notify(n Notification) {
	o.Notifications = append(o.Notifications, n)
}
