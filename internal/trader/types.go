// Package trader holds the types shared by automated players.
package trader

import (
	"time"

	"github.com/zappabad/marketrush/internal/market"
	"github.com/zappabad/marketrush/internal/portfolio"
)

// Intent is a trade a strategy wants to make.
type Intent struct {
	Asset  market.AssetID
	Action portfolio.Action
	Amount float64
	Reason string
}

// EventType indicates the type of trader event.
type EventType int

const (
	EventTraded EventType = iota
	EventRejected
	EventAdvanced
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventTraded:
		return "traded"
	case EventRejected:
		return "rejected"
	case EventAdvanced:
		return "advanced"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is something a trader did or ran into.
type Event struct {
	Time    time.Time
	Type    EventType
	Intent  *Intent // optional, for Traded and Rejected
	Message string
}
