// Package portfolio applies trades to a cash and holdings ledger.
package portfolio

import (
	"fmt"
	"strings"

	"github.com/zappabad/marketrush/internal/market"
)

// Action is the kind of trade.
type Action uint8

const (
	ActionBuy Action = iota + 1
	ActionSell
	ActionShort
	ActionCover
)

// Actions lists every supported trade action.
var Actions = []Action{ActionBuy, ActionSell, ActionShort, ActionCover}

func (a Action) String() string {
	switch a {
	case ActionBuy:
		return "buy"
	case ActionSell:
		return "sell"
	case ActionShort:
		return "short"
	case ActionCover:
		return "cover"
	default:
		return "unknown"
	}
}

// ParseAction maps a name such as "buy" to its Action.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "b":
		return ActionBuy, nil
	case "sell", "s":
		return ActionSell, nil
	case "short":
		return ActionShort, nil
	case "cover", "c":
		return ActionCover, nil
	default:
		return 0, fmt.Errorf("parse action %q: %w", s, ErrUnknownAction)
	}
}

// Holding is the position in one asset. Long and short sides are
// tracked independently and may both be open at once.
type Holding struct {
	Quantity          float64
	AverageBuyPrice   float64
	ShortQuantity     float64
	AverageShortPrice float64
}

// Empty reports whether neither side has an open position.
func (h Holding) Empty() bool {
	return h.Quantity <= 0 && h.ShortQuantity <= 0
}

// Holdings maps asset ids to positions.
type Holdings map[market.AssetID]Holding

// Clone returns a copy that can be modified independently.
func (h Holdings) Clone() Holdings {
	out := make(Holdings, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// Counts returns how many assets carry an open long and short position.
func (h Holdings) Counts() (long, short int) {
	for _, p := range h {
		if p.Quantity > 0 {
			long++
		}
		if p.ShortQuantity > 0 {
			short++
		}
	}
	return long, short
}

// Ledger is the cash and positions a trade is applied against.
type Ledger struct {
	Cash     float64
	Holdings Holdings
}

// Trade is a request to transact amount units of an asset at price.
type Trade struct {
	Asset  market.AssetID
	Action Action
	Amount float64
	Price  float64
}

// Report describes an applied trade.
type Report struct {
	Trade Trade
	// CashDelta is the signed change in cash.
	CashDelta float64
	Holding   Holding
}
