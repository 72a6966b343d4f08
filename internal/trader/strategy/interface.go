package strategy

import (
	"context"
	"time"

	"github.com/zappabad/marketrush/internal/game"
	"github.com/zappabad/marketrush/internal/market"
	"github.com/zappabad/marketrush/internal/portfolio"
	"github.com/zappabad/marketrush/internal/trader"
)

// StateReader provides read-only access to the game.
type StateReader interface {
	Snapshot() game.State
}

// TradeSender executes trades.
type TradeSender interface {
	ExecuteTrade(ctx context.Context, asset market.AssetID, action portfolio.Action, amount float64) (game.TradeResult, error)
}

// Strategy is the interface for trading strategies.
type Strategy interface {
	// Step is called on each tick while the game is running.
	Step(ctx context.Context, now time.Time, state game.State) []trader.Intent
}
