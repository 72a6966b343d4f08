package strategy

import (
	"context"
	"math"
	"time"

	"github.com/zappabad/marketrush/internal/game"
	"github.com/zappabad/marketrush/internal/market"
	"github.com/zappabad/marketrush/internal/news"
	"github.com/zappabad/marketrush/internal/portfolio"
	"github.com/zappabad/marketrush/internal/trader"
)

// MomentumConfig tunes NewsMomentum.
type MomentumConfig struct {
	// MinMagnitude is the weakest news the strategy reacts to.
	MinMagnitude float64 `yaml:"min_magnitude"`
	// PositionFraction is the share of net worth put into one position.
	PositionFraction float64 `yaml:"position_fraction"`
}

// DefaultMomentumConfig returns reasonable defaults.
func DefaultMomentumConfig() MomentumConfig {
	return MomentumConfig{
		MinMagnitude:     0.4,
		PositionFraction: 0.2,
	}
}

// NewsMomentum trades in the direction of fresh news and flattens a
// position once no active news touches its asset.
type NewsMomentum struct {
	cfg  MomentumConfig
	seen map[string]bool
}

// NewNewsMomentum creates a NewsMomentum strategy.
func NewNewsMomentum(cfg MomentumConfig) *NewsMomentum {
	d := DefaultMomentumConfig()
	if cfg.MinMagnitude <= 0 {
		cfg.MinMagnitude = d.MinMagnitude
	}
	if cfg.PositionFraction <= 0 || cfg.PositionFraction > 1 {
		cfg.PositionFraction = d.PositionFraction
	}
	return &NewsMomentum{cfg: cfg, seen: make(map[string]bool)}
}

// forgetExpired drops seen ids for news that is no longer active.
func (s *NewsMomentum) forgetExpired(active []news.Item) {
	live := make(map[string]struct{}, len(active))
	for _, it := range active {
		live[it.ID] = struct{}{}
	}
	for id := range s.seen {
		if _, ok := live[id]; !ok {
			delete(s.seen, id)
		}
	}
}

// Step implements Strategy.
func (s *NewsMomentum) Step(_ context.Context, _ time.Time, st game.State) []trader.Intent {
	var intents []trader.Intent

	s.forgetExpired(st.ActiveNews)

	budget := st.NetWorth() * s.cfg.PositionFraction
	cash := st.Cash

	for _, it := range st.ActiveNews {
		if s.seen[it.ID] {
			continue
		}
		s.seen[it.ID] = true
		if it.Magnitude < s.cfg.MinMagnitude || it.Sentiment == news.Neutral {
			continue
		}

		for _, id := range it.ImpactedAssets {
			a, ok := st.Asset(id)
			if !ok || a.Price <= 0 {
				continue
			}
			h := st.Holdings[id]

			switch it.Sentiment {
			case news.Positive:
				if h.ShortQuantity > 0 && h.ShortQuantity*a.Price <= cash {
					intents = append(intents, trader.Intent{Asset: id, Action: portfolio.ActionCover, Amount: h.ShortQuantity, Reason: it.Title})
					cash -= h.ShortQuantity * a.Price
				}
				qty := units(math.Min(budget, cash), a.Price)
				if qty > 0 && h.Quantity == 0 {
					intents = append(intents, trader.Intent{Asset: id, Action: portfolio.ActionBuy, Amount: qty, Reason: it.Title})
					cash -= qty * a.Price
				}
			case news.Negative:
				if h.Quantity > 0 {
					intents = append(intents, trader.Intent{Asset: id, Action: portfolio.ActionSell, Amount: h.Quantity, Reason: it.Title})
					cash += h.Quantity * a.Price
				}
				if qty := units(budget, a.Price); qty > 0 && h.ShortQuantity == 0 {
					intents = append(intents, trader.Intent{Asset: id, Action: portfolio.ActionShort, Amount: qty, Reason: it.Title})
					cash += qty * a.Price
				}
			}
		}
	}

	for id, h := range st.Holdings {
		if h.Empty() || len(news.Affecting(st.ActiveNews, id)) > 0 || touched(intents, id) {
			continue
		}
		if h.Quantity > 0 {
			intents = append(intents, trader.Intent{Asset: id, Action: portfolio.ActionSell, Amount: h.Quantity, Reason: "news faded"})
		}
		if h.ShortQuantity > 0 {
			intents = append(intents, trader.Intent{Asset: id, Action: portfolio.ActionCover, Amount: h.ShortQuantity, Reason: "news faded"})
		}
	}

	return intents
}

// units returns how many whole units of price fit in budget.
func units(budget, price float64) float64 {
	if budget <= 0 || price <= 0 {
		return 0
	}
	return math.Floor(budget / price)
}

func touched(intents []trader.Intent, id market.AssetID) bool {
	for _, in := range intents {
		if in.Asset == id {
			return true
		}
	}
	return false
}
