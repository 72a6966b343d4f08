// Package pricing evolves asset prices one tick at a time.
package pricing

import (
	"math"
	"math/rand"

	"github.com/shopspring/decimal"
	"github.com/zappabad/marketrush/internal/market"
	"github.com/zappabad/marketrush/internal/news"
)

const (
	MinPrice = 0.1
	MaxPrice = 100000

	randomScale = 0.05
	healthScale = 0.01
	newsScale   = 0.1
)

// NextPrice computes the asset's price for the next tick.
//
// The move is a sum of a volatility-scaled random walk, a small drift from
// market health (negative below 50) and the additive effect of every active
// news item impacting the asset. The result is clamped to [MinPrice, MaxPrice]
// and rounded to cents.
func NextPrice(a market.Asset, active []news.Item, marketHealth float64, rng *rand.Rand) float64 {
	random := (rng.Float64()*2 - 1) * a.Volatility * randomScale
	marketEffect := ((marketHealth/100)*2 - 1) * healthScale

	var newsEffect float64
	for _, it := range active {
		if !it.Impacts(a.ID) {
			continue
		}
		newsEffect += it.Sentiment.Sign() * it.Magnitude * newsScale
	}

	return clampRound(a.Price * (1 + random + marketEffect + newsEffect))
}

// ApplyAll advances every asset by one pricing tick.
func ApplyAll(assets []market.Asset, active []news.Item, marketHealth float64, rng *rand.Rand) []market.Asset {
	out := make([]market.Asset, len(assets))
	for i, a := range assets {
		next := NextPrice(a, active, marketHealth, rng)
		a.PreviousPrice = a.Price
		a.Price = next
		out[i] = a
	}
	return out
}

func clampRound(p float64) float64 {
	switch {
	case math.IsNaN(p) || p < MinPrice:
		p = MinPrice
	case p > MaxPrice:
		p = MaxPrice
	}
	return decimal.NewFromFloat(p).Round(2).InexactFloat64()
}
