package news

import (
	"time"

	"github.com/zappabad/marketrush/internal/market"
)

// Sentiment is the direction a news item pushes impacted prices.
type Sentiment string

const (
	Positive Sentiment = "positive"
	Negative Sentiment = "negative"
	Neutral  Sentiment = "neutral"
)

// Sign returns +1, -1 or 0.
func (s Sentiment) Sign() float64 {
	switch s {
	case Positive:
		return 1
	case Negative:
		return -1
	default:
		return 0
	}
}

// Kind records which pool an item was drawn from.
type Kind string

const (
	KindCrisis   Kind = "crisis"
	KindAsset    Kind = "asset"
	KindGeneral  Kind = "general"
	KindFollowUp Kind = "follow_up"
)

// HighImpactMagnitude is the magnitude above which an item counts as breaking news.
const HighImpactMagnitude = 0.7

// Item represents a news event.
type Item struct {
	ID             string
	Title          string
	Content        string
	ImpactedAssets []market.AssetID
	Sentiment      Sentiment
	Kind           Kind
	// Magnitude is in [0,1].
	Magnitude float64
	Timestamp time.Time
	IsActive  bool

	// ChainID links a follow-up to its origin; empty for standalone items.
	ChainID       string
	ChainSequence int
}

// Impacts reports whether the item affects the given asset.
func (it Item) Impacts(id market.AssetID) bool {
	for _, a := range it.ImpactedAssets {
		if a == id {
			return true
		}
	}
	return false
}

// IsBreaking reports whether the item is severe enough to be announced.
func (it Item) IsBreaking() bool {
	return it.Magnitude > HighImpactMagnitude
}

// Affecting returns the items that impact the given asset.
func Affecting(items []Item, id market.AssetID) []Item {
	var out []Item
	for _, it := range items {
		if it.Impacts(id) {
			out = append(out, it)
		}
	}
	return out
}

// DisplayTime formats a news timestamp for display.
// A zero or unrepresentable timestamp renders as a placeholder.
func DisplayTime(t time.Time) string {
	if t.IsZero() || t.Year() < 1 || t.Year() > 9999 {
		return "--:--:--"
	}
	return t.Format("15:04:05")
}
