package news

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/zappabad/marketrush/internal/market"
)

const (
	crisisChance        = 0.05
	crisisAfterRound    = 3
	assetSpecificChance = 0.6

	followUpMagnitudeFactor = 1.5
	followUpPrefix          = "UPDATE: "

	minFollowUpDelay = 5 * time.Second
	maxFollowUpDelay = 15 * time.Second
)

// ExpiryDelay is how long an item stays in the active set after emission.
const ExpiryDelay = 15 * time.Second

// Generator produces news items from the template pools.
// It is not safe for concurrent use.
type Generator struct {
	rng   *rand.Rand
	now   func() time.Time
	newID func() string
}

// NewGenerator creates a Generator drawing from rng.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{
		rng:   rng,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// SetClock replaces the wall clock used to stamp items.
func (g *Generator) SetClock(now func() time.Time) {
	g.now = now
}

// Generate picks a news item for the given round.
// After round 3 a small share of items are crises hitting every asset; otherwise
// items are either about a single asset or about a random subset of the market.
func (g *Generator) Generate(assets []market.Asset, round int, forceHighImpact bool) Item {
	if len(assets) == 0 {
		return g.build(g.pick(generalPool, forceHighImpact), nil, KindGeneral)
	}

	if round > crisisAfterRound && g.rng.Float64() < crisisChance {
		ids := make([]market.AssetID, len(assets))
		for i, a := range assets {
			ids[i] = a.ID
		}
		return g.build(g.pick(crisisPool, forceHighImpact), ids, KindCrisis)
	}

	if g.rng.Float64() < assetSpecificChance {
		a := assets[g.rng.Intn(len(assets))]
		return g.build(g.pick(PoolFor(a.Class), forceHighImpact), []market.AssetID{a.ID}, KindAsset)
	}

	perm := g.rng.Perm(len(assets))
	n := g.rng.Intn(len(assets)) + 1
	ids := make([]market.AssetID, n)
	for i := 0; i < n; i++ {
		ids[i] = assets[perm[i]].ID
	}
	return g.build(g.pick(generalPool, forceHighImpact), ids, KindGeneral)
}

// StartChain marks item as the first link of a new chain.
func (g *Generator) StartChain(item Item) Item {
	item.ChainID = g.newID()
	item.ChainSequence = 1
	return item
}

// FollowUp builds the second link of origin's chain.
func (g *Generator) FollowUp(origin Item) Item {
	chainID := origin.ChainID
	if chainID == "" {
		chainID = g.newID()
	}

	magnitude := origin.Magnitude * followUpMagnitudeFactor
	if magnitude > 1 {
		magnitude = 1
	}

	impacted := make([]market.AssetID, len(origin.ImpactedAssets))
	copy(impacted, origin.ImpactedAssets)

	return Item{
		ID:             g.newID(),
		Title:          followUpPrefix + origin.Title,
		Content:        "Developing story: " + origin.Content,
		ImpactedAssets: impacted,
		Sentiment:      origin.Sentiment,
		Kind:           KindFollowUp,
		Magnitude:      magnitude,
		Timestamp:      g.now(),
		IsActive:       true,
		ChainID:        chainID,
		ChainSequence:  2,
	}
}

// FollowUpDelay draws the wait before a chained follow-up is emitted.
func (g *Generator) FollowUpDelay() time.Duration {
	span := int64(maxFollowUpDelay - minFollowUpDelay)
	return minFollowUpDelay + time.Duration(g.rng.Int63n(span+1))
}

func (g *Generator) pick(pool []Template, highImpact bool) Template {
	if !highImpact {
		return pool[g.rng.Intn(len(pool))]
	}

	var strong []Template
	for _, t := range pool {
		if t.Magnitude >= HighImpactMagnitude {
			strong = append(strong, t)
		}
	}
	if len(strong) > 0 {
		return strong[g.rng.Intn(len(strong))]
	}

	t := pool[g.rng.Intn(len(pool))]
	t.Magnitude = HighImpactMagnitude
	return t
}

func (g *Generator) build(t Template, impacted []market.AssetID, kind Kind) Item {
	return Item{
		ID:             g.newID(),
		Title:          t.Title,
		Content:        t.Content,
		ImpactedAssets: impacted,
		Sentiment:      t.Sentiment,
		Kind:           kind,
		Magnitude:      t.Magnitude,
		Timestamp:      g.now(),
		IsActive:       true,
	}
}
