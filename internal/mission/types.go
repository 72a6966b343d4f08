// Package mission defines per-round objectives and evaluates their progress.
package mission

// Type identifies what a mission measures.
type Type string

const (
	TypeTradeCount     Type = "trade_count"
	TypeDiversify      Type = "diversify"
	TypeNetWorthGrowth Type = "net_worth_growth"
	TypeShortPosition  Type = "short_position"
	TypeCashReserve    Type = "cash_reserve"
)

// Status is where a mission is in its lifecycle.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// RewardType says how a completed mission pays out.
type RewardType string

const (
	// RewardCashBonus credits cash * RewardValue on completion.
	RewardCashBonus RewardType = "cash_bonus"
	// RewardScoreBonus is only recorded in the rewards tally.
	RewardScoreBonus RewardType = "score_bonus"
)

// Mission is a single objective scoped to one round.
type Mission struct {
	ID          string
	Type        Type
	Title       string
	Description string
	// Reward is the player-facing description of the payout.
	Reward      string
	RewardType  RewardType
	RewardValue float64

	Target   float64
	Progress float64
	Status   Status
}

// Done reports whether the mission has left the active state.
func (m Mission) Done() bool {
	return m.Status != StatusActive
}

// Fraction returns progress toward the target in [0,1].
func (m Mission) Fraction() float64 {
	if m.Target <= 0 {
		if m.Status == StatusCompleted {
			return 1
		}
		return 0
	}
	f := m.Progress / m.Target
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

// Observation is the slice of game state missions are evaluated against.
type Observation struct {
	Cash               float64
	NetWorth           float64
	RoundStartNetWorth float64
	TradesThisRound    int
	// LongPositions counts assets with a long quantity above zero.
	LongPositions int
	// ShortPositions counts assets with a short quantity above zero.
	ShortPositions int
	// LongValue and ShortValue are the market value of each side.
	LongValue  float64
	ShortValue float64
}
