package mission

import (
	"fmt"

	"github.com/google/uuid"
)

const maxRound = 10

type blueprint func(round int) Mission

var catalog = []blueprint{
	func(round int) Mission {
		n := float64(2 + round/2)
		return Mission{
			Type:        TypeTradeCount,
			Title:       "Active Trader",
			Description: fmt.Sprintf("Execute %.0f trades this round", n),
			Reward:      "+2% cash",
			RewardType:  RewardCashBonus,
			RewardValue: 0.02,
			Target:      n,
		}
	},
	func(round int) Mission {
		n := 2.0
		if round > 5 {
			n = 3
		}
		return Mission{
			Type:        TypeDiversify,
			Title:       "Spread the Risk",
			Description: fmt.Sprintf("Hold long positions in %.0f different assets", n),
			Reward:      "+100 score",
			RewardType:  RewardScoreBonus,
			RewardValue: 100,
			Target:      n,
		}
	},
	func(round int) Mission {
		pct := 1 + 0.5*float64(round-1)
		return Mission{
			Type:        TypeNetWorthGrowth,
			Title:       "Grow the Book",
			Description: fmt.Sprintf("Grow net worth by %.1f%% this round", pct),
			Reward:      "+5% cash",
			RewardType:  RewardCashBonus,
			RewardValue: 0.05,
			Target:      pct,
		}
	},
	func(round int) Mission {
		return Mission{
			Type:        TypeShortPosition,
			Title:       "Bet Against It",
			Description: "Open a short position on any asset",
			Reward:      "+150 score",
			RewardType:  RewardScoreBonus,
			RewardValue: 150,
			Target:      1,
		}
	},
	func(round int) Mission {
		return Mission{
			Type:        TypeCashReserve,
			Title:       "Dry Powder",
			Description: "Keep a quarter of your net worth in longs and half in free cash",
			Reward:      "+3% cash",
			RewardType:  RewardCashBonus,
			RewardValue: 0.03,
			Target:      0.5,
		}
	},
}

// minInvestedShare is the long exposure, as a share of net worth, the cash
// reserve mission requires before free cash counts.
const minInvestedShare = 0.25

// ForRound returns a fresh set of active missions for the round.
// Each round draws two consecutive entries from a rotating catalog.
func ForRound(round int) []Mission {
	if round < 1 {
		round = 1
	}
	if round > maxRound {
		round = maxRound
	}
	out := make([]Mission, 0, 2)
	for i := 0; i < 2; i++ {
		m := catalog[(round-1+i)%len(catalog)](round)
		m.ID = uuid.NewString()
		m.Status = StatusActive
		out = append(out, m)
	}
	return out
}

// Progress re-evaluates m against obs. Missions that are no longer active are
// returned unchanged.
func Progress(m Mission, obs Observation) Mission {
	if m.Status != StatusActive {
		return m
	}

	switch m.Type {
	case TypeTradeCount:
		m.Progress = float64(obs.TradesThisRound)
	case TypeDiversify:
		m.Progress = float64(obs.LongPositions)
	case TypeNetWorthGrowth:
		m.Progress = 0
		if obs.RoundStartNetWorth > 0 {
			m.Progress = (obs.NetWorth - obs.RoundStartNetWorth) / obs.RoundStartNetWorth * 100
		}
	case TypeShortPosition:
		m.Progress = float64(obs.ShortPositions)
	case TypeCashReserve:
		// Short proceeds are owed back and do not count as free cash.
		m.Progress = 0
		if obs.NetWorth > 0 && obs.LongValue/obs.NetWorth >= minInvestedShare {
			m.Progress = (obs.Cash - obs.ShortValue) / obs.NetWorth
		}
	default:
		return m
	}

	if m.Progress >= m.Target {
		m.Status = StatusCompleted
	}
	return m
}

// Bonus returns the cash credited when m completes with the given cash balance.
func Bonus(m Mission, cash float64) float64 {
	if m.RewardType != RewardCashBonus || cash <= 0 {
		return 0
	}
	return cash * m.RewardValue
}
