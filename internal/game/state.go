package game

import (
	"time"

	"github.com/zappabad/marketrush/internal/market"
	"github.com/zappabad/marketrush/internal/mission"
	"github.com/zappabad/marketrush/internal/news"
	"github.com/zappabad/marketrush/internal/portfolio"
	"github.com/zappabad/marketrush/internal/schedule"
)

// Phase is a coarse view of where the game is.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseRunning    Phase = "running"
	PhasePaused     Phase = "paused"
	PhaseRoundOver  Phase = "round_over"
	PhaseGameOver   Phase = "game_over"
)

// NetWorthEntry is one point of the net worth history.
type NetWorthEntry struct {
	Round     int
	Value     float64
	Timestamp time.Time
}

// State is the whole game session.
type State struct {
	Assets   []market.Asset
	Cash     float64
	Holdings portfolio.Holdings

	Round         int
	TimeRemaining time.Duration
	Started       bool
	IsPaused      bool
	IsGameOver    bool

	// News is the permanent log; ActiveNews is what currently moves prices.
	News       []news.Item
	ActiveNews []news.Item

	NetWorthHistory []NetWorthEntry
	// MarketHealth is in [0,100].
	MarketHealth float64
	Density      schedule.EventDensity

	ActiveMissions    []mission.Mission
	CompletedMissions []mission.Mission
	FailedMissions    []mission.Mission
	MissionRewards    map[mission.Type]float64

	// Clock is simulated time since the game started.
	Clock              time.Duration
	TradesThisRound    int
	RoundStartNetWorth float64
}

// Phase derives the current phase from the state flags.
func (s State) Phase() Phase {
	switch {
	case !s.Started:
		return PhaseNotStarted
	case s.IsGameOver:
		return PhaseGameOver
	case s.TimeRemaining <= 0:
		return PhaseRoundOver
	case s.IsPaused:
		return PhasePaused
	default:
		return PhaseRunning
	}
}

// Running reports whether simulated time is advancing.
func (s State) Running() bool {
	return s.Phase() == PhaseRunning
}

// NetWorth values the portfolio at current prices.
func (s State) NetWorth() float64 {
	return portfolio.NetWorth(s.Cash, s.Holdings, market.Prices(s.Assets))
}

// Asset looks up an asset by id.
func (s State) Asset(id market.AssetID) (market.Asset, bool) {
	return market.Find(s.Assets, id)
}

// Clone returns a deep copy. News items are shared by value and their
// impacted asset slices are never modified after emission.
func (s State) Clone() State {
	c := s
	c.Assets = append([]market.Asset(nil), s.Assets...)
	if s.Holdings != nil {
		c.Holdings = s.Holdings.Clone()
	}
	c.News = append([]news.Item(nil), s.News...)
	c.ActiveNews = append([]news.Item(nil), s.ActiveNews...)
	c.NetWorthHistory = append([]NetWorthEntry(nil), s.NetWorthHistory...)
	c.ActiveMissions = append([]mission.Mission(nil), s.ActiveMissions...)
	c.CompletedMissions = append([]mission.Mission(nil), s.CompletedMissions...)
	c.FailedMissions = append([]mission.Mission(nil), s.FailedMissions...)
	if s.MissionRewards != nil {
		c.MissionRewards = make(map[mission.Type]float64, len(s.MissionRewards))
		for k, v := range s.MissionRewards {
			c.MissionRewards[k] = v
		}
	}
	return c
}
