package game

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zappabad/marketrush/internal/market"
	"github.com/zappabad/marketrush/internal/mission"
	"github.com/zappabad/marketrush/internal/news"
	"github.com/zappabad/marketrush/internal/portfolio"
)

var epoch = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e := NewEngine(cfg, rand.New(rand.NewSource(42)))
	e.SetClock(func() time.Time { return epoch })
	return e
}

func started(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e := newTestEngine(t, cfg)
	_, err := e.Dispatch(StartGame{})
	require.NoError(t, err)
	return e
}

// advance ticks in chunks the engine processes without capping.
func advance(t *testing.T, e *Engine, d time.Duration) Outcome {
	t.Helper()
	var all Outcome
	chunk := e.cfg.Step * time.Duration(e.cfg.MaxStepsPerTick)
	for d > 0 {
		step := chunk
		if d < step {
			step = d
		}
		out, err := e.Dispatch(Tick{Elapsed: step})
		require.NoError(t, err)
		all.Notifications = append(all.Notifications, out.Notifications...)
		all.News = append(all.News, out.News...)
		d -= step
	}
	return all
}

func kinds(ns []Notification) []NotificationKind {
	out := make([]NotificationKind, len(ns))
	for i, n := range ns {
		out[i] = n.Kind
	}
	return out
}

func TestStartGame(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	require.Equal(t, PhaseNotStarted, e.State().Phase())

	out, err := e.Dispatch(StartGame{})
	require.NoError(t, err)
	assert.Equal(t, []NotificationKind{NotifyGameStarted}, kinds(out.Notifications))

	s := e.State()
	assert.Equal(t, PhaseRunning, s.Phase())
	assert.Equal(t, 10000.0, s.Cash)
	assert.Empty(t, s.Holdings)
	assert.Equal(t, 1, s.Round)
	assert.Equal(t, 60*time.Second, s.TimeRemaining)
	assert.Equal(t, 100.0, s.MarketHealth)
	assert.Empty(t, s.News)
	assert.Empty(t, s.ActiveNews)
	require.Len(t, s.NetWorthHistory, 1)
	assert.Equal(t, NetWorthEntry{Round: 0, Value: 10000, Timestamp: epoch}, s.NetWorthHistory[0])
	assert.Len(t, s.ActiveMissions, 2)
	assert.Equal(t, 1, s.Density.MinEvents)
	assert.Positive(t, e.Pending(), "round events should be queued")
}

func TestDispatch_EveryActionIsHandled(t *testing.T) {
	actions := []Action{
		StartGame{},
		PauseGame{},
		ResumeGame{},
		ExecuteTrade{Asset: "stock", Action: portfolio.ActionBuy, Amount: 1},
		Tick{Elapsed: time.Second},
		EmitNews{},
		EmitFollowUp{Origin: news.Item{ID: "x", Title: "t", ImpactedAssets: []market.AssetID{"stock"}}},
		ExpireNews{ID: "x"},
		NextRound{},
		EndGame{},
	}
	e := newTestEngine(t, DefaultConfig())
	for _, a := range actions {
		_, err := e.Dispatch(a)
		assert.False(t, errors.Is(err, ErrUnknownAction), "%T not handled", a)
	}
}

type bogusAction struct{}

func (bogusAction) isAction() {}

func TestDispatch_UnknownAction(t *testing.T) {
	e := started(t, DefaultConfig())
	before := e.State()

	_, err := e.Dispatch(bogusAction{})
	require.ErrorIs(t, err, ErrUnknownAction)
	_, err = e.Dispatch(nil)
	require.ErrorIs(t, err, ErrUnknownAction)
	assert.Equal(t, before, e.State())
}

func TestNextRound_GameOverOnTenthCall(t *testing.T) {
	e := started(t, DefaultConfig())

	for call := 1; call <= 10; call++ {
		out, err := e.Dispatch(NextRound{})
		require.NoError(t, err)
		s := e.State()
		if call < 10 {
			require.False(t, s.IsGameOver, "game over early at call %d", call)
			require.Equal(t, call+1, s.Round)
			require.Empty(t, out.Notifications)
		} else {
			require.True(t, s.IsGameOver)
			require.True(t, s.IsPaused)
			require.Equal(t, 10, s.Round)
			require.Equal(t, []NotificationKind{NotifyGameEnded}, kinds(out.Notifications))
		}
	}

	_, err := e.Dispatch(NextRound{})
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestNextRound_ResetsRound(t *testing.T) {
	e := started(t, DefaultConfig())
	_, err := e.Dispatch(EmitNews{})
	require.NoError(t, err)
	_, err = e.Dispatch(ExecuteTrade{Asset: "gold", Action: portfolio.ActionBuy, Amount: 1})
	require.NoError(t, err)
	advance(t, e, 3*time.Second)

	_, err = e.Dispatch(NextRound{})
	require.NoError(t, err)

	s := e.State()
	assert.Equal(t, 2, s.Round)
	assert.Equal(t, 60*time.Second, s.TimeRemaining)
	assert.Empty(t, s.ActiveNews)
	for _, it := range s.News {
		assert.False(t, it.IsActive)
	}
	assert.Zero(t, s.TradesThisRound)
	assert.Len(t, s.ActiveMissions, 2)
	assert.Equal(t, 2, len(s.CompletedMissions)+len(s.FailedMissions))
	last := s.NetWorthHistory[len(s.NetWorthHistory)-1]
	assert.Equal(t, 2, last.Round)
	assert.InDelta(t, s.NetWorth(), last.Value, 1e-9)
}

func TestNetWorthHistory_RoundsNonDecreasing(t *testing.T) {
	e := started(t, DefaultConfig())
	prevLen := 0
	for r := 0; r < 9; r++ {
		advance(t, e, 12*time.Second)
		_, err := e.Dispatch(NextRound{})
		require.NoError(t, err)

		h := e.State().NetWorthHistory
		require.GreaterOrEqual(t, len(h), prevLen)
		prevLen = len(h)
		for i := 1; i < len(h); i++ {
			require.LessOrEqual(t, h[i-1].Round, h[i].Round)
		}
	}
}

func TestTick_FixedStepAccumulator(t *testing.T) {
	e := started(t, DefaultConfig())

	_, err := e.Dispatch(Tick{Elapsed: 150 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, e.State().Clock)

	_, err = e.Dispatch(Tick{Elapsed: 50 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, e.State().Clock)
	assert.Equal(t, 60*time.Second-200*time.Millisecond, e.State().TimeRemaining)

	_, err = e.Dispatch(Tick{Elapsed: -time.Second})
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, e.State().Clock)
}

func TestTick_CapsCatchUp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxStepsPerTick = 10
	e := started(t, cfg)

	_, err := e.Dispatch(Tick{Elapsed: time.Hour})
	require.NoError(t, err)
	assert.Equal(t, time.Second, e.State().Clock)
}

func TestTick_RoundEndPauses(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RoundDuration = 10 * time.Second
	e := started(t, cfg)

	out := advance(t, e, 12*time.Second)
	s := e.State()
	assert.Equal(t, time.Duration(0), s.TimeRemaining)
	assert.Equal(t, 10*time.Second, s.Clock)
	assert.True(t, s.IsPaused)
	assert.False(t, s.IsGameOver)
	assert.Equal(t, PhaseRoundOver, s.Phase())

	ended := 0
	for _, n := range out.Notifications {
		if n.Kind == NotifyRoundEnded {
			ended++
		}
	}
	assert.Equal(t, 1, ended)

	_, err := e.Dispatch(ResumeGame{})
	assert.ErrorIs(t, err, ErrRoundOver)
	_, err = e.Dispatch(ExecuteTrade{Asset: "stock", Action: portfolio.ActionBuy, Amount: 1})
	assert.ErrorIs(t, err, ErrGameNotRunning)

	_, err = e.Dispatch(NextRound{})
	require.NoError(t, err)
	assert.Equal(t, PhaseRunning, e.State().Phase())
}

func TestPauseResume(t *testing.T) {
	e := started(t, DefaultConfig())
	before := e.State()

	_, err := e.Dispatch(PauseGame{})
	require.NoError(t, err)
	paused := e.State()
	assert.True(t, paused.IsPaused)
	paused.IsPaused = false
	assert.Equal(t, before, paused, "pause must only toggle IsPaused")

	advance(t, e, 5*time.Second)
	assert.Equal(t, time.Duration(0), e.State().Clock)

	_, err = e.Dispatch(ExecuteTrade{Asset: "stock", Action: portfolio.ActionBuy, Amount: 1})
	assert.ErrorIs(t, err, ErrGameNotRunning)

	_, err = e.Dispatch(ResumeGame{})
	require.NoError(t, err)
	assert.Equal(t, before, e.State())
}

func TestPauseStopsExpiry(t *testing.T) {
	e := started(t, DefaultConfig())
	out, err := e.Dispatch(EmitNews{})
	require.NoError(t, err)
	require.Len(t, out.News, 1)
	id := out.News[0].ID

	isActive := func() bool {
		for _, it := range e.State().ActiveNews {
			if it.ID == id {
				return true
			}
		}
		return false
	}

	advance(t, e, 10*time.Second)
	require.True(t, isActive())

	_, err = e.Dispatch(PauseGame{})
	require.NoError(t, err)
	advance(t, e, 30*time.Second)
	require.True(t, isActive(), "expired while paused")

	_, err = e.Dispatch(ResumeGame{})
	require.NoError(t, err)
	advance(t, e, 4900*time.Millisecond)
	require.True(t, isActive())
	advance(t, e, 100*time.Millisecond)
	assert.False(t, isActive())

	for _, it := range e.State().News {
		if it.ID == id {
			assert.False(t, it.IsActive)
		}
	}
}

func TestChainedNewsFollowsUp(t *testing.T) {
	e := started(t, DefaultConfig())
	out, err := e.Dispatch(EmitNews{Chained: true})
	require.NoError(t, err)
	origin := out.News[0]
	require.NotEmpty(t, origin.ChainID)
	require.Equal(t, 1, origin.ChainSequence)

	advance(t, e, 16*time.Second)

	var follow *news.Item
	for _, it := range e.State().News {
		if it.ChainID == origin.ChainID && it.ChainSequence == 2 {
			it := it
			follow = &it
		}
	}
	require.NotNil(t, follow, "follow-up not emitted")
	assert.Equal(t, origin.ImpactedAssets, follow.ImpactedAssets)
	assert.Equal(t, news.KindFollowUp, follow.Kind)
}

func TestBreakingNewsNotifies(t *testing.T) {
	e := started(t, DefaultConfig())
	for i := 0; i < 50; i++ {
		out, err := e.Dispatch(EmitNews{HighImpact: true})
		require.NoError(t, err)
		require.Len(t, out.News, 1)
		if out.News[0].IsBreaking() {
			require.Equal(t, []NotificationKind{NotifyBreakingNews}, kinds(out.Notifications))
			require.Equal(t, out.News[0].ID, out.Notifications[0].News.ID)
		} else {
			require.Empty(t, out.Notifications)
		}
	}
}

func TestExecuteTrade_Scenario(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	e.SetAssets([]market.Asset{{ID: "stock", Price: 100, PreviousPrice: 100}})
	_, err := e.Dispatch(StartGame{})
	require.NoError(t, err)

	setPrice := func(p float64) { e.state.Assets[0].Price = p }
	trade := func(a portfolio.Action, amount float64) TradeResult {
		t.Helper()
		out, err := e.Dispatch(ExecuteTrade{Asset: "stock", Action: a, Amount: amount})
		require.NoError(t, err)
		require.NotNil(t, out.Trade)
		return *out.Trade
	}

	res := trade(portfolio.ActionBuy, 10)
	assert.InDelta(t, 9000, res.Cash, 1e-9)
	assert.InDelta(t, -1000, res.CashDelta, 1e-9)
	assert.Len(t, e.State().NetWorthHistory, 1, "unchanged net worth is not recorded")

	setPrice(120)
	trade(portfolio.ActionSell, 5)
	s := e.State()
	assert.InDelta(t, 9600, s.Cash, 1e-9)
	assert.Equal(t, portfolio.Holding{Quantity: 5, AverageBuyPrice: 100}, s.Holdings["stock"])
	require.Len(t, s.NetWorthHistory, 2)
	assert.InDelta(t, 10200, s.NetWorthHistory[1].Value, 1e-9)
	assert.Equal(t, 1, s.NetWorthHistory[1].Round)

	trade(portfolio.ActionShort, 2)
	assert.InDelta(t, 9840, e.State().Cash, 1e-9)

	setPrice(150)
	res = trade(portfolio.ActionCover, 2)
	assert.InDelta(t, 9540, res.Cash, 1e-9)
	assert.InDelta(t, 10290, res.NetWorth, 1e-9)
	assert.InDelta(t, 10290, e.NetWorth(), 1e-9)
	assert.Equal(t, 4, e.State().TradesThisRound)
}

func TestExecuteTrade_SmallChangeNotRecorded(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	e.SetAssets([]market.Asset{{ID: "stock", Price: 100}})
	_, err := e.Dispatch(StartGame{})
	require.NoError(t, err)

	_, err = e.Dispatch(ExecuteTrade{Asset: "stock", Action: portfolio.ActionBuy, Amount: 10})
	require.NoError(t, err)

	// 10 units moving 0.5 is 0.05% of 10000
	e.state.Assets[0].Price = 100.5
	_, err = e.Dispatch(ExecuteTrade{Asset: "stock", Action: portfolio.ActionBuy, Amount: 1})
	require.NoError(t, err)
	assert.Len(t, e.State().NetWorthHistory, 1)

	// a further 2 per unit on 11 units crosses 0.1%
	e.state.Assets[0].Price = 102.5
	_, err = e.Dispatch(ExecuteTrade{Asset: "stock", Action: portfolio.ActionBuy, Amount: 1})
	require.NoError(t, err)
	assert.Len(t, e.State().NetWorthHistory, 2)
}

func TestExecuteTrade_Rejections(t *testing.T) {
	e := started(t, DefaultConfig())
	before := e.State()

	cases := []struct {
		name  string
		trade ExecuteTrade
		err   error
	}{
		{"unknown asset", ExecuteTrade{Asset: "tulips", Action: portfolio.ActionBuy, Amount: 1}, ErrUnknownAsset},
		{"insufficient funds", ExecuteTrade{Asset: "crypto", Action: portfolio.ActionBuy, Amount: 1}, portfolio.ErrInsufficientFunds},
		{"insufficient position", ExecuteTrade{Asset: "gold", Action: portfolio.ActionSell, Amount: 1}, portfolio.ErrInsufficientPosition},
		{"nothing to cover", ExecuteTrade{Asset: "oil", Action: portfolio.ActionCover, Amount: 1}, portfolio.ErrInsufficientPosition},
		{"zero amount", ExecuteTrade{Asset: "oil", Action: portfolio.ActionBuy}, portfolio.ErrInvalidAmount},
		{"unknown trade action", ExecuteTrade{Asset: "oil", Action: portfolio.Action(9), Amount: 1}, portfolio.ErrUnknownAction},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := e.Dispatch(tc.trade)
			require.ErrorIs(t, err, tc.err)
			assert.Nil(t, out.Trade)
			assert.Equal(t, before, e.State())
		})
	}
}

func TestExecuteTrade_BeforeStart(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	_, err := e.Dispatch(ExecuteTrade{Asset: "stock", Action: portfolio.ActionBuy, Amount: 1})
	assert.ErrorIs(t, err, ErrGameNotRunning)
}

func TestEndGameIsTerminal(t *testing.T) {
	e := started(t, DefaultConfig())
	advance(t, e, time.Second)

	out, err := e.Dispatch(EndGame{})
	require.NoError(t, err)
	require.Equal(t, []NotificationKind{NotifyGameEnded}, kinds(out.Notifications))
	assert.InDelta(t, e.NetWorth(), out.Notifications[0].NetWorth, 1e-9)

	s := e.State()
	assert.True(t, s.IsGameOver)
	assert.True(t, s.IsPaused)
	assert.Equal(t, PhaseGameOver, s.Phase())
	assert.Zero(t, e.Pending())

	advance(t, e, 5*time.Second)
	assert.Equal(t, s.Clock, e.State().Clock)

	_, err = e.Dispatch(ResumeGame{})
	assert.ErrorIs(t, err, ErrGameNotRunning)
	_, err = e.Dispatch(NextRound{})
	assert.ErrorIs(t, err, ErrGameOver)
	_, err = e.Dispatch(EmitNews{})
	assert.ErrorIs(t, err, ErrGameNotRunning)

	out, err = e.Dispatch(EndGame{})
	require.NoError(t, err)
	assert.Empty(t, out.Notifications)

	_, err = e.Dispatch(StartGame{})
	require.NoError(t, err)
	assert.Equal(t, PhaseRunning, e.State().Phase())
}

func TestMissionsCompleteAndArchive(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NewsChancePerSecond = 0
	e := started(t, cfg)

	types := []mission.Type{e.state.ActiveMissions[0].Type, e.state.ActiveMissions[1].Type}
	require.Equal(t, []mission.Type{mission.TypeTradeCount, mission.TypeDiversify}, types)

	for _, id := range []market.AssetID{"stock", "gold"} {
		_, err := e.Dispatch(ExecuteTrade{Asset: id, Action: portfolio.ActionBuy, Amount: 1})
		require.NoError(t, err)
	}
	cash := e.State().Cash

	out := advance(t, e, time.Second)
	completed := 0
	for _, n := range out.Notifications {
		if n.Kind == NotifyMissionCompleted {
			completed++
			require.NotNil(t, n.Mission)
		}
	}
	assert.Equal(t, 2, completed)

	s := e.State()
	assert.InDelta(t, cash*1.02, s.Cash, 1e-6)
	for _, m := range s.ActiveMissions {
		assert.Equal(t, mission.StatusCompleted, m.Status)
	}

	_, err := e.Dispatch(NextRound{})
	require.NoError(t, err)
	s = e.State()
	assert.Len(t, s.CompletedMissions, 2)
	assert.Empty(t, s.FailedMissions)
	assert.InDelta(t, 0.02, s.MissionRewards[mission.TypeTradeCount], 1e-9)
	assert.InDelta(t, 100, s.MissionRewards[mission.TypeDiversify], 1e-9)
}

func TestEndGameArchivesMissions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NewsChancePerSecond = 0
	e := started(t, cfg)

	require.Equal(t, mission.TypeTradeCount, e.state.ActiveMissions[0].Type)
	_, err := e.Dispatch(ExecuteTrade{Asset: "stock", Action: portfolio.ActionBuy, Amount: 1})
	require.NoError(t, err)
	advance(t, e, time.Second)
	require.Equal(t, mission.StatusCompleted, e.State().ActiveMissions[0].Status)

	_, err = e.Dispatch(EndGame{})
	require.NoError(t, err)

	s := e.State()
	assert.Empty(t, s.ActiveMissions)
	require.Len(t, s.CompletedMissions, 1)
	assert.Equal(t, mission.TypeTradeCount, s.CompletedMissions[0].Type)
	assert.InDelta(t, 0.02, s.MissionRewards[mission.TypeTradeCount], 1e-9)
	require.Len(t, s.FailedMissions, 1)
	assert.Equal(t, mission.TypeDiversify, s.FailedMissions[0].Type)
}

func TestMissionsFailOnRoundTransition(t *testing.T) {
	e := started(t, DefaultConfig())
	_, err := e.Dispatch(NextRound{})
	require.NoError(t, err)

	s := e.State()
	require.Len(t, s.FailedMissions, 2)
	for _, m := range s.FailedMissions {
		assert.Equal(t, mission.StatusFailed, m.Status)
	}
	assert.Empty(t, s.MissionRewards)
}

func TestPeriodicSnapshot(t *testing.T) {
	e := started(t, DefaultConfig())
	advance(t, e, 5*time.Second)

	h := e.State().NetWorthHistory
	require.Len(t, h, 2)
	assert.Equal(t, 1, h[1].Round)
	assert.Equal(t, epoch.Add(5*time.Second), h[1].Timestamp)
}

func TestSimulationStaysInBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HealthDrift = 500
	cfg.NewsChancePerSecond = 1
	e := started(t, cfg)

	for round := 1; round <= 10; round++ {
		advance(t, e, 61*time.Second)
		s := e.State()
		require.GreaterOrEqual(t, s.MarketHealth, 0.0)
		require.LessOrEqual(t, s.MarketHealth, 100.0)
		for _, a := range s.Assets {
			require.GreaterOrEqual(t, a.Price, 0.1)
			require.LessOrEqual(t, a.Price, 100000.0)
		}
		_, err := e.Dispatch(NextRound{})
		require.NoError(t, err)
	}
	assert.True(t, e.State().IsGameOver)
	assert.NotEmpty(t, e.State().News)
}

func TestCloneIsIndependent(t *testing.T) {
	e := started(t, DefaultConfig())
	_, err := e.Dispatch(ExecuteTrade{Asset: "stock", Action: portfolio.ActionBuy, Amount: 1})
	require.NoError(t, err)

	snap := e.State()
	snap.Holdings["stock"] = portfolio.Holding{Quantity: 999}
	snap.Assets[0].Price = 1
	snap.ActiveMissions[0].Status = mission.StatusFailed
	snap.NetWorthHistory[0].Value = 0

	s := e.State()
	assert.Equal(t, 1.0, s.Holdings["stock"].Quantity)
	assert.NotEqual(t, 1.0, s.Assets[0].Price)
	assert.Equal(t, mission.StatusActive, s.ActiveMissions[0].Status)
	assert.Equal(t, 10000.0, s.NetWorthHistory[0].Value)
}

func TestConfigDefaults(t *testing.T) {
	cfg := NewEngine(Config{}, nil).Config()
	d := DefaultConfig()
	assert.Equal(t, d.StartingCash, cfg.StartingCash)
	assert.Equal(t, d.Rounds, cfg.Rounds)
	assert.Equal(t, d.RoundDuration, cfg.RoundDuration)
	assert.Equal(t, d.Step, cfg.Step)
	assert.Equal(t, d.PriceInterval, cfg.PriceInterval)
	assert.Equal(t, d.SnapshotInterval, cfg.SnapshotInterval)
}
