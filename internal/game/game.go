// Package game holds the round and session state machine.
//
// Engine is the only place game state changes. It is not safe for
// concurrent use; internal/game/service owns one from a single goroutine.
package game

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/zappabad/marketrush/internal/market"
	"github.com/zappabad/marketrush/internal/mission"
	"github.com/zappabad/marketrush/internal/news"
	"github.com/zappabad/marketrush/internal/portfolio"
	"github.com/zappabad/marketrush/internal/pricing"
	"github.com/zappabad/marketrush/internal/schedule"
)

var (
	ErrUnknownAction  = errors.New("unknown action")
	ErrUnknownAsset   = errors.New("unknown asset")
	ErrGameNotRunning = errors.New("game not running")
	ErrGameOver       = errors.New("game over")
	ErrRoundOver      = errors.New("round over")
)

const (
	initialHealth     = 100
	healthNewsWeight  = 2
	historyMinChange  = 0.001
	roundZeroSnapshot = 0
)

// Engine advances a single game session.
type Engine struct {
	cfg    Config
	assets []market.Asset
	rng    *rand.Rand
	gen    *news.Generator
	queue  *schedule.Queue[Action]
	now    func() time.Time

	state State
	epoch time.Time
	acc   time.Duration

	roundStart   time.Duration
	lastPrice    time.Duration
	lastHealth   time.Duration
	lastSnapshot time.Duration
	lastMission  time.Duration
}

// NewEngine creates an Engine trading the default assets.
// A nil rng is seeded from the wall clock.
func NewEngine(cfg Config, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e := &Engine{
		cfg:    cfg.withDefaults(),
		assets: market.DefaultAssets(),
		rng:    rng,
		gen:    news.NewGenerator(rng),
		queue:  schedule.NewQueue[Action](),
		now:    time.Now,
	}
	e.gen.SetClock(e.simNow)
	e.state = State{Assets: market.DefaultAssets()}
	return e
}

// SetClock replaces the wall clock used to anchor timestamps.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// SetAssets replaces the asset set used by the next StartGame.
func (e *Engine) SetAssets(assets []market.Asset) {
	e.assets = append([]market.Asset(nil), assets...)
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// State returns a deep copy of the current state.
func (e *Engine) State() State {
	return e.state.Clone()
}

// NetWorth values the portfolio at current prices.
func (e *Engine) NetWorth() float64 {
	return e.state.NetWorth()
}

// Phase returns the current phase without copying the state.
func (e *Engine) Phase() Phase {
	return e.state.Phase()
}

// Pending returns the number of scheduled queue entries.
func (e *Engine) Pending() int {
	return e.queue.Len()
}

func (e *Engine) simNow() time.Time {
	return e.epoch.Add(e.state.Clock)
}

// Dispatch applies a to the game state.
func (e *Engine) Dispatch(a Action) (Outcome, error) {
	var out Outcome
	err := e.apply(a, &out)
	return out, err
}

func (e *Engine) apply(a Action, out *Outcome) error {
	switch a := a.(type) {
	case StartGame:
		e.start(out)
		return nil
	case PauseGame:
		return e.pause()
	case ResumeGame:
		return e.resume()
	case EndGame:
		return e.end(out)
	case NextRound:
		return e.nextRound(out)
	case ExecuteTrade:
		return e.trade(a, out)
	case Tick:
		e.tick(a.Elapsed, out)
		return nil
	case EmitNews:
		return e.emitNews(a, out)
	case EmitFollowUp:
		return e.emitFollowUp(a, out)
	case ExpireNews:
		e.expireNews(a.ID)
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnknownAction, a)
	}
}

func (e *Engine) start(out *Outcome) {
	e.epoch = e.now()
	e.queue.Reset()
	e.acc = 0
	e.roundStart, e.lastPrice, e.lastHealth, e.lastSnapshot, e.lastMission = 0, 0, 0, 0, 0

	cash := e.cfg.StartingCash
	e.state = State{
		Assets:        append([]market.Asset(nil), e.assets...),
		Cash:          cash,
		Holdings:      portfolio.Holdings{},
		Round:         1,
		TimeRemaining: e.cfg.RoundDuration,
		Started:       true,
		NetWorthHistory: []NetWorthEntry{
			{Round: roundZeroSnapshot, Value: cash, Timestamp: e.epoch},
		},
		MarketHealth:       initialHealth,
		ActiveMissions:     mission.ForRound(1),
		MissionRewards:     map[mission.Type]float64{},
		RoundStartNetWorth: cash,
	}
	e.scheduleRound()

	out.notify(Notification{
		Kind:     NotifyGameStarted,
		Round:    1,
		Message:  fmt.Sprintf("Game started with $%.2f", cash),
		NetWorth: cash,
		Time:     e.epoch,
	})
}

func (e *Engine) pause() error {
	if !e.state.Started || e.state.IsGameOver {
		return ErrGameNotRunning
	}
	e.state.IsPaused = true
	return nil
}

func (e *Engine) resume() error {
	if !e.state.Started || e.state.IsGameOver {
		return ErrGameNotRunning
	}
	if e.state.TimeRemaining <= 0 {
		return ErrRoundOver
	}
	e.state.IsPaused = false
	e.acc = 0
	return nil
}

func (e *Engine) end(out *Outcome) error {
	if !e.state.Started {
		return ErrGameNotRunning
	}
	if e.state.IsGameOver {
		return nil
	}
	e.archiveMissions()
	e.finish(out)
	return nil
}

func (e *Engine) finish(out *Outcome) {
	s := &e.state
	s.IsPaused = true
	s.IsGameOver = true
	e.queue.Reset()

	nw := s.NetWorth()
	out.notify(Notification{
		Kind:     NotifyGameEnded,
		Round:    s.Round,
		Message:  fmt.Sprintf("Game over. Final net worth $%.2f", nw),
		NetWorth: nw,
		Time:     e.simNow(),
	})
}

func (e *Engine) nextRound(out *Outcome) error {
	s := &e.state
	if !s.Started {
		return ErrGameNotRunning
	}
	if s.IsGameOver {
		return ErrGameOver
	}

	e.archiveMissions()
	e.clearActiveNews()

	if s.Round >= e.cfg.Rounds {
		e.finish(out)
		return nil
	}

	s.Round++
	s.TimeRemaining = e.cfg.RoundDuration
	s.IsPaused = false
	s.TradesThisRound = 0
	s.ActiveMissions = mission.ForRound(s.Round)

	nw := s.NetWorth()
	s.RoundStartNetWorth = nw
	e.snapshot(nw)

	e.queue.Reset()
	e.acc = 0
	e.roundStart = s.Clock
	e.scheduleRound()
	return nil
}

func (e *Engine) archiveMissions() {
	s := &e.state
	for _, m := range s.ActiveMissions {
		if m.Status == mission.StatusCompleted {
			s.CompletedMissions = append(s.CompletedMissions, m)
			s.MissionRewards[m.Type] += m.RewardValue
			continue
		}
		m.Status = mission.StatusFailed
		s.FailedMissions = append(s.FailedMissions, m)
	}
	s.ActiveMissions = nil
}

func (e *Engine) trade(a ExecuteTrade, out *Outcome) error {
	s := &e.state
	if !s.Running() {
		return fmt.Errorf("execute trade: %w", ErrGameNotRunning)
	}
	asset, ok := s.Asset(a.Asset)
	if !ok {
		return fmt.Errorf("execute trade %q: %w", a.Asset, ErrUnknownAsset)
	}

	ledger, rep, err := portfolio.Apply(
		portfolio.Ledger{Cash: s.Cash, Holdings: s.Holdings},
		portfolio.Trade{Asset: a.Asset, Action: a.Action, Amount: a.Amount, Price: asset.Price},
	)
	if err != nil {
		return fmt.Errorf("execute trade %s %q: %w", a.Action, a.Asset, err)
	}

	s.Cash = ledger.Cash
	s.Holdings = ledger.Holdings
	s.TradesThisRound++

	nw := s.NetWorth()
	if e.changedEnough(nw) {
		e.snapshot(nw)
	}

	out.Trade = &TradeResult{
		Asset:     a.Asset,
		Action:    a.Action,
		Amount:    a.Amount,
		Price:     asset.Price,
		CashDelta: rep.CashDelta,
		Cash:      s.Cash,
		Holding:   rep.Holding,
		NetWorth:  nw,
	}
	return nil
}

func (e *Engine) changedEnough(nw float64) bool {
	h := e.state.NetWorthHistory
	if len(h) == 0 {
		return true
	}
	last := h[len(h)-1].Value
	if last == 0 {
		return nw != 0
	}
	return math.Abs(nw-last)/math.Abs(last) > historyMinChange
}

func (e *Engine) snapshot(nw float64) {
	s := &e.state
	s.NetWorthHistory = append(s.NetWorthHistory, NetWorthEntry{
		Round:     s.Round,
		Value:     nw,
		Timestamp: e.simNow(),
	})
}

func (e *Engine) tick(elapsed time.Duration, out *Outcome) {
	if elapsed <= 0 || !e.state.Running() {
		return
	}
	e.acc += elapsed
	for steps := 0; e.acc >= e.cfg.Step; steps++ {
		if steps == e.cfg.MaxStepsPerTick || !e.state.Running() {
			e.acc = 0
			return
		}
		e.acc -= e.cfg.Step
		e.step(out)
	}
}

// step advances one fixed step. The order of the phases is part of the model.
func (e *Engine) step(out *Outcome) {
	s := &e.state
	s.Clock += e.cfg.Step
	s.TimeRemaining -= e.cfg.Step
	if s.TimeRemaining < 0 {
		s.TimeRemaining = 0
	}

	for _, a := range e.queue.PopDue(s.Clock) {
		// queued entries are internal and only fail on a finished game
		_ = e.apply(a, out)
	}

	if s.Clock-e.lastPrice >= e.cfg.PriceInterval {
		e.lastPrice = s.Clock
		s.Assets = pricing.ApplyAll(s.Assets, s.ActiveNews, s.MarketHealth, e.rng)
	}

	if e.rng.Float64() < e.cfg.NewsChancePerSecond*e.cfg.Step.Seconds() {
		_ = e.emitNews(EmitNews{HighImpact: schedule.ShouldBeHighImpactEvent(s.Density, e.rng)}, out)
	}

	if s.Clock-e.lastHealth >= e.cfg.HealthInterval {
		e.lastHealth = s.Clock
		e.rollHealth()
	}

	if s.Clock-e.lastSnapshot >= e.cfg.SnapshotInterval {
		e.lastSnapshot = s.Clock
		e.snapshot(s.NetWorth())
	}

	if s.Clock-e.lastMission >= e.cfg.MissionInterval {
		e.lastMission = s.Clock
		e.checkMissions(out)
	}

	if s.TimeRemaining == 0 {
		s.IsPaused = true
		nw := s.NetWorth()
		out.notify(Notification{
			Kind:     NotifyRoundEnded,
			Round:    s.Round,
			Message:  fmt.Sprintf("Round %d complete", s.Round),
			NetWorth: nw,
			Time:     e.simNow(),
		})
	}
}

func (e *Engine) rollHealth() {
	s := &e.state
	delta := (e.rng.Float64()*2 - 1) * e.cfg.HealthDrift
	if n := len(s.Assets); n > 0 {
		for _, it := range s.ActiveNews {
			share := float64(len(it.ImpactedAssets)) / float64(n)
			delta += it.Sentiment.Sign() * it.Magnitude * healthNewsWeight * share
		}
	}
	s.MarketHealth = math.Max(0, math.Min(100, s.MarketHealth+delta))
}

func (e *Engine) observe() mission.Observation {
	s := &e.state
	long, short := s.Holdings.Counts()
	longValue, shortValue := portfolio.Exposure(s.Holdings, market.Prices(s.Assets))
	return mission.Observation{
		Cash:               s.Cash,
		NetWorth:           s.NetWorth(),
		RoundStartNetWorth: s.RoundStartNetWorth,
		TradesThisRound:    s.TradesThisRound,
		LongPositions:      long,
		ShortPositions:     short,
		LongValue:          longValue,
		ShortValue:         shortValue,
	}
}

func (e *Engine) checkMissions(out *Outcome) {
	s := &e.state
	obs := e.observe()
	for i, m := range s.ActiveMissions {
		next := mission.Progress(m, obs)
		if m.Status == mission.StatusActive && next.Status == mission.StatusCompleted {
			s.Cash += mission.Bonus(next, s.Cash)
			done := next
			out.notify(Notification{
				Kind:     NotifyMissionCompleted,
				Round:    s.Round,
				Message:  fmt.Sprintf("Mission complete: %s (%s)", next.Title, next.Reward),
				NetWorth: s.NetWorth(),
				Time:     e.simNow(),
				Mission:  &done,
			})
		}
		s.ActiveMissions[i] = next
	}
}

func (e *Engine) scheduleRound() {
	s := &e.state
	d := schedule.DensityForRound(s.Round)
	s.Density = d

	latest := e.roundStart + e.cfg.RoundDuration - schedule.TailBuffer
	count := schedule.EventCount(d, e.rng)
	for _, slot := range schedule.ScheduleRoundEvents(count, e.cfg.RoundDuration, d, e.rng) {
		at := e.roundStart + slot.Offset
		if schedule.ShouldBeDelayedEvent(d, e.rng) {
			at += schedule.DelayFor(d, e.rng)
			if at > latest {
				at = latest
			}
		}
		e.queue.Push(at, EmitNews{
			HighImpact: slot.Cliffhanger || schedule.ShouldBeHighImpactEvent(d, e.rng),
			Chained:    schedule.ShouldBeChainedEvent(d, e.rng),
		})
	}
}

func (e *Engine) emitNews(a EmitNews, out *Outcome) error {
	s := &e.state
	if !s.Started || s.IsGameOver {
		return ErrGameNotRunning
	}
	item := e.gen.Generate(s.Assets, s.Round, a.HighImpact)
	if a.Chained {
		item = e.gen.StartChain(item)
		e.queue.Push(s.Clock+e.gen.FollowUpDelay(), EmitFollowUp{Origin: item})
	}
	e.publish(item, out)
	return nil
}

func (e *Engine) emitFollowUp(a EmitFollowUp, out *Outcome) error {
	s := &e.state
	if !s.Started || s.IsGameOver {
		return ErrGameNotRunning
	}
	e.publish(e.gen.FollowUp(a.Origin), out)
	return nil
}

func (e *Engine) publish(item news.Item, out *Outcome) {
	s := &e.state
	s.News = append(s.News, item)
	s.ActiveNews = append(s.ActiveNews, item)
	e.queue.Push(s.Clock+news.ExpiryDelay, ExpireNews{ID: item.ID})
	out.News = append(out.News, item)

	if item.IsBreaking() {
		it := item
		out.notify(Notification{
			Kind:    NotifyBreakingNews,
			Round:   s.Round,
			Message: "BREAKING: " + item.Title,
			Time:    item.Timestamp,
			News:    &it,
		})
	}
}

func (e *Engine) expireNews(id string) {
	s := &e.state
	for i, it := range s.ActiveNews {
		if it.ID == id {
			s.ActiveNews = append(s.ActiveNews[:i], s.ActiveNews[i+1:]...)
			break
		}
	}
	e.markInactive(id)
}

func (e *Engine) markInactive(id string) {
	s := &e.state
	for i := len(s.News) - 1; i >= 0; i-- {
		if s.News[i].ID == id {
			s.News[i].IsActive = false
			return
		}
	}
}

func (e *Engine) clearActiveNews() {
	for _, it := range e.state.ActiveNews {
		e.markInactive(it.ID)
	}
	e.state.ActiveNews = nil
}
