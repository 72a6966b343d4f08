// Package service runs a game engine on its own goroutine.
package service

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zappabad/marketrush/internal/game"
	"github.com/zappabad/marketrush/internal/market"
	"github.com/zappabad/marketrush/internal/observability"
	"github.com/zappabad/marketrush/internal/portfolio"
	"github.com/zappabad/marketrush/internal/score"
)

// Deps are the collaborators of a Service. Every field is optional.
type Deps struct {
	Store   score.Store
	Metrics *observability.Metrics
	Logger  *slog.Logger
	Rand    *rand.Rand
	Now     func() time.Time
}

type command struct {
	action  game.Action
	advance time.Duration
	respCh  chan<- response
}

type response struct {
	outcome game.Outcome
	err     error
}

// Service owns a game engine. All mutation happens on one goroutine;
// readers get cloned snapshots.
type Service struct {
	cfg     Config
	engine  *game.Engine
	store   score.Store
	metrics *observability.Metrics
	logger  *slog.Logger
	now     func() time.Time

	cmdCh          chan command
	externalEvents chan game.Notification
	droppedEvents  atomic.Int64

	snapshot atomic.Pointer[game.State]

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewService creates a Service and starts its loop.
func NewService(cfg Config, deps Deps) *Service {
	if cfg.CommandBuffer <= 0 {
		cfg.CommandBuffer = DefaultConfig().CommandBuffer
	}
	if cfg.ExternalEventBuffer <= 0 {
		cfg.ExternalEventBuffer = DefaultConfig().ExternalEventBuffer
	}
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = DefaultConfig().SubmitTimeout
	}
	if deps.Store == nil {
		deps.Store = score.NewNoopStore()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	engine := game.NewEngine(cfg.Game, deps.Rand)
	engine.SetClock(deps.Now)

	s := &Service{
		cfg:            cfg,
		engine:         engine,
		store:          deps.Store,
		metrics:        deps.Metrics,
		logger:         deps.Logger.With("component", "game"),
		now:            deps.Now,
		cmdCh:          make(chan command, cfg.CommandBuffer),
		externalEvents: make(chan game.Notification, cfg.ExternalEventBuffer),
		closed:         make(chan struct{}),
	}
	s.storeSnapshot()

	s.wg.Add(1)
	go s.run()

	return s
}

func (s *Service) run() {
	defer s.wg.Done()
	defer close(s.externalEvents)

	var frames <-chan time.Time
	if s.cfg.FrameInterval > 0 {
		t := time.NewTicker(s.cfg.FrameInterval)
		defer t.Stop()
		frames = t.C
	}
	last := s.now()

	for {
		select {
		case <-s.closed:
			return
		case cmd := <-s.cmdCh:
			s.processCommand(cmd)
		case <-frames:
			now := s.now()
			elapsed := now.Sub(last)
			last = now
			if s.engine.Phase() != game.PhaseRunning {
				continue
			}
			s.apply(game.Tick{Elapsed: elapsed})
		}
	}
}

func (s *Service) processCommand(cmd command) {
	var resp response
	if cmd.action != nil {
		resp.outcome, resp.err = s.apply(cmd.action)
	} else {
		resp.outcome = s.advance(cmd.advance)
	}
	if cmd.respCh != nil {
		cmd.respCh <- resp
	}
}

// advance feeds d of simulated time in chunks the engine will not cap.
func (s *Service) advance(d time.Duration) game.Outcome {
	cfg := s.engine.Config()
	chunk := cfg.Step * time.Duration(cfg.MaxStepsPerTick)

	var all game.Outcome
	for d > 0 && s.engine.Phase() == game.PhaseRunning {
		step := min(chunk, d)
		out, _ := s.apply(game.Tick{Elapsed: step})
		all.Notifications = append(all.Notifications, out.Notifications...)
		all.News = append(all.News, out.News...)
		d -= step
	}
	return all
}

func (s *Service) apply(a game.Action) (game.Outcome, error) {
	out, err := s.engine.Dispatch(a)

	if tr, ok := a.(game.ExecuteTrade); ok {
		s.metrics.RecordTrade(tr.Action.String(), rejectionReason(err))
		if err != nil {
			s.logger.Debug("trade rejected", "asset", tr.Asset, "action", tr.Action.String(), "amount", tr.Amount, "err", err)
		} else {
			s.logger.Info("trade executed", "trade", out.Trade.String(), "cash", out.Trade.Cash)
		}
	}
	for _, it := range out.News {
		s.metrics.RecordNews(string(it.Kind))
	}

	st := s.storeSnapshot()
	s.metrics.UpdateState(st.NetWorth(), st.Cash, st.MarketHealth, st.Round)

	for _, n := range out.Notifications {
		s.forward(n)
		if n.Kind == game.NotifyGameEnded {
			s.logger.Info("game ended", "round", n.Round, "net_worth", n.NetWorth)
			s.submitScore(n.NetWorth)
		}
	}
	return out, err
}

func (s *Service) storeSnapshot() *game.State {
	st := s.engine.State()
	s.snapshot.Store(&st)
	return &st
}

func (s *Service) forward(n game.Notification) {
	select {
	case s.externalEvents <- n:
	default:
		s.droppedEvents.Add(1)
		s.metrics.RecordDroppedNotification()
	}
}

func (s *Service) submitScore(netWorth float64) {
	if s.cfg.UserID == "" {
		s.logger.Debug("no user id, skipping score submission")
		return
	}
	sc := score.Score{UserID: s.cfg.UserID, PortfolioValue: netWorth, AchievedAt: s.now()}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SubmitTimeout)
		defer cancel()

		err := s.store.Submit(ctx, sc)
		s.metrics.RecordScoreSubmission(err)
		if err != nil {
			s.logger.Warn("score submission failed", "user_id", sc.UserID, "err", err)
			return
		}
		s.logger.Info("score submitted", "user_id", sc.UserID, "portfolio_value", sc.PortfolioValue)
	}()
}

func rejectionReason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, portfolio.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, portfolio.ErrInsufficientPosition):
		return "insufficient_position"
	case errors.Is(err, portfolio.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, portfolio.ErrUnknownAction):
		return "unknown_action"
	case errors.Is(err, game.ErrUnknownAsset):
		return "unknown_asset"
	case errors.Is(err, game.ErrGameNotRunning):
		return "not_running"
	default:
		return "error"
	}
}

func (s *Service) do(ctx context.Context, cmd command) (response, error) {
	respCh := make(chan response, 1)
	cmd.respCh = respCh

	select {
	case <-s.closed:
		return response{}, context.Canceled
	case <-ctx.Done():
		return response{}, ctx.Err()
	case s.cmdCh <- cmd:
	}

	select {
	case <-s.closed:
		return response{}, context.Canceled
	case <-ctx.Done():
		return response{}, ctx.Err()
	case resp := <-respCh:
		return resp, nil
	}
}

func (s *Service) dispatch(ctx context.Context, a game.Action) (game.Outcome, error) {
	resp, err := s.do(ctx, command{action: a})
	if err != nil {
		return game.Outcome{}, err
	}
	return resp.outcome, resp.err
}

// StartGame starts (or restarts) a session.
func (s *Service) StartGame(ctx context.Context) error {
	_, err := s.dispatch(ctx, game.StartGame{})
	return err
}

// PauseGame stops simulated time.
func (s *Service) PauseGame(ctx context.Context) error {
	_, err := s.dispatch(ctx, game.PauseGame{})
	return err
}

// ResumeGame restarts simulated time.
func (s *Service) ResumeGame(ctx context.Context) error {
	_, err := s.dispatch(ctx, game.ResumeGame{})
	return err
}

// EndGame ends the session.
func (s *Service) EndGame(ctx context.Context) error {
	_, err := s.dispatch(ctx, game.EndGame{})
	return err
}

// NextRound moves to the next round, ending the game after the last one.
func (s *Service) NextRound(ctx context.Context) error {
	_, err := s.dispatch(ctx, game.NextRound{})
	return err
}

// ExecuteTrade trades amount units of an asset at its current price.
func (s *Service) ExecuteTrade(ctx context.Context, asset market.AssetID, action portfolio.Action, amount float64) (game.TradeResult, error) {
	out, err := s.dispatch(ctx, game.ExecuteTrade{Asset: asset, Action: action, Amount: amount})
	if err != nil {
		return game.TradeResult{}, err
	}
	return *out.Trade, nil
}

// Advance moves simulated time forward by d while the game is running.
func (s *Service) Advance(ctx context.Context, d time.Duration) error {
	_, err := s.do(ctx, command{advance: d})
	return err
}

// Snapshot returns a copy of the latest state.
func (s *Service) Snapshot() game.State {
	return s.snapshot.Load().Clone()
}

// NetWorth returns the latest net worth.
func (s *Service) NetWorth() float64 {
	return s.snapshot.Load().NetWorth()
}

// Events returns the notification channel. It is closed by Close.
func (s *Service) Events() <-chan game.Notification {
	return s.externalEvents
}

// DroppedEvents returns the count of dropped notifications.
func (s *Service) DroppedEvents() int64 {
	return s.droppedEvents.Load()
}

// Close shuts down the service and waits for pending work.
func (s *Service) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
	s.wg.Wait()
}
