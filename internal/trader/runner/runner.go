package runner

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zappabad/marketrush/internal/game"
	"github.com/zappabad/marketrush/internal/trader"
	"github.com/zappabad/marketrush/internal/trader/strategy"
)

// Controller advances the game between rounds.
type Controller interface {
	NextRound(ctx context.Context) error
}

// Runner executes a trading strategy on a timer.
type Runner struct {
	cfg      Config
	strategy strategy.Strategy
	sr       strategy.StateReader
	sender   strategy.TradeSender
	ctrl     Controller
	logger   *slog.Logger

	events        chan trader.Event
	droppedEvents atomic.Int64

	done     chan struct{}
	doneOnce sync.Once

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewRunner creates a new Runner. ctrl may be nil, in which case rounds
// are never advanced by the runner.
func NewRunner(
	cfg Config,
	strat strategy.Strategy,
	sr strategy.StateReader,
	sender strategy.TradeSender,
	ctrl Controller,
	logger *slog.Logger,
) *Runner {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultConfig().TickInterval
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = DefaultConfig().EventBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Runner{
		cfg:      cfg,
		strategy: strat,
		sr:       sr,
		sender:   sender,
		ctrl:     ctrl,
		logger:   logger.With("component", "autoplay"),
		events:   make(chan trader.Event, cfg.EventBuffer),
		done:     make(chan struct{}),
		closed:   make(chan struct{}),
	}

	r.wg.Add(1)
	go r.run()

	return r
}

func (r *Runner) run() {
	defer r.wg.Done()
	defer close(r.events)

	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.closed:
			return
		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *Runner) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.TickInterval)
	defer cancel()

	st := r.sr.Snapshot()
	switch st.Phase() {
	case game.PhaseGameOver:
		r.doneOnce.Do(func() { close(r.done) })

	case game.PhaseRoundOver:
		if r.ctrl == nil || !r.cfg.AutoAdvance {
			return
		}
		if err := r.ctrl.NextRound(ctx); err != nil {
			r.emitEvent(trader.Event{Time: time.Now(), Type: trader.EventError, Message: err.Error()})
			return
		}
		r.logger.Info("advanced round", "from", st.Round, "net_worth", st.NetWorth())
		r.emitEvent(trader.Event{Time: time.Now(), Type: trader.EventAdvanced, Message: "next round"})

	case game.PhaseRunning:
		for _, intent := range r.strategy.Step(ctx, time.Now(), st) {
			r.execute(ctx, intent)
		}
	}
}

func (r *Runner) execute(ctx context.Context, intent trader.Intent) {
	res, err := r.sender.ExecuteTrade(ctx, intent.Asset, intent.Action, intent.Amount)
	if err != nil {
		r.logger.Debug("intent rejected", "asset", intent.Asset, "action", intent.Action.String(), "err", err)
		r.emitEvent(trader.Event{Time: time.Now(), Type: trader.EventRejected, Intent: &intent, Message: err.Error()})
		return
	}
	r.emitEvent(trader.Event{Time: time.Now(), Type: trader.EventTraded, Intent: &intent, Message: res.String()})
}

func (r *Runner) emitEvent(ev trader.Event) {
	if r.cfg.DropEvents {
		select {
		case r.events <- ev:
		default:
			r.droppedEvents.Add(1)
		}
	} else {
		select {
		case r.events <- ev:
		case <-r.closed:
		}
	}
}

// Events returns the trader events channel.
func (r *Runner) Events() <-chan trader.Event {
	return r.events
}

// Done is closed once the runner has seen the game end.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// DroppedEvents returns the count of dropped events.
func (r *Runner) DroppedEvents() int64 {
	return r.droppedEvents.Load()
}

// Close shuts down the runner.
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		close(r.closed)
	})
	r.wg.Wait()
}
