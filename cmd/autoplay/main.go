package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zappabad/marketrush/internal/app"
	"github.com/zappabad/marketrush/internal/trader"
	"github.com/zappabad/marketrush/internal/trader/runner"
	"github.com/zappabad/marketrush/internal/trader/strategy"
)

func main() {
	configPath := flag.String("config", "marketrush.yaml", "path to config file")
	userID := flag.String("user", "autoplay", "name recorded with the final score")
	roundDuration := flag.Duration("round", 0, "override the round duration, e.g. 5s")
	flag.Parse()

	a, err := app.Bootstrap(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "autoplay: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	cfg := a.Config
	cfg.Service.UserID = *userID
	if *roundDuration > 0 {
		cfg.Service.Game.RoundDuration = *roundDuration
	}
	log := a.Logger.With("component", "autoplay")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := a.NewGameService()
	defer svc.Close()

	alerts := a.NewAlertService()
	defer alerts.Close()
	alerts.AttachGameEvents(svc.Events())

	if err := svc.StartGame(ctx); err != nil {
		log.Error("start game", "error", err)
		return
	}

	strat := strategy.NewNewsMomentum(cfg.Autoplay.Strategy)
	r := runner.NewRunner(cfg.Autoplay.Runner, strat, svc, svc, svc, a.Logger)
	defer r.Close()

	log.Info("autoplay started",
		"rounds", cfg.Service.Game.Rounds,
		"round_duration", cfg.Service.Game.RoundDuration)

	traded, rejected := 0, 0
	started := time.Now()
loop:
	for {
		select {
		case <-ctx.Done():
			log.Info("interrupted, ending game")
			_ = svc.EndGame(context.Background())
			break loop
		case <-r.Done():
			break loop
		case ev, ok := <-r.Events():
			if !ok {
				break loop
			}
			switch ev.Type {
			case trader.EventTraded:
				traded++
			case trader.EventRejected:
				rejected++
			}
		}
	}

	final := svc.Snapshot()
	fmt.Printf("final net worth %.2f after %d rounds (%d trades, %d rejected, %d missions completed) in %s\n",
		final.NetWorth(), final.Round, traded, rejected, len(final.CompletedMissions), time.Since(started).Round(time.Millisecond))
	for _, al := range alerts.Latest(5) {
		fmt.Printf("  %s: %s\n", al.Title, al.Message)
	}

	log.Info("autoplay finished",
		"net_worth", final.NetWorth(),
		"trades", traded,
		"rejected", rejected,
		"dropped_notifications", svc.DroppedEvents(),
		"dropped_trader_events", r.DroppedEvents())
}
