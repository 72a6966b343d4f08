package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/zappabad/marketrush/internal/alert"
	alertview "github.com/zappabad/marketrush/internal/alert/view"
	"github.com/zappabad/marketrush/internal/game"
	"github.com/zappabad/marketrush/internal/trader"
)

// AlertService collects alerts from game and trader events.
type AlertService struct {
	cfg  Config
	view *alertview.AlertView
	now  func() time.Time

	idGen atomic.Int64

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewAlertService creates a new AlertService.
func NewAlertService(cfg Config) *AlertService {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultConfig().Capacity
	}
	if cfg.DisplayFor <= 0 {
		cfg.DisplayFor = DefaultConfig().DisplayFor
	}

	return &AlertService{
		cfg:    cfg,
		view:   alertview.NewAlertView(cfg.Capacity),
		now:    time.Now,
		closed: make(chan struct{}),
	}
}

// AttachGameEvents starts listening to game notifications in a goroutine.
func (s *AlertService) AttachGameEvents(events <-chan game.Notification) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.closed:
				return
			case n, ok := <-events:
				if !ok {
					return
				}
				s.Push(alert.FromNotification(n))
			}
		}
	}()
}

// AttachTraderEvents starts listening to autoplay events in a goroutine.
// Only rejections and errors become alerts.
func (s *AlertService) AttachTraderEvents(events <-chan trader.Event) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.closed:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if ev.Type == trader.EventRejected || ev.Type == trader.EventError {
					s.Push(alert.FromTraderEvent(ev))
				}
			}
		}
	}()
}

// Push records an alert. Missing ids and times are filled in.
func (s *AlertService) Push(a alert.Alert) {
	if a.ID == 0 {
		a.ID = s.idGen.Add(1)
	}
	if a.Time.IsZero() {
		a.Time = s.now()
	}
	s.view.Apply(a)
}

// Active returns the alerts currently on display.
func (s *AlertService) Active() []alert.Alert {
	return s.view.Active(s.now(), s.cfg.DisplayFor)
}

// Latest returns the last n alerts.
func (s *AlertService) Latest(n int) []alert.Alert {
	return s.view.Latest(n)
}

// Dismiss hides an alert.
func (s *AlertService) Dismiss(id int64) bool {
	return s.view.Dismiss(id)
}

// Close shuts down the alert service.
func (s *AlertService) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
	s.wg.Wait()
}
