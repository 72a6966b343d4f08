package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zappabad/marketrush/internal/alert"
	"github.com/zappabad/marketrush/internal/game"
	"github.com/zappabad/marketrush/internal/mission"
	"github.com/zappabad/marketrush/internal/news"
	"github.com/zappabad/marketrush/internal/trader"
)

func TestAlertServiceFromGameEvents(t *testing.T) {
	s := NewAlertService(DefaultConfig())
	defer s.Close()

	events := make(chan game.Notification, 4)
	s.AttachGameEvents(events)

	item := news.Item{Title: "Exchange halts trading"}
	m := mission.Mission{Title: "Active Trader", Reward: "+2% cash"}
	events <- game.Notification{Kind: game.NotifyBreakingNews, News: &item}
	events <- game.Notification{Kind: game.NotifyMissionCompleted, Mission: &m}
	close(events)

	require.Eventually(t, func() bool { return len(s.Latest(10)) == 2 }, time.Second, 5*time.Millisecond)

	got := s.Latest(10)
	assert.Equal(t, alert.SeverityWarning, got[0].Severity)
	assert.Equal(t, "Exchange halts trading", got[0].Message)
	assert.Equal(t, alert.SeveritySuccess, got[1].Severity)
	assert.Equal(t, "Active Trader (+2% cash)", got[1].Message)
	assert.NotEqual(t, got[0].ID, got[1].ID)
	assert.Len(t, s.Active(), 2)
}

func TestAlertServiceTraderEvents(t *testing.T) {
	s := NewAlertService(DefaultConfig())
	defer s.Close()

	events := make(chan trader.Event, 4)
	s.AttachTraderEvents(events)
	events <- trader.Event{Type: trader.EventTraded, Message: "buy 1 oil"}
	events <- trader.Event{Type: trader.EventRejected, Message: "insufficient funds"}
	close(events)

	require.Eventually(t, func() bool { return len(s.Latest(10)) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "insufficient funds", s.Latest(1)[0].Message)
}

func TestAlertServiceExpiryAndDismiss(t *testing.T) {
	s := NewAlertService(Config{Capacity: 10, DisplayFor: time.Second})
	defer s.Close()

	now := time.Unix(5000, 0)
	s.now = func() time.Time { return now }

	s.Push(alert.Alert{Title: "a"})
	s.Push(alert.Alert{Title: "b"})
	require.Len(t, s.Active(), 2)

	assert.True(t, s.Dismiss(s.Latest(1)[0].ID))
	assert.Len(t, s.Active(), 1)

	now = now.Add(2 * time.Second)
	assert.Empty(t, s.Active())
	assert.Len(t, s.Latest(10), 2)
}
