package panels

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zappabad/marketrush/internal/market"
	"github.com/zappabad/marketrush/internal/news"
	"github.com/zappabad/marketrush/internal/portfolio"
)

func TestChartPanelBuildsCandles(t *testing.T) {
	p := NewChartPanel()
	p.SetAsset(market.DefaultAssets()[0])

	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	samples := []struct {
		at    time.Duration
		price float64
	}{
		{0, 100},
		{time.Second, 104},
		{2 * time.Second, 98},
		{4 * time.Second, 101},
		{5 * time.Second, 101},
		{7 * time.Second, 99},
		{3 * time.Second, 500}, // late sample for a closed candle
	}
	for _, s := range samples {
		p.AddSample(epoch.Add(s.at), s.price)
	}

	candles := p.Candles()
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}
	first := candles[0]
	if first.Open != 100 || first.High != 104 || first.Low != 98 || first.Close != 101 {
		t.Errorf("unexpected first candle %+v", first)
	}
	second := candles[1]
	if second.Open != 101 || second.Close != 99 || !second.Time.Equal(epoch.Add(5*time.Second)) {
		t.Errorf("unexpected second candle %+v", second)
	}

	p.SetAsset(market.DefaultAssets()[1])
	if len(p.Candles()) != 0 {
		t.Error("expected history to reset on asset change")
	}
}

func TestTradeInputSubmit(t *testing.T) {
	assets := market.DefaultAssets()
	p := NewTradeInputPanel(assets)
	p.SetFocus(true)

	if cmd := p.submitTrade(); cmd != nil {
		t.Fatal("expected no command without an asset")
	}
	if p.lastError == "" {
		t.Error("expected a validation message")
	}

	p.SetAsset(assets[2])
	p.actionIndex = 2
	p.amountInput.SetValue("12.5")

	cmd := p.submitTrade()
	if cmd == nil {
		t.Fatal("expected a submit command")
	}
	msg, ok := cmd().(TradeSubmitMsg)
	if !ok {
		t.Fatalf("expected TradeSubmitMsg")
	}
	if msg.Asset != assets[2].ID || msg.Action != portfolio.ActionShort || msg.Amount != 12.5 {
		t.Errorf("unexpected trade %+v", msg)
	}

	p.amountInput.SetValue("-3")
	if cmd := p.submitTrade(); cmd != nil {
		t.Error("expected negative units to be rejected")
	}
}

func TestMarketPanelSelection(t *testing.T) {
	p := NewMarketPanel(market.DefaultAssets())
	p.SetFocus(true)

	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyDown})
	if cmd == nil {
		t.Fatal("expected a selection command")
	}
	sel, ok := cmd().(AssetSelectedMsg)
	if !ok || sel.Asset.ID != "gold" {
		t.Errorf("expected gold to be selected, got %+v", sel)
	}

	_, cmd = p.Update(tea.KeyMsg{Type: tea.KeyUp})
	if cmd == nil || p.SelectedAsset().ID != "stock" {
		t.Errorf("expected stock to be selected")
	}
	if _, cmd = p.Update(tea.KeyMsg{Type: tea.KeyUp}); cmd != nil {
		t.Error("expected no command at the top of the list")
	}
}

func TestNewsPanelNewestFirst(t *testing.T) {
	p := NewNewsPanel()
	p.SetNews([]news.Item{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	if got := p.SelectedNews(); got == nil || got.ID != "c" {
		t.Errorf("expected newest item first, got %+v", got)
	}
}
