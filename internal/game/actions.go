package game

import (
	"time"

	"github.com/zappabad/marketrush/internal/market"
	"github.com/zappabad/marketrush/internal/news"
	"github.com/zappabad/marketrush/internal/portfolio"
)

// Action is the closed set of inputs the engine accepts.
type Action interface {
	isAction()
}

// StartGame resets the session and begins round 1.
type StartGame struct{}

func (StartGame) isAction() {}

// PauseGame stops simulated time.
type PauseGame struct{}

func (PauseGame) isAction() {}

// ResumeGame restarts simulated time within the current round.
type ResumeGame struct{}

func (ResumeGame) isAction() {}

// EndGame terminates the session.
type EndGame struct{}

func (EndGame) isAction() {}

// NextRound advances to the next round, or ends the game after the last one.
type NextRound struct{}

func (NextRound) isAction() {}

// ExecuteTrade trades Amount units of Asset at its current price.
type ExecuteTrade struct {
	Asset  market.AssetID
	Action portfolio.Action
	Amount float64
}

func (ExecuteTrade) isAction() {}

// Tick reports elapsed wall time.
type Tick struct {
	Elapsed time.Duration
}

func (Tick) isAction() {}

// EmitNews generates and publishes a news item.
type EmitNews struct {
	HighImpact bool
	// Chained schedules a follow-up to the emitted item.
	Chained bool
}

func (EmitNews) isAction() {}

// EmitFollowUp publishes the follow-up to a chained item.
type EmitFollowUp struct {
	Origin news.Item
}

func (EmitFollowUp) isAction() {}

// ExpireNews removes an item from the active set.
type ExpireNews struct {
	ID string
}

func (ExpireNews) isAction() {}
