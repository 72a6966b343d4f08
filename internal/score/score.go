// Package score persists final game results.
package score

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidScore = errors.New("invalid score")

// Score is one finished game.
type Score struct {
	UserID         string
	PortfolioValue float64
	AchievedAt     time.Time
}

// Store is a sink for final scores.
type Store interface {
	Submit(ctx context.Context, s Score) error
	// Top returns the n best scores, highest value first.
	Top(ctx context.Context, n int) ([]Score, error)
	Close() error
}

func validate(s Score) error {
	if s.UserID == "" || s.AchievedAt.IsZero() {
		return ErrInvalidScore
	}
	return nil
}
