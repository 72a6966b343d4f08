package score

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps scores in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database at path and runs migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scores (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id         TEXT NOT NULL,
			portfolio_value REAL NOT NULL,
			achieved_at     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_value ON scores(portfolio_value DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:30], err)
		}
	}
	return nil
}

// Submit appends a score.
func (s *SQLiteStore) Submit(ctx context.Context, sc Score) error {
	if err := validate(sc); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scores (user_id, portfolio_value, achieved_at) VALUES (?, ?, ?)`,
		sc.UserID, sc.PortfolioValue, sc.AchievedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

// Top returns the n highest scores. Ties go to the earlier result.
func (s *SQLiteStore) Top(ctx context.Context, n int) ([]Score, error) {
	if n <= 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, portfolio_value, achieved_at FROM scores
		 ORDER BY portfolio_value DESC, achieved_at ASC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	var out []Score
	for rows.Next() {
		var (
			sc Score
			ms int64
		)
		if err := rows.Scan(&sc.UserID, &sc.PortfolioValue, &ms); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		sc.AchievedAt = time.UnixMilli(ms).UTC()
		out = append(out, sc)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
