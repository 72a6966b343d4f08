package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zappabad/marketrush/internal/score"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "marketrush.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestBootstrapOpensSQLiteStore(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nested", "scores.db")
	t.Setenv("SQLITE_PATH", dbPath)

	a, err := Bootstrap(writeConfig(t, "log:\n  file: \"\"\n"))
	require.NoError(t, err)
	defer a.Close()

	_, ok := a.Store.(*score.SQLiteStore)
	require.True(t, ok, "expected a sqlite store")

	ctx := context.Background()
	require.NoError(t, a.Store.Submit(ctx, score.Score{UserID: "u", PortfolioValue: 1, AchievedAt: time.Now()}))
	top, err := a.Store.Top(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, top, 1)

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestBootstrapFallsBackToNoopStore(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	t.Setenv("SQLITE_PATH", filepath.Join(blocker, "scores.db"))

	a, err := Bootstrap(writeConfig(t, "log:\n  file: \"\"\n"))
	require.NoError(t, err)
	defer a.Close()

	_, ok := a.Store.(*score.NoopStore)
	assert.True(t, ok, "expected a noop store")
}

func TestBootstrapRejectsInvalidConfig(t *testing.T) {
	_, err := Bootstrap(writeConfig(t, "service:\n  game:\n    rounds: -1\n"))
	assert.Error(t, err)
}

func TestAppServices(t *testing.T) {
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "scores.db"))
	a, err := Bootstrap(writeConfig(t, "log:\n  file: \"\"\nservice:\n  frame_interval: 0s\n"))
	require.NoError(t, err)
	defer a.Close()

	svc := a.NewGameService()
	defer svc.Close()
	require.NoError(t, svc.StartGame(context.Background()))
	assert.True(t, svc.Snapshot().Started)

	alerts := a.NewAlertService()
	defer alerts.Close()
	alerts.AttachGameEvents(svc.Events())
	require.Eventually(t, func() bool { return len(alerts.Latest(5)) > 0 }, time.Second, 5*time.Millisecond)
}
