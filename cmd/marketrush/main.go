package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zappabad/marketrush/internal/app"
	"github.com/zappabad/marketrush/tui"
)

func main() {
	configPath := flag.String("config", "marketrush.yaml", "path to config file")
	userID := flag.String("user", "", "player name recorded with the final score")
	flag.Parse()

	a, err := app.Bootstrap(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "marketrush: %v\n", err)
		os.Exit(1)
	}
	if *userID != "" {
		a.Config.Service.UserID = *userID
	}

	svc := a.NewGameService()
	alerts := a.NewAlertService()
	alerts.AttachGameEvents(svc.Events())

	model := tui.NewModel(svc, alerts, a.Store)

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, runErr := p.Run()

	alerts.Close()
	svc.Close()
	if err := a.Close(); err != nil {
		a.Logger.Warn("shutdown", "error", err)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", runErr)
		os.Exit(1)
	}
}
