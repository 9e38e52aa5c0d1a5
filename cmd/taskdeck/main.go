package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pdarraugh/taskdeck/internal/config"
	"github.com/pdarraugh/taskdeck/internal/manager"
	"github.com/pdarraugh/taskdeck/internal/query"
	"github.com/pdarraugh/taskdeck/internal/remind"
	"github.com/pdarraugh/taskdeck/internal/store"
	"github.com/pdarraugh/taskdeck/internal/ui"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("taskdeck %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.LoadOrCreate(config.ResolvePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	svc := remind.NewMemoryService(true)
	scheduler := remind.NewScheduler(svc)
	engine := query.NewEngine(st)
	mgr := manager.New(st, engine, scheduler, nil)

	ctx := context.Background()
	if err := mgr.SetShowCompleted(ctx, cfg.ShowCompleted); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading tasks: %v\n", err)
		os.Exit(1)
	}

	app := ui.NewApp(mgr, cfg.Keys)
	p := tea.NewProgram(app, tea.WithAltScreen())

	// Delivered reminders surface in the UI as task-selected events.
	mgr.OnTaskSelected(func(taskID string) {
		p.Send(ui.TaskSelectedMsg{TaskID: taskID})
	})

	clockCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go svc.Run(clockCtx, time.Minute)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}
