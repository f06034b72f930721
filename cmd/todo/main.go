package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iammorganparry/clive/apps/todo/internal/config"
	"github.com/iammorganparry/clive/apps/todo/internal/logging"
	"github.com/iammorganparry/clive/apps/todo/internal/store"
	"github.com/iammorganparry/clive/apps/todo/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The alternate screen owns the terminal, so logs go to a file.
	logFile, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()

	logger := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: logFile,
		Prefix: "todo",
	})

	db, err := store.Open(cfg.DBPath, store.Options{
		RecreateOnMismatch: cfg.RecreateOnMismatch,
		Logger:             logger,
	})
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		return err
	}
	tasks := store.NewTaskStore(db, logger)

	m := tui.NewRootModel(tasks, logger)
	p := tea.NewProgram(m, tea.WithAltScreen())

	_, runErr := p.Run()

	// Quit already shut the controller down; this covers a killed program.
	_ = m.Controller().Shutdown()
	if runErr != nil {
		return fmt.Errorf("running program: %w", runErr)
	}
	logger.Info("todo exited")
	return nil
}
