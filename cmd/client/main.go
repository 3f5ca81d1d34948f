package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"tasktracker/internal/client"
	"tasktracker/internal/config"
	"tasktracker/internal/logging"
	"tasktracker/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tasktracker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := logging.NewFile(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer closeLog()

	api := client.NewHTTPClient(cfg.Client.APIURL, nil)
	identity := client.NewIdentityStore(cfg.Client.IdentityDir)

	user, err := identity.Load()
	if err != nil {
		logger.WithError(err).WithField("path", identity.Path()).Warn("ignoring unreadable identity file")
		user = nil
	}
	logger.WithFields(logrus.Fields{
		"api":      cfg.Client.APIURL,
		"identity": identity.Path(),
	}).Info("client starting")

	model := tui.New(tui.Options{
		API:      api,
		Resolver: client.NewEmailResolver(api),
		Identity: identity,
		User:     user,
		Logger:   logger,
	})
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
