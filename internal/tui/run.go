package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"tripmate/internal/api"
	"tripmate/internal/engagement"
	"tripmate/internal/session"
	"tripmate/internal/tui/config"
	"tripmate/pkg/logger"
)

// Deps resolves the signed-in user and builds the shared engagement
// dependencies from cfg
func Deps(cfg *config.Config) (engagement.Deps, error) {
	s, err := session.Resolve(cfg.User.Token, cfg.User.ID, cfg.User.Name)
	if err != nil {
		return engagement.Deps{}, err
	}

	return engagement.Deps{
		Gateway:  api.NewClient(cfg.ClientConfig(s.Token)),
		Cache:    engagement.NewCache(),
		IDs:      engagement.NewAllocator(),
		User:     s.User,
		PageSize: cfg.UI.PageSize,
	}, nil
}

// Run starts the terminal client and blocks until it exits
func Run(cfg *config.Config) error {
	logger.Init(cfg.Logging)

	deps, err := Deps(cfg)
	if err != nil {
		return err
	}

	logger.WithFields(map[string]interface{}{
		"base_url": cfg.GetHTTPBaseURL(),
		"user_id":  deps.User.ID,
	}).Info("starting tui")

	p := tea.NewProgram(New(deps), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}
