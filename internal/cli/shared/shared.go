// Package shared holds what every command needs: the merged configuration
// and a REST client for the signed-in user.
package shared

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"tripmate/internal/api"
	"tripmate/internal/engagement"
	"tripmate/internal/session"
	"tripmate/internal/tui/config"
	"tripmate/pkg/logger"
	"tripmate/pkg/utils"
)

// Viper keys that override the config file. Each is also read from the
// environment as TRIPMATE_<KEY> with dots replaced by underscores.
const (
	KeyConfig     = "config"
	KeyBaseURL    = "server.base_url"
	KeyUserID     = "user.id"
	KeyUserName   = "user.name"
	KeyUserToken  = "user.token"
	KeyLogLevel   = "logging.level"
	KeyLogOutput  = "logging.output"
	KeyPageSize   = "ui.page_size"
	KeyCachePages = "api.cache_pages"
)

// Load reads the config file and applies environment and flag overrides
func Load() (*config.Config, error) {
	cfg, err := config.Load(viper.GetString(KeyConfig))
	if err != nil {
		return nil, err
	}

	if v := viper.GetString(KeyBaseURL); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := viper.GetInt64(KeyUserID); v != 0 {
		cfg.User.ID = v
	}
	if v := viper.GetString(KeyUserName); v != "" {
		cfg.User.Name = v
	}
	if v := viper.GetString(KeyUserToken); v != "" {
		cfg.User.Token = v
	}
	if v := viper.GetString(KeyLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := viper.GetString(KeyLogOutput); v != "" {
		cfg.Logging.Output = v
	}
	if v := viper.GetInt(KeyPageSize); v > 0 && v <= 100 {
		cfg.UI.PageSize = v
	}
	if viper.IsSet(KeyCachePages) {
		cfg.API.CachePages = viper.GetBool(KeyCachePages)
	}
	return cfg, nil
}

// Env is the resolved environment of one command run
type Env struct {
	Config  *config.Config
	Session session.Session
	Client  *api.Client
}

// Setup loads the config, starts logging and resolves the user
func Setup() (*Env, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Logging)

	s, err := session.Resolve(cfg.User.Token, cfg.User.ID, cfg.User.Name)
	if err != nil {
		return nil, err
	}
	return &Env{
		Config:  cfg,
		Session: s,
		Client:  api.NewClient(cfg.ClientConfig(s.Token)),
	}, nil
}

// Context returns a context bounded by the configured request timeout
func (e *Env) Context(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, e.Config.API.Timeout)
}

// ParseID parses a positional id argument
func ParseID(what, arg string) (engagement.ID, error) {
	id, err := engagement.ParseID(arg)
	if err != nil {
		return engagement.ID{}, fmt.Errorf("%s: %w", what, err)
	}
	return id, nil
}

// Describe turns an error into the line shown to the user
func Describe(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(utils.UserMessage(err))
}
