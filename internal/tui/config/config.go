package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tripmate/internal/api"
	"tripmate/pkg/logger"
)

// Config holds all client configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	API     APIConfig     `yaml:"api"`
	UI      UIConfig      `yaml:"ui"`
	Logging logger.Config `yaml:"logging"`
	User    UserConfig    `yaml:"user"`
}

// ServerConfig contains server connection settings
type ServerConfig struct {
	BaseURL string `yaml:"base_url"`
}

// APIConfig tunes the REST gateway
type APIConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	RatePerSecond float64       `yaml:"rate_per_second"`
	Burst         int           `yaml:"burst"`
	CachePages    bool          `yaml:"cache_pages"`
}

// UIConfig for UI preferences
type UIConfig struct {
	Theme    string `yaml:"theme"`
	PageSize int    `yaml:"page_size"`
}

// UserConfig identifies the signed-in user. Either id or a token carrying
// a user_id claim is required for writes.
type UserConfig struct {
	Token string `yaml:"token"`
	ID    int64  `yaml:"id"`
	Name  string `yaml:"name"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL: "http://localhost:8080/api/v1",
		},
		API: APIConfig{
			Timeout:       15 * time.Second,
			RatePerSecond: 10,
			Burst:         5,
		},
		UI: UIConfig{
			Theme:    "dracula",
			PageSize: 20,
		},
		Logging: logger.Config{
			Level:  "info",
			Format: "text",
			Output: "tripmate.log",
		},
	}
}

// Load loads configuration from file, falling back to defaults
func Load(configPath string) (*Config, error) {
	// If no config path provided, use default locations
	if configPath == "" {
		configPath = findConfigFile()
	}

	// If still no config found, use defaults
	if configPath == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// unmarshal over the defaults so a partial file keeps the rest
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.normalize()

	return cfg, nil
}

func (c *Config) normalize() {
	c.Server.BaseURL = strings.TrimRight(strings.TrimSpace(c.Server.BaseURL), "/")
	if c.UI.PageSize <= 0 || c.UI.PageSize > 100 {
		c.UI.PageSize = 20
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = 15 * time.Second
	}
}

// Save saves configuration to file
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// findConfigFile searches for config in standard locations
func findConfigFile() string {
	for _, loc := range Locations() {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// Locations lists the searched config paths in priority order
func Locations() []string {
	home := os.Getenv("HOME")
	return []string{
		"./tripmate.yaml",
		"./config/tripmate.yaml",
		filepath.Join(home, ".config", "tripmate", "config.yaml"),
		filepath.Join(home, ".tripmate.yaml"),
	}
}

// GetHTTPBaseURL returns the REST base URL
func (c *Config) GetHTTPBaseURL() string {
	if c.Server.BaseURL != "" {
		return c.Server.BaseURL
	}
	return Default().Server.BaseURL
}

// ClientConfig returns the REST client settings for the given bearer token
func (c *Config) ClientConfig(token string) api.Config {
	return api.Config{
		BaseURL:       c.GetHTTPBaseURL(),
		Token:         token,
		Timeout:       c.API.Timeout,
		RatePerSecond: c.API.RatePerSecond,
		Burst:         c.API.Burst,
		CachePages:    c.API.CachePages,
	}
}
