package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ServerConfig holds the HTTP server settings
type ServerConfig struct {
	Hostname string `toml:"hostname"`
	Port     int    `toml:"port"`
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Hostname, s.Port)
}

// DatabaseConfig holds the SQLite database settings
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// FeedConfig holds feed query settings.
// Window is the fixed cap on posts returned by a feed query; there is no
// pagination cursor, the feed is always the most recent Window posts.
type FeedConfig struct {
	Window int `toml:"window"`
}

// AvatarConfig holds avatar asset settings
type AvatarConfig struct {
	// FallbackURL is the profile image served for the deleted-user
	// placeholder author.
	FallbackURL string `toml:"fallback_url"`
}

// Config represents the top-level configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Feed     FeedConfig     `toml:"feed"`
	Avatar   AvatarConfig   `toml:"avatar"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Hostname: "localhost", Port: 3000},
		Database: DatabaseConfig{Path: "emofeed.db"},
		Feed:     FeedConfig{Window: 100},
		Avatar:   AvatarConfig{FallbackURL: "/static/deleted-user.png"},
	}
}

// LoadConfig reads a TOML config file and overlays it on the defaults.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if config.Feed.Window <= 0 {
		return nil, fmt.Errorf("feed window must be positive, got %d", config.Feed.Window)
	}

	return config, nil
}
