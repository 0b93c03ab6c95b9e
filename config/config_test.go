package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"emofeed/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("no file yields the defaults", func(t *testing.T) {
		cfg, err := config.LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, 3000, cfg.Server.Port)
		assert.Equal(t, 100, cfg.Feed.Window)
		assert.Equal(t, "emofeed.db", cfg.Database.Path)
	})

	t.Run("file values overlay the defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 8080

[feed]
window = 25
`), 0644))

		cfg, err := config.LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, 25, cfg.Feed.Window)
		assert.Equal(t, "emofeed.db", cfg.Database.Path, "untouched settings keep their defaults")
	})

	t.Run("a missing file is an error", func(t *testing.T) {
		_, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})

	t.Run("server address binds the configured hostname", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte(`
[server]
hostname = "feed.example.com"
port = 8080
`), 0644))

		cfg, err := config.LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "feed.example.com:8080", cfg.Server.Addr())
	})

	t.Run("a non-positive feed window is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[feed]\nwindow = 0\n"), 0644))

		_, err := config.LoadConfig(path)
		assert.Error(t, err)
	})
}
