package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadFrom(viper.New(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, "localhost:8080", cfg.Server.Addr())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`server:
  port: 9000
game:
  max_games: 5
  show_legal_moves: false
auth:
  token_ttl: 90m
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	cfg, err := LoadFrom(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 5, cfg.Game.MaxGames)
	assert.False(t, cfg.Game.ShowLegalMoves)
	assert.Equal(t, 90*time.Minute, cfg.Auth.TokenTTL)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("CHESS3D_SERVER_PORT", "7070")
	t.Setenv("CHESS3D_DEVELOPMENT_LOG_LEVEL", "debug")
	t.Setenv("CHESS3D_AUTH_SIGNING_KEY", "secret")

	cfg, err := LoadFrom(viper.New(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Development.LogLevel)
	assert.Equal(t, "secret", cfg.Auth.SigningKey)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("CHESS3D_GAME_MAX_GAMES", "0")
	_, err := LoadFrom(viper.New(), t.TempDir())
	assert.Error(t, err)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0o600))
	_, err := LoadFrom(viper.New(), dir)
	assert.Error(t, err)
}
