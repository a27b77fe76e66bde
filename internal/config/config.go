package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Development DevelopmentConfig `mapstructure:"development"`
	Game        GameConfig        `mapstructure:"game"`
	Auth        AuthConfig        `mapstructure:"auth"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr is the listen address built from host and port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DevelopmentConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

type GameConfig struct {
	ShowLegalMoves bool `mapstructure:"show_legal_moves"`
	MaxGames       int  `mapstructure:"max_games"`
}

type AuthConfig struct {
	// SigningKey signs seat tokens. Empty means a random key per process.
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

var defaults = map[string]interface{}{
	"server.host":           "localhost",
	"server.port":           8080,
	"development.debug":     false,
	"development.log_level": "info",
	"game.show_legal_moves": true,
	"game.max_games":        1000,
	"auth.signing_key":      "",
	"auth.token_ttl":        24 * time.Hour,
}

// Load reads config.yaml from the working directory or ./config, then applies
// CHESS3D_* environment overrides (CHESS3D_SERVER_PORT and so on). A missing
// file is not an error.
func Load() (*Config, error) {
	return LoadFrom(viper.New(), ".", "./config")
}

// LoadFrom is Load with an explicit viper instance and search paths.
func LoadFrom(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Enable environment variables
	v.SetEnvPrefix("CHESS3D")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Development: DevelopmentConfig{
			Debug:    false,
			LogLevel: "info",
		},
		Game: GameConfig{
			ShowLegalMoves: true,
			MaxGames:       1000,
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
	}
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Game.MaxGames <= 0 {
		return fmt.Errorf("game.max_games must be positive, got %d", c.Game.MaxGames)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	return nil
}
