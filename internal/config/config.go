// Package config loads runtime configuration from defaults, an optional
// YAML file, and environment variables (highest priority). The loaded
// Config is a plain value handed to each component at construction time;
// there is no process-wide settings global.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "PLEXCURATOR_CONFIG"

var defaultConfigPaths = []string{
	"config.yaml",
	"/etc/plexcurator/config.yaml",
}

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Log      LogConfig      `koanf:"log"`
	Plex     PlexConfig     `koanf:"plex"`
	OpenAI   OpenAIConfig   `koanf:"openai"`
	Telegram TelegramConfig `koanf:"telegram"`
	Curator  CuratorConfig  `koanf:"curator"`
}

type ServerConfig struct {
	Port     int    `koanf:"port" validate:"min=1,max=65535"`
	APIToken string `koanf:"api_token" validate:"required"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
}

type PlexConfig struct {
	URL     string `koanf:"url" validate:"required,url"`
	Token   string `koanf:"token" validate:"required"`
	Library string `koanf:"library" validate:"required"`
}

type OpenAIConfig struct {
	APIKey        string `koanf:"api_key" validate:"required"`
	Model         string `koanf:"model" validate:"required"`
	AssistantName string `koanf:"assistant_name" validate:"required"`
	BaseURL       string `koanf:"base_url"`
}

type TelegramConfig struct {
	Enabled  bool   `koanf:"enabled"`
	BotToken string `koanf:"bot_token"`
	ChatID   string `koanf:"chat_id"`
	BaseURL  string `koanf:"base_url"`
}

type CuratorConfig struct {
	PlaylistEnabled     bool   `koanf:"playlist_enabled"`
	PlaylistName        string `koanf:"playlist_name" validate:"required"`
	RecommendationCount int    `koanf:"recommendation_count" validate:"min=1,max=50"`
	HistoryLookback     int    `koanf:"history_lookback" validate:"min=0,max=100"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8000,
		},
		Log: LogConfig{
			Level: "info",
		},
		Plex: PlexConfig{
			Library: "Movies",
		},
		OpenAI: OpenAIConfig{
			Model:         "gpt-4o",
			AssistantName: "Plex AI Curator",
		},
		Curator: CuratorConfig{
			PlaylistName:        "Recomendado por IA",
			RecommendationCount: 10,
			HistoryLookback:     5,
		},
	}
}

// Load reads configuration with three layers: struct defaults, an
// optional YAML file, and environment variables on top
// (SERVER_API_TOKEN -> server.api_token, PLEX_URL -> plex.url, ...).
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("loading defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envTransform maps environment variable names to koanf paths. Only
// variables under a known section prefix participate; returning the
// empty string skips the variable.
func envTransform(s string) string {
	lower := strings.ToLower(s)
	for _, section := range []string{"server", "log", "plex", "openai", "telegram", "curator"} {
		prefix := section + "_"
		if strings.HasPrefix(lower, prefix) {
			return section + "." + strings.TrimPrefix(lower, prefix)
		}
	}
	return ""
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range defaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate checks field constraints plus the conditional requirements
// validator tags cannot express.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == "") {
		return fmt.Errorf("invalid configuration: telegram.enabled requires telegram.bot_token and telegram.chat_id")
	}
	return nil
}
