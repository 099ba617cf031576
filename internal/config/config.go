package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// WebhookURLPrefix is the only endpoint prefix accepted in production mode.
const WebhookURLPrefix = "https://discord.com/api/webhooks/"

type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

type Config struct {
	Bot     BotConfig     `toml:"bot"`
	Feeds   FeedsConfig   `toml:"feeds"`
	Storage StorageConfig `toml:"storage"`
	Webhook WebhookConfig `toml:"webhook"`
}

type BotConfig struct {
	Name string `toml:"name"`
	Mode string `toml:"mode" env:"MODE"`
}

type FeedsConfig struct {
	Path       string `toml:"path"`
	MaxPerFeed int    `toml:"max_per_feed" env:"MAX_ENTRIES_PER_RSS"`
	Timeout    string `toml:"timeout"`
}

type StorageConfig struct {
	Type      string `toml:"type"`
	Path      string `toml:"path" env:"DB_PATH"`
	Retention string `toml:"retention"`
}

type WebhookConfig struct {
	// URL is a secret and must never be logged. It is not read from the
	// config file on purpose: it comes from the environment or argv.
	URL         string `toml:"-" env:"DISCORD_WEBHOOK_URL"`
	Timeout     string `toml:"timeout"`
	MaxAttempts int    `toml:"max_attempts"`
	Pause       string `toml:"pause"`
}

// Load reads the optional TOML config file, overlays environment variables
// and positional arguments (<links-file> [webhook-url]), then validates.
// A missing config file is not an error: every field has a default.
func Load(path string, args []string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
		// defaults only
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if len(args) >= 1 {
		config.Feeds.Path = args[0]
	}
	if len(args) >= 2 {
		config.Webhook.URL = args[1]
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func validateConfig(config *Config) error {
	if config.Bot.Name == "" {
		config.Bot.Name = "my-discord-bot"
	}

	switch strings.ToLower(config.Bot.Mode) {
	case "", "2", string(ModeProduction):
		config.Bot.Mode = string(ModeProduction)
	case "1", string(ModeDevelopment):
		config.Bot.Mode = string(ModeDevelopment)
	default:
		return fmt.Errorf("mode must be development or production, got %q", config.Bot.Mode)
	}

	if config.Feeds.Path == "" {
		config.Feeds.Path = "rss_links.txt"
	}

	if config.Feeds.MaxPerFeed == 0 {
		config.Feeds.MaxPerFeed = 5
	}
	if config.Feeds.MaxPerFeed < 0 {
		return fmt.Errorf("max_per_feed must be greater than 0, got %d", config.Feeds.MaxPerFeed)
	}

	if config.Feeds.Timeout == "" {
		config.Feeds.Timeout = "30s"
	}
	if _, err := time.ParseDuration(config.Feeds.Timeout); err != nil {
		return fmt.Errorf("invalid feed timeout: %w", err)
	}

	if config.Storage.Type == "" {
		config.Storage.Type = "sqlite"
	}
	if config.Storage.Path == "" {
		config.Storage.Path = "sent_entries.db"
	}
	if config.Storage.Retention != "" {
		if _, err := time.ParseDuration(config.Storage.Retention); err != nil {
			return fmt.Errorf("invalid retention: %w", err)
		}
	}

	if config.Webhook.Timeout == "" {
		config.Webhook.Timeout = "10s"
	}
	if _, err := time.ParseDuration(config.Webhook.Timeout); err != nil {
		return fmt.Errorf("invalid webhook timeout: %w", err)
	}

	if config.Webhook.MaxAttempts == 0 {
		config.Webhook.MaxAttempts = 3
	}
	if config.Webhook.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must be greater than 0, got %d", config.Webhook.MaxAttempts)
	}

	if config.Webhook.Pause == "" {
		config.Webhook.Pause = "1s"
	}
	if _, err := time.ParseDuration(config.Webhook.Pause); err != nil {
		return fmt.Errorf("invalid pause: %w", err)
	}

	if config.Mode() == ModeProduction {
		if config.Webhook.URL == "" {
			return fmt.Errorf("webhook URL is required in production mode")
		}
		if !strings.HasPrefix(config.Webhook.URL, WebhookURLPrefix) {
			return fmt.Errorf("webhook URL must start with %s", WebhookURLPrefix)
		}
	}

	return nil
}

func (c *Config) Mode() Mode {
	return Mode(c.Bot.Mode)
}

// Duration accessors return the already-validated values.

func (c *FeedsConfig) FetchTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

func (c *StorageConfig) RetentionAge() time.Duration {
	if c.Retention == "" {
		return 0
	}
	d, _ := time.ParseDuration(c.Retention)
	return d
}

func (c *WebhookConfig) SendTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

func (c *WebhookConfig) PostPause() time.Duration {
	d, _ := time.ParseDuration(c.Pause)
	return d
}
