package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Slack       SlackConfig       `yaml:"slack"`
	Interaction InteractionConfig `yaml:"interaction"`
	Audit       AuditConfig       `yaml:"audit"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type SlackConfig struct {
	BotToken  string `yaml:"botToken" env:"SLACK_BOT_TOKEN"`
	AppToken  string `yaml:"appToken" env:"SLACK_APP_TOKEN"`
	ChannelID string `yaml:"channelID" env:"SLACK_CHANNEL_ID"`
}

type InteractionConfig struct {
	Timeout          time.Duration `yaml:"timeout" env:"HOOKBRIDGE_TIMEOUT"`
	HandshakeTimeout time.Duration `yaml:"handshakeTimeout" env:"HOOKBRIDGE_HANDSHAKE_TIMEOUT"`
}

// AuditConfig configures the SQLite decision log. An empty Path disables it.
type AuditConfig struct {
	Path              string `yaml:"path" env:"HOOKBRIDGE_AUDIT_PATH"`
	PragmaJournalMode string `yaml:"pragmaJournalMode"`
	PragmaBusyTimeout int    `yaml:"pragmaBusyTimeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"HOOKBRIDGE_LOG_LEVEL"`
	Format string `yaml:"format" env:"HOOKBRIDGE_LOG_FORMAT"`
	Output string `yaml:"output" env:"HOOKBRIDGE_LOG_OUTPUT"`
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order of precedence from lowest to highest.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Interaction: InteractionConfig{
			Timeout:          30 * time.Minute,
			HandshakeTimeout: 10 * time.Second,
		},
		Audit: AuditConfig{
			PragmaJournalMode: "wal",
			PragmaBusyTimeout: 5000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
	}
}

// expandEnvVars replaces ${VAR} patterns with environment variable values.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return "${" + key + "}"
	})
}
