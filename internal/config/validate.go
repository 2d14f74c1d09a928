package config

import (
	"fmt"
	"strings"
)

// Validate checks the config for errors.
func Validate(cfg *Config) error {
	var errs []string

	switch {
	case cfg.Slack.BotToken == "":
		errs = append(errs, "slack.botToken (SLACK_BOT_TOKEN) is required")
	case !strings.HasPrefix(cfg.Slack.BotToken, "xoxb-"):
		errs = append(errs, "slack.botToken must be a bot token starting with xoxb-")
	}

	switch {
	case cfg.Slack.AppToken == "":
		errs = append(errs, "slack.appToken (SLACK_APP_TOKEN) is required")
	case !strings.HasPrefix(cfg.Slack.AppToken, "xapp-"):
		errs = append(errs, "slack.appToken must be an app-level token starting with xapp-")
	}

	if cfg.Slack.ChannelID == "" {
		errs = append(errs, "slack.channelID (SLACK_CHANNEL_ID) is required")
	}

	if cfg.Interaction.Timeout <= 0 {
		errs = append(errs, fmt.Sprintf("interaction.timeout must be positive (got %s)", cfg.Interaction.Timeout))
	}
	if cfg.Interaction.HandshakeTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("interaction.handshakeTimeout must be positive (got %s)", cfg.Interaction.HandshakeTimeout))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("logging.level must be one of: debug, info, warn, error (got %q)", cfg.Logging.Level))
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, fmt.Sprintf("logging.format must be json or text (got %q)", cfg.Logging.Format))
	}

	if cfg.Logging.Output == "stdout" {
		errs = append(errs, "logging.output cannot be stdout, it carries the hook decision")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
