// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that configuration is internally consistent.
// Missing vendor credentials are not errors; they disable a component.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateTracker(); err != nil {
		return err
	}
	if err := c.validateFeed(); err != nil {
		return err
	}
	if err := c.validatePoller(); err != nil {
		return err
	}
	if err := c.validateCommentary(); err != nil {
		return err
	}
	if err := c.validateSpeech(); err != nil {
		return err
	}
	if err := c.validateWebhook(); err != nil {
		return err
	}
	if err := c.validateBroadcast(); err != nil {
		return err
	}
	if err := c.validateLedger(); err != nil {
		return err
	}
	if err := c.validateRelay(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	switch c.Server.Environment {
	case "development", "production", "test":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, production, or test, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateTracker() error {
	if c.Tracker.MinAmount < 0 {
		return fmt.Errorf("MIN_PURCHASE_AMOUNT must not be negative")
	}
	if strings.TrimSpace(c.Tracker.ReferenceMint) == "" {
		return fmt.Errorf("REFERENCE_MINT is required")
	}
	return nil
}

func (c *Config) validateFeed() error {
	if err := validateHTTPURL(c.Feed.BaseURL, "BIRDEYE_BASE_URL"); err != nil {
		return err
	}
	if c.Feed.PageLimit < 1 || c.Feed.PageLimit > 50 {
		return fmt.Errorf("BIRDEYE_PAGE_LIMIT must be between 1 and 50")
	}
	if c.Feed.Timeout <= 0 {
		return fmt.Errorf("BIRDEYE_TIMEOUT must be positive")
	}
	if c.Feed.RequestsPerSecond < 0 {
		return fmt.Errorf("BIRDEYE_RATE_LIMIT must not be negative")
	}
	if c.Feed.OverviewCacheTTL < 0 {
		return fmt.Errorf("BIRDEYE_OVERVIEW_TTL must not be negative")
	}
	return nil
}

func (c *Config) validatePoller() error {
	if !c.Poller.Enabled {
		return nil
	}
	if c.Poller.Interval < time.Second {
		return fmt.Errorf("POLL_INTERVAL must be at least 1s")
	}
	if c.Poller.Lookback <= 0 {
		return fmt.Errorf("POLL_LOOKBACK must be positive")
	}
	if c.Poller.Cooldown < 0 {
		return fmt.Errorf("POLL_COOLDOWN must not be negative")
	}
	return nil
}

func (c *Config) validateCommentary() error {
	if err := validateHTTPURL(c.Commentary.BaseURL, "OPENAI_BASE_URL"); err != nil {
		return err
	}
	if c.Commentary.MaxWords < 1 {
		return fmt.Errorf("COMMENTARY_MAX_WORDS must be at least 1")
	}
	if c.Commentary.MaxTokens < 1 {
		return fmt.Errorf("OPENAI_MAX_TOKENS must be at least 1")
	}
	if c.Commentary.Temperature < 0 || c.Commentary.Temperature > 2 {
		return fmt.Errorf("OPENAI_TEMPERATURE must be between 0 and 2")
	}
	if strings.TrimSpace(c.Commentary.FallbackText) == "" {
		return fmt.Errorf("COMMENTARY_FALLBACK_TEXT must not be empty")
	}
	return nil
}

func (c *Config) validateSpeech() error {
	if err := validateHTTPURL(c.Speech.BaseURL, "ELEVENLABS_BASE_URL"); err != nil {
		return err
	}
	if c.SpeechConfigured() && c.Speech.VoiceID == "" {
		return fmt.Errorf("ELEVENLABS_VOICE_ID is required when ELEVENLABS_API_KEY is set")
	}
	if c.Speech.MaxAudioBytes <= 0 {
		return fmt.Errorf("speech max_audio_bytes must be positive")
	}
	return nil
}

func (c *Config) validateWebhook() error {
	if c.Webhook.SignatureHeader == "" {
		return fmt.Errorf("WEBHOOK_SIGNATURE_HEADER must not be empty")
	}
	if c.Webhook.MaxBodyBytes <= 0 {
		return fmt.Errorf("WEBHOOK_MAX_BODY_BYTES must be positive")
	}
	if c.Server.Environment == "production" && c.Webhook.Secret == "" {
		return fmt.Errorf("WEBHOOK_SECRET is required in production")
	}
	return nil
}

func (c *Config) validateBroadcast() error {
	if c.Broadcast.BufferSize < 1 {
		return fmt.Errorf("BROADCAST_BUFFER_SIZE must be at least 1")
	}
	if c.Broadcast.ReplayCount < 0 || c.Broadcast.ReplayCount > c.Broadcast.BufferSize {
		return fmt.Errorf("BROADCAST_REPLAY_COUNT must be between 0 and BROADCAST_BUFFER_SIZE")
	}
	if c.Broadcast.HeartbeatInterval < time.Second {
		return fmt.Errorf("HEARTBEAT_INTERVAL must be at least 1s")
	}
	if c.Broadcast.ClientBuffer < 1 {
		return fmt.Errorf("CLIENT_BUFFER must be at least 1")
	}
	return nil
}

func (c *Config) validateLedger() error {
	if c.Ledger.Capacity < 1 {
		return fmt.Errorf("LEDGER_CAPACITY must be at least 1")
	}
	switch c.Ledger.Store {
	case "memory":
	case "badger":
		if c.Ledger.BadgerPath == "" {
			return fmt.Errorf("LEDGER_BADGER_PATH is required when LEDGER_STORE=badger")
		}
	case "redis":
		if c.Ledger.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when LEDGER_STORE=redis")
		}
		if err := validateRedisURL(c.Ledger.RedisURL); err != nil {
			return fmt.Errorf("REDIS_URL is invalid: %w", err)
		}
	default:
		return fmt.Errorf("LEDGER_STORE must be memory, badger, or redis, got %q", c.Ledger.Store)
	}
	return nil
}

func (c *Config) validateRelay() error {
	if !c.Relay.Enabled {
		return nil
	}
	if err := validateNATSURL(c.Relay.URL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	if c.Relay.Subject == "" {
		return fmt.Errorf("RELAY_SUBJECT is required when RELAY_ENABLED=true")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled", "off":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
