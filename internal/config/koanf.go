// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/tradecaster/internal/models"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/tradecaster/config.yaml",
	"/etc/tradecaster/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultFallbackText is announced when commentary generation fails entirely.
const DefaultFallbackText = "Another soul ventures into the abyss. How very human."

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        3000,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Tracker: TrackerConfig{
			TokenAddress:  "",
			ReferenceMint: models.ReferenceMintSOL,
			MinAmount:     4,
		},
		Feed: FeedConfig{
			BaseURL:           "https://public-api.birdeye.so",
			APIKey:            "",
			Chain:             "solana",
			PageLimit:         20,
			Timeout:           10 * time.Second,
			RequestsPerSecond: 2,
			OverviewCacheTTL:  30 * time.Second,
		},
		Poller: PollerConfig{
			Enabled:  true,
			Interval: 10 * time.Second,
			Lookback: 60 * time.Second,
			Cooldown: 10 * time.Second,
		},
		Commentary: CommentaryConfig{
			BaseURL:          "https://api.openai.com",
			APIKey:           "",
			Model:            "gpt-4",
			MaxTokens:        30,
			Temperature:      0.8,
			PresencePenalty:  0.6,
			FrequencyPenalty: 0.3,
			MaxWords:         15,
			Timeout:          15 * time.Second,
			FallbackText:     DefaultFallbackText,
		},
		Speech: SpeechConfig{
			BaseURL:         "https://api.elevenlabs.io",
			APIKey:          "",
			VoiceID:         "pNInz6obpgDQGcFmaJgB",
			ModelID:         "eleven_multilingual_v2",
			Stability:       0.5,
			SimilarityBoost: 0.75,
			Style:           0.4,
			SpeakerBoost:    true,
			Timeout:         20 * time.Second,
			MaxAudioBytes:   5 << 20,
		},
		Webhook: WebhookConfig{
			Secret:          "",
			SignatureHeader: "x-helius-signature",
			MaxBodyBytes:    1 << 20,
		},
		Broadcast: BroadcastConfig{
			BufferSize:        100,
			ReplayCount:       5,
			HeartbeatInterval: 30 * time.Second,
			ClientBuffer:      32,
		},
		Ledger: LedgerConfig{
			Capacity:   500,
			Store:      "memory",
			BadgerPath: "/data/ledger",
			RedisURL:   "",
			KeyPrefix:  "tradecaster:seen:",
			TTL:        24 * time.Hour,
		},
		Relay: RelayConfig{
			Enabled:       false,
			URL:           "nats://127.0.0.1:4222",
			Subject:       "tradecaster.events",
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ActiveConfigFile returns the config file Load reads, or "" when none exists.
func ActiveConfigFile() string {
	return findConfigFile()
}

// findConfigFile returns the first config file found, or "" when none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, YAML lists are already slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// The vendor variable names match the ones operators already use in .env files.
var envMappings = map[string]string{
	// Server
	"port":         "server.port",
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Tracker
	"token_mint_address":  "tracker.token_address",
	"reference_mint":      "tracker.reference_mint",
	"min_purchase_amount": "tracker.min_amount",

	// Trade feed
	"birdeye_api_key":      "feed.api_key",
	"birdeye_base_url":     "feed.base_url",
	"birdeye_chain":        "feed.chain",
	"birdeye_page_limit":   "feed.page_limit",
	"birdeye_timeout":      "feed.timeout",
	"birdeye_rate_limit":   "feed.requests_per_second",
	"birdeye_overview_ttl": "feed.overview_cache_ttl",

	// Poller
	"poller_enabled": "poller.enabled",
	"poll_interval":  "poller.interval",
	"poll_lookback":  "poller.lookback",
	"poll_cooldown":  "poller.cooldown",

	// Commentary
	"openai_api_key":           "commentary.api_key",
	"openai_base_url":          "commentary.base_url",
	"openai_model":             "commentary.model",
	"openai_max_tokens":        "commentary.max_tokens",
	"openai_temperature":       "commentary.temperature",
	"openai_timeout":           "commentary.timeout",
	"commentary_max_words":     "commentary.max_words",
	"commentary_fallback_text": "commentary.fallback_text",

	// Speech
	"elevenlabs_api_key":  "speech.api_key",
	"elevenlabs_base_url": "speech.base_url",
	"elevenlabs_voice_id": "speech.voice_id",
	"elevenlabs_model_id": "speech.model_id",
	"elevenlabs_timeout":  "speech.timeout",

	// Webhook
	"webhook_secret":           "webhook.secret",
	"webhook_signature_header": "webhook.signature_header",
	"webhook_max_body_bytes":   "webhook.max_body_bytes",

	// Broadcast
	"broadcast_buffer_size":  "broadcast.buffer_size",
	"broadcast_replay_count": "broadcast.replay_count",
	"heartbeat_interval":     "broadcast.heartbeat_interval",
	"client_buffer":          "broadcast.client_buffer",

	// Ledger
	"ledger_capacity":    "ledger.capacity",
	"ledger_store":       "ledger.store",
	"ledger_badger_path": "ledger.badger_path",
	"redis_url":          "ledger.redis_url",
	"ledger_key_prefix":  "ledger.key_prefix",
	"ledger_ttl":         "ledger.ttl",

	// Relay
	"relay_enabled":       "relay.enabled",
	"nats_url":            "relay.url",
	"relay_subject":       "relay.subject",
	"nats_max_reconnects": "relay.max_reconnects",
	"nats_reconnect_wait": "relay.reconnect_wait",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped so unrelated environment
// does not pollute the config.
//
// Examples:
//   - BIRDEYE_API_KEY -> feed.api_key
//   - TOKEN_MINT_ADDRESS -> tracker.token_address
//   - WEBHOOK_SECRET -> webhook.secret
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// WatchConfigFile invokes callback whenever the file at path changes.
// Callers own synchronization of whatever they reload.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)
	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}

// Defaults returns the built-in configuration without reading any file or
// environment.
func Defaults() *Config {
	return defaultConfig()
}
