// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package config

import (
	"strings"
	"time"
)

// Config holds all application configuration.
//
// Loading order (later wins):
//  1. Built-in defaults
//  2. Optional YAML file (config.yaml or CONFIG_PATH)
//  3. Environment variables
//
// Vendor credentials (feed, commentary, speech) are optional. A missing key
// means the component is "not configured", which the runtime degrades around
// instead of refusing to start.
//
// Config is immutable after Load and safe for concurrent reads.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Tracker    TrackerConfig    `koanf:"tracker"`
	Feed       FeedConfig       `koanf:"feed"`
	Poller     PollerConfig     `koanf:"poller"`
	Commentary CommentaryConfig `koanf:"commentary"`
	Speech     SpeechConfig     `koanf:"speech"`
	Webhook    WebhookConfig    `koanf:"webhook"`
	Broadcast  BroadcastConfig  `koanf:"broadcast"`
	Ledger     LedgerConfig     `koanf:"ledger"`
	Relay      RelayConfig      `koanf:"relay"`
	Security   SecurityConfig   `koanf:"security"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// TrackerConfig identifies what is being watched.
type TrackerConfig struct {
	// TokenAddress is the mint of the tracked token.
	TokenAddress string `koanf:"token_address"`

	// ReferenceMint is the asset purchases are denominated in.
	ReferenceMint string `koanf:"reference_mint"`

	// MinAmount is the inclusive qualification threshold in reference-asset units.
	MinAmount float64 `koanf:"min_amount"`
}

// FeedConfig configures the Birdeye trade feed client.
type FeedConfig struct {
	BaseURL           string        `koanf:"base_url"`
	APIKey            string        `koanf:"api_key"`
	Chain             string        `koanf:"chain"`
	PageLimit         int           `koanf:"page_limit"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`

	// OverviewCacheTTL caches the token overview; zero disables caching.
	OverviewCacheTTL time.Duration `koanf:"overview_cache_ttl"`
}

// PollerConfig configures the scheduled poller.
type PollerConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval"`
	Lookback time.Duration `koanf:"lookback"`
	Cooldown time.Duration `koanf:"cooldown"`
}

// CommentaryConfig configures the OpenAI chat completions client.
type CommentaryConfig struct {
	BaseURL          string        `koanf:"base_url"`
	APIKey           string        `koanf:"api_key"`
	Model            string        `koanf:"model"`
	MaxTokens        int           `koanf:"max_tokens"`
	Temperature      float64       `koanf:"temperature"`
	PresencePenalty  float64       `koanf:"presence_penalty"`
	FrequencyPenalty float64       `koanf:"frequency_penalty"`
	MaxWords         int           `koanf:"max_words"`
	Timeout          time.Duration `koanf:"timeout"`
	FallbackText     string        `koanf:"fallback_text"`
}

// SpeechConfig configures the ElevenLabs text-to-speech client.
type SpeechConfig struct {
	BaseURL         string        `koanf:"base_url"`
	APIKey          string        `koanf:"api_key"`
	VoiceID         string        `koanf:"voice_id"`
	ModelID         string        `koanf:"model_id"`
	Stability       float64       `koanf:"stability"`
	SimilarityBoost float64       `koanf:"similarity_boost"`
	Style           float64       `koanf:"style"`
	SpeakerBoost    bool          `koanf:"speaker_boost"`
	Timeout         time.Duration `koanf:"timeout"`
	MaxAudioBytes   int64         `koanf:"max_audio_bytes"`
}

// WebhookConfig configures the push ingestion path.
type WebhookConfig struct {
	// Secret enables HMAC-SHA256 signature verification when non-empty.
	Secret          string `koanf:"secret"`
	SignatureHeader string `koanf:"signature_header"`
	MaxBodyBytes    int64  `koanf:"max_body_bytes"`
}

// BroadcastConfig configures fan-out and the streaming transports.
type BroadcastConfig struct {
	BufferSize        int           `koanf:"buffer_size"`
	ReplayCount       int           `koanf:"replay_count"`
	HeartbeatInterval time.Duration `koanf:"heartbeat_interval"`
	ClientBuffer      int           `koanf:"client_buffer"`
}

// LedgerConfig configures the dedup ledger and its optional durable mirror.
type LedgerConfig struct {
	Capacity   int           `koanf:"capacity"`
	Store      string        `koanf:"store"` // memory, badger, redis
	BadgerPath string        `koanf:"badger_path"`
	RedisURL   string        `koanf:"redis_url"`
	KeyPrefix  string        `koanf:"key_prefix"`
	TTL        time.Duration `koanf:"ttl"`
}

// RelayConfig configures the optional NATS JetStream relay of announced events.
type RelayConfig struct {
	Enabled       bool          `koanf:"enabled"`
	URL           string        `koanf:"url"`
	Subject       string        `koanf:"subject"`
	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`
}

// SecurityConfig holds CORS and rate limit settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// placeholderPrefix matches the "your_..._here" values shipped in example env files.
const placeholderPrefix = "your_"

// IsUnset reports whether a credential is empty or an example placeholder.
func IsUnset(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || (strings.HasPrefix(v, placeholderPrefix) && strings.HasSuffix(v, "_here"))
}

// FeedConfigured reports whether the trade feed can be queried: it needs an
// API key and a tracked token address.
func (c *Config) FeedConfigured() bool {
	return !IsUnset(c.Feed.APIKey) && !IsUnset(c.Tracker.TokenAddress)
}

// CommentaryConfigured reports whether a commentary API key is present.
func (c *Config) CommentaryConfigured() bool {
	return !IsUnset(c.Commentary.APIKey)
}

// SpeechConfigured reports whether a speech API key is present.
func (c *Config) SpeechConfigured() bool {
	return !IsUnset(c.Speech.APIKey)
}

// Load reads configuration from defaults, an optional config file and the
// environment. See LoadWithKoanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
