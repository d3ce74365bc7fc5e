// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/tradecaster/internal/config"
	"github.com/tomtom215/tradecaster/internal/metrics"
)

// ChiMiddlewareConfig holds CORS and rate limit settings.
type ChiMiddlewareConfig struct {
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	CORSExposedHeaders []string
	CORSMaxAge         int // seconds

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
}

// NewChiMiddlewareConfig maps the security section of the configuration.
func NewChiMiddlewareConfig(sec config.SecurityConfig) *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		CORSAllowedOrigins: sec.CORSOrigins,
		CORSAllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		CORSAllowedHeaders: []string{"Content-Type", "X-Request-ID", "Last-Event-ID"},
		CORSExposedHeaders: []string{"X-Request-ID"},
		CORSMaxAge:         86400,
		RateLimitRequests:  sec.RateLimitReqs,
		RateLimitWindow:    sec.RateLimitWindow,
		RateLimitDisabled:  sec.RateLimitDisabled,
	}
}

// ChiMiddleware builds CORS and rate limiting middleware.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware returns middleware factories for cfg.
func NewChiMiddleware(cfg *ChiMiddlewareConfig) *ChiMiddleware {
	return &ChiMiddleware{
		config: cfg,
		cors: cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: cfg.CORSAllowedMethods,
			AllowedHeaders: cfg.CORSAllowedHeaders,
			ExposedHeaders: cfg.CORSExposedHeaders,
			MaxAge:         cfg.CORSMaxAge,
		}),
	}
}

// CORS must be global so OPTIONS preflights reach it.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit applies the configured per-IP limit.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.RateLimitCustom(RateLimitConfig{Name: "default", Requests: m.config.RateLimitRequests, Window: m.config.RateLimitWindow})
}

// RateLimitConfig is a per-IP request budget. Name labels rejections in
// api_rate_limit_hits_total.
type RateLimitConfig struct {
	Name     string
	Requests int
	Window   time.Duration
}

var (
	// RateLimitHealth allows frequent probes from monitoring.
	RateLimitHealth = RateLimitConfig{Name: "health", Requests: 1000, Window: time.Minute}

	// RateLimitWebhook allows provider retries and bursts of deliveries.
	RateLimitWebhook = RateLimitConfig{Name: "webhook", Requests: 600, Window: time.Minute}

	// RateLimitGenerate guards endpoints that spend upstream API credit.
	RateLimitGenerate = RateLimitConfig{Name: "generate", Requests: 20, Window: time.Minute}
)

// RateLimitCustom returns a per-IP limiter for cfg. Limited requests get
// the JSON envelope with TOO_MANY_REQUESTS.
func (m *ChiMiddleware) RateLimitCustom(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return httprate.Limit(cfg.Requests, cfg.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			metrics.APIRateLimitHits.WithLabelValues(cfg.Name).Inc()
			respondError(w, http.StatusTooManyRequests, ErrCodeRateLimited, "Rate limit exceeded", nil)
		}),
	)
}

// APISecurityHeaders sets headers appropriate for JSON and stream responses.
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}
