// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

/*
birdeye.go - Birdeye trade feed client

Queries recent swaps for the tracked token using the seek_by_time endpoint.

Client Features:
  - X-API-KEY and x-chain header authentication
  - Client-side rate limiting (golang.org/x/time/rate)
  - Circuit breaker protection
  - HTTP 429 handling with exponential backoff and Retry-After
  - Context support for cancellation and timeouts
*/

package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/tradecaster/internal/breaker"
	"github.com/tomtom215/tradecaster/internal/config"
	"github.com/tomtom215/tradecaster/internal/metrics"
	"github.com/tomtom215/tradecaster/internal/models"
)

// ErrNotConfigured is returned when the API key or tracked token is missing.
var ErrNotConfigured = errors.New("trade feed not configured")

// maxErrorBodySize limits how much of an error response is read.
const maxErrorBodySize = 64 * 1024

func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	return body
}

// Source supplies recent trades for the tracked token.
type Source interface {
	// RecentTrades returns swaps with block time after since, in feed order.
	RecentTrades(ctx context.Context, since time.Time) ([]models.Trade, error)

	// Configured reports whether queries can be made at all.
	Configured() bool
}

// TokenOverview is a subset of Birdeye's token_overview payload.
type TokenOverview struct {
	Address               string  `json:"address"`
	Symbol                string  `json:"symbol"`
	Name                  string  `json:"name"`
	Decimals              int     `json:"decimals"`
	Price                 float64 `json:"price"`
	Liquidity             float64 `json:"liquidity"`
	MarketCap             float64 `json:"mc"`
	Volume24hUSD          float64 `json:"v24hUSD"`
	PriceChange24hPercent float64 `json:"priceChange24hPercent"`
	Holders               int     `json:"holder"`
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

type tradePage struct {
	Items   []models.Trade `json:"items"`
	HasNext bool           `json:"hasNext"`
}

// BirdeyeClient implements Source against the Birdeye public API.
type BirdeyeClient struct {
	baseURL      string
	apiKey       string
	chain        string
	tokenAddress string
	pageLimit    int

	client         *http.Client
	limiter        *rate.Limiter
	breaker        *breaker.Breaker
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBirdeyeClient builds a client from feed and tracker settings.
func NewBirdeyeClient(feed config.FeedConfig, tracker config.TrackerConfig) *BirdeyeClient {
	limit := rate.Inf
	if feed.RequestsPerSecond > 0 {
		limit = rate.Limit(feed.RequestsPerSecond)
	}
	return &BirdeyeClient{
		baseURL:        strings.TrimRight(feed.BaseURL, "/"),
		apiKey:         feed.APIKey,
		chain:          feed.Chain,
		tokenAddress:   tracker.TokenAddress,
		pageLimit:      feed.PageLimit,
		client:         &http.Client{Timeout: feed.Timeout},
		limiter:        rate.NewLimiter(limit, 1),
		breaker:        breaker.New("birdeye-api", breaker.Settings{}),
		maxRetries:     3,
		retryBaseDelay: time.Second,
	}
}

// Configured implements Source.
func (c *BirdeyeClient) Configured() bool {
	return !config.IsUnset(c.apiKey) && !config.IsUnset(c.tokenAddress)
}

// RecentTrades implements Source.
func (c *BirdeyeClient) RecentTrades(ctx context.Context, since time.Time) ([]models.Trade, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("address", c.tokenAddress)
	params.Set("tx_type", "swap")
	params.Set("after_time", strconv.FormatInt(since.Unix(), 10))
	params.Set("limit", strconv.Itoa(c.pageLimit))

	var page envelope[tradePage]
	if err := c.get(ctx, "/defi/txs/token/seek_by_time", params, &page); err != nil {
		return nil, err
	}
	if !page.Success {
		return nil, fmt.Errorf("birdeye returned unsuccessful response: %s", page.Message)
	}
	return page.Data.Items, nil
}

// TokenOverview fetches summary market data for the tracked token.
func (c *BirdeyeClient) TokenOverview(ctx context.Context) (*TokenOverview, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	params := url.Values{}
	params.Set("address", c.tokenAddress)

	var resp envelope[TokenOverview]
	if err := c.get(ctx, "/defi/token_overview", params, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("birdeye returned unsuccessful response: %s", resp.Message)
	}
	return &resp.Data, nil
}

func (c *BirdeyeClient) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	start := time.Now()
	_, err := breaker.Do(c.breaker, func() (struct{}, error) {
		return struct{}{}, c.doGet(ctx, path, params, result)
	})
	metrics.RecordUpstream("birdeye", time.Since(start), err)
	return err
}

func (c *BirdeyeClient) doGet(ctx context.Context, path string, params url.Values, result interface{}) error {
	reqURL := c.baseURL + path + "?" + params.Encode()

	resp, err := c.doRequestWithRateLimit(ctx, reqURL)
	if err != nil {
		return fmt.Errorf("birdeye %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("birdeye %s failed with status %d: %s", path, resp.StatusCode, readBodyForError(resp.Body))
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode birdeye %s response: %w", path, err)
	}
	return nil
}

// doRequestWithRateLimit waits on the local limiter and retries HTTP 429
// with exponential backoff, honoring Retry-After when present.
func (c *BirdeyeClient) doRequestWithRateLimit(ctx context.Context, reqURL string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("X-API-KEY", c.apiKey)
		req.Header.Set("x-chain", c.chain)
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		_ = resp.Body.Close()

		if attempt == c.maxRetries {
			return nil, fmt.Errorf("rate limit exceeded after %d retries (HTTP 429)", c.maxRetries)
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds >= 0 {
				delay = time.Duration(seconds) * time.Second
			}
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
