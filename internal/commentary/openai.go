// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package commentary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tradecaster/internal/breaker"
	"github.com/tomtom215/tradecaster/internal/config"
	"github.com/tomtom215/tradecaster/internal/metrics"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("commentary generator not configured")

// EmptyReply is used when the model returns no choices.
const EmptyReply = "The void offers no response today."

// SystemPrompt sets the narrator persona.
const SystemPrompt = `You are Werner Herzog, the legendary German filmmaker and narrator. You speak with a distinctive philosophical, contemplative, and slightly melancholic tone. Your responses are profound observations about human nature, existence, and the absurdity of life.

Key characteristics of your speech:
- Deep, thoughtful observations that find meaning in seemingly mundane things
- References to nature, wilderness, and the indifference of the universe
- A sense of existential weight, but not depression, more like acceptance
- Dry humor and irony
- Never use emojis or casual internet slang
- Keep responses to MAXIMUM 10 words
- One powerful statement only

When asked about crypto, tokens or trading:
- Frame it as another manifestation of human folly and hope
- Compare market behavior to natural phenomena (migrations, swarms, glaciers)
- Never give financial advice, only philosophical observations`

var purchasePrompts = []string{
	"Someone bought %s SOL worth. Respond in 10 words max.",
	"%s SOL transaction. Brief observation, 10 words max.",
	"%s SOL exchanged for tokens. 10 words only.",
	"Another soul committed %s SOL. Respond in under 10 words.",
}

// Generator produces short commentary.
type Generator interface {
	// ForPurchase comments on a purchase of amount reference-asset units.
	ForPurchase(ctx context.Context, amount float64) (string, error)

	// Reply answers a free-text message.
	Reply(ctx context.Context, message string) (string, error)

	Configured() bool
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model            string        `json:"model"`
	Messages         []chatMessage `json:"messages"`
	MaxTokens        int           `json:"max_tokens"`
	Temperature      float64       `json:"temperature"`
	PresencePenalty  float64       `json:"presence_penalty"`
	FrequencyPenalty float64       `json:"frequency_penalty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// OpenAIClient implements Generator with the chat completions API.
type OpenAIClient struct {
	cfg     config.CommentaryConfig
	client  *http.Client
	breaker *breaker.Breaker
	pick    func(n int) int
}

// NewOpenAIClient returns a client for cfg.
func NewOpenAIClient(cfg config.CommentaryConfig) *OpenAIClient {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &OpenAIClient{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: breaker.New("openai-api", breaker.Settings{}),
		pick:    rand.IntN,
	}
}

// Configured implements Generator.
func (c *OpenAIClient) Configured() bool {
	return !config.IsUnset(c.cfg.APIKey)
}

// ForPurchase implements Generator.
func (c *OpenAIClient) ForPurchase(ctx context.Context, amount float64) (string, error) {
	prompt := fmt.Sprintf(purchasePrompts[c.pick(len(purchasePrompts))], FormatAmount(amount))
	return c.complete(ctx, prompt)
}

// Reply implements Generator.
func (c *OpenAIClient) Reply(ctx context.Context, message string) (string, error) {
	return c.complete(ctx, message)
}

func (c *OpenAIClient) complete(ctx context.Context, userMessage string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	start := time.Now()
	text, err := breaker.Do(c.breaker, func() (string, error) {
		return c.doComplete(ctx, userMessage)
	})
	metrics.RecordUpstream("openai", time.Since(start), err)
	if err != nil {
		return "", err
	}
	return CapWords(text, c.cfg.MaxWords), nil
}

func (c *OpenAIClient) doComplete(ctx context.Context, userMessage string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: userMessage},
		},
		MaxTokens:        c.cfg.MaxTokens,
		Temperature:      c.cfg.Temperature,
		PresencePenalty:  c.cfg.PresencePenalty,
		FrequencyPenalty: c.cfg.FrequencyPenalty,
	})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("openai API error: %d - %s", resp.StatusCode, excerpt)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return EmptyReply, nil
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// CapWords keeps at most max whitespace-separated words. max <= 0 disables
// the cap.
func CapWords(text string, max int) string {
	words := strings.Fields(text)
	if max > 0 && len(words) > max {
		words = words[:max]
	}
	return strings.Join(words, " ")
}

// FormatAmount renders an amount without trailing zeros.
func FormatAmount(amount float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", amount), "0"), ".")
}
