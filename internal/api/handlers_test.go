// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/tradecaster/internal/admission"
	"github.com/tomtom215/tradecaster/internal/broadcast"
	"github.com/tomtom215/tradecaster/internal/commentary"
	"github.com/tomtom215/tradecaster/internal/config"
	"github.com/tomtom215/tradecaster/internal/cooldown"
	"github.com/tomtom215/tradecaster/internal/feed"
	"github.com/tomtom215/tradecaster/internal/ledger"
	"github.com/tomtom215/tradecaster/internal/logging"
	"github.com/tomtom215/tradecaster/internal/metrics"
	"github.com/tomtom215/tradecaster/internal/models"
	"github.com/tomtom215/tradecaster/internal/pipeline"
	"github.com/tomtom215/tradecaster/internal/poller"
	"github.com/tomtom215/tradecaster/internal/qualify"
	"github.com/tomtom215/tradecaster/internal/webhook"
)

//nolint:gochecknoinits
func init() {
	logging.Init(logging.Config{Level: "error", Format: "console", Output: io.Discard})
}

const testSecret = "webhook-test-secret"

type fakeTrigger struct {
	summary models.PollSummary
	err     error
}

func (f fakeTrigger) Tick(context.Context) (models.PollSummary, error) {
	return f.summary, f.err
}

type fakeGenerator struct {
	text       string
	err        error
	configured bool
}

func (f fakeGenerator) ForPurchase(context.Context, float64) (string, error) { return f.text, f.err }
func (f fakeGenerator) Reply(context.Context, string) (string, error)        { return f.text, f.err }
func (f fakeGenerator) Configured() bool                                     { return f.configured }

type fakeSynth struct {
	audio      []byte
	err        error
	configured bool
	got        string
}

func (f *fakeSynth) Synthesize(_ context.Context, text string) ([]byte, error) {
	f.got = text
	return f.audio, f.err
}

func (f *fakeSynth) Configured() bool { return f.configured }

type fakeSource struct {
	mu     sync.Mutex
	trades []models.Trade
}

func (f *fakeSource) RecentTrades(context.Context, time.Time) ([]models.Trade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.trades, nil
}

func (f *fakeSource) Configured() bool { return true }

type fixture struct {
	cfg    *config.Config
	bcast  *broadcast.Broadcaster
	gate   *admission.Gate
	router http.Handler
}

// newFixture wires a real broadcaster, gate and webhook receiver. cooldown
// is zero so admission outcomes depend only on the ledger.
func newFixture(t *testing.T, deps Deps) *fixture {
	t.Helper()
	cfg := config.Defaults()
	cfg.Webhook.Secret = testSecret
	cfg.Webhook.MaxBodyBytes = 4096
	cfg.Broadcast.HeartbeatInterval = time.Hour
	cfg.Security.RateLimitDisabled = true

	f := &fixture{cfg: cfg, bcast: broadcast.New(10)}
	f.gate = admission.New(ledger.New(500), cooldown.New(0))
	filter := qualify.NewFilter("", cfg.Tracker.MinAmount)
	pipe := pipeline.New(fakeGenerator{text: "The jungle is indifferent.", configured: true}, nil)

	deps.Broadcaster = f.bcast
	deps.Gate = f.gate
	if deps.Webhook == nil {
		deps.Webhook = webhook.NewReceiver(testSecret, filter, f.gate, pipe, f.bcast)
	}
	f.router = NewRouter(NewHandler(cfg, deps), nil).SetupChi()
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) models.APIResponse {
	t.Helper()
	var raw struct {
		Status string           `json:"status"`
		Data   json.RawMessage  `json:"data"`
		Error  *models.APIError `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode envelope: %v\n%s", err, rec.Body.String())
	}
	if data != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return models.APIResponse{Status: raw.Status, Error: raw.Error}
}

func TestPoll(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		trigger  PollTrigger
		method   string
		wantCode int
		wantErr  string
	}{
		{"summary via GET", fakeTrigger{summary: models.PollSummary{Processed: 1, TotalFetched: 7}}, http.MethodGet, http.StatusOK, ""},
		{"summary via POST", fakeTrigger{summary: models.PollSummary{Processed: 1, TotalFetched: 7}}, http.MethodPost, http.StatusOK, ""},
		{"feed not configured", fakeTrigger{err: feed.ErrNotConfigured}, http.MethodGet, http.StatusServiceUnavailable, ErrCodeNotConfigured},
		{"feed failure", fakeTrigger{err: errors.New("query trade feed: 500")}, http.MethodGet, http.StatusBadGateway, ErrCodeFeedError},
		{"no poller", nil, http.MethodGet, http.StatusServiceUnavailable, ErrCodeNotConfigured},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, Deps{Poller: tt.trigger})
			rec := f.do(t, tt.method, "/api/v1/transactions/poll", "", nil)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			var sum models.PollSummary
			env := decodeEnvelope(t, rec, &sum)
			if tt.wantErr != "" {
				if env.Error == nil || env.Error.Code != tt.wantErr {
					t.Errorf("error = %+v, want %s", env.Error, tt.wantErr)
				}
				return
			}
			if sum.Processed != 1 || sum.TotalFetched != 7 {
				t.Errorf("summary = %+v", sum)
			}
		})
	}
}

type failingWebhook struct{ err error }

func (f failingWebhook) Handle(context.Context, []byte, string) (models.WebhookResult, error) {
	return models.WebhookResult{}, f.err
}
func (failingWebhook) MinAmount() float64       { return 4 }
func (failingWebhook) VerifiesSignatures() bool { return true }

func TestSolanaWebhook_InternalError(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Deps{Webhook: failingWebhook{err: errors.New("ledger unavailable")}})
	rec := f.do(t, http.MethodPost, "/api/v1/webhook/solana", webhookBody("sig1", 5_000_000_000), nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec, nil)
	if env.Error == nil || env.Error.Code != ErrCodeInternal {
		t.Errorf("error = %+v, want %s", env.Error, ErrCodeInternal)
	}
}

func webhookBody(sig string, lamports int64) string {
	return fmt.Sprintf(`[{"signature":%q,"feePayer":"Payer%s","nativeTransfers":[{"amount":%d}]}]`, sig, sig, lamports)
}

func TestSolanaWebhook(t *testing.T) {
	t.Parallel()
	valid := webhookBody("sig1", 5_000_000_000)
	tests := []struct {
		name     string
		body     string
		sign     bool
		wantCode int
		wantErr  string
	}{
		{"signed batch", valid, true, http.StatusOK, ""},
		{"tampered signature", valid, false, http.StatusUnauthorized, ErrCodeInvalidSignature},
		{"malformed", `"nope"`, true, http.StatusBadRequest, ErrCodeInvalidPayload},
		{"too large", `[` + strings.Repeat(" ", 5000) + `]`, true, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, Deps{})
			sig := "deadbeef"
			if tt.sign {
				sig = webhook.Sign([]byte(testSecret), []byte(tt.body))
			}
			rec := f.do(t, http.MethodPost, "/api/v1/webhook/solana", tt.body,
				map[string]string{f.cfg.Webhook.SignatureHeader: sig})
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			var result models.WebhookResult
			env := decodeEnvelope(t, rec, &result)
			if tt.wantErr != "" {
				if env.Error == nil || env.Error.Code != tt.wantErr {
					t.Errorf("error = %+v, want %s", env.Error, tt.wantErr)
				}
				if f.bcast.Len() != 0 {
					t.Error("rejected delivery published an event")
				}
				return
			}
			if result.Evaluated != 1 || result.Qualified != 1 || result.Processed != 1 {
				t.Errorf("result = %+v", result)
			}
			if recent := f.bcast.Recent(1); len(recent) != 1 || recent[0].Data.TransactionID != "sig1" {
				t.Errorf("recent = %+v", recent)
			}
		})
	}
}

func TestSolanaWebhookHealth(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Deps{})
	rec := f.do(t, http.MethodGet, "/api/v1/webhook/solana", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var health models.WebhookHealth
	decodeEnvelope(t, rec, &health)
	if health.Status != "ok" || health.MinAmount != 4 {
		t.Errorf("health = %+v", health)
	}
}

// A transaction announced through the webhook is not announced again when
// the poller later sees it.
func TestSharedAdmission_WebhookThenPoller(t *testing.T) {
	t.Parallel()
	source := &fakeSource{}
	cfg := config.Defaults()
	bcast := broadcast.New(10)
	gate := admission.New(ledger.New(500), cooldown.New(0))
	filter := qualify.NewFilter("", 4)
	pipe := pipeline.New(nil, nil)
	p := poller.New(poller.DefaultConfig(), source, filter, gate, pipe, bcast)
	receiver := webhook.NewReceiver("", filter, gate, pipe, bcast)

	cfg.Security.RateLimitDisabled = true
	router := NewRouter(NewHandler(cfg, Deps{Broadcaster: bcast, Gate: gate, Poller: p, Webhook: receiver}), nil).SetupChi()

	body := webhookBody("shared-tx", 6_000_000_000)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/webhook/solana", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("webhook status = %d", rec.Code)
	}

	amount := 6.0
	source.mu.Lock()
	source.trades = []models.Trade{{ID: "shared-tx", Owner: "Buyer", From: models.TradeLeg{Address: models.ReferenceMintSOL, UIAmount: &amount}}}
	source.mu.Unlock()

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/transactions/poll", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("poll status = %d", rec.Code)
	}
	var sum models.PollSummary
	decodeEnvelope(t, rec, &sum)
	if sum.Processed != 0 || sum.TotalFetched != 1 {
		t.Errorf("poll summary = %+v", sum)
	}
	if bcast.Len() != 1 {
		t.Errorf("broadcaster holds %d events, want 1", bcast.Len())
	}
}

func TestChat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		gen          commentary.Generator
		body         string
		wantCode     int
		wantFallback bool
		wantText     string
		wantErr      string
	}{
		{"generated", fakeGenerator{text: "Money flows into darkness.", configured: true}, `{"message":"hello"}`, http.StatusOK, false, "Money flows into darkness.", ""},
		{"not configured", fakeGenerator{}, `{"message":"hello"}`, http.StatusOK, true, "", ""},
		{"nil generator", nil, `{"message":"hello"}`, http.StatusOK, true, "", ""},
		{"generator error", fakeGenerator{err: errors.New("429"), configured: true}, `{"message":"hello"}`, http.StatusOK, true, "", ""},
		{"missing message", fakeGenerator{configured: true}, `{}`, http.StatusBadRequest, false, "", "VALIDATION_ERROR"},
		{"blank message", fakeGenerator{configured: true}, `{"message":"   "}`, http.StatusBadRequest, false, "", "VALIDATION_ERROR"},
		{"invalid json", fakeGenerator{configured: true}, `{"message":`, http.StatusBadRequest, false, "", ErrCodeInvalidPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, Deps{Generator: tt.gen})
			rec := f.do(t, http.MethodPost, "/api/v1/chat", tt.body, map[string]string{"Content-Type": "application/json"})
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			var resp models.ChatResponse
			env := decodeEnvelope(t, rec, &resp)
			if tt.wantErr != "" {
				if env.Error == nil || env.Error.Code != tt.wantErr {
					t.Errorf("error = %+v, want %s", env.Error, tt.wantErr)
				}
				return
			}
			if resp.Fallback != tt.wantFallback {
				t.Errorf("fallback = %v, want %v", resp.Fallback, tt.wantFallback)
			}
			if tt.wantFallback && !isFallback(resp.Text) {
				t.Errorf("text %q is not a canned line", resp.Text)
			}
			if tt.wantText != "" && resp.Text != tt.wantText {
				t.Errorf("text = %q, want %q", resp.Text, tt.wantText)
			}
		})
	}
}

func isFallback(text string) bool {
	for _, line := range commentary.Fallbacks {
		if line == text {
			return true
		}
	}
	return false
}

func TestVoice(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		synth    *fakeSynth
		body     string
		wantCode int
	}{
		{"audio", &fakeSynth{audio: []byte("ID3-mp3"), configured: true}, `{"text":"The \"void\" *stares*"}`, http.StatusOK},
		{"not configured", &fakeSynth{}, `{"text":"hi"}`, http.StatusServiceUnavailable},
		{"upstream failure", &fakeSynth{err: errors.New("elevenlabs: 500"), configured: true}, `{"text":"hi"}`, http.StatusBadGateway},
		{"missing text", &fakeSynth{configured: true}, `{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, Deps{Synthesizer: tt.synth})
			rec := f.do(t, http.MethodPost, "/api/v1/voice", tt.body, nil)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			if ct := rec.Header().Get("Content-Type"); ct != "audio/mpeg" {
				t.Errorf("Content-Type = %q", ct)
			}
			if rec.Body.String() != "ID3-mp3" {
				t.Errorf("body = %q", rec.Body.String())
			}
			if tt.synth.got != "The void stares" {
				t.Errorf("synthesized text = %q, want sanitized", tt.synth.got)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Deps{})
	f.bcast.Publish(models.ProcessedEvent{ID: "e1", Type: models.EventTypeResponse})

	rec := f.do(t, http.MethodGet, "/api/v1/health/", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var health models.HealthStatus
	decodeEnvelope(t, rec, &health)
	if health.Status != "healthy" || health.Buffered != 1 {
		t.Errorf("health = %+v", health)
	}
	if health.Components["feed"] || !health.Components["webhook"] || !health.Components["webhook_signature"] {
		t.Errorf("components = %v", health.Components)
	}

	if rec := f.do(t, http.MethodGet, "/api/v1/health/live", "", nil); rec.Code != http.StatusOK {
		t.Errorf("live status = %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/v1/health/ready", "", nil); rec.Code != http.StatusOK {
		t.Errorf("ready status = %d", rec.Code)
	}
}

func TestHealthReady_NoIngestion(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.Security.RateLimitDisabled = true
	router := NewRouter(NewHandler(cfg, Deps{Broadcaster: broadcast.New(1)}), nil).SetupChi()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status = %d, want 503", rec.Code)
	}
}

type fakeTokenInfo struct {
	overview *feed.TokenOverview
	err      error
}

func (f fakeTokenInfo) TokenOverview(context.Context) (*feed.TokenOverview, error) {
	return f.overview, f.err
}

func TestTokenOverview(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		info     TokenInfo
		wantCode int
	}{
		{"overview", fakeTokenInfo{overview: &feed.TokenOverview{Symbol: "VOID", Price: 0.01}}, http.StatusOK},
		{"not configured", fakeTokenInfo{err: feed.ErrNotConfigured}, http.StatusServiceUnavailable},
		{"upstream failure", fakeTokenInfo{err: errors.New("timeout")}, http.StatusBadGateway},
		{"no source", nil, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, Deps{TokenInfo: tt.info})
			rec := f.do(t, http.MethodGet, "/api/v1/health/token", "", nil)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.Security.RateLimitReqs = 2
	cfg.Security.RateLimitWindow = time.Minute
	router := NewRouter(NewHandler(cfg, Deps{Broadcaster: broadcast.New(1)}), nil).SetupChi()
	hits := metrics.APIRateLimitHits.WithLabelValues("default")
	before := testutil.ToFloat64(hits)

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/events/recent", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		router.ServeHTTP(last, req)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", last.Code)
	}
	if env := decodeEnvelope(t, last, nil); env.Error == nil || env.Error.Code != ErrCodeRateLimited {
		t.Errorf("error = %+v, want %s", env.Error, ErrCodeRateLimited)
	}
	if got := testutil.ToFloat64(hits) - before; got != 1 {
		t.Errorf("rate limit hits delta = %v, want 1", got)
	}
}
