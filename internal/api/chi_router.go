// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/tradecaster/internal/middleware"
)

// Router wires handlers to routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter returns a Router. A nil mw uses the handler's security config.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(NewChiMiddlewareConfig(handler.config.Security))
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// SetupChi builds the route tree.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/token", router.handler.TokenOverview)
	})

	r.Route("/api/v1/webhook", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitWebhook))
		r.Use(middleware.PrometheusMetrics)
		r.Get("/solana", router.handler.SolanaWebhookHealth)
		r.Post("/solana", router.handler.SolanaWebhook)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/events", router.handler.Events)
		r.Get("/events/recent", router.handler.RecentEvents)
		r.Get("/ws", router.handler.WebSocket)

		r.Get("/transactions/poll", router.handler.Poll)
		r.Post("/transactions/poll", router.handler.Poll)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitCustom(RateLimitGenerate))
			r.Post("/chat", router.handler.Chat)
			r.Post("/voice", router.handler.Voice)
		})
	})

	return r
}
