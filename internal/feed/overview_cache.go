// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package feed

import (
	"context"
	"time"

	"github.com/tomtom215/tradecaster/internal/cache"
)

// OverviewSource fetches the token overview.
type OverviewSource interface {
	TokenOverview(ctx context.Context) (*TokenOverview, error)
}

const overviewKey = "token_overview"

// CachedOverview serves the token overview from a short-lived cache so the
// health page does not spend the Birdeye rate budget the poller needs.
type CachedOverview struct {
	source OverviewSource
	cache  *cache.Cache[*TokenOverview]
}

// NewCachedOverview caches source for ttl. A non-positive ttl disables the
// cache.
func NewCachedOverview(source OverviewSource, ttl time.Duration) *CachedOverview {
	c := &CachedOverview{source: source}
	if ttl > 0 {
		c.cache = cache.New[*TokenOverview](ttl)
	}
	return c
}

// TokenOverview implements OverviewSource.
func (c *CachedOverview) TokenOverview(ctx context.Context) (*TokenOverview, error) {
	if c.cache == nil {
		return c.source.TokenOverview(ctx)
	}
	return c.cache.GetOrLoad(ctx, overviewKey, c.source.TokenOverview)
}
