// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

/*
Package cache provides a small generic TTL cache for vendor responses.

It fronts rate-limited upstream calls whose answers change slowly, such as
the Birdeye token overview shown on the health page:

	overviews := cache.New[*feed.TokenOverview](30 * time.Second)
	ov, err := overviews.GetOrLoad(ctx, "overview", client.TokenOverview)

GetOrLoad merges concurrent misses for the same key into one upstream call
with singleflight. Failed loads are not cached, so the next request retries.
*/
package cache
