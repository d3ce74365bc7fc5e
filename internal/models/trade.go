// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package models

// ReferenceMintSOL is the wrapped SOL mint, the default reference asset.
const ReferenceMintSOL = "So11111111111111111111111111111111111111112"

// Purchase sources.
const (
	SourcePoller  = "poller"
	SourceWebhook = "webhook"
)

// TradeLeg is one side of a swap as reported by the trade feed.
// UIAmount is already adjusted for the token's decimals; nil means the feed
// omitted it.
type TradeLeg struct {
	Symbol   string   `json:"symbol"`
	Decimals int      `json:"decimals"`
	Address  string   `json:"address"`
	Amount   float64  `json:"amount"`
	UIAmount *float64 `json:"uiAmount"`
	Price    *float64 `json:"price"`
}

// Trade is a single swap returned by the trade feed. From is the leg the
// owner paid with and To is the leg they received.
type Trade struct {
	ID        string   `json:"txHash"`
	BlockTime int64    `json:"blockUnixTime"`
	Source    string   `json:"source"`
	Owner     string   `json:"owner"`
	From      TradeLeg `json:"from"`
	To        TradeLeg `json:"to"`
	Side      string   `json:"side"`
	VolumeUSD float64  `json:"volumeUSD"`
}

// QualifyingPurchase is a buy that met the threshold. Amount is denominated
// in the reference asset.
type QualifyingPurchase struct {
	TransactionID string
	Amount        float64
	Purchaser     string
	Source        string
}

// PollSummary is the outcome of a single poller tick.
type PollSummary struct {
	Processed    int  `json:"processed"`
	Skipped      int  `json:"skipped"`
	TotalFetched int  `json:"totalFetched"`
	Qualifying   int  `json:"qualifying"`
	Cooldown     bool `json:"cooldown"`
}

// WebhookResult is the outcome of one webhook delivery.
type WebhookResult struct {
	Evaluated int `json:"evaluated"`
	Qualified int `json:"qualified"`
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
}
