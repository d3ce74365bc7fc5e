// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

// Package qualify decides whether a trade is a purchase large enough to announce.
//
// A trade qualifies only when the owner paid with the reference asset (a buy
// of the tracked token) and the decimal-adjusted amount of that leg is at or
// above the threshold. Comparisons use shopspring/decimal so that values such
// as 4.0 and 4 compare equal regardless of float formatting.
package qualify

import (
	"github.com/shopspring/decimal"

	"github.com/tomtom215/tradecaster/internal/models"
)

// LamportsPerSOL converts native lamport integers into SOL.
var LamportsPerSOL = decimal.New(1, 9)

// Result is the normalized purchase extracted from a qualifying trade.
type Result struct {
	Amount    float64
	Purchaser string
}

// Filter applies a reference mint and an inclusive threshold.
type Filter struct {
	referenceMint string
	threshold     decimal.Decimal
}

// NewFilter returns a Filter for purchases paid in referenceMint. An empty
// mint defaults to wrapped SOL.
func NewFilter(referenceMint string, threshold float64) *Filter {
	if referenceMint == "" {
		referenceMint = models.ReferenceMintSOL
	}
	return &Filter{referenceMint: referenceMint, threshold: decimal.NewFromFloat(threshold)}
}

// Threshold returns the configured minimum.
func (f *Filter) Threshold() float64 {
	return f.threshold.InexactFloat64()
}

// Qualifies reports whether trade is a buy meeting the threshold. Sells,
// trades not paid in the reference asset, and missing or zero amounts never
// qualify.
func (f *Filter) Qualifies(trade models.Trade) (Result, bool) {
	if trade.From.Address != f.referenceMint {
		return Result{}, false
	}
	if trade.From.UIAmount == nil {
		return Result{}, false
	}
	amount := decimal.NewFromFloat(*trade.From.UIAmount)
	if !f.Meets(amount) {
		return Result{}, false
	}
	return Result{Amount: amount.InexactFloat64(), Purchaser: trade.Owner}, true
}

// Meets reports whether a positive amount is at or above the threshold.
func (f *Filter) Meets(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.GreaterThanOrEqual(f.threshold)
}

// MeetsFloat is Meets for float amounts.
func (f *Filter) MeetsFloat(amount float64) bool {
	return f.Meets(decimal.NewFromFloat(amount))
}

// Apply filters trades in feed order and returns the qualifying purchases.
func (f *Filter) Apply(trades []models.Trade, source string) []models.QualifyingPurchase {
	var out []models.QualifyingPurchase
	for _, trade := range trades {
		r, ok := f.Qualifies(trade)
		if !ok {
			continue
		}
		out = append(out, models.QualifyingPurchase{
			TransactionID: trade.ID,
			Amount:        r.Amount,
			Purchaser:     r.Purchaser,
			Source:        source,
		})
	}
	return out
}

// LamportsToAmount converts a lamport count to SOL.
func LamportsToAmount(lamports decimal.Decimal) decimal.Decimal {
	return lamports.Div(LamportsPerSOL)
}
