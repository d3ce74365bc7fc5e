// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

// Package ledger records which transaction ids have already been considered
// for announcement. The in-memory set is bounded and trimmed by halves; an
// optional BadgerDB or Redis store carries ids across restarts and replicas.
package ledger
