// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

// Package logging provides the process-wide zerolog logger for Tradecaster.
//
// Every package logs through the package-level helpers instead of holding its
// own logger:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("tx", id).Float64("amount", amt).Msg("qualifying purchase admitted")
//	logging.Ctx(ctx).Warn().Err(err).Msg("speech synthesis failed")
//
// Ctx adds correlation_id (one per poll tick or webhook batch) and request_id
// (one per HTTP request) when present in the context.
//
// SlogHandler bridges log/slog to zerolog for libraries such as sutureslog
// that only accept an *slog.Logger.
//
// Always terminate a chain with Msg or Send; an unterminated event is dropped.
package logging
