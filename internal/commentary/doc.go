// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

// Package commentary generates short narrated observations about purchases
// through the OpenAI chat completions API. Output is capped to a fixed word
// count; callers substitute their own fallback on error.
package commentary
