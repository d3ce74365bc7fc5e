// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

/*
Package webhook ingests pushed Solana enhanced transactions.

A delivery is a JSON array of transactions or a single transaction object.
When a secret is configured the hex HMAC-SHA256 of the raw body must be sent
in the signature header; deliveries without it are rejected.

The SOL amount of each transaction is taken from the first source present:

  - the sum of nativeTransfers[].amount
  - events.swap.nativeInput.amount
  - a numeric top-level amount

All three are lamports. Qualifying transactions go through the same
admission gate as the poller, so a transaction seen on both paths is
announced once and the cooldown spans both.
*/
package webhook
