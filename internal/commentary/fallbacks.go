// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package commentary

import "math/rand/v2"

// Fallbacks are canned lines served by the chat endpoint when the generator
// is unavailable.
var Fallbacks = []string{
	"The moon is indifferent to your speculation. It has watched empires rise and fall. Your tokens are but dust in its cold light.",
	"You seek certainty in chaos. This is the human condition. Buy, do not buy. Either way, you face the abyss.",
	"The universe is hostile and pitiless. And yet here we are, discussing digital tokens. The absurdity is almost beautiful.",
	"Nature is not harmonious. It is chaos, hostility, and murder. Your portfolio reflects this truth.",
	"The penguin walks toward the mountains, knowing it will die. You invest, knowing you may lose everything. I see no difference.",
	"Every man should pull a boat over a mountain once in his life. Buying this token is merely another form of that burden.",
	"I do not believe in the so-called financial advice. I believe only in the ecstatic truth of human folly.",
	"The common denominator of the universe is not harmony, but chaos. Your transaction has been noted by the void.",
	"When I look at this chart, I see not numbers, but the collective dreams and nightmares of humanity.",
	"Civilization is like a thin layer of ice upon a deep ocean of chaos and darkness. So too is your investment.",
	"I have walked into volcanoes. I have eaten my shoe. This transaction seems almost reasonable by comparison.",
	"There is no such thing as a safe investment. There is only the illusion of safety before the inevitable collapse.",
	"You ask about the future. I can only tell you about the present moment, which is already slipping into the past.",
}

// RandomFallback returns one of Fallbacks.
func RandomFallback() string {
	return Fallbacks[rand.IntN(len(Fallbacks))]
}
