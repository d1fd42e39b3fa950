// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package resolution

import (
	"math"

	"github.com/unitemate/ranked-core/pkg/constants"
)

// EloDelta is the rating amount transferred from loser to winner, K=16.
// Equal ratings move 8 points; a heavy-favorite win approaches zero.
// The early-career bonus is applied by the caller, not here, so the raw
// transfer stays zero-sum.
func EloDelta(winnerRating, loserRating int) int {
	expected := 1.0 / (math.Pow(10, float64(winnerRating-loserRating)/400.0) + 1.0)
	return int(math.Round(float64(constants.EloKFactor) * (1.0 - expected)))
}

// CorrectedDelta is a single player's own signed delta with the early-career
// bonus folded in. New players converge faster; the bonus applies on a loss
// as well as a win.
func CorrectedDelta(delta int, won bool, gamesPlayed int) int {
	signed := delta
	if !won {
		signed = -delta
	}
	if gamesPlayed < constants.EarlyCareerGames {
		signed += constants.EarlyCareerBonus
	}
	return signed
}
