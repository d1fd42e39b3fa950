// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package penalty tallies misconduct accusations collected with match
// reports and decides when a player is referred for review.
package penalty

import (
	"github.com/unitemate/ranked-core/pkg/constants"
	"github.com/unitemate/ranked-core/pkg/envelope"
	"github.com/unitemate/ranked-core/pkg/models"
	"github.com/unitemate/ranked-core/pkg/utils"
)

// Referral is raised for one player named by more than
// ViolationReferralThreshold distinct reporters in a single match.
type Referral struct {
	MatchID     int64
	PlayerID    string
	NamedCount  int
	GamesPlayed int
	Correction  int
}

// Referrer receives referrals for out-of-band handling. Rating is never
// changed here; the correction is advisory.
type Referrer interface {
	Refer(scope *envelope.Scope, referral Referral)
}

// Tally counts, per accused player, how many times reports name them.
// Reports cannot name their own author; validation rejects that upstream.
func Tally(reports []models.Report) map[string]int {
	lists := make([][]string, 0, len(reports))
	for _, report := range reports {
		lists = append(lists, report.ViolationReport)
	}
	return utils.CountOccurrences(lists...)
}

// Correction is the advisory rating adjustment attached to a referral,
// scaled by how established the player's rating is.
func Correction(gamesPlayed int) int {
	return gamesPlayed / constants.PenaltyGamesDivisor
}

// Referrals applies the threshold to a tally and looks up each accused
// player's games played through the lookup func.
func Referrals(matchID int64, tally map[string]int, gamesPlayed func(playerID string) int) []Referral {
	var out []Referral
	for playerID, count := range tally {
		if count <= constants.ViolationReferralThreshold {
			continue
		}
		played := gamesPlayed(playerID)
		out = append(out, Referral{
			MatchID:     matchID,
			PlayerID:    playerID,
			NamedCount:  count,
			GamesPlayed: played,
			Correction:  Correction(played),
		})
	}
	return out
}
