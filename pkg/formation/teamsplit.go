// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package formation

import (
	"math/rand"

	pie "github.com/elliotchance/pie/v2"

	"github.com/unitemate/ranked-core/pkg/models"
)

// SplitTeams buckets a formed group into adjacent pairs by descending rating
// and assigns each pair's two members to opposite sides at random. Skill is
// interleaved evenly across both teams while the side stays unpredictable.
func SplitTeams(group []Candidate, rng *rand.Rand) (teamA, teamB []models.TeamSlot) {
	byRating := pie.SortUsing(group, func(a, b Candidate) bool {
		return a.Entry.Rating > b.Entry.Rating
	})

	for i := 0; i+1 < len(byRating); i += 2 {
		first, second := byRating[i], byRating[i+1]
		if rng.Intn(2) == 1 {
			first, second = second, first
		}
		teamA = append(teamA, toTeamSlot(first))
		teamB = append(teamB, toTeamSlot(second))
	}
	return teamA, teamB
}

func toTeamSlot(c Candidate) models.TeamSlot {
	return models.TeamSlot{
		PlayerID:   c.Entry.PlayerID,
		Rating:     c.Entry.Rating,
		BestRating: c.Entry.BestRating,
	}
}
