// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package formation

import (
	"fmt"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/require"

	"github.com/unitemate/ranked-core/pkg/models"
	"github.com/unitemate/ranked-core/pkg/testsetup"
)

func makeEntries(ratings ...int) []models.WaitingEntry {
	entries := make([]models.WaitingEntry, len(ratings))
	for i, rating := range ratings {
		entries[i] = models.WaitingEntry{
			PlayerID:         fmt.Sprintf("player-%d", i),
			Rating:           rating,
			RangeSpreadSpeed: 10,
		}
	}
	return entries
}

func TestFormGroups_TenCompatiblePlayers(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	// All within the base +-50 window of each other.
	entries := makeEntries(1500, 1510, 1520, 1490, 1505, 1515, 1495, 1525, 1485, 1500)
	candidates, err := CandidatesFromEntries(entries)
	require.NoError(t, err)

	groups := NewBacktrackingStrategy().FormGroups(g.TestScope, candidates)
	g.Expect(groups).To(HaveLen(1))
	g.Expect(groups[0]).To(HaveLen(10))
}

func TestFormGroups_FewerThanTenYieldsNothing(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	entries := makeEntries(1500, 1500, 1500, 1500, 1500, 1500, 1500, 1500, 1500)
	candidates, err := CandidatesFromEntries(entries)
	require.NoError(t, err)

	groups := NewBacktrackingStrategy().FormGroups(g.TestScope, candidates)
	g.Expect(groups).To(BeEmpty())
}

func TestFormGroups_IncompatibleRatingsYieldNothing(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	// Two clusters of five, 1000 points apart, fresh windows.
	entries := makeEntries(1000, 1005, 1010, 1015, 1020, 2000, 2005, 2010, 2015, 2020)
	candidates, err := CandidatesFromEntries(entries)
	require.NoError(t, err)

	groups := NewBacktrackingStrategy().FormGroups(g.TestScope, candidates)
	g.Expect(groups).To(BeEmpty())
}

func TestFormGroups_PairwiseCompatibility(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	entries := makeEntries(
		1500, 1540, 1480, 1520, 1460, 1510, 1530, 1490, 1470, 1535,
		1700, 1705, 1710,
	)
	// A widened window keeps the 80-point spread eligible but not the outliers.
	for i := range entries {
		entries[i].RangeSpreadCount = 3
	}
	candidates, err := CandidatesFromEntries(entries)
	require.NoError(t, err)

	groups := NewBacktrackingStrategy().FormGroups(g.TestScope, candidates)
	g.Expect(groups).To(HaveLen(1))

	for _, group := range groups {
		for _, member := range group {
			for _, other := range group {
				rating := float64(other.Entry.Rating)
				g.Expect(rating).To(And(
					BeNumerically(">=", member.Lo),
					BeNumerically("<=", member.Hi),
				), "rating %v outside [%v, %v]", rating, member.Lo, member.Hi)
			}
		}
	}
}

func TestFormGroups_GroupsAreDisjoint(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	ratings := make([]int, 0, 25)
	for i := 0; i < 25; i++ {
		ratings = append(ratings, 1500+i)
	}
	candidates, err := CandidatesFromEntries(makeEntries(ratings...))
	require.NoError(t, err)

	groups := NewBacktrackingStrategy().FormGroups(g.TestScope, candidates)
	g.Expect(groups).To(HaveLen(2))

	seen := map[string]bool{}
	for _, group := range groups {
		for _, member := range group {
			g.Expect(seen[member.Entry.PlayerID]).To(BeFalse(),
				"player %s in two groups", member.Entry.PlayerID)
			seen[member.Entry.PlayerID] = true
		}
	}
}

func TestFormGroups_UnboundedSpreadAlwaysMatches(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	entries := makeEntries(100, 500, 900, 1300, 1700, 2100, 2500, 2900, 3300, 3700)
	for i := range entries {
		entries[i].RangeSpreadCount = 5
	}
	candidates, err := CandidatesFromEntries(entries)
	require.NoError(t, err)

	groups := NewBacktrackingStrategy().FormGroups(g.TestScope, candidates)
	g.Expect(groups).To(HaveLen(1))
}
