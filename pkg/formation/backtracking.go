// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package formation

import (
	"math"

	"gopkg.in/typ.v4/slices"

	"github.com/unitemate/ranked-core/pkg/constants"
	"github.com/unitemate/ranked-core/pkg/envelope"
)

// BacktrackingStrategy is a depth-first search with running-interval pruning.
// For a fixed starting index it scans forward; a candidate joins the partial
// group only when its own rating lies inside the running interval and its own
// interval still intersects it. The narrowed intersection is carried into the
// recursion and the search backtracks on dead ends. The first complete group
// in scan order wins.
type BacktrackingStrategy struct {
	groupSize int
}

func NewBacktrackingStrategy() *BacktrackingStrategy {
	return &BacktrackingStrategy{groupSize: constants.GroupSize}
}

func (s *BacktrackingStrategy) FormGroups(scope *envelope.Scope, candidates []Candidate) [][]Candidate {
	var groups [][]Candidate

	remaining := candidates
	for len(remaining) >= s.groupSize {
		group := s.search(remaining, 0, nil, math.Inf(-1), math.Inf(1), math.Inf(1), math.Inf(-1))
		if group == nil {
			break
		}
		groups = append(groups, group)

		used := make(map[string]struct{}, len(group))
		for _, member := range group {
			used[member.Entry.PlayerID] = struct{}{}
		}
		remaining = slices.Filter(remaining, func(c Candidate) bool {
			_, taken := used[c.Entry.PlayerID]
			return !taken
		})
	}

	if len(groups) > 0 {
		scope.Log.WithField("groups", len(groups)).Info("FORMATION: groups formed")
	}
	return groups
}

// search carries two prunes: lo..hi is the intersection of the members'
// acceptable intervals, which the next rating must fall into, and
// minRating..maxRating is the span of member ratings, which the next
// candidate's own interval must cover. Together they keep compatibility
// pairwise, not just against the newest member.
func (s *BacktrackingStrategy) search(candidates []Candidate, start int, current []Candidate, lo, hi, minRating, maxRating float64) []Candidate {
	if len(current) == s.groupSize {
		return current
	}

	for i := start; i < len(candidates); i++ {
		candidate := candidates[i]

		rating := float64(candidate.Entry.Rating)
		if rating < lo || rating > hi {
			continue
		}
		if candidate.Lo > minRating || candidate.Hi < maxRating {
			continue
		}

		newLo := max(lo, candidate.Lo)
		newHi := min(hi, candidate.Hi)
		if newLo > newHi {
			continue
		}

		next := make([]Candidate, len(current), len(current)+1)
		copy(next, current)
		next = append(next, candidate)

		if group := s.search(candidates, i+1, next, newLo, newHi, min(minRating, rating), max(maxRating, rating)); group != nil {
			return group
		}
	}

	return nil
}
