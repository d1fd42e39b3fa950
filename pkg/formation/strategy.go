// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package formation finds disjoint range-compatible groups of ten in the
// waiting pool and splits each into two balanced teams.
package formation

import (
	"github.com/mitchellh/copystructure"

	"github.com/unitemate/ranked-core/pkg/envelope"
	"github.com/unitemate/ranked-core/pkg/models"
)

// Candidate is one pooled player with their acceptable rating interval fixed
// at snapshot time.
type Candidate struct {
	Entry models.WaitingEntry
	Lo    float64
	Hi    float64
}

// Strategy finds disjoint eligible groups in a pool snapshot. Implementations
// own the candidate slice they are handed and may reorder it freely.
//
// The provided implementation is satisficing, not globally optimal: it
// accepts the first complete group found in scan order, so a later-queued
// tight-range pair can block an earlier loose-range formation. That trade-off
// buys a bounded wait time and is deliberate.
type Strategy interface {
	FormGroups(scope *envelope.Scope, candidates []Candidate) [][]Candidate
}

// CandidatesFromEntries builds candidates over a private deep copy of the
// snapshot, so a strategy can never mutate the caller's entries.
func CandidatesFromEntries(entries []models.WaitingEntry) ([]Candidate, error) {
	copied, err := copystructure.Copy(entries)
	if err != nil {
		return nil, err
	}
	owned := copied.([]models.WaitingEntry)

	candidates := make([]Candidate, 0, len(owned))
	for _, entry := range owned {
		lo, hi := entry.AcceptableInterval()
		candidates = append(candidates, Candidate{Entry: entry, Lo: lo, Hi: hi})
	}
	return candidates, nil
}
