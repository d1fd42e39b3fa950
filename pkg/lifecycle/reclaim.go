// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package lifecycle

import (
	"errors"

	"github.com/unitemate/ranked-core/pkg/constants"
	"github.com/unitemate/ranked-core/pkg/envelope"
	"github.com/unitemate/ranked-core/pkg/models"
)

// ReclaimOrphanedSlots audits the voice-slot space against the open-match
// index and returns every slot pair that is neither free nor held by an
// open match. A crash between slot allocation and match creation is the
// usual source of such orphans. It also flags open matches whose players
// no longer point back at them.
func (s *Service) ReclaimOrphanedSlots(scope *envelope.Scope) (int, error) {
	free, err := s.pool.FreeSlots(scope)
	if err != nil {
		return 0, err
	}
	freeSet := make(map[int]struct{}, len(free))
	for _, slot := range free {
		freeSet[slot] = struct{}{}
	}

	openIDs, err := s.matches.OpenMatchIDs(scope)
	if err != nil {
		return 0, err
	}

	held := make(map[int]struct{}, len(openIDs))
	for _, matchID := range openIDs {
		record, err := s.matches.Get(scope, matchID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				scope.Log.WithField("matchID", matchID).
					Warn("RECLAIM: open index references missing match")
				continue
			}
			return 0, err
		}
		held[record.VoiceChannelA] = struct{}{}
		s.auditAssignments(scope, record)
	}

	reclaimed := 0
	for slot := constants.FirstVoiceSlot; slot <= constants.LastVoiceSlot; slot += 2 {
		if _, ok := freeSet[slot]; ok {
			continue
		}
		if _, ok := held[slot]; ok {
			continue
		}
		if err := s.pool.ReleaseSlot(scope, slot); err != nil {
			return reclaimed, err
		}
		scope.Log.WithField("slot", slot).Info("RECLAIM: returned orphaned voice slot")
		reclaimed++
	}

	if reclaimed > 0 {
		s.metrics.AddSlotsReclaimed(s.namespace, reclaimed)
	}
	return reclaimed, nil
}

// auditAssignments logs players of an open match whose profile no longer
// references it. Such matches cannot complete normally and need operator
// attention.
func (s *Service) auditAssignments(scope *envelope.Scope, record models.MatchRecord) {
	for _, playerID := range record.PlayerIDs() {
		profile, err := s.profiles.Get(scope, playerID)
		if err != nil {
			scope.Log.WithField("playerID", playerID).WithError(err).
				Warn("RECLAIM: cannot read profile during audit")
			continue
		}
		if profile.AssignedMatchID != record.MatchID {
			scope.Log.WithField("matchID", record.MatchID).
				WithField("playerID", playerID).
				Warn("RECLAIM: player assignment diverged from open match")
		}
	}
}
