// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package lifecycle owns a match record from creation through report
// accumulation, and the voice-slot resource tied to it.
package lifecycle

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/unitemate/ranked-core/pkg/envelope"
	"github.com/unitemate/ranked-core/pkg/metrics"
	"github.com/unitemate/ranked-core/pkg/models"
	"github.com/unitemate/ranked-core/pkg/storage/redisstore"
	"github.com/unitemate/ranked-core/pkg/taskqueue"
)

// Notifier announces a formed match out of band. Implementations are
// fire-and-forget; failures never affect match creation.
type Notifier interface {
	AnnounceMatch(scope *envelope.Scope, record models.MatchRecord)
}

type Service struct {
	namespace string
	matches   *redisstore.MatchStore
	pool      *redisstore.PoolStore
	profiles  *redisstore.ProfileStore
	tasks     *taskqueue.Queue
	notifier  Notifier
	metrics   metrics.RankedMetrics

	initialResolveDelay time.Duration
	now                 func() time.Time
}

func NewService(namespace string, store *redisstore.Store, tasks *taskqueue.Queue, notifier Notifier,
	m metrics.RankedMetrics, initialResolveDelay time.Duration,
) *Service {
	return &Service{
		namespace:           namespace,
		matches:             store.Matches,
		pool:                store.Pool,
		profiles:            store.Profiles,
		tasks:               tasks,
		notifier:            notifier,
		metrics:             m,
		initialResolveDelay: initialResolveDelay,
		now:                 time.Now,
	}
}

// Create persists a formed group as a match in one atomic write (entries
// removed, profiles marked assigned, record inserted), schedules the first
// resolution check, and announces the rosters.
func (s *Service) Create(scope *envelope.Scope, teamA, teamB []models.TeamSlot, matchID int64, voiceChannelA int) (models.MatchRecord, error) {
	record := models.MatchRecord{
		MatchID:       matchID,
		TeamA:         teamA,
		TeamB:         teamB,
		Status:        models.MatchStatusMatched,
		MatchedAt:     s.now().Unix(),
		VoiceChannelA: voiceChannelA,
	}

	if err := s.matches.Create(scope, record); err != nil {
		return models.MatchRecord{}, err
	}
	scope.SetAttributes(envelope.MatchIDTag, matchID)
	scope.SetAttributes(envelope.TeamMembersTag, record.PlayerIDs())

	due := s.now().Add(s.initialResolveDelay)
	if err := s.tasks.Schedule(scope, taskqueue.NewResolveTask(matchID), due); err != nil {
		// The match exists; without the task it will only resolve via a
		// manual nudge, so this has to surface.
		return record, err
	}

	if s.notifier != nil {
		s.notifier.AnnounceMatch(scope, record)
	}

	scope.Log.WithField("matchID", matchID).Info("LIFECYCLE: match created")
	return record, nil
}

// AppendReport validates, stamps and appends one player's report. NotFound
// covers both an unknown match and one already resolved.
func (s *Service) AppendReport(scope *envelope.Scope, matchID int64, report models.Report) error {
	if err := report.Validate(); err != nil {
		return err
	}
	report.ReportID = ulid.Make().String()
	report.ReportedAt = s.now().Unix()

	return s.matches.AppendReport(scope, matchID, report)
}

func (s *Service) Get(scope *envelope.Scope, matchID int64) (models.MatchRecord, error) {
	return s.matches.Get(scope, matchID)
}

// AllocateSlot reserves the next free voice-slot pair for a match being
// finalized. CapacityExhausted is fatal for the tick.
func (s *Service) AllocateSlot(scope *envelope.Scope) (int, error) {
	return s.pool.AllocateSlot(scope)
}

// ReleaseSlot returns a match's voice-slot pair to the free set.
func (s *Service) ReleaseSlot(scope *envelope.Scope, slot int) error {
	return s.pool.ReleaseSlot(scope, slot)
}
