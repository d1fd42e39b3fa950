// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package worker drives the periodic matchmaking tick and consumes the
// delayed task queue.
package worker

import (
	"errors"
	"math/rand"
	"time"

	"github.com/unitemate/ranked-core/pkg/common"
	"github.com/unitemate/ranked-core/pkg/constants"
	"github.com/unitemate/ranked-core/pkg/envelope"
	"github.com/unitemate/ranked-core/pkg/formation"
	"github.com/unitemate/ranked-core/pkg/lifecycle"
	"github.com/unitemate/ranked-core/pkg/lock"
	"github.com/unitemate/ranked-core/pkg/metrics"
	"github.com/unitemate/ranked-core/pkg/models"
	"github.com/unitemate/ranked-core/pkg/pool"
	"github.com/unitemate/ranked-core/pkg/storage/redisstore"
)

// Tick is one matchmaking pass: snapshot the pool under the run lease, form
// groups, finalize each as a match, and widen the window of whoever is left.
type Tick struct {
	namespace string
	pool      *pool.Manager
	poolStore *redisstore.PoolStore
	strategy  formation.Strategy
	lifecycle *lifecycle.Service
	runLock   *lock.Manager
	metrics   metrics.RankedMetrics
	rng       *rand.Rand

	now func() time.Time
}

func NewTick(namespace string, manager *pool.Manager, store *redisstore.Store, strategy formation.Strategy,
	service *lifecycle.Service, runLock *lock.Manager, m metrics.RankedMetrics,
) *Tick {
	return &Tick{
		namespace: namespace,
		pool:      manager,
		poolStore: store.Pool,
		strategy:  strategy,
		lifecycle: service,
		runLock:   runLock,
		metrics:   m,
		rng:       common.NewRand(),
		now:       time.Now,
	}
}

// Run executes one tick. Losing the lease race to a concurrent tick is not
// an error. Voice-slot exhaustion is: the tick aborts and the condition needs
// operator attention before the next one can form matches.
func (t *Tick) Run(scope *envelope.Scope) error {
	start := t.now()

	lease, err := t.runLock.Acquire(scope)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			scope.Log.Info("TICK: run lease held elsewhere, skipping")
			return nil
		}
		return err
	}
	defer func() {
		if releaseErr := lease.Release(scope); releaseErr != nil {
			scope.Log.WithError(releaseErr).Warn("TICK: lease release failed")
		}
	}()

	entries, err := t.pool.Snapshot(scope)
	if err != nil {
		return err
	}

	if len(entries) < constants.GroupSize {
		t.metrics.AddUnmatchedReason(t.namespace, constants.ReasonNotEnoughPlayers)
		if err = t.expandAll(scope, entries, nil); err != nil {
			return err
		}
		return t.finishTick(scope, start, 0)
	}

	candidates, err := formation.CandidatesFromEntries(entries)
	if err != nil {
		return err
	}
	searchScope := scope.NewChildScope("FormGroups")
	searchScope.SetAttributes("ranked.pool_size", len(candidates))
	groups := t.strategy.FormGroups(searchScope, candidates)
	searchScope.Finish()

	matched := make(map[string]struct{}, len(groups)*constants.GroupSize)
	if len(groups) > 0 {
		firstID, reserveErr := t.poolStore.ReserveMatchIDs(scope, len(groups))
		if reserveErr != nil {
			return reserveErr
		}
		for i, group := range groups {
			if err = t.createMatch(scope, group, firstID+int64(i)); err != nil {
				return err
			}
			for _, candidate := range group {
				matched[candidate.Entry.PlayerID] = struct{}{}
			}
		}
		t.metrics.AddGroupsFormed(t.namespace, len(groups))
	} else {
		t.metrics.AddUnmatchedReason(t.namespace, constants.ReasonNoCompatibleSet)
	}

	if err = t.expandAll(scope, entries, matched); err != nil {
		return err
	}
	return t.finishTick(scope, start, len(groups))
}

func (t *Tick) createMatch(scope *envelope.Scope, group []formation.Candidate, matchID int64) error {
	slot, err := t.lifecycle.AllocateSlot(scope)
	if err != nil {
		if errors.Is(err, models.ErrCapacityExhausted) {
			scope.Log.Error("TICK: voice slots exhausted, aborting tick")
		}
		return err
	}

	teamA, teamB := formation.SplitTeams(group, t.rng)
	_, err = t.lifecycle.Create(scope, teamA, teamB, matchID, slot)
	return err
}

// expandAll widens the window of every snapshotted player that did not end up
// in a match this tick.
func (t *Tick) expandAll(scope *envelope.Scope, entries []models.WaitingEntry, matched map[string]struct{}) error {
	for _, entry := range entries {
		if _, ok := matched[entry.PlayerID]; ok {
			continue
		}
		if err := t.pool.ExpandRange(scope, entry.PlayerID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				// Withdrew between snapshot and expansion.
				continue
			}
			return err
		}
	}
	return nil
}

func (t *Tick) finishTick(scope *envelope.Scope, start time.Time, formed int) error {
	if err := t.pool.PublishMeta(scope); err != nil {
		return err
	}
	elapsed := t.now().Sub(start)
	t.metrics.AddTickElapsedTimeMs(t.namespace, elapsed)
	scope.Log.WithField("groupsFormed", formed).WithField("elapsed", elapsed.String()).
		Info("TICK: completed")
	return nil
}
