// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package pool admits and evicts waiting players and tracks per-player
// search-range expansion between matchmaking ticks.
package pool

import (
	"fmt"
	"time"

	pie "github.com/elliotchance/pie/v2"
	"gonum.org/v1/gonum/stat"

	"github.com/unitemate/ranked-core/pkg/envelope"
	"github.com/unitemate/ranked-core/pkg/lock"
	"github.com/unitemate/ranked-core/pkg/metrics"
	"github.com/unitemate/ranked-core/pkg/models"
	"github.com/unitemate/ranked-core/pkg/storage/redisstore"
)

type Manager struct {
	namespace string
	pool      *redisstore.PoolStore
	profiles  *redisstore.ProfileStore
	runLock   *lock.Manager
	metrics   metrics.RankedMetrics

	now func() time.Time
}

func NewManager(namespace string, store *redisstore.Store, runLock *lock.Manager, m metrics.RankedMetrics) *Manager {
	return &Manager{
		namespace: namespace,
		pool:      store.Pool,
		profiles:  store.Profiles,
		runLock:   runLock,
		metrics:   m,
		now:       time.Now,
	}
}

// Admit upserts a waiting entry with a fresh rating snapshot from the
// player's profile. Rejected while a tick holds the run lock (Busy) or while
// the player is still inside an unresolved match (AlreadyAssigned).
func (m *Manager) Admit(scope *envelope.Scope, req models.AdmitRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	held, err := m.runLock.IsHeld(scope)
	if err != nil {
		return err
	}
	if held {
		return models.ErrBusy
	}

	profile, err := m.profiles.Get(scope, req.PlayerID)
	if err != nil {
		return err
	}
	if profile.AssignedMatchID != 0 {
		return fmt.Errorf("%w: match %d", models.ErrAlreadyAssigned, profile.AssignedMatchID)
	}

	entry := models.WaitingEntry{
		PlayerID:         req.PlayerID,
		Rating:           profile.Rating,
		BestRating:       profile.MaxRating,
		Blocking:         req.Blocking,
		DesiredRole:      req.DesiredRole,
		RangeSpreadSpeed: req.RangeSpreadSpeed,
		RangeSpreadCount: 0,
		DiscordHandle:    req.DiscordHandle,
		EnqueuedAt:       m.now().Unix(),
	}
	if err = m.pool.UpsertEntry(scope, entry); err != nil {
		return err
	}

	scope.Log.WithField("playerID", req.PlayerID).Info("POOL: player admitted")
	return m.PublishMeta(scope)
}

// Withdraw deletes the player's waiting entry unconditionally (no error when
// the player was not pooled), unless a tick holds the run lock.
func (m *Manager) Withdraw(scope *envelope.Scope, playerID string) error {
	held, err := m.runLock.IsHeld(scope)
	if err != nil {
		return err
	}
	if held {
		return models.ErrBusy
	}

	if err = m.pool.DeleteEntry(scope, playerID); err != nil {
		return err
	}

	scope.Log.WithField("playerID", playerID).Info("POOL: player withdrawn")
	return m.PublishMeta(scope)
}

// Snapshot returns the waiting pool oldest-first, so long-waiting players are
// tried first and are never starved by newer arrivals.
func (m *Manager) Snapshot(scope *envelope.Scope) ([]models.WaitingEntry, error) {
	return m.pool.Snapshot(scope)
}

// ExpandRange widens one unmatched player's acceptable window by a step.
func (m *Manager) ExpandRange(scope *envelope.Scope, playerID string) error {
	return m.pool.IncrementSpread(scope, playerID)
}

// PublishMeta refreshes the display snapshot (ratings and range widths in
// rating-descending order) and the pool gauges.
func (m *Manager) PublishMeta(scope *envelope.Scope) error {
	entries, err := m.pool.Snapshot(scope)
	if err != nil {
		return err
	}

	byRating := pie.SortUsing(entries, func(a, b models.WaitingEntry) bool {
		return a.Rating > b.Rating
	})
	rateList := pie.Map(byRating, func(e models.WaitingEntry) int { return e.Rating })
	rangeList := pie.Map(byRating, func(e models.WaitingEntry) int { return e.RangeHalfWidth() })

	if err = m.pool.PublishLists(scope, rateList, rangeList); err != nil {
		return err
	}

	m.metrics.SetQueueDepth(m.namespace, len(entries))
	if len(entries) > 1 {
		ratings := pie.Map(rateList, func(r int) float64 { return float64(r) })
		m.metrics.SetQueueRatingStats(m.namespace, stat.Mean(ratings, nil), stat.StdDev(ratings, nil))
	}
	return nil
}
