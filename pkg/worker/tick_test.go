// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package worker

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unitemate/ranked-core/pkg/envelope"
	"github.com/unitemate/ranked-core/pkg/formation"
	"github.com/unitemate/ranked-core/pkg/lifecycle"
	"github.com/unitemate/ranked-core/pkg/lock"
	"github.com/unitemate/ranked-core/pkg/metrics"
	"github.com/unitemate/ranked-core/pkg/models"
	"github.com/unitemate/ranked-core/pkg/notify"
	"github.com/unitemate/ranked-core/pkg/pool"
	"github.com/unitemate/ranked-core/pkg/storage/redisstore"
	"github.com/unitemate/ranked-core/pkg/taskqueue"
	"github.com/unitemate/ranked-core/pkg/testsetup"
)

type tickFixture struct {
	scope   *envelope.Scope
	store   *redisstore.Store
	tasks   *taskqueue.Queue
	manager *pool.Manager
	tick    *Tick
}

func newTickFixture(t *testing.T) *tickFixture {
	scope := testsetup.NewTestScope()
	store, _ := testsetup.NewStore(t, "test")
	require.NoError(t, store.Pool.SeedSlots(scope))

	runLock := lock.NewManager(store.Client, "test", 10*time.Second)
	tasks := taskqueue.New(store.Client, "test")
	service := lifecycle.NewService("test", store, tasks, notify.Nop{}, metrics.Nop(), 20*time.Minute)
	manager := pool.NewManager("test", store, runLock, metrics.Nop())
	tick := NewTick("test", manager, store, formation.NewBacktrackingStrategy(), service, runLock, metrics.Nop())

	return &tickFixture{scope: scope, store: store, tasks: tasks, manager: manager, tick: tick}
}

func (f *tickFixture) admit(t *testing.T, count, baseRating int) {
	for i := 0; i < count; i++ {
		playerID := fmt.Sprintf("p%d", i)
		profile := models.NewDefaultProfile(playerID)
		profile.Rating = baseRating + i
		require.NoError(t, f.store.Profiles.Save(f.scope, profile))
		require.NoError(t, f.manager.Admit(f.scope, models.AdmitRequest{PlayerID: playerID, RangeSpreadSpeed: 10}))
	}
}

func TestTick_FormsMatchFromFullPool(t *testing.T) {
	fixture := newTickFixture(t)
	fixture.admit(t, 10, 1500)

	require.NoError(t, fixture.tick.Run(fixture.scope))

	entries, err := fixture.manager.Snapshot(fixture.scope)
	require.NoError(t, err)
	assert.Empty(t, entries, "matched players leave the pool")

	open, err := fixture.store.Matches.OpenMatchIDs(fixture.scope)
	require.NoError(t, err)
	require.Len(t, open, 1)

	record, err := fixture.store.Matches.Get(fixture.scope, open[0])
	require.NoError(t, err)
	assert.Len(t, record.TeamA, 5)
	assert.Len(t, record.TeamB, 5)
	assert.Equal(t, 1, record.VoiceChannelA)

	for _, playerID := range record.PlayerIDs() {
		profile, profileErr := fixture.store.Profiles.Get(fixture.scope, playerID)
		require.NoError(t, profileErr)
		assert.Equal(t, open[0], profile.AssignedMatchID)
	}

	pending, err := fixture.tasks.Len(fixture.scope)
	require.NoError(t, err)
	assert.Equal(t, 1, pending, "one resolve task per match")
}

func TestTick_SmallPoolExpandsEveryWindow(t *testing.T) {
	fixture := newTickFixture(t)
	fixture.admit(t, 9, 1500)

	require.NoError(t, fixture.tick.Run(fixture.scope))

	entries, err := fixture.manager.Snapshot(fixture.scope)
	require.NoError(t, err)
	require.Len(t, entries, 9)
	for _, entry := range entries {
		assert.Equal(t, 1, entry.RangeSpreadCount, "player %s", entry.PlayerID)
	}

	open, err := fixture.store.Matches.OpenMatchIDs(fixture.scope)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestTick_IncompatiblePlayersExpand(t *testing.T) {
	fixture := newTickFixture(t)

	for i := 0; i < 10; i++ {
		playerID := fmt.Sprintf("p%d", i)
		profile := models.NewDefaultProfile(playerID)
		profile.Rating = 1000 + i*200
		require.NoError(t, fixture.store.Profiles.Save(fixture.scope, profile))
		require.NoError(t, fixture.manager.Admit(fixture.scope, models.AdmitRequest{PlayerID: playerID, RangeSpreadSpeed: 10}))
	}

	require.NoError(t, fixture.tick.Run(fixture.scope))

	entries, err := fixture.manager.Snapshot(fixture.scope)
	require.NoError(t, err)
	require.Len(t, entries, 10)
	for _, entry := range entries {
		assert.Equal(t, 1, entry.RangeSpreadCount)
	}
}

func TestTick_LeaseHeldElsewhereSkips(t *testing.T) {
	fixture := newTickFixture(t)
	fixture.admit(t, 10, 1500)

	runLock := lock.NewManager(fixture.store.Client, "test", 10*time.Second)
	lease, err := runLock.Acquire(fixture.scope)
	require.NoError(t, err)
	defer func() { _ = lease.Release(fixture.scope) }()

	require.NoError(t, fixture.tick.Run(fixture.scope))

	open, err := fixture.store.Matches.OpenMatchIDs(fixture.scope)
	require.NoError(t, err)
	assert.Empty(t, open, "a skipped tick forms nothing")
}

func TestTick_SlotExhaustionAborts(t *testing.T) {
	fixture := newTickFixture(t)
	fixture.admit(t, 10, 1500)

	for i := 0; i < 50; i++ {
		_, err := fixture.store.Pool.AllocateSlot(fixture.scope)
		require.NoError(t, err)
	}

	err := fixture.tick.Run(fixture.scope)
	assert.ErrorIs(t, err, models.ErrCapacityExhausted)
}

func TestConsumer_DispatchesResolveTasks(t *testing.T) {
	fixture := newTickFixture(t)
	fixture.admit(t, 10, 1500)
	require.NoError(t, fixture.tick.Run(fixture.scope))

	// Nothing due yet: the resolve task sits 20 minutes out.
	consumer := NewConsumer(fixture.tasks, nil, nil)
	require.NoError(t, consumer.DrainDue(fixture.scope))

	pending, err := fixture.tasks.Len(fixture.scope)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}
