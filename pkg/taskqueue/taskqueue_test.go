// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package taskqueue

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unitemate/ranked-core/pkg/testsetup"
)

func newQueue(t *testing.T) *Queue {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, "test")
}

func TestQueue_FutureTaskIsNotDelivered(t *testing.T) {
	scope := testsetup.NewTestScope()
	queue := newQueue(t)
	now := time.Now()

	require.NoError(t, queue.Schedule(scope, NewResolveTask(42), now.Add(time.Hour)))

	_, ok, err := queue.PopDue(scope, now)
	require.NoError(t, err)
	assert.False(t, ok)

	pending, err := queue.Len(scope)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}

func TestQueue_DueTasksDeliverEarliestFirst(t *testing.T) {
	scope := testsetup.NewTestScope()
	queue := newQueue(t)
	now := time.Now()

	late := NewResolveTask(2)
	early := NewResolveTask(1)
	require.NoError(t, queue.Schedule(scope, late, now.Add(-time.Minute)))
	require.NoError(t, queue.Schedule(scope, early, now.Add(-time.Hour)))

	first, ok, err := queue.PopDue(scope, now)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), first.MatchID)

	second, ok, err := queue.PopDue(scope, now)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), second.MatchID)
	assert.Equal(t, KindResolveMatch, second.Kind)

	_, ok, err = queue.PopDue(scope, now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQueue_ReclaimTaskRoundTrip(t *testing.T) {
	scope := testsetup.NewTestScope()
	queue := newQueue(t)
	now := time.Now()

	require.NoError(t, queue.Schedule(scope, NewReclaimTask(), now.Add(-time.Second)))

	task, ok, err := queue.PopDue(scope, now)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, KindReclaimSlots, task.Kind)
	assert.NotEmpty(t, task.TaskID)
	assert.Zero(t, task.MatchID)
}
