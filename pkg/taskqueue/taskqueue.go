// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package taskqueue schedules typed delayed tasks on a Redis sorted set
// scored by due time. Delivery is at-least-once: a popped task that fails is
// re-scheduled by the consumer, and duplicate delivery must be tolerated by
// handlers (the resolution engine is idempotent by design).
package taskqueue

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/unitemate/ranked-core/pkg/envelope"
)

// Task kinds.
const (
	KindResolveMatch = "resolve_match"
	KindReclaimSlots = "reclaim_slots"
)

// Task is the discriminated command carried through the delay queue.
type Task struct {
	TaskID  string `json:"task_id"`
	Kind    string `json:"kind"`
	MatchID int64  `json:"match_id,omitempty"`
}

func NewResolveTask(matchID int64) Task {
	return Task{TaskID: ulid.Make().String(), Kind: KindResolveMatch, MatchID: matchID}
}

func NewReclaimTask() Task {
	return Task{TaskID: ulid.Make().String(), Kind: KindReclaimSlots}
}

// popDueScript atomically takes the earliest task that is due, if any.
var popDueScript = redis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, 1)
if #due == 0 then
  return false
end
redis.call('ZREM', KEYS[1], due[1])
return due[1]
`)

type Queue struct {
	client *redis.Client
	key    string
}

func New(client *redis.Client, namespace string) *Queue {
	return &Queue{
		client: client,
		key:    "tasks:" + namespace + ":scheduled",
	}
}

// Schedule enqueues the task for delivery no earlier than due.
func (q *Queue) Schedule(scope *envelope.Scope, task Task, due time.Time) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return eris.Wrap(err, "marshal task")
	}
	err = q.client.ZAdd(scope.Ctx, q.key, redis.Z{Score: float64(due.Unix()), Member: string(payload)}).Err()
	return eris.Wrap(err, "schedule task")
}

// PopDue removes and returns the earliest due task. The second return is
// false when nothing is due.
func (q *Queue) PopDue(scope *envelope.Scope, now time.Time) (Task, bool, error) {
	raw, err := popDueScript.Run(scope.Ctx, q.client, []string{q.key}, now.Unix()).Text()
	if err == redis.Nil {
		return Task{}, false, nil
	}
	if err != nil {
		return Task{}, false, eris.Wrap(err, "pop due task")
	}

	var task Task
	if err = json.Unmarshal([]byte(raw), &task); err != nil {
		return Task{}, false, eris.Wrap(err, "unmarshal task")
	}
	return task, true, nil
}

// Len returns the number of scheduled tasks.
func (q *Queue) Len(scope *envelope.Scope) (int, error) {
	n, err := q.client.ZCard(scope.Ctx, q.key).Result()
	if err != nil {
		return 0, eris.Wrap(err, "count scheduled tasks")
	}
	return int(n), nil
}
