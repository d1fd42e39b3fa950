// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package worker

import (
	"time"

	"github.com/unitemate/ranked-core/pkg/envelope"
	"github.com/unitemate/ranked-core/pkg/lifecycle"
	"github.com/unitemate/ranked-core/pkg/resolution"
	"github.com/unitemate/ranked-core/pkg/taskqueue"
)

// retryDelay spaces out redelivery of a task whose handler failed
// transiently.
const retryDelay = 30 * time.Second

// Consumer drains due tasks from the delay queue and dispatches them by
// kind. Handlers are idempotent, so at-least-once delivery is safe.
type Consumer struct {
	tasks     *taskqueue.Queue
	engine    *resolution.Engine
	lifecycle *lifecycle.Service

	now func() time.Time
}

func NewConsumer(tasks *taskqueue.Queue, engine *resolution.Engine, service *lifecycle.Service) *Consumer {
	return &Consumer{
		tasks:     tasks,
		engine:    engine,
		lifecycle: service,
		now:       time.Now,
	}
}

// DrainDue pops and handles every task that is due, stopping when the queue
// has nothing ready. A failed handler puts the task back with a delay rather
// than blocking the rest of the queue.
func (c *Consumer) DrainDue(scope *envelope.Scope) error {
	for {
		task, ok, err := c.tasks.PopDue(scope, c.now())
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		if handleErr := c.handle(scope, task); handleErr != nil {
			scope.Log.WithField("taskID", task.TaskID).WithField("kind", task.Kind).
				WithError(handleErr).Warn("CONSUMER: task failed, rescheduling")
			if err = c.tasks.Schedule(scope, task, c.now().Add(retryDelay)); err != nil {
				return err
			}
		}
	}
}

func (c *Consumer) handle(scope *envelope.Scope, task taskqueue.Task) error {
	switch task.Kind {
	case taskqueue.KindResolveMatch:
		return c.engine.Resolve(scope, task.MatchID)
	case taskqueue.KindReclaimSlots:
		_, err := c.lifecycle.ReclaimOrphanedSlots(scope)
		return err
	default:
		scope.Log.WithField("taskID", task.TaskID).WithField("kind", task.Kind).
			Warn("CONSUMER: unknown task kind dropped")
		return nil
	}
}
