// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package worker

import (
	"context"
	"time"

	"github.com/unitemate/ranked-core/pkg/common"
	"github.com/unitemate/ranked-core/pkg/envelope"
)

// Runner owns the two periodic loops of a match worker: the matchmaking tick
// and the task-queue poll. Each iteration gets its own root scope and trace.
type Runner struct {
	tick     *Tick
	consumer *Consumer

	tickInterval time.Duration
	pollInterval time.Duration
}

func NewRunner(tick *Tick, consumer *Consumer, tickInterval, pollInterval time.Duration) *Runner {
	return &Runner{
		tick:         tick,
		consumer:     consumer,
		tickInterval: tickInterval,
		pollInterval: pollInterval,
	}
}

// Run blocks until ctx is canceled.
func (r *Runner) Run(ctx context.Context) {
	go r.loop(ctx, "MatchmakingTick", r.tickInterval, func(scope *envelope.Scope) error {
		return r.tick.Run(scope)
	})
	r.loop(ctx, "TaskConsumer", r.pollInterval, func(scope *envelope.Scope) error {
		return r.consumer.DrainDue(scope)
	})
}

func (r *Runner) loop(ctx context.Context, name string, interval time.Duration, fn func(*envelope.Scope) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			scope := envelope.NewRootScope(ctx, name, common.GenerateUUID())
			if err := fn(scope); err != nil {
				scope.Log.WithError(err).Errorf("%s: iteration failed", name)
			}
			scope.Finish()
		}
	}
}
