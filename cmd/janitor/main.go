// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// janitor periodically sweeps the voice-slot space for slots orphaned by
// interrupted ticks and returns them to the free set.
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	env "github.com/caarlos0/env"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/unitemate/ranked-core/pkg/common"
	"github.com/unitemate/ranked-core/pkg/config"
	"github.com/unitemate/ranked-core/pkg/envelope"
	"github.com/unitemate/ranked-core/pkg/lifecycle"
	"github.com/unitemate/ranked-core/pkg/metrics"
	"github.com/unitemate/ranked-core/pkg/notify"
	"github.com/unitemate/ranked-core/pkg/storage/redisstore"
	"github.com/unitemate/ranked-core/pkg/taskqueue"
)

func main() {
	cfg := config.Config{}
	if err := env.Parse(&cfg); err != nil {
		logrus.WithError(err).Fatal("unable to parse environment variables")
	}
	if cfg.ReclaimIntervalSecond <= 0 {
		logrus.Info("reclaim sweeps disabled, nothing to do")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := redisstore.New(redisstore.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, cfg.Namespace)
	defer store.Close()

	rankedMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	tasks := taskqueue.New(store.Client, cfg.Namespace)
	service := lifecycle.NewService(cfg.Namespace, store, tasks, notify.Nop{}, rankedMetrics,
		time.Duration(cfg.ResolveInitialDelaySecond)*time.Second)

	interval := time.Duration(cfg.ReclaimIntervalSecond) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logrus.WithField("namespace", cfg.Namespace).WithField("interval", interval.String()).
		Info("janitor started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("janitor stopped")
			return
		case <-ticker.C:
			scope := envelope.NewRootScope(ctx, "ReclaimSweep", common.GenerateUUID())
			reclaimed, err := service.ReclaimOrphanedSlots(scope)
			if err != nil {
				scope.Log.WithError(err).Error("JANITOR: sweep failed")
			} else if reclaimed > 0 {
				scope.Log.WithField("reclaimed", reclaimed).Info("JANITOR: sweep completed")
			}
			scope.Finish()
		}
	}
}
