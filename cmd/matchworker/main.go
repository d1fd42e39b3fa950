// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// matchworker runs the full ranked pipeline for one namespace: the
// matchmaking tick, the scheduled-task consumer and the metrics endpoint.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	env "github.com/caarlos0/env"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/unitemate/ranked-core/pkg/common"
	"github.com/unitemate/ranked-core/pkg/config"
	"github.com/unitemate/ranked-core/pkg/envelope"
	"github.com/unitemate/ranked-core/pkg/formation"
	"github.com/unitemate/ranked-core/pkg/lifecycle"
	"github.com/unitemate/ranked-core/pkg/lock"
	"github.com/unitemate/ranked-core/pkg/metrics"
	"github.com/unitemate/ranked-core/pkg/notify"
	"github.com/unitemate/ranked-core/pkg/penalty"
	"github.com/unitemate/ranked-core/pkg/pool"
	"github.com/unitemate/ranked-core/pkg/resolution"
	"github.com/unitemate/ranked-core/pkg/storage/redisstore"
	"github.com/unitemate/ranked-core/pkg/taskqueue"
	"github.com/unitemate/ranked-core/pkg/worker"
)

func main() {
	cfg := config.Config{}
	if err := env.Parse(&cfg); err != nil {
		logrus.WithError(err).Fatal("unable to parse environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := redisstore.New(redisstore.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, cfg.Namespace)
	defer store.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rankedMetrics := metrics.NewMetrics(registry)

	notifier, err := newNotifier(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("unable to set up discord notifier")
	}

	runLock := lock.NewManager(store.Client, cfg.Namespace, time.Duration(cfg.TickLockTTLSecond)*time.Second)
	tasks := taskqueue.New(store.Client, cfg.Namespace)

	service := lifecycle.NewService(cfg.Namespace, store, tasks, notifier, rankedMetrics,
		time.Duration(cfg.ResolveInitialDelaySecond)*time.Second)
	engine := resolution.NewEngine(cfg.Namespace, store, tasks, notifier, rankedMetrics,
		time.Duration(cfg.ResolveRecheckDelaySecond)*time.Second)
	poolManager := pool.NewManager(cfg.Namespace, store, runLock, rankedMetrics)

	bootScope := envelope.NewRootScope(ctx, "Boot", common.GenerateUUID())
	if err = store.Pool.SeedSlots(bootScope); err != nil {
		bootScope.Finish()
		logrus.WithError(err).Fatal("unable to seed voice slots")
	}
	bootScope.Finish()

	tick := worker.NewTick(cfg.Namespace, poolManager, store, formation.NewBacktrackingStrategy(),
		service, runLock, rankedMetrics)
	consumer := worker.NewConsumer(tasks, engine, service)
	runner := worker.NewRunner(tick, consumer,
		time.Duration(cfg.TickIntervalSecond)*time.Second,
		time.Duration(cfg.TaskPollIntervalSecond)*time.Second)

	go serveMetrics(cfg.MetricsAddr, registry)

	logrus.WithField("namespace", cfg.Namespace).Info("match worker started")
	runner.Run(ctx)
	logrus.Info("match worker stopped")
}

// announcer is the pair of outbound surfaces carried by one webhook.
type announcer interface {
	lifecycle.Notifier
	penalty.Referrer
}

// newNotifier wires match announcements and penalty referrals onto the
// configured webhook. Unconfigured means silent.
func newNotifier(cfg config.Config) (announcer, error) {
	discord, err := notify.NewDiscordNotifier(cfg.DiscordWebhookID, cfg.DiscordWebhookToken)
	if err != nil {
		return nil, err
	}
	if discord == nil {
		return notify.Nop{}, nil
	}
	return discord, nil
}

func serveMetrics(addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logrus.WithError(err).Error("metrics endpoint stopped")
	}
}
