// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type prometheusMetrics struct {
	queueDepth         prometheus.GaugeVec
	queueRatingMean    prometheus.GaugeVec
	queueRatingStddev  prometheus.GaugeVec
	groupsFormed       prometheus.CounterVec
	tickElapsedTime    prometheus.HistogramVec
	unmatchedReasons   prometheus.CounterVec
	resolutionOutcomes prometheus.CounterVec
	matchesStuck       prometheus.CounterVec
	slotsReclaimed     prometheus.CounterVec
}

func setupPrometheusMetrics(registry *prometheus.Registry) prometheusMetrics {
	factory := promauto.With(registry)

	queueDepth := factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ranked_queue_depth",
			Help: "Number of players currently waiting in the matchmaking pool",
		}, []string{"game_namespace"})
	queueRatingMean := factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ranked_queue_rating_mean",
			Help: "Mean rating of the waiting pool at last publish",
		}, []string{"game_namespace"})
	queueRatingStddev := factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ranked_queue_rating_stddev",
			Help: "Rating standard deviation of the waiting pool at last publish",
		}, []string{"game_namespace"})
	groupsFormed := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranked_groups_formed_total",
			Help: "Number of ten-player groups formed",
		}, []string{"game_namespace"})
	//nolint:promlinter
	tickElapsedTime := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ranked_tick_elapsed_time_ms",
			Help:    "A histogram of matchmaking tick elapsed time in milliseconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"game_namespace"})
	unmatchedReasons := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranked_unmatched_reasons_total",
			Help: "Reasons players were left unmatched after a tick",
		}, []string{"game_namespace", "reason"})
	resolutionOutcomes := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranked_resolution_outcomes_total",
			Help: "Finalized match outcomes by result tag",
		}, []string{"game_namespace", "outcome"})
	matchesStuck := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranked_matches_stuck_total",
			Help: "Matches whose judge escalation budget ran out without quorum",
		}, []string{"game_namespace"})
	slotsReclaimed := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranked_voice_slots_reclaimed_total",
			Help: "Orphaned voice slots returned to the free pool",
		}, []string{"game_namespace"})

	return prometheusMetrics{
		queueDepth:         *queueDepth,
		queueRatingMean:    *queueRatingMean,
		queueRatingStddev:  *queueRatingStddev,
		groupsFormed:       *groupsFormed,
		tickElapsedTime:    *tickElapsedTime,
		unmatchedReasons:   *unmatchedReasons,
		resolutionOutcomes: *resolutionOutcomes,
		matchesStuck:       *matchesStuck,
		slotsReclaimed:     *slotsReclaimed,
	}
}

func (metrics prometheusMetrics) SetQueueDepth(namespace string, depth int) {
	metrics.queueDepth.With(prometheus.Labels{"game_namespace": namespace}).Set(float64(depth))
}

func (metrics prometheusMetrics) SetQueueRatingStats(namespace string, mean, stddev float64) {
	metrics.queueRatingMean.With(prometheus.Labels{"game_namespace": namespace}).Set(mean)
	metrics.queueRatingStddev.With(prometheus.Labels{"game_namespace": namespace}).Set(stddev)
}

func (metrics prometheusMetrics) AddGroupsFormed(namespace string, count int) {
	metrics.groupsFormed.With(prometheus.Labels{"game_namespace": namespace}).Add(float64(count))
}

func (metrics prometheusMetrics) AddTickElapsedTimeMs(namespace string, elapsed time.Duration) {
	metrics.tickElapsedTime.With(prometheus.Labels{"game_namespace": namespace}).Observe(float64(elapsed.Milliseconds()))
}

func (metrics prometheusMetrics) AddUnmatchedReason(namespace string, reason string) {
	metrics.unmatchedReasons.With(prometheus.Labels{"game_namespace": namespace, "reason": reason}).Add(1)
}

func (metrics prometheusMetrics) AddResolutionOutcome(namespace string, outcome string) {
	metrics.resolutionOutcomes.With(prometheus.Labels{"game_namespace": namespace, "outcome": outcome}).Add(1)
}

func (metrics prometheusMetrics) AddMatchStuck(namespace string) {
	metrics.matchesStuck.With(prometheus.Labels{"game_namespace": namespace}).Add(1)
}

func (metrics prometheusMetrics) AddSlotsReclaimed(namespace string, count int) {
	metrics.slotsReclaimed.With(prometheus.Labels{"game_namespace": namespace}).Add(float64(count))
}
