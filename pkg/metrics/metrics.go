// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type RankedMetrics interface {
	SetQueueDepth(namespace string, depth int)
	SetQueueRatingStats(namespace string, mean, stddev float64)
	AddGroupsFormed(namespace string, count int)
	AddTickElapsedTimeMs(namespace string, elapsed time.Duration)
	AddUnmatchedReason(namespace string, reason string)
	AddResolutionOutcome(namespace string, outcome string)
	AddMatchStuck(namespace string)
	AddSlotsReclaimed(namespace string, count int)
}

func NewMetrics(registry *prometheus.Registry) RankedMetrics {
	return setupPrometheusMetrics(registry)
}

// Nop returns a metrics sink that discards everything; test use.
func Nop() RankedMetrics {
	return nopMetrics{}
}

type nopMetrics struct{}

func (nopMetrics) SetQueueDepth(string, int)                 {}
func (nopMetrics) SetQueueRatingStats(string, float64, float64) {}
func (nopMetrics) AddGroupsFormed(string, int)               {}
func (nopMetrics) AddTickElapsedTimeMs(string, time.Duration) {}
func (nopMetrics) AddUnmatchedReason(string, string)         {}
func (nopMetrics) AddResolutionOutcome(string, string)       {}
func (nopMetrics) AddMatchStuck(string)                      {}
func (nopMetrics) AddSlotsReclaimed(string, int)             {}
