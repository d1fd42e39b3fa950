// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package resolution judges open matches from accumulated player reports.
// A judging pass either finalizes the match, schedules a relaxed recheck,
// or declares the match stuck once the escalation budget runs out.
package resolution

import (
	"errors"
	"math"
	"time"

	"github.com/elliotchance/pie/v2"

	"github.com/unitemate/ranked-core/pkg/envelope"
	"github.com/unitemate/ranked-core/pkg/metrics"
	"github.com/unitemate/ranked-core/pkg/models"
	"github.com/unitemate/ranked-core/pkg/penalty"
	"github.com/unitemate/ranked-core/pkg/storage/redisstore"
	"github.com/unitemate/ranked-core/pkg/taskqueue"
)

type Engine struct {
	namespace string
	matches   *redisstore.MatchStore
	profiles  *redisstore.ProfileStore
	history   *redisstore.HistoryStore
	pool      *redisstore.PoolStore
	tasks     *taskqueue.Queue
	referrer  penalty.Referrer
	metrics   metrics.RankedMetrics

	recheckDelay time.Duration
	now          func() time.Time
}

func NewEngine(namespace string, store *redisstore.Store, tasks *taskqueue.Queue, referrer penalty.Referrer,
	m metrics.RankedMetrics, recheckDelay time.Duration,
) *Engine {
	return &Engine{
		namespace:    namespace,
		matches:      store.Matches,
		profiles:     store.Profiles,
		history:      store.History,
		pool:         store.Pool,
		tasks:        tasks,
		referrer:     referrer,
		metrics:      m,
		recheckDelay: recheckDelay,
		now:          time.Now,
	}
}

// Resolve runs one judging pass over a match. Safe to call any number of
// times; a match that was already finalized, or that no longer exists, is
// a no-op. Errors returned here are transient and worth retrying.
func (e *Engine) Resolve(scope *envelope.Scope, matchID int64) error {
	log := scope.Log.WithField("matchID", matchID)

	record, err := e.matches.Get(scope, matchID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Warn("RESOLVE: match not found, dropping task")
			return nil
		}
		return err
	}
	if record.Status != models.MatchStatusMatched {
		log.Debug("RESOLVE: match already finalized")
		return nil
	}

	required, ok := RequiredReports(record.JudgeTimeoutCount)
	if !ok {
		// Terminal. The match stays open for operator intervention and the
		// task is not rescheduled.
		e.metrics.AddMatchStuck(e.namespace)
		log.WithField("timeoutCount", record.JudgeTimeoutCount).
			Error("RESOLVE: escalation budget exhausted, match is stuck")
		return nil
	}

	reports := dedupeKeepLatest(record.UserReports)
	if len(reports) < required {
		if _, err = e.matches.IncrementTimeout(scope, matchID); err != nil {
			return err
		}
		due := e.now().Add(e.recheckDelay)
		if err = e.tasks.Schedule(scope, taskqueue.NewResolveTask(matchID), due); err != nil {
			return err
		}
		log.WithField("reports", len(reports)).WithField("required", required).
			Info("RESOLVE: quorum unmet, recheck scheduled")
		return nil
	}

	return e.finalize(scope, record, reports)
}

func (e *Engine) finalize(scope *envelope.Scope, record models.MatchRecord, reports []models.Report) error {
	log := scope.Log.WithField("matchID", record.MatchID)

	outcome := JudgeOutcome(reports)
	log.WithField("outcome", outcome).Info("RESOLVE: quorum met, finalizing")

	characterByPlayer := make(map[string]string, len(reports))
	for _, report := range reports {
		characterByPlayer[report.PlayerID] = report.PickedCharacter
	}

	if outcome == models.OutcomeInvalid {
		if err := e.applyInvalid(scope, record); err != nil {
			return err
		}
	} else {
		winners, losers := record.TeamA, record.TeamB
		if outcome == models.OutcomeBWin {
			winners, losers = record.TeamB, record.TeamA
		}
		if err := e.applyRatings(scope, record, winners, losers, characterByPlayer); err != nil {
			return err
		}
	}

	e.referViolations(scope, record.MatchID, reports)

	done, err := e.matches.MarkDone(scope, record.MatchID)
	if err != nil {
		return err
	}
	if !done {
		log.Warn("RESOLVE: concurrent finalize already marked done")
	}
	if err = e.pool.ReleaseSlot(scope, record.VoiceChannelA); err != nil {
		return err
	}

	e.metrics.AddResolutionOutcome(e.namespace, outcome)
	return nil
}

// applyRatings pairs the i-th strongest winner with the i-th strongest loser
// and transfers the ELO delta within each pair, then persists every profile
// behind the last_match_id_applied guard and appends the write-once history
// entry for each player that was actually applied.
func (e *Engine) applyRatings(scope *envelope.Scope, record models.MatchRecord,
	winners, losers []models.TeamSlot, characterByPlayer map[string]string,
) error {
	winners = sortSlotsByRatingDesc(winners)
	losers = sortSlotsByRatingDesc(losers)

	for i := range winners {
		delta := EloDelta(winners[i].Rating, losers[i].Rating)
		if err := e.applyOne(scope, record, winners[i].PlayerID, delta, true, characterByPlayer); err != nil {
			return err
		}
		if err := e.applyOne(scope, record, losers[i].PlayerID, delta, false, characterByPlayer); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) applyOne(scope *envelope.Scope, record models.MatchRecord,
	playerID string, delta int, won bool, characterByPlayer map[string]string,
) error {
	profile, err := e.profiles.Get(scope, playerID)
	if err != nil {
		return err
	}

	corrected := CorrectedDelta(delta, won, profile.GamesPlayed)

	profile.GamesPlayed++
	if won {
		profile.GamesWon++
	}
	profile.WinRatePct = int(math.Round(100 * float64(profile.GamesWon) / float64(profile.GamesPlayed)))
	profile.Rating += corrected
	profile.MaxRating = max(profile.MaxRating, profile.Rating)
	profile.LastRateDelta = corrected
	profile.LastMatchIDApplied = record.MatchID

	applied, err := e.profiles.ApplyMatchResult(scope, profile)
	if err != nil {
		return err
	}
	if !applied {
		scope.Log.WithField("matchID", record.MatchID).WithField("playerID", playerID).
			Debug("RESOLVE: result already applied to player")
		return nil
	}

	return e.history.Append(scope, models.MatchHistoryEntry{
		PlayerID:  playerID,
		MatchID:   record.MatchID,
		Character: characterByPlayer[playerID],
		RateDelta: corrected,
		Won:       won,
		StartedAt: record.MatchedAt,
	})
}

// applyInvalid closes out an invalid match for every roster member. Ratings
// and game counts are untouched; the assignment is cleared and the guard is
// advanced so the player can requeue and a retried finalize stays a no-op.
func (e *Engine) applyInvalid(scope *envelope.Scope, record models.MatchRecord) error {
	for _, playerID := range record.PlayerIDs() {
		profile, err := e.profiles.Get(scope, playerID)
		if err != nil {
			return err
		}
		profile.LastRateDelta = 0
		profile.LastMatchIDApplied = record.MatchID
		if _, err = e.profiles.ApplyMatchResult(scope, profile); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) referViolations(scope *envelope.Scope, matchID int64, reports []models.Report) {
	tally := penalty.Tally(reports)
	referrals := penalty.Referrals(matchID, tally, func(playerID string) int {
		profile, err := e.profiles.Get(scope, playerID)
		if err != nil {
			scope.Log.WithField("playerID", playerID).WithError(err).
				Warn("RESOLVE: cannot read accused profile, correction defaults to zero")
			return 0
		}
		return profile.GamesPlayed
	})
	for _, referral := range referrals {
		e.referrer.Refer(scope, referral)
	}
}

// JudgeOutcome counts the per-result vote. A side wins only with a strict
// majority over the sum of everything else; ties and invalid-heavy votes
// judge the match invalid.
func JudgeOutcome(reports []models.Report) string {
	var aCount, bCount, invalidCount int
	for _, report := range reports {
		switch report.Result {
		case models.ResultAWin:
			aCount++
		case models.ResultBWin:
			bCount++
		default:
			invalidCount++
		}
	}
	switch {
	case aCount > bCount+invalidCount:
		return models.OutcomeAWin
	case bCount > aCount+invalidCount:
		return models.OutcomeBWin
	default:
		return models.OutcomeInvalid
	}
}

// dedupeKeepLatest keeps one report per player. The store appends in arrival
// order, so the last occurrence wins; resubmitting is how a player corrects
// an earlier report.
func dedupeKeepLatest(reports []models.Report) []models.Report {
	latest := make(map[string]models.Report, len(reports))
	var order []string
	for _, report := range reports {
		if _, seen := latest[report.PlayerID]; !seen {
			order = append(order, report.PlayerID)
		}
		latest[report.PlayerID] = report
	}

	out := make([]models.Report, 0, len(order))
	for _, playerID := range order {
		out = append(out, latest[playerID])
	}
	return out
}

func sortSlotsByRatingDesc(slots []models.TeamSlot) []models.TeamSlot {
	return pie.SortUsing(slots, func(a, b models.TeamSlot) bool {
		return a.Rating > b.Rating
	})
}
