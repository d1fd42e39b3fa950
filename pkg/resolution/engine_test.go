// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package resolution

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unitemate/ranked-core/pkg/envelope"
	"github.com/unitemate/ranked-core/pkg/metrics"
	"github.com/unitemate/ranked-core/pkg/models"
	"github.com/unitemate/ranked-core/pkg/penalty"
	"github.com/unitemate/ranked-core/pkg/storage/redisstore"
	"github.com/unitemate/ranked-core/pkg/taskqueue"
	"github.com/unitemate/ranked-core/pkg/testsetup"
)

type capturedReferrals struct {
	referrals []penalty.Referral
}

func (c *capturedReferrals) Refer(_ *envelope.Scope, referral penalty.Referral) {
	c.referrals = append(c.referrals, referral)
}

type engineFixture struct {
	scope    *envelope.Scope
	store    *redisstore.Store
	tasks    *taskqueue.Queue
	engine   *Engine
	referrer *capturedReferrals
}

func newEngineFixture(t *testing.T) *engineFixture {
	scope := testsetup.NewTestScope()
	store, _ := testsetup.NewStore(t, "test")
	tasks := taskqueue.New(store.Client, "test")
	referrer := &capturedReferrals{}
	engine := NewEngine("test", store, tasks, referrer, metrics.Nop(), 5*time.Minute)
	return &engineFixture{scope: scope, store: store, tasks: tasks, engine: engine, referrer: referrer}
}

func (f *engineFixture) createMatch(t *testing.T, matchID int64) models.MatchRecord {
	teamA := make([]models.TeamSlot, 0, 5)
	teamB := make([]models.TeamSlot, 0, 5)
	for i := 0; i < 5; i++ {
		teamA = append(teamA, models.TeamSlot{PlayerID: fmt.Sprintf("a%d", i), Rating: 1600 - i*10, BestRating: 1650})
		teamB = append(teamB, models.TeamSlot{PlayerID: fmt.Sprintf("b%d", i), Rating: 1600 - i*10, BestRating: 1650})
	}
	record := models.MatchRecord{
		MatchID:       matchID,
		TeamA:         teamA,
		TeamB:         teamB,
		Status:        models.MatchStatusMatched,
		MatchedAt:     time.Now().Unix(),
		VoiceChannelA: 3,
	}
	require.NoError(t, f.store.Matches.Create(f.scope, record))
	return record
}

func (f *engineFixture) reportAll(t *testing.T, record models.MatchRecord, result string, violations ...string) {
	for _, playerID := range record.PlayerIDs() {
		report := models.Report{PlayerID: playerID, Result: result, ViolationReport: violations}
		require.NoError(t, f.store.Matches.AppendReport(f.scope, record.MatchID, report))
	}
}

func TestJudgeOutcome(t *testing.T) {
	t.Parallel()

	makeReports := func(results ...string) []models.Report {
		reports := make([]models.Report, len(results))
		for i, result := range results {
			reports[i] = models.Report{PlayerID: fmt.Sprintf("p%d", i), Result: result}
		}
		return reports
	}

	aWin := makeReports(models.ResultAWin, models.ResultAWin, models.ResultAWin, models.ResultBWin, models.ResultInvalid)
	assert.Equal(t, models.OutcomeAWin, JudgeOutcome(aWin))

	tied := makeReports(models.ResultAWin, models.ResultBWin, models.ResultInvalid, models.ResultInvalid)
	assert.Equal(t, models.OutcomeInvalid, JudgeOutcome(tied))

	bWin := makeReports(models.ResultBWin, models.ResultBWin, models.ResultBWin, models.ResultAWin)
	assert.Equal(t, models.OutcomeBWin, JudgeOutcome(bWin))
}

func TestDedupeKeepLatest(t *testing.T) {
	t.Parallel()

	reports := []models.Report{
		{PlayerID: "p1", Result: models.ResultAWin},
		{PlayerID: "p2", Result: models.ResultAWin},
		{PlayerID: "p1", Result: models.ResultBWin},
	}

	deduped := dedupeKeepLatest(reports)
	require.Len(t, deduped, 2)
	assert.Equal(t, models.ResultBWin, deduped[0].Result, "resubmission replaces the earlier report")
	assert.Equal(t, "p2", deduped[1].PlayerID)
}

func TestResolve_QuorumUnmetSchedulesRecheck(t *testing.T) {
	fixture := newEngineFixture(t)
	record := fixture.createMatch(t, 1)

	// 9 of 10 reports with timeout_count=0 is below quorum.
	for _, playerID := range record.PlayerIDs()[:9] {
		report := models.Report{PlayerID: playerID, Result: models.ResultAWin}
		require.NoError(t, fixture.store.Matches.AppendReport(fixture.scope, 1, report))
	}

	require.NoError(t, fixture.engine.Resolve(fixture.scope, 1))

	after, err := fixture.store.Matches.Get(fixture.scope, 1)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusMatched, after.Status)
	assert.Equal(t, 1, after.JudgeTimeoutCount)

	pending, err := fixture.tasks.Len(fixture.scope)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}

func TestResolve_QuorumMetAfterEscalation(t *testing.T) {
	fixture := newEngineFixture(t)
	record := fixture.createMatch(t, 2)
	_, err := fixture.store.Matches.IncrementTimeout(fixture.scope, 2)
	require.NoError(t, err)

	// 9 reports meet the relaxed quorum of 9.
	for _, playerID := range record.PlayerIDs()[:9] {
		report := models.Report{PlayerID: playerID, Result: models.ResultAWin}
		require.NoError(t, fixture.store.Matches.AppendReport(fixture.scope, 2, report))
	}

	require.NoError(t, fixture.engine.Resolve(fixture.scope, 2))

	after, err := fixture.store.Matches.Get(fixture.scope, 2)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusDone, after.Status)
}

func TestResolve_FinalizeAppliesRatingsOnce(t *testing.T) {
	fixture := newEngineFixture(t)
	record := fixture.createMatch(t, 3)

	// Established players so the early-career bonus stays out of the way.
	for _, playerID := range record.PlayerIDs() {
		profile := models.NewDefaultProfile(playerID)
		profile.GamesPlayed = 50
		profile.GamesWon = 25
		require.NoError(t, fixture.store.Profiles.Save(fixture.scope, profile))
	}

	fixture.reportAll(t, record, models.ResultAWin)
	require.NoError(t, fixture.engine.Resolve(fixture.scope, 3))

	winner, err := fixture.store.Profiles.Get(fixture.scope, "a0")
	require.NoError(t, err)
	loser, err := fixture.store.Profiles.Get(fixture.scope, "b0")
	require.NoError(t, err)

	assert.Equal(t, 51, winner.GamesPlayed)
	assert.Equal(t, 26, winner.GamesWon)
	assert.Equal(t, 51, loser.GamesPlayed)
	assert.Equal(t, 25, loser.GamesWon)
	assert.Equal(t, winner.LastRateDelta, -loser.LastRateDelta, "equal-pair transfer is zero-sum")
	assert.Equal(t, int64(0), winner.AssignedMatchID)
	assert.Equal(t, int64(3), winner.LastMatchIDApplied)

	history, err := fixture.store.History.ListRecent(fixture.scope, "a0", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Won)

	// A duplicate finalize run must change nothing.
	require.NoError(t, fixture.engine.Resolve(fixture.scope, 3))
	again, err := fixture.store.Profiles.Get(fixture.scope, "a0")
	require.NoError(t, err)
	assert.Equal(t, 51, again.GamesPlayed)
	assert.Equal(t, winner.Rating, again.Rating)
}

func TestResolve_InvalidOutcomeClearsAssignmentOnly(t *testing.T) {
	fixture := newEngineFixture(t)
	record := fixture.createMatch(t, 4)

	half := record.PlayerIDs()[:5]
	for _, playerID := range half {
		require.NoError(t, fixture.store.Matches.AppendReport(fixture.scope, 4,
			models.Report{PlayerID: playerID, Result: models.ResultAWin}))
	}
	for _, playerID := range record.PlayerIDs()[5:] {
		require.NoError(t, fixture.store.Matches.AppendReport(fixture.scope, 4,
			models.Report{PlayerID: playerID, Result: models.ResultBWin}))
	}

	require.NoError(t, fixture.engine.Resolve(fixture.scope, 4))

	after, err := fixture.store.Matches.Get(fixture.scope, 4)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusDone, after.Status)

	profile, err := fixture.store.Profiles.Get(fixture.scope, "a0")
	require.NoError(t, err)
	assert.Equal(t, 0, profile.GamesPlayed)
	assert.Equal(t, 1500, profile.Rating)
	assert.Equal(t, int64(0), profile.AssignedMatchID)
	assert.Equal(t, int64(4), profile.LastMatchIDApplied)
}

func TestResolve_ViolationReferral(t *testing.T) {
	fixture := newEngineFixture(t)
	record := fixture.createMatch(t, 5)

	accused := models.NewDefaultProfile("b4")
	accused.GamesPlayed = 120
	require.NoError(t, fixture.store.Profiles.Save(fixture.scope, accused))

	for i, playerID := range record.PlayerIDs() {
		report := models.Report{PlayerID: playerID, Result: models.ResultAWin}
		if i < 5 && playerID != "b4" {
			report.ViolationReport = []string{"b4"}
		}
		require.NoError(t, fixture.store.Matches.AppendReport(fixture.scope, 5, report))
	}

	require.NoError(t, fixture.engine.Resolve(fixture.scope, 5))

	require.Len(t, fixture.referrer.referrals, 1)
	referral := fixture.referrer.referrals[0]
	assert.Equal(t, "b4", referral.PlayerID)
	assert.Equal(t, 5, referral.NamedCount)
	assert.Equal(t, 120/50, referral.Correction)
}

func TestResolve_StuckMatchStaysOpen(t *testing.T) {
	fixture := newEngineFixture(t)
	fixture.createMatch(t, 6)
	for i := 0; i < 16; i++ {
		_, err := fixture.store.Matches.IncrementTimeout(fixture.scope, 6)
		require.NoError(t, err)
	}

	require.NoError(t, fixture.engine.Resolve(fixture.scope, 6))

	after, err := fixture.store.Matches.Get(fixture.scope, 6)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusMatched, after.Status)

	pending, err := fixture.tasks.Len(fixture.scope)
	require.NoError(t, err)
	assert.Zero(t, pending, "stuck matches are not rescheduled")
}
