// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package models holds the typed records shared by the pool, formation,
// lifecycle and resolution engines, together with the error taxonomy and
// boundary validation.
package models

import (
	"math"

	"github.com/unitemate/ranked-core/pkg/constants"
)

const (
	// MatchStatusMatched is the status of a freshly formed, unresolved contest.
	MatchStatusMatched = "matched"
	// MatchStatusDone is the terminal status set exactly once by the resolution engine.
	MatchStatusDone = "done"
)

// Report result tags.
const (
	ResultAWin    = "a_win"
	ResultBWin    = "b_win"
	ResultInvalid = "invalid"
)

// Match outcomes computed from the report vote.
const (
	OutcomeAWin    = "a_win"
	OutcomeBWin    = "b_win"
	OutcomeInvalid = "invalid"
)

// WaitingEntry is one pooled player. A player holds at most one entry at a
// time; RangeSpreadCount only grows while the entry lives and resets on
// dequeue/requeue.
type WaitingEntry struct {
	PlayerID         string   `json:"player_id"`
	Rating           int      `json:"rating"`
	BestRating       int      `json:"best_rating"`
	Blocking         []string `json:"blocking_list"`
	DesiredRole      string   `json:"desired_role"`
	RangeSpreadSpeed int      `json:"range_spread_speed"`
	RangeSpreadCount int      `json:"range_spread_count"`
	DiscordHandle    string   `json:"discord_handle"`
	EnqueuedAt       int64    `json:"enqueued_at"`
}

// RangeHalfWidth is the half-width of the entry's acceptable rating window.
func (e WaitingEntry) RangeHalfWidth() int {
	return constants.BaseRatingRange + e.RangeSpreadSpeed*e.RangeSpreadCount
}

// AcceptableInterval returns the entry's acceptable rating interval.
// Once the spread count reaches the unbounded threshold the interval is
// (-Inf, +Inf); the player eventually always matches.
func (e WaitingEntry) AcceptableInterval() (lo, hi float64) {
	if e.RangeSpreadCount >= constants.UnboundedSpreadCount {
		return math.Inf(-1), math.Inf(1)
	}
	half := float64(e.RangeHalfWidth())
	return float64(e.Rating) - half, float64(e.Rating) + half
}

// TeamSlot is one roster position on a match record.
type TeamSlot struct {
	PlayerID   string `json:"player_id"`
	Rating     int    `json:"rating"`
	BestRating int    `json:"best_rating"`
}

// MatchRecord is one formed contest. Status transitions matched->done exactly
// once. Reports are persisted in a sibling append-only list and only joined
// onto the struct for judging.
type MatchRecord struct {
	MatchID           int64      `json:"match_id"`
	TeamA             []TeamSlot `json:"team_a"`
	TeamB             []TeamSlot `json:"team_b"`
	Status            string     `json:"status"`
	MatchedAt         int64      `json:"matched_at"`
	VoiceChannelA     int        `json:"voice_channel_a"`
	JudgeTimeoutCount int        `json:"judge_timeout_count"`
	UserReports       []Report   `json:"user_reports,omitempty"`
}

// VoiceChannelB is always the slot right after team A's.
func (m MatchRecord) VoiceChannelB() int {
	return m.VoiceChannelA + 1
}

// PlayerIDs returns every roster member, team A first.
func (m MatchRecord) PlayerIDs() []string {
	ids := make([]string, 0, len(m.TeamA)+len(m.TeamB))
	for _, slot := range m.TeamA {
		ids = append(ids, slot.PlayerID)
	}
	for _, slot := range m.TeamB {
		ids = append(ids, slot.PlayerID)
	}
	return ids
}

// Report is one player's account of the match outcome.
type Report struct {
	ReportID        string   `json:"report_id"`
	PlayerID        string   `json:"player_id"`
	Result          string   `json:"result"`
	ViolationReport []string `json:"violation_report"`
	PickedCharacter string   `json:"picked_character"`
	BannedCharacter string   `json:"banned_character"`
	ReportedAt      int64    `json:"reported_at"`
}

// PlayerProfile is the per-player rating and assignment state.
// LastMatchIDApplied guards rating mutation against duplicate finalize runs;
// AssignedMatchID is zero when the player is not in an unresolved match.
type PlayerProfile struct {
	PlayerID           string `json:"player_id"`
	Rating             int    `json:"rating"`
	MaxRating          int    `json:"max_rating"`
	GamesPlayed        int    `json:"games_played"`
	GamesWon           int    `json:"games_won"`
	LastRateDelta      int    `json:"last_rate_delta"`
	WinRatePct         int    `json:"win_rate_pct"`
	LastMatchIDApplied int64  `json:"last_match_id_applied"`
	AssignedMatchID    int64  `json:"assigned_match_id"`
}

// NewDefaultProfile is the profile for a player the store has never seen.
func NewDefaultProfile(playerID string) PlayerProfile {
	return PlayerProfile{
		PlayerID:  playerID,
		Rating:    constants.DefaultRating,
		MaxRating: constants.DefaultRating,
	}
}

// MatchHistoryEntry is the write-once per (player, match) record.
type MatchHistoryEntry struct {
	PlayerID  string `json:"player_id"`
	MatchID   int64  `json:"match_id"`
	Character string `json:"character"`
	RateDelta int    `json:"rate_delta"`
	Won       bool   `json:"won"`
	StartedAt int64  `json:"started_at"`
}

// PoolMeta is the last-published display snapshot of the waiting pool.
// The run lock is a separate lease record, not a field here.
type PoolMeta struct {
	LatestMatchID int64 `json:"latest_match_id"`
	RateList      []int `json:"rate_list"`
	RangeList     []int `json:"range_list"`
}
