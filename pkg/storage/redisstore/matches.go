// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package redisstore

import (
	"encoding/json"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/unitemate/ranked-core/pkg/envelope"
	"github.com/unitemate/ranked-core/pkg/models"
)

// MatchStore persists match records and the per-match append-only report
// list, and keeps the open-match index (status=matched ordered by matched_at).
type MatchStore struct {
	client *redis.Client
	ns     string
}

// appendReportScript appends only while the match is still open. An RPUSH is
// commutative across concurrent reporters; there is no read-modify-write.
var appendReportScript = redis.NewScript(`
local status = redis.call('HGET', KEYS[1], 'status')
if status == false then
  return -1
end
if status ~= 'matched' then
  return 0
end
redis.call('RPUSH', KEYS[2], ARGV[1])
return 1
`)

// markDoneScript performs the matched->done transition at most once and drops
// the match from the open index.
var markDoneScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'status') ~= 'matched' then
  return 0
end
redis.call('HSET', KEYS[1], 'status', 'done')
redis.call('ZREM', KEYS[2], ARGV[1])
return 1
`)

// Create atomically removes the group's waiting entries, marks every member's
// profile as assigned, writes the match record and indexes it as open. A
// failed exec leaves none of it behind; the reserved voice slot is accepted
// as lost and reconciled by the janitor sweep.
func (s *MatchStore) Create(scope *envelope.Scope, record models.MatchRecord) error {
	teamA, err := json.Marshal(record.TeamA)
	if err != nil {
		return eris.Wrap(err, "marshal team A")
	}
	teamB, err := json.Marshal(record.TeamB)
	if err != nil {
		return eris.Wrap(err, "marshal team B")
	}

	pipe := s.client.TxPipeline()
	for _, playerID := range record.PlayerIDs() {
		pipe.Del(scope.Ctx, keyEntry(s.ns, playerID))
		pipe.ZRem(scope.Ctx, keyByEnqueued(s.ns), playerID)
		pipe.ZRem(scope.Ctx, keyByRating(s.ns), playerID)
		pipe.HSet(scope.Ctx, keyProfile(s.ns, playerID), "assigned_match_id", record.MatchID)
	}
	pipe.HSet(scope.Ctx, keyMatch(s.ns, record.MatchID),
		"match_id", record.MatchID,
		"team_a", string(teamA),
		"team_b", string(teamB),
		"status", models.MatchStatusMatched,
		"matched_at", record.MatchedAt,
		"voice_channel_a", record.VoiceChannelA,
		"judge_timeout_count", 0,
	)
	pipe.ZAdd(scope.Ctx, keyOpenMatches(s.ns), redis.Z{Score: float64(record.MatchedAt), Member: record.MatchID})
	_, err = pipe.Exec(scope.Ctx)
	return eris.Wrap(err, "create match")
}

// Get loads the match record with its accumulated reports.
func (s *MatchStore) Get(scope *envelope.Scope, matchID int64) (models.MatchRecord, error) {
	fields, err := s.client.HGetAll(scope.Ctx, keyMatch(s.ns, matchID)).Result()
	if err != nil {
		return models.MatchRecord{}, eris.Wrap(err, "get match")
	}
	if len(fields) == 0 {
		return models.MatchRecord{}, models.ErrNotFound
	}

	record := models.MatchRecord{
		MatchID:           fieldInt64(fields, "match_id", matchID),
		Status:            fields["status"],
		MatchedAt:         fieldInt64(fields, "matched_at", 0),
		VoiceChannelA:     fieldInt(fields, "voice_channel_a", 0),
		JudgeTimeoutCount: fieldInt(fields, "judge_timeout_count", 0),
	}
	if raw := fields["team_a"]; raw != "" {
		if err = json.Unmarshal([]byte(raw), &record.TeamA); err != nil {
			return models.MatchRecord{}, eris.Wrap(err, "unmarshal team A")
		}
	}
	if raw := fields["team_b"]; raw != "" {
		if err = json.Unmarshal([]byte(raw), &record.TeamB); err != nil {
			return models.MatchRecord{}, eris.Wrap(err, "unmarshal team B")
		}
	}

	rawReports, err := s.client.LRange(scope.Ctx, keyReports(s.ns, matchID), 0, -1).Result()
	if err != nil {
		return models.MatchRecord{}, eris.Wrap(err, "load reports")
	}
	for _, raw := range rawReports {
		var report models.Report
		if unmarshalErr := json.Unmarshal([]byte(raw), &report); unmarshalErr != nil {
			scope.Log.WithField("matchID", matchID).Warnf("skipping undecodable report: %s", unmarshalErr)
			continue
		}
		record.UserReports = append(record.UserReports, report)
	}
	return record, nil
}

// AppendReport appends one player's report. The store keeps duplicates from
// the same player; deduplication is the judge's concern.
func (s *MatchStore) AppendReport(scope *envelope.Scope, matchID int64, report models.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "marshal report")
	}
	appended, err := appendReportScript.Run(scope.Ctx, s.client,
		[]string{keyMatch(s.ns, matchID), keyReports(s.ns, matchID)},
		string(payload),
	).Int()
	if err != nil {
		return eris.Wrap(err, "append report")
	}
	if appended != 1 {
		return models.ErrNotFound
	}
	return nil
}

// IncrementTimeout bumps judge_timeout_count and returns the new value.
func (s *MatchStore) IncrementTimeout(scope *envelope.Scope, matchID int64) (int, error) {
	n, err := s.client.HIncrBy(scope.Ctx, keyMatch(s.ns, matchID), "judge_timeout_count", 1).Result()
	if err != nil {
		return 0, eris.Wrap(err, "increment judge timeout")
	}
	return int(n), nil
}

// MarkDone transitions matched->done. Returns false when the transition
// already happened, which retried finalize runs treat as business as usual.
func (s *MatchStore) MarkDone(scope *envelope.Scope, matchID int64) (bool, error) {
	done, err := markDoneScript.Run(scope.Ctx, s.client,
		[]string{keyMatch(s.ns, matchID), keyOpenMatches(s.ns)},
		matchID,
	).Int()
	if err != nil {
		return false, eris.Wrap(err, "mark match done")
	}
	return done == 1, nil
}

// OpenMatchIDs lists unresolved matches ordered by matched_at ascending.
func (s *MatchStore) OpenMatchIDs(scope *envelope.Scope) ([]int64, error) {
	members, err := s.client.ZRange(scope.Ctx, keyOpenMatches(s.ns), 0, -1).Result()
	if err != nil {
		return nil, eris.Wrap(err, "list open matches")
	}
	ids := make([]int64, 0, len(members))
	for _, member := range members {
		id, parseErr := strconv.ParseInt(member, 10, 64)
		if parseErr != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
