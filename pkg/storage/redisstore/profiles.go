// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package redisstore

import (
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/unitemate/ranked-core/pkg/envelope"
	"github.com/unitemate/ranked-core/pkg/models"
)

// ProfileStore reads and writes per-player rating, game count and assignment
// state. Unseen players hydrate to the default profile (rating 1500), a
// deliberate product decision, not an error.
type ProfileStore struct {
	client *redis.Client
	ns     string
}

// applyResultScript applies a finalized match's profile mutation only when
// last_match_id_applied differs from the match being applied. This is the
// idempotency guard for at-least-once finalize runs.
var applyResultScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'last_match_id_applied') == ARGV[1] then
  return 0
end
redis.call('HSET', KEYS[1],
  'player_id', ARGV[2],
  'rating', ARGV[3],
  'max_rating', ARGV[4],
  'games_played', ARGV[5],
  'games_won', ARGV[6],
  'last_rate_delta', ARGV[7],
  'win_rate_pct', ARGV[8],
  'last_match_id_applied', ARGV[1],
  'assigned_match_id', 0)
return 1
`)

func (s *ProfileStore) Get(scope *envelope.Scope, playerID string) (models.PlayerProfile, error) {
	fields, err := s.client.HGetAll(scope.Ctx, keyProfile(s.ns, playerID)).Result()
	if err != nil {
		return models.PlayerProfile{}, eris.Wrap(err, "get profile")
	}
	if len(fields) == 0 {
		return models.NewDefaultProfile(playerID), nil
	}
	return profileFromFields(playerID, fields), nil
}

func (s *ProfileStore) Save(scope *envelope.Scope, profile models.PlayerProfile) error {
	err := s.client.HSet(scope.Ctx, keyProfile(s.ns, profile.PlayerID), profileFields(profile)...).Err()
	return eris.Wrap(err, "save profile")
}

// ApplyMatchResult persists the post-match profile state guarded by
// last_match_id_applied. Returns false when the match was already applied to
// this player, in which case nothing is written.
func (s *ProfileStore) ApplyMatchResult(scope *envelope.Scope, profile models.PlayerProfile) (bool, error) {
	applied, err := applyResultScript.Run(scope.Ctx, s.client,
		[]string{keyProfile(s.ns, profile.PlayerID)},
		strconv.FormatInt(profile.LastMatchIDApplied, 10),
		profile.PlayerID,
		profile.Rating,
		profile.MaxRating,
		profile.GamesPlayed,
		profile.GamesWon,
		profile.LastRateDelta,
		profile.WinRatePct,
	).Int()
	if err != nil {
		return false, eris.Wrap(err, "apply match result")
	}
	return applied == 1, nil
}

func profileFields(p models.PlayerProfile) []interface{} {
	return []interface{}{
		"player_id", p.PlayerID,
		"rating", p.Rating,
		"max_rating", p.MaxRating,
		"games_played", p.GamesPlayed,
		"games_won", p.GamesWon,
		"last_rate_delta", p.LastRateDelta,
		"win_rate_pct", p.WinRatePct,
		"last_match_id_applied", p.LastMatchIDApplied,
		"assigned_match_id", p.AssignedMatchID,
	}
}

func profileFromFields(playerID string, m map[string]string) models.PlayerProfile {
	defaults := models.NewDefaultProfile(playerID)
	return models.PlayerProfile{
		PlayerID:           playerID,
		Rating:             fieldInt(m, "rating", defaults.Rating),
		MaxRating:          fieldInt(m, "max_rating", defaults.MaxRating),
		GamesPlayed:        fieldInt(m, "games_played", 0),
		GamesWon:           fieldInt(m, "games_won", 0),
		LastRateDelta:      fieldInt(m, "last_rate_delta", 0),
		WinRatePct:         fieldInt(m, "win_rate_pct", 0),
		LastMatchIDApplied: fieldInt64(m, "last_match_id_applied", 0),
		AssignedMatchID:    fieldInt64(m, "assigned_match_id", 0),
	}
}
