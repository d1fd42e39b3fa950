// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package redisstore

import (
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/unitemate/ranked-core/pkg/envelope"
	"github.com/unitemate/ranked-core/pkg/models"
)

// PoolStore persists waiting entries with two secondary indexes: enqueue time
// (FIFO snapshots) and rating (display lists).
type PoolStore struct {
	client *redis.Client
	ns     string
}

// incrementSpreadScript widens a waiting player's search range only while the
// entry still exists; an entry removed by a concurrent dequeue stays removed.
var incrementSpreadScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return -1
end
return redis.call('HINCRBY', KEYS[1], 'range_spread_count', 1)
`)

func (s *PoolStore) UpsertEntry(scope *envelope.Scope, entry models.WaitingEntry) error {
	blocking, err := json.Marshal(entry.Blocking)
	if err != nil {
		return eris.Wrap(err, "marshal blocking list")
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(scope.Ctx, keyEntry(s.ns, entry.PlayerID),
		"player_id", entry.PlayerID,
		"rating", entry.Rating,
		"best_rating", entry.BestRating,
		"blocking_list", string(blocking),
		"desired_role", entry.DesiredRole,
		"range_spread_speed", entry.RangeSpreadSpeed,
		"range_spread_count", entry.RangeSpreadCount,
		"discord_handle", entry.DiscordHandle,
		"enqueued_at", entry.EnqueuedAt,
	)
	pipe.ZAdd(scope.Ctx, keyByEnqueued(s.ns), redis.Z{Score: float64(entry.EnqueuedAt), Member: entry.PlayerID})
	pipe.ZAdd(scope.Ctx, keyByRating(s.ns), redis.Z{Score: float64(entry.Rating), Member: entry.PlayerID})
	_, err = pipe.Exec(scope.Ctx)
	return eris.Wrap(err, "upsert waiting entry")
}

func (s *PoolStore) DeleteEntry(scope *envelope.Scope, playerID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(scope.Ctx, keyEntry(s.ns, playerID))
	pipe.ZRem(scope.Ctx, keyByEnqueued(s.ns), playerID)
	pipe.ZRem(scope.Ctx, keyByRating(s.ns), playerID)
	_, err := pipe.Exec(scope.Ctx)
	return eris.Wrap(err, "delete waiting entry")
}

func (s *PoolStore) GetEntry(scope *envelope.Scope, playerID string) (models.WaitingEntry, error) {
	fields, err := s.client.HGetAll(scope.Ctx, keyEntry(s.ns, playerID)).Result()
	if err != nil {
		return models.WaitingEntry{}, eris.Wrap(err, "get waiting entry")
	}
	if len(fields) == 0 {
		return models.WaitingEntry{}, models.ErrNotFound
	}
	return entryFromFields(playerID, fields), nil
}

// Snapshot returns every waiting entry ordered by enqueue time ascending.
// Entries deleted between the index read and the hash read are skipped.
func (s *PoolStore) Snapshot(scope *envelope.Scope) ([]models.WaitingEntry, error) {
	playerIDs, err := s.client.ZRange(scope.Ctx, keyByEnqueued(s.ns), 0, -1).Result()
	if err != nil {
		return nil, eris.Wrap(err, "list waiting players")
	}
	if len(playerIDs) == 0 {
		return nil, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(playerIDs))
	for i, playerID := range playerIDs {
		cmds[i] = pipe.HGetAll(scope.Ctx, keyEntry(s.ns, playerID))
	}
	if _, err = pipe.Exec(scope.Ctx); err != nil {
		return nil, eris.Wrap(err, "load waiting entries")
	}

	entries := make([]models.WaitingEntry, 0, len(playerIDs))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		entries = append(entries, entryFromFields(playerIDs[i], fields))
	}
	return entries, nil
}

// IncrementSpread bumps range_spread_count for a player left unmatched.
func (s *PoolStore) IncrementSpread(scope *envelope.Scope, playerID string) error {
	n, err := incrementSpreadScript.Run(scope.Ctx, s.client, []string{keyEntry(s.ns, playerID)}).Int()
	if err != nil {
		return eris.Wrap(err, "increment spread count")
	}
	if n < 0 {
		return models.ErrNotFound
	}
	return nil
}

func entryFromFields(playerID string, m map[string]string) models.WaitingEntry {
	var blocking []string
	if raw, ok := m["blocking_list"]; ok && raw != "" {
		_ = json.Unmarshal([]byte(raw), &blocking)
	}
	return models.WaitingEntry{
		PlayerID:         playerID,
		Rating:           fieldInt(m, "rating", 0),
		BestRating:       fieldInt(m, "best_rating", 0),
		Blocking:         blocking,
		DesiredRole:      m["desired_role"],
		RangeSpreadSpeed: fieldInt(m, "range_spread_speed", 0),
		RangeSpreadCount: fieldInt(m, "range_spread_count", 0),
		DiscordHandle:    m["discord_handle"],
		EnqueuedAt:       fieldInt64(m, "enqueued_at", 0),
	}
}
