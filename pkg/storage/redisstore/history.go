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

// HistoryStore keeps the write-once per (player, match) history entries with
// a per-player index by match start time.
type HistoryStore struct {
	client *redis.Client
	ns     string
}

// Append is write-once: a retried finalize run that reaches an existing entry
// leaves it untouched.
func (s *HistoryStore) Append(scope *envelope.Scope, entry models.MatchHistoryEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return eris.Wrap(err, "marshal history entry")
	}

	pipe := s.client.TxPipeline()
	pipe.SetNX(scope.Ctx, keyHistory(s.ns, entry.PlayerID, entry.MatchID), string(payload), 0)
	pipe.ZAddNX(scope.Ctx, keyHistoryByStart(s.ns, entry.PlayerID), redis.Z{Score: float64(entry.StartedAt), Member: entry.MatchID})
	_, err = pipe.Exec(scope.Ctx)
	return eris.Wrap(err, "append history entry")
}

// ListRecent returns up to limit entries for a player, newest first.
func (s *HistoryStore) ListRecent(scope *envelope.Scope, playerID string, limit int) ([]models.MatchHistoryEntry, error) {
	matchIDs, err := s.client.ZRevRange(scope.Ctx, keyHistoryByStart(s.ns, playerID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, eris.Wrap(err, "list history index")
	}
	if len(matchIDs) == 0 {
		return nil, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(matchIDs))
	for i, rawMatchID := range matchIDs {
		cmds[i] = pipe.Get(scope.Ctx, "history:"+s.ns+":"+playerID+":"+rawMatchID)
	}
	if _, err = pipe.Exec(scope.Ctx); err != nil && err != redis.Nil {
		return nil, eris.Wrap(err, "load history entries")
	}

	entries := make([]models.MatchHistoryEntry, 0, len(matchIDs))
	for _, cmd := range cmds {
		raw, getErr := cmd.Result()
		if getErr != nil {
			continue
		}
		var entry models.MatchHistoryEntry
		if unmarshalErr := json.Unmarshal([]byte(raw), &entry); unmarshalErr != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
