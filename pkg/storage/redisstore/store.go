// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package redisstore adapts the durable collections required by the
// matchmaking and resolution engines onto Redis. Every record is a hash or a
// list under a namespaced key; secondary indexes are sorted sets. Conditional
// single-item writes go through small Lua scripts so concurrent writers never
// read-modify-write.
package redisstore

import (
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

type Store struct {
	Client    *redis.Client
	Namespace string

	Profiles *ProfileStore
	Pool     *PoolStore
	Matches  *MatchStore
	History  *HistoryStore
}

type Options = redis.Options

func New(options Options, namespace string) *Store {
	client := redis.NewClient(&options)
	return NewWithClient(client, namespace)
}

func NewWithClient(client *redis.Client, namespace string) *Store {
	return &Store{
		Client:    client,
		Namespace: namespace,
		Profiles:  &ProfileStore{client: client, ns: namespace},
		Pool:      &PoolStore{client: client, ns: namespace},
		Matches:   &MatchStore{client: client, ns: namespace},
		History:   &HistoryStore{client: client, ns: namespace},
	}
}

func (s *Store) Close() error {
	if err := s.Client.Close(); err != nil {
		return eris.Wrap(err, "")
	}
	return nil
}

// key layout

func keyProfile(ns, playerID string) string {
	return "user:" + ns + ":" + playerID
}

func keyEntry(ns, playerID string) string {
	return "queue:" + ns + ":entry:" + playerID
}

func keyByEnqueued(ns string) string {
	return "queue:" + ns + ":by_enqueued"
}

func keyByRating(ns string) string {
	return "queue:" + ns + ":by_rating"
}

func keyPoolMeta(ns string) string {
	return "queue:" + ns + ":meta"
}

func keyFreeSlots(ns string) string {
	return "queue:" + ns + ":vc_free"
}

func keyMatch(ns string, matchID int64) string {
	return "match:" + ns + ":" + strconv.FormatInt(matchID, 10)
}

func keyReports(ns string, matchID int64) string {
	return keyMatch(ns, matchID) + ":reports"
}

func keyOpenMatches(ns string) string {
	return "match:" + ns + ":open"
}

func keyHistory(ns, playerID string, matchID int64) string {
	return "history:" + ns + ":" + playerID + ":" + strconv.FormatInt(matchID, 10)
}

func keyHistoryByStart(ns, playerID string) string {
	return "history:" + ns + ":" + playerID + ":by_start"
}

// hash field parsing helpers

func fieldInt(m map[string]string, field string, fallback int) int {
	raw, ok := m[field]
	if !ok {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func fieldInt64(m map[string]string, field string, fallback int64) int64 {
	raw, ok := m[field]
	if !ok {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}
