// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package lock provides the matchmaking run lock as an atomically updated
// lease record: owner id plus expiry, acquired and released with conditional
// writes. An expired lease is reclaimable, so a crashed tick cannot deadlock
// the pool forever.
package lock

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/unitemate/ranked-core/pkg/envelope"
)

var (
	ErrNotAcquired = errors.New("lease not acquired")
	ErrNotHeld     = errors.New("lease not held")
)

// releaseScript deletes the lease only when the caller still owns it, so a
// slow tick cannot release the lease a successor legitimately reclaimed.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

type Manager struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewManager(client *redis.Client, namespace string, ttl time.Duration) *Manager {
	return &Manager{
		client: client,
		key:    "queue:" + namespace + ":lock",
		ttl:    ttl,
	}
}

type Lease struct {
	manager *Manager
	owner   string
}

// Acquire takes the lease with a fresh owner id, or ErrNotAcquired when a
// live lease exists. Expiry is enforced by the key TTL.
func (m *Manager) Acquire(scope *envelope.Scope) (*Lease, error) {
	owner := uuid.NewString()
	ok, err := m.client.SetNX(scope.Ctx, m.key, owner, m.ttl).Result()
	if err != nil {
		return nil, eris.Wrap(err, "acquire lease")
	}
	if !ok {
		return nil, ErrNotAcquired
	}
	return &Lease{manager: m, owner: owner}, nil
}

// Release returns the lease. ErrNotHeld means the lease expired and may have
// been reclaimed; callers log it and move on.
func (l *Lease) Release(scope *envelope.Scope) error {
	deleted, err := releaseScript.Run(scope.Ctx, l.manager.client, []string{l.manager.key}, l.owner).Int()
	if err != nil {
		return eris.Wrap(err, "release lease")
	}
	if deleted == 0 {
		return ErrNotHeld
	}
	return nil
}

// IsHeld reports whether any live lease exists.
func (m *Manager) IsHeld(scope *envelope.Scope) (bool, error) {
	n, err := m.client.Exists(scope.Ctx, m.key).Result()
	if err != nil {
		return false, eris.Wrap(err, "check lease")
	}
	return n > 0, nil
}
