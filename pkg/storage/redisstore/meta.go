// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package redisstore

import (
	"encoding/json"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/unitemate/ranked-core/pkg/constants"
	"github.com/unitemate/ranked-core/pkg/envelope"
	"github.com/unitemate/ranked-core/pkg/models"
)

// Pool metadata: the monotonic match-id counter, the last-published display
// snapshot, and the free voice-slot set. Voice slots are odd integers kept in
// a sorted set scored by slot number so allocation always takes the lowest.

func (s *PoolStore) GetMeta(scope *envelope.Scope) (models.PoolMeta, error) {
	fields, err := s.client.HGetAll(scope.Ctx, keyPoolMeta(s.ns)).Result()
	if err != nil {
		return models.PoolMeta{}, eris.Wrap(err, "get pool meta")
	}
	meta := models.PoolMeta{
		LatestMatchID: fieldInt64(fields, "latest_match_id", 0),
	}
	if raw, ok := fields["rate_list"]; ok && raw != "" {
		_ = json.Unmarshal([]byte(raw), &meta.RateList)
	}
	if raw, ok := fields["range_list"]; ok && raw != "" {
		_ = json.Unmarshal([]byte(raw), &meta.RangeList)
	}
	return meta, nil
}

// ReserveMatchIDs advances the monotonic counter by n and returns the first
// reserved id. IDs are never reused, even when a tick later fails.
func (s *PoolStore) ReserveMatchIDs(scope *envelope.Scope, n int) (int64, error) {
	latest, err := s.client.HIncrBy(scope.Ctx, keyPoolMeta(s.ns), "latest_match_id", int64(n)).Result()
	if err != nil {
		return 0, eris.Wrap(err, "reserve match ids")
	}
	return latest - int64(n) + 1, nil
}

// PublishLists stores the display snapshot read by the queue-info surface.
func (s *PoolStore) PublishLists(scope *envelope.Scope, rateList, rangeList []int) error {
	rates, err := json.Marshal(rateList)
	if err != nil {
		return eris.Wrap(err, "marshal rate list")
	}
	ranges, err := json.Marshal(rangeList)
	if err != nil {
		return eris.Wrap(err, "marshal range list")
	}
	err = s.client.HSet(scope.Ctx, keyPoolMeta(s.ns), "rate_list", string(rates), "range_list", string(ranges)).Err()
	return eris.Wrap(err, "publish pool lists")
}

// SeedSlots fills the free-slot set with every odd slot in the configured
// window. Existing members keep their state, so reseeding a live namespace is
// harmless.
func (s *PoolStore) SeedSlots(scope *envelope.Scope) error {
	members := make([]redis.Z, 0, (constants.LastVoiceSlot-constants.FirstVoiceSlot)/2+1)
	for slot := constants.FirstVoiceSlot; slot <= constants.LastVoiceSlot; slot += 2 {
		members = append(members, redis.Z{Score: float64(slot), Member: strconv.Itoa(slot)})
	}
	err := s.client.ZAddNX(scope.Ctx, keyFreeSlots(s.ns), members...).Err()
	return eris.Wrap(err, "seed voice slots")
}

// AllocateSlot pops the lowest free odd slot; the pair (slot, slot+1) belongs
// to the match until released.
func (s *PoolStore) AllocateSlot(scope *envelope.Scope) (int, error) {
	popped, err := s.client.ZPopMin(scope.Ctx, keyFreeSlots(s.ns), 1).Result()
	if err != nil {
		return 0, eris.Wrap(err, "allocate voice slot")
	}
	if len(popped) == 0 {
		return 0, models.ErrCapacityExhausted
	}
	slot, err := strconv.Atoi(popped[0].Member.(string))
	if err != nil {
		return 0, eris.Wrap(err, "parse voice slot")
	}
	return slot, nil
}

// ReleaseSlot returns a slot pair to the free set. Adding an already-free
// slot is a no-op, which keeps release idempotent under finalize retries.
func (s *PoolStore) ReleaseSlot(scope *envelope.Scope, slot int) error {
	err := s.client.ZAdd(scope.Ctx, keyFreeSlots(s.ns), redis.Z{Score: float64(slot), Member: strconv.Itoa(slot)}).Err()
	return eris.Wrap(err, "release voice slot")
}

// FreeSlots lists the currently free odd slots in ascending order.
func (s *PoolStore) FreeSlots(scope *envelope.Scope) ([]int, error) {
	members, err := s.client.ZRange(scope.Ctx, keyFreeSlots(s.ns), 0, -1).Result()
	if err != nil {
		return nil, eris.Wrap(err, "list free voice slots")
	}
	slots := make([]int, 0, len(members))
	for _, member := range members {
		slot, convErr := strconv.Atoi(member)
		if convErr != nil {
			continue
		}
		slots = append(slots, slot)
	}
	return slots, nil
}
