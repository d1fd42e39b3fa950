// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

import (
	"errors"
)

var (
	// ErrBusy means the matchmaking run lock is held; callers retry later.
	ErrBusy = errors.New("matchmaking run in progress")
	// ErrAlreadyAssigned rejects admission for a player still in an unresolved match.
	ErrAlreadyAssigned = errors.New("player already assigned to an unresolved match")
	// ErrNotFound means the referenced match or player is absent.
	ErrNotFound = errors.New("record not found")
	// ErrCapacityExhausted means the voice-slot pool is empty; group
	// finalization for the tick must halt.
	ErrCapacityExhausted = errors.New("voice slot pool exhausted")
	// ErrValidationFailed rejects a malformed payload with no state mutated.
	ErrValidationFailed = errors.New("validation failed")
	// ErrStuck means the escalation budget ran out without quorum; the match
	// is surfaced for manual judging and never auto-retried.
	ErrStuck = errors.New("judge escalation budget exhausted")
)

var errorCodeMap = map[error]int{
	ErrBusy:              423001,
	ErrAlreadyAssigned:   409001,
	ErrNotFound:          404001,
	ErrCapacityExhausted: 507001,
	ErrValidationFailed:  422001,
	ErrStuck:             409002,
}

// ErrorCode returns the boundary code for err, or 500000 when unregistered.
func ErrorCode(err error) int {
	for sentinel, code := range errorCodeMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return 500000
}
