// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package constants

import "time"

const (
	PoolLockTimeLimit = 10 * time.Second
)

const (
	// GroupSize is the number of players per contest, TeamSize per side.
	GroupSize = 10
	TeamSize  = 5

	// BaseRatingRange is the half-width of a fresh player's acceptable window.
	// The window widens by RangeSpreadSpeed for every tick left unmatched and
	// becomes unbounded at UnboundedSpreadCount.
	BaseRatingRange      = 50
	UnboundedSpreadCount = 5

	DefaultRating = 1500

	EloKFactor       = 16
	EarlyCareerGames = 20
	EarlyCareerBonus = 5

	// ViolationReferralThreshold is the number of accusations a player may
	// collect in one match before a penalty referral fires.
	ViolationReferralThreshold = 4
	PenaltyGamesDivisor        = 50

	// Voice slots are odd integers; slot n hosts team A, n+1 team B.
	FirstVoiceSlot = 1
	LastVoiceSlot  = 99
)

const (
	// not matched reason constants.
	ReasonNotEnoughPlayers = "not_enough_players"
	ReasonNoCompatibleSet  = "no_compatible_set"
)
