// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/unitemate/ranked-core/pkg/utils"
)

// AdmitRequest is the boundary payload for pool admission. Rating fields are
// not accepted from the caller; they are snapshotted from the profile.
type AdmitRequest struct {
	PlayerID         string   `json:"player_id"`
	Blocking         []string `json:"blocking_list"`
	DesiredRole      string   `json:"desired_role"`
	RangeSpreadSpeed int      `json:"range_spread_speed"`
	DiscordHandle    string   `json:"discord_handle"`
}

func (r AdmitRequest) Validate() error {
	if r.PlayerID == "" {
		return fmt.Errorf("%w: player_id is required", ErrValidationFailed)
	}
	if r.RangeSpreadSpeed < 0 {
		return fmt.Errorf("%w: range_spread_speed must not be negative", ErrValidationFailed)
	}
	return nil
}

var validResults = []string{ResultAWin, ResultBWin, ResultInvalid}

func (r Report) Validate() error {
	if r.PlayerID == "" {
		return fmt.Errorf("%w: player_id is required", ErrValidationFailed)
	}
	if !utils.Contains(validResults, r.Result) {
		return fmt.Errorf("%w: result %q is not one of %v", ErrValidationFailed, r.Result, validResults)
	}
	if utils.Contains(r.ViolationReport, r.PlayerID) {
		return fmt.Errorf("%w: a player cannot accuse themselves", ErrValidationFailed)
	}
	return nil
}

// DecodeStrict unmarshals raw into v rejecting unknown fields, so shape drift
// at the boundary surfaces as ErrValidationFailed instead of silent defaults.
func DecodeStrict(raw []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}
	return nil
}
