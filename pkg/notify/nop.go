// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package notify

import (
	"github.com/unitemate/ranked-core/pkg/envelope"
	"github.com/unitemate/ranked-core/pkg/models"
	"github.com/unitemate/ranked-core/pkg/penalty"
)

// Nop discards every announcement. Used when no webhook is configured.
type Nop struct{}

func (Nop) AnnounceMatch(*envelope.Scope, models.MatchRecord) {}

func (Nop) Refer(*envelope.Scope, penalty.Referral) {}
