// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package penalty

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unitemate/ranked-core/pkg/models"
)

func reportsNaming(count int, accused string) []models.Report {
	reports := make([]models.Report, 10)
	for i := range reports {
		reports[i] = models.Report{PlayerID: string(rune('a' + i)), Result: models.ResultAWin}
		if i < count {
			reports[i].ViolationReport = []string{accused}
		}
	}
	return reports
}

func TestTally(t *testing.T) {
	t.Parallel()

	tally := Tally(reportsNaming(5, "cheater"))
	assert.Equal(t, 5, tally["cheater"])

	assert.Empty(t, Tally(reportsNaming(0, "nobody")))
}

func TestReferrals_ThresholdIsStrict(t *testing.T) {
	t.Parallel()

	gamesPlayed := func(string) int { return 120 }

	// Named five times refers, named four does not.
	referrals := Referrals(7, Tally(reportsNaming(5, "cheater")), gamesPlayed)
	require.Len(t, referrals, 1)
	assert.Equal(t, "cheater", referrals[0].PlayerID)
	assert.Equal(t, 5, referrals[0].NamedCount)
	assert.Equal(t, int64(7), referrals[0].MatchID)
	assert.Equal(t, 2, referrals[0].Correction)

	assert.Empty(t, Referrals(7, Tally(reportsNaming(4, "cheater")), gamesPlayed))
}

func TestCorrection_ScalesWithGamesPlayed(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Correction(0))
	assert.Equal(t, 0, Correction(49))
	assert.Equal(t, 1, Correction(50))
	assert.Equal(t, 2, Correction(120))
}
