// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package resolution

// quorumTable maps judge_timeout_count to the number of distinct player
// reports required to judge the match. It starts at a full roster and
// relaxes on every recheck so a match with absent reporters still resolves.
var quorumTable = []int{10, 9, 8, 8, 7, 7, 7, 6, 6, 6, 6, 5, 5, 5, 5, 5}

// RequiredReports returns the quorum for the given escalation count. The
// second return is false once the escalation budget is exhausted and the
// match is stuck.
func RequiredReports(timeoutCount int) (int, bool) {
	if timeoutCount < 0 || timeoutCount >= len(quorumTable) {
		return 0, false
	}
	return quorumTable[timeoutCount], true
}
