// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package utils

// Contains return true if val exist in list, else return false.
func Contains[T comparable](list []T, val T) bool {
	for _, v := range list {
		if v == val {
			return true
		}
	}
	return false
}

// CountOccurrences tallies how many times each value appears across all lists.
func CountOccurrences[T comparable](lists ...[]T) map[T]int {
	counts := make(map[T]int)
	for _, list := range lists {
		for _, v := range list {
			counts[v]++
		}
	}
	return counts
}
