// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package strutils has the string list helpers used for scopes and challenge
// types.
package strutils

import "strings"

// StrListContains reports whether needle is in haystack.
func StrListContains(haystack []string, needle string) bool {
	for _, item := range haystack {
		if item == needle {
			return true
		}
	}
	return false
}

// StrListContainsAll reports whether every needle is in haystack.  It's true
// for no needles.
func StrListContainsAll(haystack, needles []string) bool {
	for _, n := range needles {
		if !StrListContains(haystack, n) {
			return false
		}
	}
	return true
}

// RemoveDuplicatesStable trims every item and drops the empty and duplicate
// ones, keeping the first occurrence of each and the original order.  Items
// are compared lower cased when caseInsensitive.
func RemoveDuplicatesStable(items []string, caseInsensitive bool) []string {
	seen := make(map[string]struct{}, len(items))
	deduplicated := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		key := item
		if caseInsensitive {
			key = strings.ToLower(key)
		}
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduplicated = append(deduplicated, item)
	}
	return deduplicated
}
