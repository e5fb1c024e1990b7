package models

import "math"

// UnreachableRank is the start rank PageBounds reports for a page that begins
// beyond the int64 rank space. No collection holds an item at that rank.
const UnreachableRank int64 = math.MaxInt64

// PageBounds converts a 1-based page of pageSize items into the inclusive,
// 0-based rank range it covers. ok is false when page or pageSize is below 1.
//
// A page that starts beyond the int64 rank space yields
// [UnreachableRank, UnreachableRank], which selects nothing.
func PageBounds(page, pageSize int64) (start, end int64, ok bool) {
	if page < 1 || pageSize < 1 {
		return 0, 0, false
	}
	if page-1 > (math.MaxInt64-pageSize+1)/pageSize {
		return UnreachableRank, UnreachableRank, true
	}
	start = (page - 1) * pageSize
	return start, start + pageSize - 1, true
}
