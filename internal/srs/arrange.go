package srs

import (
	"sort"
	"strings"
)

// Ordering selects how Arrange sorts the dictionary view.
type Ordering int

const (
	// OrderLexical sorts by item text, case-insensitive.
	OrderLexical Ordering = iota
	// OrderEase sorts by a pronounceability heuristic: text length first,
	// vowel count second.
	OrderEase
)

// Arrange sorts and pages a dictionary snapshot. It is a pure function: the
// input slice is not modified. Pages are 1-indexed; an out-of-range page
// clamps into [1, totalPages], and an empty set yields a valid empty page 1.
func Arrange(items []ViewItem, ordering Ordering, reverse bool, pageSize, page int) (pageItems []ViewItem, pageNum, totalPages int) {
	sorted := make([]ViewItem, len(items))
	copy(sorted, items)

	var less func(a, b ViewItem) bool
	switch ordering {
	case OrderEase:
		less = func(a, b ViewItem) bool {
			if len(a.Text) != len(b.Text) {
				return len(a.Text) < len(b.Text)
			}
			return CountVowels(a.Text) < CountVowels(b.Text)
		}
	default:
		less = func(a, b ViewItem) bool {
			return strings.ToLower(a.Text) < strings.ToLower(b.Text)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})
	// Reverse the sorted slice rather than the comparator: with a stable sort
	// an inverted comparator keeps tied items in input order, which would make
	// the reversed view not the exact reverse of the forward one.
	if reverse {
		for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
			sorted[i], sorted[j] = sorted[j], sorted[i]
		}
	}

	if pageSize < 1 {
		pageSize = 1
	}
	totalPages = (len(sorted) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(sorted) {
		start = len(sorted)
	}
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[start:end], page, totalPages
}

// CountVowels counts the vowel characters in text (both cases).
func CountVowels(text string) int {
	n := 0
	for _, r := range text {
		switch r {
		case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
			n++
		}
	}
	return n
}
