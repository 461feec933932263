// Package pagerange parses human-entered page range expressions such as
// "1-3,5,7-9" into zero-based page indices.
//
// Tokens are separated by commas. A token "a-b" expands to the indices
// a-1 through b-1 in ascending order; a token "n" yields n-1. The order of
// tokens is kept and duplicates are not removed, so "3,1-2,3" resolves to
// [2 0 1 2]. A token whose start exceeds its end expands to nothing.
package pagerange

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	apperrors "pdf-toolbox/pkg/errors"
)

// Parse resolves expr without bounds checking. Zero and negative page numbers
// are passed through as negative indices.
func Parse(expr string) ([]int, error) {
	tokens := strings.Split(expr, ",")
	indices := make([]int, 0, len(tokens))

	for _, raw := range tokens {
		token := strings.TrimSpace(raw)
		if token == "" {
			return nil, apperrors.NewInvalidRangeError(expr, fmt.Errorf("empty token"))
		}

		startStr, endStr, isRange := strings.Cut(token, "-")
		if !isRange {
			n, err := parseNumber(token)
			if err != nil {
				return nil, apperrors.NewInvalidRangeError(expr, err)
			}
			indices = append(indices, n-1)
			continue
		}

		start, err := parseNumber(startStr)
		if err != nil {
			return nil, apperrors.NewInvalidRangeError(expr, err)
		}
		end, err := parseNumber(endStr)
		if err != nil {
			return nil, apperrors.NewInvalidRangeError(expr, err)
		}
		for i := start - 1; i < end; i++ {
			indices = append(indices, i)
		}
	}

	return indices, nil
}

// ParseBounded resolves expr and silently drops indices outside [0, pageCount).
func ParseBounded(expr string, pageCount int) ([]int, error) {
	indices, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	return Clamp(indices, pageCount), nil
}

// Clamp filters indices to [0, pageCount), keeping order and duplicates.
func Clamp(indices []int, pageCount int) []int {
	kept := make([]int, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < pageCount {
			kept = append(kept, i)
		}
	}
	return kept
}

// All returns the indices 0..pageCount-1.
func All(pageCount int) []int {
	indices := make([]int, pageCount)
	for i := range indices {
		indices[i] = i
	}
	return indices
}

// SortedSet returns the distinct indices in ascending order.
func SortedSet(indices []int) []int {
	seen := make(map[int]struct{}, len(indices))
	set := make([]int, 0, len(indices))
	for _, i := range indices {
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		set = append(set, i)
	}
	sort.Ints(set)
	return set
}

// Format renders zero-based indices as a 1-based expression, collapsing
// ascending runs: [0 1 2 4] -> "1-3,5".
func Format(indices []int) string {
	if len(indices) == 0 {
		return ""
	}

	var parts []string
	start := indices[0]
	prev := start
	flush := func() {
		if start == prev {
			parts = append(parts, strconv.Itoa(start+1))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start+1, prev+1))
		}
	}
	for _, i := range indices[1:] {
		if i == prev+1 {
			prev = i
			continue
		}
		flush()
		start, prev = i, i
	}
	flush()

	return strings.Join(parts, ",")
}

func parseNumber(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("missing page number")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a page number", s)
	}
	return n, nil
}
