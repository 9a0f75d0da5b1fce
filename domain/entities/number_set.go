package entities

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// NumberSet is a sorted set of distinct integers, stored as "1,2,3"
type NumberSet []int

// NewNumberSet builds a set from values, dropping duplicates
func NewNumberSet(values ...int) NumberSet {
	seen := make(map[int]struct{}, len(values))
	set := make(NumberSet, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		set = append(set, v)
	}
	sort.Ints(set)
	return set
}

// ParseNumberSet parses a comma-separated list of integers.
// An empty or blank string yields an empty set.
func ParseNumberSet(s string) (NumberSet, error) {
	if strings.TrimSpace(s) == "" {
		return NumberSet{}, nil
	}

	parts := strings.Split(s, ",")
	values := make([]int, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid number %q in %q: %w", part, s, err)
		}
		values = append(values, v)
	}
	return NewNumberSet(values...), nil
}

// String renders the set in its stored comma-separated form
func (n NumberSet) String() string {
	parts := make([]string, len(n))
	for i, v := range n {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// Contains reports whether v is in the set
func (n NumberSet) Contains(v int) bool {
	i := sort.SearchInts(n, v)
	return i < len(n) && n[i] == v
}

// InRange reports whether every member lies in [lo, hi]
func (n NumberSet) InRange(lo, hi int) bool {
	for _, v := range n {
		if v < lo || v > hi {
			return false
		}
	}
	return true
}
