package domain

import (
	"sort"
	"strings"
)

// NormalizeTags lowercases, trims, and deduplicates tags, returning
// them sorted. Tags are sets: order is irrelevant and duplicates
// collapse, so a canonical sorted form keeps comparisons cheap.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// TokenizeQuery splits a free-text search string into a normalized tag
// set on whitespace.
func TokenizeQuery(query string) []string {
	return NormalizeTags(strings.Fields(query))
}

// TagOverlap returns the size of the intersection of two tag sets.
// Both sides are treated case- and duplicate-insensitively.
func TagOverlap(query, tags []string) int {
	set := make(map[string]struct{}, len(tags))
	for _, t := range NormalizeTags(tags) {
		set[t] = struct{}{}
	}
	n := 0
	for _, q := range NormalizeTags(query) {
		if _, ok := set[q]; ok {
			n++
		}
	}
	return n
}

// UnionTags returns the normalized union of two tag sets.
func UnionTags(a, b []string) []string {
	return NormalizeTags(append(append([]string{}, a...), b...))
}
