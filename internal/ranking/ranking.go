// Package ranking orders and trims matching reports for review.
package ranking

import (
	"sort"
	"strings"

	"github.com/phobologic/astdistance/internal/model"
)

// ByDivergence returns a copy of ms ordered most divergent first. Pairs
// without a score sort last; ties break on origin path.
func ByDivergence(ms []model.Match) []model.Match {
	out := make([]model.Match, len(ms))
	copy(out, ms)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Scored != b.Scored {
			return a.Scored
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Origin < b.Origin
	})
	return out
}

// SelectMatches returns a new report holding only the maxPairs most
// divergent matched pairs, in divergence order. Unmatched lists are kept
// whole. If maxPairs is <= 0 or >= len(rep.Matched), rep is returned.
func SelectMatches(rep *model.MatchingReport, maxPairs int) *model.MatchingReport {
	if maxPairs <= 0 || maxPairs >= len(rep.Matched) {
		return rep
	}
	return &model.MatchingReport{
		Matched:         ByDivergence(rep.Matched)[:maxPairs],
		UnmatchedOrigin: rep.UnmatchedOrigin,
		UnmatchedTarget: rep.UnmatchedTarget,
		Truncated:       rep.Truncated,
	}
}

// FilterByPath returns a new report keeping the pairs where either side
// contains substr (case-insensitive) and the unmatched files that contain
// it. An empty substr returns rep.
func FilterByPath(rep *model.MatchingReport, substr string) *model.MatchingReport {
	if substr == "" {
		return rep
	}
	lower := strings.ToLower(substr)
	contains := func(p string) bool {
		return strings.Contains(strings.ToLower(p), lower)
	}

	out := &model.MatchingReport{Truncated: rep.Truncated}
	for _, m := range rep.Matched {
		if contains(m.Origin) || contains(m.Target) {
			out.Matched = append(out.Matched, m)
		}
	}
	for _, p := range rep.UnmatchedOrigin {
		if contains(p) {
			out.UnmatchedOrigin = append(out.UnmatchedOrigin, p)
		}
	}
	for _, p := range rep.UnmatchedTarget {
		if contains(p) {
			out.UnmatchedTarget = append(out.UnmatchedTarget, p)
		}
	}
	return out
}
