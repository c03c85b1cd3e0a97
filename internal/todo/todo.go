// Package todo collects unresolved-work markers from canonical trees.
package todo

import (
	"sort"

	"github.com/phobologic/astdistance/internal/model"
)

// Collect returns every marker in the loaded files of tree, sorted by path,
// line and column.
func Collect(tree *model.SourceTree) []model.TodoMarker {
	var out []model.TodoMarker
	for _, f := range tree.Loaded() {
		for _, m := range f.Tree.Markers() {
			out = append(out, model.TodoMarker{
				Path:   f.Path,
				Line:   m.Line,
				Column: m.Col,
				Token:  m.Token,
				Text:   m.Text,
				Ref:    m.Ref,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return out
}

// CountByToken tallies markers per token.
func CountByToken(markers []model.TodoMarker) map[string]int {
	counts := make(map[string]int)
	for _, m := range markers {
		counts[m.Token]++
	}
	return counts
}
