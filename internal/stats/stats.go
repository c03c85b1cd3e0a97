// Package stats aggregates porting statistics over loaded source trees.
package stats

import (
	"sort"

	"github.com/phobologic/astdistance/internal/ast"
	"github.com/phobologic/astdistance/internal/model"
	"github.com/phobologic/astdistance/internal/todo"
)

// LanguageCount is the per-language share of a tree.
type LanguageCount struct {
	Language string `json:"language"`
	Files    int    `json:"files"`
	Nodes    int    `json:"nodes"`
}

// KindCount is the number of canonical nodes of one kind.
type KindCount struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

// Porting summarizes a matching between an origin and a target tree.
type Porting struct {
	OriginFiles     int     `json:"origin_files"`
	Matched         int     `json:"matched"`
	Scored          int     `json:"scored"`
	AvgDistance     float64 `json:"avg_distance"`
	MaxDistance     float64 `json:"max_distance"`
	Coverage        float64 `json:"coverage"`
	UnmatchedOrigin int     `json:"unmatched_origin"`
	UnmatchedTarget int     `json:"unmatched_target"`
}

// Summary is the output of the stats mode.
type Summary struct {
	Discovered   int             `json:"discovered"`
	Files        int             `json:"files"`
	SyntaxErrors int             `json:"syntax_errors"`
	MappingGaps  int             `json:"mapping_gaps"`
	IOErrors     int             `json:"io_errors"`
	Skipped      int             `json:"skipped"`
	Nodes        int             `json:"nodes"`
	Markers      int             `json:"markers"`
	Truncated    bool            `json:"truncated"`
	ByLanguage   []LanguageCount `json:"by_language"`
	ByKind       []KindCount     `json:"by_kind"`
	Porting      *Porting        `json:"porting,omitempty"`
}

// Compute summarizes a loaded tree. Files counts only the files that
// canonicalized; failed files are counted by diagnostic kind and never
// contribute nodes.
func Compute(tree *model.SourceTree) Summary {
	s := Summary{
		Discovered:   len(tree.Files),
		SyntaxErrors: tree.CountDiagnostics(model.DiagSyntax),
		MappingGaps:  tree.CountDiagnostics(model.DiagMappingGap),
		IOErrors:     tree.CountDiagnostics(model.DiagIO),
		Skipped:      tree.CountDiagnostics(model.DiagSkipped),
		Markers:      len(todo.Collect(tree)),
		Truncated:    tree.Truncated,
	}

	langs := make(map[string]*LanguageCount)
	kinds := make(map[ast.Kind]int)
	for _, f := range tree.Loaded() {
		s.Files++
		n := f.Tree.Len()
		s.Nodes += n
		lc, ok := langs[f.Language]
		if !ok {
			lc = &LanguageCount{Language: f.Language}
			langs[f.Language] = lc
		}
		lc.Files++
		lc.Nodes += n
		for _, k := range ast.Kinds() {
			kinds[k] += f.Tree.Count(k)
		}
	}

	for _, lc := range langs {
		s.ByLanguage = append(s.ByLanguage, *lc)
	}
	sort.Slice(s.ByLanguage, func(i, j int) bool {
		return s.ByLanguage[i].Language < s.ByLanguage[j].Language
	})
	for _, k := range ast.Kinds() {
		if kinds[k] > 0 {
			s.ByKind = append(s.ByKind, KindCount{Kind: k.String(), Count: kinds[k]})
		}
	}
	return s
}

// AddPorting fills in the matching summary. Coverage is the share of
// loaded origin files that found a counterpart.
func (s *Summary) AddPorting(origin *model.SourceTree, rep *model.MatchingReport) {
	p := &Porting{
		OriginFiles:     len(origin.Loaded()),
		Matched:         len(rep.Matched),
		UnmatchedOrigin: len(rep.UnmatchedOrigin),
		UnmatchedTarget: len(rep.UnmatchedTarget),
	}
	var sum float64
	for _, m := range rep.Matched {
		if !m.Scored {
			continue
		}
		p.Scored++
		sum += m.Score
		if m.Score > p.MaxDistance {
			p.MaxDistance = m.Score
		}
	}
	if p.Scored > 0 {
		p.AvgDistance = sum / float64(p.Scored)
	}
	if p.OriginFiles > 0 {
		p.Coverage = float64(p.Matched) / float64(p.OriginFiles)
	}
	s.Porting = p
	s.Truncated = s.Truncated || rep.Truncated
}
