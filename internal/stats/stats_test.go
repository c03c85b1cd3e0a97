package stats

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/phobologic/astdistance/internal/ast"
	"github.com/phobologic/astdistance/internal/model"
)

func TestCompute(t *testing.T) {
	t.Parallel()

	tree := &model.SourceTree{
		Files: []*model.SourceFile{
			{Path: "a.kt", Language: "kotlin", Tree: ast.MustParse("(module (function/function (statement/return)))")},
			{Path: "b.kt", Language: "kotlin", Diag: &model.Diagnostic{Path: "b.kt", Kind: model.DiagSyntax}},
			{Path: "c.kt", Language: "kotlin", Diag: &model.Diagnostic{Path: "c.kt", Kind: model.DiagMappingGap}},
			{Path: "d.py", Language: "python", Tree: ast.MustParse("(module (opaque/x))")},
		},
		Diagnostics: []model.Diagnostic{
			{Path: "b.kt", Kind: model.DiagSyntax},
			{Path: "c.kt", Kind: model.DiagMappingGap},
		},
	}

	got := Compute(tree)
	want := Summary{
		Discovered:   4,
		Files:        2,
		SyntaxErrors: 1,
		MappingGaps:  1,
		Nodes:        5,
		ByLanguage: []LanguageCount{
			{Language: "kotlin", Files: 1, Nodes: 3},
			{Language: "python", Files: 1, Nodes: 2},
		},
		ByKind: []KindCount{
			{Kind: "module", Count: 2},
			{Kind: "function", Count: 1},
			{Kind: "statement", Count: 1},
			{Kind: "opaque", Count: 1},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestAddPorting(t *testing.T) {
	t.Parallel()

	origin := &model.SourceTree{Files: []*model.SourceFile{
		{Path: "a.rs", Tree: ast.MustParse("(module)")},
		{Path: "b.rs", Tree: ast.MustParse("(module)")},
		{Path: "c.rs", Tree: ast.MustParse("(module)")},
		{Path: "d.rs", Tree: ast.MustParse("(module)")},
		{Path: "e.rs", Diag: &model.Diagnostic{Kind: model.DiagIO}},
	}}
	rep := &model.MatchingReport{
		Matched: []model.Match{
			{Origin: "a.rs", Target: "A.kt", Score: 0.1, Scored: true},
			{Origin: "b.rs", Target: "B.kt", Score: 0.3, Scored: true},
			{Origin: "c.rs", Target: "C.kt", Method: model.MethodPath},
		},
		UnmatchedOrigin: []string{"d.rs"},
		UnmatchedTarget: []string{"X.kt", "Y.kt"},
	}

	var s Summary
	s.AddPorting(origin, rep)
	p := s.Porting
	if p.OriginFiles != 4 || p.Matched != 3 || p.Scored != 2 || p.UnmatchedTarget != 2 {
		t.Errorf("porting = %+v", p)
	}
	if math.Abs(p.AvgDistance-0.2) > 1e-9 || p.MaxDistance != 0.3 {
		t.Errorf("avg %v max %v", p.AvgDistance, p.MaxDistance)
	}
	if p.Coverage != 0.75 {
		t.Errorf("coverage = %v, want 0.75", p.Coverage)
	}
}
