package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/phobologic/astdistance/internal/ast"
	"github.com/phobologic/astdistance/internal/model"
	"github.com/phobologic/astdistance/internal/stats"
)

func origin() *model.SourceTree {
	return &model.SourceTree{
		Root:     "orig",
		Language: "python",
		Files: []*model.SourceFile{
			{Path: "a.py", Tree: ast.MustParse("(module)")},
			{Path: "b.py", Tree: ast.MustParse("(module)")},
			{Path: "z.py", Diag: &model.Diagnostic{Path: "z.py", Kind: model.DiagSyntax, Message: "syntax error at 1:1"}},
		},
		Diagnostics: []model.Diagnostic{
			{Path: "z.py", Kind: model.DiagSyntax, Message: "syntax error at 1:1"},
		},
	}
}

func target() *model.SourceTree {
	return &model.SourceTree{
		Root:     "port",
		Language: "python",
		Files: []*model.SourceFile{
			{Path: "a.py", Tree: ast.MustParse("(module)")},
			{Path: "c.py", Tree: ast.MustParse("(module)")},
		},
	}
}

func matching() *model.MatchingReport {
	return &model.MatchingReport{
		Matched:         []model.Match{{Origin: "a.py", Target: "a.py", Score: 0, Scored: true, Method: model.MethodPath}},
		UnmatchedOrigin: []string{"b.py"},
		UnmatchedTarget: []string{"c.py"},
	}
}

func lines(t *testing.T, r Report) []string {
	t.Helper()
	var buf bytes.Buffer
	if err := Write(&buf, FormatTOON, r); err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatTOON},
		{"toon", FormatTOON},
		{"json", FormatJSON},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
	if _, err := ParseFormat("yaml"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormat(yaml) err = %v", err)
	}
}

func TestDeepTOON(t *testing.T) {
	t.Parallel()

	want := []string{
		"mode: deep",
		"origin: orig",
		"origin_language: python",
		"origin_files: 2",
		"target: port",
		"target_language: python",
		"target_files: 2",
		"matched[1]{origin,target,score,method}:",
		"  a.py,a.py,0.0000,path",
		"unmatched_origin[1]{path}:",
		"  b.py",
		"unmatched_target[1]{path}:",
		"  c.py",
		"diagnostics[1]{tree,path,kind,message}:",
		`  origin,z.py,syntax,"syntax error at 1:1"`,
		"truncated: false",
	}
	if diff := cmp.Diff(want, lines(t, NewDeep(origin(), target(), matching()))); diff != "" {
		t.Errorf("deep mismatch (-want +got):\n%s", diff)
	}
}

func TestMissingTOON(t *testing.T) {
	t.Parallel()

	got := lines(t, NewMissing(origin(), target(), matching()))
	want := []string{
		"missing[1]{path}:",
		"  b.py",
	}
	joined := strings.Join(got, "\n")
	if !strings.Contains(joined, strings.Join(want, "\n")) {
		t.Errorf("missing table not found in:\n%s", joined)
	}
	if strings.Contains(joined, "matched[") {
		t.Error("missing report should not list matched pairs")
	}
}

func TestMissingJSON(t *testing.T) {
	t.Parallel()

	rep := matching()
	rep.UnmatchedOrigin = nil
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, NewMissing(origin(), target(), rep)); err != nil {
		t.Fatal(err)
	}
	var got struct {
		Mode        string       `json:"mode"`
		Missing     []string     `json:"missing"`
		Diagnostics []Diagnostic `json:"diagnostics"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decoding %s: %v", buf.String(), err)
	}
	if got.Mode != "missing" || got.Missing == nil || len(got.Missing) != 0 {
		t.Errorf("got %+v", got)
	}
	if len(got.Diagnostics) != 1 || got.Diagnostics[0].Tree != "origin" {
		t.Errorf("diagnostics = %+v", got.Diagnostics)
	}
	if !strings.Contains(buf.String(), `"missing": []`) {
		t.Errorf("empty list should encode as []:\n%s", buf.String())
	}
}

func TestLintTOON(t *testing.T) {
	t.Parallel()

	findings := []model.LintFinding{{
		Path:     "a.py",
		Rule:     "function-shape",
		Severity: model.SeverityInfo,
		Span:     ast.Span{Start: ast.Point{Line: 26, Column: 1}},
		Message:  "function run diverges from the common shape (0.7100)",
	}}
	want := []string{
		"mode: lint",
		"target: port",
		"language: python",
		"reference: baseline",
		"findings[1]{path,line,column,rule,severity,message}:",
		`  a.py,26,1,function-shape,info,function run diverges from the common shape (0.7100)`,
		"diagnostics[0]{path,kind,message}:",
		"truncated: false",
	}
	if diff := cmp.Diff(want, lines(t, NewLint(target(), nil, findings, false))); diff != "" {
		t.Errorf("lint mismatch (-want +got):\n%s", diff)
	}
}

func TestLintCounterpartCarriesOrigin(t *testing.T) {
	t.Parallel()

	r := NewLint(target(), origin(), nil, true)
	if r.Reference != LintCounterpart || r.Origin != "orig" || !r.Truncated {
		t.Errorf("got %+v", r)
	}
	if len(r.Diagnostics) != 1 || r.Diagnostics[0].Tree != "origin" {
		t.Errorf("diagnostics = %+v", r.Diagnostics)
	}
}

func TestTodosTOON(t *testing.T) {
	t.Parallel()

	markers := []model.TodoMarker{
		{Path: "m.py", Line: 5, Column: 3, Token: "TODO", Text: "handle unicode"},
		{Path: "m.py", Line: 12, Column: 10, Token: "FIXME", Text: "off by one", Ref: "#7"},
	}
	got := lines(t, NewTodos(target(), markers, map[string]int{"TODO": 1, "FIXME": 1}))
	want := []string{
		"mode: todos",
		"target: port",
		"language: python",
		"markers[2]{path,line,column,token,text,ref}:",
		`  m.py,5,3,TODO,handle unicode,""`,
		"  m.py,12,10,FIXME,off by one,#7",
		"counts[2]{token,count}:",
		"  FIXME,1",
		"  TODO,1",
		"diagnostics[0]{path,kind,message}:",
		"truncated: false",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("todos mismatch (-want +got):\n%s", diff)
	}
}

func TestStatsTOON(t *testing.T) {
	t.Parallel()

	s := stats.Summary{
		Discovered:   3,
		Files:        2,
		SyntaxErrors: 1,
		Nodes:        2,
		ByLanguage:   []stats.LanguageCount{{Language: "python", Files: 2, Nodes: 2}},
		ByKind:       []stats.KindCount{{Kind: "module", Count: 2}},
	}
	got := strings.Join(lines(t, NewStats(origin(), nil, s, nil)), "\n")
	for _, want := range []string{
		"discovered: 3",
		"files: 2",
		"syntax_errors: 1",
		"by_language[1]{language,files,nodes}:\n  python,2,2",
		"by_kind[1]{kind,count}:\n  module,2",
		"diagnostics[1]{path,kind,message}:",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "coverage") {
		t.Error("porting fields without an origin")
	}
}

func TestStatsPorting(t *testing.T) {
	t.Parallel()

	var s stats.Summary
	s.AddPorting(origin(), matching())
	got := strings.Join(lines(t, NewStats(target(), origin(), s, matching().Matched)), "\n")
	for _, want := range []string{
		"origin: orig",
		"coverage: 0.5000",
		"worst[1]{origin,target,score,method}:\n  a.py,a.py,0.0000,path",
		"diagnostics[1]{tree,path,kind,message}:",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}
