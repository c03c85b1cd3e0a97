// Package model defines the data structures shared by the analysis modes.
package model

import (
	"sort"

	"github.com/phobologic/astdistance/internal/ast"
)

// DiagnosticKind classifies a per-file failure.
type DiagnosticKind string

const (
	DiagIO         DiagnosticKind = "io"
	DiagSkipped    DiagnosticKind = "skipped"
	DiagSyntax     DiagnosticKind = "syntax"
	DiagMappingGap DiagnosticKind = "mapping-gap"
)

// Diagnostic records why a file was excluded from analysis.
type Diagnostic struct {
	Path    string
	Kind    DiagnosticKind
	Message string
}

// SourceFile is one file of a source tree. Tree is nil when loading failed,
// in which case Diag explains why.
type SourceFile struct {
	Path     string
	Language string
	Source   []byte
	Size     int64
	Tree     *ast.Tree
	Diag     *Diagnostic
}

// OK reports whether the file produced a canonical tree.
func (f *SourceFile) OK() bool {
	return f.Tree != nil && f.Diag == nil
}

// SourceTree is a loaded directory. Files are ordered by path and the value
// is not modified after loading.
type SourceTree struct {
	Root        string
	Language    string
	Files       []*SourceFile
	Diagnostics []Diagnostic
	Truncated   bool
}

// Loaded returns the files that canonicalized successfully, in path order.
func (t *SourceTree) Loaded() []*SourceFile {
	out := make([]*SourceFile, 0, len(t.Files))
	for _, f := range t.Files {
		if f.OK() {
			out = append(out, f)
		}
	}
	return out
}

// File returns the file with the given relative path, or nil.
func (t *SourceTree) File(path string) *SourceFile {
	i := sort.Search(len(t.Files), func(i int) bool { return t.Files[i].Path >= path })
	if i < len(t.Files) && t.Files[i].Path == path {
		return t.Files[i]
	}
	return nil
}

// CountDiagnostics returns the number of diagnostics of kind k.
func (t *SourceTree) CountDiagnostics(k DiagnosticKind) int {
	n := 0
	for _, d := range t.Diagnostics {
		if d.Kind == k {
			n++
		}
	}
	return n
}

// TodoMarker is an unresolved-work marker found in a target file.
type TodoMarker struct {
	Path   string
	Line   int
	Column int
	Token  string
	Text   string
	Ref    string
}

// Severity of a lint finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ParseSeverity reports whether s names a known severity.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(s) {
	case SeverityError, SeverityWarning, SeverityInfo:
		return Severity(s), true
	}
	return "", false
}

// LintFinding is a flagged subtree or file.
type LintFinding struct {
	Path     string
	Rule     string
	Severity Severity
	Span     ast.Span
	Message  string
}

// SortFindings orders findings by path, line, column and rule.
func SortFindings(fs []LintFinding) {
	sort.SliceStable(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Span.Start.Line != b.Span.Start.Line {
			return a.Span.Start.Line < b.Span.Start.Line
		}
		if a.Span.Start.Column != b.Span.Start.Column {
			return a.Span.Start.Column < b.Span.Start.Column
		}
		return a.Rule < b.Rule
	})
}

// MatchMethod records which matcher pass paired two files.
type MatchMethod string

const (
	MethodHeader    MatchMethod = "header"
	MethodPath      MatchMethod = "path"
	MethodStructure MatchMethod = "structure"
)

// Match pairs an origin file with its target counterpart. Score is only
// meaningful when Scored is set.
type Match struct {
	Origin string
	Target string
	Score  float64
	Scored bool
	Method MatchMethod
}

// MatchingReport partitions the loaded origin files into matched and
// unmatched, and lists target files no origin explains.
type MatchingReport struct {
	Matched         []Match
	UnmatchedOrigin []string
	UnmatchedTarget []string
	Truncated       bool
}
