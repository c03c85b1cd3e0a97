package report

import (
	"github.com/phobologic/astdistance/internal/model"
	"github.com/phobologic/astdistance/internal/toon"
)

// Lint reference modes.
const (
	LintBaseline    = "baseline"
	LintCounterpart = "counterpart"
)

// Finding is one lint finding.
type Finding struct {
	Path     string `json:"path"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Lint is the output of the lint mode.
type Lint struct {
	Mode        string       `json:"mode"`
	Target      string       `json:"target"`
	Language    string       `json:"language,omitempty"`
	Reference   string       `json:"reference"`
	Origin      string       `json:"origin,omitempty"`
	Findings    []Finding    `json:"findings"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	Truncated   bool         `json:"truncated"`
}

// NewLint builds a lint report. origin is nil in baseline mode; findings
// must already be sorted.
func NewLint(target, origin *model.SourceTree, findings []model.LintFinding, truncated bool) *Lint {
	r := &Lint{
		Mode:        "lint",
		Target:      target.Root,
		Language:    target.Language,
		Reference:   LintBaseline,
		Findings:    make([]Finding, 0, len(findings)),
		Diagnostics: Diagnostics(target, ""),
		Truncated:   truncated || target.Truncated,
	}
	if origin != nil {
		r.Reference = LintCounterpart
		r.Origin = origin.Root
		r.Diagnostics = append(Diagnostics(origin, "origin"), Diagnostics(target, "target")...)
		r.Truncated = r.Truncated || origin.Truncated
	}
	for _, f := range findings {
		r.Findings = append(r.Findings, Finding{
			Path:     f.Path,
			Line:     f.Span.Start.Line,
			Column:   f.Span.Start.Column,
			Rule:     f.Rule,
			Severity: string(f.Severity),
			Message:  f.Message,
		})
	}
	return r
}

// Document implements Report.
func (r *Lint) Document() *toon.Document {
	d := &toon.Document{}
	d.Field("mode", r.Mode).Field("target", r.Target)
	if r.Language != "" {
		d.Field("language", r.Language)
	}
	d.Field("reference", r.Reference)
	if r.Origin != "" {
		d.Field("origin", r.Origin)
	}
	rows := make([][]string, len(r.Findings))
	for i, f := range r.Findings {
		rows[i] = []string{f.Path, itoa(f.Line), itoa(f.Column), f.Rule, f.Severity, f.Message}
	}
	d.Table("findings", []string{"path", "line", "column", "rule", "severity", "message"}, rows)
	diagnosticTable(d, r.Diagnostics, r.Origin != "")
	d.Bool("truncated", r.Truncated)
	return d
}
