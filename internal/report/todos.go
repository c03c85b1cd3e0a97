package report

import (
	"sort"

	"github.com/phobologic/astdistance/internal/model"
	"github.com/phobologic/astdistance/internal/toon"
)

// Marker is one unresolved-work marker.
type Marker struct {
	Path   string `json:"path"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Token  string `json:"token"`
	Text   string `json:"text,omitempty"`
	Ref    string `json:"ref,omitempty"`
}

// TokenCount is the number of markers carrying one token.
type TokenCount struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// Todos is the output of the todos mode.
type Todos struct {
	Mode        string       `json:"mode"`
	Target      string       `json:"target"`
	Language    string       `json:"language,omitempty"`
	Markers     []Marker     `json:"markers"`
	Counts      []TokenCount `json:"counts"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	Truncated   bool         `json:"truncated"`
}

// NewTodos builds a todos report from markers already in output order.
func NewTodos(target *model.SourceTree, markers []model.TodoMarker, counts map[string]int) *Todos {
	r := &Todos{
		Mode:        "todos",
		Target:      target.Root,
		Language:    target.Language,
		Markers:     make([]Marker, 0, len(markers)),
		Counts:      make([]TokenCount, 0, len(counts)),
		Diagnostics: Diagnostics(target, ""),
		Truncated:   target.Truncated,
	}
	for _, m := range markers {
		r.Markers = append(r.Markers, Marker(m))
	}
	for tok, n := range counts {
		r.Counts = append(r.Counts, TokenCount{Token: tok, Count: n})
	}
	sort.Slice(r.Counts, func(i, j int) bool {
		return r.Counts[i].Token < r.Counts[j].Token
	})
	return r
}

// Document implements Report.
func (r *Todos) Document() *toon.Document {
	d := &toon.Document{}
	d.Field("mode", r.Mode).Field("target", r.Target)
	if r.Language != "" {
		d.Field("language", r.Language)
	}
	rows := make([][]string, len(r.Markers))
	for i, m := range r.Markers {
		rows[i] = []string{m.Path, itoa(m.Line), itoa(m.Column), m.Token, m.Text, m.Ref}
	}
	d.Table("markers", []string{"path", "line", "column", "token", "text", "ref"}, rows)
	rows = make([][]string, len(r.Counts))
	for i, c := range r.Counts {
		rows[i] = []string{c.Token, itoa(c.Count)}
	}
	d.Table("counts", []string{"token", "count"}, rows)
	diagnosticTable(d, r.Diagnostics, false)
	d.Bool("truncated", r.Truncated)
	return d
}
