package report

import (
	"github.com/phobologic/astdistance/internal/model"
	"github.com/phobologic/astdistance/internal/toon"
)

// Pair is one matched origin/target pair. Score is absent for pairs that
// were accepted without scoring.
type Pair struct {
	Origin string   `json:"origin"`
	Target string   `json:"target"`
	Score  *float64 `json:"score,omitempty"`
	Method string   `json:"method"`
}

func pairs(ms []model.Match) []Pair {
	out := make([]Pair, 0, len(ms))
	for _, m := range ms {
		p := Pair{Origin: m.Origin, Target: m.Target, Method: string(m.Method)}
		if m.Scored {
			s := m.Score
			p.Score = &s
		}
		out = append(out, p)
	}
	return out
}

func pairTable(d *toon.Document, name string, ps []Pair) {
	rows := make([][]string, len(ps))
	for i, p := range ps {
		s := ""
		if p.Score != nil {
			s = toon.Float(*p.Score)
		}
		rows[i] = []string{p.Origin, p.Target, s, p.Method}
	}
	d.Table(name, []string{"origin", "target", "score", "method"}, rows)
}

func pathTable(d *toon.Document, name string, paths []string) {
	rows := make([][]string, len(paths))
	for i, p := range paths {
		rows[i] = []string{p}
	}
	d.Table(name, []string{"path"}, rows)
}

// Side names one tree of a comparison.
type Side struct {
	Root     string `json:"root"`
	Language string `json:"language"`
	Files    int    `json:"files"`
}

func side(t *model.SourceTree) Side {
	return Side{Root: t.Root, Language: t.Language, Files: len(t.Loaded())}
}

func sideFields(d *toon.Document, name string, s Side) {
	d.Field(name, s.Root).
		Field(name+"_language", s.Language).
		Int(name+"_files", s.Files)
}

// Deep is the output of the deep mode.
type Deep struct {
	Mode            string       `json:"mode"`
	Origin          Side         `json:"origin"`
	Target          Side         `json:"target"`
	Matched         []Pair       `json:"matched"`
	UnmatchedOrigin []string     `json:"unmatched_origin"`
	UnmatchedTarget []string     `json:"unmatched_target"`
	Diagnostics     []Diagnostic `json:"diagnostics"`
	Truncated       bool         `json:"truncated"`
}

// NewDeep builds a deep report from a matching.
func NewDeep(origin, target *model.SourceTree, rep *model.MatchingReport) *Deep {
	return &Deep{
		Mode:            "deep",
		Origin:          side(origin),
		Target:          side(target),
		Matched:         pairs(rep.Matched),
		UnmatchedOrigin: nonNil(rep.UnmatchedOrigin),
		UnmatchedTarget: nonNil(rep.UnmatchedTarget),
		Diagnostics:     append(Diagnostics(origin, "origin"), Diagnostics(target, "target")...),
		Truncated:       rep.Truncated || origin.Truncated || target.Truncated,
	}
}

// Document implements Report.
func (r *Deep) Document() *toon.Document {
	d := &toon.Document{}
	d.Field("mode", r.Mode)
	sideFields(d, "origin", r.Origin)
	sideFields(d, "target", r.Target)
	pairTable(d, "matched", r.Matched)
	pathTable(d, "unmatched_origin", r.UnmatchedOrigin)
	pathTable(d, "unmatched_target", r.UnmatchedTarget)
	diagnosticTable(d, r.Diagnostics, true)
	d.Bool("truncated", r.Truncated)
	return d
}

// Missing is the output of the missing mode.
type Missing struct {
	Mode        string       `json:"mode"`
	Origin      Side         `json:"origin"`
	Target      Side         `json:"target"`
	Missing     []string     `json:"missing"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	Truncated   bool         `json:"truncated"`
}

// NewMissing builds a missing report from a matching.
func NewMissing(origin, target *model.SourceTree, rep *model.MatchingReport) *Missing {
	return &Missing{
		Mode:        "missing",
		Origin:      side(origin),
		Target:      side(target),
		Missing:     nonNil(rep.UnmatchedOrigin),
		Diagnostics: append(Diagnostics(origin, "origin"), Diagnostics(target, "target")...),
		Truncated:   rep.Truncated || origin.Truncated || target.Truncated,
	}
}

// Document implements Report.
func (r *Missing) Document() *toon.Document {
	d := &toon.Document{}
	d.Field("mode", r.Mode)
	sideFields(d, "origin", r.Origin)
	sideFields(d, "target", r.Target)
	pathTable(d, "missing", r.Missing)
	diagnosticTable(d, r.Diagnostics, true)
	d.Bool("truncated", r.Truncated)
	return d
}

// nonNil keeps empty lists as [] in JSON.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
