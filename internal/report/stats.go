package report

import (
	"github.com/phobologic/astdistance/internal/model"
	"github.com/phobologic/astdistance/internal/stats"
	"github.com/phobologic/astdistance/internal/toon"
)

// Stats is the output of the stats mode.
type Stats struct {
	Mode        string        `json:"mode"`
	Target      string        `json:"target"`
	Language    string        `json:"language,omitempty"`
	Origin      string        `json:"origin,omitempty"`
	Summary     stats.Summary `json:"summary"`
	Worst       []Pair        `json:"worst,omitempty"`
	Diagnostics []Diagnostic  `json:"diagnostics"`
}

// NewStats builds a stats report. origin may be nil; worst lists the most
// divergent pairs when a matching was computed.
func NewStats(target, origin *model.SourceTree, s stats.Summary, worst []model.Match) *Stats {
	r := &Stats{
		Mode:        "stats",
		Target:      target.Root,
		Language:    target.Language,
		Summary:     s,
		Diagnostics: Diagnostics(target, ""),
	}
	if origin != nil {
		r.Origin = origin.Root
		r.Diagnostics = append(Diagnostics(origin, "origin"), Diagnostics(target, "target")...)
		r.Worst = pairs(worst)
	}
	return r
}

// Document implements Report.
func (r *Stats) Document() *toon.Document {
	s := r.Summary
	d := &toon.Document{}
	d.Field("mode", r.Mode).Field("target", r.Target)
	if r.Language != "" {
		d.Field("language", r.Language)
	}
	d.Int("discovered", s.Discovered).
		Int("files", s.Files).
		Int("syntax_errors", s.SyntaxErrors).
		Int("mapping_gaps", s.MappingGaps).
		Int("io_errors", s.IOErrors).
		Int("skipped", s.Skipped).
		Int("nodes", s.Nodes).
		Int("markers", s.Markers)

	rows := make([][]string, len(s.ByLanguage))
	for i, l := range s.ByLanguage {
		rows[i] = []string{l.Language, itoa(l.Files), itoa(l.Nodes)}
	}
	d.Table("by_language", []string{"language", "files", "nodes"}, rows)
	rows = make([][]string, len(s.ByKind))
	for i, k := range s.ByKind {
		rows[i] = []string{k.Kind, itoa(k.Count)}
	}
	d.Table("by_kind", []string{"kind", "count"}, rows)

	if p := s.Porting; p != nil {
		d.Field("origin", r.Origin).
			Int("origin_files", p.OriginFiles).
			Int("matched", p.Matched).
			Int("scored", p.Scored).
			Float("avg_distance", p.AvgDistance).
			Float("max_distance", p.MaxDistance).
			Float("coverage", p.Coverage).
			Int("unmatched_origin", p.UnmatchedOrigin).
			Int("unmatched_target", p.UnmatchedTarget)
		pairTable(d, "worst", r.Worst)
	}
	diagnosticTable(d, r.Diagnostics, r.Origin != "")
	d.Bool("truncated", s.Truncated)
	return d
}
