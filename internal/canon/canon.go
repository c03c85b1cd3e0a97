// Package canon converts native front-end trees into canonical ASTs.
package canon

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/phobologic/astdistance/internal/ast"
	"github.com/phobologic/astdistance/internal/lang"
)

// DefaultMarkers are the unresolved-work tokens recognized in comments.
var DefaultMarkers = []string{"TODO", "FIXME", "XXX", "HACK"}

const maxNameLen = 64

var portHeaderRe = regexp.MustCompile(`port-lint:\s*source\s+(\S+)`)

// Options configures canonicalization.
type Options struct {
	// Markers overrides DefaultMarkers when non-empty.
	Markers []string
}

// MappingGapError reports a native construct the language table cannot
// represent.
type MappingGapError struct {
	Language  string
	Construct string
	Line      int
	Column    int
}

func (e *MappingGapError) Error() string {
	return fmt.Sprintf("mapping gap: %s construct %q at %d:%d has no canonical mapping",
		e.Language, e.Construct, e.Line, e.Column)
}

// Canonicalize maps a native tree onto the canonical vocabulary. The
// resulting tree has exactly one Module root.
func Canonicalize(root lang.Native, l *lang.Language, opts Options) (*ast.Tree, error) {
	markers := opts.Markers
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	c := &canonicalizer{
		lang:     l,
		b:        ast.NewBuilder(),
		markerRe: markerRegexp(markers),
	}

	ids, err := c.visit(root, "")
	if err != nil {
		return nil, err
	}
	if len(ids) != 1 {
		return nil, fmt.Errorf("canonicalizing %s: root %q produced %d nodes, want one module", l.Name, root.Type(), len(ids))
	}
	tree := c.b.Finish(ids[0])
	if tree.Nodes[tree.Root].Kind != ast.Module {
		return nil, fmt.Errorf("canonicalizing %s: root %q mapped to %s, want module", l.Name, root.Type(), tree.Nodes[tree.Root].Kind)
	}
	tree.SourceRef = c.sourceRef
	return tree, nil
}

type canonicalizer struct {
	lang      *lang.Language
	b         *ast.Builder
	markerRe  *regexp.Regexp
	sourceRef string
}

func (c *canonicalizer) visit(n lang.Native, parent string) ([]ast.NodeID, error) {
	if !n.Named() {
		return nil, nil
	}
	typ := n.Type()
	if _, skip := c.lang.Ignore[typ]; skip {
		return nil, nil
	}
	if _, ok := c.lang.Transparent[typ]; ok {
		return c.visitChildren(n, typ)
	}

	m, ok := c.lookup(typ, parent)
	if !ok {
		return c.visitUnmapped(n)
	}
	m.Role = c.refineRole(n, m.Role)

	span := spanOf(n)
	if m.Kind == ast.Literal || m.Kind == ast.Comment {
		id, err := c.b.Add(m.Kind, m.Role, shortText(n.Text()), span, nil)
		if err != nil {
			return nil, err
		}
		if m.Kind == ast.Comment {
			c.scanComment(id, n)
		}
		return []ast.NodeID{id}, nil
	}

	children, err := c.visitChildren(n, typ)
	if err != nil {
		return nil, err
	}
	id, err := c.b.Add(m.Kind, m.Role, c.nameOf(n, m), span, children)
	if err != nil {
		return nil, err
	}
	if c.lang.MarkerCall != nil {
		if tok, ok := c.lang.MarkerCall(n); ok {
			c.b.Mark(id, ast.Marker{
				Token: tok,
				Line:  span.Start.Line,
				Col:   span.Start.Column,
				Text:  shortText(n.Text()),
			})
		}
	}
	return []ast.NodeID{id}, nil
}

func (c *canonicalizer) visitChildren(n lang.Native, typ string) ([]ast.NodeID, error) {
	var out []ast.NodeID
	for _, child := range n.Children() {
		ids, err := c.visit(child, typ)
		if err != nil {
			return nil, err
		}
		out = append(out, ids...)
	}
	return out, nil
}

// visitUnmapped turns unknown containers into Opaque nodes and classifies
// unknown leaves by name, failing when neither applies.
func (c *canonicalizer) visitUnmapped(n lang.Native) ([]ast.NodeID, error) {
	typ := n.Type()
	if hasNamedChild(n) {
		children, err := c.visitChildren(n, typ)
		if err != nil {
			return nil, err
		}
		id, err := c.b.Add(ast.Opaque, typ, "", spanOf(n), children)
		if err != nil {
			return nil, err
		}
		return []ast.NodeID{id}, nil
	}

	m, ignore, ok := classifyLeaf(typ)
	switch {
	case ignore:
		return nil, nil
	case !ok:
		start := n.Start()
		return nil, &MappingGapError{Language: c.lang.Name, Construct: typ, Line: start.Line, Column: start.Column}
	}
	id, err := c.b.Add(m.Kind, m.Role, shortText(n.Text()), spanOf(n), nil)
	if err != nil {
		return nil, err
	}
	if m.Kind == ast.Comment {
		c.scanComment(id, n)
	}
	return []ast.NodeID{id}, nil
}

func (c *canonicalizer) lookup(typ, parent string) (lang.Mapping, bool) {
	if byParent, ok := c.lang.ByParent[typ]; ok {
		if m, ok := byParent[parent]; ok {
			return m, true
		}
	}
	m, ok := c.lang.Table[typ]
	return m, ok
}

func (c *canonicalizer) refineRole(n lang.Native, role string) string {
	prefixes, ok := c.lang.RoleByToken[n.Type()]
	if !ok {
		return role
	}
	keys := make([]string, 0, len(prefixes))
	for k := range prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, child := range n.Children() {
		if child.Named() {
			continue
		}
		tok := child.Text()
		for _, k := range keys {
			if strings.HasPrefix(tok, k) {
				return prefixes[k]
			}
		}
	}
	return role
}

// nameOf returns the surface name of a node: its own text for identifier
// leaves, otherwise the first name-bearing child.
func (c *canonicalizer) nameOf(n lang.Native, m lang.Mapping) string {
	switch {
	case m.Kind == ast.Statement:
		return ""
	case m.Role == "identifier", m.Kind == ast.Type && m.Role == "ref":
		return shortText(n.Text())
	case m.Kind == ast.Expression:
		return ""
	}
	kids := n.Children()
	if len(kids) == 0 {
		return shortText(n.Text())
	}
	for _, k := range kids {
		if _, ok := c.lang.NameTypes[k.Type()]; ok {
			return shortText(k.Text())
		}
	}
	return ""
}

func (c *canonicalizer) scanComment(id ast.NodeID, n lang.Native) {
	text := n.Text()
	start := n.Start()

	if c.sourceRef == "" {
		if m := portHeaderRe.FindStringSubmatch(text); m != nil {
			c.sourceRef = strings.TrimSuffix(m[1], "*/")
		}
	}

	for i, line := range strings.Split(text, "\n") {
		for _, loc := range c.markerRe.FindAllStringSubmatchIndex(line, -1) {
			col := loc[0] + 1
			if i == 0 {
				col = start.Column + loc[0]
			}
			mk := ast.Marker{
				Token: line[loc[2]:loc[3]],
				Line:  start.Line + i,
				Col:   col,
				Text:  markerText(line[loc[1]:]),
			}
			if loc[4] >= 0 {
				mk.Ref = strings.TrimSpace(line[loc[4]:loc[5]])
			}
			c.b.Mark(id, mk)
		}
	}
}

func markerRegexp(tokens []string) *regexp.Regexp {
	sorted := append([]string(nil), tokens...)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	quoted := make([]string, len(sorted))
	for i, tok := range sorted {
		quoted[i] = regexp.QuoteMeta(tok)
	}
	return regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\b(?:\(([^)\n]*)\))?`)
}

func markerText(rest string) string {
	rest = strings.TrimSpace(rest)
	rest = strings.TrimSuffix(rest, "*/")
	rest = strings.TrimLeft(rest, ":- ")
	return strings.TrimSpace(rest)
}

// classifyLeaf assigns a kind to a named leaf missing from the language
// table, based on conventional tree-sitter type names.
func classifyLeaf(typ string) (m lang.Mapping, ignore, ok bool) {
	switch {
	case strings.Contains(typ, "comment"):
		return lang.Mapping{Kind: ast.Comment, Role: "line"}, false, true
	case strings.HasSuffix(typ, "identifier"):
		return lang.Mapping{Kind: ast.Expression, Role: "identifier"}, false, true
	case strings.HasSuffix(typ, "modifier"), strings.HasSuffix(typ, "specifier"),
		strings.HasSuffix(typ, "keyword"), strings.HasSuffix(typ, "_marker"):
		return lang.Mapping{}, true, true
	case strings.Contains(typ, "string"), strings.Contains(typ, "char"):
		return lang.Mapping{Kind: ast.Literal, Role: "string"}, false, true
	case strings.Contains(typ, "int"), strings.Contains(typ, "float"),
		strings.Contains(typ, "number"), strings.Contains(typ, "real"):
		return lang.Mapping{Kind: ast.Literal, Role: "number"}, false, true
	case strings.Contains(typ, "bool"):
		return lang.Mapping{Kind: ast.Literal, Role: "bool"}, false, true
	case strings.HasSuffix(typ, "literal"):
		return lang.Mapping{Kind: ast.Literal, Role: "value"}, false, true
	case strings.HasSuffix(typ, "_type"):
		return lang.Mapping{Kind: ast.Type, Role: "ref"}, false, true
	}
	return lang.Mapping{}, false, false
}

func hasNamedChild(n lang.Native) bool {
	for _, c := range n.Children() {
		if c.Named() {
			return true
		}
	}
	return false
}

func spanOf(n lang.Native) ast.Span {
	return ast.Span{Start: n.Start(), End: n.End()}
}

func shortText(s string) string {
	return lang.Truncate(lang.CollapseWhitespace(s), maxNameLen)
}
