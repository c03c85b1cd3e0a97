package lang

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/astdistance/internal/ast"
)

// Native is a read-only view of a front end's syntax node. The canonicalizer
// is the only consumer of native shapes.
type Native interface {
	Type() string
	Named() bool
	Children() []Native
	Start() ast.Point
	End() ast.Point
	Text() string
}

type sitterNode struct {
	n   *sitter.Node
	src []byte
}

func (s *sitterNode) Type() string { return s.n.Type() }
func (s *sitterNode) Named() bool  { return s.n.IsNamed() }
func (s *sitterNode) Text() string { return NodeText(s.n, s.src) }

func (s *sitterNode) Start() ast.Point {
	p := s.n.StartPoint()
	return ast.Point{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

func (s *sitterNode) End() ast.Point {
	p := s.n.EndPoint()
	return ast.Point{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

func (s *sitterNode) Children() []Native {
	count := int(s.n.ChildCount())
	out := make([]Native, 0, count)
	for i := 0; i < count; i++ {
		c := s.n.Child(i)
		if c == nil {
			continue
		}
		out = append(out, &sitterNode{n: c, src: s.src})
	}
	return out
}

// Synthetic is an in-memory Native used to feed hand-built trees to the
// canonicalizer.
type Synthetic struct {
	Kind     string
	Anon     bool
	Content  string
	From, To ast.Point
	Kids     []*Synthetic
}

func (s *Synthetic) Type() string     { return s.Kind }
func (s *Synthetic) Named() bool      { return !s.Anon }
func (s *Synthetic) Text() string     { return s.Content }
func (s *Synthetic) Start() ast.Point { return s.From }
func (s *Synthetic) End() ast.Point   { return s.To }

func (s *Synthetic) Children() []Native {
	out := make([]Native, len(s.Kids))
	for i, k := range s.Kids {
		out[i] = k
	}
	return out
}
