package ast

import (
	"fmt"
	"strings"
)

// String renders the tree as an S-expression, e.g.
// (module (function/function:add (statement/return))).
func (t *Tree) String() string {
	if t.Empty() {
		return "()"
	}
	var b strings.Builder
	t.format(&b, t.Root)
	return b.String()
}

func (t *Tree) format(b *strings.Builder, id NodeID) {
	n := &t.Nodes[id]
	b.WriteByte('(')
	b.WriteString(n.Kind.String())
	if n.Role != "" {
		b.WriteByte('/')
		b.WriteString(n.Role)
	}
	if n.Name != "" && !strings.ContainsAny(n.Name, " ()\t\n") {
		b.WriteByte(':')
		b.WriteString(n.Name)
	}
	for _, c := range n.Children {
		b.WriteByte(' ')
		t.format(b, c)
	}
	b.WriteByte(')')
}

// Parse builds a tree from the S-expression form produced by String. Node
// spans are synthesized: the n-th node in preorder starts on line n.
func Parse(src string) (*Tree, error) {
	p := &sexpParser{toks: tokenize(src), b: NewBuilder()}
	if len(p.toks) == 0 || (len(p.toks) == 2 && p.toks[0] == "(" && p.toks[1] == ")") {
		return &Tree{Root: None}, nil
	}
	root, err := p.node()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("trailing input at token %d", p.pos)
	}
	return p.b.Finish(root), nil
}

// MustParse is like Parse but panics on error. Intended for tests.
func MustParse(src string) *Tree {
	t, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return t
}

type sexpParser struct {
	toks []string
	pos  int
	line int
	b    *Builder
}

func (p *sexpParser) node() (NodeID, error) {
	if p.pos >= len(p.toks) || p.toks[p.pos] != "(" {
		return None, fmt.Errorf("expected ( at token %d", p.pos)
	}
	p.pos++
	if p.pos >= len(p.toks) {
		return None, fmt.Errorf("unexpected end of input")
	}
	head := p.toks[p.pos]
	p.pos++

	p.line++
	line := p.line

	label, name, _ := strings.Cut(head, ":")
	kindName, role, _ := strings.Cut(label, "/")
	kind, ok := ParseKind(kindName)
	if !ok {
		return None, fmt.Errorf("unknown kind %q", kindName)
	}

	var children []NodeID
	for {
		if p.pos >= len(p.toks) {
			return None, fmt.Errorf("unterminated node %q", head)
		}
		if p.toks[p.pos] == ")" {
			p.pos++
			break
		}
		c, err := p.node()
		if err != nil {
			return None, err
		}
		children = append(children, c)
	}
	span := Span{Start: Point{Line: line, Column: 1}, End: Point{Line: p.line, Column: 1}}
	return p.b.Add(kind, role, name, span, children)
}

func tokenize(src string) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range src {
		switch {
		case r == '(' || r == ')':
			flush()
			toks = append(toks, string(r))
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}
