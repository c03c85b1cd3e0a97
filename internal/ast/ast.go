// Package ast defines the canonical, language-neutral syntax tree shared by
// every front end.
package ast

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Kind is a node category from the canonical vocabulary.
type Kind uint8

const (
	Invalid Kind = iota
	Module
	Declaration
	Function
	Type
	Field
	Statement
	Expression
	Literal
	Comment
	Opaque
	numKinds
)

var kindNames = [...]string{
	Invalid:     "invalid",
	Module:      "module",
	Declaration: "declaration",
	Function:    "function",
	Type:        "type",
	Field:       "field",
	Statement:   "statement",
	Expression:  "expression",
	Literal:     "literal",
	Comment:     "comment",
	Opaque:      "opaque",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k belongs to the canonical vocabulary.
func (k Kind) Valid() bool {
	return k > Invalid && k < numKinds
}

// Kinds returns every valid kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, int(numKinds)-1)
	for k := Module; k < numKinds; k++ {
		out = append(out, k)
	}
	return out
}

// ParseKind resolves a kind name as printed by Kind.String.
func ParseKind(name string) (Kind, bool) {
	for k := Module; k < numKinds; k++ {
		if kindNames[k] == name {
			return k, true
		}
	}
	return Invalid, false
}

// NodeID is a handle into Tree.Nodes.
type NodeID int32

// None marks the absence of a node.
const None NodeID = -1

// Point is a 1-based line/column position.
type Point struct {
	Line   int
	Column int
}

// Span is the source range covered by a node.
type Span struct {
	Start Point
	End   Point
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

// Signature is a structural hash of a subtree. Names and literal values do
// not contribute.
type Signature uint64

// Marker is an unresolved-work token found in a comment or marker call.
type Marker struct {
	Token string
	Line  int
	Col   int
	Text  string
	Ref   string
}

// Node is a canonical syntax node. Children always have smaller IDs than
// their parent.
type Node struct {
	Kind     Kind
	Role     string
	Name     string
	Children []NodeID
	Span     Span
	Sig      Signature
	Size     int
	Markers  []Marker
}

// Tree is an arena of nodes. The zero Tree is empty.
type Tree struct {
	Nodes []Node
	Root  NodeID

	// SourceRef is the origin path declared by a port header comment.
	SourceRef string
}

// Empty reports whether the tree has no nodes.
func (t *Tree) Empty() bool {
	return t == nil || len(t.Nodes) == 0 || t.Root == None
}

// Node returns the node for id.
func (t *Tree) Node(id NodeID) *Node {
	return &t.Nodes[id]
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	if t.Empty() {
		return 0
	}
	return t.Nodes[t.Root].Size
}

// Walk visits id and its descendants in preorder. Returning false from fn
// skips the node's children.
func (t *Tree) Walk(id NodeID, fn func(id NodeID, depth int) bool) {
	if t.Empty() || id == None {
		return
	}
	t.walk(id, 0, fn)
}

func (t *Tree) walk(id NodeID, depth int, fn func(NodeID, int) bool) {
	if !fn(id, depth) {
		return
	}
	for _, c := range t.Nodes[id].Children {
		t.walk(c, depth+1, fn)
	}
}

// Markers returns every marker in the tree in preorder.
func (t *Tree) Markers() []Marker {
	var out []Marker
	t.Walk(t.Root, func(id NodeID, _ int) bool {
		out = append(out, t.Nodes[id].Markers...)
		return true
	})
	return out
}

// Count returns the number of nodes of kind k.
func (t *Tree) Count(k Kind) int {
	n := 0
	for i := range t.Nodes {
		if t.Nodes[i].Kind == k {
			n++
		}
	}
	return n
}

// Builder appends nodes bottom-up.
type Builder struct {
	tree Tree
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{tree: Tree{Root: None}}
}

// Add appends a node whose children were already added and returns its ID.
func (b *Builder) Add(kind Kind, role, name string, span Span, children []NodeID) (NodeID, error) {
	if !kind.Valid() {
		return None, fmt.Errorf("adding %q node: invalid kind %d", role, kind)
	}
	id := NodeID(len(b.tree.Nodes))
	size := 1
	for _, c := range children {
		if c < 0 || c >= id {
			return None, fmt.Errorf("adding %s/%s node: child %d out of range", kind, role, c)
		}
		size += b.tree.Nodes[c].Size
	}
	n := Node{
		Kind:     kind,
		Role:     role,
		Name:     name,
		Children: children,
		Span:     span,
		Size:     size,
	}
	n.Sig = b.signature(&n)
	b.tree.Nodes = append(b.tree.Nodes, n)
	return id, nil
}

// Mark attaches a marker to an existing node.
func (b *Builder) Mark(id NodeID, m Marker) {
	b.tree.Nodes[id].Markers = append(b.tree.Nodes[id].Markers, m)
}

// Finish makes root the tree root and returns the tree. The builder must not
// be used afterwards.
func (b *Builder) Finish(root NodeID) *Tree {
	t := b.tree
	t.Root = root
	return &t
}

func (b *Builder) signature(n *Node) Signature {
	d := xxhash.New()
	var buf [8]byte
	buf[0] = byte(n.Kind)
	_, _ = d.Write(buf[:1])
	_, _ = d.WriteString(n.Role)
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(n.Children)))
	_, _ = d.Write(buf[:4])
	for _, c := range n.Children {
		binary.LittleEndian.PutUint64(buf[:], uint64(b.tree.Nodes[c].Sig))
		_, _ = d.Write(buf[:])
	}
	return Signature(d.Sum64())
}

// Signature recomputes the signature of a node from scratch, ignoring the
// cached value. It is used to verify trees built outside a Builder.
func (t *Tree) Signature(id NodeID) Signature {
	b := &Builder{tree: Tree{Nodes: make([]Node, len(t.Nodes))}}
	copy(b.tree.Nodes, t.Nodes)
	var rec func(NodeID) Signature
	rec = func(id NodeID) Signature {
		for _, c := range b.tree.Nodes[id].Children {
			b.tree.Nodes[c].Sig = rec(c)
		}
		return b.signature(&b.tree.Nodes[id])
	}
	return rec(id)
}
