// Package lang provides the front-end registry: tree-sitter grammars, file
// extensions, and the tables that map each grammar's node types onto the
// canonical vocabulary.
package lang

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/astdistance/internal/ast"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// ErrUnknownLanguage is returned by Lookup for unregistered tags.
var ErrUnknownLanguage = errors.New("unknown language")

// Mapping assigns a canonical kind and role to a native node type.
type Mapping struct {
	Kind ast.Kind
	Role string
}

// Language holds tree-sitter configuration and the canonical mapping for a
// supported language.
type Language struct {
	Name       string
	Aliases    []string
	Extensions []string
	lang       *sitter.Language

	// Table maps named native node types to canonical kinds.
	Table map[string]Mapping

	// ByParent overrides Table when the native parent type matches:
	// ByParent[child][parent].
	ByParent map[string]map[string]Mapping

	// RoleByToken refines a mapped role from the node's anonymous tokens:
	// RoleByToken[type][token prefix] = role.
	RoleByToken map[string]map[string]string

	// Transparent types are replaced by their children.
	Transparent map[string]struct{}

	// Ignore types are dropped together with their subtree.
	Ignore map[string]struct{}

	// NameTypes are child types whose text names the enclosing declaration.
	NameTypes map[string]struct{}

	// MarkerCall reports whether a mapped node is a call that marks
	// unresolved work (e.g. todo!() in Rust), returning the marker token.
	MarkerCall func(n Native) (string, bool)
}

// GetLanguage returns the tree-sitter Language pointer.
func (l *Language) GetLanguage() *sitter.Language {
	return l.lang
}

// NewParser creates a fresh tree-sitter parser for this language.
// Each goroutine must use its own parser (not thread-safe).
func (l *Language) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(l.lang)
	return p
}

// SyntaxError reports the first ERROR or MISSING node of a parse.
type SyntaxError struct {
	Line      int
	Column    int
	Construct string
}

func (e *SyntaxError) Error() string {
	if e.Construct == "" {
		return fmt.Sprintf("syntax error at %d:%d", e.Line, e.Column)
	}
	return fmt.Sprintf("syntax error at %d:%d near %s", e.Line, e.Column, e.Construct)
}

// Parse parses source with parser, which must have been created by
// l.NewParser. The returned release function frees the native tree and must
// be called once the Native view is no longer used.
func (l *Language) Parse(ctx context.Context, parser *sitter.Parser, source []byte) (Native, func(), error) {
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing: %w", err)
	}
	root := tree.RootNode()
	if root.HasError() {
		serr := firstError(root, source)
		tree.Close()
		return nil, nil, serr
	}
	return &sitterNode{n: root, src: source}, tree.Close, nil
}

func firstError(n *sitter.Node, source []byte) *SyntaxError {
	if n.Type() == "ERROR" || n.IsMissing() {
		p := n.StartPoint()
		construct := n.Type()
		if n.Type() == "ERROR" {
			construct = CollapseWhitespace(Truncate(NodeText(n, source), 32))
		}
		return &SyntaxError{Line: int(p.Row) + 1, Column: int(p.Column) + 1, Construct: construct}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		if c.HasError() || c.IsMissing() {
			return firstError(c, source)
		}
	}
	p := n.StartPoint()
	return &SyntaxError{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

// Languages maps language names to their configuration.
// Populated by init() functions in per-language files.
var Languages = map[string]*Language{}

var (
	extensionMap  map[string]string
	aliasMap      map[string]string
	extensionOnce sync.Once
)

func buildMaps() {
	extensionOnce.Do(func() {
		extensionMap = make(map[string]string)
		aliasMap = make(map[string]string)
		for _, l := range Languages {
			aliasMap[l.Name] = l.Name
			for _, a := range l.Aliases {
				aliasMap[a] = l.Name
			}
			for _, ext := range l.Extensions {
				extensionMap[ext] = l.Name
			}
		}
	})
}

// ForExtension returns the language name for a file extension, or "" if unsupported.
func ForExtension(ext string) string {
	buildMaps()
	return extensionMap[ext]
}

// Lookup resolves a language tag or alias, case-insensitively.
func Lookup(tag string) (*Language, error) {
	buildMaps()
	name, ok := aliasMap[strings.ToLower(strings.TrimSpace(tag))]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownLanguage, tag, strings.Join(Names(), ", "))
	}
	return Languages[name], nil
}

// Names returns the registered language names in sorted order.
func Names() []string {
	names := make([]string, 0, len(Languages))
	for name := range Languages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NodeText returns the source text of a tree-sitter node.
func NodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// CollapseWhitespace replaces runs of whitespace with a single space and trims.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// Truncate cuts s to at most n bytes without splitting a rune.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func set(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}
