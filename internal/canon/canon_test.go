package canon

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	"github.com/phobologic/astdistance/internal/ast"
	"github.com/phobologic/astdistance/internal/lang"
)

func testLanguage() *lang.Language {
	return &lang.Language{
		Name: "test",
		Table: map[string]lang.Mapping{
			"file":    {Kind: ast.Module, Role: "file"},
			"fn":      {Kind: ast.Function, Role: "function"},
			"ident":   {Kind: ast.Expression, Role: "identifier"},
			"block":   {Kind: ast.Statement, Role: "block"},
			"ret":     {Kind: ast.Statement, Role: "return"},
			"let":     {Kind: ast.Declaration, Role: "const"},
			"jump":    {Kind: ast.Statement, Role: "jump"},
			"num":     {Kind: ast.Literal, Role: "number"},
			"comment": {Kind: ast.Comment, Role: "line"},
		},
		ByParent: map[string]map[string]lang.Mapping{
			"let": {"block": {Kind: ast.Statement, Role: "let"}},
		},
		RoleByToken: map[string]map[string]string{
			"jump": {"break": "break", "return": "return"},
		},
		Transparent: map[string]struct{}{"stmts": {}},
		Ignore:      map[string]struct{}{"attr": {}},
		NameTypes:   map[string]struct{}{"ident": {}},
	}
}

func at(line int) ast.Point { return ast.Point{Line: line, Column: 1} }

func leaf(kind, text string, line int) *lang.Synthetic {
	return &lang.Synthetic{Kind: kind, Content: text, From: at(line), To: ast.Point{Line: line, Column: 1 + len(text)}}
}

func node(kind string, line int, kids ...*lang.Synthetic) *lang.Synthetic {
	return &lang.Synthetic{Kind: kind, From: at(line), To: at(line), Kids: kids}
}

func TestCanonicalizeMapsTable(t *testing.T) {
	t.Parallel()

	root := node("file", 1,
		node("attr", 1, leaf("ident", "inline", 1)),
		node("fn", 2,
			leaf("ident", "add", 2),
			&lang.Synthetic{Kind: "{", Anon: true, Content: "{"},
			node("block", 2,
				node("stmts", 3,
					node("ret", 3, leaf("num", "1", 3)),
				),
			),
		),
	)

	tree, err := Canonicalize(root, testLanguage(), Options{})
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	want := "(module/file (function/function:add (expression/identifier:add) (statement/block (statement/return (literal/number:1)))))"
	if diff := cmp.Diff(want, tree.String()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestCanonicalizeByParentAndRoleByToken(t *testing.T) {
	t.Parallel()

	brk := node("jump", 4, &lang.Synthetic{Kind: "break", Anon: true, Content: "break"})
	root := node("file", 1,
		node("let", 1, leaf("ident", "top", 1)),
		node("block", 2,
			node("let", 3, leaf("ident", "x", 3)),
			brk,
		),
	)

	tree, err := Canonicalize(root, testLanguage(), Options{})
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	want := "(module/file (declaration/const:top (expression/identifier:top)) (statement/block (statement/let (expression/identifier:x)) (statement/break)))"
	if got := tree.String(); got != want {
		t.Errorf("tree = %s\nwant   %s", got, want)
	}
}

func TestCanonicalizeUnmapped(t *testing.T) {
	t.Parallel()

	t.Run("container becomes opaque", func(t *testing.T) {
		t.Parallel()
		root := node("file", 1, node("macro_rules", 1, leaf("ident", "m", 1)))
		tree, err := Canonicalize(root, testLanguage(), Options{})
		if err != nil {
			t.Fatalf("Canonicalize: %v", err)
		}
		if tree.Count(ast.Opaque) != 1 {
			t.Errorf("opaque count = %d, want 1: %s", tree.Count(ast.Opaque), tree)
		}
	})

	t.Run("conventional leaf is classified", func(t *testing.T) {
		t.Parallel()
		root := node("file", 1, leaf("raw_string_literal", `r"x"`, 1), leaf("pub_modifier", "pub", 1))
		tree, err := Canonicalize(root, testLanguage(), Options{})
		if err != nil {
			t.Fatalf("Canonicalize: %v", err)
		}
		want := `(module/file (literal/string:r"x"))`
		if got := tree.String(); got != want {
			t.Errorf("tree = %s, want %s", got, want)
		}
	})

	t.Run("unknown leaf is a gap", func(t *testing.T) {
		t.Parallel()
		root := node("file", 1, leaf("wibble", "?", 7))
		_, err := Canonicalize(root, testLanguage(), Options{})
		var gap *MappingGapError
		if !errors.As(err, &gap) {
			t.Fatalf("err = %v, want *MappingGapError", err)
		}
		if gap.Construct != "wibble" || gap.Line != 7 || gap.Language != "test" {
			t.Errorf("gap = %+v", gap)
		}
	})
}

func TestCanonicalizeRootMustBeModule(t *testing.T) {
	t.Parallel()

	_, err := Canonicalize(node("fn", 1, leaf("ident", "f", 1)), testLanguage(), Options{})
	if err == nil {
		t.Fatal("expected error for non-module root")
	}
}

func TestCanonicalizeMarkers(t *testing.T) {
	t.Parallel()

	root := node("file", 1,
		leaf("comment", "// TODO: implement", 5),
		node("fn", 6, leaf("ident", "f", 6)),
		leaf("comment", "// FIXME(#12) - wrong bound", 12),
		&lang.Synthetic{
			Kind:    "comment",
			Content: "/*\n * nothing here\n * XXX revisit */",
			From:    ast.Point{Line: 38, Column: 5},
			To:      ast.Point{Line: 40, Column: 20},
		},
	)

	tree, err := Canonicalize(root, testLanguage(), Options{})
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	want := []ast.Marker{
		{Token: "TODO", Line: 5, Col: 4, Text: "implement"},
		{Token: "FIXME", Line: 12, Col: 4, Text: "wrong bound", Ref: "#12"},
		{Token: "XXX", Line: 40, Col: 4, Text: "revisit"},
	}
	if diff := cmp.Diff(want, tree.Markers()); diff != "" {
		t.Errorf("markers mismatch (-want +got):\n%s", diff)
	}
}

func TestCanonicalizeCustomMarkers(t *testing.T) {
	t.Parallel()

	root := node("file", 1, leaf("comment", "# NOTE keep TODO", 1))
	tree, err := Canonicalize(root, testLanguage(), Options{Markers: []string{"NOTE"}})
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	got := tree.Markers()
	if len(got) != 1 || got[0].Token != "NOTE" {
		t.Errorf("markers = %+v, want one NOTE", got)
	}
}

func TestCanonicalizePortHeader(t *testing.T) {
	t.Parallel()

	root := node("file", 1,
		leaf("comment", "// port-lint: source src/values/list.rs", 1),
		leaf("comment", "// port-lint: source other.rs", 2),
	)
	tree, err := Canonicalize(root, testLanguage(), Options{})
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	if tree.SourceRef != "src/values/list.rs" {
		t.Errorf("SourceRef = %q", tree.SourceRef)
	}
}

func TestCanonicalizeRenameInvariant(t *testing.T) {
	t.Parallel()

	build := func(name string) *lang.Synthetic {
		return node("file", 1, node("fn", 1, leaf("ident", name, 1), node("block", 1, node("ret", 1))))
	}
	a, err := Canonicalize(build("alpha"), testLanguage(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Canonicalize(build("beta"), testLanguage(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if a.Nodes[a.Root].Sig != b.Nodes[b.Root].Sig {
		t.Error("renaming changed the root signature")
	}
}

func TestCanonicalizeRealSources(t *testing.T) {
	t.Parallel()

	tests := []struct {
		lang      string
		src       string
		functions int
		name      string
		markers   int
	}{
		{"rust", "// TODO: generic\nfn add(a: i32, b: i32) -> i32 { a + b }\n", 1, "add", 1},
		{"kotlin", "fun add(a: Int, b: Int): Int {\n    return a + b\n}\n", 1, "add", 0},
		{"python", "def add(a, b):\n    # FIXME overflow\n    return a + b\n", 1, "add", 1},
		{"go", "package main\n\nfunc add(a, b int) int { return a + b }\n", 1, "add", 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.lang, func(t *testing.T) {
			t.Parallel()
			l := lang.Languages[tt.lang]
			root, release, err := l.Parse(context.Background(), l.NewParser(), []byte(tt.src))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			defer release()

			tree, err := Canonicalize(root, l, Options{})
			if err != nil {
				t.Fatalf("Canonicalize: %v", err)
			}
			if got := tree.Count(ast.Function); got != tt.functions {
				t.Errorf("functions = %d, want %d\n%s", got, tt.functions, tree)
			}
			var name string
			tree.Walk(tree.Root, func(id ast.NodeID, _ int) bool {
				if n := tree.Node(id); n.Kind == ast.Function && name == "" {
					name = n.Name
				}
				return true
			})
			if name != tt.name {
				t.Errorf("function name = %q, want %q", name, tt.name)
			}
			if got := len(tree.Markers()); got != tt.markers {
				t.Errorf("markers = %d, want %d", got, tt.markers)
			}
		})
	}
}

const kotlinStack = `package demo

class Stack(val limit: Int) {
    private val items = mutableListOf<Int>()
    var size = 0

    fun push(x: Int) {
        var i = 0
        when (x) {
            0 -> return
            else -> items.add(x)
        }
        size += 1
    }

    fun pop(): Int = TODO("pop")
}
`

func TestCanonicalizeKotlinBindings(t *testing.T) {
	t.Parallel()

	l := lang.Languages["kotlin"]
	root, release, err := l.Parse(context.Background(), l.NewParser(), []byte(kotlinStack))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer release()

	tree, err := Canonicalize(root, l, Options{})
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}

	found := map[string]bool{}
	tree.Walk(tree.Root, func(id ast.NodeID, _ int) bool {
		n := tree.Node(id)
		found[n.Kind.String()+"/"+n.Role+":"+n.Name] = true
		return true
	})
	for _, want := range []string{"type/class:Stack", "field/field:limit", "function/function:push", "function/function:pop"} {
		if !found[want] {
			t.Errorf("missing %s in\n%s", want, tree)
		}
	}
	if got := len(tree.Markers()); got != 1 {
		t.Errorf("markers = %d, want 1", got)
	}
}

func TestShortTextKeepsRunes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want int
	}{
		{"ascii", strings.Repeat("a", maxNameLen+10), maxNameLen},
		{"short", "größe", len("größe")},
		{"split rune", strings.Repeat("a", maxNameLen-1) + "ö", maxNameLen - 1},
		{"cjk", strings.Repeat("列", 30), 21 * len("列")},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := shortText(tt.in)
			if !utf8.ValidString(got) {
				t.Fatalf("shortText(%q) = %q, not valid UTF-8", tt.in, got)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}
