package lang

import (
	"context"
	"errors"
	"testing"
)

func TestForExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext  string
		want string
	}{
		{".rs", "rust"},
		{".kt", "kotlin"},
		{".kts", "kotlin"},
		{".go", "go"},
		{".py", "python"},
		{".rb", "ruby"},
		{".js", ""},
		{"", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()
			got := ForExtension(tt.ext)
			if got != tt.want {
				t.Errorf("ForExtension(%q) = %q, want %q", tt.ext, got, tt.want)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag  string
		want string
	}{
		{"rust", "rust"},
		{"rs", "rust"},
		{"Kotlin", "kotlin"},
		{"kt", "kotlin"},
		{" golang ", "go"},
		{"py", "python"},
	}
	for _, tt := range tests {
		tt := tt
		l, err := Lookup(tt.tag)
		if err != nil {
			t.Errorf("Lookup(%q): %v", tt.tag, err)
			continue
		}
		if l.Name != tt.want {
			t.Errorf("Lookup(%q) = %q, want %q", tt.tag, l.Name, tt.want)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	t.Parallel()

	_, err := Lookup("cobol")
	if !errors.Is(err, ErrUnknownLanguage) {
		t.Fatalf("Lookup(cobol) err = %v, want ErrUnknownLanguage", err)
	}
}

func TestLanguagesRegistered(t *testing.T) {
	t.Parallel()

	names := []string{"rust", "kotlin", "go", "python", "ruby"}
	if len(Languages) != len(names) {
		t.Errorf("%d languages registered, want %d", len(Languages), len(names))
	}
	for _, name := range names {
		l, ok := Languages[name]
		if !ok {
			t.Errorf("%s not registered", name)
			continue
		}
		if l.GetLanguage() == nil {
			t.Errorf("%s grammar is nil", name)
		}
		if l.NewParser() == nil {
			t.Errorf("%s NewParser returned nil", name)
		}
	}
}

func TestTablesUseValidKinds(t *testing.T) {
	t.Parallel()

	for name, l := range Languages {
		for native, m := range l.Table {
			if !m.Kind.Valid() {
				t.Errorf("%s: %s maps to invalid kind %d", name, native, m.Kind)
			}
			if m.Role == "" {
				t.Errorf("%s: %s has empty role", name, native)
			}
		}
		for native, parents := range l.ByParent {
			for parent, m := range parents {
				if !m.Kind.Valid() {
					t.Errorf("%s: %s under %s maps to invalid kind", name, native, parent)
				}
			}
		}
		for native := range l.Transparent {
			if _, ok := l.Ignore[native]; ok {
				t.Errorf("%s: %s is both transparent and ignored", name, native)
			}
		}
	}
}

func TestParseValidSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		lang string
		src  string
		root string
	}{
		{"rust", "fn add(a: i32, b: i32) -> i32 { a + b }\n", "source_file"},
		{"kotlin", "fun add(a: Int, b: Int): Int {\n    return a + b\n}\n", "source_file"},
		{"go", "package main\n\nfunc add(a, b int) int { return a + b }\n", "source_file"},
		{"python", "def add(a, b):\n    return a + b\n", "module"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.lang, func(t *testing.T) {
			t.Parallel()
			l := Languages[tt.lang]
			root, release, err := l.Parse(context.Background(), l.NewParser(), []byte(tt.src))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			defer release()
			if root.Type() != tt.root {
				t.Errorf("root type = %q, want %q", root.Type(), tt.root)
			}
			if root.Start().Line != 1 {
				t.Errorf("root starts at line %d", root.Start().Line)
			}
			if len(root.Children()) == 0 {
				t.Error("root has no children")
			}
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	t.Parallel()

	l := Languages["python"]
	_, _, err := l.Parse(context.Background(), l.NewParser(), []byte("def broken(:\n    pass\n"))
	var serr *SyntaxError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %v, want *SyntaxError", err)
	}
	if serr.Line != 1 {
		t.Errorf("line = %d, want 1", serr.Line)
	}
}

func TestRustMarkerCall(t *testing.T) {
	t.Parallel()

	call := &Synthetic{Kind: "macro_invocation", Kids: []*Synthetic{
		{Kind: "identifier", Content: "todo"},
		{Kind: "token_tree", Content: "()"},
	}}
	tok, ok := rustMarkerCall(call)
	if !ok || tok != "todo!" {
		t.Errorf("rustMarkerCall = %q, %v", tok, ok)
	}

	other := &Synthetic{Kind: "macro_invocation", Kids: []*Synthetic{
		{Kind: "identifier", Content: "println"},
	}}
	if _, ok := rustMarkerCall(other); ok {
		t.Error("println! reported as marker")
	}
}

func TestKotlinMarkerCall(t *testing.T) {
	t.Parallel()

	call := &Synthetic{Kind: "call_expression", Kids: []*Synthetic{
		{Kind: "simple_identifier", Content: "TODO"},
		{Kind: "call_suffix", Content: `("later")`},
	}}
	tok, ok := kotlinMarkerCall(call)
	if !ok || tok != "TODO()" {
		t.Errorf("kotlinMarkerCall = %q, %v", tok, ok)
	}
}

func TestNames(t *testing.T) {
	t.Parallel()

	names := Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("Names not sorted: %v", names)
		}
	}
}
