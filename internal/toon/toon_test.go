package toon

import (
	"strings"
	"testing"
)

func TestEncodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", `""`},
		{"rule id", "function-divergence", "function-divergence"},
		{"leading space", " off by one", `" off by one"`},
		{"trailing space", "remove ", `"remove "`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"true keyword", "true", `"true"`},
		{"capitalized keyword", "False", `"False"`},
		{"null keyword", "null", `"null"`},
		{"line number", "42", "42"},
		{"negative integer", "-1", "-1"},
		{"score", "0.4500", "0.4500"},
		{"marker ref", "#7", "#7"},
		{"comma", "a,b", `"a,b"`},
		{"diagnostic position", "syntax error at 3:1", `"syntax error at 3:1"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"bracket", "a[b", `"a[b"`},
		{"brace", "a{b", `"a{b"`},
		{"dash prefix", "-foo", `"-foo"`},
		{"slash path", "src/commonMain/kotlin/Eval.kt", "src/commonMain/kotlin/Eval.kt"},
		{"message with parens", "function eval diverges (score 0.61 > 0.50)", "function eval diverges (score 0.61 > 0.50)"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := encodeValue(tt.in)
			if got != tt.want {
				t.Errorf("encodeValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDocument(t *testing.T) {
	t.Parallel()

	var d Document
	d.Field("mode", "deep").
		Field("origin", "rust").
		Int("files", 3).
		Float("coverage", 0.75).
		Bool("truncated", false).
		Table("matched", []string{"origin", "target", "score", "method"}, [][]string{
			{"src/lexer.rs", "src/Tokenizer.kt", Float(0.125), "structure"},
			{"src/parser.rs", "src/Parser.kt", "", "path"},
		})

	want := []string{
		"mode: deep",
		"origin: rust",
		"files: 3",
		"coverage: 0.7500",
		"truncated: false",
		"matched[2]{origin,target,score,method}:",
		"  src/lexer.rs,src/Tokenizer.kt,0.1250,structure",
		`  src/parser.rs,src/Parser.kt,"",path`,
	}
	got := strings.Split(d.String(), "\n")
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(got), len(want), d.String())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDocumentEmptyTable(t *testing.T) {
	t.Parallel()

	var d Document
	d.Table("findings", []string{"path", "line", "rule"}, nil)
	if got := d.String(); got != "findings[0]{path,line,rule}:" {
		t.Errorf("got %q", got)
	}
}

func TestDocumentQuotesMessages(t *testing.T) {
	t.Parallel()

	var d Document
	d.Table("diagnostics", []string{"path", "kind", "message"}, [][]string{
		{"a.kt", "syntax", "syntax error at 3:1 near fun x("},
	})
	want := "diagnostics[1]{path,kind,message}:\n  a.kt,syntax,\"syntax error at 3:1 near fun x(\""
	if got := d.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
