package parse

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/phobologic/astdistance/internal/ast"
	"github.com/phobologic/astdistance/internal/discover"
	"github.com/phobologic/astdistance/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.py", "def a(x):\n    return x\n")
	writeFile(t, dir, "pkg/b.py", "# TODO: finish\ndef b():\n    pass\n")
	writeFile(t, dir, "broken.py", "def broken(:\n    pass\n")
	writeFile(t, dir, "notes.txt", "ignored")

	tree, err := Load(context.Background(), dir, Options{Language: "python", Workers: 2})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tree.Truncated {
		t.Error("tree unexpectedly truncated")
	}

	var paths []string
	for _, f := range tree.Files {
		paths = append(paths, f.Path)
	}
	if diff := cmp.Diff([]string{"a.py", "broken.py", "pkg/b.py"}, paths); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}

	if got := len(tree.Loaded()); got != 2 {
		t.Errorf("loaded = %d, want 2", got)
	}
	want := []model.DiagnosticKind{model.DiagSyntax}
	var kinds []model.DiagnosticKind
	for _, d := range tree.Diagnostics {
		kinds = append(kinds, d.Kind)
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}

	b := tree.File("pkg/b.py")
	if b == nil || !b.OK() {
		t.Fatalf("pkg/b.py not loaded: %+v", b)
	}
	if b.Tree.Count(ast.Function) != 1 {
		t.Errorf("pkg/b.py functions = %d", b.Tree.Count(ast.Function))
	}
	if len(b.Tree.Markers()) != 1 {
		t.Errorf("pkg/b.py markers = %v", b.Tree.Markers())
	}
}

func TestLoadSkipsLargeFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "small.py", "x = 1\n")
	writeFile(t, dir, "large.py", "x = 1\n# padding padding padding padding\n")

	tree, err := Load(context.Background(), dir, Options{MaxFileSize: 10})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	large := tree.File("large.py")
	if large == nil || large.Diag == nil || large.Diag.Kind != model.DiagSkipped {
		t.Fatalf("large.py = %+v, want skipped", large)
	}
	if tree.File("small.py").Tree == nil {
		t.Error("small.py not loaded")
	}
}

func TestLoadWalkErrorBecomesDiagnostic(t *testing.T) {
	t.Parallel()

	l := &loader{maxSize: DefaultMaxFileSize}
	f, err := l.load(context.Background(), discover.FileEntry{Path: "src/locked", Err: fs.ErrPermission})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := &model.Diagnostic{Path: "src/locked", Kind: model.DiagIO, Message: fs.ErrPermission.Error()}
	if diff := cmp.Diff(want, f.Diag); diff != "" {
		t.Errorf("diagnostic mismatch (-want +got):\n%s", diff)
	}
	if f.OK() {
		t.Error("unreadable entry reported as loaded")
	}
}

func TestLoadCustomMarkers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "m.py", "# PORT: later\nx = 1\n")

	tree, err := Load(context.Background(), dir, Options{Markers: []string{"PORT"}})
	if err != nil {
		t.Fatal(err)
	}
	if got := tree.File("m.py").Tree.Markers(); len(got) != 1 || got[0].Token != "PORT" {
		t.Errorf("markers = %+v", got)
	}
}

func TestLoadCancelled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.py", "x = 1\n")
	writeFile(t, dir, "b.py", "y = 2\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tree, err := Load(ctx, dir, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !tree.Truncated {
		t.Error("cancelled load not marked truncated")
	}
	if len(tree.Files) != 0 {
		t.Errorf("files = %d, want 0", len(tree.Files))
	}
}

func TestLoadRootErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "file.py", "x = 1\n")

	_, err := Load(context.Background(), filepath.Join(dir, "file.py"), Options{})
	if !errors.Is(err, ErrNotDirectory) {
		t.Errorf("file root err = %v, want ErrNotDirectory", err)
	}
	if _, err := Load(context.Background(), filepath.Join(dir, "missing"), Options{}); err == nil {
		t.Error("missing root accepted")
	}
}

func TestLoadDeterministic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"c.py", "a.py", "b/d.py", "b/e.py"} {
		writeFile(t, dir, name, "def f(a):\n    return a\n")
	}

	first, err := Load(context.Background(), dir, Options{Workers: 4})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Load(context.Background(), dir, Options{Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Files) != len(second.Files) {
		t.Fatalf("file counts differ: %d vs %d", len(first.Files), len(second.Files))
	}
	for i := range first.Files {
		a, b := first.Files[i], second.Files[i]
		if a.Path != b.Path || a.Tree.String() != b.Tree.String() {
			t.Errorf("file %d differs: %s vs %s", i, a.Path, b.Path)
		}
	}
}
