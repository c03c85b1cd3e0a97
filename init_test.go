package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/phobologic/astdistance/internal/config"
)

// TestGenerateConfigLoads verifies that the generated file parses back into
// the defaults.
func TestGenerateConfigLoads(t *testing.T) {
	t.Parallel()
	content, err := generateConfig()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(content, "# astdistance configuration.") {
		t.Errorf("missing header:\n%s", content)
	}
	path := filepath.Join(t.TempDir(), config.DefaultFile)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(config.Default(), cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("generated config differs from defaults (-want +got):\n%s", diff)
	}
}

// TestInitCreatesFile verifies that init writes the file when it does not
// exist.
func TestInitCreatesFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "cfg.yaml")

	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"init", path}, &stdout, &stderr); code != exitOK {
		t.Fatalf("exit %d\nstderr: %s", code, stderr.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("file not created: %v", err)
	}
	if !strings.Contains(string(data), "function-divergence:") {
		t.Errorf("rules missing from:\n%s", data)
	}
	if !strings.Contains(stderr.String(), "wrote default configuration") {
		t.Errorf("confirmation missing: %q", stderr.String())
	}
}

// TestInitRefusesOverwrite verifies that an existing file is kept unless
// --force is given.
func TestInitRefusesOverwrite(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("workers: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"init", path}, &stdout, &stderr); code != exitError {
		t.Fatalf("exit %d, want %d", code, exitError)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "workers: 2\n" {
		t.Errorf("file was modified:\n%s", data)
	}

	stderr.Reset()
	if code := run(context.Background(), []string{"init", "--force", path}, &stdout, &stderr); code != exitOK {
		t.Fatalf("--force: exit %d\nstderr: %s", code, stderr.String())
	}
	data, _ = os.ReadFile(path)
	if !strings.Contains(string(data), "match:") {
		t.Errorf("file not overwritten:\n%s", data)
	}
}

// TestInitDryRun verifies that --dry-run prints without writing.
func TestInitDryRun(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "cfg.yaml")

	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"init", "--dry-run", path}, &stdout, &stderr); code != exitOK {
		t.Fatalf("exit %d\nstderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "threshold: 0.45") {
		t.Errorf("dry run output:\n%s", stdout.String())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("dry run should not create the file")
	}
}
