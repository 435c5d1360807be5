package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/HendryAvila/feature-replicator/internal/model"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func relPaths(files []model.FileRef) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.RelativePath)
	}
	return out
}

func TestWalk_FiltersExtensionsAndIgnoredDirs(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "src/HomeController.cs", "class HomeController {}")
	writeFile(t, root, "src/Upper.CS", "class Upper {}")
	writeFile(t, root, "src/readme.md", "# docs")
	writeFile(t, root, "node_modules/pkg/index.cs", "x")
	writeFile(t, root, ".git/objects/a.cs", "x")
	writeFile(t, root, "vendor/lib/b.cs", "x")
	writeFile(t, root, "bin/Debug/c.cs", "x")

	files, err := Walk(context.Background(), root, Options{Extensions: []string{".cs"}})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	got := relPaths(files)
	want := []string{"src/HomeController.cs", "src/Upper.CS"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Walk = %v, want %v", got, want)
	}
	for _, f := range files {
		if !filepath.IsAbs(f.FullPath) && !strings.HasPrefix(f.FullPath, root) {
			t.Errorf("FullPath %q not under root", f.FullPath)
		}
	}
}

func TestWalk_MaxFilesCap(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	for i := 0; i < 25; i++ {
		writeFile(t, root, fmt.Sprintf("d%d/f%02d.py", i%3, i), "pass")
	}

	files, err := Walk(context.Background(), root, Options{Extensions: []string{"py"}, MaxFiles: 10})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(files) != 10 {
		t.Errorf("len = %d, want 10", len(files))
	}
}

func TestWalk_MaxDepth(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "a/top.js", "x")
	writeFile(t, root, "a/b/mid.js", "x")
	writeFile(t, root, "a/b/c/deep.js", "x")

	files, err := Walk(context.Background(), root, Options{Extensions: []string{".js"}, MaxDepth: 2})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	got := relPaths(files)
	want := []string{"a/b/mid.js", "a/top.js"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Walk = %v, want %v", got, want)
	}
}

func TestWalk_Deterministic(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	for _, rel := range []string{"z/a.php", "a/z.php", "m/m.php", "a/a.php"} {
		writeFile(t, root, rel, "<?php")
	}
	opts := Options{Extensions: []string{".php"}}
	first, err := Walk(context.Background(), root, opts)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	second, err := Walk(context.Background(), root, opts)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("walks differ: %v vs %v", relPaths(first), relPaths(second))
	}
	if got := relPaths(first); got[0] != "a/a.php" || got[3] != "z/a.php" {
		t.Errorf("order = %v", got)
	}
}

func TestWalk_Gitignore(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "generated\n*.min.js\n")
	writeFile(t, root, "app.js", "x")
	writeFile(t, root, "app.min.js", "x")
	writeFile(t, root, "generated/out.js", "x")

	files, err := Walk(context.Background(), root, Options{Extensions: []string{".js"}, RespectGitignore: true})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if got := relPaths(files); !reflect.DeepEqual(got, []string{"app.js"}) {
		t.Errorf("Walk = %v", got)
	}

	files, err = Walk(context.Background(), root, Options{Extensions: []string{".js"}})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(files) != 3 {
		t.Errorf("without gitignore got %v", relPaths(files))
	}
}

func TestWalk_CancelledContext(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "a.cs", "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Walk(ctx, root, Options{Extensions: []string{".cs"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestWalk_MissingRoot(t *testing.T) {
	t.Parallel()
	_, err := Walk(context.Background(), filepath.Join(t.TempDir(), "missing"), Options{Extensions: []string{".cs"}})
	if err == nil {
		t.Error("missing root should fail")
	}
}

func TestDecodeSource_Legacy(t *testing.T) {
	t.Parallel()
	if got := DecodeSource([]byte("caf\xe9")); got != "café" {
		t.Errorf("DecodeSource = %q, want café", got)
	}
	if got := DecodeSource([]byte("plain ñ")); got != "plain ñ" {
		t.Errorf("DecodeSource utf8 = %q", got)
	}
}

func TestReadSource_Directory(t *testing.T) {
	t.Parallel()
	if _, err := ReadSource(t.TempDir()); err == nil {
		t.Error("reading a directory should fail")
	}
}
