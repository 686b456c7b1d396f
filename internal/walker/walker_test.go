package walker

import (
	"os"
	"path/filepath"
	"testing"

	"omnibust/internal/pathmatch"
)

func mkProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := []string{
		"foo.js", "bar.js", "buzz.py", "baz.jpg",
		"subdir_a/a.py", "subdir_a/a.pyc", "subdir_a/b.py", "subdir_a/b.pyc",
		"subdir_b/a.js", "subdir_b/b.js",
	}
	for _, f := range files {
		path := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestWalkAll(t *testing.T) {
	root := mkProject(t)
	paths, err := Walk(Options{Roots: []string{root}})
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 10 {
		t.Errorf("expected 10 files, got %d: %v", len(paths), paths)
	}
}

func TestWalkFileFilter(t *testing.T) {
	root := mkProject(t)
	paths, err := Walk(Options{
		Roots:      []string{root},
		FileFilter: pathmatch.New("*.js"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 4 {
		t.Errorf("expected 4 js files, got %v", paths)
	}
}

func TestWalkFileExclude(t *testing.T) {
	root := mkProject(t)
	paths, err := Walk(Options{
		Roots:       []string{root},
		FileExclude: pathmatch.New("*.js"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 6 {
		t.Errorf("expected 6 files, got %v", paths)
	}
}

func TestWalkDirExclude(t *testing.T) {
	root := mkProject(t)
	paths, err := Walk(Options{
		Roots:      []string{root},
		DirExclude: pathmatch.New("subdir_a"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 6 {
		t.Errorf("expected 6 files, got %v", paths)
	}
}

func TestWalkRootUnderExcludedAncestor(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "var", "lib", "project")
	asset := filepath.Join(root, "static", "app.js")
	if err := os.MkdirAll(filepath.Dir(asset), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(asset, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	paths, err := Walk(Options{
		Roots:      []string{root},
		DirExclude: pathmatch.New(".git", "lib", "node_modules"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 {
		t.Errorf("project under a path containing 'lib' yields %d files, want 1: %v", len(paths), paths)
	}

	// The same glob still excludes a matching directory below the root.
	excluded := filepath.Join(root, "lib", "vendor.js")
	if err := os.MkdirAll(filepath.Dir(excluded), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(excluded, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	paths, err = Walk(Options{
		Roots:      []string{root},
		DirExclude: pathmatch.New(".git", "lib", "node_modules"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 {
		t.Errorf("lib below the root must stay excluded, got %v", paths)
	}
}

func TestWalkMultipleRoots(t *testing.T) {
	root := mkProject(t)
	paths, err := Walk(Options{
		Roots: []string{
			filepath.Join(root, "subdir_a"),
			filepath.Join(root, "subdir_b"),
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 6 {
		t.Errorf("expected 6 files, got %v", paths)
	}
}

func TestWalkMissingRoot(t *testing.T) {
	paths, err := Walk(Options{Roots: []string{"/no/such/dir"}})
	if err != nil {
		t.Fatalf("missing root must not fail the walk: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("got %v", paths)
	}
}

func TestWalkDeterministicOrder(t *testing.T) {
	root := mkProject(t)
	first, _ := Walk(Options{Roots: []string{root}})
	second, _ := Walk(Options{Roots: []string{root}})
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("order differs at %d: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestPartition(t *testing.T) {
	paths := []string{"a/app.js", "a/style.css", "b/logo.png", "b/page.html", "c/readme.txt"}
	static, code := Partition(paths, []string{".js", ".css", ".png"}, []string{"*.html", "*.css"})
	if len(static) != 3 {
		t.Errorf("static = %v", static)
	}
	if len(code) != 2 {
		t.Errorf("code = %v", code)
	}
	// .css is both a bustable asset and a reference-bearing source.
	found := false
	for _, c := range code {
		if c == "a/style.css" {
			found = true
		}
	}
	if !found {
		t.Error("expected style.css in code candidates")
	}
}
