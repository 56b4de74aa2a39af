package pathfilter

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"

	kerrors "github.com/tynkerbase/tynkerbase/internal/errors"
)

// writeTree creates files (slash-separated, relative to root) with their
// names as content.
func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, name := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(full, []byte(name), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

func collect(t *testing.T, root string, rules *RuleSet) []string {
	t.Helper()
	var got []string
	err := Walk(root, rules, func(rel string, _ fs.DirEntry) error {
		got = append(got, rel)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	return got
}

func TestWalkExample(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"app.log",
		"build/keep.txt",
		"build/out.bin",
		"build/tmp/x",
		"src/main.go",
		"src/util/strings.go",
	)

	got := collect(t, root, MustRuleSet("build/", "*.log", "!build/keep.txt"))
	want := []string{"build/keep.txt", "src/main.go", "src/util/strings.go"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestWalkDeterministicOrder(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "z.txt", "a.txt", "m/b.txt", "m/a.txt", "b/c.txt")

	got := collect(t, root, nil)
	want := []string{"a.txt", "z.txt", "b/c.txt", "m/a.txt", "m/b.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestWalkSkipsExcludedDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "keep.txt", "node_modules/pkg/index.js")

	unreadable := filepath.Join(root, "node_modules", "pkg")
	if runtime.GOOS != "windows" && os.Getuid() != 0 {
		if err := os.Chmod(unreadable, 0000); err != nil {
			t.Fatalf("failed to chmod: %v", err)
		}
		t.Cleanup(func() { _ = os.Chmod(unreadable, 0755) })
	}

	// node_modules is never read, so its permissions do not matter.
	got := collect(t, root, MustRuleSet("node_modules/"))
	if !reflect.DeepEqual(got, []string{"keep.txt"}) {
		t.Errorf("expected only keep.txt, got %v", got)
	}
}

func TestWalkSkipsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := t.TempDir()
	writeTree(t, root, "real.txt")
	if err := os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}

	got := collect(t, root, nil)
	if !reflect.DeepEqual(got, []string{"real.txt"}) {
		t.Errorf("expected only real.txt, got %v", got)
	}
}

func TestWalkErrors(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "file.txt")

	t.Run("root is a file", func(t *testing.T) {
		err := Walk(filepath.Join(root, "file.txt"), nil, func(string, fs.DirEntry) error { return nil })
		if !errors.Is(err, kerrors.ErrNotADirectory) {
			t.Errorf("expected ErrNotADirectory, got %v", err)
		}
	})

	t.Run("root missing", func(t *testing.T) {
		err := Walk(filepath.Join(root, "missing"), nil, func(string, fs.DirEntry) error { return nil })
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("expected fs.ErrNotExist, got %v", err)
		}
	})

	t.Run("callback error stops the walk", func(t *testing.T) {
		stop := errors.New("stop")
		err := Walk(root, nil, func(string, fs.DirEntry) error { return stop })
		if !errors.Is(err, stop) {
			t.Errorf("expected callback error, got %v", err)
		}
	})
}
