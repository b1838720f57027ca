package safeio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newFS(t *testing.T) (*SafeFS, string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "demo", "bundles"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "demo", "app_overview.json"), []byte(`{}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fs, err := NewSafeFS(dir)
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}
	return fs, dir
}

func TestReadFileUnderRoot(t *testing.T) {
	fs, _ := newFS(t)
	data, err := fs.ReadFile(filepath.Join("demo", "app_overview.json"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != `{}` {
		t.Fatalf("data = %s", data)
	}
}

func TestRejectsTraversal(t *testing.T) {
	fs, _ := newFS(t)
	for _, p := range []string{
		"../outside.txt",
		filepath.Join("demo", "..", "..", "outside.txt"),
		"/etc/hosts",
	} {
		if _, err := fs.ReadFile(p); !errors.Is(err, ErrOutsideRoot) {
			t.Fatalf("ReadFile(%q) err = %v, want ErrOutsideRoot", p, err)
		}
	}
}

func TestRejectsSymlinkEscape(t *testing.T) {
	fs, dir := newFS(t)
	outside := t.TempDir()
	if err := os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	link := filepath.Join(dir, "demo", "link.json")
	if err := os.Symlink(filepath.Join(outside, "secret.txt"), link); err != nil {
		t.Skipf("symlink unsupported: %v", err)
	}
	if _, err := fs.ReadFile(filepath.Join("demo", "link.json")); !errors.Is(err, ErrOutsideRoot) {
		t.Fatalf("symlink escape err = %v", err)
	}
}

func TestReadDir(t *testing.T) {
	fs, _ := newFS(t)
	entries, err := fs.ReadDir(".")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "demo" {
		t.Fatalf("entries = %v", entries)
	}
	if _, err := fs.ReadDir(filepath.Join("demo", "app_overview.json")); err == nil {
		t.Fatalf("ReadDir on file accepted")
	}
}

func TestStatMissing(t *testing.T) {
	fs, _ := newFS(t)
	_, err := fs.Stat(filepath.Join("demo", "nope.json"))
	if !os.IsNotExist(err) {
		t.Fatalf("missing stat err = %v", err)
	}
}
