package dirfd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenAndOpenAt(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "child"), 0755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	h, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer h.Close()

	child, err := OpenAt(h, "child")
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}
	defer child.Close()

	if child.Fd() < 0 {
		t.Errorf("child.Fd() = %d, want non-negative", child.Fd())
	}
}

func TestOpen_NotADirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "f")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Open(file); err == nil {
		t.Fatalf("Open on a regular file succeeded, want error")
	}
}

func TestOpen_RejectsInteriorNUL(t *testing.T) {
	if _, err := Open("foo\x00bar"); err == nil {
		t.Fatalf("Open with interior NUL succeeded, want error")
	}
}

func TestOpen_NonExistent(t *testing.T) {
	if _, err := Open("/nonexistent/definitely/not/here"); err == nil {
		t.Fatalf("Open on a nonexistent path succeeded, want error")
	}
}
