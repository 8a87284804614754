package utils_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/fitreport/internal/utils"
)

func TestSafeWriteFileReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	if err := utils.SafeWriteFile(path, []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := utils.SafeWriteFile(path, []byte("two")); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "two" {
		t.Fatalf("got %q", b)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestSafeWriteFileMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent", "out.md")
	if err := utils.SafeWriteFile(path, []byte("x")); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestIsEmptyDir(t *testing.T) {
	dir := t.TempDir()
	empty, err := utils.IsEmptyDir(dir)
	if err != nil || !empty {
		t.Fatalf("fresh dir: empty=%v err=%v", empty, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	empty, err = utils.IsEmptyDir(dir)
	if err != nil || empty {
		t.Fatalf("dir with a file: empty=%v err=%v", empty, err)
	}
}

func TestFindUpward(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "tables"), 0o755); err != nil {
		t.Fatal(err)
	}
	deep := filepath.Join(root, "replica_3", "sub")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := utils.FindUpward(deep, "tables")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got != root {
		t.Fatalf("got %s want %s", got, root)
	}
	if _, err := utils.FindUpward(deep, "no-such-marker-here"); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
