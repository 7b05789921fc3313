package fileops

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestStorageHogs(t *testing.T) {
	dir := t.TempDir()
	ops := New()

	writeFile(t, filepath.Join(dir, "ten"), strings.Repeat("x", 10))
	writeFile(t, filepath.Join(dir, "fifty"), strings.Repeat("x", 50))
	writeFile(t, filepath.Join(dir, "five"), strings.Repeat("x", 5))
	writeFile(t, filepath.Join(dir, "twenty"), strings.Repeat("x", 20))

	hogs, err := ops.StorageHogs(context.Background(), dir, 3)
	if err != nil {
		t.Fatalf("StorageHogs: %v", err)
	}

	wantSizes := []int64{50, 20, 10}
	if len(hogs) != len(wantSizes) {
		t.Fatalf("got %d entries, want %d", len(hogs), len(wantSizes))
	}
	for i, want := range wantSizes {
		if hogs[i].Size != want {
			t.Errorf("hogs[%d].Size = %d, want %d", i, hogs[i].Size, want)
		}
	}
}

func TestStorageHogsDirectoriesCountTreeSize(t *testing.T) {
	dir := t.TempDir()
	ops := New()

	// A directory whose contents outweigh a larger single file must
	// rank above it.
	writeFile(t, filepath.Join(dir, "pile", "a"), strings.Repeat("x", 60))
	writeFile(t, filepath.Join(dir, "pile", "deep", "b"), strings.Repeat("x", 60))
	writeFile(t, filepath.Join(dir, "single"), strings.Repeat("x", 100))

	hogs, err := ops.StorageHogs(context.Background(), dir, 10)
	if err != nil {
		t.Fatalf("StorageHogs: %v", err)
	}
	if len(hogs) != 2 {
		t.Fatalf("got %d entries, want 2", len(hogs))
	}
	if !hogs[0].IsDir || hogs[0].Size != 120 {
		t.Errorf("hogs[0] = %+v, want pile dir with size 120", hogs[0])
	}
	if hogs[1].Size != 100 {
		t.Errorf("hogs[1].Size = %d, want 100", hogs[1].Size)
	}
}

func TestStorageHogsTieBreaksLexically(t *testing.T) {
	dir := t.TempDir()
	ops := New()

	writeFile(t, filepath.Join(dir, "bbb"), "xx")
	writeFile(t, filepath.Join(dir, "aaa"), "xx")

	hogs, err := ops.StorageHogs(context.Background(), dir, 10)
	if err != nil {
		t.Fatalf("StorageHogs: %v", err)
	}
	if filepath.Base(hogs[0].Path) != "aaa" {
		t.Errorf("tie order = [%s, %s], want lexical", hogs[0].Path, hogs[1].Path)
	}
}

func TestStorageHogsNotADirectory(t *testing.T) {
	dir := t.TempDir()
	ops := New()
	file := filepath.Join(dir, "f")
	writeFile(t, file, "x")

	if _, err := ops.StorageHogs(context.Background(), file, 3); err == nil {
		t.Fatal("expected error for non-directory root")
	}
}
