package fileops

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestZipAndExtractRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ops := New()

	src := filepath.Join(dir, "project")
	writeFile(t, filepath.Join(src, "a.txt"), "alpha")
	writeFile(t, filepath.Join(src, "deep", "b.txt"), "beta")

	out, err := ops.ZipFolder(context.Background(), src, filepath.Join(dir, "project"))
	if err != nil {
		t.Fatalf("ZipFolder: %v", err)
	}
	if filepath.Ext(out) != ".zip" {
		t.Errorf("output = %q, want .zip appended", out)
	}

	dest := filepath.Join(dir, "restored")
	if err := ops.ExtractArchive(context.Background(), out, dest); err != nil {
		t.Fatalf("ExtractArchive: %v", err)
	}

	for rel, want := range map[string]string{
		"a.txt":                        "alpha",
		filepath.Join("deep", "b.txt"): "beta",
	} {
		data, err := os.ReadFile(filepath.Join(dest, rel))
		if err != nil {
			t.Fatalf("read %s: %v", rel, err)
		}
		if string(data) != want {
			t.Errorf("%s = %q, want %q", rel, data, want)
		}
	}
}

func TestZipFolderRefusesExistingOutput(t *testing.T) {
	dir := t.TempDir()
	ops := New()

	src := filepath.Join(dir, "folder")
	writeFile(t, filepath.Join(src, "f"), "x")
	out := filepath.Join(dir, "taken.zip")
	writeFile(t, out, "already here")

	if _, err := ops.ZipFolder(context.Background(), src, out); err == nil {
		t.Fatal("expected error for existing output")
	}
}

func TestExtractArchiveRejectsZipSlip(t *testing.T) {
	dir := t.TempDir()
	ops := New()

	// Build an archive containing an escaping entry by hand.
	evil := filepath.Join(dir, "evil.zip")
	f, err := os.Create(evil)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("../escape.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("pwned")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	dest := filepath.Join(dir, "safe")
	if err := ops.ExtractArchive(context.Background(), evil, dest); err == nil {
		t.Fatal("expected zip-slip rejection")
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.txt")); !os.IsNotExist(err) {
		t.Error("escaping entry was written")
	}
}
