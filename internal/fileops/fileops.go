// Package fileops implements the primitive file and directory
// operations behind the action catalog. All paths arriving here have
// already been validated and resolved inside the allow-listed scope;
// this package performs the actual I/O.
//
// Every mutating operation is atomic at single-entry granularity: one
// rename, move, copy, or trash call succeeds or fails as a unit.
// Multi-entry operations (organize) collect per-file outcomes and never
// abort the whole batch on one failure.
package fileops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ReadLimit caps how much file content a read returns for display.
const ReadLimit = 4 * 1024

// ListLimit caps directory listings for display.
const ListLimit = 50

// FileEntry describes one file found by a scan.
type FileEntry struct {
	Path    string
	Size    int64
	ModTime time.Time
	Hash    string // content hash, set only after hashing
}

// Ops performs file operations. The zero value is not usable; construct
// with New.
type Ops struct {
	trashDir string // override for tests; empty = platform default
}

// New creates an Ops using the platform trash location.
func New() *Ops {
	return &Ops{}
}

// NewWithTrash creates an Ops that trashes into dir. Used by tests and
// by configurations that point at a custom recycle directory.
func NewWithTrash(dir string) *Ops {
	return &Ops{trashDir: dir}
}

// Create writes a new file with the given content, creating parent
// directories. It refuses to overwrite an existing file.
func (o *Ops) Create(path, content string) error {
	if _, err := os.Lstat(path); err == nil {
		return fmt.Errorf("already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// Write replaces a file's content, creating parent directories and the
// file itself when absent. Refuses to write over a directory.
func (o *Ops) Write(path, content string) error {
	if info, err := os.Lstat(path); err == nil && info.IsDir() {
		return fmt.Errorf("is a directory: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// Append adds content to the end of a file, creating it when absent.
func (o *Ops) Append(path, content string) error {
	if info, err := os.Lstat(path); err == nil && info.IsDir() {
		return fmt.Errorf("is a directory: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("append: %w", err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("append: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("append: %w", err)
	}
	return nil
}

// ReadText reads a file's content, truncated to ReadLimit bytes.
func (o *Ops) ReadText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", path)
		}
		return "", fmt.Errorf("read file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, ReadLimit+1))
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	if len(data) > ReadLimit {
		return string(data[:ReadLimit]) + "\n[... truncated ...]", nil
	}
	return string(data), nil
}

// Rename renames an entry in place. newName must be a bare name; the
// validator guarantees this.
func (o *Ops) Rename(path, newName string) (string, error) {
	if _, err := os.Lstat(path); err != nil {
		return "", fmt.Errorf("not found: %s", path)
	}
	dst := filepath.Join(filepath.Dir(path), newName)
	if _, err := os.Lstat(dst); err == nil {
		return "", fmt.Errorf("already exists: %s", dst)
	}
	if err := os.Rename(path, dst); err != nil {
		return "", fmt.Errorf("rename: %w", err)
	}
	return dst, nil
}

// Move moves a file or directory. When dst is an existing directory,
// src moves into it under its own name. Falls back to copy-and-remove
// for cross-device moves.
func (o *Ops) Move(src, dst string) (string, error) {
	if _, err := os.Lstat(src); err != nil {
		return "", fmt.Errorf("source not found: %s", src)
	}
	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		dst = filepath.Join(dst, filepath.Base(src))
	}
	if err := os.Rename(src, dst); err == nil {
		return dst, nil
	}
	// Cross-device: copy then remove the original.
	if err := o.copyAny(src, dst); err != nil {
		return "", err
	}
	if err := os.RemoveAll(src); err != nil {
		return "", fmt.Errorf("remove source after copy: %w", err)
	}
	return dst, nil
}

// Copy copies a file or directory (recursively). When dst is an
// existing directory, src is copied into it under its own name.
func (o *Ops) Copy(src, dst string) (string, error) {
	if _, err := os.Lstat(src); err != nil {
		return "", fmt.Errorf("source not found: %s", src)
	}
	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		dst = filepath.Join(dst, filepath.Base(src))
	}
	if err := o.copyAny(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// MakeDir creates a directory and any missing parents.
func (o *Ops) MakeDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return nil
}

// List returns the direct children of a directory, directories marked
// with a trailing separator, truncated to ListLimit entries.
func (o *Ops) List(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory not found: %s", path)
		}
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += string(filepath.Separator)
		}
		out = append(out, name)
		if len(out) == ListLimit {
			out = append(out, fmt.Sprintf("... and %d more", len(entries)-ListLimit))
			break
		}
	}
	return out, nil
}

// Info reports size, modification time, and permissions for one entry.
func (o *Ops) Info(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("not found: %s", path)
		}
		return "", fmt.Errorf("stat: %w", err)
	}
	kind := "file"
	if info.IsDir() {
		kind = "directory"
	}
	return fmt.Sprintf("%s\n  type: %s\n  size: %s\n  modified: %s\n  mode: %s",
		path, kind, HumanSize(info.Size()),
		info.ModTime().Format(time.RFC3339), info.Mode()), nil
}

// copyAny dispatches to file or directory copy.
func (o *Ops) copyAny(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return o.copyDir(src, dst)
	}
	return o.copyFile(src, dst, info.Mode())
}

func (o *Ops) copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copy: %w", err)
	}
	return out.Close()
}

func (o *Ops) copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return o.copyFile(path, target, info.Mode())
	})
}

// uniquePath returns path if free, otherwise appends a numeric suffix
// before the extension (report.pdf -> report_1.pdf) until a free name
// is found. Never overwrites silently.
func uniquePath(path string) string {
	if _, err := os.Lstat(path); err != nil {
		return path
	}
	ext := filepath.Ext(path)
	stem := path[:len(path)-len(ext)]
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if _, err := os.Lstat(candidate); err != nil {
			return candidate
		}
	}
}

// HumanSize formats a byte count with binary units.
func HumanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
