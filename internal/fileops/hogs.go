package fileops

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// HogEntry is one immediate child of a scanned root with its cumulative
// size.
type HogEntry struct {
	Path  string
	Size  int64
	IsDir bool
}

// StorageHogs reports the topN largest immediate children of root.
// Directories count their full recursive size. Results are sorted
// descending by size; ties break by lexical path order so repeated
// scans are deterministic. Cancellable through ctx.
func (o *Ops) StorageHogs(ctx context.Context, root string, topN int) ([]HogEntry, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("not found: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var hogs []HogEntry
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(root, e.Name())
		if e.IsDir() {
			size, err := treeSize(ctx, path)
			if err != nil {
				return nil, err
			}
			hogs = append(hogs, HogEntry{Path: path, Size: size, IsDir: true})
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		hogs = append(hogs, HogEntry{Path: path, Size: fi.Size()})
	}

	sort.Slice(hogs, func(i, j int) bool {
		if hogs[i].Size != hogs[j].Size {
			return hogs[i].Size > hogs[j].Size
		}
		return hogs[i].Path < hogs[j].Path
	})

	if len(hogs) > topN {
		hogs = hogs[:topN]
	}
	return hogs, nil
}

// treeSize sums file sizes under dir recursively. Unreadable entries
// are skipped rather than failing the scan.
func treeSize(ctx context.Context, dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if fi, err := d.Info(); err == nil {
			total += fi.Size()
		}
		return nil
	})
	return total, err
}
