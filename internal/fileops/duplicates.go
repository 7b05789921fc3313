package fileops

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// hashWorkers bounds concurrent file hashing during a duplicate scan.
const hashWorkers = 4

// DuplicateGroup is a set of byte-identical files. Members always share
// the same content hash and a non-zero size; the file with the earliest
// modification time is the keep-suggestion. Nothing is ever deleted
// automatically.
type DuplicateGroup struct {
	Hash  string
	Files []FileEntry
	Keep  string // path of the suggested file to keep
}

// FindDuplicates walks root recursively and groups byte-identical
// files. Files are grouped by size first; content hashing only happens
// within same-size groups, so unique-sized files are never read. Empty
// files are excluded — they'd all "match" without being meaningful
// duplicates.
//
// The scan is cancellable through ctx at both the walk and the hashing
// stage.
func (o *Ops) FindDuplicates(ctx context.Context, root string) ([]DuplicateGroup, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("not found: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}

	// Pass 1: group by size. Cheap — stat only.
	bySize := make(map[int64][]FileEntry)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		fi, err := d.Info()
		if err != nil || fi.Size() == 0 {
			return nil
		}
		bySize[fi.Size()] = append(bySize[fi.Size()], FileEntry{
			Path:    path,
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Pass 2: hash within same-size groups only, bounded parallel.
	var mu sync.Mutex
	byHash := make(map[string][]FileEntry)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hashWorkers)

	for _, files := range bySize {
		if len(files) < 2 {
			continue
		}
		for _, f := range files {
			f := f
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				sum, err := hashFile(f.Path)
				if err != nil {
					return nil // unreadable file, not a duplicate candidate
				}
				f.Hash = sum
				mu.Lock()
				byHash[sum] = append(byHash[sum], f)
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var groups []DuplicateGroup
	for hash, files := range byHash {
		if len(files) < 2 {
			continue
		}
		sort.Slice(files, func(i, j int) bool {
			if !files[i].ModTime.Equal(files[j].ModTime) {
				return files[i].ModTime.Before(files[j].ModTime)
			}
			return files[i].Path < files[j].Path
		})
		groups = append(groups, DuplicateGroup{
			Hash:  hash,
			Files: files,
			Keep:  files[0].Path,
		})
	}

	// Deterministic output order: by keep-suggestion path.
	sort.Slice(groups, func(i, j int) bool { return groups[i].Keep < groups[j].Keep })
	return groups, nil
}

// hashFile returns the hex SHA-256 of a file's content.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
