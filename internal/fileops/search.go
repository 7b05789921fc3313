package fileops

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SearchLimit caps how many matches a search returns.
const SearchLimit = 50

// searchScanCap bounds how many entries a search will visit. Keeps a
// careless "search my whole drive for .tmp" from walking forever.
const searchScanCap = 100_000

// Search walks root recursively and returns paths whose base name
// contains query (case-insensitive). The walk honors ctx so a queued
// exit can abort it.
func (o *Ops) Search(ctx context.Context, root, query string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("not found: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}

	needle := strings.ToLower(query)
	var matches []string
	scanned := 0

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entry, keep walking
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		scanned++
		if scanned > searchScanCap {
			return fs.SkipAll
		}
		if d.IsDir() {
			return nil
		}
		if strings.Contains(strings.ToLower(d.Name()), needle) {
			matches = append(matches, path)
			if len(matches) >= SearchLimit {
				return fs.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return matches, err
	}

	return matches, nil
}
