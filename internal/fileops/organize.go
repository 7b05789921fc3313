package fileops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MoveOutcome records one file's fate during a multi-file operation.
type MoveOutcome struct {
	Source string
	Dest   string // empty when the move failed
	Err    error  // nil on success
}

// OrganizeReport aggregates per-file outcomes of an organize run.
type OrganizeReport struct {
	Moved   []MoveOutcome
	Skipped int // dotfiles, extension-less files, directories
}

// Failed returns the outcomes that errored.
func (r *OrganizeReport) Failed() []MoveOutcome {
	var out []MoveOutcome
	for _, m := range r.Moved {
		if m.Err != nil {
			out = append(out, m)
		}
	}
	return out
}

// Organize sorts the direct child files of root into subfolders by
// extension. The destination folder for extension "pdf" is mapping["pdf"]
// when provided, otherwise "pdfs". Directories inside root are left
// untouched, so a second run over the same tree moves nothing — the
// operation is idempotent. Collisions at the destination get a numeric
// suffix, never a silent overwrite.
//
// A single file failing does not abort the batch; the report carries
// every outcome.
func (o *Ops) Organize(ctx context.Context, root string, mapping map[string]string) (*OrganizeReport, error) {
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

	report := &OrganizeReport{}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			report.Skipped++
			continue
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(e.Name()), "."))
		if ext == "" {
			report.Skipped++
			continue
		}

		folder := ext + "s"
		if mapped, ok := mapping[ext]; ok {
			folder = mapped
		}

		src := filepath.Join(root, e.Name())
		destDir := filepath.Join(root, folder)
		outcome := MoveOutcome{Source: src}

		if err := os.MkdirAll(destDir, 0755); err != nil {
			outcome.Err = fmt.Errorf("create %s: %w", folder, err)
			report.Moved = append(report.Moved, outcome)
			continue
		}

		dst := uniquePath(filepath.Join(destDir, e.Name()))
		if err := os.Rename(src, dst); err != nil {
			outcome.Err = fmt.Errorf("move: %w", err)
		} else {
			outcome.Dest = dst
		}
		report.Moved = append(report.Moved, outcome)
	}

	return report, nil
}
