package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/robotcli/robotcli/internal/action"
	"github.com/robotcli/robotcli/internal/fileops"
	"github.com/robotcli/robotcli/internal/sysinfo"
)

// Executor runs one validated action at a time. It never batches
// across turns and never mutates anything outside the paths carried by
// the action itself.
type Executor struct {
	logger    *slog.Logger
	ops       *fileops.Ops
	collector *sysinfo.Collector
}

// New creates an Executor.
func New(logger *slog.Logger, ops *fileops.Ops, collector *sysinfo.Collector) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{logger: logger, ops: ops, collector: collector}
}

// Execute dispatches act and converts the outcome into a Result. The
// context cancels long scans; a cancelled scan reports ErrCancelled.
func (e *Executor) Execute(ctx context.Context, act action.Action) *Result {
	e.logger.Debug("executing action", "kind", act.Kind())

	res := e.dispatch(ctx, act)

	if res.Success {
		e.logger.Info("action completed", "kind", res.ActionKind, "paths", len(res.AffectedPaths))
	} else {
		e.logger.Warn("action failed", "kind", res.ActionKind, "error", res.Err, "summary", res.Summary)
	}
	return res
}

func (e *Executor) dispatch(ctx context.Context, act action.Action) *Result {
	switch a := act.(type) {
	case action.CreateFile:
		if err := e.ops.Create(a.Path, a.Content); err != nil {
			return e.ioFailure(a.Kind(), err)
		}
		return ok(a.Kind(), fmt.Sprintf("Created %s", a.Path), a.Path)

	case action.ReadFile:
		content, err := e.ops.ReadText(a.Path)
		if err != nil {
			return e.ioFailure(a.Kind(), err)
		}
		return ok(a.Kind(), content, a.Path)

	case action.WriteFile:
		if err := e.ops.Write(a.Path, a.Content); err != nil {
			return e.ioFailure(a.Kind(), err)
		}
		return ok(a.Kind(), fmt.Sprintf("Wrote %s", a.Path), a.Path)

	case action.AppendFile:
		if err := e.ops.Append(a.Path, a.Content); err != nil {
			return e.ioFailure(a.Kind(), err)
		}
		return ok(a.Kind(), fmt.Sprintf("Appended to %s", a.Path), a.Path)

	case action.RenameEntry:
		dst, err := e.ops.Rename(a.Path, a.NewName)
		if err != nil {
			return e.ioFailure(a.Kind(), err)
		}
		return ok(a.Kind(), fmt.Sprintf("Renamed to %s", dst), a.Path, dst)

	case action.MoveEntry:
		dst, err := e.ops.Move(a.Source, a.Dest)
		if err != nil {
			return e.ioFailure(a.Kind(), err)
		}
		return ok(a.Kind(), fmt.Sprintf("Moved to %s", dst), a.Source, dst)

	case action.CopyEntry:
		dst, err := e.ops.Copy(a.Source, a.Dest)
		if err != nil {
			return e.ioFailure(a.Kind(), err)
		}
		return ok(a.Kind(), fmt.Sprintf("Copied to %s", dst), a.Source, dst)

	case action.DeleteEntry:
		trashed, err := e.ops.Trash(a.Path)
		if err != nil {
			if errors.Is(err, fileops.ErrRecycleUnavailable) {
				return &Result{ActionKind: a.Kind(), Summary: err.Error(), Err: ErrRecycleUnavailable}
			}
			return e.ioFailure(a.Kind(), err)
		}
		return ok(a.Kind(), fmt.Sprintf("Moved to trash: %s (recoverable at %s)", a.Path, trashed), a.Path, trashed)

	case action.ListDirectory:
		entries, err := e.ops.List(a.Path)
		if err != nil {
			return e.ioFailure(a.Kind(), err)
		}
		if len(entries) == 0 {
			return ok(a.Kind(), fmt.Sprintf("%s is empty", a.Path), a.Path)
		}
		return ok(a.Kind(), strings.Join(entries, "\n"), a.Path)

	case action.MakeDirectory:
		if err := e.ops.MakeDir(a.Path); err != nil {
			return e.ioFailure(a.Kind(), err)
		}
		return ok(a.Kind(), fmt.Sprintf("Created directory %s", a.Path), a.Path)

	case action.FileInfo:
		info, err := e.ops.Info(a.Path)
		if err != nil {
			return e.ioFailure(a.Kind(), err)
		}
		return ok(a.Kind(), info, a.Path)

	case action.SearchFiles:
		matches, err := e.ops.Search(ctx, a.Root, a.Query)
		if err != nil {
			return e.scanFailure(ctx, a.Kind(), err)
		}
		if len(matches) == 0 {
			return ok(a.Kind(), fmt.Sprintf("No files matching %q under %s", a.Query, a.Root))
		}
		summary := fmt.Sprintf("Found %d file(s) matching %q:\n%s", len(matches), a.Query, strings.Join(matches, "\n"))
		return ok(a.Kind(), summary, matches...)

	case action.OrganizeFolder:
		return e.organize(ctx, a)

	case action.FindDuplicates:
		return e.findDuplicates(ctx, a)

	case action.ScanStorageHogs:
		return e.storageHogs(ctx, a)

	case action.ZipFolder:
		out, err := e.ops.ZipFolder(ctx, a.Folder, a.Output)
		if err != nil {
			return e.scanFailure(ctx, a.Kind(), err)
		}
		return ok(a.Kind(), fmt.Sprintf("Zipped %s to %s", a.Folder, out), a.Folder, out)

	case action.ExtractArchive:
		if err := e.ops.ExtractArchive(ctx, a.Archive, a.Dest); err != nil {
			return e.scanFailure(ctx, a.Kind(), err)
		}
		return ok(a.Kind(), fmt.Sprintf("Extracted %s to %s", a.Archive, a.Dest), a.Archive, a.Dest)

	case action.SystemHealth:
		snap, err := e.collector.Collect(ctx)
		if err != nil {
			return e.ioFailure(a.Kind(), err)
		}
		return ok(a.Kind(), snap.Summary())

	case action.ListProcesses:
		snap, err := e.collector.Collect(ctx)
		if err != nil {
			return e.ioFailure(a.Kind(), err)
		}
		return ok(a.Kind(), snap.ProcessReport())

	case action.DiskUsage:
		snap, err := e.collector.Collect(ctx)
		if err != nil {
			return e.ioFailure(a.Kind(), err)
		}
		return ok(a.Kind(), snap.DriveReport())

	default:
		// Converse and Exit never reach the executor; the session
		// handles both directly.
		return &Result{
			ActionKind: act.Kind(),
			Summary:    fmt.Sprintf("action %s is not executable", act.Kind()),
			Err:        ErrValidation,
		}
	}
}

// organize runs the multi-file organize and aggregates per-file
// outcomes: success only when every sub-move succeeded.
func (e *Executor) organize(ctx context.Context, a action.OrganizeFolder) *Result {
	report, err := e.ops.Organize(ctx, a.Root, a.Mapping)
	if err != nil {
		return e.scanFailure(ctx, a.Kind(), err)
	}

	var paths []string
	for _, m := range report.Moved {
		if m.Err == nil {
			paths = append(paths, m.Dest)
		}
	}

	failed := report.Failed()
	if len(failed) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "Organized %d of %d file(s); %d failed:\n",
			len(report.Moved)-len(failed), len(report.Moved), len(failed))
		for _, f := range failed {
			fmt.Fprintf(&b, "  %s: %v\n", f.Source, f.Err)
		}
		return &Result{
			ActionKind:    a.Kind(),
			Summary:       strings.TrimRight(b.String(), "\n"),
			AffectedPaths: paths,
			Err:           ErrPartialFailure,
		}
	}

	moved := len(report.Moved)
	if moved == 0 {
		return ok(a.Kind(), fmt.Sprintf("Nothing to organize in %s (already tidy)", a.Root))
	}
	return ok(a.Kind(), fmt.Sprintf("Organized %d file(s) in %s into extension folders", moved, a.Root), paths...)
}

func (e *Executor) findDuplicates(ctx context.Context, a action.FindDuplicates) *Result {
	groups, err := e.ops.FindDuplicates(ctx, a.Root)
	if err != nil {
		return e.scanFailure(ctx, a.Kind(), err)
	}
	if len(groups) == 0 {
		return ok(a.Kind(), fmt.Sprintf("No duplicates found under %s", a.Root))
	}

	var b strings.Builder
	var paths []string
	fmt.Fprintf(&b, "Found %d duplicate group(s):\n", len(groups))
	for i, g := range groups {
		fmt.Fprintf(&b, "Group %d (%s each):\n", i+1, fileops.HumanSize(g.Files[0].Size))
		for _, f := range g.Files {
			marker := "  "
			if f.Path == g.Keep {
				marker = "* " // oldest copy, suggested keep
			}
			fmt.Fprintf(&b, "  %s%s\n", marker, f.Path)
			paths = append(paths, f.Path)
		}
	}
	b.WriteString("(* = suggested keep; nothing was deleted)")
	return ok(a.Kind(), b.String(), paths...)
}

func (e *Executor) storageHogs(ctx context.Context, a action.ScanStorageHogs) *Result {
	hogs, err := e.ops.StorageHogs(ctx, a.Root, a.TopN)
	if err != nil {
		return e.scanFailure(ctx, a.Kind(), err)
	}
	if len(hogs) == 0 {
		return ok(a.Kind(), fmt.Sprintf("%s is empty", a.Root))
	}

	var b strings.Builder
	var paths []string
	fmt.Fprintf(&b, "Top %d storage user(s) under %s:\n", len(hogs), a.Root)
	for _, h := range hogs {
		kind := "file"
		if h.IsDir {
			kind = "dir"
		}
		fmt.Fprintf(&b, "  %-10s %-5s %s\n", fileops.HumanSize(h.Size), kind, h.Path)
		paths = append(paths, h.Path)
	}
	return ok(a.Kind(), strings.TrimRight(b.String(), "\n"), paths...)
}

// ioFailure wraps a single-operation filesystem failure.
func (e *Executor) ioFailure(kind action.Kind, err error) *Result {
	return &Result{ActionKind: kind, Summary: err.Error(), Err: ErrIOFailure}
}

// scanFailure distinguishes a user-cancelled scan from an I/O failure.
func (e *Executor) scanFailure(ctx context.Context, kind action.Kind, err error) *Result {
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return &Result{ActionKind: kind, Summary: "cancelled", Err: ErrCancelled}
	}
	return e.ioFailure(kind, err)
}

// ok builds a success Result.
func ok(kind action.Kind, summary string, paths ...string) *Result {
	return &Result{
		ActionKind:    kind,
		Success:       true,
		Summary:       summary,
		AffectedPaths: paths,
	}
}
