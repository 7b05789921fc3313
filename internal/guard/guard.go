// Package guard is the safety gate between a resolved action and its
// execution. It re-checks scope containment on every path an action
// carries and decides whether the action needs an explicit user
// confirmation before it may run.
package guard

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/robotcli/robotcli/internal/action"
	"github.com/robotcli/robotcli/internal/paths"
)

// Verdict is the gate's decision for one action.
type Verdict int

const (
	// Proceed means the action runs without further interaction.
	Proceed Verdict = iota
	// Confirm means the session must ask the user before running.
	Confirm
	// Deny means the action must not run at all.
	Deny
)

// Decision carries the verdict plus the text the session shows: a
// confirmation prompt for Confirm, a reason for Deny.
type Decision struct {
	Verdict Verdict
	Prompt  string
	Reason  string
}

// Gate evaluates actions against the configured scope.
type Gate struct {
	scope *paths.Scope
}

// New creates a Gate bound to scope.
func New(scope *paths.Scope) *Gate {
	return &Gate{scope: scope}
}

// Check classifies act. The validator already resolved every path
// inside the scope; the gate re-checks anyway so a bug upstream cannot
// turn into an out-of-scope write.
func (g *Gate) Check(act action.Action) Decision {
	for _, p := range actionPaths(act) {
		if !g.scope.Within(p) {
			return Decision{
				Verdict: Deny,
				Reason:  fmt.Sprintf("path %s is outside the allowed scope %s", p, g.scope.Root()),
			}
		}
	}

	switch a := act.(type) {
	case action.WriteFile:
		// Replacing existing content is as destructive as a delete;
		// writing a fresh file (or appending) is not.
		if _, err := os.Lstat(a.Path); err == nil {
			return confirm(fmt.Sprintf("Overwrite the current contents of %s?", a.Path))
		}

	case action.DeleteEntry:
		// Deletion always confirms, even though it only trashes.
		return confirm(fmt.Sprintf("Move %s to trash?", a.Path))

	case action.MoveEntry:
		if wouldOverwrite(a.Source, a.Dest) {
			return confirm(fmt.Sprintf("Moving %s will overwrite %s. Continue?", a.Source, a.Dest))
		}

	case action.OrganizeFolder:
		if n := directFileCount(a.Root); n > 0 {
			return confirm(fmt.Sprintf("Organize will move %d file(s) in %s into subfolders. Continue?", n, a.Root))
		}

	case action.ExtractArchive:
		if nonEmptyDir(a.Dest) {
			return confirm(fmt.Sprintf("Destination %s already has contents; extracted files may land beside them. Continue?", a.Dest))
		}
	}

	return Decision{Verdict: Proceed}
}

func confirm(prompt string) Decision {
	return Decision{Verdict: Confirm, Prompt: prompt}
}

// actionPaths lists every filesystem path an action touches.
func actionPaths(act action.Action) []string {
	switch a := act.(type) {
	case action.CreateFile:
		return []string{a.Path}
	case action.ReadFile:
		return []string{a.Path}
	case action.WriteFile:
		return []string{a.Path}
	case action.AppendFile:
		return []string{a.Path}
	case action.RenameEntry:
		return []string{a.Path}
	case action.MoveEntry:
		return []string{a.Source, a.Dest}
	case action.CopyEntry:
		return []string{a.Source, a.Dest}
	case action.DeleteEntry:
		return []string{a.Path}
	case action.ListDirectory:
		return []string{a.Path}
	case action.MakeDirectory:
		return []string{a.Path}
	case action.FileInfo:
		return []string{a.Path}
	case action.SearchFiles:
		return []string{a.Root}
	case action.OrganizeFolder:
		return []string{a.Root}
	case action.FindDuplicates:
		return []string{a.Root}
	case action.ScanStorageHogs:
		return []string{a.Root}
	case action.ZipFolder:
		return []string{a.Folder, a.Output}
	case action.ExtractArchive:
		return []string{a.Archive, a.Dest}
	default:
		// System health, process, and disk actions carry no paths;
		// Converse and Exit never reach the gate.
		return nil
	}
}

// wouldOverwrite reports whether moving src to dst replaces an existing
// file. A directory destination means "move into", never an overwrite.
func wouldOverwrite(src, dst string) bool {
	info, err := os.Stat(dst)
	if err != nil {
		return false
	}
	if info.IsDir() {
		// Inside the directory, the entry lands under its own name.
		_, err := os.Lstat(filepath.Join(dst, filepath.Base(src)))
		return err == nil
	}
	return true
}

// directFileCount counts the immediate child files of dir, the entries
// an organize pass would actually move.
func directFileCount(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() {
			n++
		}
	}
	return n
}

// nonEmptyDir reports whether path exists and has at least one entry.
func nonEmptyDir(path string) bool {
	entries, err := os.ReadDir(path)
	return err == nil && len(entries) > 0
}
