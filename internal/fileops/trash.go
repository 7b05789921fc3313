package fileops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// ErrRecycleUnavailable signals that no recoverable trash location
// could be used. Deletion then fails entirely — the program never falls
// back to permanent removal.
var ErrRecycleUnavailable = errors.New("recycle location unavailable")

// Trash moves path into the platform's recoverable trash location and
// returns the path it now lives at. On Linux this follows the
// freedesktop.org Trash layout (files/ plus a .trashinfo record) so
// desktop environments can restore the entry; on macOS it moves into
// ~/.Trash. Name collisions get a numeric suffix.
func (o *Ops) Trash(path string) (string, error) {
	if _, err := os.Lstat(path); err != nil {
		return "", fmt.Errorf("not found: %s", path)
	}

	dir, infoDir, err := o.trashLocation()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRecycleUnavailable, err)
	}

	dst := uniquePath(filepath.Join(dir, filepath.Base(path)))
	if err := os.Rename(path, dst); err != nil {
		// Cross-device rename into the trash fails on separate mounts;
		// copying would double the data mid-delete, so report instead.
		return "", fmt.Errorf("%w: %v", ErrRecycleUnavailable, err)
	}

	if infoDir != "" {
		o.writeTrashInfo(infoDir, filepath.Base(dst), path)
	}

	return dst, nil
}

// trashLocation picks the trash files directory and, on Linux, the
// companion info directory.
func (o *Ops) trashLocation() (files, info string, err error) {
	if o.trashDir != "" {
		return o.trashDir, "", nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrRecycleUnavailable, err)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, ".Trash"), "", nil
	case "windows":
		// No direct Recycle Bin API without shell bindings; refuse
		// rather than delete permanently.
		return "", "", ErrRecycleUnavailable
	default:
		base := os.Getenv("XDG_DATA_HOME")
		if base == "" {
			base = filepath.Join(home, ".local", "share")
		}
		return filepath.Join(base, "Trash", "files"), filepath.Join(base, "Trash", "info"), nil
	}
}

// writeTrashInfo records the original location per the freedesktop.org
// spec. Failure here is non-fatal: the entry is already safely in the
// trash, it just loses one-click restore.
func (o *Ops) writeTrashInfo(infoDir, trashedName, originalPath string) {
	if err := os.MkdirAll(infoDir, 0700); err != nil {
		return
	}
	content := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		originalPath, time.Now().Format("2006-01-02T15:04:05"))
	_ = os.WriteFile(filepath.Join(infoDir, trashedName+".trashinfo"), []byte(content), 0600)
}
