// Package paths confines every file operation to an allow-listed root.
// A single [Scope] instance is built from configuration at startup and
// shared by the validator, the safety gate, and the executor.
//
// Resolution is purely lexical: Resolve and Within never touch the
// filesystem, so the action validator stays side-effect-free.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// namedFolders maps spoken folder names to their conventional directory
// under the scope root. Users say "downloads", not "~/Downloads".
var namedFolders = map[string]string{
	"home":      "",
	"downloads": "Downloads",
	"documents": "Documents",
	"desktop":   "Desktop",
	"music":     "Music",
	"pictures":  "Pictures",
	"videos":    "Videos",
}

// reservedDirs are system directories that are never valid targets, even
// when a misconfigured scope root would otherwise contain them.
var reservedDirs = []string{
	"/etc", "/usr", "/bin", "/sbin", "/lib", "/boot",
	"/proc", "/sys", "/dev", "/var", "/run",
	`C:\Windows`, `C:\Program Files`, `C:\Program Files (x86)`,
}

// Scope is the allow-listed directory subtree.
type Scope struct {
	root string
}

// New creates a Scope rooted at root. A leading ~ is expanded; an empty
// root defaults to the user's home directory. The root is normalized to
// an absolute path but not stat'ed — call [Scope.Verify] at startup.
func New(root string) (*Scope, error) {
	if root == "" {
		root = "~"
	}
	root = ExpandHome(root)
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve scope root: %w", err)
	}
	return &Scope{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute scope root.
func (s *Scope) Root() string {
	return s.root
}

// Verify checks that the root exists and is a directory. Failure here is
// the one unrecoverable startup error.
func (s *Scope) Verify() error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("scope root inaccessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("scope root is not a directory: %s", s.root)
	}
	return nil
}

// Resolve converts a user- or model-supplied path to an absolute path
// inside the scope. It expands folder synonyms ("downloads"), a leading
// ~, and joins relative paths onto the root. Paths that escape the
// scope or land in a reserved system directory are rejected.
func (s *Scope) Resolve(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if named, ok := namedFolders[strings.ToLower(path)]; ok {
		return filepath.Join(s.root, named), nil
	}

	path = ExpandHome(path)

	var abs string
	if filepath.IsAbs(path) {
		abs = filepath.Clean(path)
	} else {
		abs = filepath.Clean(filepath.Join(s.root, path))
	}

	if reserved(abs) {
		return "", fmt.Errorf("path targets a reserved system directory: %s", abs)
	}
	if !s.Within(abs) {
		return "", fmt.Errorf("path escapes allowed scope %s: %s", s.root, path)
	}

	return abs, nil
}

// Within reports whether abs (already cleaned and absolute) is inside
// the scope root. The comparison is separator-aware so /home/user does
// not admit /home/username.
func (s *Scope) Within(abs string) bool {
	abs = filepath.Clean(abs)
	if abs == s.root {
		return true
	}
	return strings.HasPrefix(abs, s.root+string(filepath.Separator))
}

// reserved reports whether abs is, or is inside, a reserved system
// directory.
func reserved(abs string) bool {
	for _, dir := range reservedDirs {
		if abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return filepath.Join(home, path[2:])
	}
	return path
}
