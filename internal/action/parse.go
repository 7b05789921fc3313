package action

import (
	"fmt"
	"strings"

	"github.com/robotcli/robotcli/internal/paths"
)

// ValidationError describes why a candidate action was rejected. It is
// recoverable: the session surfaces the reason as a clarification
// request instead of executing a best guess.
type ValidationError struct {
	Name   string // tool name as received
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid action %q: %s", e.Name, e.Reason)
}

// invalid is shorthand for building a *ValidationError.
func invalid(name, format string, args ...any) error {
	return &ValidationError{Name: name, Reason: fmt.Sprintf(format, args...)}
}

// Parse validates an untrusted tool call (name + argument map) against
// the catalog and returns a typed Action with all paths resolved inside
// scope. Any failure — unknown kind, missing or mistyped parameter,
// out-of-scope path, empty pattern, non-positive count — returns a
// *ValidationError and no Action.
//
// Parse never touches the filesystem.
func Parse(name string, args map[string]any, scope *paths.Scope) (Action, error) {
	switch Kind(name) {
	case KindCreateFile:
		path, err := pathArg(name, args, "path", scope)
		if err != nil {
			return nil, err
		}
		content, _ := strArg(args, "content") // optional
		return CreateFile{Path: path, Content: content}, nil

	case KindReadFile:
		path, err := pathArg(name, args, "path", scope)
		if err != nil {
			return nil, err
		}
		return ReadFile{Path: path}, nil

	case KindWriteFile:
		path, err := pathArg(name, args, "path", scope)
		if err != nil {
			return nil, err
		}
		content, err := textArg(name, args, "content")
		if err != nil {
			return nil, err
		}
		return WriteFile{Path: path, Content: content}, nil

	case KindAppendFile:
		path, err := pathArg(name, args, "path", scope)
		if err != nil {
			return nil, err
		}
		content, err := textArg(name, args, "content")
		if err != nil {
			return nil, err
		}
		return AppendFile{Path: path, Content: content}, nil

	case KindRenameEntry:
		path, err := pathArg(name, args, "path", scope)
		if err != nil {
			return nil, err
		}
		newName, ok := strArg(args, "new_name")
		if !ok || newName == "" {
			return nil, invalid(name, "missing required parameter %q", "new_name")
		}
		if strings.ContainsAny(newName, `/\`) {
			return nil, invalid(name, "new_name must be a bare name, not a path: %q", newName)
		}
		return RenameEntry{Path: path, NewName: newName}, nil

	case KindMoveEntry:
		src, err := pathArg(name, args, "source", scope)
		if err != nil {
			return nil, err
		}
		dst, err := pathArg(name, args, "destination", scope)
		if err != nil {
			return nil, err
		}
		return MoveEntry{Source: src, Dest: dst}, nil

	case KindCopyEntry:
		src, err := pathArg(name, args, "source", scope)
		if err != nil {
			return nil, err
		}
		dst, err := pathArg(name, args, "destination", scope)
		if err != nil {
			return nil, err
		}
		return CopyEntry{Source: src, Dest: dst}, nil

	case KindDeleteEntry:
		path, err := pathArg(name, args, "path", scope)
		if err != nil {
			return nil, err
		}
		return DeleteEntry{Path: path}, nil

	case KindListDirectory:
		path, err := pathArg(name, args, "path", scope)
		if err != nil {
			return nil, err
		}
		return ListDirectory{Path: path}, nil

	case KindMakeDirectory:
		path, err := pathArg(name, args, "path", scope)
		if err != nil {
			return nil, err
		}
		return MakeDirectory{Path: path}, nil

	case KindFileInfo:
		path, err := pathArg(name, args, "path", scope)
		if err != nil {
			return nil, err
		}
		return FileInfo{Path: path}, nil

	case KindSearchFiles:
		root, err := pathArg(name, args, "path", scope)
		if err != nil {
			return nil, err
		}
		query, ok := strArg(args, "query")
		if !ok || strings.TrimSpace(query) == "" {
			return nil, invalid(name, "query must be a non-empty string")
		}
		return SearchFiles{Root: root, Query: query}, nil

	case KindOrganizeFolder:
		root, err := pathArg(name, args, "path", scope)
		if err != nil {
			return nil, err
		}
		mapping, err := mappingArg(name, args, "mapping")
		if err != nil {
			return nil, err
		}
		return OrganizeFolder{Root: root, Mapping: mapping}, nil

	case KindFindDuplicates:
		root, err := pathArg(name, args, "path", scope)
		if err != nil {
			return nil, err
		}
		return FindDuplicates{Root: root}, nil

	case KindScanStorageHogs:
		root, err := pathArg(name, args, "path", scope)
		if err != nil {
			return nil, err
		}
		topN := 10
		if raw, present := args["top_n"]; present {
			n, ok := intArg(raw)
			if !ok {
				return nil, invalid(name, "top_n must be an integer")
			}
			if n <= 0 {
				return nil, invalid(name, "top_n must be positive, got %d", n)
			}
			topN = n
		}
		return ScanStorageHogs{Root: root, TopN: topN}, nil

	case KindZipFolder:
		folder, err := pathArg(name, args, "folder_path", scope)
		if err != nil {
			return nil, err
		}
		output, err := pathArg(name, args, "output_path", scope)
		if err != nil {
			return nil, err
		}
		return ZipFolder{Folder: folder, Output: output}, nil

	case KindExtractArchive:
		archive, err := pathArg(name, args, "archive_path", scope)
		if err != nil {
			return nil, err
		}
		dest, err := pathArg(name, args, "output_path", scope)
		if err != nil {
			return nil, err
		}
		return ExtractArchive{Archive: archive, Dest: dest}, nil

	case KindSystemHealth:
		return SystemHealth{}, nil

	case KindListProcesses:
		return ListProcesses{}, nil

	case KindDiskUsage:
		return DiskUsage{}, nil

	case KindExit:
		return Exit{}, nil

	default:
		return nil, invalid(name, "unknown action kind")
	}
}

// pathArg extracts a required string parameter and resolves it inside
// the scope. Scope violations surface as validation errors here; the
// safety gate re-checks before execution as defense in depth.
func pathArg(name string, args map[string]any, key string, scope *paths.Scope) (string, error) {
	raw, ok := strArg(args, key)
	if !ok {
		if _, present := args[key]; present {
			return "", invalid(name, "parameter %q must be a string", key)
		}
		return "", invalid(name, "missing required parameter %q", key)
	}
	resolved, err := scope.Resolve(raw)
	if err != nil {
		return "", invalid(name, "parameter %q: %v", key, err)
	}
	return resolved, nil
}

// textArg extracts a required string parameter. Empty is allowed:
// writing empty content truncates a file, which is a meaningful request.
func textArg(name string, args map[string]any, key string) (string, error) {
	raw, ok := strArg(args, key)
	if !ok {
		if _, present := args[key]; present {
			return "", invalid(name, "parameter %q must be a string", key)
		}
		return "", invalid(name, "missing required parameter %q", key)
	}
	return raw, nil
}

// strArg extracts a string parameter. Returns false when absent or not
// a string.
func strArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// intArg coerces a JSON number (float64 after unmarshal) or int to int.
func intArg(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

// mappingArg extracts an optional extension-to-folder map. Keys and
// values must be non-empty strings.
func mappingArg(name string, args map[string]any, key string) (map[string]string, error) {
	raw, present := args[key]
	if !present || raw == nil {
		return nil, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, invalid(name, "parameter %q must be an object of extension to folder name", key)
	}
	out := make(map[string]string, len(obj))
	for ext, v := range obj {
		folder, ok := v.(string)
		if !ok || strings.TrimSpace(folder) == "" {
			return nil, invalid(name, "mapping for %q must be a non-empty folder name", ext)
		}
		out[strings.ToLower(strings.TrimPrefix(ext, "."))] = folder
	}
	return out, nil
}
