// Package action defines the closed catalog of actions the assistant
// can perform, and the single validation chokepoint that turns an
// untrusted candidate (a tool call from the reasoning service) into a
// typed, schema-valid Action.
//
// Nothing downstream of this package ever executes an object that has
// not passed [Parse]. Validation is purely lexical — it never touches
// the filesystem.
package action

// Kind identifies an action variant. The string values are the tool
// names advertised to the reasoning service.
type Kind string

const (
	KindCreateFile      Kind = "create_file"
	KindReadFile        Kind = "read_file"
	KindWriteFile       Kind = "write_to_file"
	KindAppendFile      Kind = "append_to_file"
	KindRenameEntry     Kind = "rename_entry"
	KindMoveEntry       Kind = "move_entry"
	KindCopyEntry       Kind = "copy_entry"
	KindDeleteEntry     Kind = "delete_entry"
	KindListDirectory   Kind = "list_directory"
	KindMakeDirectory   Kind = "make_directory"
	KindFileInfo        Kind = "file_info"
	KindSearchFiles     Kind = "search_files"
	KindOrganizeFolder  Kind = "organize_folder"
	KindFindDuplicates  Kind = "find_duplicates"
	KindScanStorageHogs Kind = "scan_storage_hogs"
	KindZipFolder       Kind = "zip_folder"
	KindExtractArchive  Kind = "extract_archive"
	KindSystemHealth    Kind = "system_health"
	KindListProcesses   Kind = "list_processes"
	KindDiskUsage       Kind = "disk_usage"
	KindConverse        Kind = "converse"
	KindExit            Kind = "exit"
)

// Action is a validated, typed request for one operation. Only [Parse]
// (and the session controller, for Converse/Exit) constructs values.
type Action interface {
	Kind() Kind
}

// CreateFile creates a new file with optional content. Fails if the
// file already exists.
type CreateFile struct {
	Path    string
	Content string
}

func (CreateFile) Kind() Kind { return KindCreateFile }

// ReadFile reads a text file's content (truncated for display).
type ReadFile struct {
	Path string
}

func (ReadFile) Kind() Kind { return KindReadFile }

// WriteFile replaces a file's content wholesale, creating the file if
// it does not exist. Overwriting an existing file is destructive and
// gated behind a confirmation.
type WriteFile struct {
	Path    string
	Content string
}

func (WriteFile) Kind() Kind { return KindWriteFile }

// AppendFile adds content to the end of a file, creating it if absent.
// Existing content is never touched.
type AppendFile struct {
	Path    string
	Content string
}

func (AppendFile) Kind() Kind { return KindAppendFile }

// RenameEntry renames a file or directory in place. NewName is a bare
// name, never a path.
type RenameEntry struct {
	Path    string
	NewName string
}

func (RenameEntry) Kind() Kind { return KindRenameEntry }

// MoveEntry moves a file or directory. When Dest is an existing
// directory the source moves into it.
type MoveEntry struct {
	Source string
	Dest   string
}

func (MoveEntry) Kind() Kind { return KindMoveEntry }

// CopyEntry copies a file or directory (recursively).
type CopyEntry struct {
	Source string
	Dest   string
}

func (CopyEntry) Kind() Kind { return KindCopyEntry }

// DeleteEntry moves a file or directory to the recoverable trash
// location. There is no permanent-delete variant.
type DeleteEntry struct {
	Path string
}

func (DeleteEntry) Kind() Kind { return KindDeleteEntry }

// ListDirectory lists the direct children of a directory.
type ListDirectory struct {
	Path string
}

func (ListDirectory) Kind() Kind { return KindListDirectory }

// MakeDirectory creates a directory, including parents.
type MakeDirectory struct {
	Path string
}

func (MakeDirectory) Kind() Kind { return KindMakeDirectory }

// FileInfo reports size, timestamps, and permissions for one entry.
type FileInfo struct {
	Path string
}

func (FileInfo) Kind() Kind { return KindFileInfo }

// SearchFiles recursively searches Root for names containing Query.
type SearchFiles struct {
	Root  string
	Query string
}

func (SearchFiles) Kind() Kind { return KindSearchFiles }

// OrganizeFolder moves each direct child file of Root into a subfolder
// derived from its extension. Mapping overrides the derived folder name
// per extension; extensions absent from a non-nil mapping still fall
// back to the derived name.
type OrganizeFolder struct {
	Root    string
	Mapping map[string]string
}

func (OrganizeFolder) Kind() Kind { return KindOrganizeFolder }

// FindDuplicates scans Root recursively for byte-identical files.
type FindDuplicates struct {
	Root string
}

func (FindDuplicates) Kind() Kind { return KindFindDuplicates }

// ScanStorageHogs reports the TopN largest immediate children of Root,
// directories measured by cumulative size.
type ScanStorageHogs struct {
	Root string
	TopN int
}

func (ScanStorageHogs) Kind() Kind { return KindScanStorageHogs }

// ZipFolder compresses a folder into a zip archive.
type ZipFolder struct {
	Folder string
	Output string
}

func (ZipFolder) Kind() Kind { return KindZipFolder }

// ExtractArchive extracts a zip archive into a destination directory.
type ExtractArchive struct {
	Archive string
	Dest    string
}

func (ExtractArchive) Kind() Kind { return KindExtractArchive }

// SystemHealth reports CPU and RAM usage. Read-only.
type SystemHealth struct{}

func (SystemHealth) Kind() Kind { return KindSystemHealth }

// ListProcesses reports the top memory-consuming processes. Read-only.
type ListProcesses struct{}

func (ListProcesses) Kind() Kind { return KindListProcesses }

// DiskUsage reports free space per drive. Read-only.
type DiskUsage struct{}

func (DiskUsage) Kind() Kind { return KindDiskUsage }

// Converse is a pure chat reply with no side effect. Constructed by the
// intent resolver, never advertised as a tool.
type Converse struct {
	Text string
}

func (Converse) Kind() Kind { return KindConverse }

// Exit ends the session.
type Exit struct{}

func (Exit) Kind() Kind { return KindExit }
