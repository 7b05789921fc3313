package action

// prop builds a JSON-schema property entry.
func prop(typ, desc string) map[string]any {
	return map[string]any{"type": typ, "description": desc}
}

// schema builds a JSON-schema object with the given properties and
// required list.
func schema(properties map[string]any, required ...string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// spec builds one tool entry in the OpenAI function-calling shape.
func spec(kind Kind, description string, parameters map[string]any) map[string]any {
	return map[string]any{
		"type": "function",
		"function": map[string]any{
			"name":        string(kind),
			"description": description,
			"parameters":  parameters,
		},
	}
}

// Specs returns the tool catalog advertised to the reasoning service.
// Converse is absent on purpose: a reply without a tool call is the
// conversational path.
func Specs() []map[string]any {
	return []map[string]any{
		spec(KindCreateFile,
			"Create a new file with optional content. Fails if the file exists.",
			schema(map[string]any{
				"path":    prop("string", "File path, relative to the user's home or a named folder like 'downloads'"),
				"content": prop("string", "Initial file content (optional)"),
			}, "path")),

		spec(KindReadFile,
			"Read text content from a file.",
			schema(map[string]any{
				"path": prop("string", "File path"),
			}, "path")),

		spec(KindWriteFile,
			"Replace a file's content entirely. Creates the file if it does not exist.",
			schema(map[string]any{
				"path":    prop("string", "File path"),
				"content": prop("string", "Full new content"),
			}, "path", "content")),

		spec(KindAppendFile,
			"Append content to the end of a file. Creates the file if it does not exist.",
			schema(map[string]any{
				"path":    prop("string", "File path"),
				"content": prop("string", "Content to append"),
			}, "path", "content")),

		spec(KindRenameEntry,
			"Rename a file or folder in place.",
			schema(map[string]any{
				"path":     prop("string", "Current path"),
				"new_name": prop("string", "New bare name, not a path"),
			}, "path", "new_name")),

		spec(KindMoveEntry,
			"Move a file or folder. If the destination is an existing folder, the source moves into it.",
			schema(map[string]any{
				"source":      prop("string", "Source path"),
				"destination": prop("string", "Destination path or folder"),
			}, "source", "destination")),

		spec(KindCopyEntry,
			"Copy a file or folder (folders copy recursively).",
			schema(map[string]any{
				"source":      prop("string", "Source path"),
				"destination": prop("string", "Destination path or folder"),
			}, "source", "destination")),

		spec(KindDeleteEntry,
			"Delete a file or folder safely by moving it to the recycle bin / trash. Never permanent.",
			schema(map[string]any{
				"path": prop("string", "Path to delete"),
			}, "path")),

		spec(KindListDirectory,
			"List the contents of a directory.",
			schema(map[string]any{
				"path": prop("string", "Directory path"),
			}, "path")),

		spec(KindMakeDirectory,
			"Create a directory, including parent directories.",
			schema(map[string]any{
				"path": prop("string", "Directory path"),
			}, "path")),

		spec(KindFileInfo,
			"Get size, modification time, and permissions for a file or folder.",
			schema(map[string]any{
				"path": prop("string", "Path to inspect"),
			}, "path")),

		spec(KindSearchFiles,
			"Recursively search a folder for files whose names contain a query (e.g. '.pdf' or 'report').",
			schema(map[string]any{
				"path":  prop("string", "Folder to search"),
				"query": prop("string", "Name fragment or extension to match"),
			}, "path", "query")),

		spec(KindOrganizeFolder,
			"Sort the files directly inside a folder into subfolders by extension (pdf -> pdfs). Subfolders are left untouched.",
			schema(map[string]any{
				"path": prop("string", "Folder to organize"),
				"mapping": map[string]any{
					"type":        "object",
					"description": "Optional extension-to-folder overrides, e.g. {\"jpg\": \"Photos\"}",
				},
			}, "path")),

		spec(KindFindDuplicates,
			"Find byte-identical duplicate files in a folder tree.",
			schema(map[string]any{
				"path": prop("string", "Folder to scan"),
			}, "path")),

		spec(KindScanStorageHogs,
			"Find what is using the most disk space directly under a folder.",
			schema(map[string]any{
				"path":  prop("string", "Folder to scan"),
				"top_n": prop("integer", "How many entries to report (default 10)"),
			}, "path")),

		spec(KindZipFolder,
			"Compress a folder into a zip archive.",
			schema(map[string]any{
				"folder_path": prop("string", "Folder to compress"),
				"output_path": prop("string", "Output .zip path"),
			}, "folder_path", "output_path")),

		spec(KindExtractArchive,
			"Extract a zip archive into a folder.",
			schema(map[string]any{
				"archive_path": prop("string", "Archive to extract"),
				"output_path":  prop("string", "Destination folder"),
			}, "archive_path", "output_path")),

		spec(KindSystemHealth,
			"Check current CPU and RAM usage.",
			schema(map[string]any{})),

		spec(KindListProcesses,
			"List the top memory-consuming processes.",
			schema(map[string]any{})),

		spec(KindDiskUsage,
			"Check free space on all drives.",
			schema(map[string]any{})),

		spec(KindExit,
			"End the session when the user says goodbye or asks to quit.",
			schema(map[string]any{})),
	}
}
