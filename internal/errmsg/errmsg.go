// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playlist mutation
	OpPlaylistInsert Op = "insert tracks into playlist"
	OpPlaylistRemove Op = "remove tracks from playlist"
	OpPlaylistMove   Op = "move playlist tracks"
	OpPlaylistClear  Op = "clear playlist"
	OpPlaylistUndo   Op = "undo playlist change"
	OpPlaylistRedo   Op = "redo playlist change"

	// Resolution
	OpResolveURL     Op = "resolve URL"
	OpResolveLibrary Op = "resolve library track"
	OpReadTags       Op = "read file tags"

	// Dynamic playlists
	OpGenerate    Op = "generate dynamic playlist tracks"
	OpDynamicMode Op = "change dynamic playlist mode"

	// Persistence
	OpPlaylistSave Op = "save playlist"
	OpPlaylistLoad Op = "load playlist"
	OpPlaylistList Op = "list playlists"

	// Library
	OpLibraryOpen  Op = "open library"
	OpLibraryScan  Op = "scan library"
	OpLibraryWatch Op = "watch library sources"

	// Initialization
	OpInitialize Op = "initialize"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
