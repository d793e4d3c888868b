// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Library operations
	OpLibraryScan   Op = "scan library"
	OpLibraryLoad   Op = "load library"
	OpLibraryLookup Op = "find track"
	OpTagsRead      Op = "read file tags"
	OpTagsWrite     Op = "write file tags"

	// Smart playlist operations
	OpSmartCreate Op = "create smart playlist"
	OpSmartRename Op = "rename smart playlist"
	OpSmartUpdate Op = "update smart playlist rules"
	OpSmartDelete Op = "delete smart playlist"
	OpSmartLoad   Op = "load smart playlists"
	OpRulesParse  Op = "parse rules"

	// Queue operations
	OpQueueLoad    Op = "load queue"
	OpQueueSave    Op = "save queue"
	OpQueueAdd     Op = "add to queue"
	OpQueueReorder Op = "reorder queue"

	// Playback operations
	OpPlaybackStart Op = "start playback"
	OpPlaybackSeek  Op = "seek"
	OpMixerSave     Op = "save mixer settings"

	// Lyrics and analysis
	OpLyricsFetch  Op = "fetch lyrics"
	OpWaveformLoad Op = "extract waveform"

	// Initialization
	OpConfigLoad Op = "load configuration"
	OpInitialize Op = "initialize application"
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

// Wrap returns err annotated with op, or nil. The result unwraps to err.
func Wrap(op Op, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
