// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ExportStatus classifies the outcome of a single sprite export.
// The fatal/recoverable distinction lives in the type: ExportToolUnavailable
// aborts the batch, every other failure is local to one file.
// Per prd001-export R3.4.
type ExportStatus string

const (
	// ExportDone means the tool exited zero and the output file exists.
	ExportDone ExportStatus = "done"

	// ExportToolFailed means the tool exited non-zero for this file.
	ExportToolFailed ExportStatus = "tool_failed"

	// ExportMissingOutput means the tool exited zero but wrote nothing.
	ExportMissingOutput ExportStatus = "missing_output"

	// ExportToolUnavailable means the tool binary could not be resolved.
	// Fatal for the whole batch, not just the current file.
	ExportToolUnavailable ExportStatus = "tool_unavailable"
)

// Failed reports whether the status counts against the batch.
func (s ExportStatus) Failed() bool {
	return s != ExportDone
}

// Job pairs a source sprite with its derived output path. The destination
// has the same base name as the source with the extension swapped to .png,
// in the same directory. Jobs are immutable once built.
type Job struct {
	// Source is the path to the sprite file (.ase or .aseprite).
	Source string `json:"source" yaml:"source"`

	// Dest is the path the PNG is written to.
	Dest string `json:"dest" yaml:"dest"`
}
