// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export implements the sprite-to-PNG batch conversion loop.
// Implements: prd001-export (R1, R3, R4);
//
//	docs/ARCHITECTURE § Export.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/spritebake/internal/aseprite"
	"github.com/pdiddy/spritebake/pkg/types"
)

// pngExt is the output extension appended in place of the source extension.
const pngExt = ".png"

// BatchResult holds the outcome of a batch export run.
type BatchResult struct {
	Attempted int
	Succeeded int
	Failed    int

	// ToolUnavailable is set when the editor binary vanished mid-batch and
	// the remaining files were skipped. Skipped files are not counted as
	// attempted.
	ToolUnavailable bool
}

// HasFailures reports whether any file failed export.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// OK reports overall success: every attempted file succeeded and the tool
// stayed resolvable throughout.
func (r BatchResult) OK() bool {
	return r.Failed == 0 && !r.ToolUnavailable
}

// FileOutcome records the classified result for a single job, for the
// manifest and the history ledger.
type FileOutcome struct {
	Job    types.Job
	Status types.ExportStatus

	// Detail is the human-readable failure reason, empty on success.
	Detail string
}

// Discover lists the sprite files directly inside dir, non-recursive, in
// the order the directory enumeration yields them. Dotfiles and
// subdirectories are skipped. Matching is case-insensitive on extension.
func Discover(dir string, extensions []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		for _, want := range extensions {
			if ext == strings.ToLower(want) {
				files = append(files, filepath.Join(dir, name))
				break
			}
		}
	}
	return files, nil
}

// destFor derives the output path: same directory, same base name, .png.
func destFor(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + pngExt
}

// ExportFile runs one job through the tool and classifies the outcome,
// printing a status line to w. The editor exiting zero is not enough; the
// destination must exist on disk afterwards, since batch mode silently
// does nothing for some malformed inputs.
func ExportFile(tool aseprite.Tool, job types.Job, w io.Writer) FileOutcome {
	base := filepath.Base(job.Source)
	fmt.Fprintf(w, "exporting: %s -> %s\n", base, filepath.Base(job.Dest))

	err := tool.Export(job.Source, job.Dest)
	switch {
	case err == nil:
		if _, statErr := os.Stat(job.Dest); statErr != nil {
			detail := fmt.Sprintf("editor exited zero but %s was not created", job.Dest)
			fmt.Fprintf(w, "failed:  %s (%s)\n", base, detail)
			return FileOutcome{Job: job, Status: types.ExportMissingOutput, Detail: detail}
		}
		fmt.Fprintf(w, "done:    %s\n", base)
		return FileOutcome{Job: job, Status: types.ExportDone}

	case errors.Is(err, aseprite.ErrToolNotFound):
		fmt.Fprintf(w, "fatal:   %s (%v)\n", base, err)
		return FileOutcome{Job: job, Status: types.ExportToolUnavailable, Detail: err.Error()}

	default:
		// Non-zero exits and any other invocation fault are per-file.
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return FileOutcome{Job: job, Status: types.ExportToolFailed, Detail: err.Error()}
	}
}

// ExportDirectory converts every sprite file directly inside dir, printing
// per-file progress and a final summary to w. Precondition failures (dir
// missing or not a directory) return an error before any file is touched.
// Zero matching files is a successful no-op unless cfg.Strict is set. A
// vanished editor binary aborts the batch; every other failure is counted
// and the loop continues. Returns the accumulated result together with
// the per-file outcomes in discovery order.
func ExportDirectory(tool aseprite.Tool, cfg types.ExportConfig, dir string, w io.Writer) (BatchResult, []FileOutcome, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return BatchResult{}, nil, fmt.Errorf("directory %s does not exist", dir)
		}
		return BatchResult{}, nil, fmt.Errorf("inspecting %s: %w", dir, err)
	}
	if !info.IsDir() {
		return BatchResult{}, nil, fmt.Errorf("%s is not a directory", dir)
	}

	extensions := cfg.Extensions
	if len(extensions) == 0 {
		extensions = []string{".ase", ".aseprite"}
	}

	files, err := Discover(dir, extensions)
	if err != nil {
		return BatchResult{}, nil, err
	}

	if len(files) == 0 {
		if cfg.Strict {
			return BatchResult{}, nil, fmt.Errorf("no sprite files (%s) found in %s",
				strings.Join(extensions, ", "), dir)
		}
		fmt.Fprintf(w, "no sprite files found in %s\n", dir)
		fmt.Fprintf(w, "\nBatch summary: 0 attempted, 0 succeeded, 0 failed\n")
		return BatchResult{}, nil, nil
	}

	fmt.Fprintf(w, "found %d sprite file(s) in %s\n", len(files), dir)

	var result BatchResult
	var outcomes []FileOutcome
	// Destination collisions happen when e.g. hero.ase and hero.aseprite
	// coexist: both derive hero.png and the later export overwrites the
	// earlier one. Warn, but let the batch proceed.
	seen := make(map[string]string)
	for _, src := range files {
		job := types.Job{Source: src, Dest: destFor(src)}
		if prev, dup := seen[job.Dest]; dup {
			fmt.Fprintf(w, "warning: %s overwrites %s (also produced by %s)\n",
				filepath.Base(src), filepath.Base(job.Dest), filepath.Base(prev))
		} else {
			seen[job.Dest] = src
		}
		outcome := ExportFile(tool, job, w)
		outcomes = append(outcomes, outcome)

		if outcome.Status == types.ExportToolUnavailable {
			result.ToolUnavailable = true
			break
		}
		result.Attempted++
		if outcome.Status.Failed() {
			result.Failed++
		} else {
			result.Succeeded++
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d attempted, %d succeeded, %d failed\n",
		result.Attempted, result.Succeeded, result.Failed)
	if result.ToolUnavailable {
		fmt.Fprintf(w, "batch aborted: editor unavailable, remaining files skipped\n")
	}
	return result, outcomes, nil
}
