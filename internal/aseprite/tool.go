// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aseprite wraps the Aseprite editor's command-line batch mode.
// Implements: prd001-export R2.1-R2.5 (tool invocation strategy);
//
//	docs/ARCHITECTURE § External Tool.
package aseprite

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
)

const (
	binAseprite    = "aseprite"
	binLibresprite = "libresprite"
)

// ErrToolNotFound reports that no editor binary could be resolved on PATH.
// Callers treat this as fatal for a whole batch, unlike a RunError.
var ErrToolNotFound = errors.New("sprite editor binary not found on PATH")

// RunError reports a non-zero exit from the editor for a single file.
type RunError struct {
	ExitCode int
	Stderr   string
}

func (e *RunError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("editor exited with code %d", e.ExitCode)
	}
	return fmt.Sprintf("editor exited with code %d: %s", e.ExitCode, e.Stderr)
}

// Tool exports sprite files through an external editor binary.
type Tool interface {
	// Name returns the editor binary name ("aseprite" or "libresprite").
	Name() string

	// Available reports whether the binary resolves on PATH.
	Available() bool

	// Export converts src to dst via the editor's batch mode. The call
	// blocks until the editor exits; no timeout is imposed, so a hung
	// editor hangs the caller. Returns ErrToolNotFound (wrapped) when the
	// binary cannot be resolved, or a *RunError on non-zero exit.
	Export(src, dst string) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunCapture(name string, args ...string) (stderr string, err error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunCapture(name string, args ...string) (string, error) {
	var errBuf bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return errBuf.String(), err
}

// tool implements Tool for a specific editor binary. Aseprite and its
// LibreSprite fork share the same batch-mode flags.
type tool struct {
	bin  string
	exec executor
}

func (t *tool) Name() string { return t.bin }

func (t *tool) Available() bool {
	_, err := t.exec.LookPath(t.bin)
	return err == nil
}

func (t *tool) Export(src, dst string) error {
	if _, err := t.exec.LookPath(t.bin); err != nil {
		return fmt.Errorf("resolving %s: %w", t.bin, ErrToolNotFound)
	}

	// -b suppresses the UI; --save-as flattens to the destination format.
	stderr, err := t.exec.RunCapture(t.bin, "-b", src, "--save-as", dst)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &RunError{ExitCode: exitErr.ExitCode(), Stderr: stderr}
		}
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("running %s: %w", t.bin, ErrToolNotFound)
		}
		return fmt.Errorf("running %s on %s: %w", t.bin, src, err)
	}
	return nil
}

// New returns a Tool for an explicitly named binary, bypassing detection.
func New(bin string) Tool {
	return &tool{bin: bin, exec: defaultExec}
}

var defaultExec = &osExecutor{}

// Detect tries aseprite first, falls back to libresprite. Returns
// ErrToolNotFound when neither binary resolves.
func Detect() (Tool, error) {
	return detect(defaultExec)
}

func detect(exec executor) (Tool, error) {
	for _, bin := range []string{binAseprite, binLibresprite} {
		t := &tool{bin: bin, exec: exec}
		if t.Available() {
			return t, nil
		}
	}
	return nil, fmt.Errorf("neither %s nor %s resolved: %w",
		binAseprite, binLibresprite, ErrToolNotFound)
}
