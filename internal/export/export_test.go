// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/spritebake/internal/aseprite"
	"github.com/pdiddy/spritebake/pkg/types"
)

// fakeTool implements aseprite.Tool for testing. By default every export
// succeeds and writes the destination file; individual sources can be
// configured to exit non-zero, produce nothing, or report a missing binary.
type fakeTool struct {
	failWith    map[string]error // source -> error returned by Export
	silent      map[string]bool  // source -> exit zero without writing dst
	unavailable bool             // report missing binary for every call
	calls       []string
}

func (f *fakeTool) Name() string    { return "fake-editor" }
func (f *fakeTool) Available() bool { return !f.unavailable }

func (f *fakeTool) Export(src, dst string) error {
	f.calls = append(f.calls, src)
	if f.unavailable {
		return aseprite.ErrToolNotFound
	}
	if err, ok := f.failWith[src]; ok {
		return err
	}
	if f.silent[src] {
		return nil
	}
	return os.WriteFile(dst, []byte("png"), 0o644)
}

// writeSprites creates empty sprite files in dir and returns their paths.
func writeSprites(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, len(names))
	for i, name := range names {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("ase"), 0o644); err != nil {
			t.Fatal(err)
		}
		paths[i] = p
	}
	return paths
}

func TestExportDirectory_Preconditions(t *testing.T) {
	tests := []struct {
		name    string
		dir     func(t *testing.T) string
		wantMsg string
	}{
		{
			name: "missing directory",
			dir: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope")
			},
			wantMsg: "does not exist",
		},
		{
			name: "path is a file",
			dir: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "file.txt")
				if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
					t.Fatal(err)
				}
				return p
			},
			wantMsg: "not a directory",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := &fakeTool{}
			var log bytes.Buffer

			_, _, err := ExportDirectory(tool, types.ExportConfig{}, tt.dir(t), &log)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err, tt.wantMsg)
			}
			if len(tool.calls) != 0 {
				t.Errorf("editor invoked %d times before precondition, want 0", len(tool.calls))
			}
		})
	}
}

func TestExportDirectory_EmptyIsSuccess(t *testing.T) {
	dir := t.TempDir()
	tool := &fakeTool{}
	var log bytes.Buffer

	result, outcomes, err := ExportDirectory(tool, types.ExportConfig{}, dir, &log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.OK() {
		t.Error("empty directory should be overall success")
	}
	if result.Attempted != 0 || result.Succeeded != 0 || result.Failed != 0 {
		t.Errorf("counts = %+v, want all zero", result)
	}
	if len(outcomes) != 0 {
		t.Errorf("got %d outcomes, want 0", len(outcomes))
	}
	if len(tool.calls) != 0 {
		t.Errorf("editor invoked for empty directory")
	}
	if !strings.Contains(log.String(), "no sprite files") {
		t.Errorf("log should mention empty batch, got %q", log.String())
	}
}

func TestExportDirectory_EmptyStrictFails(t *testing.T) {
	dir := t.TempDir()
	var log bytes.Buffer

	_, _, err := ExportDirectory(&fakeTool{}, types.ExportConfig{Strict: true}, dir, &log)
	if err == nil {
		t.Fatal("strict mode should fail on zero matches")
	}
	if !strings.Contains(err.Error(), "no sprite files") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExportDirectory_AllSucceed(t *testing.T) {
	dir := t.TempDir()
	writeSprites(t, dir, "hero.ase", "tiles.ase", "boss.aseprite")
	tool := &fakeTool{}
	var log bytes.Buffer

	result, outcomes, err := ExportDirectory(tool, types.ExportConfig{}, dir, &log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Attempted != 3 || result.Succeeded != 3 || result.Failed != 0 {
		t.Errorf("counts = %+v, want 3/3/0", result)
	}
	if !result.OK() {
		t.Error("overall success expected")
	}
	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(outcomes))
	}
	for _, o := range outcomes {
		if o.Status != types.ExportDone {
			t.Errorf("%s: status = %q, want %q", o.Job.Source, o.Status, types.ExportDone)
		}
		if _, err := os.Stat(o.Job.Dest); err != nil {
			t.Errorf("missing output %s", o.Job.Dest)
		}
		if filepath.Ext(o.Job.Dest) != ".png" {
			t.Errorf("dest %s should have .png extension", o.Job.Dest)
		}
	}
}

func TestExportDirectory_OneFailureContinues(t *testing.T) {
	dir := t.TempDir()
	paths := writeSprites(t, dir, "a.ase", "b.ase", "c.ase")

	var bad string
	for _, p := range paths {
		if filepath.Base(p) == "b.ase" {
			bad = p
		}
	}
	tool := &fakeTool{
		failWith: map[string]error{
			bad: &aseprite.RunError{ExitCode: 2, Stderr: "corrupt chunk"},
		},
	}
	var log bytes.Buffer

	result, _, err := ExportDirectory(tool, types.ExportConfig{}, dir, &log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Attempted != 3 || result.Succeeded != 2 || result.Failed != 1 {
		t.Errorf("counts = %+v, want 3/2/1", result)
	}
	if result.OK() {
		t.Error("overall success should be false with one failure")
	}
	// All three must be attempted; a per-file failure does not short-circuit.
	if len(tool.calls) != 3 {
		t.Errorf("editor invoked %d times, want 3", len(tool.calls))
	}
	if !strings.Contains(log.String(), "corrupt chunk") {
		t.Errorf("diagnostic should carry stderr text, got %q", log.String())
	}
}

func TestExportDirectory_SilentToolCountsFailed(t *testing.T) {
	dir := t.TempDir()
	paths := writeSprites(t, dir, "ghost.ase")
	tool := &fakeTool{silent: map[string]bool{paths[0]: true}}
	var log bytes.Buffer

	result, outcomes, err := ExportDirectory(tool, types.ExportConfig{}, dir, &log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Succeeded != 0 || result.Failed != 1 {
		t.Errorf("counts = %+v, want 0 succeeded / 1 failed", result)
	}
	if outcomes[0].Status != types.ExportMissingOutput {
		t.Errorf("status = %q, want %q", outcomes[0].Status, types.ExportMissingOutput)
	}
	if !strings.Contains(log.String(), "was not created") {
		t.Errorf("diagnostic should name the missing output, got %q", log.String())
	}
}

func TestExportDirectory_UnavailableToolAborts(t *testing.T) {
	dir := t.TempDir()
	writeSprites(t, dir, "a.ase", "b.ase", "c.ase")
	tool := &fakeTool{unavailable: true}
	var log bytes.Buffer

	result, outcomes, err := ExportDirectory(tool, types.ExportConfig{}, dir, &log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.ToolUnavailable {
		t.Error("ToolUnavailable should be set")
	}
	if result.OK() {
		t.Error("overall success should be false after abort")
	}
	// Detection happens on the first invocation; nothing after it runs.
	if len(tool.calls) != 1 {
		t.Errorf("editor invoked %d times, want 1", len(tool.calls))
	}
	if len(outcomes) != 1 || outcomes[0].Status != types.ExportToolUnavailable {
		t.Errorf("outcomes = %+v, want single tool_unavailable", outcomes)
	}
}

func TestExportDirectory_MixedScenario(t *testing.T) {
	// a.ase succeeds producing a.png; b.ase exits 2. Summary must report
	// attempted=2, succeeded=1, failed=1.
	dir := t.TempDir()
	paths := writeSprites(t, dir, "a.ase", "b.ase")

	var bad string
	for _, p := range paths {
		if filepath.Base(p) == "b.ase" {
			bad = p
		}
	}
	tool := &fakeTool{
		failWith: map[string]error{bad: &aseprite.RunError{ExitCode: 2}},
	}
	var log bytes.Buffer

	result, _, err := ExportDirectory(tool, types.ExportConfig{}, dir, &log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Attempted != 2 || result.Succeeded != 1 || result.Failed != 1 {
		t.Errorf("counts = %+v, want 2/1/1", result)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.png")); err != nil {
		t.Errorf("a.png should exist: %v", err)
	}
	if !strings.Contains(log.String(), "Batch summary: 2 attempted, 1 succeeded, 1 failed") {
		t.Errorf("summary line missing, got %q", log.String())
	}
}

func TestExportDirectory_DuplicateDestinationWarns(t *testing.T) {
	// hero.ase and hero.aseprite both derive hero.png; the batch proceeds
	// but the collision is called out.
	dir := t.TempDir()
	writeSprites(t, dir, "hero.ase", "hero.aseprite")
	tool := &fakeTool{}
	var log bytes.Buffer

	result, _, err := ExportDirectory(tool, types.ExportConfig{}, dir, &log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Attempted != 2 || result.Succeeded != 2 {
		t.Errorf("counts = %+v, want 2 attempted / 2 succeeded", result)
	}
	if !strings.Contains(log.String(), "warning:") ||
		!strings.Contains(log.String(), "hero.png") {
		t.Errorf("log should warn about the shared destination, got %q", log.String())
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeSprites(t, dir, "a.ase", "b.ASE", "c.aseprite", "notes.txt", ".hidden.ase")
	if err := os.Mkdir(filepath.Join(dir, "sub.ase"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := Discover(dir, []string{".ase", ".aseprite"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Order is whatever the enumeration yields; assert membership only.
	if len(files) != 3 {
		t.Fatalf("got %d files, want 3: %v", len(files), files)
	}
	got := make(map[string]bool)
	for _, f := range files {
		got[filepath.Base(f)] = true
	}
	for _, want := range []string{"a.ase", "b.ASE", "c.aseprite"} {
		if !got[want] {
			t.Errorf("missing %s in %v", want, files)
		}
	}
}

func TestDestFor(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"assets/hero.ase", "assets/hero.png"},
		{"assets/boss.aseprite", "assets/boss.png"},
		{"deep/path/tiles.v2.ase", "deep/path/tiles.v2.png"},
	}
	for _, tt := range tests {
		if got := destFor(tt.src); got != tt.want {
			t.Errorf("destFor(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}
