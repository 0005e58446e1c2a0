// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest writes a YAML record of an export run. A manifest is
// opt-in; the default run leaves nothing on disk but the PNGs.
// Implements: prd001-export R6.1-R6.3.
package manifest

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/spritebake/internal/export"
	"github.com/pdiddy/spritebake/pkg/types"
)

// Document is the on-disk representation of one export run.
type Document struct {
	Tool      string    `yaml:"tool"`
	Directory string    `yaml:"directory"`
	Files     []Entry   `yaml:"files"`
	Summary   Summary   `yaml:"summary"`
	Timestamp time.Time `yaml:"timestamp"`
}

// Entry records one file's outcome.
type Entry struct {
	Source string             `yaml:"source"`
	Dest   string             `yaml:"dest"`
	Status types.ExportStatus `yaml:"status"`
	Detail string             `yaml:"detail,omitempty"`
}

// Summary mirrors the batch counts.
type Summary struct {
	Attempted int  `yaml:"attempted"`
	Succeeded int  `yaml:"succeeded"`
	Failed    int  `yaml:"failed"`
	Aborted   bool `yaml:"aborted,omitempty"`
}

// Build assembles a Document from a finished run.
func Build(toolName, dir string, result export.BatchResult, outcomes []export.FileOutcome) Document {
	entries := make([]Entry, len(outcomes))
	for i, o := range outcomes {
		entries[i] = Entry{
			Source: o.Job.Source,
			Dest:   o.Job.Dest,
			Status: o.Status,
			Detail: o.Detail,
		}
	}
	return Document{
		Tool:      toolName,
		Directory: dir,
		Files:     entries,
		Summary: Summary{
			Attempted: result.Attempted,
			Succeeded: result.Succeeded,
			Failed:    result.Failed,
			Aborted:   result.ToolUnavailable,
		},
		Timestamp: time.Now().UTC(),
	}
}

// Write marshals the document to path.
func Write(path string, doc Document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}

// Read loads a manifest back from disk.
func Read(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return doc, nil
}
