// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ExportConfig holds settings for the export stage.
// Per prd001-export R5.1-R5.4.
type ExportConfig struct {
	// AssetsDir is the directory scanned for sprite files (default "assets").
	AssetsDir string `json:"assets_dir" yaml:"assets_dir"`

	// Extensions lists the source extensions discovered, including the dot
	// (default [".ase", ".aseprite"]).
	Extensions []string `json:"extensions" yaml:"extensions"`

	// Tool overrides the editor binary. Empty means detect on PATH.
	Tool string `json:"tool,omitempty" yaml:"tool,omitempty"`

	// Strict makes a directory with zero matching sprites a failure.
	// Default off: an empty batch is a successful no-op.
	Strict bool `json:"strict" yaml:"strict"`

	// ManifestPath, when non-empty, is where the YAML run manifest is written.
	ManifestPath string `json:"manifest_path,omitempty" yaml:"manifest_path,omitempty"`
}

// WatchConfig holds settings for watch mode.
// Per prd002-watch R2.1-R2.3.
type WatchConfig struct {
	// Debounce is how long a path must stay quiet before it is exported.
	// Editors write sprite files in bursts; the default is 500ms.
	Debounce time.Duration `json:"debounce" yaml:"debounce"`
}

// HistoryConfig holds settings for the run ledger.
// Per prd003-history R1.1-R1.3.
type HistoryConfig struct {
	// Dir is the directory holding the ledger database. Empty disables
	// recording entirely; a plain export touches nothing but the PNGs.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// MaxRuns is the default listing limit (default 20).
	MaxRuns int `json:"max_runs" yaml:"max_runs"`
}
