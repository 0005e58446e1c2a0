// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/spritebake/internal/aseprite"
	"github.com/pdiddy/spritebake/internal/export"
	"github.com/pdiddy/spritebake/internal/history"
	"github.com/pdiddy/spritebake/internal/manifest"
	"github.com/pdiddy/spritebake/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export [dir]",
	Short: "Convert every sprite in a directory to PNG",
	Long: `Export scans a directory (default "assets") for sprite files and runs the
editor's batch mode once per file, writing a sibling PNG with the same base
name. Files are processed one at a time; a single failed file is reported
and counted but does not stop the batch. A missing editor binary aborts the
whole run.

The editor call blocks with no timeout, so a hung editor hangs the batch.

Exits 0 on full success (a directory with zero sprites counts as success
unless --strict is set), 1 otherwise.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, dir := exportConfig(cmd, args)

	tool, err := resolveTool(cfg)
	if err != nil {
		return err
	}

	result, outcomes, err := export.ExportDirectory(tool, cfg, dir, os.Stdout)
	if err != nil {
		return err
	}

	if cfg.ManifestPath != "" {
		doc := manifest.Build(tool.Name(), dir, result, outcomes)
		if err := manifest.Write(cfg.ManifestPath, doc); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote manifest: %s\n", cfg.ManifestPath)
	}

	if hcfg := historyConfig(cmd); hcfg.Dir != "" {
		if err := recordRun(hcfg, dir, tool.Name(), result, outcomes); err != nil {
			// The conversion already happened; a ledger fault is a warning.
			fmt.Fprintf(os.Stderr, "warning: recording run: %v\n", err)
		}
	}

	if result.ToolUnavailable {
		return fmt.Errorf("batch aborted: editor became unavailable")
	}
	if result.HasFailures() {
		return fmt.Errorf("%d conversion(s) failed", result.Failed)
	}
	return nil
}

func recordRun(cfg types.HistoryConfig, dir, toolName string, result export.BatchResult, outcomes []export.FileOutcome) error {
	store, err := history.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	run := history.Run{
		Directory: dir,
		Tool:      toolName,
		Attempted: result.Attempted,
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Aborted:   result.ToolUnavailable,
	}
	_, err = store.RecordRun(context.Background(), run, outcomes)
	return err
}

// --- shared helpers ---

// resolveTool honors an explicit binary override, otherwise detects the
// editor on PATH. An unresolvable editor is the fatal environment error:
// nothing is attempted.
func resolveTool(cfg types.ExportConfig) (aseprite.Tool, error) {
	if cfg.Tool != "" {
		return aseprite.New(cfg.Tool), nil
	}
	return aseprite.Detect()
}

// exportConfig merges flags over config file values. The positional
// directory wins over both.
func exportConfig(cmd *cobra.Command, args []string) (types.ExportConfig, string) {
	dir := viper.GetString("export.assets_dir")
	if dir == "" {
		dir = "assets"
	}
	if len(args) > 0 {
		dir = args[0]
	}

	extensions, _ := cmd.Flags().GetStringSlice("ext")
	if !cmd.Flags().Changed("ext") {
		if fromCfg := viper.GetStringSlice("export.extensions"); len(fromCfg) > 0 {
			extensions = fromCfg
		}
	}

	tool, _ := cmd.Flags().GetString("tool")
	if tool == "" {
		tool = viper.GetString("export.tool")
	}

	strict, _ := cmd.Flags().GetBool("strict")
	if !cmd.Flags().Changed("strict") && viper.IsSet("export.strict") {
		strict = viper.GetBool("export.strict")
	}

	manifestPath, _ := cmd.Flags().GetString("manifest")

	cfg := types.ExportConfig{
		AssetsDir:    dir,
		Extensions:   extensions,
		Tool:         tool,
		Strict:       strict,
		ManifestPath: manifestPath,
	}
	return cfg, dir
}

func historyConfig(cmd *cobra.Command) types.HistoryConfig {
	dir, _ := cmd.Flags().GetString("history-dir")
	if dir == "" {
		dir = viper.GetString("history.dir")
	}
	maxRuns := viper.GetInt("history.max_runs")
	return types.HistoryConfig{Dir: dir, MaxRuns: maxRuns}
}

func init() {
	exportCmd.Flags().String("tool", "", "editor binary to invoke (default: detect aseprite, then libresprite)")
	exportCmd.Flags().StringSlice("ext", []string{".ase", ".aseprite"}, "source extensions to convert")
	exportCmd.Flags().Bool("strict", false, "fail when the directory contains no matching sprites")
	exportCmd.Flags().String("manifest", "", "write a YAML manifest of the run to this path")
	exportCmd.Flags().String("history-dir", "", "record the run in the ledger under this directory")

	rootCmd.AddCommand(exportCmd)
}
