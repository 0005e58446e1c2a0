// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/spritebake/internal/watch"
	"github.com/pdiddy/spritebake/pkg/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Re-export sprites as they change",
	Long: `Watch monitors a directory (default "assets") and exports a sprite each
time it is created or modified. Save bursts from the editor are debounced
per file; exports run one at a time, same as a batch run.

Runs until interrupted. A missing editor binary stops the watch.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, dir := exportConfig(cmd, args)

	tool, err := resolveTool(cfg)
	if err != nil {
		return err
	}

	debounce, _ := cmd.Flags().GetDuration("debounce")
	if !cmd.Flags().Changed("debounce") {
		if fromCfg := viper.GetDuration("watch.debounce"); fromCfg > 0 {
			debounce = fromCfg
		}
	}

	w, err := watch.New(tool, cfg, types.WatchConfig{Debounce: debounce}, dir, os.Stdout)
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return w.Run(ctx)
}

func init() {
	watchCmd.Flags().String("tool", "", "editor binary to invoke (default: detect aseprite, then libresprite)")
	watchCmd.Flags().StringSlice("ext", []string{".ase", ".aseprite"}, "source extensions to convert")
	watchCmd.Flags().Duration("debounce", 500*time.Millisecond, "quiet period before a changed sprite is exported")

	rootCmd.AddCommand(watchCmd)
}
