// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/spritebake/internal/history"
	"github.com/pdiddy/spritebake/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the run ledger (list, prune)",
	Long: `History reads the optional SQLite ledger of past export runs. The ledger
only exists when exports were recorded with --history-dir or a configured
history directory; a plain export writes nothing but the PNGs.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded export runs, newest first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Runs(context.Background(), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-5s  %-20s  %-12s  %9s  %9s  %6s  %s\n",
		"ID", "Started", "Tool", "Attempted", "Succeeded", "Failed", "Directory")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for _, r := range runs {
		started := r.StartedAt.Local().Format(time.DateTime)
		note := ""
		if r.Aborted {
			note = " (aborted)"
		}
		fmt.Fprintf(os.Stdout, "%-5d  %-20s  %-12s  %9d  %9d  %6d  %s%s\n",
			r.ID, started, r.Tool, r.Attempted, r.Succeeded, r.Failed, r.Directory, note)
	}
	return nil
}

// --- prune subcommand ---

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest recorded runs",
	RunE:  runHistoryPrune,
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	keep, _ := cmd.Flags().GetInt("keep")
	deleted, err := store.Prune(context.Background(), keep)
	if err != nil {
		return err
	}
	fmt.Printf("Pruned %d run(s), kept the newest %d.\n", deleted, keep)
	return nil
}

// --- shared helpers ---

func openHistory(cmd *cobra.Command) (*history.Store, error) {
	dir, _ := cmd.Flags().GetString("history-dir")
	if dir == "" {
		dir = viper.GetString("history.dir")
	}
	if dir == "" {
		return nil, fmt.Errorf("history directory required: pass --history-dir or set history.dir in config")
	}
	return history.NewStore(types.HistoryConfig{
		Dir:     dir,
		MaxRuns: viper.GetInt("history.max_runs"),
	})
}

func init() {
	// Shared flag on the parent command, inherited by subcommands.
	historyCmd.PersistentFlags().String("history-dir", "", "directory holding the ledger database")

	historyListCmd.Flags().Int("limit", 0, "maximum runs to list (0 = use default)")
	historyListCmd.Flags().Bool("json", false, "output runs as JSON")

	historyPruneCmd.Flags().Int("keep", 10, "number of newest runs to keep")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyPruneCmd)

	rootCmd.AddCommand(historyCmd)
}
