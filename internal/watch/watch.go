// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch re-exports sprite files as they change on disk. Events are
// debounced per path and exports stay strictly sequential: one editor
// process at a time, same as a batch run.
// Implements: prd002-watch (R1-R3);
//
//	docs/ARCHITECTURE § Watch.
package watch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pdiddy/spritebake/internal/aseprite"
	"github.com/pdiddy/spritebake/internal/export"
	"github.com/pdiddy/spritebake/pkg/types"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher monitors a directory and exports sprite files on change.
type Watcher struct {
	tool       aseprite.Tool
	dir        string
	extensions []string
	debounce   time.Duration
	out        io.Writer

	fsw     *fsnotify.Watcher
	pending chan string

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a watcher over dir and registers it with fsnotify before
// returning, so events are captured from this point on even if Run starts
// later. Extensions and debounce fall back to the same defaults as batch
// export.
func New(tool aseprite.Tool, exportCfg types.ExportConfig, watchCfg types.WatchConfig, dir string, out io.Writer) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	extensions := exportCfg.Extensions
	if len(extensions) == 0 {
		extensions = []string{".ase", ".aseprite"}
	}
	debounce := watchCfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	return &Watcher{
		tool:       tool,
		dir:        dir,
		extensions: extensions,
		debounce:   debounce,
		out:        out,
		fsw:        fsw,
		pending:    make(chan string, 100),
		timers:     make(map[string]*time.Timer),
	}, nil
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run watches until ctx is cancelled or the editor binary becomes
// unresolvable, which is fatal here just as in a batch run.
func (w *Watcher) Run(ctx context.Context) error {
	fmt.Fprintf(w.out, "watching %s for sprite changes\n", w.dir)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(w.out, "watch error: %v\n", err)

		case src := <-w.pending:
			job := types.Job{
				Source: src,
				Dest:   strings.TrimSuffix(src, filepath.Ext(src)) + ".png",
			}
			outcome := export.ExportFile(w.tool, job, w.out)
			if outcome.Status == types.ExportToolUnavailable {
				return fmt.Errorf("stopping watch: %s", outcome.Detail)
			}
		}
	}
}

// handleEvent filters and debounces a raw fsnotify event. Editors save
// sprites with bursts of writes; the last event in a burst wins.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || !w.matches(name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, exists := w.timers[event.Name]; exists {
		timer.Stop()
	}
	src := event.Name
	w.timers[src] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, src)
		w.mu.Unlock()
		w.pending <- src
	})
}

func (w *Watcher) matches(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range w.extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}
